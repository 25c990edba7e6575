package handlers

import (
	"bufio"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/trackit-app/dashboard-service/internal/api/dto"
	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// heartbeatInterval paces SSE keep-alive comments. A failed write is
// the only disconnect signal the body stream writer gets, so the
// connection must see periodic traffic even while the collection is
// quiet; otherwise an abandoned client would hold its subscription and
// pub/sub channel open forever.
const heartbeatInterval = 15 * time.Second

// streamSnapshots writes the ticket subscription for ownerID to the
// response as server-sent events: a "snapshot" event per delivery and
// an "error" event per delivery failure. The subscription is torn down
// when the client disconnects.
func streamSnapshots(c *fiber.Ctx, store TicketStore, ownerID string) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		snapshots := make(chan []domain.Ticket, 1)
		errs := make(chan error, 1)

		// must never block: callbacks run on the subscription's
		// delivery goroutine. Deliveries are serialized, so
		// drain-then-retry always lands the latest snapshot.
		onSnapshot := func(tickets []domain.Ticket) {
			for {
				select {
				case snapshots <- tickets:
					return
				default:
				}
				select {
				case <-snapshots:
				default:
				}
			}
		}
		onError := func(err error) {
			select {
			case errs <- err:
			default:
			}
		}

		unsubscribe, err := store.SubscribeTickets(ownerID, onSnapshot, onError)
		if err != nil {
			writeEvent(w, "error", errorEvent(err))
			return
		}
		defer unsubscribe()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		pumpEvents(w, snapshots, errs, heartbeat.C)
	}))
	return nil
}

// pumpEvents forwards deliveries to the client until a write fails.
// Heartbeat comments keep bytes flowing on a quiet collection so a dead
// connection is detected and the caller's teardown runs.
func pumpEvents(w *bufio.Writer, snapshots <-chan []domain.Ticket, errs <-chan error, heartbeat <-chan time.Time) {
	for {
		select {
		case tickets := <-snapshots:
			if !writeEvent(w, "snapshot", dto.NewTicketResponses(tickets)) {
				return
			}
		case err := <-errs:
			if !writeEvent(w, "error", errorEvent(err)) {
				return
			}
		case <-heartbeat:
			if !writeComment(w) {
				return
			}
		}
	}
}

// writeEvent reports false once the client is gone.
func writeEvent(w *bufio.Writer, event string, payload any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if _, err := w.WriteString("event: " + event + "\ndata: " + string(body) + "\n\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}

// writeComment emits an SSE comment line, which clients ignore.
func writeComment(w *bufio.Writer) bool {
	if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}

func errorEvent(err error) fiber.Map {
	domainErr := apperrors.ToDomainError(err)
	return fiber.Map{"code": domainErr.Code, "message": domainErr.Message}
}
