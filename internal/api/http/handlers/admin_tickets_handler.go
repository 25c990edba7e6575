package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trackit-app/dashboard-service/internal/api/dto"
	"github.com/trackit-app/dashboard-service/internal/store"
	"github.com/trackit-app/dashboard-service/internal/view"
)

// AdminTicketsHandler exposes the cross-user ticket views. Routes using
// it sit behind the admin middleware.
type AdminTicketsHandler struct {
	store TicketStore
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketStore TicketStore) *AdminTicketsHandler {
	return &AdminTicketsHandler{store: ticketStore}
}

// ListTickets GET /admin/tickets. The underlying all-owners snapshot is
// unordered; clients wanting an order must sort locally.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.store.FetchSnapshot(c.UserContext(), store.AllOwners)
	if err != nil {
		return err
	}

	query := listQuery(c)
	query.Owner = c.Query("user")
	filtered := view.Filter(tickets, query)
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(filtered)})
}

// StreamTickets GET /admin/tickets/stream delivers live snapshots of
// every user's tickets over server-sent events.
func (h *AdminTicketsHandler) StreamTickets(c *fiber.Ctx) error {
	return streamSnapshots(c, h.store, store.AllOwners)
}
