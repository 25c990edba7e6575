package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trackit-app/dashboard-service/internal/api/dto"
	"github.com/trackit-app/dashboard-service/internal/auth"
	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/internal/validate"
	"github.com/trackit-app/dashboard-service/internal/view"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// TicketStore is the subset of the store adapter the ticket endpoints use.
type TicketStore interface {
	SubscribeTickets(ownerID string, onSnapshot func([]domain.Ticket), onError func(error)) (func(), error)
	CreateTicket(ctx context.Context, data domain.TicketFormData, ownerID string) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, data domain.TicketFormData, createdAt time.Time) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	FetchSnapshot(ctx context.Context, ownerID string) ([]domain.Ticket, error)
}

// TicketsHandler manages the caller's own tickets.
type TicketsHandler struct {
	store TicketStore
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(store TicketStore) *TicketsHandler {
	return &TicketsHandler{store: store}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewAuthRequired("")
	}

	tickets, err := h.store.FetchSnapshot(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	filtered := view.Filter(tickets, listQuery(c))
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(filtered)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewAuthRequired("")
	}
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	data := req.FormData()
	if errs := validate.TicketForm(data); errs != nil {
		return errs.Error()
	}

	ticket, err := h.store.CreateTicket(c.UserContext(), data, user.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewAuthRequired("")
	}
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	data := req.FormData()
	if errs := validate.TicketForm(data); errs != nil {
		return errs.Error()
	}

	existing, err := h.store.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if existing.UserID != user.ID && !user.IsAdmin {
		return apperrors.NewForbidden("not your ticket")
	}

	// createdAt is carried over from the stored record; the update
	// never regenerates it
	ticket, err := h.store.UpdateTicket(c.UserContext(), existing.ID, data, existing.CreatedAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewAuthRequired("")
	}

	existing, err := h.store.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		// deleting an already-deleted ticket succeeds silently
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return c.SendStatus(http.StatusNoContent)
		}
		return err
	}
	if existing.UserID != user.ID && !user.IsAdmin {
		return apperrors.NewForbidden("not your ticket")
	}

	if err := h.store.DeleteTicket(c.UserContext(), existing.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// StreamTickets GET /tickets/stream delivers live snapshots of the
// caller's tickets over server-sent events.
func (h *TicketsHandler) StreamTickets(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewAuthRequired("")
	}
	return streamSnapshots(c, h.store, user.ID)
}

func listQuery(c *fiber.Ctx) view.Query {
	return view.Query{
		Title:    c.Query("title"),
		Status:   c.Query("status", view.All),
		Priority: c.Query("priority", view.All),
	}
}
