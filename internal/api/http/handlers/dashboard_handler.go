package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trackit-app/dashboard-service/internal/api/dto"
	"github.com/trackit-app/dashboard-service/internal/auth"
	"github.com/trackit-app/dashboard-service/internal/view"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// DashboardHandler serves the dashboard aggregates.
type DashboardHandler struct {
	store TicketStore
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(store TicketStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// Summary GET /dashboard/summary returns the caller's ticket counts per
// status and per priority.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewAuthRequired("")
	}

	tickets, err := h.store.FetchSnapshot(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	summary := view.Summarize(tickets)
	resp := dto.SummaryResponse{
		Total:      summary.Total,
		ByStatus:   make(map[string]int, len(summary.ByStatus)),
		ByPriority: make(map[string]int, len(summary.ByPriority)),
	}
	for status, count := range summary.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	for priority, count := range summary.ByPriority {
		resp.ByPriority[string(priority)] = count
	}
	return c.JSON(fiber.Map{"data": resp})
}
