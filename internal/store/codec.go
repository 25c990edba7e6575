package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/trackit-app/dashboard-service/internal/domain"
)

// ticketDoc is the JSON document shape persisted for a ticket. Field
// names match the historical collection contents.
type ticketDoc struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	DueDate     flexTime              `json:"dueDate"`
	CreatedAt   flexTime              `json:"createdAt"`
	UpdatedAt   flexTime              `json:"updatedAt"`
	UserID      string                `json:"userId"`
}

// flexTime decodes document timestamps defensively: historical records
// store either an RFC3339 string or a raw epoch-milliseconds number.
// Encoding always writes RFC3339.
type flexTime struct {
	time.Time
}

func (t flexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		parsed, err := time.Parse(time.RFC3339Nano, asString)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", asString, err)
		}
		t.Time = parsed
		return nil
	}

	var asMillis float64
	if err := json.Unmarshal(data, &asMillis); err == nil {
		t.Time = time.UnixMilli(int64(asMillis)).UTC()
		return nil
	}

	return fmt.Errorf("unsupported timestamp shape: %s", data)
}

func encodeDoc(ticket *domain.Ticket) ([]byte, error) {
	return json.Marshal(ticketDoc{
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		DueDate:     flexTime{ticket.DueDate},
		CreatedAt:   flexTime{ticket.CreatedAt},
		UpdatedAt:   flexTime{ticket.UpdatedAt},
		UserID:      ticket.UserID,
	})
}

func decodeDoc(id string, raw []byte) (domain.Ticket, error) {
	var doc ticketDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Ticket{}, fmt.Errorf("decode ticket %s: %w", id, err)
	}
	return domain.Ticket{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		Priority:    doc.Priority,
		Status:      doc.Status,
		DueDate:     doc.DueDate.Time,
		CreatedAt:   doc.CreatedAt.Time,
		UpdatedAt:   doc.UpdatedAt.Time,
		UserID:      doc.UserID,
	}, nil
}
