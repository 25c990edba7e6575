package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackit-app/dashboard-service/internal/domain"
)

func TestDecodeDocStringTimestamps(t *testing.T) {
	raw := []byte(`{
		"title": "Renovar certificado",
		"description": "Antes de fin de mes",
		"priority": "ALTA",
		"status": "PENDIENTE",
		"dueDate": "2026-09-15T00:00:00Z",
		"createdAt": "2026-08-01T10:30:00Z",
		"updatedAt": "2026-08-02T08:00:00Z",
		"userId": "acc-1"
	}`)

	ticket, err := decodeDoc("t-1", raw)
	require.NoError(t, err)

	assert.Equal(t, "t-1", ticket.ID)
	assert.Equal(t, "Renovar certificado", ticket.Title)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, "acc-1", ticket.UserID)
	assert.True(t, ticket.DueDate.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ticket.CreatedAt.Equal(time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)))
}

func TestDecodeDocEpochMillisTimestamps(t *testing.T) {
	// 2026-08-01T10:30:00Z in epoch milliseconds
	raw := []byte(`{
		"title": "Migrar base",
		"priority": "MEDIA",
		"status": "EN_PROGRESO",
		"dueDate": 1789430400000,
		"createdAt": 1785580200000,
		"updatedAt": 1785580200000,
		"userId": "acc-2"
	}`)

	ticket, err := decodeDoc("t-2", raw)
	require.NoError(t, err)

	assert.True(t, ticket.CreatedAt.Equal(time.UnixMilli(1785580200000)))
	assert.True(t, ticket.DueDate.Equal(time.UnixMilli(1789430400000)))
}

func TestDecodeDocRejectsMalformedTimestamp(t *testing.T) {
	raw := []byte(`{"title": "x", "createdAt": "ayer"}`)

	_, err := decodeDoc("t-3", raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t-3")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := domain.Ticket{
		ID:          "t-4",
		Title:       "Revisar backups",
		Description: "Verificar restauración completa",
		Priority:    domain.TicketPriorityLow,
		Status:      domain.TicketStatusCompleted,
		DueDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2026, 8, 20, 9, 15, 30, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 8, 25, 14, 0, 0, 0, time.UTC),
		UserID:      "acc-3",
	}

	raw, err := encodeDoc(&original)
	require.NoError(t, err)

	decoded, err := decodeDoc(original.ID, raw)
	require.NoError(t, err)

	assert.Equal(t, original.Title, decoded.Title)
	assert.Equal(t, original.Description, decoded.Description)
	assert.Equal(t, original.Priority, decoded.Priority)
	assert.Equal(t, original.Status, decoded.Status)
	assert.Equal(t, original.UserID, decoded.UserID)
	assert.True(t, original.DueDate.Equal(decoded.DueDate))
	assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, original.UpdatedAt.Equal(decoded.UpdatedAt))
}
