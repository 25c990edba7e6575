package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PENDIENTE"
	TicketStatusInProgress TicketStatus = "EN_PROGRESO"
	TicketStatusCompleted  TicketStatus = "COMPLETADA"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "BAJA"
	TicketPriorityMedium TicketPriority = "MEDIA"
	TicketPriorityHigh   TicketPriority = "ALTA"
)

// Statuses lists every valid ticket status.
func Statuses() []TicketStatus {
	return []TicketStatus{TicketStatusPending, TicketStatusInProgress, TicketStatusCompleted}
}

// Priorities lists every valid ticket priority.
func Priorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is a unit of trackable work owned by one user.
// UserID is assigned at creation and never transferred.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	DueDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      string
}

// TicketFormData carries the mutable ticket fields submitted by a form.
type TicketFormData struct {
	Title       string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	DueDate     time.Time
}
