package view

import (
	"strings"

	"github.com/trackit-app/dashboard-service/internal/domain"
)

// All disables the status or priority predicate.
const All = "ALL"

// Query holds the local filter state of a ticket list view. Zero
// values disable each predicate except Status/Priority, which use All.
type Query struct {
	Title    string
	Status   string
	Priority string
	// Owner is the admin-only userId substring filter; empty
	// disables it.
	Owner string
}

// Filter returns the tickets matching every predicate in q. Matching
// is the logical AND of a case-insensitive title substring, an exact
// status, an exact priority, and a case-insensitive owner substring.
// Input order is preserved; the input slice is never mutated.
func Filter(tickets []domain.Ticket, q Query) []domain.Ticket {
	title := strings.ToLower(q.Title)
	owner := strings.ToLower(q.Owner)

	result := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if title != "" && !strings.Contains(strings.ToLower(ticket.Title), title) {
			continue
		}
		if q.Status != "" && q.Status != All && string(ticket.Status) != q.Status {
			continue
		}
		if q.Priority != "" && q.Priority != All && string(ticket.Priority) != q.Priority {
			continue
		}
		if owner != "" && !strings.Contains(strings.ToLower(ticket.UserID), owner) {
			continue
		}
		result = append(result, ticket)
	}
	return result
}

// Summary aggregates ticket counts for the dashboard cards and charts.
type Summary struct {
	Total      int
	ByStatus   map[domain.TicketStatus]int
	ByPriority map[domain.TicketPriority]int
}

// Summarize counts tickets per status and per priority. Every known
// status and priority appears in the maps, zero-valued when absent.
func Summarize(tickets []domain.Ticket) Summary {
	summary := Summary{
		Total:      len(tickets),
		ByStatus:   make(map[domain.TicketStatus]int, 3),
		ByPriority: make(map[domain.TicketPriority]int, 3),
	}
	for _, status := range domain.Statuses() {
		summary.ByStatus[status] = 0
	}
	for _, priority := range domain.Priorities() {
		summary.ByPriority[priority] = 0
	}
	for _, ticket := range tickets {
		summary.ByStatus[ticket.Status]++
		summary.ByPriority[ticket.Priority]++
	}
	return summary
}
