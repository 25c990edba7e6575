package validate

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 100
	descriptionMaxLen = 500
)

// FieldErrors maps a form field to its validation message. A nil map
// means the form is valid.
type FieldErrors map[string]string

// TicketForm checks the ticket field constraints. Validation never
// panics; a failing form must block submission before the store
// adapter is reached.
func TicketForm(data domain.TicketFormData) FieldErrors {
	errs := FieldErrors{}

	titleLen := utf8.RuneCountInString(data.Title)
	switch {
	case titleLen < titleMinLen:
		errs["title"] = fmt.Sprintf("title must be at least %d characters", titleMinLen)
	case titleLen > titleMaxLen:
		errs["title"] = fmt.Sprintf("title cannot exceed %d characters", titleMaxLen)
	}

	if utf8.RuneCountInString(data.Description) > descriptionMaxLen {
		errs["description"] = fmt.Sprintf("description cannot exceed %d characters", descriptionMaxLen)
	}

	if !domain.ValidPriority(data.Priority) {
		errs["priority"] = "priority is required"
	}

	if !domain.ValidStatus(data.Status) {
		errs["status"] = "status is required"
	}

	if data.DueDate.IsZero() {
		errs["dueDate"] = "due date is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Error converts field errors into the application error taxonomy for
// the submit boundary.
func (e FieldErrors) Error() error {
	if len(e) == 0 {
		return nil
	}
	details := make(map[string]any, len(e))
	for field, message := range e {
		details[field] = message
	}
	return apperrors.NewValidationError("ticket validation failed", details)
}

// MinDueDate returns the earliest due date the form's date input may
// offer: yesterday relative to now. This is an input-selection floor
// only; submissions are not re-checked against it.
func MinDueDate(now time.Time) time.Time {
	year, month, day := now.AddDate(0, 0, -1).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}
