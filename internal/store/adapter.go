package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// AllOwners subscribes across every user's tickets (admin view).
const AllOwners = "ALL"

// TicketStore adapts the tickets collection: JSONB documents in
// Postgres, change fanout over the Notifier.
type TicketStore struct {
	pool     *pgxpool.Pool
	notifier Notifier
	logger   *zap.Logger
}

// NewTicketStore builds the adapter.
func NewTicketStore(pool *pgxpool.Pool, notifier Notifier, logger *zap.Logger) *TicketStore {
	return &TicketStore{pool: pool, notifier: notifier, logger: logger}
}

// SubscribeTickets opens a live snapshot subscription for one owner, or
// for every owner when ownerID is AllOwners. Every collection change
// (including the initial load) delivers the complete matching set to
// onSnapshot; the previous snapshot is always replaced wholesale.
//
// Owner subscriptions are ordered by createdAt descending. The
// AllOwners view carries no ordering guarantee; callers must not rely
// on any particular order there.
//
// The returned unsubscribe is idempotent and safe to call while a query
// is in flight; no snapshot is delivered after it returns.
func (s *TicketStore) SubscribeTickets(ownerID string, onSnapshot func([]domain.Ticket), onError func(error)) (func(), error) {
	fetch := func(ctx context.Context) ([]domain.Ticket, error) {
		return s.fetchSnapshot(ctx, ownerID)
	}
	return newSubscription(s.notifier, fetch, onSnapshot, onError)
}

// CreateTicket persists a new ticket owned by ownerID. The store
// assigns the id; createdAt and updatedAt are both set to now.
func (s *TicketStore) CreateTicket(ctx context.Context, data domain.TicketFormData, ownerID string) (*domain.Ticket, error) {
	if ownerID == "" {
		return nil, apperrors.NewAuthRequired("sign in before creating a ticket")
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       data.Title,
		Description: data.Description,
		Priority:    data.Priority,
		Status:      data.Status,
		DueDate:     data.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      ownerID,
	}

	doc, err := encodeDoc(ticket)
	if err != nil {
		return nil, apperrors.NewStoreWriteError(err)
	}

	const query = `INSERT INTO tickets (id, user_id, doc, created_at) VALUES ($1,$2,$3,$4)`
	if _, err := s.pool.Exec(ctx, query, ticket.ID, ticket.UserID, doc, ticket.CreatedAt); err != nil {
		return nil, apperrors.NewStoreWriteError(err)
	}

	s.publishChange(ctx)
	return ticket, nil
}

// UpdateTicket overwrites the mutable fields of an existing ticket.
// createdAt comes from the caller's edit context and is written back
// unchanged; updatedAt is set to now. Last writer wins, there is no
// version check.
func (s *TicketStore) UpdateTicket(ctx context.Context, id string, data domain.TicketFormData, createdAt time.Time) (*domain.Ticket, error) {
	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          id,
		Title:       data.Title,
		Description: data.Description,
		Priority:    data.Priority,
		Status:      data.Status,
		DueDate:     data.DueDate,
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}

	doc, err := encodeDoc(ticket)
	if err != nil {
		return nil, apperrors.NewStoreWriteError(err)
	}

	// the owner column stays authoritative: the stored document's
	// userId is rewritten from it, so ownership cannot change here
	const query = `
        UPDATE tickets
           SET doc = $2::jsonb || jsonb_build_object('userId', user_id)
         WHERE id = $1
         RETURNING user_id`
	if err := s.pool.QueryRow(ctx, query, id, doc).Scan(&ticket.UserID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreWriteError(err)
	}

	s.publishChange(ctx)
	return ticket, nil
}

// DeleteTicket irreversibly removes a ticket. Deleting an id that no
// longer exists succeeds silently.
func (s *TicketStore) DeleteTicket(ctx context.Context, id string) error {
	const query = `DELETE FROM tickets WHERE id = $1`
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return apperrors.NewStoreWriteError(err)
	}
	s.publishChange(ctx)
	return nil
}

// GetTicket fetches a single ticket, for edit contexts that need the
// stored createdAt and owner before an update.
func (s *TicketStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT id, doc FROM tickets WHERE id = $1`
	var (
		docID string
		raw   []byte
	)
	if err := s.pool.QueryRow(ctx, query, id).Scan(&docID, &raw); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreReadError(err)
	}
	ticket, err := decodeDoc(docID, raw)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	return &ticket, nil
}

// FetchSnapshot runs the snapshot query once, outside a subscription.
func (s *TicketStore) FetchSnapshot(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	tickets, err := s.fetchSnapshot(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	return tickets, nil
}

func (s *TicketStore) fetchSnapshot(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if ownerID == AllOwners {
		// no ORDER BY here: the all-owners view is unordered
		rows, err = s.pool.Query(ctx, `SELECT id, doc FROM tickets`)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, doc FROM tickets WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		ticket, err := decodeDoc(id, raw)
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (s *TicketStore) publishChange(ctx context.Context) {
	if err := s.notifier.Publish(ctx); err != nil {
		// subscribers just miss one refresh; nothing user-correctable
		s.logger.Warn("publishing ticket change", zap.Error(err))
	}
}
