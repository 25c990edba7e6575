package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// Notifier carries coarse change signals for the tickets collection.
// Signals have no payload: every signal means "re-read the collection".
type Notifier interface {
	// Publish announces that the collection changed.
	Publish(ctx context.Context) error
	// Subscribe returns a signal channel and a stop function. The
	// channel is closed after stop is called.
	Subscribe(ctx context.Context) (<-chan struct{}, func(), error)
}

type fetchFunc func(context.Context) ([]domain.Ticket, error)

// subscription re-reads the collection on every change signal and
// delivers the result as a full snapshot. It never diffs.
type subscription struct {
	fetch      fetchFunc
	onSnapshot func([]domain.Ticket)
	onError    func(error)

	cancel context.CancelFunc
	closed atomic.Bool
	once   sync.Once
}

// newSubscription starts the snapshot loop. The returned function tears
// the subscription down: a query in flight at teardown is discarded and
// never delivered. It is idempotent and may be called from inside a
// delivery callback.
func newSubscription(notifier Notifier, fetch fetchFunc, onSnapshot func([]domain.Ticket), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	signals, stop, err := notifier.Subscribe(ctx)
	if err != nil {
		cancel()
		return nil, apperrors.NewStoreReadError(err)
	}

	sub := &subscription{
		fetch:      fetch,
		onSnapshot: onSnapshot,
		onError:    onError,
		cancel:     cancel,
	}

	go sub.run(ctx, signals, stop)

	return sub.unsubscribe, nil
}

func (s *subscription) run(ctx context.Context, signals <-chan struct{}, stop func()) {
	defer stop()

	s.deliver(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			s.deliver(ctx)
		}
	}
}

// deliver runs one fetch and hands the result to the snapshot callback.
// The closed flag is re-checked after the fetch so a query that was in
// flight during unsubscribe is discarded, not delivered late. Callbacks
// run on this goroutine only, holding no lock, so they may call
// unsubscribe themselves.
func (s *subscription) deliver(ctx context.Context) {
	tickets, err := s.fetch(ctx)
	if s.closed.Load() {
		return
	}
	if err != nil {
		s.onError(apperrors.NewStoreReadError(err))
		return
	}
	s.onSnapshot(tickets)
}

func (s *subscription) unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
}
