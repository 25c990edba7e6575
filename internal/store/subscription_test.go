package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackit-app/dashboard-service/internal/domain"
)

// fakeNotifier is an in-process Notifier for tests. Signal injects one
// change signal.
type fakeNotifier struct {
	mu      sync.Mutex
	signals chan struct{}
	stopped bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signals: make(chan struct{}, 8)}
}

func (f *fakeNotifier) Publish(context.Context) error {
	f.Signal()
	return nil
}

func (f *fakeNotifier) Subscribe(context.Context) (<-chan struct{}, func(), error) {
	return f.signals, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped = true
	}, nil
}

func (f *fakeNotifier) Signal() {
	f.signals <- struct{}{}
}

func (f *fakeNotifier) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func waitForSnapshot(t *testing.T, ch <-chan []domain.Ticket) []domain.Ticket {
	t.Helper()
	select {
	case tickets := <-ch:
		return tickets
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscriptionDeliversInitialSnapshot(t *testing.T) {
	notifier := newFakeNotifier()
	fetch := func(context.Context) ([]domain.Ticket, error) {
		return []domain.Ticket{{ID: "t-1"}}, nil
	}

	snapshots := make(chan []domain.Ticket, 8)
	unsubscribe, err := newSubscription(notifier, fetch,
		func(tickets []domain.Ticket) { snapshots <- tickets },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	require.NoError(t, err)
	defer unsubscribe()

	initial := waitForSnapshot(t, snapshots)
	require.Len(t, initial, 1)
	assert.Equal(t, "t-1", initial[0].ID)
}

func TestSubscriptionRefetchesOnSignal(t *testing.T) {
	notifier := newFakeNotifier()

	var mu sync.Mutex
	current := []domain.Ticket{{ID: "t-1"}}
	fetch := func(context.Context) ([]domain.Ticket, error) {
		mu.Lock()
		defer mu.Unlock()
		result := make([]domain.Ticket, len(current))
		copy(result, current)
		return result, nil
	}

	snapshots := make(chan []domain.Ticket, 8)
	unsubscribe, err := newSubscription(notifier, fetch,
		func(tickets []domain.Ticket) { snapshots <- tickets },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	require.NoError(t, err)
	defer unsubscribe()

	waitForSnapshot(t, snapshots)

	mu.Lock()
	current = append(current, domain.Ticket{ID: "t-2"})
	mu.Unlock()
	notifier.Signal()

	// every delivery is a full replacement, never a diff
	next := waitForSnapshot(t, snapshots)
	require.Len(t, next, 2)
	assert.Equal(t, "t-1", next[0].ID)
	assert.Equal(t, "t-2", next[1].ID)
}

func TestSubscriptionReportsFetchErrors(t *testing.T) {
	notifier := newFakeNotifier()
	fetch := func(context.Context) ([]domain.Ticket, error) {
		return nil, context.DeadlineExceeded
	}

	errs := make(chan error, 8)
	unsubscribe, err := newSubscription(notifier, fetch,
		func([]domain.Ticket) { t.Error("unexpected snapshot") },
		func(err error) { errs <- err },
	)
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "ticket store read failed")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error callback")
	}
}

func TestUnsubscribeDiscardsInFlightFetch(t *testing.T) {
	notifier := newFakeNotifier()

	fetchStarted := make(chan struct{})
	releaseFetch := make(chan struct{})
	fetch := func(context.Context) ([]domain.Ticket, error) {
		close(fetchStarted)
		<-releaseFetch
		return []domain.Ticket{{ID: "late"}}, nil
	}

	var mu sync.Mutex
	var delivered [][]domain.Ticket
	unsubscribe, err := newSubscription(notifier, fetch,
		func(tickets []domain.Ticket) {
			mu.Lock()
			delivered = append(delivered, tickets)
			mu.Unlock()
		},
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	require.NoError(t, err)

	<-fetchStarted
	unsubscribe()
	close(releaseFetch)

	// give the goroutine time to (incorrectly) deliver
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, delivered, "snapshot in flight during unsubscribe must be discarded")
}

func TestUnsubscribeIsIdempotentAndStopsNotifier(t *testing.T) {
	notifier := newFakeNotifier()
	fetch := func(context.Context) ([]domain.Ticket, error) { return nil, nil }

	snapshots := make(chan []domain.Ticket, 8)
	unsubscribe, err := newSubscription(notifier, fetch,
		func(tickets []domain.Ticket) { snapshots <- tickets },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	require.NoError(t, err)

	waitForSnapshot(t, snapshots)
	unsubscribe()
	unsubscribe()

	assert.Eventually(t, notifier.Stopped, 2*time.Second, 10*time.Millisecond)
}

// A subscriber tearing itself down from inside its own snapshot
// callback must not deadlock, and must receive nothing afterwards.
func TestUnsubscribeFromWithinSnapshotCallback(t *testing.T) {
	notifier := newFakeNotifier()
	fetch := func(context.Context) ([]domain.Ticket, error) {
		return []domain.Ticket{{ID: "t-1"}}, nil
	}

	unsubCh := make(chan func(), 1)
	var deliveries atomic.Int32
	done := make(chan struct{})
	unsubscribe, err := newSubscription(notifier, fetch,
		func([]domain.Ticket) {
			deliveries.Add(1)
			u := <-unsubCh
			u()
			u()
			close(done)
		},
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	require.NoError(t, err)
	unsubCh <- unsubscribe

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unsubscribe inside the snapshot callback deadlocked")
	}

	notifier.Signal()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), deliveries.Load())
}

// Rebinding a view from one owner to another must never let a slow
// fetch for the old owner land after the new owner's subscription is
// active.
func TestOwnerSwitchDropsStaleSnapshot(t *testing.T) {
	notifierA := newFakeNotifier()
	notifierB := newFakeNotifier()

	fetchAStarted := make(chan struct{})
	releaseFetchA := make(chan struct{})
	fetchA := func(context.Context) ([]domain.Ticket, error) {
		close(fetchAStarted)
		<-releaseFetchA
		return []domain.Ticket{{ID: "a-1", UserID: "owner-a"}}, nil
	}
	fetchB := func(context.Context) ([]domain.Ticket, error) {
		return []domain.Ticket{{ID: "b-1", UserID: "owner-b"}}, nil
	}

	var mu sync.Mutex
	var visible []domain.Ticket
	record := func(tickets []domain.Ticket) {
		mu.Lock()
		visible = tickets
		mu.Unlock()
	}
	snapshotsB := make(chan []domain.Ticket, 8)

	unsubscribeA, err := newSubscription(notifierA, fetchA, record,
		func(err error) { t.Errorf("unexpected error: %v", err) })
	require.NoError(t, err)

	<-fetchAStarted
	unsubscribeA()

	unsubscribeB, err := newSubscription(notifierB, fetchB,
		func(tickets []domain.Ticket) {
			record(tickets)
			snapshotsB <- tickets
		},
		func(err error) { t.Errorf("unexpected error: %v", err) })
	require.NoError(t, err)
	defer unsubscribeB()

	waitForSnapshot(t, snapshotsB)

	// let the stale owner-a fetch complete after the switch
	close(releaseFetchA)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, visible, 1)
	assert.Equal(t, "owner-b", visible[0].UserID)
}
