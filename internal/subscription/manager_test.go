package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type fakeChannel struct {
	mu       sync.Mutex
	closed   bool
	onChange func()
	onStatus func(Status, error)
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeChannel) emitChange() { c.onChange() }

func (c *fakeChannel) fail(err error) { c.onStatus(StatusChannelError, err) }

// fakeFactory records every channel it opens and can fail the first n opens
type fakeFactory struct {
	mu       sync.Mutex
	channels []*fakeChannel
	attempts int
	failNext int
}

func (f *fakeFactory) open(ctx context.Context, gameID uuid.UUID, onChange func(), onStatus func(Status, error)) (Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failNext > 0 {
		f.failNext--
		return nil, errors.New("subscribe refused")
	}
	ch := &fakeChannel{onChange: onChange, onStatus: onStatus}
	f.channels = append(f.channels, ch)
	return ch, nil
}

func (f *fakeFactory) opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

func (f *fakeFactory) tried() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeFactory) last() *fakeChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.channels) == 0 {
		return nil
	}
	return f.channels[len(f.channels)-1]
}

type refetchCounter struct {
	mu    sync.Mutex
	count int
}

func (r *refetchCounter) refetch(ctx context.Context) error {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	return nil
}

func (r *refetchCounter) get() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func newTestManager(t *testing.T, factory *fakeFactory, clock clockwork.Clock, rc *refetchCounter) *Manager {
	t.Helper()
	m := NewManager(Config{
		GameID:  uuid.New(),
		Open:    factory.open,
		Refetch: rc.refetch,
		Clock:   clock,
	})
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestStartSubscribesAndRefetches(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	m := newTestManager(t, factory, clockwork.NewFakeClock(), rc)

	if got := m.Status(); got != StatusSubscribed {
		t.Errorf("status = %s, want subscribed", got)
	}
	if got := factory.opened(); got != 1 {
		t.Errorf("opened %d channels, want 1", got)
	}
	if got := rc.get(); got != 1 {
		t.Errorf("refetched %d times on start, want 1", got)
	}
}

func TestChangeNotificationTriggersFullRefetch(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	newTestManager(t, factory, clockwork.NewFakeClock(), rc)

	factory.last().emitChange()
	factory.last().emitChange()

	if got := rc.get(); got != 3 {
		t.Errorf("refetched %d times, want 3 (initial plus one per change)", got)
	}
}

func TestChannelErrorResubscribesAfterDelay(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	clock := clockwork.NewFakeClock()
	m := newTestManager(t, factory, clock, rc)

	factory.last().fail(errors.New("stream reset"))
	if got := m.Status(); got != StatusChannelError {
		t.Fatalf("status = %s, want channel_error", got)
	}
	if got := factory.opened(); got != 1 {
		t.Fatalf("opened %d channels before the delay, want 1", got)
	}

	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return factory.opened() == 2 })

	if got := m.Status(); got != StatusSubscribed {
		t.Errorf("status = %s, want subscribed after resubscribe", got)
	}
	if got := rc.get(); got < 2 {
		t.Errorf("refetched %d times, want a refetch after resubscribe", got)
	}
}

func TestHiddenPageDefersResubscribeUntilVisible(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	clock := clockwork.NewFakeClock()
	m := newTestManager(t, factory, clock, rc)

	m.NotifyHidden()
	factory.last().fail(errors.New("stream reset"))

	clock.Advance(time.Minute)
	if got := factory.opened(); got != 1 {
		t.Fatalf("opened %d channels while hidden, want 1", got)
	}

	m.NotifyVisible()
	if got := factory.opened(); got != 2 {
		t.Errorf("opened %d channels after visibility, want 2 (immediate resubscribe)", got)
	}
	if got := m.Status(); got != StatusSubscribed {
		t.Errorf("status = %s, want subscribed", got)
	}
}

func TestConnectionCallbacksFire(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	clock := clockwork.NewFakeClock()

	var mu sync.Mutex
	var lost, reconnected int
	m := NewManager(Config{
		GameID:  uuid.New(),
		Open:    factory.open,
		Refetch: rc.refetch,
		Clock:   clock,
		OnConnectionLost: func() {
			mu.Lock()
			lost++
			mu.Unlock()
		},
		OnReconnected: func() {
			mu.Lock()
			reconnected++
			mu.Unlock()
		},
	})
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Close()

	factory.last().fail(errors.New("stream reset"))
	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return factory.opened() == 2 })

	mu.Lock()
	defer mu.Unlock()
	if lost != 1 {
		t.Errorf("OnConnectionLost fired %d times, want 1", lost)
	}
	if reconnected != 1 {
		t.Errorf("OnReconnected fired %d times, want 1", reconnected)
	}
}

func TestCloseCancelsPendingResubscribe(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	clock := clockwork.NewFakeClock()
	m := newTestManager(t, factory, clock, rc)

	factory.last().fail(errors.New("stream reset"))
	m.Close()

	clock.Advance(time.Minute)
	if got := factory.opened(); got != 1 {
		t.Errorf("opened %d channels after Close, want 1", got)
	}
	if got := m.Status(); got != StatusClosed {
		t.Errorf("status = %s, want closed", got)
	}
	if !factory.last().isClosed() {
		t.Error("underlying channel should be closed")
	}
}

func TestFailedResubscribeKeepsRetrying(t *testing.T) {
	factory := &fakeFactory{}
	rc := &refetchCounter{}
	clock := clockwork.NewFakeClock()
	m := newTestManager(t, factory, clock, rc)

	factory.mu.Lock()
	factory.failNext = 1
	factory.mu.Unlock()
	factory.last().fail(errors.New("stream reset"))

	// First retry fails to open and schedules another attempt
	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return factory.tried() == 2 })
	clock.BlockUntil(1)

	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return factory.opened() == 2 })

	if got := m.Status(); got != StatusSubscribed {
		t.Errorf("status = %s, want subscribed after second retry", got)
	}
}

// waitFor polls for goroutine-driven state transitions
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
