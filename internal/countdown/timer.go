package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Timer is a wall-clock-anchored countdown. Remaining time is recomputed
// from the activation anchor on every tick instead of trusting tick counts,
// so a suspended host (phone locked, tab backgrounded) that stops delivering
// ticks still lands on the right value when it wakes up. Resync exists for
// exactly that wake-up path.
//
// In production, pass clockwork.NewRealClock(). Tests use a FakeClock.
type Timer struct {
	clock    clockwork.Clock
	onTimeUp func()
	onTick   func(remainingSec int)

	mu       sync.Mutex
	duration time.Duration
	anchor   time.Time
	active   bool
	fired    bool
	done     chan struct{}
}

// New creates an inactive countdown timer with a fixed duration. onTimeUp
// fires exactly once per activation; onTick is optional display feedback.
func New(clock clockwork.Clock, duration time.Duration, onTimeUp func(), onTick func(remainingSec int)) *Timer {
	return &Timer{
		clock:    clock,
		duration: duration,
		onTimeUp: onTimeUp,
		onTick:   onTick,
	}
}

// Activate anchors the countdown at the current wall-clock time and starts
// the tick loop. Activating an already-active timer re-anchors it.
func (t *Timer) Activate() {
	t.mu.Lock()
	t.anchor = t.clock.Now()
	t.fired = false
	alreadyActive := t.active
	t.active = true
	if !alreadyActive {
		t.done = make(chan struct{})
		go t.tickLoop(t.done)
	}
	t.mu.Unlock()
}

// Reset re-anchors the countdown mid-flight, restarting it for the next
// question. A non-positive duration keeps the original one.
func (t *Timer) Reset(duration time.Duration) {
	t.mu.Lock()
	if duration > 0 {
		t.duration = duration
	}
	t.anchor = t.clock.Now()
	t.fired = false
	wasActive := t.active
	t.active = true
	if !wasActive {
		t.done = make(chan struct{})
		go t.tickLoop(t.done)
	}
	t.mu.Unlock()
}

// Stop deactivates the timer and tears down the tick loop. A stale tick
// arriving after Stop never invokes the time-up callback.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	close(t.done)
	t.done = nil
	t.mu.Unlock()
}

// Remaining reports the seconds left, never negative
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked()
}

// Active reports whether the countdown is currently running
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Resync recomputes the remaining time immediately. Call it when the page
// regains visibility: the interval may not have fired while suspended, and
// the countdown may already be over.
func (t *Timer) Resync() {
	t.recompute()
}

func (t *Timer) tickLoop(done chan struct{}) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			t.recompute()
		}
	}
}

// recompute derives remaining from the anchor and fires the time-up
// callback at zero. The fired flag guards against double invocation when
// the interval tick and a visibility resync race each other.
func (t *Timer) recompute() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	remaining := t.remainingLocked()
	fire := remaining == 0 && !t.fired
	if fire {
		t.fired = true
	}
	onTick := t.onTick
	t.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if fire {
		log.Debug().Int("remaining", remaining).Msg("countdown reached zero")
		if t.onTimeUp != nil {
			t.onTimeUp()
		}
	}
}

func (t *Timer) remainingLocked() int {
	elapsed := t.clock.Now().Sub(t.anchor)
	remaining := int(t.duration/time.Second) - int(elapsed/time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}
