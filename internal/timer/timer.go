// Package timer implements the countdown that drives session timeouts.
//
// A Timer runs on its own goroutine and reports to its owner through a
// deliver callback: a Progress event every interval carrying the
// remaining time, and a single Deadline event once the remaining time
// reaches zero. Remaining time is measured from wall-clock deltas, so
// scheduler jitter never accumulates and a pause freezes the exact
// remaining budget.
package timer

import (
	"sync"
	"time"
)

// DefaultInterval is the progress cadence.
const DefaultInterval = time.Second

// Kind distinguishes progress reports from the terminal deadline.
type Kind int

const (
	Progress Kind = iota
	Deadline
)

func (k Kind) String() string {
	if k == Deadline {
		return "deadline"
	}
	return "progress"
}

// Event is emitted by a running Timer.
type Event struct {
	TimerID   string
	Kind      Kind
	Remaining time.Duration // never negative
	At        time.Time
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides the progress cadence.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock overrides the wall clock used for remaining-time accounting.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		if now != nil {
			t.now = now
		}
	}
}

// Timer is a pausable countdown. All methods are safe for concurrent use
// and none of them block.
type Timer struct {
	id       string
	interval time.Duration
	now      func() time.Time
	deliver  func(Event)

	mu        sync.Mutex
	remaining time.Duration // as of lastMark
	lastMark  time.Time
	paused    bool
	finished  bool

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start launches a countdown of d identified by id. deliver is called
// from the timer goroutine, one event at a time; it should hand the
// event to the owner's queue and return.
func Start(id string, d time.Duration, deliver func(Event), opts ...Option) *Timer {
	t := &Timer{
		id:        id,
		interval:  DefaultInterval,
		now:       time.Now,
		deliver:   deliver,
		remaining: d,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.lastMark = t.now()

	go t.run()
	return t
}

// ID returns the identifier carried by every event of this timer.
func (t *Timer) ID() string {
	return t.id
}

// Pause freezes the remaining time and suspends progress events.
func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.paused && !t.finished {
		now := t.now()
		t.remaining -= now.Sub(t.lastMark)
		t.lastMark = now
		t.paused = true
	}
	t.mu.Unlock()
	t.notify()
}

// Resume restarts the cadence from the frozen remaining time.
func (t *Timer) Resume() {
	t.mu.Lock()
	if t.paused && !t.finished {
		t.paused = false
		t.lastMark = t.now()
	}
	t.mu.Unlock()
	t.notify()
}

// Stop terminates the timer permanently. An event already handed to
// deliver may still reach the owner; owners discard events by TimerID.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.finished && !t.paused {
		now := t.now()
		t.remaining -= now.Sub(t.lastMark)
		t.lastMark = now
	}
	t.finished = true
	t.mu.Unlock()
	t.stopOnce.Do(func() { close(t.done) })
}

// Paused reports whether the timer is currently paused.
func (t *Timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Remaining returns the remaining time as of now, clamped at zero.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	rem := t.remaining
	if !t.paused && !t.finished {
		rem -= t.now().Sub(t.lastMark)
	}
	return clamp(rem)
}

func (t *Timer) run() {
	clock := time.NewTimer(t.nextWait())
	defer clock.Stop()

	for {
		if t.Paused() {
			clock.Stop()
			select {
			case <-t.wake:
				clock.Reset(t.nextWait())
				continue
			case <-t.done:
				return
			}
		}

		select {
		case <-t.done:
			return
		case <-t.wake:
			continue
		case <-clock.C:
		}

		ev, ok := t.tick()
		if !ok {
			continue
		}
		select {
		case <-t.done:
			return
		default:
		}
		t.deliver(ev)
		if ev.Kind == Deadline {
			t.stopOnce.Do(func() { close(t.done) })
			return
		}
		clock.Reset(t.nextWait())
	}
}

// tick advances the countdown to now. ok is false if the timer was paused
// or stopped after the clock fired.
func (t *Timer) tick() (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused || t.finished {
		return Event{}, false
	}

	now := t.now()
	t.remaining -= now.Sub(t.lastMark)
	t.lastMark = now

	ev := Event{TimerID: t.id, Kind: Progress, Remaining: clamp(t.remaining), At: now}
	if t.remaining <= 0 {
		t.finished = true
		ev.Kind = Deadline
	}
	return ev, true
}

// nextWait is the time until the next progress report or the deadline,
// whichever comes first.
func (t *Timer) nextWait() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := t.interval
	if t.remaining < w {
		w = t.remaining
	}
	if w < 0 {
		w = 0
	}
	return w
}

func (t *Timer) notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
