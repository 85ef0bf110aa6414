package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/timedquiz/internal/timer"
)

// inboxSize bounds the number of inputs queued ahead of the machine.
const inboxSize = 64

// Machine runs a session. Commands and timer events go through a single
// inbox and are applied one at a time by the goroutine that calls Run;
// timers and the grading delay only ever enqueue.
type Machine[E, R any] struct {
	def *Definition[E, R]
	log Logger

	inbox   chan Input[E, R]
	done    chan struct{}
	running atomic.Bool
	snap    atomic.Pointer[Snapshot[E, R]]

	mu     sync.Mutex
	subs   []chan Snapshot[E, R]
	closed bool
	err    error

	// Owned by the Run goroutine.
	state    State[E, R]
	timers   map[TimerSlot]*timer.Timer
	timerSeq int
	delay    *time.Timer
}

// New validates cfg and returns a machine in the Starting state. Call Run
// to begin processing.
func New[E, R any](cfg Config[E, R]) (*Machine[E, R], error) {
	def, err := NewDefinition(cfg)
	if err != nil {
		return nil, err
	}
	m := &Machine[E, R]{
		def:    def,
		log:    def.cfg.Logger,
		inbox:  make(chan Input[E, R], inboxSize),
		done:   make(chan struct{}),
		state:  def.Initial(),
		timers: make(map[TimerSlot]*timer.Timer),
	}
	snap := def.Snapshot(m.state)
	m.snap.Store(&snap)
	return m, nil
}

// ID returns the session id.
func (m *Machine[E, R]) ID() string { return m.def.cfg.SessionID }

// Definition returns the state chart the machine runs.
func (m *Machine[E, R]) Definition() *Definition[E, R] { return m.def }

// Run processes inputs until the session completes, fails or ctx is
// cancelled. It returns nil on completion, the fatal session error on
// failure and ctx.Err() on cancellation.
func (m *Machine[E, R]) Run(ctx context.Context) (err error) {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() { m.shutdown(err) }()

	cfg := m.def.cfg
	m.log.Info("session ready", "session", cfg.SessionID, "questions", len(cfg.Questions),
		"max_attempts", cfg.MaxAttemptsPerQuestion, "attempt_duration", cfg.AttemptDuration,
		"review_duration", cfg.ReviewDuration)

	for {
		select {
		case <-ctx.Done():
			m.log.Info("session cancelled", "session", cfg.SessionID, "state", m.state.Value)
			return ctx.Err()
		case in := <-m.inbox:
			if m.stale(in) {
				continue
			}
			prev := m.state.Value
			next, effects, terr := m.def.Transition(m.state, in, cfg.Now())
			m.state = next
			terminate := m.apply(effects)
			if next.Value.Phase() != prev.Phase() {
				m.log.Info("phase changed", "session", cfg.SessionID, "from", prev.Phase(), "to", next.Value.Phase())
			}
			m.publish(m.def.Snapshot(next))
			if terr != nil {
				return terr
			}
			if terminate {
				m.log.Info("session completed", "session", cfg.SessionID, "events", len(next.Context.Events))
				return nil
			}
		}
	}
}

// Send enqueues a caller command. It blocks only while the inbox is full.
func (m *Machine[E, R]) Send(ctx context.Context, cmd Command[E, R]) error {
	if !cmd.Kind.IsCommand() {
		return fmt.Errorf("%w: %q", ErrNotACommand, cmd.Kind)
	}
	select {
	case <-m.done:
		return ErrStopped
	default:
	}
	select {
	case m.inbox <- CommandInput(cmd):
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Machine[E, R]) Start(ctx context.Context) error {
	return m.Send(ctx, Start[E, R]())
}

func (m *Machine[E, R]) SubmitAnswer(ctx context.Context, response R) error {
	return m.Send(ctx, SubmitAnswer[E](response))
}

func (m *Machine[E, R]) SubmitAnswerFor(ctx context.Context, q E, response R) error {
	return m.Send(ctx, SubmitAnswerFor(q, response))
}

func (m *Machine[E, R]) Skip(ctx context.Context) error {
	return m.Send(ctx, Skip[E, R]())
}

func (m *Machine[E, R]) ConfirmSkip(ctx context.Context) error {
	return m.Send(ctx, ConfirmSkip[E, R]())
}

func (m *Machine[E, R]) RejectSkip(ctx context.Context) error {
	return m.Send(ctx, RejectSkip[E, R]())
}

func (m *Machine[E, R]) GotoReview(ctx context.Context) error {
	return m.Send(ctx, GotoReview[E, R]())
}

func (m *Machine[E, R]) ForceReview(ctx context.Context) error {
	return m.Send(ctx, ForceReview[E, R]())
}

func (m *Machine[E, R]) GotoSkipped(ctx context.Context, questionID string) error {
	return m.Send(ctx, GotoSkipped[E, R](questionID))
}

func (m *Machine[E, R]) CompleteReview(ctx context.Context) error {
	return m.Send(ctx, CompleteReview[E, R]())
}

func (m *Machine[E, R]) CompleteAssessment(ctx context.Context) error {
	return m.Send(ctx, CompleteAssessment[E, R]())
}

// Snapshot returns the state as of the last processed input.
func (m *Machine[E, R]) Snapshot() Snapshot[E, R] {
	return *m.snap.Load()
}

// Subscribe returns a channel carrying the latest snapshot after every
// processed input. A slow reader only misses intermediate snapshots. The
// channel is closed once the machine stops.
func (m *Machine[E, R]) Subscribe() <-chan Snapshot[E, R] {
	ch := make(chan Snapshot[E, R], 1)

	m.mu.Lock()
	defer m.mu.Unlock()
	ch <- m.Snapshot()
	if m.closed {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// Done is closed when Run returns.
func (m *Machine[E, R]) Done() <-chan struct{} { return m.done }

// Err returns the error Run ended with, if any.
func (m *Machine[E, R]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// stale drops timer events from a timer that is no longer the current
// one for its slot.
func (m *Machine[E, R]) stale(in Input[E, R]) bool {
	if in.Kind != EvTimerProgress && in.Kind != EvTimerDeadline {
		return false
	}
	t := m.timers[in.Slot]
	if t != nil && t.ID() == in.TimerID {
		return false
	}
	m.log.Debug("stale timer event dropped", "session", m.def.cfg.SessionID, "timer", in.TimerID, "kind", in.Kind)
	return true
}

// apply executes effects in order and reports whether the session ended.
func (m *Machine[E, R]) apply(effects []Effect) (terminate bool) {
	for _, eff := range effects {
		switch eff.Kind {
		case EffectStartTimer:
			m.stopTimer(eff.Slot)
			m.timerSeq++
			id := fmt.Sprintf("%s-%s-%d", m.def.cfg.SessionID, eff.Slot, m.timerSeq)
			m.timers[eff.Slot] = timer.Start(id, eff.Duration, m.deliverer(eff.Slot),
				timer.WithInterval(m.def.cfg.TickInterval),
				timer.WithClock(m.def.cfg.Now))
		case EffectPauseTimer:
			if t := m.timers[eff.Slot]; t != nil {
				t.Pause()
			}
		case EffectResumeTimer:
			if t := m.timers[eff.Slot]; t != nil {
				t.Resume()
			}
		case EffectStopTimer:
			m.stopTimer(eff.Slot)
		case EffectScheduleDelay:
			m.cancelDelay()
			token := eff.Token
			m.delay = time.AfterFunc(eff.Duration, func() {
				m.enqueue(DelayInput[E, R](token))
			})
		case EffectCancelDelay:
			m.cancelDelay()
		case EffectTerminate:
			terminate = true
		}
	}
	return terminate
}

func (m *Machine[E, R]) deliverer(slot TimerSlot) func(timer.Event) {
	return func(ev timer.Event) {
		kind := EvTimerProgress
		if ev.Kind == timer.Deadline {
			kind = EvTimerDeadline
		}
		in := TimerInput[E, R](kind, slot, ev.Remaining)
		in.TimerID = ev.TimerID
		m.enqueue(in)
	}
}

// enqueue hands an internal event to the inbox unless the machine stopped.
func (m *Machine[E, R]) enqueue(in Input[E, R]) {
	select {
	case m.inbox <- in:
	case <-m.done:
	}
}

func (m *Machine[E, R]) stopTimer(slot TimerSlot) {
	if t := m.timers[slot]; t != nil {
		t.Stop()
		delete(m.timers, slot)
	}
}

func (m *Machine[E, R]) cancelDelay() {
	if m.delay != nil {
		m.delay.Stop()
		m.delay = nil
	}
}

func (m *Machine[E, R]) publish(s Snapshot[E, R]) {
	m.snap.Store(&s)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (m *Machine[E, R]) shutdown(err error) {
	for slot := range m.timers {
		m.stopTimer(slot)
	}
	m.cancelDelay()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.closed = true
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
	close(m.done)
}
