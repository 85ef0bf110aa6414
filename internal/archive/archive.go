// Package archive copies the log of a finished session into the store.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/timedquiz/internal/session"
	"github.com/abhisek/timedquiz/internal/store"
)

// Sink receives finished sessions. *store.Store implements it.
type Sink interface {
	ArchiveSession(ctx context.Context, a store.SessionArchive) error
}

// Options label the archived session.
type Options[R any] struct {
	Bank  string
	Title string

	// Format renders responses and expected answers. Defaults to fmt.Sprint.
	Format func(R) string

	Logger *slog.Logger
	Now    func() time.Time
}

// Recorder remembers submitted responses, which the session log does not
// carry, so archived attempts can show what was answered. Hook it into the
// session with ResponseLogger.
type Recorder[E, R any] struct {
	id func(E) string

	mu        sync.Mutex
	responses map[string][]R
}

func NewRecorder[E, R any](id func(E) string) *Recorder[E, R] {
	return &Recorder[E, R]{id: id, responses: make(map[string][]R)}
}

// ResponseLogger returns a session.Config ResponseLogger that records the
// response and then calls next, if any.
func (r *Recorder[E, R]) ResponseLogger(next func(E, R)) func(E, R) {
	return func(q E, resp R) {
		r.mu.Lock()
		id := r.id(q)
		r.responses[id] = append(r.responses[id], resp)
		r.mu.Unlock()
		if next != nil {
			next(q, resp)
		}
	}
}

// response returns the n-th (1-based) response to question id.
func (r *Recorder[E, R]) response(id string, n int) (R, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero R
	list := r.responses[id]
	if n < 1 || n > len(list) {
		return zero, false
	}
	return list[n-1], true
}

// Watch follows m until it stops and archives the final state into sink.
// Sessions that never started are not archived. It returns the archive
// error, if any; the session's own error is recorded, not returned.
func Watch[E, R any](ctx context.Context, m *session.Machine[E, R], rec *Recorder[E, R], sink Sink, opts Options[R]) error {
	opts = opts.withDefaults()

	var started time.Time
	for snap := range m.Subscribe() {
		if started.IsZero() && !snap.Is(session.StateStarting) {
			started = opts.Now()
		}
	}
	if started.IsZero() {
		opts.Logger.Debug("session not archived, never started", "session", m.ID())
		return nil
	}

	a := Build(m.Snapshot(), m.Err(), rec, opts)
	a.Session.StartedAt = started
	if err := sink.ArchiveSession(ctx, a); err != nil {
		opts.Logger.Error("archive session", "session", m.ID(), "err", err)
		return fmt.Errorf("archive session %s: %w", m.ID(), err)
	}
	opts.Logger.Info("session archived", "session", m.ID(), "outcome", a.Session.Outcome, "attempts", len(a.Attempts))
	return nil
}

// Build converts a final snapshot into an archive record. StartedAt is
// left for the caller; EndedAt is opts.Now().
func Build[E, R any](snap session.Snapshot[E, R], runErr error, rec *Recorder[E, R], opts Options[R]) store.SessionArchive {
	opts = opts.withDefaults()

	a := store.SessionArchive{
		Session: store.SessionRecord{
			SessionID:      snap.SessionID,
			Bank:           opts.Bank,
			Title:          opts.Title,
			Outcome:        Outcome(runErr),
			TotalQuestions: snap.Total,
			EndedAt:        opts.Now(),
		},
	}
	if runErr != nil {
		a.Session.Error = runErr.Error()
	}

	for _, ev := range snap.Events {
		at := store.AttemptRecord{
			QuestionID: ev.QuestionID,
			Kind:       string(ev.Kind),
			TimeSpent:  ev.TimeSpent,
			OccurredAt: ev.Timestamp,
		}
		if ev.Kind == session.EventResponse {
			at.AttemptNumber = ev.AttemptNumber
			at.Correct = ev.Result.Correct
			if ev.Result.Payload != nil {
				at.Expected = opts.Format(*ev.Result.Payload)
			}
			if rec != nil {
				if resp, ok := rec.response(ev.QuestionID, ev.AttemptNumber); ok {
					at.Response = opts.Format(resp)
				}
			}
		}
		a.Attempts = append(a.Attempts, at)
	}

	for _, s := range snap.Summaries {
		a.Phases = append(a.Phases, store.PhaseRecord{
			Phase:     string(s.Phase),
			Attempted: s.Attempted,
			Skipped:   s.Skipped,
			Correct:   s.Correct,
			Incorrect: s.Incorrect,
			TimeSpent: s.TimeSpent,
		})
	}
	return a
}

// Outcome classifies the error a session ended with.
func Outcome(err error) string {
	switch {
	case err == nil:
		return store.OutcomeCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return store.OutcomeCancelled
	default:
		return store.OutcomeFailed
	}
}

func (o Options[R]) withDefaults() Options[R] {
	if o.Format == nil {
		o.Format = func(r R) string { return fmt.Sprint(r) }
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
