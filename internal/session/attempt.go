package session

import (
	"fmt"
	"time"
)

// AttemptsFor replays the log and returns the number of responses
// recorded for the question with the given id. It is the authoritative
// attempt count; the in-context counter is re-derived from it whenever a
// question is shown again.
func AttemptsFor[E, R any](events []AttemptEvent[E, R], id string) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == EventResponse && ev.QuestionID == id {
			n++
		}
	}
	return n
}

// CanAttempt reports whether another response may be submitted for the
// current question.
func (d *Definition[E, R]) CanAttempt(c Context[E, R]) bool {
	return c.Presented && c.AttemptCount < d.cfg.MaxAttemptsPerQuestion
}

// ShouldAdvance is true when the latest response was correct or the
// attempt budget for the current question is spent. Otherwise the same
// question is asked again.
func (d *Definition[E, R]) ShouldAdvance(c Context[E, R]) bool {
	if c.LastResult != nil && c.LastResult.Correct {
		return true
	}
	return c.AttemptCount >= d.cfg.MaxAttemptsPerQuestion
}

// Evaluate grades the pending response for the current question and
// appends it to the log. It also marks the primary pass complete when the
// last primary question is resolved outside skip-mode.
func (d *Definition[E, R]) Evaluate(c Context[E, R]) (Context[E, R], error) {
	p := c.pending
	if p == nil {
		return c, nil
	}
	id := d.cfg.QuestionID(c.Current)

	res, err := d.grade(c.Current, p.response)
	if err != nil {
		return c, fmt.Errorf("%w: question %q: %w", ErrGrading, id, err)
	}

	c.Events = appendEvent(c.Events, AttemptEvent[E, R]{
		Kind:          EventResponse,
		Question:      c.Current,
		QuestionID:    id,
		Result:        res,
		AttemptNumber: AttemptsFor(c.Events, id) + 1,
		Timestamp:     p.submittedAt,
		TimeSpent:     elapsed(c.AttemptStarted, p.submittedAt),
	})
	c.AttemptCount++
	c.LastResult = &res
	c.pending = nil

	if !c.SkipMode && c.Index >= d.lastIndex() && d.ShouldAdvance(c) {
		c.PrimaryDone = true
	}
	return c, nil
}

// RecordSkip logs a skip of the current question and queues it for a
// later revisit. The attempt count is left alone.
func (d *Definition[E, R]) RecordSkip(c Context[E, R], at time.Time) Context[E, R] {
	id := d.cfg.QuestionID(c.Current)
	c.Events = appendEvent(c.Events, AttemptEvent[E, R]{
		Kind:       EventSkip,
		Question:   c.Current,
		QuestionID: id,
		Timestamp:  at,
		TimeSpent:  elapsed(c.AttemptStarted, at),
	})
	c.Skipped = c.Skipped.Push(id, c.Current)
	return c
}

func (d *Definition[E, R]) grade(q E, r R) (res GradeResult[R], err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("grader panicked: %v", p)
		}
	}()
	return d.cfg.Grader(q, r)
}

func elapsed(from, to time.Time) time.Duration {
	if from.IsZero() || to.Before(from) {
		return 0
	}
	return to.Sub(from)
}
