package session

import (
	"slices"
	"time"
)

// Snapshot is a read-only projection of a session. It shares no mutable
// memory with the running machine.
type Snapshot[E, R any] struct {
	SessionID string

	// State is the active leaf; Phase its top-level ancestor.
	State StateID
	Phase StateID

	// Question is meaningful only when HasQuestion is set.
	Question    E
	HasQuestion bool
	Index       int
	Total       int

	Remaining    time.Duration
	AttemptCount int
	MaxAttempts  int

	SkipMode   bool
	Skipped    []E
	SkippedIDs []string

	PrimaryDone bool
	LastResult  *GradeResult[R]

	Events    []AttemptEvent[E, R]
	Summaries []PhaseSummary

	Err error
}

// Done reports whether the session has ended, normally or not.
func (s Snapshot[E, R]) Done() bool {
	return s.State == StateCompleted || s.Err != nil
}

// Is reports whether the session is in state id or one of its children.
func (s Snapshot[E, R]) Is(id StateID) bool {
	return s.State.Matches(id)
}

// Snapshot projects s.
func (d *Definition[E, R]) Snapshot(s State[E, R]) Snapshot[E, R] {
	c := s.Context
	snap := Snapshot[E, R]{
		SessionID:    d.cfg.SessionID,
		State:        s.Value,
		Phase:        s.Value.Phase(),
		Question:     c.Current,
		HasQuestion:  c.Presented,
		Index:        c.Index,
		Total:        len(d.cfg.Questions),
		Remaining:    max(c.Remaining, 0),
		AttemptCount: c.AttemptCount,
		MaxAttempts:  d.cfg.MaxAttemptsPerQuestion,
		SkipMode:     c.SkipMode,
		Skipped:      c.Skipped.Items(),
		SkippedIDs:   c.Skipped.IDs(),
		PrimaryDone:  c.PrimaryDone,
		Events:       slices.Clone(c.Events),
		Summaries:    slices.Clone(c.Summaries),
		Err:          s.Err,
	}
	if c.LastResult != nil {
		r := *c.LastResult
		snap.LastResult = &r
	}
	return snap
}
