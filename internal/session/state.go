package session

import (
	"slices"
	"strings"
	"time"

	"github.com/abhisek/timedquiz/internal/skipqueue"
)

// StateID names a node of the session state graph. Child states are
// written "parent.child".
type StateID string

const (
	StateStarting         StateID = "starting"
	StateInProgress       StateID = "inProgress"
	StateWaitingForAnswer StateID = "inProgress.waitingForAnswer"
	StateGrading          StateID = "inProgress.grading"
	StateSkipping         StateID = "inProgress.skipping"
	StateReviewing        StateID = "reviewing"
	StateCompleted        StateID = "completed"
)

// Parent returns the enclosing state, or "" for a top-level state.
func (s StateID) Parent() StateID {
	if i := strings.LastIndexByte(string(s), '.'); i >= 0 {
		return s[:i]
	}
	return ""
}

// Phase returns the top-level state containing s.
func (s StateID) Phase() StateID {
	if i := strings.IndexByte(string(s), '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// Matches reports whether s is other or a descendant of other.
func (s StateID) Matches(other StateID) bool {
	return s == other || strings.HasPrefix(string(s), string(other)+".")
}

// ReturnPoint is where the primary pass resumes after a revisit.
type ReturnPoint[E any] struct {
	Index    int
	Question E
}

// EventKind distinguishes the two attempt event variants.
type EventKind string

const (
	EventResponse EventKind = "response"
	EventSkip     EventKind = "skip"
)

// AttemptEvent is one entry of the append-only session log. Result and
// AttemptNumber are only set for responses.
type AttemptEvent[E, R any] struct {
	Kind          EventKind
	Question      E
	QuestionID    string
	Result        GradeResult[R]
	AttemptNumber int
	Timestamp     time.Time
	TimeSpent     time.Duration
}

// Context is the full mutable state of a session. Transition handlers
// take a Context by value and return the next one.
type Context[E, R any] struct {
	// Index is the position of the primary-order question. It never decreases.
	Index int

	// Current is the question on screen; only meaningful once Presented.
	Current   E
	Presented bool

	// AttemptCount is the number of responses logged for Current.
	AttemptCount int

	// SkipMode is true while Current is a revisit from the skip queue.
	SkipMode bool

	Skipped skipqueue.Queue[E]

	// Return is set while a revisit interrupts the primary pass.
	Return *ReturnPoint[E]

	// PrimaryDone is set once the primary order has been fully traversed
	// and is never cleared.
	PrimaryDone bool

	Remaining      time.Duration
	PhaseStarted   time.Time
	AttemptStarted time.Time

	Events    []AttemptEvent[E, R]
	Summaries []PhaseSummary

	// LastResult is the grade of the most recent response to Current.
	LastResult *GradeResult[R]

	pending    *pendingResponse[R]
	skipAsked  time.Time
	delayToken int
}

type pendingResponse[R any] struct {
	response    R
	submittedAt time.Time
}

func appendEvent[E, R any](events []AttemptEvent[E, R], ev AttemptEvent[E, R]) []AttemptEvent[E, R] {
	return append(slices.Clip(events), ev)
}

// State is a position in the graph plus its context.
type State[E, R any] struct {
	Value   StateID
	Context Context[E, R]

	// Err is set when the session failed; no further input is accepted.
	Err error
}

// Done reports whether the session accepts no more input.
func (s State[E, R]) Done() bool {
	return s.Value == StateCompleted || s.Err != nil
}
