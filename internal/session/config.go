package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultDelayBetweenAttempts is how long grading feedback stays on screen
// before the next question is shown. The assessment timer is paused for
// the whole window.
const DefaultDelayBetweenAttempts = 1000 * time.Millisecond

// DefaultTickInterval is the cadence of remaining-time updates.
const DefaultTickInterval = time.Second

// GradeResult is what a Grader says about one response.
type GradeResult[R any] struct {
	Correct bool
	Payload *R
}

// Grader scores a response to a question. It must not fail for
// well-formed input: an error (or panic) ends the session with ErrGrading.
type Grader[E, R any] func(question E, response R) (GradeResult[R], error)

// Logger is the structured logger the machine reports to. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config describes one session. Questions, Grader, QuestionID,
// ResponseLogger, Logger, MaxAttemptsPerQuestion and both durations are
// required.
type Config[E, R any] struct {
	// Questions is the primary order.
	Questions []E

	// Grader scores each submitted response.
	Grader Grader[E, R]

	// QuestionID returns the identity of a question. Ids must be unique
	// within Questions.
	QuestionID func(E) string

	// ResponseLogger is told about every submitted response before grading.
	ResponseLogger func(E, R)

	// MaxAttemptsPerQuestion caps answer submissions per question.
	MaxAttemptsPerQuestion int

	// AttemptDuration is the time budget of the in-progress phase.
	AttemptDuration time.Duration

	// ReviewDuration is the time budget of the review phase.
	ReviewDuration time.Duration

	Logger Logger

	// DelayBetweenAttempts is the grading feedback window. Default: 1s.
	DelayBetweenAttempts time.Duration

	// TickInterval is the timer progress cadence. Default: 1s.
	TickInterval time.Duration

	// SessionID labels snapshots and log lines. Default: a new UUID.
	SessionID string

	// Now is the wall clock. Default: time.Now.
	Now func() time.Time
}

func (c Config[E, R]) withDefaults() Config[E, R] {
	if c.DelayBetweenAttempts <= 0 {
		c.DelayBetweenAttempts = DefaultDelayBetweenAttempts
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.SessionID == "" {
		c.SessionID = uuid.New().String()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Validate reports every configuration problem, wrapped in ErrInvalidConfig.
func (c Config[E, R]) Validate() error {
	var errs []error
	if len(c.Questions) == 0 {
		errs = append(errs, errors.New("at least one question is required"))
	}
	if c.Grader == nil {
		errs = append(errs, errors.New("grader is required"))
	}
	if c.QuestionID == nil {
		errs = append(errs, errors.New("question identifier is required"))
	}
	if c.ResponseLogger == nil {
		errs = append(errs, errors.New("response logger is required"))
	}
	if c.Logger == nil {
		errs = append(errs, errors.New("logger is required"))
	}
	if c.MaxAttemptsPerQuestion < 1 {
		errs = append(errs, fmt.Errorf("max attempts per question must be at least 1, got %d", c.MaxAttemptsPerQuestion))
	}
	if c.AttemptDuration <= 0 {
		errs = append(errs, fmt.Errorf("attempt duration must be positive, got %s", c.AttemptDuration))
	}
	if c.ReviewDuration <= 0 {
		errs = append(errs, fmt.Errorf("review duration must be positive, got %s", c.ReviewDuration))
	}
	if c.QuestionID != nil {
		seen := make(map[string]int, len(c.Questions))
		for i, q := range c.Questions {
			id := c.QuestionID(q)
			if prev, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("questions %d and %d share id %q", prev, i, id))
				continue
			}
			seen[id] = i
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
