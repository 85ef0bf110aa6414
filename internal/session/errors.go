package session

import "errors"

var (
	// ErrInvalidConfig wraps every problem reported by Config.Validate.
	ErrInvalidConfig = errors.New("invalid session config")

	// ErrGrading is fatal: the grader failed, so correctness bookkeeping
	// for the session is undefined.
	ErrGrading = errors.New("grading failed")

	// ErrStopped is returned when sending to a machine that is no longer running.
	ErrStopped = errors.New("session stopped")

	// ErrAlreadyRunning is returned by a second call to Machine.Run.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrNotACommand is returned by Send for inputs outside the command surface.
	ErrNotACommand = errors.New("not a session command")
)
