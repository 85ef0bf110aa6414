package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/timedquiz/internal/bank"
)

// Validator checks one generated question.
type Validator interface {
	Name() string
	Validate(q bank.Question, in Input) *ValidationError
}

// ValidationError says why a question was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator enforces length limits and the requested format.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q bank.Question, in Input) *ValidationError {
	fail := func(msg string) *ValidationError { return &ValidationError{Validator: v.Name(), Message: msg} }

	switch {
	case strings.TrimSpace(q.Prompt) == "":
		return fail("prompt is empty")
	case len(q.Prompt) > 500:
		return fail("prompt exceeds 500 characters")
	case len(q.Answer) > 100:
		return fail("answer exceeds 100 characters")
	case len(q.Explanation) > 1000:
		return fail("explanation exceeds 1000 characters")
	case in.Format != "" && q.Format != in.Format:
		return fail(fmt.Sprintf("format %q, want %q", q.Format, in.Format))
	case q.Format == bank.FormatMultipleChoice && len(q.Choices) > 6:
		return fail("more than 6 choices")
	}
	return nil
}

// ConsistencyValidator applies the bank's own question checks, so every
// generated question loads back from disk.
type ConsistencyValidator struct{}

func (v *ConsistencyValidator) Name() string { return "consistency" }

func (v *ConsistencyValidator) Validate(q bank.Question, _ Input) *ValidationError {
	if err := bank.ValidateQuestion(q); err != nil {
		return &ValidationError{Validator: v.Name(), Message: err.Message}
	}
	return nil
}
