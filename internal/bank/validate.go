package bank

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes one inconsistent question.
type ValidationError struct {
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %q: %s", e.QuestionID, e.Message)
}

// Validate checks what the schema cannot express: unique ids, answers
// that parse as their declared type, and multiple choice answers that
// match exactly one choice. All problems are reported, wrapped in
// ErrInvalidBank.
func (b *Bank) Validate() error {
	var errs []error
	if len(b.Questions) == 0 {
		errs = append(errs, errors.New("no questions"))
	}
	seen := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		if seen[q.ID] {
			errs = append(errs, &ValidationError{QuestionID: q.ID, Message: "duplicate id"})
		}
		seen[q.ID] = true
		if err := ValidateQuestion(q); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidBank, errors.Join(errs...))
}

// ValidateQuestion checks a single question.
func ValidateQuestion(q Question) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(q.ID) == "" {
		return fail("id is empty")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fail("prompt is empty")
	}
	if _, err := normalizeAnswer(q.Answer, q.AnswerType); err != nil || strings.TrimSpace(q.Answer) == "" {
		return fail("answer %q is not a valid %s", q.Answer, q.AnswerType)
	}

	switch q.Format {
	case FormatFreeText:
		if len(q.Choices) > 0 {
			return fail("free_text questions take no choices")
		}
	case FormatMultipleChoice:
		if len(q.Choices) < 2 {
			return fail("multiple choice needs at least 2 choices, got %d", len(q.Choices))
		}
		distinct := make(map[string]bool, len(q.Choices))
		matches := 0
		want, _ := normalizeAnswer(q.Answer, q.AnswerType)
		for i, c := range q.Choices {
			key := strings.ToLower(strings.TrimSpace(c))
			if key == "" {
				return fail("choice %d is empty", i+1)
			}
			if distinct[key] {
				return fail("duplicate choice %q", c)
			}
			distinct[key] = true
			if got, err := normalizeAnswer(c, q.AnswerType); err == nil && got == want {
				matches++
			}
		}
		if matches != 1 {
			return fail("answer %q must match exactly one choice, matched %d", q.Answer, matches)
		}
	default:
		return fail("unknown format %q", q.Format)
	}
	return nil
}
