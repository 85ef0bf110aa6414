// Package bank loads, validates and grades question banks: YAML or JSON
// files holding the ordered questions of a timed session.
package bank

import "time"

// CurrentVersion is written into banks produced by this tool. Banks with
// any v1.x.y version can be read.
const CurrentVersion = "1.0.0"

// Bank is a question bank file.
type Bank struct {
	Version   string     `json:"version" yaml:"version"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Topic     string     `json:"topic,omitempty" yaml:"topic,omitempty"`
	Settings  Settings   `json:"settings" yaml:"settings,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Settings are per-bank session defaults. Zero values fall back to the
// player's configuration.
type Settings struct {
	MaxAttempts    int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	AttemptSeconds int `json:"attempt_seconds,omitempty" yaml:"attempt_seconds,omitempty"`
	ReviewSeconds  int `json:"review_seconds,omitempty" yaml:"review_seconds,omitempty"`
}

// AttemptDuration returns the assessment budget, or 0 if unset.
func (s Settings) AttemptDuration() time.Duration {
	return time.Duration(s.AttemptSeconds) * time.Second
}

// ReviewDuration returns the review budget, or 0 if unset.
func (s Settings) ReviewDuration() time.Duration {
	return time.Duration(s.ReviewSeconds) * time.Second
}

// Question is one bank entry.
type Question struct {
	// ID identifies the question within its bank.
	ID string `json:"id" yaml:"id"`

	// Prompt is the text shown to the learner.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Format is how the learner answers. Defaults to multiple choice when
	// Choices is set and to free text otherwise.
	Format Format `json:"format,omitempty" yaml:"format,omitempty"`

	// AnswerType controls answer normalisation. Defaults to text.
	AnswerType AnswerType `json:"answer_type,omitempty" yaml:"answer_type,omitempty"`

	// Choices is populated only for multiple choice questions. One of
	// them matches Answer.
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`

	// Answer is the canonical correct answer.
	Answer string `json:"answer" yaml:"answer"`

	Hint        string `json:"hint,omitempty" yaml:"hint,omitempty"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// QuestionID is the session identity function for bank questions.
func QuestionID(q Question) string { return q.ID }

// Format describes how the learner provides their answer.
type Format string

const (
	FormatFreeText       Format = "free_text"
	FormatMultipleChoice Format = "multiple_choice"
)

// AnswerType describes how an answer is normalised before comparison.
type AnswerType string

const (
	AnswerTypeText     AnswerType = "text"     // case and whitespace insensitive
	AnswerTypeInteger  AnswerType = "integer"  // e.g. "623", "-15"
	AnswerTypeDecimal  AnswerType = "decimal"  // e.g. "3.75", "0.5"
	AnswerTypeFraction AnswerType = "fraction" // e.g. "3/4", "7/2"
)

// normalize fills in defaulted fields.
func (b *Bank) normalize() {
	for i := range b.Questions {
		b.Questions[i].Normalize()
	}
}

// Normalize fills in the defaulted Format and AnswerType.
func (q *Question) Normalize() {
	if q.Format == "" {
		if len(q.Choices) > 0 {
			q.Format = FormatMultipleChoice
		} else {
			q.Format = FormatFreeText
		}
	}
	if q.AnswerType == "" {
		q.AnswerType = AnswerTypeText
	}
}
