package session

import (
	"testing"
	"time"
)

func TestSummarize_LatestOutcomePerQuestion(t *testing.T) {
	events := []AttemptEvent[question, string]{
		{Kind: EventSkip, QuestionID: "q1"},
		{Kind: EventResponse, QuestionID: "q2", Result: GradeResult[string]{Correct: false}},
		{Kind: EventResponse, QuestionID: "q2", Result: GradeResult[string]{Correct: true}},
		{Kind: EventResponse, QuestionID: "q3", Result: GradeResult[string]{Correct: true}},
		{Kind: EventResponse, QuestionID: "q3", Result: GradeResult[string]{Correct: false}},
		{Kind: EventResponse, QuestionID: "q4", Result: GradeResult[string]{Correct: true}},
		{Kind: EventSkip, QuestionID: "q4"},
	}

	got := Summarize(StateInProgress, events, 90*time.Second)
	want := PhaseSummary{
		Phase:     StateInProgress,
		Attempted: 3,
		Skipped:   2,
		Correct:   2,
		Incorrect: 1,
		TimeSpent: 90 * time.Second,
	}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize[question, string](StateReviewing, nil, -time.Second)
	if got != (PhaseSummary{Phase: StateReviewing}) {
		t.Errorf("Summarize(nil) = %+v, want zero counts", got)
	}
	if got.Accuracy() != 0 {
		t.Errorf("Accuracy = %f, want 0", got.Accuracy())
	}
}

func TestPhaseSummary_Accuracy(t *testing.T) {
	s := PhaseSummary{Correct: 3, Incorrect: 1}
	if s.Accuracy() != 0.75 {
		t.Errorf("Accuracy = %f, want 0.75", s.Accuracy())
	}
}
