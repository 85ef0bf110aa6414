package session

import "time"

// PhaseSummary holds the statistics computed when a top-level phase is
// exited. Question counts are cumulative over the session log and
// de-duplicated by question id; TimeSpent covers the phase only.
// Attempted counts questions with at least one response.
type PhaseSummary struct {
	Phase     StateID
	Attempted int
	Skipped   int
	Correct   int
	Incorrect int
	TimeSpent time.Duration
}

// Accuracy is Correct over answered questions, or 0 when nothing was answered.
func (s PhaseSummary) Accuracy() float64 {
	answered := s.Correct + s.Incorrect
	if answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(answered)
}

// Summarize builds a PhaseSummary from the log. A question counts as
// skipped when its most recent event is a skip, and as correct or
// incorrect by its most recent response.
func Summarize[E, R any](phase StateID, events []AttemptEvent[E, R], spent time.Duration) PhaseSummary {
	type tally struct {
		lastKind    EventKind
		answered    bool
		lastCorrect bool
	}

	order := make([]string, 0, len(events))
	byID := make(map[string]*tally, len(events))
	for _, ev := range events {
		t, ok := byID[ev.QuestionID]
		if !ok {
			t = &tally{}
			byID[ev.QuestionID] = t
			order = append(order, ev.QuestionID)
		}
		t.lastKind = ev.Kind
		if ev.Kind == EventResponse {
			t.answered = true
			t.lastCorrect = ev.Result.Correct
		}
	}

	s := PhaseSummary{Phase: phase, TimeSpent: max(spent, 0)}
	for _, id := range order {
		t := byID[id]
		if t.lastKind == EventSkip {
			s.Skipped++
		}
		if !t.answered {
			continue
		}
		s.Attempted++
		if t.lastCorrect {
			s.Correct++
		} else {
			s.Incorrect++
		}
	}
	return s
}
