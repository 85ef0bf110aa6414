package summary

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/session"
	"github.com/abhisek/timedquiz/internal/ui/theme"
)

// Status is where a question stands after the session log is replayed.
type Status int

const (
	NotReached Status = iota
	Skipped
	Correct
	Incorrect
)

// Result is the outcome of one bank question.
type Result struct {
	Question bank.Question
	Status   Status
	Attempts int
}

// Tally replays events into one Result per question, in bank order. The
// latest event decides the status, as in session.Summarize.
func Tally(questions []bank.Question, events []session.AttemptEvent[bank.Question, string]) []Result {
	byID := make(map[string]*Result, len(questions))
	out := make([]Result, len(questions))
	for i, q := range questions {
		out[i] = Result{Question: q}
		byID[q.ID] = &out[i]
	}
	for _, ev := range events {
		r, ok := byID[ev.QuestionID]
		if !ok {
			continue
		}
		switch {
		case ev.Kind == session.EventSkip:
			r.Status = Skipped
		case ev.Result.Correct:
			r.Status = Correct
			r.Attempts++
		default:
			r.Status = Incorrect
			r.Attempts++
		}
	}
	return out
}

// RenderResults lists every question with its status. Correct answers and
// explanations are included, so only call it once answering is over.
func RenderResults(results []Result, width int) string {
	textWidth := max(min(width-8, 90), 20)
	body := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text)
	dim := lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim)

	var b strings.Builder
	for i, r := range results {
		mark, style := "·", lipgloss.NewStyle().Foreground(theme.TextDim)
		switch r.Status {
		case Correct:
			mark, style = "✓", theme.Correct
		case Incorrect:
			mark, style = "✗", theme.Incorrect
		case Skipped:
			mark, style = "↷", theme.Skipped
		}

		b.WriteString(style.Render(fmt.Sprintf("%s %2d. ", mark, i+1)))
		b.WriteString(body.Render(r.Question.Prompt))
		b.WriteString("\n")

		detail := "Answer: " + r.Question.Answer
		if r.Attempts > 1 {
			detail += fmt.Sprintf("  (%d attempts)", r.Attempts)
		}
		b.WriteString("      " + dim.Render(detail) + "\n")
		if r.Question.Explanation != "" && r.Status != Correct {
			b.WriteString("      " + dim.Render(r.Question.Explanation) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
