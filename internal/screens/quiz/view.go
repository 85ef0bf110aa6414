package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/session"
	"github.com/abhisek/timedquiz/internal/ui/components"
	"github.com/abhisek/timedquiz/internal/ui/layout"
	"github.com/abhisek/timedquiz/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.snap.Is(session.StateStarting):
		return s.renderIntro(width)
	case s.snap.Is(session.StateReviewing):
		return s.renderReview(width)
	case s.snap.Is(session.StateInProgress):
		return s.renderQuestion(width)
	}
	return centered(width).Foreground(theme.TextDim).Render("\n\n  Wrapping up...")
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

func (s *QuizScreen) renderIntro(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centered(width).Foreground(theme.Primary).Bold(true).Render(s.Title()))
	b.WriteString("\n\n")

	lines := []string{
		fmt.Sprintf("%d questions, up to %d attempts each", s.snap.Total, s.snap.MaxAttempts),
		fmt.Sprintf("%s to answer, then %s to review", layout.FormatDuration(s.info.AttemptDuration), layout.FormatDuration(s.info.ReviewDuration)),
	}
	for _, l := range lines {
		b.WriteString(centered(width).Foreground(theme.Text).Render(l))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Press Enter when you are ready."))
	return b.String()
}

func (s *QuizScreen) renderQuestion(width int) string {
	snap := s.snap
	var b strings.Builder

	// Progress line.
	position := fmt.Sprintf("Question %d/%d", min(snap.Index+1, snap.Total), snap.Total)
	if snap.SkipMode {
		position = fmt.Sprintf("Skipped questions: %d left", len(snap.SkippedIDs))
	}
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  " + position)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("Attempt %d/%d   Skipped %d", min(snap.AttemptCount+1, snap.MaxAttempts), snap.MaxAttempts, len(snap.SkippedIDs)))
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	b.WriteString(left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n")
	b.WriteString(s.renderTimer(width - 4))
	b.WriteString("\n\n")

	if !snap.HasQuestion {
		b.WriteString(centered(width).Foreground(theme.TextDim).Render("No question on screen."))
		return b.String()
	}
	q := snap.Question

	prompt := lipgloss.NewStyle().Width(min(width-8, 80)).Foreground(theme.Text).Bold(true).Render(q.Prompt)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, prompt))
	b.WriteString("\n\n")

	switch {
	case snap.Is(session.StateGrading):
		b.WriteString(s.renderFeedback(width))
	case snap.Is(session.StateSkipping):
		b.WriteString(renderSkipConfirm(width))
	default:
		if snap.AttemptCount > 0 && q.Hint != "" {
			b.WriteString(centered(width).Inherit(theme.Hint).Render("Hint: " + q.Hint))
			b.WriteString("\n\n")
		}
		if q.Format == bank.FormatMultipleChoice {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
		} else {
			b.WriteString(centered(width).Render("Answer: " + s.input.View()))
		}
	}
	return b.String()
}

// renderTimer draws the assessment countdown as a bar.
func (s *QuizScreen) renderTimer(width int) string {
	budget := s.info.AttemptDuration
	if s.snap.Is(session.StateReviewing) {
		budget = s.info.ReviewDuration
	}
	if budget <= 0 {
		return ""
	}
	frac := float64(s.snap.Remaining) / float64(budget)
	bar := components.NewProgressBar("  "+layout.FormatDuration(s.snap.Remaining), frac, false, width)
	if frac < 0.2 {
		bar.Fill = &theme.TimerLow
	}
	return bar.View()
}

func (s *QuizScreen) renderFeedback(width int) string {
	res := s.snap.LastResult
	if res == nil {
		return ""
	}
	var b strings.Builder
	if res.Correct {
		b.WriteString(centered(width).Inherit(theme.Correct).Render("Correct!"))
		return b.String()
	}

	b.WriteString(centered(width).Inherit(theme.Incorrect).Render("Not quite"))
	b.WriteString("\n")
	if s.snap.AttemptCount >= s.snap.MaxAttempts {
		if res.Payload != nil {
			b.WriteString(centered(width).Foreground(theme.TextDim).Render("Correct answer: " + *res.Payload))
		}
	} else {
		left := s.snap.MaxAttempts - s.snap.AttemptCount
		b.WriteString(centered(width).Foreground(theme.TextDim).Render(fmt.Sprintf("%d attempt(s) left", left)))
	}
	return b.String()
}

func renderSkipConfirm(width int) string {
	dialog := theme.Dialog.Render(
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Skip this question?") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("You can come back to it with Tab.") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Accent).Render("[Y] Skip") + "    " +
			lipgloss.NewStyle().Foreground(theme.Primary).Render("[N] Keep answering"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, dialog)
}

func (s *QuizScreen) renderReview(width int) string {
	var b strings.Builder
	b.WriteString(centered(width).Foreground(theme.Primary).Bold(true).Render("Review"))
	b.WriteString("\n")
	for _, ps := range s.snap.Summaries {
		if ps.Phase != session.StateInProgress {
			continue
		}
		b.WriteString(centered(width).Foreground(theme.Text).Render(fmt.Sprintf(
			"Correct %d   Incorrect %d   Skipped %d   Time %s",
			ps.Correct, ps.Incorrect, ps.Skipped, layout.FormatDuration(ps.TimeSpent))))
		b.WriteString("\n")
	}
	b.WriteString(s.renderTimer(width - 4))
	b.WriteString("\n\n")
	b.WriteString(s.review.View())
	return b.String()
}

func renderError(width int, errMsg string) string {
	return centered(width).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press Ctrl+C to quit.", errMsg))
}
