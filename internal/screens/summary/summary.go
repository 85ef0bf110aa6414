// Package summary is the end-of-session screen.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/screen"
	"github.com/abhisek/timedquiz/internal/session"
	"github.com/abhisek/timedquiz/internal/ui/layout"
	"github.com/abhisek/timedquiz/internal/ui/theme"
)

// Snapshot is the final state of a bank session.
type Snapshot = session.Snapshot[bank.Question, string]

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	title     string
	questions []bank.Question
	snap      Snapshot
	err       error
	results   []Result
	list      viewport.Model
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. err is the session's terminal error, nil
// for a normal completion.
func New(title string, questions []bank.Question, snap Snapshot, err error) *SummaryScreen {
	s := &SummaryScreen{
		title:     title,
		questions: questions,
		snap:      snap,
		err:       err,
		results:   Tally(questions, snap.Events),
		list:      viewport.New(viewport.WithWidth(80), viewport.WithHeight(10)),
	}
	s.list.SetContent(RenderResults(s.results, 80))
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Quit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// resize fits the result list below the fixed summary block.
func (s *SummaryScreen) resize(width, height int) {
	s.list.SetWidth(width)
	s.list.SetHeight(max(height-lipgloss.Height(s.header(width))-8, 3))
	s.list.SetContent(RenderResults(s.results, width))
}

func (s *SummaryScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(s.header(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))))
	b.WriteString("\n\n")
	b.WriteString(s.list.View())
	return b.String()
}

func (s *SummaryScreen) header(width int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(s.headline()))
	b.WriteString("\n")
	if s.title != "" {
		b.WriteString(center.Foreground(theme.TextDim).Render(s.title))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, ps := range s.phases() {
		line := fmt.Sprintf("%-12s  attempted %d   correct %d   incorrect %d   skipped %d   %s",
			phaseName(ps.Phase), ps.Attempted, ps.Correct, ps.Incorrect, ps.Skipped,
			layout.FormatDuration(ps.TimeSpent))
		b.WriteString(center.Foreground(theme.Text).Render(line))
		b.WriteString("\n")
	}

	total := len(s.questions)
	correct := 0
	for _, r := range s.results {
		if r.Status == Correct {
			correct++
		}
	}
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Success).Bold(true).
		Render(fmt.Sprintf("Score: %d / %d", correct, total)))
	return b.String()
}

func (s *SummaryScreen) headline() string {
	switch {
	case s.err == nil && s.snap.State == session.StateCompleted:
		return "Session complete!"
	case s.err == nil, errors.Is(s.err, context.Canceled):
		return "Session ended early"
	default:
		return "Session failed: " + s.err.Error()
	}
}

// phases returns the recorded phase summaries, or a single tally over the
// log when the session stopped before any phase ended.
func (s *SummaryScreen) phases() []session.PhaseSummary {
	if len(s.snap.Summaries) > 0 {
		return s.snap.Summaries
	}
	return []session.PhaseSummary{session.Summarize(s.snap.Phase, s.snap.Events, 0)}
}

func phaseName(id session.StateID) string {
	switch id {
	case session.StateInProgress:
		return "Assessment"
	case session.StateReviewing:
		return "Review"
	case session.StateStarting:
		return "Not started"
	}
	return string(id)
}
