// Package quiz is the screen that runs a timed session over a question
// bank. It forwards key presses to the session machine as commands and
// renders whatever snapshot the machine last published.
package quiz

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/router"
	"github.com/abhisek/timedquiz/internal/screen"
	"github.com/abhisek/timedquiz/internal/screens/summary"
	"github.com/abhisek/timedquiz/internal/session"
	"github.com/abhisek/timedquiz/internal/ui/components"
	"github.com/abhisek/timedquiz/internal/ui/layout"
)

type (
	Machine  = session.Machine[bank.Question, string]
	Snapshot = session.Snapshot[bank.Question, string]
	Command  = session.Command[bank.Question, string]
)

// Info describes the session for display. The machine does not expose its
// configuration, so the caller passes what it built it from.
type Info struct {
	Title           string
	Questions       []bank.Question
	AttemptDuration time.Duration
	ReviewDuration  time.Duration
}

// QuizScreen implements screen.Screen for a running session.
type QuizScreen struct {
	ctx     context.Context
	machine *Machine
	updates <-chan Snapshot
	info    Info
	keys    keyMap

	snap     Snapshot
	finished bool
	errMsg   string

	// The answer widgets belong to one showing of one question.
	shownID      string
	shownAttempt int
	input        components.TextInput
	choice       components.MultiChoice

	review        viewport.Model
	width, height int
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New subscribes to m. Commands are sent with ctx, which should be the
// context m runs under.
func New(ctx context.Context, m *Machine, info Info) *QuizScreen {
	return &QuizScreen{
		ctx:     ctx,
		machine: m,
		updates: m.Subscribe(),
		info:    info,
		keys:    defaultKeyMap(),
		snap:    m.Snapshot(),
		review:  viewport.New(viewport.WithWidth(80), viewport.WithHeight(10)),
		width:   80,
		height:  24,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.wait()
}

func (s *QuizScreen) Title() string {
	if s.info.Title != "" {
		return s.info.Title
	}
	return "Quiz"
}

// Status shows the phase and its countdown.
func (s *QuizScreen) Status() string {
	switch {
	case s.snap.Is(session.StateInProgress):
		return "⏱ " + layout.FormatDuration(s.snap.Remaining)
	case s.snap.Is(session.StateReviewing):
		return "Review ⏱ " + layout.FormatDuration(s.snap.Remaining)
	}
	return ""
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	k := s.keys
	switch {
	case s.errMsg != "":
		return nil
	case s.snap.Is(session.StateStarting):
		return hints(k.Start, k.GotoReview)
	case s.snap.Is(session.StateSkipping):
		return hints(k.Confirm, k.Reject)
	case s.snap.Is(session.StateWaitingForAnswer):
		out := []key.Binding{k.Submit, k.Skip}
		if s.nextSkipped() != "" {
			out = append(out, k.NextSkipped)
		}
		if s.snap.PrimaryDone {
			out = append(out, k.ForceReview)
		}
		return hints(out...)
	case s.snap.Is(session.StateReviewing):
		return append(hints(k.CompleteReview), layout.KeyHint{Key: "↑↓", Description: "Scroll"})
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		s.snap = msg.snap
		cmd := s.sync()
		if s.snap.Done() {
			return s, tea.Batch(cmd, s.finish(nil))
		}
		return s, tea.Batch(cmd, s.wait())

	case closedMsg:
		s.snap = s.machine.Snapshot()
		return s, s.finish(s.machine.Err())

	case sendFailedMsg:
		s.errMsg = msg.err.Error()
		return s, nil

	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.review.SetWidth(msg.Width)
		s.review.SetHeight(max(msg.Height-16, 3))
		s.refreshReview()
		return s, nil

	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}

	return s, s.forward(msg)
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	k := s.keys
	switch {
	case s.errMsg != "":
		return nil

	case s.snap.Is(session.StateStarting):
		switch {
		case key.Matches(msg, k.Start):
			return s.send(session.Start[bank.Question, string]())
		case key.Matches(msg, k.GotoReview):
			return s.send(session.GotoReview[bank.Question, string]())
		}

	case s.snap.Is(session.StateSkipping):
		switch {
		case key.Matches(msg, k.Confirm):
			return s.send(session.ConfirmSkip[bank.Question, string]())
		case key.Matches(msg, k.Reject):
			return s.send(session.RejectSkip[bank.Question, string]())
		}

	case s.snap.Is(session.StateWaitingForAnswer):
		switch {
		case key.Matches(msg, k.Submit):
			answer := s.answer()
			if answer == "" {
				return nil
			}
			return s.send(session.SubmitAnswerFor(s.snap.Question, answer))
		case key.Matches(msg, k.Skip):
			return s.send(session.Skip[bank.Question, string]())
		case key.Matches(msg, k.NextSkipped):
			if id := s.nextSkipped(); id != "" {
				return s.send(session.GotoSkipped[bank.Question, string](id))
			}
			return nil
		case key.Matches(msg, k.ForceReview):
			return s.send(session.ForceReview[bank.Question, string]())
		}
		return s.forward(msg)

	case s.snap.Is(session.StateReviewing):
		if key.Matches(msg, k.CompleteReview) {
			return s.send(session.CompleteReview[bank.Question, string]())
		}
		var cmd tea.Cmd
		s.review, cmd = s.review.Update(msg)
		return cmd
	}
	return nil
}

// forward passes input to the answer widget of the displayed question.
func (s *QuizScreen) forward(msg tea.Msg) tea.Cmd {
	if !s.snap.Is(session.StateWaitingForAnswer) || !s.snap.HasQuestion {
		return nil
	}
	var cmd tea.Cmd
	if s.snap.Question.Format == bank.FormatMultipleChoice {
		s.choice, cmd = s.choice.Update(msg)
	} else {
		s.input, cmd = s.input.Update(msg)
	}
	return cmd
}

func (s *QuizScreen) answer() string {
	if s.snap.Question.Format == bank.FormatMultipleChoice {
		return s.choice.Value()
	}
	return s.input.Value()
}

// nextSkipped returns the first queued question other than the one shown.
func (s *QuizScreen) nextSkipped() string {
	for _, id := range s.snap.SkippedIDs {
		if !s.snap.HasQuestion || id != s.snap.Question.ID {
			return id
		}
	}
	return ""
}

// sync resets the answer widgets whenever a question is shown afresh,
// including a retry after an incorrect answer.
func (s *QuizScreen) sync() tea.Cmd {
	if s.snap.Is(session.StateReviewing) {
		s.refreshReview()
		return nil
	}
	if !s.snap.Is(session.StateWaitingForAnswer) || !s.snap.HasQuestion {
		return nil
	}
	q := s.snap.Question
	if q.ID == s.shownID && s.snap.AttemptCount == s.shownAttempt {
		return nil
	}
	s.shownID, s.shownAttempt = q.ID, s.snap.AttemptCount

	if q.Format == bank.FormatMultipleChoice {
		s.choice = components.NewMultiChoice(q.Choices)
		return nil
	}
	s.input = components.NewTextInput("Type your answer...", q.AnswerType, 60)
	return s.input.Init()
}

func (s *QuizScreen) refreshReview() {
	results := summary.Tally(s.info.Questions, s.snap.Events)
	s.review.SetContent(summary.RenderResults(results, s.width))
}

// wait blocks on the next snapshot. Exactly one wait is outstanding while
// the session runs.
func (s *QuizScreen) wait() tea.Cmd {
	updates := s.updates
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

func (s *QuizScreen) send(cmd Command) tea.Cmd {
	m, ctx := s.machine, s.ctx
	return func() tea.Msg {
		err := m.Send(ctx, cmd)
		if err == nil || errors.Is(err, session.ErrStopped) || errors.Is(err, context.Canceled) {
			return nil
		}
		return sendFailedMsg{err: err}
	}
}

// finish hands over to the summary screen once.
func (s *QuizScreen) finish(err error) tea.Cmd {
	if s.finished {
		return nil
	}
	s.finished = true
	if err == nil {
		err = s.snap.Err
	}
	final := summary.New(s.info.Title, s.info.Questions, s.snap, err)
	width, height := s.width, s.height
	return tea.Sequence(
		func() tea.Msg { return router.ReplaceScreenMsg{Screen: final} },
		func() tea.Msg { return tea.WindowSizeMsg{Width: width, Height: height} },
	)
}
