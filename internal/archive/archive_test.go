package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/timedquiz/internal/session"
	"github.com/abhisek/timedquiz/internal/store"
)

type card struct{ id, answer string }

func cardID(c card) string { return c.id }

func newMachine(t *testing.T, rec *Recorder[card, string]) *session.Machine[card, string] {
	t.Helper()
	m, err := session.New(session.Config[card, string]{
		Questions: []card{{"c1", "one"}, {"c2", "two"}},
		Grader: func(c card, r string) (session.GradeResult[string], error) {
			return session.GradeResult[string]{Correct: r == c.answer, Payload: &c.answer}, nil
		},
		QuestionID:             cardID,
		ResponseLogger:         rec.ResponseLogger(nil),
		MaxAttemptsPerQuestion: 1,
		AttemptDuration:        5 * time.Second,
		ReviewDuration:         5 * time.Second,
		DelayBetweenAttempts:   10 * time.Millisecond,
		TickInterval:           50 * time.Millisecond,
		Logger:                 slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return m
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWatch_ArchivesCompletedSession(t *testing.T) {
	st := openStore(t)
	rec := NewRecorder[card, string](cardID)
	m := newMachine(t, rec)
	ctx := context.Background()

	watched := make(chan error, 1)
	go func() { watched <- Watch(ctx, m, rec, st, Options[string]{Bank: "cards.yaml", Title: "Cards"}) }()
	go m.Run(ctx)

	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.SubmitAnswer(ctx, "one"))
	require.Eventually(t, func() bool {
		s := m.Snapshot()
		return s.Is(session.StateWaitingForAnswer) && s.Index == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.SubmitAnswer(ctx, "three"))
	require.Eventually(t, func() bool { return m.Snapshot().Is(session.StateReviewing) }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.CompleteReview(ctx))

	select {
	case err := <-watched:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return")
	}

	sess, err := st.Session(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeCompleted, sess.Outcome)
	assert.Equal(t, "Cards", sess.Title)
	assert.Equal(t, 2, sess.TotalQuestions)
	assert.False(t, sess.EndedAt.Before(sess.StartedAt))

	attempts, err := st.SessionAttempts(ctx, m.ID())
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, store.AttemptRecord{QuestionID: "c1", Kind: "response", AttemptNumber: 1, Correct: true, Response: "one", Expected: "one"},
		stripTimes(attempts[0]))
	assert.Equal(t, store.AttemptRecord{QuestionID: "c2", Kind: "response", AttemptNumber: 1, Response: "three", Expected: "two"},
		stripTimes(attempts[1]))

	phases, err := st.SessionPhases(ctx, m.ID())
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, string(session.StateInProgress), phases[0].Phase)
	assert.Equal(t, 1, phases[0].Correct)
	assert.Equal(t, 1, phases[0].Incorrect)
}

func stripTimes(a store.AttemptRecord) store.AttemptRecord {
	a.TimeSpent, a.OccurredAt = 0, time.Time{}
	return a
}

type countingSink struct{ n int }

func (s *countingSink) ArchiveSession(context.Context, store.SessionArchive) error {
	s.n++
	return nil
}

func TestWatch_SkipsSessionsThatNeverStarted(t *testing.T) {
	rec := NewRecorder[card, string](cardID)
	m := newMachine(t, rec)
	ctx, cancel := context.WithCancel(context.Background())

	sink := &countingSink{}
	watched := make(chan error, 1)
	go func() { watched <- Watch(context.Background(), m, rec, sink, Options[string]{}) }()

	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx) }()
	cancel()

	assert.ErrorIs(t, <-runErr, context.Canceled)
	require.NoError(t, <-watched)
	assert.Zero(t, sink.n)
}

func TestBuild_SkipEventsAndOutcome(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := session.Snapshot[card, string]{
		SessionID: "s",
		Total:     3,
		Events: []session.AttemptEvent[card, string]{
			{Kind: session.EventSkip, QuestionID: "c1", Timestamp: at, TimeSpent: time.Second},
		},
		Summaries: []session.PhaseSummary{{Phase: session.StateInProgress, Skipped: 1, TimeSpent: time.Minute}},
	}
	grading := fmt.Errorf("%w: boom", session.ErrGrading)

	a := Build(snap, grading, nil, Options[string]{Now: func() time.Time { return at }})

	assert.Equal(t, store.OutcomeFailed, a.Session.Outcome)
	assert.Contains(t, a.Session.Error, "boom")
	assert.Equal(t, at, a.Session.EndedAt)
	require.Len(t, a.Attempts, 1)
	assert.Equal(t, "skip", a.Attempts[0].Kind)
	assert.Zero(t, a.Attempts[0].AttemptNumber)
	require.Len(t, a.Phases, 1)
	assert.Equal(t, 1, a.Phases[0].Skipped)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, store.OutcomeCompleted, Outcome(nil))
	assert.Equal(t, store.OutcomeCancelled, Outcome(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, store.OutcomeFailed, Outcome(errors.New("x")))
}

func TestRecorder_ChainsAndIndexesByAttempt(t *testing.T) {
	rec := NewRecorder[card, string](cardID)
	var seen []string
	log := rec.ResponseLogger(func(c card, r string) { seen = append(seen, c.id+"="+r) })

	log(card{id: "c1"}, "a")
	log(card{id: "c2"}, "b")
	log(card{id: "c1"}, "c")

	assert.Equal(t, []string{"c1=a", "c2=b", "c1=c"}, seen)
	r, ok := rec.response("c1", 2)
	assert.True(t, ok)
	assert.Equal(t, "c", r)
	_, ok = rec.response("c2", 2)
	assert.False(t, ok)
}
