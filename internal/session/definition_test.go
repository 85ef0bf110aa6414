package session

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_StartShowsFirstQuestion(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()

	dr.requireState(StateWaitingForAnswer)
	dr.requireCurrent("q1")
	if dr.s.Context.Index != 0 {
		t.Errorf("Index = %d, want 0", dr.s.Context.Index)
	}
	if dr.s.Context.Remaining != 30*time.Second {
		t.Errorf("Remaining = %s, want 30s", dr.s.Context.Remaining)
	}
	require.Len(t, dr.effects, 1)
	assert.Equal(t, Effect{Kind: EffectStartTimer, Slot: SlotAssessment, Duration: 30 * time.Second}, dr.effects[0])
}

func TestTransition_StartingShortcuts(t *testing.T) {
	dr := newDriver(t, testConfig(2)).send(GotoReview[question, string]())
	dr.requireState(StateReviewing)
	assert.True(t, hasEffect(dr.effects, EffectStartTimer, SlotReview))

	dr = newDriver(t, testConfig(2)).send(CompleteAssessment[question, string]())
	dr.requireState(StateCompleted)
	assert.Equal(t, []Effect{{Kind: EffectTerminate}}, dr.effects)
}

func TestTransition_UnmatchedInputIsNoop(t *testing.T) {
	dr := newDriver(t, testConfig(2))
	before := dr.s

	dr.answer("a1")
	assert.Equal(t, before, dr.s)
	assert.Empty(t, dr.effects)

	dr.start()
	before = dr.s
	dr.send(ConfirmSkip[question, string]())
	dr.send(CompleteReview[question, string]())
	dr.input(DelayInput[question, string](99))
	assert.Equal(t, before, dr.s)
	assert.NoError(t, dr.err)
}

func TestTransition_RetryThenAdvance(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()

	dr.advance(2 * time.Second).answer("wrong")
	dr.requireState(StateGrading)
	assert.True(t, hasEffect(dr.effects, EffectPauseTimer, SlotAssessment))
	require.NotNil(t, dr.s.Context.LastResult)
	assert.False(t, dr.s.Context.LastResult.Correct)

	dr.elapse()
	dr.requireState(StateWaitingForAnswer)
	dr.requireCurrent("q1")
	assert.Equal(t, 1, dr.s.Context.AttemptCount)
	assert.True(t, hasEffect(dr.effects, EffectResumeTimer, SlotAssessment))

	dr.answer("still wrong")
	assert.Equal(t, 2, dr.s.Context.AttemptCount)
	dr.elapse()
	dr.requireCurrent("q2")
	assert.Equal(t, 1, dr.s.Context.Index)
	assert.Equal(t, 0, dr.s.Context.AttemptCount)

	ev := dr.s.Context.Events
	require.Len(t, ev, 2)
	assert.Equal(t, 1, ev[0].AttemptNumber)
	assert.Equal(t, 2, ev[1].AttemptNumber)
	assert.Equal(t, 2*time.Second, ev[0].TimeSpent)
}

func TestTransition_SubmitForOtherQuestionIgnored(t *testing.T) {
	dr := newDriver(t, testConfig(2)).start()
	other := dr.d.cfg.Questions[1]

	dr.send(SubmitAnswerFor(other, "a2"))
	dr.requireState(StateWaitingForAnswer)
	assert.Empty(t, dr.s.Context.Events)

	dr.send(SubmitAnswerFor(dr.s.Context.Current, "a1"))
	dr.requireState(StateGrading)
}

func TestTransition_ResponseLoggerSeesEverySubmission(t *testing.T) {
	cfg := testConfig(2)
	var logged []string
	cfg.ResponseLogger = func(q question, r string) { logged = append(logged, q.ID+"="+r) }

	dr := newDriver(t, cfg).start()
	dr.answer("x").elapse().answer("a1")

	assert.Equal(t, []string{"q1=x", "q1=a1"}, logged)
}

func TestTransition_RejectSkipRestoresContext(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()
	dr.answer("wrong").elapse()
	before := dr.s

	dr.advance(time.Second).send(Skip[question, string]())
	dr.requireState(StateSkipping)
	assert.Equal(t, []Effect{{Kind: EffectPauseTimer, Slot: SlotAssessment}}, dr.effects)

	dr.send(RejectSkip[question, string]())
	dr.requireState(StateWaitingForAnswer)
	assert.Equal(t, []Effect{{Kind: EffectResumeTimer, Slot: SlotAssessment}}, dr.effects)
	assert.Equal(t, before.Context, dr.s.Context)
}

func TestTransition_ConfirmSkipRecordsAndAdvances(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()

	dr.advance(3 * time.Second).send(Skip[question, string]())
	dr.advance(10 * time.Second).send(ConfirmSkip[question, string]())

	dr.requireState(StateWaitingForAnswer)
	dr.requireCurrent("q2")
	assert.Equal(t, []string{"q1"}, dr.s.Context.Skipped.IDs())
	require.Len(t, dr.s.Context.Events, 1)
	ev := dr.s.Context.Events[0]
	assert.Equal(t, EventSkip, ev.Kind)
	assert.Equal(t, 3*time.Second, ev.TimeSpent, "skip is timed at the request, not the confirmation")
	assert.Equal(t, 0, dr.s.Context.AttemptCount)
}

func TestScenario_SkipAllThenConfirmEach(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()

	dr.skip().skip().skip()
	c := dr.s.Context
	assert.True(t, c.PrimaryDone)
	assert.True(t, c.SkipMode)
	dr.requireCurrent("q1")
	assert.Equal(t, []string{"q2", "q3"}, c.Skipped.IDs())

	for _, want := range []string{"q1", "q2", "q3"} {
		dr.requireCurrent(want)
		dr.answerCurrent()
		if want != "q3" {
			dr.elapse()
		}
	}

	dr.requireState(StateReviewing)
	assert.Equal(t, 2, dr.s.Context.Index)
	assert.True(t, dr.s.Context.Skipped.Empty())
	require.Len(t, dr.s.Context.Summaries, 1)
	sum := dr.s.Context.Summaries[0]
	assert.Equal(t, StateInProgress, sum.Phase)
	assert.Equal(t, 3, sum.Correct)
	assert.Equal(t, 0, sum.Skipped)
}

func TestScenario_SkipTwoAnswerThirdTwice(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()

	dr.skip().skip()
	dr.requireCurrent("q3")

	dr.answer("wrong").elapse()
	dr.requireCurrent("q3")
	assert.False(t, dr.s.Context.PrimaryDone)

	dr.answerCurrent()
	dr.requireState(StateGrading)
	assert.True(t, dr.s.Context.PrimaryDone)
	assert.Equal(t, 2, dr.s.Context.Skipped.Len())

	dr.elapse()
	dr.requireCurrent("q1")
	dr.answerCurrent().elapse()
	dr.requireCurrent("q2")
	dr.answerCurrent()
	dr.requireState(StateReviewing)
}

func TestTransition_ExhaustionLeavesInProgressInOrder(t *testing.T) {
	dr := newDriver(t, testConfig(1)).start()
	dr.advance(5 * time.Second).answerCurrent()

	dr.requireState(StateReviewing)
	var kinds []EffectKind
	for _, e := range dr.effects {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EffectKind{
		EffectPauseTimer,
		EffectScheduleDelay,
		EffectCancelDelay,
		EffectStopTimer,
		EffectStartTimer,
	}, kinds, "grading entry, grading exit, in-progress exit, reviewing entry")
	assert.Equal(t, 30*time.Second, dr.s.Context.Remaining)
	require.Len(t, dr.s.Context.Summaries, 1)
	assert.Equal(t, 5*time.Second, dr.s.Context.Summaries[0].TimeSpent)
}

func TestTransition_AssessmentDeadline(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()

	dr.input(TimerInput[question, string](EvTimerProgress, SlotAssessment, 12*time.Second))
	dr.requireState(StateWaitingForAnswer)
	assert.Equal(t, 12*time.Second, dr.s.Context.Remaining)

	dr.input(TimerInput[question, string](EvTimerProgress, SlotReview, time.Second))
	assert.Equal(t, 12*time.Second, dr.s.Context.Remaining, "progress for another slot is ignored")

	dr.send(Skip[question, string]())
	dr.input(TimerInput[question, string](EvTimerDeadline, SlotAssessment, 0))
	dr.requireState(StateReviewing)

	require.Len(t, dr.effects, 2)
	assert.Equal(t, Effect{Kind: EffectStopTimer, Slot: SlotAssessment}, dr.effects[0])
	assert.Equal(t, EffectStartTimer, dr.effects[1].Kind)
}

func TestTransition_ReviewEnds(t *testing.T) {
	dr := newDriver(t, testConfig(2)).start()
	dr.send(GotoReview[question, string]())
	dr.requireState(StateWaitingForAnswer)

	dr.input(TimerInput[question, string](EvTimerDeadline, SlotAssessment, 0))
	dr.requireState(StateReviewing)

	dr.advance(4 * time.Second).input(TimerInput[question, string](EvTimerDeadline, SlotReview, 0))
	dr.requireState(StateCompleted)
	assert.True(t, dr.s.Done())
	assert.True(t, hasEffect(dr.effects, EffectStopTimer, SlotReview))
	assert.True(t, hasEffect(dr.effects, EffectTerminate, ""))
	require.Len(t, dr.s.Context.Summaries, 2)
	assert.Equal(t, StateReviewing, dr.s.Context.Summaries[1].Phase)
	assert.Equal(t, 4*time.Second, dr.s.Context.Summaries[1].TimeSpent)
	assert.Zero(t, dr.s.Context.Remaining)

	before := dr.s
	dr.start()
	assert.Equal(t, before, dr.s, "completed sessions accept nothing")
}

func TestTransition_CompleteReview(t *testing.T) {
	dr := newDriver(t, testConfig(1)).start()
	dr.answerCurrent()
	dr.requireState(StateReviewing)

	dr.send(CompleteReview[question, string]())
	dr.requireState(StateCompleted)
}

func TestTransition_ForceReviewNeedsPrimaryPass(t *testing.T) {
	dr := newDriver(t, testConfig(2)).start()

	dr.send(ForceReview[question, string]())
	dr.requireState(StateWaitingForAnswer)

	dr.skip().skip()
	assert.True(t, dr.s.Context.PrimaryDone)
	dr.send(ForceReview[question, string]())
	dr.requireState(StateReviewing)
}

func TestTransition_StaleDelayIgnored(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()
	dr.answer("wrong")
	stale := dr.s.Context.delayToken
	dr.elapse()

	dr.answer("wrong again")
	dr.input(DelayInput[question, string](stale))
	dr.requireState(StateGrading)

	dr.elapse()
	dr.requireCurrent("q2")
}

func TestTransition_GraderErrorIsFatal(t *testing.T) {
	cfg := testConfig(2)
	cfg.Grader = func(question, string) (GradeResult[string], error) {
		return GradeResult[string]{}, errGraderBroken
	}
	dr := newDriver(t, cfg).start()
	dr.answer("a1")

	require.Error(t, dr.err)
	assert.ErrorIs(t, dr.err, ErrGrading)
	assert.ErrorIs(t, dr.err, errGraderBroken)
	assert.ErrorIs(t, dr.s.Err, ErrGrading)
	assert.True(t, dr.s.Done())
	assert.True(t, hasEffect(dr.effects, EffectStopTimer, SlotAssessment))
	assert.True(t, hasEffect(dr.effects, EffectTerminate, ""))
	assert.Empty(t, dr.s.Context.Events)

	before := dr.s
	dr.answer("a1")
	assert.Equal(t, before, dr.s)
}

func TestTransition_GraderPanicIsFatal(t *testing.T) {
	cfg := testConfig(2)
	cfg.Grader = func(question, string) (GradeResult[string], error) {
		panic("boom")
	}
	dr := newDriver(t, cfg).start()
	dr.answer("a1")

	assert.True(t, errors.Is(dr.err, ErrGrading))
	assert.Contains(t, dr.err.Error(), "boom")
}

func TestTransition_GotoSkippedUnknownIDRejected(t *testing.T) {
	dr := newDriver(t, testConfig(3)).start()
	dr.skip()
	before := dr.s

	dr.send(GotoSkipped[question, string]("nope"))
	assert.Equal(t, before, dr.s)

	dr.send(GotoSkipped[question, string]("q2"))
	assert.Equal(t, before, dr.s, "displayed question is not in the queue")
}

func TestTransition_GotoSkippedRoundTrip(t *testing.T) {
	cfg := testConfig(3)
	cfg.MaxAttemptsPerQuestion = 3
	dr := newDriver(t, cfg).start()

	dr.answer("wrong").elapse()
	dr.skip()
	dr.requireCurrent("q2")

	dr.send(GotoSkipped[question, string]("q1"))
	dr.requireCurrent("q1")
	assert.Equal(t, cfg.Questions[0], dr.s.Context.Current)
	assert.Equal(t, 1, dr.s.Context.AttemptCount)
	assert.Equal(t, AttemptsFor(dr.s.Context.Events, "q1"), dr.s.Context.AttemptCount)
	require.NotNil(t, dr.s.Context.Return)
	assert.Equal(t, 1, dr.s.Context.Return.Index)

	dr.answer("wrong").elapse().answer("wrong").elapse()
	dr.requireCurrent("q2")
	assert.False(t, dr.s.Context.SkipMode)
	assert.Nil(t, dr.s.Context.Return)
	assert.Equal(t, 3, AttemptsFor(dr.s.Context.Events, "q1"))
}

// Random command sequences must never break the bookkeeping invariants.
func TestTransition_RandomWalkInvariants(t *testing.T) {
	kinds := []InputKind{
		CmdSubmitAnswer, CmdSubmitAnswer, CmdSubmitAnswer, CmdSkip, CmdConfirmSkip,
		CmdRejectSkip, CmdGotoSkipped, CmdForceReview, EvDelayElapsed, EvDelayElapsed,
	}

	for seed := range uint64(50) {
		rng := rand.New(rand.NewPCG(seed, 7))
		cfg := testConfig(5)
		cfg.MaxAttemptsPerQuestion = 1 + rng.IntN(3)
		dr := newDriver(t, cfg).start()

		lastIndex := 0
		primaryDone := false
		for step := 0; step < 200 && dr.s.Value.Matches(StateInProgress); step++ {
			var in Input[question, string]
			switch k := kinds[rng.IntN(len(kinds))]; k {
			case CmdSubmitAnswer:
				r := "wrong"
				if rng.IntN(2) == 0 {
					r = dr.s.Context.Current.Answer
				}
				in = CommandInput(SubmitAnswer[question](r))
			case CmdGotoSkipped:
				in = CommandInput(GotoSkipped[question, string](cfg.Questions[rng.IntN(5)].ID))
			case EvDelayElapsed:
				in = DelayInput[question, string](dr.s.Context.delayToken)
			default:
				in = CommandInput(Command[question, string]{Kind: k})
			}
			dr.advance(time.Second).input(in)
			require.NoError(t, dr.err)

			c := dr.s.Context
			if c.Index < lastIndex {
				t.Fatalf("seed %d: index went from %d to %d", seed, lastIndex, c.Index)
			}
			lastIndex = c.Index
			if primaryDone && !c.PrimaryDone {
				t.Fatalf("seed %d: primary pass flag was reset", seed)
			}
			primaryDone = c.PrimaryDone
			for _, q := range cfg.Questions {
				if n := AttemptsFor(c.Events, q.ID); n > cfg.MaxAttemptsPerQuestion {
					t.Fatalf("seed %d: %s has %d attempts, max %d", seed, q.ID, n, cfg.MaxAttemptsPerQuestion)
				}
			}
			if c.Skipped.Contains(c.Current.ID) && dr.s.Value != StateSkipping {
				t.Fatalf("seed %d: displayed question %s is also queued", seed, c.Current.ID)
			}
		}
	}
}
