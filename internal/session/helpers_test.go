package session

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

type question struct {
	ID     string
	Answer string
}

func questions(n int) []question {
	qs := make([]question, n)
	for i := range qs {
		qs[i] = question{ID: fmt.Sprintf("q%d", i+1), Answer: fmt.Sprintf("a%d", i+1)}
	}
	return qs
}

func gradeExact(q question, r string) (GradeResult[string], error) {
	return GradeResult[string]{Correct: q.Answer == r, Payload: &q.Answer}, nil
}

func testConfig(n int) Config[question, string] {
	return Config[question, string]{
		Questions:              questions(n),
		Grader:                 gradeExact,
		QuestionID:             func(q question) string { return q.ID },
		ResponseLogger:         func(question, string) {},
		MaxAttemptsPerQuestion: 2,
		AttemptDuration:        30 * time.Second,
		ReviewDuration:         30 * time.Second,
		Logger:                 slog.New(slog.DiscardHandler),
		SessionID:              "test-session",
	}
}

// driver feeds inputs straight into a Definition with a manual clock.
type driver struct {
	t       *testing.T
	d       *Definition[question, string]
	s       State[question, string]
	now     time.Time
	effects []Effect
	err     error
}

func newDriver(t *testing.T, cfg Config[question, string]) *driver {
	t.Helper()
	d, err := NewDefinition(cfg)
	if err != nil {
		t.Fatalf("NewDefinition: %v", err)
	}
	return &driver{
		t:   t,
		d:   d,
		s:   d.Initial(),
		now: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
	}
}

func (dr *driver) input(in Input[question, string]) *driver {
	dr.t.Helper()
	dr.s, dr.effects, dr.err = dr.d.Transition(dr.s, in, dr.now)
	return dr
}

func (dr *driver) send(c Command[question, string]) *driver {
	dr.t.Helper()
	return dr.input(CommandInput(c))
}

func (dr *driver) advance(d time.Duration) *driver {
	dr.now = dr.now.Add(d)
	return dr
}

func (dr *driver) start() *driver { return dr.send(Start[question, string]()) }

func (dr *driver) answer(r string) *driver { return dr.send(SubmitAnswer[question](r)) }

// answerCurrent submits the right answer for the displayed question.
func (dr *driver) answerCurrent() *driver { return dr.answer(dr.s.Context.Current.Answer) }

func (dr *driver) skip() *driver {
	dr.send(Skip[question, string]())
	return dr.send(ConfirmSkip[question, string]())
}

// elapse delivers the end of the current grading feedback window.
func (dr *driver) elapse() *driver {
	dr.t.Helper()
	return dr.input(DelayInput[question, string](dr.s.Context.delayToken))
}

func (dr *driver) requireState(want StateID) {
	dr.t.Helper()
	if dr.s.Value != want {
		dr.t.Fatalf("state = %s, want %s", dr.s.Value, want)
	}
}

func (dr *driver) requireCurrent(id string) {
	dr.t.Helper()
	if got := dr.s.Context.Current.ID; got != id {
		dr.t.Fatalf("current question = %s, want %s", got, id)
	}
}

func hasEffect(effects []Effect, kind EffectKind, slot TimerSlot) bool {
	for _, e := range effects {
		if e.Kind == kind && e.Slot == slot {
			return true
		}
	}
	return false
}

var errGraderBroken = errors.New("grader broken")
