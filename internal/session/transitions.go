package session

import "time"

type (
	guardFunc[E, R any]  func(c Context[E, R], in Input[E, R]) bool
	actionFunc[E, R any] func(c Context[E, R], in Input[E, R], now time.Time) (Context[E, R], []Effect, error)
)

// transition is one edge of the chart. An empty On marks an eventless
// ("always") transition, checked after every settled step. An empty To
// marks an internal transition: the action runs without leaving the state.
type transition[E, R any] struct {
	From   StateID
	On     InputKind
	Guard  guardFunc[E, R]
	Action actionFunc[E, R]
	To     StateID
}

// node carries the entry/exit actions of a state. Compound states name
// the child entered by default.
type node[E, R any] struct {
	Initial StateID
	Entry   actionFunc[E, R]
	Exit    actionFunc[E, R]
}

// chart declares the session state graph.
func (d *Definition[E, R]) chart() (map[StateID]node[E, R], []transition[E, R]) {
	nodes := map[StateID]node[E, R]{
		StateStarting: {},
		StateInProgress: {
			Initial: StateWaitingForAnswer,
			Entry:   d.startPhase(SlotAssessment, d.cfg.AttemptDuration),
			Exit:    d.endPhase(StateInProgress, SlotAssessment),
		},
		StateWaitingForAnswer: {},
		StateSkipping:         {},
		StateGrading: {
			Entry: d.enterGrading,
			Exit:  d.exitGrading,
		},
		StateReviewing: {
			Entry: d.startPhase(SlotReview, d.cfg.ReviewDuration),
			Exit:  d.endPhase(StateReviewing, SlotReview),
		},
		StateCompleted: {
			Entry: emit[E, R](Effect{Kind: EffectTerminate}),
		},
	}

	table := []transition[E, R]{
		// Starting
		{From: StateStarting, On: CmdStart, Action: d.begin, To: StateInProgress},
		{From: StateStarting, On: CmdGotoReview, To: StateReviewing},
		{From: StateStarting, On: CmdCompleteAssessment, To: StateCompleted},

		// Answering
		{From: StateWaitingForAnswer, On: CmdSubmitAnswer, Guard: d.canSubmit, Action: d.submit, To: StateGrading},
		{From: StateWaitingForAnswer, On: CmdSkip, Guard: presented[E, R], Action: d.askSkip, To: StateSkipping},
		{From: StateWaitingForAnswer, On: CmdGotoSkipped, Guard: queued[E, R], Action: d.jump},
		{From: StateWaitingForAnswer, On: CmdForceReview, Guard: primaryDone[E, R], To: StateReviewing},

		// Skip confirmation
		{From: StateSkipping, On: CmdConfirmSkip, Action: d.confirmSkip, To: StateWaitingForAnswer},
		{From: StateSkipping, On: CmdRejectSkip, Action: d.rejectSkip, To: StateWaitingForAnswer},

		// Grading
		{From: StateGrading, Guard: d.exhausted, To: StateReviewing},
		{From: StateGrading, On: EvDelayElapsed, Guard: currentDelay[E, R], Action: d.next, To: StateWaitingForAnswer},

		// Assessment timer
		{From: StateInProgress, On: EvTimerProgress, Guard: forSlot[E, R](SlotAssessment), Action: tick[E, R]},
		{From: StateInProgress, On: EvTimerDeadline, Guard: forSlot[E, R](SlotAssessment), To: StateReviewing},

		// Review
		{From: StateReviewing, On: EvTimerProgress, Guard: forSlot[E, R](SlotReview), Action: tick[E, R]},
		{From: StateReviewing, On: EvTimerDeadline, Guard: forSlot[E, R](SlotReview), To: StateCompleted},
		{From: StateReviewing, On: CmdCompleteReview, To: StateCompleted},
	}
	return nodes, table
}

// Guards.

func presented[E, R any](c Context[E, R], _ Input[E, R]) bool { return c.Presented }

func primaryDone[E, R any](c Context[E, R], _ Input[E, R]) bool { return c.PrimaryDone }

func queued[E, R any](c Context[E, R], in Input[E, R]) bool {
	return c.Skipped.Contains(in.QuestionID)
}

func currentDelay[E, R any](c Context[E, R], in Input[E, R]) bool {
	return in.Token == c.delayToken
}

func forSlot[E, R any](slot TimerSlot) guardFunc[E, R] {
	return func(_ Context[E, R], in Input[E, R]) bool { return in.Slot == slot }
}

func (d *Definition[E, R]) canSubmit(c Context[E, R], in Input[E, R]) bool {
	if !d.CanAttempt(c) {
		return false
	}
	if in.Question != nil && d.cfg.QuestionID(*in.Question) != d.cfg.QuestionID(c.Current) {
		return false
	}
	return true
}

func (d *Definition[E, R]) exhausted(c Context[E, R], _ Input[E, R]) bool {
	return d.Exhausted(c)
}

// Actions.

func emit[E, R any](effects ...Effect) actionFunc[E, R] {
	return func(c Context[E, R], _ Input[E, R], _ time.Time) (Context[E, R], []Effect, error) {
		return c, effects, nil
	}
}

func tick[E, R any](c Context[E, R], in Input[E, R], _ time.Time) (Context[E, R], []Effect, error) {
	c.Remaining = max(in.Remaining, 0)
	return c, nil, nil
}

func (d *Definition[E, R]) startPhase(slot TimerSlot, budget time.Duration) actionFunc[E, R] {
	return func(c Context[E, R], _ Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
		c.PhaseStarted = now
		c.Remaining = budget
		return c, []Effect{{Kind: EffectStartTimer, Slot: slot, Duration: budget}}, nil
	}
}

func (d *Definition[E, R]) endPhase(phase StateID, slot TimerSlot) actionFunc[E, R] {
	return func(c Context[E, R], _ Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
		c.Remaining = 0
		c.Summaries = append(c.Summaries, Summarize(phase, c.Events, elapsed(c.PhaseStarted, now)))
		return c, []Effect{{Kind: EffectStopTimer, Slot: slot}}, nil
	}
}

func (d *Definition[E, R]) begin(c Context[E, R], _ Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
	c.Index = 0
	c = d.show(c, 0, d.cfg.Questions[0])
	c.AttemptStarted = now
	return c, nil, nil
}

func (d *Definition[E, R]) submit(c Context[E, R], in Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
	d.cfg.ResponseLogger(c.Current, in.Response)
	c.pending = &pendingResponse[R]{response: in.Response, submittedAt: now}
	return c, nil, nil
}

func (d *Definition[E, R]) enterGrading(c Context[E, R], _ Input[E, R], _ time.Time) (Context[E, R], []Effect, error) {
	c, err := d.Evaluate(c)
	if err != nil {
		return c, nil, err
	}
	c.delayToken++
	return c, []Effect{
		{Kind: EffectPauseTimer, Slot: SlotAssessment},
		{Kind: EffectScheduleDelay, Duration: d.cfg.DelayBetweenAttempts, Token: c.delayToken},
	}, nil
}

func (d *Definition[E, R]) exitGrading(c Context[E, R], _ Input[E, R], _ time.Time) (Context[E, R], []Effect, error) {
	return c, []Effect{{Kind: EffectCancelDelay, Token: c.delayToken}}, nil
}

func (d *Definition[E, R]) next(c Context[E, R], _ Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
	c = d.Advance(c, TriggerGrade)
	c.AttemptStarted = now
	return c, []Effect{{Kind: EffectResumeTimer, Slot: SlotAssessment}}, nil
}

func (d *Definition[E, R]) askSkip(c Context[E, R], _ Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
	c.skipAsked = now
	return c, []Effect{{Kind: EffectPauseTimer, Slot: SlotAssessment}}, nil
}

func (d *Definition[E, R]) confirmSkip(c Context[E, R], _ Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
	at := c.skipAsked
	if at.IsZero() {
		at = now
	}
	c = d.RecordSkip(c, at)
	c = d.Advance(c, TriggerSkip)
	c.skipAsked = time.Time{}
	c.AttemptStarted = now
	return c, []Effect{{Kind: EffectResumeTimer, Slot: SlotAssessment}}, nil
}

func (d *Definition[E, R]) rejectSkip(c Context[E, R], _ Input[E, R], _ time.Time) (Context[E, R], []Effect, error) {
	c.skipAsked = time.Time{}
	return c, []Effect{{Kind: EffectResumeTimer, Slot: SlotAssessment}}, nil
}

func (d *Definition[E, R]) jump(c Context[E, R], in Input[E, R], now time.Time) (Context[E, R], []Effect, error) {
	c = d.GotoSkipped(c, in.QuestionID)
	c.AttemptStarted = now
	return c, nil, nil
}
