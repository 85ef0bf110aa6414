package session

import (
	"fmt"
	"time"
)

// InputKind names everything the machine reacts to: caller commands plus
// the timer and delay events it generates for itself.
type InputKind string

// Caller-facing commands.
const (
	CmdStart              InputKind = "start"
	CmdSubmitAnswer       InputKind = "submit-answer"
	CmdSkip               InputKind = "skip"
	CmdConfirmSkip        InputKind = "confirm-skip"
	CmdRejectSkip         InputKind = "reject-skip"
	CmdGotoReview         InputKind = "goto-review"
	CmdForceReview        InputKind = "force-review"
	CmdGotoSkipped        InputKind = "goto-skipped"
	CmdCompleteReview     InputKind = "complete-review"
	CmdCompleteAssessment InputKind = "complete-assessment"
)

// Internal events.
const (
	EvTimerProgress InputKind = "timer.progress"
	EvTimerDeadline InputKind = "timer.deadline"
	EvDelayElapsed  InputKind = "delay.elapsed"
)

var commandKinds = map[InputKind]bool{
	CmdStart:              true,
	CmdSubmitAnswer:       true,
	CmdSkip:               true,
	CmdConfirmSkip:        true,
	CmdRejectSkip:         true,
	CmdGotoReview:         true,
	CmdForceReview:        true,
	CmdGotoSkipped:        true,
	CmdCompleteReview:     true,
	CmdCompleteAssessment: true,
}

// IsCommand reports whether k is part of the caller-facing command surface.
func (k InputKind) IsCommand() bool { return commandKinds[k] }

// Command is a caller input. Question is optional on submit-answer: when
// set, the response is only accepted if it matches the displayed question.
type Command[E, R any] struct {
	Kind       InputKind
	Question   *E
	Response   R
	QuestionID string
}

func (c Command[E, R]) String() string {
	if c.QuestionID != "" {
		return fmt.Sprintf("%s(%s)", c.Kind, c.QuestionID)
	}
	return string(c.Kind)
}

func Start[E, R any]() Command[E, R]       { return Command[E, R]{Kind: CmdStart} }
func Skip[E, R any]() Command[E, R]        { return Command[E, R]{Kind: CmdSkip} }
func ConfirmSkip[E, R any]() Command[E, R] { return Command[E, R]{Kind: CmdConfirmSkip} }
func RejectSkip[E, R any]() Command[E, R]  { return Command[E, R]{Kind: CmdRejectSkip} }
func GotoReview[E, R any]() Command[E, R]  { return Command[E, R]{Kind: CmdGotoReview} }
func ForceReview[E, R any]() Command[E, R] { return Command[E, R]{Kind: CmdForceReview} }

func CompleteReview[E, R any]() Command[E, R] { return Command[E, R]{Kind: CmdCompleteReview} }

func CompleteAssessment[E, R any]() Command[E, R] {
	return Command[E, R]{Kind: CmdCompleteAssessment}
}

// SubmitAnswer submits a response for whatever question is displayed.
func SubmitAnswer[E, R any](response R) Command[E, R] {
	return Command[E, R]{Kind: CmdSubmitAnswer, Response: response}
}

// SubmitAnswerFor submits a response that is only accepted while q is displayed.
func SubmitAnswerFor[E, R any](q E, response R) Command[E, R] {
	return Command[E, R]{Kind: CmdSubmitAnswer, Question: &q, Response: response}
}

func GotoSkipped[E, R any](questionID string) Command[E, R] {
	return Command[E, R]{Kind: CmdGotoSkipped, QuestionID: questionID}
}

// TimerSlot identifies which phase timer an event belongs to.
type TimerSlot string

const (
	SlotAssessment TimerSlot = "assessment"
	SlotReview     TimerSlot = "review"
)

// Input is what the reducer consumes: a command or an internal event.
type Input[E, R any] struct {
	Command[E, R]

	Slot      TimerSlot
	TimerID   string
	Remaining time.Duration
	Token     int
}

// CommandInput wraps a caller command.
func CommandInput[E, R any](c Command[E, R]) Input[E, R] {
	return Input[E, R]{Command: c}
}

// TimerInput builds a progress or deadline event for the given slot.
func TimerInput[E, R any](kind InputKind, slot TimerSlot, remaining time.Duration) Input[E, R] {
	return Input[E, R]{Command: Command[E, R]{Kind: kind}, Slot: slot, Remaining: remaining}
}

// DelayInput builds the event that ends the grading feedback window.
func DelayInput[E, R any](token int) Input[E, R] {
	return Input[E, R]{Command: Command[E, R]{Kind: EvDelayElapsed}, Token: token}
}

// EffectKind is a side effect the runtime performs after a transition.
type EffectKind string

const (
	EffectStartTimer    EffectKind = "timer.start"
	EffectPauseTimer    EffectKind = "timer.pause"
	EffectResumeTimer   EffectKind = "timer.resume"
	EffectStopTimer     EffectKind = "timer.stop"
	EffectScheduleDelay EffectKind = "delay.schedule"
	EffectCancelDelay   EffectKind = "delay.cancel"
	EffectTerminate     EffectKind = "terminate"
)

// Effect is emitted by Transition and executed in order by the runtime.
type Effect struct {
	Kind     EffectKind
	Slot     TimerSlot
	Duration time.Duration
	Token    int
}
