package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/timedquiz/internal/skipqueue"
)

// maxEventlessSteps bounds the chain of always-transitions taken after a
// single input.
const maxEventlessSteps = 8

// Definition is the session state chart bound to one configuration.
// Transition is a pure function of its arguments apart from the
// caller-supplied grader and response logger, so a Definition can be
// driven directly in tests without the Machine runtime.
type Definition[E, R any] struct {
	cfg   Config[E, R]
	log   Logger
	nodes map[StateID]node[E, R]
	table []transition[E, R]
}

// NewDefinition validates cfg, applies defaults and builds the chart.
func NewDefinition[E, R any](cfg Config[E, R]) (*Definition[E, R], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	d := &Definition[E, R]{cfg: cfg, log: cfg.Logger}
	d.nodes, d.table = d.chart()
	return d, nil
}

// Config returns the configuration with defaults applied.
func (d *Definition[E, R]) Config() Config[E, R] { return d.cfg }

// Initial returns the Starting state with an empty context.
func (d *Definition[E, R]) Initial() State[E, R] {
	return State[E, R]{
		Value:   StateStarting,
		Context: Context[E, R]{Skipped: skipqueue.New[E]()},
	}
}

// Transition applies one input to s and returns the next state together
// with the effects the runtime must perform, in order. Inputs with no
// matching transition leave the state unchanged. A non-nil error is fatal;
// the returned state then carries it in Err and the effects shut the
// session down.
func (d *Definition[E, R]) Transition(s State[E, R], in Input[E, R], now time.Time) (State[E, R], []Effect, error) {
	if s.Done() {
		return s, nil, nil
	}

	t, ok := d.match(s.Value, s.Context, in)
	if !ok {
		d.log.Debug("input ignored", "session", d.cfg.SessionID, "state", s.Value, "input", in.Kind)
		return s, nil, nil
	}

	next, effects, err := d.take(s, t, in, now)
	if err != nil {
		return d.fail(s, err)
	}

	for range maxEventlessSteps {
		t, ok := d.match(next.Value, next.Context, Input[E, R]{})
		if !ok {
			return next, effects, nil
		}
		var more []Effect
		next, more, err = d.take(next, t, Input[E, R]{}, now)
		effects = append(effects, more...)
		if err != nil {
			return d.fail(next, err)
		}
	}
	return next, effects, nil
}

// match finds the first enabled transition for in, searching the active
// leaf first and then its ancestors.
func (d *Definition[E, R]) match(at StateID, c Context[E, R], in Input[E, R]) (transition[E, R], bool) {
	for s := at; s != ""; s = s.Parent() {
		for _, t := range d.table {
			if t.From != s || t.On != in.Kind {
				continue
			}
			if t.Guard != nil && !t.Guard(c, in) {
				continue
			}
			return t, true
		}
	}
	return transition[E, R]{}, false
}

// take runs exit actions, the transition action and entry actions, in
// that order. Internal transitions only run their action.
func (d *Definition[E, R]) take(s State[E, R], t transition[E, R], in Input[E, R], now time.Time) (State[E, R], []Effect, error) {
	c := s.Context
	var effects []Effect

	run := func(a actionFunc[E, R]) error {
		if a == nil {
			return nil
		}
		var eff []Effect
		var err error
		c, eff, err = a(c, in, now)
		effects = append(effects, eff...)
		return err
	}

	if t.To == "" {
		if err := run(t.Action); err != nil {
			return s, nil, err
		}
		s.Context = c
		return s, effects, nil
	}

	target := d.resolve(t.To)
	exits, entries := d.path(s.Value, target)

	for _, id := range exits {
		if err := run(d.nodes[id].Exit); err != nil {
			return s, nil, err
		}
	}
	if err := run(t.Action); err != nil {
		return s, nil, err
	}
	for _, id := range entries {
		if err := run(d.nodes[id].Entry); err != nil {
			return s, nil, err
		}
	}

	d.log.Debug("transition", "session", d.cfg.SessionID, "from", s.Value, "to", target, "input", in.Kind)
	s.Value = target
	s.Context = c
	return s, effects, nil
}

// resolve descends from a compound state to its initial leaf.
func (d *Definition[E, R]) resolve(id StateID) StateID {
	for {
		initial := d.nodes[id].Initial
		if initial == "" {
			return id
		}
		id = initial
	}
}

// path returns the states exited (innermost first) and entered
// (outermost first) when moving from leaf from to leaf to.
func (d *Definition[E, R]) path(from, to StateID) (exits, entries []StateID) {
	src := lineage(from)
	dst := lineage(to)
	for _, s := range src {
		if !slices.Contains(dst, s) || s == from {
			exits = append(exits, s)
		}
	}
	for _, s := range dst {
		if !slices.Contains(src, s) || s == to {
			entries = append(entries, s)
		}
	}
	slices.Reverse(entries)
	return exits, entries
}

// lineage lists s and its ancestors, innermost first.
func lineage(s StateID) []StateID {
	var out []StateID
	for ; s != ""; s = s.Parent() {
		out = append(out, s)
	}
	return out
}

// fail freezes s with err and shuts every timer down.
func (d *Definition[E, R]) fail(s State[E, R], err error) (State[E, R], []Effect, error) {
	d.log.Error("session failed", "session", d.cfg.SessionID, "state", s.Value, "error", err)
	s.Err = err
	s.Context.Remaining = 0
	return s, []Effect{
		{Kind: EffectCancelDelay, Token: s.Context.delayToken},
		{Kind: EffectStopTimer, Slot: SlotAssessment},
		{Kind: EffectStopTimer, Slot: SlotReview},
		{Kind: EffectTerminate},
	}, err
}

func (s State[E, R]) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s (failed: %v)", s.Value, s.Err)
	}
	return string(s.Value)
}
