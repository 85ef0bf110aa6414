package session

// Trigger is what just finished on the current question.
type Trigger int

const (
	TriggerSkip Trigger = iota
	TriggerGrade
)

func (t Trigger) String() string {
	if t == TriggerGrade {
		return "grade"
	}
	return "skip"
}

// Advance decides the next question after a skip or a graded response.
//
// Outside skip-mode the primary order moves forward; once the last
// primary question is vacated the pass is complete and the skip queue is
// drained head first. A revisit that interrupted the primary pass returns
// to the stored return point. A graded response that does not warrant
// advancing keeps the current question (and any return point) in place.
func (d *Definition[E, R]) Advance(c Context[E, R], trigger Trigger) Context[E, R] {
	if trigger == TriggerGrade && !d.ShouldAdvance(c) {
		return c
	}

	switch {
	case !c.SkipMode:
		if c.Index >= d.lastIndex() {
			c.PrimaryDone = true
		}
		if !c.PrimaryDone {
			return d.show(c, c.Index+1, d.cfg.Questions[c.Index+1])
		}
		_, head, rest, ok := c.Skipped.Pop()
		if !ok {
			return c
		}
		c.Skipped = rest
		c.SkipMode = true
		c.Return = &ReturnPoint[E]{Index: c.Index, Question: c.Current}
		return d.show(c, c.Index, head)

	case !c.PrimaryDone:
		rp := c.Return
		c.SkipMode = false
		c.Return = nil
		if rp == nil {
			return d.show(c, c.Index, d.cfg.Questions[c.Index])
		}
		return d.show(c, rp.Index, rp.Question)

	default:
		_, head, rest, ok := c.Skipped.Pop()
		if !ok {
			return c
		}
		c.Skipped = rest
		return d.show(c, c.Index, head)
	}
}

// GotoSkipped jumps to a queued question. From the primary pass the
// displayed question becomes the return point without being queued; from
// skip-mode the displayed question goes back to the end of the queue.
// Unknown ids leave the context unchanged.
func (d *Definition[E, R]) GotoSkipped(c Context[E, R], id string) Context[E, R] {
	target, ok := c.Skipped.Get(id)
	if !ok {
		return c
	}
	c.Skipped = c.Skipped.Remove(id)
	if c.SkipMode {
		c.Skipped = c.Skipped.Push(d.cfg.QuestionID(c.Current), c.Current)
	} else {
		c.SkipMode = true
		c.Return = &ReturnPoint[E]{Index: c.Index, Question: c.Current}
	}
	return d.show(c, c.Index, target)
}

// Exhausted reports whether the in-progress phase has nothing left to
// ask: the primary pass is complete, the skip queue is empty, and a
// revisited question (if any) needs no further attempt.
func (d *Definition[E, R]) Exhausted(c Context[E, R]) bool {
	if !c.PrimaryDone || !c.Skipped.Empty() {
		return false
	}
	return !c.SkipMode || d.ShouldAdvance(c)
}

// show puts q on screen at primary index idx. The attempt count comes
// from the log so retries survive interruptions.
func (d *Definition[E, R]) show(c Context[E, R], idx int, q E) Context[E, R] {
	if idx > c.Index {
		c.Index = idx
	}
	c.Current = q
	c.Presented = true
	c.AttemptCount = AttemptsFor(c.Events, d.cfg.QuestionID(q))
	c.LastResult = nil
	return c
}

func (d *Definition[E, R]) lastIndex() int {
	return len(d.cfg.Questions) - 1
}
