// Package skipqueue holds questions deferred during a session.
//
// A Queue is an ordered set of ids plus a lookup table. Order is first
// skipped, first revisited. Queues are values: every mutating method
// returns a new Queue and leaves the receiver untouched, so a session
// context holding one can be copied freely.
package skipqueue

import "slices"

// Queue is an insertion-ordered FIFO of questions keyed by id.
type Queue[E any] struct {
	order []string
	items map[string]E
}

// New returns an empty queue.
func New[E any]() Queue[E] {
	return Queue[E]{}
}

// Len returns the number of queued questions.
func (q Queue[E]) Len() int {
	return len(q.order)
}

// Empty reports whether nothing is queued.
func (q Queue[E]) Empty() bool {
	return len(q.order) == 0
}

// Contains reports whether id has an outstanding entry.
func (q Queue[E]) Contains(id string) bool {
	_, ok := q.items[id]
	return ok
}

// Get returns the question queued under id.
func (q Queue[E]) Get(id string) (E, bool) {
	e, ok := q.items[id]
	return e, ok
}

// Push appends e under id. If id is already queued its value is
// refreshed in place and its position is kept.
func (q Queue[E]) Push(id string, e E) Queue[E] {
	next := q.clone()
	if _, ok := next.items[id]; !ok {
		next.order = append(next.order, id)
	}
	next.items[id] = e
	return next
}

// Head returns the oldest entry without removing it.
func (q Queue[E]) Head() (string, E, bool) {
	if len(q.order) == 0 {
		var zero E
		return "", zero, false
	}
	id := q.order[0]
	return id, q.items[id], true
}

// Pop removes the oldest entry. ok is false when the queue is empty, in
// which case the returned queue is the receiver.
func (q Queue[E]) Pop() (id string, e E, rest Queue[E], ok bool) {
	id, e, ok = q.Head()
	if !ok {
		return "", e, q, false
	}
	return id, e, q.Remove(id), true
}

// Remove drops id from the queue. Removing an absent id is a no-op.
func (q Queue[E]) Remove(id string) Queue[E] {
	if !q.Contains(id) {
		return q
	}
	next := q.clone()
	delete(next.items, id)
	next.order = slices.DeleteFunc(next.order, func(s string) bool { return s == id })
	return next
}

// IDs returns the queued ids in revisit order.
func (q Queue[E]) IDs() []string {
	return slices.Clone(q.order)
}

// Items returns the queued questions in revisit order.
func (q Queue[E]) Items() []E {
	out := make([]E, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.items[id])
	}
	return out
}

func (q Queue[E]) clone() Queue[E] {
	items := make(map[string]E, len(q.items)+1)
	for k, v := range q.items {
		items[k] = v
	}
	return Queue[E]{
		order: slices.Clone(q.order),
		items: items,
	}
}
