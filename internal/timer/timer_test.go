package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 20 * time.Millisecond

func collect(t *testing.T) (chan Event, func(Event)) {
	t.Helper()
	ch := make(chan Event, 256)
	return ch, func(ev Event) { ch <- ev }
}

func waitDeadline(t *testing.T, ch <-chan Event, within time.Duration) []Event {
	t.Helper()
	var got []Event
	deadline := time.After(within)
	for {
		select {
		case ev := <-ch:
			got = append(got, ev)
			if ev.Kind == Deadline {
				return got
			}
		case <-deadline:
			t.Fatalf("no deadline within %s (got %d events)", within, len(got))
			return nil
		}
	}
}

func TestTimer_ProgressThenDeadline(t *testing.T) {
	ch, deliver := collect(t)
	start := time.Now()
	tm := Start("assessment", 100*time.Millisecond, deliver, WithInterval(testInterval))
	defer tm.Stop()

	events := waitDeadline(t, ch, time.Second)
	elapsed := time.Since(start)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, Deadline, last.Kind)
	assert.Equal(t, time.Duration(0), last.Remaining)
	assert.Equal(t, "assessment", last.TimerID)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)

	progress := events[:len(events)-1]
	require.NotEmpty(t, progress, "expected progress events before the deadline")
	for i, ev := range progress {
		assert.Equal(t, Progress, ev.Kind)
		assert.Positive(t, ev.Remaining)
		if i > 0 {
			assert.Less(t, ev.Remaining, progress[i-1].Remaining, "remaining must decrease")
		}
	}
}

func TestTimer_DeadlineFiresOnce(t *testing.T) {
	ch, deliver := collect(t)
	tm := Start("t", 30*time.Millisecond, deliver, WithInterval(testInterval))

	waitDeadline(t, ch, time.Second)
	time.Sleep(5 * testInterval)

	for {
		select {
		case ev := <-ch:
			t.Fatalf("unexpected event after deadline: %+v", ev)
		default:
			tm.Stop()
			return
		}
	}
}

func TestTimer_PausePreservesRemaining(t *testing.T) {
	ch, deliver := collect(t)
	tm := Start("t", 200*time.Millisecond, deliver, WithInterval(testInterval))
	defer tm.Stop()

	time.Sleep(50 * time.Millisecond)
	tm.Pause()
	frozen := tm.Remaining()
	assert.True(t, tm.Paused())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, frozen, tm.Remaining(), "remaining must not move while paused")

	// Drain anything emitted before the pause took effect.
	for len(ch) > 0 {
		<-ch
	}
	time.Sleep(3 * testInterval)
	assert.Empty(t, ch, "no progress while paused")

	tm.Resume()
	resumed := time.Now()
	events := waitDeadline(t, ch, time.Second)
	require.Equal(t, Deadline, events[len(events)-1].Kind)
	assert.GreaterOrEqual(t, time.Since(resumed), frozen-5*time.Millisecond,
		"deadline must come no earlier than the frozen remaining time after resume")
}

func TestTimer_StopSilencesTimer(t *testing.T) {
	ch, deliver := collect(t)
	tm := Start("t", 100*time.Millisecond, deliver, WithInterval(testInterval))

	tm.Stop()
	tm.Stop() // idempotent
	time.Sleep(200 * time.Millisecond)

	for len(ch) > 0 {
		ev := <-ch
		assert.NotEqual(t, Deadline, ev.Kind, "stopped timer must never reach its deadline")
	}
}

func TestTimer_ClampsUnderflow(t *testing.T) {
	// A clock that jumps far past the deadline on the first tick.
	base := time.Now()
	calls := 0
	clock := func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(time.Hour)
	}

	ch, deliver := collect(t)
	tm := Start("t", 50*time.Millisecond, deliver, WithInterval(testInterval), WithClock(clock))
	defer tm.Stop()

	events := waitDeadline(t, ch, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, time.Duration(0), events[0].Remaining)
	assert.Equal(t, time.Duration(0), tm.Remaining())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "progress", Progress.String())
	assert.Equal(t, "deadline", Deadline.String())
}
