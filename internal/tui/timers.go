package tui

import (
	"sort"
	"time"

	"github.com/timvw/horza/internal/host"
)

// Timers runs callbacks on the UI goroutine. The frame loop calls Fire on
// every tick; nothing runs in between.
type Timers struct {
	clock   host.Clock
	pending []*timer
}

type timer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func NewTimers(clock host.Clock) *Timers {
	if clock == nil {
		clock = host.SystemClock{}
	}
	return &Timers{clock: clock}
}

func (ts *Timers) AfterFunc(d time.Duration, fn func()) host.Timer {
	t := &timer{at: ts.clock.Now().Add(d), fn: fn}
	ts.pending = append(ts.pending, t)
	return t
}

// Fire runs every live timer due now in deadline order and returns how many
// ran. Timers scheduled by a callback wait for the next call.
func (ts *Timers) Fire() int {
	now := ts.clock.Now()
	var due, later []*timer
	for _, t := range ts.pending {
		switch {
		case t.stopped || t.fired:
		case t.at.After(now):
			later = append(later, t)
		default:
			due = append(due, t)
		}
	}
	ts.pending = later
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	n := 0
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.fired = true
		n++
		t.fn()
	}
	return n
}

// Next returns the earliest live deadline.
func (ts *Timers) Next() (time.Time, bool) {
	var next time.Time
	found := false
	for _, t := range ts.pending {
		if t.stopped || t.fired {
			continue
		}
		if !found || t.at.Before(next) {
			next, found = t.at, true
		}
	}
	return next, found
}
