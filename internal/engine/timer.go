package engine

import "time"

// Timer measures time between reads; every read restarts the measurement.
type Timer struct {
	now  func() time.Time
	last time.Time
}

func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// NewTimerWithClock is NewTimer with an injected time source.
func NewTimerWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

func (t *Timer) Start() {
	t.last = t.now()
}

// ElapsedAndReset returns the time since Start or the previous call. An
// unstarted timer starts now and reports zero.
func (t *Timer) ElapsedAndReset() time.Duration {
	now := t.now()
	if t.last.IsZero() {
		t.last = now
		return 0
	}
	d := now.Sub(t.last)
	t.last = now
	return d
}
