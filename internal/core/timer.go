package core

import "time"

// FixedStep paces generations at a steady interval between steps.
type FixedStep struct {
	interval    time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep that fires once per interval. The first
// call to ShouldStep always fires.
func NewFixedStep(interval time.Duration) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetInterval(interval)
	fs.accumulator = fs.interval
	return fs
}

// SetInterval changes the delay between generations. Non-positive values fall
// back to one generation per 60Hz frame.
func (f *FixedStep) SetInterval(d time.Duration) {
	if d <= 0 {
		d = time.Second / 60
	}
	f.interval = d
}

// Interval reports the configured delay.
func (f *FixedStep) Interval() time.Duration { return f.interval }

// Reset forgets accumulated time so the next call starts a fresh interval.
func (f *FixedStep) Reset() {
	f.accumulator = 0
	f.last = time.Time{}
}

// ShouldStep reports whether the simulation should advance by one generation.
// At most one generation is reported per call; surplus time is discarded so a
// stalled frame never produces a burst of catch-up steps.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	if f.accumulator >= f.interval {
		f.accumulator %= f.interval
		return true
	}
	return false
}
