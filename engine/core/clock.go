package core

import "time"

const (
	// DefaultFixedStep is the fixed simulation interval, in seconds.
	DefaultFixedStep float64 = 1.0 / 60.0
	// DefaultMaxDelta bounds a single frame delta before it reaches the
	// accumulator, in seconds.
	DefaultMaxDelta float64 = 0.25
)

// TimeSource returns the current instant. time.Now satisfies it.
type TimeSource func() time.Time

// Clock tracks wall time and accumulates it into whole fixed steps.
//
// The accumulator is never negative: Advance only adds non-negative deltas and
// ConsumeFixedStep is only meaningful while HasPendingFixedStep is true.
type Clock struct {
	now TimeSource

	start    time.Time
	lastTick time.Time

	delta       float64
	fixedStep   float64
	maxDelta    float64
	accumulator float64
}

// NewClock creates a clock on wall time with the default fixed step and
// clamping ceiling.
func NewClock() *Clock {
	return NewClockWithSource(time.Now, DefaultFixedStep, DefaultMaxDelta)
}

// NewClockWithSource creates a clock reading from src. A non-positive
// fixedStep falls back to DefaultFixedStep; a non-positive maxDelta disables
// clamping.
func NewClockWithSource(src TimeSource, fixedStep, maxDelta float64) *Clock {
	if src == nil {
		src = time.Now
	}
	if fixedStep <= 0 {
		fixedStep = DefaultFixedStep
	}
	if maxDelta < 0 {
		maxDelta = 0
	}
	c := &Clock{
		now:       src,
		fixedStep: fixedStep,
		maxDelta:  maxDelta,
	}
	c.Reset()
	return c
}

// Reset restarts the clock at the current instant and drops any pending
// fixed-step time.
func (c *Clock) Reset() {
	t := c.now()
	c.start = t
	c.lastTick = t
	c.delta = 0
	c.accumulator = 0
}

// Advance samples the time source and adds the elapsed time since the
// previous call to the accumulator. Deltas above the clamping ceiling are cut
// down before accumulation.
func (c *Clock) Advance() {
	t := c.now()
	delta := t.Sub(c.lastTick).Seconds()
	if delta < 0 {
		// time source went backwards
		delta = 0
	}
	if c.maxDelta > 0 {
		delta = Clamp(delta, 0, c.maxDelta)
	}
	c.delta = delta
	c.lastTick = t
	c.accumulator += delta
}

// HasPendingFixedStep reports whether at least one whole fixed step is
// waiting in the accumulator.
func (c *Clock) HasPendingFixedStep() bool {
	return c.accumulator >= c.fixedStep
}

// ConsumeFixedStep removes exactly one fixed step from the accumulator.
func (c *Clock) ConsumeFixedStep() {
	c.accumulator -= c.fixedStep
}

// ElapsedSinceStart returns the seconds since the clock was created or last
// reset.
func (c *Clock) ElapsedSinceStart() float64 {
	return c.now().Sub(c.start).Seconds()
}

// Delta is the (clamped) time between the last two Advance calls, in seconds.
func (c *Clock) Delta() float64 {
	return c.delta
}

func (c *Clock) FixedStep() float64 {
	return c.fixedStep
}

func (c *Clock) MaxDelta() float64 {
	return c.maxDelta
}

func (c *Clock) Accumulator() float64 {
	return c.accumulator
}

// Alpha is the fraction of a fixed step left in the accumulator, used to
// interpolate rendering between two simulation states.
func (c *Clock) Alpha() float64 {
	return c.accumulator / c.fixedStep
}
