package core

import "math"

// Timer counts simulation time towards a duration. It is driven explicitly
// through Advance, usually from a stage with the tick delta.
type Timer struct {
	// Is the timer currently running
	Running bool
	// Duration in seconds
	Duration float64
	// Current elapsed time in seconds
	Elapsed float64
	// Should the timer loop when completed
	Looping bool
	// Has the timer completed (reached duration)
	Completed bool
}

// NewTimer creates a running one-shot timer.
func NewTimer(duration float64) *Timer {
	return &Timer{
		Running:  true,
		Duration: duration,
	}
}

// NewLoopingTimer creates a running timer that wraps around on completion.
func NewLoopingTimer(duration float64) *Timer {
	return &Timer{
		Running:  true,
		Duration: duration,
		Looping:  true,
	}
}

// Start or resume the timer.
func (t *Timer) Start() {
	t.Running = true
}

// Pause the timer.
func (t *Timer) Pause() {
	t.Running = false
}

// Reset clears elapsed time and the completed flag. The running state is kept.
func (t *Timer) Reset() {
	t.Elapsed = 0
	t.Completed = false
}

// Progress returns the normalized progress, 0 to 1.
func (t *Timer) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return Clamp(t.Elapsed/t.Duration, 0, 1)
}

// Advance adds dt to a running, incomplete timer. It returns true when the
// timer reached its duration during this call; looping timers wrap instead of
// completing.
func (t *Timer) Advance(dt float64) bool {
	if !t.Running || t.Completed {
		return false
	}
	t.Elapsed += dt
	if t.Elapsed < t.Duration {
		return false
	}
	if t.Looping && t.Duration > 0 {
		t.Elapsed = math.Mod(t.Elapsed, t.Duration)
		return true
	}
	t.Completed = true
	return true
}
