package stage

import (
	"fmt"
)

// Rate decides in which phase of a tick a stage runs.
type Rate uint8

const (
	// Variable stages run once per tick with the frame delta.
	Variable Rate = iota
	// Fixed stages run once per consumed fixed step.
	Fixed
)

func (r Rate) String() string {
	switch r {
	case Variable:
		return "variable"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("rate(%d)", uint8(r))
	}
}

// Step carries the timing of one stage invocation.
type Step struct {
	// Frame is the tick counter, starting at 1.
	Frame uint64
	// Delta is the clamped frame delta for variable stages and the fixed step
	// for fixed stages, in seconds.
	Delta float64
	// Substep is the index of the fixed step within the tick. Always 0 for
	// variable stages.
	Substep int
	// Alpha is the pending fraction of a fixed step, for interpolation.
	Alpha float64
	// Elapsed is the time since the clock started, in seconds.
	Elapsed float64
}

// Action is the work of one stage. It owns world exclusively until it
// returns. Returning an error wrapped with core.Fatal aborts the rest of the
// tick.
type Action[W any] func(world W, step Step) error

// Stage is a named unit of per-tick work with ordering dependencies.
type Stage[W any] struct {
	Name string
	// After lists the stages that must complete before this one.
	After []string
	Rate  Rate
	// Concurrent allows the stage to share a parallel lane with other
	// independent stages when the graph is executed with lanes.
	Concurrent bool
	Action     Action[W]
}

// StageError reports the failure of one stage action.
type StageError struct {
	Stage string
	Rate  Rate
	Err   error
	Fatal bool
}

func (e *StageError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("stage %q (%s) failed fatally: %v", e.Stage, e.Rate, e.Err)
	}
	return fmt.Sprintf("stage %q (%s) failed: %v", e.Stage, e.Rate, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
