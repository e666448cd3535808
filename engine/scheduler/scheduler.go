package scheduler

import (
	"errors"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/stage"
)

// Options tune a Scheduler.
type Options struct {
	// Lanes bounds the goroutines used to run Concurrent stages of the same
	// dependency level. Zero or one runs every stage on the ticking goroutine.
	Lanes int
	// MaxFixedSteps bounds the fixed steps consumed in one tick. Zero means no
	// bound besides the clock ceiling. Time left over stays in the
	// accumulator.
	MaxFixedSteps int
}

// TickResult reports what happened during one tick.
type TickResult struct {
	Frame      uint64
	Delta      float64
	FixedSteps int
	Alpha      float64
	Errors     []*stage.StageError
	Aborted    bool
}

// Err joins the stage errors of the tick, or returns nil.
func (r TickResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Scheduler drives a stage graph from a clock. Fixed stages run once per
// whole fixed step in the accumulator, then variable stages run once with the
// frame delta. It is not safe for concurrent use: one goroutine ticks.
type Scheduler[W any] struct {
	clock   *core.Clock
	graph   *stage.Graph[W]
	metrics *core.Metrics
	opts    Options
	frame   uint64
}

func New[W any](clock *core.Clock, graph *stage.Graph[W], opts Options) *Scheduler[W] {
	if clock == nil {
		clock = core.NewClock()
	}
	if opts.Lanes < 0 {
		opts.Lanes = 0
	}
	return &Scheduler[W]{
		clock:   clock,
		graph:   graph,
		metrics: core.NewMetrics(),
		opts:    opts,
	}
}

// Tick advances the clock and runs one frame of the graph against world.
func (s *Scheduler[W]) Tick(world W) TickResult {
	s.frame++
	s.clock.Advance()

	res := TickResult{
		Frame: s.frame,
		Delta: s.clock.Delta(),
	}
	s.metrics.Update(res.Delta)

	if s.graph == nil {
		for s.clock.HasPendingFixedStep() {
			s.clock.ConsumeFixedStep()
			res.FixedSteps++
		}
		res.Alpha = s.alpha()
		return res
	}

	for s.clock.HasPendingFixedStep() {
		if s.opts.MaxFixedSteps > 0 && res.FixedSteps >= s.opts.MaxFixedSteps {
			break
		}
		s.clock.ConsumeFixedStep()
		out := s.execute(world, stage.Fixed, stage.Step{
			Frame:   s.frame,
			Delta:   s.clock.FixedStep(),
			Substep: res.FixedSteps,
			Alpha:   s.alpha(),
			Elapsed: s.clock.ElapsedSinceStart(),
		})
		res.FixedSteps++
		res.Errors = append(res.Errors, out.Errors...)
		if out.Aborted {
			res.Aborted = true
			res.Alpha = s.alpha()
			s.logAbort(res)
			return res
		}
	}

	res.Alpha = s.alpha()
	out := s.execute(world, stage.Variable, stage.Step{
		Frame:   s.frame,
		Delta:   res.Delta,
		Alpha:   res.Alpha,
		Elapsed: s.clock.ElapsedSinceStart(),
	})
	res.Errors = append(res.Errors, out.Errors...)
	if out.Aborted {
		res.Aborted = true
		s.logAbort(res)
	}
	return res
}

func (s *Scheduler[W]) execute(world W, rate stage.Rate, step stage.Step) stage.Outcome {
	if s.opts.Lanes > 1 {
		return s.graph.ExecuteLanes(world, rate, step, s.opts.Lanes)
	}
	return s.graph.Execute(world, rate, step)
}

// alpha is the interpolation factor handed to stages. A capped fixed loop can
// leave more than one step pending; stages never extrapolate past it.
func (s *Scheduler[W]) alpha() float64 {
	return core.Clamp(s.clock.Alpha(), 0, 1)
}

func (s *Scheduler[W]) logAbort(res TickResult) {
	last := res.Errors[len(res.Errors)-1]
	core.LogError("frame %d aborted by stage %q: %v", res.Frame, last.Stage, last.Err)
}

// Rebuild changes the stage registrations with fn and swaps in the new graph.
// On error the current graph stays in place.
func (s *Scheduler[W]) Rebuild(fn func(b *stage.Builder[W]) error) error {
	if s.graph == nil {
		b := stage.NewBuilder[W]()
		if fn != nil {
			if err := fn(b); err != nil {
				return err
			}
		}
		g, err := b.Build()
		if err != nil {
			return err
		}
		s.graph = g
		return nil
	}
	g, err := s.graph.Rebuild(fn)
	if err != nil {
		return err
	}
	s.graph = g
	return nil
}

// Reset restarts the clock. Pending fixed-step time is dropped.
func (s *Scheduler[W]) Reset() {
	s.clock.Reset()
}

func (s *Scheduler[W]) Clock() *core.Clock {
	return s.clock
}

func (s *Scheduler[W]) Graph() *stage.Graph[W] {
	return s.graph
}

func (s *Scheduler[W]) Metrics() *core.Metrics {
	return s.metrics
}

// Frame returns the number of ticks so far.
func (s *Scheduler[W]) Frame() uint64 {
	return s.frame
}
