package stage

import (
	"fmt"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"golang.org/x/sync/errgroup"
)

// Graph is an immutable, resolved stage graph.
type Graph[W any] struct {
	registered []Stage[W]
	stages     []Stage[W]
	byName     map[string]int
	// levels groups positions in stages by dependency depth. Stages sharing a
	// level have no dependency path between them.
	levels [][]int
}

// Outcome summarizes one execution of a phase.
type Outcome struct {
	Ran     int
	Errors  []*StageError
	Aborted bool
}

// Order returns the stage names in resolved execution order.
func (g *Graph[W]) Order() []string {
	names := make([]string, len(g.stages))
	for i, s := range g.stages {
		names[i] = s.Name
	}
	return names
}

// Levels returns the stage names grouped by dependency depth.
func (g *Graph[W]) Levels() [][]string {
	out := make([][]string, len(g.levels))
	for l, idx := range g.levels {
		for _, i := range idx {
			out[l] = append(out[l], g.stages[i].Name)
		}
	}
	return out
}

func (g *Graph[W]) Len() int {
	return len(g.stages)
}

// Stage returns the registered stage with the given name.
func (g *Graph[W]) Stage(name string) (Stage[W], bool) {
	i, ok := g.byName[name]
	if !ok {
		return Stage[W]{}, false
	}
	return g.stages[i], true
}

// Count returns how many stages run at the given rate.
func (g *Graph[W]) Count(rate Rate) int {
	n := 0
	for _, s := range g.stages {
		if s.Rate == rate {
			n++
		}
	}
	return n
}

// Execute runs every stage of the given rate in resolved order, one at a
// time. A failing stage does not stop its siblings unless its error is fatal.
func (g *Graph[W]) Execute(world W, rate Rate, step Step) Outcome {
	var out Outcome
	for i := range g.stages {
		s := &g.stages[i]
		if s.Rate != rate {
			continue
		}
		out.Ran++
		if serr := run(s, world, step); serr != nil {
			out.Errors = append(out.Errors, serr)
			if serr.Fatal {
				out.Aborted = true
				return out
			}
		}
	}
	return out
}

// ExecuteLanes runs the stages of the given rate level by level. Within a
// level, stages flagged Concurrent run in parallel on up to lanes goroutines
// and the others run one at a time in resolved order. A fatal error stops the
// execution once the current level has settled.
func (g *Graph[W]) ExecuteLanes(world W, rate Rate, step Step, lanes int) Outcome {
	if lanes <= 1 {
		return g.Execute(world, rate, step)
	}

	var out Outcome
	for _, level := range g.levels {
		var concurrent, serial []int
		for _, i := range level {
			switch s := &g.stages[i]; {
			case s.Rate != rate:
			case s.Concurrent:
				concurrent = append(concurrent, i)
			default:
				serial = append(serial, i)
			}
		}

		if len(concurrent) > 0 {
			errs := make([]*StageError, len(concurrent))
			var eg errgroup.Group
			eg.SetLimit(lanes)
			for k, i := range concurrent {
				k := k
				s := &g.stages[i]
				eg.Go(func() error {
					errs[k] = run(s, world, step)
					return nil
				})
			}
			_ = eg.Wait()
			out.Ran += len(concurrent)
			for _, serr := range errs {
				if serr != nil {
					out.Errors = append(out.Errors, serr)
					out.Aborted = out.Aborted || serr.Fatal
				}
			}
			if out.Aborted {
				return out
			}
		}

		for _, i := range serial {
			out.Ran++
			if serr := run(&g.stages[i], world, step); serr != nil {
				out.Errors = append(out.Errors, serr)
				if serr.Fatal {
					out.Aborted = true
					return out
				}
			}
		}
	}
	return out
}

// Rebuild returns a new graph made of the current registrations changed by
// fn. The receiver is left untouched, whether the new graph builds or not.
func (g *Graph[W]) Rebuild(fn func(b *Builder[W]) error) (*Graph[W], error) {
	b := NewBuilder[W]()
	for _, s := range g.registered {
		if err := b.Add(s); err != nil {
			return nil, err
		}
	}
	if fn != nil {
		if err := fn(b); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func run[W any](s *Stage[W], world W, step Step) (serr *StageError) {
	defer func() {
		if r := recover(); r != nil {
			core.LogError("stage %q panicked: %v", s.Name, r)
			serr = &StageError{
				Stage: s.Name,
				Rate:  s.Rate,
				Err:   fmt.Errorf("%w: %v", ErrStagePanic, r),
				Fatal: true,
			}
		}
	}()

	if err := s.Action(world, step); err != nil {
		return &StageError{
			Stage: s.Name,
			Rate:  s.Rate,
			Err:   err,
			Fatal: core.IsFatal(err),
		}
	}
	return nil
}
