package stage

import (
	"fmt"
	"sort"
)

// Builder collects stages in registration order. Registration order is the
// tie-breaker of the topological sort, so the same registrations always
// resolve to the same order.
type Builder[W any] struct {
	stages []Stage[W]
	index  map[string]int
}

func NewBuilder[W any]() *Builder[W] {
	return &Builder[W]{
		index: make(map[string]int),
	}
}

// Add registers a stage. Names must be unique.
func (b *Builder[W]) Add(s Stage[W]) error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidStage)
	}
	if s.Action == nil {
		return fmt.Errorf("%w: stage %q has no action", ErrInvalidStage, s.Name)
	}
	if _, ok := b.index[s.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateStage, s.Name)
	}
	s.After = dedupe(s.After)
	b.index[s.Name] = len(b.stages)
	b.stages = append(b.stages, s)
	return nil
}

// Remove drops a registered stage. Stages depending on it will fail to build
// until their dependencies are fixed.
func (b *Builder[W]) Remove(name string) bool {
	i, ok := b.index[name]
	if !ok {
		return false
	}
	b.stages = append(b.stages[:i], b.stages[i+1:]...)
	delete(b.index, name)
	for j := i; j < len(b.stages); j++ {
		b.index[b.stages[j].Name] = j
	}
	return true
}

// Has reports whether a stage with the given name is registered.
func (b *Builder[W]) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

// Names returns the registered stage names in registration order.
func (b *Builder[W]) Names() []string {
	names := make([]string, len(b.stages))
	for i, s := range b.stages {
		names[i] = s.Name
	}
	return names
}

func (b *Builder[W]) Len() int {
	return len(b.stages)
}

// Build resolves the execution order. Among the stages whose dependencies are
// all satisfied, the one registered first goes next. Unknown dependencies and
// cycles are reported without producing a partial order.
func (b *Builder[W]) Build() (*Graph[W], error) {
	n := len(b.stages)

	deps := make([][]int, n)
	dependents := make([][]int, n)
	indegree := make([]int, n)
	for i, s := range b.stages {
		for _, d := range s.After {
			j, ok := b.index[d]
			if !ok {
				return nil, fmt.Errorf("%w: stage %q depends on %q", ErrUnknownDependency, s.Name, d)
			}
			deps[i] = append(deps[i], j)
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		}
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	level := make([]int, n)
	for len(ready) > 0 {
		sort.Ints(ready)
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		for _, d := range deps[i] {
			if level[d]+1 > level[i] {
				level[i] = level[d] + 1
			}
		}
		for _, k := range dependents[i] {
			indegree[k]--
			if indegree[k] == 0 {
				ready = append(ready, k)
			}
		}
	}

	if len(order) < n {
		return nil, b.cycleError(deps, indegree)
	}

	registered := make([]Stage[W], n)
	copy(registered, b.stages)

	g := &Graph[W]{
		registered: registered,
		stages:     make([]Stage[W], 0, n),
		byName:     make(map[string]int, n),
	}
	for _, i := range order {
		g.byName[b.stages[i].Name] = len(g.stages)
		g.stages = append(g.stages, b.stages[i])

		for len(g.levels) <= level[i] {
			g.levels = append(g.levels, nil)
		}
		g.levels[level[i]] = append(g.levels[level[i]], len(g.stages)-1)
	}
	return g, nil
}

// cycleError collects the unresolved stages and walks their dependency edges
// until a stage repeats.
func (b *Builder[W]) cycleError(deps [][]int, indegree []int) error {
	var unresolved []string
	first := -1
	for i, s := range b.stages {
		if indegree[i] > 0 {
			unresolved = append(unresolved, s.Name)
			if first < 0 {
				first = i
			}
		}
	}

	// Every unresolved stage has at least one unresolved dependency, so the
	// walk can only end on a repeat.
	seen := make(map[int]int)
	var path []int
	for i := first; ; {
		if at, ok := seen[i]; ok {
			path = append(path[at:], i)
			break
		}
		seen[i] = len(path)
		path = append(path, i)
		for _, d := range deps[i] {
			if indegree[d] > 0 {
				i = d
				break
			}
		}
	}

	// path follows "depends on" edges; report it in execution direction.
	cycle := make([]string, len(path))
	for k, i := range path {
		cycle[len(path)-1-k] = b.stages[i].Name
	}
	return &CyclicDependencyError{Stages: unresolved, Cycle: cycle}
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
