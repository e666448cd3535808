package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct {
	now time.Time
}

func (f *fakeTime) Now() time.Time { return f.now }

func (f *fakeTime) Add(d time.Duration) { f.now = f.now.Add(d) }

type world struct {
	trace  []string
	deltas map[string][]float64
}

func newWorld() *world {
	return &world{deltas: map[string][]float64{}}
}

func record(name string) stage.Action[*world] {
	return func(w *world, step stage.Step) error {
		w.trace = append(w.trace, name)
		w.deltas[name] = append(w.deltas[name], step.Delta)
		return nil
	}
}

func buildGraph(t *testing.T, extra ...stage.Stage[*world]) *stage.Graph[*world] {
	t.Helper()
	b := stage.NewBuilder[*world]()
	require.NoError(t, b.Add(stage.Stage[*world]{Name: "behaviors", Rate: stage.Variable, Action: record("behaviors")}))
	require.NoError(t, b.Add(stage.Stage[*world]{Name: "collisions", After: []string{"behaviors"}, Rate: stage.Fixed, Action: record("collisions")}))
	require.NoError(t, b.Add(stage.Stage[*world]{Name: "physics", After: []string{"collisions"}, Rate: stage.Fixed, Action: record("physics")}))
	require.NoError(t, b.Add(stage.Stage[*world]{Name: "render", After: []string{"physics"}, Rate: stage.Variable, Action: record("render")}))
	for _, s := range extra {
		require.NoError(t, b.Add(s))
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func newScheduler(t *testing.T, ft *fakeTime, g *stage.Graph[*world], opts Options) *Scheduler[*world] {
	t.Helper()
	clock := core.NewClockWithSource(ft.Now, 1.0/60.0, 0.25)
	return New(clock, g, opts)
}

func TestTickThreeFramesOfTwentyMilliseconds(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{})
	w := newWorld()

	fixed := 0
	for i := 0; i < 3; i++ {
		ft.Add(20 * time.Millisecond)
		res := s.Tick(w)
		require.NoError(t, res.Err())
		assert.False(t, res.Aborted)
		assert.Equal(t, uint64(i+1), res.Frame)
		assert.InDelta(t, 0.02, res.Delta, 1e-9)
		assert.Equal(t, 1, res.FixedSteps)
		fixed += res.FixedSteps
	}

	assert.Equal(t, 3, fixed)
	assert.Len(t, w.deltas["behaviors"], 3)
	assert.Len(t, w.deltas["render"], 3)
	assert.Len(t, w.deltas["physics"], 3)
	for _, d := range w.deltas["physics"] {
		assert.InDelta(t, 1.0/60.0, d, 1e-12)
	}
	for _, d := range w.deltas["render"] {
		assert.InDelta(t, 0.02, d, 1e-9)
	}
	assert.InDelta(t, 0.01, s.Clock().Accumulator(), 1e-9)
}

func TestTickRunsFixedPhaseBeforeVariablePhase(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{})
	w := newWorld()

	ft.Add(40 * time.Millisecond)
	res := s.Tick(w)
	require.Equal(t, 2, res.FixedSteps)
	assert.Equal(t, []string{
		"collisions", "physics",
		"collisions", "physics",
		"behaviors", "render",
	}, w.trace)
}

func TestTickWithoutPendingStepRunsOnlyVariableStages(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{})
	w := newWorld()

	ft.Add(5 * time.Millisecond)
	res := s.Tick(w)
	assert.Equal(t, 0, res.FixedSteps)
	assert.Equal(t, []string{"behaviors", "render"}, w.trace)
	assert.InDelta(t, 0.3, res.Alpha, 1e-9)
}

func TestTickClampsLongFrames(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{})
	w := newWorld()

	ft.Add(5 * time.Second)
	res := s.Tick(w)
	assert.InDelta(t, 0.25, res.Delta, 1e-12)
	assert.InDelta(t, 15, res.FixedSteps, 1)
	assert.Less(t, s.Clock().Accumulator(), s.Clock().FixedStep()+1e-9)
}

func TestTickFatalFixedStageAbortsTick(t *testing.T) {
	boom := errors.New("solver exploded")
	ft := &fakeTime{now: time.Unix(0, 0)}
	g := buildGraph(t, stage.Stage[*world]{
		Name:  "constraints",
		After: []string{"collisions"},
		Rate:  stage.Fixed,
		Action: func(*world, stage.Step) error {
			return core.Fatal(boom)
		},
	})
	s := newScheduler(t, ft, g, Options{})
	w := newWorld()

	ft.Add(50 * time.Millisecond)
	res := s.Tick(w)

	assert.True(t, res.Aborted)
	assert.Equal(t, 1, res.FixedSteps)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "constraints", res.Errors[0].Stage)
	assert.ErrorIs(t, res.Err(), boom)
	// physics is registered before constraints, so it ran; render never did.
	assert.Equal(t, []string{"collisions", "physics"}, w.trace)
	// the unconsumed steps stay for the next tick
	assert.True(t, s.Clock().HasPendingFixedStep())
}

func TestTickNonFatalErrorKeepsGoing(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	g := buildGraph(t, stage.Stage[*world]{
		Name:  "audio",
		After: []string{"behaviors"},
		Rate:  stage.Variable,
		Action: func(*world, stage.Step) error {
			return errors.New("device lost")
		},
	})
	s := newScheduler(t, ft, g, Options{})
	w := newWorld()

	ft.Add(20 * time.Millisecond)
	res := s.Tick(w)
	assert.False(t, res.Aborted)
	require.Len(t, res.Errors, 1)
	assert.False(t, res.Errors[0].Fatal)
	assert.Contains(t, w.trace, "render")
}

func TestTickMaxFixedStepsKeepsRemainder(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{MaxFixedSteps: 2})
	w := newWorld()

	ft.Add(100 * time.Millisecond)
	res := s.Tick(w)
	assert.Equal(t, 2, res.FixedSteps)
	assert.InDelta(t, 0.1-2.0/60.0, s.Clock().Accumulator(), 1e-9)
}

func TestTickWithLanes(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{Lanes: 4})
	w := newWorld()

	ft.Add(20 * time.Millisecond)
	res := s.Tick(w)
	require.NoError(t, res.Err())
	assert.Equal(t, []string{"collisions", "physics", "behaviors", "render"}, w.trace)
}

func TestRebuildSwapsGraphOnlyOnSuccess(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, buildGraph(t), Options{})
	before := s.Graph()

	err := s.Rebuild(func(b *stage.Builder[*world]) error {
		return b.Add(stage.Stage[*world]{Name: "late", After: []string{"render", "late2"}, Action: record("late")})
	})
	assert.ErrorIs(t, err, stage.ErrUnknownDependency)
	assert.Same(t, before, s.Graph())

	err = s.Rebuild(func(b *stage.Builder[*world]) error {
		return b.Add(stage.Stage[*world]{Name: "ui", After: []string{"render"}, Action: record("ui")})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"behaviors", "collisions", "physics", "render", "ui"}, s.Graph().Order())

	w := newWorld()
	ft.Add(time.Millisecond)
	s.Tick(w)
	assert.Equal(t, []string{"behaviors", "render", "ui"}, w.trace)
}

func TestTickWithoutGraph(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, nil, Options{})

	ft.Add(40 * time.Millisecond)
	res := s.Tick(newWorld())
	assert.Equal(t, 2, res.FixedSteps)
	assert.Nil(t, res.Err())
}

func TestRebuildWithoutGraphOrFunction(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	s := newScheduler(t, ft, nil, Options{})

	require.NoError(t, s.Rebuild(nil))
	require.NotNil(t, s.Graph())
	assert.Zero(t, s.Graph().Len())

	require.NoError(t, s.Rebuild(nil))
	assert.Zero(t, s.Graph().Len())
}

func TestTickCappedFixedLoopKeepsAlphaInRange(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	var alphas []float64
	sample := func(_ *world, step stage.Step) error {
		alphas = append(alphas, step.Alpha)
		return nil
	}
	g := buildGraph(t,
		stage.Stage[*world]{Name: "fixed-alpha", Rate: stage.Fixed, Action: sample},
		stage.Stage[*world]{Name: "render-alpha", Rate: stage.Variable, Action: sample},
	)
	s := newScheduler(t, ft, g, Options{MaxFixedSteps: 1})

	// 0.1s is six steps; only one is consumed
	ft.Add(100 * time.Millisecond)
	res := s.Tick(newWorld())
	assert.Equal(t, 1, res.FixedSteps)
	assert.Greater(t, s.Clock().Alpha(), 1.0)
	assert.Equal(t, 1.0, res.Alpha)
	require.Len(t, alphas, 2)
	for _, a := range alphas {
		assert.GreaterOrEqual(t, a, 0.0)
		assert.LessOrEqual(t, a, 1.0)
	}
}
