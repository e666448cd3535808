package testbed

import (
	"context"
	"fmt"
	"math"

	"github.com/spaghettifunk/fyrebird/engine"
	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/stage"
	"github.com/spaghettifunk/fyrebird/engine/systems"
)

const (
	gravity     = -9.81
	restitution = 0.8
	floorY      = 0.0
	bodyCount   = 8
	// seconds between two HUD reports
	hudInterval = 5.0
)

type body struct {
	// position and velocity at the end of the last fixed step
	y, vy float64
	// position before the last fixed step, for interpolation
	prevY float64
	// spin in radians, advanced at frame rate
	angle, spin float64
}

// World is the state every testbed stage operates on.
type World struct {
	bodies  []body
	bounces uint64
	// renderY holds the interpolated heights produced by the render stage.
	renderY []float64
	width   uint32
	height  uint32
	seeded  bool
	hud     *core.Timer
}

type TestGame struct {
	*engine.Game[*World]
}

// NewTestGame wires the testbed hooks into a game. When configPath is not
// empty the application configuration is loaded from it.
func NewTestGame(configPath string) (*TestGame, error) {
	config := engine.DefaultConfig()
	config.Name = "Fyrebird Testbed"
	config.Window.StartPosX = 100
	config.Window.StartPosY = 100
	if configPath != "" {
		c, err := engine.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		config = c
	}

	tg := &TestGame{
		Game: &engine.Game[*World]{
			ApplicationConfig: config,
			State: &World{
				width:  config.Window.StartWidth,
				height: config.Window.StartHeight,
				hud:    core.NewLoopingTimer(hudInterval),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnBehaviors = tg.Behaviors
	tg.FnCollisions = tg.Collisions
	tg.FnPhysics = tg.Physics
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	tg.FnStages = tg.Stages

	return tg, nil
}

func (g *TestGame) Initialize(w *World) error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers ")
	}

	// Seed the bodies off the simulation goroutine; the result is applied by
	// the jobs stage.
	_, err := g.SystemManager.JobSystem.Submit(systems.JobTask{
		Run: func(ctx context.Context) (any, error) {
			bodies := make([]body, bodyCount)
			for i := range bodies {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				h := 2.0 + float64(i)*1.5
				bodies[i] = body{y: h, prevY: h, spin: 0.25 * float64(i+1)}
			}
			return bodies, nil
		},
		OnComplete: func(result any) {
			w.bodies = result.([]body)
			w.renderY = make([]float64, len(w.bodies))
			w.seeded = true
			core.LogInfo("testbed seeded with %d bodies", len(w.bodies))
		},
		OnFailure: func(err error) {
			core.LogError("failed to seed testbed bodies: %s", err)
		},
	})
	return err
}

func (g *TestGame) Behaviors(w *World, step stage.Step) error {
	for i := range w.bodies {
		b := &w.bodies[i]
		b.angle = math.Mod(b.angle+b.spin*step.Delta, 2*math.Pi)
	}
	return nil
}

func (g *TestGame) Physics(w *World, step stage.Step) error {
	for i := range w.bodies {
		b := &w.bodies[i]
		b.prevY = b.y
		b.vy += gravity * step.Delta
		b.y += b.vy * step.Delta
	}
	return nil
}

// Collisions runs before physics and resolves the contacts of the previous
// step against the floor.
func (g *TestGame) Collisions(w *World, step stage.Step) error {
	for i := range w.bodies {
		b := &w.bodies[i]
		if b.y < floorY && b.vy < 0 {
			b.y = floorY
			b.vy = -b.vy * restitution
			w.bounces++
		}
	}
	return nil
}

func (g *TestGame) Render(w *World, step stage.Step) error {
	for i, b := range w.bodies {
		w.renderY[i] = b.prevY + (b.y-b.prevY)*step.Alpha
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	w := g.State
	w.width = width
	w.height = height
	return nil
}

func (g *TestGame) Shutdown(w *World) error {
	core.LogInfo("testbed shutting down after %d bounces", w.bounces)
	return nil
}

// Stages adds a HUD stage that periodically reports the world state. It runs
// after the behaviors; the engine keeps render last.
func (g *TestGame) Stages(b *stage.Builder[*World]) error {
	return b.Add(stage.Stage[*World]{
		Name:   "hud",
		After:  []string{engine.StageBehaviors},
		Rate:   stage.Variable,
		Action: g.Hud,
	})
}

func (g *TestGame) Hud(w *World, step stage.Step) error {
	if !w.hud.Advance(step.Delta) || !w.seeded {
		return nil
	}
	var maxY float64
	for _, y := range w.renderY {
		maxY = max(maxY, y)
	}
	core.LogInfo("frame=%d size=%dx%d bodies=%d bounces=%d highest=%.2f",
		step.Frame, w.width, w.height, len(w.bodies), w.bounces, maxY)
	return nil
}
