package engine

import (
	"github.com/spaghettifunk/fyrebird/engine/stage"
)

// Built-in stage names, in execution order.
const (
	StageJobs       = "jobs"
	StageAssets     = "assets"
	StageBehaviors  = "behaviors"
	StageCollisions = "collisions"
	StagePhysics    = "physics"
	StageRender     = "render"
)

func (e *Engine[W]) registerStages(b *stage.Builder[W]) error {
	g := e.game
	stages := []stage.Stage[W]{
		{
			Name: StageJobs,
			Rate: stage.Variable,
			Action: func(W, stage.Step) error {
				e.systemManager.UpdateJobs()
				return nil
			},
		},
		{
			Name:  StageAssets,
			After: []string{StageJobs},
			Rate:  stage.Variable,
			Action: func(W, stage.Step) error {
				e.systemManager.UpdateAssets()
				return nil
			},
		},
		{
			Name:   StageBehaviors,
			After:  []string{StageAssets},
			Rate:   stage.Variable,
			Action: hook(g.FnBehaviors),
		},
		{
			Name:   StageCollisions,
			After:  []string{StageBehaviors},
			Rate:   stage.Fixed,
			Action: hook(g.FnCollisions),
		},
		{
			Name:   StagePhysics,
			After:  []string{StageCollisions},
			Rate:   stage.Fixed,
			Action: hook(g.FnPhysics),
		},
	}
	for _, s := range stages {
		if err := b.Add(s); err != nil {
			return err
		}
	}

	if g.FnStages != nil {
		if err := g.FnStages(b); err != nil {
			return err
		}
	}

	// render closes every frame: it depends on every other stage
	return b.Add(stage.Stage[W]{
		Name:  StageRender,
		After: b.Names(),
		Rate:  stage.Variable,
		Action: func(world W, step stage.Step) error {
			if g.FnRender != nil {
				if err := g.FnRender(world, step); err != nil {
					return err
				}
			}
			return e.renderer.DrawFrame(step.Frame, step.Delta, step.Alpha)
		},
	})
}

func hook[W any](fn Update[W]) stage.Action[W] {
	if fn == nil {
		return func(W, stage.Step) error { return nil }
	}
	return stage.Action[W](fn)
}
