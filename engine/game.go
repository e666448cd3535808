package engine

import (
	"github.com/spaghettifunk/fyrebird/engine/renderer"
	"github.com/spaghettifunk/fyrebird/engine/stage"
	"github.com/spaghettifunk/fyrebird/engine/systems"
)

// Game is what an application plugs into the engine. State is the world every
// stage operates on. Nil hooks are skipped.
type Game[W any] struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	State             W
	FrameSink         renderer.FrameSink

	FnInitialize Initialize[W]
	FnBehaviors  Update[W]
	FnCollisions Update[W]
	FnPhysics    Update[W]
	FnRender     Update[W]
	FnOnResize   OnResize
	FnShutdown   Shutdown[W]
	// FnStages registers additional stages around the built-in ones.
	FnStages Stages[W]
}

type Initialize[W any] func(world W) error
type Update[W any] func(world W, step stage.Step) error
type OnResize func(width uint32, height uint32) error
type Shutdown[W any] func(world W) error
type Stages[W any] func(b *stage.Builder[W]) error
