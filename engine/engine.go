package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/platform"
	"github.com/spaghettifunk/fyrebird/engine/platform/desktop"
	"github.com/spaghettifunk/fyrebird/engine/renderer"
	"github.com/spaghettifunk/fyrebird/engine/renderer/bootstrap"
	"github.com/spaghettifunk/fyrebird/engine/renderer/vulkan"
	"github.com/spaghettifunk/fyrebird/engine/scheduler"
	"github.com/spaghettifunk/fyrebird/engine/stage"
	"github.com/spaghettifunk/fyrebird/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageShutdown
)

var (
	ErrNotInitialized = errors.New("engine is not initialized")
	ErrNoGame         = errors.New("no game provided")
)

// Option replaces a collaborator of the engine, mostly for tests and
// headless tools.
type Option func(*options)

type options struct {
	source     platform.EventSource
	loader     bootstrap.Loader
	timeSource core.TimeSource
}

// WithEventSource replaces the glfw window.
func WithEventSource(src platform.EventSource) Option {
	return func(o *options) { o.source = src }
}

// WithLoader replaces the Vulkan loader.
func WithLoader(l bootstrap.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithTimeSource replaces the wall clock.
func WithTimeSource(src core.TimeSource) Option {
	return func(o *options) { o.timeSource = src }
}

// Engine owns every runtime resource of a game: the event bus, the surface,
// the graphics context, the background systems and the scheduler. Resources
// are created by Initialize and released by Shutdown in reverse order.
type Engine[W any] struct {
	mu           sync.Mutex
	currentStage Stage
	game         *Game[W]
	config       *ApplicationConfig
	opts         options

	isRunning   atomic.Bool
	isSuspended atomic.Bool

	bus           *core.EventBus
	surface       *platform.SurfaceHost
	context       *bootstrap.GraphicsContext
	renderer      *renderer.Renderer
	systemManager *systems.SystemManager
	scheduler     *scheduler.Scheduler[W]
	lastResult    scheduler.TickResult
}

func New[W any](g *Game[W], opts ...Option) (*Engine[W], error) {
	if g == nil {
		return nil, ErrNoGame
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultConfig()
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(core.ParseLogLevel(config.LogLevel))

	e := &Engine[W]{
		currentStage: EngineStageBooting,
		game:         g,
		config:       config,
		bus:          core.NewEventBus(),
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	if e.opts.source == nil {
		e.opts.source = desktop.NewGLFW()
	}
	if e.opts.loader == nil {
		e.opts.loader = vulkan.NewLoader()
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		JobWorkers:      config.Jobs.Workers,
		JobQueueSize:    config.Jobs.QueueSize,
		AssetsDir:       config.Assets.Dir,
		AssetsQueueSize: config.Assets.QueueSize,
	}, e.bus)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.systemManager = sm
	g.SystemManager = sm

	e.surface = platform.NewSurfaceHost(config.WindowAttributes(), e.bus)
	e.currentStage = EngineStageBootComplete
	return e, nil
}

// Initialize opens the surface, creates the graphics context against it and
// builds the stage graph. Any error leaves the engine unable to run.
func (e *Engine[W]) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("initialize in stage %d: %w", e.currentStage, ErrNotInitialized)
	}
	e.currentStage = EngineStageInitializing

	if err := e.initialize(); err != nil {
		core.LogError("engine initialization failed: %s", err)
		e.release()
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized")
	return nil
}

func (e *Engine[W]) initialize() error {
	// register some events
	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_CLOSE_REQUESTED, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.surface.RequestCreation(e.opts.source); err != nil {
		return err
	}

	var host bootstrap.SurfaceHandleSource = e.surface
	if name := e.config.Graphics.Platform; name != "" {
		host = platformOverride{host: e.surface, id: platform.ParseIdentity(name)}
	}
	bs := bootstrap.New(e.opts.loader, bootstrap.Options{
		Debug:           e.config.DebugEnabled(),
		ValidationLayer: e.config.Graphics.ValidationLayer,
		Application:     bootstrap.ApplicationInfo{ApplicationName: e.config.Name},
	})
	ctx, err := bs.Create(host)
	if err != nil {
		return err
	}
	e.context = ctx

	attrs := e.surface.Attributes()
	e.renderer = renderer.New(e.game.FrameSink, attrs.Width, attrs.Height)
	e.renderer.Attach(ctx)
	e.surface.AddResizeListener(e.renderer)
	// the context goes before the surface handle does
	e.surface.OnDestroy(func() {
		e.renderer.Detach()
		ctx.Release()
	})

	b := stage.NewBuilder[W]()
	if err := e.registerStages(b); err != nil {
		return err
	}
	graph, err := b.Build()
	if err != nil {
		return err
	}
	core.LogDebug("stage order: %v", graph.Order())

	clock := core.NewClockWithSource(e.opts.timeSource, e.config.Timing.FixedStep, e.config.Timing.MaxDelta)
	e.scheduler = scheduler.New(clock, graph, scheduler.Options{
		Lanes:         e.config.Timing.Lanes,
		MaxFixedSteps: e.config.Timing.MaxFixedSteps,
	})

	if e.game.FnInitialize != nil {
		if err := e.game.FnInitialize(e.game.State); err != nil {
			return fmt.Errorf("game initialization: %w", err)
		}
	}
	return nil
}

// Run ticks until the window closes, Stop is called or, with StopOnFatal, a
// tick is aborted. The engine is shut down when Run returns.
func (e *Engine[W]) Run() error {
	e.mu.Lock()
	if e.currentStage != EngineStageInitialized {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.mu.Unlock()

	e.isRunning.Store(true)
	e.scheduler.Reset()

	var runErr error
	for e.isRunning.Load() {
		if !e.surface.PumpMessages() {
			break
		}
		if e.isSuspended.Load() {
			continue
		}

		res := e.Tick()
		if res.Aborted && e.config.Timing.StopOnFatal {
			runErr = res.Err()
			break
		}
	}
	e.isRunning.Store(false)

	return errors.Join(runErr, e.Shutdown())
}

// Tick runs one frame. Run calls it; it is exported for hosts that own the
// loop. Outside of the initialized and running stages the tick is aborted
// without touching the world.
func (e *Engine[W]) Tick() scheduler.TickResult {
	e.mu.Lock()
	current := e.currentStage
	e.mu.Unlock()
	if current != EngineStageInitialized && current != EngineStageRunning {
		res := scheduler.TickResult{
			Aborted: true,
			Errors: []*stage.StageError{{
				Stage: "engine",
				Err:   fmt.Errorf("tick in stage %d: %w", current, ErrNotInitialized),
				Fatal: true,
			}},
		}
		e.lastResult = res
		return res
	}

	res := e.scheduler.Tick(e.game.State)
	for _, serr := range res.Errors {
		if !serr.Fatal {
			core.LogWarn("%s", serr)
		}
	}
	e.lastResult = res
	return res
}

// Stop asks Run to return after the current tick. Safe from any goroutine.
func (e *Engine[W]) Stop() {
	e.isRunning.Store(false)
}

// Suspend pauses ticking while still pumping window events.
func (e *Engine[W]) Suspend(suspended bool) {
	e.isSuspended.Store(suspended)
	if !suspended && e.scheduler != nil {
		// time spent suspended is not simulated
		e.scheduler.Reset()
	}
}

// Shutdown releases everything the engine owns. It is safe to call more than
// once.
func (e *Engine[W]) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var errs []error
	if e.game.FnShutdown != nil && e.scheduler != nil {
		errs = append(errs, e.game.FnShutdown(e.game.State))
	}
	errs = append(errs, e.release())
	return errors.Join(errs...)
}

// release tears down in reverse order of creation. Destroying the surface
// releases the graphics context first through its destroy hook.
func (e *Engine[W]) release() error {
	var errs []error
	if e.systemManager != nil {
		errs = append(errs, e.systemManager.Shutdown())
	}
	if e.surface != nil {
		errs = append(errs, e.surface.Destroy())
	}
	if e.context != nil {
		// no-op unless the surface never became ready
		e.context.Release()
	}
	e.bus.ClearAll()
	e.currentStage = EngineStageShutdown
	core.LogInfo("engine shut down")
	return errors.Join(errs...)
}

func (e *Engine[W]) CurrentStage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine[W]) Events() *core.EventBus {
	return e.bus
}

func (e *Engine[W]) Surface() *platform.SurfaceHost {
	return e.surface
}

func (e *Engine[W]) GraphicsContext() *bootstrap.GraphicsContext {
	return e.context
}

func (e *Engine[W]) Scheduler() *scheduler.Scheduler[W] {
	return e.scheduler
}

func (e *Engine[W]) Renderer() *renderer.Renderer {
	return e.renderer
}

// LastResult is the result of the latest tick.
func (e *Engine[W]) LastResult() scheduler.TickResult {
	return e.lastResult
}

func (e *Engine[W]) onEvent(listener interface{}, ctx core.EventContext) bool {
	switch ctx.Code {
	case core.EVENT_CODE_APPLICATION_QUIT, core.EVENT_CODE_CLOSE_REQUESTED:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine[W]) onResized(listener interface{}, ctx core.EventContext) bool {
	re, ok := ctx.Data.(core.ResizeEvent)
	if !ok {
		return false
	}
	// Handle minimization
	if re.Width == 0 || re.Height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended.Store(true)
		return true
	}
	if e.isSuspended.Load() {
		core.LogInfo("Window restored, resuming application.")
		e.Suspend(false)
	}
	if e.game.FnOnResize != nil {
		if err := e.game.FnOnResize(re.Width, re.Height); err != nil {
			core.LogError("game resize hook failed: %s", err)
		}
	}
	// Event purposely not handled to allow other listeners to get this.
	return false
}

// platformOverride reports a configured platform identity in place of the
// detected one.
type platformOverride struct {
	host bootstrap.SurfaceHandleSource
	id   platform.Identity
}

func (p platformOverride) Handle() (platform.Handle, bool) {
	h, ok := p.host.Handle()
	if ok {
		h.Platform = p.id
	}
	return h, ok
}
