package bootstrap

import (
	"slices"

	"github.com/google/uuid"
	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/platform"
)

// SurfaceHandleSource hands out the native surface handle once it is ready.
// platform.SurfaceHost satisfies it.
type SurfaceHandleSource interface {
	Handle() (platform.Handle, bool)
}

type Options struct {
	// Debug enables the validation layer, when present, and the debug
	// utilities extension.
	Debug bool
	// ValidationLayer defaults to DefaultValidationLayer.
	ValidationLayer string
	Application     ApplicationInfo
}

// Bootstrapper creates graphics contexts through a driver loader.
type Bootstrapper struct {
	loader Loader
	opts   Options
}

func New(loader Loader, opts Options) *Bootstrapper {
	if opts.ValidationLayer == "" {
		opts.ValidationLayer = DefaultValidationLayer
	}
	if opts.Application.EngineName == "" {
		opts.Application.EngineName = "Fyrebird"
	}
	return &Bootstrapper{
		loader: loader,
		opts:   opts,
	}
}

// Create negotiates a graphics context for the surface of host. The loader is
// bound first; any failure after that releases it before returning.
func (b *Bootstrapper) Create(host SurfaceHandleSource) (*GraphicsContext, error) {
	handle, ok := host.Handle()
	if !ok {
		return nil, ErrSurfaceNotReady
	}

	if b.loader == nil {
		return nil, &LoaderError{Err: core.ErrUnknown}
	}
	entry, err := b.loader.Load()
	if err != nil {
		core.LogError("failed to bind the graphics driver loader: %s", err)
		return nil, &LoaderError{Err: err}
	}

	ctx, err := b.create(entry, handle.Platform)
	if err != nil {
		entry.Release()
		return nil, err
	}
	return ctx, nil
}

func (b *Bootstrapper) create(entry Entry, id platform.Identity) (*GraphicsContext, error) {
	available, err := entry.EnumerateLayers()
	if err != nil {
		core.LogWarn("failed to enumerate driver layers: %s", err)
		available = nil
	} else if len(available) == 0 {
		core.LogDebug("driver offers no layers")
	}

	names := NewNameList()

	if b.opts.Debug {
		core.LogInfo("Validation layers enabled. Searching for %s...", b.opts.ValidationLayer)
		if slices.Contains(available, b.opts.ValidationLayer) {
			if err := names.AddLayer(b.opts.ValidationLayer); err != nil {
				return nil, err
			}
			core.LogInfo("Found.")
		} else {
			core.LogWarn("validation layer %s is missing, continuing without it", b.opts.ValidationLayer)
		}
	}

	extensions, err := ResolveExtensions(id, b.opts.Debug)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	for _, ext := range extensions {
		if err := names.AddExtension(ext); err != nil {
			return nil, err
		}
	}
	if b.opts.Debug {
		core.LogDebug("Required extensions: %v", names.Extensions())
	}

	info := &CreateInfo{
		Application: b.opts.Application,
		Flags:       ResolveFlags(id),
	}
	var (
		instance Instance
		result   Result
	)
	names.Use(func(layers, extensions []string) {
		info.Layers = layers
		info.Extensions = extensions
		instance, result = entry.CreateInstance(info)
		info.Layers, info.Extensions = nil, nil
	})
	if result != Success {
		cerr := &ContextCreationError{Code: result}
		if d, ok := entry.(ResultDescriber); ok {
			cerr.Description = d.DescribeResult(result)
		}
		core.LogError("%s", cerr)
		return nil, cerr
	}

	ctx := &GraphicsContext{
		ID:                uuid.New(),
		Platform:          id,
		Debug:             b.opts.Debug,
		EnabledLayers:     names.Layers(),
		EnabledExtensions: names.Extensions(),
		entry:             entry,
		instance:          instance,
	}
	core.LogInfo("graphics context %s created for %s", ctx.ID, id)
	return ctx, nil
}
