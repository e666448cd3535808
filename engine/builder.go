package engine

import (
	"math"
)

// DefaultAspectRatio is the ratio the builder keeps between width and height
// until told otherwise.
const DefaultAspectRatio = 16.0 / 9.0

// Builder assembles an ApplicationConfig and the engine running it. The
// window width follows the aspect ratio and the height: setting either of
// them recomputes the width, setting the width recomputes the ratio.
type Builder[W any] struct {
	config      ApplicationConfig
	aspectRatio float64
	opts        []Option
}

func NewBuilder[W any]() *Builder[W] {
	return &Builder[W]{
		config:      *DefaultConfig(),
		aspectRatio: DefaultAspectRatio,
	}
}

// FromConfig starts the builder from an existing configuration.
func (b *Builder[W]) FromConfig(c *ApplicationConfig) *Builder[W] {
	b.config = *c
	if c.Window.StartHeight > 0 {
		b.aspectRatio = float64(c.Window.StartWidth) / float64(c.Window.StartHeight)
	}
	return b
}

func (b *Builder[W]) WithTitle(title string) *Builder[W] {
	b.config.Name = title
	return b
}

func (b *Builder[W]) WithWidth(width uint32) *Builder[W] {
	b.config.Window.StartWidth = width
	if b.config.Window.StartHeight > 0 {
		b.aspectRatio = float64(width) / float64(b.config.Window.StartHeight)
	}
	return b
}

func (b *Builder[W]) WithHeight(height uint32) *Builder[W] {
	b.config.Window.StartHeight = height
	b.updateWidth()
	return b
}

func (b *Builder[W]) WithAspectRatio(ratio float64) *Builder[W] {
	if ratio > 0 {
		b.aspectRatio = ratio
		b.updateWidth()
	}
	return b
}

func (b *Builder[W]) WithPosition(x, y int32) *Builder[W] {
	b.config.Window.StartPosX = x
	b.config.Window.StartPosY = y
	return b
}

func (b *Builder[W]) WithFullscreen(fullscreen bool) *Builder[W] {
	b.config.Window.Fullscreen = fullscreen
	return b
}

func (b *Builder[W]) WithDebug(debug bool) *Builder[W] {
	b.config.Graphics.Debug = &debug
	return b
}

func (b *Builder[W]) WithLogLevel(level string) *Builder[W] {
	b.config.LogLevel = level
	return b
}

func (b *Builder[W]) WithFixedStep(seconds float64) *Builder[W] {
	b.config.Timing.FixedStep = seconds
	return b
}

func (b *Builder[W]) WithAssetsDir(dir string) *Builder[W] {
	b.config.Assets.Dir = dir
	return b
}

func (b *Builder[W]) WithOptions(opts ...Option) *Builder[W] {
	b.opts = append(b.opts, opts...)
	return b
}

func (b *Builder[W]) AspectRatio() float64 {
	return b.aspectRatio
}

// Config returns a copy of the configuration built so far.
func (b *Builder[W]) Config() ApplicationConfig {
	return b.config
}

// Build creates the engine for game with the built configuration, replacing
// any configuration the game carried.
func (b *Builder[W]) Build(game *Game[W]) (*Engine[W], error) {
	if game == nil {
		return nil, ErrNoGame
	}
	config := b.config
	game.ApplicationConfig = &config
	return New(game, b.opts...)
}

func (b *Builder[W]) updateWidth() {
	b.config.Window.StartWidth = uint32(math.Round(b.aspectRatio * float64(b.config.Window.StartHeight)))
}
