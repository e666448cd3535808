package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/platform"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnknownConfigFormat = errors.New("unknown configuration format")
)

// ApplicationConfig is the immutable configuration of an engine. It is read
// once at construction.
type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name     string         `toml:"name" yaml:"name"`
	LogLevel string         `toml:"log_level" yaml:"log_level"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Timing   TimingConfig   `toml:"timing" yaml:"timing"`
	Graphics GraphicsConfig `toml:"graphics" yaml:"graphics"`
	Jobs     JobsConfig     `toml:"jobs" yaml:"jobs"`
	Assets   AssetsConfig   `toml:"assets" yaml:"assets"`
}

type WindowConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX int32 `toml:"start_pos_x" yaml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY int32 `toml:"start_pos_y" yaml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width" yaml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height" yaml:"start_height"`
	// Fullscreen opens a borderless window over the primary monitor.
	Fullscreen bool `toml:"fullscreen" yaml:"fullscreen"`
	Resizable  bool `toml:"resizable" yaml:"resizable"`
}

type TimingConfig struct {
	// FixedStep is the fixed simulation interval in seconds.
	FixedStep float64 `toml:"fixed_step" yaml:"fixed_step"`
	// MaxDelta clamps a frame delta before accumulation, in seconds. Zero
	// disables clamping.
	MaxDelta      float64 `toml:"max_delta" yaml:"max_delta"`
	MaxFixedSteps int     `toml:"max_fixed_steps" yaml:"max_fixed_steps"`
	Lanes         int     `toml:"lanes" yaml:"lanes"`
	// StopOnFatal ends the run loop after a tick aborted by a fatal stage
	// error. Otherwise the engine keeps ticking.
	StopOnFatal bool `toml:"stop_on_fatal" yaml:"stop_on_fatal"`
}

type GraphicsConfig struct {
	// Debug overrides the build-time debug flag when set.
	Debug           *bool  `toml:"debug" yaml:"debug"`
	ValidationLayer string `toml:"validation_layer" yaml:"validation_layer"`
	// Platform overrides the detected windowing system ("xcb", "wayland",
	// ...).
	Platform string `toml:"platform" yaml:"platform"`
}

type JobsConfig struct {
	Workers   int `toml:"workers" yaml:"workers"`
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
}

type AssetsConfig struct {
	// Dir is watched for changes. Empty disables hot reload.
	Dir       string `toml:"dir" yaml:"dir"`
	QueueSize int    `toml:"queue_size" yaml:"queue_size"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:     "Fyrebird_data",
		LogLevel: "info",
		Window: WindowConfig{
			StartWidth:  1280,
			StartHeight: 720,
			Resizable:   true,
		},
		Timing: TimingConfig{
			FixedStep: core.DefaultFixedStep,
			MaxDelta:  core.DefaultMaxDelta,
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 64,
		},
		Assets: AssetsConfig{
			Dir:       "assets",
			QueueSize: 256,
		},
	}
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over the
// defaults and validates the result.
func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *ApplicationConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Name != "", "name is empty")
	check(c.Window.StartWidth > 0 && c.Window.StartHeight > 0,
		"window size %dx%d", c.Window.StartWidth, c.Window.StartHeight)
	check(c.Timing.FixedStep > 0, "fixed step %g must be positive", c.Timing.FixedStep)
	check(c.Timing.MaxDelta >= 0, "max delta %g must not be negative", c.Timing.MaxDelta)
	check(c.Timing.MaxFixedSteps >= 0, "max fixed steps %d must not be negative", c.Timing.MaxFixedSteps)
	check(c.Timing.Lanes >= 0, "lanes %d must not be negative", c.Timing.Lanes)
	check(c.Jobs.Workers > 0, "job workers %d must be positive", c.Jobs.Workers)
	check(c.Jobs.QueueSize >= 0, "job queue size %d must not be negative", c.Jobs.QueueSize)
	check(c.Assets.QueueSize >= 0, "assets queue size %d must not be negative", c.Assets.QueueSize)
	if c.Graphics.Platform != "" {
		check(platform.ParseIdentity(c.Graphics.Platform) != platform.PlatformUnknown,
			"unknown platform %q", c.Graphics.Platform)
	}

	return errors.Join(errs...)
}

// DebugEnabled is the graphics debug flag: the build tag unless the
// configuration overrides it.
func (c *ApplicationConfig) DebugEnabled() bool {
	if c.Graphics.Debug != nil {
		return *c.Graphics.Debug
	}
	return buildDebug
}

// WindowAttributes returns the attributes of the window to create.
func (c *ApplicationConfig) WindowAttributes() platform.WindowAttributes {
	mode := platform.Windowed
	if c.Window.Fullscreen {
		mode = platform.Borderless
	}
	return platform.WindowAttributes{
		Title:      c.Name,
		Width:      c.Window.StartWidth,
		Height:     c.Window.StartHeight,
		X:          c.Window.StartPosX,
		Y:          c.Window.StartPosY,
		Fullscreen: mode,
		Resizable:  c.Window.Resizable,
	}
}
