package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/fyrebird/engine/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "game.toml", `
name = "Sandbox"
log_level = "debug"

[window]
start_width = 1920
start_height = 1080
fullscreen = true

[timing]
fixed_step = 0.01
lanes = 4

[graphics]
debug = true
platform = "xcb"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Sandbox", cfg.Name)
	assert.Equal(t, uint32(1920), cfg.Window.StartWidth)
	assert.True(t, cfg.Window.Resizable, "unset fields keep their defaults")
	assert.Equal(t, 0.01, cfg.Timing.FixedStep)
	assert.Equal(t, 0.25, cfg.Timing.MaxDelta)
	assert.Equal(t, 4, cfg.Timing.Lanes)
	assert.True(t, cfg.DebugEnabled())
	assert.Equal(t, 2, cfg.Jobs.Workers)

	attrs := cfg.WindowAttributes()
	assert.Equal(t, platform.Borderless, attrs.Fullscreen)
	assert.Equal(t, "Sandbox", attrs.Title)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "game.yml", `
name: Sandbox
window:
  start_width: 800
  start_height: 600
graphics:
  debug: false
jobs:
  workers: 8
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(600), cfg.Window.StartHeight)
	assert.Equal(t, 8, cfg.Jobs.Workers)
	assert.False(t, cfg.DebugEnabled())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeFile(t, "game.ini", "name=x"))
	assert.ErrorIs(t, err, ErrUnknownConfigFormat)

	_, err = LoadConfig(writeFile(t, "game.toml", "name = "))
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig(writeFile(t, "game.toml", "[timing]\nfixed_step = -1.0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = ""
	cfg.Window.StartWidth = 0
	cfg.Jobs.Workers = 0
	cfg.Graphics.Platform = "amiga"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, part := range []string{"name is empty", "window size", "job workers", "amiga"} {
		assert.ErrorContains(t, err, part)
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestDebugEnabledFollowsBuildFlag(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, buildDebug, cfg.DebugEnabled())

	on := !buildDebug
	cfg.Graphics.Debug = &on
	assert.Equal(t, on, cfg.DebugEnabled())
}
