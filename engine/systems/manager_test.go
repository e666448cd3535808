package systems

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemManagerWithoutAssets(t *testing.T) {
	sm, err := NewSystemManager(SystemManagerConfig{JobWorkers: 1, JobQueueSize: 1, AssetsDir: filepath.Join(t.TempDir(), "missing")}, nil)
	require.NoError(t, err)
	assert.Nil(t, sm.Watcher)
	assert.Zero(t, sm.UpdateAssets())
	require.NoError(t, sm.Shutdown())
}

func TestSystemManagerRejectsBadPool(t *testing.T) {
	_, err := NewSystemManager(SystemManagerConfig{}, nil)
	assert.ErrorIs(t, err, ErrNoWorkers)
}

func TestSystemManagerFiresAssetEvents(t *testing.T) {
	dir := t.TempDir()
	bus := core.NewEventBus()
	var changed []core.AssetEvent
	bus.Register(core.EVENT_CODE_ASSET_CHANGED, nil, func(_ interface{}, ctx core.EventContext) bool {
		changed = append(changed, ctx.Data.(core.AssetEvent))
		return false
	})

	sm, err := NewSystemManager(SystemManagerConfig{JobWorkers: 1, AssetsDir: dir}, bus)
	require.NoError(t, err)
	defer sm.Shutdown()
	require.NotNil(t, sm.Watcher)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.toml"), []byte("title = 'x'"), 0o644))
	require.Eventually(t, func() bool {
		sm.UpdateAssets()
		return len(changed) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, filepath.Join(dir, "game.toml"), changed[0].Path)
}

func TestSystemManagerRunsJobCallbacks(t *testing.T) {
	sm, err := NewSystemManager(SystemManagerConfig{JobWorkers: 2, JobQueueSize: 2}, nil)
	require.NoError(t, err)
	defer sm.Shutdown()

	var got any
	_, err = sm.JobSystem.Submit(JobTask{
		Run:        func(context.Context) (any, error) { return "loaded", nil },
		OnComplete: func(r any) { got = r },
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		sm.UpdateJobs()
		return got != nil
	}, time.Second, time.Millisecond)
	assert.Equal(t, "loaded", got)
}
