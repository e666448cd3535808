package systems

import (
	"errors"
	"os"

	"github.com/spaghettifunk/fyrebird/engine/assets"
	"github.com/spaghettifunk/fyrebird/engine/core"
)

type SystemManagerConfig struct {
	JobWorkers   int
	JobQueueSize int
	// AssetsDir is watched for changes. Empty or missing disables the watcher.
	AssetsDir       string
	AssetsQueueSize int
}

// SystemManager owns the background facilities whose results are brought back
// to the simulation goroutine by the built-in stages.
type SystemManager struct {
	JobSystem *JobSystem
	Watcher   *assets.Watcher

	bus *core.EventBus
}

func NewSystemManager(config SystemManagerConfig, bus *core.EventBus) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}

	sm := &SystemManager{
		JobSystem: js,
		bus:       bus,
	}

	if config.AssetsDir == "" {
		return sm, nil
	}
	if _, err := os.Stat(config.AssetsDir); err != nil {
		core.LogWarn("assets directory %s unavailable, hot reload disabled: %s", config.AssetsDir, err)
		return sm, nil
	}
	w, err := assets.NewWatcher(config.AssetsQueueSize)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	if err := w.Watch(config.AssetsDir); err != nil {
		w.Close()
		js.Shutdown()
		return nil, err
	}
	sm.Watcher = w
	return sm, nil
}

// UpdateJobs runs the callbacks of finished jobs.
func (sm *SystemManager) UpdateJobs() int {
	return sm.JobSystem.Update()
}

// UpdateAssets fires an asset-changed event for every queued change.
func (sm *SystemManager) UpdateAssets() int {
	if sm.Watcher == nil {
		return 0
	}
	events := sm.Watcher.Drain()
	if sm.bus != nil {
		for _, e := range events {
			sm.bus.Fire(core.EVENT_CODE_ASSET_CHANGED, sm, e)
		}
	}
	return len(events)
}

func (sm *SystemManager) Shutdown() error {
	var errs []error
	if sm.Watcher != nil {
		errs = append(errs, sm.Watcher.Close())
	}
	errs = append(errs, sm.JobSystem.Shutdown())
	return errors.Join(errs...)
}
