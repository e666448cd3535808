package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/fyrebird/engine/containers"
	"github.com/spaghettifunk/fyrebird/engine/core"
)

var ErrWatcherClosed = errors.New("asset watcher already closed")

// DefaultQueueSize bounds the change notifications kept between two drains.
const DefaultQueueSize = 256

type AssetKind uint8

const (
	AssetKindNone AssetKind = iota
	AssetKindConfig
	AssetKindShader
	AssetKindTexture
	AssetKindMaterial
	AssetKindModel
)

type AssetInfo struct {
	Path        string
	Kind        AssetKind
	LastChanged time.Time
}

// Watcher indexes the asset files under the watched directories and queues a
// notification for every change. Notifications are collected with Drain from
// the simulation goroutine.
type Watcher struct {
	assets map[string]AssetInfo
	queue  *containers.RingQueue[core.AssetEvent]
	// dropped counts notifications lost to a full queue.
	dropped int

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
}

func NewWatcher(queueSize int) (*Watcher, error) {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		assets:   make(map[string]AssetInfo),
		queue:    containers.NewRingQueue[core.AssetEvent](queueSize),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Watch starts watching dir and all its sub-directories, indexing the asset
// files already there.
func (w *Watcher) Watch(dir string) error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return ErrWatcherClosed
	}
	if !w.started {
		w.started = true
		go w.start()
	}
	w.mutex.Unlock()

	return w.watchRecursive(dir, false)
}

// Unwatch stops watching dir and its sub-directories.
func (w *Watcher) Unwatch(dir string) error {
	return w.watchRecursive(dir, true)
}

// Drain returns the queued notifications, oldest first.
func (w *Watcher) Drain() []core.AssetEvent {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.dropped > 0 {
		core.LogWarn("asset watcher dropped %d notifications", w.dropped)
		w.dropped = 0
	}
	events := make([]core.AssetEvent, 0, w.queue.Len())
	for !w.queue.IsEmpty() {
		e, err := w.queue.Dequeue()
		if err != nil {
			break
		}
		events = append(events, e)
	}
	return events
}

// Lookup returns the indexed asset at path.
func (w *Watcher) Lookup(path string) (AssetInfo, bool) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	a, ok := w.assets[filepath.Clean(path)]
	return a, ok
}

// Assets returns the indexed assets sorted by path.
func (w *Watcher) Assets() []AssetInfo {
	w.mutex.RLock()
	out := make([]AssetInfo, 0, len(w.assets))
	for _, a := range w.assets {
		out = append(out, a)
	}
	w.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Close stops the watcher. Queued notifications can still be drained.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	started := w.started
	w.mutex.Unlock()

	if !started {
		return w.fsnotify.Close()
	}
	close(w.done)
	<-w.stopped
	return nil
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handleEvent(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *Watcher) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := w.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if w.indexFile(e.Name) {
			w.notify(e.Name, e.Op)
		}
	// Can't stat a deleted path, so drop it from the index and the watch list
	// whatever it was.
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.removeAsset(e.Name) {
			w.notify(e.Name, e.Op)
		}
		_ = w.fsnotify.Remove(e.Name)
	}
}

func (w *Watcher) notify(path string, op fsnotify.Op) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.queue.IsFull() {
		_, _ = w.queue.Dequeue()
		w.dropped++
	}
	_ = w.queue.Enqueue(core.AssetEvent{Path: filepath.Clean(path), Op: op.String()})
}

// watchRecursive adds or removes all directories under the given one to the
// watch list, indexing the files it finds when adding.
func (w *Watcher) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return w.fsnotify.Remove(walkPath)
			}
			return w.fsnotify.Add(walkPath)
		}
		if unWatch {
			w.removeAsset(walkPath)
		} else {
			w.indexFile(walkPath)
		}
		return nil
	})
}

// indexFile records the creation or modification of a file. It returns false
// for files that are not assets.
func (w *Watcher) indexFile(path string) bool {
	kind := determineAssetKind(path)
	if kind == AssetKindNone {
		return false
	}
	path = filepath.Clean(path)

	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.assets[path] = AssetInfo{
		Path:        path,
		Kind:        kind,
		LastChanged: time.Now(),
	}
	return true
}

func (w *Watcher) removeAsset(path string) bool {
	path = filepath.Clean(path)

	w.mutex.Lock()
	defer w.mutex.Unlock()
	_, ok := w.assets[path]
	delete(w.assets, path)
	return ok
}

func determineAssetKind(path string) AssetKind {
	switch filepath.Ext(path) {
	case ".toml", ".yaml", ".yml":
		return AssetKindConfig
	case ".shadercfg", ".spv":
		return AssetKindShader
	case ".tga", ".png", ".jpg":
		return AssetKindTexture
	case ".kmt":
		return AssetKindMaterial
	case ".obj", ".ksm", ".mtl":
		return AssetKindModel
	default:
		return AssetKindNone
	}
}
