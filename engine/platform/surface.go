package platform

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/fyrebird/engine/core"
)

var (
	ErrSurfaceDestroyed = errors.New("surface already destroyed")
	ErrNoEventSource    = errors.New("no platform event source")
)

// FullscreenMode selects how the window covers the screen.
type FullscreenMode uint8

const (
	Windowed FullscreenMode = iota
	// Borderless covers the primary monitor at its current video mode.
	Borderless
)

func (m FullscreenMode) String() string {
	switch m {
	case Borderless:
		return "borderless"
	default:
		return "windowed"
	}
}

// WindowAttributes describes the window to create. Width and Height are in
// logical pixels.
type WindowAttributes struct {
	Title      string
	Width      uint32
	Height     uint32
	X          int32
	Y          int32
	Fullscreen FullscreenMode
	Resizable  bool
}

// Handle identifies a native window. Window is only meaningful to code that
// knows the Platform; it is never inspected here.
type Handle struct {
	Platform Identity
	Window   any
}

// Listener receives the signals an EventSource delivers while pumping.
type Listener interface {
	OnResize(width, height uint32)
	OnCloseRequested()
}

// EventSource is the host windowing system.
type EventSource interface {
	// Create opens the native window and starts delivering signals to l.
	Create(attrs WindowAttributes, l Listener) (Handle, error)
	// PumpMessages processes pending window events.
	PumpMessages()
	// Destroy releases the native window.
	Destroy() error
}

// ResizeListener is notified of every surface size change, after the
// attributes were updated.
type ResizeListener interface {
	OnSurfaceResized(width, height uint32)
}

// ResizeListenerFunc adapts a function to ResizeListener.
type ResizeListenerFunc func(width, height uint32)

func (f ResizeListenerFunc) OnSurfaceResized(width, height uint32) { f(width, height) }

// SurfaceHost owns the platform window and gates everything that needs its
// handle. The handle is valid between a successful RequestCreation and
// Destroy; graphics resources created against it must be released through
// OnDestroy hooks.
type SurfaceHost struct {
	mu sync.Mutex

	source EventSource
	bus    *core.EventBus
	attrs  WindowAttributes
	handle Handle

	ready          bool
	destroyed      bool
	closeRequested bool

	releaseHooks    []func()
	resizeListeners []ResizeListener
}

// NewSurfaceHost prepares a host for a window with attrs. bus may be nil.
func NewSurfaceHost(attrs WindowAttributes, bus *core.EventBus) *SurfaceHost {
	return &SurfaceHost{
		attrs: attrs,
		bus:   bus,
	}
}

// RequestCreation opens the window through source. It is a no-op while the
// surface is ready and fails once the surface was destroyed.
func (h *SurfaceHost) RequestCreation(source EventSource) error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrSurfaceDestroyed
	}
	if h.ready {
		h.mu.Unlock()
		return nil
	}
	if source == nil {
		h.mu.Unlock()
		return ErrNoEventSource
	}
	attrs := h.attrs
	h.mu.Unlock()

	handle, err := source.Create(attrs, h)
	if err != nil {
		return fmt.Errorf("create surface %q: %w", attrs.Title, err)
	}

	h.mu.Lock()
	h.source = source
	h.handle = handle
	h.ready = true
	h.mu.Unlock()

	core.LogInfo("surface ready (%s, %dx%d)", handle.Platform, attrs.Width, attrs.Height)
	if h.bus != nil {
		h.bus.Fire(core.EVENT_CODE_SURFACE_READY, h, handle)
	}
	return nil
}

// Ready reports whether the handle is valid.
func (h *SurfaceHost) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// Handle returns the native handle, only while the surface is ready.
func (h *SurfaceHost) Handle() (Handle, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return Handle{}, false
	}
	return h.handle, true
}

func (h *SurfaceHost) Attributes() WindowAttributes {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attrs
}

// OnResize records the new size and notifies resize listeners and the event
// bus. Zero sizes (minimized windows) are recorded as well.
func (h *SurfaceHost) OnResize(width, height uint32) {
	h.mu.Lock()
	if h.attrs.Width == width && h.attrs.Height == height {
		h.mu.Unlock()
		return
	}
	h.attrs.Width = width
	h.attrs.Height = height
	listeners := append([]ResizeListener(nil), h.resizeListeners...)
	h.mu.Unlock()

	for _, l := range listeners {
		l.OnSurfaceResized(width, height)
	}
	if h.bus != nil {
		h.bus.Fire(core.EVENT_CODE_RESIZED, h, core.ResizeEvent{Width: width, Height: height})
	}
}

// OnCloseRequested records that the host asked the window to close.
func (h *SurfaceHost) OnCloseRequested() {
	h.mu.Lock()
	h.closeRequested = true
	h.mu.Unlock()

	if h.bus != nil {
		h.bus.Fire(core.EVENT_CODE_CLOSE_REQUESTED, h, nil)
	}
}

// CloseRequested reports whether a close was requested by the host.
func (h *SurfaceHost) CloseRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeRequested
}

func (h *SurfaceHost) AddResizeListener(l ResizeListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resizeListeners = append(h.resizeListeners, l)
}

// OnDestroy registers fn to run when the surface is destroyed, while the
// handle is still valid. Hooks run in reverse registration order.
func (h *SurfaceHost) OnDestroy(fn func()) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releaseHooks = append(h.releaseHooks, fn)
}

// PumpMessages processes pending window events. It returns false once the
// surface is gone or a close was requested.
func (h *SurfaceHost) PumpMessages() bool {
	h.mu.Lock()
	source, ready := h.source, h.ready
	h.mu.Unlock()
	if !ready {
		return false
	}

	source.PumpMessages()
	return !h.CloseRequested()
}

// Destroy runs the release hooks, marks the surface as not ready and only
// then releases the native window. Calling it again is a no-op.
func (h *SurfaceHost) Destroy() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return nil
	}
	h.destroyed = true
	wasReady := h.ready
	hooks := h.releaseHooks
	h.releaseHooks = nil
	h.mu.Unlock()

	if !wasReady {
		return nil
	}

	if h.bus != nil {
		h.bus.Fire(core.EVENT_CODE_SURFACE_DESTROYED, h, nil)
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}

	h.mu.Lock()
	h.ready = false
	source := h.source
	h.source = nil
	h.handle = Handle{}
	h.mu.Unlock()

	if err := source.Destroy(); err != nil {
		return fmt.Errorf("destroy surface: %w", err)
	}
	core.LogInfo("surface destroyed")
	return nil
}
