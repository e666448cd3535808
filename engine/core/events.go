package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// The host platform asked the window to close.
	EVENT_CODE_CLOSE_REQUESTED SystemEventCode = 0x02

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * ResizeEvent{Width, Height}
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x03

	// The platform surface became ready and its handle is valid.
	EVENT_CODE_SURFACE_READY SystemEventCode = 0x04

	// The platform surface is about to release its handle.
	EVENT_CODE_SURFACE_DESTROYED SystemEventCode = 0x05

	// A watched file changed on disk.
	/* Context usage:
	 * AssetEvent{Path, Op}
	 */
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x06

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// ResizeEvent is the payload of EVENT_CODE_RESIZED.
type ResizeEvent struct {
	Width  uint32
	Height uint32
}

// AssetEvent is the payload of EVENT_CODE_ASSET_CHANGED.
type AssetEvent struct {
	Path string
	Op   string
}

type EventContext struct {
	Code   SystemEventCode
	Sender interface{}
	Data   interface{}
}

// Should return true if handled.
type FnOnEvent func(listener interface{}, ctx EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus routes events by code to registered listeners, in registration
// order. It is safe for concurrent use; callbacks run on the firing goroutine.
type EventBus struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener combos will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback to be invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (b *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if listener != nil {
		for _, e := range b.registered[code] {
			if e.listener == listener {
				LogWarn("listener already registered for event code `%d`", code)
				return false
			}
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (b *EventBus) Unregister(code SystemEventCode, listener interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (b *EventBus) Fire(code SystemEventCode, sender interface{}, data interface{}) bool {
	b.mu.RLock()
	events := append([]*registeredEvent(nil), b.registered[code]...)
	b.mu.RUnlock()

	ctx := EventContext{Code: code, Sender: sender, Data: data}
	for _, e := range events {
		if e.callback(e.listener, ctx) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// Clear drops every listener of the given code.
func (b *EventBus) Clear(code SystemEventCode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.registered, code)
}

// ClearAll drops every listener.
func (b *EventBus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = make(map[SystemEventCode][]*registeredEvent)
}
