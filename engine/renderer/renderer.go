package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/renderer/bootstrap"
)

var ErrNoContext = errors.New("no graphics context attached")

// FramePacket is everything the frame sink gets to draw one frame.
type FramePacket struct {
	Frame     uint64
	DeltaTime float64
	// Alpha is the pending fraction of a fixed step, for interpolating
	// between the last two simulation states.
	Alpha   float64
	Width   uint32
	Height  uint32
	Resized bool
	Context *bootstrap.GraphicsContext
}

// FrameSink consumes frames. Pipelines, swapchains and shaders live behind it.
type FrameSink interface {
	BeginFrame(packet *FramePacket) error
	EndFrame(packet *FramePacket) error
}

// Renderer feeds the frame sink from the render stage.
type Renderer struct {
	sink FrameSink

	mu      sync.Mutex
	context *bootstrap.GraphicsContext
	width   uint32
	height  uint32
	resized bool
	frames  uint64
}

func New(sink FrameSink, width, height uint32) *Renderer {
	if sink == nil {
		sink = NopSink{}
	}
	return &Renderer{
		sink:   sink,
		width:  width,
		height: height,
	}
}

// Attach binds the graphics context frames are drawn with.
func (r *Renderer) Attach(ctx *bootstrap.GraphicsContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.context = ctx
}

// Detach drops the graphics context. It is called before the context is
// released.
func (r *Renderer) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.context = nil
}

// OnSurfaceResized records the new framebuffer size for the next frame.
func (r *Renderer) OnSurfaceResized(width, height uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.resized = true
}

// DrawFrame hands one frame to the sink. Minimized surfaces are skipped. A
// failing EndFrame is fatal.
func (r *Renderer) DrawFrame(frame uint64, deltaTime, alpha float64) error {
	r.mu.Lock()
	packet := &FramePacket{
		Frame:     frame,
		DeltaTime: deltaTime,
		Alpha:     alpha,
		Width:     r.width,
		Height:    r.height,
		Resized:   r.resized,
		Context:   r.context,
	}
	r.resized = false
	r.mu.Unlock()

	if packet.Context == nil {
		return core.Fatal(ErrNoContext)
	}
	if packet.Width == 0 || packet.Height == 0 {
		return nil
	}

	if err := r.sink.BeginFrame(packet); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := r.sink.EndFrame(packet); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return core.Fatal(fmt.Errorf("end frame %d: %w", frame, err))
	}

	r.mu.Lock()
	r.frames++
	r.mu.Unlock()
	return nil
}

// Frames returns how many frames reached the sink.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// NopSink accepts every frame and draws nothing.
type NopSink struct{}

func (NopSink) BeginFrame(*FramePacket) error { return nil }
func (NopSink) EndFrame(*FramePacket) error   { return nil }
