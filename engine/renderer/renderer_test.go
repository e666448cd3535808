package renderer

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/renderer/bootstrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	packets  []FramePacket
	beginErr error
	endErr   error
}

func (s *recordingSink) BeginFrame(p *FramePacket) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	s.packets = append(s.packets, *p)
	return nil
}

func (s *recordingSink) EndFrame(p *FramePacket) error { return s.endErr }

func TestDrawFrameWithoutContextIsFatal(t *testing.T) {
	r := New(&recordingSink{}, 1280, 720)
	err := r.DrawFrame(1, 0.016, 0)
	assert.ErrorIs(t, err, ErrNoContext)
	assert.True(t, core.IsFatal(err))
}

func TestDrawFrameCarriesResize(t *testing.T) {
	sink := &recordingSink{}
	r := New(sink, 1280, 720)
	r.Attach(&bootstrap.GraphicsContext{})

	require.NoError(t, r.DrawFrame(1, 0.016, 0.5))
	r.OnSurfaceResized(800, 600)
	require.NoError(t, r.DrawFrame(2, 0.016, 0.25))
	require.NoError(t, r.DrawFrame(3, 0.016, 0))

	require.Len(t, sink.packets, 3)
	assert.False(t, sink.packets[0].Resized)
	assert.Equal(t, 0.5, sink.packets[0].Alpha)
	assert.True(t, sink.packets[1].Resized)
	assert.Equal(t, uint32(800), sink.packets[1].Width)
	assert.False(t, sink.packets[2].Resized)
	assert.Equal(t, uint64(3), r.Frames())
}

func TestDrawFrameSkipsMinimizedSurface(t *testing.T) {
	sink := &recordingSink{}
	r := New(sink, 1280, 720)
	r.Attach(&bootstrap.GraphicsContext{})
	r.OnSurfaceResized(0, 0)

	require.NoError(t, r.DrawFrame(1, 0.016, 0))
	assert.Empty(t, sink.packets)
}

func TestDrawFrameErrors(t *testing.T) {
	sink := &recordingSink{beginErr: errors.New("acquire failed")}
	r := New(sink, 1280, 720)
	r.Attach(&bootstrap.GraphicsContext{})

	err := r.DrawFrame(1, 0.016, 0)
	require.Error(t, err)
	assert.False(t, core.IsFatal(err))

	sink.beginErr = nil
	sink.endErr = errors.New("present failed")
	err = r.DrawFrame(2, 0.016, 0)
	assert.True(t, core.IsFatal(err))
	assert.ErrorIs(t, err, sink.endErr)

	r.Detach()
	assert.ErrorIs(t, r.DrawFrame(3, 0.016, 0), ErrNoContext)
}
