package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalMarker(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, Fatal(nil))
	assert.False(t, IsFatal(base))

	f := Fatal(base)
	assert.True(t, IsFatal(f))
	assert.ErrorIs(t, f, base)
	assert.Equal(t, "boom", f.Error())

	wrapped := fmt.Errorf("stage physics: %w", f)
	assert.True(t, IsFatal(wrapped))
	assert.Same(t, f, Fatal(f))
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 70; i++ {
		m.Update(1.0 / 60.0)
	}
	fps, avg := m.Frame()
	assert.InDelta(t, 60, fps, 1)
	assert.InDelta(t, 1000.0/60.0, avg, 1e-6)
}
