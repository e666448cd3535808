package bootstrap

import (
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/fyrebird/engine/platform"
)

// GraphicsContext is the connection to the driver for one surface lifetime.
type GraphicsContext struct {
	ID       uuid.UUID
	Platform platform.Identity
	Debug    bool

	EnabledLayers     []string
	EnabledExtensions []string

	entry    Entry
	instance Instance

	once sync.Once
}

// Instance returns the native instance, nil once released.
func (c *GraphicsContext) Instance() Instance {
	return c.instance
}

func (c *GraphicsContext) Entry() Entry {
	return c.entry
}

// Release destroys the instance and then unbinds the loader. It is safe to
// call more than once.
func (c *GraphicsContext) Release() {
	c.once.Do(func() {
		if c.instance != nil {
			c.instance.Destroy()
			c.instance = nil
		}
		if c.entry != nil {
			c.entry.Release()
			c.entry = nil
		}
	})
}
