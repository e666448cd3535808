package desktop

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/platform"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// GLFW is the platform.EventSource backed by a glfw window without a client API, ready
// for a Vulkan surface.
type GLFW struct {
	Window *glfw.Window

	listener platform.Listener
}

func NewGLFW() *GLFW {
	return &GLFW{}
}

func (p *GLFW) Create(attrs platform.WindowAttributes, l platform.Listener) (platform.Handle, error) {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return platform.Handle{}, err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfwBool(attrs.Resizable))
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	width, height := int(attrs.Width), int(attrs.Height)
	var monitor *glfw.Monitor
	if attrs.Fullscreen == platform.Borderless {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			// matching the current video mode gives a borderless window
			// without a mode switch
			glfw.WindowHint(glfw.RedBits, mode.RedBits)
			glfw.WindowHint(glfw.GreenBits, mode.GreenBits)
			glfw.WindowHint(glfw.BlueBits, mode.BlueBits)
			glfw.WindowHint(glfw.RefreshRate, mode.RefreshRate)
			width, height = mode.Width, mode.Height
		}
	}

	window, err := glfw.CreateWindow(width, height, attrs.Title, monitor, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return platform.Handle{}, err
	}
	p.Window = window
	p.listener = l

	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	if monitor == nil {
		p.Window.SetPos(int(attrs.X), int(attrs.Y))
	}
	p.Window.Show()

	// the identity follows the backend glfw was compiled with, not the
	// desktop session
	return platform.Handle{
		Platform: platform.DetectIdentity(),
		Window:   p.Window,
	}, nil
}

func (p *GLFW) PumpMessages() {
	glfw.PollEvents()
}

func (p *GLFW) Destroy() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

func (p *GLFW) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.listener != nil {
		p.listener.OnResize(uint32(width), uint32(height))
	}
}

func (p *GLFW) closeCallback(w *glfw.Window) {
	if p.listener != nil {
		p.listener.OnCloseRequested()
	}
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
