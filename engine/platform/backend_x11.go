//go:build !wayland

package platform

// glfw builds its X11 backend unless the wayland tag is set. Under a Wayland
// session the window then goes through XWayland.
const unixWindowing = PlatformXlib
