//go:build wayland

package platform

const unixWindowing = PlatformWayland
