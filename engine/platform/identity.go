package platform

import (
	"runtime"
	"strings"
)

// Identity names the windowing system a surface handle belongs to.
type Identity uint8

const (
	PlatformUnknown Identity = iota
	PlatformWin32
	PlatformXlib
	PlatformXcb
	PlatformWayland
	PlatformAndroid
	PlatformMacOS
	PlatformIOS
	PlatformMetal
)

var identityNames = map[Identity]string{
	PlatformUnknown: "unknown",
	PlatformWin32:   "win32",
	PlatformXlib:    "xlib",
	PlatformXcb:     "xcb",
	PlatformWayland: "wayland",
	PlatformAndroid: "android",
	PlatformMacOS:   "macos",
	PlatformIOS:     "ios",
	PlatformMetal:   "metal",
}

func (i Identity) String() string {
	if n, ok := identityNames[i]; ok {
		return n
	}
	return "unknown"
}

// ParseIdentity maps a name as printed by String back to an Identity.
func ParseIdentity(name string) Identity {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range identityNames {
		if n == name {
			return id
		}
	}
	return PlatformUnknown
}

// DetectIdentity reports the windowing system surfaces are created on: the
// operating system, and on Unix desktops the backend selected at build time.
func DetectIdentity() Identity {
	return detectIdentity(runtime.GOOS, unixWindowing)
}

func detectIdentity(goos string, unix Identity) Identity {
	switch goos {
	case "windows":
		return PlatformWin32
	case "darwin":
		return PlatformMacOS
	case "ios":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return unix
	default:
		return PlatformUnknown
	}
}
