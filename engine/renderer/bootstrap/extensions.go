package bootstrap

import (
	"github.com/spaghettifunk/fyrebird/engine/platform"
)

const (
	ExtSurface                = "VK_KHR_surface"
	ExtWin32Surface           = "VK_KHR_win32_surface"
	ExtXlibSurface            = "VK_KHR_xlib_surface"
	ExtXcbSurface             = "VK_KHR_xcb_surface"
	ExtWaylandSurface         = "VK_KHR_wayland_surface"
	ExtAndroidSurface         = "VK_KHR_android_surface"
	ExtMacOSSurface           = "VK_MVK_macos_surface"
	ExtIOSSurface             = "VK_MVK_ios_surface"
	ExtMetalSurface           = "VK_EXT_metal_surface"
	ExtDebugUtils             = "VK_EXT_debug_utils"
	ExtPortabilityEnumeration = "VK_KHR_portability_enumeration"

	// DefaultValidationLayer is the layer enabled in debug builds when the
	// driver offers it.
	DefaultValidationLayer = "VK_LAYER_KHRONOS_validation"
)

var surfaceExtensions = map[platform.Identity]string{
	platform.PlatformWin32:   ExtWin32Surface,
	platform.PlatformXlib:    ExtXlibSurface,
	platform.PlatformXcb:     ExtXcbSurface,
	platform.PlatformWayland: ExtWaylandSurface,
	platform.PlatformAndroid: ExtAndroidSurface,
	platform.PlatformMacOS:   ExtMacOSSurface,
	platform.PlatformIOS:     ExtIOSSurface,
	platform.PlatformMetal:   ExtMetalSurface,
}

// ResolveExtensions returns the instance extensions required for a surface of
// the given platform: the generic surface extension, the platform surface
// extension, portability enumeration on Apple platforms and the debug
// utilities when debug is set.
func ResolveExtensions(id platform.Identity, debug bool) ([]string, error) {
	surface, ok := surfaceExtensions[id]
	if !ok {
		return nil, &UnsupportedPlatformError{Platform: id}
	}

	extensions := []string{ExtSurface, surface}
	if needsPortability(id) {
		extensions = append(extensions, ExtPortabilityEnumeration)
	}
	if debug {
		extensions = append(extensions, ExtDebugUtils)
	}
	return extensions, nil
}

// ResolveFlags returns the instance creation flags for the given platform.
func ResolveFlags(id platform.Identity) CreateFlags {
	if needsPortability(id) {
		return CreateEnumeratePortability
	}
	return 0
}

func needsPortability(id platform.Identity) bool {
	switch id {
	case platform.PlatformMacOS, platform.PlatformIOS, platform.PlatformMetal:
		return true
	default:
		return false
	}
}
