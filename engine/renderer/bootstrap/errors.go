package bootstrap

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/fyrebird/engine/platform"
)

var (
	ErrLoaderUnavailable     = errors.New("graphics driver loader unavailable")
	ErrUnsupportedPlatform   = errors.New("unsupported platform")
	ErrContextCreationFailed = errors.New("graphics context creation failed")
	ErrSurfaceNotReady       = errors.New("surface not ready")
)

type LoaderError struct {
	Err error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("%s: %v", ErrLoaderUnavailable, e.Err)
}

func (e *LoaderError) Unwrap() error { return e.Err }

func (e *LoaderError) Is(target error) bool { return target == ErrLoaderUnavailable }

type UnsupportedPlatformError struct {
	Platform platform.Identity
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s: no surface extension for platform %s", ErrUnsupportedPlatform, e.Platform)
}

func (e *UnsupportedPlatformError) Is(target error) bool { return target == ErrUnsupportedPlatform }

// ContextCreationError carries the native result code of a failed creation
// call. Description is empty when the entry cannot name the code.
type ContextCreationError struct {
	Code        Result
	Description string
}

func (e *ContextCreationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: code %d (%s)", ErrContextCreationFailed, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: code %d", ErrContextCreationFailed, e.Code)
}

func (e *ContextCreationError) Is(target error) bool { return target == ErrContextCreationFailed }
