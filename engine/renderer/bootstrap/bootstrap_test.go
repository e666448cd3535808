package bootstrap

import (
	"errors"
	"strings"
	"testing"

	"github.com/spaghettifunk/fyrebird/engine/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	handle platform.Handle
	ready  bool
}

func (h fakeHost) Handle() (platform.Handle, bool) { return h.handle, h.ready }

func readyHost(id platform.Identity) fakeHost {
	return fakeHost{handle: platform.Handle{Platform: id}, ready: true}
}

type fakeInstance struct {
	destroyed *[]string
}

func (i *fakeInstance) Destroy() { *i.destroyed = append(*i.destroyed, "instance") }

type fakeEntry struct {
	layers    []string
	layersErr error
	result    Result

	calls    []string
	info     CreateInfo
	released int
	created  int
}

func (e *fakeEntry) EnumerateLayers() ([]string, error) {
	e.calls = append(e.calls, "enumerate")
	return e.layers, e.layersErr
}

func (e *fakeEntry) CreateInstance(info *CreateInfo) (Instance, Result) {
	e.calls = append(e.calls, "create")
	e.created++
	for _, n := range append(append([]string{}, info.Layers...), info.Extensions...) {
		if !strings.HasSuffix(n, "\x00") {
			panic("name without terminator: " + n)
		}
	}
	e.info = *info
	e.info.Layers = append([]string(nil), info.Layers...)
	e.info.Extensions = append([]string(nil), info.Extensions...)
	if e.result != Success {
		return nil, e.result
	}
	return &fakeInstance{destroyed: &e.calls}, Success
}

func (e *fakeEntry) Release() {
	e.calls = append(e.calls, "release")
	e.released++
}

type describingEntry struct {
	*fakeEntry
}

func (describingEntry) DescribeResult(code Result) string { return "VK_ERROR_INCOMPATIBLE_DRIVER" }

type fakeLoader struct {
	entry Entry
	err   error
	loads int
}

func (l *fakeLoader) Load() (Entry, error) {
	l.loads++
	if l.err != nil {
		return nil, l.err
	}
	return l.entry, nil
}

func TestCreateOnLinux(t *testing.T) {
	entry := &fakeEntry{}
	b := New(&fakeLoader{entry: entry}, Options{Application: ApplicationInfo{ApplicationName: "test"}})

	ctx, err := b.Create(readyHost(platform.PlatformXlib))
	require.NoError(t, err)
	require.NotNil(t, ctx)

	assert.Equal(t, []string{"enumerate", "create"}, entry.calls)
	assert.Equal(t, []string{ExtSurface, ExtXlibSurface}, ctx.EnabledExtensions)
	assert.Empty(t, ctx.EnabledLayers)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_xlib_surface\x00"}, entry.info.Extensions)
	assert.Equal(t, CreateFlags(0), entry.info.Flags)
	assert.Equal(t, "test", entry.info.Application.ApplicationName)
	assert.Equal(t, "Fyrebird", entry.info.Application.EngineName)
	assert.NotEqual(t, [16]byte{}, [16]byte(ctx.ID))

	ctx.Release()
	ctx.Release()
	assert.Equal(t, []string{"enumerate", "create", "instance", "release"}, entry.calls)
	assert.Nil(t, ctx.Instance())
}

func TestCreateRequiresReadySurface(t *testing.T) {
	loader := &fakeLoader{entry: &fakeEntry{}}
	b := New(loader, Options{})

	_, err := b.Create(fakeHost{})
	assert.ErrorIs(t, err, ErrSurfaceNotReady)
	assert.Zero(t, loader.loads)
}

func TestCreateLoaderUnavailable(t *testing.T) {
	cause := errors.New("libvulkan.so.1: cannot open shared object file")
	b := New(&fakeLoader{err: cause}, Options{})

	ctx, err := b.Create(readyHost(platform.PlatformXlib))
	assert.Nil(t, ctx)
	assert.ErrorIs(t, err, ErrLoaderUnavailable)
	assert.ErrorIs(t, err, cause)
	var lerr *LoaderError
	assert.ErrorAs(t, err, &lerr)
}

func TestCreateUnsupportedPlatformNeverCreates(t *testing.T) {
	entry := &fakeEntry{}
	b := New(&fakeLoader{entry: entry}, Options{Debug: true})

	ctx, err := b.Create(readyHost(platform.PlatformUnknown))
	assert.Nil(t, ctx)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	var perr *UnsupportedPlatformError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, platform.PlatformUnknown, perr.Platform)

	assert.Zero(t, entry.created)
	assert.Equal(t, 1, entry.released, "loader binding must be released")
}

func TestCreateFailureCarriesNativeCode(t *testing.T) {
	entry := &fakeEntry{result: -9}
	b := New(&fakeLoader{entry: entry}, Options{})

	_, err := b.Create(readyHost(platform.PlatformWin32))
	assert.ErrorIs(t, err, ErrContextCreationFailed)
	var cerr *ContextCreationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, Result(-9), cerr.Code)
	assert.Empty(t, cerr.Description)
	assert.Equal(t, []string{"enumerate", "create", "release"}, entry.calls)
}

func TestCreateFailureDescribesCode(t *testing.T) {
	entry := &fakeEntry{result: -9}
	b := New(&fakeLoader{entry: describingEntry{entry}}, Options{})

	_, err := b.Create(readyHost(platform.PlatformWin32))
	var cerr *ContextCreationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "VK_ERROR_INCOMPATIBLE_DRIVER", cerr.Description)
	assert.Contains(t, err.Error(), "-9")
}

func TestDebugEnablesValidationLayerWhenPresent(t *testing.T) {
	entry := &fakeEntry{layers: []string{"VK_LAYER_MESA_overlay", DefaultValidationLayer}}
	b := New(&fakeLoader{entry: entry}, Options{Debug: true})

	ctx, err := b.Create(readyHost(platform.PlatformWayland))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultValidationLayer}, ctx.EnabledLayers)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation\x00"}, entry.info.Layers)
	assert.Contains(t, ctx.EnabledExtensions, ExtDebugUtils)
}

func TestMissingValidationLayerIsNotFatal(t *testing.T) {
	for name, entry := range map[string]*fakeEntry{
		"empty":  {},
		"absent": {layers: []string{"VK_LAYER_MESA_overlay"}},
		"failed": {layersErr: errors.New("enumeration failed")},
	} {
		t.Run(name, func(t *testing.T) {
			b := New(&fakeLoader{entry: entry}, Options{Debug: true})
			ctx, err := b.Create(readyHost(platform.PlatformXcb))
			require.NoError(t, err)
			assert.Empty(t, ctx.EnabledLayers)
			assert.Equal(t, []string{ExtSurface, ExtXcbSurface, ExtDebugUtils}, ctx.EnabledExtensions)
		})
	}
}

func TestCreateOnMacOSEnablesPortability(t *testing.T) {
	entry := &fakeEntry{}
	b := New(&fakeLoader{entry: entry}, Options{})

	ctx, err := b.Create(readyHost(platform.PlatformMacOS))
	require.NoError(t, err)
	assert.Equal(t, []string{ExtSurface, ExtMacOSSurface, ExtPortabilityEnumeration}, ctx.EnabledExtensions)
	assert.Equal(t, CreateEnumeratePortability, entry.info.Flags)
}

func TestResolveExtensionsIsPure(t *testing.T) {
	ids := []platform.Identity{
		platform.PlatformWin32, platform.PlatformXlib, platform.PlatformXcb,
		platform.PlatformWayland, platform.PlatformAndroid, platform.PlatformMacOS,
		platform.PlatformIOS, platform.PlatformMetal,
	}
	for _, id := range ids {
		for _, debug := range []bool{false, true} {
			first, err := ResolveExtensions(id, debug)
			require.NoError(t, err)
			second, err := ResolveExtensions(id, debug)
			require.NoError(t, err)
			assert.Equal(t, first, second)
			assert.Equal(t, ExtSurface, first[0])
			assert.Equal(t, debug, first[len(first)-1] == ExtDebugUtils)
		}
	}

	for _, id := range []platform.Identity{platform.PlatformUnknown, platform.Identity(200)} {
		_, err := ResolveExtensions(id, false)
		assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	}
}

func TestEachPlatformHasOneSurfaceExtension(t *testing.T) {
	seen := map[string]platform.Identity{}
	for id, ext := range surfaceExtensions {
		other, dup := seen[ext]
		assert.False(t, dup, "%s shared by %s and %s", ext, id, other)
		seen[ext] = id
	}
}

func TestNameList(t *testing.T) {
	l := NewNameList()
	require.NoError(t, l.AddExtension("VK_KHR_surface"))
	require.NoError(t, l.AddExtension("VK_KHR_surface\x00"))
	require.NoError(t, l.AddLayer("VK_LAYER_KHRONOS_validation"))

	var called bool
	l.Use(func(layers, extensions []string) {
		called = true
		assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation\x00"}, layers)
		assert.Equal(t, []string{"VK_KHR_surface\x00"}, extensions)
		assert.Equal(t, len(extensions), cap(extensions))
	})
	assert.True(t, called)

	assert.ErrorIs(t, l.AddExtension("VK_EXT_debug_utils"), ErrNameListSealed)
	assert.ErrorIs(t, l.AddLayer("other"), ErrNameListSealed)
	assert.Equal(t, []string{"VK_KHR_surface"}, l.Extensions())
}
