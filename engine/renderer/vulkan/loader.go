package vulkan

import (
	"errors"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fyrebird/engine/core"
	"github.com/spaghettifunk/fyrebird/engine/renderer/bootstrap"
)

var (
	ErrVulkanUnsupported  = errors.New("vulkan is not supported by the windowing system")
	ErrNoInstanceProcAddr = errors.New("GetInstanceProcAddress is nil")
	ErrLayerEnumeration   = errors.New("failed to enumerate instance layers")
)

// Loader binds goki/vulkan to the driver through the instance proc address
// exposed by glfw. glfw must be initialized, which the platform surface does.
type Loader struct {
	procAddr func() unsafe.Pointer
}

func NewLoader() *Loader {
	return &Loader{procAddr: glfw.GetVulkanGetInstanceProcAddress}
}

func (l *Loader) Load() (bootstrap.Entry, error) {
	if !glfw.VulkanSupported() {
		return nil, ErrVulkanUnsupported
	}
	procAddr := l.procAddr()
	if procAddr == nil {
		return nil, ErrNoInstanceProcAddr
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return nil, err
	}
	core.LogDebug("Vulkan loader bound.")
	return &Entry{}, nil
}

// Entry is a bound Vulkan loader. Allocator is nil: the driver allocates.
type Entry struct {
	Allocator *vk.AllocationCallbacks
}

func (e *Entry) EnumerateLayers() ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, errors.Join(ErrLayerEnumeration, errors.New(VulkanResultString(res, false)))
	}
	if count == 0 {
		return nil, nil
	}

	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return nil, errors.Join(ErrLayerEnumeration, errors.New(VulkanResultString(res, false)))
	}

	names := make([]string, 0, count)
	for i := range available[:count] {
		available[i].Deref()
		end := FindFirstZeroInByteArray(available[i].LayerName[:])
		names = append(names, string(available[i].LayerName[:end]))
	}
	return names, nil
}

func (e *Entry) CreateInstance(info *bootstrap.CreateInfo) (bootstrap.Instance, bootstrap.Result) {
	apiVersion := info.Application.APIVersion
	if apiVersion == 0 {
		apiVersion = uint32(vk.MakeVersion(1, 0, 0))
	}
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         apiVersion,
		ApplicationVersion: info.Application.ApplicationVersion,
		PApplicationName:   VulkanSafeString(info.Application.ApplicationName),
		EngineVersion:      info.Application.EngineVersion,
		PEngineName:        VulkanSafeString(info.Application.EngineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   vk.InstanceCreateFlags(info.Flags),
		PApplicationInfo:        appInfo,
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     info.Layers,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: info.Extensions,
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, e.Allocator, &instance); res != vk.Success {
		return nil, bootstrap.Result(res)
	}
	if err := vk.InitInstance(instance); err != nil {
		core.LogError("failed to load instance functions: %s", err)
		vk.DestroyInstance(instance, e.Allocator)
		return nil, bootstrap.Result(vk.ErrorInitializationFailed)
	}
	core.LogInfo("Vulkan instance created.")

	return &Instance{Handle: instance, allocator: e.Allocator}, bootstrap.Success
}

func (e *Entry) DescribeResult(code bootstrap.Result) string {
	return VulkanResultString(vk.Result(code), true)
}

// Release drops the entry. goki/vulkan keeps its function table for the
// process, so there is nothing to unload.
func (e *Entry) Release() {
	core.LogDebug("Vulkan loader released.")
}

type Instance struct {
	Handle    vk.Instance
	allocator *vk.AllocationCallbacks
}

func (i *Instance) Destroy() {
	if i.Handle == nil {
		return
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(i.Handle, i.allocator)
	i.Handle = nil
}
