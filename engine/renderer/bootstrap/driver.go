package bootstrap

// Result is a native driver result code. Zero is success; anything else is
// carried through uninterpreted.
type Result int32

const Success Result = 0

// CreateFlags are the native instance creation flags.
type CreateFlags uint32

const (
	// CreateEnumeratePortability lets the loader report portability
	// implementations such as MoltenVK.
	CreateEnumeratePortability CreateFlags = 0x00000001
)

// ApplicationInfo describes the requesting application to the driver.
type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
}

// CreateInfo is the argument of the native creation call. Layers and
// Extensions are NUL-terminated views into a NameList and are only valid for
// the duration of Entry.CreateInstance.
type CreateInfo struct {
	Application ApplicationInfo
	Flags       CreateFlags
	Layers      []string
	Extensions  []string
}

// Loader binds the process to the graphics driver loader.
type Loader interface {
	Load() (Entry, error)
}

// Entry is a loaded driver entry point.
type Entry interface {
	// EnumerateLayers lists the layers offered by the driver.
	EnumerateLayers() ([]string, error)
	// CreateInstance performs the native creation call.
	CreateInstance(info *CreateInfo) (Instance, Result)
	// Release unbinds the loader.
	Release()
}

// ResultDescriber is implemented by entries able to name their result codes.
type ResultDescriber interface {
	DescribeResult(code Result) string
}

// Instance owns the driver-level resources of a context.
type Instance interface {
	Destroy()
}
