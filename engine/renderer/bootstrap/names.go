package bootstrap

import (
	"errors"
	"runtime"
	"strings"
)

var ErrNameListSealed = errors.New("name list is in use")

const nul = "\x00"

// NameList owns every layer and extension name handed to the native creation
// call. Names are stored NUL-terminated. Views into the list are only taken
// inside Use, and the list cannot change from then on.
type NameList struct {
	layers     []string
	extensions []string
	sealed     bool
}

func NewNameList() *NameList {
	return &NameList{}
}

func (l *NameList) AddLayer(name string) error {
	if l.sealed {
		return ErrNameListSealed
	}
	l.layers = appendName(l.layers, name)
	return nil
}

func (l *NameList) AddExtension(name string) error {
	if l.sealed {
		return ErrNameListSealed
	}
	l.extensions = appendName(l.extensions, name)
	return nil
}

// Layers returns a copy of the layer names, without terminators.
func (l *NameList) Layers() []string {
	return trimmed(l.layers)
}

// Extensions returns a copy of the extension names, without terminators.
func (l *NameList) Extensions() []string {
	return trimmed(l.extensions)
}

// Use seals the list and calls fn with views into it. The views must not be
// retained after fn returns; the list stays alive until then.
func (l *NameList) Use(fn func(layers, extensions []string)) {
	l.sealed = true
	fn(l.layers[:len(l.layers):len(l.layers)], l.extensions[:len(l.extensions):len(l.extensions)])
	runtime.KeepAlive(l)
}

func appendName(list []string, name string) []string {
	name = terminated(name)
	for _, n := range list {
		if n == name {
			return list
		}
	}
	return append(list, name)
}

func terminated(name string) string {
	if strings.HasSuffix(name, nul) {
		return name
	}
	return name + nul
}

func trimmed(list []string) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = strings.TrimSuffix(n, nul)
	}
	return out
}
