package device

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Factory creates a fresh, unbound Memory for one backend.
type Factory func() (Memory, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// ErrUnknownTag is returned by New for tags no backend has registered.
var ErrUnknownTag = errors.New("unknown device adapter tag")

// Register installs the memory factory for tag. Backends call this from
// init(); registering the same name twice keeps the last factory, so a
// test can shadow a backend.
func Register(tag Tag, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag.DeviceName()] = factory
	klog.V(1).Infof("device: registered adapter %q", tag.DeviceName())
}

// New creates an unbound Memory for tag.
func New(tag Tag) (Memory, error) {
	if tag == nil {
		return nil, errors.Wrap(ErrUnknownTag, "device: nil tag")
	}
	registryMu.RLock()
	factory, ok := registry[tag.DeviceName()]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTag, "device: %q", tag.DeviceName())
	}
	return factory()
}

// Registered returns the names of all registered adapters, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
