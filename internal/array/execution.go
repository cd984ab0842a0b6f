package array

import (
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/strand-hpc/strand/internal/device"
)

func sizeOf[T ValueType]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// bytesOf reinterprets a value slice as its raw bytes. ValueType
// guarantees pointer-free fixed-size elements, so the view is safe.
func bytesOf[T ValueType](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*sizeOf[T]())
}

// valuesOf reinterprets raw bytes as a value slice.
func valuesOf[T ValueType](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/sizeOf[T]())
}

// executionManager owns the execution-domain copy of one array for one
// device-adapter binding. It layers typed portals and transfer ordering
// over the backend's byte-level device.Memory.
//
// The coordinator (Handle) is responsible for call ordering; a manager
// asked for portals before any load reports ErrInternal, never a user
// error.
type executionManager[T ValueType] struct {
	tag  device.Tag
	mem  device.Memory
	view []T // host-visible view of the device memory, len == n
	n    int
	// bound is set once device memory holds a live allocation.
	bound bool
	// aliased is set when view is control-domain memory adopted without
	// a copy; retrieval and release must then leave it alone.
	aliased bool
}

// newExecutionManager creates a manager bound to tag. An unregistered
// tag is a BadValue error: it is the runtime analogue of passing a type
// that is not a device adapter tag.
func newExecutionManager[T ValueType](tag device.Tag) (*executionManager[T], error) {
	mem, err := device.New(tag)
	if err != nil {
		if errors.Is(err, device.ErrUnknownTag) {
			return nil, badValuef("array: no registered backend for device adapter %q",
				tag.DeviceName())
		}
		return nil, err
	}
	return &executionManager[T]{tag: tag, mem: mem}, nil
}

// isDeviceAdapter reports whether this manager is bound to tag's
// backend.
func (m *executionManager[T]) isDeviceAdapter(tag device.Tag) bool {
	return device.Same(m.tag, tag)
}

// length returns the number of values in execution memory.
func (m *executionManager[T]) length() int { return m.n }

// tryAlias adopts host memory without a copy when both the source and
// the backend support it.
func (m *executionManager[T]) tryAlias(src any, n int) bool {
	aliaser, ok := m.mem.(device.Aliaser)
	if !ok {
		return false
	}
	sliceable, ok := src.(Sliceable[T])
	if !ok {
		return false
	}
	data := sliceable.Slice()[:n]
	if !aliaser.Alias(bytesOf(data)) {
		return false
	}
	m.view = data
	m.n = n
	m.bound = true
	m.aliased = true
	klog.V(2).Infof("array: aliased %s on %s (zero copy)",
		humanize.Bytes(uint64(n*sizeOf[T]())), m.tag.DeviceName())
	return true
}

// bind allocates device memory for n values and maps the host view.
func (m *executionManager[T]) bind(n int) error {
	byteSize := n * sizeOf[T]()
	if err := m.mem.Allocate(byteSize); err != nil {
		return err
	}
	host, err := m.mem.HostBytes()
	if err != nil {
		return err
	}
	m.view = valuesOf[T](host)[:n]
	m.n = n
	m.bound = true
	m.aliased = false
	return nil
}

// copyBytes copies between contiguous typed views, letting the backend
// supply a device-optimized bulk copy when it has one.
func (m *executionManager[T]) copyBytes(dst, src []T) {
	if c, ok := m.mem.(device.Copier); ok {
		c.Copy(bytesOf(dst), bytesOf(src))
		return
	}
	copy(dst, src)
}

// loadFromPortal copies (or aliases) the portal's values into device
// memory.
func (m *executionManager[T]) loadFromPortal(src PortalConst[T]) error {
	n := src.Len()
	if m.tryAlias(src, n) {
		return nil
	}
	if err := m.bind(n); err != nil {
		return err
	}
	if s, ok := src.(Sliceable[T]); ok {
		m.copyBytes(m.view[:n], s.Slice()[:n])
	} else {
		copyFromPortal(m.view, src)
	}
	if err := m.mem.Flush(n * sizeOf[T]()); err != nil {
		return err
	}
	klog.V(2).Infof("array: copied %s to %s",
		humanize.Bytes(uint64(n*sizeOf[T]())), m.tag.DeviceName())
	return nil
}

// loadForInput makes the storage's values available on the device for
// read-only use.
func (m *executionManager[T]) loadForInput(storage Storage[T]) error {
	if m.tryAlias(storage, storage.Len()) {
		return nil
	}
	portal, err := storage.PortalConst()
	if err != nil {
		return err
	}
	return m.loadFromPortal(portal)
}

// loadForInPlace makes the storage's values available on the device for
// read-write use. Storages that cannot produce a mutable portal
// (computed values) refuse here.
func (m *executionManager[T]) loadForInPlace(storage Storage[T]) error {
	portal, err := storage.Portal()
	if err != nil {
		return err
	}
	if m.tryAlias(portal, portal.Len()) {
		return nil
	}
	return m.loadFromPortal(portal)
}

// allocateForOutput sizes device memory for n values without loading
// anything. The control storage is resized to match but not filled.
func (m *executionManager[T]) allocateForOutput(storage Storage[T], n int) error {
	if err := storage.Allocate(n); err != nil {
		return err
	}
	if m.tryAlias(storage, n) {
		return nil
	}
	return m.bind(n)
}

// retrieveOutput copies device memory back into control storage.
func (m *executionManager[T]) retrieveOutput(storage Storage[T]) error {
	if !m.bound {
		return internalf("array: RetrieveOutputData on %s before any load",
			m.tag.DeviceName())
	}
	if err := m.mem.Invalidate(m.n * sizeOf[T]()); err != nil {
		return err
	}
	if err := storage.Allocate(m.n); err != nil {
		return err
	}
	portal, err := storage.Portal()
	if err != nil {
		return err
	}
	if s, ok := portal.(Sliceable[T]); ok {
		m.copyBytes(s.Slice()[:m.n], m.view)
	} else {
		copyToPortal(portal, m.view)
	}
	klog.V(2).Infof("array: retrieved %s from %s",
		humanize.Bytes(uint64(m.n*sizeOf[T]())), m.tag.DeviceName())
	return nil
}

// portalExecution returns the mutable device portal for tag.
func (m *executionManager[T]) portalExecution(tag device.Tag) (Portal[T], error) {
	if err := m.check(tag); err != nil {
		return nil, err
	}
	return NewSlicePortal(m.view), nil
}

// portalConstExecution returns the read-only device portal for tag.
func (m *executionManager[T]) portalConstExecution(tag device.Tag) (PortalConst[T], error) {
	if err := m.check(tag); err != nil {
		return nil, err
	}
	return NewConstSlicePortal(m.view), nil
}

func (m *executionManager[T]) check(tag device.Tag) error {
	if !m.isDeviceAdapter(tag) {
		return internalf("array: execution portal for %q requested from manager bound to %q",
			tag.DeviceName(), m.tag.DeviceName())
	}
	if !m.bound {
		return internalf("array: execution portal requested before device memory is bound on %s",
			m.tag.DeviceName())
	}
	return nil
}

// shrink reduces the execution-side length without reallocating.
func (m *executionManager[T]) shrink(n int) error {
	if !m.bound {
		return internalf("array: Shrink on %s before any load", m.tag.DeviceName())
	}
	if n < 0 || n > m.n {
		return badValuef("array: cannot shrink %d execution values to %d", m.n, n)
	}
	m.view = m.view[:n]
	m.n = n
	return m.mem.Shrink(n * sizeOf[T]())
}

// release frees the device memory. The manager stays usable for a later
// load.
func (m *executionManager[T]) release() {
	if m.mem != nil {
		m.mem.Release()
	}
	m.view = nil
	m.n = 0
	m.bound = false
	m.aliased = false
}
