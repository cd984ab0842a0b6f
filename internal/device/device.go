// Package device defines the device-adapter contract: the tag identifying
// a parallel backend, the byte-level memory every backend must provide,
// and the registry that maps tags to memory factories.
package device

// Tag identifies a parallel backend. Each backend declares one zero-size
// tag type; tag values are compared by device name. Passing a tag of one
// backend to code compiled for another is caught at the registry.
type Tag interface {
	DeviceName() string
}

// Same reports whether two tags name the same backend.
func Same(a, b Tag) bool {
	if a == nil || b == nil {
		return false
	}
	return a.DeviceName() == b.DeviceName()
}

// Memory is the execution-domain backing memory for one device-adapter
// binding, at byte granularity. Typed views and transfer ordering are
// layered on top by the array package; a Memory only moves bytes.
//
// The host view returned by HostBytes is the staging area for transfers:
// backends sharing the control address space return the device memory
// itself, discrete backends return a mirror kept coherent through Flush
// and Invalidate.
type Memory interface {
	// Allocate sizes the device memory (and host view) to byteSize.
	// Previous contents need not survive.
	Allocate(byteSize int) error

	// HostBytes returns the host-visible view of the device memory.
	// Only valid after a successful Allocate or Alias.
	HostBytes() ([]byte, error)

	// Flush pushes the first byteSize bytes of the host view to the
	// device. A no-op for shared-address-space backends.
	Flush(byteSize int) error

	// Invalidate pulls device contents into the host view, if the
	// device holds writes the view has not seen. A no-op for
	// shared-address-space backends.
	Invalidate(byteSize int) error

	// Shrink reduces the logical size without reallocating.
	Shrink(byteSize int) error

	// Release frees the device memory. Idempotent.
	Release()

	// Shared reports whether the backend shares the control address
	// space, making zero-copy aliasing meaningful.
	Shared() bool
}

// Copier is implemented by memories with a device-optimized bulk copy
// (for example, chunked across a worker pool). Transfer code uses it
// for contiguous sources; computed sources always go element by
// element.
type Copier interface {
	Copy(dst, src []byte)
}

// Aliaser is implemented by memories that can adopt control-domain
// memory directly instead of copying into their own allocation.
type Aliaser interface {
	// Alias binds the memory to host, avoiding any copy. Returns false
	// if this memory cannot alias (the caller then falls back to
	// Allocate + copy).
	Alias(host []byte) bool
}
