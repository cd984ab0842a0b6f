package array

import (
	"reflect"

	"github.com/strand-hpc/strand/internal/device"
)

// state is the shared block behind every copy of a Handle. It tracks
// which of the three possible data sources currently holds the
// authoritative copy:
//
//   - userPortal: caller-owned memory the handle may read but never
//     mutate or free;
//   - control: the handle's own control-domain storage;
//   - execution: the device-domain copy, bound to one adapter at a time.
//
// At most one of userValid and controlValid is true at any time.
type state[T ValueType] struct {
	userPortal PortalConst[T]
	userValid  bool

	control      Storage[T]
	controlValid bool

	execution      *executionManager[T]
	executionValid bool
}

// Handle manages an array's worth of data that can live in the control
// domain, the execution domain, or both. Copying a Handle is cheap: all
// copies share one underlying state block, and the garbage collector
// reclaims it when the last copy goes away. Release frees backing
// memory earlier.
//
// A Handle performs no internal locking. Calls that look read-only
// (PortalConstControl, PrepareForInput) may still update internal
// bookkeeping, so concurrent use of one handle requires external
// synchronization.
type Handle[T ValueType] struct {
	s *state[T]
}

// New returns an empty handle, typically used for outputs that an
// algorithm will fill through PrepareForOutput.
func New[T ValueType]() *Handle[T] {
	return &Handle[T]{s: &state[T]{control: NewBasic[T]()}}
}

// FromSlice returns a handle referencing the caller's slice without
// copying. The memory stays caller-owned: the handle treats it as
// read-only and never frees it.
func FromSlice[T ValueType](values []T) *Handle[T] {
	return FromPortal[T](NewConstSlicePortal(values))
}

// FromPortal returns a handle referencing caller-owned memory through
// an arbitrary read-only portal.
func FromPortal[T ValueType](portal PortalConst[T]) *Handle[T] {
	return &Handle[T]{s: &state[T]{
		userPortal: portal,
		userValid:  true,
		control:    NewBasic[T](),
	}}
}

// FromValues returns a handle owning a copy of values in control
// storage. Unlike FromSlice the handle may mutate and shrink the data.
func FromValues[T ValueType](values []T) *Handle[T] {
	return FromStorage[T](NewBasicFromSlice(values))
}

// FromStorage returns a handle over pre-populated control storage. This
// is the entry point for specialized storage strategies (implicit,
// half-precision, external buffers).
func FromStorage[T ValueType](storage Storage[T]) *Handle[T] {
	return &Handle[T]{s: &state[T]{
		control:      storage,
		controlValid: true,
	}}
}

// Len returns the number of values, read from whichever source is
// authoritative (user, then control, then execution). An empty handle
// reports 0; this is never an error.
func (h *Handle[T]) Len() int {
	switch {
	case h.s.userValid:
		return h.s.userPortal.Len()
	case h.s.controlValid:
		return h.s.control.Len()
	case h.s.executionValid:
		return h.s.execution.length()
	default:
		return 0
	}
}

// PortalControl returns a mutable portal over the control-domain copy,
// synchronizing from the execution domain first if that is the only
// valid source. Because the caller may write through the portal, any
// execution-domain copy is released. Handles over caller-owned memory
// refuse: mutating memory the handle does not own is a usage error.
func (h *Handle[T]) PortalControl() (Portal[T], error) {
	if err := h.syncControlArray(); err != nil {
		return nil, err
	}
	switch {
	case h.s.userValid:
		return nil, badValuef("array: handle has a read-only control portal")
	case h.s.controlValid:
		// Writes through the returned portal would make any device
		// copy stale, so drop it now.
		h.ReleaseExecution()
		return h.s.control.Portal()
	default:
		return nil, badValuef("array: handle contains no data")
	}
}

// PortalConstControl returns a read-only portal over the control-domain
// copy, synchronizing from the execution domain first if needed. The
// execution copy stays valid.
func (h *Handle[T]) PortalConstControl() (PortalConst[T], error) {
	if err := h.syncControlArray(); err != nil {
		return nil, err
	}
	switch {
	case h.s.userValid:
		return h.s.userPortal, nil
	case h.s.controlValid:
		return h.s.control.PortalConst()
	default:
		return nil, badValuef("array: handle contains no data")
	}
}

// Shrink reduces the array to n values without reallocating. Both the
// control and execution copies are shrunk if present, keeping their
// sizes in step. Growing through Shrink is a BadValue error, as is
// shrinking caller-owned memory.
func (h *Handle[T]) Shrink(n int) error {
	current := h.Len()
	switch {
	case n < current:
		if h.s.userValid {
			return badValuef("array: handle has a read-only control portal")
		}
		if h.s.controlValid {
			if err := h.s.control.Shrink(n); err != nil {
				return err
			}
		}
		if h.s.executionValid {
			if err := h.s.execution.shrink(n); err != nil {
				return err
			}
		}
		return nil
	case n == current:
		return nil
	default:
		return badValuef("array: Shrink cannot grow %d values to %d", current, n)
	}
}

// ReleaseExecution frees the execution-domain copy, if any. Idempotent.
func (h *Handle[T]) ReleaseExecution() {
	if h.s.executionValid {
		h.s.execution.release()
		h.s.executionValid = false
	}
}

// Release frees all backing memory in both domains. The handle becomes
// empty; caller-owned memory is forgotten, not freed.
func (h *Handle[T]) Release() {
	h.ReleaseExecution()
	h.s.userPortal = nil
	h.s.userValid = false
	if h.s.controlValid {
		h.s.control.Release()
		h.s.controlValid = false
	}
}

// PrepareForInput makes the data available on tag's device for
// read-only use and returns the device portal. If the execution copy is
// already valid on that device, no transfer happens.
func (h *Handle[T]) PrepareForInput(tag device.Tag) (PortalConst[T], error) {
	if !h.s.userValid && !h.s.controlValid && !h.s.executionValid {
		return nil, badValuef("array: handle has no data when PrepareForInput called")
	}
	if h.s.executionValid && h.s.execution.isDeviceAdapter(tag) {
		return h.s.execution.portalConstExecution(tag)
	}
	if err := h.prepareForDevice(tag); err != nil {
		return nil, err
	}
	// A rebind above flushed the old device copy into control storage,
	// so one of the control-side sources is valid here.
	var err error
	switch {
	case h.s.userValid:
		err = h.s.execution.loadFromPortal(h.s.userPortal)
	case h.s.controlValid:
		err = h.s.execution.loadForInput(h.s.control)
	default:
		return nil, internalf("array: no source left after device rebind")
	}
	if err != nil {
		return nil, err
	}
	h.s.executionValid = true
	return h.s.execution.portalConstExecution(tag)
}

// PrepareForOutput allocates device memory for n values and returns the
// mutable device portal. Existing data is discarded: the caller intends
// to overwrite everything.
//
// The execution copy is optimistically marked valid on the assumption
// that the caller fills every portal position before reading the array
// back; positions never written hold unspecified values.
func (h *Handle[T]) PrepareForOutput(n int, tag device.Tag) (Portal[T], error) {
	if n < 0 {
		return nil, badValuef("array: PrepareForOutput for %d values", n)
	}
	// Invalidate the control-side sources. The control storage itself
	// is kept: it may be shared with (or aliased by) the device copy.
	h.s.userPortal = nil
	h.s.userValid = false
	h.s.controlValid = false

	if err := h.prepareForDevice(tag); err != nil {
		return nil, err
	}
	if err := h.s.execution.allocateForOutput(h.s.control, n); err != nil {
		return nil, err
	}
	h.s.executionValid = true
	return h.s.execution.portalExecution(tag)
}

// PrepareForInPlace makes the data available on tag's device for
// read-write use and returns the mutable device portal. Handles over
// caller-owned memory refuse: in-place execution could write back into
// user space unexpectedly; copy the data to a new handle first.
func (h *Handle[T]) PrepareForInPlace(tag device.Tag) (Portal[T], error) {
	if h.s.userValid {
		return nil, badValuef("array: in-place operation on caller-owned memory; copy the data first")
	}
	if !h.s.controlValid && !h.s.executionValid {
		return nil, badValuef("array: handle has no data when PrepareForInPlace called")
	}
	if !(h.s.executionValid && h.s.execution.isDeviceAdapter(tag)) {
		if err := h.prepareForDevice(tag); err != nil {
			return nil, err
		}
		if !h.s.controlValid {
			return nil, internalf("array: no source left after device rebind")
		}
		if err := h.s.execution.loadForInPlace(h.s.control); err != nil {
			return nil, err
		}
		h.s.executionValid = true
	}
	// The device copy may be mutated, so the control copy is stale
	// from here on. The storage itself is kept; it may be shared with
	// the execution array.
	h.s.controlValid = false
	return h.s.execution.portalExecution(tag)
}

// prepareForDevice ensures the execution manager targets tag, rebinding
// if a manager for a different adapter exists. Rebinding first flushes
// the device copy into control storage so no data is lost. Observable
// data never changes here, only internal binding.
func (h *Handle[T]) prepareForDevice(tag device.Tag) error {
	if h.s.execution != nil {
		if h.s.execution.isDeviceAdapter(tag) {
			return nil
		}
		if err := h.syncControlArray(); err != nil {
			return err
		}
		h.s.execution.release()
		h.s.execution = nil
		h.s.executionValid = false
	}
	manager, err := newExecutionManager[T](tag)
	if err != nil {
		return err
	}
	h.s.execution = manager
	return nil
}

// syncControlArray retrieves the device copy into control storage when
// the execution domain is the sole valid source. A no-op otherwise.
// This is the one place where a logically read-only call mutates
// internal state.
func (h *Handle[T]) syncControlArray() error {
	if h.s.userValid || h.s.controlValid {
		return nil
	}
	if !h.s.executionValid {
		// Empty handle; nothing to synchronize.
		return nil
	}
	if err := h.s.execution.retrieveOutput(h.s.control); err != nil {
		return err
	}
	h.s.controlValid = true
	return nil
}

// ValueType reports the element type, for runtime-typed dispatch.
func (h *Handle[T]) ValueType() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

// StorageKind names the control storage strategy, for runtime-typed
// dispatch.
func (h *Handle[T]) StorageKind() string {
	if h.s.userValid {
		return "User"
	}
	if named, ok := h.s.control.(interface{ StorageName() string }); ok {
		return named.StorageName()
	}
	return reflect.TypeOf(h.s.control).String()
}
