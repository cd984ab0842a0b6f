// Package array implements the device-portable array container: portals,
// control-side storage strategies, the execution-manager glue, and the
// Handle coordinator that tracks which memory domain holds the
// authoritative copy of the data.
package array

import (
	"golang.org/x/exp/constraints"
)

// ValueType constrains array elements to fixed-size, pointer-free types
// that can be copied between memory domains byte for byte.
type ValueType interface {
	constraints.Integer | constraints.Float | constraints.Complex | ~bool
}

// PortalConst is a read-only, bounds-aware view over a logical array.
// It is the unit of data access in both the control and the execution
// domain.
type PortalConst[T ValueType] interface {
	Get(i int) T
	Len() int
}

// Portal is a mutable portal: PortalConst plus indexed writes.
type Portal[T ValueType] interface {
	PortalConst[T]
	Set(i int, v T)
}

// Sliceable is implemented by portals and storages whose values live in a
// single contiguous slice. It enables zero-copy transfers to backends
// that share the control address space.
type Sliceable[T ValueType] interface {
	Slice() []T
}

// SlicePortal is a mutable portal over a contiguous slice. Out-of-range
// indices panic through Go slice indexing.
type SlicePortal[T ValueType] struct {
	data []T
}

// NewSlicePortal returns a mutable portal over data.
func NewSlicePortal[T ValueType](data []T) SlicePortal[T] {
	return SlicePortal[T]{data: data}
}

// Get returns the element at index i.
func (p SlicePortal[T]) Get(i int) T { return p.data[i] }

// Set stores v at index i.
func (p SlicePortal[T]) Set(i int, v T) { p.data[i] = v }

// Len returns the number of values reachable through the portal.
func (p SlicePortal[T]) Len() int { return len(p.data) }

// Slice returns the backing slice.
func (p SlicePortal[T]) Slice() []T { return p.data }

// ConstSlicePortal is a read-only portal over a contiguous slice.
type ConstSlicePortal[T ValueType] struct {
	data []T
}

// NewConstSlicePortal returns a read-only portal over data.
func NewConstSlicePortal[T ValueType](data []T) ConstSlicePortal[T] {
	return ConstSlicePortal[T]{data: data}
}

// Get returns the element at index i.
func (p ConstSlicePortal[T]) Get(i int) T { return p.data[i] }

// Len returns the number of values reachable through the portal.
func (p ConstSlicePortal[T]) Len() int { return len(p.data) }

// Slice returns the backing slice. Mutating it bypasses the read-only
// contract; the handle layer never does.
func (p ConstSlicePortal[T]) Slice() []T { return p.data }

// copyFromPortal copies all values of src into dst. dst must have at
// least src.Len() elements. Contiguous sources take the memmove path;
// computed portals are read element by element.
func copyFromPortal[T ValueType](dst []T, src PortalConst[T]) {
	if s, ok := src.(Sliceable[T]); ok {
		copy(dst, s.Slice())
		return
	}
	n := src.Len()
	for i := 0; i < n; i++ {
		dst[i] = src.Get(i)
	}
}

// copyToPortal copies src into the portal dst, which must have at least
// len(src) values.
func copyToPortal[T ValueType](dst Portal[T], src []T) {
	if s, ok := dst.(Sliceable[T]); ok {
		copy(s.Slice(), src)
		return
	}
	for i, v := range src {
		dst.Set(i, v)
	}
}
