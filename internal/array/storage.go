package array

// Storage owns control-domain backing memory for one value type and
// produces portals into it. Strategies differ in who owns the memory
// (owned buffer, caller-supplied buffer, computed values) but satisfy
// one contract.
type Storage[T ValueType] interface {
	// Allocate resizes the storage to hold exactly n values. Previous
	// contents need not be preserved.
	Allocate(n int) error

	// Shrink reduces the length to n without reallocating. Growing
	// through Shrink is a BadValue error.
	Shrink(n int) error

	// Release frees the backing memory. The storage remains usable and
	// reports length 0.
	Release()

	// Len returns the current number of values.
	Len() int

	// Portal returns a mutable portal over the stored values.
	Portal() (Portal[T], error)

	// PortalConst returns a read-only portal over the stored values.
	PortalConst() (PortalConst[T], error)
}

// Basic is the default storage strategy: a storage-owned contiguous
// buffer. Allocate reuses existing capacity when it suffices, so
// repeated shrink/allocate cycles do not thrash the allocator.
type Basic[T ValueType] struct {
	data []T // len(data) == Len(); cap(data) == allocated capacity
}

// NewBasic returns an empty owned-buffer storage.
func NewBasic[T ValueType]() *Basic[T] {
	return &Basic[T]{}
}

// NewBasicFromSlice returns an owned-buffer storage holding a copy of
// values.
func NewBasicFromSlice[T ValueType](values []T) *Basic[T] {
	data := make([]T, len(values))
	copy(data, values)
	return &Basic[T]{data: data}
}

// Allocate resizes to n values, reusing capacity when possible. The
// buffer contents are unspecified after a reallocation.
func (s *Basic[T]) Allocate(n int) error {
	if n < 0 {
		return badValuef("storage: cannot allocate %d values", n)
	}
	if n <= cap(s.data) {
		s.data = s.data[:n]
		return nil
	}
	s.Release()
	s.data = make([]T, n)
	return nil
}

// Shrink reduces the length to n. Growing is a BadValue error.
func (s *Basic[T]) Shrink(n int) error {
	if n < 0 || n > len(s.data) {
		return badValuef("storage: cannot shrink %d values to %d", len(s.data), n)
	}
	s.data = s.data[:n]
	return nil
}

// Release drops the backing buffer.
func (s *Basic[T]) Release() {
	s.data = nil
}

// Len returns the current number of values.
func (s *Basic[T]) Len() int { return len(s.data) }

// Portal returns a mutable portal over the buffer.
func (s *Basic[T]) Portal() (Portal[T], error) {
	return NewSlicePortal(s.data), nil
}

// PortalConst returns a read-only portal over the buffer.
func (s *Basic[T]) PortalConst() (PortalConst[T], error) {
	return NewConstSlicePortal(s.data), nil
}

// Slice exposes the backing buffer for zero-copy transfer to backends
// sharing the control address space.
func (s *Basic[T]) Slice() []T { return s.data }

// StorageName identifies the strategy for runtime-typed dispatch.
func (s *Basic[T]) StorageName() string { return "Basic" }

var _ Storage[float32] = (*Basic[float32])(nil)
var _ Sliceable[float32] = (*Basic[float32])(nil)
