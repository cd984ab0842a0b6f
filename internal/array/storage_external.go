package array

// External is a storage strategy that wraps a caller-supplied slice. The
// storage never reallocates: Allocate succeeds only within the slice's
// original capacity, and Release forgets the slice without freeing it.
type External[T ValueType] struct {
	data []T
	full []T // the slice as originally supplied
}

// NewExternal returns a storage wrapping data. The caller retains
// ownership of the memory.
func NewExternal[T ValueType](data []T) *External[T] {
	return &External[T]{data: data, full: data}
}

// Allocate resizes within the wrapped slice. Requests beyond its
// original length are BadValue: this storage cannot grow memory it does
// not own.
func (s *External[T]) Allocate(n int) error {
	if n < 0 || n > len(s.full) {
		return badValuef("external storage: cannot allocate %d values over a %d-value buffer",
			n, len(s.full))
	}
	s.data = s.full[:n]
	return nil
}

// Shrink reduces the length to n. Growing is a BadValue error.
func (s *External[T]) Shrink(n int) error {
	if n < 0 || n > len(s.data) {
		return badValuef("external storage: cannot shrink %d values to %d", len(s.data), n)
	}
	s.data = s.data[:n]
	return nil
}

// Release forgets the wrapped slice. The caller's memory is untouched.
func (s *External[T]) Release() {
	s.data = nil
	s.full = nil
}

// Len returns the current number of values.
func (s *External[T]) Len() int { return len(s.data) }

// Portal returns a mutable portal over the wrapped slice.
func (s *External[T]) Portal() (Portal[T], error) {
	return NewSlicePortal(s.data), nil
}

// PortalConst returns a read-only portal over the wrapped slice.
func (s *External[T]) PortalConst() (PortalConst[T], error) {
	return NewConstSlicePortal(s.data), nil
}

// Slice exposes the wrapped slice for zero-copy transfer.
func (s *External[T]) Slice() []T { return s.data }

// StorageName identifies the strategy for runtime-typed dispatch.
func (s *External[T]) StorageName() string { return "External" }

var _ Storage[int32] = (*External[int32])(nil)
var _ Sliceable[int32] = (*External[int32])(nil)
