package array

import (
	"golang.org/x/exp/constraints"
)

// Number constrains implicit portals that synthesize values from their
// index.
type Number interface {
	constraints.Integer | constraints.Float
}

// ConstantPortal is a computed portal returning the same value at every
// index. It has no backing memory.
type ConstantPortal[T ValueType] struct {
	value T
	n     int
}

// NewConstantPortal returns a portal of n copies of value.
func NewConstantPortal[T ValueType](value T, n int) ConstantPortal[T] {
	return ConstantPortal[T]{value: value, n: n}
}

// Get returns the constant value. Index bounds are still enforced.
func (p ConstantPortal[T]) Get(i int) T {
	if i < 0 || i >= p.n {
		panic("array: constant portal index out of range")
	}
	return p.value
}

// Len returns the logical length.
func (p ConstantPortal[T]) Len() int { return p.n }

// IndexPortal is a computed portal where Get(i) == T(i). It is the
// classic zero-memory index array.
type IndexPortal[T Number] struct {
	n int
}

// NewIndexPortal returns an index portal of length n.
func NewIndexPortal[T Number](n int) IndexPortal[T] {
	return IndexPortal[T]{n: n}
}

// Get returns T(i).
func (p IndexPortal[T]) Get(i int) T {
	if i < 0 || i >= p.n {
		panic("array: index portal index out of range")
	}
	return T(i)
}

// Len returns the logical length.
func (p IndexPortal[T]) Len() int { return p.n }

// Implicit is a storage strategy whose portal computes values on access.
// There is no backing array, so the storage is read-only: Allocate,
// Shrink, and mutable portals are BadValue errors.
type Implicit[T ValueType] struct {
	portal PortalConst[T]
}

// NewImplicit returns a storage presenting the computed portal.
func NewImplicit[T ValueType](portal PortalConst[T]) *Implicit[T] {
	return &Implicit[T]{portal: portal}
}

// Allocate is a BadValue error: implicit storage has no memory to size.
func (s *Implicit[T]) Allocate(int) error {
	return badValuef("implicit storage: cannot allocate computed values")
}

// Shrink is a BadValue error: implicit storage has a fixed logical
// length.
func (s *Implicit[T]) Shrink(int) error {
	return badValuef("implicit storage: cannot shrink computed values")
}

// Release drops the computed portal.
func (s *Implicit[T]) Release() {
	s.portal = nil
}

// Len returns the logical length of the computed portal.
func (s *Implicit[T]) Len() int {
	if s.portal == nil {
		return 0
	}
	return s.portal.Len()
}

// Portal is a BadValue error: computed values cannot be written.
func (s *Implicit[T]) Portal() (Portal[T], error) {
	return nil, badValuef("implicit storage: computed values are read-only")
}

// PortalConst returns the computed portal.
func (s *Implicit[T]) PortalConst() (PortalConst[T], error) {
	if s.portal == nil {
		return nil, badValuef("implicit storage: released")
	}
	return s.portal, nil
}

// StorageName identifies the strategy for runtime-typed dispatch.
func (s *Implicit[T]) StorageName() string { return "Implicit" }

var _ Storage[float64] = (*Implicit[float64])(nil)
