package array

import (
	"github.com/x448/float16"
)

// Float16Portal reads and writes float32 values stored as IEEE 754
// half-precision. Conversion happens on every access.
type Float16Portal struct {
	data []float16.Float16
}

// Get converts the stored half back to float32.
func (p Float16Portal) Get(i int) float32 {
	return p.data[i].Float32()
}

// Set stores v rounded to the nearest representable half.
func (p Float16Portal) Set(i int, v float32) {
	p.data[i] = float16.Fromfloat32(v)
}

// Len returns the number of values.
func (p Float16Portal) Len() int { return len(p.data) }

// Float16 is an owned-buffer storage for float32 arrays that keeps the
// values in half precision, halving the control-domain footprint. The
// execution domain always sees float32: transfers go through the
// converting portal, never the raw halves.
type Float16 struct {
	data []float16.Float16
}

// NewFloat16 returns an empty half-precision storage.
func NewFloat16() *Float16 {
	return &Float16{}
}

// NewFloat16FromSlice returns a half-precision storage holding values
// rounded to half precision.
func NewFloat16FromSlice(values []float32) *Float16 {
	s := &Float16{data: make([]float16.Float16, len(values))}
	for i, v := range values {
		s.data[i] = float16.Fromfloat32(v)
	}
	return s
}

// Allocate resizes to n values, reusing capacity when possible.
func (s *Float16) Allocate(n int) error {
	if n < 0 {
		return badValuef("float16 storage: cannot allocate %d values", n)
	}
	if n <= cap(s.data) {
		s.data = s.data[:n]
		return nil
	}
	s.data = make([]float16.Float16, n)
	return nil
}

// Shrink reduces the length to n. Growing is a BadValue error.
func (s *Float16) Shrink(n int) error {
	if n < 0 || n > len(s.data) {
		return badValuef("float16 storage: cannot shrink %d values to %d", len(s.data), n)
	}
	s.data = s.data[:n]
	return nil
}

// Release drops the backing buffer.
func (s *Float16) Release() {
	s.data = nil
}

// Len returns the current number of values.
func (s *Float16) Len() int { return len(s.data) }

// Portal returns the converting mutable portal.
func (s *Float16) Portal() (Portal[float32], error) {
	return Float16Portal{data: s.data}, nil
}

// PortalConst returns the converting read-only portal.
func (s *Float16) PortalConst() (PortalConst[float32], error) {
	return Float16Portal{data: s.data}, nil
}

// StorageName identifies the strategy for runtime-typed dispatch.
func (s *Float16) StorageName() string { return "Float16" }

var _ Storage[float32] = (*Float16)(nil)
