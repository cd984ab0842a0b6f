// Copyright 2025 Strand HPC. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public API for device-portable arrays.
//
// A Handle manages an array's worth of data that can live in the
// host-side control domain, in the execution domain of a parallel
// backend, or in both, moving data between the two lazily. Callers
// never touch device memory directly; they prepare the handle for
// input, output, or in-place use against a device-adapter tag and
// receive a bounds-checked portal into the right domain.
//
// Example:
//
//	h := array.FromValues([]float32{3, 1, 4, 1, 5})
//	in, err := h.PrepareForInput(serial.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// run an algorithm over the device portal `in` ...
//	out, err := h.PortalConstControl() // syncs back if needed
package array

import (
	iarray "github.com/strand-hpc/strand/internal/array"
	"github.com/strand-hpc/strand/internal/device"
	"github.com/strand-hpc/strand/internal/typelist"
)

// ValueType constrains array elements to fixed-size, pointer-free
// types.
type ValueType = iarray.ValueType

// Number constrains elements of computed index arrays.
type Number = iarray.Number

// DeviceTag identifies a parallel backend. Obtain values from the
// backend packages (backend/serial, backend/pool, backend/webgpu).
type DeviceTag = device.Tag

// Handle is the device-portable array container. Copies of a Handle
// share one underlying array.
type Handle[T ValueType] = iarray.Handle[T]

// Portal is a mutable bounds-aware view over a logical array.
type Portal[T ValueType] = iarray.Portal[T]

// PortalConst is a read-only bounds-aware view over a logical array.
type PortalConst[T ValueType] = iarray.PortalConst[T]

// Storage owns control-domain backing memory behind a handle.
type Storage[T ValueType] = iarray.Storage[T]

// New returns an empty handle, typically used for algorithm outputs.
func New[T ValueType]() *Handle[T] {
	return iarray.New[T]()
}

// FromSlice returns a handle referencing the caller's slice without
// copying. The handle treats the memory as read-only.
func FromSlice[T ValueType](values []T) *Handle[T] {
	return iarray.FromSlice(values)
}

// FromPortal returns a handle referencing caller-owned memory through
// a read-only portal.
func FromPortal[T ValueType](portal PortalConst[T]) *Handle[T] {
	return iarray.FromPortal(portal)
}

// FromValues returns a handle owning a copy of values.
func FromValues[T ValueType](values []T) *Handle[T] {
	return iarray.FromValues(values)
}

// FromStorage returns a handle over pre-populated control storage.
func FromStorage[T ValueType](storage Storage[T]) *Handle[T] {
	return iarray.FromStorage(storage)
}

// NewConstant returns a handle presenting n copies of value without
// allocating n elements. The handle is read-only.
func NewConstant[T ValueType](value T, n int) *Handle[T] {
	return iarray.FromStorage[T](iarray.NewImplicit[T](iarray.NewConstantPortal(value, n)))
}

// NewIndex returns a read-only handle where element i has value T(i),
// without allocating n elements.
func NewIndex[T Number](n int) *Handle[T] {
	return iarray.FromStorage[T](iarray.NewImplicit[T](iarray.NewIndexPortal[T](n)))
}

// NewFloat16 returns a float32 handle whose control copy is stored in
// IEEE 754 half precision.
func NewFloat16(values []float32) *Handle[float32] {
	return iarray.FromStorage[float32](iarray.NewFloat16FromSlice(values))
}

// NewExternal returns a handle over a caller-supplied slice that the
// handle may mutate and shrink (unlike FromSlice) but never
// reallocates.
func NewExternal[T ValueType](values []T) *Handle[T] {
	return iarray.FromStorage[T](iarray.NewExternal(values))
}

// Dynamic holds a handle without its compile-time element type.
type Dynamic = iarray.Dynamic

// NewDynamic wraps a typed handle for runtime dispatch.
func NewDynamic(h iarray.AnyHandle) Dynamic {
	return iarray.NewDynamic(h)
}

// Cast recovers the typed handle from a Dynamic.
func Cast[T ValueType](d Dynamic) (*Handle[T], error) {
	return iarray.Cast[T](d)
}

// IsType reports whether a Dynamic holds a handle of element type T.
func IsType[T ValueType](d Dynamic) bool {
	return iarray.IsType[T](d)
}

// TypeList is an ordered list of candidate element types for runtime
// dispatch.
type TypeList = typelist.List

// TypeListEntry is one candidate type.
type TypeListEntry = typelist.Entry

// TypeOf returns the type-list entry for T.
func TypeOf[T ValueType]() TypeListEntry {
	return typelist.Of[T]()
}

// NewTypeList builds a list from entries, preserving order.
func NewTypeList(entries ...TypeListEntry) TypeList {
	return typelist.New(entries...)
}

// JoinTypeLists concatenates two lists, first a then b.
func JoinTypeLists(a, b TypeList) TypeList {
	return typelist.Join(a, b)
}

// DefaultTypes is the element-type list runtime dispatch tries by
// default.
var DefaultTypes = iarray.DefaultTypes
