package array

import (
	"reflect"

	"github.com/strand-hpc/strand/internal/typelist"
)

// AnyHandle is the type-erased face of Handle[T], for code that stores
// arrays of mixed element types.
type AnyHandle interface {
	Len() int
	Release()
	ReleaseExecution()
	ValueType() reflect.Type
	StorageKind() string
}

// DefaultTypes lists the element types runtime dispatch tries by
// default, in order.
var DefaultTypes = typelist.New(
	typelist.Of[int32](),
	typelist.Of[int64](),
	typelist.Of[float32](),
	typelist.Of[float64](),
)

// DefaultStorageKinds lists the storage strategies runtime dispatch
// accepts by default.
var DefaultStorageKinds = []string{"Basic", "User"}

// Dynamic holds an array handle without its compile-time element type.
// It defers typed access to CastAndCall, which recovers the concrete
// handle by trying a list of candidate types in order.
type Dynamic struct {
	handle AnyHandle
}

// NewDynamic wraps a typed handle.
func NewDynamic(h AnyHandle) Dynamic {
	return Dynamic{handle: h}
}

// Len returns the number of values in the wrapped handle.
func (d Dynamic) Len() int {
	if d.handle == nil {
		return 0
	}
	return d.handle.Len()
}

// Release frees the wrapped handle's resources.
func (d Dynamic) Release() {
	if d.handle != nil {
		d.handle.Release()
	}
}

// ValueType reports the wrapped handle's element type, or nil for the
// zero Dynamic.
func (d Dynamic) ValueType() reflect.Type {
	if d.handle == nil {
		return nil
	}
	return d.handle.ValueType()
}

// StorageKind reports the wrapped handle's storage strategy.
func (d Dynamic) StorageKind() string {
	if d.handle == nil {
		return ""
	}
	return d.handle.StorageKind()
}

// IsType reports whether the wrapped handle's element type is T.
func IsType[T ValueType](d Dynamic) bool {
	_, ok := d.handle.(*Handle[T])
	return ok
}

// Cast recovers the typed handle. A mismatched element type is a
// BadValue error.
func Cast[T ValueType](d Dynamic) (*Handle[T], error) {
	h, ok := d.handle.(*Handle[T])
	if !ok {
		return nil, badValuef("array: dynamic handle holds %v, not %v",
			d.ValueType(), reflect.TypeOf((*T)(nil)).Elem())
	}
	return h, nil
}

// CastAndCall tries every candidate type in list order and invokes f
// with the concrete *Handle[T] (as any) for the first match. No match
// is a BadValue error.
func (d Dynamic) CastAndCall(types typelist.List, f func(handle any)) error {
	return d.CastAndCallWithStorage(types, nil, f)
}

// CastAndCallWithStorage is CastAndCall restricted to the named storage
// kinds; a nil or empty storages slice accepts every kind.
func (d Dynamic) CastAndCallWithStorage(types typelist.List, storages []string, f func(handle any)) error {
	if d.handle == nil {
		return badValuef("array: empty dynamic handle")
	}
	if len(storages) > 0 {
		kind := d.handle.StorageKind()
		found := false
		for _, s := range storages {
			if s == kind {
				found = true
				break
			}
		}
		if !found {
			return badValuef("array: dynamic handle storage %q not among candidates", kind)
		}
	}
	matched := false
	want := d.handle.ValueType()
	types.ForEach(func(e typelist.Entry) {
		if matched || e.Type != want {
			return
		}
		matched = true
		f(d.handle)
	})
	if !matched {
		return badValuef("array: dynamic handle type %v does not match any candidate type", want)
	}
	return nil
}
