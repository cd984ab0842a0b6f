// Copyright 2025 Strand HPC. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-hpc/strand/array"
	"github.com/strand-hpc/strand/backend/pool"
	"github.com/strand-hpc/strand/backend/serial"
)

func TestDeviceRoundTrip(t *testing.T) {
	h := array.FromValues([]float32{3, 1, 4, 1, 5})
	defer h.Release()

	in, err := h.PrepareForInput(serial.New())
	require.NoError(t, err)
	require.Equal(t, 5, in.Len())

	sum := float32(0)
	for i := 0; i < in.Len(); i++ {
		sum += in.Get(i)
	}
	assert.Equal(t, float32(14), sum)
}

func TestOutputThenReadBack(t *testing.T) {
	h := array.New[int64]()
	defer h.Release()

	out, err := h.PrepareForOutput(10, pool.New())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		out.Set(i, int64(i*i))
	}

	back, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, int64(81), back.Get(9))
}

func TestReadOnlySlice(t *testing.T) {
	h := array.FromSlice([]int32{1, 2, 3})
	defer h.Release()

	_, err := h.PortalControl()
	require.ErrorIs(t, err, array.ErrBadValue)

	in, err := h.PrepareForInput(serial.New())
	require.NoError(t, err)
	assert.Equal(t, int32(3), in.Get(2))
}

func TestConstantHandle(t *testing.T) {
	h := array.NewConstant[float64](1.5, 1000)
	defer h.Release()
	assert.Equal(t, 1000, h.Len())

	p, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, 1.5, p.Get(999))
}

func TestIndexHandleOnDevice(t *testing.T) {
	h := array.NewIndex[int32](8)
	defer h.Release()

	in, err := h.PrepareForInput(pool.New())
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		assert.Equal(t, int32(i), in.Get(i))
	}
}

func TestFloat16Handle(t *testing.T) {
	h := array.NewFloat16([]float32{0.5, 1, 2})
	defer h.Release()

	p, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), p.Get(0))
}

func TestExternalHandle(t *testing.T) {
	buf := []float32{1, 2, 3, 4}
	h := array.NewExternal(buf)
	defer h.Release()

	p, err := h.PrepareForInPlace(serial.New())
	require.NoError(t, err)
	p.Set(0, 10)

	out, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, float32(10), out.Get(0))
	assert.Equal(t, float32(10), buf[0])
}

func TestDynamicDispatch(t *testing.T) {
	d := array.NewDynamic(array.FromValues([]float64{1, 2, 3}))
	defer d.Release()

	require.True(t, array.IsType[float64](d))

	total := 0.0
	err := d.CastAndCall(array.DefaultTypes, func(handle any) {
		h := handle.(*array.Handle[float64])
		p, perr := h.PortalConstControl()
		require.NoError(t, perr)
		for i := 0; i < p.Len(); i++ {
			total += p.Get(i)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, total)
}

func TestCustomTypeList(t *testing.T) {
	base := array.NewTypeList(array.TypeOf[int8](), array.TypeOf[int16]())
	full := array.JoinTypeLists(base, array.DefaultTypes)
	assert.Equal(t, base.Len()+array.DefaultTypes.Len(), full.Len())

	d := array.NewDynamic(array.FromValues([]int16{7}))
	defer d.Release()
	err := d.CastAndCall(base, func(handle any) {
		h := handle.(*array.Handle[int16])
		assert.Equal(t, 1, h.Len())
	})
	require.NoError(t, err)
}
