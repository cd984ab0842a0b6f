// Copyright 2025 Strand HPC. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serial exposes the serial device adapter: execution in the
// control address space, with zero-copy loads. It is always available
// and is the usual fallback when no accelerator is present.
//
// Example:
//
//	h := array.FromValues([]float32{1, 2, 3})
//	portal, err := h.PrepareForInput(serial.New())
package serial

import (
	internalserial "github.com/strand-hpc/strand/internal/backend/serial"
)

// Tag identifies the serial adapter.
type Tag = internalserial.Tag

// New returns the serial adapter tag.
func New() Tag {
	return Tag{}
}
