//go:build windows

// Copyright 2025 Strand HPC. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu exposes the WebGPU device adapter for GPU-resident
// arrays.
//
// WebGPU is a cross-platform graphics and compute API; this adapter
// currently builds on Windows only, matching the underlying
// go-webgpu bindings. Use Available to probe for a usable GPU before
// preparing handles against the tag.
//
// Example:
//
//	if webgpu.Available() {
//	    portal, err := h.PrepareForInput(webgpu.New())
//	    ...
//	}
package webgpu

import (
	internalwebgpu "github.com/strand-hpc/strand/internal/backend/webgpu"
)

// Tag identifies the WebGPU adapter.
type Tag = internalwebgpu.Tag

// New returns the WebGPU adapter tag.
func New() Tag {
	return Tag{}
}

// Available reports whether a WebGPU device could be initialized.
func Available() bool {
	return internalwebgpu.Available()
}
