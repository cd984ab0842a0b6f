// Copyright 2025 Strand HPC. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pool exposes the thread-pool device adapter. Transfers copy
// into a private execution buffer, chunked across worker goroutines,
// so host-side mutation cannot race in-flight workers.
//
// Example:
//
//	h := array.FromValues(data)
//	portal, err := h.PrepareForInput(pool.New())
package pool

import (
	internalpool "github.com/strand-hpc/strand/internal/backend/pool"
	"github.com/strand-hpc/strand/internal/parallel"
)

// Tag identifies the thread-pool adapter.
type Tag = internalpool.Tag

// Config controls how transfers are spread across workers.
type Config = parallel.Config

// New returns the thread-pool adapter tag.
func New() Tag {
	return Tag{}
}

// DefaultConfig returns worker defaults based on CPU count.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Configure sets the worker configuration for subsequent transfers.
func Configure(cfg Config) {
	internalpool.Configure(cfg)
}
