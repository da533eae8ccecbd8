// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/webnn-conformance/internal/backend/cpu"
	"github.com/born-ml/webnn-conformance/internal/parallel"
	"github.com/born-ml/webnn-conformance/tensor"
)

// Backend represents the CPU reference backend.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend that splits work across all CPUs.
//
// Example:
//
//	import (
//	    "github.com/born-ml/webnn-conformance/backend/cpu"
//	    "github.com/born-ml/webnn-conformance/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    y, err := backend.BatchNormalization(x, mean, variance, tensor.DefaultBatchNormOptions())
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewSequential creates a CPU backend that evaluates on the calling goroutine.
func NewSequential() *Backend {
	return internalcpu.New(internalcpu.WithParallel(parallel.Sequential()))
}
