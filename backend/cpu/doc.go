// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference backend for WebNN operators.
//
// # Overview
//
// The CPU backend is the numerical reference that conformance fixtures are
// checked against:
//   - Pure Go implementation (no CGO)
//   - float64 intermediate arithmetic, one rounding per output element
//   - Float32 and Float16 inputs
//   - Element loops split across goroutines without reductions, so output
//     is bit-identical for any worker count
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/webnn-conformance/backend/cpu"
//	    "github.com/born-ml/webnn-conformance/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x, _ := tensor.New(tensor.Float32, tensor.Shape{1, 2, 2}, []float64{1, 2, 3, 4})
//	    mean, _ := tensor.New(tensor.Float32, tensor.Shape{2}, []float64{0, 1})
//	    variance, _ := tensor.New(tensor.Float32, tensor.Shape{2}, []float64{1, 4})
//
//	    y, err := backend.BatchNormalization(x, mean, variance, tensor.DefaultBatchNormOptions())
//	}
//
// # Supported Operations
//
//   - BatchNormalization: per-channel normalization with optional scale,
//     bias, axis and epsilon
package cpu
