// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor model of the WebNN reference evaluator.
//
// Tensors are immutable. Element values are held in float64 and rounded to the
// tensor's DataType on construction, so a float32 tensor only ever holds values
// representable in float32.
//
// # Basic Usage
//
//	x, err := tensor.New(tensor.Float32, tensor.Shape{1, 2, 2}, []float64{1, 2, 3, 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mean, _ := tensor.New(tensor.Float32, tensor.Shape{2}, []float64{0, 1})
//	variance, _ := tensor.New(tensor.Float32, tensor.Shape{2}, []float64{1, 4})
//
//	y, err := tensor.BatchNormalization(x, mean, variance, tensor.DefaultBatchNormOptions())
//
// # Batch normalization
//
// BatchNormalization computes
//
//	y[i] = (x[i] - mean[c]) / sqrt(variance[c] + epsilon) * scale[c] + bias[c]
//
// where c is the index of element i along Axis. Intermediate arithmetic is
// float64 and each output element is rounded once, so results are identical
// across runs and worker counts.
//
// # Float16
//
// Float16 tensors are created from values or from IEEE-754 half precision bit
// patterns:
//
//	h, _ := tensor.FromFloat16Bits(tensor.Shape{2}, []uint16{0x3c00, 0xc000}) // 1, -2
//	bits := h.Float16Bits()
package tensor
