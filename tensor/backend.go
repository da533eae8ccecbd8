// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/webnn-conformance/internal/backend/cpu"
	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// Backend evaluates WebNN operators on tensors.
//
// Implementations:
//   - backend/cpu: pure Go reference evaluator
type Backend = tensor.Backend

// BatchNormOptions holds the optional batch normalization operands and attributes.
type BatchNormOptions = tensor.BatchNormOptions

// Batch normalization defaults.
const (
	DefaultBatchNormAxis    = tensor.DefaultBatchNormAxis
	DefaultBatchNormEpsilon = tensor.DefaultBatchNormEpsilon
)

// DefaultBatchNormOptions returns options with axis 1, epsilon 1e-5 and no scale or bias.
func DefaultBatchNormOptions() BatchNormOptions {
	return tensor.DefaultBatchNormOptions()
}

var reference = cpu.New()

// BatchNormalization normalizes input per channel with the CPU reference evaluator.
func BatchNormalization(input, mean, variance *Tensor, opts BatchNormOptions) (*Tensor, error) {
	return reference.BatchNormalization(input, mean, variance, opts)
}
