// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webnn provides the public WebNN graph builder.
//
// Example:
//
//	builder := webnn.NewGraphBuilder(cpu.New())
//	x, _ := builder.Input("x", tensor.Descriptor{DataType: tensor.Float32, Shape: tensor.Shape{4, 6}})
//	mean, _ := builder.Constant(meanTensor)
//	variance, _ := builder.Constant(varianceTensor)
//	y, _ := builder.BatchNormalization(x, mean, variance, webnn.DefaultBatchNormalizationOptions())
//	graph, _ := builder.Build(map[string]*webnn.Operand{"y": y})
//	outputs, _ := graph.Compute(ctx, map[string]*tensor.Tensor{"x": input})
package webnn

import (
	"github.com/born-ml/webnn-conformance/internal/webnn"
	"github.com/born-ml/webnn-conformance/tensor"
)

// GraphBuilder declares operands and operators, then builds a Graph.
type GraphBuilder = webnn.GraphBuilder

// Graph is a built graph, safe for concurrent Compute calls.
type Graph = webnn.Graph

// Operand is a value in a graph under construction.
type Operand = webnn.Operand

// BatchNormalizationOptions are the optional batchNormalization arguments.
type BatchNormalizationOptions = webnn.BatchNormalizationOptions

// ValidationError describes an operator rejected by the builder.
type ValidationError = webnn.ValidationError

// Builder and compute errors.
var (
	ErrDuplicateInput     = webnn.ErrDuplicateInput
	ErrMissingInput       = webnn.ErrMissingInput
	ErrDescriptorMismatch = webnn.ErrDescriptorMismatch
	ErrInvalidAxis        = webnn.ErrInvalidAxis
	ErrInvalidOperand     = webnn.ErrInvalidOperand
	ErrInvalidOption      = webnn.ErrInvalidOption
	ErrAlreadyBuilt       = webnn.ErrAlreadyBuilt
	ErrNoOutputs          = webnn.ErrNoOutputs
)

// NewGraphBuilder creates a builder whose graphs compute on backend.
func NewGraphBuilder(backend tensor.Backend) *GraphBuilder {
	return webnn.NewGraphBuilder(backend)
}

// DefaultBatchNormalizationOptions returns axis 1 and epsilon 1e-5.
func DefaultBatchNormalizationOptions() BatchNormalizationOptions {
	return webnn.DefaultBatchNormalizationOptions()
}
