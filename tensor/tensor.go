// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// Type aliases for public API

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Uint32  DataType = tensor.Uint32
	Int64   DataType = tensor.Int64
	Uint64  DataType = tensor.Uint64
	Int8    DataType = tensor.Int8
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Descriptor pairs a data type with a shape.
type Descriptor = tensor.Descriptor

// Tensor is an immutable n-dimensional array.
type Tensor = tensor.Tensor

// Errors returned by tensor construction and validation.
var (
	ErrInvalidShape        = tensor.ErrInvalidShape
	ErrLengthMismatch      = tensor.ErrLengthMismatch
	ErrUnsupportedDataType = tensor.ErrUnsupportedDataType
	ErrShapeMismatch       = tensor.ErrShapeMismatch
	ErrDataTypeMismatch    = tensor.ErrDataTypeMismatch
	ErrInvalidAxis         = tensor.ErrInvalidAxis
)

// ParseDataType maps a WebNN data type name such as "float16" to a DataType.
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}

// New creates a tensor from row-major values, rounding each to dt.
func New(dt DataType, shape Shape, values []float64) (*Tensor, error) {
	return tensor.New(dt, shape, values)
}

// Full creates a tensor with every element set to value.
func Full(dt DataType, shape Shape, value float64) (*Tensor, error) {
	return tensor.Full(dt, shape, value)
}

// FromFloat32 creates a float32 tensor.
func FromFloat32(shape Shape, values []float32) (*Tensor, error) {
	return tensor.FromFloat32(shape, values)
}

// FromFloat16Bits creates a float16 tensor from half precision bit patterns.
func FromFloat16Bits(shape Shape, bits []uint16) (*Tensor, error) {
	return tensor.FromFloat16Bits(shape, bits)
}
