package tensor

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Descriptor describes an operand: its data type and shape.
type Descriptor struct {
	DataType DataType
	Shape    Shape
}

// Equal reports whether two descriptors have the same data type and shape.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.DataType == other.DataType && d.Shape.Equal(other.Shape)
}

// String renders the descriptor as "float32[2 3]".
func (d Descriptor) String() string {
	return d.DataType.String() + d.Shape.String()
}

// Tensor is an immutable n-dimensional array.
//
// Values are stored row-major (last axis fastest) as float64, each already
// rounded to the tensor's data type, so a float64 is an exact carrier for
// every supported element type.
type Tensor struct {
	desc Descriptor
	data []float64
}

// New creates a tensor of the given type and shape from row-major values.
// Each value is rounded to dt; values is not retained.
func New(dt DataType, shape Shape, values []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("%w: %d values for shape %v (%d elements)",
			ErrLengthMismatch, len(values), shape, shape.NumElements())
	}

	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = dt.Round(v)
	}
	return &Tensor{
		desc: Descriptor{DataType: dt, Shape: shape.Clone()},
		data: data,
	}, nil
}

// Full creates a tensor with every element set to value.
func Full(dt DataType, shape Shape, value float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	values := make([]float64, shape.NumElements())
	for i := range values {
		values[i] = value
	}
	return New(dt, shape, values)
}

// FromFloat32 creates a float32 tensor.
func FromFloat32(shape Shape, values []float32) (*Tensor, error) {
	wide := make([]float64, len(values))
	for i, v := range values {
		wide[i] = float64(v)
	}
	return New(Float32, shape, wide)
}

// FromFloat16Bits creates a float16 tensor from IEEE-754 half precision bit patterns.
func FromFloat16Bits(shape Shape, bits []uint16) (*Tensor, error) {
	wide := make([]float64, len(bits))
	for i, b := range bits {
		wide[i] = float64(float16.Frombits(b).Float32())
	}
	return New(Float16, shape, wide)
}

// Descriptor returns the tensor's descriptor.
func (t *Tensor) Descriptor() Descriptor {
	return Descriptor{DataType: t.desc.DataType, Shape: t.desc.Shape.Clone()}
}

// DataType returns the element type.
func (t *Tensor) DataType() DataType {
	return t.desc.DataType
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.desc.Shape.Clone()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.desc.Shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// At returns the element at flat row-major index i.
func (t *Tensor) At(i int) float64 {
	return t.data[i]
}

// Values returns a copy of the elements in row-major order.
func (t *Tensor) Values() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

// Float32s returns the elements converted to float32.
func (t *Tensor) Float32s() []float32 {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = float32(v)
	}
	return out
}

// Float16Bits returns the elements as IEEE-754 half precision bit patterns.
// Panics if the tensor's dtype is not Float16.
func (t *Tensor) Float16Bits() []uint16 {
	if t.desc.DataType != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", t.desc.DataType))
	}
	out := make([]uint16, len(t.data))
	for i, v := range t.data {
		out[i] = float16.Fromfloat32(float32(v)).Bits()
	}
	return out
}

// BitEqual reports whether two tensors have equal descriptors and bit-identical elements.
// NaN payloads are compared by bits, so NaN equals an identically encoded NaN.
func (t *Tensor) BitEqual(other *Tensor) bool {
	if !t.desc.Equal(other.desc) {
		return false
	}
	for i := range t.data {
		if math.Float64bits(t.data[i]) != math.Float64bits(other.data[i]) {
			return false
		}
	}
	return true
}
