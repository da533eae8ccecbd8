package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("%w: dimension %d is %d (must be > 0)", ErrInvalidShape, i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// SplitAt factors the shape around axis into (outer, dim, inner) extents:
// outer is the product of dimensions before axis, inner the product after it.
// A flat row-major index i lies in channel (i / inner) % dim.
func (s Shape) SplitAt(axis int) (outer, dim, inner int) {
	outer = 1
	for i := 0; i < axis; i++ {
		outer *= s[i]
	}
	return outer, s[axis], s.ComputeStrides()[axis]
}

// String renders the shape as "[2 3 4]".
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}
