package conformance

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// ULPDistance returns the number of representable dt values between expected
// and actual. Two NaNs are equal; one NaN is infinitely far. For integer types
// the distance is the absolute difference.
func ULPDistance(dt tensor.DataType, expected, actual float64) float64 {
	switch en, an := math.IsNaN(expected), math.IsNaN(actual); {
	case en && an:
		return 0
	case en || an:
		return math.Inf(1)
	}

	switch dt {
	case tensor.Float32:
		return distance(ordered32(float32(expected)), ordered32(float32(actual)))
	case tensor.Float16:
		return distance(ordered16(expected), ordered16(actual))
	default:
		return math.Abs(expected - actual)
	}
}

// ordered32 maps float32 bits onto a line where adjacent floats differ by one
// and both zeros coincide.
func ordered32(f float32) int64 {
	b := math.Float32bits(f)
	if b&0x80000000 != 0 {
		return -int64(b & 0x7fffffff)
	}
	return int64(b)
}

func ordered16(v float64) int64 {
	b := float16.Fromfloat32(float32(v)).Bits()
	if b&0x8000 != 0 {
		return -int64(b & 0x7fff)
	}
	return int64(b)
}

func distance(a, b int64) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}

// absDistance is the ATOL metric. Equal infinities and two NaNs are zero apart.
func absDistance(expected, actual float64) float64 {
	switch {
	case math.IsNaN(expected) && math.IsNaN(actual):
		return 0
	case math.IsNaN(expected) || math.IsNaN(actual):
		return math.Inf(1)
	case expected == actual:
		return 0
	}
	return math.Abs(expected - actual)
}

// Mismatch is one element outside tolerance.
type Mismatch struct {
	Index    int     `json:"index"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Distance float64 `json:"distance"`
}

// Comparison holds per-element distances between an expected and actual tensor.
type Comparison struct {
	Tolerance   Tolerance
	Distances   []float64
	MaxDistance float64
	Mismatches  []Mismatch
}

// OK reports whether every element is within tolerance.
func (c *Comparison) OK() bool {
	return len(c.Mismatches) == 0
}

// Compare measures actual against expected under tol. Descriptors must match.
func Compare(expected, actual *tensor.Tensor, tol Tolerance) (*Comparison, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	if expected == nil || actual == nil {
		return nil, fmt.Errorf("compare: nil tensor")
	}
	if !expected.Descriptor().Equal(actual.Descriptor()) {
		return nil, fmt.Errorf("compare: %w: expected %s, got %s",
			tensor.ErrShapeMismatch, expected.Descriptor(), actual.Descriptor())
	}

	dt := expected.DataType()
	n := expected.NumElements()
	c := &Comparison{Tolerance: tol, Distances: make([]float64, n)}
	for i := 0; i < n; i++ {
		e, a := expected.At(i), actual.At(i)

		var d float64
		if tol.Metric == MetricULP {
			d = ULPDistance(dt, e, a)
		} else {
			d = absDistance(e, a)
		}

		c.Distances[i] = d
		if d > c.MaxDistance {
			c.MaxDistance = d
		}
		if d > tol.Value {
			c.Mismatches = append(c.Mismatches, Mismatch{Index: i, Expected: e, Actual: a, Distance: d})
		}
	}
	return c, nil
}
