package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/webnn-conformance/internal/parallel"
	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// BatchNormalization normalizes input per channel using precomputed statistics.
//
// Formula, for every element whose index along opts.Axis is c:
//
//	out = (x - mean[c]) / sqrt(variance[c] + epsilon) * scale[c] + bias[c]
//
// Shapes:
//   - input: any rank >= 1, float32 or float16
//   - mean, variance, scale, bias: [input.Shape()[opts.Axis]]
//   - output: same shape and data type as input
//
// All arithmetic is float64; the result is rounded once to the input's type.
// A zero variance+epsilon produces ±Inf or NaN as IEEE-754 division does.
func (cpu *CPUBackend) BatchNormalization(input, mean, variance *tensor.Tensor, opts tensor.BatchNormOptions) (*tensor.Tensor, error) {
	if err := validateBatchNorm(input, mean, variance, opts); err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}

	shape := input.Shape()
	outer, channels, inner := shape.SplitAt(opts.Axis)

	x := input.Values()
	denom := make([]float64, channels)
	for c, v := range variance.Values() {
		denom[c] = math.Sqrt(v + opts.Epsilon)
	}
	mu := mean.Values()
	scale := channelValues(opts.Scale, channels, 1)
	bias := channelValues(opts.Bias, channels, 0)

	out := make([]float64, len(x))
	parallel.ForChannels(outer, channels, func(o, c int) {
		base := (o*channels + c) * inner
		for j := base; j < base+inner; j++ {
			out[j] = normalize(x[j], mu[c], denom[c], scale[c], bias[c])
		}
	}, cpu.parallel)

	return tensor.New(input.DataType(), shape, out)
}

// normalize evaluates one element. The explicit float64 conversion keeps the
// multiply and the add as two rounded operations (no FMA contraction).
func normalize(x, mean, denom, scale, bias float64) float64 {
	n := (x - mean) / denom
	return float64(n*scale) + bias
}

func channelValues(t *tensor.Tensor, channels int, fill float64) []float64 {
	if t != nil {
		return t.Values()
	}
	values := make([]float64, channels)
	for i := range values {
		values[i] = fill
	}
	return values
}

func validateBatchNorm(input, mean, variance *tensor.Tensor, opts tensor.BatchNormOptions) error {
	if input == nil || mean == nil || variance == nil {
		return fmt.Errorf("%w: input, mean and variance are required", tensor.ErrShapeMismatch)
	}
	if !input.DataType().IsFloat() {
		return fmt.Errorf("%w: input is %s", tensor.ErrUnsupportedDataType, input.DataType())
	}
	if opts.Axis < 0 || opts.Axis >= input.Rank() {
		return fmt.Errorf("%w: axis %d for rank %d input", tensor.ErrInvalidAxis, opts.Axis, input.Rank())
	}

	channels := input.Shape()[opts.Axis]
	stats := []struct {
		name string
		t    *tensor.Tensor
	}{
		{"mean", mean},
		{"variance", variance},
		{"scale", opts.Scale},
		{"bias", opts.Bias},
	}
	for _, s := range stats {
		if s.t == nil {
			continue
		}
		if !s.t.Shape().Equal(tensor.Shape{channels}) {
			return fmt.Errorf("%w: %s shape %v, want [%d]", tensor.ErrShapeMismatch, s.name, s.t.Shape(), channels)
		}
		if s.t.DataType() != input.DataType() {
			return fmt.Errorf("%w: %s is %s, input is %s", tensor.ErrDataTypeMismatch, s.name, s.t.DataType(), input.DataType())
		}
	}
	return nil
}
