package webnn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/webnn-conformance/internal/backend/cpu"
	"github.com/born-ml/webnn-conformance/internal/tensor"
)

func f32Desc(shape ...int) tensor.Descriptor {
	return tensor.Descriptor{DataType: tensor.Float32, Shape: shape}
}

func mustTensor(t *testing.T, shape tensor.Shape, values ...float64) *tensor.Tensor {
	t.Helper()
	x, err := tensor.New(tensor.Float32, shape, values)
	require.NoError(t, err)
	return x
}

func TestBuildAndCompute(t *testing.T) {
	b := NewGraphBuilder(cpu.New())

	x, err := b.Input("x", f32Desc(2, 2))
	require.NoError(t, err)
	mean, err := b.Constant(mustTensor(t, tensor.Shape{2}, 1, 2))
	require.NoError(t, err)
	variance, err := b.Input("variance", f32Desc(2))
	require.NoError(t, err)

	opts := DefaultBatchNormalizationOptions()
	opts.Epsilon = 0
	y, err := b.BatchNormalization(x, mean, variance, opts)
	require.NoError(t, err)
	assert.Equal(t, f32Desc(2, 2), y.Descriptor())

	g, err := b.Build(map[string]*Operand{"y": y})
	require.NoError(t, err)
	assert.Equal(t, []string{"variance", "x"}, g.InputNames())
	assert.Equal(t, []string{"y"}, g.OutputNames())

	out, err := g.Compute(context.Background(), map[string]*tensor.Tensor{
		"x":        mustTensor(t, tensor.Shape{2, 2}, 3, 6, 5, 2),
		"variance": mustTensor(t, tensor.Shape{2}, 4, 16),
	})
	require.NoError(t, err)
	require.Contains(t, out, "y")
	// Channel 0: (x-1)/2, channel 1: (x-2)/4.
	assert.Equal(t, []float64{1, 1, 2, 0}, out["y"].Values())
}

func TestBuild_ChainedOperators(t *testing.T) {
	b := NewGraphBuilder(cpu.New())

	x, err := b.Input("x", f32Desc(1, 2))
	require.NoError(t, err)
	zero, err := b.Constant(mustTensor(t, tensor.Shape{2}, 0, 0))
	require.NoError(t, err)
	four, err := b.Constant(mustTensor(t, tensor.Shape{2}, 4, 4))
	require.NoError(t, err)

	opts := BatchNormalizationOptions{Axis: 1}
	first, err := b.BatchNormalization(x, zero, four, opts)
	require.NoError(t, err)
	second, err := b.BatchNormalization(first, zero, four, opts)
	require.NoError(t, err)

	g, err := b.Build(map[string]*Operand{"first": first, "second": second})
	require.NoError(t, err)

	out, err := g.Compute(context.Background(), map[string]*tensor.Tensor{
		"x": mustTensor(t, tensor.Shape{1, 2}, 8, -4),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, -2}, out["first"].Values())
	assert.Equal(t, []float64{2, -1}, out["second"].Values())
}

func TestBatchNormalization_Validation(t *testing.T) {
	b := NewGraphBuilder(cpu.New())

	x, err := b.Input("x", f32Desc(2, 3, 4))
	require.NoError(t, err)
	stats3, err := b.Constant(mustTensor(t, tensor.Shape{3}, 1, 1, 1))
	require.NoError(t, err)
	stats4, err := b.Constant(mustTensor(t, tensor.Shape{4}, 1, 1, 1, 1))
	require.NoError(t, err)
	half, err := b.Constant(func() *tensor.Tensor {
		v, err := tensor.New(tensor.Float16, tensor.Shape{3}, []float64{1, 1, 1})
		require.NoError(t, err)
		return v
	}())
	require.NoError(t, err)
	ints, err := b.Input("ints", tensor.Descriptor{DataType: tensor.Int32, Shape: tensor.Shape{2, 3}})
	require.NoError(t, err)

	other := NewGraphBuilder(cpu.New())
	foreign, err := other.Constant(mustTensor(t, tensor.Shape{3}, 1, 1, 1))
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    *Operand
		mean     *Operand
		variance *Operand
		opts     func(*BatchNormalizationOptions)
		want     error
	}{
		{"mean length", x, stats4, stats3, nil, ErrDescriptorMismatch},
		{"variance type", x, stats3, half, nil, ErrDescriptorMismatch},
		{"axis out of range", x, stats3, stats3, func(o *BatchNormalizationOptions) { o.Axis = 3 }, ErrInvalidAxis},
		{"axis selects other dim", x, stats3, stats3, func(o *BatchNormalizationOptions) { o.Axis = 2 }, ErrDescriptorMismatch},
		{"bias length", x, stats3, stats3, func(o *BatchNormalizationOptions) { o.Bias = stats4 }, ErrDescriptorMismatch},
		{"nil variance", x, stats3, nil, nil, ErrInvalidOperand},
		{"foreign scale", x, stats3, stats3, func(o *BatchNormalizationOptions) { o.Scale = foreign }, ErrInvalidOperand},
		{"integer input", ints, stats3, stats3, nil, tensor.ErrUnsupportedDataType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultBatchNormalizationOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := b.BatchNormalization(tt.input, tt.mean, tt.variance, opts)
			require.ErrorIs(t, err, tt.want)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "batchNormalization", verr.Op)
		})
	}
}

func TestInput_Duplicate(t *testing.T) {
	b := NewGraphBuilder(cpu.New())

	_, err := b.Input("x", f32Desc(1))
	require.NoError(t, err)
	_, err = b.Input("x", f32Desc(1))
	require.ErrorIs(t, err, ErrDuplicateInput)

	_, err = b.Input("bad", f32Desc(0))
	require.ErrorIs(t, err, tensor.ErrInvalidShape)
}

func TestBuild_Errors(t *testing.T) {
	b := NewGraphBuilder(cpu.New())

	_, err := b.Build(nil)
	require.ErrorIs(t, err, ErrNoOutputs)

	x, err := b.Input("x", f32Desc(1, 1))
	require.NoError(t, err)
	_, err = b.Build(map[string]*Operand{"x": x})
	require.ErrorIs(t, err, ErrInvalidOperand)

	c, err := b.Constant(mustTensor(t, tensor.Shape{1}, 1))
	require.NoError(t, err)
	y, err := b.BatchNormalization(x, c, c, DefaultBatchNormalizationOptions())
	require.NoError(t, err)
	_, err = b.Build(map[string]*Operand{"y": y})
	require.NoError(t, err)

	_, err = b.Build(map[string]*Operand{"y": y})
	require.ErrorIs(t, err, ErrAlreadyBuilt)
	_, err = b.Input("late", f32Desc(1))
	require.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestCompute_InputErrors(t *testing.T) {
	b := NewGraphBuilder(cpu.New())

	x, err := b.Input("x", f32Desc(1, 2))
	require.NoError(t, err)
	c, err := b.Constant(mustTensor(t, tensor.Shape{2}, 0, 0))
	require.NoError(t, err)
	y, err := b.BatchNormalization(x, c, c, DefaultBatchNormalizationOptions())
	require.NoError(t, err)
	g, err := b.Build(map[string]*Operand{"y": y})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = g.Compute(ctx, nil)
	require.ErrorIs(t, err, ErrMissingInput)

	_, err = g.Compute(ctx, map[string]*tensor.Tensor{"x": mustTensor(t, tensor.Shape{2, 1}, 1, 2)})
	require.ErrorIs(t, err, ErrDescriptorMismatch)

	_, err = g.Compute(ctx, map[string]*tensor.Tensor{
		"x":     mustTensor(t, tensor.Shape{1, 2}, 1, 2),
		"extra": mustTensor(t, tensor.Shape{1}, 1),
	})
	require.ErrorIs(t, err, ErrInvalidOperand)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = g.Compute(cancelled, map[string]*tensor.Tensor{"x": mustTensor(t, tensor.Shape{1, 2}, 1, 2)})
	require.ErrorIs(t, err, context.Canceled)
}
