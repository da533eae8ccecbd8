package operators

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/webnn-conformance/internal/backend/cpu"
	"github.com/born-ml/webnn-conformance/internal/tensor"
	"github.com/born-ml/webnn-conformance/internal/webnn"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("batchNormalization")
	assert.True(t, ok, "expected batchNormalization to be registered")
	assert.Equal(t, []string{"batchNormalization"}, r.SupportedOps())
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("UnknownOp")
	assert.False(t, ok)

	_, err := r.Execute(&Context{}, "UnknownOp", nil)
	require.ErrorContains(t, err, "unsupported operator")
}

func TestRegisterCustomOp(t *testing.T) {
	r := NewRegistry()

	r.Register("myCustomOp", func(_ *Context, _ []Argument) ([]*webnn.Operand, error) {
		return nil, nil
	})

	_, ok := r.Get("myCustomOp")
	assert.True(t, ok)
	assert.Equal(t, []string{"batchNormalization", "myCustomOp"}, r.SupportedOps())
}

// newContext declares a [1,2] float32 input "x" and [2] constants "m", "v", "s", "b".
func newContext(t *testing.T) *Context {
	t.Helper()
	b := webnn.NewGraphBuilder(cpu.New())
	ctx := &Context{Builder: b, Operands: map[string]*webnn.Operand{}}

	x, err := b.Input("x", tensor.Descriptor{DataType: tensor.Float32, Shape: tensor.Shape{1, 2}})
	require.NoError(t, err)
	ctx.Operands["x"] = x

	for name, values := range map[string][]float64{
		"m": {1, 1}, "v": {4, 4}, "s": {2, 3}, "b": {10, 20},
	} {
		c, err := tensor.New(tensor.Float32, tensor.Shape{2}, values)
		require.NoError(t, err)
		op, err := b.Constant(c)
		require.NoError(t, err)
		ctx.Operands[name] = op
	}
	return ctx
}

func args(t *testing.T, pairs ...any) []Argument {
	t.Helper()
	out := make([]Argument, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		raw, err := json.Marshal(pairs[i+1])
		require.NoError(t, err)
		out = append(out, Argument{Name: pairs[i].(string), Value: raw})
	}
	return out
}

func TestBatchNormalizationHandler(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)

	outs, err := r.Execute(ctx, "batchNormalization", args(t,
		"input", "x", "mean", "m", "variance", "v",
		"options", map[string]any{"scale": "s", "bias": "b", "axis": 1, "epsilon": 0},
	))
	require.NoError(t, err)
	require.Len(t, outs, 1)

	g, err := ctx.Builder.Build(map[string]*webnn.Operand{"y": outs[0]})
	require.NoError(t, err)

	x, err := tensor.New(tensor.Float32, tensor.Shape{1, 2}, []float64{5, -3})
	require.NoError(t, err)
	res, err := g.Compute(context.Background(), map[string]*tensor.Tensor{"x": x})
	require.NoError(t, err)

	// (5-1)/2*2+10 = 14, (-3-1)/2*3+20 = 14.
	assert.Equal(t, []float64{14, 14}, res["y"].Values())
}

func TestBatchNormalizationHandler_Errors(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"missing mean", []any{"input", "x", "variance", "v"}, `missing argument "mean"`},
		{"unknown operand", []any{"input", "x", "mean", "nope", "variance", "v"}, `unknown operand "nope"`},
		{"operand not a name", []any{"input", 3, "mean", "m", "variance", "v"}, "expected operand name"},
		{"unknown option", []any{"input", "x", "mean", "m", "variance", "v", "options", map[string]any{"momentum": 0.9}}, `unknown option "momentum"`},
		{"fractional axis", []any{"input", "x", "mean", "m", "variance", "v", "options", map[string]any{"axis": 1.5}}, "not an unsigned integer"},
		{"epsilon not a number", []any{"input", "x", "mean", "m", "variance", "v", "options", map[string]any{"epsilon": "small"}}, "option epsilon"},
		{"axis out of range", []any{"input", "x", "mean", "m", "variance", "v", "options", map[string]any{"axis": 2}}, "invalid axis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(newContext(t), "batchNormalization", args(t, tt.args...))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestOptions_Absent(t *testing.T) {
	opts, err := Options(nil)
	require.NoError(t, err)
	assert.Empty(t, opts)

	axis, err := IntOption(opts, "axis", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, axis)

	eps, err := FloatOption(opts, "epsilon", 1e-5)
	require.NoError(t, err)
	assert.Equal(t, 1e-5, eps)

	op, err := OperandOption(&Context{}, map[string]json.RawMessage{"scale": json.RawMessage("null")}, "scale")
	require.NoError(t, err)
	assert.Nil(t, op)
}
