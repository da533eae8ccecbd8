package conformance

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/webnn-conformance/internal/backend/cpu"
	"github.com/born-ml/webnn-conformance/internal/parallel"
	"github.com/born-ml/webnn-conformance/internal/tensor"
)

func loadTestdata(t *testing.T) []Case {
	t.Helper()
	cases, err := LoadDir(context.Background(), "testdata")
	require.NoError(t, err)
	return cases
}

func TestRunner_Testdata(t *testing.T) {
	cases := loadTestdata(t)
	r := NewRunner(cpu.New())

	report := r.Run(context.Background(), cases)
	require.Len(t, report.Results, len(cases))
	assert.Equal(t, "CPU", report.Backend)

	for i, res := range report.Results {
		assert.Equal(t, cases[i].Name, res.Name, "results keep case order")
		assert.Equal(t, StatusPass, res.Status, "%s: %s", res.Name, res.Message)
		assert.LessOrEqual(t, res.MaxDistance, 6.0, res.Name)
		assert.Equal(t, MetricULP, res.Tolerance.Metric)
	}
	assert.True(t, report.OK())
}

func TestRunner_SequentialMatchesParallel(t *testing.T) {
	cases := loadTestdata(t)

	seq := NewRunner(cpu.New(), WithParallel(parallel.Sequential())).Run(context.Background(), cases)
	par := NewRunner(cpu.New(cpu.WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})),
		WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}),
	).Run(context.Background(), cases)

	require.Len(t, par.Results, len(seq.Results))
	for i := range seq.Results {
		assert.Equal(t, seq.Results[i].Status, par.Results[i].Status)
		assert.Equal(t, seq.Results[i].MaxDistance, par.Results[i].MaxDistance)
	}
}

func TestRunner_Fail(t *testing.T) {
	cases, err := LoadJSON(strings.NewReader(minimalFixture))
	require.NoError(t, err)
	c := cases[0]
	c.Graph.ExpectedOutputs["y"] = OperandData{
		Data:       Data{1, 2, 3, 5},
		Descriptor: c.Graph.ExpectedOutputs["y"].Descriptor,
	}

	res := NewRunner(cpu.New()).RunCase(context.Background(), c)
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, "1 of 4 elements exceed ULP<=6", res.Message)
	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, 3, res.Mismatches[0].Index)
	assert.Equal(t, 5.0, res.Mismatches[0].Expected)
	assert.Equal(t, 4.0, res.Mismatches[0].Actual)
	assert.Equal(t, 4, res.Elements)
}

func TestRunner_ToleranceOverride(t *testing.T) {
	cases, err := LoadJSON(strings.NewReader(minimalFixture))
	require.NoError(t, err)
	c := cases[0]
	c.Graph.ExpectedOutputs["y"] = OperandData{
		Data:       Data{1, 2, 3, 4.25},
		Descriptor: c.Graph.ExpectedOutputs["y"].Descriptor,
	}
	c.Tolerance = &Tolerance{Metric: MetricATOL, Value: 0.5}

	res := NewRunner(cpu.New()).RunCase(context.Background(), c)
	assert.Equal(t, StatusPass, res.Status, res.Message)
	assert.Equal(t, 0.25, res.MaxDistance)
}

func TestRunner_Errors(t *testing.T) {
	base := func(t *testing.T) Case {
		cases, err := LoadJSON(strings.NewReader(minimalFixture))
		require.NoError(t, err)
		return cases[0]
	}

	tests := []struct {
		name   string
		mutate func(c *Case)
		want   string
	}{
		{"unsupported operator", func(c *Case) {
			c.Graph.Operators[0].Name = "gelu"
			c.Tolerance = &Tolerance{Metric: MetricULP, Value: 1}
		}, "unsupported operator: gelu"},
		{"no policy", func(c *Case) {
			c.Graph.Operators[0].Name = "gelu"
		}, "no tolerance policy for gelu"},
		{"missing expected output", func(c *Case) {
			c.Graph.ExpectedOutputs["z"] = c.Graph.ExpectedOutputs["y"]
			c.Tolerance = &Tolerance{Metric: MetricULP, Value: 1}
		}, `expected output "z" is not produced`},
		{"bad input data", func(c *Case) {
			c.Graph.Inputs["x"] = OperandData{Data: Data{1, 2}, Descriptor: c.Graph.Inputs["x"].Descriptor}
		}, `input "x"`},
		{"output descriptor mismatch", func(c *Case) {
			c.Graph.ExpectedOutputs["y"] = OperandData{
				Data:       Data{1, 2, 3, 4},
				Descriptor: OperandDescriptor{Shape: []int{4}, DataType: "float32"},
			}
		}, `output "y"`},
		{"invalid override", func(c *Case) {
			c.Tolerance = &Tolerance{Metric: "RMS", Value: 1}
		}, "tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base(t)
			tt.mutate(&c)
			res := NewRunner(cpu.New()).RunCase(context.Background(), c)
			assert.Equal(t, StatusError, res.Status)
			assert.Contains(t, res.Message, tt.want)
		})
	}
}

func TestRunner_Filter(t *testing.T) {
	cases := loadTestdata(t)
	r := NewRunner(cpu.New(), WithFilter(regexp.MustCompile(`float16`)))

	report := r.Run(context.Background(), cases)
	assert.Equal(t, 3, report.Count(StatusPass))
	assert.Equal(t, 12, report.Count(StatusSkip))
	for _, res := range report.Results {
		if res.Status == StatusSkip {
			assert.Equal(t, "filtered", res.Message)
		}
	}
}

func TestRunner_Cancelled(t *testing.T) {
	cases := loadTestdata(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewRunner(cpu.New()).Run(ctx, cases)
	assert.Equal(t, len(cases), report.Count(StatusSkip))
	assert.True(t, report.OK())
	assert.True(t, report.Cancelled)
}

// cancelAfterBackend cancels its context once a computation has finished.
type cancelAfterBackend struct {
	tensor.Backend
	cancel context.CancelFunc
}

func (b *cancelAfterBackend) BatchNormalization(input, mean, variance *tensor.Tensor, opts tensor.BatchNormOptions) (*tensor.Tensor, error) {
	out, err := b.Backend.BatchNormalization(input, mean, variance, opts)
	b.cancel()
	return out, err
}

func TestRunner_CancelledAfterLastCase(t *testing.T) {
	cases, err := LoadJSON(strings.NewReader(minimalFixture))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := &cancelAfterBackend{Backend: cpu.New(), cancel: cancel}
	report := NewRunner(backend, WithParallel(parallel.Sequential())).Run(ctx, cases)

	require.Error(t, ctx.Err())
	assert.Equal(t, StatusPass, report.Results[0].Status, report.Results[0].Message)
	assert.False(t, report.Cancelled)
	assert.True(t, report.OK())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "FAIL", StatusFail.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "SKIP", StatusSkip.String())
	assert.Equal(t, "UNKNOWN", Status(42).String())
}
