package conformance

import (
	"context"
	"fmt"

	"github.com/born-ml/webnn-conformance/internal/tensor"
	"github.com/born-ml/webnn-conformance/internal/webnn"
	"github.com/born-ml/webnn-conformance/internal/webnn/operators"
)

// BuildAndCompute declares the fixture inputs on a fresh builder, replays the
// operators through the registry, builds a graph over the expected output
// names and computes it with the fixture input data.
func BuildAndCompute(ctx context.Context, backend tensor.Backend, reg *operators.Registry, g *Graph) (map[string]*tensor.Tensor, error) {
	if len(g.ExpectedOutputs) == 0 {
		return nil, fmt.Errorf("graph has no expected outputs")
	}

	b := webnn.NewGraphBuilder(backend)
	opctx := &operators.Context{Builder: b, Operands: make(map[string]*webnn.Operand)}
	feeds := make(map[string]*tensor.Tensor)

	for _, name := range g.InputNames() {
		in := g.Inputs[name]
		t, err := in.Tensor()
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}

		var op *webnn.Operand
		if in.Constant {
			op, err = b.Constant(t)
		} else {
			op, err = b.Input(name, t.Descriptor())
			feeds[name] = t
		}
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		opctx.Operands[name] = op
	}

	for i, op := range g.Operators {
		outs, err := reg.Execute(opctx, op.Name, op.Arguments)
		if err != nil {
			return nil, fmt.Errorf("operator %d: %w", i, err)
		}
		if len(outs) != len(op.Outputs) {
			return nil, fmt.Errorf("operator %d (%s): produced %d outputs, fixture names %d",
				i, op.Name, len(outs), len(op.Outputs))
		}
		for j, name := range op.Outputs {
			if _, dup := opctx.Operands[name]; dup {
				return nil, fmt.Errorf("operator %d (%s): operand %q already defined", i, op.Name, name)
			}
			opctx.Operands[name] = outs[j]
		}
	}

	outputs := make(map[string]*webnn.Operand, len(g.ExpectedOutputs))
	for _, name := range g.OutputNames() {
		op, ok := opctx.Operands[name]
		if !ok {
			return nil, fmt.Errorf("expected output %q is not produced by any operator", name)
		}
		outputs[name] = op
	}

	graph, err := b.Build(outputs)
	if err != nil {
		return nil, err
	}
	return graph.Compute(ctx, feeds)
}
