package webnn

import (
	"context"
	"fmt"
	"sort"

	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// Graph is a built, immutable computation graph. It is safe for concurrent Compute calls.
type Graph struct {
	backend   tensor.Backend
	inputs    map[string]*Operand
	outputs   map[string]*Operand
	constants []*Operand
	nodes     []*node
	size      int
}

// InputNames returns the declared input names, sorted.
func (g *Graph) InputNames() []string {
	return sortedKeys(g.inputs)
}

// OutputNames returns the output names, sorted.
func (g *Graph) OutputNames() []string {
	return sortedKeys(g.outputs)
}

// Compute binds inputs by name, evaluates every node in insertion order and
// returns the named outputs. Every declared input must be bound with a tensor
// matching its descriptor; unknown names are rejected.
func (g *Graph) Compute(ctx context.Context, inputs map[string]*tensor.Tensor) (map[string]*tensor.Tensor, error) {
	values := make([]*tensor.Tensor, g.size)

	for name := range inputs {
		if _, ok := g.inputs[name]; !ok {
			return nil, fmt.Errorf("%w: %q is not a graph input", ErrInvalidOperand, name)
		}
	}
	for name, op := range g.inputs {
		t, ok := inputs[name]
		if !ok || t == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, name)
		}
		if !t.Descriptor().Equal(op.desc) {
			return nil, fmt.Errorf("%w: input %q is %s, want %s", ErrDescriptorMismatch, name, t.Descriptor(), op.desc)
		}
		values[op.id] = t
	}
	for _, op := range g.constants {
		values[op.id] = op.value
	}

	for _, n := range g.nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		args := make([]*tensor.Tensor, len(n.inputs))
		for i, in := range n.inputs {
			args[i] = values[in.id]
		}
		out, err := n.eval(g.backend, args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.op, err)
		}
		values[n.output.id] = out
	}

	results := make(map[string]*tensor.Tensor, len(g.outputs))
	for name, op := range g.outputs {
		results[name] = values[op.id]
	}
	return results, nil
}

func sortedKeys(m map[string]*Operand) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
