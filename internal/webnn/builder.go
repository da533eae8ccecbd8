// Package webnn implements a minimal WebNN graph builder over a reference backend.
//
// The builder mirrors MLGraphBuilder: operands are declared as named inputs or
// constants, operators validate their operands eagerly and return a new
// operand, and Build freezes the graph for repeated computation.
//
// Example:
//
//	builder := webnn.NewGraphBuilder(cpu.New())
//	x, _ := builder.Input("x", tensor.Descriptor{DataType: tensor.Float32, Shape: tensor.Shape{4, 6}})
//	mean, _ := builder.Constant(meanTensor)
//	variance, _ := builder.Constant(varianceTensor)
//	y, _ := builder.BatchNormalization(x, mean, variance, webnn.DefaultBatchNormalizationOptions())
//	graph, _ := builder.Build(map[string]*webnn.Operand{"y": y})
//	outputs, _ := graph.Compute(ctx, map[string]*tensor.Tensor{"x": input})
package webnn

import (
	"fmt"
	"math"

	"github.com/born-ml/webnn-conformance/internal/tensor"
)

type operandKind int

const (
	kindInput operandKind = iota
	kindConstant
	kindOperator
)

// Operand is a node output in a graph under construction.
type Operand struct {
	id      int
	kind    operandKind
	desc    tensor.Descriptor
	name    string         // input name
	value   *tensor.Tensor // constant value
	builder *GraphBuilder
}

// Descriptor returns the operand's data type and shape.
func (o *Operand) Descriptor() tensor.Descriptor {
	return tensor.Descriptor{DataType: o.desc.DataType, Shape: o.desc.Shape.Clone()}
}

// DataType returns the operand's data type.
func (o *Operand) DataType() tensor.DataType {
	return o.desc.DataType
}

// Shape returns a copy of the operand's shape.
func (o *Operand) Shape() tensor.Shape {
	return o.desc.Shape.Clone()
}

// node is a recorded operator invocation.
type node struct {
	op     string
	inputs []*Operand
	output *Operand
	eval   func(backend tensor.Backend, inputs []*tensor.Tensor) (*tensor.Tensor, error)
}

// GraphBuilder records operands and operators.
type GraphBuilder struct {
	backend  tensor.Backend
	operands []*Operand
	inputs   map[string]*Operand
	nodes    []*node
	built    bool
}

// NewGraphBuilder creates a builder whose graphs compute on backend.
func NewGraphBuilder(backend tensor.Backend) *GraphBuilder {
	return &GraphBuilder{
		backend: backend,
		inputs:  make(map[string]*Operand),
	}
}

// Input declares a named graph input.
func (b *GraphBuilder) Input(name string, desc tensor.Descriptor) (*Operand, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if name == "" {
		return nil, fmt.Errorf("%w: input name is empty", ErrInvalidOperand)
	}
	if _, ok := b.inputs[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateInput, name)
	}
	if err := desc.Shape.Validate(); err != nil {
		return nil, fmt.Errorf("input %q: %w", name, err)
	}

	op := b.newOperand(kindInput, desc)
	op.name = name
	b.inputs[name] = op
	return op, nil
}

// Constant declares an operand with a fixed value.
func (b *GraphBuilder) Constant(value *tensor.Tensor) (*Operand, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if value == nil {
		return nil, fmt.Errorf("%w: constant value is nil", ErrInvalidOperand)
	}

	op := b.newOperand(kindConstant, value.Descriptor())
	op.value = value
	return op, nil
}

// BatchNormalizationOptions configures BatchNormalization, as MLBatchNormalizationOptions.
type BatchNormalizationOptions struct {
	Scale   *Operand
	Bias    *Operand
	Axis    int
	Epsilon float64
}

// DefaultBatchNormalizationOptions returns options with axis 1 and epsilon 1e-5.
func DefaultBatchNormalizationOptions() BatchNormalizationOptions {
	return BatchNormalizationOptions{
		Axis:    tensor.DefaultBatchNormAxis,
		Epsilon: tensor.DefaultBatchNormEpsilon,
	}
}

// BatchNormalization adds a batch normalization operator.
//
// input must be float32 or float16. mean and variance, and scale and bias when
// present, must be 1-D operands of length input.Shape()[opts.Axis] with the
// input's data type.
func (b *GraphBuilder) BatchNormalization(input, mean, variance *Operand, opts BatchNormalizationOptions) (*Operand, error) {
	const op = "batchNormalization"

	if b.built {
		return nil, ErrAlreadyBuilt
	}
	for role, o := range map[string]*Operand{"input": input, "mean": mean, "variance": variance} {
		if err := b.checkOperand(op, role, o); err != nil {
			return nil, err
		}
	}
	if !input.desc.DataType.IsFloat() {
		return nil, &ValidationError{Op: op, Operand: "input", Err: tensor.ErrUnsupportedDataType,
			Details: fmt.Sprintf("data type %s", input.desc.DataType)}
	}
	rank := len(input.desc.Shape)
	if opts.Axis < 0 || opts.Axis >= rank {
		return nil, &ValidationError{Op: op, Err: ErrInvalidAxis,
			Details: fmt.Sprintf("axis %d for rank %d input", opts.Axis, rank)}
	}
	if math.IsNaN(opts.Epsilon) || math.IsInf(opts.Epsilon, 0) {
		return nil, &ValidationError{Op: op, Err: ErrInvalidOption,
			Details: fmt.Sprintf("epsilon %v is not finite", opts.Epsilon)}
	}

	channels := input.desc.Shape[opts.Axis]
	inputs := []*Operand{input, mean, variance}
	roles := []string{"mean", "variance", "scale", "bias"}
	for i, o := range []*Operand{mean, variance, opts.Scale, opts.Bias} {
		if o == nil {
			continue
		}
		if i >= 2 {
			if err := b.checkOperand(op, roles[i], o); err != nil {
				return nil, err
			}
			inputs = append(inputs, o)
		}
		want := tensor.Descriptor{DataType: input.desc.DataType, Shape: tensor.Shape{channels}}
		if !o.desc.Equal(want) {
			return nil, &ValidationError{Op: op, Operand: roles[i], Err: ErrDescriptorMismatch,
				Details: fmt.Sprintf("got %s, want %s", o.desc, want)}
		}
	}

	hasScale, hasBias := opts.Scale != nil, opts.Bias != nil
	axis, epsilon := opts.Axis, opts.Epsilon
	eval := func(backend tensor.Backend, values []*tensor.Tensor) (*tensor.Tensor, error) {
		bn := tensor.BatchNormOptions{Axis: axis, Epsilon: epsilon}
		next := 3
		if hasScale {
			bn.Scale = values[next]
			next++
		}
		if hasBias {
			bn.Bias = values[next]
		}
		return backend.BatchNormalization(values[0], values[1], values[2], bn)
	}

	return b.addNode(op, inputs, input.Descriptor(), eval), nil
}

// Build freezes the builder into a graph producing the named outputs.
func (b *GraphBuilder) Build(outputs map[string]*Operand) (*Graph, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	for name, o := range outputs {
		if err := b.checkOperand("build", name, o); err != nil {
			return nil, err
		}
		if o.kind != kindOperator {
			return nil, &ValidationError{Op: "build", Operand: name, Err: ErrInvalidOperand,
				Details: "output is an input or constant"}
		}
	}

	b.built = true
	g := &Graph{
		backend: b.backend,
		inputs:  make(map[string]*Operand, len(b.inputs)),
		outputs: make(map[string]*Operand, len(outputs)),
		nodes:   b.nodes,
		size:    len(b.operands),
	}
	for name, o := range b.inputs {
		g.inputs[name] = o
	}
	for name, o := range outputs {
		g.outputs[name] = o
	}
	for _, o := range b.operands {
		if o.kind == kindConstant {
			g.constants = append(g.constants, o)
		}
	}
	return g, nil
}

func (b *GraphBuilder) newOperand(kind operandKind, desc tensor.Descriptor) *Operand {
	op := &Operand{
		id:      len(b.operands),
		kind:    kind,
		desc:    tensor.Descriptor{DataType: desc.DataType, Shape: desc.Shape.Clone()},
		builder: b,
	}
	b.operands = append(b.operands, op)
	return op
}

func (b *GraphBuilder) addNode(op string, inputs []*Operand, desc tensor.Descriptor,
	eval func(tensor.Backend, []*tensor.Tensor) (*tensor.Tensor, error)) *Operand {
	out := b.newOperand(kindOperator, desc)
	b.nodes = append(b.nodes, &node{op: op, inputs: inputs, output: out, eval: eval})
	return out
}

func (b *GraphBuilder) checkOperand(op, role string, o *Operand) error {
	if o == nil {
		return &ValidationError{Op: op, Operand: role, Err: ErrInvalidOperand, Details: "operand is nil"}
	}
	if o.builder != b {
		return &ValidationError{Op: op, Operand: role, Err: ErrInvalidOperand, Details: "operand belongs to another builder"}
	}
	return nil
}
