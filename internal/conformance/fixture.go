package conformance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/born-ml/webnn-conformance/internal/tensor"
	"github.com/born-ml/webnn-conformance/internal/webnn/operators"
)

// Case is one conformance test: a graph plus its expected outputs.
type Case struct {
	Name  string `json:"name"`
	Graph Graph  `json:"graph"`

	// Tolerance overrides the operator policy when set.
	Tolerance *Tolerance `json:"tolerance,omitempty"`

	// Source is the file the case was loaded from.
	Source string `json:"-"`
}

// Graph describes named input operands, an ordered operator list and the expected outputs.
type Graph struct {
	Inputs          map[string]OperandData `json:"inputs"`
	Operators       []Operator             `json:"operators"`
	ExpectedOutputs map[string]OperandData `json:"expectedOutputs"`
}

// InputNames returns the input names, sorted.
func (g *Graph) InputNames() []string {
	return sortedNames(g.Inputs)
}

// OutputNames returns the expected output names, sorted.
func (g *Graph) OutputNames() []string {
	return sortedNames(g.ExpectedOutputs)
}

// OperandData is a literal tensor in a fixture.
type OperandData struct {
	Data       Data              `json:"data"`
	Descriptor OperandDescriptor `json:"descriptor"`
	Constant   bool              `json:"constant,omitempty"`
}

// OperandDescriptor is the JSON form of tensor.Descriptor.
type OperandDescriptor struct {
	Shape    []int  `json:"shape"`
	DataType string `json:"dataType"`
}

// Descriptor converts to a tensor.Descriptor.
func (d OperandDescriptor) Descriptor() (tensor.Descriptor, error) {
	dt, err := tensor.ParseDataType(d.DataType)
	if err != nil {
		return tensor.Descriptor{}, err
	}
	return tensor.Descriptor{DataType: dt, Shape: tensor.Shape(d.Shape).Clone()}, nil
}

// Tensor materializes the operand. A single value is broadcast to the full shape.
func (o OperandData) Tensor() (*tensor.Tensor, error) {
	desc, err := o.Descriptor.Descriptor()
	if err != nil {
		return nil, err
	}
	if len(o.Data) == 1 && desc.Shape.NumElements() != 1 {
		return tensor.Full(desc.DataType, desc.Shape, o.Data[0])
	}
	return tensor.New(desc.DataType, desc.Shape, o.Data)
}

// Data is the flat row-major element list. In JSON it is either an array of
// numbers or a single number.
type Data []float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Data) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var values []float64
		if err := json.Unmarshal(b, &values); err != nil {
			return fmt.Errorf("data: %w", err)
		}
		*d = values
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	*d = Data{v}
	return nil
}

// Operator is one operator invocation in a fixture graph.
type Operator struct {
	Name      string
	Arguments []operators.Argument
	Outputs   []string
}

type operatorJSON struct {
	Name      string                       `json:"name"`
	Arguments []map[string]json.RawMessage `json:"arguments"`
	Outputs   json.RawMessage              `json:"outputs"`
}

// UnmarshalJSON implements json.Unmarshaler. Each argument is a single-key
// object; outputs is a name or a list of names.
func (o *Operator) UnmarshalJSON(b []byte) error {
	var raw operatorJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("operator: missing name")
	}

	o.Name = raw.Name
	o.Arguments = o.Arguments[:0]
	for _, arg := range raw.Arguments {
		keys := make([]string, 0, len(arg))
		for k := range arg {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.Arguments = append(o.Arguments, operators.Argument{Name: k, Value: arg[k]})
		}
	}

	outputs := bytes.TrimSpace(raw.Outputs)
	switch {
	case len(outputs) == 0:
		return fmt.Errorf("operator %s: missing outputs", raw.Name)
	case outputs[0] == '[':
		if err := json.Unmarshal(outputs, &o.Outputs); err != nil {
			return fmt.Errorf("operator %s: outputs: %w", raw.Name, err)
		}
	default:
		var name string
		if err := json.Unmarshal(outputs, &name); err != nil {
			return fmt.Errorf("operator %s: outputs: %w", raw.Name, err)
		}
		o.Outputs = []string{name}
	}
	return nil
}

// MarshalJSON implements json.Marshaler, producing the fixture form.
func (o Operator) MarshalJSON() ([]byte, error) {
	args := make([]map[string]json.RawMessage, len(o.Arguments))
	for i, a := range o.Arguments {
		args[i] = map[string]json.RawMessage{a.Name: a.Value}
	}
	var outputs any = o.Outputs
	if len(o.Outputs) == 1 {
		outputs = o.Outputs[0]
	}
	rawOutputs, err := json.Marshal(outputs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(operatorJSON{Name: o.Name, Arguments: args, Outputs: rawOutputs})
}

func sortedNames(m map[string]OperandData) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
