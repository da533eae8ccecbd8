package conformance

import (
	"fmt"
	"sort"
	"sync"

	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// MetricType selects how element distance is measured.
type MetricType string

const (
	// MetricULP counts representable values of the output data type between
	// expected and actual.
	MetricULP MetricType = "ULP"
	// MetricATOL is the absolute difference.
	MetricATOL MetricType = "ATOL"
)

// Tolerance is the maximum accepted per-element distance under a metric.
type Tolerance struct {
	Metric MetricType `json:"metricType"`
	Value  float64    `json:"value"`
}

// Validate checks the metric is known and the value non-negative.
func (t Tolerance) Validate() error {
	switch t.Metric {
	case MetricULP, MetricATOL:
	default:
		return fmt.Errorf("unknown metric type %q", t.Metric)
	}
	if !(t.Value >= 0) {
		return fmt.Errorf("invalid %s tolerance %v", t.Metric, t.Value)
	}
	return nil
}

func (t Tolerance) String() string {
	return fmt.Sprintf("%s<=%g", t.Metric, t.Value)
}

// PolicyFunc derives the tolerance for a graph.
type PolicyFunc func(g *Graph) (Tolerance, error)

// Policies maps operator names to tolerance policies.
type Policies struct {
	mu       sync.RWMutex
	policies map[string]PolicyFunc
}

// NewPolicies returns an empty policy set.
func NewPolicies() *Policies {
	return &Policies{policies: make(map[string]PolicyFunc)}
}

// DefaultPolicies returns the policies for all registered operators.
func DefaultPolicies() *Policies {
	p := NewPolicies()
	p.Register("batchNormalization", ULPByDataType(map[tensor.DataType]float64{
		tensor.Float32: 6,
		tensor.Float16: 6,
	}))
	return p
}

// Register sets the policy for op, replacing any previous one.
func (p *Policies) Register(op string, fn PolicyFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policies[op] = fn
}

// Operators returns the operators with a policy, sorted.
func (p *Policies) Operators() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ops := make([]string, 0, len(p.policies))
	for op := range p.policies {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// For returns the tolerance of g, taken from the policy of its last operator.
func (p *Policies) For(g *Graph) (Tolerance, error) {
	if len(g.Operators) == 0 {
		return Tolerance{}, fmt.Errorf("graph has no operators")
	}
	op := g.Operators[len(g.Operators)-1].Name

	p.mu.RLock()
	fn, ok := p.policies[op]
	p.mu.RUnlock()
	if !ok {
		return Tolerance{}, fmt.Errorf("no tolerance policy for %s", op)
	}

	tol, err := fn(g)
	if err != nil {
		return Tolerance{}, fmt.Errorf("%s: %w", op, err)
	}
	return tol, nil
}

// ULPByDataType builds a ULP policy keyed on the data type of the graph's
// single expected output.
func ULPByDataType(values map[tensor.DataType]float64) PolicyFunc {
	return func(g *Graph) (Tolerance, error) {
		dt, err := ExpectedDataTypeOfSingleOutput(g)
		if err != nil {
			return Tolerance{}, err
		}
		v, ok := values[dt]
		if !ok {
			return Tolerance{}, fmt.Errorf("no ULP tolerance for %s", dt)
		}
		return Tolerance{Metric: MetricULP, Value: v}, nil
	}
}

// ExpectedDataTypeOfSingleOutput returns the data type of the only expected output.
func ExpectedDataTypeOfSingleOutput(g *Graph) (tensor.DataType, error) {
	if len(g.ExpectedOutputs) != 1 {
		return 0, fmt.Errorf("expected exactly one output, got %d", len(g.ExpectedOutputs))
	}
	for _, out := range g.ExpectedOutputs {
		return tensor.ParseDataType(out.Descriptor.DataType)
	}
	return 0, nil
}
