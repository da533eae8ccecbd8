package operators

import (
	"fmt"
	"sort"

	"github.com/born-ml/webnn-conformance/internal/webnn"
)

// OpHandler translates a fixture operator's arguments into builder calls and
// returns the operands it produced, in declaration order.
type OpHandler func(ctx *Context, args []Argument) ([]*webnn.Operand, error)

// Context provides the builder and the operands declared so far.
type Context struct {
	Builder  *webnn.GraphBuilder
	Operands map[string]*webnn.Operand
}

// Operand resolves an operand by name.
func (ctx *Context) Operand(name string) (*webnn.Operand, error) {
	op, ok := ctx.Operands[name]
	if !ok {
		return nil, fmt.Errorf("unknown operand %q", name)
	}
	return op, nil
}

// Registry maps WebNN operator names to handler functions.
type Registry struct {
	handlers map[string]OpHandler
}

// NewRegistry creates a new operator registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]OpHandler),
	}

	r.registerNormalizationOps()

	return r
}

// Register adds a custom operator handler.
func (r *Registry) Register(name string, handler OpHandler) {
	r.handlers[name] = handler
}

// Get returns the handler for an operator name.
func (r *Registry) Get(name string) (OpHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Execute runs an operator's handler with the given arguments.
func (r *Registry) Execute(ctx *Context, name string, args []Argument) ([]*webnn.Operand, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported operator: %s", name)
	}
	return handler(ctx, args)
}

// SupportedOps returns the registered operator names, sorted.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
