// Package cpu implements the pure Go reference backend.
package cpu

import (
	"github.com/born-ml/webnn-conformance/internal/parallel"
	"github.com/born-ml/webnn-conformance/internal/tensor"
)

// CPUBackend evaluates operators on the CPU in float64 intermediate precision.
type CPUBackend struct {
	parallel parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the worker configuration used to split element loops.
func WithParallel(cfg parallel.Config) Option {
	return func(b *CPUBackend) {
		b.parallel = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	b := &CPUBackend{
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

var _ tensor.Backend = (*CPUBackend)(nil)
