package webnn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDuplicateInput     = errors.New("duplicate input name")
	ErrMissingInput       = errors.New("missing input")
	ErrDescriptorMismatch = errors.New("descriptor mismatch")
	ErrInvalidAxis        = errors.New("invalid axis")
	ErrInvalidOperand     = errors.New("invalid operand")
	ErrInvalidOption      = errors.New("invalid option")
	ErrAlreadyBuilt       = errors.New("graph builder already built")
	ErrNoOutputs          = errors.New("graph has no outputs")
)

// ValidationError provides detailed information about an operator that
// failed builder validation.
type ValidationError struct {
	Op      string // Operator name (e.g., "batchNormalization")
	Operand string // Operand role involved (e.g., "mean")
	Err     error  // Underlying sentinel error
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Operand != "" {
		return fmt.Sprintf("%s: %s: %v: %s", e.Op, e.Operand, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Details)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
