package tensor

import "errors"

// Common errors.
var (
	ErrInvalidShape        = errors.New("invalid shape")
	ErrLengthMismatch      = errors.New("data length does not match shape")
	ErrUnsupportedDataType = errors.New("unsupported data type")
	ErrShapeMismatch       = errors.New("shape mismatch")
	ErrDataTypeMismatch    = errors.New("data type mismatch")
	ErrInvalidAxis         = errors.New("invalid axis")
)
