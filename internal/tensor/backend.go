package tensor

// DefaultBatchNormAxis is the channel axis used when none is given.
const DefaultBatchNormAxis = 1

// DefaultBatchNormEpsilon is the variance stabilizer used when none is given.
const DefaultBatchNormEpsilon = 1e-5

// BatchNormOptions configures BatchNormalization.
// Nil Scale is treated as all ones, nil Bias as all zeros.
type BatchNormOptions struct {
	Scale   *Tensor
	Bias    *Tensor
	Axis    int
	Epsilon float64
}

// DefaultBatchNormOptions returns options with axis 1, epsilon 1e-5 and no scale or bias.
func DefaultBatchNormOptions() BatchNormOptions {
	return BatchNormOptions{
		Axis:    DefaultBatchNormAxis,
		Epsilon: DefaultBatchNormEpsilon,
	}
}

// Backend defines the interface that reference compute backends must implement.
//
// Implementations:
//   - CPU: pure Go, float64 intermediate precision
type Backend interface {
	// Name returns a human-readable backend name.
	Name() string

	// BatchNormalization normalizes input per channel along opts.Axis:
	//
	//	out = (x - mean[c]) / sqrt(variance[c] + epsilon) * scale[c] + bias[c]
	//
	// mean, variance, scale and bias are 1-D with length input.Shape()[opts.Axis].
	BatchNormalization(input, mean, variance *Tensor, opts BatchNormOptions) (*Tensor, error)
}
