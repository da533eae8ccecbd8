package operators

import (
	"fmt"

	"github.com/born-ml/webnn-conformance/internal/webnn"
)

// registerNormalizationOps adds normalization operators to the registry.
func (r *Registry) registerNormalizationOps() {
	r.Register("batchNormalization", handleBatchNormalization)
}

// handleBatchNormalization implements
//
//	batchNormalization(input, mean, variance, {scale, bias, axis = 1, epsilon = 1e-5})
func handleBatchNormalization(ctx *Context, args []Argument) ([]*webnn.Operand, error) {
	input, err := OperandArg(ctx, args, "input")
	if err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}
	mean, err := OperandArg(ctx, args, "mean")
	if err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}
	variance, err := OperandArg(ctx, args, "variance")
	if err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}

	raw, err := Options(args)
	if err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}
	if err := CheckKeys(raw, "scale", "bias", "axis", "epsilon", "label"); err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}

	opts := webnn.DefaultBatchNormalizationOptions()
	if opts.Scale, err = OperandOption(ctx, raw, "scale"); err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}
	if opts.Bias, err = OperandOption(ctx, raw, "bias"); err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}
	if opts.Axis, err = IntOption(raw, "axis", opts.Axis); err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}
	if opts.Epsilon, err = FloatOption(raw, "epsilon", opts.Epsilon); err != nil {
		return nil, fmt.Errorf("batchNormalization: %w", err)
	}

	out, err := ctx.Builder.BatchNormalization(input, mean, variance, opts)
	if err != nil {
		return nil, err
	}
	return []*webnn.Operand{out}, nil
}
