package operators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/born-ml/webnn-conformance/internal/webnn"
)

// Argument is one named operator argument. Value is the raw JSON value:
// an operand name (string) or an options object.
type Argument struct {
	Name  string
	Value json.RawMessage
}

// Find returns the argument with the given name.
func Find(args []Argument, name string) (Argument, bool) {
	for _, a := range args {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// OperandArg resolves a required operand-name argument.
func OperandArg(ctx *Context, args []Argument, name string) (*webnn.Operand, error) {
	a, ok := Find(args, name)
	if !ok {
		return nil, fmt.Errorf("missing argument %q", name)
	}
	return operandRef(ctx, name, a.Value)
}

// Options decodes the optional "options" argument into a key → raw value map.
// A missing options argument yields an empty map.
func Options(args []Argument) (map[string]json.RawMessage, error) {
	a, ok := Find(args, "options")
	if !ok {
		return map[string]json.RawMessage{}, nil
	}
	var opts map[string]json.RawMessage
	if err := json.Unmarshal(a.Value, &opts); err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	if opts == nil {
		opts = map[string]json.RawMessage{}
	}
	return opts, nil
}

// IntOption decodes an integer option, or returns def if absent.
func IntOption(opts map[string]json.RawMessage, key string, def int) (int, error) {
	raw, ok := opts[key]
	if !ok {
		return def, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("option %s: %w", key, err)
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("option %s: %v is not an unsigned integer", key, f)
	}
	return int(f), nil
}

// FloatOption decodes a numeric option, or returns def if absent.
func FloatOption(opts map[string]json.RawMessage, key string, def float64) (float64, error) {
	raw, ok := opts[key]
	if !ok {
		return def, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("option %s: %w", key, err)
	}
	return f, nil
}

// OperandOption resolves an optional operand-name option, or returns nil if absent.
func OperandOption(ctx *Context, opts map[string]json.RawMessage, key string) (*webnn.Operand, error) {
	raw, ok := opts[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	return operandRef(ctx, key, raw)
}

// CheckKeys rejects option keys outside allowed.
func CheckKeys(opts map[string]json.RawMessage, allowed ...string) error {
	for key := range opts {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return nil
}

func operandRef(ctx *Context, name string, raw json.RawMessage) (*webnn.Operand, error) {
	var ref string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, fmt.Errorf("argument %s: expected operand name: %w", name, err)
	}
	return ctx.Operand(ref)
}
