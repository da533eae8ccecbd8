package conformance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// scriptPrelude stubs the harness globals a WebNN conformance script expects.
// navigator.ml is truthy so the script takes its registration branch.
const scriptPrelude = `
var navigator = { ml: {} };
var self = this;
function test() {}
function promise_test() {}
function assert_implements() {}
function buildGraphAndCompute() {}
function getExpectedDataTypeOfSingleOutput(expectedOutputs) {
  var names = Object.keys(expectedOutputs || {});
  if (names.length !== 1) {
    return undefined;
  }
  var desc = expectedOutputs[names[0]].descriptor || {};
  return desc.castedType || desc.dataType;
}
`

// scriptCollector receives webnn_conformance_test registrations.
type scriptCollector struct {
	vm    *goja.Runtime
	cases []Case
	err   error
}

// LoadScript evaluates a WPT-style conformance script (for example
// batch_normalization.https.any.js) and collects every test passed to
// webnn_conformance_test. The script's tolerance function is evaluated once
// per case against the case graph and stored as the case tolerance.
func LoadScript(ctx context.Context, name string, src []byte) ([]Case, error) {
	vm := goja.New()
	c := &scriptCollector{vm: vm}

	if err := vm.Set("webnn_conformance_test", c.register); err != nil {
		return nil, fmt.Errorf("failed to install harness: %w", err)
	}
	if _, err := vm.RunString(scriptPrelude); err != nil {
		return nil, fmt.Errorf("failed to install harness: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	if _, err := vm.RunScript(name, string(src)); err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, fmt.Errorf("script interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("script error: %w", err)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.cases, nil
}

// register implements webnn_conformance_test(buildFunc, toleranceFunc, test).
func (c *scriptCollector) register(call goja.FunctionCall) goja.Value {
	if c.err != nil {
		return goja.Undefined()
	}

	testVal := call.Argument(2)
	if goja.IsUndefined(testVal) || goja.IsNull(testVal) {
		c.err = fmt.Errorf("test %d: missing test object", len(c.cases))
		return goja.Undefined()
	}

	raw, err := json.Marshal(testVal.Export())
	if err != nil {
		c.err = fmt.Errorf("test %d: %w", len(c.cases), err)
		return goja.Undefined()
	}
	var tc Case
	if err := json.Unmarshal(raw, &tc); err != nil {
		c.err = fmt.Errorf("test %d: %w", len(c.cases), err)
		return goja.Undefined()
	}
	if tc.Name == "" {
		c.err = fmt.Errorf("test %d: missing name", len(c.cases))
		return goja.Undefined()
	}

	if fn, ok := goja.AssertFunction(call.Argument(1)); ok && tc.Tolerance == nil {
		graph := testVal.ToObject(c.vm).Get("graph")
		tol, err := c.tolerance(fn, graph)
		if err != nil {
			c.err = fmt.Errorf("test %q: tolerance: %w", tc.Name, err)
			return goja.Undefined()
		}
		tc.Tolerance = tol
	}

	c.cases = append(c.cases, tc)
	return goja.Undefined()
}

// tolerance calls the script's tolerance function. A result without a value
// (unknown data type) leaves the case on the operator policy.
func (c *scriptCollector) tolerance(fn goja.Callable, graph goja.Value) (*Tolerance, error) {
	v, err := fn(goja.Undefined(), graph)
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	raw, err := json.Marshal(v.Export())
	if err != nil {
		return nil, err
	}
	var out struct {
		Metric MetricType `json:"metricType"`
		Value  *float64   `json:"value"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, nil
	}

	tol := Tolerance{Metric: out.Metric, Value: *out.Value}
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	return &tol, nil
}
