package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/webnn-conformance/internal/config"
)

var testdataDir = filepath.Join("..", "..", "internal", "conformance", "testdata")

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"run", "list", "ops", "trusted-types", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestNewRootCmd_HasPersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"config", "log-level", "runner-workers", "report-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "not-a-level"} {
		setupLogger(level)
	}
}

func TestRequireConfig(t *testing.T) {
	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.Config{}
	_, err := requireConfig()
	require.Error(t, err)

	activeCfg = config.DefaultConfig()
	got, err := requireConfig()
	require.NoError(t, err)
	assert.Equal(t, activeCfg, got)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "webnnconf "+version))
}

func TestOpsCmd(t *testing.T) {
	out, err := execute(t, "ops")
	require.NoError(t, err)
	assert.Equal(t, "batchNormalization\n", out)
}

func TestListCmd(t *testing.T) {
	out, err := execute(t, "list", testdataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "batchNormalization float32 4D NHWC tensor all options")
	assert.Contains(t, out, "ULP<=6")
	assert.Contains(t, out, "policy")
	assert.Contains(t, out, "15 cases")
}

func TestRunCmd_Text(t *testing.T) {
	out, err := execute(t, "run", "--log-level=error", testdataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "CPU: 15 passed, 0 failed, 0 errors, 0 skipped (15 total)")
}

func TestRunCmd_JSONWithFilter(t *testing.T) {
	out, err := execute(t, "run", "--log-level=error", "--report-format=json", "--runner-filter=NHWC", testdataDir)
	require.NoError(t, err)

	var doc struct {
		Summary struct {
			Passed  int `json:"passed"`
			Skipped int `json:"skipped"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 3, doc.Summary.Passed)
	assert.Equal(t, 12, doc.Summary.Skipped)
}

func TestRunCmd_Failure(t *testing.T) {
	fixture := `[{
  "name": "wrong expectation",
  "graph": {
    "inputs": {
      "x": {"data": [1, 2], "descriptor": {"shape": [1, 2], "dataType": "float32"}},
      "m": {"data": [0, 0], "descriptor": {"shape": [2], "dataType": "float32"}, "constant": true},
      "v": {"data": [1, 1], "descriptor": {"shape": [2], "dataType": "float32"}, "constant": true}
    },
    "operators": [{"name": "batchNormalization", "arguments": [{"input": "x"}, {"mean": "m"}, {"variance": "v"}], "outputs": "y"}],
    "expectedOutputs": {"y": {"data": [1, 3], "descriptor": {"shape": [1, 2], "dataType": "float32"}}}
  }
}]`
	path := filepath.Join(t.TempDir(), "fail.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	out, err := execute(t, "run", "--log-level=error", path)
	require.ErrorIs(t, err, errConformanceFailed)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "wrong expectation")
}

func TestRunConformance_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	path := filepath.Join(testdataDir, "batch_normalization_float16.json")
	err := runConformance(ctx, &out, config.DefaultConfig(), []string{path})
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "run cancelled")
	assert.Contains(t, out.String(), "0 passed, 0 failed, 0 errors, 3 skipped")
}

func TestRunCmd_Errors(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)

	_, err = execute(t, "run", "--log-level=error", filepath.Join(testdataDir, "missing.json"))
	require.ErrorContains(t, err, "failed to stat")

	_, err = execute(t, "run", "--log-level=error", "--runner-filter=(", testdataDir)
	require.ErrorContains(t, err, "invalid filter")

	_, err = execute(t, "run", "--report-format=xml", testdataDir)
	require.ErrorContains(t, err, "unknown report format")
}

func TestRunCmd_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webnnconf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\nrunner:\n  filter: float16\n"), 0o600))

	out, err := execute(t, "run", "--config", path, testdataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "3 passed, 0 failed, 0 errors, 12 skipped")
}

func TestTrustedTypesCmd(t *testing.T) {
	out, err := execute(t, "trusted-types", "--suffix=7", "--location=https://web-platform.test/a.html#x")
	require.NoError(t, err)

	assert.Contains(t, out, "SomeHTMLPolicyName7")
	assert.Contains(t, out, `"Quack, I want to be a duck!" ok`)
	assert.Contains(t, out, `"http://hooray.i.am.successfully.transformed/" ok`)
	assert.Contains(t, out, `"https://web-platform.test/a.html#http://hello.i.am.an.url/"`)
	assert.NotContains(t, out, "FAIL")
}

func TestTrustedTypesCmd_InvalidSuffix(t *testing.T) {
	out, err := execute(t, "trusted-types", "--suffix= bad")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
}
