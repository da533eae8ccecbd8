package conformance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadJSON decodes cases from r. The document is either an array of cases
// or an object with a "tests" array.
func LoadJSON(r io.Reader) ([]Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	data = bytes.TrimSpace(data)

	var cases []Case
	if len(data) > 0 && data[0] == '{' {
		var doc struct {
			Tests []Case `json:"tests"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse fixtures: %w", err)
		}
		cases = doc.Tests
	} else if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	for i := range cases {
		if cases[i].Name == "" {
			return nil, fmt.Errorf("fixture %d: missing name", i)
		}
	}
	return cases, nil
}

// LoadFile loads cases from a .json fixture file or a .js conformance script.
func LoadFile(ctx context.Context, path string) ([]Case, error) {
	//nolint:gosec // Loading fixtures from a user-specified path is intentional.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cases []Case
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cases, err = LoadJSON(bytes.NewReader(data))
	case ".js":
		cases, err = LoadScript(ctx, path, data)
	default:
		return nil, fmt.Errorf("unsupported fixture file %s (want .json or .js)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := range cases {
		cases[i].Source = path
	}
	return cases, nil
}

// LoadDir loads every .json fixture and .any.js conformance script under dir,
// in lexical path order. Other .js files (harness resources) are ignored.
func LoadDir(ctx context.Context, dir string) ([]Case, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".any.js") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)

	var cases []Case
	for _, f := range files {
		loaded, err := LoadFile(ctx, f)
		if err != nil {
			return nil, err
		}
		cases = append(cases, loaded...)
	}
	return cases, nil
}

// LoadPaths loads files and directories in order.
func LoadPaths(ctx context.Context, paths []string) ([]Case, error) {
	var cases []Case
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		var loaded []Case
		if info.IsDir() {
			loaded, err = LoadDir(ctx, p)
		} else {
			loaded, err = LoadFile(ctx, p)
		}
		if err != nil {
			return nil, err
		}
		cases = append(cases, loaded...)
	}
	return cases, nil
}
