package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/born-ml/webnn-conformance/internal/parallel"
	"github.com/born-ml/webnn-conformance/internal/tensor"
	"github.com/born-ml/webnn-conformance/internal/webnn/operators"
)

// Status is the outcome of one case.
type Status int

// Case outcomes.
const (
	StatusPass Status = iota
	StatusFail
	StatusError
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusError:
		return "ERROR"
	case StatusSkip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// maxReportedMismatches bounds the mismatches kept per case.
const maxReportedMismatches = 8

// CaseResult is the outcome of running one case.
type CaseResult struct {
	Name        string        `json:"name"`
	Source      string        `json:"source,omitempty"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	Tolerance   Tolerance     `json:"tolerance"`
	MaxDistance float64       `json:"maxDistance"`
	Mismatches  []Mismatch    `json:"mismatches,omitempty"`
	Elements    int           `json:"elements"`
	Duration    time.Duration `json:"duration"`
}

// Runner executes conformance cases against a backend.
type Runner struct {
	backend  tensor.Backend
	registry *operators.Registry
	policies *Policies
	parallel parallel.Config
	filter   *regexp.Regexp
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithRegistry sets the operator registry.
func WithRegistry(r *operators.Registry) Option {
	return func(rn *Runner) { rn.registry = r }
}

// WithPolicies sets the tolerance policies.
func WithPolicies(p *Policies) Option {
	return func(rn *Runner) { rn.policies = p }
}

// WithParallel sets how many cases run concurrently.
func WithParallel(cfg parallel.Config) Option {
	return func(rn *Runner) { rn.parallel = cfg }
}

// WithFilter restricts runs to cases whose name matches re. Others are skipped.
func WithFilter(re *regexp.Regexp) Option {
	return func(rn *Runner) { rn.filter = re }
}

// WithLogger sets the logger for per-case events.
func WithLogger(l *slog.Logger) Option {
	return func(rn *Runner) { rn.logger = l }
}

// NewRunner creates a runner for backend with the default registry and policies.
func NewRunner(backend tensor.Backend, opts ...Option) *Runner {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1
	r := &Runner{
		backend:  backend,
		registry: operators.NewRegistry(),
		policies: DefaultPolicies(),
		parallel: cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cases and returns a report in case order. Cases not reached
// before ctx is cancelled are reported as skipped and mark the report cancelled.
func (r *Runner) Run(ctx context.Context, cases []Case) *Report {
	start := time.Now()
	results := make([]CaseResult, len(cases))
	for i, c := range cases {
		results[i] = CaseResult{Name: c.Name, Source: c.Source, Status: StatusSkip, Message: "not run"}
	}

	ran := make([]bool, len(cases))
	err := parallel.ForContext(ctx, len(cases), func(ctx context.Context, i int) {
		ran[i] = true
		if r.filter != nil && !r.filter.MatchString(cases[i].Name) {
			results[i].Message = "filtered"
			return
		}
		results[i] = r.RunCase(ctx, cases[i])
	}, r.parallel)

	report := &Report{Backend: r.backend.Name(), Results: results, Duration: time.Since(start)}
	if err != nil {
		notRun := 0
		for _, ok := range ran {
			if !ok {
				notRun++
			}
		}
		if notRun > 0 {
			report.Cancelled = true
			r.logger.Warn("run cancelled", "error", err, "not_run", notRun)
		}
	}
	return report
}

// RunCase executes one case. It never panics on malformed fixtures; problems
// are reported as StatusError.
func (r *Runner) RunCase(ctx context.Context, c Case) (res CaseResult) {
	start := time.Now()
	res = CaseResult{Name: c.Name, Source: c.Source}
	defer func() {
		res.Duration = time.Since(start)
		r.logger.Debug("case finished",
			"name", res.Name,
			"status", res.Status.String(),
			"max_distance", res.MaxDistance,
			"duration", res.Duration)
	}()

	tol, err := r.tolerance(c)
	if err != nil {
		return fail(res, StatusError, "tolerance: %v", err)
	}
	res.Tolerance = tol

	actual, err := BuildAndCompute(ctx, r.backend, r.registry, &c.Graph)
	if err != nil {
		return fail(res, StatusError, "%v", err)
	}

	var mismatches []Mismatch
	total := 0
	for _, name := range c.Graph.OutputNames() {
		expected, err := c.Graph.ExpectedOutputs[name].Tensor()
		if err != nil {
			return fail(res, StatusError, "expected output %q: %v", name, err)
		}
		cmp, err := Compare(expected, actual[name], tol)
		if err != nil {
			return fail(res, StatusError, "output %q: %v", name, err)
		}
		res.Elements += expected.NumElements()
		if cmp.MaxDistance > res.MaxDistance {
			res.MaxDistance = cmp.MaxDistance
		}
		total += len(cmp.Mismatches)
		mismatches = append(mismatches, cmp.Mismatches...)
	}

	if total == 0 {
		res.Status = StatusPass
		return res
	}
	if len(mismatches) > maxReportedMismatches {
		mismatches = mismatches[:maxReportedMismatches]
	}
	res.Mismatches = mismatches
	return fail(res, StatusFail, "%d of %d elements exceed %s", total, res.Elements, tol)
}

func (r *Runner) tolerance(c Case) (Tolerance, error) {
	if c.Tolerance != nil {
		return *c.Tolerance, c.Tolerance.Validate()
	}
	return r.policies.For(&c.Graph)
}

func fail(res CaseResult, status Status, format string, args ...any) CaseResult {
	res.Status = status
	res.Message = strings.TrimSpace(fmt.Sprintf(format, args...))
	return res
}
