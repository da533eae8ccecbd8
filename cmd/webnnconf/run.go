package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/born-ml/webnn-conformance/internal/backend/cpu"
	"github.com/born-ml/webnn-conformance/internal/config"
	"github.com/born-ml/webnn-conformance/internal/conformance"
	"github.com/born-ml/webnn-conformance/internal/parallel"
)

var errConformanceFailed = errors.New("conformance run failed")

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>...",
		Short: "Run fixture files or directories against the CPU reference backend",
		Long: `Run loads .json fixtures and WPT conformance scripts (*.any.js) from the
given files and directories, evaluates every case and prints a report.
The command fails when any case fails or errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			return runConformance(cmd.Context(), cmd.OutOrStdout(), cfg, args)
		},
	}
}

func runConformance(ctx context.Context, w io.Writer, cfg config.Config, paths []string) error {
	cases, err := conformance.LoadPaths(ctx, paths)
	if err != nil {
		return err
	}

	opts := []conformance.Option{
		conformance.WithLogger(slog.Default()),
		conformance.WithParallel(parallel.Config{
			Enabled:      cfg.Runner.Parallel,
			NumWorkers:   cfg.Runner.Workers,
			MinChunkSize: 1,
		}),
	}
	if cfg.Runner.Filter != "" {
		re, err := regexp.Compile(cfg.Runner.Filter)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		opts = append(opts, conformance.WithFilter(re))
	}

	backend := cpu.New()
	slog.Debug("starting conformance run", "cases", len(cases), "backend", backend.Name(), "workers", cfg.Runner.Workers)

	report := conformance.NewRunner(backend, opts...).Run(ctx, cases)
	summary := report.Summary()
	slog.Info("conformance run finished",
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"errored", summary.Errored,
		"skipped", summary.Skipped,
		"duration", report.Duration)

	if cfg.Report.Format == config.FormatJSON {
		err = report.WriteJSON(w)
	} else {
		err = report.WriteText(w, cfg.Report.Verbose)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !report.OK() {
		return fmt.Errorf("%w: %d failed, %d errors", errConformanceFailed, summary.Failed, summary.Errored)
	}
	if report.Cancelled {
		return fmt.Errorf("run cancelled: %w", context.Cause(ctx))
	}
	return nil
}
