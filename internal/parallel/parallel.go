// Package parallel provides the chunked worker loops shared by the evaluator and the runner.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// Every index is visited exactly once; f must only write state owned by i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForChannels iterates the (outer, channel) pairs of a tensor split around its channel axis.
func ForChannels(outer, channels int, f func(o, c int), cfg Config) {
	n := outer * channels
	For(n, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}

// ForContext is For with cancellation: once ctx is done, remaining indices
// are not started and ctx.Err() is returned.
func ForContext(ctx context.Context, n int, f func(ctx context.Context, i int), cfg Config) error {
	For(n, func(i int) {
		if ctx.Err() != nil {
			return
		}
		f(ctx, i)
	}, cfg)
	return ctx.Err()
}
