// Package calibration measures which worker count searches fastest on the
// current machine and caches the answer in a YAML profile.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/agbru/parsearch/internal/config"
	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/search"
)

// DefaultRounds is the number of timed searches per candidate; the fastest
// round is kept.
const DefaultRounds = 5

// Result is the measurement for one candidate worker count.
type Result struct {
	Workers  int
	Duration time.Duration
	Err      error
}

// GenerateWorkerCandidates returns every worker count up to twice the CPU
// count that divides size.
func GenerateWorkerCandidates(size int) []int {
	return search.Divisors(size, 2*runtime.NumCPU())
}

// Benchmark times a worst-case search (the target at the last index) with
// each candidate worker count over a sequential dataset of the given size.
func Benchmark(ctx context.Context, searcher *search.Searcher, size int, candidates []int, rounds int) []Result {
	if rounds < 1 {
		rounds = 1
	}
	values := make(search.Slice[int64], size)
	for i := range values {
		values[i] = int64(i)
	}
	target := int64(size - 1)

	results := make([]Result, 0, len(candidates))
	for _, k := range candidates {
		res := Result{Workers: k}
		for r := 0; r < rounds; r++ {
			start := time.Now()
			report, err := search.Run(ctx, searcher, target, values, k, search.Equal[int64])
			elapsed := time.Since(start)
			if err == nil && size > 0 && !report.Found {
				err = fmt.Errorf("calibration search with %d workers missed the target", k)
			}
			if err != nil {
				res.Err = err
				break
			}
			if r == 0 || elapsed < res.Duration {
				res.Duration = elapsed
			}
		}
		results = append(results, res)
		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// Best returns the fastest successful result.
func Best(results []Result) (Result, bool) {
	var best Result
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Duration < best.Duration {
			best, found = r, true
		}
	}
	return best, found
}

// RunCalibration benchmarks the candidates for a synthetic dataset of
// cfg.Size elements, prints a summary, and saves the winning worker count to
// the configured profile path, replacing any earlier calibration there.
func RunCalibration(ctx context.Context, cfg config.AppConfig, searcher *search.Searcher, out io.Writer) int {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	size := cfg.Size
	candidates := GenerateWorkerCandidates(size)
	fmt.Fprintf(out, "--- Calibration ---\nDataset size %d, %d candidate worker counts, %d rounds each.\n",
		size, len(candidates), DefaultRounds)

	start := time.Now()
	results := Benchmark(ctx, searcher, size, candidates, DefaultRounds)
	elapsed := time.Since(start)

	best, ok := Best(results)
	printCalibrationResults(out, results, best.Workers)
	if !ok {
		fmt.Fprintln(out, "Calibration failed: no candidate completed.")
		for _, r := range results {
			if r.Err != nil {
				if errors.Is(r.Err, context.DeadlineExceeded) {
					return apperrors.ExitErrorTimeout
				}
				return apperrors.ExitCodeFor(r.Err)
			}
		}
		return apperrors.ExitErrorGeneric
	}

	path := profilePath(cfg)
	profile, existed := LoadOrCreateProfile(path)
	if existed && profile.OptimalWorkers > 0 {
		fmt.Fprintf(out, "Replacing calibration from %s (%d workers for %d elements).\n",
			profile.CalibratedAt.Format(time.RFC3339), profile.OptimalWorkers, profile.DatasetSize)
	}
	profile.stamp()
	profile.DatasetSize = size
	profile.OptimalWorkers = best.Workers
	profile.CalibrationTime = elapsed.Round(time.Millisecond).String()

	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "Could not save calibration profile: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	printCalibrationOutput(out, profile, path)
	return apperrors.ExitSuccess
}

// LoadCachedCalibration applies the cached worker count to cfg when cfg
// asks for adaptive workers and the profile is valid for size and younger
// than ProfileMaxAge.
func LoadCachedCalibration(cfg config.AppConfig, size int) (config.AppConfig, bool) {
	if cfg.Workers != 0 {
		return cfg, false
	}
	profile, err := loadProfile(profilePath(cfg))
	if err != nil || profile.IsStale(ProfileMaxAge) {
		return cfg, false
	}
	workers, ok := profile.WorkersFor(size)
	if !ok {
		return cfg, false
	}
	cfg.Workers = workers
	return cfg, true
}

func profilePath(cfg config.AppConfig) string {
	if cfg.CalibrationProfile != "" {
		return cfg.CalibrationProfile
	}
	return GetDefaultProfilePath()
}
