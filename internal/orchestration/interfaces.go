package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/search"
)

// Plan is one search to run: a target and the worker count to use.
type Plan struct {
	Target  int64
	Workers int
}

// SearchResult is the outcome of one Plan. It is the shared domain type
// between orchestration and presentation.
type SearchResult struct {
	Target   int64
	Workers  int
	Found    bool
	Duration time.Duration
	// Report holds per-segment details; it is partial when Err is set.
	Report search.Report
	Err    error
}

// Runner executes a single parallel search.
type Runner interface {
	Run(ctx context.Context, target int64, workers int) (search.Report, error)
}

// SequenceRunner runs searches over a fixed int64 sequence.
type SequenceRunner struct {
	Searcher *search.Searcher
	Seq      search.Sequence[int64]
	// Timeout bounds each search; 0 leaves only the caller's deadline.
	Timeout time.Duration
}

// Run searches r.Seq for target with value equality. A search that runs past
// r.Timeout fails with a TimeoutError.
func (r SequenceRunner) Run(ctx context.Context, target int64, workers int) (search.Report, error) {
	if r.Timeout <= 0 {
		return search.Run(ctx, r.Searcher, target, r.Seq, workers, search.Equal[int64])
	}
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	report, err := search.Run(ctx, r.Searcher, target, r.Seq, workers, search.Equal[int64])
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperrors.TimeoutError{
			Operation: fmt.Sprintf("search for %d", target),
			Limit:     r.Timeout,
			Cause:     err,
		}
	}
	return report, err
}

// ProgressUpdate is sent once for every plan that completes.
type ProgressUpdate struct {
	PlanIndex int
	Found     bool
	Err       error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Verbose bool
	Details bool
	// Compare is set when several worker counts were run per target.
	Compare bool
}

// ProgressReporter displays progress while plans run. DisplayProgress is
// started in its own goroutine, must call wg.Done when it returns and must
// keep reading progressChan until it is closed.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numPlans int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numPlans int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numPlans int, out io.Writer) {
	f(wg, progressChan, numPlans, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a failed search and returns its exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// ResultPresenter presents search results. Implementations decide the
// output format (CLI, JSON, ...).
type ResultPresenter interface {
	ErrorHandler

	// PresentComparisonTable displays every result, one row per plan.
	PresentComparisonTable(results []SearchResult, out io.Writer)

	// PresentResult displays the final result for one target.
	PresentResult(result SearchResult, opts PresentationOptions, out io.Writer)
}
