package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/parallel"
	"github.com/agbru/parsearch/internal/search"
)

// BuildPlans returns one plan per (target, worker count) pair, targets in
// the outer loop.
func BuildPlans(targets []int64, workerCounts []int) []Plan {
	plans := make([]Plan, 0, len(targets)*len(workerCounts))
	for _, t := range targets {
		for _, k := range workerCounts {
			plans = append(plans, Plan{Target: t, Workers: k})
		}
	}
	return plans
}

// ComparisonWorkerCounts returns every worker count up to maxWorkers that
// divides length.
func ComparisonWorkerCounts(length, maxWorkers int) []int {
	return search.Divisors(length, maxWorkers)
}

// ExecuteSearches runs all plans concurrently, each as a full parallel
// search, and returns their results in plan order together with the first
// error any plan reported. A failing plan does not stop the others.
//
// Progress updates are sent to reporter, which runs in its own goroutine
// and has finished by the time ExecuteSearches returns.
func ExecuteSearches(ctx context.Context, runner Runner, plans []Plan, reporter ProgressReporter, out io.Writer) ([]SearchResult, error) {
	results := make([]SearchResult, len(plans))
	progressChan := make(chan ProgressUpdate, len(plans))

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(plans), out)

	var errs parallel.ErrorCollector
	var g errgroup.Group
	for i, plan := range plans {
		g.Go(func() error {
			start := time.Now()
			report, err := runner.Run(ctx, plan.Target, plan.Workers)
			results[i] = SearchResult{
				Target:   plan.Target,
				Workers:  plan.Workers,
				Found:    report.Found,
				Duration: time.Since(start),
				Report:   report,
				Err:      err,
			}
			errs.SetError(err)
			progressChan <- ProgressUpdate{PlanIndex: i, Found: report.Found, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results, errs.Err()
}

// targetGroup collects the results for one target, in first-seen order.
type targetGroup struct {
	target  int64
	results []SearchResult
}

func groupByTarget(results []SearchResult) []targetGroup {
	var groups []targetGroup
	index := make(map[int64]int)
	for _, r := range results {
		i, ok := index[r.Target]
		if !ok {
			i = len(groups)
			index[r.Target] = i
			groups = append(groups, targetGroup{target: r.Target})
		}
		groups[i].results = append(groups[i].results, r)
	}
	return groups
}

// AnalyzeComparisonResults checks the results of every target for
// consistency across worker counts and presents them.
//
// For each target, successful results are sorted by duration and must all
// agree on Found; any disagreement is reported as a mismatch. A target for
// which every plan failed is reported through the presenter's error
// handler, as is the first failure of a target that also has successful
// plans. A mismatch takes precedence over any error exit code; otherwise the
// code of the first failure is returned.
func AnalyzeComparisonResults(results []SearchResult, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	groups := groupByTarget(results)

	if opts.Compare {
		sorted := make([]SearchResult, 0, len(results))
		for _, group := range groups {
			rows := append([]SearchResult(nil), group.results...)
			sort.SliceStable(rows, func(i, j int) bool {
				if (rows[i].Err == nil) != (rows[j].Err == nil) {
					return rows[i].Err == nil
				}
				return rows[i].Duration < rows[j].Duration
			})
			sorted = append(sorted, rows...)
		}
		presenter.PresentComparisonTable(sorted, out)
	}

	exitCode := apperrors.ExitSuccess
	mismatch := false

	for _, group := range groups {
		var best *SearchResult
		var firstErr *SearchResult
		consistent := true

		for i := range group.results {
			r := &group.results[i]
			if r.Err != nil {
				if firstErr == nil {
					firstErr = r
				}
				continue
			}
			if best == nil {
				best = r
				continue
			}
			if r.Found != best.Found {
				consistent = false
			}
			if r.Duration < best.Duration {
				best = r
			}
		}

		switch {
		case best == nil:
			fmt.Fprintf(out, "\nTarget %d: no search completed.\n", group.target)
		case !consistent:
			fmt.Fprintf(out, "\nTarget %d: CRITICAL ERROR! Worker counts disagree on whether the target is present.\n", group.target)
			mismatch = true
		default:
			presenter.PresentResult(*best, opts, out)
		}
		if firstErr != nil {
			code := presenter.HandleError(firstErr.Err, firstErr.Duration, out)
			if exitCode == apperrors.ExitSuccess {
				exitCode = code
			}
		}
	}

	if mismatch {
		return apperrors.ExitErrorMismatch
	}
	return exitCode
}
