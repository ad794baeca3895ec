package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/parsearch/internal/calibration"
	"github.com/agbru/parsearch/internal/cli"
	"github.com/agbru/parsearch/internal/config"
	"github.com/agbru/parsearch/internal/dataset"
	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/logging"
	"github.com/agbru/parsearch/internal/metrics"
	"github.com/agbru/parsearch/internal/orchestration"
	"github.com/agbru/parsearch/internal/search"
	"github.com/agbru/parsearch/internal/sysmon"
)

// sysmonTimeout bounds the host load sample printed with --details.
const sysmonTimeout = 2 * time.Second

// runSearch loads the dataset, runs every planned search and presents the
// results.
func (a *Application) runSearch(ctx context.Context, out io.Writer) int {
	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()

	values, source, err := a.loadDataset()
	if err != nil {
		err = apperrors.WrapError(err, "loading dataset %s", source)
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}
	loaded := collector.Snapshot().Since(before)

	cfg := a.Config
	if withProfile, ok := calibration.LoadCachedCalibration(cfg, len(values)); ok {
		cfg = withProfile
	} else {
		cfg = config.ApplyAdaptiveWorkers(cfg, len(values))
	}

	workerCounts := []int{cfg.Workers}
	if cfg.Compare {
		workerCounts = orchestration.ComparisonWorkerCounts(len(values), cfg.MaxWorkers)
	}

	registry := prometheus.NewRegistry()
	searchMetrics, err := metrics.NewSearchMetrics("parsearch", registry)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	runner := orchestration.SequenceRunner{
		Searcher: search.New(search.WithLogger(a.Logger), search.WithObserver(searchMetrics)),
		Seq:      search.Slice[int64](values),
		Timeout:  cfg.Timeout,
	}

	if !cfg.Quiet {
		cli.DisplayExecutionConfig(out, source, len(values), cfg.Targets, workerCounts, cfg.Timeout)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if cfg.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	plans := orchestration.BuildPlans(cfg.Targets, workerCounts)
	results, err := orchestration.ExecuteSearches(ctx, runner, plans, reporter, progressOut)
	if err != nil {
		a.Logger.Debug("search run finished with errors", logging.Err(err))
	}

	opts := orchestration.PresentationOptions{
		Verbose: cfg.Verbose,
		Details: cfg.Details,
		Compare: len(workerCounts) > 1,
	}
	presentOut := out
	if cfg.Quiet {
		cli.DisplayQuietResults(out, results)
		presentOut = io.Discard
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, opts, cli.CLIResultPresenter{}, presentOut)

	if cfg.Details && !cfg.Quiet {
		sampleCtx, cancel := context.WithTimeout(context.Background(), sysmonTimeout)
		host := sysmon.SampleContext(sampleCtx)
		cancel()
		cli.DisplayEnvironment(out, loaded, collector.Snapshot(), host)
		if err := cli.DisplayMetricsSummary(out, registry); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		}
	}

	outputCfg := cli.OutputConfig{
		OutputFile: cfg.OutputFile,
		Quiet:      cfg.Quiet,
		Verbose:    cfg.Verbose,
		Details:    cfg.Details,
	}
	if err := cli.WriteReportToFile(results, source, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
		if exitCode == apperrors.ExitSuccess {
			exitCode = apperrors.ExitErrorGeneric
		}
	} else if cfg.OutputFile != "" && !cfg.Quiet {
		cli.DisplaySavedReport(out, cfg.OutputFile)
	}
	return exitCode
}

// loadDataset reads cfg.Input, or generates a synthetic dataset when no
// input file is configured. It also returns a short description of the
// dataset source.
func (a *Application) loadDataset() ([]int64, string, error) {
	if a.Config.Input != "" {
		values, err := dataset.Load(a.Config.Input)
		return values, a.Config.Input, err
	}
	values, err := dataset.Generate(a.Config.Pattern, a.Config.Size, a.Config.Seed)
	return values, fmt.Sprintf("%s:%d", a.Config.Pattern, a.Config.Size), err
}
