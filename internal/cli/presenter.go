// Package cli renders search progress, results and reports for the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/format"
	"github.com/agbru/parsearch/internal/orchestration"
	"github.com/agbru/parsearch/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// terminal spinner.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numPlans int, out io.Writer) {
	DisplayProgress(wg, progressChan, numPlans, out)
}

// CLIColorProvider supplies the active theme colors to apperrors.HandleSearchError.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// CLIResultPresenter implements orchestration.ResultPresenter with colorized
// terminal output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
)

// PresentComparisonTable prints one row per search: target, worker count,
// duration and outcome. Padding is computed on the plain text so ANSI codes
// do not break alignment.
func (p CLIResultPresenter) PresentComparisonTable(results []orchestration.SearchResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	const (
		targetHeader   = "Target"
		workersHeader  = "Workers"
		durationHeader = "Duration"
	)
	targetLen, workersLen, durationLen := len(targetHeader), len(workersHeader), len(durationHeader)
	for _, res := range results {
		targetLen = max(targetLen, len(fmt.Sprint(res.Target)))
		workersLen = max(workersLen, len(fmt.Sprint(res.Workers)))
		durationLen = max(durationLen, len([]rune(p.FormatDuration(res.Duration))))
	}

	fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s%s%s   %sStatus%s\n",
		ui.ColorUnderline(), targetHeader, ui.ColorReset(), padRight("", targetLen-len(targetHeader)),
		ui.ColorUnderline(), workersHeader, ui.ColorReset(), padRight("", workersLen-len(workersHeader)),
		ui.ColorUnderline(), durationHeader, ui.ColorReset(), padRight("", durationLen-len(durationHeader)),
		ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		target := fmt.Sprint(res.Target)
		workers := fmt.Sprint(res.Workers)
		duration := p.FormatDuration(res.Duration)

		var status string
		switch {
		case res.Err != nil:
			status = fmt.Sprintf("%s✗ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		case res.Found:
			status = fmt.Sprintf("%s✓ Found%s", ui.ColorGreen(), ui.ColorReset())
		default:
			status = fmt.Sprintf("%s· Not found%s", ui.ColorGrey(), ui.ColorReset())
		}
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s%s%s   %s\n",
			ui.ColorMagenta(), target, ui.ColorReset(), padRight("", targetLen-len(target)),
			ui.ColorBlue(), workers, ui.ColorReset(), padRight("", workersLen-len(workers)),
			ui.ColorYellow(), duration, ui.ColorReset(), padRight("", durationLen-len([]rune(duration))),
			status)
	}
}

// padRight appends length spaces to s.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + strings.Repeat(" ", length)
}

// PresentResult prints the outcome for one target, with the segment table
// when details are requested.
func (p CLIResultPresenter) PresentResult(result orchestration.SearchResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts.Verbose, opts.Details, out)
}

// FormatDuration formats d for display; zero renders as "< 1µs".
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// HandleError prints a failed search and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleSearchError(err, duration, out, CLIColorProvider{})
}

// DisplayResult prints whether the target was found and how long it took.
func DisplayResult(result orchestration.SearchResult, verbose, details bool, out io.Writer) {
	verdict := fmt.Sprintf("%sNOT FOUND%s", ui.ColorYellow(), ui.ColorReset())
	if result.Found {
		verdict = fmt.Sprintf("%sFOUND%s", ui.ColorGreen(), ui.ColorReset())
	}
	fmt.Fprintf(out, "\nTarget %s%d%s: %s%s%s (%d workers, %s%s%s)\n",
		ui.ColorBold(), result.Target, ui.ColorReset(),
		ui.ColorBold(), verdict, ui.ColorReset(),
		result.Workers,
		ui.ColorYellow(), CLIResultPresenter{}.FormatDuration(result.Duration), ui.ColorReset())

	report := result.Report
	if verbose && report.Length > 0 {
		fmt.Fprintf(out, "  Scanned %s of %s elements (%s).",
			format.FormatCount(int64(report.Scanned())), format.FormatCount(int64(report.Length)),
			format.FormatPercent(report.Scanned(), report.Length))
		if report.Winner >= 0 {
			fmt.Fprintf(out, " Match found by segment %d; %d worker(s) left early.", report.Winner, report.EarlyExits())
		}
		fmt.Fprintln(out)
	}
	if details && len(report.Segments) > 0 {
		fmt.Fprintln(out, RenderSegmentTable(report))
	}
}
