// # Naming Conventions
//
// Functions in this package follow consistent naming patterns:
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* and Render* functions return a string without performing I/O.
//   - Write* functions write data to files on the filesystem.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/parsearch/internal/format"
	"github.com/agbru/parsearch/internal/metrics"
	"github.com/agbru/parsearch/internal/orchestration"
	"github.com/agbru/parsearch/internal/sysmon"
	"github.com/agbru/parsearch/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the report path; empty disables the file report.
	OutputFile string
	Quiet      bool
	Verbose    bool
	Details    bool
}

// WriteReportToFile writes a plain-text report of all results to
// config.OutputFile. It is a no-op when no file is configured.
func WriteReportToFile(results []orchestration.SearchResult, source string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Parallel Search Report\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Dataset: %s\n", source)
	fmt.Fprintf(file, "# Searches: %d\n\n", len(results))
	fmt.Fprintf(file, "target\tworkers\tfound\tscanned\tduration\terror\n")
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(file, "%d\t%d\t%t\t%d\t%s\t%s\n",
			r.Target, r.Workers, r.Found, r.Report.Scanned(), r.Duration, errText)
	}
	return file.Sync()
}

// FormatQuietResult formats one result as "target true|false" for scripting.
func FormatQuietResult(result orchestration.SearchResult) string {
	if result.Err != nil {
		return fmt.Sprintf("%d error", result.Target)
	}
	return fmt.Sprintf("%d %t", result.Target, result.Found)
}

// DisplayQuietResults prints one FormatQuietResult line per result.
func DisplayQuietResults(out io.Writer, results []orchestration.SearchResult) {
	for _, r := range results {
		fmt.Fprintln(out, FormatQuietResult(r))
	}
}

// DisplaySavedReport confirms where the report was written.
func DisplaySavedReport(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
}

// DisplayEnvironment prints memory usage around dataset loading and the
// current host load.
func DisplayEnvironment(out io.Writer, loaded metrics.MemoryDelta, heap metrics.MemorySnapshot, host sysmon.Stats) {
	fmt.Fprintf(out, "\n--- Environment ---\n")
	fmt.Fprintf(out, "  Dataset heap:    %s\n", formatSignedBytes(loaded.HeapAlloc))
	fmt.Fprintf(out, "  Live heap:       %s\n", format.FormatBytes(heap.HeapAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d (%s paused)\n", loaded.GCCycles, loaded.GCPause)
	fmt.Fprintf(out, "  Goroutines:      %d\n", heap.Goroutines)
	fmt.Fprintf(out, "  CPUs:            %d logical, %d physical\n", host.LogicalCPUs, host.PhysicalCPUs)
	fmt.Fprintf(out, "  Host load:       CPU %.1f%%, memory %.1f%%\n", host.CPUPercent, host.MemPercent)
}

func formatSignedBytes(n int64) string {
	if n < 0 {
		return "-" + format.FormatBytes(uint64(-n))
	}
	return format.FormatBytes(uint64(n))
}

// DisplayExecutionConfig prints what is about to be searched.
func DisplayExecutionConfig(out io.Writer, source string, length int, targets []int64, workerCounts []int, timeout time.Duration) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Dataset: %s%s%s (%s elements).\n",
		ui.ColorCyan(), source, ui.ColorReset(), format.FormatCount(int64(length)))
	fmt.Fprintf(out, "Targets: %s%s%s, timeout %s%s%s.\n",
		ui.ColorMagenta(), joinInts(targets), ui.ColorReset(), ui.ColorYellow(), timeout, ui.ColorReset())
	if len(workerCounts) == 1 {
		fmt.Fprintf(out, "Execution mode: single search per target with %s%d%s workers.\n",
			ui.ColorGreen(), workerCounts[0], ui.ColorReset())
	} else {
		fmt.Fprintf(out, "Execution mode: comparison of %s%d%s worker counts (%s).\n",
			ui.ColorGreen(), len(workerCounts), ui.ColorReset(), joinInts(workerCounts))
	}
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

func joinInts[T int | int64](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
