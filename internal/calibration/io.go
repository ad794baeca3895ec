package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/parsearch/internal/format"
	"github.com/agbru/parsearch/internal/ui"
)

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []Result, bestWorkers int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sWorkers%s      │ %sFastest Search%s\n", ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 25))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
			if res.Duration == 0 {
				durationStr = "< 1µs"
			}
		}
		highlight := ""
		if res.Workers == bestWorkers && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12d%s │ %s%s%s%s\n", ui.ColorCyan(), res.Workers, ui.ColorReset(), ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}

// printCalibrationOutput reports the saved profile.
func printCalibrationOutput(out io.Writer, profile *CalibrationProfile, path string) {
	fmt.Fprintf(out, "\n%sCalibration%s: optimal workers=%s%d%s for %d elements (took %s).\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), profile.OptimalWorkers, ui.ColorReset(),
		profile.DatasetSize, profile.CalibrationTime)
	fmt.Fprintf(out, "Profile saved to %s%s%s\n", ui.ColorCyan(), path, ui.ColorReset())
}
