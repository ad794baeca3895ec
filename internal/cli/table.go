package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/parsearch/internal/format"
	"github.com/agbru/parsearch/internal/search"
	"github.com/agbru/parsearch/internal/ui"
)

// RenderSegmentTable renders one row per worker: its segment bounds, the
// elements it compared and how it stopped.
func RenderSegmentTable(report search.Report) string {
	styles := ui.CurrentTableStyles()

	rows := make([][]string, 0, len(report.Segments))
	for _, s := range report.Segments {
		rows = append(rows, []string{
			strconv.Itoa(s.Segment.Index),
			format.FormatCount(int64(s.Segment.Begin)),
			format.FormatCount(int64(s.Segment.End)),
			format.FormatCount(int64(s.Scanned)),
			format.FormatPercent(s.Scanned, s.Segment.Len()),
			s.Outcome.String(),
		})
	}

	const outcomeCol = 5
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers("Segment", "Begin", "End", "Scanned", "Coverage", "Outcome").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			if col != outcomeCol || row < 0 || row >= len(report.Segments) {
				return styles.Cell
			}
			switch report.Segments[row].Outcome {
			case search.OutcomeMatched:
				return styles.Match
			case search.OutcomeEarlyExit:
				return styles.Skipped
			case search.OutcomeFaulted:
				return styles.Fault
			}
			return styles.Cell
		})
	return t.Render()
}
