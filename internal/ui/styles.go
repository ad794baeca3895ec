package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// TableStyles are the lipgloss styles used to render tabular output such as
// the per-segment statistics of a search.
type TableStyles struct {
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Match   lipgloss.Style
	Skipped lipgloss.Style
	Fault   lipgloss.Style
}

// CurrentTableStyles returns table styles matching the active theme. With the
// no-color theme every style renders plain text.
func CurrentTableStyles() TableStyles {
	cell := lipgloss.NewStyle().Padding(0, 1)

	p := darkPalette
	switch GetCurrentTheme().Name {
	case NoColorTheme.Name:
		return TableStyles{
			Header:  cell.Bold(true),
			Cell:    cell,
			Border:  lipgloss.NewStyle(),
			Match:   cell,
			Skipped: cell,
			Fault:   cell,
		}
	case LightTheme.Name:
		p = lightPalette
	}

	return TableStyles{
		Header:  cell.Bold(true).Foreground(color(p.accent)),
		Cell:    cell.Foreground(color(p.text)),
		Border:  lipgloss.NewStyle().Foreground(color(p.dim)),
		Match:   cell.Foreground(color(p.success)).Bold(true),
		Skipped: cell.Foreground(color(p.warning)),
		Fault:   cell.Foreground(color(p.failure)).Bold(true),
	}
}

func color(c int) lipgloss.Color { return lipgloss.Color(strconv.Itoa(c)) }
