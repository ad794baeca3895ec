// Package ui provides theme and color support for the parsearch terminal
// output. It defines ANSI color schemes, escape code helpers and lipgloss
// table styles shared by the CLI presenters.
package ui
