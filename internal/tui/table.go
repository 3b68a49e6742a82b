package tui

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Ellipsis marks truncated cells.
const Ellipsis = "…"

// DisplayWidth is the terminal cell width of s. Wide runes count as two.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	if gap := width - DisplayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Truncate shortens s to at most width display cells, ending in an ellipsis
// when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = DisplayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], DisplayWidth(cell))
			}
		}
	}
	return widths
}

// TerminalWidth returns the width of stdout, or DefaultWidth when stdout
// is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}
