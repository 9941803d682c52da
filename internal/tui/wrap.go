package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// column is one settings group rendered as plain lines; styled holds the same
// lines with colors applied.
type column struct {
	plain  []string
	styled []string
}

func (c column) width() int {
	w := 0
	for _, line := range c.plain {
		if lw := runewidth.StringWidth(line); lw > w {
			w = lw
		}
	}
	return w
}

// packColumns greedily fills rows with column indexes so that each row fits
// in width, counting gap cells between columns. A column wider than width
// gets a row of its own.
func packColumns(widths []int, width, gap int) [][]int {
	var rows [][]int
	var row []int
	rowWidth := 0
	for i, w := range widths {
		extra := w
		if len(row) > 0 {
			extra += gap
		}
		if width > 0 && len(row) > 0 && rowWidth+extra > width {
			rows = append(rows, row)
			row = nil
			rowWidth = 0
			extra = w
		}
		row = append(row, i)
		rowWidth += extra
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func renderColumns(cols []column, width, gap int) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = c.width()
	}
	rows := packColumns(widths, width, gap)
	spacer := strings.Repeat(" ", gap)

	blocks := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row)*2)
		for j, idx := range row {
			if j > 0 {
				parts = append(parts, spacer)
			}
			lines := make([]string, len(cols[idx].styled))
			for k, line := range cols[idx].styled {
				lines[k] = padRight(line, cols[idx].plain[k], widths[idx])
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return strings.Join(blocks, "\n\n")
}

func padRight(styled, plain string, width int) string {
	w := runewidth.StringWidth(plain)
	if w >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-w)
}
