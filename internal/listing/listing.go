// Package listing renders the character selection as plain text tables.
package listing

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/kanadrill/internal/kana"
	"github.com/verte-zerg/kanadrill/internal/selection"
)

const terminalWidthBackup = 80

// TerminalWidth returns the width of stdout, or a fallback when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderGroups prints one row per group with its enabled count and members.
// Disabled members are bracketed. When the full table does not fit in width,
// romanizations are dropped.
func RenderGroups(w io.Writer, state *selection.State, width int) error {
	groups := kana.Groups()
	lines := groupTable(groups, state, true)
	if width > 0 && maxWidth(lines) > width {
		lines = groupTable(groups, state, false)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	enabled, total := state.Count()
	_, err := fmt.Fprintf(w, "\n%d of %d characters selected\n", enabled, total)
	return err
}

func groupTable(groups []kana.Group, state *selection.State, withRomaji bool) []string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		on := 0
		cells := make([]string, 0, len(g.Characters))
		for _, ch := range g.Characters {
			label := ch.Glyph
			if withRomaji {
				label += " " + ch.Romaji
			}
			if state.Enabled(ch.Glyph) {
				on++
			} else {
				label = "[" + label + "]"
			}
			cells = append(cells, label)
		}
		rows = append(rows, []string{
			g.Key(),
			g.Name,
			fmt.Sprintf("%d/%d", on, len(g.Characters)),
			strings.Join(cells, "  "),
		})
	}
	return formatTable([]string{"Key", "Group", "On", "Characters"}, rows, map[int]bool{2: true})
}

func maxWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		if lw := displayWidth(line); lw > w {
			w = lw
		}
	}
	return w
}
