package termio

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

// buildHelpLines renders the static HELP overlay body, sectioned the
// way the teacher's help overlay is (internal/ui/render
// /help_overlay.go), but describing this package's own key bindings
// and the flag-toggle table instead of a file browser's.
func buildHelpLines() []string {
	sections := []helpSection{
		{
			title: "Navigation",
			entries: []helpEntry{
				{keys: "↑/↓", desc: "Move highlighted row"},
				{keys: "PgUp/PgDn", desc: "Scroll one page"},
				{keys: "Ctrl+S/Ctrl+W", desc: "Next/previous filename marker"},
				{keys: "Ctrl+L", desc: "Redraw"},
			},
		},
		{
			title: "Query",
			entries: []helpEntry{
				{keys: "(type)", desc: "Edit the pattern line"},
				{keys: "←/→", desc: "Move the edit cursor"},
				{keys: "Backspace", desc: "Delete before cursor"},
				{keys: "Enter", desc: "Enter LIST mode"},
			},
		},
		{
			title: "List / Edit",
			entries: []helpEntry{
				{keys: "Enter", desc: "Toggle selection, advance (LIST)"},
				{keys: "Ctrl+E", desc: "Edit highlighted row (LIST -> EDIT)"},
				{keys: "Enter", desc: "Commit row edit (EDIT)"},
				{keys: "Esc", desc: "Discard row edit / back to QUERY"},
			},
		},
		{
			title: "Bookmark & Files",
			entries: []helpEntry{
				{keys: "Ctrl+X / F3", desc: "Mark current row"},
				{keys: "Ctrl+R / F4", desc: "Jump to mark"},
				{keys: "Ctrl+Y / F2", desc: "Open file under cursor in $GREP_EDIT/$EDITOR"},
			},
		},
		{
			title: "Flags",
			entries: []helpEntry{
				{keys: "A/B/C", desc: "Context after/before/around (exclusive)"},
				{keys: "1-9", desc: "Recursion depth (exclusive, implies recurse)"},
				{keys: "r/R", desc: "Recurse / recurse symlinks (exclusive)"},
			},
		},
		{
			title: "Exit",
			entries: []helpEntry{
				{keys: "F1", desc: "Toggle this help"},
				{keys: "Esc", desc: "Close this help / quit QUERY"},
				{keys: "Ctrl+C / Ctrl+Q", desc: "Quit"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, e := range section.entries {
			lines = append(lines, fmt.Sprintf("  %-20s %s", e.keys, e.desc))
		}
	}
	return lines
}

// drawHelp paints the full-screen HELP overlay.
func (s *Screen) drawHelp(w, h int) {
	base := tcell.StyleDefault.Background(s.theme.Background).Foreground(s.theme.Foreground)
	for y := 0; y < h; y++ {
		s.fillRow(0, w, y, base)
	}

	title := " Help "
	headerStyle := base.Background(s.theme.StatusBg).Foreground(s.theme.StatusFg).Bold(true)
	titleWidth := s.measureWidth(title)
	titleStart := 0
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	s.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	maxRow := h - 1
	for _, line := range buildHelpLines() {
		if row >= maxRow {
			break
		}
		text := s.truncateToWidth(strings.TrimRight(line, " "), w-4)
		s.drawTextLine(2, row, w-4, text, base)
		row++
	}

	footer := "F1 toggle · Esc close"
	s.drawTextLine(0, h-1, w, s.truncateToWidth(footer, w), headerStyle)
}
