package termio

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/polluks/ugrep/internal/query"
)

// modeLabel names the bracketed indicator drawn at the right end of
// the status line.
func modeLabel(m query.Mode) string {
	switch m {
	case query.ModeList:
		return "LIST"
	case query.ModeEdit:
		return "EDIT"
	case query.ModeHelp:
		return "HELP"
	default:
		return "QUERY"
	}
}

// drawStatusLine paints row 0: the RegexError banner when one is set
// (spec.md §7 "RegexError": an inverted banner with the offending
// column marked), otherwise the pattern prompt with its cursor panned
// into view and a trailing mode indicator.
func (s *Screen) drawStatusLine(w int) {
	base := tcell.StyleDefault.Background(s.theme.StatusBg).Foreground(s.theme.StatusFg)

	if err := s.qc.Error(); err != nil {
		errStyle := tcell.StyleDefault.Background(s.theme.ErrorBg).Foreground(s.theme.ErrorFg).Bold(true)
		s.fillRow(0, w, 0, errStyle)
		text := fmt.Sprintf("regex error (col %d): %s", err.Column, err.Message)
		s.drawTextLine(0, 0, w, s.truncateToWidth(text, w), errStyle)
		s.scr.HideCursor()
		return
	}

	s.fillRow(0, w, 0, base)

	label := modeLabel(s.qc.Mode())
	labelWidth := s.measureWidth(label) + 2
	promptWidth := w - labelWidth
	if promptWidth < 1 {
		promptWidth = 1
	}

	s.qc.SetStatusWidth(promptWidth - 2)
	text, dispCol, pan := s.qc.Pattern()

	const prompt = "> "
	x := s.drawTextLine(0, 0, len(prompt), prompt, base.Bold(true))
	cursorX := x + (dispCol - pan)
	s.drawRuns(x, 0, promptWidth-len(prompt), pan, []styledRun{{text: []byte(text), style: base}})

	labelStyle := base.Bold(true).Reverse(true)
	s.drawTextLine(w-labelWidth, 0, labelWidth, " "+label+" ", labelStyle)

	if s.qc.Mode() == query.ModeQuery {
		s.scr.ShowCursor(cursorX, 0)
	} else {
		s.scr.HideCursor()
	}

	if msg := s.qc.TakeMessage(); msg != "" {
		s.scr.Beep()
	}
}

// drawResults paints the Viewport window starting at row 1: each
// source line decoded into styled runs (decodeLine), panned
// horizontally by Viewport.Skip, with selection and highlight styling
// layered per row (spec.md §4.7 "Viewport model").
func (s *Screen) drawResults(w, h int) {
	base := tcell.StyleDefault.Background(s.theme.Background).Foreground(s.theme.Foreground)
	rows := h - 1
	if rows < 0 {
		rows = 0
	}
	for y := 0; y < rows; y++ {
		s.fillRow(0, w, y+1, base)
	}

	vp := s.qc.Viewport()
	top := vp.Row()
	skip := vp.Skip()
	sel := vp.SelectedRow()

	editRow, editText, editCursor, editing := s.qc.EditRow()

	for i := 0; i < rows; i++ {
		idx := top + i
		if idx >= vp.Len() {
			break
		}
		y := i + 1

		style := base
		switch {
		case idx == sel:
			style = tcell.StyleDefault.Background(s.theme.HighlightBg).Foreground(s.theme.HighlightFg)
		case vp.Selected(idx):
			style = tcell.StyleDefault.Background(s.theme.SelectionBg).Foreground(s.theme.SelectionFg)
		}

		if editing && idx == editRow {
			s.fillRow(0, w, y, style)
			s.drawRuns(0, y, w, skip, []styledRun{{text: editText, style: style}})
			if s.qc.Mode() == query.ModeEdit {
				col := byteOffsetToDisplayCol(s, editText, editCursor) - skip
				if col >= 0 && col < w {
					s.scr.ShowCursor(col, y)
				}
			}
			continue
		}

		runs := decodeLine(vp.Line(idx), style, s.mono)
		s.fillRow(0, w, y, style)
		s.drawRuns(0, y, w, skip, runs)
	}
}

// drawRuns draws runs starting skip display columns into the logical
// line, clipped to [x0, x0+maxWidth).
func (s *Screen) drawRuns(x0, y, maxWidth, skip int, runs []styledRun) {
	col := 0
	x := x0
	for _, run := range runs {
		b := run.text
		for len(b) > 0 {
			r, size := utf8.DecodeRune(b)
			if r == utf8.RuneError && size <= 1 {
				r = rune(b[0])
				size = 1
			}
			b = b[size:]

			width := s.cachedRuneWidth(r)
			if width < 0 {
				width = 0
			}
			if col+width <= skip {
				col += width
				continue
			}
			if x-x0 >= maxWidth {
				return
			}
			x = s.drawStyledRune(x, y, x0+maxWidth, r, run.style)
			col += width
		}
	}
}

// byteOffsetToDisplayCol measures the display width of text[:offset],
// treating any invalid UTF-8 byte as a one-column rune so EDIT mode's
// cursor still lands somewhere sensible over raw framing bytes.
func byteOffsetToDisplayCol(s *Screen, text []byte, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	b := text[:offset]
	col := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			col++
			b = b[1:]
			continue
		}
		w := s.cachedRuneWidth(r)
		if w < 0 {
			w = 0
		}
		col += w
		b = b[size:]
	}
	return col
}
