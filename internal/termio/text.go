package termio

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

func (s *Screen) cachedRuneWidth(ru rune) int {
	if ru < 128 {
		s.runeWidthCacheMu.RLock()
		width := s.runeWidthCache[ru]
		s.runeWidthCacheMu.RUnlock()

		if width == 0 && ru != 0 {
			actualWidth := runewidth.RuneWidth(ru)
			if actualWidth < 0 {
				actualWidth = 0
			}
			s.runeWidthCacheMu.Lock()
			s.runeWidthCache[ru] = actualWidth + 1
			s.runeWidthCacheMu.Unlock()
			return actualWidth
		}
		return width - 1
	}

	if cached, ok := s.runeWidthWide.Load(ru); ok {
		return cached.(int)
	}

	width := runewidth.RuneWidth(ru)
	if width < 0 {
		width = 0
	}
	s.runeWidthWide.Store(ru, width)
	return width
}

func (s *Screen) measureWidth(text string) int {
	width := 0
	for _, ru := range text {
		width += s.cachedRuneWidth(ru)
	}
	return width
}

// truncateToWidth clips text to maxWidth display columns, replacing
// the tail with an ellipsis when it doesn't fit whole.
func (s *Screen) truncateToWidth(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if s.measureWidth(text) <= maxWidth {
		return text
	}

	const ellipsis = "…"
	ellipsisWidth := s.cachedRuneWidth([]rune(ellipsis)[0])
	if ellipsisWidth <= 0 {
		ellipsisWidth = 1
	}
	if maxWidth <= ellipsisWidth {
		return ellipsis
	}

	available := maxWidth - ellipsisWidth
	var b strings.Builder
	width := 0
	for _, ru := range text {
		w := s.cachedRuneWidth(ru)
		if width+w > available {
			break
		}
		b.WriteRune(ru)
		width += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// drawTextLine draws text starting at (startX, y), never exceeding
// maxWidth display columns, and returns the column one past the last
// cell written.
func (s *Screen) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	runes := []rune(text)
	i := 0

	for i < len(runes) {
		if x-startX >= maxWidth {
			break
		}
		mainc := runes[i]
		i++

		var combc []rune
		for i < len(runes) && s.cachedRuneWidth(runes[i]) < 0 {
			combc = append(combc, runes[i])
			i++
		}

		s.scr.SetContent(x, y, mainc, combc, style)
		w := s.cachedRuneWidth(mainc)
		if w < 0 {
			w = 0
		}
		x += w
	}
	return x
}

// drawStyledRune draws one rune, padding any extra display cells a
// wide rune occupies, and returns the column past it.
func (s *Screen) drawStyledRune(x, y, maxX int, ru rune, style tcell.Style) int {
	if x >= maxX {
		return x
	}
	width := s.cachedRuneWidth(ru)
	if width <= 0 {
		width = 1
	}
	s.scr.SetContent(x, y, ru, nil, style)
	for w := 1; w < width && x+w < maxX; w++ {
		s.scr.SetContent(x+w, y, ' ', nil, style)
	}
	return x + width
}

// fillRow paints columns [x0, x1) on row y with style, clearing the
// row before a redraw.
func (s *Screen) fillRow(x0, x1, y int, style tcell.Style) {
	for x := x0; x < x1; x++ {
		s.scr.SetContent(x, y, ' ', nil, style)
	}
}
