package termio

import "github.com/gdamore/tcell/v2"

// ColorTheme names the styles the terminal surface uses, mirroring
// the teacher's ColorTheme but for result/status roles instead of a
// file browser's.
type ColorTheme struct {
	Background tcell.Color
	Foreground tcell.Color

	StatusBg tcell.Color
	StatusFg tcell.Color

	ErrorBg tcell.Color
	ErrorFg tcell.Color

	HighlightBg tcell.Color
	HighlightFg tcell.Color

	SelectionBg tcell.Color
	SelectionFg tcell.Color

	MarkerFg tcell.Color
}

// DefaultColorTheme returns the color scheme used when the terminal
// supports color (Config.Color != ColorOff).
func DefaultColorTheme() ColorTheme {
	return ColorTheme{
		Background:  tcell.ColorDefault,
		Foreground:  tcell.ColorDefault,
		StatusBg:    tcell.Color33,
		StatusFg:    tcell.ColorWhite,
		ErrorBg:     tcell.ColorMaroon,
		ErrorFg:     tcell.ColorWhite,
		HighlightBg: tcell.ColorYellow,
		HighlightFg: tcell.ColorBlack,
		SelectionBg: tcell.Color33,
		SelectionFg: tcell.ColorWhite,
		MarkerFg:    tcell.Color51,
	}
}

// MonoColorTheme returns the degenerate theme used in mono mode
// (Config.Color == ColorOff): every role collapses onto the
// terminal's own default attributes, matching the "colors off strips
// ANSI sequences at emit time" rendering policy (spec.md §4.5).
func MonoColorTheme() ColorTheme {
	return ColorTheme{
		Background:  tcell.ColorDefault,
		Foreground:  tcell.ColorDefault,
		StatusBg:    tcell.ColorDefault,
		StatusFg:    tcell.ColorDefault,
		ErrorBg:     tcell.ColorDefault,
		ErrorFg:     tcell.ColorDefault,
		HighlightBg: tcell.ColorDefault,
		HighlightFg: tcell.ColorDefault,
		SelectionBg: tcell.ColorDefault,
		SelectionFg: tcell.ColorDefault,
		MarkerFg:    tcell.ColorDefault,
	}
}
