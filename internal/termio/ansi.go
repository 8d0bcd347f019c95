package termio

import "github.com/gdamore/tcell/v2"

// styledRun is one maximal run of text sharing a single tcell.Style,
// decoded from a raw result line's embedded ANSI SGR sequences.
type styledRun struct {
	text  []byte
	style tcell.Style
}

// decodeLine splits raw into styled runs, interpreting CSI "...m" SGR
// sequences and skipping NUL-triplet filename framing bytes and OSC
// hyperlink sequences, mirroring the ESC/CSI/OSC states
// output.Writer's width-truncation scanner recognizes (internal
// /output/flush.go's ansiState), but driving a tcell.Style
// accumulator instead of a column counter. In mono mode the
// sequences are consumed but never applied, which is how "colors off
// strips ANSI sequences at emit time" (spec.md §4.5) is realized on
// the rendering side.
func decodeLine(raw []byte, base tcell.Style, mono bool) []styledRun {
	var runs []styledRun
	style := base
	var cur []byte

	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, styledRun{text: cur, style: style})
			cur = nil
		}
	}

	i := 0
	for i < len(raw) {
		b := raw[i]
		switch {
		case b == 0x00:
			// NUL-triplet filename framing carries no display text of
			// its own; Viewport's filename detection reads it out of
			// band (spec.md §4.7).
			i++
		case b == 0x1b && i+1 < len(raw) && raw[i+1] == '[':
			end := i + 2
			for end < len(raw) && !(raw[end] >= 0x40 && raw[end] <= 0x7e) {
				end++
			}
			if end >= len(raw) {
				i = len(raw)
				break
			}
			if !mono && raw[end] == 'm' {
				flush()
				style = applySGR(style, raw[i+2:end])
			}
			i = end + 1
		case b == 0x1b && i+1 < len(raw) && raw[i+1] == ']':
			end := i + 2
			for end < len(raw) {
				if raw[end] == 0x07 {
					end++
					break
				}
				if raw[end] == 0x1b && end+1 < len(raw) && raw[end+1] == '\\' {
					end += 2
					break
				}
				end++
			}
			i = end
		default:
			cur = append(cur, b)
			i++
		}
	}
	flush()
	return runs
}

// applySGR folds one CSI "...m" parameter list onto style.
func applySGR(style tcell.Style, params []byte) tcell.Style {
	codes := splitSGRParams(params)
	for idx := 0; idx < len(codes); idx++ {
		code := codes[idx]
		switch {
		case code == 0:
			style = tcell.StyleDefault
		case code == 1:
			style = style.Bold(true)
		case code == 4:
			style = style.Underline(true)
		case code == 7:
			style = style.Reverse(true)
		case code == 22:
			style = style.Bold(false)
		case code == 24:
			style = style.Underline(false)
		case code == 27:
			style = style.Reverse(false)
		case code >= 30 && code <= 37:
			style = style.Foreground(ansiColor(code - 30))
		case code == 39:
			style = style.Foreground(tcell.ColorDefault)
		case code >= 40 && code <= 47:
			style = style.Background(ansiColor(code - 40))
		case code == 49:
			style = style.Background(tcell.ColorDefault)
		case code >= 90 && code <= 97:
			style = style.Foreground(ansiBrightColor(code - 90))
		case code >= 100 && code <= 107:
			style = style.Background(ansiBrightColor(code - 100))
		case code == 38 && idx+2 < len(codes) && codes[idx+1] == 5:
			style = style.Foreground(tcell.PaletteColor(codes[idx+2]))
			idx += 2
		case code == 48 && idx+2 < len(codes) && codes[idx+1] == 5:
			style = style.Background(tcell.PaletteColor(codes[idx+2]))
			idx += 2
		}
	}
	return style
}

// splitSGRParams parses a ';'-delimited byte run of decimal SGR
// parameters, treating a missing or empty parameter as 0 (e.g. bare
// "\x1b[m" means "\x1b[0m").
func splitSGRParams(params []byte) []int {
	if len(params) == 0 {
		return []int{0}
	}
	var out []int
	start := 0
	for i := 0; i <= len(params); i++ {
		if i == len(params) || params[i] == ';' {
			seg := params[start:i]
			n := 0
			for _, b := range seg {
				if b < '0' || b > '9' {
					n = 0
					break
				}
				n = n*10 + int(b-'0')
			}
			out = append(out, n)
			start = i + 1
		}
	}
	return out
}

var ansiBase = [8]tcell.Color{
	tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
	tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
}

var ansiBright = [8]tcell.Color{
	tcell.ColorGray, tcell.ColorRed, tcell.ColorLime, tcell.ColorYellow,
	tcell.ColorBlue, tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorWhite,
}

func ansiColor(idx int) tcell.Color {
	if idx < 0 || idx >= len(ansiBase) {
		return tcell.ColorDefault
	}
	return ansiBase[idx]
}

func ansiBrightColor(idx int) tcell.Color {
	if idx < 0 || idx >= len(ansiBright) {
		return tcell.ColorDefault
	}
	return ansiBright[idx]
}
