package output

import "fmt"

// HighlightClass selects the SGR color applied to a hex byte and its
// ASCII gutter cell (spec.md GLOSSARY).
type HighlightClass int

const (
	HexMatch HighlightClass = iota
	HexLine
	HexContextMatch
	HexContextLine
)

// hexColorSGR mirrors ugrep's four-class hex color table; used only
// when the attached Writer hasn't been told to strip color.
var hexColorSGR = [...]string{
	HexMatch:        "\x1b[1;31m",
	HexLine:         "\x1b[1m",
	HexContextMatch: "\x1b[31m",
	HexContextLine:  "",
}

const hexUnwritten = -1

// HexDumper emits byte-offset-aligned hex+ASCII dumps with four
// highlight classes and `*`-compressed duplicate-line elision (spec.md
// §4.2).
type HexDumper struct {
	w       *Writer
	columns int

	offset int64

	rowBytes []int // sentinel hexUnwritten means "unwritten column"
	rowClass []HighlightClass
	rowStart int64

	prevBytes []int
	prevClass []HighlightClass
	prevValid bool

	elided bool
	color  bool
}

// NewHexDumper creates a dumper with the given columns-per-row,
// clamped to [1, MaxHexColumns] (default 16).
func NewHexDumper(w *Writer, columns int) *HexDumper {
	if columns <= 0 {
		columns = 16
	}
	if columns > 64 {
		columns = 64
	}
	h := &HexDumper{
		w:       w,
		columns: columns,
		color:   true,
	}
	h.done()
	return h
}

// SetColor enables or disables SGR color codes in the hex gutter.
func (h *HexDumper) SetColor(on bool) {
	h.color = on
}

func (h *HexDumper) resetRow(start int64) {
	h.rowStart = start
	h.rowBytes = make([]int, h.columns)
	h.rowClass = make([]HighlightClass, h.columns)
	for i := range h.rowBytes {
		h.rowBytes[i] = hexUnwritten
	}
}

// Hex accumulates span into the current row under the given highlight
// mode at byte_offset, emitting completed rows as they fill.
func (h *HexDumper) Hex(mode HighlightClass, byteOffset int64, span []byte) {
	if len(span) == 0 {
		return
	}
	off := byteOffset
	for _, b := range span {
		col := int(off % int64(h.columns))
		rowStart := off - int64(col)
		if rowStart != h.rowStart {
			h.completeRow()
			h.resetRow(rowStart)
		}
		h.rowBytes[col] = int(b)
		h.rowClass[col] = mode
		off++
		if col == h.columns-1 {
			h.completeRow()
			h.resetRow(rowStart + int64(h.columns))
		}
	}
	h.offset = off
}

// Next checks whether newOffset falls in a different row than the
// current one; if so, completes the current row (padding unset columns
// as absent) before starting a new one.
func (h *HexDumper) Next(newOffset int64) {
	rowStart := newOffset - newOffset%int64(h.columns)
	if h.rowStart != rowStart && !h.rowEmpty() {
		h.completeRow()
		h.resetRow(rowStart)
	} else if h.rowEmpty() {
		h.rowStart = rowStart
	}
}

// Complete forces completion if the current row is partial and off has
// moved beyond it.
func (h *HexDumper) Complete(off int64) {
	if h.rowEmpty() {
		return
	}
	rowStart := off - off%int64(h.columns)
	if rowStart > h.rowStart {
		h.completeRow()
		h.resetRow(rowStart)
	}
}

// Done finalizes unconditionally and resets the column sentinel array.
func (h *HexDumper) done() {
	if !h.rowEmpty() {
		h.completeRow()
	}
	h.resetRow(0)
	h.prevBytes = nil
	h.prevClass = nil
	h.prevValid = false
	h.elided = false
	h.offset = 0
}

// Done is the exported finalizer, used by Worker at end-of-file.
func (h *HexDumper) Done() {
	h.done()
}

func (h *HexDumper) rowEmpty() bool {
	for _, b := range h.rowBytes {
		if b != hexUnwritten {
			return false
		}
	}
	return true
}

func (h *HexDumper) rowsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// completeRow emits the current row, or a single `*` if it exactly
// matches the previously emitted row (byte values and highlight
// classes), per spec.md §4.2 "`*` elision".
func (h *HexDumper) completeRow() {
	if h.rowEmpty() {
		return
	}

	if h.prevValid && h.rowsEqual(h.rowBytes, h.prevBytes) && classesEqual(h.rowClass, h.prevClass) {
		if !h.elided {
			h.w.Str("*\n")
			h.elided = true
		}
		h.prevBytes = append([]int(nil), h.rowBytes...)
		h.prevClass = append([]HighlightClass(nil), h.rowClass...)
		return
	}

	h.elided = false
	h.emitRow()

	h.prevBytes = append([]int(nil), h.rowBytes...)
	h.prevClass = append([]HighlightClass(nil), h.rowClass...)
	h.prevValid = true
}

func classesEqual(a, b []HighlightClass) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h *HexDumper) emitRow() {
	h.w.Str(fmt.Sprintf("%08x ", h.rowStart))

	for i, b := range h.rowBytes {
		if i > 0 && i%8 == 0 {
			h.w.Byte(' ')
		}
		if b == hexUnwritten {
			h.w.Str("   ")
			continue
		}
		if h.color {
			if c := hexColorSGR[h.rowClass[i]]; c != "" {
				h.w.Str(c)
			}
		}
		h.w.Str(fmt.Sprintf("%02x", b))
		if h.color {
			h.w.Str("\x1b[0m")
		}
		h.w.Byte(' ')
	}

	h.w.Str(" ")
	for _, b := range h.rowBytes {
		if b == hexUnwritten {
			h.w.Byte(' ')
			continue
		}
		if b >= 0x20 && b <= 0x7e {
			h.w.Byte(byte(b))
		} else {
			h.w.Byte('.')
		}
	}
	h.w.Str("\n")
}
