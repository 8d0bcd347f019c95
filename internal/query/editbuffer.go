package query

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// editBufferCap mirrors ugrep's QUERY_MAX_LEN pattern-line capacity.
const editBufferCap = 1024

// EditBuffer is the fixed-capacity pattern line described in spec.md
// §3 "Edit buffer": a byte column and a display column, kept apart
// because of multi-byte and double-width characters.
type EditBuffer struct {
	buf     []byte
	byteCol int
	dispCol int
	offset  int // horizontal pan, shifted when the cursor nears the right edge
}

// NewEditBuffer returns an empty buffer.
func NewEditBuffer() *EditBuffer {
	return &EditBuffer{buf: make([]byte, 0, editBufferCap)}
}

// Text returns the current pattern text.
func (e *EditBuffer) Text() string { return string(e.buf) }

// ByteColumn and DisplayColumn report the cursor's two column measures.
func (e *EditBuffer) ByteColumn() int    { return e.byteCol }
func (e *EditBuffer) DisplayColumn() int { return e.dispCol }

// Reset clears the buffer and cursor.
func (e *EditBuffer) Reset() {
	e.buf = e.buf[:0]
	e.byteCol = 0
	e.dispCol = 0
	e.offset = 0
}

// Insert inserts r at the cursor, reporting false (and ringing the
// caller's bell) on overflow — spec.md §7 "InputTooLong": drop the
// excess, leave buffer and cursor consistent.
func (e *EditBuffer) Insert(r rune) bool {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	if len(e.buf)+n > editBufferCap {
		return false
	}
	e.buf = append(e.buf[:e.byteCol], append(append([]byte(nil), enc[:n]...), e.buf[e.byteCol:]...)...)
	e.byteCol += n
	w := runewidth.RuneWidth(r)
	if w < 0 {
		w = 0
	}
	e.dispCol += w
	return true
}

// Backspace deletes the rune immediately before the cursor.
func (e *EditBuffer) Backspace() bool {
	if e.byteCol == 0 {
		return false
	}
	prevByteCol, prevDispCol := e.prevBoundary()
	e.buf = append(e.buf[:prevByteCol], e.buf[e.byteCol:]...)
	e.byteCol = prevByteCol
	e.dispCol = prevDispCol
	return true
}

// prevBoundary scans back from byteCol to the start of the previous
// rune, returning the byte and display columns at that boundary.
func (e *EditBuffer) prevBoundary() (int, int) {
	i := e.byteCol
	for i > 0 {
		i--
		if utf8.RuneStart(e.buf[i]) {
			break
		}
	}
	r, _ := utf8.DecodeRune(e.buf[i:e.byteCol])
	w := runewidth.RuneWidth(r)
	if w < 0 {
		w = 0
	}
	return i, e.dispCol - w
}

// MoveLeft and MoveRight step the cursor by one display column,
// skipping past continuation bytes and the second cell of a wide
// character as spec.md §4.5 "Cursor and column policy" requires.
func (e *EditBuffer) MoveLeft() {
	if e.byteCol == 0 {
		return
	}
	b, d := e.prevBoundary()
	e.byteCol, e.dispCol = b, d
}

func (e *EditBuffer) MoveRight() {
	if e.byteCol >= len(e.buf) {
		return
	}
	r, size := utf8.DecodeRune(e.buf[e.byteCol:])
	w := runewidth.RuneWidth(r)
	if w < 0 {
		w = 0
	}
	e.byteCol += size
	e.dispCol += w
}

// shiftMargin is how close the cursor may get to the right edge of a
// view of viewWidth columns before the pan offset shifts.
const shiftMargin = 4

// Pan reports the current horizontal pan offset.
func (e *EditBuffer) Pan() int { return e.offset }

// SetPan adjusts the pan offset so the cursor stays at least
// shiftMargin columns from the right edge of a viewWidth-wide field.
func (e *EditBuffer) SetPan(viewWidth int) {
	if viewWidth <= 0 {
		return
	}
	if e.dispCol-e.offset > viewWidth-shiftMargin {
		e.offset = e.dispCol - (viewWidth - shiftMargin)
	}
	if e.dispCol-e.offset < shiftMargin {
		e.offset = e.dispCol - shiftMargin
	}
	if e.offset < 0 {
		e.offset = 0
	}
}

// lineEditor is the byte-level edit cursor EDIT mode drives over a
// single Viewport row (spec.md §4.5 "EDIT"). Unlike EditBuffer it
// makes no assumption the bytes are well-formed display text: a
// result line may carry raw NUL-triplet filename framing or ANSI
// escapes, and EDIT mode must still be able to position around them.
type lineEditor struct {
	buf []byte
	pos int
}

// newLineEditor seeds a lineEditor from line's current bytes, cursor
// at the end.
func newLineEditor(line []byte) *lineEditor {
	return &lineEditor{buf: append([]byte(nil), line...), pos: len(line)}
}

// Bytes returns the row's current content.
func (le *lineEditor) Bytes() []byte { return le.buf }

// Pos reports the cursor's byte offset into Bytes().
func (le *lineEditor) Pos() int { return le.pos }

// Insert inserts r's UTF-8 encoding at the cursor.
func (le *lineEditor) Insert(r rune) {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	le.buf = append(le.buf[:le.pos], append(append([]byte(nil), enc[:n]...), le.buf[le.pos:]...)...)
	le.pos += n
}

// Backspace deletes the byte run immediately before the cursor back
// to the previous UTF-8 rune boundary, treating any non-UTF-8 byte as
// its own one-byte "rune" so raw framing bytes stay deletable one at a
// time.
func (le *lineEditor) Backspace() bool {
	if le.pos == 0 {
		return false
	}
	i := le.pos - 1
	for i > 0 && !utf8.RuneStart(le.buf[i]) {
		i--
	}
	le.buf = append(le.buf[:i], le.buf[le.pos:]...)
	le.pos = i
	return true
}

// MoveLeft and MoveRight step the cursor by one rune boundary.
func (le *lineEditor) MoveLeft() {
	if le.pos == 0 {
		return
	}
	i := le.pos - 1
	for i > 0 && !utf8.RuneStart(le.buf[i]) {
		i--
	}
	le.pos = i
}

func (le *lineEditor) MoveRight() {
	if le.pos >= len(le.buf) {
		return
	}
	_, size := utf8.DecodeRune(le.buf[le.pos:])
	le.pos += size
}
