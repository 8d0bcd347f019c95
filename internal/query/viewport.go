// Package query implements the interactive query core: QueryController,
// ResultFetcher, and Viewport (spec.md §4.5-§4.7).
package query

// Viewport is a scrollable view over an append-only vector of result
// lines (spec.md §3 "Viewport model").
type Viewport struct {
	lines    [][]byte
	selected []bool

	row  int // top-of-screen row offset
	sel  int // selection index, -1 = no selection
	mark int // bookmark row index
	skip int // horizontal pan offset

	pendingAppend bool // last line's end-of-line has not yet been read

	lastFilename  string
	haveLastName  bool
	filesWithMode bool // Config.FilesWithMatches: selects marker encoding
	degrade       bool // Config.Degrades(): next()/back() fall back to page scroll
}

// NewViewport creates an empty Viewport. filesWithMatches and degrade
// mirror the Config flags that change filename-marker framing and
// next()/back() behavior (spec.md §4.7).
func NewViewport(filesWithMatches, degrade bool) *Viewport {
	return &Viewport{
		sel:           -1,
		filesWithMode: filesWithMatches,
		degrade:       degrade,
	}
}

// Reset discards all lines and selection state in place. The
// interactive restart does not call it: it replaces the Viewport with a
// fresh NewViewport instead (spec.md §4.5 "the prior Viewport is
// discarded").
func (v *Viewport) Reset() {
	v.lines = nil
	v.selected = nil
	v.row = 0
	v.sel = -1
	v.mark = 0
	v.skip = 0
	v.pendingAppend = false
	v.lastFilename = ""
	v.haveLastName = false
}

// Len reports the number of complete and in-progress lines.
func (v *Viewport) Len() int { return len(v.lines) }

// Line returns the raw bytes of line i, including any embedded ANSI
// escapes or NUL-triplet filename framing.
func (v *Viewport) Line(i int) []byte { return v.lines[i] }

// Selected reports whether line i is selected.
func (v *Viewport) Selected(i int) bool { return v.selected[i] }

// ToggleSelect flips the selection state of line i.
func (v *Viewport) ToggleSelect(i int) {
	v.selected[i] = !v.selected[i]
}

// Append adds raw to the line vector. If the previous line was marked
// incomplete (no trailing newline yet read), raw instead continues
// that line in place — the "append-across-boundary" rule ResultFetcher
// relies on (spec.md §4.6). complete is false for a line whose newline
// has not yet arrived.
func (v *Viewport) Append(raw []byte, complete bool) {
	if v.pendingAppend && len(v.lines) > 0 {
		last := len(v.lines) - 1
		v.lines[last] = append(v.lines[last], raw...)
	} else {
		v.lines = append(v.lines, append([]byte(nil), raw...))
		v.selected = append(v.selected, false)
	}
	v.pendingAppend = !complete
}

// Row reports the current top-of-screen row.
func (v *Viewport) Row() int { return v.row }

// SetRow pans the view so row r is at the top, clamped to [0, Len()].
func (v *Viewport) SetRow(r int) {
	if r < 0 {
		r = 0
	}
	if r > len(v.lines) {
		r = len(v.lines)
	}
	v.row = r
}

// Skip reports the horizontal pan offset in characters.
func (v *Viewport) Skip() int { return v.skip }

// Pan adjusts the horizontal pan offset by delta, never going negative.
func (v *Viewport) Pan(delta int) {
	v.skip += delta
	if v.skip < 0 {
		v.skip = 0
	}
}

// SelectedRow reports the currently highlighted row, or -1 if none is
// highlighted yet (the initial state, and the state after Reset).
func (v *Viewport) SelectedRow() int { return v.sel }

// SetSelectedRow sets the highlighted row, clamped to the line vector;
// a negative index clears the highlight.
func (v *Viewport) SetSelectedRow(i int) {
	if i < 0 {
		v.sel = -1
		return
	}
	if i >= len(v.lines) {
		i = len(v.lines) - 1
	}
	v.sel = i
}

// MoveSelection shifts the highlighted row by delta, clamping to the
// line vector, and pans row_ so the new selection stays within a
// rows-tall window (LIST/EDIT navigation; rows<=0 skips panning).
func (v *Viewport) MoveSelection(delta, rows int) {
	if len(v.lines) == 0 {
		v.sel = -1
		return
	}
	if v.sel < 0 {
		v.sel = v.row
	}
	v.sel += delta
	if v.sel < 0 {
		v.sel = 0
	}
	if v.sel >= len(v.lines) {
		v.sel = len(v.lines) - 1
	}
	if rows > 0 {
		if v.sel < v.row {
			v.row = v.sel
		}
		if v.sel >= v.row+rows {
			v.row = v.sel - rows + 1
		}
	}
}

// SetLine replaces row i's bytes wholesale, the mutation EDIT mode
// commits once a row edit finishes (spec.md §4.5 "EDIT").
func (v *Viewport) SetLine(i int, b []byte) {
	if i < 0 || i >= len(v.lines) {
		return
	}
	v.lines[i] = b
}

// CurrentFilename reports the filename marker governing the
// highlighted (or top) row, scanning backward past non-marker lines —
// the file the edit-under-cursor key targets.
func (v *Viewport) CurrentFilename() (string, bool) {
	row := v.sel
	if row < 0 {
		row = v.row
	}
	if row >= len(v.lines) {
		row = len(v.lines) - 1
	}
	for i := row; i >= 0; i-- {
		if name, ok := v.filenameMarker(v.lines[i]); ok {
			return name, true
		}
	}
	return "", false
}

// Mark records row as the bookmark.
func (v *Viewport) Mark(row int) { v.mark = row }

// Bookmark reports the recorded bookmark row.
func (v *Viewport) Bookmark() int { return v.mark }

var (
	nulByte byte = 0x00
	escByte byte = 0x1b
)

// filenameMarker extracts the filename from line if it is a filename
// marker under the current Config.FilesWithMatches framing, per spec.md
// §4.7 "Filename detection".
func (v *Viewport) filenameMarker(line []byte) (name string, ok bool) {
	if v.filesWithMode {
		return filesWithMatchesFilename(line)
	}
	return nulTripletFilename(line)
}

// filesWithMatchesFilename implements spec.md §4.7(a): zero or more
// ANSI CSI sequences (each ended by its first letter byte), then a
// non-empty printable run before the next escape.
func filesWithMatchesFilename(line []byte) (string, bool) {
	pos := 0
	end := len(line)
	for pos < end {
		if line[pos] != escByte {
			break
		}
		pos++
		for pos < end && !isAlpha(line[pos]) {
			pos++
		}
		pos++
	}
	if pos >= end {
		return "", false
	}
	start := pos
	for pos < end && line[pos] != escByte {
		pos++
	}
	if pos == start {
		return "", false
	}
	return string(line[start:pos]), true
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// nulTripletFilename implements spec.md §4.7(b): \0 tag \0 name \0
// more\0; the filename is the span between the second and third NUL.
func nulTripletFilename(line []byte) (string, bool) {
	end := len(line)
	if end < 4 || line[0] != nulByte {
		return "", false
	}
	pos := 1
	for pos < end && line[pos] != nulByte {
		pos++
	}
	pos++
	if pos >= end {
		return "", false
	}
	start := pos
	for pos < end && line[pos] != nulByte {
		pos++
	}
	if pos == start || pos >= end {
		return "", false
	}
	return string(line[start:pos]), true
}

// Next scrolls forward to the next distinct filename-marker line
// (spec.md §4.7 "next()"), returning the row it lands on and whether a
// new marker was found. It degenerates to a one-page scroll under the
// text/format/count flags (spec.md §4.7 "degenerate" rule).
func (v *Viewport) Next(pageSize int) (row int, found bool) {
	if v.degrade {
		v.SetRow(v.row + pageSize)
		return v.row, false
	}
	if !v.haveLastName && v.row < len(v.lines) {
		if name, ok := v.filenameMarker(v.lines[v.row]); ok {
			v.lastFilename = name
			v.haveLastName = true
		}
	}
	for i := v.row + 1; i < len(v.lines); i++ {
		name, ok := v.filenameMarker(v.lines[i])
		if !ok {
			continue
		}
		if v.haveLastName && name == v.lastFilename {
			continue
		}
		v.lastFilename = name
		v.haveLastName = true
		v.row = i
		return i, true
	}
	return v.row, false
}

// Back is the symmetric counterpart of Next.
func (v *Viewport) Back(pageSize int) (row int, found bool) {
	if v.degrade {
		v.SetRow(v.row - pageSize)
		return v.row, false
	}
	for i := v.row - 1; i >= 0; i-- {
		name, ok := v.filenameMarker(v.lines[i])
		if !ok {
			continue
		}
		v.lastFilename = name
		v.haveLastName = true
		v.row = i
		return i, true
	}
	return v.row, false
}
