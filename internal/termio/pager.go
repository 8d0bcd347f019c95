package termio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const pagerTabWidth = 4

// FilePager is the non-tcell fallback pager opened for full-file
// review once an EDIT-mode row commit resolves to a file: it hands the
// terminal to a raw-mode reader/writer pair the way the teacher's
// PreviewPager does for its full-screen preview, but pages a plain
// file from disk instead of a pre-built PreviewData (internal/ui
// /pager/pager.go).
type FilePager struct {
	path string

	input       *os.File
	output      io.Writer
	reader      *bufio.Reader
	writer      *bufio.Writer
	restoreTerm *term.State
	width       int
	height      int
	wrapEnabled bool

	lines  []string
	offset int
}

// NewFilePager loads path's content for paging. It returns an error if
// the file cannot be read at all; callers treat that as the pager
// being unavailable rather than crashing the terminal session.
func NewFilePager(path string) (*FilePager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	return &FilePager{path: path, lines: expandPagerTabs(lines)}, nil
}

// Run takes over the terminal and blocks until the user quits.
func (p *FilePager) Run() error {
	if err := p.initTerminal(); err != nil {
		return err
	}
	defer p.cleanupTerminal()

	p.updateSize()
	for {
		if err := p.render(); err != nil {
			return err
		}
		ev, err := p.readKeyEvent()
		if err != nil {
			return err
		}
		if p.handleKey(ev) {
			return nil
		}
	}
}

func (p *FilePager) initTerminal() error {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		if runtime.GOOS == "windows" {
			p.input = os.Stdin
			p.output = os.Stdout
		} else {
			return err
		}
	} else {
		p.input = tty
		p.output = tty
	}
	if p.input == nil {
		return errors.New("no tty available")
	}

	p.reader = bufio.NewReader(p.input)
	p.writer = bufio.NewWriter(p.output)

	rawState, err := term.MakeRaw(int(p.input.Fd()))
	if err != nil {
		return err
	}
	p.restoreTerm = rawState
	return nil
}

func (p *FilePager) cleanupTerminal() {
	if p.input != nil && p.restoreTerm != nil {
		_ = term.Restore(int(p.input.Fd()), p.restoreTerm)
	}
	if p.writer != nil {
		_ = p.writer.Flush()
	}
	p.writeString("\x1b[?25h")
	if p.input != nil && p.input.Name() == "/dev/tty" {
		_ = p.input.Close()
	}
}

func (p *FilePager) writeString(s string) {
	if p.writer != nil {
		_, _ = p.writer.WriteString(s)
	}
}

func (p *FilePager) printf(format string, args ...interface{}) {
	if p.writer != nil {
		_, _ = fmt.Fprintf(p.writer, format, args...)
	}
}

func (p *FilePager) updateSize() {
	if p.input == nil {
		return
	}
	if w, h, err := term.GetSize(int(p.input.Fd())); err == nil {
		p.width, p.height = w, h
	}
}

func (p *FilePager) render() error {
	p.updateSize()
	if p.width <= 0 {
		p.width = 1
	}
	if p.height <= 0 {
		p.height = 1
	}

	contentRows := p.height - 2 // header row + status row
	if contentRows < 1 {
		contentRows = 1
	}
	p.clampOffset(contentRows)

	p.writeString("\x1b[?25l\x1b[2J\x1b[H")

	p.drawRow(1, p.path, true)

	row := 2
	end := p.offset + contentRows
	if end > len(p.lines) {
		end = len(p.lines)
	}
	for i := p.offset; i < end; i++ {
		p.drawRow(row, p.lines[i], false)
		row++
	}
	for row <= p.height-1 {
		p.drawRow(row, "", false)
		row++
	}

	p.drawStatus(p.statusLine(contentRows))
	if p.writer != nil {
		return p.writer.Flush()
	}
	return nil
}

func (p *FilePager) drawRow(row int, text string, bold bool) {
	if row < 1 || row > p.height {
		return
	}
	p.printf("\x1b[%d;1H", row)
	p.writeString("\x1b[2K")
	if bold {
		p.writeString("\x1b[1m")
	}
	p.writeString(pagerTruncate(text, p.width))
	if bold {
		p.writeString("\x1b[22m")
	}
}

func (p *FilePager) drawStatus(text string) {
	if p.height < 1 {
		return
	}
	p.printf("\x1b[%d;1H", p.height)
	p.writeString("\x1b[2K")
	p.printf("\x1b[7m %s \x1b[0m", pagerTruncate(text, p.width-2))
}

func (p *FilePager) statusLine(visible int) string {
	start := p.offset + 1
	if len(p.lines) == 0 {
		start = 0
	}
	end := p.offset + visible
	if end > len(p.lines) {
		end = len(p.lines)
	}
	return fmt.Sprintf("%d-%d/%d lines  ↑↓/PgUp/PgDn scroll  q/Esc exit", start, end, len(p.lines))
}

func (p *FilePager) clampOffset(visible int) {
	if p.offset < 0 {
		p.offset = 0
	}
	maxOffset := len(p.lines) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if p.offset > maxOffset {
		p.offset = maxOffset
	}
}

func (p *FilePager) handleKey(ev pagerKeyEvent) bool {
	contentRows := p.height - 2
	if contentRows < 1 {
		contentRows = 1
	}
	switch ev.kind {
	case pagerKeyQuit, pagerKeyEscape, pagerKeyCtrlC:
		return true
	case pagerKeyUp:
		p.offset--
	case pagerKeyDown:
		p.offset++
	case pagerKeyPageUp:
		p.offset -= contentRows
	case pagerKeyPageDown, pagerKeySpace:
		p.offset += contentRows
	case pagerKeyHome:
		p.offset = 0
	case pagerKeyEnd:
		p.offset = len(p.lines)
	}
	p.clampOffset(contentRows)
	return false
}

type pagerKeyKind int

const (
	pagerKeyUnknown pagerKeyKind = iota
	pagerKeyUp
	pagerKeyDown
	pagerKeyPageUp
	pagerKeyPageDown
	pagerKeyHome
	pagerKeyEnd
	pagerKeyEscape
	pagerKeyQuit
	pagerKeySpace
	pagerKeyCtrlC
)

type pagerKeyEvent struct{ kind pagerKeyKind }

func (p *FilePager) readKeyEvent() (pagerKeyEvent, error) {
	if p.reader == nil {
		return pagerKeyEvent{}, errors.New("no reader available")
	}
	b, err := p.reader.ReadByte()
	if err != nil {
		return pagerKeyEvent{}, err
	}

	switch b {
	case 0x1b:
		return p.parseEscapeSequence()
	case 'k', 'K':
		return pagerKeyEvent{kind: pagerKeyUp}, nil
	case 'j', 'J':
		return pagerKeyEvent{kind: pagerKeyDown}, nil
	case 'q', 'Q':
		return pagerKeyEvent{kind: pagerKeyQuit}, nil
	case ' ':
		return pagerKeyEvent{kind: pagerKeySpace}, nil
	case 'b', 'B':
		return pagerKeyEvent{kind: pagerKeyPageUp}, nil
	case 'g':
		return pagerKeyEvent{kind: pagerKeyHome}, nil
	case 'G':
		return pagerKeyEvent{kind: pagerKeyEnd}, nil
	case 0x03:
		return pagerKeyEvent{kind: pagerKeyCtrlC}, nil
	case '\r', '\n':
		return pagerKeyEvent{kind: pagerKeySpace}, nil
	}

	if b < utf8.RuneSelf {
		return pagerKeyEvent{kind: pagerKeyUnknown}, nil
	}
	for !utf8.FullRune([]byte{b}) {
		if _, err := p.reader.ReadByte(); err != nil {
			break
		}
	}
	return pagerKeyEvent{kind: pagerKeyUnknown}, nil
}

func (p *FilePager) parseEscapeSequence() (pagerKeyEvent, error) {
	if p.reader.Buffered() == 0 {
		return pagerKeyEvent{kind: pagerKeyEscape}, nil
	}
	next, err := p.reader.ReadByte()
	if err != nil {
		return pagerKeyEvent{kind: pagerKeyEscape}, nil
	}
	if next != '[' {
		return pagerKeyEvent{kind: pagerKeyEscape}, nil
	}
	return p.parseCSI()
}

func (p *FilePager) parseCSI() (pagerKeyEvent, error) {
	var seq []byte
	for {
		b, err := p.reader.ReadByte()
		if err != nil {
			return pagerKeyEvent{kind: pagerKeyEscape}, nil
		}
		seq = append(seq, b)
		if (b >= 'A' && b <= 'Z') || b == '~' {
			break
		}
		if len(seq) > 5 {
			break
		}
	}

	switch seq[len(seq)-1] {
	case 'A':
		return pagerKeyEvent{kind: pagerKeyUp}, nil
	case 'B':
		return pagerKeyEvent{kind: pagerKeyDown}, nil
	case 'H':
		return pagerKeyEvent{kind: pagerKeyHome}, nil
	case 'F':
		return pagerKeyEvent{kind: pagerKeyEnd}, nil
	case '~':
		switch string(seq[:len(seq)-1]) {
		case "5":
			return pagerKeyEvent{kind: pagerKeyPageUp}, nil
		case "6":
			return pagerKeyEvent{kind: pagerKeyPageDown}, nil
		case "1":
			return pagerKeyEvent{kind: pagerKeyHome}, nil
		case "4":
			return pagerKeyEvent{kind: pagerKeyEnd}, nil
		}
	}
	return pagerKeyEvent{kind: pagerKeyUnknown}, nil
}

func expandPagerTabs(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = expandOneLineTabs(line, pagerTabWidth)
	}
	return out
}

func expandOneLineTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}
	var b strings.Builder
	column := 0
	for _, ru := range text {
		if ru == '\t' {
			spaces := tabWidth - (column % tabWidth)
			for i := 0; i < spaces; i++ {
				b.WriteByte(' ')
			}
			column += spaces
			continue
		}
		b.WriteRune(ru)
		w := runewidth.RuneWidth(ru)
		if w < 1 {
			w = 1
		}
		column += w
	}
	return b.String()
}

func pagerTruncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if pagerDisplayWidth(text) <= width {
		return text
	}
	const ellipsis = "…"
	ellipsisWidth := runewidth.RuneWidth([]rune(ellipsis)[0])
	if ellipsisWidth <= 0 {
		ellipsisWidth = 1
	}
	if width <= ellipsisWidth {
		return ellipsis
	}
	target := width - ellipsisWidth
	var b strings.Builder
	current := 0
	for _, ru := range text {
		w := runewidth.RuneWidth(ru)
		if w <= 0 {
			w = 1
		}
		if current+w > target {
			break
		}
		b.WriteRune(ru)
		current += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

func pagerDisplayWidth(text string) int {
	width := 0
	for _, ru := range text {
		w := runewidth.RuneWidth(ru)
		if w <= 0 {
			w = 1
		}
		width += w
	}
	return width
}
