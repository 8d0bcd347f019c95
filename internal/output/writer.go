package output

import (
	"errors"
	"fmt"
	"runtime"
	"unicode/utf8"
)

var errWriterEOF = errors.New("output: writer at eof")

// WriterMode is the bitset of flags carried by a Writer (spec.md §3).
type WriterMode uint8

const (
	ModeFlush  WriterMode = 1 << 0 // flush each line of output
	ModeHold   WriterMode = 1 << 1 // suppress all flushes, retain in chain
	ModeBinary WriterMode = 1 << 2 // advisory: current file detected as binary
)

// Writer is the per-worker typed-output facade: character/string/integer/
// hex/octal emitters, quoting variants, UTF-8-aware truncation, line
// buffered flush, width-limited line truncation (spec.md §4.1).
type Writer struct {
	chain   *BufferChain
	sync    *Synchronizer
	lock    Lock
	slot    int64
	hasSlot bool

	mode WriterMode

	maxWidth int // 0 = unlimited
	column   int // running column counter for width truncation
	ansi     ansiState

	Hex *HexDumper

	sink Sink

	eof bool
}

// NewWriter creates a Writer over sink, optionally synchronized, with an
// optional max line width (0 disables width truncation).
func NewWriter(sink Sink, sync *Synchronizer, maxWidth int, hexColumns int) *Writer {
	w := &Writer{
		chain:    NewBufferChain(),
		sync:     sync,
		sink:     sink,
		maxWidth: maxWidth,
	}
	w.Hex = NewHexDumper(w, hexColumns)
	return w
}

// Begin assigns this Writer's slot; End releases it. Between them any
// number of emit calls may occur (spec.md §4.1 "Slot assignment").
func (w *Writer) Begin(slot int64) {
	w.slot = slot
	w.hasSlot = true
}

func (w *Writer) End() {
	w.Flush()
	if w.sync != nil && w.hasSlot {
		w.sync.Finish(&w.lock, w.slot)
	}
	w.hasSlot = false
}

// SetFlushMode toggles the FLUSH mode bit: each newline flushes.
func (w *Writer) SetFlushMode(on bool) {
	if on {
		w.mode |= ModeFlush
	} else {
		w.mode &^= ModeFlush
	}
}

// Hold suppresses all flushes, including newline and buffer-overrun
// flushes, retaining output entirely in the chain.
func (w *Writer) Hold() {
	w.mode |= ModeHold
}

// Launch clears HOLD and flushes pending data.
func (w *Writer) Launch() {
	w.mode &^= ModeHold
	w.checkFlush(true)
}

// Holding reports whether HOLD is set.
func (w *Writer) Holding() bool {
	return w.mode&ModeHold != 0
}

// SetBinary sets or clears the advisory BINARY mode bit.
func (w *Writer) SetBinary(on bool) {
	if on {
		w.mode |= ModeBinary
	} else {
		w.mode &^= ModeBinary
	}
}

// Binary reports the advisory BINARY bit.
func (w *Writer) Binary() bool {
	return w.mode&ModeBinary != 0
}

// EOF reports whether this Writer has stopped accepting output after a
// sink failure or cancellation.
func (w *Writer) EOF() bool {
	return w.eof
}

// --- typed emit operations (spec.md §4.1) ---

// Write implements io.Writer over the Writer's own emit path, so an
// engine.Engine can treat a Writer as a plain byte sink while it
// actually buffers through the BufferChain and serializes through the
// Synchronizer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.eof {
		return 0, errWriterEOF
	}
	w.Span(p)
	return len(p), nil
}

// Byte emits a single raw byte.
func (w *Writer) Byte(c byte) {
	if w.eof {
		return
	}
	w.writeSpan([]byte{c})
}

// Span emits a raw byte span verbatim.
func (w *Writer) Span(p []byte) {
	if w.eof || len(p) == 0 {
		return
	}
	w.writeSpan(p)
}

// Str emits a raw string verbatim.
func (w *Writer) Str(s string) {
	w.Span([]byte(s))
}

// UTF8Limited emits at most k code points from s, stopping on a UTF-8
// boundary (spec.md §8: "the emitted byte span ends on a UTF-8
// boundary").
func (w *Writer) UTF8Limited(s []byte, k int) {
	if w.eof || k <= 0 || len(s) == 0 {
		return
	}
	n := 0
	i := 0
	for i < len(s) && n < k {
		_, size := utf8.DecodeRune(s[i:])
		if size <= 0 {
			size = 1
		}
		i += size
		n++
	}
	w.writeSpan(s[:i])
}

// Newline emits a platform-conditional newline (CRLF on windows unless
// lfOnly is requested), then flushes if FLUSH mode is set.
func (w *Writer) Newline(lfOnly bool) {
	if w.eof {
		return
	}
	if runtime.GOOS == "windows" && !lfOnly {
		w.writeSpan([]byte{'\r', '\n'})
	} else {
		w.writeSpan([]byte{'\n'})
	}
	w.checkFlush(false)
}

// Dec emits i in unsigned decimal, left-padded with spaces to width w.
func (w *Writer) Dec(i uint64, width int) {
	w.numeric(i, width, 10, ' ')
}

// Hexu emits i in unsigned hex, left-padded with '0' to width w.
func (w *Writer) Hexu(i uint64, width int) {
	w.numeric(i, width, 16, '0')
}

// Octet emits a single byte as a three-digit octal triplet.
func (w *Writer) Octet(b byte) {
	if w.eof {
		return
	}
	w.writeSpan([]byte{
		'0' + (b >> 6),
		'0' + ((b >> 3) & 7),
		'0' + (b & 7),
	})
}

func (w *Writer) numeric(i uint64, width int, base int, pad byte) {
	if w.eof {
		return
	}
	var tmp [32]byte
	k := len(tmp)
	if i == 0 {
		k--
		tmp[k] = '0'
	}
	for i > 0 {
		k--
		d := i % uint64(base)
		if d < 10 {
			tmp[k] = '0' + byte(d)
		} else {
			tmp[k] = 'a' + byte(d-10)
		}
		i /= uint64(base)
	}
	n := len(tmp) - k
	for ; n < width; n++ {
		w.writeSpan([]byte{pad})
	}
	w.writeSpan(tmp[k:])
}

// --- quoted string variants ---

// QuoteC emits s with C string escapes.
func (w *Writer) QuoteC(s []byte) {
	if w.eof {
		return
	}
	for _, b := range s {
		switch b {
		case '\\', '"':
			w.writeSpan([]byte{'\\', b})
		case '\n':
			w.writeSpan([]byte(`\n`))
		case '\t':
			w.writeSpan([]byte(`\t`))
		case '\r':
			w.writeSpan([]byte(`\r`))
		default:
			if b < 0x20 || b == 0x7f {
				w.writeSpan([]byte(fmt.Sprintf(`\x%02x`, b)))
			} else {
				w.writeSpan([]byte{b})
			}
		}
	}
}

// QuoteCSV emits s as a CSV field, doubling embedded quotes.
func (w *Writer) QuoteCSV(s []byte) {
	if w.eof {
		return
	}
	for _, b := range s {
		if b == '"' {
			w.writeSpan([]byte{'"', '"'})
		} else {
			w.writeSpan([]byte{b})
		}
	}
}

// QuoteJSON emits s with JSON string escaping, using \uXXXX for control
// bytes.
func (w *Writer) QuoteJSON(s []byte) {
	if w.eof {
		return
	}
	for _, b := range s {
		switch b {
		case '"', '\\':
			w.writeSpan([]byte{'\\', b})
		case '\n':
			w.writeSpan([]byte(`\n`))
		case '\t':
			w.writeSpan([]byte(`\t`))
		case '\r':
			w.writeSpan([]byte(`\r`))
		default:
			if b < 0x20 {
				w.writeSpan([]byte(fmt.Sprintf(`\u%04x`, b)))
			} else {
				w.writeSpan([]byte{b})
			}
		}
	}
}

// QuoteXML emits s with XML entity escaping.
func (w *Writer) QuoteXML(s []byte) {
	if w.eof {
		return
	}
	for _, b := range s {
		switch b {
		case '&':
			w.writeSpan([]byte("&amp;"))
		case '<':
			w.writeSpan([]byte("&lt;"))
		case '>':
			w.writeSpan([]byte("&gt;"))
		case '"':
			w.writeSpan([]byte("&quot;"))
		case '\'':
			w.writeSpan([]byte("&apos;"))
		default:
			if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
				w.writeSpan([]byte(fmt.Sprintf(`&#%d;`, b)))
			} else {
				w.writeSpan([]byte{b})
			}
		}
	}
}

// QuoteURI percent-encodes bytes outside 0x20..0x7E plus '%' and ';'.
func (w *Writer) QuoteURI(s []byte) {
	if w.eof {
		return
	}
	for _, b := range s {
		if b >= 0x20 && b <= 0x7e && b != '%' && b != ';' {
			w.writeSpan([]byte{b})
		} else {
			w.writeSpan([]byte{'%'})
			const hexDigits = "0123456789ABCDEF"
			w.writeSpan([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
		}
	}
}

// --- internal write path ---

// writeSpan appends to the chain, advancing to a new buffer as needed; a
// full buffer grows the chain and never triggers a flush by itself.
// Emit calls never block on the Synchronizer; only flush does
// (spec.md §4.3).
func (w *Writer) writeSpan(p []byte) {
	for len(p) > 0 {
		n := w.chain.Append(p)
		p = p[n:]
		if len(p) > 0 {
			// current buffer is full: this worker's own ordering is
			// preserved by simply growing the chain, never by blocking.
			w.chain.Advance()
		}
	}
}

// checkFlush flushes when FLUSH mode is set and HOLD is not, unless
// force is set (Launch clearing HOLD).
func (w *Writer) checkFlush(force bool) {
	if w.Holding() && !force {
		return
	}
	if force || w.mode&ModeFlush != 0 {
		w.Flush()
	}
}
