package output

// ansiPhase is the 5-state mini-machine recognizing ANSI CSI/OSC runs
// while scanning for width truncation (spec.md §4.1).
type ansiPhase int

const (
	ansiNA ansiPhase = iota
	ansiESC
	ansiCSI
	ansiOSC
	ansiOSCEsc
)

type ansiState struct {
	phase ansiPhase
}

func (a *ansiState) step(b byte) {
	switch a.phase {
	case ansiNA:
		if b == 0x1b {
			a.phase = ansiESC
		}
	case ansiESC:
		switch b {
		case '[':
			a.phase = ansiCSI
		case ']':
			a.phase = ansiOSC
		default:
			a.phase = ansiNA
		}
	case ansiCSI:
		if b >= 0x40 && b <= 0x7e {
			a.phase = ansiNA
		}
	case ansiOSC:
		if b == 0x1b {
			a.phase = ansiOSCEsc
		} else if b == 0x07 {
			a.phase = ansiNA
		}
	case ansiOSCEsc:
		if b == '\\' {
			a.phase = ansiNA
		} else {
			a.phase = ansiOSC
		}
	}
}

func (a *ansiState) inEscape() bool {
	return a.phase != ansiNA
}

// Flush acquires the Synchronizer (if attached), writes every full
// buffer in the chain to the sink followed by the partial tail, then
// calls the sink's sync primitive. On any short write or sink error the
// Writer marks itself EOF, propagates cancel to the Synchronizer, and
// all subsequent emits become no-ops. Flush resets the chain to reuse
// its first buffer (spec.md §4.1 "Flush contract").
func (w *Writer) Flush() {
	if w.eof {
		w.chain.Reset()
		return
	}
	if w.Holding() {
		return
	}
	if w.chain.Empty() {
		return
	}

	if w.sync != nil {
		w.sync.Acquire(&w.lock, w.slot)
		if w.sync.Cancelled() {
			w.eof = true
			w.sync.Release(&w.lock)
			w.chain.Reset()
			return
		}
	}

	ok := w.flushChain()

	if !ok {
		w.eof = true
		if w.sync != nil {
			w.sync.Cancel()
		}
	}

	if w.sync != nil {
		w.sync.Release(&w.lock)
	}

	w.chain.Reset()
}

func (w *Writer) flushChain() bool {
	full := w.chain.FullBuffers()
	tail := w.chain.Tail()

	if w.maxWidth == 0 {
		if fv, ok := w.sink.(interface{ WriteVec([][]byte) (int, error) }); ok {
			iovs := make([][]byte, 0, len(full)+1)
			for _, b := range full {
				iovs = append(iovs, b.data[:])
			}
			if len(tail) > 0 {
				iovs = append(iovs, tail)
			}
			if len(iovs) == 0 {
				return w.syncSink()
			}
			total := 0
			for _, iov := range iovs {
				total += len(iov)
			}
			n, err := fv.WriteVec(iovs)
			if err != nil || n != total {
				return false
			}
			return w.syncSink()
		}

		for _, b := range full {
			if !w.writeAll(b.data[:]) {
				return false
			}
		}
		if len(tail) > 0 {
			if !w.writeAll(tail) {
				return false
			}
		}
		return w.syncSink()
	}

	for _, b := range full {
		if !w.writeTruncated(b.data[:]) {
			return false
		}
	}
	if len(tail) > 0 {
		if !w.writeTruncated(tail) {
			return false
		}
	}
	return w.syncSink()
}

func (w *Writer) writeAll(p []byte) bool {
	for len(p) > 0 {
		n, err := w.sink.Write(p)
		if err != nil {
			return false
		}
		if n <= 0 {
			return false
		}
		p = p[n:]
	}
	return true
}

func (w *Writer) syncSink() bool {
	if err := w.sink.Sync(); err != nil {
		return false
	}
	return true
}

// writeTruncated scans data as lines: a running column counter advances
// on printable bytes, pauses within ANSI CSI/OSC sequences, and on
// reaching maxWidth skips subsequent bytes until the next line feed,
// then resumes. The counter resets on every line feed (spec.md §4.1
// "Width-truncated flush").
func (w *Writer) writeTruncated(data []byte) bool {
	start := 0
	skipping := w.column >= w.maxWidth && w.maxWidth > 0
	for i, b := range data {
		if b == '\n' {
			if !skipping {
				if !w.writeAll(data[start : i+1]) {
					return false
				}
			} else {
				if !w.writeAll([]byte{'\n'}) {
					return false
				}
			}
			start = i + 1
			w.column = 0
			skipping = false
			continue
		}

		wasEsc := w.ansi.inEscape()
		w.ansi.step(b)
		if wasEsc || w.ansi.inEscape() {
			continue
		}

		if skipping {
			continue
		}

		w.column++
		if w.column >= w.maxWidth {
			if !w.writeAll(data[start : i+1]) {
				return false
			}
			start = i + 1
			skipping = true
		}
	}

	if start < len(data) && !skipping {
		if !w.writeAll(data[start:]) {
			return false
		}
	}
	return true
}
