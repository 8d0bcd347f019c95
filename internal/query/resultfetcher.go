package query

import (
	"bytes"
	"errors"
	"io"

	"github.com/polluks/ugrep/internal/pipe"
)

// ResultFetcher reads the non-blocking pipe draining the search
// engine and feeds complete and in-progress lines into a Viewport
// (spec.md §4.6).
type ResultFetcher struct {
	p   *pipe.ResultPipe
	vp  *Viewport
	buf []byte // read scratch buffer
	eof bool
}

// fetchBufSize is the per-poll read size; partial reads just return
// and let the UI tick again (spec.md §4.6 "on partial reads it
// returns, letting the UI continue").
const fetchBufSize = 64 * 1024

// NewResultFetcher attaches a ResultFetcher to p, feeding vp.
func NewResultFetcher(p *pipe.ResultPipe, vp *Viewport) *ResultFetcher {
	return &ResultFetcher{p: p, vp: vp, buf: make([]byte, fetchBufSize)}
}

// EOF reports whether the pipe has closed.
func (f *ResultFetcher) EOF() bool { return f.eof }

// Fetch performs one non-blocking read and splits it into rows,
// appending them to the Viewport. It returns the number of bytes read.
// A would-block read is not an error: it simply yields (0, nil) so the
// UI tick can continue (spec.md §4.6).
func (f *ResultFetcher) Fetch() (int, error) {
	if f.eof {
		return 0, nil
	}
	n, err := f.p.Read(f.buf)
	if err != nil {
		if errors.Is(err, pipe.ErrWouldBlock) {
			return 0, nil
		}
		f.eof = true
		return 0, err
	}
	if n == 0 {
		f.eof = true
		return 0, nil
	}
	f.splitAppend(f.buf[:n])
	return n, nil
}

// splitAppend breaks chunk on newlines and appends each row to the
// Viewport; a trailing partial row without a newline continues the
// Viewport's last line in place on the next call.
func (f *ResultFetcher) splitAppend(chunk []byte) {
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			f.vp.Append(chunk, false)
			return
		}
		f.vp.Append(chunk[:i+1], true)
		chunk = chunk[i+1:]
	}
}

// DrainBlocking switches the pipe to blocking mode and reads to EOF,
// the "blocking flip" used near program exit when every selected line
// must be captured (spec.md §4.6 "Blocking flip").
func (f *ResultFetcher) DrainBlocking() error {
	if f.eof {
		return nil
	}
	if err := f.p.SetBlocking(); err != nil {
		return err
	}
	for {
		n, err := f.p.ReadEnd().Read(f.buf)
		if n > 0 {
			f.splitAppend(f.buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				f.eof = true
				return nil
			}
			return err
		}
		if n == 0 {
			f.eof = true
			return nil
		}
	}
}

// WaitFor blocks, polling the fetcher, until row is visible in the
// Viewport — the bookmark/jump behavior of query.cpp's Query::jump,
// supplemented per SPEC_FULL.md §4.9.
func (f *ResultFetcher) WaitFor(row int, poll func() bool) bool {
	for f.vp.Len() <= row {
		if f.eof {
			return false
		}
		if _, err := f.Fetch(); err != nil {
			return false
		}
		if f.vp.Len() > row {
			break
		}
		if poll != nil && !poll() {
			return false
		}
	}
	return true
}
