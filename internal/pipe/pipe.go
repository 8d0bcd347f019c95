// Package pipe implements the non-blocking result pipe that carries
// engine output from a Worker into the interactive query core's
// ResultFetcher (spec.md §4.6, §6 "Result pipe").
package pipe

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by Read when the pipe has no data ready and
// the read end is in non-blocking mode.
var ErrWouldBlock = errors.New("pipe: would block")

// ResultPipe is a byte pipe whose read end starts non-blocking and can
// be flipped to blocking near program exit (spec.md §4.6 "Blocking
// flip"). It is single-producer single-consumer: one engine Worker
// writes, one ResultFetcher reads.
type ResultPipe struct {
	r *os.File
	w *os.File
}

// New creates a fresh pipe with a non-blocking read end, the shape
// QueryController opens on every interactive restart (spec.md §4.5
// "QUERY").
func New() (*ResultPipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(int(r.Fd()), true); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	return &ResultPipe{r: r, w: w}, nil
}

// ReadEnd exposes the read end for WriteVec/Writev-style sinks that
// still want an *os.File, and for Close bookkeeping.
func (p *ResultPipe) ReadEnd() *os.File { return p.r }

// WriteEnd exposes the write end, handed to a Worker's Writer as the
// Sink's underlying file.
func (p *ResultPipe) WriteEnd() *os.File { return p.w }

// CloseWrite closes the write end, letting the reader observe EOF once
// drained — the first half of "cancel the running Worker" (spec.md
// §4.5).
func (p *ResultPipe) CloseWrite() error {
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.w = nil
	return err
}

// CloseRead closes the read end.
func (p *ResultPipe) CloseRead() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

// Close closes both ends.
func (p *ResultPipe) Close() error {
	err1 := p.CloseWrite()
	err2 := p.CloseRead()
	if err1 != nil {
		return err1
	}
	return err2
}

// SetBlocking clears O_NONBLOCK on the read end, the "blocking flip"
// used near program exit when every selected line must be captured
// (spec.md §4.6 "Blocking flip").
func (p *ResultPipe) SetBlocking() error {
	return unix.SetNonblock(int(p.r.Fd()), false)
}

// Poll waits up to timeout for the read end to become readable.
// timeout <= 0 polls without blocking at all, matching the ~100ms UI
// tick described in spec.md §5 "Suspension points".
func (p *ResultPipe) Poll(timeout time.Duration) (bool, error) {
	rc, err := p.r.SyscallConn()
	if err != nil {
		return false, err
	}
	fd := -1
	if cerr := rc.Control(func(s uintptr) { fd = int(s) }); cerr != nil {
		return false, cerr
	}
	var readfds unix.FdSet
	fdSetAdd(&readfds, fd)

	tv := unix.NsecToTimeval(int64(timeout))
	for {
		n, err := unix.Select(fd+1, &readfds, nil, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// Read performs one read from the pipe. In non-blocking mode, an empty
// pipe returns ErrWouldBlock rather than blocking the UI tick (spec.md
// §4.6: "on partial reads it returns, letting the UI continue"). Once
// the write end is closed and the pipe is drained it returns (0, nil).
func (p *ResultPipe) Read(buf []byte) (int, error) {
	rc, err := p.r.SyscallConn()
	if err != nil {
		return 0, err
	}
	var n int
	var rerr error
	if err := rc.Read(func(fd uintptr) bool { n, rerr = unix.Read(int(fd), buf); return true }); err != nil {
		return 0, err
	}
	if rerr != nil {
		if errors.Is(rerr, unix.EAGAIN) || errors.Is(rerr, unix.EWOULDBLOCK) {
			return 0, ErrWouldBlock
		}
		return 0, rerr
	}
	return n, nil
}

func fdSetAdd(set *unix.FdSet, fd int) {
	if fd < 0 {
		return
	}
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}
