package output

import (
	"os"

	"golang.org/x/sys/unix"
)

// Sink is the final byte destination shared by all Workers (spec.md
// §6). A short write is fatal for the Writer that issued it.
type Sink interface {
	Write(p []byte) (n int, err error)
	Sync() error
}

// FileSink writes to an *os.File using writev(2) for scatter-gather
// batching of a Writer's full buffers plus its partial tail in a single
// syscall, the way pack example gogrep's output.Writer does.
type FileSink struct {
	f *os.File
}

// NewFileSink wraps f (typically os.Stdout or a pipe's write end).
func NewFileSink(f *os.File) *FileSink {
	return &FileSink{f: f}
}

// Write implements Sink using writev, retrying on partial writes until
// the whole span is consumed or an error occurs.
func (s *FileSink) Write(p []byte) (int, error) {
	return s.WriteVec([][]byte{p})
}

// WriteVec writes multiple spans in one writev(2) call, used by the
// Writer's flush path to emit full buffers and the partial tail
// together.
func (s *FileSink) WriteVec(iovs [][]byte) (int, error) {
	total := 0
	fd := int(s.f.Fd())
	for len(iovs) > 0 {
		n, err := unix.Writev(fd, iovs)
		if err != nil {
			return total, err
		}
		total += n
		iovs = dropWritten(iovs, n)
	}
	return total, nil
}

func dropWritten(iovs [][]byte, n int) [][]byte {
	for n > 0 && len(iovs) > 0 {
		if n >= len(iovs[0]) {
			n -= len(iovs[0])
			iovs = iovs[1:]
			continue
		}
		iovs[0] = iovs[0][n:]
		n = 0
	}
	return iovs
}

// Sync implements Sink. Pipes and sockets don't support fsync; that is
// not a sink failure, so EINVAL/ENOTSUP are swallowed here the way a
// terminal or pipe target is expected to behave.
func (s *FileSink) Sync() error {
	err := s.f.Sync()
	if err == nil {
		return nil
	}
	if errIsFsyncUnsupported(err) {
		return nil
	}
	return err
}

func errIsFsyncUnsupported(err error) bool {
	switch {
	case isErrno(err, unix.EINVAL):
		return true
	case isErrno(err, unix.ENOTSUP):
		return true
	case isErrno(err, unix.ESPIPE):
		return true
	default:
		return false
	}
}

func isErrno(err error, target unix.Errno) bool {
	for {
		if errno, ok := err.(unix.Errno); ok {
			return errno == target
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
		if err == nil {
			return false
		}
	}
}
