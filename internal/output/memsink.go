package output

import "bytes"

// MemSink is an in-memory Sink used by tests and by the interactive
// query core's in-process pipe sink wrapper.
type MemSink struct {
	buf bytes.Buffer
}

func NewMemSink() *MemSink { return &MemSink{} }

func (s *MemSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *MemSink) Sync() error                 { return nil }
func (s *MemSink) Bytes() []byte               { return s.buf.Bytes() }
func (s *MemSink) String() string              { return s.buf.String() }
