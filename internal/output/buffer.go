package output

// bufferSize is the fixed size of every Buffer in a BufferChain.
const bufferSize = 16 * 1024

// buffer is a fixed-size byte array exclusively owned by one BufferChain.
// It carries no header; the chain's cursor tracks how much of it is used.
type buffer struct {
	data [bufferSize]byte
}

// BufferChain is one Worker's private, growable overflow queue of fixed
// size buffers. Buffers strictly before the cursor are full; buffers
// after the cursor are preallocated spares awaiting reuse. The chain is
// never empty after NewBufferChain.
type BufferChain struct {
	buffers []*buffer
	cur     int // index of the buffer currently being written
	off     int // write offset within buffers[cur]
}

// NewBufferChain returns a chain with a single buffer and the cursor at
// its start.
func NewBufferChain() *BufferChain {
	return &BufferChain{
		buffers: []*buffer{{}},
	}
}

// Remaining reports how many bytes can still be written to the current
// buffer before it is full.
func (c *BufferChain) Remaining() int {
	return bufferSize - c.off
}

// Append copies as many bytes of p as fit into the current buffer and
// returns the number written. It never advances the cursor; callers that
// need more room call Advance.
func (c *BufferChain) Append(p []byte) int {
	n := copy(c.buffers[c.cur].data[c.off:], p)
	c.off += n
	return n
}

// Advance moves the cursor to the next buffer, growing the chain (a new
// spare) only if none remains. Spares are retained across flushes to
// amortize allocation (Design Notes §9).
func (c *BufferChain) Advance() {
	c.cur++
	c.off = 0
	if c.cur >= len(c.buffers) {
		c.buffers = append(c.buffers, &buffer{})
	}
}

// FullBuffers returns the buffers strictly before the cursor, each
// holding a full bufferSize of data, in write order.
func (c *BufferChain) FullBuffers() []*buffer {
	return c.buffers[:c.cur]
}

// Tail returns the partially-filled current buffer's used span.
func (c *BufferChain) Tail() []byte {
	return c.buffers[c.cur].data[:c.off]
}

// Empty reports whether the chain holds no pending bytes at all.
func (c *BufferChain) Empty() bool {
	return c.cur == 0 && c.off == 0
}

// Reset rewinds the chain to reuse its first buffer; buffers after it
// remain allocated as spares (the chain "shrinks" only implicitly).
func (c *BufferChain) Reset() {
	c.cur = 0
	c.off = 0
}
