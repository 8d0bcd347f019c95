package pipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeNonblockingReadReturnsWouldBlock(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	buf := make([]byte, 64)
	_, err = p.Read(buf)
	assert.ErrorIs(t, err, ErrWouldBlock)
}

func TestPipeRoundTrip(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	_, err = p.WriteEnd().Write([]byte("hello\n"))
	require.NoError(t, err)

	ready, err := p.Poll(200 * time.Millisecond)
	require.NoError(t, err)
	require.True(t, ready, "expected pipe to be readable after write")

	buf := make([]byte, 64)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(buf[:n]))
}

func TestPipeEOFAfterCloseWrite(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.CloseRead()

	require.NoError(t, p.CloseWrite())

	_, err = p.Poll(200 * time.Millisecond)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := p.Read(buf)
	assert.Equal(t, 0, n)
	assert.NoError(t, err)
}
