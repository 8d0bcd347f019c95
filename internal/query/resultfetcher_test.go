package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polluks/ugrep/internal/pipe"
)

func TestResultFetcherSplitsCompleteLines(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.Close()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)

	_, err = p.WriteEnd().Write([]byte("line one\nline two\n"))
	require.NoError(t, err)

	_, err = p.Poll(200 * time.Millisecond)
	require.NoError(t, err)

	n, err := f.Fetch()
	require.NoError(t, err)
	assert.True(t, n > 0)
	require.Equal(t, 2, vp.Len())
	assert.Equal(t, "line one\n", string(vp.Line(0)))
	assert.Equal(t, "line two\n", string(vp.Line(1)))
}

func TestResultFetcherContinuesPartialLineAcrossReads(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.Close()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)

	_, err = p.WriteEnd().Write([]byte("partial-"))
	require.NoError(t, err)
	_, err = p.Poll(200 * time.Millisecond)
	require.NoError(t, err)
	_, err = f.Fetch()
	require.NoError(t, err)
	require.Equal(t, 1, vp.Len())
	assert.Equal(t, "partial-", string(vp.Line(0)))

	_, err = p.WriteEnd().Write([]byte("rest\n"))
	require.NoError(t, err)
	_, err = p.Poll(200 * time.Millisecond)
	require.NoError(t, err)
	_, err = f.Fetch()
	require.NoError(t, err)

	require.Equal(t, 1, vp.Len(), "the partial line must be continued in place, not appended as a new row")
	assert.Equal(t, "partial-rest\n", string(vp.Line(0)))
}

func TestResultFetcherWouldBlockYieldsNoError(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.Close()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)

	n, err := f.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, f.EOF())
}

func TestResultFetcherEOFAfterWriterClose(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.CloseRead()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)

	_, err = p.WriteEnd().Write([]byte("tail\n"))
	require.NoError(t, err)
	require.NoError(t, p.CloseWrite())

	_, err = p.Poll(200 * time.Millisecond)
	require.NoError(t, err)
	_, err = f.Fetch()
	require.NoError(t, err)
	require.Equal(t, 1, vp.Len())

	_, err = p.Poll(200 * time.Millisecond)
	require.NoError(t, err)
	_, err = f.Fetch()
	require.NoError(t, err)
	assert.True(t, f.EOF())
}

func TestResultFetcherDrainBlockingReadsRemainder(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.CloseRead()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)

	_, err = p.WriteEnd().Write([]byte("a\nb\nc\n"))
	require.NoError(t, err)
	require.NoError(t, p.CloseWrite())

	require.NoError(t, f.DrainBlocking())
	require.Equal(t, 3, vp.Len())
	assert.Equal(t, "a\n", string(vp.Line(0)))
	assert.Equal(t, "c\n", string(vp.Line(2)))
	assert.True(t, f.EOF())
}

func TestResultFetcherWaitForTimesOutWhenRowNeverArrives(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.CloseRead()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)
	require.NoError(t, p.CloseWrite())

	polls := 0
	ok := f.WaitFor(5, func() bool {
		polls++
		return polls < 3
	})
	assert.False(t, ok)
}

func TestResultFetcherWaitForSucceedsOnceRowArrives(t *testing.T) {
	p, err := pipe.New()
	require.NoError(t, err)
	defer p.Close()

	vp := NewViewport(false, false)
	f := NewResultFetcher(p, vp)

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.WriteEnd().Write([]byte("row0\nrow1\n"))
	}()

	ok := f.WaitFor(1, func() bool {
		time.Sleep(5 * time.Millisecond)
		return true
	})
	assert.True(t, ok)
	assert.True(t, vp.Len() > 1)
}
