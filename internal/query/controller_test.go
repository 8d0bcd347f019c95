package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polluks/ugrep/internal/config"
	"github.com/polluks/ugrep/internal/engine/fake"
)

func waitForLines(t *testing.T, qc *QueryController, want int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		f := qc.Fetcher()
		if f != nil {
			f.Fetch()
		}
		if qc.Viewport().Len() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d lines, got %d", want, qc.Viewport().Len())
}

func TestQueryControllerInteractiveRestart(t *testing.T) {
	eng := &fake.Engine{Files: []fake.File{
		{Name: "a.txt", Content: "cabbage\nbanana\n"},
		{Name: "b.txt", Content: "tab\n"},
	}}
	qc := NewQueryController(eng, config.DefaultConfig())
	ctx := context.Background()

	qc.Dispatch(KeyAction{Rune: 'a'})
	qc.Tick(ctx)
	waitForLines(t, qc, 2, time.Second)

	require.NotZero(t, qc.Viewport().Len(), "expected some results for pattern \"a\"")

	// Typing "b" (pattern becomes "ab") marks the query updated; the next
	// Tick once the debounce interval has passed cancels the old worker,
	// opens a fresh pipe, and resets the viewport (spec.md §8 scenario 5).
	qc.Dispatch(KeyAction{Rune: 'b'})
	time.Sleep(debounceTick)
	qc.Tick(ctx)

	waitForLines(t, qc, 1, time.Second)
	qc.Shutdown()
}

func TestQueryControllerFlagToggleExclusion(t *testing.T) {
	eng := &fake.Engine{}
	qc := NewQueryController(eng, config.DefaultConfig())

	qc.Dispatch(FlagToggleAction{Key: 'A'})
	assert.True(t, qc.flags.On('A'), "expected A to be on after toggle")

	qc.Dispatch(FlagToggleAction{Key: 'B'})
	assert.False(t, qc.flags.On('A'), "expected A to be cleared when its exclusive sibling B is set")
	assert.True(t, qc.flags.On('B'), "expected B to be on after toggle")
	assert.Equal(t, config.ContextBefore, qc.cfg.Context)
}
