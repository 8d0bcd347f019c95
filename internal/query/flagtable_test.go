package query

import (
	"testing"

	"github.com/polluks/ugrep/internal/config"
)

func TestFlagTableContextExclusion(t *testing.T) {
	ft := NewFlagTable()
	cfg := config.DefaultConfig()

	if !ft.Toggle('A', &cfg) {
		t.Fatal("Toggle('A') reported no change")
	}
	if cfg.Context != config.ContextAfter {
		t.Fatalf("Context = %v, want ContextAfter", cfg.Context)
	}

	if !ft.Toggle('B', &cfg) {
		t.Fatal("Toggle('B') reported no change")
	}
	if cfg.Context != config.ContextBefore {
		t.Fatalf("Context = %v, want ContextBefore after B supersedes A", cfg.Context)
	}
	if ft.On('A') {
		t.Fatal("A should have been cleared by B's exclusion group")
	}
	if !ft.On('B') {
		t.Fatal("B should be on")
	}
}

func TestFlagTableRecurseDepthExclusion(t *testing.T) {
	ft := NewFlagTable()
	cfg := config.DefaultConfig()

	ft.Toggle('3', &cfg)
	if cfg.RecurseDepth != 3 || !cfg.Recurse {
		t.Fatalf("depth=%d recurse=%v, want depth=3 recurse=true", cfg.RecurseDepth, cfg.Recurse)
	}

	ft.Toggle('7', &cfg)
	if cfg.RecurseDepth != 7 {
		t.Fatalf("RecurseDepth = %d, want 7 after re-toggle", cfg.RecurseDepth)
	}
	if ft.On('3') {
		t.Fatal("digit 3 should have been cleared by digit 7's exclusion group")
	}
}

func TestFlagTableRecurseSymlinksExclusion(t *testing.T) {
	ft := NewFlagTable()
	cfg := config.DefaultConfig()

	ft.Toggle('r', &cfg)
	if !cfg.Recurse {
		t.Fatal("Recurse should be true after toggling 'r'")
	}

	ft.Toggle('R', &cfg)
	if !cfg.RecurseSymlinks {
		t.Fatal("RecurseSymlinks should be true after toggling 'R'")
	}
	if cfg.Recurse {
		t.Fatal("Recurse should have been cleared by RecurseSymlinks's exclusion")
	}
}

func TestFlagTableUnknownKey(t *testing.T) {
	ft := NewFlagTable()
	cfg := config.DefaultConfig()
	if ft.Toggle('z', &cfg) {
		t.Fatal("Toggle on an unmapped key should report no change")
	}
}
