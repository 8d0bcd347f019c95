// Package engine declares the single synchronous entry point the output
// and query cores depend on. The grep engine itself — regex matching,
// file walking, archive decompression — is an external collaborator;
// this package names only the interface the cores consume from it
// (spec.md §1).
package engine

import (
	"context"
	"io"

	"github.com/polluks/ugrep/internal/config"
)

// RegexError is the exception the engine reports for a malformed
// pattern: a textual message plus a byte offset into the original
// pattern text (spec.md §6 "Engine entry").
type RegexError struct {
	Message string
	Offset  int
}

func (e *RegexError) Error() string { return e.Message }

// Engine is run_search()'s Go shape: one synchronous call that writes
// results to a caller-supplied byte sink and returns when the search
// completes or ctx is cancelled.
type Engine interface {
	RunSearch(ctx context.Context, cfg config.Config, w io.Writer) error
}
