// Package fake is a deterministic test double for internal/engine.Engine:
// a minimal literal-substring matcher over an in-memory set of files.
// It intentionally does not implement real regex or archive handling —
// spec.md §1 names those as Non-goals of this specification, and the
// fake exists only so internal/output and internal/query tests have a
// real producer instead of a hand-fed buffer.
package fake

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/polluks/ugrep/internal/config"
)

// File is one in-memory file the fake engine can search.
type File struct {
	Name    string
	Content string
}

// Engine searches a fixed slice of Files for a literal substring match
// of cfg.Pattern, in Files order (callers control ordering, e.g. by
// filename for "sort by name").
type Engine struct {
	Files []File

	// Delay, if non-nil, is invoked once per file before searching it,
	// giving tests a hook to observe interleaving or to block until
	// cancelled.
	Delay func(name string)
}

// RunSearch implements engine.Engine.
func (e *Engine) RunSearch(ctx context.Context, cfg config.Config, w io.Writer) error {
	if cfg.Pattern == "" {
		return nil
	}

	for _, f := range e.Files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if e.Delay != nil {
			e.Delay(f.Name)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := e.searchFile(ctx, cfg, f, w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) searchFile(ctx context.Context, cfg config.Config, f File, w io.Writer) error {
	scanner := bufio.NewScanner(strings.NewReader(f.Content))
	lineno := 0
	announced := false

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lineno++
		line := scanner.Text()
		if !strings.Contains(line, cfg.Pattern) {
			continue
		}

		if cfg.FilesWithMatches {
			if !announced {
				if _, err := fmt.Fprintf(w, "\x1b[35m%s\x1b[0m\n", f.Name); err != nil {
					return err
				}
				announced = true
			}
			continue
		}

		if !announced {
			// \0 <line number> \0 <filename> \0 <content>: the filename
			// lives in the second NUL-delimited field, matching the real
			// engine's marker framing (query.cpp's is_filename extracts
			// between the second and third NUL, not the first and second).
			if _, err := fmt.Fprintf(w, "\x00%d\x00%s\x00%s\n", lineno, f.Name, line); err != nil {
				return err
			}
			announced = true
			continue
		}

		if _, err := fmt.Fprintf(w, "%d:%s\n", lineno, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// SortedByName returns a copy of files sorted by name, used by callers
// that want ORDERED output keyed on "alphabetical by filename". Names
// are compared under NFC normalization so that the same filename typed
// or stored with a differently-composed accent (e.g. combining vs.
// precomposed diacritics) sorts identically, giving the ORDERED
// Synchronizer a locale-stable slot assignment.
func SortedByName(files []File) []File {
	out := append([]File(nil), files...)
	sort.SliceStable(out, func(i, j int) bool {
		return norm.NFC.String(out[i].Name) < norm.NFC.String(out[j].Name)
	})
	return out
}
