package walk

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/polluks/ugrep/internal/engine/fake"
)

// Files walks each root (a file or a directory) and returns every
// regular file reached, skipping .git and any path a .gitignore rooted
// above it excludes. This is the demo binary's directory-walking thin
// collaborator (spec.md §1); the real engine would own this.
func Files(roots []string) ([]fake.File, error) {
	var out []fake.File
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			content, err := os.ReadFile(root)
			if err != nil {
				return nil, err
			}
			out = append(out, fake.File{Name: root, Content: string(content)})
			continue
		}
		collected, err := walkDir(root)
		if err != nil {
			return nil, err
		}
		out = append(out, collected...)
	}
	return out, nil
}

func walkDir(root string) ([]fake.File, error) {
	var out []fake.File
	matchers := map[string]*Matcher{root: loadGitignore(root, ".", NewMatcher())}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && d.Name() == ".git" && d.IsDir() {
			return filepath.SkipDir
		}

		parent := filepath.Dir(path)
		m, ok := matchers[parent]
		if !ok {
			m = NewMatcher()
		}

		rel, _ := filepath.Rel(root, path)

		if d.IsDir() {
			if path == root {
				return nil
			}
			dm := loadGitignore(path, rel, m)
			matchers[path] = dm
			if dm.MatchWithType(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if m.MatchWithType(rel, false) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		out = append(out, fake.File{Name: path, Content: string(content)})
		return nil
	})
	return out, err
}

// loadGitignore clones parent's Matcher and extends it with dir's own
// .gitignore, if any, mirroring git's per-directory rule inheritance.
// base is dir's path relative to the walk root ("." for the root
// itself), the basePath new patterns anchor against.
func loadGitignore(dir, base string, parent *Matcher) *Matcher {
	m := parent.Clone()
	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return m
	}
	m.AddPatterns(string(content), base)
	return m
}
