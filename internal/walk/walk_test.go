package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherLiteralAndGlob(t *testing.T) {
	cases := []struct {
		name      string
		gitignore string
		path      string
		ignored   bool
	}{
		{"literal suffix", "*.log", "debug.log", true},
		{"literal suffix no match", "*.log", "debug.txt", false},
		{"comment skipped", "# comment\n*.log", "a.log", true},
		{"negation re-includes", "*.log\n!keep.log", "keep.log", false},
		{"anchored root only", "/build", "build", true},
		{"double star", "**/generated/*", "a/b/generated/x.go", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher()
			m.AddPatterns(tc.gitignore, ".")
			assert.Equal(t, tc.ignored, m.Match(tc.path))
		})
	}
}

func TestMatcherDirOnly(t *testing.T) {
	m := NewMatcher()
	m.AddPatterns("build/", ".")
	assert.True(t, m.MatchWithType("build", true))
	assert.False(t, m.MatchWithType("build", false))
}

func TestMatcherClone(t *testing.T) {
	parent := NewMatcher()
	parent.AddPatterns("*.log", ".")
	child := parent.Clone()
	child.AddPatterns("*.tmp", ".")

	assert.True(t, parent.Match("a.log"))
	assert.False(t, parent.Match("a.tmp"))
	assert.True(t, child.Match("a.log"))
	assert.True(t, child.Match("a.tmp"))
}

func TestFilesSkipsGitignoredPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.go"), []byte("package x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte("noise\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "out.bin"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: x"), 0o644))

	files, err := Files([]string{dir})
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Name))
	}
	assert.Contains(t, names, "keep.go")
	assert.NotContains(t, names, "debug.log")
	assert.NotContains(t, names, "out.bin")
	assert.NotContains(t, names, "HEAD")
}

func TestFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	files, err := Files([]string{p})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hello", files[0].Content)
}
