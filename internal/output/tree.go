package output

import "strings"

// Tree is the global directory-tree rendering state (ugrep's --tree):
// depth, path buffer and per-depth prefix strings, mutated only while
// the owning Writer holds the Synchronizer — i.e. entirely inside a
// held-lock emit critical section (spec.md §5 "Shared resources").
type Tree struct {
	Path  string
	Depth int
}

const (
	treeBar = "│   "
	treePtr = "├── "
	treeEnd = "└── "
)

// Enter descends into a child directory, pushing its name onto Path.
func (t *Tree) Enter(name string) {
	if t.Path != "" {
		t.Path += "/" + name
	} else {
		t.Path = name
	}
	t.Depth++
}

// Leave pops the most recently entered directory.
func (t *Tree) Leave() {
	if t.Depth > 0 {
		t.Depth--
	}
	if idx := strings.LastIndex(t.Path, "/"); idx >= 0 {
		t.Path = t.Path[:idx]
	} else {
		t.Path = ""
	}
}

// Prefix returns the vertical-bar/connector prefix for a line with one
// column per entry of ancestorsOpen (Depth is not consulted); last
// selects the closing connector for the final entry of a directory.
func (t *Tree) Prefix(ancestorsOpen []bool, last bool) string {
	var b strings.Builder
	for _, open := range ancestorsOpen {
		if open {
			b.WriteString(treeBar)
		} else {
			b.WriteString("    ")
		}
	}
	if last {
		b.WriteString(treeEnd)
	} else {
		b.WriteString(treePtr)
	}
	return b.String()
}

// EmitTreeEntry writes one tree line under the Synchronizer's mutex,
// so concurrent Workers sharing a TreeMode search never interleave
// prefix and name, and never race on the shared Tree's Path/Depth.
// When isDir is true the Tree descends into name after the line is
// emitted, so the caller's next EmitTreeEntry for a child already sees
// the deeper prefix (spec.md §5 "Shared resources").
func (w *Writer) EmitTreeEntry(name string, isDir, last bool, ancestorsOpen []bool) {
	if w.eof || w.sync == nil {
		return
	}
	w.sync.Acquire(&w.lock, w.slot)
	prefix := w.sync.tree.Prefix(ancestorsOpen, last)
	w.writeSpan([]byte(prefix))
	w.writeSpan([]byte(name))
	if isDir {
		w.sync.tree.Enter(name)
	}
	w.sync.Release(&w.lock)
}

// LeaveTreeDir pops the Tree's current directory, called once a
// Worker finishes emitting a directory's children.
func (w *Writer) LeaveTreeDir() {
	if w.sync == nil {
		return
	}
	w.sync.Acquire(&w.lock, w.slot)
	w.sync.tree.Leave()
	w.sync.Release(&w.lock)
}

// TreePath reports the Tree's current path, read under the
// Synchronizer's mutex for consistency with concurrent mutators.
func (w *Writer) TreePath() string {
	if w.sync == nil {
		return ""
	}
	w.sync.Acquire(&w.lock, w.slot)
	p := w.sync.tree.Path
	w.sync.Release(&w.lock)
	return p
}
