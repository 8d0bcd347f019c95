// Package walk is the directory-walking thin collaborator spec.md §1
// names as out of scope for the core ("directory walking ... those are
// thin collaborators") but still needs a real implementation for
// cmd/ugrep to exercise the output/query cores against actual files.
// Matcher is adapted from the pack's gitignore matcher
// (kk-code-lab-rdir's internal/search/gitignore.go) so that ugrep's
// directory walk skips the same files `git` and most greps would.
package walk

import (
	"path/filepath"
	"strings"
)

// Matcher parses .gitignore-style pattern files and answers whether a
// given path should be excluded from the walk.
type Matcher struct {
	patterns []pattern
}

type pattern struct {
	text     string
	negation bool
	dirOnly  bool
	anchored bool
	hasSlash bool
	basePath string
	literal  string
	prefix   string
	suffix   string
}

// NewMatcher returns an empty Matcher; call AddPatterns to load rules.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Clone deep-copies m so a subdirectory can extend the rule set without
// mutating the parent directory's Matcher.
func (m *Matcher) Clone() *Matcher {
	if m == nil {
		return NewMatcher()
	}
	clone := NewMatcher()
	if len(m.patterns) > 0 {
		clone.patterns = append([]pattern(nil), m.patterns...)
	}
	return clone
}

// AddPatterns parses the content of one .gitignore file rooted at
// basePath and appends its rules.
func (m *Matcher) AddPatterns(content, basePath string) {
	for _, line := range strings.Split(content, "\n") {
		m.addPattern(line, basePath)
	}
}

func (m *Matcher) addPattern(line, basePath string) {
	line = trimTrailingSpaces(line)
	if line == "" {
		return
	}
	if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "\\#") {
		return
	}

	negation := false
	if strings.HasPrefix(line, "!") && !strings.HasPrefix(line, "\\!") {
		negation = true
		line = line[1:]
	}
	line = unescape(line)

	dirOnly := false
	if strings.HasSuffix(line, "/") {
		dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	anchored := false
	if strings.HasPrefix(line, "/") {
		anchored = true
		line = line[1:]
	}

	hasSlash := strings.ContainsRune(line, '/')
	if line == "" {
		return
	}

	hasEscape := strings.ContainsRune(line, '\\')
	var literal, prefix, suffix string
	if !hasEscape && !strings.ContainsAny(line, "*?[") {
		literal = line
	} else if !hasEscape {
		if strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "**") {
			if rest := line[1:]; rest != "" && !strings.ContainsAny(rest, "*?[") {
				suffix = rest
			}
		}
		if strings.HasSuffix(line, "*") && !strings.HasSuffix(line, "**") {
			if start := line[:len(line)-1]; start != "" && !strings.ContainsAny(start, "*?[") {
				prefix = start
			}
		}
	}

	m.patterns = append(m.patterns, pattern{
		text: line, negation: negation, dirOnly: dirOnly, anchored: anchored,
		hasSlash: hasSlash, basePath: basePath, literal: literal, prefix: prefix, suffix: suffix,
	})
}

func unescape(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			i++
		}
		b.WriteByte(line[i])
	}
	return b.String()
}

func trimTrailingSpaces(line string) string {
	i := len(line) - 1
	for i >= 0 && line[i] == ' ' {
		backslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 1 {
			break
		}
		i--
	}
	return line[:i+1]
}

// Match reports whether path (a file) should be excluded.
func (m *Matcher) Match(path string) bool { return m.MatchWithType(path, false) }

// MatchWithType reports whether path should be excluded; isDir gates
// directory-only ("foo/") patterns. The last matching pattern wins,
// same as git's own precedence rule.
func (m *Matcher) MatchWithType(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, p := range m.patterns {
		if matches(path, isDir, p) {
			ignored = !p.negation
		}
	}
	return ignored
}

func matches(path string, isDir bool, p pattern) bool {
	if p.dirOnly && !isDir {
		return false
	}

	checkPath := path
	if p.basePath != "." {
		base := filepath.ToSlash(p.basePath)
		if !strings.HasPrefix(path, base) {
			return false
		}
		checkPath = strings.TrimPrefix(path, base+"/")
		if checkPath == path {
			checkPath = filepath.Base(path)
		}
	}

	filename := checkPath
	if idx := strings.LastIndexByte(checkPath, '/'); idx >= 0 {
		filename = checkPath[idx+1:]
	}
	componentMatch := !p.hasSlash && !p.anchored

	if p.literal != "" {
		if componentMatch {
			if filename == p.literal || checkPath == p.literal {
				return true
			}
		} else if checkPath == p.literal {
			return true
		}
	}
	if p.suffix != "" && !p.anchored {
		if (componentMatch && strings.HasSuffix(filename, p.suffix)) || strings.HasSuffix(checkPath, p.suffix) {
			return true
		}
	}
	if p.prefix != "" && !p.anchored {
		if (componentMatch && strings.HasPrefix(filename, p.prefix)) || strings.HasPrefix(checkPath, p.prefix) {
			return true
		}
	}

	if p.text == "**" {
		return true
	}
	if strings.HasPrefix(p.text, "**/") {
		return matchesComponent(checkPath, strings.TrimPrefix(p.text, "**/"), p.hasSlash)
	}
	if strings.HasSuffix(p.text, "/**") {
		prefix := strings.TrimSuffix(p.text, "/**")
		return checkPath == prefix || strings.HasPrefix(checkPath, prefix+"/")
	}
	if strings.Contains(p.text, "/**/") {
		parts := strings.SplitN(p.text, "/**/", 2)
		prefix, suffix := parts[0], parts[1]
		if !strings.HasPrefix(checkPath, prefix+"/") && checkPath != prefix {
			return false
		}
		if strings.HasPrefix(checkPath, prefix+"/") {
			return matchesDoubleStar(strings.TrimPrefix(checkPath, prefix+"/"), suffix)
		}
		return fnmatch(suffix, "")
	}

	if p.anchored {
		return fnmatch(p.text, checkPath)
	}
	if !p.hasSlash {
		if fnmatch(p.text, checkPath) {
			return true
		}
		parts := strings.Split(checkPath, "/")
		for i := 1; i < len(parts); i++ {
			if fnmatch(p.text, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}
	return fnmatch(p.text, checkPath)
}

func matchesComponent(path, pat string, hasSlash bool) bool {
	if fnmatch(pat, path) {
		return true
	}
	if !hasSlash && fnmatch(pat, filepath.Base(path)) {
		return true
	}
	if strings.Contains(path, "/") {
		parts := strings.Split(path, "/")
		for i := 1; i < len(parts); i++ {
			if fnmatch(pat, strings.Join(parts[i:], "/")) {
				return true
			}
		}
	}
	return false
}

func matchesDoubleStar(path, pat string) bool {
	if fnmatch(pat, path) {
		return true
	}
	if strings.Contains(path, "/") {
		parts := strings.Split(path, "/")
		for i := range parts {
			if fnmatch(pat, strings.Join(parts[i:], "/")) {
				return true
			}
		}
	}
	return false
}

// fnmatch is a small glob matcher with git's "* never crosses /" rule.
func fnmatch(pat, path string) bool { return fnmatchAt(pat, path, 0, 0) }

func fnmatchAt(pat, path string, pi, si int) bool {
	for pi < len(pat) && si < len(path) {
		switch pat[pi] {
		case '*':
			if pi+1 < len(pat) && pat[pi+1] == '*' {
				pi++
			}
			if pi+1 >= len(pat) {
				return !strings.Contains(path[si:], "/")
			}
			if fnmatchAt(pat, path, pi+1, si) {
				return true
			}
			if path[si] != '/' {
				return fnmatchAt(pat, path, pi, si+1)
			}
			return false

		case '?':
			if path[si] == '/' {
				return false
			}
			pi++
			si++

		case '[':
			close := closingBracket(pat, pi)
			if close == -1 {
				if path[si] != '[' {
					return false
				}
				pi++
				si++
				continue
			}
			if !matchClass(pat[pi+1:close], path[si]) {
				return false
			}
			pi = close + 1
			si++

		case '\\':
			if pi+1 < len(pat) {
				pi++
				if pat[pi] != path[si] {
					return false
				}
				pi++
				si++
			} else {
				return false
			}

		default:
			if pat[pi] != path[si] {
				return false
			}
			pi++
			si++
		}
	}
	for pi < len(pat) && pat[pi] == '*' {
		pi++
	}
	return pi >= len(pat) && si >= len(path)
}

func closingBracket(pat string, start int) int {
	for i := start + 1; i < len(pat); i++ {
		if pat[i] == ']' {
			return i
		}
		if pat[i] == '\\' && i+1 < len(pat) {
			i++
		}
	}
	return -1
}

func matchClass(class string, c byte) bool {
	negate := strings.HasPrefix(class, "!")
	if negate {
		class = class[1:]
	}
	matched := false
	for i := 0; i < len(class); {
		if i+2 < len(class) && class[i+1] == '-' {
			if c >= class[i] && c <= class[i+2] {
				matched = true
				break
			}
			i += 3
			continue
		}
		if class[i] == c {
			matched = true
			break
		}
		i++
	}
	if negate {
		return !matched
	}
	return matched
}
