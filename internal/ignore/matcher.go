// Package ignore decides which files a directory walk skips, using
// gitignore-style rules read from .dfnrefignore.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File is read from the root of a walked directory.
const File = ".dfnrefignore"

// DefaultRules skip tool output and vendored trees. User rules can
// re-include them with "!".
var DefaultRules = []string{
	".git/",
	".dfnref/",
	"node_modules/",
	"vendor/",
	"third_party/",
}

type rule struct {
	pattern  *regexp.Regexp
	raw      string
	negated  bool
	dirOnly  bool
	anchored bool
	nested   bool // pattern contains a slash
}

// Matcher applies rules in order; the last matching rule wins.
type Matcher struct {
	rules []rule
}

func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(DefaultRules)+len(userRules))
	all = append(all, DefaultRules...)
	all = append(all, userRules...)

	m := &Matcher{rules: make([]rule, 0, len(all))}
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			m.rules = append(m.rules, parsed)
		}
	}
	return m
}

// LoadRules reads File under root. A missing file yields no rules.
func LoadRules(root string) ([]string, error) {
	path := filepath.Join(root, File)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", File, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", File, err)
	}
	return rules, nil
}

// ShouldIgnore reports whether relPath (relative to the walk root) is skipped.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = normalizePath(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		r.negated = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		r.anchored = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		r.dirOnly = true
		line = rest
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	re, err := regexp.Compile("^" + globToRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	r.raw = line
	r.pattern = re
	r.nested = strings.Contains(line, "/")
	return r, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	if r.dirOnly {
		if r.matchesDirPrefix(relPath) {
			return true
		}
		return isDir && r.pattern.MatchString(filepath.Base(relPath))
	}
	if r.anchored {
		return r.pattern.MatchString(relPath)
	}

	parts := strings.Split(relPath, "/")
	if r.nested {
		for i := range parts {
			if r.pattern.MatchString(strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}
	for _, segment := range parts {
		if r.pattern.MatchString(segment) {
			return true
		}
	}
	return false
}

// matchesDirPrefix reports whether relPath is the directory or lies below it.
func (r rule) matchesDirPrefix(relPath string) bool {
	parts := strings.Split(relPath, "/")
	if r.anchored {
		for i := range parts {
			if r.pattern.MatchString(strings.Join(parts[:i+1], "/")) {
				return true
			}
		}
		return false
	}
	for start := range parts {
		for end := start; end < len(parts); end++ {
			if r.pattern.MatchString(strings.Join(parts[start:end+1], "/")) {
				return true
			}
		}
	}
	return false
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
