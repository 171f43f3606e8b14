package scanner

import (
	"strings"

	"github.com/morozRed/dfnref/internal/document"
)

// NormalizeTitle trims s and collapses internal whitespace runs to one space.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitLabels splits a "|"-separated label list, dropping empty entries.
func SplitLabels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = NormalizeTitle(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LinkTargets lists the {title, scope} pairs a reference with the given
// title and link scope may resolve against, most specific first:
// the dotted "scope.title" form, then the explicit scope, then the global
// scope when an explicit scope was given.
func LinkTargets(title, linkFor string) []document.Target {
	title = NormalizeTitle(title)
	linkFor = NormalizeTitle(linkFor)
	if title == "" {
		return nil
	}

	var targets []document.Target
	seen := make(map[document.Target]bool)
	add := func(t document.Target) {
		if t.Title == "" || seen[t] {
			return
		}
		seen[t] = true
		targets = append(targets, t)
	}

	if idx := strings.LastIndex(title, "."); idx > 0 && idx < len(title)-1 && !strings.Contains(title, " ") {
		add(document.Target{Title: title[idx+1:], Scope: title[:idx]})
	}
	add(document.Target{Title: title, Scope: linkFor})
	if linkFor != "" {
		add(document.Target{Title: title})
	}
	return targets
}
