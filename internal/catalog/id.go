package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/morozRed/dfnref/internal/document"
)

const idPrefix = "dfn"

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// IDAllocator hands out identifiers that are unique within one document.
type IDAllocator struct {
	taken map[string]bool
}

// NewIDAllocator reserves the ids already present in the document.
func NewIDAllocator(existing ...string) *IDAllocator {
	a := &IDAllocator{taken: make(map[string]bool, len(existing))}
	for _, id := range existing {
		if id = strings.TrimSpace(id); id != "" {
			a.taken[id] = true
		}
	}
	return a
}

// Assign gives def an id derived from title unless it already has one.
// Format: dfn-<slug>, then dfn-<slug>-0, dfn-<slug>-1, ... on collision.
func (a *IDAllocator) Assign(def *document.Definition, title string) string {
	if def.ID != "" {
		a.taken[def.ID] = true
		return def.ID
	}

	base := idPrefix + "-" + Slug(title)
	id := base
	for i := 0; a.taken[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	a.taken[id] = true
	def.ID = id
	return id
}

// Slug lowercases s and joins its word runs with hyphens.
func Slug(s string) string {
	slug := nonWordPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "generated"
	}
	return slug
}
