// Package biblio keeps a document's normative and informative reference sets
// in step with the citation keys found on its elements.
package biblio

import (
	"regexp"
	"sort"
	"strings"

	"github.com/morozRed/dfnref/internal/document"
)

// SelfKey stands in for citations of the document being processed.
const SelfKey = "__SPEC__"

// Citer is an element that may carry a citation key.
type Citer interface {
	CitationKey() string
	SetCitationKey(key string)
	IsNormative() bool
}

// Set is a set of citation keys.
type Set map[string]bool

func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			s[key] = true
		}
	}
	return s
}

func (s Set) Add(key string)      { s[key] = true }
func (s Set) Delete(key string)   { delete(s, key) }
func (s Set) Has(key string) bool { return s[key] }
func (s Set) Len() int            { return len(s) }

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// CiteDetails splits a citation of the form [!]KEY[/path][#fragment].
func CiteDetails(cite string, markedNormative bool) (key string, normative bool) {
	cite = strings.TrimSpace(cite)
	normative = markedNormative
	if strings.HasPrefix(cite, "!") {
		normative = true
		cite = cite[1:]
	}
	if idx := strings.IndexAny(cite, "/#"); idx != -1 {
		cite = cite[:idx]
	}
	return strings.TrimSpace(cite), normative
}

// selfPattern matches shortName as a whole word that is not part of a longer
// hyphenated name.
func selfPattern(shortName string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\w-])` + regexp.QuoteMeta(shortName) + `($|[^\w-])`)
}

// Reconcile rewrites self-citations to SelfKey and files every other key in
// the normative or informative set. A key that is normative anywhere ends up
// only in the normative set. Running it twice gives the same sets.
func Reconcile(shortName string, normative, informative Set, elems []Citer) {
	var self *regexp.Regexp
	if shortName = strings.TrimSpace(shortName); shortName != "" {
		self = selfPattern(shortName)
	}

	for _, elem := range elems {
		cite := elem.CitationKey()
		if strings.TrimSpace(cite) == "" {
			continue
		}
		if self != nil {
			cite = self.ReplaceAllString(cite, "${1}"+SelfKey+"${2}")
			elem.SetCitationKey(cite)
		}

		key, isNormative := CiteDetails(cite, elem.IsNormative())
		if key == "" || key == SelfKey {
			continue
		}
		if !isNormative && !normative.Has(key) {
			informative.Add(key)
			continue
		}
		normative.Add(key)
		informative.Delete(key)
	}
}

// CitedElements returns the definitions and references of doc that carry a
// citation key, definitions first, each in document order.
func CitedElements(doc *document.Document) []Citer {
	out := make([]Citer, 0)
	for _, def := range doc.Definitions {
		if strings.TrimSpace(def.Cite) != "" {
			out = append(out, def)
		}
	}
	for _, ref := range doc.References {
		if strings.TrimSpace(ref.Cite) != "" {
			out = append(out, ref)
		}
	}
	return out
}
