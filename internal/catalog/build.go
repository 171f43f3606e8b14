package catalog

import (
	"fmt"
	"strings"

	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/titleindex"
)

// Duplicate records a canonical definition that collided with an earlier
// canonical definition of the same (title, scope, kind).
type Duplicate struct {
	Title     string
	Scope     string
	Kind      document.Kind
	Original  *document.Definition
	Duplicate *document.Definition
}

// Group registers each definition under its title and its alternate and
// local labels, preserving document order within every title.
func Group(defs []*document.Definition) *titleindex.Index[[]*document.Definition] {
	byTitle := titleindex.New[[]*document.Definition]()
	for _, def := range defs {
		for _, title := range definitionTitles(def) {
			byTitle.Update(title, func(current []*document.Definition) []*document.Definition {
				return append(current, def)
			})
		}
	}
	return byTitle
}

func definitionTitles(def *document.Definition) []string {
	titles := make([]string, 0, 1+len(def.AlternateLabels)+len(def.LocalLabels))
	seen := make(map[string]bool)
	add := func(title string) {
		title = strings.TrimSpace(title)
		if title == "" {
			return
		}
		key := titleindex.Fold(title)
		if seen[key] {
			return
		}
		seen[key] = true
		titles = append(titles, title)
	}
	add(def.Title)
	for _, label := range def.AlternateLabels {
		add(label)
	}
	for _, label := range def.LocalLabels {
		add(label)
	}
	return titles
}

// Build folds the definitions of every title, in document order, into the
// catalog. A canonical definition is never replaced; a second canonical
// definition of the same raw kind is reported as a duplicate; any other
// occurrence replaces a non-canonical one. ids may be nil.
func Build(byTitle *titleindex.Index[[]*document.Definition], ids *IDAllocator) (*Catalog, []Duplicate) {
	if ids == nil {
		ids = NewIDAllocator()
	}
	cat := &Catalog{titles: titleindex.New[*scopeSet](), built: true}
	duplicates := make([]Duplicate, 0)

	byTitle.Range(func(title string, defs []*document.Definition) bool {
		scopes := titleindex.New[*Candidates]()
		for _, def := range defs {
			kind := def.EffectiveKind()
			for _, scope := range def.Scopes() {
				candidates, ok := scopes.Get(scope)
				if !ok {
					candidates = &Candidates{}
					scopes.Set(scope, candidates)
				}

				if existing := candidates.Get(kind); existing != nil && existing.Canonical() {
					if !def.Canonical() || def.RawKind() != existing.RawKind() {
						continue
					}
					duplicates = append(duplicates, Duplicate{
						Title:     title,
						Scope:     scope,
						Kind:      kind,
						Original:  existing,
						Duplicate: def,
					})
					continue
				}

				candidates.set(kind, def)
				ids.Assign(def, title)
			}
		}
		cat.titles.Set(title, scopes)
		return true
	})

	return cat, duplicates
}

// ReportDuplicates emits one diagnostic per title listing every duplicate.
func ReportDuplicates(duplicates []Duplicate, reporter diag.Reporter) {
	if reporter == nil || len(duplicates) == 0 {
		return
	}

	type group struct {
		title    string
		elements []diag.Element
		seen     map[*document.Definition]bool
	}
	order := make([]string, 0)
	groups := make(map[string]*group)
	for _, dup := range duplicates {
		key := titleindex.Fold(dup.Title)
		g, ok := groups[key]
		if !ok {
			g = &group{title: dup.Title, seen: make(map[*document.Definition]bool)}
			groups[key] = g
			order = append(order, key)
		}
		if g.seen[dup.Duplicate] {
			continue
		}
		g.seen[dup.Duplicate] = true
		g.elements = append(g.elements, diag.DefinitionElement(dup.Duplicate))
	}

	for _, key := range order {
		reporter.Report(diag.Diagnostic{
			Code:     diag.CodeDuplicateDefinition,
			Severity: diag.SeverityWarning,
			Message:  fmt.Sprintf("Duplicate definition(s) of %q", groups[key].title),
			Hint:     "Remove the duplicates, or give each one a distinct data-dfn-for or data-dfn-type.",
			Elements: groups[key].elements,
		})
	}
}
