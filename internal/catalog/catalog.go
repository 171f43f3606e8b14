// Package catalog builds the read-only definition catalog that references are
// resolved against: title -> scope -> kind -> definition.
package catalog

import (
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/titleindex"
)

// Candidates holds at most one definition per kind for a (title, scope) pair.
type Candidates struct {
	DFN *document.Definition
	IDL *document.Definition
}

func (c *Candidates) Get(kind document.Kind) *document.Definition {
	if c == nil {
		return nil
	}
	if kind == document.KindIDL {
		return c.IDL
	}
	return c.DFN
}

func (c *Candidates) set(kind document.Kind, def *document.Definition) {
	if kind == document.KindIDL {
		c.IDL = def
		return
	}
	c.DFN = def
}

func (c *Candidates) Empty() bool {
	return c == nil || (c.DFN == nil && c.IDL == nil)
}

type scopeSet = titleindex.Index[*Candidates]

// Catalog is produced by Build and never mutated afterwards.
type Catalog struct {
	titles *titleindex.Index[*scopeSet]
	built  bool
}

// Entry is one (title, scope, kind) slot of the catalog.
type Entry struct {
	Title      string               `json:"title"`
	Scope      string               `json:"scope"`
	Kind       string               `json:"kind"`
	Definition *document.Definition `json:"definition"`
}

// Built reports whether c came out of Build.
func (c *Catalog) Built() bool {
	return c != nil && c.built
}

// Lookup returns the candidates for title within scope.
func (c *Catalog) Lookup(title, scope string) (*Candidates, bool) {
	if c == nil {
		return nil, false
	}
	scopes, ok := c.titles.Get(title)
	if !ok {
		return nil, false
	}
	candidates, ok := scopes.Get(scope)
	if !ok || candidates.Empty() {
		return nil, false
	}
	return candidates, true
}

func (c *Catalog) HasTitle(title string) bool {
	return c != nil && c.titles.Has(title)
}

// Titles returns every catalogued title in document order.
func (c *Catalog) Titles() []string {
	if c == nil {
		return nil
	}
	return c.titles.Titles()
}

// Scopes returns the scopes defined for title.
func (c *Catalog) Scopes(title string) []string {
	if c == nil {
		return nil
	}
	scopes, ok := c.titles.Get(title)
	if !ok {
		return nil
	}
	return scopes.Titles()
}

// Entries lists every slot for title, ordered by scope insertion then kind.
func (c *Catalog) Entries(title string) []Entry {
	if c == nil {
		return nil
	}
	scopes, ok := c.titles.Get(title)
	if !ok {
		return nil
	}
	out := make([]Entry, 0)
	scopes.Range(func(scope string, candidates *Candidates) bool {
		for _, kind := range []document.Kind{document.KindDFN, document.KindIDL} {
			def := candidates.Get(kind)
			if def == nil {
				continue
			}
			out = append(out, Entry{Title: title, Scope: scope, Kind: kind.String(), Definition: def})
		}
		return true
	})
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.titles.Len()
}
