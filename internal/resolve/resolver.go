// Package resolve links references to the definitions in a catalog.
package resolve

import (
	"errors"
	"strings"

	"github.com/morozRed/dfnref/internal/catalog"
	"github.com/morozRed/dfnref/internal/document"
)

// ErrCatalogNotBuilt is returned when resolution is attempted against a
// catalog that did not come out of catalog.Build.
var ErrCatalogNotBuilt = errors.New("resolve: catalog has not been built")

type Resolver struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) (*Resolver, error) {
	if !cat.Built() {
		return nil, ErrCatalogNotBuilt
	}
	return &Resolver{catalog: cat}, nil
}

// Resolve tries to link ref through target. It returns false only when the
// catalog has nothing for (target.Title, target.Scope); every other case
// writes an outcome onto ref and returns true.
func (r *Resolver) Resolve(ref *document.Reference, target document.Target) bool {
	candidates, ok := r.catalog.Lookup(target.Title, target.Scope)
	if !ok {
		return false
	}

	def := pickDefinition(candidates, ref, target.Scope)
	if def == nil {
		return false
	}

	ref.Match = def
	ref.Outcome = r.classify(ref, def)

	kind := def.EffectiveKind()
	ref.EffectiveKind = kind
	if _, pinned := ref.RequestedKind(); !pinned {
		ref.Kind = kind.String()
	}

	ref.WrapCode = WrapAsCode(ref, def)
	return true
}

// pickDefinition applies the kind preference. An unrequested kind prefers
// idl for scoped targets and dfn otherwise; a requested kind that is missing
// falls back to whatever kind is present.
func pickDefinition(candidates *catalog.Candidates, ref *document.Reference, scope string) *document.Definition {
	if requested, ok := ref.RequestedKind(); ok {
		if def := candidates.Get(requested); def != nil {
			return def
		}
		return fallback(candidates)
	}

	preferred := document.KindDFN
	if scope != "" {
		preferred = document.KindIDL
	}
	if def := candidates.Get(preferred); def != nil {
		return def
	}
	return fallback(candidates)
}

func fallback(candidates *catalog.Candidates) *document.Definition {
	if candidates.IDL != nil {
		return candidates.IDL
	}
	return candidates.DFN
}

func (r *Resolver) classify(ref *document.Reference, def *document.Definition) document.Outcome {
	switch {
	case def.Cite != "":
		ref.Cite = def.Cite
		return document.OutcomeCitation
	case ref.Scope != "" && !r.catalog.HasTitle(ref.Scope):
		return document.OutcomePossiblyExternal
	case def.External:
		ref.Label = classLabel(def)
		return document.OutcomeClassLabel
	case ref.IDLPartial:
		return document.OutcomePossiblyExternal
	default:
		ref.Target = def.ID
		return document.OutcomeInternal
	}
}

func classLabel(def *document.Definition) string {
	for _, label := range def.AlternateLabels {
		if label = strings.TrimSpace(label); label != "" {
			return label
		}
	}
	return strings.TrimSpace(def.Text)
}
