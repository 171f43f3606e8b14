package resolve

import (
	"errors"
	"testing"

	"github.com/morozRed/dfnref/internal/catalog"
	"github.com/morozRed/dfnref/internal/document"
)

func buildResolver(t *testing.T, defs ...*document.Definition) *Resolver {
	t.Helper()
	cat, _ := catalog.Build(catalog.Group(defs), nil)
	r, err := New(cat)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestNewRejectsUnbuiltCatalog(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrCatalogNotBuilt) {
		t.Fatalf("expected ErrCatalogNotBuilt for nil catalog, got %v", err)
	}
	if _, err := New(&catalog.Catalog{}); !errors.Is(err, ErrCatalogNotBuilt) {
		t.Fatalf("expected ErrCatalogNotBuilt for zero catalog, got %v", err)
	}
}

func TestResolveTokenEndToEnd(t *testing.T) {
	def := &document.Definition{Title: "Token", SourceKind: "dfn", Text: "Token"}
	r := buildResolver(t, def)
	ref := &document.Reference{Title: "Token", Text: "Token"}

	matched, eligible := r.ResolveReference(ref)
	if !matched || !eligible {
		t.Fatalf("expected reference to resolve")
	}
	if ref.Outcome != document.OutcomeInternal {
		t.Fatalf("expected resolved-internal, got %s", ref.Outcome)
	}
	if def.ID == "" || ref.Target != def.ID {
		t.Fatalf("expected link target %q, got %q", def.ID, ref.Target)
	}
	if ref.Kind != "dfn" || ref.EffectiveKind != document.KindDFN {
		t.Fatalf("expected pinned dfn kind, got %q", ref.Kind)
	}
	if ref.WrapCode {
		t.Fatalf("plain text definition must not wrap as code")
	}
}

func TestResolveTokenWrapsWhenDefinitionIsSingleCodeChild(t *testing.T) {
	def := &document.Definition{
		Title:      "Token",
		SourceKind: "dfn",
		Text:       "Token",
		Children:   []document.Child{{Element: "code"}},
	}
	r := buildResolver(t, def)
	ref := &document.Reference{Title: "token", Text: "token"}

	r.ResolveReference(ref)
	if ref.Outcome != document.OutcomeInternal || !ref.WrapCode {
		t.Fatalf("expected internal link wrapped as code, got %s wrap=%v", ref.Outcome, ref.WrapCode)
	}
}

func TestResolveKindFallbackToIDL(t *testing.T) {
	widget := &document.Definition{Title: "Widget", SourceKind: "dfn", Kind: "interface"}
	frob := &document.Definition{Title: "Frobnicate", Scope: "Widget", SourceKind: "dfn", IDL: true}
	r := buildResolver(t, widget, frob)

	ref := &document.Reference{Title: "frobnicate", Scope: "Widget"}
	r.ResolveReference(ref)
	if ref.Match != frob || ref.Outcome != document.OutcomeInternal {
		t.Fatalf("expected idl entry to be chosen, got %#v", ref)
	}
	if ref.Kind != "idl" {
		t.Fatalf("expected kind pinned to idl, got %q", ref.Kind)
	}
}

func TestResolveKindPreference(t *testing.T) {
	prose := &document.Definition{Title: "size", SourceKind: "dfn"}
	idl := &document.Definition{Title: "size", SourceKind: "dfn", Kind: "attribute"}
	r := buildResolver(t, prose, idl)

	unscoped := &document.Reference{Title: "size"}
	r.ResolveReference(unscoped)
	if unscoped.Match != prose {
		t.Fatalf("expected unscoped reference to prefer dfn")
	}

	explicit := &document.Reference{Title: "size", Kind: "attribute"}
	r.ResolveReference(explicit)
	if explicit.Match != idl {
		t.Fatalf("expected non-dfn request to use the idl entry")
	}
	if explicit.Kind != "attribute" {
		t.Fatalf("pinned kind must not be overwritten, got %q", explicit.Kind)
	}
}

func TestResolveRequestedKindFallsBackWhenMissing(t *testing.T) {
	prose := &document.Definition{Title: "origin", SourceKind: "dfn"}
	r := buildResolver(t, prose)

	ref := &document.Reference{Title: "origin", Kind: "idl"}
	matched, _ := r.ResolveReference(ref)
	if !matched || ref.Match != prose {
		t.Fatalf("expected fallback to the dfn entry")
	}
}

func TestResolveScopedPrefersIDLOverDFN(t *testing.T) {
	widget := &document.Definition{Title: "Widget", SourceKind: "dfn"}
	prose := &document.Definition{Title: "state", Scope: "Widget", SourceKind: "dfn"}
	idl := &document.Definition{Title: "state", Scope: "Widget", SourceKind: "dfn", IDL: true}
	r := buildResolver(t, widget, prose, idl)

	ref := &document.Reference{Title: "state", Scope: "Widget"}
	r.ResolveReference(ref)
	if ref.Match != idl {
		t.Fatalf("expected scoped reference to prefer idl")
	}
}

func TestResolveCitationOnDefinition(t *testing.T) {
	def := &document.Definition{Title: "fetch", SourceKind: "dfn", Cite: "FETCH"}
	r := buildResolver(t, def)

	ref := &document.Reference{Title: "fetch"}
	r.ResolveReference(ref)
	if ref.Outcome != document.OutcomeCitation || ref.Cite != "FETCH" {
		t.Fatalf("expected citation outcome with key copied, got %s %q", ref.Outcome, ref.Cite)
	}
	if ref.Target != "" {
		t.Fatalf("citation outcome must not link locally")
	}
}

func TestResolveExplicitCiteShortCircuits(t *testing.T) {
	r := buildResolver(t)
	ref := &document.Reference{Title: "anything", Cite: "HTML"}
	matched, eligible := r.ResolveReference(ref)
	if !matched || !eligible || ref.Outcome != document.OutcomeCitation {
		t.Fatalf("expected explicit cite to short-circuit, got %s", ref.Outcome)
	}
}

func TestResolveUnknownScopeIsPossiblyExternal(t *testing.T) {
	def := &document.Definition{Title: "body", Scope: "Request", SourceKind: "dfn"}
	r := buildResolver(t, def)

	ref := &document.Reference{Title: "body", Scope: "Request"}
	matched, _ := r.ResolveReference(ref)
	if !matched {
		t.Fatalf("expected catalog match")
	}
	if ref.Outcome != document.OutcomePossiblyExternal || ref.Target != "" {
		t.Fatalf("expected possibly-external outcome, got %s", ref.Outcome)
	}
	if ref.Kind != "dfn" {
		t.Fatalf("expected kind to be pinned even when unresolved, got %q", ref.Kind)
	}
}

func TestResolveExternalDefinitionUsesClassLabel(t *testing.T) {
	labelled := &document.Definition{Title: "task", SourceKind: "dfn", External: true, AlternateLabels: []string{"queue a task", "task"}, Text: "task"}
	bare := &document.Definition{Title: "event loop", SourceKind: "dfn", External: true, Text: " event loop "}
	r := buildResolver(t, labelled, bare)

	ref := &document.Reference{Title: "task"}
	r.ResolveReference(ref)
	if ref.Outcome != document.OutcomeClassLabel || ref.Label != "queue a task" {
		t.Fatalf("expected class label from first alternate label, got %s %q", ref.Outcome, ref.Label)
	}

	ref2 := &document.Reference{Title: "event loop"}
	r.ResolveReference(ref2)
	if ref2.Label != "event loop" {
		t.Fatalf("expected label from text, got %q", ref2.Label)
	}
}

func TestResolveIDLPartialIsNeverLinkedLocally(t *testing.T) {
	def := &document.Definition{Title: "Window", SourceKind: "dfn", Kind: "interface"}
	r := buildResolver(t, def)

	ref := &document.Reference{Title: "Window", IDLPartial: true}
	matched, _ := r.ResolveReference(ref)
	if !matched || ref.Outcome != document.OutcomePossiblyExternal {
		t.Fatalf("expected partial idl reference to stay unlinked, got %s", ref.Outcome)
	}
}

func TestResolveTriesTargetsInOrder(t *testing.T) {
	global := &document.Definition{Title: "name", SourceKind: "dfn"}
	r := buildResolver(t, global)

	ref := &document.Reference{
		Title: "name",
		Targets: []document.Target{
			{Title: "name", Scope: "Attr"},
			{Title: "name"},
		},
	}
	matched, _ := r.ResolveReference(ref)
	if !matched || ref.Match != global || ref.Outcome != document.OutcomeInternal {
		t.Fatalf("expected global fallback target to resolve, got %s", ref.Outcome)
	}
}

func TestResolveWithoutTargetsIsNotEligible(t *testing.T) {
	r := buildResolver(t)
	matched, eligible := r.ResolveReference(&document.Reference{})
	if matched || eligible {
		t.Fatalf("expected reference without targets to be skipped")
	}
}
