package catalog

import (
	"strings"
	"testing"

	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
)

type recordingReporter struct {
	items []diag.Diagnostic
}

func (r *recordingReporter) Report(d diag.Diagnostic) {
	r.items = append(r.items, d)
}

func dfn(title string) *document.Definition {
	return &document.Definition{Title: title, SourceKind: "dfn"}
}

func TestBuildLookupIsCaseInsensitive(t *testing.T) {
	def := dfn("Foo")
	cat, dups := Build(Group([]*document.Definition{def}), nil)
	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %d", len(dups))
	}

	for _, title := range []string{"Foo", "foo", "FOO"} {
		candidates, ok := cat.Lookup(title, "")
		if !ok {
			t.Fatalf("expected %q to resolve", title)
		}
		if candidates.DFN != def {
			t.Fatalf("expected %q to return the same definition", title)
		}
	}
}

func TestBuildCanonicalDefinitionWinsAndDuplicateIsReported(t *testing.T) {
	d1 := dfn("Widget")
	d2 := dfn("Widget")
	cat, dups := Build(Group([]*document.Definition{d1, d2}), nil)

	candidates, ok := cat.Lookup("widget", "")
	if !ok || candidates.DFN != d1 {
		t.Fatalf("expected first canonical definition to be retained")
	}
	if len(dups) != 1 || dups[0].Duplicate != d2 || dups[0].Original != d1 {
		t.Fatalf("expected d2 reported as duplicate of d1, got %#v", dups)
	}

	reporter := &recordingReporter{}
	ReportDuplicates(dups, reporter)
	if len(reporter.items) != 1 {
		t.Fatalf("expected one duplicate diagnostic, got %d", len(reporter.items))
	}
	if reporter.items[0].Code != diag.CodeDuplicateDefinition || len(reporter.items[0].Elements) != 1 {
		t.Fatalf("unexpected diagnostic %#v", reporter.items[0])
	}
	if !strings.Contains(reporter.items[0].Message, "Widget") {
		t.Fatalf("expected message to name the title, got %q", reporter.items[0].Message)
	}
	if d2.ID != "" {
		t.Fatalf("expected duplicate to stay without an id, got %q", d2.ID)
	}
}

func TestBuildNonCanonicalIsReplacedWithoutReport(t *testing.T) {
	first := &document.Definition{Title: "frob", SourceKind: "a"}
	second := &document.Definition{Title: "frob", SourceKind: "span"}
	cat, dups := Build(Group([]*document.Definition{first, second}), nil)

	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %d", len(dups))
	}
	candidates, _ := cat.Lookup("frob", "")
	if candidates.DFN != second {
		t.Fatalf("expected last non-canonical occurrence to win")
	}
}

func TestBuildCanonicalIsNeverOverwrittenByStrayOccurrence(t *testing.T) {
	canonical := dfn("frob")
	stray := &document.Definition{Title: "frob", SourceKind: "a"}
	cat, dups := Build(Group([]*document.Definition{canonical, stray}), nil)

	candidates, _ := cat.Lookup("frob", "")
	if candidates.DFN != canonical {
		t.Fatalf("expected canonical definition to survive")
	}
	if len(dups) != 0 {
		t.Fatalf("stray occurrences must not be reported as duplicates")
	}
}

func TestBuildCanonicalReplacesEarlierStrayOccurrence(t *testing.T) {
	stray := &document.Definition{Title: "frob", SourceKind: "a"}
	canonical := dfn("frob")
	cat, _ := Build(Group([]*document.Definition{stray, canonical}), nil)

	candidates, _ := cat.Lookup("frob", "")
	if candidates.DFN != canonical {
		t.Fatalf("expected canonical definition to replace the stray one")
	}
}

func TestBuildDifferentRawKindIsSkippedNotDuplicated(t *testing.T) {
	method := &document.Definition{Title: "go", Scope: "Car", Kind: "method", SourceKind: "dfn"}
	attribute := &document.Definition{Title: "go", Scope: "Car", Kind: "attribute", SourceKind: "dfn"}
	cat, dups := Build(Group([]*document.Definition{method, attribute}), nil)

	if len(dups) != 0 {
		t.Fatalf("expected no duplicates for differing raw kinds")
	}
	candidates, _ := cat.Lookup("go", "Car")
	if candidates.IDL != method {
		t.Fatalf("expected first idl definition to stay")
	}
}

func TestBuildSeparatesKindsAndScopes(t *testing.T) {
	prose := dfn("Frobnicate")
	idl := &document.Definition{Title: "frobnicate", Scope: "Widget", IDL: true, SourceKind: "dfn"}
	idlGlobal := &document.Definition{Title: "frobnicate", Kind: "method", SourceKind: "dfn"}
	cat, dups := Build(Group([]*document.Definition{prose, idl, idlGlobal}), nil)

	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %d", len(dups))
	}
	global, _ := cat.Lookup("frobnicate", "")
	if global.DFN != prose || global.IDL != idlGlobal {
		t.Fatalf("expected dfn and idl entries in the global scope")
	}
	scoped, ok := cat.Lookup("FROBNICATE", "widget")
	if !ok || scoped.IDL != idl || scoped.DFN != nil {
		t.Fatalf("expected only an idl entry for Widget scope")
	}
	if got := cat.Entries("frobnicate"); len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
}

func TestBuildMultipleScopes(t *testing.T) {
	def := &document.Definition{Title: "size", Scope: "Blob, File", IDL: true, SourceKind: "dfn"}
	cat, _ := Build(Group([]*document.Definition{def}), nil)

	for _, scope := range []string{"Blob", "File"} {
		candidates, ok := cat.Lookup("size", scope)
		if !ok || candidates.IDL != def {
			t.Fatalf("expected size to be defined for %s", scope)
		}
	}
	if _, ok := cat.Lookup("size", ""); ok {
		t.Fatalf("did not expect a global entry")
	}
}

func TestBuildRegistersAlternateLabels(t *testing.T) {
	def := &document.Definition{Title: "user agent", AlternateLabels: []string{"user agent", "UA"}, SourceKind: "dfn"}
	cat, dups := Build(Group([]*document.Definition{def}), nil)
	if len(dups) != 0 {
		t.Fatalf("a definition must not duplicate itself across its own labels")
	}
	if candidates, ok := cat.Lookup("ua", ""); !ok || candidates.DFN != def {
		t.Fatalf("expected alternate label to resolve")
	}
	if def.ID != "dfn-user-agent" {
		t.Fatalf("expected id from primary title, got %q", def.ID)
	}
}

func TestBuildAssignsUniqueIDs(t *testing.T) {
	a := dfn("Token")
	b := &document.Definition{Title: "token", Scope: "Parser", SourceKind: "dfn"}
	preset := &document.Definition{Title: "other", SourceKind: "dfn", ID: "custom"}
	ids := NewIDAllocator("dfn-token")

	Build(Group([]*document.Definition{a, b, preset}), ids)

	if a.ID != "dfn-token-0" {
		t.Fatalf("expected collision suffix, got %q", a.ID)
	}
	if b.ID != "dfn-token-1" {
		t.Fatalf("expected second collision suffix, got %q", b.ID)
	}
	if preset.ID != "custom" {
		t.Fatalf("expected existing id to be kept, got %q", preset.ID)
	}
}

func TestZeroCatalogIsNotBuilt(t *testing.T) {
	var cat Catalog
	if cat.Built() {
		t.Fatalf("zero catalog must not report as built")
	}
	if _, ok := cat.Lookup("x", ""); ok {
		t.Fatalf("zero catalog must be empty")
	}
	built, _ := Build(Group(nil), nil)
	if !built.Built() || built.Len() != 0 {
		t.Fatalf("expected empty built catalog")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Token":          "token",
		"user agent":     "user-agent",
		"  [[Slot]]  ":   "slot",
		"fetch(request)": "fetch-request",
		"!!!":            "generated",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
