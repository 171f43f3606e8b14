package check

import (
	"reflect"
	"strings"
	"testing"

	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/scanner"
)

func sampleDocument() *document.Document {
	return &document.Document{
		Path: "index.html",
		IDs:  []string{"dfn-request"},
		Definitions: []*document.Definition{
			{Title: "request", SourceKind: "dfn"},
			{Title: "response", SourceKind: "dfn"},
			{Title: "response", SourceKind: "dfn"},
		},
		References: []*document.Reference{
			{Title: "request", Text: "request"},
			{Title: "responce", Text: "responce"},
			{Title: "fetch", Cite: "!FETCH#fetch"},
			{Title: "self", Cite: "my-spec#self"},
		},
	}
}

func TestDocumentResolvesAndReports(t *testing.T) {
	doc := sampleDocument()
	res, err := Document(doc, Options{ShortName: "my-spec", Workers: 2, Suggestions: 2, Informative: []string{"FETCH", "URL"}})
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if got := doc.References[0]; got.Outcome != document.OutcomeInternal || got.Target != "dfn-request-0" {
		t.Fatalf("expected request to resolve to a fresh id, got %#v", got)
	}
	if doc.References[1].Outcome != document.OutcomeBroken {
		t.Fatalf("expected typo to be broken, got %v", doc.References[1].Outcome)
	}
	if doc.References[2].Outcome != document.OutcomeCitation {
		t.Fatalf("expected citation outcome, got %v", doc.References[2].Outcome)
	}

	if len(res.Duplicates) != 1 || res.Summary.Broken != 1 {
		t.Fatalf("expected one duplicate and one broken reference, got %d/%d", len(res.Duplicates), res.Summary.Broken)
	}
	if res.Errors() != 1 || len(res.Diagnostics) != 2 {
		t.Fatalf("expected duplicate warning plus broken error, got %#v", res.Diagnostics)
	}
	var broken diag.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == diag.CodeBrokenReference {
			broken = d
		}
	}
	if !strings.Contains(broken.Hint, `"response"`) {
		t.Fatalf("expected suggestion in hint, got %q", broken.Hint)
	}

	if !reflect.DeepEqual(res.Normative, []string{"FETCH"}) {
		t.Fatalf("expected FETCH to move to normative, got %v", res.Normative)
	}
	if !reflect.DeepEqual(res.Informative, []string{"URL"}) {
		t.Fatalf("unexpected informative set %v", res.Informative)
	}
	if doc.References[3].Cite != "__SPEC__#self" {
		t.Fatalf("expected self-citation to be rewritten, got %q", doc.References[3].Cite)
	}
}

func TestDocumentDefersWithXRef(t *testing.T) {
	doc := sampleDocument()
	res, err := Document(doc, Options{XRef: true, Workers: 1})
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if res.Summary.Deferred != 1 || res.Summary.Broken != 0 || res.Errors() != 0 {
		t.Fatalf("expected typo to be deferred, got %#v", res.Summary)
	}
	if doc.References[1].Outcome != document.OutcomePossiblyExternal {
		t.Fatalf("expected possibly-external outcome, got %v", doc.References[1].Outcome)
	}
}

func TestBuildCatalogAvoidsExistingIDs(t *testing.T) {
	doc := sampleDocument()
	cat, dups := BuildCatalog(doc, diag.Discard)
	if cat.Len() != 2 || len(dups) != 1 {
		t.Fatalf("expected two titles and one duplicate, got %d/%d", cat.Len(), len(dups))
	}
	if doc.Definitions[0].ID == "dfn-request" {
		t.Fatalf("generated id must not collide with existing ids")
	}
}

func scanAndCheck(t *testing.T, content string) *document.Document {
	t.Helper()
	doc, err := scanner.NewHTMLScanner().Scan("index.html", []byte(content))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if _, err := Document(doc, Options{Workers: 1}); err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	return doc
}

func TestDocumentClassLabelUsesFirstLinkingText(t *testing.T) {
	doc := scanAndCheck(t, `<p><dfn class="externalDFN" data-lt="Foo">foo text</dfn> and <a>Foo</a></p>`)
	if len(doc.References) != 1 {
		t.Fatalf("expected one reference, got %d", len(doc.References))
	}
	ref := doc.References[0]
	if ref.Outcome != document.OutcomeClassLabel || ref.Label != "Foo" {
		t.Fatalf("expected class label Foo, got %s label=%q", ref.Outcome, ref.Label)
	}
}

func TestDocumentWrapsIDLReferenceNamingFirstLinkingText(t *testing.T) {
	doc := scanAndCheck(t, `<p><dfn data-dfn-type="interface">Req</dfn></p>
<div data-dfn-for="Req"><dfn data-idl data-dfn-type="method" data-lt="fetch()">fetch</dfn></div>
<p><a data-link-for="Req">fetch()</a></p>`)
	if len(doc.References) != 1 {
		t.Fatalf("expected one reference, got %d", len(doc.References))
	}
	ref := doc.References[0]
	if ref.Outcome != document.OutcomeInternal || !ref.WrapCode {
		t.Fatalf("expected wrapped internal link, got %s wrap=%v", ref.Outcome, ref.WrapCode)
	}
}
