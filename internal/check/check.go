// Package check runs the full cross-reference pass over one scanned document:
// catalog, resolution, diagnostics and reference-set reconciliation.
package check

import (
	"fmt"
	"log/slog"

	"github.com/morozRed/dfnref/internal/biblio"
	"github.com/morozRed/dfnref/internal/catalog"
	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/resolve"
	"github.com/morozRed/dfnref/internal/suggest"
)

type Options struct {
	ShortName   string
	XRef        bool
	Workers     int
	Suggestions int
	Normative   []string
	Informative []string
	Logger      *slog.Logger
}

type Result struct {
	Document    *document.Document
	Catalog     *catalog.Catalog
	Summary     resolve.Summary
	Duplicates  []catalog.Duplicate
	Diagnostics []diag.Diagnostic
	Normative   []string
	Informative []string
}

// Errors counts error diagnostics.
func (r *Result) Errors() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			n++
		}
	}
	return n
}

// BuildCatalog indexes the definitions of doc and reports duplicates to
// reporter. Generated IDs avoid the IDs already present in doc.
func BuildCatalog(doc *document.Document, reporter diag.Reporter) (*catalog.Catalog, []catalog.Duplicate) {
	ids := catalog.NewIDAllocator(doc.IDs...)
	cat, dups := catalog.Build(catalog.Group(doc.Definitions), ids)
	catalog.ReportDuplicates(dups, reporter)
	return cat, dups
}

// Document resolves every reference in doc in place.
func Document(doc *document.Document, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("file", doc.Path)

	collector := diag.NewCollector(logger)
	cat, dups := BuildCatalog(doc, collector)

	resolver, err := resolve.New(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare resolver for %s: %w", doc.Path, err)
	}
	summary := resolver.ResolveAll(doc.References, resolve.Options{
		XRef:        opts.XRef,
		Workers:     opts.Workers,
		Reporter:    collector,
		Suggester:   suggest.Build(cat),
		Suggestions: opts.Suggestions,
		Logger:      logger,
	})

	normative, informative := bibliography(doc, opts)

	logger.Info("checked document",
		"definitions", len(doc.Definitions),
		"titles", cat.Len(),
		"references", summary.Total,
		"broken", summary.Broken,
		"deferred", summary.Deferred,
	)

	return &Result{
		Document:    doc,
		Catalog:     cat,
		Summary:     summary,
		Duplicates:  dups,
		Diagnostics: collector.Diagnostics(),
		Normative:   normative,
		Informative: informative,
	}, nil
}

// bibliography reconciles the configured reference sets with the citation
// keys found in doc and returns both sets sorted. It must run after
// resolution, which copies citation keys from definitions onto references.
func bibliography(doc *document.Document, opts Options) (normative, informative []string) {
	norm := biblio.NewSet(opts.Normative...)
	inform := biblio.NewSet(opts.Informative...)
	biblio.Reconcile(opts.ShortName, norm, inform, biblio.CitedElements(doc))
	return norm.Sorted(), inform.Sorted()
}
