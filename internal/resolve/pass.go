package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/titleindex"
	"golang.org/x/sync/errgroup"
)

// Suggester proposes catalog titles close to an unknown one.
type Suggester interface {
	Suggest(query string, limit int) []string
}

type Options struct {
	// XRef defers possibly-external references to a later lookup pass
	// instead of reporting them as broken.
	XRef        bool
	Workers     int
	Reporter    diag.Reporter
	Suggester   Suggester
	Suggestions int
	Logger      *slog.Logger
}

type Summary struct {
	Total      int `json:"total"`
	Internal   int `json:"internal"`
	Cited      int `json:"cited"`
	ClassLabel int `json:"class_label"`
	Deferred   int `json:"deferred"`
	Broken     int `json:"broken"`
	Skipped    int `json:"skipped"`

	DeferredRefs []*document.Reference `json:"-"`
	BrokenRefs   []*document.Reference `json:"-"`
}

// ResolveReference runs every candidate target of ref in order until one
// resolves. References with an explicit citation key are not looked up.
// eligible is false when ref offers no target at all.
func (r *Resolver) ResolveReference(ref *document.Reference) (matched, eligible bool) {
	if strings.TrimSpace(ref.Cite) != "" {
		ref.Outcome = document.OutcomeCitation
		return true, true
	}

	targets := ref.LinkTargets()
	if len(targets) == 0 {
		return false, false
	}
	for _, target := range targets {
		if r.Resolve(ref, target) {
			return true, true
		}
	}
	ref.Outcome = document.OutcomePossiblyExternal
	return false, true
}

// ResolveAll resolves refs and triages the leftovers. With XRef enabled the
// possibly-external references are deferred; otherwise they become broken
// and are reported once per distinct title, in document order.
func (r *Resolver) ResolveAll(refs []*document.Reference, opts Options) Summary {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	if workers == 1 {
		for _, ref := range refs {
			r.ResolveReference(ref)
		}
	} else {
		// Workers only write to their own reference; the catalog is read-only.
		var g errgroup.Group
		g.SetLimit(workers)
		for _, ref := range refs {
			g.Go(func() error {
				r.ResolveReference(ref)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary := Summary{Total: len(refs)}
	for _, ref := range refs {
		switch ref.Outcome {
		case document.OutcomeNone:
			summary.Skipped++
		case document.OutcomeInternal:
			summary.Internal++
		case document.OutcomeCitation:
			summary.Cited++
		case document.OutcomeClassLabel:
			summary.ClassLabel++
		case document.OutcomePossiblyExternal:
			if opts.XRef {
				summary.Deferred++
				summary.DeferredRefs = append(summary.DeferredRefs, ref)
				continue
			}
			ref.Outcome = document.OutcomeBroken
			summary.Broken++
			summary.BrokenRefs = append(summary.BrokenRefs, ref)
		}
	}

	logger.Debug("resolved references",
		"total", summary.Total,
		"internal", summary.Internal,
		"cited", summary.Cited,
		"deferred", summary.Deferred,
		"broken", summary.Broken,
		"workers", workers,
	)

	r.reportBroken(summary.BrokenRefs, opts)
	return summary
}

func (r *Resolver) reportBroken(refs []*document.Reference, opts Options) {
	if opts.Reporter == nil || len(refs) == 0 {
		return
	}

	// Grouped by the first target title; the message names the reference's
	// own title so dotted links read as written.
	type group struct {
		title string
		label string
		refs  []*document.Reference
	}
	order := make([]string, 0)
	groups := make(map[string]*group)
	for _, ref := range refs {
		title := brokenTitle(ref)
		key := titleindex.Fold(title)
		g, ok := groups[key]
		if !ok {
			g = &group{title: title, label: displayTitle(ref)}
			groups[key] = g
			order = append(order, key)
		}
		g.refs = append(g.refs, ref)
	}

	for _, key := range order {
		g := groups[key]
		elements := make([]diag.Element, 0, len(g.refs))
		for _, ref := range g.refs {
			elements = append(elements, diag.ReferenceElement(ref))
		}
		opts.Reporter.Report(diag.Diagnostic{
			Code:     diag.CodeBrokenReference,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("No matching definition found for %q", g.label),
			Hint:     r.brokenHint(g.title, opts),
			Elements: elements,
		})
	}
}

func (r *Resolver) brokenHint(title string, opts Options) string {
	hint := "Add a definition, fix the link text, or cite the defining document with data-cite."
	if opts.Suggester == nil || opts.Suggestions <= 0 {
		return hint
	}
	suggestions := opts.Suggester.Suggest(title, opts.Suggestions)
	if len(suggestions) == 0 {
		return hint
	}
	quoted := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return fmt.Sprintf("Did you mean %s? %s", strings.Join(quoted, ", "), hint)
}

func displayTitle(ref *document.Reference) string {
	if title := strings.TrimSpace(ref.Title); title != "" {
		return title
	}
	return brokenTitle(ref)
}

func brokenTitle(ref *document.Reference) string {
	if targets := ref.LinkTargets(); len(targets) > 0 {
		return targets[0].Title
	}
	return ref.Title
}
