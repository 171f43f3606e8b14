package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/dfnref/internal/check"
	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/fileutil"
	"github.com/morozRed/dfnref/internal/suggest"
	"github.com/morozRed/dfnref/internal/titleindex"
	"github.com/spf13/cobra"
)

// DefinitionRecord is one catalog slot matching a lookup.
type DefinitionRecord struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Title     string `json:"title"`
	Scope     string `json:"scope,omitempty"`
	Kind      string `json:"kind"`
	RawKind   string `json:"raw_kind"`
	ID        string `json:"id"`
	Element   string `json:"element"`
	Canonical bool   `json:"canonical"`
}

type LookupResult struct {
	Query       string             `json:"query"`
	Scope       string             `json:"scope,omitempty"`
	Definitions []DefinitionRecord `json:"definitions"`
	Suggestions []string           `json:"suggestions,omitempty"`
}

func RunLookup(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	scope, err := OptionalStringFlag(cmd, "for")
	if err != nil {
		return err
	}
	limit, err := OptionalIntFlag(cmd, "limit", 5)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	query := args[0]
	docs, err := scanInputs(args[1:], rootPath, logger)
	if err != nil {
		return fmt.Errorf("failed to scan documents: %w", err)
	}

	result := LookupResult{Query: query, Scope: scope, Definitions: make([]DefinitionRecord, 0)}
	seenSuggestion := make(map[string]bool)
	for _, doc := range docs {
		cat, _ := check.BuildCatalog(doc, diag.Discard)
		for _, entry := range cat.Entries(query) {
			if flagChanged(cmd, "for") && titleindex.Fold(entry.Scope) != titleindex.Fold(scope) {
				continue
			}
			def := entry.Definition
			result.Definitions = append(result.Definitions, DefinitionRecord{
				File:      doc.Path,
				Line:      def.Pos.Line,
				Title:     entry.Title,
				Scope:     entry.Scope,
				Kind:      entry.Kind,
				RawKind:   def.RawKind(),
				ID:        def.ID,
				Element:   def.SourceKind,
				Canonical: def.Canonical(),
			})
		}
		if cat.HasTitle(query) {
			continue
		}
		for _, title := range suggest.Build(cat).Suggest(query, limit) {
			if !seenSuggestion[titleindex.Fold(title)] && len(result.Suggestions) < limit {
				seenSuggestion[titleindex.Fold(title)] = true
				result.Suggestions = append(result.Suggestions, title)
			}
		}
	}

	if asJSON {
		if err := fileutil.PrintJSON(result); err != nil {
			return err
		}
	} else {
		printLookup(result)
	}
	if len(result.Definitions) == 0 {
		return fmt.Errorf("no definition found for %q", query)
	}
	return nil
}

func printLookup(result LookupResult) {
	if len(result.Definitions) == 0 {
		fmt.Printf("no definition for %q\n", result.Query)
		if len(result.Suggestions) > 0 {
			fmt.Printf("did you mean: %s\n", strings.Join(result.Suggestions, ", "))
		}
		return
	}

	fmt.Printf("definitions for %q (%d)\n", result.Query, len(result.Definitions))
	for _, rec := range result.Definitions {
		scope := rec.Scope
		if scope == "" {
			scope = "(global)"
		}
		fmt.Printf("- #%s [%s/%s] for=%s %s:%d\n", rec.ID, rec.Kind, rec.RawKind, scope, rec.File, rec.Line)
		if !rec.Canonical {
			fmt.Printf("  element: <%s>\n", rec.Element)
		}
	}
}
