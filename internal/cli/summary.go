package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/dfnref/internal/check"
	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/fileutil"
)

type CheckSummary struct {
	Mode              string            `json:"mode"`
	RootPath          string            `json:"root_path"`
	OutputDir         string            `json:"output_dir,omitempty"`
	XRef              bool              `json:"xref"`
	Documents         int               `json:"documents"`
	Unchanged         int               `json:"unchanged"`
	Definitions       int               `json:"definitions"`
	Titles            int               `json:"titles"`
	References        int               `json:"references"`
	Internal          int               `json:"internal"`
	Cited             int               `json:"cited"`
	ClassLabel        int               `json:"class_label"`
	Deferred          int               `json:"deferred"`
	Broken            int               `json:"broken"`
	Duplicates        int               `json:"duplicates"`
	Errors            int               `json:"errors"`
	Warnings          int               `json:"warnings"`
	ReportOutcomes    map[string]int    `json:"report_outcomes,omitempty"`
	ReferencesWritten bool              `json:"references_written"`
	DurationMS        int64             `json:"duration_ms"`
	Files             []string          `json:"files,omitempty"`
	Diagnostics       []diag.Diagnostic `json:"diagnostics,omitempty"`
}

func (s *CheckSummary) add(res *check.Result) {
	s.Documents++
	s.Files = append(s.Files, res.Document.Path)
	s.Definitions += len(res.Document.Definitions)
	s.Titles += res.Catalog.Len()
	s.References += res.Summary.Total
	s.Internal += res.Summary.Internal
	s.Cited += res.Summary.Cited
	s.ClassLabel += res.Summary.ClassLabel
	s.Deferred += res.Summary.Deferred
	s.Broken += res.Summary.Broken
	s.Duplicates += len(res.Duplicates)
	for _, d := range res.Diagnostics {
		switch d.Severity {
		case diag.SeverityError:
			s.Errors++
		case diag.SeverityWarning:
			s.Warnings++
		}
	}
	s.Diagnostics = append(s.Diagnostics, res.Diagnostics...)
}

func PrintCheckSummary(summary CheckSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(summary)
	}

	fmt.Printf("check complete in %dms\n", summary.DurationMS)
	if summary.OutputDir != "" {
		fmt.Printf("output: %s\n", summary.OutputDir)
	}
	fmt.Printf("documents: checked=%d unchanged=%d definitions=%d titles=%d\n", summary.Documents, summary.Unchanged, summary.Definitions, summary.Titles)
	fmt.Printf("references: total=%d internal=%d cited=%d class-label=%d deferred=%d broken=%d\n",
		summary.References,
		summary.Internal,
		summary.Cited,
		summary.ClassLabel,
		summary.Deferred,
		summary.Broken,
	)
	fmt.Printf("diagnostics: errors=%d warnings=%d duplicates=%d\n", summary.Errors, summary.Warnings, summary.Duplicates)
	if len(summary.Files) > 0 {
		fmt.Printf("files (%d): %s\n", len(summary.Files), SummarizePaths(summary.Files, 8))
	}
	return nil
}

// PrintDiagnostics prints one block per diagnostic, compiler style.
func PrintDiagnostics(results []*check.Result) {
	for _, d := range diagnosticsOf(results) {
		fmt.Println(FormatDiagnostic(d))
	}
}

func FormatDiagnostic(d diag.Diagnostic) string {
	var b strings.Builder
	location := "-"
	if len(d.Elements) > 0 {
		location = formatPosition(d.Elements[0].Pos)
	}
	fmt.Fprintf(&b, "%s: %s: %s [%s]", location, d.Severity, d.Message, d.Code)
	for _, el := range d.Elements[min(1, len(d.Elements)):] {
		fmt.Fprintf(&b, "\n  also at %s", formatPosition(el.Pos))
	}
	if d.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", d.Hint)
	}
	return b.String()
}

func formatPosition(pos document.Position) string {
	if pos.File == "" {
		return "-"
	}
	if pos.Line == 0 {
		return pos.File
	}
	return fmt.Sprintf("%s:%d:%d", pos.File, pos.Line, pos.Column)
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
