// Package report persists check results between runs.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/document"
)

const (
	ReportFile     = "report.json"
	ReferencesFile = "references.jsonl"
	CurrentVersion = "2"
)

// DocumentReport is the stored result of checking one document.
type DocumentReport struct {
	Hash        string            `json:"hash"`
	Format      string            `json:"format,omitempty"`
	Definitions int               `json:"definitions"`
	References  int               `json:"references"`
	Outcomes    map[string]int    `json:"outcomes,omitempty"`
	Deferred    []string          `json:"deferred,omitempty"`
	Normative   []string          `json:"normative,omitempty"`
	Informative []string          `json:"informative,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Errors counts error diagnostics.
func (d DocumentReport) Errors() int {
	n := 0
	for _, item := range d.Diagnostics {
		if item.Severity == diag.SeverityError {
			n++
		}
	}
	return n
}

// Report holds the results of every checked document.
type Report struct {
	Version      string                    `json:"version"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Documents    map[string]DocumentReport `json:"documents"`
	OutputHashes map[string]string         `json:"output_hashes,omitempty"`
}

func New() *Report {
	return &Report{
		Version:      CurrentVersion,
		Documents:    make(map[string]DocumentReport),
		OutputHashes: make(map[string]string),
	}
}

// Load reads the report from dir. A missing report yields an empty one.
func Load(dir string) (*Report, error) {
	path := filepath.Join(dir, ReportFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	migrate(&r)
	return &r, nil
}

// Save writes the report into dir, creating it when needed.
func (r *Report) Save(dir string) error {
	migrate(r)
	r.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return os.WriteFile(filepath.Join(dir, ReportFile), data, 0644)
}

func (r *Report) SetDocument(path string, doc DocumentReport) {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	r.Documents[path] = doc
}

func (r *Report) RemoveDocument(path string) {
	delete(r.Documents, path)
}

// PruneMissing removes documents whose file no longer exists. Relative
// paths are taken from root. It returns the removed paths, sorted.
func (r *Report) PruneMissing(root string) []string {
	removed := make([]string, 0)
	for _, path := range r.Paths() {
		full := path
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, path)
		}
		if _, err := os.Stat(full); os.IsNotExist(err) {
			r.RemoveDocument(path)
			removed = append(removed, path)
		}
	}
	return removed
}

// HasChanged reports whether hash differs from the stored one.
func (r *Report) HasChanged(path, hash string) bool {
	doc, ok := r.Documents[path]
	if !ok {
		return true
	}
	return doc.Hash != hash
}

// Paths returns the stored document paths, sorted.
func (r *Report) Paths() []string {
	out := make([]string, 0, len(r.Documents))
	for path := range r.Documents {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Outcomes sums outcome counts over every document.
func (r *Report) Outcomes() map[string]int {
	out := make(map[string]int)
	for _, doc := range r.Documents {
		for outcome, n := range doc.Outcomes {
			out[outcome] += n
		}
	}
	return out
}

func (r *Report) SetOutputHash(path, hash string) {
	if r.OutputHashes == nil {
		r.OutputHashes = make(map[string]string)
	}
	r.OutputHashes[path] = hash
}

func (r *Report) OutputHash(path string) (string, bool) {
	hash, ok := r.OutputHashes[path]
	return hash, ok
}

// NewDocumentReport summarizes a resolved document.
func NewDocumentReport(doc *document.Document, diagnostics []diag.Diagnostic, normative, informative []string) DocumentReport {
	outcomes := make(map[string]int)
	deferred := make([]string, 0)
	seen := make(map[string]bool)
	for _, ref := range doc.References {
		outcomes[ref.Outcome.String()]++
		if ref.Outcome == document.OutcomePossiblyExternal && !seen[ref.Title] {
			seen[ref.Title] = true
			deferred = append(deferred, ref.Title)
		}
	}
	return DocumentReport{
		Hash:        doc.Hash,
		Format:      doc.Format,
		Definitions: len(doc.Definitions),
		References:  len(doc.References),
		Outcomes:    outcomes,
		Deferred:    deferred,
		Normative:   normative,
		Informative: informative,
		Diagnostics: diagnostics,
	}
}

func migrate(r *Report) {
	if r.Documents == nil {
		r.Documents = make(map[string]DocumentReport)
	}
	if r.OutputHashes == nil {
		r.OutputHashes = make(map[string]string)
	}

	switch r.Version {
	case "", "1":
		r.Version = CurrentVersion
	case CurrentVersion:
	default:
		// Leave unknown versions alone.
	}
}
