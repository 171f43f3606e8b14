package report

import (
	"path/filepath"

	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/fileutil"
)

// ReferenceRecord is one line of the references JSONL output.
type ReferenceRecord struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Title    string `json:"title"`
	Scope    string `json:"scope,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Outcome  string `json:"outcome"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
	Cite     string `json:"cite,omitempty"`
	WrapCode bool   `json:"wrap_code,omitempty"`
}

// Records flattens the references of docs in document order.
func Records(docs []*document.Document) []ReferenceRecord {
	out := make([]ReferenceRecord, 0)
	for _, doc := range docs {
		for _, ref := range doc.References {
			file := ref.Pos.File
			if file == "" {
				file = doc.Path
			}
			out = append(out, ReferenceRecord{
				File:     file,
				Line:     ref.Pos.Line,
				Column:   ref.Pos.Column,
				Title:    ref.Title,
				Scope:    ref.Scope,
				Kind:     ref.Kind,
				Outcome:  ref.Outcome.String(),
				Target:   ref.Target,
				Label:    ref.Label,
				Cite:     ref.Cite,
				WrapCode: ref.WrapCode,
			})
		}
	}
	return out
}

// WriteReferences writes records to ReferencesFile in dir unless the file
// already holds the same content. It reports whether a write happened.
func (r *Report) WriteReferences(dir string, records []ReferenceRecord) (bool, error) {
	data, err := fileutil.EncodeJSONL(records)
	if err != nil {
		return false, err
	}
	path := filepath.Join(dir, ReferencesFile)
	wrote, err := fileutil.WriteIfChangedTracked(path, data)
	if err != nil {
		return false, err
	}
	r.SetOutputHash(ReferencesFile, fileutil.HashBytes(data))
	return wrote, nil
}
