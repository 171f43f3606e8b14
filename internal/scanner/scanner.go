// Package scanner turns source documents into the definitions and references
// the resolver works on.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/fileutil"
	"github.com/morozRed/dfnref/internal/ignore"
)

// Scanner extracts definitions and references from one document format.
type Scanner interface {
	// Format returns the format name (e.g. "html")
	Format() string

	// Extensions returns file extensions this scanner handles
	Extensions() []string

	// Scan extracts definitions and references from content
	Scan(filename string, content []byte) (*document.Document, error)
}

// Registry holds all registered scanners
type Registry struct {
	scanners    map[string]Scanner // format -> scanner
	extToFormat map[string]string  // extension -> format
}

func NewRegistry() *Registry {
	return &Registry{
		scanners:    make(map[string]Scanner),
		extToFormat: make(map[string]string),
	}
}

// DefaultRegistry returns a registry with every built-in scanner.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewHTMLScanner())
	return r
}

func (r *Registry) Register(s Scanner) {
	format := s.Format()
	r.scanners[format] = s
	for _, ext := range s.Extensions() {
		r.extToFormat[strings.ToLower(ext)] = format
	}
}

// ScannerForFile returns the scanner registered for the file's extension.
func (r *Registry) ScannerForFile(filename string) (Scanner, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := r.extToFormat[ext]
	if !ok {
		return nil, false
	}
	s, ok := r.scanners[format]
	return s, ok
}

// SupportedExtensions returns all supported file extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToFormat))
	for ext := range r.extToFormat {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ScanFile scans a single file. Unsupported files return (nil, nil).
func (r *Registry) ScanFile(path string) (*document.Document, error) {
	s, ok := r.ScannerForFile(path)
	if !ok {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := s.Scan(path, content)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	doc.Format = s.Format()
	doc.Hash = fileutil.HashBytes(content)
	return doc, nil
}

// ScanResult collects the documents and issues from ScanFiles.
type ScanResult struct {
	Documents []*document.Document
	Issues    []document.ScanIssue
}

// ScanFiles scans paths in the given order. Failures become issues so one
// bad file does not stop the rest.
func (r *Registry) ScanFiles(paths []string) *ScanResult {
	result := &ScanResult{
		Documents: make([]*document.Document, 0, len(paths)),
		Issues:    make([]document.ScanIssue, 0),
	}
	for _, path := range paths {
		doc, err := r.ScanFile(path)
		if err != nil {
			format := ""
			if s, ok := r.ScannerForFile(path); ok {
				format = s.Format()
			}
			result.Issues = append(result.Issues, document.ScanIssue{
				File:     path,
				Format:   format,
				Severity: "error",
				Message:  err.Error(),
			})
			continue
		}
		if doc == nil {
			result.Issues = append(result.Issues, document.ScanIssue{
				File:     path,
				Severity: "warning",
				Message:  "unsupported file type",
			})
			continue
		}
		result.Documents = append(result.Documents, doc)
	}
	return result
}

// CollectFiles expands paths into the supported files to scan. Files are
// kept as given; directories are walked in lexical order, skipping
// anything matched by the ignore rules found at their root.
func (r *Registry) CollectFiles(paths []string) ([]string, []document.ScanIssue, error) {
	files := make([]string, 0)
	issues := make([]document.ScanIssue, 0)
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to access %q: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		userRules, err := ignore.LoadRules(root)
		if err != nil {
			return nil, nil, err
		}
		matcher := ignore.NewMatcher(userRules)

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
			relPath, relErr := filepath.Rel(root, path)
			if relErr != nil {
				relPath = path
			}
			if walkErr != nil {
				issues = append(issues, document.ScanIssue{
					File:     relPath,
					Severity: "warning",
					Message:  fmt.Sprintf("walk error: %v", walkErr),
				})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if relPath == "." {
				return nil
			}
			if matcher.ShouldIgnore(relPath, d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := r.ScannerForFile(path); ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return files, issues, nil
}
