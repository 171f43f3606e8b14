package diag

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/morozRed/dfnref/internal/document"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const (
	CodeDuplicateDefinition = "duplicate-definition"
	CodeBrokenReference     = "broken-reference"
)

// Element identifies a document element a diagnostic points at.
type Element struct {
	Tag  string            `json:"tag"`
	ID   string            `json:"id,omitempty"`
	Text string            `json:"text,omitempty"`
	Pos  document.Position `json:"pos"`
}

type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Hint     string    `json:"hint,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Reporter receives diagnostics. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}

func DefinitionElement(def *document.Definition) Element {
	tag := def.SourceKind
	if tag == "" {
		tag = "dfn"
	}
	return Element{Tag: tag, ID: def.ID, Text: def.Text, Pos: def.Pos}
}

func ReferenceElement(ref *document.Reference) Element {
	return Element{Tag: "a", Text: ref.Text, Pos: ref.Pos}
}

// Collector accumulates diagnostics and mirrors them to a logger.
type Collector struct {
	mu     sync.Mutex
	items  []Diagnostic
	logger *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()

	if c.logger == nil {
		return
	}
	level := slog.LevelWarn
	if d.Severity == SeverityError {
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.String("code", d.Code),
		slog.Int("elements", len(d.Elements)),
	}
	if len(d.Elements) > 0 {
		pos := d.Elements[0].Pos
		attrs = append(attrs, slog.String("file", pos.File), slog.Int("line", pos.Line))
	}
	c.logger.LogAttrs(context.Background(), level, d.Message, attrs...)
}

// Diagnostics returns a copy of everything reported, ordered by the position
// of each diagnostic's first element and then by message.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	out := append([]Diagnostic(nil), c.items...)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := firstPos(out[i]), firstPos(out[j])
		if pi.File != pj.File {
			return pi.File < pj.File
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Message < out[j].Message
	})
	return out
}

func (c *Collector) Count(severity Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func firstPos(d Diagnostic) document.Position {
	if len(d.Elements) == 0 {
		return document.Position{}
	}
	return d.Elements[0].Pos
}
