package document

import (
	"strings"
)

// Kind separates prose definitions from interface-style definitions.
type Kind int

const (
	KindDFN Kind = iota
	KindIDL
)

func (k Kind) String() string {
	switch k {
	case KindDFN:
		return "dfn"
	case KindIDL:
		return "idl"
	default:
		return "unknown"
	}
}

// EffectiveKind maps a raw kind attribute onto the dfn/idl split.
// Anything other than "dfn" (or empty) counts as idl, as does the idl flag.
func EffectiveKind(raw string, idlFlag bool) Kind {
	raw = strings.TrimSpace(raw)
	if idlFlag || (raw != "" && raw != "dfn") {
		return KindIDL
	}
	return KindDFN
}

// Outcome is the classification written onto a reference after resolution.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeInternal
	OutcomeCitation
	OutcomeClassLabel
	OutcomePossiblyExternal
	OutcomeBroken
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeInternal:
		return "resolved-internal"
	case OutcomeCitation:
		return "resolved-external-citation"
	case OutcomeClassLabel:
		return "resolved-external-classlabel"
	case OutcomePossiblyExternal:
		return "unresolved-possibly-external"
	case OutcomeBroken:
		return "unresolved-broken"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Position locates an element in its source document.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Child describes one child node of an element. Element is empty for text.
type Child struct {
	Element string `json:"element,omitempty"`
}

// Definition is a defining occurrence of a term.
type Definition struct {
	Title           string   `json:"title"`
	Scope           string   `json:"scope,omitempty"` // comma separated list of scopes; "" is global
	Kind            string   `json:"kind,omitempty"`  // raw kind attribute, "dfn" when absent
	IDL             bool     `json:"idl,omitempty"`
	SourceKind      string   `json:"source_kind"` // element category; "dfn" marks the canonical occurrence
	Cite            string   `json:"cite,omitempty"`
	External        bool     `json:"external,omitempty"`
	AlternateLabels []string `json:"alternate_labels,omitempty"`
	LocalLabels     []string `json:"local_labels,omitempty"`
	TitleAttr       string   `json:"title_attr,omitempty"`
	Text            string   `json:"text,omitempty"`
	InCode          bool     `json:"in_code,omitempty"`
	Children        []Child  `json:"children,omitempty"`
	Normative       bool     `json:"normative,omitempty"`
	ID              string   `json:"id,omitempty"`
	Pos             Position `json:"pos"`
}

// Canonical reports whether this is the primary defining element.
func (d *Definition) Canonical() bool {
	return d.SourceKind == "dfn"
}

func (d *Definition) EffectiveKind() Kind {
	return EffectiveKind(d.Kind, d.IDL)
}

// RawKind returns the kind attribute with its default applied.
func (d *Definition) RawKind() string {
	kind := strings.TrimSpace(d.Kind)
	if kind == "" {
		return "dfn"
	}
	return kind
}

// Scopes splits Scope into its individual entries. A definition without a
// scope lives in the global scope "".
func (d *Definition) Scopes() []string {
	if strings.TrimSpace(d.Scope) == "" {
		return []string{""}
	}
	parts := strings.Split(d.Scope, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func (d *Definition) CitationKey() string     { return d.Cite }
func (d *Definition) SetCitationKey(k string) { d.Cite = k }
func (d *Definition) IsNormative() bool       { return d.Normative }

// Target is one {title, scope} pair a reference may resolve against.
type Target struct {
	Title string `json:"title"`
	Scope string `json:"scope,omitempty"`
}

// Reference is a use of a term that should link to its definition.
type Reference struct {
	Title        string   `json:"title"`
	Scope        string   `json:"scope,omitempty"`
	Kind         string   `json:"kind,omitempty"` // requested kind; pinned after resolution
	Targets      []Target `json:"targets,omitempty"`
	Cite         string   `json:"cite,omitempty"`
	IDLPartial   bool     `json:"idl_partial,omitempty"`
	Text         string   `json:"text,omitempty"`
	HasCodeChild bool     `json:"has_code_child,omitempty"`
	Normative    bool     `json:"normative,omitempty"`
	Pos          Position `json:"pos"`

	Outcome       Outcome     `json:"outcome"`
	Target        string      `json:"target,omitempty"`
	Label         string      `json:"label,omitempty"`
	EffectiveKind Kind        `json:"-"`
	WrapCode      bool        `json:"wrap_code,omitempty"`
	Match         *Definition `json:"-"`
}

// LinkTargets returns the candidate targets to try, in order.
func (r *Reference) LinkTargets() []Target {
	if len(r.Targets) > 0 {
		return r.Targets
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil
	}
	return []Target{{Title: r.Title, Scope: r.Scope}}
}

// RequestedKind returns the kind pinned on the reference, if any.
func (r *Reference) RequestedKind() (Kind, bool) {
	raw := strings.TrimSpace(r.Kind)
	if raw == "" {
		return KindDFN, false
	}
	if raw == "dfn" {
		return KindDFN, true
	}
	return KindIDL, true
}

func (r *Reference) CitationKey() string     { return r.Cite }
func (r *Reference) SetCitationKey(k string) { r.Cite = k }
func (r *Reference) IsNormative() bool       { return r.Normative }

// Document holds everything a scanner found in one source file.
type Document struct {
	Path        string
	Format      string
	Hash        string
	IDs         []string
	Definitions []*Definition
	References  []*Reference
}

// ScanIssue captures non-fatal scanner warnings/errors.
type ScanIssue struct {
	File     string `json:"file"`
	Format   string `json:"format,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}
