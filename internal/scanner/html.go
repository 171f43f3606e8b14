package scanner

import (
	"context"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/morozRed/dfnref/internal/document"
	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"
)

// HTMLScanner extracts definitions and references from HTML documents.
type HTMLScanner struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

func NewHTMLScanner() *HTMLScanner {
	p := sitter.NewParser()
	p.SetLanguage(tshtml.GetLanguage())
	return &HTMLScanner{parser: p}
}

func (h *HTMLScanner) Format() string {
	return "html"
}

func (h *HTMLScanner) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

func (h *HTMLScanner) Scan(filename string, content []byte) (*document.Document, error) {
	h.mu.Lock()
	tree, err := h.parser.ParseCtx(context.Background(), nil, content)
	h.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	doc := &document.Document{
		Path:        filename,
		Format:      "html",
		IDs:         make([]string, 0),
		Definitions: make([]*document.Definition, 0),
		References:  make([]*document.Reference, 0),
	}
	w := &htmlWalker{file: filename, content: content, doc: doc}
	w.walk(tree.RootNode(), scope{})
	return doc, nil
}

// scope is the state inherited from ancestor elements.
type scope struct {
	inCode    bool
	normative bool
	dfnFor    string
	linkFor   string
	inLink    bool
}

type element struct {
	node  *sitter.Node
	tag   string
	attrs map[string]string
}

func (e *element) attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *element) hasClass(class string) bool {
	for _, c := range strings.Fields(e.attrs["class"]) {
		if strings.EqualFold(c, class) {
			return true
		}
	}
	return false
}

type htmlWalker struct {
	file    string
	content []byte
	doc     *document.Document
}

func (w *htmlWalker) walk(node *sitter.Node, s scope) {
	switch node.Type() {
	case "script_element", "style_element", "comment", "doctype":
		return
	case "element":
		w.visitElement(node, s)
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), s)
	}
}

func (w *htmlWalker) visitElement(node *sitter.Node, s scope) {
	el := w.parseElement(node)
	if el == nil {
		return
	}

	if id, ok := el.attr("id"); ok && strings.TrimSpace(id) != "" {
		w.doc.IDs = append(w.doc.IDs, strings.TrimSpace(id))
	}

	inner := s
	if v, ok := el.attr("data-dfn-for"); ok {
		inner.dfnFor = NormalizeTitle(v)
	}
	if v, ok := el.attr("data-link-for"); ok {
		inner.linkFor = NormalizeTitle(v)
	}
	if el.hasClass("normative") {
		inner.normative = true
	}

	_, hasDfnType := el.attr("data-dfn-type")
	switch {
	case el.tag == "dfn" || hasDfnType:
		w.addDefinition(el, s, inner)
	case el.tag == "a" && !s.inLink && w.isLocalLink(el):
		w.addReference(el, s, inner)
		inner.inLink = true
	}

	if el.tag == "code" || el.tag == "pre" {
		inner.inCode = true
	}
	for _, child := range contentChildren(node) {
		w.walk(child, inner)
	}
}

func (w *htmlWalker) isLocalLink(el *element) bool {
	if _, ok := el.attr("href"); ok {
		return false
	}
	return !el.hasClass("externalDFN")
}

func (w *htmlWalker) addDefinition(el *element, outer, inner scope) {
	text := w.textContent(el.node)
	titleAttr := NormalizeTitle(firstAttr(el, "data-title", "title"))
	labels := SplitLabels(el.attrs["data-lt"])

	// The full data-lt list stays in the alternate labels; its first entry
	// doubles as the title.
	title := text
	switch {
	case len(labels) > 0:
		title = labels[0]
	case titleAttr != "":
		title = titleAttr
	}
	if title == "" {
		return
	}

	cite := strings.TrimSpace(el.attrs["data-cite"])
	_, idl := el.attr("data-idl")
	def := &document.Definition{
		Title:           title,
		Scope:           inner.dfnFor,
		Kind:            strings.TrimSpace(el.attrs["data-dfn-type"]),
		IDL:             idl,
		SourceKind:      el.tag,
		Cite:            cite,
		External:        el.hasClass("externalDFN"),
		AlternateLabels: labels,
		LocalLabels:     SplitLabels(el.attrs["data-local-lt"]),
		TitleAttr:       titleAttr,
		Text:            text,
		InCode:          outer.inCode,
		Children:        w.children(el.node),
		Normative:       inner.normative || strings.HasPrefix(cite, "!"),
		ID:              strings.TrimSpace(el.attrs["id"]),
		Pos:             w.position(el.node),
	}
	w.doc.Definitions = append(w.doc.Definitions, def)
}

func (w *htmlWalker) addReference(el *element, outer, inner scope) {
	text := w.textContent(el.node)
	title := text
	if labels := SplitLabels(el.attrs["data-lt"]); len(labels) > 0 {
		title = labels[0]
	}
	if title == "" {
		return
	}

	cite := strings.TrimSpace(el.attrs["data-cite"])
	ref := &document.Reference{
		Title:        title,
		Scope:        inner.linkFor,
		Kind:         strings.TrimSpace(el.attrs["data-link-type"]),
		Targets:      LinkTargets(title, inner.linkFor),
		Cite:         cite,
		IDLPartial:   strings.EqualFold(strings.TrimSpace(el.attrs["data-idl"]), "partial"),
		Text:         text,
		HasCodeChild: hasDescendant(el.node, "code", w.content),
		Normative:    inner.normative || strings.HasPrefix(cite, "!"),
		Pos:          w.position(el.node),
	}
	w.doc.References = append(w.doc.References, ref)
}

func (w *htmlWalker) parseElement(node *sitter.Node) *element {
	if node.ChildCount() == 0 {
		return nil
	}
	tagNode := node.Child(0)
	if tagNode.Type() != "start_tag" && tagNode.Type() != "self_closing_tag" {
		return nil
	}

	el := &element{node: node, attrs: make(map[string]string)}
	for i := 0; i < int(tagNode.ChildCount()); i++ {
		child := tagNode.Child(i)
		switch child.Type() {
		case "tag_name":
			el.tag = strings.ToLower(child.Content(w.content))
		case "attribute":
			name, value := w.parseAttribute(child)
			if name == "" {
				continue
			}
			if _, exists := el.attrs[name]; !exists {
				el.attrs[name] = value
			}
		}
	}
	if el.tag == "" {
		return nil
	}
	return el
}

func (w *htmlWalker) parseAttribute(node *sitter.Node) (string, string) {
	var name, value string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "attribute_name":
			name = strings.ToLower(child.Content(w.content))
		case "attribute_value":
			value = html.UnescapeString(child.Content(w.content))
		case "quoted_attribute_value":
			for j := 0; j < int(child.ChildCount()); j++ {
				if inner := child.Child(j); inner.Type() == "attribute_value" {
					value = html.UnescapeString(inner.Content(w.content))
				}
			}
		}
	}
	return name, value
}

// contentChildren returns the nodes between an element's start and end tags.
func contentChildren(node *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "start_tag", "end_tag", "self_closing_tag", "erroneous_end_tag":
			continue
		}
		out = append(out, child)
	}
	return out
}

func (w *htmlWalker) children(node *sitter.Node) []document.Child {
	var out []document.Child
	for _, child := range contentChildren(node) {
		switch child.Type() {
		case "element":
			if el := w.parseElement(child); el != nil {
				out = append(out, document.Child{Element: el.tag})
			}
		case "script_element":
			out = append(out, document.Child{Element: "script"})
		case "style_element":
			out = append(out, document.Child{Element: "style"})
		case "text", "entity":
			out = append(out, document.Child{})
		}
	}
	return out
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// textContent concatenates the text below node. Whitespace between text
// runs is kept as a single space; markup between them is dropped.
func (w *htmlWalker) textContent(node *sitter.Node) string {
	var b strings.Builder
	prevEnd := -1
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "script_element", "style_element", "comment":
			return
		case "text", "entity":
			start := int(n.StartByte())
			if prevEnd >= 0 && start > prevEnd {
				gap := tagPattern.ReplaceAll(w.content[prevEnd:start], nil)
				if strings.ContainsAny(string(gap), " \t\r\n") {
					b.WriteByte(' ')
				}
			}
			b.WriteString(html.UnescapeString(n.Content(w.content)))
			prevEnd = int(n.EndByte())
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	for _, child := range contentChildren(node) {
		visit(child)
	}
	return NormalizeTitle(b.String())
}

func hasDescendant(node *sitter.Node, tag string, content []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "element" && child.ChildCount() > 0 {
			start := child.Child(0)
			for j := 0; j < int(start.ChildCount()); j++ {
				if n := start.Child(j); n.Type() == "tag_name" && strings.EqualFold(n.Content(content), tag) {
					return true
				}
			}
		}
		if hasDescendant(child, tag, content) {
			return true
		}
	}
	return false
}

func (w *htmlWalker) position(node *sitter.Node) document.Position {
	p := node.StartPoint()
	return document.Position{File: w.file, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func firstAttr(el *element, names ...string) string {
	for _, name := range names {
		if v, ok := el.attr(name); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
