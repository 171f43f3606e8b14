package resolve

import (
	"strings"

	"github.com/morozRed/dfnref/internal/document"
)

// CodeLike reports whether def reads as a code token: it is IDL, sits inside
// code formatting, or its only child is a code element. Mixed content such
// as a code element followed by punctuation does not count.
func CodeLike(def *document.Definition) bool {
	if def == nil {
		return false
	}
	if def.IDL || def.InCode {
		return true
	}
	return len(def.Children) == 1 && isCodeElement(def.Children[0].Element)
}

// WrapAsCode decides whether ref should be displayed as code. A reference
// that already carries a code child never wraps. IDL definitions only wrap
// when the reference text names the definition.
func WrapAsCode(ref *document.Reference, def *document.Definition) bool {
	if !CodeLike(def) || ref.HasCodeChild {
		return false
	}
	if def.IDL {
		return matchesTerm(def, strings.TrimSpace(ref.Text))
	}
	return true
}

func matchesTerm(def *document.Definition, term string) bool {
	if term == "" {
		return false
	}
	if strings.TrimSpace(def.Text) == term || def.TitleAttr == term || strings.TrimSpace(def.Title) == term {
		return true
	}
	for _, label := range def.AlternateLabels {
		if strings.TrimSpace(label) == term {
			return true
		}
	}
	for _, label := range def.LocalLabels {
		if strings.TrimSpace(label) == term {
			return true
		}
	}
	return false
}

func isCodeElement(name string) bool {
	return strings.EqualFold(name, "code")
}
