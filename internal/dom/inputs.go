package dom

// Tags whose elements are natively focusable for text entry.
var nativeInputTags = map[string]bool{
	"input":    true,
	"textarea": true,
}

// IsInput reports whether the element accepts text input: either a native
// input tag that is not disabled, or any element with contenteditable set
// to "true".
func IsInput(e *Element) bool {
	if ce, ok := e.Attribute("contenteditable"); ok && ce == "true" {
		return true
	}
	if !nativeInputTags[e.Tag()] {
		return false
	}
	if _, disabled := e.Attribute("disabled"); disabled {
		return false
	}
	return true
}

// FindInputs returns the focusable input elements inside root's subtree in
// document order. Subtrees rooted at an element with the "hidden" attribute
// are skipped entirely.
func FindInputs(root *Element) []*Element {
	var inputs []*Element
	var walk func(e *Element)
	walk = func(e *Element) {
		if _, hidden := e.Attribute("hidden"); hidden {
			return
		}
		if IsInput(e) {
			inputs = append(inputs, e)
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	walk(root)
	return inputs
}
