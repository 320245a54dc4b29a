package dom

import (
	"slices"
	"strings"
)

// MutationFreeAttr marks an element whose insertion or removal must not be
// treated as a content edit. The value "true" activates the marker.
const MutationFreeAttr = "data-mutation-free"

// Element is a node in the document tree.
//
// Elements are created detached and joined into a tree with AppendChild.
// Every element has at most one parent; appending an element that already
// has a parent detaches it from the old position first.
type Element struct {
	tag      string
	attrs    map[string]string
	text     string
	parent   *Element
	children []*Element

	// Root-only bookkeeping. Maintained on whichever element currently has
	// no parent; cleared when the element gains one.
	focused   *Element
	batch     *batchScope
	observers []*Observer
}

// NewElement creates a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{tag: tag}
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.tag
}

// Parent returns the element's parent, or nil for a root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the element's children in document order.
// The returned slice must not be mutated.
func (e *Element) Children() []*Element {
	return e.children
}

// Root walks up the parent chain and returns the tree root.
// A detached element is its own root.
func (e *Element) Root() *Element {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// AppendChild adds child as the last child of e, detaching it from any
// previous parent. Appending produces a childList mutation record.
func (e *Element) AppendChild(child *Element) {
	if child == nil || child == e || child.Contains(e) {
		return
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	// The child stops being a root; fold its root bookkeeping away.
	child.focused = nil
	child.batch = nil
	child.parent = e
	e.children = append(e.children, child)
	e.notify(Record{
		Type:       RecordChildList,
		Target:     e,
		AddedNodes: []*Element{child},
	})
}

// RemoveChild detaches child from e. Removals are observed from the
// position the child occupied before detaching.
func (e *Element) RemoveChild(child *Element) {
	if child == nil || child.parent != e {
		return
	}
	// Notify while the child is still attached so subtree observers and any
	// open batch scope on the root still see it.
	e.notify(Record{
		Type:         RecordChildList,
		Target:       e,
		RemovedNodes: []*Element{child},
	})
	e.detach(child)
}

// detach unlinks child without emitting a record.
func (e *Element) detach(child *Element) {
	if i := slices.Index(e.children, child); i >= 0 {
		e.children = slices.Delete(e.children, i, i+1)
	}
	child.parent = nil
	// If focus lived inside the removed subtree, the tree loses it.
	root := e.Root()
	if root.focused != nil && child.Contains(root.focused) {
		root.focused = nil
	}
}

// Attribute returns the attribute value and whether it is set.
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttribute sets an attribute, producing an attributes mutation record
// when the value actually changes.
func (e *Element) SetAttribute(name, value string) {
	old, had := e.attrs[name]
	if had && old == value {
		return
	}
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	e.notify(Record{
		Type:          RecordAttributes,
		Target:        e,
		AttributeName: name,
		OldValue:      old,
	})
}

// RemoveAttribute deletes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	old, had := e.attrs[name]
	if !had {
		return
	}
	delete(e.attrs, name)
	e.notify(Record{
		Type:          RecordAttributes,
		Target:        e,
		AttributeName: name,
		OldValue:      old,
	})
}

// MutationFree reports whether the element carries the mutation-free marker.
func (e *Element) MutationFree() bool {
	return e.attrs[MutationFreeAttr] == "true"
}

// SetMutationFree toggles the mutation-free marker attribute.
func (e *Element) SetMutationFree(free bool) {
	if free {
		e.SetAttribute(MutationFreeAttr, "true")
	} else {
		e.RemoveAttribute(MutationFreeAttr)
	}
}

// Text returns the element's own text content.
func (e *Element) Text() string {
	return e.text
}

// SetText replaces the element's text, producing a characterData record.
func (e *Element) SetText(text string) {
	if e.text == text {
		return
	}
	old := e.text
	e.text = text
	e.notify(Record{
		Type:     RecordCharacterData,
		Target:   e,
		OldValue: old,
	})
}

// TextContent returns the concatenated text of the element and its subtree.
func (e *Element) TextContent() string {
	var sb strings.Builder
	e.appendText(&sb)
	return sb.String()
}

func (e *Element) appendText(sb *strings.Builder) {
	sb.WriteString(e.text)
	for _, c := range e.children {
		c.appendText(sb)
	}
}

// Classes returns the element's class list in order.
func (e *Element) Classes() []string {
	cls, _ := e.Attribute("class")
	if cls == "" {
		return nil
	}
	return strings.Fields(cls)
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.Classes(), name)
}

// AddClass appends a class if absent. Class changes are attribute mutations
// on "class".
func (e *Element) AddClass(name string) {
	if name == "" || e.HasClass(name) {
		return
	}
	cls := append(e.Classes(), name)
	e.SetAttribute("class", strings.Join(cls, " "))
}

// RemoveClass removes a class if present.
func (e *Element) RemoveClass(name string) {
	cls := e.Classes()
	i := slices.Index(cls, name)
	if i < 0 {
		return
	}
	cls = slices.Delete(cls, i, i+1)
	if len(cls) == 0 {
		e.RemoveAttribute("class")
		return
	}
	e.SetAttribute("class", strings.Join(cls, " "))
}

// ToggleClass adds or removes a class according to on.
func (e *Element) ToggleClass(name string, on bool) {
	if on {
		e.AddClass(name)
	} else {
		e.RemoveClass(name)
	}
}

// Focus marks the element as the focused node of its tree.
func (e *Element) Focus() {
	e.Root().focused = e
}

// Blur clears focus if this element currently holds it.
func (e *Element) Blur() {
	root := e.Root()
	if root.focused == e {
		root.focused = nil
	}
}

// Focused reports whether the element holds focus within its tree.
func (e *Element) Focused() bool {
	return e.Root().focused == e
}

// FocusedWithin returns the focused element inside root's subtree, or nil.
func FocusedWithin(root *Element) *Element {
	f := root.Root().focused
	if f == nil || !root.Contains(f) {
		return nil
	}
	return f
}

// Walk visits the element and its subtree depth-first, in document order.
// Returning false from fn stops the walk.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
