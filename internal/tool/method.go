package tool

// Method names a lifecycle hook the editor may dispatch into a tool.
// The vocabulary is closed: these are the only names routed through the
// safe-dispatch path. Tools expose any other behavior as ordinary methods
// called directly.
type Method string

const (
	// MethodAppendCallback is dispatched after the block is appended to the
	// document.
	//
	// Deprecated: implement MethodRendered instead. Dispatch still works
	// but logs a one-time warning per block.
	MethodAppendCallback Method = "appendCallback"

	// MethodRendered is dispatched after the block's content is attached.
	MethodRendered Method = "rendered"

	// MethodMoved is dispatched after the block changes position.
	MethodMoved Method = "moved"

	// MethodUpdated is dispatched after the block's content mutated.
	MethodUpdated Method = "updated"

	// MethodRemoved is dispatched after the block is removed.
	MethodRemoved Method = "removed"

	// MethodOnPaste is dispatched when pasted content is routed to the tool.
	MethodOnPaste Method = "onPaste"
)

// Valid reports whether m belongs to the hook vocabulary.
func (m Method) Valid() bool {
	switch m {
	case MethodAppendCallback, MethodRendered, MethodMoved,
		MethodUpdated, MethodRemoved, MethodOnPaste:
		return true
	}
	return false
}

// Deprecated reports whether dispatching m should warn.
func (m Method) Deprecated() bool {
	return m == MethodAppendCallback
}

// Per-hook optional interfaces. A tool implements the ones it wants; the
// dispatcher probes with a type assertion and no-ops on absence.

// AppendCallbackHook receives the deprecated appendCallback hook.
type AppendCallbackHook interface {
	AppendCallback()
}

// RenderedHook receives the rendered hook.
type RenderedHook interface {
	Rendered()
}

// MovedHook receives the moved hook with move details.
type MovedHook interface {
	Moved(params any)
}

// UpdatedHook receives the updated hook.
type UpdatedHook interface {
	Updated()
}

// RemovedHook receives the removed hook.
type RemovedHook interface {
	Removed()
}

// PasteHook receives the onPaste hook with the paste payload.
type PasteHook interface {
	OnPaste(params any)
}

// HookHandler is the dynamic dispatch escape hatch for tools whose hooks
// are not known at compile time (scripted tools). Hook reports whether the
// tool handles m at all; unhandled methods must return (false, nil).
// A tool implementing HookHandler receives every dispatched method through
// it instead of the per-hook interfaces.
type HookHandler interface {
	Hook(m Method, params any) (handled bool, err error)
}
