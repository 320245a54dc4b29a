// Package tool defines the capability contracts between the block core and
// pluggable content tools and tunes.
//
// A tool renders a block's editable content and extracts its data. A tune
// wraps a tool's rendered content with additional per-block UI or behavior.
// Both are constructed through adapters (descriptors) so the core never
// depends on concrete implementations.
//
// Optional behavior is expressed as narrow interfaces: a tool that wants a
// lifecycle hook implements the matching *Hook interface, a tune that wraps
// content implements Wrapper, and so on. Implementations provide only what
// they need.
package tool

import (
	"encoding/json"

	"github.com/frysweet/blockforge/internal/dom"
)

// Tool is a live content-editing instance owned by one block.
type Tool interface {
	// Render produces the tool's content subtree. Called once per block.
	Render() *dom.Element

	// Save extracts the tool's data from its rendered content.
	Save(content *dom.Element) (json.RawMessage, error)
}

// Validator is an optional tool capability: checking extracted data before
// it is accepted into a save.
type Validator interface {
	Validate(data json.RawMessage) bool
}

// Destroyer is an optional capability for tools and tunes holding
// resources (interpreters, handles) released on block teardown.
type Destroyer interface {
	Destroy()
}

// Tune is a live per-block modifier instance.
type Tune interface {
	// Name returns the tune name the instance was registered under.
	Name() string
}

// Wrapper is an optional tune capability: wrapping the tool's rendered
// content with the tune's own markup. Wrap must return a node containing
// the given content.
type Wrapper interface {
	Wrap(content *dom.Element) *dom.Element
}

// TuneSaver is an optional tune capability: contributing persisted data to
// a block save.
type TuneSaver interface {
	Save() json.RawMessage
}

// BlockAPI is the restricted view of a block handed to tool and tune
// instances. It exposes only sanctioned operations; the block keeps
// exclusive ownership of its real state.
type BlockAPI interface {
	// ID returns the block's identity.
	ID() string

	// Name returns the tool type name that produced the block.
	Name() string

	// Settings returns the tool's configuration from the descriptor.
	Settings() json.RawMessage

	// Holder returns the block's composed container node.
	Holder() *dom.Element

	// DispatchChange tells the block its content changed in a way the
	// mutation observer cannot see.
	DispatchChange()
}

// Adapter describes a registered tool type and constructs its instances.
type Adapter interface {
	// Name returns the unique tool type name.
	Name() string

	// Settings returns tool-level configuration passed through to tunes
	// and exposed on the block API. May be nil.
	Settings() json.RawMessage

	// Tunes returns the names of user-level tunes enabled for this tool,
	// in wrap order.
	Tunes() []string

	// New constructs a tool instance from persisted data. A construction
	// error is fatal to the block being built.
	New(data json.RawMessage, api BlockAPI, readOnly bool) (Tool, error)
}

// TuneAdapter describes a registered tune and constructs its instances.
type TuneAdapter interface {
	// Name returns the unique tune name.
	Name() string

	// New constructs a tune instance. settings is the owning tool's
	// configuration; data is this tune's persisted payload, nil when the
	// block had none.
	New(settings, data json.RawMessage, api BlockAPI) (Tune, error)
}
