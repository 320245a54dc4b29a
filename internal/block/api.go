package block

import (
	"encoding/json"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// apiFacade is the restricted view of a Block handed to tool and tune
// instances. It forwards only sanctioned operations so plugins cannot reach
// Block internals.
type apiFacade struct {
	b *Block
}

var _ tool.BlockAPI = (*apiFacade)(nil)

func (a *apiFacade) ID() string {
	return a.b.id
}

func (a *apiFacade) Name() string {
	return a.b.name
}

func (a *apiFacade) Settings() json.RawMessage {
	return cloneRaw(a.b.settings)
}

func (a *apiFacade) Holder() *dom.Element {
	return a.b.holder
}

func (a *apiFacade) DispatchChange() {
	a.b.DispatchChange()
}
