// Package tunes provides the editor's built-in block tunes: alignment and
// delete. Both wrap the tool's rendered content; alignment additionally
// persists its value.
package tunes

import (
	"encoding/json"
	"fmt"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// Tune names.
const (
	AlignmentName = "alignment"
	DeleteName    = "delete"
)

// Alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

type alignmentData struct {
	Value string `json:"value"`
}

// Alignment aligns a block's content and persists the chosen value.
type Alignment struct {
	value string
}

// AlignmentAdapter registers the alignment tune.
type AlignmentAdapter struct {
	// Default is used when a block carries no persisted alignment.
	Default string
}

// Name implements tool.TuneAdapter.
func (AlignmentAdapter) Name() string { return AlignmentName }

// New implements tool.TuneAdapter.
func (a AlignmentAdapter) New(_, data json.RawMessage, _ tool.BlockAPI) (tool.Tune, error) {
	value := a.Default
	if value == "" {
		value = AlignLeft
	}
	if len(data) > 0 {
		var d alignmentData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("alignment: decode data: %w", err)
		}
		if d.Value != "" {
			value = d.Value
		}
	}
	switch value {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return nil, fmt.Errorf("alignment: unknown value %q", value)
	}
	return &Alignment{value: value}, nil
}

// Name implements tool.Tune.
func (t *Alignment) Name() string { return AlignmentName }

// Value returns the current alignment.
func (t *Alignment) Value() string { return t.value }

// SetValue changes the alignment. Unknown values are ignored.
func (t *Alignment) SetValue(value string) {
	switch value {
	case AlignLeft, AlignCenter, AlignRight:
		t.value = value
	}
}

// Wrap implements tool.Wrapper.
func (t *Alignment) Wrap(content *dom.Element) *dom.Element {
	w := dom.NewElement("div")
	w.AddClass("bf-tune-align")
	w.AddClass("bf-tune-align--" + t.value)
	w.AppendChild(content)
	return w
}

// Save implements tool.TuneSaver.
func (t *Alignment) Save() json.RawMessage {
	raw, err := json.Marshal(alignmentData{Value: t.value})
	if err != nil {
		return nil
	}
	return raw
}

// Delete marks a block as removable through the block menu. It contributes
// a wrapper carrying the action role other editor components look for.
type Delete struct{}

// DeleteAdapter registers the delete tune, usually as an editor-level
// default.
type DeleteAdapter struct{}

// Name implements tool.TuneAdapter.
func (DeleteAdapter) Name() string { return DeleteName }

// New implements tool.TuneAdapter.
func (DeleteAdapter) New(_, _ json.RawMessage, _ tool.BlockAPI) (tool.Tune, error) {
	return &Delete{}, nil
}

// Name implements tool.Tune.
func (*Delete) Name() string { return DeleteName }

// Wrap implements tool.Wrapper.
func (*Delete) Wrap(content *dom.Element) *dom.Element {
	w := dom.NewElement("div")
	w.AddClass("bf-tune-delete")
	w.SetAttribute("data-action", "delete")
	w.AppendChild(content)
	return w
}
