// Package paragraph provides the reference text tool: a single
// contenteditable paragraph.
package paragraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// ToolName is the tool type name blocks of this kind carry.
const ToolName = "paragraph"

// Config is the tool-level configuration.
type Config struct {
	// Placeholder is shown while the paragraph is empty.
	Placeholder string `json:"placeholder"`

	// PreserveBlank keeps empty paragraphs on save instead of failing
	// validation.
	PreserveBlank bool `json:"preserveBlank"`
}

// Data is the persisted payload.
type Data struct {
	Text string `json:"text"`
}

// Tool is one paragraph instance.
type Tool struct {
	api      tool.BlockAPI
	cfg      Config
	data     Data
	readOnly bool
	root     *dom.Element
}

// Adapter registers the paragraph tool type.
type Adapter struct {
	// Config is serialized into the descriptor settings.
	Config Config

	// TuneNames are the user-level tunes enabled for paragraphs.
	TuneNames []string
}

// Name implements tool.Adapter.
func (a Adapter) Name() string { return ToolName }

// Settings implements tool.Adapter.
func (a Adapter) Settings() json.RawMessage {
	raw, err := json.Marshal(a.Config)
	if err != nil {
		return nil
	}
	return raw
}

// Tunes implements tool.Adapter.
func (a Adapter) Tunes() []string { return a.TuneNames }

// New implements tool.Adapter.
func (a Adapter) New(data json.RawMessage, api tool.BlockAPI, readOnly bool) (tool.Tool, error) {
	t := &Tool{api: api, cfg: a.Config, readOnly: readOnly}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &t.data); err != nil {
			return nil, fmt.Errorf("paragraph: decode data: %w", err)
		}
	}
	return t, nil
}

// Render implements tool.Tool.
func (t *Tool) Render() *dom.Element {
	t.root = dom.NewElement("p")
	t.root.AddClass("bf-paragraph")
	if !t.readOnly {
		t.root.SetAttribute("contenteditable", "true")
	}
	if t.cfg.Placeholder != "" {
		t.root.SetAttribute("data-placeholder", t.cfg.Placeholder)
	}
	t.root.SetText(t.data.Text)
	return t.root
}

// Save implements tool.Tool, extracting the text from the live tree.
func (t *Tool) Save(content *dom.Element) (json.RawMessage, error) {
	text := t.data.Text
	if content != nil {
		text = content.TextContent()
	}
	return json.Marshal(Data{Text: text})
}

// Validate implements tool.Validator: empty paragraphs are rejected unless
// the tool is configured to preserve them.
func (t *Tool) Validate(data json.RawMessage) bool {
	if t.cfg.PreserveBlank {
		return true
	}
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return false
	}
	return uniseg.GraphemeClusterCount(strings.TrimSpace(d.Text)) > 0
}

// Length returns the rendered text length in grapheme clusters, which is
// what cursor positioning counts in.
func (t *Tool) Length() int {
	if t.root == nil {
		return uniseg.GraphemeClusterCount(t.data.Text)
	}
	return uniseg.GraphemeClusterCount(t.root.TextContent())
}

// Updated implements tool.UpdatedHook, syncing the cached payload with the
// live tree after an edit settles.
func (t *Tool) Updated() {
	if t.root != nil {
		t.data.Text = t.root.TextContent()
	}
}

// OnPaste implements tool.PasteHook. The payload is the pasted plain text.
func (t *Tool) OnPaste(params any) {
	text, ok := params.(string)
	if !ok || t.root == nil || t.readOnly {
		return
	}
	t.root.SetText(t.root.Text() + text)
}
