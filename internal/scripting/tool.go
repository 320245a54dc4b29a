package scripting

import (
	"encoding/json"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// ToolAdapter turns a tool bundle into a tool.Adapter. Each block gets its
// own interpreter, so one misbehaving block cannot corrupt another's state.
type ToolAdapter struct {
	manifest *Manifest
	logger   *zap.Logger
}

// NewToolAdapter wraps a loaded tool manifest.
func NewToolAdapter(m *Manifest, logger *zap.Logger) (*ToolAdapter, error) {
	if m.Kind != KindTool {
		return nil, fmt.Errorf("scripting: bundle %q is not a tool", m.Name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolAdapter{manifest: m, logger: logger}, nil
}

// Name implements tool.Adapter.
func (a *ToolAdapter) Name() string { return a.manifest.Name }

// Settings implements tool.Adapter.
func (a *ToolAdapter) Settings() json.RawMessage { return a.manifest.Settings }

// Tunes implements tool.Adapter.
func (a *ToolAdapter) Tunes() []string { return a.manifest.Tunes }

// New implements tool.Adapter. Script load failure fails block
// construction, matching the fail-fast contract for broken tools.
func (a *ToolAdapter) New(data json.RawMessage, _ tool.BlockAPI, readOnly bool) (tool.Tool, error) {
	st := NewState()
	if err := st.DoFile(a.manifest.MainPath()); err != nil {
		st.Close()
		return nil, fmt.Errorf("scripting: load %q: %w", a.manifest.Name, err)
	}

	t := &LuaTool{
		name:     a.manifest.Name,
		st:       st,
		logger:   a.logger,
		readOnly: readOnly,
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &t.data); err != nil {
			st.Close()
			return nil, fmt.Errorf("scripting: decode data for %q: %w", a.manifest.Name, err)
		}
	}
	st.SetGlobal("readOnly", lua.LBool(readOnly))
	return t, nil
}

// LuaTool is one scripted tool instance.
type LuaTool struct {
	name     string
	st       *State
	logger   *zap.Logger
	readOnly bool
	data     map[string]any
	root     *dom.Element
}

// Render implements tool.Tool. The script's render(data) returns an element
// table ({tag, attrs, text, children}); a missing or failing render yields
// an empty container so the block stays composable.
func (t *LuaTool) Render() *dom.Element {
	if !t.st.HasFunction("render") {
		t.root = dom.NewElement("div")
		return t.root
	}
	ret, err := t.st.Call("render", ToLua(t.st.L, anyMap(t.data)))
	if err != nil {
		t.logger.Warn("script render failed",
			zap.String("tool", t.name),
			zap.Error(err))
		t.root = dom.NewElement("div")
		return t.root
	}
	t.root = ElementFromValue(ToGo(ret))
	return t.root
}

// Save implements tool.Tool. The script's save(text) receives the content
// subtree's text and returns the data table; without a save function the
// construction-time data is passed through.
func (t *LuaTool) Save(content *dom.Element) (json.RawMessage, error) {
	if !t.st.HasFunction("save") {
		return json.Marshal(anyMap(t.data))
	}
	text := ""
	if content != nil {
		text = content.TextContent()
	}
	ret, err := t.st.Call("save", lua.LString(text))
	if err != nil {
		return nil, fmt.Errorf("scripting: save %q: %w", t.name, err)
	}
	return json.Marshal(ToGo(ret))
}

// Hook implements tool.HookHandler: lifecycle hooks map to same-named
// global script functions, dispatched only when defined.
func (t *LuaTool) Hook(m tool.Method, params any) (bool, error) {
	fn := string(m)
	if !t.st.HasFunction(fn) {
		return false, nil
	}
	_, err := t.st.Call(fn, ToLua(t.st.L, params))
	return true, err
}

// Destroy implements tool.Destroyer, releasing the script interpreter.
func (t *LuaTool) Destroy() {
	t.st.Close()
}

func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// ElementFromValue builds a dom subtree from a decoded element table:
// {tag = "p", text = "...", attrs = {k = v}, children = {...}}.
// Anything unusable becomes an empty div.
func ElementFromValue(v any) *dom.Element {
	m, ok := v.(map[string]any)
	if !ok {
		return dom.NewElement("div")
	}
	tag, _ := m["tag"].(string)
	if tag == "" {
		tag = "div"
	}
	el := dom.NewElement(tag)
	if attrs, ok := m["attrs"].(map[string]any); ok {
		for name, av := range attrs {
			el.SetAttribute(name, fmt.Sprintf("%v", av))
		}
	}
	if text, ok := m["text"].(string); ok {
		el.SetText(text)
	}
	if children, ok := m["children"].([]any); ok {
		for _, c := range children {
			el.AppendChild(ElementFromValue(c))
		}
	}
	return el
}
