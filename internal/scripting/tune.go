package scripting

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// ContentSlotAttr marks where, inside a scripted tune's wrapper, the
// wrapped content is inserted. Without a slot the content goes into the
// wrapper root.
const ContentSlotAttr = "data-slot"

// TuneAdapter turns a tune bundle into a tool.TuneAdapter.
type TuneAdapter struct {
	manifest *Manifest
	logger   *zap.Logger
}

// NewTuneAdapter wraps a loaded tune manifest.
func NewTuneAdapter(m *Manifest, logger *zap.Logger) (*TuneAdapter, error) {
	if m.Kind != KindTune {
		return nil, fmt.Errorf("scripting: bundle %q is not a tune", m.Name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TuneAdapter{manifest: m, logger: logger}, nil
}

// Name implements tool.TuneAdapter.
func (a *TuneAdapter) Name() string { return a.manifest.Name }

// New implements tool.TuneAdapter.
func (a *TuneAdapter) New(settings, data json.RawMessage, _ tool.BlockAPI) (tool.Tune, error) {
	st := NewState()
	if err := st.DoFile(a.manifest.MainPath()); err != nil {
		st.Close()
		return nil, fmt.Errorf("scripting: load tune %q: %w", a.manifest.Name, err)
	}

	t := &LuaTune{name: a.manifest.Name, st: st, logger: a.logger}
	for global, raw := range map[string]json.RawMessage{
		"settings": settings,
		"data":     data,
	} {
		if len(raw) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			st.Close()
			return nil, fmt.Errorf("scripting: decode %s for tune %q: %w", global, a.manifest.Name, err)
		}
		st.SetGlobal(global, ToLua(st.L, v))
	}
	return t, nil
}

// LuaTune is one scripted tune instance.
type LuaTune struct {
	name   string
	st     *State
	logger *zap.Logger
}

// Name implements tool.Tune.
func (t *LuaTune) Name() string { return t.name }

// Wrap implements tool.Wrapper. The script's wrap() returns a wrapper
// element table; the content lands in the element carrying the content
// slot attribute, or in the wrapper root. A tune without wrap, or one
// whose wrap fails, leaves the content untouched.
func (t *LuaTune) Wrap(content *dom.Element) *dom.Element {
	if !t.st.HasFunction("wrap") {
		return content
	}
	ret, err := t.st.Call("wrap")
	if err != nil {
		t.logger.Warn("script wrap failed",
			zap.String("tune", t.name),
			zap.Error(err))
		return content
	}
	wrapper := ElementFromValue(ToGo(ret))
	slot := findSlot(wrapper)
	slot.AppendChild(content)
	return wrapper
}

// Save implements tool.TuneSaver. Without a save function the tune
// contributes nothing.
func (t *LuaTune) Save() json.RawMessage {
	if !t.st.HasFunction("save") {
		return nil
	}
	ret, err := t.st.Call("save")
	if err != nil {
		t.logger.Warn("script save failed",
			zap.String("tune", t.name),
			zap.Error(err))
		return nil
	}
	raw, err := json.Marshal(ToGo(ret))
	if err != nil {
		return nil
	}
	return raw
}

// Destroy implements tool.Destroyer, releasing the script interpreter.
func (t *LuaTune) Destroy() {
	t.st.Close()
}

func findSlot(wrapper *dom.Element) *dom.Element {
	slot := wrapper
	wrapper.Walk(func(e *dom.Element) bool {
		if v, ok := e.Attribute(ContentSlotAttr); ok && v == "content" {
			slot = e
			return false
		}
		return true
	})
	return slot
}
