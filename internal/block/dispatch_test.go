package block

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// panickyTool blows up in its updated hook but behaves everywhere else.
type panickyTool struct {
	fakeTool
}

func (p *panickyTool) Render() *dom.Element {
	p.root = dom.NewElement("p")
	return p.root
}

func (p *panickyTool) Updated() { panic("tool bug") }

type panickyAdapter struct{}

func (panickyAdapter) Name() string              { return "panicky" }
func (panickyAdapter) Settings() json.RawMessage { return nil }
func (panickyAdapter) Tunes() []string           { return nil }
func (panickyAdapter) New(json.RawMessage, tool.BlockAPI, bool) (tool.Tool, error) {
	return &panickyTool{}, nil
}

// hookFuncTool routes hooks through the dynamic HookHandler path.
type hookFuncTool struct {
	mu      sync.Mutex
	methods []tool.Method
	err     error
}

func (h *hookFuncTool) Render() *dom.Element { return dom.NewElement("div") }
func (h *hookFuncTool) Save(*dom.Element) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (h *hookFuncTool) Hook(m tool.Method, _ any) (bool, error) {
	h.mu.Lock()
	h.methods = append(h.methods, m)
	h.mu.Unlock()
	return true, h.err
}

type hookFuncAdapter struct{ made *hookFuncTool }

func (a *hookFuncAdapter) Name() string              { return "scripted" }
func (a *hookFuncAdapter) Settings() json.RawMessage { return nil }
func (a *hookFuncAdapter) Tunes() []string           { return nil }
func (a *hookFuncAdapter) New(json.RawMessage, tool.BlockAPI, bool) (tool.Tool, error) {
	a.made = &hookFuncTool{}
	return a.made, nil
}

func TestCallMissingHookIsNoOp(t *testing.T) {
	b := mustBlock(t, Options{})
	// fakeTool implements neither Moved nor OnPaste; these must be silent.
	b.Call(tool.MethodMoved, map[string]int{"from": 0, "to": 1})
	b.Call(tool.MethodOnPaste, nil)
}

func TestCallPanicIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	b := mustBlock(t, Options{Tool: panickyAdapter{}}, WithLogger(zap.New(core)))

	b.Call(tool.MethodUpdated, nil) // panics inside the tool

	if logs.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if got := entry.ContextMap()["method"]; got != "updated" {
		t.Errorf("diagnostic method = %v, want updated", got)
	}

	// A later dispatch to a different hook on the same tool still works.
	pt := b.tool.(*panickyTool)
	b.Call(tool.MethodRendered, nil)
	if got := pt.called("rendered"); got != 1 {
		t.Fatalf("rendered called %d times after earlier panic, want 1", got)
	}
}

func TestCallHookErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	adapter := &hookFuncAdapter{}
	b := mustBlock(t, Options{Tool: adapter}, WithLogger(zap.New(core)))
	adapter.made.err = errors.New("script error")

	b.Call(tool.MethodRemoved, nil)

	if logs.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", logs.Len())
	}
}

func TestCallDynamicHandlerReceivesAllHooks(t *testing.T) {
	adapter := &hookFuncAdapter{}
	b := mustBlock(t, Options{Tool: adapter})

	b.Call(tool.MethodRendered, nil)
	b.Call(tool.MethodMoved, nil)
	b.Call(tool.MethodUpdated, nil)

	adapter.made.mu.Lock()
	defer adapter.made.mu.Unlock()
	want := []tool.Method{tool.MethodRendered, tool.MethodMoved, tool.MethodUpdated}
	if len(adapter.made.methods) != len(want) {
		t.Fatalf("methods = %v, want %v", adapter.made.methods, want)
	}
	for i, m := range want {
		if adapter.made.methods[i] != m {
			t.Errorf("methods[%d] = %v, want %v", i, adapter.made.methods[i], m)
		}
	}
}

func TestCallDeprecatedWarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := mustBlock(t, Options{}, WithLogger(zap.New(core)))

	b.Call(tool.MethodAppendCallback, nil)
	b.Call(tool.MethodAppendCallback, nil)

	warnings := 0
	for _, e := range logs.All() {
		if e.Level == zap.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("deprecation warnings = %d, want exactly 1", warnings)
	}
}

func TestCallUnknownMethodIgnored(t *testing.T) {
	adapter := &hookFuncAdapter{}
	b := mustBlock(t, Options{Tool: adapter})

	b.Call(tool.Method("save"), nil)

	adapter.made.mu.Lock()
	defer adapter.made.mu.Unlock()
	if len(adapter.made.methods) != 0 {
		t.Fatalf("out-of-vocabulary method reached the tool: %v", adapter.made.methods)
	}
}
