package scripting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/frysweet/blockforge/internal/block"
	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

const echoToolScript = `
function render(data)
	return {
		tag = "p",
		attrs = { contenteditable = "true" },
		text = data.text or "",
	}
end

function save(text)
	return { text = text }
end

function updated()
	hookCount = (hookCount or 0) + 1
end

function hookCalls()
	return hookCount or 0
end

function moved(params)
	error("cannot move")
end
`

const frameTuneScript = `
function wrap()
	return {
		tag = "div",
		attrs = { class = "script-frame" },
		children = {
			{ tag = "div", attrs = { ["data-slot"] = "content" } },
		},
	}
end

function save()
	return data or { framed = true }
end
`

// writeBundle creates a script bundle under dir and returns its manifest.
func writeBundle(t *testing.T, dir, name string, kind Kind, script string) *Manifest {
	t.Helper()
	bundleDir := filepath.Join(dir, name)
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := map[string]any{"name": name, "kind": string(kind), "version": "1.0.0"}
	raw, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, ManifestFile), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "init.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(bundleDir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return m
}

func newEchoTool(t *testing.T, data string) *LuaTool {
	t.Helper()
	m := writeBundle(t, t.TempDir(), "echo", KindTool, echoToolScript)
	a, err := NewToolAdapter(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	var raw json.RawMessage
	if data != "" {
		raw = json.RawMessage(data)
	}
	inst, err := a.New(raw, nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lt := inst.(*LuaTool)
	t.Cleanup(lt.Destroy)
	return lt
}

func TestLuaToolRender(t *testing.T) {
	lt := newEchoTool(t, `{"text":"hi"}`)

	root := lt.Render()
	if root.Tag() != "p" {
		t.Errorf("tag = %q, want p", root.Tag())
	}
	if ce, _ := root.Attribute("contenteditable"); ce != "true" {
		t.Error("script attrs not applied")
	}
	if root.Text() != "hi" {
		t.Errorf("text = %q, want hi", root.Text())
	}
}

func TestLuaToolSave(t *testing.T) {
	lt := newEchoTool(t, `{"text":"orig"}`)
	root := lt.Render()
	root.SetText("edited")

	raw, err := lt.Save(root)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := gjson.GetBytes(raw, "text").String(); got != "edited" {
		t.Errorf("saved text = %q, want edited", got)
	}
}

func TestLuaToolHooks(t *testing.T) {
	lt := newEchoTool(t, "")

	handled, err := lt.Hook(tool.MethodUpdated, nil)
	if !handled || err != nil {
		t.Fatalf("updated hook: handled=%v err=%v", handled, err)
	}
	if _, err := lt.Hook(tool.MethodUpdated, nil); err != nil {
		t.Fatal(err)
	}

	ret, err := lt.st.Call("hookCalls")
	if err != nil {
		t.Fatal(err)
	}
	if got := ToGo(ret); got != int64(2) {
		t.Fatalf("hookCalls = %v, want 2", got)
	}

	// Undefined hook: silent no-op.
	handled, err = lt.Hook(tool.MethodRemoved, nil)
	if handled || err != nil {
		t.Fatalf("removed hook: handled=%v err=%v, want no-op", handled, err)
	}

	// Failing hook: handled with an error, never a panic.
	handled, err = lt.Hook(tool.MethodMoved, map[string]any{"from": int64(0)})
	if !handled || err == nil {
		t.Fatalf("moved hook: handled=%v err=%v, want handled error", handled, err)
	}
}

func TestLuaToolBadScriptFailsConstruction(t *testing.T) {
	m := writeBundle(t, t.TempDir(), "broken", KindTool, `this is not lua`)
	a, err := NewToolAdapter(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.New(nil, nil, false); err == nil {
		t.Fatal("broken script should fail tool construction")
	}
}

func TestLuaTuneWrapAndSave(t *testing.T) {
	m := writeBundle(t, t.TempDir(), "frame", KindTune, frameTuneScript)
	a, err := NewTuneAdapter(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := a.New(nil, json.RawMessage(`{"width":3}`), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lt := inst.(*LuaTune)
	t.Cleanup(lt.Destroy)

	content := dom.NewElement("div")
	wrapper := lt.Wrap(content)
	if !wrapper.HasClass("script-frame") {
		t.Errorf("wrapper classes = %v", wrapper.Classes())
	}
	if !wrapper.Contains(content) {
		t.Fatal("wrapper must contain content")
	}
	slot := wrapper.Children()[0]
	if len(slot.Children()) != 1 || slot.Children()[0] != content {
		t.Error("content should land in the slot element")
	}

	if got := gjson.GetBytes(lt.Save(), "width").Int(); got != 3 {
		t.Errorf("tune save width = %d, want 3", got)
	}
}

// A scripted tool goes through the exact same block pipeline as a native
// one: same composition, same debounced notification, same hook dispatch.
func TestScriptedBlockEndToEnd(t *testing.T) {
	m := writeBundle(t, t.TempDir(), "echo", KindTool, echoToolScript)
	a, err := NewToolAdapter(m, nil)
	if err != nil {
		t.Fatal(err)
	}

	b, err := block.New(block.Options{
		Tool: a,
		Data: json.RawMessage(`{"text":"start"}`),
	}, block.WithDebounce(40*time.Millisecond))
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	t.Cleanup(b.Destroy)

	mutated := make(chan struct{}, 1)
	b.OnDidMutated(func(*block.Block) {
		select {
		case mutated <- struct{}{}:
		default:
		}
	})

	inputs := b.Inputs()
	if len(inputs) != 1 {
		t.Fatalf("inputs = %d, want 1", len(inputs))
	}
	inputs[0].SetText("start edited")

	select {
	case <-mutated:
	case <-time.After(2 * time.Second):
		t.Fatal("didMutated never fired for scripted tool")
	}

	saved, err := b.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := gjson.GetBytes(saved.Data, "text").String(); got != "start edited" {
		t.Errorf("saved text = %q", got)
	}

	lt := b.Tool().(*LuaTool)
	ret, err := lt.st.Call("hookCalls")
	if err != nil {
		t.Fatal(err)
	}
	if got := ToGo(ret); got != int64(1) {
		t.Errorf("updated hook calls = %v, want 1", got)
	}
}
