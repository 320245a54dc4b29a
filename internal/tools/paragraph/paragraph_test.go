package paragraph

import (
	"encoding/json"
	"testing"

	"github.com/frysweet/blockforge/internal/tool"
)

func newTool(t *testing.T, a Adapter, data string) *Tool {
	t.Helper()
	var raw json.RawMessage
	if data != "" {
		raw = json.RawMessage(data)
	}
	inst, err := a.New(raw, nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return inst.(*Tool)
}

func TestRender(t *testing.T) {
	p := newTool(t, Adapter{Config: Config{Placeholder: "Type here"}}, `{"text":"hello"}`)
	root := p.Render()

	if root.Tag() != "p" {
		t.Errorf("tag = %q, want p", root.Tag())
	}
	if ce, _ := root.Attribute("contenteditable"); ce != "true" {
		t.Error("paragraph should be editable")
	}
	if ph, _ := root.Attribute("data-placeholder"); ph != "Type here" {
		t.Errorf("placeholder = %q", ph)
	}
	if root.Text() != "hello" {
		t.Errorf("text = %q", root.Text())
	}
}

func TestRenderReadOnly(t *testing.T) {
	inst, err := Adapter{}.New(nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	root := inst.(*Tool).Render()
	if _, ok := root.Attribute("contenteditable"); ok {
		t.Error("read-only paragraph must not be editable")
	}
}

func TestSaveReadsLiveTree(t *testing.T) {
	p := newTool(t, Adapter{}, `{"text":"before"}`)
	root := p.Render()
	root.SetText("after")

	raw, err := p.Save(root)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatal(err)
	}
	if d.Text != "after" {
		t.Errorf("text = %q, want after", d.Text)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		preserveBlank bool
		data          string
		want          bool
	}{
		{name: "text ok", data: `{"text":"hi"}`, want: true},
		{name: "empty rejected", data: `{"text":""}`, want: false},
		{name: "whitespace rejected", data: `{"text":"  "}`, want: false},
		{name: "empty preserved", preserveBlank: true, data: `{"text":""}`, want: true},
		{name: "garbage rejected", data: `[`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTool(t, Adapter{Config: Config{PreserveBlank: tt.preserveBlank}}, "")
			if got := p.Validate(json.RawMessage(tt.data)); got != tt.want {
				t.Errorf("Validate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLengthCountsGraphemes(t *testing.T) {
	p := newTool(t, Adapter{}, `{"text":"ábc"}`) // a + combining accent
	if got := p.Length(); got != 3 {
		t.Errorf("Length = %d, want 3 grapheme clusters", got)
	}
}

func TestUpdatedSyncsData(t *testing.T) {
	p := newTool(t, Adapter{}, `{"text":"x"}`)
	root := p.Render()
	root.SetText("changed")

	p.Updated()
	raw, _ := p.Save(nil)
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatal(err)
	}
	if d.Text != "changed" {
		t.Errorf("text = %q, want changed", d.Text)
	}
}

func TestAdapterContract(t *testing.T) {
	var _ tool.Adapter = Adapter{}
	a := Adapter{TuneNames: []string{"alignment"}}
	if a.Name() != ToolName {
		t.Errorf("Name = %q", a.Name())
	}
	if len(a.Tunes()) != 1 || a.Tunes()[0] != "alignment" {
		t.Errorf("Tunes = %v", a.Tunes())
	}
}
