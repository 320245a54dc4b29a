package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frysweet/blockforge/internal/tool"
)

func TestLoaderApply(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "echo", KindTool, echoToolScript)
	writeBundle(t, dir, "frame", KindTune, frameTuneScript)

	// A directory without a manifest is not a bundle; a broken manifest
	// is skipped without failing the rest.
	if err := os.MkdirAll(filepath.Join(dir, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}
	badDir := filepath.Join(dir, "bad")
	if err := os.MkdirAll(badDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, ManifestFile), []byte(`{"name":"BAD NAME"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := tool.NewRegistry()
	l := NewLoader(dir, nil)
	if err := l.Apply(reg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := reg.Tool("echo"); err != nil {
		t.Errorf("tool not registered: %v", err)
	}
	if reg.Tune("frame") == nil {
		t.Error("tune not registered")
	}

	got := l.Bundles()
	want := []string{"echo", "frame"}
	if len(got) != len(want) {
		t.Fatalf("Bundles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bundles() = %v, want %v", got, want)
		}
	}
}

func TestLoaderApplyMissingDir(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope"), nil)
	if err := l.Apply(tool.NewRegistry()); err == nil {
		t.Fatal("missing bundle dir should error")
	}
}

func TestLoaderReloadSwapsRegistration(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "echo", KindTool, echoToolScript)

	reg := tool.NewRegistry()
	l := NewLoader(dir, nil)
	if err := l.Apply(reg); err != nil {
		t.Fatal(err)
	}
	before, err := reg.Tool("echo")
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Reload(reg, "echo"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	after, err := reg.Tool("echo")
	if err != nil {
		t.Fatalf("tool gone after reload: %v", err)
	}
	if before == after {
		t.Error("reload should produce a fresh adapter")
	}
}

func TestLoaderReloadRenamedBundle(t *testing.T) {
	dir := t.TempDir()
	m := writeBundle(t, dir, "echo", KindTool, echoToolScript)

	reg := tool.NewRegistry()
	l := NewLoader(dir, nil)
	if err := l.Apply(reg); err != nil {
		t.Fatal(err)
	}

	// The bundle changes the name it registers under; the old name must
	// not linger in the registry.
	raw := []byte(`{"name":"echo-two","kind":"tool","version":"1.0.0"}`)
	if err := os.WriteFile(filepath.Join(m.Dir(), ManifestFile), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := l.Reload(reg, "echo"); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if _, err := reg.Tool("echo"); err == nil {
		t.Error("stale registration survived reload")
	}
	if _, err := reg.Tool("echo-two"); err != nil {
		t.Errorf("renamed tool not registered: %v", err)
	}
}
