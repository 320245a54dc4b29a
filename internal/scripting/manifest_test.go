package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifestDir(t *testing.T, manifest string, withMain bool) string {
	t.Helper()
	dir := t.TempDir()
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if withMain {
		if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte("-- ok"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := writeManifestDir(t, `{"name":"marker","kind":"tune","version":"2.1.0","tunes":["alignment"]}`, true)

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "marker" || m.Kind != KindTune || m.Version != "2.1.0" {
		t.Errorf("manifest = %+v", m)
	}
	if m.Main != "init.lua" {
		t.Errorf("Main = %q, want default init.lua", m.Main)
	}
	if m.Dir() != dir {
		t.Errorf("Dir = %q, want %q", m.Dir(), dir)
	}
	if m.MainPath() != filepath.Join(dir, "init.lua") {
		t.Errorf("MainPath = %q", m.MainPath())
	}
}

func TestLoadManifestCustomMain(t *testing.T) {
	dir := writeManifestDir(t, `{"name":"marker","kind":"tool","main":"tool.lua"}`, false)
	if err := os.WriteFile(filepath.Join(dir, "tool.lua"), []byte("-- ok"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.MainPath() != filepath.Join(dir, "tool.lua") {
		t.Errorf("MainPath = %q", m.MainPath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		withMain bool
		wantErr  error
	}{
		{"no manifest", "", true, ErrNoManifest},
		{"bad json", `{`, true, ErrInvalidManifest},
		{"empty name", `{"name":"","kind":"tool"}`, true, ErrInvalidManifest},
		{"uppercase name", `{"name":"Echo","kind":"tool"}`, true, ErrInvalidManifest},
		{"bad kind", `{"name":"echo","kind":"widget"}`, true, ErrInvalidManifest},
		{"missing main", `{"name":"echo","kind":"tool"}`, false, ErrInvalidManifest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeManifestDir(t, tt.manifest, tt.withMain)
			_, err := LoadManifest(dir)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
