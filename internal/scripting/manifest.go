package scripting

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ManifestFile is the bundle descriptor file name.
const ManifestFile = "manifest.json"

// Kind distinguishes what a bundle contributes.
type Kind string

const (
	// KindTool bundles implement a content tool.
	KindTool Kind = "tool"
	// KindTune bundles implement a block tune.
	KindTune Kind = "tune"
)

// Manifest errors.
var (
	ErrNoManifest      = errors.New("scripting: no manifest")
	ErrInvalidManifest = errors.New("scripting: invalid manifest")
)

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Manifest describes a script bundle.
type Manifest struct {
	// Name is the tool or tune name the bundle registers under.
	Name string `json:"name"`

	// Version is informational.
	Version string `json:"version"`

	// Kind is "tool" or "tune".
	Kind Kind `json:"kind"`

	// Main is the entry script, relative to the bundle directory.
	// Defaults to "init.lua".
	Main string `json:"main"`

	// Settings is passed through as the descriptor settings.
	Settings json.RawMessage `json:"settings"`

	// Tunes names user-level tunes enabled for blocks of this tool.
	// Only meaningful for tool bundles.
	Tunes []string `json:"tunes"`

	dir string
}

// Dir returns the bundle directory the manifest was loaded from.
func (m *Manifest) Dir() string { return m.dir }

// MainPath returns the absolute path of the entry script.
func (m *Manifest) MainPath() string { return filepath.Join(m.dir, m.Main) }

// LoadManifest reads and validates a bundle's manifest.
func LoadManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if !nameRe.MatchString(m.Name) {
		return nil, fmt.Errorf("%w: bad name %q", ErrInvalidManifest, m.Name)
	}
	switch m.Kind {
	case KindTool, KindTune:
	default:
		return nil, fmt.Errorf("%w: bad kind %q", ErrInvalidManifest, m.Kind)
	}
	if m.Main == "" {
		m.Main = "init.lua"
	}
	m.dir = dir

	if _, err := os.Stat(m.MainPath()); err != nil {
		return nil, fmt.Errorf("%w: main script %s: %v", ErrInvalidManifest, m.Main, err)
	}
	return &m, nil
}
