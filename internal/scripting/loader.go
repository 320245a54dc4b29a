package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/frysweet/blockforge/internal/tool"
)

// Loader scans a directory of script bundles and registers them with a
// tool registry. Each immediate subdirectory holding a manifest.json is
// one bundle.
type Loader struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	bundles map[string]*Manifest // bundle dir name -> manifest
}

// NewLoader creates a loader for the given bundle directory.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, logger: logger, bundles: make(map[string]*Manifest)}
}

// Apply loads every bundle and registers it. Bundles that fail to load are
// logged and skipped; the rest still register.
func (l *Loader) Apply(reg *tool.Registry) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("scripting: read bundle dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.loadBundle(reg, name); err != nil {
			l.logger.Warn("skipping bundle",
				zap.String("bundle", name),
				zap.Error(err))
		}
	}
	return nil
}

// Reload re-reads one bundle and swaps its registration. Blocks already
// built keep their old instances; only new constructions see the change.
func (l *Loader) Reload(reg *tool.Registry, bundleName string) error {
	l.mu.Lock()
	old := l.bundles[bundleName]
	l.mu.Unlock()

	if old != nil {
		switch old.Kind {
		case KindTool:
			reg.UnregisterTool(old.Name)
		case KindTune:
			reg.UnregisterTune(old.Name)
		}
	}
	return l.loadBundle(reg, bundleName)
}

func (l *Loader) loadBundle(reg *tool.Registry, bundleName string) error {
	m, err := LoadManifest(filepath.Join(l.dir, bundleName))
	if err != nil {
		return err
	}

	switch m.Kind {
	case KindTool:
		a, err := NewToolAdapter(m, l.logger)
		if err != nil {
			return err
		}
		if err := reg.RegisterTool(a); err != nil {
			return err
		}
	case KindTune:
		a, err := NewTuneAdapter(m, l.logger)
		if err != nil {
			return err
		}
		if err := reg.RegisterTune(a); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.bundles[bundleName] = m
	l.mu.Unlock()

	l.logger.Info("loaded bundle",
		zap.String("bundle", bundleName),
		zap.String("name", m.Name),
		zap.String("kind", string(m.Kind)))
	return nil
}

// Bundles returns the loaded bundle directory names.
func (l *Loader) Bundles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.bundles))
	for name := range l.bundles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
