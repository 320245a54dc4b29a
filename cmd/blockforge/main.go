// Package main is a demonstration driver for the block core: it loads a
// persisted document, composes blocks from registered tools and tunes,
// applies an edit, waits out the mutation debounce, and prints the
// re-saved document.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/frysweet/blockforge/internal/block"
	"github.com/frysweet/blockforge/internal/config"
	"github.com/frysweet/blockforge/internal/savedata"
	"github.com/frysweet/blockforge/internal/scripting"
	"github.com/frysweet/blockforge/internal/tool"
	"github.com/frysweet/blockforge/internal/tools/paragraph"
	"github.com/frysweet/blockforge/internal/tunes"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

const sampleDocument = `{
  "blocks": [
    {
      "tool": "paragraph",
      "data": {"text": "Blocks are the unit of content."},
      "tunes": {
        "alignment": {"value": "center"},
        "footnotes": {"refs": [1, 2]}
      }
    },
    {
      "tool": "paragraph",
      "data": {"text": "Each one pairs a tool with its tunes."}
    }
  ]
}`

type options struct {
	configPath string
	docPath    string
	bundlesDir string
	logLevel   string
	readOnly   bool
	skipEdit   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.bundlesDir != "" {
		cfg.Bundles.Dir = opts.bundlesDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.readOnly {
		cfg.Editor.ReadOnly = true
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	reg := tool.NewRegistry()
	if err := registerBuiltins(reg, cfg); err != nil {
		logger.Error("registering builtins", zap.Error(err))
		return 1
	}

	if cfg.Bundles.Dir != "" {
		loader := scripting.NewLoader(cfg.Bundles.Dir, logger)
		if err := loader.Apply(reg); err != nil {
			logger.Error("loading bundles", zap.Error(err))
			return 1
		}
		if cfg.Bundles.Watch {
			reloader, err := scripting.NewReloader(cfg.Bundles.Dir, cfg.ReloadDelay(), func(bundle string) {
				if err := loader.Reload(reg, bundle); err != nil {
					logger.Warn("bundle reload failed",
						zap.String("bundle", bundle),
						zap.Error(err))
				}
			}, logger)
			if err != nil {
				logger.Error("watching bundles", zap.Error(err))
				return 1
			}
			defer reloader.Close() //nolint:errcheck
		}
	}

	raw := []byte(sampleDocument)
	if opts.docPath != "" {
		raw, err = os.ReadFile(opts.docPath)
		if err != nil {
			logger.Error("reading document", zap.Error(err))
			return 1
		}
	}
	doc, err := savedata.Parse(raw)
	if err != nil {
		logger.Error("parsing document", zap.Error(err))
		return 1
	}

	blocks, err := buildBlocks(doc, reg, cfg, logger)
	if err != nil {
		logger.Error("building blocks", zap.Error(err))
		return 1
	}
	defer func() {
		for _, b := range blocks {
			b.Destroy()
		}
	}()

	if !opts.skipEdit && !cfg.Editor.ReadOnly && len(blocks) > 0 {
		editFirstBlock(blocks[0], cfg, logger)
	}

	out, err := saveDocument(blocks)
	if err != nil {
		logger.Error("saving document", zap.Error(err))
		return 1
	}
	fmt.Println(string(out))
	return 0
}

// registerBuiltins fills the registry with the compiled-in tool and tunes.
func registerBuiltins(reg *tool.Registry, cfg *config.Config) error {
	var pcfg paragraph.Config
	if settings := cfg.ToolSettings(paragraph.ToolName); settings != nil {
		raw, err := json.Marshal(settings)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &pcfg); err != nil {
			return fmt.Errorf("paragraph settings: %w", err)
		}
	}
	if err := reg.RegisterTool(paragraph.Adapter{
		Config:    pcfg,
		TuneNames: []string{tunes.AlignmentName},
	}); err != nil {
		return err
	}
	if err := reg.RegisterTune(tunes.AlignmentAdapter{}); err != nil {
		return err
	}
	return reg.RegisterTune(tunes.DeleteAdapter{})
}

// buildBlocks composes one Block per saved record. A record for an
// unregistered tool is skipped with a diagnostic rather than failing the
// whole document.
func buildBlocks(doc *savedata.Document, reg *tool.Registry, cfg *config.Config, logger *zap.Logger) ([]*block.Block, error) {
	var defaults []tool.TuneAdapter
	for _, name := range cfg.Editor.DefaultTunes {
		if a := reg.Tune(name); a != nil {
			defaults = append(defaults, a)
		} else {
			logger.Warn("default tune not registered", zap.String("tune", name))
		}
	}

	blockOpts := []block.Option{block.WithLogger(logger)}
	if d := cfg.Debounce(); d > 0 {
		blockOpts = append(blockOpts, block.WithDebounce(d))
	}

	var blocks []*block.Block
	for i, saved := range doc.Blocks {
		adapter, err := reg.Tool(saved.Tool)
		if err != nil {
			logger.Warn("skipping block",
				zap.Int("index", i),
				zap.String("tool", saved.Tool),
				zap.Error(err))
			continue
		}

		var userTunes []tool.TuneAdapter
		for _, name := range adapter.Tunes() {
			if a := reg.Tune(name); a != nil {
				userTunes = append(userTunes, a)
			}
		}

		b, err := block.New(block.Options{
			ID:           saved.ID,
			Tool:         adapter,
			Data:         saved.Data,
			TunesData:    saved.Tunes,
			Tunes:        userTunes,
			DefaultTunes: defaults,
			ReadOnly:     cfg.Editor.ReadOnly,
		}, blockOpts...)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		b.OnDidMutated(func(b *block.Block) {
			logger.Info("block changed", zap.String("id", b.ID()))
		})
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// editFirstBlock types into the first block's current input and waits for
// the change notification to settle.
func editFirstBlock(b *block.Block, cfg *config.Config, logger *zap.Logger) {
	input := b.CurrentInput()
	if input == nil {
		return
	}

	settled := make(chan struct{}, 1)
	sub := b.OnDidMutated(func(*block.Block) {
		select {
		case settled <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	input.SetText(input.TextContent() + " Edited.")
	logger.Debug("edit applied", zap.String("id", b.ID()))

	select {
	case <-settled:
	case <-time.After(cfg.Debounce() + 2*time.Second):
		logger.Warn("edit never settled", zap.String("id", b.ID()))
	}
}

// saveDocument re-saves every block into a persisted document.
func saveDocument(blocks []*block.Block) ([]byte, error) {
	doc := &savedata.Document{}
	for _, b := range blocks {
		sd, err := b.Save()
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.ID(), err)
		}
		doc.Blocks = append(doc.Blocks, savedata.Saved{
			ID:    sd.ID,
			Tool:  sd.Tool,
			Data:  sd.Data,
			Tunes: sd.Tunes,
		})
	}
	return savedata.Marshal(doc)
}

func buildLogger(cfg config.Log) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// stdout carries the saved document; diagnostics go to stderr.
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "blockforge.toml", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "blockforge.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.docPath, "doc", "", "Path to a saved document (default: built-in sample)")
	flag.StringVar(&opts.bundlesDir, "bundles", "", "Script bundle directory (overrides config)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.readOnly, "readonly", false, "Build blocks read-only")
	flag.BoolVar(&opts.readOnly, "R", false, "Build blocks read-only (shorthand)")
	flag.BoolVar(&opts.skipEdit, "no-edit", false, "Skip the demonstration edit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Blockforge - block core demonstration driver\n\n")
		fmt.Fprintf(os.Stderr, "Usage: blockforge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("blockforge %s (%s)\n", version, commit)
		os.Exit(0)
	}
	return opts
}
