// Package config loads editor configuration from TOML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "BLOCKFORGE_"

// Config errors.
var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config is the editor configuration.
type Config struct {
	Editor  Editor                    `toml:"editor"`
	Bundles Bundles                   `toml:"bundles"`
	Log     Log                       `toml:"log"`
	Tools   map[string]map[string]any `toml:"tools"`
}

// Editor holds block-level behavior settings.
type Editor struct {
	// ReadOnly builds every block read-only.
	ReadOnly bool `toml:"read_only"`

	// DebounceMS is the quiet period after the last content mutation
	// before a block reports a change. Zero means the built-in default.
	DebounceMS int `toml:"debounce_ms"`

	// DefaultTunes are tune names applied to every block, in wrap order.
	DefaultTunes []string `toml:"default_tunes"`
}

// Bundles configures script bundle loading.
type Bundles struct {
	// Dir is the bundle directory. Empty disables script loading.
	Dir string `toml:"dir"`

	// Watch enables live reload of changed bundles.
	Watch bool `toml:"watch"`

	// ReloadDelayMS is the quiet period before a changed bundle reloads.
	ReloadDelayMS int `toml:"reload_delay_ms"`
}

// Log configures diagnostics output.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Development switches to the human-readable console encoding.
	Development bool `toml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Editor: Editor{
			DebounceMS:   450,
			DefaultTunes: []string{"delete"},
		},
		Bundles: Bundles{
			ReloadDelayMS: 200,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist, then applies environment overrides and
// validates. An unreadable or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from BLOCKFORGE_* environment variables.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "BUNDLES_DIR"); ok {
		c.Bundles.Dir = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "READ_ONLY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Editor.ReadOnly = b
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "DEBOUNCE_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Editor.DebounceMS = n
		}
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	if c.Editor.DebounceMS < 0 {
		return fmt.Errorf("%w: negative debounce", ErrInvalidConfig)
	}
	if c.Bundles.ReloadDelayMS < 0 {
		return fmt.Errorf("%w: negative reload delay", ErrInvalidConfig)
	}
	return nil
}

// Debounce returns the mutation debounce as a duration; zero means the
// caller should use its default.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Editor.DebounceMS) * time.Millisecond
}

// ReloadDelay returns the bundle reload quiet period.
func (c *Config) ReloadDelay() time.Duration {
	return time.Duration(c.Bundles.ReloadDelayMS) * time.Millisecond
}

// ToolSettings returns the [tools.<name>] table for a tool, nil when the
// tool has no configured settings.
func (c *Config) ToolSettings(name string) map[string]any {
	if c.Tools == nil {
		return nil
	}
	return c.Tools[name]
}
