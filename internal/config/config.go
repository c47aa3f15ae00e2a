// Package config loads tool configuration by layering defaults, an
// optional YAML file, and NICHE_-prefixed environment variables. Flags are
// applied on top by the caller, so precedence is flag > env > file >
// default.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the settings shared by the CLI and the report server.
type Config struct {
	// Tolerance is the default agreement band half-width.
	Tolerance float64 `koanf:"tolerance"`
	// OutputDir is where PNG/HTML reports are written.
	OutputDir string `koanf:"output_dir"`
	// DBPath is the sqlite run-history file; empty disables recording.
	DBPath string `koanf:"db_path"`
	// Format forces a raster provider by name instead of selecting by
	// file extension; empty selects by extension.
	Format string `koanf:"format"`
	// Listen is the report server address for -serve mode.
	Listen string `koanf:"listen"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		Tolerance: 0.05,
		OutputDir: "reports",
		Listen:    ":8080",
	}
}

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML): the path argument, or NICHE_CONFIG when path is empty
//  3. env (prefix NICHE_, e.g. NICHE_TOLERANCE, NICHE_OUTPUT_DIR)
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("NICHE_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Map env keys like NICHE_OUTPUT_DIR -> output_dir, preserving
	// underscores to match the koanf tags on the struct.
	envProvider := env.Provider("NICHE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "niche_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be >= 0, got %v", cfg.Tolerance)
	}
	return &cfg, nil
}
