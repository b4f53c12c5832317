package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the server and the CLI.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// MaxLoaded bounds bundles held in memory; negative disables caching.
	MaxLoaded    int   `json:"max_loaded" yaml:"max_loaded" toml:"max_loaded"`
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// Watch reloads the catalog when the models directory changes.
	Watch *bool `json:"watch" yaml:"watch" toml:"watch"`
	CORS  CORS  `json:"cors" yaml:"cors" toml:"cors"`
	Train Train `json:"train" yaml:"train" toml:"train"`
}

// CORS configures cross-origin access for the web client.
type CORS struct {
	// Enabled defaults to true when unset.
	Enabled *bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Train holds defaults for `cropctl train`.
type Train struct {
	Trees     int     `json:"trees" yaml:"trees" toml:"trees"`
	MaxDepth  int     `json:"max_depth" yaml:"max_depth" toml:"max_depth"`
	TestRatio float64 `json:"test_ratio" yaml:"test_ratio" toml:"test_ratio"`
	Seed      int64   `json:"seed" yaml:"seed" toml:"seed"`
	Workers   int     `json:"workers" yaml:"workers" toml:"workers"`
}

// Enabled reports the value of an optional switch, using def when unset.
func Enabled(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Train.TestRatio < 0 || cfg.Train.TestRatio >= 1 {
		return cfg, fmt.Errorf("train.test_ratio %v must be in [0, 1)", cfg.Train.TestRatio)
	}
	return cfg, nil
}
