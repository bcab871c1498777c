// Package config handles engine and CLI configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/docview/citelens/resolver"
)

// Config is the YAML-backed tuning surface for the engine and CLI.
// Zero values fall back to the engine defaults, so a config file only
// needs to name what it overrides.
type Config struct {
	// Concurrency bounds parallel anchor processing.
	Concurrency int `yaml:"concurrency"`

	// RateLimit caps anchor dispatches per second; zero is unlimited.
	RateLimit float64 `yaml:"rate_limit"`

	// SpanEdgeDistance is the bottom-edge distance that triggers
	// next-page span handling.
	SpanEdgeDistance float64 `yaml:"span_edge_distance"`

	// YTolerance and XGapThreshold tune line reconstruction.
	YTolerance    float64 `yaml:"y_tolerance"`
	XGapThreshold float64 `yaml:"x_gap_threshold"`

	// MaxTextRunes caps extracted reference text.
	MaxTextRunes int `yaml:"max_text_runes"`

	// Database is the SQLite file extraction runs are saved to.
	Database string `yaml:"database"`
}

// Default returns the configuration the engine uses when no file is
// given.
func Default() Config {
	rc := resolver.DefaultConfig()
	return Config{
		Concurrency:      rc.Concurrency,
		SpanEdgeDistance: rc.SpanEdgeDistance,
		YTolerance:       rc.Line.YTolerance,
		XGapThreshold:    rc.Line.XGapThreshold,
		MaxTextRunes:     rc.Scan.MaxTextRunes,
		Database:         "citelens.db",
	}
}

// Load reads a YAML config file, layering it over the defaults.
// Unknown fields are rejected so typos surface instead of silently
// doing nothing.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolverConfig converts the file-level settings to the engine's
// run configuration.
func (c Config) ResolverConfig() resolver.Config {
	rc := resolver.DefaultConfig()
	if c.Concurrency > 0 {
		rc.Concurrency = c.Concurrency
	}
	if c.RateLimit > 0 {
		rc.RateLimit = c.RateLimit
	}
	if c.SpanEdgeDistance > 0 {
		rc.SpanEdgeDistance = c.SpanEdgeDistance
	}
	if c.YTolerance > 0 {
		rc.Line.YTolerance = c.YTolerance
	}
	if c.XGapThreshold > 0 {
		rc.Line.XGapThreshold = c.XGapThreshold
	}
	if c.MaxTextRunes > 0 {
		rc.Scan.MaxTextRunes = c.MaxTextRunes
	}
	return rc
}
