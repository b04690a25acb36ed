// Package config loads the legallens TOML configuration and layers
// environment and flag overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Codewiz19/legallens/internal/report"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "LEGALLENS_CONFIG"
	// EnvAPIBase overrides api.base_url.
	EnvAPIBase = "LEGALLENS_API_BASE"
)

// API configures the remote analysis service.
type API struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// CallSpacingMS is the minimum gap between consecutive backend calls.
	// The backend rejects near-simultaneous requests with conflict errors.
	CallSpacingMS int `toml:"call_spacing_ms"`
}

// Heuristics exposes the point-splitting and synthesizer constants. They are
// empirically chosen defaults; override them only with a reason.
type Heuristics struct {
	MinFragmentChars int `toml:"min_fragment_chars"`
	ChunkChars       int `toml:"chunk_chars"`
	MaxChunks        int `toml:"max_chunks"`
	MaxSynthesized   int `toml:"max_synthesized"`
}

// Config is the full configuration tree.
type Config struct {
	API        API        `toml:"api"`
	Heuristics Heuristics `toml:"heuristics"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	split := report.DefaultSplitConfig()
	return Config{
		API: API{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 120,
			CallSpacingMS:  1000,
		},
		Heuristics: Heuristics{
			MinFragmentChars: split.MinFragmentChars,
			ChunkChars:       split.ChunkChars,
			MaxChunks:        split.MaxChunks,
			MaxSynthesized:   report.DefaultSynthesisConfig().MaxItems,
		},
	}
}

// DefaultPath returns ~/.legallens/config.toml, honoring EnvConfigPath.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".legallens", "config.toml"), nil
}

// Load reads the config file at path. A missing file yields the defaults; a
// malformed file is an error the caller surfaces at startup.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if base := os.Getenv(EnvAPIBase); base != "" {
		c.API.BaseURL = base
	}
}

// Timeout returns the per-request timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// CallSpacing returns the pacing interval between backend calls.
func (c Config) CallSpacing() time.Duration {
	if c.API.CallSpacingMS <= 0 {
		return time.Second
	}
	return time.Duration(c.API.CallSpacingMS) * time.Millisecond
}

// SplitConfig maps the heuristics section onto the normalizer's thresholds.
func (c Config) SplitConfig() report.SplitConfig {
	return report.SplitConfig{
		MinFragmentChars: c.Heuristics.MinFragmentChars,
		ChunkChars:       c.Heuristics.ChunkChars,
		MaxChunks:        c.Heuristics.MaxChunks,
	}
}

// SynthesisConfig maps the heuristics section onto the synthesizer's bounds.
func (c Config) SynthesisConfig() report.SynthesisConfig {
	return report.SynthesisConfig{MaxItems: c.Heuristics.MaxSynthesized}
}
