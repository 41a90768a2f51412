// Package config holds repolens configuration. Options is the immutable set
// of analysis parameters constructed once and passed by reference into every
// call that needs it; nothing in the engine reads ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Scope selects how far duplicate window matching looks.
type Scope string

const (
	// ScopePerFile matches windows only within the same file.
	ScopePerFile Scope = "per-file"
	// ScopeCorpus matches windows across the whole corpus.
	ScopeCorpus Scope = "corpus-wide"
)

// Options are the analysis parameters that affect metric results. They are
// part of the cache key: two analyses with equal Options and equal corpus
// content produce the same report.
type Options struct {
	DuplicationWindow int   `koanf:"duplication_window" json:"duplication_window"`
	DuplicationScope  Scope `koanf:"duplication_scope" json:"duplication_scope"`
	// ForceRecompute bypasses the cache lookup. It does not affect metric
	// values and is excluded from key derivation.
	ForceRecompute bool `koanf:"force_recompute" json:"-"`
}

// DefaultOptions returns the default analysis parameters.
func DefaultOptions() Options {
	return Options{
		DuplicationWindow: 4,
		DuplicationScope:  ScopeCorpus,
	}
}

// ValidationError reports a rejected configuration value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate rejects unusable options before any computation starts. Invalid
// values are never silently clamped.
func (o Options) Validate() error {
	if o.DuplicationWindow < 1 {
		return &ValidationError{
			Field:  "duplication_window",
			Reason: fmt.Sprintf("must be a positive integer, got %d", o.DuplicationWindow),
		}
	}
	switch o.DuplicationScope {
	case ScopePerFile, ScopeCorpus:
	default:
		return &ValidationError{
			Field:  "duplication_scope",
			Reason: fmt.Sprintf("must be %q or %q, got %q", ScopePerFile, ScopeCorpus, o.DuplicationScope),
		}
	}
	return nil
}

// Config holds all configuration for repolens.
type Config struct {
	Repo     RepoConfig   `koanf:"repo"`
	Analysis Options      `koanf:"analysis"`
	Cache    CacheConfig  `koanf:"cache"`
	Output   OutputConfig `koanf:"output"`
}

// RepoConfig controls repository acquisition.
type RepoConfig struct {
	// CacheDir is where remote repositories are cloned.
	CacheDir string `koanf:"cache_dir"`
}

// CacheConfig selects the report store backend.
type CacheConfig struct {
	Backend string `koanf:"backend"` // memory, file, sqlite
	Dir     string `koanf:"dir"`     // file backend
	Path    string `koanf:"path"`    // sqlite backend
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, yaml
	Color  bool   `koanf:"color"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: RepoConfig{
			CacheDir: ".repolens/repos",
		},
		Analysis: DefaultOptions(),
		Cache: CacheConfig{
			Backend: "file",
			Dir:     ".repolens/cache",
			Path:    ".repolens/history.db",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	names := []string{
		"repolens.toml",
		"repolens.yaml",
		"repolens.yml",
		"repolens.json",
		".repolens.toml",
		".repolens.yaml",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return Default()
}
