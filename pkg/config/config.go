// Package config loads and validates churnscope configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/churnscope/pkg/decomposition"
	"github.com/panbanda/churnscope/pkg/threshold"
)

// Config holds all configuration options for churnscope.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis" json:"analysis"`

	// Risk bucket boundaries
	Thresholds ThresholdsConfig `koanf:"thresholds" toml:"thresholds" yaml:"thresholds" json:"thresholds"`

	// Named ways of splitting the codebase into components
	LogicalDecompositions []decomposition.Decomposition `koanf:"logical_decompositions" toml:"logical_decompositions" yaml:"logical_decompositions" json:"logical_decompositions"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`

	// Logging settings
	Log LogConfig `koanf:"log" toml:"log" yaml:"log" json:"log"`
}

// AnalysisConfig controls history collection and source scanning.
type AnalysisConfig struct {
	HistoryDays int      `koanf:"history_days" toml:"history_days" yaml:"history_days" json:"history_days"`
	Extensions  []string `koanf:"extensions" toml:"extensions" yaml:"extensions" json:"extensions"`
	Top         int      `koanf:"top" toml:"top" yaml:"top" json:"top"`
	NativeGit   bool     `koanf:"native_git" toml:"native_git" yaml:"native_git" json:"native_git"`
}

// ThresholdsConfig holds the bucket boundaries for each classified metric.
type ThresholdsConfig struct {
	ChangeFrequency ThresholdConfig `koanf:"change_frequency" toml:"change_frequency" yaml:"change_frequency" json:"change_frequency"`
	Contributors    ThresholdConfig `koanf:"contributors" toml:"contributors" yaml:"contributors" json:"contributors"`
}

// ThresholdConfig is the raw form of a threshold.Set.
// Labels may be omitted, in which case range labels are derived from the boundaries.
type ThresholdConfig struct {
	Negligible int      `koanf:"negligible" toml:"negligible" yaml:"negligible" json:"negligible"`
	Low        int      `koanf:"low" toml:"low" yaml:"low" json:"low"`
	Medium     int      `koanf:"medium" toml:"medium" yaml:"medium" json:"medium"`
	High       int      `koanf:"high" toml:"high" yaml:"high" json:"high"`
	Labels     []string `koanf:"labels" toml:"labels,omitempty" yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Set builds the validated threshold set.
func (t ThresholdConfig) Set() (*threshold.Set, error) {
	labels := t.Labels
	if len(labels) == 0 {
		labels = threshold.DefaultLabels(t.Negligible, t.Low, t.Medium, t.High)
	}
	return threshold.New(t.Negligible, t.Low, t.Medium, t.High, labels)
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching of collected history.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl" json:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text or json
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			HistoryDays: 365,
			Extensions: []string{
				"go", "java", "kt", "scala", "py", "rb", "js", "jsx", "ts", "tsx",
				"c", "h", "cc", "cpp", "hpp", "cs", "rs", "php", "swift",
			},
			Top:       10,
			NativeGit: true,
		},
		Thresholds: ThresholdsConfig{
			ChangeFrequency: ThresholdConfig{
				Negligible: 5,
				Low:        20,
				Medium:     50,
				High:       100,
			},
			Contributors: ThresholdConfig{
				Negligible: 1,
				Low:        3,
				Medium:     5,
				High:       10,
			},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
				"*.pb.go",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".churnscope",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".churnscope/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ConfigNames are the file names searched for, in order.
var ConfigNames = []string{
	"churnscope.toml",
	"churnscope.yaml",
	"churnscope.yml",
	"churnscope.json",
	".churnscope.toml",
	".churnscope.yaml",
	".churnscope.yml",
	".churnscope.json",
}

// SearchDirs are the directories searched for config files, in order.
var SearchDirs = []string{".", ".churnscope"}

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load loads configuration from a file, layered over the defaults.
// The document is checked against the embedded JSON Schema and the
// resulting config is validated.
func Load(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := validateDocument(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadResult is a loaded config and the file it came from.
// Source is empty when no file was found and defaults are in use.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for config files.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig loads an explicit config file or the first one found in the
// search directories. Unlike LoadOrDefault, errors in a found file are returned.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: SearchDirs}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path := Find(o.dirs...); path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// Find returns the first config file present in dirs, or "".
func Find(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// Validate builds every derived structure once so configuration errors
// surface at startup. Errors wrap threshold.ErrConfiguration.
func (c *Config) Validate() error {
	if _, err := c.Thresholds.ChangeFrequency.Set(); err != nil {
		return fmt.Errorf("thresholds.change_frequency: %w", err)
	}
	if _, err := c.Thresholds.Contributors.Set(); err != nil {
		return fmt.Errorf("thresholds.contributors: %w", err)
	}
	if _, err := decomposition.Compile(c.LogicalDecompositions); err != nil {
		return fmt.Errorf("logical_decompositions: %w", err)
	}
	if c.Analysis.HistoryDays <= 0 {
		return fmt.Errorf("%w: analysis.history_days must be positive", threshold.ErrConfiguration)
	}
	if c.Analysis.Top < 0 {
		return fmt.Errorf("%w: analysis.top must not be negative", threshold.ErrConfiguration)
	}
	return nil
}

// NormalizedExtensions returns the declared extensions lower-cased without
// the leading dot, keeping the first occurrence of duplicates.
func (c *Config) NormalizedExtensions() []string {
	seen := make(map[string]bool, len(c.Analysis.Extensions))
	out := make([]string, 0, len(c.Analysis.Extensions))
	for _, ext := range c.Analysis.Extensions {
		e := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
