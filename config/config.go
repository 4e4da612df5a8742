// Package config loads the colorize.yaml configuration: which languages to
// activate on, which files to scan, how aggressively to coalesce triggers,
// and how large a file may be before it is skipped.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "colorize.yaml"

// Config holds every option the engine recognizes. Delay fields are
// milliseconds in yaml.
type Config struct {
	// Languages are the file extensions to activate on (e.g. css, scss).
	// Empty activates on every scanned file.
	Languages []string `yaml:"languages,omitempty"`

	// Include/Exclude are doublestar globs applied to workspace scans.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	// Trigger coalescing intervals, in milliseconds.
	ExtractDelayMs    int `yaml:"extract_delay_ms,omitempty"`
	ColorizeDelayMs   int `yaml:"colorize_delay_ms,omitempty"`
	SelectionDelayMs  int `yaml:"selection_delay_ms,omitempty"`
	DecorationDelayMs int `yaml:"decoration_delay_ms,omitempty"`

	// MaxFileSize is the per-file byte ceiling; larger files are skipped
	// and reported, never truncated.
	MaxFileSize int64 `yaml:"max_file_size,omitempty"`

	// CacheCapacity bounds each annotation cache partition.
	CacheCapacity int `yaml:"cache_capacity,omitempty"`

	// BatchSize is how many files a workspace scan reads per batch.
	BatchSize int `yaml:"batch_size,omitempty"`
}

// Default returns the configuration used when no colorize.yaml exists.
func Default() *Config {
	return &Config{
		Languages:         []string{"css", "scss", "sass", "less", "html"},
		Include:           []string{"**/*"},
		Exclude:           []string{"**/node_modules/**", "**/vendor/**"},
		ExtractDelayMs:    500,
		ColorizeDelayMs:   300,
		SelectionDelayMs:  150,
		DecorationDelayMs: 100,
		MaxFileSize:       1 << 20,
		CacheCapacity:     100,
		BatchSize:         100,
	}
}

func (c *Config) ExtractDelay() time.Duration {
	return time.Duration(c.ExtractDelayMs) * time.Millisecond
}

func (c *Config) ColorizeDelay() time.Duration {
	return time.Duration(c.ColorizeDelayMs) * time.Millisecond
}

func (c *Config) SelectionDelay() time.Duration {
	return time.Duration(c.SelectionDelayMs) * time.Millisecond
}

func (c *Config) DecorationDelay() time.Duration {
	return time.Duration(c.DecorationDelayMs) * time.Millisecond
}

// Load finds and parses colorize.yaml for the given directory, walking up
// the directory tree no further than the git root. Missing file is not an
// error; defaults are returned. Every option can also be set via the
// environment (COLORIZE_* through viper), overriding the file; list
// options take comma-separated values.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path, err := findConfigFile(dir, ConfigFileName)
	if err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		logger.Debugf("loaded configuration from %s", path)
	}

	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache_capacity must be positive, got %d", c.CacheCapacity)
	}
	for name, ms := range map[string]int{
		"extract_delay_ms":    c.ExtractDelayMs,
		"colorize_delay_ms":   c.ColorizeDelayMs,
		"selection_delay_ms":  c.SelectionDelayMs,
		"decoration_delay_ms": c.DecorationDelayMs,
	} {
		if ms < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, ms)
		}
	}
	return nil
}

// applyEnvOverrides layers COLORIZE_-prefixed environment variables over
// the file values via viper. Every recognized option can be overridden;
// list options take comma-separated values.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("COLORIZE")
	v.AutomaticEnv()

	if v.IsSet("max_file_size") {
		cfg.MaxFileSize = v.GetInt64("max_file_size")
	}
	for key, dst := range map[string]*int{
		"cache_capacity":      &cfg.CacheCapacity,
		"batch_size":          &cfg.BatchSize,
		"extract_delay_ms":    &cfg.ExtractDelayMs,
		"colorize_delay_ms":   &cfg.ColorizeDelayMs,
		"selection_delay_ms":  &cfg.SelectionDelayMs,
		"decoration_delay_ms": &cfg.DecorationDelayMs,
	} {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	for key, dst := range map[string]*[]string{
		"languages": &cfg.Languages,
		"include":   &cfg.Include,
		"exclude":   &cfg.Exclude,
	} {
		if v.IsSet(key) {
			*dst = splitList(v.GetString(key))
		}
	}
}

// splitList parses a comma-separated environment value into a slice,
// dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// findGitRoot finds the git root directory by walking up from startDir.
func findGitRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// findConfigFile searches for the config file from startDir up to the git root.
func findConfigFile(startDir, fileName string) (string, error) {
	gitRoot := findGitRoot(startDir)
	dir := startDir

	for {
		configPath := filepath.Join(dir, fileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
		if dir == gitRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("configuration file %s not found in directory tree from %s to %s", fileName, startDir, gitRoot)
}
