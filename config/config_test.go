package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, int64(1<<20), cfg.MaxFileSize)
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.Equal(t, 300*time.Millisecond, cfg.ColorizeDelay())
	assert.Contains(t, cfg.Languages, "css")
	require.NoError(t, cfg.validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().MaxFileSize, cfg.MaxFileSize)
}

func TestLoad_ReadsYamlFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
languages: [css]
exclude: ["build/**"]
colorize_delay_ms: 150
max_file_size: 2097152
cache_capacity: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"css"}, cfg.Languages)
	assert.Equal(t, []string{"build/**"}, cfg.Exclude)
	assert.Equal(t, 150*time.Millisecond, cfg.ColorizeDelay())
	assert.Equal(t, int64(2<<20), cfg.MaxFileSize)
	assert.Equal(t, 10, cfg.CacheCapacity)
	// Unset fields keep their defaults.
	assert.Equal(t, Default().ExtractDelayMs, cfg.ExtractDelayMs)
}

func TestLoad_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("cache_capacity: 7"), 0644))
	// Mark root as the search boundary.
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	cfg, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.CacheCapacity)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "zero max_file_size", yaml: "max_file_size: 0\ncache_capacity: 10"},
		{name: "negative delay", yaml: "colorize_delay_ms: -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(tt.yaml), 0644))

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COLORIZE_CACHE_CAPACITY", "42")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.CacheCapacity)
}

func TestLoad_EnvOverridesEveryOption(t *testing.T) {
	t.Setenv("COLORIZE_SELECTION_DELAY_MS", "75")
	t.Setenv("COLORIZE_DECORATION_DELAY_MS", "25")
	t.Setenv("COLORIZE_BATCH_SIZE", "5")
	t.Setenv("COLORIZE_LANGUAGES", "css,scss")
	t.Setenv("COLORIZE_INCLUDE", "src/**")
	t.Setenv("COLORIZE_EXCLUDE", "dist/**, tmp/**")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 75*time.Millisecond, cfg.SelectionDelay())
	assert.Equal(t, 25*time.Millisecond, cfg.DecorationDelay())
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, []string{"css", "scss"}, cfg.Languages)
	assert.Equal(t, []string{"src/**"}, cfg.Include)
	assert.Equal(t, []string{"dist/**", "tmp/**"}, cfg.Exclude)
}
