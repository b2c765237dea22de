package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Color)
	assert.False(t, cfg.PrintSource)
	assert.False(t, cfg.PrintTree)
	assert.Equal(t, "main", cfg.Entry)
	assert.Equal(t, 4, cfg.Indent)
	assert.Empty(t, cfg.Path)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			"toml",
			"rscript.toml",
			"log_level = \"debug\"\ncolor = false\nprint_tree = true\nentry = \"start\"\nindent = 2\n",
		},
		{
			"yaml",
			"rscript.yaml",
			"log_level: debug\ncolor: false\nprint_tree: true\nentry: start\nindent: 2\n",
		},
		{
			"yml",
			"rscript.yml",
			"log_level: debug\ncolor: false\nprint_tree: true\nentry: start\nindent: 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			cfg, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, "debug", cfg.LogLevel)
			assert.False(t, cfg.Color)
			assert.True(t, cfg.PrintTree)
			assert.False(t, cfg.PrintSource)
			assert.Equal(t, "start", cfg.Entry)
			assert.Equal(t, 2, cfg.Indent)
			assert.Equal(t, path, cfg.Path)
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "partial.toml", "print_source = true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.PrintSource)
	assert.True(t, cfg.Color)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "main", cfg.Entry)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "missing.toml")},
		{"format", writeFile(t, "rscript.ini", "log_level=debug")},
		{"toml", writeFile(t, "broken.toml", "log_level = ")},
		{"yaml", writeFile(t, "broken.yaml", "log_level: [")},
		{"level", writeFile(t, "level.toml", "log_level = \"loud\"")},
		{"indent", writeFile(t, "indent.yaml", "indent: -1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Setenv("RSCRIPT_LOG", "")
	t.Setenv("RSCRIPT_ENTRY", "")
	t.Setenv("RSCRIPT_COLOR", "")

	defaults := DefaultPaths
	t.Cleanup(func() { DefaultPaths = defaults })

	dir := t.TempDir()
	DefaultPaths = []string{
		filepath.Join(dir, "rscript.toml"),
		filepath.Join(dir, "rscript.yaml"),
	}

	cfg, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(DefaultPaths[1], []byte("entry: yaml_entry\n"), 0o644))
	cfg, err = Discover("")
	require.NoError(t, err)
	assert.Equal(t, "yaml_entry", cfg.Entry)

	require.NoError(t, os.WriteFile(DefaultPaths[0], []byte("entry = \"toml_entry\"\n"), 0o644))
	cfg, err = Discover("")
	require.NoError(t, err)
	assert.Equal(t, "toml_entry", cfg.Entry)

	explicit := writeFile(t, "custom.yml", "entry: custom\n")
	cfg, err = Discover(explicit)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Entry)
	assert.Equal(t, explicit, cfg.Path)

	_, err = Discover(filepath.Join(dir, "nope.toml"))
	assert.Error(t, err)
}

func TestDiscoverEnvironment(t *testing.T) {
	defaults := DefaultPaths
	t.Cleanup(func() { DefaultPaths = defaults })
	DefaultPaths = nil

	t.Setenv("RSCRIPT_LOG", "debug")
	t.Setenv("RSCRIPT_ENTRY", "begin")
	t.Setenv("RSCRIPT_COLOR", "false")

	cfg, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "begin", cfg.Entry)
	assert.False(t, cfg.Color)

	t.Setenv("RSCRIPT_COLOR", "maybe")
	_, err = Discover("")
	assert.Error(t, err)

	t.Setenv("RSCRIPT_COLOR", "")
	t.Setenv("RSCRIPT_LOG", "verbose")
	_, err = Discover("")
	assert.Error(t, err)
}
