package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are tried in order when no config file is given explicitly.
var DefaultPaths = []string{
	"./rscript.toml",
	"./rscript.yaml",
	"./rscript.yml",
}

// Config holds the command line settings
type Config struct {
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	Color       bool   `toml:"color" yaml:"color"`
	PrintSource bool   `toml:"print_source" yaml:"print_source"`
	PrintTree   bool   `toml:"print_tree" yaml:"print_tree"`
	Entry       string `toml:"entry" yaml:"entry"`
	Indent      int    `toml:"indent" yaml:"indent"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the configuration used when no file is found
func Default() *Config {
	cfg := &Config{Color: true}
	cfg.applyDefaults()

	return cfg
}

// Load reads a TOML or YAML file, picked by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}

		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Keys missing from the file keep their default
	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.applyDefaults()
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Discover loads the explicit path if one is given, else the first of DefaultPaths that
// exists, else the defaults. Environment overrides are applied last.
func Discover(explicit string) (*Config, error) {
	var (
		cfg *Config
		err error
	)

	switch {
	case explicit != "":
		cfg, err = Load(explicit)
	default:
		for _, p := range DefaultPaths {
			if _, statErr := os.Stat(p); statErr == nil {
				cfg, err = Load(p)
				break
			}
		}
	}

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = Default()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Entry == "" {
		c.Entry = "main"
	}
	if c.Indent == 0 {
		c.Indent = 4
	}
}

func (c *Config) applyEnv() error {
	if level := os.Getenv("RSCRIPT_LOG"); level != "" {
		c.LogLevel = level
	}

	if entry := os.Getenv("RSCRIPT_ENTRY"); entry != "" {
		c.Entry = entry
	}

	if color := os.Getenv("RSCRIPT_COLOR"); color != "" {
		v, err := strconv.ParseBool(color)
		if err != nil {
			return fmt.Errorf("invalid RSCRIPT_COLOR %q: %w", color, err)
		}

		c.Color = v
	}

	return nil
}

// Validate checks the values a file or the environment may have set
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	if c.Indent < 0 {
		return fmt.Errorf("invalid indent %d: must not be negative", c.Indent)
	}

	return nil
}
