package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ConfigFile is looked up in the working directory when --config is not given.
const ConfigFile = "dfnref.toml"

// Config describes the document being checked and how to check it.
type Config struct {
	// ShortName is the document's own short name, used to spot self-citations.
	ShortName string `toml:"short_name"`

	// XRef defers possibly-external references to a later lookup pass
	// instead of reporting them as broken.
	XRef bool `toml:"xref"`

	// Workers is the number of goroutines resolving references.
	Workers int `toml:"workers"`

	// LogLevel is one of debug, info, warn, error, off.
	LogLevel string `toml:"log_level"`

	// Suggestions caps the "did you mean" titles per broken reference.
	Suggestions int `toml:"suggestions"`

	// OutputDir receives the check report.
	OutputDir string `toml:"output_dir"`

	NormativeReferences   []string `toml:"normative_references"`
	InformativeReferences []string `toml:"informative_references"`
}

func DefaultConfig() *Config {
	return &Config{
		Workers:     1,
		LogLevel:    "warn",
		Suggestions: 3,
		OutputDir:   ".dfnref",
	}
}

// Load reads path, or ConfigFile under dir when path is empty. A missing
// default file yields DefaultConfig; a missing explicit file is an error.
func Load(dir, path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = filepath.Join(dir, ConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Suggestions < 0 {
		return fmt.Errorf("suggestions must be >= 0, got %d", c.Suggestions)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error", "off", "silent":
	default:
		return fmt.Errorf("unsupported log_level %q (supported: debug, info, warn, error, off)", c.LogLevel)
	}
	return nil
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
