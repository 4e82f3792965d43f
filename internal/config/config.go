// Package config loads the sklang configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file written by "sklang init".
const DefaultPath = ".sklang.yaml"

// Config is the overall configuration of a check run.
type Config struct {
	Name         string         `yaml:"name" toml:"name"`
	MaxDepth     int            `yaml:"max_depth" toml:"max_depth"`
	Extensions   []string       `yaml:"extensions" toml:"extensions"`
	ExpectedType string         `yaml:"expected_type" toml:"expected_type"`
	Disabled     []string       `yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	Priorities   map[string]int `yaml:"priorities,omitempty" toml:"priorities,omitempty"`
	LogLevel     string         `yaml:"log_level" toml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Name:         "sklang",
		MaxDepth:     64,
		Extensions:   []string{".sk"},
		ExpectedType: "objects",
		LogLevel:     "info",
	}
}

// Load reads the configuration at path. The format is chosen from the
// extension: .toml files are TOML, anything else YAML. A missing file
// yields the defaults. Fields absent from the file take their defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	var config Config
	if err := Decode(data, isTOML(path), &config); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	config.fillDefaults()
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

// Decode decodes YAML or TOML data into config.
func Decode(data []byte, asTOML bool, config *Config) error {
	if asTOML {
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(config)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(config)
}

// Encode renders config as YAML, or TOML when asTOML is set.
func Encode(config Config, asTOML bool) ([]byte, error) {
	if asTOML {
		return toml.Marshal(config)
	}
	return yaml.Marshal(config)
}

// Write writes config to path in the format chosen by its extension.
func Write(path string, config Config) error {
	d, err := Encode(config, isTOML(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = d.MaxDepth
	}
	if len(c.Extensions) == 0 {
		c.Extensions = d.Extensions
	}
	if c.ExpectedType == "" {
		c.ExpectedType = d.ExpectedType
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate checks the values that have no sensible fallback.
func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if strings.TrimSpace(c.ExpectedType) == "" {
		return errors.New("expected_type can't be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the zap level named by LogLevel. An empty level is info.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return l, nil
}

// HasExtension reports whether path has one of the configured script
// extensions.
func (c Config) HasExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
