// Package config handles dnatool configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/dnakit/pkg/dna"
)

// Config holds all dnatool settings.
type Config struct {
	Data    DataConfig    `yaml:"data" toml:"data"`
	Writer  WriterConfig  `yaml:"writer" toml:"writer"`
	Compare CompareConfig `yaml:"compare" toml:"compare"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// DataConfig holds read settings.
type DataConfig struct {
	Layer string `yaml:"layer" toml:"layer"` // all, joints or descriptor
}

// WriterConfig holds write settings.
type WriterConfig struct {
	Atomic bool `yaml:"atomic" toml:"atomic"` // Write to a temp file and rename
}

// CompareConfig holds vertex comparison settings.
type CompareConfig struct {
	Tolerance float32 `yaml:"tolerance" toml:"tolerance"` // Positions closer than this are equal
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Layer: "all",
		},
		Writer: WriterConfig{
			Atomic: true,
		},
		Compare: CompareConfig{
			Tolerance: 0.001,
		},
		Watch: WatchConfig{
			Debounce: Duration(250 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// DataLayer returns the configured read layer.
func (c *Config) DataLayer() (dna.DataLayer, error) {
	return dna.ParseDataLayer(c.Data.Layer)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if _, err := c.DataLayer(); err != nil {
		return fmt.Errorf("data.layer: %w", err)
	}
	if c.Compare.Tolerance < 0 {
		return fmt.Errorf("compare.tolerance must not be negative, got %g", c.Compare.Tolerance)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}
