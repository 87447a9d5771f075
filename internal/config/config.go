// Package config loads ringctl settings from a YAML or JSON file with
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	ringbuf "github.com/luhtfiimanal/go-ringbuf"
)

const (
	EnvFile     = "RINGCTL_FILE"
	EnvLogLevel = "RINGCTL_LOG_LEVEL"
)

// Config describes which ring file to use and how to open it. Capacity 0
// means "reopen and trust the file's header".
type Config struct {
	File           string `yaml:"file" json:"file"`
	Capacity       int64  `yaml:"capacity" json:"capacity"`
	RecordLength   int    `yaml:"record_length" json:"record_length"`
	Mmap           bool   `yaml:"mmap" json:"mmap"`
	Sync           bool   `yaml:"sync" json:"sync"`
	DisableLocking bool   `yaml:"disable_locking" json:"disable_locking"`
	LogLevel       string `yaml:"log_level" json:"log_level"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		File:         "ring.dat",
		RecordLength: 64,
		Sync:         true,
		LogLevel:     "info",
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// the defaults, then applies environment overrides. An empty path yields the
// defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode yaml config: %w", err)
			}
		default:
			if err := json.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode json config: %w", err)
			}
		}
	}
	if v := os.Getenv(EnvFile); v != "" {
		cfg.File = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that would otherwise fail deep inside the engine.
func (c Config) Validate() error {
	var errs []error
	if c.File == "" {
		errs = append(errs, errors.New("file must not be empty"))
	}
	if c.Capacity < 0 {
		errs = append(errs, fmt.Errorf("capacity %d must not be negative", c.Capacity))
	}
	if c.Capacity > 0 && c.RecordLength <= 0 {
		errs = append(errs, fmt.Errorf("record_length %d must be positive", c.RecordLength))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Options builds engine options logging to logger.
func (c Config) Options(logger logrus.FieldLogger) ringbuf.Options {
	return ringbuf.Options{
		UseMmap:        c.Mmap,
		Sync:           c.Sync,
		DisableLocking: c.DisableLocking,
		Logger:         logger,
	}
}

// Open opens the ring described by c: open-or-create when Capacity is set,
// otherwise Reopen.
func (c Config) Open(logger logrus.FieldLogger) (*ringbuf.RingBuffer, error) {
	if c.Capacity > 0 {
		return ringbuf.OpenWithOptions(c.File, c.Capacity, c.RecordLength, c.Options(logger))
	}
	return ringbuf.ReopenWithOptions(c.File, c.Options(logger))
}
