// Package config loads lowering settings from a YAML file.
//
//	unreachable: warning # or error
//	workers: 4           # 0 means GOMAXPROCS
//	log: info            # debug, info, warn, error
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sirkon/trylower/internal/tryrules"
)

// Config is a set of lowering settings.
type Config struct {
	Unreachable tryrules.Severity `yaml:"unreachable"`
	Workers     int               `yaml:"workers"`
	Log         slog.Level        `yaml:"log"`
}

// Default returns settings used when no config file is given.
func Default() *Config {
	return &Config{
		Unreachable: tryrules.UnreachableHandler().Severity(),
		Log:         slog.LevelInfo,
	}
}

// Load reads the config file. Keys missing in the file keep their default
// values, unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes config data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}

	return cfg, nil
}
