package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// FileName is the optional configuration file looked up in the working
// directory.
const FileName = "motion.yaml"

// DefaultMaxCycles bounds a replay when neither the config nor a flag does.
const DefaultMaxCycles = 1000

// Config represents the optional motion.yaml configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Replay ReplayConfig `yaml:"replay"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// ReplayConfig contains defaults for the replay command.
type ReplayConfig struct {
	Color     *bool `yaml:"color,omitempty"`
	MaxCycles int   `yaml:"max_cycles,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	LogLevel  log.Level
	Color     bool
	MaxCycles int
}

// LoadOptional reads motion.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads motion.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	level := log.InfoLevel
	if name := strings.TrimSpace(cfg.Log.Level); name != "" {
		level, err = log.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}

	color := true
	if cfg.Replay.Color != nil {
		color = *cfg.Replay.Color
	}

	maxCycles := cfg.Replay.MaxCycles
	switch {
	case maxCycles < 0:
		return nil, fmt.Errorf("replay.max_cycles must not be negative (got %d)", maxCycles)
	case maxCycles == 0:
		maxCycles = DefaultMaxCycles
	}

	return &Resolved{
		LogLevel:  level,
		Color:     color,
		MaxCycles: maxCycles,
	}, nil
}
