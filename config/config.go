// Package config handles loading and managing application configuration
// from YAML files, an optional .env file, and environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	Port            int      `yaml:"port"`
	FontDir         string   `yaml:"font_dir"`
	DefaultFont     string   `yaml:"default_font"`
	DefaultFontSize float64  `yaml:"default_fontsize"`
	MaxWidth        int      `yaml:"max_width"`
	MaxHeight       int      `yaml:"max_height"`
	LogLevel        string   `yaml:"log_level"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "30s", "5m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Port:            8666,
		FontDir:         "",
		DefaultFont:     "go-regular",
		DefaultFontSize: 12,
		MaxWidth:        4096,
		MaxHeight:       4096,
		LogLevel:        "info",
		ReadTimeout:     Duration{10 * time.Second},
		WriteTimeout:    Duration{30 * time.Second},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. A .env file in the working directory
// is loaded first if present; environment variables with the T2I_ prefix
// override any file or default values.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; it only exists in dev setups.
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — proceed with defaults.
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies T2I_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("T2I_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("T2I_FONT_DIR"); v != "" {
		cfg.FontDir = v
	}
	if v := os.Getenv("T2I_DEFAULT_FONT"); v != "" {
		cfg.DefaultFont = v
	}
	if v := os.Getenv("T2I_DEFAULT_FONTSIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultFontSize = f
		}
	}
	if v := os.Getenv("T2I_MAX_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxWidth = n
		}
	}
	if v := os.Getenv("T2I_MAX_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxHeight = n
		}
	}
	if v := os.Getenv("T2I_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("T2I_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReadTimeout = Duration{d}
		}
	}
	if v := os.Getenv("T2I_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WriteTimeout = Duration{d}
		}
	}
}
