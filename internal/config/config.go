// Package config loads the demo host's settings: window geometry, title,
// background color, and log level. Defaults apply when the file is absent.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"` // SVG 1.1 color name
	LogLevel   string `yaml:"log_level"`  // debug, info, warn, error
}

func Default() *Config {
	return &Config{
		Title:      "paneshim",
		Width:      640,
		Height:     480,
		Background: "steelblue",
		LogLevel:   "info",
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "paneshim", "config.yaml"), nil
}

// Load reads the config from the standard location. A missing file is not
// an error; defaults are returned.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if _, ok := colornames.Map[strings.ToLower(c.Background)]; !ok {
		return fmt.Errorf("unknown background color %q", c.Background)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the configured level onto slog's scale.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BackgroundColor resolves the configured color name.
func (c *Config) BackgroundColor() (uint8, uint8, uint8) {
	rgba := colornames.Map[strings.ToLower(c.Background)]
	return rgba.R, rgba.G, rgba.B
}
