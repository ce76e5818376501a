// Package config loads refactorizer settings: built-in defaults, then an
// optional .refactorizer.yaml at the repository root, then REFACTORIZER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the per-repository config file.
const FileName = ".refactorizer.yaml"

// Config holds the runtime configuration.
type Config struct {
	// Gopls and Gofmt are the tool binaries providers shell out to.
	Gopls string `yaml:"gopls" env:"REFACTORIZER_GOPLS"`
	Gofmt string `yaml:"gofmt" env:"REFACTORIZER_GOFMT"`

	// Timeout bounds every provider tool invocation.
	Timeout time.Duration `yaml:"timeout" env:"REFACTORIZER_TIMEOUT"`

	// ConfirmThreshold is the number of changed files above which edits
	// are shown for confirmation instead of applied directly.
	ConfirmThreshold int  `yaml:"confirm_threshold" env:"REFACTORIZER_CONFIRM_THRESHOLD"`
	AlwaysConfirm    bool `yaml:"always_confirm" env:"REFACTORIZER_ALWAYS_CONFIRM"`

	LogDir   string `yaml:"log_dir" env:"REFACTORIZER_LOG_DIR"`
	LogLevel string `yaml:"log_level" env:"REFACTORIZER_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	logDir := filepath.Join(os.TempDir(), "refactorizer")
	if cache, err := os.UserCacheDir(); err == nil {
		logDir = filepath.Join(cache, "refactorizer")
	}
	return Config{
		Gopls:            "gopls",
		Gofmt:            "gofmt",
		Timeout:          30 * time.Second,
		ConfirmThreshold: 1,
		LogDir:           logDir,
		LogLevel:         "info",
	}
}

// Load builds the configuration. An explicit path must exist; otherwise
// FileName under root is read when present.
func Load(path, root string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit && root != "" {
		path = filepath.Join(root, FileName)
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if c.LogDir != "" && !filepath.IsAbs(c.LogDir) {
		c.LogDir = filepath.Join(filepath.Dir(path), c.LogDir)
	}
	return nil
}

func (c *Config) normalize() {
	c.Gopls = strings.TrimSpace(c.Gopls)
	c.Gofmt = strings.TrimSpace(c.Gofmt)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Gopls == "" {
		return fmt.Errorf("gopls path is required")
	}
	if c.Gofmt == "" {
		return fmt.Errorf("gofmt path is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ConfirmThreshold < 0 {
		return fmt.Errorf("confirm_threshold must be >= 0, got %d", c.ConfirmThreshold)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: expected debug, info, warn or error", c.LogLevel)
	}
	return nil
}
