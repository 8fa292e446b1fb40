// Package config loads application configuration for the templating layer.
//
// Values come from Default(), then an optional YAML file, then TEMPLATING_*
// environment variables. Environment variables only override when set.
//
//	cfg, err := config.Load("app.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEMPLATING_"

// Config is the application configuration.
type Config struct {
	Addr       string     `yaml:"addr" env:"ADDR"`
	LogLevel   string     `yaml:"log_level" env:"LOG_LEVEL"`
	CacheDir   string     `yaml:"cache_dir" env:"CACHE_DIR"`
	Templating Templating `yaml:"templating" envPrefix:"ENGINE_"`
}

// Templating selects and configures the template engine.
type Templating struct {
	// Engine names the adapter: none, django, gohtml or handlebars.
	Engine    string `yaml:"engine" env:"NAME"`
	Dir       string `yaml:"dir" env:"DIR"`
	Extension string `yaml:"extension" env:"EXTENSION"`
	// Autoescape escapes interpolated values unless a template marks them safe.
	Autoescape bool           `yaml:"autoescape" env:"AUTOESCAPE"`
	Globals    map[string]any `yaml:"globals"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Templating: Templating{
			Engine:     "none",
			Autoescape: true,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML data over cfg. Keys missing from data keep their
// current values.
func Parse(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil destination")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks values that do not depend on the engine registry.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error (got %q)", c.LogLevel)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
