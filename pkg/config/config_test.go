package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "app.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{
		Addr:     ":9090",
		LogLevel: "debug",
		CacheDir: "/tmp/templating-cache",
		Templating: Templating{
			Engine:     "handlebars",
			Dir:        "templates",
			Extension:  ".hbs",
			Autoescape: false,
			Globals:    map[string]any{"site": "Example"},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TEMPLATING_ADDR", ":7070")
	t.Setenv("TEMPLATING_ENGINE_NAME", "django")
	t.Setenv("TEMPLATING_ENGINE_AUTOESCAPE", "true")

	cfg, err := Load(filepath.Join("testdata", "app.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.Templating.Engine != "django" || !cfg.Templating.Autoescape {
		t.Fatalf("expected env engine overrides, got %+v", cfg.Templating)
	}
	if cfg.Templating.Dir != "templates" || cfg.LogLevel != "debug" {
		t.Fatalf("expected unset env vars to keep yaml values, got %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}

	t.Setenv("TEMPLATING_LOG_LEVEL", "verbose")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected log level validation error, got %v", err)
	}
}

func TestParse_KeepsUnsetValues(t *testing.T) {
	cfg := Default()
	if err := Parse([]byte("templating:\n  engine: gohtml\n"), &cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Templating.Engine != "gohtml" || !cfg.Templating.Autoescape || cfg.Addr != ":8080" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := Parse([]byte("   \n"), &cfg); err != nil {
		t.Fatalf("blank parse: %v", err)
	}
	if err := Parse([]byte("addr: ["), &cfg); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Addr = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected addr error")
	}
}
