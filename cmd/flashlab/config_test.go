package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Catalog != "options.json" || cfg.LogLevel != "info" || !cfg.Shell.Watch || cfg.Shell.HistorySize != 200 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Path != "" {
		t.Fatalf("expected no config path, got %s", cfg.Path)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolateConfig(t)
	path := writeConfig(t, `
catalog = "catalogs/options.toml"
strict_checksum = true
log_level = "debug"

[shell]
watch = false
history_size = 10
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "catalogs", "options.toml"); cfg.Catalog != want {
		t.Fatalf("expected catalog %s, got %s", want, cfg.Catalog)
	}
	if !cfg.StrictChecksum || cfg.LogLevel != "debug" || cfg.Shell.Watch || cfg.Shell.HistorySize != 10 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigKeepsDefaultCatalog(t *testing.T) {
	isolateConfig(t)
	path := writeConfig(t, `log_level = "debug"`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Catalog != "options.json" {
		t.Fatalf("expected default catalog options.json, got %s", cfg.Catalog)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolateConfig(t)
	path := writeConfig(t, `strict_checksum = true`)
	t.Setenv(configEnv, path)
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.StrictChecksum || cfg.Path != path {
		t.Fatalf("expected config from %s, got %+v", path, cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	isolateConfig(t)
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
	path := writeConfig(t, `catalgo = "typo.json"`)
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "unknown key catalgo") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	isolateConfig(t)
	cfg := defaultConfig()
	t.Setenv(catalogEnv, "/env/options.json")
	cfg.applyOverrides(globalFlags{})
	if cfg.Catalog != "/env/options.json" {
		t.Fatalf("expected env catalog, got %s", cfg.Catalog)
	}
	cfg.applyOverrides(globalFlags{catalog: "/flag/options.cbor", strict: true, verbose: true})
	if cfg.Catalog != "/flag/options.cbor" || !cfg.StrictChecksum || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := newLogger("loud", os.Stderr); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := newLogger("warn", os.Stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
