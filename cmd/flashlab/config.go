package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	configEnv  = "FLASHLAB_CONFIG"
	catalogEnv = "FLASHLAB_CATALOG"
)

// Config is the flashlab config.toml file.
type Config struct {
	Catalog        string      `toml:"catalog"`
	StrictChecksum bool        `toml:"strict_checksum"`
	LogLevel       string      `toml:"log_level"`
	Shell          ShellConfig `toml:"shell"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// ShellConfig configures the interactive shell.
type ShellConfig struct {
	Watch       bool `toml:"watch"`
	HistorySize int  `toml:"history_size"`
}

func defaultConfig() Config {
	return Config{
		Catalog:  "options.json",
		LogLevel: "info",
		Shell: ShellConfig{
			Watch:       true,
			HistorySize: 200,
		},
	}
}

// loadConfig reads the config file named by explicit, $FLASHLAB_CONFIG or the
// user config directory, in that order. Only an explicitly named file has to
// exist.
func loadConfig(explicit string) (Config, error) {
	cfg := defaultConfig()

	path, required := explicit, true
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		required = false
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "flashlab", "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}

	cfg.Path = path
	if md.IsDefined("catalog") && cfg.Catalog != "" && !filepath.IsAbs(cfg.Catalog) {
		cfg.Catalog = filepath.Join(filepath.Dir(path), cfg.Catalog)
	}
	if cfg.Shell.HistorySize <= 0 {
		cfg.Shell.HistorySize = defaultConfig().Shell.HistorySize
	}
	return cfg, nil
}

// applyOverrides layers $FLASHLAB_CATALOG and command-line flags over cfg.
func (cfg *Config) applyOverrides(g globalFlags) {
	if env := os.Getenv(catalogEnv); env != "" {
		cfg.Catalog = env
	}
	if g.catalog != "" {
		cfg.Catalog = g.catalog
	}
	if g.strict {
		cfg.StrictChecksum = true
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
}
