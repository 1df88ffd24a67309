package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultPluginsURL = "https://tabview.dev/plugins/plugins.tsv"

// Config carries the settings the plugin manager needs. Sources are, in
// rising priority: built-in defaults, the YAML config file and TABVIEW_*
// environment variables.
type Config struct {
	PluginsURL string `yaml:"plugins_url"`
	PluginDir  string `yaml:"plugin_dir"`
	RCPath     string `yaml:"rc_path"`
	PipCommand string `yaml:"pip_command"`
	Debug      bool   `yaml:"debug"`
}

// Load reads ~/.config/tabview/config.yaml when present, applies
// environment overrides, then fills remaining fields with defaults. A
// missing or malformed config file is not an error; the tool must start
// with nothing configured.
func Load() Config {
	var cfg Config

	if data, err := os.ReadFile(defaultConfigPath()); err == nil {
		// Best effort: a broken file falls through to env and defaults.
		_ = yaml.Unmarshal(data, &cfg)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TABVIEW_PLUGINS_URL"); v != "" {
		cfg.PluginsURL = v
	}
	if v := os.Getenv("TABVIEW_PLUGIN_DIR"); v != "" {
		cfg.PluginDir = v
	}
	if v := os.Getenv("TABVIEW_RC"); v != "" {
		cfg.RCPath = v
	}
	if v := os.Getenv("TABVIEW_PIP"); v != "" {
		cfg.PipCommand = v
	}
	if v := os.Getenv("TABVIEW_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.PluginsURL == "" {
		cfg.PluginsURL = defaultPluginsURL
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(homeDir(), ".tabview", "plugins")
	}
	if cfg.RCPath == "" {
		cfg.RCPath = filepath.Join(homeDir(), ".tabviewrc")
	}
	if cfg.PipCommand == "" {
		cfg.PipCommand = "pip3"
	}
	cfg.PluginDir = expandPath(cfg.PluginDir)
	cfg.RCPath = expandPath(cfg.RCPath)
}

func defaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "tabview", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// expandPath expands a leading ~/ in paths.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
