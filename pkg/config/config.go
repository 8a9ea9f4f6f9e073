// Package config loads fmv settings from .fmv/config.yaml, discovered by
// walking up from the working directory. Flags override anything loaded
// here; missing or unreadable config silently falls back to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is absent from the config file.
const (
	DefaultServerURL = "http://localhost:5000"
	DefaultTimeout   = 30 * time.Second
	DefaultDebounce  = 250 * time.Millisecond
)

// configDirName is the per-project settings directory.
const configDirName = ".fmv"

// configFileName is the settings file inside configDirName.
const configFileName = "config.yaml"

// Config holds fmv client settings.
type Config struct {
	ServerURL  string `yaml:"server_url"`
	TimeoutSec int    `yaml:"timeout_seconds"`
	DebounceMS int    `yaml:"debounce_ms"`
	AutoUpload *bool  `yaml:"auto_upload"` // re-upload on model file change; default true
	Theme      string `yaml:"theme"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{ServerURL: DefaultServerURL}
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// Debounce returns the watch debounce window as a duration.
func (c Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return DefaultDebounce
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// WatchEnabled reports whether file-change re-upload is on.
func (c Config) WatchEnabled() bool {
	return c.AutoUpload == nil || *c.AutoUpload
}

// Load discovers and reads the nearest config file, starting from dir
// and walking up. A missing file yields the defaults with no error;
// a present but malformed file is an error so typos do not silently
// revert settings.
func Load(dir string) (Config, error) {
	cfg := Default()

	path, ok := findConfig(dir)
	if !ok {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return cfg, nil
}

// LoadFromCwd is Load anchored at the current working directory.
func LoadFromCwd() (Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return Default(), nil
	}
	return Load(dir)
}

// findConfig walks up from dir looking for .fmv/config.yaml, stopping at
// the filesystem root or the user's home directory.
func findConfig(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, configDirName, configFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		if dir == home {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
