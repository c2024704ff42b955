// Package config loads the leadglass configuration file.
// Configuration lives in ~/.config/leadglass/config.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything leadglass needs to reach its collaborators.
type Config struct {
	BackendURL string
	BackendKey string
	CacheDir   string
	CacheTTL   time.Duration
	LogPath    string
	LogLevel   string
}

const (
	defaultConfigPath = "~/.config/leadglass/config.toml"
	defaultCacheDir   = "~/.cache/leadglass"
	defaultLogPath    = "~/.local/share/leadglass/leadglass.log"
	defaultTTLMinutes = 60
)

// Load locates and parses the config, falling back to defaults for any
// field the file does not set. A missing file is not an error; a missing
// backend URL is, because there is nothing useful to show without one.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		CacheDir: mustExpand(defaultCacheDir),
		CacheTTL: defaultTTLMinutes * time.Minute,
		LogPath:  mustExpand(defaultLogPath),
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BackendURL      string `toml:"backend_url"`
		BackendKey      string `toml:"backend_key"`
		CacheDir        string `toml:"cache_dir"`
		CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
		LogPath         string `toml:"log_path"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.BackendURL = strings.TrimSpace(raw.BackendURL)
	cfg.BackendKey = strings.TrimSpace(raw.BackendKey)
	cfg.LogLevel = strings.TrimSpace(raw.LogLevel)

	if dir := strings.TrimSpace(raw.CacheDir); dir != "" {
		cfg.CacheDir = mustExpand(dir)
	}
	if raw.CacheTTLMinutes > 0 {
		cfg.CacheTTL = time.Duration(raw.CacheTTLMinutes) * time.Minute
	}
	if logPath := strings.TrimSpace(raw.LogPath); logPath != "" {
		cfg.LogPath = mustExpand(logPath)
	}

	return cfg, nil
}

// Validate reports whether the config can drive a session against the
// backend.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.BackendKey == "" {
		return fmt.Errorf("backend_key is required")
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
