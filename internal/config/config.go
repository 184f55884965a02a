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

// Config captures the settings Finder reads from its config file.
type Config struct {
	APIBase        string
	Category       string
	DataDir        string
	RequestTimeout time.Duration
	LogLevel       string
	AutoRetry      time.Duration // zero disables background retry
	LoginEmail     string
	LoginPassword  string
}

const (
	defaultConfigPath     = "~/.config/finder/config.toml"
	defaultDataDir        = "~/.local/share/finder"
	defaultAPIBase        = "https://dummyjson.com"
	defaultCategory       = "furniture"
	defaultTimeoutSeconds = 10
	defaultLogLevel       = "info"

	// Placeholder credential pair until a real auth backend exists.
	defaultLoginEmail    = "test@example.com"
	defaultLoginPassword = "123456"
)

// Load locates and parses the finder config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

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
		APIBase        string `toml:"api_base"`
		Category       string `toml:"category"`
		DataDir        string `toml:"data_dir"`
		TimeoutSeconds int    `toml:"request_timeout_seconds"`
		LogLevel       string `toml:"log_level"`
		AutoRetry      int    `toml:"auto_retry_seconds"`
		Login          struct {
			Email    string `toml:"email"`
			Password string `toml:"password"`
		} `toml:"login"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBase = orDefault(raw.APIBase, defaultAPIBase)
	cfg.Category = orDefault(raw.Category, defaultCategory)
	cfg.DataDir = mustExpand(orDefault(raw.DataDir, defaultDataDir))
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel))
	if raw.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.AutoRetry > 0 {
		cfg.AutoRetry = time.Duration(raw.AutoRetry) * time.Second
	}
	cfg.LoginEmail = orDefault(raw.Login.Email, defaultLoginEmail)
	if raw.Login.Password != "" {
		cfg.LoginPassword = raw.Login.Password
	}

	return cfg, nil
}

// DatabasePath returns the path of the key-value database.
func (c Config) DatabasePath() string {
	return filepath.Join(c.dataDir(), "finder.db")
}

// LogPath returns the path of the application log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "finder.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func defaults() Config {
	return Config{
		APIBase:        defaultAPIBase,
		Category:       defaultCategory,
		DataDir:        mustExpand(defaultDataDir),
		RequestTimeout: defaultTimeoutSeconds * time.Second,
		LogLevel:       defaultLogLevel,
		LoginEmail:     defaultLoginEmail,
		LoginPassword:  defaultLoginPassword,
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
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
