package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `json:"log_level"`
	API      struct {
		BaseURL        string `json:"base_url"`
		Token          string `json:"token"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"api"`
	Poll struct {
		IntervalSeconds int `json:"interval_seconds"`
	} `json:"poll"`
	Chat struct {
		UserName string `json:"user_name"`
		Context  string `json:"context"`
	} `json:"chat"`
}

// DefaultPath is ~/.twinsim/config.json.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".twinsim", "config.json")
}

func defaults() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.API.BaseURL = "http://localhost:8000/api"
	cfg.API.TimeoutSeconds = 30
	cfg.Poll.IntervalSeconds = 5
	cfg.Chat.UserName = "You"
	cfg.Chat.Context = "texting"
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg *Config

	// Load from file if exists, otherwise write defaults
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		cfg = defaults()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("stat config: %w", err)
	}

	// A .env in the working directory is optional; it never overrides
	// variables already set in the environment.
	_ = godotenv.Load()

	// Override from env (highest precedence)
	if baseURL := os.Getenv("TWINSIM_API_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if token := os.Getenv("TWINSIM_API_TOKEN"); token != "" {
		cfg.API.Token = token
	}
	if level := os.Getenv("TWINSIM_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

// Timeout is the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval is the delay between fetches of an unfinished simulation.
func (c *Config) PollInterval() time.Duration {
	if c.Poll.IntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// readFile loads defaults overlaid with the file at path, without any
// environment overrides.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
