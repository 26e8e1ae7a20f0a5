package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// field is one settable config key, addressed by its dot path.
type field struct {
	secret bool
	get    func(*Config) any
	set    func(*Config, string) error
}

var fields = map[string]field{
	"log_level": {
		get: func(c *Config) any { return c.LogLevel },
		set: func(c *Config, v string) error {
			switch strings.ToLower(v) {
			case "debug", "info", "warn", "error":
				c.LogLevel = strings.ToLower(v)
				return nil
			}
			return fmt.Errorf("want debug, info, warn or error, got %q", v)
		},
	},
	"api.base_url": {
		get: func(c *Config) any { return c.API.BaseURL },
		set: func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	},
	"api.token": {
		secret: true,
		get:    func(c *Config) any { return c.API.Token },
		set:    func(c *Config, v string) error { c.API.Token = v; return nil },
	},
	"api.timeout_seconds": {
		get: func(c *Config) any { return c.API.TimeoutSeconds },
		set: func(c *Config, v string) error { return setSeconds(&c.API.TimeoutSeconds, v) },
	},
	"poll.interval_seconds": {
		get: func(c *Config) any { return c.Poll.IntervalSeconds },
		set: func(c *Config, v string) error { return setSeconds(&c.Poll.IntervalSeconds, v) },
	},
	"chat.user_name": {
		get: func(c *Config) any { return c.Chat.UserName },
		set: func(c *Config, v string) error { c.Chat.UserName = v; return nil },
	},
	"chat.context": {
		get: func(c *Config) any { return c.Chat.Context },
		set: func(c *Config, v string) error { c.Chat.Context = v; return nil },
	},
}

func setSeconds(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("want a positive number of seconds, got %q", v)
	}
	*dst = n
	return nil
}

func lookup(key string) (field, error) {
	f, ok := fields[key]
	if !ok {
		return field{}, fmt.Errorf("unknown config key: %s", key)
	}
	return f, nil
}

// Keys returns every config key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSecretKey reports whether the key holds a credential.
func IsSecretKey(key string) bool {
	return fields[key].secret
}

// MaskSecret keeps the last four characters of s. Empty stays empty.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return "***" + s
	default:
		return "***" + s[len(s)-4:]
	}
}

func value(cfg *Config, f field, mask bool) any {
	v := f.get(cfg)
	if s, ok := v.(string); ok && mask && f.secret {
		return MaskSecret(s)
	}
	return v
}

// ListValues returns every key of cfg, optionally masking secrets.
func ListValues(cfg *Config, mask bool) map[string]any {
	out := make(map[string]any, len(fields))
	for k, f := range fields {
		out[k] = value(cfg, f, mask)
	}
	return out
}

// GetValue reads one key from the config file at path. Environment
// overrides are not applied.
func GetValue(path, key string) (any, error) {
	f, err := lookup(key)
	if err != nil {
		return nil, err
	}
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return f.get(cfg), nil
}

// SetValue parses value for key and writes it to the config file at path.
func SetValue(path, key, value string) error {
	f, err := lookup(key)
	if err != nil {
		return err
	}
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	if err := f.set(cfg, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return Save(path, cfg)
}
