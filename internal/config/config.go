package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBackendURL      = "http://localhost:5001/api"
	DefaultSocketURL       = "ws://localhost:5001/socket"
	DefaultTypingWindow    = time.Second
	DefaultRemoteTypingTTL = 5 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
)

// Duration wraps time.Duration so it can be written as "1s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the global ~/.chatterm/config.toml.
type Config struct {
	DefaultProfile  string   `toml:"default_profile"`
	BackendURL      string   `toml:"backend_url"`
	SocketURL       string   `toml:"socket_url"`
	TypingWindow    Duration `toml:"typing_window"`
	RemoteTypingTTL Duration `toml:"remote_typing_ttl"`
	RequestTimeout  Duration `toml:"request_timeout"`
	LogLevel        string   `toml:"log_level"`
	Theme           string   `toml:"theme"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		BackendURL:      DefaultBackendURL,
		SocketURL:       DefaultSocketURL,
		TypingWindow:    Duration{DefaultTypingWindow},
		RemoteTypingTTL: Duration{DefaultRemoteTypingTTL},
		RequestTimeout:  Duration{DefaultRequestTimeout},
		LogLevel:        "info",
		Theme:           "dark",
	}
}

// Load reads config from the given path. Returns nil and an error if the
// file is missing. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
