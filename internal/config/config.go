// Package config loads the review console configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	URL string `toml:"url"`
}

type UIConfig struct {
	TypingIntervalMS int `toml:"typing_interval_ms"`
	ToastTimeoutMS   int `toml:"toast_timeout_ms"`
}

type LogConfig struct {
	File string `toml:"file"`
}

// TypingInterval is the delay between typed-text reveal steps.
func (c UIConfig) TypingInterval() time.Duration {
	return time.Duration(c.TypingIntervalMS) * time.Millisecond
}

// ToastTimeout is how long a notification stays on screen.
func (c UIConfig) ToastTimeout() time.Duration {
	return time.Duration(c.ToastTimeoutMS) * time.Millisecond
}

// Load reads the config from path, or from the default candidates
// when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{URL: "http://127.0.0.1:5000"},
		UI: UIConfig{
			TypingIntervalMS: 20,
			ToastTimeoutMS:   4000,
		},
	}

	if path == "" {
		candidates := []string{
			expandHome("~/.config/arepas/config.toml"),
			"./arepas.toml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
