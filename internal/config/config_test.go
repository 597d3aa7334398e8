package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "http://127.0.0.1:5000" {
		t.Errorf("url = %q", cfg.Server.URL)
	}
	if cfg.UI.TypingInterval() != 20*time.Millisecond {
		t.Errorf("typing interval = %v", cfg.UI.TypingInterval())
	}
	if cfg.UI.ToastTimeout() != 4*time.Second {
		t.Errorf("toast timeout = %v", cfg.UI.ToastTimeout())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arepas.toml")
	content := `
[server]
url = "http://review.internal:8080"

[ui]
typing_interval_ms = 5

[log]
file = "/tmp/arepas.log"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "http://review.internal:8080" {
		t.Errorf("url = %q", cfg.Server.URL)
	}
	if cfg.UI.TypingInterval() != 5*time.Millisecond {
		t.Errorf("typing interval = %v", cfg.UI.TypingInterval())
	}
	// Unset keys keep their defaults.
	if cfg.UI.ToastTimeout() != 4*time.Second {
		t.Errorf("toast timeout = %v", cfg.UI.ToastTimeout())
	}
	if cfg.Log.File != "/tmp/arepas.log" {
		t.Errorf("log file = %q", cfg.Log.File)
	}
}
