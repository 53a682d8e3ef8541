package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(home, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval.Std() != 5*time.Second {
		t.Fatalf("poll interval = %v", cfg.PollInterval.Std())
	}
	if cfg.FrameInterval.Std() != 100*time.Millisecond {
		t.Fatalf("frame interval = %v", cfg.FrameInterval.Std())
	}
	if cfg.DBPath != filepath.Join(home, "data.db") {
		t.Fatalf("db path = %s", cfg.DBPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
db_path: tracking.db
log_level: debug
poll_interval: 2s
idle_threshold: 90s
`)
	cfg, err := Load(home, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != filepath.Join(home, "tracking.db") {
		t.Fatalf("relative db path not resolved: %s", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %s", cfg.LogLevel)
	}
	if cfg.PollInterval.Std() != 2*time.Second || cfg.IdleThreshold.Std() != 90*time.Second {
		t.Fatalf("durations not applied: %+v", cfg)
	}
	if cfg.IdleCheckInterval.Std() != 10*time.Second {
		t.Fatal("unset fields should keep defaults")
	}
}

func TestLoadBadDuration(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "poll_interval: soon\n")
	if _, err := Load(home, ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, "poll_interval"},
		{"negative tolerance", func(c *Config) { c.ConvergenceTolerance = Duration(-time.Second) }, "convergence_tolerance"},
		{"slow frame", func(c *Config) { c.FrameInterval = Duration(2 * time.Second) }, "frame_interval"},
		{"no db", func(c *Config) { c.DBPath = "" }, "db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/tmp/protimer")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHomeFromEnv(t *testing.T) {
	t.Setenv(EnvHome, "/srv/protimer")
	h, err := Home()
	if err != nil || h != "/srv/protimer" {
		t.Fatalf("Home() = %q, %v", h, err)
	}
}
