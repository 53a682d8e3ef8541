package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "protimer.log")
	l, c, err := New(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	Component(l, "poller").WithField("seq", 3).Debug("stale response dropped")
	c.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "component=poller") || !strings.Contains(out, "seq=3") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protimer.log")
	l, c, err := New(path, "warn")
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hidden")
	l.Warn("shown")
	c.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Fatalf("level not applied: %q", data)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, _, err := New("", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewEmptyPathDiscards(t *testing.T) {
	l, c, err := New("", "info")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	l.Info("nowhere")
}
