package backend

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileIndicator publishes aggregate tracking state as a one-word file that
// status bars can poll.
type FileIndicator struct {
	path string
}

func NewFileIndicator(path string) *FileIndicator {
	return &FileIndicator{path: path}
}

func (f *FileIndicator) Path() string { return f.path }

func (f *FileIndicator) SetTracking(tracking bool) error {
	state := "idle\n"
	if tracking {
		state = "tracking\n"
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("indicator dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(state), 0o644); err != nil {
		return fmt.Errorf("write indicator: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("write indicator: %w", err)
	}
	return nil
}
