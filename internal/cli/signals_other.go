//go:build !unix

package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

func forwardActivity(*tea.Program) (stop func()) {
	return func() {}
}

func signalActivity(int) error {
	return errors.New("activity signals are not supported on this platform")
}
