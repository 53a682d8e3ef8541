package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/protimer/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewWeek
	viewSettings
)

var viewNames = []string{"Dashboard", "Week", "Settings"}

// --- Messages ---

type pollTickMsg time.Time

type frameTickMsg time.Time

type idleTickMsg time.Time

// ActivityChangedMsg asks for an immediate status fetch. It is sent from
// outside the program when the backend signals a change.
type ActivityChangedMsg struct{}

type fetchedMsg struct {
	seq    uint64
	status tracker.Status
	err    error
	at     time.Time
}

type effectResult struct {
	effect tracker.Effect
	err    error
}

type effectsDoneMsg struct {
	results []effectResult
	refresh bool
}

type projectSavedMsg struct {
	name string
}

type statusMsg struct {
	text    string
	isError bool
}

// --- Helpers ---

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func money(f float64) string {
	return "$" + humanize.FormatFloat("#,###.##", f)
}
