package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/protimer/internal/tracker"
)

// dashboardModel lists one row per project. The row set is rebuilt when the
// backend's project set changes; rows are otherwise patched in place.
type dashboardModel struct {
	width  int
	height int

	ids    []string
	cursor int
}

func newDashboardModel() dashboardModel {
	return dashboardModel{}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// rebuild replaces the rows, keeping the cursor on the same project when it
// still exists.
func (d *dashboardModel) rebuild(ids []string) {
	var current string
	if d.cursor < len(d.ids) {
		current = d.ids[d.cursor]
	}
	d.ids = slices.Clone(ids)
	d.cursor = 0
	if i := slices.Index(d.ids, current); i >= 0 {
		d.cursor = i
	}
}

func (d dashboardModel) selected() (string, bool) {
	if d.cursor >= len(d.ids) {
		return "", false
	}
	return d.ids[d.cursor], true
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.ids)-1 {
				d.cursor++
			}
		}
	}
	return d, nil
}

// view takes tracking flags live from the session and times from the last
// rendered frame.
func (d dashboardModel) view(s *tracker.Session, f frame) string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	title := titleStyle.Render("Projects")
	if len(d.ids) == 0 {
		hint := mutedStyle.Render("No projects yet. Press n to add one.")
		if !s.HasStatus() {
			hint = mutedStyle.Render("Loading status...")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", hint))
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-22s %-10s %12s %12s %10s", "Project", "State", "Today", "Week", "Earned")))
	rows = append(rows, mutedStyle.Render("    "+strings.Repeat("─", min(w-8, 70))))

	for i, id := range d.ids {
		p, ok := s.View(id)
		if !ok {
			continue
		}
		rows = append(rows, d.renderRow(p, f.views[id], i == d.cursor))
	}
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRow(p tracker.ProjectSnapshot, v tracker.ProjectView, selected bool) string {
	cursor := "  "
	nameStyle := normalItemStyle
	if selected {
		cursor = "> "
		nameStyle = selectedItemStyle
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")

	state := stoppedStyle.Render(fmt.Sprintf("%-10s", "stopped"))
	switch {
	case p.IsTracking && p.ManualMode:
		state = trackingStyle.Render(fmt.Sprintf("%-10s", "▶ manual"))
	case p.IsTracking:
		state = trackingStyle.Render(fmt.Sprintf("%-10s", "▶ auto"))
	}

	earned := ""
	if p.HourlyRate != nil {
		earned = money(tracker.Earnings(v.Times.Week, *p.HourlyRate))
	}

	return fmt.Sprintf("%s%s %s %s %12s %12s %10s",
		cursor,
		dot,
		nameStyle.Render(fmt.Sprintf("%-22s", truncate(p.Name, 22))),
		state,
		tracker.FormatElapsed(v.Times.Today),
		tracker.FormatElapsed(v.Times.Week),
		earned,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
