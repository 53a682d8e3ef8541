package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/protimer/internal/tracker"
)

type idlePromptMsg struct {
	prompt tracker.IdlePrompt
}

// idleModel is the idle correction dialog. While active it captures all
// input.
type idleModel struct {
	active    bool
	dismissed bool
	prompt    tracker.IdlePrompt
	names     []string
	form      *huh.Form
	choice    *tracker.IdlePolicy
}

func openIdle(p tracker.IdlePrompt, name func(string) string) (idleModel, tea.Cmd) {
	choice := tracker.IdleDiscard
	m := idleModel{active: true, prompt: p, choice: &choice}
	for _, id := range p.Projects {
		m.names = append(m.names, name(id))
	}

	since := p.IdleSince()
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[tracker.IdlePolicy]().
				Title(fmt.Sprintf("Idle since %s (%s)", since.Format("15:04"),
					humanize.RelTime(since, p.DetectedAt, "ago", "from now"))).
				Options(
					huh.NewOption("Discard idle time, stop at "+since.Format("15:04"), tracker.IdleDiscard),
					huh.NewOption("Keep idle time, stop now", tracker.IdleKeep),
				).
				Value(m.choice),
		),
	).WithShowHelp(true)

	return m, m.form.Init()
}

// update returns done once the dialog has been answered or dismissed.
func (m idleModel) update(msg tea.Msg) (idleModel, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.active, m.dismissed = false, true
		return m, nil, true
	}

	var cmd tea.Cmd
	if m.form.State == huh.StateNormal {
		var form tea.Model
		form, cmd = m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.active = false
		return m, nil, true
	case huh.StateAborted:
		m.active, m.dismissed = false, true
		return m, nil, true
	}
	return m, cmd, false
}

func (m idleModel) policy() tracker.IdlePolicy {
	if m.choice == nil {
		return tracker.IdleKeep
	}
	return *m.choice
}

func (m idleModel) view(w int) string {
	title := warningStyle.Bold(true).Render("You were away")
	projects := mutedStyle.Render("Tracking: " + strings.Join(m.names, ", "))
	var formView string
	if m.form != nil {
		formView = m.form.View()
	}
	hint := mutedStyle.Render("esc: keep tracking and decide later")

	return activePanelStyle.BorderForeground(colorAccent).Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, projects, "", formView, "", hint),
	)
}
