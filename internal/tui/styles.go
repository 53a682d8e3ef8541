package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary  = lipgloss.Color("#6C63FF")
	colorEarnings = lipgloss.Color("#2EC4B6")
	colorAccent   = lipgloss.Color("#FF6B6B")
	colorMuted    = lipgloss.Color("#666666")
	colorTracking = lipgloss.Color("#2ECC71")
	colorWarning  = lipgloss.Color("#F39C12")
	colorError    = lipgloss.Color("#E74C3C")
	colorFg       = lipgloss.Color("#C0CAF5")
	colorSubtle   = lipgloss.Color("#414868")
	colorTime     = lipgloss.Color("#7AA2F7")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func rounded(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

var (
	activeTabStyle = fg(colorPrimary).Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = fg(colorMuted).Padding(0, 2)

	panelStyle       = rounded(colorSubtle)
	activePanelStyle = rounded(colorPrimary)

	// project rows
	trackingStyle     = fg(colorTracking).Bold(true)
	stoppedStyle      = fg(colorMuted)
	earningsStyle     = fg(colorEarnings).Bold(true)
	selectedItemStyle = fg(colorPrimary).Bold(true)
	normalItemStyle   = fg(colorFg)

	titleStyle     = fg(colorFg).Bold(true)
	mutedStyle     = fg(colorMuted)
	highlightStyle = fg(colorTime)
	warningStyle   = fg(colorWarning)
	errorStyle     = fg(colorError)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = fg(colorMuted).Padding(0, 1)
)
