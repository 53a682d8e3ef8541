package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/protimer/internal/tracker"
)

// weekModel charts projected week hours per project.
type weekModel struct {
	width  int
	height int

	ids   []string
	chart barchart.Model
}

func newWeekModel() weekModel {
	return weekModel{chart: barchart.New(60, 12)}
}

func (m *weekModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m weekModel) update(tea.Msg) (weekModel, tea.Cmd) {
	return m, nil
}

// build redraws the chart from a rendered frame.
func (m *weekModel) build(ids []string, f frame) {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.ids = ids
	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, id := range ids {
		v, ok := f.views[id]
		if !ok {
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color))
		bars = append(bars, barchart.BarData{
			Label: truncate(v.Name, 8),
			Values: []barchart.BarValue{{
				Name:  v.Name,
				Value: v.Times.Week.Hours(),
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m weekModel) view(f frame) string {
	w := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("This week"), "  ",
		highlightStyle.Render(tracker.FormatElapsed(f.totals.Week)),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", m.renderTable(f),
		),
	)
}

func (m weekModel) renderTable(f frame) string {
	if len(m.ids) == 0 {
		return mutedStyle.Render("  No projects")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %12s %12s %8s %10s", "Project", "Today", "Week", "Hours", "Earnings")))
	for _, id := range m.ids {
		v, ok := f.views[id]
		if !ok {
			continue
		}
		earned := "-"
		if v.HourlyRate != nil {
			earned = money(tracker.Earnings(v.Times.Week, *v.HourlyRate))
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %12s %12s %8.1f %10s",
			dot, truncate(v.Name, 20),
			tracker.FormatElapsed(v.Times.Today),
			tracker.FormatElapsed(v.Times.Week),
			v.Times.Week.Hours(),
			earned,
		))
	}
	return strings.Join(rows, "\n")
}
