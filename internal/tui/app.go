package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/protimer/internal/store"
	"github.com/sadopc/protimer/internal/tracker"
	"github.com/sirupsen/logrus"
)

// Toucher records user input for idle detection.
type Toucher interface {
	Touch(now time.Time)
}

// Options configures the run loop.
type Options struct {
	PollInterval      time.Duration
	FrameInterval     time.Duration
	IdleCheckInterval time.Duration
	FetchTimeout      time.Duration

	Now      func() time.Time
	Logger   *logrus.Entry
	Activity Toucher
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = 100 * time.Millisecond
	}
	if o.IdleCheckInterval <= 0 {
		o.IdleCheckInterval = 10 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return o
}

// App is the root Bubble Tea model. All session state is read and written
// from Update, which bubbletea runs on a single goroutine.
type App struct {
	ctx     context.Context
	opts    Options
	log     *logrus.Entry
	backend tracker.Backend
	store   *store.Store
	session *tracker.Session

	width  int
	height int

	activeView viewState
	showHelp   bool

	throttle tracker.Throttle
	frame    frame
	titled   bool
	tracking bool

	dashboard dashboardModel
	week      weekModel
	settings  settingsModel
	projects  projectsModel
	idle      idleModel

	retry  tracker.Command
	help   help.Model
	status string
	isErr  bool
}

// frame is the last set of values written to the display.
type frame struct {
	at     time.Time
	views  map[string]tracker.ProjectView
	totals tracker.Totals
}

func NewApp(ctx context.Context, session *tracker.Session, b tracker.Backend, s *store.Store, opts Options) App {
	opts = opts.withDefaults()
	h := help.New()
	h.ShowAll = false

	return App{
		ctx:        ctx,
		opts:       opts,
		log:        opts.Logger,
		backend:    b,
		store:      s,
		session:    session,
		activeView: viewDashboard,
		frame:      frame{views: map[string]tracker.ProjectView{}},
		dashboard:  newDashboardModel(),
		week:       newWeekModel(),
		settings:   newSettingsModel(s),
		projects:   newProjectsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.fetchCmd(),
		a.settings.refresh(),
		pollTick(a.opts.PollInterval),
		frameTick(a.opts.FrameInterval),
		idleTick(a.opts.IdleCheckInterval),
	)
}

func pollTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return pollTickMsg(t) })
}

func frameTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameTickMsg(t) })
}

func idleTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return idleTickMsg(t) })
}

// fetchCmd takes a sequence number now, so a response can be recognised as
// stale however late it arrives.
func (a App) fetchCmd() tea.Cmd {
	seq := a.session.Poller().Begin()
	ctx, b, timeout, now := a.ctx, a.backend, a.opts.FetchTimeout, a.opts.Now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		st, err := b.FetchStatus(ctx)
		return fetchedMsg{seq: seq, status: st, err: err, at: now()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.week.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.week.build(a.dashboard.ids, a.frame)
		return a, nil

	case pollTickMsg:
		return a, tea.Batch(a.fetchCmd(), pollTick(a.opts.PollInterval))

	case ActivityChangedMsg:
		return a, a.fetchCmd()

	case frameTickMsg:
		if a.throttle.Allow(time.Time(msg)) {
			a.render(time.Time(msg))
		}
		return a, frameTick(a.opts.FrameInterval)

	case idleTickMsg:
		cmd := a.checkIdle(time.Time(msg))
		return a, tea.Batch(cmd, idleTick(a.opts.IdleCheckInterval))

	case idlePromptMsg:
		var cmd tea.Cmd
		a.idle, cmd = openIdle(msg.prompt, a.projectName)
		return a, cmd

	case fetchedMsg:
		return a.applyFetch(msg)

	case effectsDoneMsg:
		return a.applyEffects(msg)

	case projectSavedMsg:
		a.status, a.isErr = "Saved "+msg.name, false
		return a, a.fetchCmd()

	case settingsSavedMsg:
		a.session.SetIdleThreshold(msg.idleTimeout)
		a.status, a.isErr = "Settings saved", false
		return a, tea.Batch(a.settings.refresh(), a.fetchCmd())

	case settingsDataMsg:
		a.settings.settings = msg.settings
		return a, nil

	case statusMsg:
		a.status, a.isErr = msg.text, msg.isError
		return a, nil

	case tea.KeyMsg:
		if a.opts.Activity != nil {
			a.opts.Activity.Touch(a.opts.Now())
		}
		if a.idle.active {
			return a.updateIdle(msg)
		}
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Retry):
			return a.retryFailed()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewWeek
			a.week.build(a.dashboard.ids, a.frame)
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			a.week.build(a.dashboard.ids, a.frame)
			return a, nil
		}

		if a.activeView == viewDashboard {
			return a.updateDashboard(msg)
		}
	}

	if a.idle.active {
		return a.updateIdle(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) applyFetch(msg fetchedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.log.WithError(msg.err).WithField("seq", msg.seq).Debug("status fetch failed")
		return a, nil
	}
	if !a.session.Poller().Accept(msg.seq) {
		a.log.WithField("seq", msg.seq).Debug("dropped stale status")
		return a, nil
	}

	r := a.session.ApplyStatus(msg.status, msg.at)
	if r.Rebuild {
		a.dashboard.rebuild(msg.status.IDs())
		a.throttle.Reset()
		if a.throttle.Allow(msg.at) {
			a.render(msg.at)
		}
		a.week.build(a.dashboard.ids, a.frame)
	}
	return a, a.syncTitle()
}

// render writes projected values to the display.
func (a *App) render(now time.Time) {
	if !a.session.HasStatus() {
		return
	}
	views := a.session.Views(now)
	f := frame{at: now, views: make(map[string]tracker.ProjectView, len(views)), totals: tracker.Sum(views)}
	for _, v := range views {
		f.views[v.ID] = v
	}
	a.frame = f
	if a.activeView == viewWeek {
		a.week.build(a.dashboard.ids, a.frame)
	}
}

// syncTitle mirrors aggregate tracking in the terminal title.
func (a *App) syncTitle() tea.Cmd {
	tracking := false
	for _, id := range a.dashboard.ids {
		if p, ok := a.session.View(id); ok && p.IsTracking {
			tracking = true
			break
		}
	}
	if a.titled && tracking == a.tracking {
		return nil
	}
	a.titled, a.tracking = true, tracking
	if tracking {
		return tea.SetWindowTitle("● protimer")
	}
	return tea.SetWindowTitle("protimer")
}

func (a App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		id, ok := a.dashboard.selected()
		if !ok {
			return a, statusCmd("No projects yet. Press n to add one.", true)
		}
		cmd, batch := a.session.Toggle(id, a.opts.Now())
		if cmd == nil {
			return a, nil
		}
		a.throttle.Reset()
		name := a.projectName(id)
		if _, stop := cmd.(tracker.Stop); stop {
			a.status, a.isErr = "Stopped "+name, false
		} else {
			a.status, a.isErr = "Started "+name, false
		}
		return a, tea.Batch(a.run(batch), a.syncTitle())
	case key.Matches(msg, keys.New):
		var cmd tea.Cmd
		a.projects, cmd = a.projects.showNew()
		return a, cmd
	case key.Matches(msg, keys.Edit):
		id, ok := a.dashboard.selected()
		if !ok {
			return a, nil
		}
		p, _ := a.session.View(id)
		var cmd tea.Cmd
		a.projects, cmd = a.projects.showEdit(p)
		return a, cmd
	}
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	return a, cmd
}

func (a App) retryFailed() (tea.Model, tea.Cmd) {
	if a.retry == nil {
		return a, nil
	}
	cmd := a.retry
	a.retry = nil
	a.status, a.isErr = "Retrying", false
	return a, tea.Batch(a.run(a.session.Dispatch(cmd, a.opts.Now())), a.syncTitle())
}

func (a App) applyEffects(msg effectsDoneMsg) (tea.Model, tea.Cmd) {
	for _, r := range msg.results {
		if r.err == nil {
			continue
		}
		retry, rolled := a.session.Failed(r.effect)
		a.retry = retry
		a.status = fmt.Sprintf("%s %s failed: %v (r to retry)", r.effect.Kind, a.projectName(r.effect.ProjectID), r.err)
		a.isErr = true
		a.log.WithError(r.err).WithFields(logrus.Fields{
			"project":     r.effect.ProjectID,
			"effect":      r.effect.Kind.String(),
			"rolled_back": rolled,
		}).Warn("backend command failed")
	}
	var cmds []tea.Cmd
	if msg.refresh {
		cmds = append(cmds, a.fetchCmd())
	}
	cmds = append(cmds, a.syncTitle())
	return a, tea.Batch(cmds...)
}

func (a App) checkIdle(now time.Time) tea.Cmd {
	prompt, ok := a.session.CheckIdle(now)
	if !ok {
		return nil
	}
	a.log.WithFields(logrus.Fields{
		"idle":     prompt.Idle,
		"projects": len(prompt.Projects),
	}).Info("idle detected")
	return func() tea.Msg { return idlePromptMsg{prompt: prompt} }
}

func (a App) updateIdle(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var done bool
	a.idle, cmd, done = a.idle.update(msg)
	if !done {
		return a, cmd
	}
	if a.idle.dismissed {
		a.session.DismissIdle()
		a.status, a.isErr = "Idle prompt dismissed", false
		return a, nil
	}
	policy := a.idle.policy()
	batch := a.session.Dispatch(tracker.ResolveIdle{Policy: policy}, a.opts.Now())
	a.log.WithFields(logrus.Fields{
		"policy":   policy.String(),
		"projects": len(batch.Effects),
	}).Info("idle resolved")
	outcome := "kept"
	if policy == tracker.IdleDiscard {
		outcome = "discarded"
	}
	a.status, a.isErr = fmt.Sprintf("Stopped %d project(s), idle time %s", len(batch.Effects), outcome), false
	a.throttle.Reset()
	return a, tea.Batch(a.run(batch), a.syncTitle())
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.projects.formActive {
		a.projects, cmd = a.projects.update(msg)
		return a, cmd
	}
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	if a.projects.formActive {
		return true
	}
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) projectName(id string) string {
	if p, ok := a.session.View(id); ok {
		return p.Name
	}
	return id
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.idle.active:
		content = a.idle.view(a.width - 4)
	case a.projects.formActive:
		content = a.projects.view()
	default:
		switch a.activeView {
		case viewDashboard:
			content = a.dashboard.view(a.session, a.frame)
		case viewWeek:
			content = a.week.view(a.frame)
		case viewSettings:
			content = a.settings.view()
		}
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("protimer")
	totals := a.renderTotals()
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", totals)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow),
	)
}

func (a App) renderTotals() string {
	t := a.frame.totals
	parts := mutedStyle.Render("today ") + highlightStyle.Render(tracker.FormatElapsed(t.Today)) +
		mutedStyle.Render("  week ") + highlightStyle.Render(tracker.FormatElapsed(t.Week))
	if t.HasRate {
		parts += "  " + earningsStyle.Render(money(t.Earnings))
	}
	return parts
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	indicator := ""
	if a.tracking {
		indicator = trackingStyle.Render(" ● tracking")
	}

	left := footerStyle.Render(helpView)
	right := indicator + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
