package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sadopc/protimer/internal/backend"
	"github.com/sadopc/protimer/internal/store"
	"github.com/sadopc/protimer/internal/tracker"
)

var t0 = time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type idleFor time.Duration

func (d idleFor) Idle(time.Time) time.Duration { return time.Duration(d) }

// flakyBackend wraps a real backend and fails commands on demand.
type flakyBackend struct {
	tracker.Backend

	mu       sync.Mutex
	startErr error
	stopErr  error
	starts   int
	stops    int
}

func (f *flakyBackend) StartTracking(ctx context.Context, id string) error {
	f.mu.Lock()
	f.starts++
	err := f.startErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Backend.StartTracking(ctx, id)
}

func (f *flakyBackend) StopTracking(ctx context.Context, id string, end *time.Time) error {
	f.mu.Lock()
	f.stops++
	err := f.stopErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Backend.StopTracking(ctx, id, end)
}

type harness struct {
	store   *store.Store
	session *tracker.Session
	backend *flakyBackend
	clock   *manualClock
}

func newHarness(t *testing.T, idle time.Duration) (App, *harness) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	h := &harness{store: s, clock: &manualClock{now: t0}}
	h.backend = &flakyBackend{Backend: backend.NewLocal(s,
		backend.WithClock(h.clock.Now),
		backend.WithIdleSource(idleFor(idle)),
	)}
	h.session = tracker.NewSession(tracker.Config{})
	a := NewApp(context.Background(), h.session, h.backend, s, Options{Now: h.clock.Now})
	a, _ = send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, h
}

func (h *harness) project(t *testing.T, name string, rate *float64) string {
	t.Helper()
	p, err := h.store.CreateProject(name, "/work/"+name, "#6C63FF", rate)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p.ID
}

// drain runs cmd and feeds every message it yields back into the app until
// no commands remain.
func drain(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		m, next := a.Update(msg)
		a = m.(App)
		queue = append(queue, next)
	}
	return a
}

func send(a App, msg tea.Msg) (App, tea.Cmd) {
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func refresh(t *testing.T, a App) App {
	t.Helper()
	return drain(t, a, a.fetchCmd())
}

func weekOf(a App, id string) time.Duration {
	return a.frame.views[id].Times.Week
}

// ============================================================
// Status polling
// ============================================================

func TestFetchBuildsRows(t *testing.T) {
	a, h := newHarness(t, 0)
	h.project(t, "beta", nil)
	h.project(t, "alpha", nil)

	a = refresh(t, a)
	if len(a.dashboard.ids) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(a.dashboard.ids))
	}
	if len(a.frame.views) != 2 {
		t.Fatal("rebuild should render immediately")
	}
	first, _ := h.session.View(a.dashboard.ids[0])
	if first.Name != "alpha" {
		t.Fatalf("rows should follow backend order, got %s first", first.Name)
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	a, h := newHarness(t, 0)
	h.project(t, "alpha", nil)

	older := a.fetchCmd()
	newer := a.fetchCmd()

	h.project(t, "beta", nil)
	a = drain(t, a, newer)
	if len(a.dashboard.ids) != 2 {
		t.Fatalf("expected 2 rows from newer fetch, got %d", len(a.dashboard.ids))
	}

	// The older fetch now sees the same store, so fake a smaller snapshot.
	msg := older().(fetchedMsg)
	msg.status.Projects = msg.status.Projects[:1]
	a, _ = send(a, msg)
	if len(h.session.Status().Projects) != 2 {
		t.Fatal("stale response must not replace a fresher snapshot")
	}
}

func TestFetchErrorKeepsSnapshot(t *testing.T) {
	a, h := newHarness(t, 0)
	h.project(t, "alpha", nil)
	a = refresh(t, a)

	a, _ = send(a, fetchedMsg{seq: h.session.Poller().Begin(), err: errors.New("backend down")})
	if len(h.session.Status().Projects) != 1 {
		t.Fatal("failed fetch should keep the previous snapshot")
	}
}

func TestActivityChangedFetches(t *testing.T) {
	a, h := newHarness(t, 0)
	a = refresh(t, a)
	h.project(t, "alpha", nil)

	a, cmd := send(a, ActivityChangedMsg{})
	a = drain(t, a, cmd)
	if len(a.dashboard.ids) != 1 {
		t.Fatal("activity push should trigger a fetch")
	}
}

func TestProjectRemovalRebuildsRows(t *testing.T) {
	a, h := newHarness(t, 0)
	h.project(t, "alpha", nil)
	beta := h.project(t, "beta", nil)
	a = refresh(t, a)
	a.dashboard.cursor = 1

	if err := h.store.DeleteProject(beta); err != nil {
		t.Fatal(err)
	}
	a = refresh(t, a)
	if len(a.dashboard.ids) != 1 || a.dashboard.cursor != 0 {
		t.Fatalf("rows not rebuilt: ids=%v cursor=%d", a.dashboard.ids, a.dashboard.cursor)
	}
	if _, ok := a.frame.views[beta]; ok {
		t.Fatal("removed project still rendered")
	}
}

// ============================================================
// Render loop
// ============================================================

func TestFrameThrottle(t *testing.T) {
	a, h := newHarness(t, 0)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)

	a, cmd := send(a, space)
	a = drain(t, a, cmd)

	a, _ = send(a, frameTickMsg(t0.Add(1200*time.Millisecond)))
	shown := weekOf(a, id)
	if shown != 1200*time.Millisecond {
		t.Fatalf("expected 1.2s, got %v", shown)
	}

	a, _ = send(a, frameTickMsg(t0.Add(1900*time.Millisecond)))
	if weekOf(a, id) != shown {
		t.Fatal("second write within the same wall-clock second")
	}

	a, _ = send(a, frameTickMsg(t0.Add(2100*time.Millisecond)))
	if weekOf(a, id) != 2100*time.Millisecond {
		t.Fatalf("expected write in the next second, got %v", weekOf(a, id))
	}
}

// ============================================================
// Toggling
// ============================================================

func TestToggleStartIsOptimistic(t *testing.T) {
	a, h := newHarness(t, 0)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)

	a, cmd := send(a, space)
	p, _ := h.session.View(id)
	if !p.IsTracking || !p.ManualMode {
		t.Fatal("flags should flip before the backend answers")
	}
	if h.backend.starts != 0 {
		t.Fatal("backend called synchronously")
	}

	a = drain(t, a, cmd)
	if h.backend.starts != 1 {
		t.Fatalf("expected 1 start, got %d", h.backend.starts)
	}
	if !a.tracking {
		t.Fatal("aggregate tracking indicator not updated")
	}
}

func TestStopFreezesUntilBackendCatchesUp(t *testing.T) {
	a, h := newHarness(t, 0)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)

	a, cmd := send(a, space)
	a = drain(t, a, cmd)

	h.clock.Set(t0.Add(65 * time.Second))
	a, _ = send(a, frameTickMsg(t0.Add(65*time.Second)))
	a = refresh(t, a)
	if weekOf(a, id) != 65*time.Second {
		t.Fatalf("expected 65s shown, got %v", weekOf(a, id))
	}

	h.clock.Set(t0.Add(65*time.Second + 400*time.Millisecond))
	a, stopCmd := send(a, space)
	a, _ = send(a, frameTickMsg(t0.Add(66*time.Second)))
	if weekOf(a, id) != 65*time.Second {
		t.Fatalf("display should hold the frozen value, got %v", weekOf(a, id))
	}

	a = drain(t, a, stopCmd)
	if h.session.Freezes().Len() != 0 || h.session.Overrides().Len() != 0 {
		t.Fatal("confirmed stop should clear intent and freeze")
	}

	a, _ = send(a, frameTickMsg(t0.Add(67*time.Second)))
	if got := weekOf(a, id); got < 65*time.Second || got > 66*time.Second {
		t.Fatalf("display moved backwards or jumped after convergence: %v", got)
	}
	p, _ := h.session.View(id)
	if p.IsTracking {
		t.Fatal("project should be stopped")
	}
}

func TestFailedStartRollsBackAndRetries(t *testing.T) {
	a, h := newHarness(t, 0)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)

	h.backend.startErr = errors.New("connection refused")
	a, cmd := send(a, space)
	a = drain(t, a, cmd)

	p, _ := h.session.View(id)
	if p.IsTracking {
		t.Fatal("failed start should roll back")
	}
	if !a.isErr || !strings.Contains(a.status, "r to retry") {
		t.Fatalf("expected retry hint, got %q", a.status)
	}
	if a.retry == nil {
		t.Fatal("retry command not recorded")
	}

	h.backend.startErr = nil
	a, cmd = send(a, keyRune('r'))
	a = drain(t, a, cmd)
	if h.backend.starts != 2 {
		t.Fatalf("expected retry to call start again, got %d calls", h.backend.starts)
	}
	p, _ = h.session.View(id)
	if !p.IsTracking || a.retry != nil {
		t.Fatal("retry should re-apply the intent")
	}
}

func TestRetryWithoutFailureIsNoop(t *testing.T) {
	a, _ := newHarness(t, 0)
	a, cmd := send(a, keyRune('r'))
	if cmd != nil {
		t.Fatal("nothing to retry")
	}
}

func TestToggleWithoutProjects(t *testing.T) {
	a, _ := newHarness(t, 0)
	a = refresh(t, a)
	a, cmd := send(a, space)
	a = drain(t, a, cmd)
	if !a.isErr {
		t.Fatal("expected a hint about creating a project")
	}
}

// ============================================================
// Idle correction
// ============================================================

func openIdlePrompt(t *testing.T, a App, h *harness, at time.Time) App {
	t.Helper()
	h.clock.Set(at)
	a = refresh(t, a)
	a, _ = send(a, frameTickMsg(at))
	cmd := a.checkIdle(at)
	if cmd == nil {
		t.Fatal("idle prompt not opened")
	}
	a, _ = send(a, cmd())
	if !a.idle.active {
		t.Fatal("idle dialog not shown")
	}
	return a
}

type nudgeMsg struct{}

func answerIdle(t *testing.T, a App, policy tracker.IdlePolicy) App {
	t.Helper()
	*a.idle.choice = policy
	a.idle.form.State = huh.StateCompleted
	a, cmd := send(a, nudgeMsg{})
	return drain(t, a, cmd)
}

func TestIdleDiscardStopsAtIdleStart(t *testing.T) {
	a, h := newHarness(t, 12*time.Minute)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)
	a, cmd := send(a, space)
	a = drain(t, a, cmd)

	a = openIdlePrompt(t, a, h, t0.Add(20*time.Minute))
	a = answerIdle(t, a, tracker.IdleDiscard)

	if h.backend.stops != 1 {
		t.Fatalf("expected 1 stop, got %d", h.backend.stops)
	}
	a, _ = send(a, frameTickMsg(t0.Add(21*time.Minute)))
	if got := weekOf(a, id); got != 8*time.Minute {
		t.Fatalf("expected 8m after discarding idle time, got %v", got)
	}
	if h.session.Overrides().Len() != 0 || h.session.Freezes().Len() != 0 {
		t.Fatal("discard should converge")
	}
}

func TestIdleKeepStopsNow(t *testing.T) {
	a, h := newHarness(t, 12*time.Minute)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)
	a, cmd := send(a, space)
	a = drain(t, a, cmd)

	a = openIdlePrompt(t, a, h, t0.Add(20*time.Minute))
	a = answerIdle(t, a, tracker.IdleKeep)

	a, _ = send(a, frameTickMsg(t0.Add(21*time.Minute)))
	if got := weekOf(a, id); got != 20*time.Minute {
		t.Fatalf("expected idle time kept, got %v", got)
	}
}

func TestIdleStopsAllTrackingProjectsAsGroup(t *testing.T) {
	a, h := newHarness(t, 12*time.Minute)
	h.project(t, "alpha", nil)
	h.project(t, "beta", nil)
	h.project(t, "gamma", nil)
	a = refresh(t, a)
	for i := 0; i < 3; i++ {
		a.dashboard.cursor = i
		var cmd tea.Cmd
		a, cmd = send(a, space)
		a = drain(t, a, cmd)
	}

	a = openIdlePrompt(t, a, h, t0.Add(20*time.Minute))
	a = answerIdle(t, a, tracker.IdleDiscard)
	if h.backend.stops != 3 {
		t.Fatalf("expected 3 stops, got %d", h.backend.stops)
	}
	for _, id := range a.dashboard.ids {
		if p, _ := h.session.View(id); p.IsTracking {
			t.Fatalf("%s still tracking", p.Name)
		}
	}
}

func TestIdleDismiss(t *testing.T) {
	a, h := newHarness(t, 12*time.Minute)
	id := h.project(t, "alpha", nil)
	a = refresh(t, a)
	a, cmd := send(a, space)
	a = drain(t, a, cmd)

	a = openIdlePrompt(t, a, h, t0.Add(20*time.Minute))
	a, _ = send(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.idle.active {
		t.Fatal("esc should close the dialog")
	}
	if _, open := h.session.IdlePromptOpen(); open {
		t.Fatal("prompt should be dismissed in the session")
	}
	if p, _ := h.session.View(id); !p.IsTracking {
		t.Fatal("dismiss must not change tracking")
	}
	if h.backend.stops != 0 {
		t.Fatal("dismiss must not call the backend")
	}
}

func TestIdleNotTriggeredWhenNothingTracks(t *testing.T) {
	a, h := newHarness(t, time.Hour)
	h.project(t, "alpha", nil)
	a = refresh(t, a)
	if a.checkIdle(t0) != nil {
		t.Fatal("idle prompt without tracking projects")
	}
}

// ============================================================
// Forms and views
// ============================================================

func TestSaveProjectAddsRow(t *testing.T) {
	a, h := newHarness(t, 0)
	h.project(t, "alpha", nil)
	a = refresh(t, a)

	rate := 75.0
	a = drain(t, a, a.projects.saveNew("beta", t.TempDir(), "#2EC4B6", &rate))
	if len(a.dashboard.ids) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(a.dashboard.ids))
	}
	if !strings.HasPrefix(a.status, "Saved") {
		t.Fatalf("unexpected status %q", a.status)
	}
}

func TestSaveSettingsUpdatesIdleThreshold(t *testing.T) {
	a, h := newHarness(t, 0)
	a = drain(t, a, a.settings.save("10", "sunday"))
	if h.session.IdleThreshold() != 10*time.Minute {
		t.Fatalf("idle threshold = %v", h.session.IdleThreshold())
	}
	if h.store.WeekStartDay() != time.Sunday {
		t.Fatal("week start not saved")
	}
}

func TestViewShowsProjectsAndTotals(t *testing.T) {
	a, h := newHarness(t, 0)
	rate := 60.0
	h.project(t, "alpha", &rate)
	a = refresh(t, a)
	a, cmd := send(a, space)
	a = drain(t, a, cmd)
	a, _ = send(a, frameTickMsg(t0.Add(90*time.Second)))

	out := a.View()
	for _, want := range []string{"protimer", "alpha", "1m 30s", "$1.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	a, _ = send(a, keyRune('2'))
	if a.activeView != viewWeek || !strings.Contains(a.View(), "This week") {
		t.Fatal("week view not shown")
	}
}

func TestWeekTableShowsTodayAndEarnings(t *testing.T) {
	a, h := newHarness(t, 0)
	rate := 60.0
	h.project(t, "alpha", &rate)
	h.project(t, "beta", nil)
	a = refresh(t, a)
	a, cmd := send(a, space)
	a = drain(t, a, cmd)
	a, _ = send(a, frameTickMsg(t0.Add(90*time.Second)))
	a, _ = send(a, keyRune('2'))

	table := a.week.renderTable(a.frame)
	for _, want := range []string{"Today", "Earnings", "1m 30s", "$1.50"} {
		if !strings.Contains(table, want) {
			t.Errorf("week table missing %q", want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Fatal("short strings unchanged")
	}
	if got := truncate("a-very-long-project", 6); got != "a-ver…" {
		t.Fatalf("truncate = %q", got)
	}
}
