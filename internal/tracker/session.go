package tracker

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultIdleThreshold = 5 * time.Minute
	DefaultTolerance     = time.Second
)

// Config tunes reconciliation.
type Config struct {
	// IdleThreshold is the system idle duration that triggers the idle
	// correction prompt.
	IdleThreshold time.Duration
	// Tolerance is how far the backend's week total may lag a frozen value
	// and still count as caught up.
	Tolerance time.Duration
}

func (c Config) withDefaults() Config {
	if c.IdleThreshold <= 0 {
		c.IdleThreshold = DefaultIdleThreshold
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	return c
}

// ProjectView is a snapshot with client intent applied: flags reflect the
// override when one exists and Times holds the projected totals.
type ProjectView struct {
	ProjectSnapshot
	Times Times
}

// Reconciled describes what ApplyStatus changed.
type Reconciled struct {
	// Rebuild is set when the project set differs from the previous
	// snapshot. The view layer must rebuild rather than patch.
	Rebuild   bool
	Confirmed []string
	Removed   []string
	Tracking  bool
}

// Session is the client's reconciliation state. It is not safe for
// concurrent use; all calls must come from one goroutine.
type Session struct {
	cfg Config
	log *logrus.Entry

	status    Status
	fetchedAt time.Time
	known     map[string]struct{}

	overrides *OverrideStore
	freezes   *FreezeStore
	projector *Projector
	poller    Poller

	// floors keep a restarted project from showing less than its frozen
	// value until the next fetch.
	floors map[string]Times

	idle idleState

	indicator     Indicator
	indicatorSet  bool
	indicatorLast bool
}

type Option func(*Session)

func WithIndicator(ind Indicator) Option {
	return func(s *Session) { s.indicator = ind }
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) { s.log = log }
}

// NewSession returns an empty session. Without WithLogger it logs nowhere.
func NewSession(cfg Config, opts ...Option) *Session {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	s := &Session{
		cfg:       cfg.withDefaults(),
		log:       logrus.NewEntry(quiet),
		overrides: NewOverrideStore(),
		freezes:   NewFreezeStore(),
		projector: NewProjector(),
		floors:    make(map[string]Times),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Overrides() *OverrideStore { return s.overrides }
func (s *Session) Freezes() *FreezeStore     { return s.freezes }
func (s *Session) Projector() *Projector     { return s.projector }
func (s *Session) Poller() *Poller           { return &s.poller }
func (s *Session) Status() Status            { return s.status }
func (s *Session) FetchedAt() time.Time      { return s.fetchedAt }

// HasStatus reports whether any snapshot has been applied yet.
func (s *Session) HasStatus() bool { return s.known != nil }

// SetIdleThreshold changes the idle trigger at runtime.
func (s *Session) SetIdleThreshold(d time.Duration) {
	if d > 0 {
		s.cfg.IdleThreshold = d
	}
}

func (s *Session) IdleThreshold() time.Duration { return s.cfg.IdleThreshold }

// ApplyStatus merges a fresh snapshot received at receivedAt. Applying the
// same snapshot twice leaves the stores as applying it once.
func (s *Session) ApplyStatus(st Status, receivedAt time.Time) Reconciled {
	s.status = st
	s.fetchedAt = receivedAt
	clear(s.floors)

	var r Reconciled
	r.Rebuild, r.Removed = s.diffProjects(st)
	for _, id := range r.Removed {
		s.overrides.Clear(id)
		s.freezes.Clear(id)
		s.projector.Forget(id)
	}

	r.Confirmed = Confirmation[string, Override, ProjectSnapshot]{
		Intents:   s.overrides.intents,
		Observe:   st.Project,
		Converged: s.converged,
		OnConfirm: s.freezes.Clear,
	}.Run()

	for _, p := range st.Projects {
		if s.flags(p).IsTracking {
			r.Tracking = true
			break
		}
	}
	s.updateIndicator(r.Tracking)

	if r.Rebuild {
		s.log.WithField("projects", len(st.Projects)).Info("project set changed")
	}
	return r
}

// converged is the confirmation predicate: the backend has stopped the
// session and, if the display is frozen, its week total is within tolerance
// of the frozen value.
func (s *Session) converged(id string, o Override, p ProjectSnapshot) bool {
	if o.Active || p.IsTracking {
		return false
	}
	f, ok := s.freezes.Get(id)
	if !ok {
		return true
	}
	diff := p.Week - f.Week
	if diff < 0 {
		diff = -diff
	}
	return diff < s.cfg.Tolerance
}

func (s *Session) diffProjects(st Status) (bool, []string) {
	next := make(map[string]struct{}, len(st.Projects))
	for _, p := range st.Projects {
		next[p.ID] = struct{}{}
	}
	prev := s.known
	s.known = next
	if prev == nil {
		return true, nil
	}

	changed := len(prev) != len(next)
	var removed []string
	for id := range prev {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
			changed = true
		}
	}
	return changed, removed
}

func (s *Session) updateIndicator(tracking bool) {
	if s.indicator == nil {
		return
	}
	if s.indicatorSet && s.indicatorLast == tracking {
		return
	}
	if err := s.indicator.SetTracking(tracking); err != nil {
		s.log.WithError(err).Debug("update activity indicator")
		return
	}
	s.indicatorSet = true
	s.indicatorLast = tracking
}

// flags returns p with the override's view of the tracking flags applied.
func (s *Session) flags(p ProjectSnapshot) ProjectSnapshot {
	o, ok := s.overrides.Get(p.ID)
	if !ok {
		return p
	}
	p.ManualMode = o.Active
	p.IsTracking = o.Active || p.ClaudeState == ClaudeActive
	return p
}

// View returns the flags for one project without projecting times.
func (s *Session) View(id string) (ProjectSnapshot, bool) {
	p, ok := s.status.Project(id)
	if !ok {
		return ProjectSnapshot{}, false
	}
	return s.flags(p), true
}

// Project projects a single project at now, updating the last-rendered cache.
func (s *Session) Project(id string, now time.Time) (ProjectView, bool) {
	p, ok := s.status.Project(id)
	if !ok {
		return ProjectView{}, false
	}
	return s.project(p, now), true
}

// Views projects every project at now in snapshot order. This is the render
// loop's display write.
func (s *Session) Views(now time.Time) []ProjectView {
	views := make([]ProjectView, len(s.status.Projects))
	for i, p := range s.status.Projects {
		views[i] = s.project(p, now)
	}
	return views
}

func (s *Session) project(p ProjectSnapshot, now time.Time) ProjectView {
	var op *Override
	if o, ok := s.overrides.Get(p.ID); ok {
		op = &o
	}
	var fp *Frozen
	if f, ok := s.freezes.Get(p.ID); ok {
		fp = &f
	}
	t := s.projector.Project(p, op, fp, s.fetchedAt, now)
	if floor, ok := s.floors[p.ID]; ok && fp == nil {
		t.Week = max(t.Week, floor.Week)
		t.Today = max(t.Today, floor.Today)
		s.projector.last[p.ID] = t
	}
	return ProjectView{ProjectSnapshot: s.flags(p), Times: t}
}
