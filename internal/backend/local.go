// Package backend provides the authoritative tracking backend the client
// reconciles against: a local implementation over the sqlite store.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/protimer/internal/store"
	"github.com/sadopc/protimer/internal/tracker"
	"github.com/sirupsen/logrus"
)

// IdleSource reports how long the user has been inactive.
type IdleSource interface {
	Idle(now time.Time) time.Duration
}

// Local implements tracker.Backend over a store. Calls are safe from any
// goroutine; the store serializes access.
type Local struct {
	store *store.Store
	idle  IdleSource
	now   func() time.Time
	log   *logrus.Entry
}

var _ tracker.Backend = (*Local)(nil)

type Option func(*Local)

func WithIdleSource(src IdleSource) Option {
	return func(l *Local) { l.idle = src }
}

func WithClock(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

func WithLogger(log *logrus.Entry) Option {
	return func(l *Local) { l.log = log }
}

func NewLocal(s *store.Store, opts ...Option) *Local {
	l := &Local{
		store: s,
		now:   time.Now,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FetchStatus builds a full snapshot. Per-project totals count closed
// entries only; an open session is reported through Elapsed.
func (l *Local) FetchStatus(ctx context.Context) (tracker.Status, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Status{}, err
	}
	now := l.now()
	dayStart := DayStart(now)
	weekStart := WeekStart(now, l.store.WeekStartDay())

	projects, err := l.store.ListProjects()
	if err != nil {
		return tracker.Status{}, fmt.Errorf("fetch status: %w", err)
	}
	sessions, err := l.store.ListActiveSessions()
	if err != nil {
		return tracker.Status{}, fmt.Errorf("fetch status: %w", err)
	}
	totals, err := l.store.ProjectTotals(dayStart, weekStart)
	if err != nil {
		return tracker.Status{}, fmt.Errorf("fetch status: %w", err)
	}
	counts, err := l.store.ClaudeSessionCounts(dayStart)
	if err != nil {
		return tracker.Status{}, fmt.Errorf("fetch status: %w", err)
	}
	claude, err := l.store.ClaudeTotal(now)
	if err != nil {
		return tracker.Status{}, fmt.Errorf("fetch status: %w", err)
	}

	st := tracker.Status{
		Projects:    make([]tracker.ProjectSnapshot, 0, len(projects)),
		ClaudeTotal: claude,
	}
	for _, p := range projects {
		t := totals[p.ID]
		snap := tracker.ProjectSnapshot{
			ID:                 p.ID,
			Name:               p.Name,
			Color:              p.Color,
			HourlyRate:         p.HourlyRate,
			Today:              t.Today,
			Week:               t.Week,
			Total:              t.Total,
			ClaudeState:        tracker.ClaudeStopped,
			ClaudeSessionCount: counts[p.ID],
		}
		if sess, ok := sessions[p.ID]; ok {
			snap.IsTracking = true
			snap.ManualMode = sess.ManualMode
			snap.Elapsed = max(now.Sub(sess.StartTime), 0)
			if !sess.ManualMode {
				snap.ClaudeState = tracker.ClaudeActive
			}
		}
		st.TodayTotal += snap.Today + snap.Elapsed
		st.Projects = append(st.Projects, snap)
	}
	if l.idle != nil {
		st.SystemIdle = l.idle.Idle(now)
	}
	return st, nil
}

func (l *Local) StartTracking(ctx context.Context, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := l.store.GetProject(projectID); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	sess, err := l.store.StartSession(projectID, true, false, l.now())
	if err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	l.log.WithFields(logrus.Fields{"project": projectID, "start": sess.StartTime}).Debug("session started")
	return nil
}

// StopTracking closes the open session. Stopping a project that is not
// tracking succeeds without effect.
func (l *Local) StopTracking(ctx context.Context, projectID string, end *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry, err := l.store.StopSession(projectID, end, l.now())
	if errors.Is(err, store.ErrNoActiveSession) {
		l.log.WithField("project", projectID).Debug("stop without open session")
		return nil
	}
	if err != nil {
		return fmt.Errorf("stop tracking: %w", err)
	}
	l.log.WithFields(logrus.Fields{
		"project":  projectID,
		"duration": entry.Duration(),
		"explicit": end != nil,
	}).Debug("session stopped")
	return nil
}

// DayStart is local midnight of t's day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart is midnight of the most recent first day on or before t.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	day := DayStart(t)
	back := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -back)
}
