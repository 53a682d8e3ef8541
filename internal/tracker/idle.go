package tracker

import "time"

// IdlePolicy decides what happens to time recorded while the user was idle.
type IdlePolicy int

const (
	// IdleKeep stops tracking now and keeps the idle time.
	IdleKeep IdlePolicy = iota
	// IdleDiscard stops tracking retroactively at the moment idleness began.
	IdleDiscard
)

func (p IdlePolicy) String() string {
	if p == IdleDiscard {
		return "discard"
	}
	return "keep"
}

// IdlePrompt is an open idle correction dialog.
type IdlePrompt struct {
	Idle       time.Duration
	DetectedAt time.Time
	Projects   []string
}

// IdleSince is the instant the user went idle. It is anchored at detection,
// so time the prompt stays open is discarded along with the idle gap.
func (p IdlePrompt) IdleSince() time.Time {
	return p.DetectedAt.Add(-p.Idle)
}

type idleState struct {
	open   bool
	prompt IdlePrompt
}

// CheckIdle opens the idle prompt when a project is tracking, the reported
// system idle time has reached the threshold and no prompt is open. At most
// one prompt is open at a time.
func (s *Session) CheckIdle(now time.Time) (IdlePrompt, bool) {
	if s.idle.open {
		return IdlePrompt{}, false
	}
	idle := s.status.SystemIdle
	if idle < s.cfg.IdleThreshold {
		return IdlePrompt{}, false
	}
	tracking := s.trackingIDs()
	if len(tracking) == 0 {
		return IdlePrompt{}, false
	}
	s.idle = idleState{
		open:   true,
		prompt: IdlePrompt{Idle: idle, DetectedAt: now, Projects: tracking},
	}
	return s.idle.prompt, true
}

// IdlePromptOpen reports whether an idle prompt awaits an answer.
func (s *Session) IdlePromptOpen() (IdlePrompt, bool) {
	return s.idle.prompt, s.idle.open
}

// DismissIdle closes the prompt without changing any tracking state.
func (s *Session) DismissIdle() {
	s.idle = idleState{}
}

func (s *Session) trackingIDs() []string {
	var ids []string
	for _, p := range s.status.Projects {
		if s.flags(p).IsTracking {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// resolveIdle stops every currently tracking project as one group. Keep
// freezes the display like a normal stop. Discard freezes each project at its
// total as of the idle start, which is what the backend reports once the
// session is truncated.
func (s *Session) resolveIdle(policy IdlePolicy, now time.Time) Batch {
	if !s.idle.open {
		return Batch{}
	}
	prompt := s.idle.prompt
	s.idle = idleState{}

	var end *time.Time
	if policy == IdleDiscard {
		since := prompt.IdleSince()
		end = &since
	}

	ids := s.trackingIDs()
	b := Batch{Grouped: true, Refresh: true, Effects: make([]Effect, 0, len(ids))}
	for _, id := range ids {
		if end == nil {
			b.Effects = append(b.Effects, s.stop(id, nil, now, true))
			continue
		}
		at, ok := s.totalsAt(id, *end)
		b.Effects = append(b.Effects, s.stop(id, end, now, false))
		if ok {
			s.freezes.Set(id, at)
		}
	}
	return b
}

// totalsAt is the projection of id at an instant that may precede the last
// fetch. Unlike Project, the time since the fetch is allowed to go negative
// so a backend session is wound back to at.
func (s *Session) totalsAt(id string, at time.Time) (Times, bool) {
	p, ok := s.status.Project(id)
	if !ok {
		return Times{}, false
	}
	var extra time.Duration
	if o, ok := s.overrides.Get(id); ok && o.Active {
		extra = at.Sub(o.StartTime)
	} else if p.IsTracking && p.Elapsed > 0 {
		extra = p.Elapsed + at.Sub(s.fetchedAt)
	}
	extra = nonNegative(extra)
	return Times{Week: p.Week + extra, Today: p.Today + extra}, true
}
