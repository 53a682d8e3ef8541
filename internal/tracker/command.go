package tracker

import "time"

// Command is a user intent consumed by Session.Dispatch. The set is closed:
// Start, Stop and ResolveIdle.
type Command interface {
	command()
}

// Start begins manual tracking of a project.
type Start struct {
	ProjectID string
}

// Stop ends tracking of a project. End, when set, is passed to the backend
// as the authoritative end time.
type Stop struct {
	ProjectID string
	End       *time.Time
}

// ResolveIdle answers the open idle prompt.
type ResolveIdle struct {
	Policy IdlePolicy
}

func (Start) command()       {}
func (Stop) command()        {}
func (ResolveIdle) command() {}

type EffectKind int

const (
	EffectStart EffectKind = iota
	EffectStop
)

func (k EffectKind) String() string {
	if k == EffectStart {
		return "start"
	}
	return "stop"
}

// Effect is a backend call the caller must issue. Session state has already
// been updated optimistically by the time an Effect is returned.
type Effect struct {
	Kind      EffectKind
	ProjectID string
	End       *time.Time

	rev uint64
}

// Batch is the set of backend calls produced by one command.
type Batch struct {
	Effects []Effect
	// Grouped effects are issued together and awaited as a whole before the
	// refresh; otherwise each is independent.
	Grouped bool
	// Refresh asks for a full status fetch once the effects settle.
	Refresh bool
}

// Dispatch applies cmd to the session at now and returns the backend calls
// to make. It never blocks.
func (s *Session) Dispatch(cmd Command, now time.Time) Batch {
	switch c := cmd.(type) {
	case Start:
		return Batch{Effects: []Effect{s.start(c.ProjectID, now)}}
	case Stop:
		return Batch{Effects: []Effect{s.stop(c.ProjectID, c.End, now, true)}, Refresh: true}
	case ResolveIdle:
		return s.resolveIdle(c.Policy, now)
	}
	return Batch{}
}

// Toggle starts or stops id depending on its visible tracking flag.
func (s *Session) Toggle(id string, now time.Time) (Command, Batch) {
	p, ok := s.View(id)
	if !ok {
		return nil, Batch{}
	}
	var cmd Command = Start{ProjectID: id}
	if p.IsTracking {
		cmd = Stop{ProjectID: id}
	}
	return cmd, s.Dispatch(cmd, now)
}

func (s *Session) start(id string, now time.Time) Effect {
	start := now
	f, frozen := s.freezes.Get(id)
	if frozen {
		s.floors[id] = f
	}
	if o, ok := s.overrides.Get(id); ok && o.Active {
		start = o.StartTime
	} else if p, ok := s.status.Project(id); ok && !frozen && p.IsTracking && p.Elapsed > 0 {
		// The backend keeps the original start of a session it already has
		// open, so continue from the projected elapsed time instead of zero.
		start = now.Add(-(p.Elapsed + nonNegative(now.Sub(s.fetchedAt))))
	}

	s.freezes.Clear(id)
	o := s.overrides.Set(id, true, start)
	return Effect{Kind: EffectStart, ProjectID: id, rev: o.rev}
}

func (s *Session) stop(id string, end *time.Time, now time.Time, freeze bool) Effect {
	if freeze {
		if _, frozen := s.freezes.Get(id); !frozen {
			last, ok := s.projector.LastRendered(id)
			if !ok {
				if v, found := s.Project(id, now); found {
					last = v.Times
					ok = true
				}
			}
			if ok {
				s.freezes.Set(id, last)
			}
		}
	} else {
		s.freezes.Clear(id)
	}
	o := s.overrides.Set(id, false, time.Time{})
	return Effect{Kind: EffectStop, ProjectID: id, End: end, rev: o.rev}
}

// Failed rolls back the optimistic intent behind a failed effect, unless a
// later toggle has already replaced it. It returns the command that retries
// the effect and whether a rollback happened.
func (s *Session) Failed(e Effect) (Command, bool) {
	rolled := s.overrides.clearIf(e.ProjectID, e.rev)
	if rolled {
		s.freezes.Clear(e.ProjectID)
	}
	if e.Kind == EffectStart {
		return Start{ProjectID: e.ProjectID}, rolled
	}
	return Stop{ProjectID: e.ProjectID, End: e.End}, rolled
}
