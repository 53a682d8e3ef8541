package tracker

import "time"

// Project computes the displayed totals for one project. It is pure: the same
// inputs always give the same result.
//
// fetchedAt is when the baseline was received; override and freeze may be nil.
func Project(baseline ProjectSnapshot, override *Override, freeze *Frozen, fetchedAt, now time.Time) Times {
	if freeze != nil {
		return *freeze
	}

	var extra time.Duration
	switch {
	case override != nil && override.Active:
		extra = nonNegative(now.Sub(override.StartTime))
	case baseline.IsTracking && baseline.Elapsed > 0:
		extra = baseline.Elapsed + nonNegative(now.Sub(fetchedAt))
	}

	return Times{
		Week:  baseline.Week + extra,
		Today: baseline.Today + extra,
	}
}

// Projector wraps Project and remembers the last value it produced for each
// project. The stop protocol freezes that value.
type Projector struct {
	last map[string]Times
}

func NewProjector() *Projector {
	return &Projector{last: make(map[string]Times)}
}

// Project returns the displayed totals and records them as last rendered,
// unless a freeze is active.
func (p *Projector) Project(baseline ProjectSnapshot, override *Override, freeze *Frozen, fetchedAt, now time.Time) Times {
	t := Project(baseline, override, freeze, fetchedAt, now)
	if freeze == nil {
		p.last[baseline.ID] = t
	}
	return t
}

func (p *Projector) LastRendered(id string) (Times, bool) {
	t, ok := p.last[id]
	return t, ok
}

// Forget drops cached output for projects that no longer exist.
func (p *Projector) Forget(id string) {
	delete(p.last, id)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
