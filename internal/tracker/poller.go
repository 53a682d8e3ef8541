package tracker

import "time"

// Poller orders status fetches. Fetches may complete out of order; a
// response is only applied if no later-issued fetch has been applied yet.
type Poller struct {
	issued  uint64
	applied uint64
}

// Begin registers a new fetch and returns its sequence number.
func (p *Poller) Begin() uint64 {
	p.issued++
	return p.issued
}

// Accept reports whether the response to fetch seq is fresher than the held
// snapshot, and marks it as held if so.
func (p *Poller) Accept(seq uint64) bool {
	if seq <= p.applied {
		return false
	}
	p.applied = seq
	return true
}

// Throttle limits expensive display writes to one per wall-clock second
// while the caller's tick runs at any rate.
type Throttle struct {
	last    int64
	written bool
}

// Allow reports whether a write is due at now and records it if so.
func (t *Throttle) Allow(now time.Time) bool {
	sec := now.Unix()
	if t.written && sec == t.last {
		return false
	}
	t.written = true
	t.last = sec
	return true
}

// Reset makes the next Allow succeed. Used after toggles and rebuilds so
// the user sees the change on the next frame.
func (t *Throttle) Reset() {
	t.written = false
}
