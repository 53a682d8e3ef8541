// Package tracker reconciles the backend's periodic status snapshots with the
// user's optimistic tracking intent so that per-project timers render smoothly
// and never visibly roll back.
package tracker

import (
	"context"
	"time"
)

// ClaudeState is the backend's view of assistant activity in a project.
type ClaudeState string

const (
	ClaudeActive  ClaudeState = "active"
	ClaudeStopped ClaudeState = "stopped"
)

// ProjectSnapshot is one project as reported by a single status fetch.
// Snapshots are immutable and replaced wholesale on each fetch.
type ProjectSnapshot struct {
	ID         string
	Name       string
	Color      string
	HourlyRate *float64

	IsTracking bool
	ManualMode bool

	// Elapsed is the length of the open backend session as of the fetch.
	Elapsed time.Duration
	Today   time.Duration
	Week    time.Duration
	Total   time.Duration

	ClaudeState        ClaudeState
	ClaudeSessionCount int
}

// Status is the authoritative snapshot returned by the backend.
type Status struct {
	Projects    []ProjectSnapshot
	TodayTotal  time.Duration
	ClaudeTotal time.Duration
	SystemIdle  time.Duration
}

// Project returns the snapshot with the given id.
func (s Status) Project(id string) (ProjectSnapshot, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return ProjectSnapshot{}, false
}

// IDs returns the project ids in snapshot order.
func (s Status) IDs() []string {
	ids := make([]string, len(s.Projects))
	for i, p := range s.Projects {
		ids[i] = p.ID
	}
	return ids
}

// Override is client-local tracking intent. It is authoritative for
// rendering until the backend confirms it.
type Override struct {
	Active    bool
	StartTime time.Time

	// rev identifies the toggle that wrote this entry so a late command
	// failure only rolls back the intent it belongs to.
	rev uint64
}

// Times is a displayed pair of week and today totals.
type Times struct {
	Week  time.Duration
	Today time.Duration
}

// Frozen pins a project's display at the value shown when tracking stopped.
type Frozen = Times

// Backend is the authoritative source of tracking state.
type Backend interface {
	FetchStatus(ctx context.Context) (Status, error)
	StartTracking(ctx context.Context, projectID string) error
	// StopTracking closes the open session. A non-nil end is authoritative
	// and replaces the backend's own stop time.
	StopTracking(ctx context.Context, projectID string, end *time.Time) error
}

// Indicator reflects aggregate tracking state outside the application
// window. Implementations are best effort.
type Indicator interface {
	SetTracking(tracking bool) error
}
