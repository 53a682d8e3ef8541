package store

import "time"

type Project struct {
	ID         string
	Name       string
	Path       string
	Color      string
	HourlyRate *float64
	CreatedAt  time.Time
}

type TimeEntry struct {
	ID           string
	ProjectID    string
	StartTime    time.Time
	EndTime      *time.Time
	ClaudeActive bool
	Description  string
}

// Duration is zero for entries that are still open.
func (e TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// ActiveSession is an open tracking session. At most one exists per project.
type ActiveSession struct {
	ProjectID      string
	StartTime      time.Time
	ClaudeDetected bool
	ManualMode     bool
}

type Setting struct {
	Key   string
	Value string
}

// ProjectTotals is closed-entry time for one project.
type ProjectTotals struct {
	Today time.Duration
	Week  time.Duration
	Total time.Duration
}

// WeeklySummary is per-project time and earnings for one week.
type WeeklySummary struct {
	WeekStart     time.Time
	WeekEnd       time.Time
	Projects      []WeeklySummaryProject
	TotalEarnings float64
}

type WeeklySummaryProject struct {
	ProjectID   string
	ProjectName string
	Total       time.Duration
	EntryCount  int
	HourlyRate  *float64
	Earnings    *float64
}

func (p WeeklySummaryProject) Hours() float64 {
	return p.Total.Hours()
}
