package tracker

import (
	"fmt"
	"time"
)

// Totals are the header aggregates over all projects.
type Totals struct {
	Today time.Duration
	Week  time.Duration
	// Earnings is week hours times hourly rate, summed over projects that
	// have a rate.
	Earnings float64
	HasRate  bool
	Tracking int
}

func Sum(views []ProjectView) Totals {
	var t Totals
	for _, v := range views {
		t.Today += v.Times.Today
		t.Week += v.Times.Week
		if v.IsTracking {
			t.Tracking++
		}
		if v.HourlyRate != nil {
			t.HasRate = true
			t.Earnings += Earnings(v.Times.Week, *v.HourlyRate)
		}
	}
	return t
}

func Earnings(d time.Duration, hourlyRate float64) float64 {
	return d.Hours() * hourlyRate
}

// FormatElapsed renders a duration as "1h 2m 3s", "1m 5s" or "5s".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
