package store

import (
	"database/sql"
	"fmt"
	"time"
)

// WeeklySummary aggregates closed entries in [weekStart, weekStart+7d).
// Earnings are only reported for projects with an hourly rate.
func (s *Store) WeeklySummary(weekStart time.Time) (*WeeklySummary, error) {
	weekEnd := weekStart.AddDate(0, 0, 7)
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.hourly_rate,
		       COALESCE(SUM(e.end_time - e.start_time), 0), COUNT(e.id)
		FROM projects p
		JOIN time_entries e ON e.project_id = p.id
		WHERE e.end_time IS NOT NULL AND e.start_time >= ? AND e.start_time < ?
		GROUP BY p.id
		ORDER BY p.name`,
		toMillis(weekStart), toMillis(weekEnd),
	)
	if err != nil {
		return nil, fmt.Errorf("weekly summary: %w", err)
	}
	defer rows.Close()

	sum := &WeeklySummary{WeekStart: weekStart, WeekEnd: weekEnd}
	for rows.Next() {
		var p WeeklySummaryProject
		var rate sql.NullFloat64
		var totalMs int64
		if err := rows.Scan(&p.ProjectID, &p.ProjectName, &rate, &totalMs, &p.EntryCount); err != nil {
			return nil, err
		}
		p.Total = time.Duration(totalMs) * time.Millisecond
		if rate.Valid {
			r := rate.Float64
			p.HourlyRate = &r
			earned := p.Hours() * r
			p.Earnings = &earned
			sum.TotalEarnings += earned
		}
		sum.Projects = append(sum.Projects, p)
	}
	return sum, rows.Err()
}
