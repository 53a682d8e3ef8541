package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddEntry records a closed manual entry.
func (s *Store) AddEntry(projectID string, start, end time.Time) (*TimeEntry, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("add entry: end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO time_entries (id, project_id, start_time, end_time, claude_active, description) VALUES (?, ?, ?, ?, 0, '')`,
		id, projectID, toMillis(start), toMillis(end),
	)
	if err != nil {
		return nil, fmt.Errorf("add entry: %w", err)
	}
	return s.GetEntry(id)
}

func (s *Store) GetEntry(id string) (*TimeEntry, error) {
	e, err := scanEntry(s.db.QueryRow(
		`SELECT id, project_id, start_time, end_time, claude_active, description FROM time_entries WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) UpdateEntry(id string, start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("update entry %s: end is not after start", id)
	}
	res, err := s.db.Exec(
		`UPDATE time_entries SET start_time = ?, end_time = ? WHERE id = ?`,
		toMillis(start), toMillis(end), id,
	)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update entry %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteEntry(id string) error {
	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListEntries returns a project's entries starting in [from, to), newest first.
func (s *Store) ListEntries(projectID string, from, to time.Time) ([]TimeEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, start_time, end_time, claude_active, description
		 FROM time_entries
		 WHERE project_id = ? AND start_time >= ? AND start_time < ?
		 ORDER BY start_time DESC`,
		projectID, toMillis(from), toMillis(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ProjectTotals sums closed entries per project. Entries are attributed to
// the day and week they started in.
func (s *Store) ProjectTotals(todayStart, weekStart time.Time) (map[string]ProjectTotals, error) {
	rows, err := s.db.Query(`
		SELECT project_id,
		       COALESCE(SUM(CASE WHEN start_time >= ? THEN end_time - start_time ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN start_time >= ? THEN end_time - start_time ELSE 0 END), 0),
		       COALESCE(SUM(end_time - start_time), 0)
		FROM time_entries
		WHERE end_time IS NOT NULL
		GROUP BY project_id`,
		toMillis(todayStart), toMillis(weekStart),
	)
	if err != nil {
		return nil, fmt.Errorf("project totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]ProjectTotals)
	for rows.Next() {
		var id string
		var today, week, total int64
		if err := rows.Scan(&id, &today, &week, &total); err != nil {
			return nil, err
		}
		totals[id] = ProjectTotals{
			Today: time.Duration(today) * time.Millisecond,
			Week:  time.Duration(week) * time.Millisecond,
			Total: time.Duration(total) * time.Millisecond,
		}
	}
	return totals, rows.Err()
}

// ClaudeTotal is all time recorded while the assistant was active, with open
// automatic sessions counted up to now.
func (s *Store) ClaudeTotal(now time.Time) (time.Duration, error) {
	var closed, open int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(end_time - start_time), 0) FROM time_entries WHERE claude_active = 1 AND end_time IS NOT NULL`,
	).Scan(&closed)
	if err != nil {
		return 0, fmt.Errorf("claude total: %w", err)
	}
	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(? - start_time), 0) FROM active_sessions WHERE claude_detected = 1`,
		toMillis(now),
	).Scan(&open)
	if err != nil {
		return 0, fmt.Errorf("claude total: %w", err)
	}
	return time.Duration(closed+open) * time.Millisecond, nil
}

// ClaudeSessionCounts counts assistant-detected sessions per project that
// started at or after since, including ones still open.
func (s *Store) ClaudeSessionCounts(since time.Time) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT project_id, COUNT(*) FROM (
			SELECT project_id FROM time_entries WHERE claude_active = 1 AND start_time >= ?
			UNION ALL
			SELECT project_id FROM active_sessions WHERE claude_detected = 1 AND start_time >= ?
		)
		GROUP BY project_id`,
		toMillis(since), toMillis(since),
	)
	if err != nil {
		return nil, fmt.Errorf("claude session counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func scanEntry(sc scanner) (*TimeEntry, error) {
	e := &TimeEntry{}
	var start int64
	var end sql.NullInt64
	var claude int
	if err := sc.Scan(&e.ID, &e.ProjectID, &start, &end, &claude, &e.Description); err != nil {
		return nil, err
	}
	e.StartTime = fromMillis(start)
	if end.Valid {
		t := fromMillis(end.Int64)
		e.EndTime = &t
	}
	e.ClaudeActive = claude == 1
	return e, nil
}
