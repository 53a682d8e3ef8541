package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartSession opens a session for projectID at the given time. If one is
// already open it is kept with its original start; a manual start promotes
// an automatic session to manual mode.
func (s *Store) StartSession(projectID string, manual, claude bool, at time.Time) (*ActiveSession, error) {
	existing, err := s.GetActiveSession(projectID)
	if err != nil && !errors.Is(err, ErrNoActiveSession) {
		return nil, err
	}
	if existing != nil {
		if manual && !existing.ManualMode {
			if _, err := s.db.Exec(
				`UPDATE active_sessions SET manual_mode = 1 WHERE project_id = ?`, projectID,
			); err != nil {
				return nil, fmt.Errorf("promote session: %w", err)
			}
			existing.ManualMode = true
		}
		return existing, nil
	}

	_, err = s.db.Exec(
		`INSERT INTO active_sessions (project_id, start_time, claude_detected, manual_mode) VALUES (?, ?, ?, ?)`,
		projectID, toMillis(at), boolInt(claude), boolInt(manual),
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s.GetActiveSession(projectID)
}

// StopSession closes the open session for projectID into a time entry.
// A non-nil end replaces now as the end time; it never precedes the start.
func (s *Store) StopSession(projectID string, end *time.Time, now time.Time) (*TimeEntry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin stop: %w", err)
	}
	defer tx.Rollback()

	sess, err := scanSession(tx.QueryRow(
		`SELECT project_id, start_time, claude_detected, manual_mode FROM active_sessions WHERE project_id = ?`,
		projectID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	stopAt := now
	if end != nil {
		stopAt = *end
	}
	if stopAt.Before(sess.StartTime) {
		stopAt = sess.StartTime
	}

	entry := &TimeEntry{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		StartTime:    sess.StartTime,
		EndTime:      &stopAt,
		ClaudeActive: sess.ClaudeDetected,
	}
	if _, err := tx.Exec(
		`INSERT INTO time_entries (id, project_id, start_time, end_time, claude_active, description) VALUES (?, ?, ?, ?, ?, '')`,
		entry.ID, projectID, toMillis(entry.StartTime), toMillis(stopAt), boolInt(entry.ClaudeActive),
	); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM active_sessions WHERE project_id = ?`, projectID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stop: %w", err)
	}
	return entry, nil
}

func (s *Store) GetActiveSession(projectID string) (*ActiveSession, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT project_id, start_time, claude_detected, manual_mode FROM active_sessions WHERE project_id = ?`,
		projectID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", projectID, err)
	}
	return sess, nil
}

// ListActiveSessions returns open sessions keyed by project id.
func (s *Store) ListActiveSessions() (map[string]ActiveSession, error) {
	rows, err := s.db.Query(
		`SELECT project_id, start_time, claude_detected, manual_mode FROM active_sessions`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make(map[string]ActiveSession)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions[sess.ProjectID] = *sess
	}
	return sessions, rows.Err()
}

func scanSession(sc scanner) (*ActiveSession, error) {
	a := &ActiveSession{}
	var start int64
	var claude, manual int
	if err := sc.Scan(&a.ProjectID, &start, &claude, &manual); err != nil {
		return nil, err
	}
	a.StartTime = fromMillis(start)
	a.ClaudeDetected = claude == 1
	a.ManualMode = manual == 1
	return a, nil
}
