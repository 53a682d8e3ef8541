package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SettingIdleTimeout = "idle_timeout" // seconds
	SettingWeekStart   = "week_start"   // monday | sunday
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// IdleTimeout returns the idle_timeout setting, or fallback when it is unset
// or not a positive number of seconds.
func (s *Store) IdleTimeout(fallback time.Duration) time.Duration {
	v, err := s.GetSetting(SettingIdleTimeout)
	if err != nil {
		return fallback
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// WeekStartDay returns the first day of the week, Monday unless the
// week_start setting says sunday.
func (s *Store) WeekStartDay() time.Weekday {
	v, err := s.GetSetting(SettingWeekStart)
	if err == nil && strings.EqualFold(strings.TrimSpace(v), "sunday") {
		return time.Sunday
	}
	return time.Monday
}
