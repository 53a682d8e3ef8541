package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateProject(name, path, color string, hourlyRate *float64) (*Project, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, path, color, hourly_rate, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, path, color, hourlyRate, toMillis(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(id)
}

func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow(
		`SELECT id, name, path, color, hourly_rate, created_at FROM projects WHERE id = ?`, id,
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, path, color, hourly_rate, created_at FROM projects ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProjectRate(id string, hourlyRate *float64) error {
	return s.updateProject(id, `UPDATE projects SET hourly_rate = ? WHERE id = ?`, hourlyRate)
}

func (s *Store) UpdateProjectName(id, name string) error {
	return s.updateProject(id, `UPDATE projects SET name = ? WHERE id = ?`, name)
}

func (s *Store) updateProject(id, query string, value any) error {
	res, err := s.db.Exec(query, value, id)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update project %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project together with its entries and any open
// session.
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*Project, error) {
	p := &Project{}
	var rate sql.NullFloat64
	var createdAt int64
	if err := sc.Scan(&p.ID, &p.Name, &p.Path, &p.Color, &rate, &createdAt); err != nil {
		return nil, err
	}
	if rate.Valid {
		r := rate.Float64
		p.HourlyRate = &r
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

// ResolveProject finds a project by exact id, exact name, or unique
// case-insensitive name prefix.
func (s *Store) ResolveProject(ref string) (*Project, error) {
	if p, err := s.GetProject(ref); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(ref)
	var matches []Project
	for _, p := range projects {
		name := strings.ToLower(p.Name)
		if name == want {
			return &p, nil
		}
		if strings.HasPrefix(name, want) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("project %q: %w", ref, ErrNotFound)
	case 1:
		return &matches[0], nil
	}
	return nil, fmt.Errorf("project %q matches %d projects: %w", ref, len(matches), ErrAmbiguous)
}

// ParseRate reads an optional non-negative hourly rate such as "80" or
// "$12.50". Empty and "none" mean no rate.
func ParseRate(s string) (*float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("rate %q is not a number", s)
	}
	if r < 0 {
		return nil, errors.New("rate cannot be negative")
	}
	return &r, nil
}
