package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/protimer/internal/store"
)

type jsonEntries struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID           string `json:"id"`
	Project      string `json:"project"`
	ProjectID    string `json:"project_id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	DurationSec  int64  `json:"duration_seconds"`
	Duration     string `json:"duration"`
	ClaudeActive bool   `json:"claude_active"`
	Description  string `json:"description,omitempty"`
}

type jsonSummary struct {
	ExportedAt    string        `json:"exported_at"`
	WeekStart     string        `json:"week_start"`
	WeekEnd       string        `json:"week_end"`
	TotalSeconds  int64         `json:"total_seconds"`
	TotalEarnings float64       `json:"total_earnings"`
	Projects      []jsonProject `json:"projects"`
}

type jsonProject struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DurationSec int64    `json:"duration_seconds"`
	Hours       float64  `json:"hours"`
	EntryCount  int      `json:"entry_count"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
	Earnings    *float64 `json:"earnings,omitempty"`
}

// EntriesJSON writes entries as an indented JSON document stamped with now.
func EntriesJSON(out io.Writer, entries []store.TimeEntry, names map[string]string, now time.Time) error {
	doc := jsonEntries{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(entries),
	}

	for _, e := range entries {
		endStr := ""
		if e.EndTime != nil {
			endStr = e.EndTime.Local().Format(time.RFC3339)
		}
		doc.Entries = append(doc.Entries, jsonEntry{
			ID:           e.ID,
			Project:      projectName(names, e.ProjectID),
			ProjectID:    e.ProjectID,
			StartTime:    e.StartTime.Local().Format(time.RFC3339),
			EndTime:      endStr,
			DurationSec:  int64(e.Duration() / time.Second),
			Duration:     formatDuration(e.Duration()),
			ClaudeActive: e.ClaudeActive,
			Description:  e.Description,
		})
	}
	return writeJSON(out, doc)
}

// SummaryJSON writes a weekly summary as an indented JSON document.
func SummaryJSON(out io.Writer, sum *store.WeeklySummary, now time.Time) error {
	doc := jsonSummary{
		ExportedAt:    now.UTC().Format(time.RFC3339),
		WeekStart:     sum.WeekStart.Format(time.RFC3339),
		WeekEnd:       sum.WeekEnd.Format(time.RFC3339),
		TotalEarnings: sum.TotalEarnings,
		Projects:      []jsonProject{},
	}
	for _, p := range sum.Projects {
		secs := int64(p.Total / time.Second)
		doc.TotalSeconds += secs
		doc.Projects = append(doc.Projects, jsonProject{
			ID:          p.ProjectID,
			Name:        p.ProjectName,
			DurationSec: secs,
			Hours:       p.Hours(),
			EntryCount:  p.EntryCount,
			HourlyRate:  p.HourlyRate,
			Earnings:    p.Earnings,
		})
	}
	return writeJSON(out, doc)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
