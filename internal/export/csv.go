package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/protimer/internal/store"
)

// EntriesCSV writes one row per entry. names maps project ids to display
// names; unknown ids are written as "Unknown".
func EntriesCSV(out io.Writer, entries []store.TimeEntry, names map[string]string) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"ID", "Project", "Start", "End", "Duration (s)", "Duration", "Claude", "Description"}); err != nil {
		return err
	}

	for _, e := range entries {
		endStr := ""
		if e.EndTime != nil {
			endStr = e.EndTime.Local().Format(time.RFC3339)
		}
		row := []string{
			e.ID,
			projectName(names, e.ProjectID),
			e.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(int64(e.Duration()/time.Second), 10),
			formatDuration(e.Duration()),
			strconv.FormatBool(e.ClaudeActive),
			e.Description,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// SummaryCSV writes one row per project in the summary followed by a
// TOTAL row. Rate and earnings are empty for projects without a rate.
func SummaryCSV(out io.Writer, sum *store.WeeklySummary) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"Project", "Week Start", "Duration", "Hours", "Entries", "Rate", "Earnings"}); err != nil {
		return err
	}

	week := sum.WeekStart.Format(time.DateOnly)
	var total time.Duration
	var count int
	for _, p := range sum.Projects {
		total += p.Total
		count += p.EntryCount
		row := []string{
			p.ProjectName,
			week,
			formatDuration(p.Total),
			formatHours(p.Total),
			strconv.Itoa(p.EntryCount),
			formatOptional(p.HourlyRate),
			formatOptional(p.Earnings),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	totalRow := []string{
		"TOTAL",
		week,
		formatDuration(total),
		formatHours(total),
		strconv.Itoa(count),
		"",
		strconv.FormatFloat(sum.TotalEarnings, 'f', 2, 64),
	}
	if err := w.Write(totalRow); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// ToFile creates path and hands it to write.
func ToFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	return f.Close()
}

func projectName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return "Unknown"
}

func formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
