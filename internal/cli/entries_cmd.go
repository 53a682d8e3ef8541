package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/sadopc/protimer/internal/export"
	"github.com/sadopc/protimer/internal/store"
	"github.com/sadopc/protimer/internal/tracker"
	"github.com/spf13/cobra"
)

func newEntriesCmd(app *App) *cobra.Command {
	var day, format string

	cmd := &cobra.Command{
		Use:   "entries <project>",
		Short: "List, add and remove a project's time entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}
			from, err := parseDay(day, app.now())
			if err != nil {
				return err
			}
			entries, err := app.Store.ListEntries(p.ID, from, from.AddDate(0, 0, 1))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			names := map[string]string{p.ID: p.Name}
			switch format {
			case "csv":
				return export.EntriesCSV(out, entries, names)
			case "json":
				return export.EntriesJSON(out, entries, names, app.now())
			case "table":
				return printEntries(out, p, from, entries)
			}
			return fmt.Errorf("unknown format %q (want table, csv or json)", format)
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Day to list (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, csv, json")

	cmd.AddCommand(
		newEntriesAddCmd(app),
		newEntriesRemoveCmd(app),
	)

	return cmd
}

func printEntries(out io.Writer, p *store.Project, day time.Time, entries []store.TimeEntry) error {
	if len(entries) == 0 {
		fmt.Fprintf(out, "No entries for %s on %s.\n", p.Name, day.Format(time.DateOnly))
		return nil
	}

	var total time.Duration
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		end := "running"
		if e.EndTime != nil {
			end = e.EndTime.Local().Format("15:04:05")
		}
		source := "manual"
		if e.ClaudeActive {
			source = "claude"
		}
		total += e.Duration()
		rows = append(rows, []string{
			e.ID,
			e.StartTime.Local().Format("15:04:05"),
			end,
			tracker.FormatElapsed(e.Duration()),
			source,
		})
	}
	fmt.Fprintf(out, "%s on %s\n", p.Name, day.Format(time.DateOnly))
	fmt.Fprintln(out, renderTable([]string{"ID", "Start", "End", "Duration", "Source"}, rows))
	fmt.Fprintf(out, "Total %s (%s)\n", tracker.FormatElapsed(total), hours(total))
	return nil
}

func newEntriesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project> <start> <end>",
		Short: "Record a finished block of time",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}
			start, err := parseTime(args[1])
			if err != nil {
				return err
			}
			end, err := parseTime(args[2])
			if err != nil {
				return err
			}
			e, err := app.Store.AddEntry(p.ID, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s [%s]\n", tracker.FormatElapsed(e.Duration()), p.Name, e.ID)
			return nil
		},
	}
}

func newEntriesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <entry-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a time entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteEntry(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", args[0])
			return nil
		},
	}
}
