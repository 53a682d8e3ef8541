package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sadopc/protimer/internal/backend"
	"github.com/sadopc/protimer/internal/export"
	"github.com/sadopc/protimer/internal/store"
	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var week, format, outPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Weekly hours and earnings per project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(week, app.now())
			if err != nil {
				return err
			}
			sum, err := app.Store.WeeklySummary(backend.WeekStart(day, app.Store.WeekStartDay()))
			if err != nil {
				return err
			}

			var write func(io.Writer) error
			switch format {
			case "table":
				write = func(w io.Writer) error { return printSummary(w, sum) }
			case "csv":
				write = func(w io.Writer) error { return export.SummaryCSV(w, sum) }
			case "json":
				write = func(w io.Writer) error { return export.SummaryJSON(w, sum, app.now()) }
			default:
				return fmt.Errorf("unknown format %q (want table, csv or json)", format)
			}

			if outPath == "" {
				return write(cmd.OutOrStdout())
			}
			if err := export.ToFile(outPath, write); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Any day in the week to summarise (YYYY-MM-DD, default this week)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, csv, json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")

	return cmd
}

func printSummary(out io.Writer, sum *store.WeeklySummary) error {
	last := sum.WeekEnd.AddDate(0, 0, -1)
	fmt.Fprintf(out, "Week of %s - %s\n", sum.WeekStart.Format("Jan 2"), last.Format("Jan 2, 2006"))
	if len(sum.Projects) == 0 {
		fmt.Fprintln(out, "No time recorded.")
		return nil
	}

	rows := make([][]string, 0, len(sum.Projects))
	var total time.Duration
	for _, p := range sum.Projects {
		earned := "-"
		if p.Earnings != nil {
			earned = money(*p.Earnings)
		}
		total += p.Total
		rows = append(rows, []string{
			p.ProjectName,
			hours(p.Total),
			strconv.Itoa(p.EntryCount),
			rateString(p.HourlyRate),
			earned,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Project", "Hours", "Entries", "Rate", "Earned"}, rows))
	fmt.Fprintf(out, "Total %s  Earned %s\n", hours(total), money(sum.TotalEarnings))
	return nil
}
