package cli

import (
	"fmt"
	"strconv"

	"github.com/sadopc/protimer/internal/backend"
	"github.com/sadopc/protimer/internal/tracker"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-project time and what is being tracked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStatus(cmd, app)
		},
	}
}

// printStatus fetches one snapshot and prints it projected to now.
func printStatus(cmd *cobra.Command, app *App) error {
	out := cmd.OutOrStdout()
	b := backend.NewLocal(app.Store,
		backend.WithClock(app.now),
		backend.WithLogger(app.logger("backend")),
	)
	st, err := b.FetchStatus(cmd.Context())
	if err != nil {
		return err
	}

	now := app.now()
	session := tracker.NewSession(tracker.Config{}, tracker.WithLogger(app.logger("tracker")))
	session.ApplyStatus(st, now)
	views := session.Views(now)

	if len(views) == 0 {
		fmt.Fprintln(out, "No projects. Add one with: protimer project add <name> <path>")
		return nil
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		state := "idle"
		if v.IsTracking {
			state = "tracking (auto)"
			if v.ManualMode {
				state = "tracking"
			}
		}
		earned := "-"
		if v.HourlyRate != nil {
			earned = money(tracker.Earnings(v.Times.Week, *v.HourlyRate))
		}
		rows = append(rows, []string{
			v.Name,
			state,
			tracker.FormatElapsed(v.Times.Today),
			tracker.FormatElapsed(v.Times.Week),
			rateString(v.HourlyRate),
			earned,
			strconv.Itoa(v.ClaudeSessionCount),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Project", "State", "Today", "Week", "Rate", "Earned", "Claude"},
		rows,
	))

	totals := tracker.Sum(views)
	line := fmt.Sprintf("Today %s  Week %s", tracker.FormatElapsed(totals.Today), tracker.FormatElapsed(totals.Week))
	if totals.HasRate {
		line += "  Earned " + money(totals.Earnings)
	}
	if st.ClaudeTotal > 0 {
		line += "  Claude " + tracker.FormatElapsed(st.ClaudeTotal)
	}
	fmt.Fprintln(out, line)
	return nil
}
