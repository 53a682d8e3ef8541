package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/protimer/internal/store"
	"github.com/sadopc/protimer/internal/tracker"
	"github.com/spf13/cobra"
)

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <project>",
		Short: "Start tracking a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}
			sess, err := app.Store.StartSession(p.ID, true, false, app.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s since %s\n", p.Name, sess.StartTime.Format("15:04:05"))
			return nil
		},
	}
}

func newStopCmd(app *App) *cobra.Command {
	var endStr string
	var idle time.Duration

	cmd := &cobra.Command{
		Use:   "stop <project>",
		Short: "Stop tracking a project",
		Long: "stop closes the project's open session. --end sets the recorded end " +
			"time; --idle records the session as ending that long ago.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}

			now := app.now()
			var end *time.Time
			switch {
			case endStr != "":
				t, err := parseTime(endStr)
				if err != nil {
					return err
				}
				end = &t
			case idle < 0:
				return fmt.Errorf("--idle must not be negative")
			case idle > 0:
				t := now.Add(-idle)
				end = &t
			}

			entry, err := app.Store.StopSession(p.ID, end, now)
			if errors.Is(err, store.ErrNoActiveSession) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not being tracked\n", p.Name)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s after %s\n", p.Name, tracker.FormatElapsed(entry.Duration()))
			return nil
		},
	}

	cmd.Flags().StringVar(&endStr, "end", "", "End time (RFC3339 or YYYY-MM-DD HH:MM)")
	cmd.Flags().DurationVar(&idle, "idle", 0, "Discard this much idle time from the end")
	cmd.MarkFlagsMutuallyExclusive("end", "idle")

	return cmd
}
