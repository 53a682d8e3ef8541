package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/protimer/internal/backend"
	"github.com/sadopc/protimer/internal/tracker"
	"github.com/sadopc/protimer/internal/tui"
	"github.com/spf13/cobra"
)

const (
	indicatorFile = "indicator"
	pidFile       = "protimer.pid"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
}

func runTUI(ctx context.Context, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.Config
	log := app.logger("tui")

	activity := backend.NewActivityClock(app.now())
	b := backend.NewLocal(app.Store,
		backend.WithIdleSource(activity),
		backend.WithClock(app.now),
		backend.WithLogger(app.logger("backend")),
	)
	indicator := backend.NewFileIndicator(filepath.Join(cfg.DataDir, indicatorFile))
	trackerCfg := tracker.Config{
		IdleThreshold: app.Store.IdleTimeout(cfg.IdleThreshold.Std()),
		Tolerance:     cfg.ConvergenceTolerance.Std(),
	}
	session := tracker.NewSession(trackerCfg,
		tracker.WithIndicator(indicator),
		tracker.WithLogger(app.logger("tracker")),
	)

	model := tui.NewApp(ctx, session, b, app.Store, tui.Options{
		PollInterval:      cfg.PollInterval.Std(),
		FrameInterval:     cfg.FrameInterval.Std(),
		IdleCheckInterval: cfg.IdleCheckInterval.Std(),
		FetchTimeout:      cfg.FetchTimeout.Std(),
		Now:               app.now,
		Logger:            log,
		Activity:          activity,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	pid := filepath.Join(cfg.DataDir, pidFile)
	if err := os.WriteFile(pid, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		log.WithError(err).Warn("write pid file")
	}
	defer os.Remove(pid)

	stopForward := forwardActivity(p)
	defer stopForward()

	log.Info("dashboard started")
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if ierr := indicator.SetTracking(false); ierr != nil {
		log.WithError(ierr).Debug("reset activity indicator")
	}
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	log.Info("dashboard stopped")
	return nil
}

func newNotifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Tell a running dashboard that tracking data changed",
		Long: "notify signals the running dashboard to refresh immediately. " +
			"Use it from editor or assistant hooks after writing tracking data.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filepath.Join(app.Config.DataDir, pidFile))
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No dashboard running.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read pid file: %w", err)
			}
			pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
			if err != nil {
				return fmt.Errorf("invalid pid file: %w", err)
			}
			if err := signalActivity(pid); err != nil {
				return fmt.Errorf("notify dashboard %d: %w", pid, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notified dashboard (pid %d).\n", pid)
			return nil
		},
	}
}
