// Package cli is protimer's command line. Without a subcommand it runs the
// interactive dashboard on a terminal and prints the status table otherwise.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sadopc/protimer/internal/config"
	"github.com/sadopc/protimer/internal/logging"
	"github.com/sadopc/protimer/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// App holds what every command needs. Store and Log are opened lazily from
// the flags unless they are already set.
type App struct {
	Home       string
	ConfigPath string
	LogLevel   string

	Config config.Config
	Store  *store.Store
	Log    *logrus.Logger
	Now    func() time.Time

	closers []io.Closer
}

// Execute runs the root command against os.Args.
func Execute() error {
	app := &App{}
	defer app.Close()
	return NewRootCmd(app).Execute()
}

// NewRootCmd creates the top-level "protimer" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "protimer",
		Short:         "Per-project time tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(cmd.OutOrStdout()) {
				return runTUI(cmd.Context(), app)
			}
			return printStatus(cmd, app)
		},
	}

	root.PersistentFlags().StringVar(&app.Home, "home", "", "data directory (default $"+config.EnvHome+" or ~/.protimer)")
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newTUICmd(app),
		newStatusCmd(app),
		newProjectCmd(app),
		newStartCmd(app),
		newStopCmd(app),
		newEntriesCmd(app),
		newSummaryCmd(app),
		newNotifyCmd(app),
	)

	return root
}

func (a *App) open() error {
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.Store != nil {
		if a.Log == nil {
			a.Log = logging.Discard()
		}
		return nil
	}

	home := a.Home
	if home == "" {
		h, err := config.Home()
		if err != nil {
			return err
		}
		home = h
	}
	cfg, err := config.Load(home, a.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}
	a.Config = cfg

	log, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.Log = log
	a.closers = append(a.closers, closer)

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.Store = s
	a.closers = append(a.closers, s)
	return nil
}

// Close releases whatever open acquired, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) logger(component string) *logrus.Entry {
	return logging.Component(a.Log, component)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
