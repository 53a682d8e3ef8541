package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/protimer/internal/store"
	"github.com/spf13/cobra"
)

const defaultColor = "#6C63FF"

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectRateCmd(app),
		newProjectRenameCmd(app),
		newProjectRemoveCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var color, rate string

	cmd := &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Register a project directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("project name is required")
			}
			path, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", args[1], err)
			}
			hourly, err := store.ParseRate(rate)
			if err != nil {
				return err
			}

			p, err := app.Store.CreateProject(name, path, color, hourly)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Name, shortID(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", defaultColor, "Display color (hex)")
	cmd.Flags().StringVar(&rate, "rate", "", "Hourly rate")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Store.ListProjects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{shortID(p.ID), p.Name, p.Path, rateString(p.HourlyRate)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Path", "Rate"}, rows))
			return nil
		},
	}
}

func newProjectRateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <project> <rate|none>",
		Short: "Set or clear a project's hourly rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}
			rate, err := store.ParseRate(args[1])
			if err != nil {
				return err
			}
			if err := app.Store.UpdateProjectRate(p.ID, rate); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate for %s: %s\n", p.Name, rateString(rate))
			return nil
		},
	}
}

func newProjectRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if name == "" {
				return fmt.Errorf("project name is required")
			}
			if err := app.Store.UpdateProjectName(p.ID, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", p.Name, name)
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <project>",
		Aliases: []string{"remove"},
		Short:   "Delete a project with its entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.ResolveProject(args[0])
			if err != nil {
				return err
			}
			if err := app.Store.DeleteProject(p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", p.Name)
			return nil
		},
	}
}
