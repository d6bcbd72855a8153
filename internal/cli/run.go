package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/gantry/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "run <project-dir>",
		Short: "Compute the schedule and persist the project",
		Long: `Compile the project definition, commit the schedule, and save the
authoritative state to a SQLite database. Derived values are not
stored; loading the database recomputes them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "gantry.db", "database path")
	return cmd
}

func runRun(opts *RootOptions, dir, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	p, err := loadAndCommit(formatter, dir)
	if err != nil {
		return err
	}

	s, err := store.Open(dbPath)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer s.Close()

	if err := s.SaveProject(cmd.Context(), p.Snapshot(), p.Revision()); err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(map[string]any{
			"revision": p.Revision(),
			"db":       dbPath,
			"events":   len(p.Schedules()),
		})
	}
	fmt.Fprintf(formatter.Writer, "Saved %d event(s) at revision %d to %s\n",
		len(p.Schedules()), p.Revision(), dbPath)
	return nil
}
