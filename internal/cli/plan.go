package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/project"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <project-dir>",
		Short: "Compute and print the schedule",
		Long: `Compile the project definition, run one commit of the propagation
engine, and print the resulting schedule. A rejected schedule (cycle
or unsatisfiable constraint) exits non-zero with the typed cause.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], cmd)
		},
	}
}

func runPlan(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	p, err := loadAndCommit(formatter, dir)
	if err != nil {
		return err
	}
	return printSchedule(formatter, p)
}

// loadAndCommit compiles the definition in dir, loads it into a fresh
// project and runs one commit. Rejections are reported with their typed
// cause and returned as ExitErrors.
func loadAndCommit(formatter *OutputFormatter, dir string) (*project.Project, error) {
	result, loadErrs := LoadDefinition(dir)
	if result == nil || len(loadErrs) > 0 {
		code, msg := summarizeLoadErrors(loadErrs)
		formatter.Error(code, msg, nil)
		return nil, NewExitError(ExitCommandError, msg)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	p := project.New(project.WithAutoCommit(false))
	if err := p.Load(*result.Data); err != nil {
		formatter.Error(ErrCodeDefinition, err.Error(), nil)
		return nil, NewExitError(ExitCommandError, err.Error())
	}

	res := p.Commit()
	if res.Err != nil {
		formatter.Error(ErrCodeGeneric, res.Err.Error(), nil)
		return nil, NewExitError(ExitCommandError, res.Err.Error())
	}
	switch res.Outcome {
	case engine.OutcomeCyclic:
		msg := describeRejection(res)
		formatter.Error(ErrCodeCyclic, msg, nil)
		return nil, NewExitError(ExitFailure, msg)
	case engine.OutcomeUnsatisfiable:
		msg := describeRejection(res)
		formatter.Error(ErrCodeUnsatisfiable, msg, nil)
		return nil, NewExitError(ExitFailure, msg)
	}
	return p, nil
}

func summarizeLoadErrors(errs []error) (string, string) {
	if len(errs) == 0 {
		return ErrCodeGeneric, "load failed"
	}
	var loadErr *LoadError
	if errors.As(errs[0], &loadErr) && len(errs) == 1 {
		return loadErr.Code, loadErr.Message
	}
	msg := fmt.Sprintf("%d error(s) in project definition; run validate for details: %v", len(errs), errs[0])
	return ErrCodeDefinition, msg
}

func describeRejection(res engine.CommitResult) string {
	if err, ok := res.RejectedWith.(error); ok {
		return "schedule rejected: " + err.Error()
	}
	return fmt.Sprintf("schedule rejected: %v", res.RejectedWith)
}

func printSchedule(formatter *OutputFormatter, p *project.Project) error {
	if formatter.Format == "json" {
		return formatter.SuccessJSON(map[string]any{
			"revision": p.Revision(),
			"schedule": p.ScheduleSnapshot(),
		})
	}
	w := tabwriter.NewWriter(formatter.Writer, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT\tSTART\tEND\tDURATION\tEARLY START\tEARLY END")
	for _, s := range p.ScheduleSnapshot() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Event, s.StartDate, s.EndDate, s.Duration, s.EarlyStartDate, s.EarlyEndDate)
	}
	return w.Flush()
}
