package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult is the payload of a validate run.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	FileCount int      `json:"fileCount"`
	Errors    []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project-dir>",
		Short: "Validate a project definition without scheduling",
		Long: `Compile the CUE project definition and report every defect:
unparseable values, duplicate IDs, dangling references, malformed
calendar rules. No schedule is computed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, loadErrs := LoadDefinition(dir)
	if result == nil {
		var loadErr *LoadError
		if errors.As(loadErrs[0], &loadErr) {
			formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		formatter.Error(ErrCodeGeneric, loadErrs[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrs[0].Error())
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	if len(loadErrs) > 0 {
		messages := make([]string, len(loadErrs))
		for i, err := range loadErrs {
			messages[i] = err.Error()
		}
		if opts.Format == "json" {
			formatter.Error(ErrCodeDefinition,
				fmt.Sprintf("%d validation error(s)", len(messages)),
				ValidationResult{Valid: false, FileCount: result.FileCount, Errors: messages})
		} else {
			for _, msg := range messages {
				fmt.Fprintln(formatter.Writer, msg)
			}
			fmt.Fprintf(formatter.Writer, "%d validation error(s)\n", len(messages))
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(ValidationResult{Valid: true, FileCount: result.FileCount})
	}
	fmt.Fprintf(formatter.Writer, "OK: %d event(s), %d dependency(ies), %d calendar(s)\n",
		len(result.Data.Events), len(result.Data.Dependencies), len(result.Data.Calendars))
	return nil
}
