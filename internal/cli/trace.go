package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/gantry/internal/model"
	"github.com/mwhitfield/gantry/internal/project"
)

// EventTrace explains one event's placement: the committed dates plus
// the incoming edges that constrained them.
type EventTrace struct {
	Event          string       `json:"event"`
	Mode           string       `json:"mode"` // "auto" or "manual"
	StartDate      string       `json:"startDate,omitempty"`
	EndDate        string       `json:"endDate,omitempty"`
	EarlyStartDate string       `json:"earlyStartDate,omitempty"`
	EarlyEndDate   string       `json:"earlyEndDate,omitempty"`
	Constraint     string       `json:"constraint,omitempty"`
	ConstraintDate string       `json:"constraintDate,omitempty"`
	Calendar       string       `json:"calendar,omitempty"`
	Predecessors   []EdgeDetail `json:"predecessors,omitempty"`
}

// EdgeDetail is one incoming dependency in a trace.
type EdgeDetail struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Lag  string `json:"lag,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <project-dir>",
		Short: "Print the per-event derivation trace",
		Long: `Compile and commit the project, then print how each event's dates
came to be: scheduling mode, calendar, constraint, and the incoming
dependencies that floored or capped its placement.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], cmd)
		},
	}
}

func runTrace(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	p, err := loadAndCommit(formatter, dir)
	if err != nil {
		return err
	}

	traces := buildTraces(p)
	if opts.Format == "json" {
		return formatter.SuccessJSON(map[string]any{
			"revision": p.Revision(),
			"trace":    traces,
		})
	}
	for _, tr := range traces {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", tr.Event, tr.Mode)
		fmt.Fprintf(formatter.Writer, "  start  %s\n", tr.StartDate)
		fmt.Fprintf(formatter.Writer, "  end    %s\n", tr.EndDate)
		if tr.EarlyStartDate != tr.StartDate || tr.EarlyEndDate != tr.EndDate {
			fmt.Fprintf(formatter.Writer, "  early  %s .. %s\n", tr.EarlyStartDate, tr.EarlyEndDate)
		}
		if tr.Constraint != "" {
			fmt.Fprintf(formatter.Writer, "  constraint %s %s\n", tr.Constraint, tr.ConstraintDate)
		}
		if tr.Calendar != "" {
			fmt.Fprintf(formatter.Writer, "  calendar %s\n", tr.Calendar)
		}
		for _, edge := range tr.Predecessors {
			lag := ""
			if edge.Lag != "" {
				lag = " lag " + edge.Lag
			}
			fmt.Fprintf(formatter.Writer, "  after %s (%s%s)\n", edge.From, edge.Type, lag)
		}
	}
	return nil
}

func buildTraces(p *project.Project) []EventTrace {
	incoming := make(map[model.EventID][]EdgeDetail)
	for _, dep := range p.Dependencies().All() {
		if !dep.Active {
			continue
		}
		lag := ""
		if dep.Lag != 0 {
			lag = dep.Lag.String()
		}
		incoming[dep.To] = append(incoming[dep.To], EdgeDetail{
			ID:   string(dep.ID),
			From: string(dep.From),
			Type: dep.Type.String(),
			Lag:  lag,
		})
	}

	var traces []EventTrace
	for _, sd := range p.ScheduleSnapshot() {
		id := model.EventID(sd.Event)
		tr := EventTrace{
			Event:          sd.Event,
			Mode:           "auto",
			StartDate:      sd.StartDate,
			EndDate:        sd.EndDate,
			EarlyStartDate: sd.EarlyStartDate,
			EarlyEndDate:   sd.EarlyEndDate,
			Predecessors:   incoming[id],
		}
		if rec, ok := p.Events().Get(id); ok {
			if rec.ManuallyScheduled {
				tr.Mode = "manual"
			}
			if rec.ConstraintType != model.ConstraintNone {
				tr.Constraint = rec.ConstraintType.String()
				tr.ConstraintDate = rec.ConstraintDate.UTC().Format(time.RFC3339)
			}
			tr.Calendar = string(rec.CalendarID)
		}
		traces = append(traces, tr)
	}
	return traces
}
