package harness

import (
	"fmt"

	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/graph"
	"github.com/mwhitfield/gantry/internal/model"
	"github.com/mwhitfield/gantry/internal/project"
)

// Run executes a scenario. The project runs with auto-commit off and
// a sequence ID generator, so every commit is an explicit step and
// every generated ID is deterministic.
//
// The returned error covers setup failures only (unloadable project,
// broken step data). Expectation mismatches and failed assertions are
// reported through the Result.
func Run(scenario *Scenario) (*Result, error) {
	p := project.New(
		project.WithAutoCommit(false),
		project.WithIDGenerator(project.NewSequenceGenerator("gen")),
	)
	if err := p.Load(scenario.Project); err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	result := &Result{Pass: true}

	// The initial commit materializes the loaded schedule and is part
	// of the trace: a scenario whose setup is already rejected pins
	// that down explicitly.
	result.addCommit(p.Commit())

	for i, step := range scenario.Steps {
		if err := runStep(p, result, i, &step); err != nil {
			return nil, err
		}
	}

	result.Schedule = p.ScheduleSnapshot()
	result.Revision = p.Revision()

	for i, a := range scenario.Assertions {
		applyAssertion(p, result, i, &a)
	}
	return result, nil
}

func runStep(p *project.Project, result *Result, index int, step *Step) error {
	switch {
	case step.Set != nil:
		err := p.Set(model.EventID(step.Set.Event), step.Set.Field, step.Set.Value)
		return checkMutation(result, index, step.Expect, err)

	case step.AddEvent != nil:
		rec, err := step.AddEvent.Record()
		if err != nil {
			return fmt.Errorf("steps[%d].add_event: %w", index, err)
		}
		return checkMutation(result, index, step.Expect, p.Events().Add(rec))

	case step.RemoveEvent != nil:
		p.Events().Remove(model.EventID(step.RemoveEvent.ID))
		return nil

	case step.AddDependency != nil:
		rec, err := step.AddDependency.Record()
		if err != nil {
			return fmt.Errorf("steps[%d].add_dependency: %w", index, err)
		}
		_, err = p.Dependencies().Add(rec)
		return checkMutation(result, index, step.Expect, err)

	case step.RemoveDependency != nil:
		p.Dependencies().Remove(model.DependencyID(step.RemoveDependency.ID))
		return nil

	case step.Commit != nil:
		res := p.Commit()
		result.addCommit(res)
		if res.Err != nil {
			return fmt.Errorf("steps[%d].commit: %w", index, res.Err)
		}
		checkOutcome(result, index, step.Expect, res.Outcome)
		return nil
	}
	return fmt.Errorf("steps[%d]: no action specified", index)
}

// checkMutation matches a mutation step's error against its expected
// outcome. A mismatch fails the result; the run continues so one pass
// reports every divergence.
func checkMutation(result *Result, index int, expect string, err error) error {
	got := classifyMutation(err)
	want := expect
	if want == "" {
		want = ExpectOk
	}
	if got != want {
		if err != nil {
			result.AddError("steps[%d]: expected %s, got %s (%v)", index, want, got, err)
		} else {
			result.AddError("steps[%d]: expected %s, got %s", index, want, got)
		}
	}
	return nil
}

func classifyMutation(err error) string {
	switch {
	case err == nil:
		return ExpectOk
	case graph.IsCyclicDependencyError(err):
		return ExpectCyclic
	case graph.IsDuplicateDependencyError(err):
		return ExpectDuplicate
	default:
		return ExpectRejected
	}
}

func checkOutcome(result *Result, index int, expect string, got engine.Outcome) {
	want := expect
	if want == "" {
		want = ExpectOk
	}
	if got.String() != want {
		result.AddError("steps[%d].commit: expected %s, got %s", index, want, got)
	}
}
