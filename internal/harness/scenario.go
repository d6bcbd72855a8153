package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mwhitfield/gantry/internal/project"
)

// Scenario is one conformance case: an initial project, a sequence of
// mutations with expected outcomes, and assertions over the final
// state.
type Scenario struct {
	// Name uniquely identifies the scenario; it doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains the behavior this scenario pins down.
	Description string `yaml:"description"`

	// Project is the initial project in wire form. The harness loads
	// it and runs one commit before the steps execute, so every step
	// starts from a materialized schedule.
	Project project.ProjectData `yaml:"project"`

	// Steps are the mutations to apply, in order.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final schedule and project state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one mutation. Exactly one of the action fields must be set.
type Step struct {
	// Set writes one editable field on an event.
	Set *SetStep `yaml:"set,omitempty"`

	// AddEvent registers a new event.
	AddEvent *project.EventData `yaml:"add_event,omitempty"`

	// RemoveEvent drops an event, its edges and its assignments.
	RemoveEvent *RefStep `yaml:"remove_event,omitempty"`

	// AddDependency inserts an edge through branch validation.
	AddDependency *project.DependencyData `yaml:"add_dependency,omitempty"`

	// RemoveDependency drops an edge.
	RemoveDependency *RefStep `yaml:"remove_dependency,omitempty"`

	// Commit runs one propagation pass.
	Commit *CommitStep `yaml:"commit,omitempty"`

	// Expect names the expected outcome of the step. Empty means
	// "ok". Mutation steps accept "rejected", "cyclic" and
	// "duplicate"; commit steps accept "cyclic" and "unsatisfiable".
	Expect string `yaml:"expect,omitempty"`
}

// SetStep writes a field on an event. Value takes the wire form the
// field expects, so dates are RFC 3339 strings and spans are duration
// literals.
type SetStep struct {
	Event string `yaml:"event"`
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// RefStep names the entity a removal step targets.
type RefStep struct {
	ID string `yaml:"id"`
}

// CommitStep has no parameters; `commit: {}` in the YAML.
type CommitStep struct{}

// Assertion validates the final state.
type Assertion struct {
	// Type selects the assertion:
	//   - "schedule": subset match on one event's committed schedule
	//   - "revision": the final committed revision
	//   - "editable": an event field's editability
	Type string `yaml:"type"`

	// Event names the target event (schedule, editable).
	Event string `yaml:"event,omitempty"`

	// Schedule fields to match; empty fields are not checked
	// (schedule).
	StartDate      string `yaml:"startDate,omitempty"`
	EndDate        string `yaml:"endDate,omitempty"`
	Duration       string `yaml:"duration,omitempty"`
	EarlyStartDate string `yaml:"earlyStartDate,omitempty"`
	EarlyEndDate   string `yaml:"earlyEndDate,omitempty"`

	// Revision is the expected final revision (revision).
	Revision int64 `yaml:"revision,omitempty"`

	// Field and Editable name the field and its expected editability
	// (editable).
	Field    string `yaml:"field,omitempty"`
	Editable bool   `yaml:"editable,omitempty"`
}

// Assertion type constants.
const (
	AssertSchedule = "schedule"
	AssertRevision = "revision"
	AssertEditable = "editable"
)

// Step outcome constants.
const (
	ExpectOk            = "ok"
	ExpectRejected      = "rejected"
	ExpectCyclic        = "cyclic"
	ExpectDuplicate     = "duplicate"
	ExpectUnsatisfiable = "unsatisfiable"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos surface as load errors instead of silently
// skipped steps.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	actions := 0
	var allowed []string
	if step.Set != nil {
		actions++
		allowed = []string{ExpectOk, ExpectRejected}
		if step.Set.Event == "" || step.Set.Field == "" {
			return fmt.Errorf("steps[%d].set: event and field are required", index)
		}
	}
	if step.AddEvent != nil {
		actions++
		allowed = []string{ExpectOk}
		if step.AddEvent.ID == "" {
			return fmt.Errorf("steps[%d].add_event: id is required", index)
		}
	}
	if step.RemoveEvent != nil {
		actions++
		allowed = []string{ExpectOk}
		if step.RemoveEvent.ID == "" {
			return fmt.Errorf("steps[%d].remove_event: id is required", index)
		}
	}
	if step.AddDependency != nil {
		actions++
		allowed = []string{ExpectOk, ExpectCyclic, ExpectDuplicate}
		if step.AddDependency.From == "" || step.AddDependency.To == "" {
			return fmt.Errorf("steps[%d].add_dependency: from and to are required", index)
		}
	}
	if step.RemoveDependency != nil {
		actions++
		allowed = []string{ExpectOk}
		if step.RemoveDependency.ID == "" {
			return fmt.Errorf("steps[%d].remove_dependency: id is required", index)
		}
	}
	if step.Commit != nil {
		actions++
		allowed = []string{ExpectOk, ExpectCyclic, ExpectUnsatisfiable}
	}

	if actions == 0 {
		return fmt.Errorf("steps[%d]: no action specified", index)
	}
	if actions > 1 {
		return fmt.Errorf("steps[%d]: exactly one action per step", index)
	}
	if step.Expect != "" && !contains(allowed, step.Expect) {
		return fmt.Errorf("steps[%d]: expect %q is not valid for this action (allowed: %v)", index, step.Expect, allowed)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertSchedule:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for schedule", index)
		}
	case AssertRevision:
		if a.Revision < 0 {
			return fmt.Errorf("assertions[%d]: revision must be non-negative", index)
		}
	case AssertEditable:
		if a.Event == "" || a.Field == "" {
			return fmt.Errorf("assertions[%d]: event and field are required for editable", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
