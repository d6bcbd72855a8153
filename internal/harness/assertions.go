package harness

import (
	"github.com/mwhitfield/gantry/internal/model"
	"github.com/mwhitfield/gantry/internal/project"
)

// applyAssertion checks one assertion against the final state and
// records any divergence on the result.
func applyAssertion(p *project.Project, result *Result, index int, a *Assertion) {
	switch a.Type {
	case AssertSchedule:
		assertSchedule(result, index, a)
	case AssertRevision:
		if result.Revision != a.Revision {
			result.AddError("assertions[%d]: revision is %d, want %d", index, result.Revision, a.Revision)
		}
	case AssertEditable:
		assertEditable(p, result, index, a)
	default:
		result.AddError("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
}

// assertSchedule is a subset match: only the fields the assertion
// spells out are compared.
func assertSchedule(result *Result, index int, a *Assertion) {
	var found *project.ScheduleData
	for i := range result.Schedule {
		if result.Schedule[i].Event == a.Event {
			found = &result.Schedule[i]
			break
		}
	}
	if found == nil {
		result.AddError("assertions[%d]: event %q has no committed schedule", index, a.Event)
		return
	}

	check := func(name, got, want string) {
		if want != "" && got != want {
			result.AddError("assertions[%d]: %s.%s is %q, want %q", index, a.Event, name, got, want)
		}
	}
	check("startDate", found.StartDate, a.StartDate)
	check("endDate", found.EndDate, a.EndDate)
	check("duration", found.Duration, a.Duration)
	check("earlyStartDate", found.EarlyStartDate, a.EarlyStartDate)
	check("earlyEndDate", found.EarlyEndDate, a.EarlyEndDate)
}

func assertEditable(p *project.Project, result *Result, index int, a *Assertion) {
	editable, err := p.IsEditable(model.EventID(a.Event), a.Field)
	if err != nil {
		result.AddError("assertions[%d]: %v", index, err)
		return
	}
	if editable == nil {
		result.AddError("assertions[%d]: %q is not a schema field", index, a.Field)
		return
	}
	if *editable != a.Editable {
		result.AddError("assertions[%d]: %s.%s editable is %v, want %v", index, a.Event, a.Field, *editable, a.Editable)
	}
}
