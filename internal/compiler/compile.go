// Package compiler turns CUE project definitions into wire data.
//
// A project definition is a CUE package with top-level blocks keyed by
// record ID:
//
//	project: {
//		startDate: "2024-01-01T00:00:00Z"
//		calendar:  "office"
//	}
//
//	calendar: office: {
//		intervals: [{rule: "every mon,tue,wed,thu,fri at 09:00-17:00", working: true}]
//	}
//
//	event: dig: {duration: "8h"}
//	event: pour: {duration: "16h"}
//
//	dependency: d1: {from: "dig", to: "pour", lag: "2h"}
//
// Compilation uses the CUE SDK's Go API directly, collects every
// defect instead of stopping at the first, and performs the semantic
// validation a load must pass: parseable values, unique IDs, resolvable
// references. Cycle detection is not done here; that is the propagation
// engine's job, against a transactional branch.
package compiler

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"

	"github.com/mwhitfield/gantry/internal/calendar"
	"github.com/mwhitfield/gantry/internal/model"
	"github.com/mwhitfield/gantry/internal/project"
)

// CompileProject parses a built CUE value into wire data. All defects
// are collected; the returned data is meaningful only when the error
// slice is empty.
func CompileProject(v cue.Value) (*project.ProjectData, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError("", err)}
	}

	var errs []error
	data := &project.ProjectData{}

	if pv := v.LookupPath(cue.ParsePath("project")); pv.Exists() {
		errs = append(errs, parseProjectBlock(pv, data)...)
	}
	errs = append(errs, parseBlock(v, "calendar", func(id string, cv cue.Value) []error {
		cd, es := parseCalendar(id, cv)
		if len(es) == 0 {
			data.Calendars = append(data.Calendars, cd)
		}
		return es
	})...)
	errs = append(errs, parseBlock(v, "event", func(id string, ev cue.Value) []error {
		ed, es := parseEvent(id, ev)
		if len(es) == 0 {
			data.Events = append(data.Events, ed)
		}
		return es
	})...)
	errs = append(errs, parseBlock(v, "dependency", func(id string, dv cue.Value) []error {
		dd, es := parseDependency(id, dv)
		if len(es) == 0 {
			data.Dependencies = append(data.Dependencies, dd)
		}
		return es
	})...)
	errs = append(errs, parseBlock(v, "resource", func(id string, rv cue.Value) []error {
		rd, es := parseResource(id, rv)
		if len(es) == 0 {
			data.Resources = append(data.Resources, rd)
		}
		return es
	})...)
	errs = append(errs, parseBlock(v, "assignment", func(id string, av cue.Value) []error {
		ad, es := parseAssignment(id, av)
		if len(es) == 0 {
			data.Assignments = append(data.Assignments, ad)
		}
		return es
	})...)

	errs = append(errs, Validate(data)...)
	return data, errs
}

// parseBlock iterates the ID-keyed entries of one top-level block.
func parseBlock(v cue.Value, name string, fn func(id string, entry cue.Value) []error) []error {
	block := v.LookupPath(cue.ParsePath(name))
	if !block.Exists() {
		return nil
	}
	iter, err := block.Fields()
	if err != nil {
		return []error{formatCUEError(name, err)}
	}
	var errs []error
	for iter.Next() {
		errs = append(errs, fn(iter.Label(), iter.Value())...)
	}
	return errs
}

func parseProjectBlock(v cue.Value, data *project.ProjectData) []error {
	var errs []error
	data.StartDate = optString(&errs, v, "project", "startDate")
	data.ProjectCalendar = optString(&errs, v, "project", "calendar")
	return errs
}

func parseCalendar(id string, v cue.Value) (project.CalendarData, []error) {
	path := "calendar." + id
	cd := project.CalendarData{ID: id}
	var errs []error

	cd.Name = optString(&errs, v, path, "name")
	cd.Unworking = optBool(&errs, v, path, "unspecifiedNonWorking")

	ivs := v.LookupPath(cue.ParsePath("intervals"))
	if ivs.Exists() {
		list, err := ivs.List()
		if err != nil {
			errs = append(errs, formatCUEError(path+".intervals", err))
			return cd, errs
		}
		for i := 0; list.Next(); i++ {
			ivPath := fmt.Sprintf("%s.intervals[%d]", path, i)
			iv, es := parseInterval(ivPath, list.Value())
			if len(es) > 0 {
				errs = append(errs, es...)
				continue
			}
			cd.Intervals = append(cd.Intervals, iv)
		}
	}
	return cd, errs
}

func parseInterval(path string, v cue.Value) (project.IntervalData, []error) {
	var iv project.IntervalData
	var errs []error
	iv.Rule = optString(&errs, v, path, "rule")
	iv.Start = optString(&errs, v, path, "start")
	iv.End = optString(&errs, v, path, "end")
	iv.Working = optBool(&errs, v, path, "working")

	switch {
	case iv.Rule != "" && (iv.Start != "" || iv.End != ""):
		errs = append(errs, &CompileError{Path: path, Message: "interval takes a rule or start/end bounds, not both", Pos: v.Pos()})
	case iv.Rule == "" && (iv.Start == "" || iv.End == ""):
		errs = append(errs, &CompileError{Path: path, Message: "interval requires a rule or both start and end", Pos: v.Pos()})
	}
	return iv, errs
}

func parseEvent(id string, v cue.Value) (project.EventData, []error) {
	path := "event." + id
	ed := project.EventData{ID: id}
	var errs []error
	ed.Name = optString(&errs, v, path, "name")
	ed.StartDate = optString(&errs, v, path, "startDate")
	ed.EndDate = optString(&errs, v, path, "endDate")
	ed.Duration = optString(&errs, v, path, "duration")
	ed.ConstraintType = optString(&errs, v, path, "constraintType")
	ed.ConstraintDate = optString(&errs, v, path, "constraintDate")
	ed.Calendar = optString(&errs, v, path, "calendar")
	ed.ManuallyScheduled = optBool(&errs, v, path, "manuallyScheduled")
	return ed, errs
}

func parseDependency(id string, v cue.Value) (project.DependencyData, []error) {
	path := "dependency." + id
	dd := project.DependencyData{ID: id}
	var errs []error
	dd.From = requiredString(&errs, v, path, "from")
	dd.To = requiredString(&errs, v, path, "to")
	dd.Type = optString(&errs, v, path, "type")
	dd.Lag = optString(&errs, v, path, "lag")
	dd.CalendarSource = optString(&errs, v, path, "calendarSource")
	dd.Inactive = optBool(&errs, v, path, "inactive")
	return dd, errs
}

func parseResource(id string, v cue.Value) (project.ResourceData, []error) {
	path := "resource." + id
	rd := project.ResourceData{ID: id}
	var errs []error
	rd.Name = optString(&errs, v, path, "name")
	rd.Calendar = optString(&errs, v, path, "calendar")
	return rd, errs
}

func parseAssignment(id string, v cue.Value) (project.AssignmentData, []error) {
	path := "assignment." + id
	ad := project.AssignmentData{ID: id}
	var errs []error
	ad.Event = requiredString(&errs, v, path, "event")
	ad.Resource = requiredString(&errs, v, path, "resource")
	if uv := v.LookupPath(cue.ParsePath("units")); uv.Exists() {
		units, err := uv.Int64()
		if err != nil {
			errs = append(errs, formatCUEError(path+".units", err))
		} else {
			ad.Units = int(units)
		}
	}
	return ad, errs
}

// optString reads an optional string field, accumulating any defect
// onto errs.
func optString(errs *[]error, v cue.Value, path, field string) string {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return ""
	}
	s, err := fv.String()
	if err != nil {
		*errs = append(*errs, formatCUEError(path+"."+field, err))
		return ""
	}
	return s
}

func requiredString(errs *[]error, v cue.Value, path, field string) string {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		*errs = append(*errs, &CompileError{Path: path, Field: field, Message: "required field is missing", Pos: v.Pos()})
		return ""
	}
	s, err := fv.String()
	if err != nil {
		*errs = append(*errs, formatCUEError(path+"."+field, err))
		return ""
	}
	return s
}

func optBool(errs *[]error, v cue.Value, path, field string) bool {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false
	}
	b, err := fv.Bool()
	if err != nil {
		*errs = append(*errs, formatCUEError(path+"."+field, err))
		return false
	}
	return b
}

// Validate performs the semantic checks a compiled definition must
// pass before loading: parseable values, unique IDs, resolvable
// references. All defects are collected.
func Validate(data *project.ProjectData) []error {
	var errs []error
	fail := func(path, field, msg string) {
		errs = append(errs, &CompileError{Path: path, Field: field, Message: msg})
	}

	checkTime := func(path, field, s string) {
		if s == "" {
			return
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			fail(path, field, fmt.Sprintf("not an RFC 3339 timestamp: %q", s))
		}
	}
	checkDuration := func(path, field, s string) {
		if s == "" {
			return
		}
		if _, err := time.ParseDuration(s); err != nil {
			fail(path, field, fmt.Sprintf("not a duration: %q", s))
		}
	}

	checkTime("project", "startDate", data.StartDate)

	calendars := make(map[string]bool)
	for _, cd := range data.Calendars {
		path := "calendar." + cd.ID
		if calendars[cd.ID] {
			fail(path, "", "duplicate calendar ID")
		}
		calendars[cd.ID] = true
		for i, iv := range cd.Intervals {
			ivPath := fmt.Sprintf("%s.intervals[%d]", path, i)
			if iv.Rule != "" {
				if _, err := calendar.ParseRecurrence(iv.Rule); err != nil {
					fail(ivPath, "rule", err.Error())
				}
				continue
			}
			checkTime(ivPath, "start", iv.Start)
			checkTime(ivPath, "end", iv.End)
		}
	}
	checkCalendarRef := func(path, field, id string) {
		if id != "" && !calendars[id] {
			fail(path, field, fmt.Sprintf("unknown calendar %q", id))
		}
	}
	checkCalendarRef("project", "calendar", data.ProjectCalendar)

	events := make(map[string]bool)
	for _, ed := range data.Events {
		path := "event." + ed.ID
		if events[ed.ID] {
			fail(path, "", "duplicate event ID")
		}
		events[ed.ID] = true
		checkTime(path, "startDate", ed.StartDate)
		checkTime(path, "endDate", ed.EndDate)
		checkTime(path, "constraintDate", ed.ConstraintDate)
		checkDuration(path, "duration", ed.Duration)
		checkCalendarRef(path, "calendar", ed.Calendar)
		if ed.ConstraintType != "" {
			if _, ok := model.ParseConstraintType(ed.ConstraintType); !ok {
				fail(path, "constraintType", fmt.Sprintf("unknown constraint type %q", ed.ConstraintType))
			}
		}
	}

	dependencies := make(map[string]bool)
	for _, dd := range data.Dependencies {
		path := "dependency." + dd.ID
		if dependencies[dd.ID] {
			fail(path, "", "duplicate dependency ID")
		}
		dependencies[dd.ID] = true
		if dd.From != "" && !events[dd.From] {
			fail(path, "from", fmt.Sprintf("unknown event %q", dd.From))
		}
		if dd.To != "" && !events[dd.To] {
			fail(path, "to", fmt.Sprintf("unknown event %q", dd.To))
		}
		if dd.From != "" && dd.From == dd.To {
			fail(path, "", "dependency endpoints must differ")
		}
		checkDuration(path, "lag", dd.Lag)
		if dd.Type != "" {
			if _, ok := model.ParseDependencyType(dd.Type); !ok {
				fail(path, "type", fmt.Sprintf("unknown dependency type %q", dd.Type))
			}
		}
		if dd.CalendarSource != "" {
			if _, ok := model.ParseCalendarSource(dd.CalendarSource); !ok {
				fail(path, "calendarSource", fmt.Sprintf("unknown calendar source %q", dd.CalendarSource))
			}
		}
	}

	resources := make(map[string]bool)
	for _, rd := range data.Resources {
		path := "resource." + rd.ID
		if resources[rd.ID] {
			fail(path, "", "duplicate resource ID")
		}
		resources[rd.ID] = true
		checkCalendarRef(path, "calendar", rd.Calendar)
	}

	assignments := make(map[string]bool)
	for _, ad := range data.Assignments {
		path := "assignment." + ad.ID
		if assignments[ad.ID] {
			fail(path, "", "duplicate assignment ID")
		}
		assignments[ad.ID] = true
		if ad.Event != "" && !events[ad.Event] {
			fail(path, "event", fmt.Sprintf("unknown event %q", ad.Event))
		}
		if ad.Resource != "" && !resources[ad.Resource] {
			fail(path, "resource", fmt.Sprintf("unknown resource %q", ad.Resource))
		}
		if ad.Units < 0 {
			fail(path, "units", "units must not be negative")
		}
	}

	return errs
}
