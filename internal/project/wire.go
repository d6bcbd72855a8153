package project

import (
	"fmt"
	"time"

	"github.com/mwhitfield/gantry/internal/calendar"
	"github.com/mwhitfield/gantry/internal/model"
)

// ProjectData is the wire form of a project: authoritative fields
// only. Derived values (schedules, early dates) never serialize; they
// are recomputed by the first commit after load. Dates are RFC 3339
// strings, spans are Go duration literals, so the same shape works for
// JSON, YAML scenarios and the SQLite store.
type ProjectData struct {
	StartDate       string           `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	ProjectCalendar string           `json:"projectCalendar,omitempty" yaml:"projectCalendar,omitempty"`
	Calendars       []CalendarData   `json:"calendars,omitempty" yaml:"calendars,omitempty"`
	Events          []EventData      `json:"events,omitempty" yaml:"events,omitempty"`
	Dependencies    []DependencyData `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Resources       []ResourceData   `json:"resources,omitempty" yaml:"resources,omitempty"`
	Assignments     []AssignmentData `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

// CalendarData is the wire form of one calendar.
type CalendarData struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Unworking bool           `json:"unspecifiedNonWorking,omitempty" yaml:"unspecifiedNonWorking,omitempty"`
	Intervals []IntervalData `json:"intervals,omitempty" yaml:"intervals,omitempty"`
}

// IntervalData is one classification rule: either a recurrence rule or
// absolute bounds.
type IntervalData struct {
	Rule    string `json:"rule,omitempty" yaml:"rule,omitempty"`
	Start   string `json:"start,omitempty" yaml:"start,omitempty"`
	End     string `json:"end,omitempty" yaml:"end,omitempty"`
	Working bool   `json:"working" yaml:"working"`
}

// EventData is the wire form of one event record.
type EventData struct {
	ID                string `json:"id" yaml:"id"`
	Name              string `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate         string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate           string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Duration          string `json:"duration,omitempty" yaml:"duration,omitempty"`
	ConstraintType    string `json:"constraintType,omitempty" yaml:"constraintType,omitempty"`
	ConstraintDate    string `json:"constraintDate,omitempty" yaml:"constraintDate,omitempty"`
	ManuallyScheduled bool   `json:"manuallyScheduled,omitempty" yaml:"manuallyScheduled,omitempty"`
	Calendar          string `json:"calendar,omitempty" yaml:"calendar,omitempty"`
}

// DependencyData is the wire form of one edge.
type DependencyData struct {
	ID             string `json:"id" yaml:"id"`
	From           string `json:"from" yaml:"from"`
	To             string `json:"to" yaml:"to"`
	Type           string `json:"type,omitempty" yaml:"type,omitempty"`
	Lag            string `json:"lag,omitempty" yaml:"lag,omitempty"`
	CalendarSource string `json:"calendarSource,omitempty" yaml:"calendarSource,omitempty"`
	Inactive       bool   `json:"inactive,omitempty" yaml:"inactive,omitempty"`
}

// ResourceData is the wire form of one resource.
type ResourceData struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Calendar string `json:"calendar,omitempty" yaml:"calendar,omitempty"`
}

// AssignmentData is the wire form of one assignment.
type AssignmentData struct {
	ID       string `json:"id" yaml:"id"`
	Event    string `json:"event" yaml:"event"`
	Resource string `json:"resource" yaml:"resource"`
	Units    int    `json:"units,omitempty" yaml:"units,omitempty"`
}

// Snapshot captures the project's authoritative state. The result is
// deterministic: collections serialize in insertion order, dates in
// UTC RFC 3339.
func (p *Project) Snapshot() ProjectData {
	data := ProjectData{
		StartDate:       formatTime(p.eng.ProjectStart()),
		ProjectCalendar: string(p.eng.ProjectCalendar()),
	}
	for _, c := range p.eng.Calendars() {
		cd := CalendarData{
			ID:        string(c.ID()),
			Name:      c.Name(),
			Unworking: !c.UnspecifiedTimeIsWorking(),
		}
		for _, iv := range c.Intervals() {
			id := IntervalData{Working: iv.IsWorking()}
			if iv.Static() {
				start, end := iv.Bounds()
				id.Start = formatTime(start)
				id.End = formatTime(end)
			} else {
				id.Rule = iv.Rule()
			}
			cd.Intervals = append(cd.Intervals, id)
		}
		data.Calendars = append(data.Calendars, cd)
	}
	for _, rec := range p.eng.Events() {
		data.Events = append(data.Events, EventData{
			ID:                string(rec.ID),
			Name:              rec.Name,
			StartDate:         formatTime(rec.StartDate),
			EndDate:           formatTime(rec.EndDate),
			Duration:          formatDuration(rec.Duration),
			ConstraintType:    formatConstraint(rec.ConstraintType),
			ConstraintDate:    formatTime(rec.ConstraintDate),
			ManuallyScheduled: rec.ManuallyScheduled,
			Calendar:          string(rec.CalendarID),
		})
	}
	for _, rec := range p.eng.Dependencies() {
		data.Dependencies = append(data.Dependencies, DependencyData{
			ID:             string(rec.ID),
			From:           string(rec.From),
			To:             string(rec.To),
			Type:           rec.Type.String(),
			Lag:            formatDuration(rec.Lag),
			CalendarSource: rec.CalendarSource.String(),
			Inactive:       !rec.Active,
		})
	}
	for _, rec := range p.Resources().All() {
		data.Resources = append(data.Resources, ResourceData{
			ID:       string(rec.ID),
			Name:     rec.Name,
			Calendar: string(rec.CalendarID),
		})
	}
	for _, rec := range p.Assignments().All() {
		data.Assignments = append(data.Assignments, AssignmentData{
			ID:       string(rec.ID),
			Event:    string(rec.EventID),
			Resource: string(rec.Resource),
			Units:    rec.Units,
		})
	}
	return data
}

// ScheduleData is the derived view of one event, used by golden
// snapshots and plan output. It is never loaded back; derived state
// always comes from a commit.
type ScheduleData struct {
	Event          string `json:"event" yaml:"event"`
	StartDate      string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Duration       string `json:"duration,omitempty" yaml:"duration,omitempty"`
	EarlyStartDate string `json:"earlyStartDate,omitempty" yaml:"earlyStartDate,omitempty"`
	EarlyEndDate   string `json:"earlyEndDate,omitempty" yaml:"earlyEndDate,omitempty"`
}

// ScheduleSnapshot captures the committed schedules in insertion
// order.
func (p *Project) ScheduleSnapshot() []ScheduleData {
	var out []ScheduleData
	for _, s := range p.eng.Schedules() {
		out = append(out, ScheduleData{
			Event:          string(s.EventID),
			StartDate:      formatTime(s.StartDate),
			EndDate:        formatTime(s.EndDate),
			Duration:       formatDuration(s.Duration),
			EarlyStartDate: formatTime(s.EarlyStartDate),
			EarlyEndDate:   formatTime(s.EarlyEndDate),
		})
	}
	return out
}

// Load populates an empty project from wire data. Derived state is not
// part of the wire form; call Commit afterwards to materialize
// schedules. Cycle validation is deferred to that commit, which
// rejects corrupt input with OutcomeCyclic.
func (p *Project) Load(data ProjectData) error {
	if data.StartDate != "" {
		t, err := parseTime(data.StartDate)
		if err != nil {
			return fmt.Errorf("startDate: %w", err)
		}
		p.eng.SetProjectStart(t)
	}
	for _, cd := range data.Calendars {
		opts := []calendar.Option{calendar.WithName(cd.Name)}
		if cd.Unworking {
			opts = append(opts, calendar.WithUnspecifiedTimeWorking(false))
		}
		c := calendar.New(model.CalendarID(cd.ID), opts...)
		for _, iv := range cd.Intervals {
			if iv.Rule != "" {
				if err := c.AddRecurrentInterval(iv.Rule, iv.Working); err != nil {
					return fmt.Errorf("calendar %s: %w", cd.ID, err)
				}
				continue
			}
			start, err := parseTime(iv.Start)
			if err != nil {
				return fmt.Errorf("calendar %s interval start: %w", cd.ID, err)
			}
			end, err := parseTime(iv.End)
			if err != nil {
				return fmt.Errorf("calendar %s interval end: %w", cd.ID, err)
			}
			if err := c.AddStaticInterval(start, end, iv.Working); err != nil {
				return fmt.Errorf("calendar %s: %w", cd.ID, err)
			}
		}
		p.eng.AddCalendar(c)
	}
	if data.ProjectCalendar != "" {
		if err := p.eng.SetProjectCalendar(model.CalendarID(data.ProjectCalendar)); err != nil {
			return err
		}
	}
	for _, ed := range data.Events {
		rec, err := ed.Record()
		if err != nil {
			return err
		}
		if err := p.eng.AddEvent(rec); err != nil {
			return err
		}
	}
	for _, dd := range data.Dependencies {
		rec, err := dd.Record()
		if err != nil {
			return err
		}
		// Duplicate detection still applies; cycles are caught by the
		// commit that follows the load.
		if err := p.eng.AddDependency(rec); err != nil {
			return err
		}
	}
	for _, rd := range data.Resources {
		err := p.Resources().Add(&model.ResourceRecord{
			ID:         model.ResourceID(rd.ID),
			Name:       rd.Name,
			CalendarID: model.CalendarID(rd.Calendar),
		})
		if err != nil {
			return err
		}
	}
	for _, ad := range data.Assignments {
		_, err := p.Assignments().Add(&model.AssignmentRecord{
			ID:       model.AssignmentID(ad.ID),
			EventID:  model.EventID(ad.Event),
			Resource: model.ResourceID(ad.Resource),
			Units:    ad.Units,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Record parses the wire form into an event record.
func (ed EventData) Record() (*model.EventRecord, error) {
	rec := &model.EventRecord{
		ID:                model.EventID(ed.ID),
		Name:              ed.Name,
		ManuallyScheduled: ed.ManuallyScheduled,
		CalendarID:        model.CalendarID(ed.Calendar),
	}
	var err error
	if rec.StartDate, err = parseOptionalTime(ed.StartDate); err != nil {
		return nil, fmt.Errorf("event %s startDate: %w", ed.ID, err)
	}
	if rec.EndDate, err = parseOptionalTime(ed.EndDate); err != nil {
		return nil, fmt.Errorf("event %s endDate: %w", ed.ID, err)
	}
	if rec.ConstraintDate, err = parseOptionalTime(ed.ConstraintDate); err != nil {
		return nil, fmt.Errorf("event %s constraintDate: %w", ed.ID, err)
	}
	if ed.Duration != "" {
		if rec.Duration, err = time.ParseDuration(ed.Duration); err != nil {
			return nil, fmt.Errorf("event %s duration: %w", ed.ID, err)
		}
	}
	if ed.ConstraintType != "" {
		ct, ok := model.ParseConstraintType(ed.ConstraintType)
		if !ok {
			return nil, fmt.Errorf("event %s: unknown constraint type %q", ed.ID, ed.ConstraintType)
		}
		rec.ConstraintType = ct
	}
	return rec, nil
}

// Record parses the wire form into a dependency record.
func (dd DependencyData) Record() (*model.DependencyRecord, error) {
	rec := &model.DependencyRecord{
		ID:     model.DependencyID(dd.ID),
		From:   model.EventID(dd.From),
		To:     model.EventID(dd.To),
		Active: !dd.Inactive,
	}
	if dd.Type != "" {
		t, ok := model.ParseDependencyType(dd.Type)
		if !ok {
			return nil, fmt.Errorf("dependency %s: unknown type %q", dd.ID, dd.Type)
		}
		rec.Type = t
	}
	if dd.Lag != "" {
		lag, err := time.ParseDuration(dd.Lag)
		if err != nil {
			return nil, fmt.Errorf("dependency %s lag: %w", dd.ID, err)
		}
		rec.Lag = lag
	}
	if dd.CalendarSource != "" {
		src, ok := model.ParseCalendarSource(dd.CalendarSource)
		if !ok {
			return nil, fmt.Errorf("dependency %s: unknown calendar source %q", dd.ID, dd.CalendarSource)
		}
		rec.CalendarSource = src
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func formatConstraint(c model.ConstraintType) string {
	if c == model.ConstraintNone {
		return ""
	}
	return c.String()
}
