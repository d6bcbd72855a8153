package engine

import (
	"time"

	"github.com/mwhitfield/gantry/internal/calendar"
	"github.com/mwhitfield/gantry/internal/model"
)

// placement controls one auto-placement computation.
type placement struct {
	// useOwnStart lets the record's own authoritative start act as a
	// floor when nothing else anchors the event. The early-date pass
	// disables it: early dates ignore the entity's own schedule.
	useOwnStart bool
	// enforceLateCaps applies the "no later than" constraint family.
	// The early-date pass disables it: early dates report where the
	// event COULD go, conflicts included.
	enforceLateCaps bool
}

// computeScheduleLocked recomputes one event's schedule from its
// record, its incoming edges, and its predecessors' (speculative or
// committed) schedules. Caller holds e.mu.
func (e *Engine) computeScheduleLocked(id model.EventID, spec map[model.EventID]model.Schedule) (model.Schedule, error) {
	rec := e.records[id]
	cal, err := e.calendarForLocked(rec)
	if err != nil {
		return model.Schedule{}, err
	}

	if rec.ManuallyScheduled {
		return e.manualScheduleLocked(rec, cal)
	}

	start, end, err := e.placeLocked(rec, rec.Duration, spec, placement{useOwnStart: true, enforceLateCaps: true})
	if err != nil {
		return model.Schedule{}, err
	}
	// For an automatically scheduled event the early dates coincide
	// with the actual dates: both derive from the same predecessors
	// and constraints.
	return model.Schedule{
		EventID:        id,
		StartDate:      start,
		EndDate:        end,
		Duration:       rec.Duration,
		EarlyStartDate: start,
		EarlyEndDate:   end,
	}, nil
}

// manualScheduleLocked takes start/end as authoritative and derives the
// duration as the working-time span between them. Early dates are
// filled by the second propagation sweep.
func (e *Engine) manualScheduleLocked(rec *model.EventRecord, cal *calendar.Calendar) (model.Schedule, error) {
	start := rec.StartDate.UTC()
	end := rec.EndDate.UTC()
	if end.IsZero() && !start.IsZero() {
		var err error
		end, err = cal.AddWorkingDuration(start, rec.Duration)
		if err != nil {
			return model.Schedule{}, err
		}
	}
	dur, err := cal.DurationOfWorkingTime(start, end)
	if err != nil {
		return model.Schedule{}, err
	}
	return model.Schedule{
		EventID:   rec.ID,
		StartDate: start,
		EndDate:   end,
		Duration:  dur,
	}, nil
}

// computeEarlyLocked computes the early placement of a manually
// scheduled event: where it would land if it were automatically
// scheduled, given predecessors and constraints alone.
func (e *Engine) computeEarlyLocked(rec *model.EventRecord, dur time.Duration, spec map[model.EventID]model.Schedule) (model.Schedule, error) {
	start, end, err := e.placeLocked(rec, dur, spec, placement{})
	if err != nil {
		return model.Schedule{}, err
	}
	return model.Schedule{EventID: rec.ID, StartDate: start, EndDate: end, Duration: dur}, nil
}

// placeLocked runs the auto-placement: gather the dependency-forced
// candidate start, apply the constraint, normalize to working time,
// and lay out the duration.
func (e *Engine) placeLocked(rec *model.EventRecord, dur time.Duration, spec map[model.EventID]model.Schedule, opts placement) (start, end time.Time, err error) {
	cal, err := e.calendarForLocked(rec)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	cand, err := e.dependencyCandidateLocked(rec, dur, cal, spec)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if cand.IsZero() {
		if opts.useOwnStart && !rec.StartDate.IsZero() {
			cand = rec.StartDate.UTC()
		} else {
			cand = e.projectStart
		}
	}

	// Pinning constraints tighten the candidate; the Must* variants
	// additionally reject when dependencies force past the pin.
	switch rec.ConstraintType {
	case model.StartNoEarlierThan:
		cand = maxTime(cand, rec.ConstraintDate.UTC())
	case model.FinishNoEarlierThan:
		implied, aerr := cal.AddWorkingDuration(rec.ConstraintDate.UTC(), -dur)
		if aerr != nil {
			return time.Time{}, time.Time{}, aerr
		}
		cand = maxTime(cand, implied)
	case model.MustStartOn:
		pin := rec.ConstraintDate.UTC()
		if opts.enforceLateCaps && cand.After(pin) {
			return time.Time{}, time.Time{}, &UnsatisfiableConstraintError{
				Event: rec.ID, Constraint: rec.ConstraintType, Date: pin, Computed: cand,
			}
		}
		cand = maxTime(cand, pin)
	case model.MustFinishOn:
		implied, aerr := cal.AddWorkingDuration(rec.ConstraintDate.UTC(), -dur)
		if aerr != nil {
			return time.Time{}, time.Time{}, aerr
		}
		if opts.enforceLateCaps && cand.After(implied) {
			return time.Time{}, time.Time{}, &UnsatisfiableConstraintError{
				Event: rec.ID, Constraint: rec.ConstraintType, Date: rec.ConstraintDate.UTC(), Computed: cand,
			}
		}
		cand = maxTime(cand, implied)
	}

	// Constraint dates falling on non-working time normalize forward.
	start, err = cal.NextWorkingInstant(cand, model.Forward)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = cal.AddWorkingDuration(start, dur)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if opts.enforceLateCaps {
		switch rec.ConstraintType {
		case model.StartNoLaterThan:
			if start.After(rec.ConstraintDate.UTC()) {
				return time.Time{}, time.Time{}, &UnsatisfiableConstraintError{
					Event: rec.ID, Constraint: rec.ConstraintType, Date: rec.ConstraintDate.UTC(), Computed: start,
				}
			}
		case model.FinishNoLaterThan, model.MustFinishOn:
			if end.After(rec.ConstraintDate.UTC()) {
				return time.Time{}, time.Time{}, &UnsatisfiableConstraintError{
					Event: rec.ID, Constraint: rec.ConstraintType, Date: rec.ConstraintDate.UTC(), Computed: end,
				}
			}
		}
	}
	return start, end, nil
}

// dependencyCandidateLocked folds every incoming active edge into the
// latest start the predecessors force. Zero time means "unanchored".
func (e *Engine) dependencyCandidateLocked(rec *model.EventRecord, dur time.Duration, cal *calendar.Calendar, spec map[model.EventID]model.Schedule) (time.Time, error) {
	var cand time.Time
	for _, edge := range e.graph.Incoming(rec.ID) {
		pred, ok := e.lookupScheduleLocked(edge.From, spec)
		if !ok {
			// Predecessor has never been scheduled (first commit not
			// reaching it); it contributes nothing yet.
			continue
		}

		var base time.Time
		switch edge.Type {
		case model.FinishToStart, model.FinishToFinish:
			base = pred.EndDate
		case model.StartToStart, model.StartToFinish:
			base = pred.StartDate
		}
		if base.IsZero() {
			continue
		}

		lagCal, err := e.lagCalendarLocked(edge, rec, cal)
		if err != nil {
			return time.Time{}, err
		}
		point := base
		if edge.Lag != 0 {
			point, err = lagCal.AddWorkingDuration(base, edge.Lag)
			if err != nil {
				return time.Time{}, err
			}
		}

		// The *-to-finish types constrain the successor's END; back
		// the duration off in the successor's own calendar to get the
		// implied start.
		if edge.Type == model.FinishToFinish || edge.Type == model.StartToFinish {
			point, err = cal.AddWorkingDuration(point, -dur)
			if err != nil {
				return time.Time{}, err
			}
		}
		cand = maxTime(cand, point)
	}
	return cand, nil
}

// lagCalendarLocked resolves the edge's calendar-source policy.
func (e *Engine) lagCalendarLocked(edge *model.DependencyRecord, to *model.EventRecord, toCal *calendar.Calendar) (*calendar.Calendar, error) {
	switch edge.CalendarSource {
	case model.LagCalendarFromEvent:
		from, ok := e.records[edge.From]
		if !ok {
			return nil, &UnknownEventError{Event: edge.From}
		}
		return e.calendarForLocked(from)
	case model.LagCalendarProject:
		return e.projectCalendarLocked(), nil
	default: // LagCalendarToEvent
		return toCal, nil
	}
}

// calendarForLocked resolves an event's effective calendar: its own
// reference, else the project calendar, else the always-working
// default.
func (e *Engine) calendarForLocked(rec *model.EventRecord) (*calendar.Calendar, error) {
	if rec.CalendarID == "" {
		return e.projectCalendarLocked(), nil
	}
	c, ok := e.calendars[rec.CalendarID]
	if !ok {
		return nil, &UnknownCalendarError{Calendar: rec.CalendarID, Event: rec.ID}
	}
	return c, nil
}

func (e *Engine) projectCalendarLocked() *calendar.Calendar {
	if e.projectCal != "" {
		if c, ok := e.calendars[e.projectCal]; ok {
			return c
		}
	}
	return e.defaultCal
}

func (e *Engine) lookupScheduleLocked(id model.EventID, spec map[model.EventID]model.Schedule) (model.Schedule, bool) {
	if s, ok := spec[id]; ok {
		return s, true
	}
	s, ok := e.schedules[id]
	return s, ok
}

func maxTime(a, b time.Time) time.Time {
	if a.IsZero() || b.After(a) {
		return b
	}
	return a
}
