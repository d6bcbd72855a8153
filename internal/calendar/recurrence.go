package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence is a compiled repeating window. The textual rule grammar:
//
//	rule    := "every" days [ "at" window ]
//	days    := "day" | dayName { "," dayName }
//	dayName := "mon" | "tue" | "wed" | "thu" | "fri" | "sat" | "sun"
//	window  := HH:MM "-" HH:MM
//
// Examples:
//
//	every day at 09:00-17:00
//	every sat,sun
//	every mon,wed,fri at 08:00-12:00
//
// Omitting the window means the whole day. Windows may not cross
// midnight; the end must be later than the start ("24:00" is a legal
// end). Days are matched in UTC.
type Recurrence struct {
	days  [7]bool // indexed by time.Weekday
	start time.Duration
	end   time.Duration
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseRecurrence compiles a rule string. Any deviation from the
// grammar yields a *ConfigurationError naming the rule and the reason.
func ParseRecurrence(rule string) (*Recurrence, error) {
	fail := func(reason string) (*Recurrence, error) {
		return nil, &ConfigurationError{Rule: rule, Reason: reason}
	}

	fields := strings.Fields(strings.ToLower(strings.TrimSpace(rule)))
	if len(fields) == 0 {
		return fail("empty rule")
	}
	if fields[0] != "every" {
		return fail(`rule must begin with "every"`)
	}
	if len(fields) < 2 {
		return fail("missing day specification")
	}

	r := &Recurrence{start: 0, end: 24 * time.Hour}

	if fields[1] == "day" {
		for i := range r.days {
			r.days[i] = true
		}
	} else {
		for _, name := range strings.Split(fields[1], ",") {
			wd, ok := weekdayNames[name]
			if !ok {
				return fail(fmt.Sprintf("unknown day name %q", name))
			}
			if r.days[wd] {
				return fail(fmt.Sprintf("day %q listed twice", name))
			}
			r.days[wd] = true
		}
	}

	switch len(fields) {
	case 2:
		// Whole-day rule.
	case 4:
		if fields[2] != "at" {
			return fail(`expected "at" before time window`)
		}
		parts := strings.Split(fields[3], "-")
		if len(parts) != 2 {
			return fail("time window must be HH:MM-HH:MM")
		}
		start, err := parseClock(parts[0])
		if err != nil {
			return fail(err.Error())
		}
		end, err := parseClock(parts[1])
		if err != nil {
			return fail(err.Error())
		}
		if end <= start {
			return fail("window end must be after window start")
		}
		r.start, r.end = start, end
	default:
		return fail("malformed rule")
	}

	return r, nil
}

// parseClock converts "HH:MM" to an offset from midnight. "24:00" is
// accepted as an end-of-day sentinel.
func parseClock(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("malformed time %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// covers reports whether t falls inside an occurrence window.
// Windows are half-open: [start, end).
func (r *Recurrence) covers(t time.Time) bool {
	t = t.UTC()
	if !r.days[t.Weekday()] {
		return false
	}
	offset := t.Sub(midnight(t))
	return offset >= r.start && offset < r.end
}

// nextBoundary returns the earliest instant strictly after t at which
// coverage changes. A recurrence always has a next boundary.
func (r *Recurrence) nextBoundary(t time.Time) (time.Time, bool) {
	t = t.UTC()
	// At most 8 days forward: today plus a full week guarantees a
	// matching weekday for any non-empty day set.
	for i := 0; i < 8; i++ {
		day := midnight(t).AddDate(0, 0, i)
		if !r.days[day.Weekday()] {
			continue
		}
		if s := day.Add(r.start); s.After(t) {
			return s, true
		}
		if e := day.Add(r.end); e.After(t) {
			return e, true
		}
	}
	return time.Time{}, false
}

// prevBoundary returns the latest instant at or before t at which
// coverage changes (i.e. the latest window start or end <= t).
func (r *Recurrence) prevBoundary(t time.Time) (time.Time, bool) {
	t = t.UTC()
	for i := 0; i < 8; i++ {
		day := midnight(t).AddDate(0, 0, -i)
		if !r.days[day.Weekday()] {
			continue
		}
		if e := day.Add(r.end); !e.After(t) {
			return e, true
		}
		if s := day.Add(r.start); !s.After(t) {
			return s, true
		}
	}
	return time.Time{}, false
}

// empty reports whether the rule can never match (no days selected).
func (r *Recurrence) empty() bool {
	for _, d := range r.days {
		if d {
			return false
		}
	}
	return true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
