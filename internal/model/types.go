package model

// EventID identifies a schedulable entity (event/task).
type EventID string

// DependencyID identifies a dependency edge.
type DependencyID string

// CalendarID identifies a calendar.
type CalendarID string

// ResourceID identifies a resource.
type ResourceID string

// AssignmentID identifies an event-resource assignment.
type AssignmentID string

// DependencyType is the constraint an edge imposes between its two
// endpoints. The names follow the standard project-scheduling
// terminology: the first word refers to the predecessor, the second to
// the successor.
type DependencyType int

const (
	// FinishToStart: successor may not start before predecessor finishes.
	FinishToStart DependencyType = iota
	// StartToStart: successor may not start before predecessor starts.
	StartToStart
	// FinishToFinish: successor may not finish before predecessor finishes.
	FinishToFinish
	// StartToFinish: successor may not finish before predecessor starts.
	StartToFinish
)

var dependencyTypeNames = map[DependencyType]string{
	FinishToStart:  "finish-to-start",
	StartToStart:   "start-to-start",
	FinishToFinish: "finish-to-finish",
	StartToFinish:  "start-to-finish",
}

func (t DependencyType) String() string {
	if s, ok := dependencyTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseDependencyType converts a wire/config name to a DependencyType.
// Accepts both the long names and the conventional two-letter codes.
func ParseDependencyType(s string) (DependencyType, bool) {
	switch s {
	case "finish-to-start", "FS":
		return FinishToStart, true
	case "start-to-start", "SS":
		return StartToStart, true
	case "finish-to-finish", "FF":
		return FinishToFinish, true
	case "start-to-finish", "SF":
		return StartToFinish, true
	}
	return 0, false
}

// CalendarSource selects which calendar measures a dependency's lag
// when the two endpoints' calendars disagree on working time.
type CalendarSource int

const (
	// LagCalendarToEvent measures lag in the successor's calendar.
	LagCalendarToEvent CalendarSource = iota
	// LagCalendarFromEvent measures lag in the predecessor's calendar.
	LagCalendarFromEvent
	// LagCalendarProject measures lag in the project calendar.
	LagCalendarProject
)

var calendarSourceNames = map[CalendarSource]string{
	LagCalendarToEvent:   "ToEvent",
	LagCalendarFromEvent: "FromEvent",
	LagCalendarProject:   "Project",
}

func (s CalendarSource) String() string {
	if n, ok := calendarSourceNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseCalendarSource converts a wire/config name to a CalendarSource.
func ParseCalendarSource(s string) (CalendarSource, bool) {
	switch s {
	case "ToEvent", "":
		return LagCalendarToEvent, true
	case "FromEvent":
		return LagCalendarFromEvent, true
	case "Project":
		return LagCalendarProject, true
	}
	return 0, false
}

// ConstraintType restricts where an automatically scheduled entity may
// be placed, relative to its ConstraintDate.
type ConstraintType int

const (
	// ConstraintNone means the entity is placed by dependencies alone.
	ConstraintNone ConstraintType = iota
	// StartNoEarlierThan pins the earliest allowed start.
	StartNoEarlierThan
	// StartNoLaterThan caps the latest allowed start.
	StartNoLaterThan
	// FinishNoEarlierThan pins the earliest allowed finish.
	FinishNoEarlierThan
	// FinishNoLaterThan caps the latest allowed finish.
	FinishNoLaterThan
	// MustStartOn fixes the start exactly.
	MustStartOn
	// MustFinishOn fixes the finish exactly.
	MustFinishOn
)

var constraintTypeNames = map[ConstraintType]string{
	ConstraintNone:      "none",
	StartNoEarlierThan:  "startnoearlierthan",
	StartNoLaterThan:    "startnolaterthan",
	FinishNoEarlierThan: "finishnoearlierthan",
	FinishNoLaterThan:   "finishnolaterthan",
	MustStartOn:         "muststarton",
	MustFinishOn:        "mustfinishon",
}

func (c ConstraintType) String() string {
	if s, ok := constraintTypeNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseConstraintType converts a wire/config name to a ConstraintType.
func ParseConstraintType(s string) (ConstraintType, bool) {
	for c, name := range constraintTypeNames {
		if name == s {
			return c, true
		}
	}
	return 0, false
}

// Direction selects forward or backward traversal of working time.
type Direction int

const (
	// Forward moves toward later instants.
	Forward Direction = 1
	// Backward moves toward earlier instants.
	Backward Direction = -1
)
