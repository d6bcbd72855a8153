package model

// FieldKind classifies a field as user-settable or engine-computed.
type FieldKind int

const (
	// Authoritative fields are source-of-truth values set by callers.
	Authoritative FieldKind = iota
	// Derived fields are computed by the engine during a commit and are
	// read-only to application code.
	Derived
)

// Well-known event field names. Wire payloads, editability queries and
// mutation APIs all use these strings.
const (
	FieldStartDate         = "startDate"
	FieldEndDate           = "endDate"
	FieldDuration          = "duration"
	FieldConstraintType    = "constraintType"
	FieldConstraintDate    = "constraintDate"
	FieldManuallyScheduled = "manuallyScheduled"
	FieldCalendar          = "calendar"
	FieldEarlyStartDate    = "earlyStartDate"
	FieldEarlyEndDate      = "earlyEndDate"
)

// FieldDescriptor describes one field of the event schema: its kind and
// the fields its derivation reads. The descriptor table replaces
// per-field reactive declarations; a single generic pass over the table
// answers "is this writable" and "what does this depend on".
type FieldDescriptor struct {
	Name   string
	Kind   FieldKind
	Inputs []string
}

// EventFields is the field schema for events, in declaration order.
// Order is part of the public contract: wire payloads and change
// notifications list fields in this order.
var EventFields = []FieldDescriptor{
	{Name: FieldStartDate, Kind: Authoritative},
	{Name: FieldEndDate, Kind: Authoritative},
	{Name: FieldDuration, Kind: Authoritative},
	{Name: FieldConstraintType, Kind: Authoritative},
	{Name: FieldConstraintDate, Kind: Authoritative},
	{Name: FieldManuallyScheduled, Kind: Authoritative},
	{Name: FieldCalendar, Kind: Authoritative},
	{Name: FieldEarlyStartDate, Kind: Derived, Inputs: []string{FieldStartDate, FieldDuration, FieldConstraintType, FieldConstraintDate}},
	{Name: FieldEarlyEndDate, Kind: Derived, Inputs: []string{FieldEarlyStartDate, FieldDuration}},
}

var eventFieldIndex = func() map[string]FieldDescriptor {
	m := make(map[string]FieldDescriptor, len(EventFields))
	for _, f := range EventFields {
		m[f.Name] = f
	}
	return m
}()

// LookupEventField returns the descriptor for a field name.
func LookupEventField(name string) (FieldDescriptor, bool) {
	f, ok := eventFieldIndex[name]
	return f, ok
}

// IsEditable reports whether a field of the given event accepts direct
// writes in the event's current scheduling mode. Returns nil for
// unknown field names so editor UIs can fall back to their own policy.
//
// Rules:
//   - derived fields are never editable
//   - startDate/endDate are editable only when manually scheduled
//   - duration is editable only when automatically scheduled (it is
//     derived from the span when the schedule is manual)
//   - everything else authoritative is always editable
func IsEditable(e *EventRecord, field string) *bool {
	desc, ok := eventFieldIndex[field]
	if !ok {
		return nil
	}
	v := false
	switch {
	case desc.Kind == Derived:
	case field == FieldStartDate || field == FieldEndDate:
		v = e.ManuallyScheduled
	case field == FieldDuration:
		v = !e.ManuallyScheduled
	default:
		v = true
	}
	return &v
}
