package project

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mwhitfield/gantry/internal/calendar"
	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/model"
)

// Project owns one schedule: the propagation engine plus the resource
// and assignment collections the engine does not track itself.
type Project struct {
	eng *engine.Engine
	ids IDGenerator

	// mu guards the resource/assignment collections. Event, dependency
	// and calendar state lives in the engine under its own lock.
	mu            sync.Mutex
	resources     map[model.ResourceID]*model.ResourceRecord
	resourceSeq   []model.ResourceID
	assignments   map[model.AssignmentID]*model.AssignmentRecord
	assignmentSeq []model.AssignmentID
}

// Option configures a Project at construction.
type Option func(*config)

type config struct {
	ids        IDGenerator
	engineOpts []engine.EngineOption
}

// WithLogger sets the structured logger for the underlying engine.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, engine.WithLogger(log)) }
}

// WithAutoCommit controls debounced automatic commits. Default:
// enabled.
func WithAutoCommit(enabled bool) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, engine.WithAutoCommit(enabled)) }
}

// WithStartDate anchors events with no predecessors, no own start and
// no constraint.
func WithStartDate(t time.Time) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, engine.WithProjectStart(t)) }
}

// WithIDGenerator installs the generator for edge and assignment IDs.
// Default: UUIDv7. Tests install a SequenceGenerator for deterministic
// snapshots.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) { c.ids = g }
}

// New creates an empty project.
func New(opts ...Option) *Project {
	cfg := config{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Project{
		eng:         engine.New(cfg.engineOpts...),
		ids:         cfg.ids,
		resources:   make(map[model.ResourceID]*model.ResourceRecord),
		assignments: make(map[model.AssignmentID]*model.AssignmentRecord),
	}
}

// Engine exposes the underlying propagation engine. The harness and
// CLI read schedules and register listeners through it; mutation still
// belongs to the stores.
func (p *Project) Engine() *engine.Engine { return p.eng }

// --- commit surface ---

// CommitAsync schedules a commit of all pending mutations and returns
// a channel delivering its result. Calls made while a commit runs
// coalesce onto that commit.
func (p *Project) CommitAsync() <-chan engine.CommitResult {
	return p.eng.CommitAsync()
}

// Commit runs a commit synchronously.
func (p *Project) Commit() engine.CommitResult {
	return p.eng.Commit()
}

// OnCommit registers a listener for the batched change notification.
func (p *Project) OnCommit(fn func(*engine.ChangeSet)) {
	p.eng.OnCommit(fn)
}

// State reports the commit state machine's current state.
func (p *Project) State() engine.State { return p.eng.State() }

// PendingChanges reports whether derived state is stale.
func (p *Project) PendingChanges() bool { return p.eng.PendingChanges() }

// Revision returns the latest committed revision.
func (p *Project) Revision() int64 { return p.eng.Revision() }

// Schedule returns the committed derived schedule of one event.
func (p *Project) Schedule(id model.EventID) (model.Schedule, bool) {
	return p.eng.Schedule(id)
}

// Schedules returns all committed schedules in insertion order.
func (p *Project) Schedules() []model.Schedule { return p.eng.Schedules() }

// StartDate returns the project anchor date.
func (p *Project) StartDate() time.Time { return p.eng.ProjectStart() }

// SetStartDate moves the project anchor; every event is recomputed on
// the next commit.
func (p *Project) SetStartDate(t time.Time) { p.eng.SetProjectStart(t) }

// --- field-level access ---

// IsEditable reports whether a field of the given event accepts direct
// writes, per the field schema and the event's scheduling mode. A nil
// result with nil error means the field name is outside the schema.
func (p *Project) IsEditable(id model.EventID, field string) (*bool, error) {
	rec, ok := p.eng.Event(id)
	if !ok {
		return nil, &engine.UnknownEventError{Event: id}
	}
	return model.IsEditable(rec, field), nil
}

// Set writes one event field by name, refusing fields the event's
// scheduling mode does not accept. The write lands in the dirty set;
// derived state updates on the next commit.
func (p *Project) Set(id model.EventID, field string, value any) error {
	rec, ok := p.eng.Event(id)
	if !ok {
		return &engine.UnknownEventError{Event: id}
	}
	editable := model.IsEditable(rec, field)
	if editable == nil {
		return &UnknownFieldError{Field: field}
	}
	if !*editable {
		return &FieldNotEditableError{Event: id, Field: field}
	}
	apply, err := fieldWriter(field, value)
	if err != nil {
		return err
	}
	return p.eng.UpdateEvent(id, apply)
}

// SetAsync writes one field and schedules a commit, returning the
// commit's result channel. Editor bindings call this per edit; the
// results coalesce when edits arrive faster than commits.
func (p *Project) SetAsync(id model.EventID, field string, value any) (<-chan engine.CommitResult, error) {
	if err := p.Set(id, field, value); err != nil {
		return nil, err
	}
	return p.eng.CommitAsync(), nil
}

// fieldWriter coerces a dynamic value for the named field into a
// record mutation. String forms are accepted where the wire format
// uses them (constraint types, calendar IDs, RFC 3339 dates, Go
// duration literals).
func fieldWriter(field string, value any) (func(*model.EventRecord), error) {
	badValue := func() error { return &FieldValueError{Field: field, Value: value} }
	switch field {
	case model.FieldStartDate, model.FieldEndDate, model.FieldConstraintDate:
		t, ok := coerceTime(value)
		if !ok {
			return nil, badValue()
		}
		return func(rec *model.EventRecord) {
			switch field {
			case model.FieldStartDate:
				rec.StartDate = t
			case model.FieldEndDate:
				rec.EndDate = t
			case model.FieldConstraintDate:
				rec.ConstraintDate = t
			}
		}, nil
	case model.FieldDuration:
		d, ok := coerceDuration(value)
		if !ok {
			return nil, badValue()
		}
		return func(rec *model.EventRecord) { rec.Duration = d }, nil
	case model.FieldConstraintType:
		ct, ok := coerceConstraintType(value)
		if !ok {
			return nil, badValue()
		}
		return func(rec *model.EventRecord) { rec.ConstraintType = ct }, nil
	case model.FieldManuallyScheduled:
		b, ok := value.(bool)
		if !ok {
			return nil, badValue()
		}
		return func(rec *model.EventRecord) { rec.ManuallyScheduled = b }, nil
	case model.FieldCalendar:
		cid, ok := coerceCalendarID(value)
		if !ok {
			return nil, badValue()
		}
		return func(rec *model.EventRecord) { rec.CalendarID = cid }, nil
	}
	return nil, &UnknownFieldError{Field: field}
}

func coerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func coerceDuration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func coerceConstraintType(v any) (model.ConstraintType, bool) {
	switch c := v.(type) {
	case model.ConstraintType:
		return c, true
	case string:
		return model.ParseConstraintType(c)
	}
	return 0, false
}

func coerceCalendarID(v any) (model.CalendarID, bool) {
	switch c := v.(type) {
	case model.CalendarID:
		return c, true
	case string:
		return model.CalendarID(c), true
	}
	return "", false
}

// --- calendars ---

// CalendarSet fronts the project's calendar collection.
type CalendarSet struct{ p *Project }

// Calendars returns the calendar store.
func (p *Project) Calendars() *CalendarSet { return &CalendarSet{p: p} }

// Add registers a calendar. The first registered calendar becomes the
// project calendar unless one was selected explicitly.
func (s *CalendarSet) Add(c *calendar.Calendar) { s.p.eng.AddCalendar(c) }

// Get returns a registered calendar.
func (s *CalendarSet) Get(id model.CalendarID) (*calendar.Calendar, bool) {
	return s.p.eng.Calendar(id)
}

// All returns the registered calendars in registration order.
func (s *CalendarSet) All() []*calendar.Calendar { return s.p.eng.Calendars() }

// SetProject selects the project calendar.
func (s *CalendarSet) SetProject(id model.CalendarID) error {
	return s.p.eng.SetProjectCalendar(id)
}

// Project returns the project calendar ID.
func (s *CalendarSet) Project() model.CalendarID { return s.p.eng.ProjectCalendar() }

// Mutate applies a configuration change to a calendar and dirties
// every event it governs.
func (s *CalendarSet) Mutate(id model.CalendarID, fn func(*calendar.Calendar) error) error {
	return s.p.eng.MutateCalendar(id, fn)
}
