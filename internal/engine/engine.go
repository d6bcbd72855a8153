package engine

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mwhitfield/gantry/internal/calendar"
	"github.com/mwhitfield/gantry/internal/graph"
	"github.com/mwhitfield/gantry/internal/model"
)

// Engine owns the committed scheduling state: event records, the
// dependency graph, the calendar set, and the derived schedules. All
// mutation routes through its setters so dirtiness and the rollback
// journal stay accurate.
//
// Thread-safety model:
//   - setters and readers: safe from any goroutine
//   - derived schedules only ever change inside a commit, atomically
//   - mutations issued while a commit is in flight land in the NEXT
//     dirty set; they never interleave with the running propagation
type Engine struct {
	log        *slog.Logger
	clock      *RevisionClock
	autoCommit bool

	// mu guards all committed data and the dirty set. The in-flight
	// commit holds it for the whole propagation pass, which is pure
	// computation.
	mu           sync.Mutex
	records      map[model.EventID]*model.EventRecord
	graph        *graph.Graph
	calendars    map[model.CalendarID]*calendar.Calendar
	calendarIDs  []model.CalendarID
	defaultCal   *calendar.Calendar
	projectCal   model.CalendarID
	projectStart time.Time
	schedules    map[model.EventID]model.Schedule
	dirty        map[model.EventID]bool
	journal      []func()

	// stateMu guards the commit state machine and waiters. Lock order
	// is mu before stateMu: markDirtyLocked takes stateMu via
	// scheduleCommit while mu is held. Never take mu under stateMu.
	stateMu     sync.Mutex
	committing  bool
	scheduled   bool
	lastOutcome Outcome
	waiters     []chan CommitResult
	listeners   []func(*ChangeSet)
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithAutoCommit controls whether mutations schedule a debounced
// commit automatically. Default: enabled. Tests that want to observe
// the dirty state disable it and call CommitAsync explicitly.
func WithAutoCommit(enabled bool) EngineOption {
	return func(e *Engine) { e.autoCommit = enabled }
}

// WithProjectStart anchors events that have no predecessors, no own
// start and no constraint.
func WithProjectStart(t time.Time) EngineOption {
	return func(e *Engine) { e.projectStart = t.UTC() }
}

// WithRevisionClock installs a pre-positioned clock, used when
// resuming a persisted project.
func WithRevisionClock(c *RevisionClock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// New creates an empty engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		log:        slog.Default(),
		clock:      NewRevisionClock(),
		autoCommit: true,
		records:    make(map[model.EventID]*model.EventRecord),
		graph:      graph.New(),
		calendars:  make(map[model.CalendarID]*calendar.Calendar),
		defaultCal: calendar.New(""),
		schedules:  make(map[model.EventID]model.Schedule),
		dirty:      make(map[model.EventID]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the commit state machine's current state. The
// StateRejected phase is transient (it exists between detection and
// result delivery); observers read rejection causes from CommitResult.
func (e *Engine) State() State {
	e.stateMu.Lock()
	committing := e.committing
	e.stateMu.Unlock()
	if committing {
		return StateCommitting
	}
	e.mu.Lock()
	dirty := len(e.dirty) > 0
	e.mu.Unlock()
	if dirty {
		return StateDirty
	}
	return StateIdle
}

// LastOutcome returns the outcome of the most recently finished commit.
func (e *Engine) LastOutcome() Outcome {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.lastOutcome
}

// PendingChanges reports whether derived state is stale: mutations are
// queued or a commit is in flight. Readers use it to detect staleness
// before trusting Schedule values.
func (e *Engine) PendingChanges() bool {
	return e.State() != StateIdle
}

// Revision returns the latest committed revision.
func (e *Engine) Revision() int64 { return e.clock.Current() }

// OnCommit registers a listener for the batched change notification.
// Listeners fire once per successful commit that moved observable
// fields, after the new schedules are visible.
func (e *Engine) OnCommit(fn func(*ChangeSet)) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// --- calendars ---

// AddCalendar registers a calendar. The first registered calendar
// becomes the project calendar unless one was set explicitly.
func (e *Engine) AddCalendar(c *calendar.Calendar) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := c.ID()
	if _, exists := e.calendars[id]; !exists {
		e.calendarIDs = append(e.calendarIDs, id)
	}
	e.calendars[id] = c
	if e.projectCal == "" {
		e.projectCal = id
	}
}

// SetProjectCalendar selects the calendar that governs events without
// an explicit calendar reference and the Project lag policy.
func (e *Engine) SetProjectCalendar(id model.CalendarID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.calendars[id]; !ok {
		return &UnknownCalendarError{Calendar: id}
	}
	e.projectCal = id
	e.markAllDirtyLocked()
	return nil
}

// ProjectCalendar returns the project calendar ID, empty when the
// implicit always-working default is in effect.
func (e *Engine) ProjectCalendar() model.CalendarID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectCal
}

// Calendar returns a registered calendar.
func (e *Engine) Calendar(id model.CalendarID) (*calendar.Calendar, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.calendars[id]
	return c, ok
}

// Calendars returns the registered calendars in registration order.
func (e *Engine) Calendars() []*calendar.Calendar {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*calendar.Calendar, 0, len(e.calendarIDs))
	for _, id := range e.calendarIDs {
		out = append(out, e.calendars[id])
	}
	return out
}

// MutateCalendar applies a mutation to a calendar and dirties every
// event the calendar governs. Calendar configuration is not journaled:
// a rejected commit keeps calendar changes (they are project
// configuration, not part of the speculative schedule).
func (e *Engine) MutateCalendar(id model.CalendarID, fn func(*calendar.Calendar) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.calendars[id]
	if !ok {
		return &UnknownCalendarError{Calendar: id}
	}
	if err := fn(c); err != nil {
		return err
	}
	for eid, rec := range e.records {
		if rec.CalendarID == id || (rec.CalendarID == "" && e.projectCal == id) {
			e.markDirtyLocked(eid)
		}
	}
	return nil
}

// SetProjectStart moves the project anchor and dirties everything.
func (e *Engine) SetProjectStart(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.projectStart
	e.projectStart = t.UTC()
	e.journal = append(e.journal, func() { e.projectStart = prev })
	e.markAllDirtyLocked()
}

// ProjectStart returns the project anchor date.
func (e *Engine) ProjectStart() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectStart
}

// --- events ---

// AddEvent registers an event record and marks it dirty.
func (e *Engine) AddEvent(rec *model.EventRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.records[rec.ID]; exists {
		return &DuplicateEventError{Event: rec.ID}
	}
	stored := rec.Clone()
	e.records[rec.ID] = stored
	e.graph.AddNode(rec.ID)
	id := rec.ID
	e.journal = append(e.journal, func() {
		delete(e.records, id)
		delete(e.schedules, id)
		e.graph.RemoveNode(id)
	})
	e.markDirtyLocked(id)
	return nil
}

// RemoveEvent drops an event, its schedule and every edge touching it.
// Former successors are dirtied.
func (e *Engine) RemoveEvent(id model.EventID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[id]
	if !ok {
		return
	}
	var successors []model.EventID
	for _, edge := range e.graph.Outgoing(id) {
		successors = append(successors, edge.To)
	}
	removedEdges := e.graph.RemoveNode(id)
	prevSched, hadSched := e.schedules[id]
	delete(e.records, id)
	delete(e.schedules, id)
	e.journal = append(e.journal, func() {
		e.records[id] = rec
		e.graph.AddNode(id)
		for _, edge := range removedEdges {
			_ = e.graph.AddEdge(edge)
		}
		if hadSched {
			e.schedules[id] = prevSched
		}
	})
	for _, succ := range successors {
		e.markDirtyLocked(succ)
	}
}

// Event returns a copy of an event's authoritative record.
func (e *Engine) Event(id model.EventID) (*model.EventRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Events returns copies of all records in insertion order.
func (e *Engine) Events() []*model.EventRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*model.EventRecord, 0, len(e.records))
	for _, id := range e.graph.Nodes() {
		if rec, ok := e.records[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// UpdateEvent applies a mutation to an event's authoritative fields.
// The previous record is journaled so a rejected commit can roll the
// write back. Derived fields cannot be touched through this path: the
// callback receives the authoritative record only.
func (e *Engine) UpdateEvent(id model.EventID, fn func(*model.EventRecord)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[id]
	if !ok {
		return &UnknownEventError{Event: id}
	}
	prev := rec.Clone()
	fn(rec)
	rec.ID = prev.ID // identity is immutable
	e.journal = append(e.journal, func() { e.records[id] = prev })
	e.markDirtyLocked(id)
	return nil
}

// Schedule returns the committed derived schedule of an event. The
// value reflects the last successful commit; combine with
// PendingChanges to detect staleness.
func (e *Engine) Schedule(id model.EventID) (model.Schedule, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.schedules[id]
	return s, ok
}

// Schedules returns all committed schedules in insertion order.
func (e *Engine) Schedules() []model.Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Schedule, 0, len(e.schedules))
	for _, id := range e.graph.Nodes() {
		if s, ok := e.schedules[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// --- dependencies ---

// AddDependency inserts a validated edge record and dirties its
// target. Duplicate detection happens here; CYCLE validation must
// already have happened against a transactional branch - the live
// graph never holds a speculative edge.
func (e *Engine) AddDependency(rec *model.DependencyRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	stored := rec.Clone()
	if err := e.graph.AddEdge(stored); err != nil {
		return err
	}
	id := stored.ID
	e.journal = append(e.journal, func() { e.graph.RemoveEdge(id) })
	e.markDirtyLocked(stored.To)
	return nil
}

// RemoveDependency drops an edge. Always succeeds; the former target
// is dirtied so its schedule relaxes.
func (e *Engine) RemoveDependency(id model.DependencyID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.graph.RemoveEdge(id)
	if !ok {
		return
	}
	e.journal = append(e.journal, func() { _ = e.graph.AddEdge(rec) })
	e.markDirtyLocked(rec.To)
}

// Dependency returns a copy of an edge record.
func (e *Engine) Dependency(id model.DependencyID) (*model.DependencyRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.graph.Edge(id)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Dependencies returns copies of all edges in deterministic order.
func (e *Engine) Dependencies() []*model.DependencyRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	recs := e.graph.Edges()
	out := make([]*model.DependencyRecord, len(recs))
	for i, rec := range recs {
		out[i] = rec.Clone()
	}
	return out
}

// Invalidate marks an event's derived state stale without touching
// its record, for inputs the engine does not own (assignment edits,
// resource calendar swaps).
func (e *Engine) Invalidate(id model.EventID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.records[id]; !ok {
		return &UnknownEventError{Event: id}
	}
	e.markDirtyLocked(id)
	return nil
}

// GraphView exposes the committed graph as a read-only traversal
// surface. Internal use only; concurrent callers take
// ValidationSnapshot instead.
func (e *Engine) GraphView() graph.View { return e.graph }

// ValidationSnapshot returns an isolated copy of the committed graph
// plus the manual-scheduling flags, for transactional branch
// validation. The snapshot never observes later mutations.
func (e *Engine) ValidationSnapshot() (*graph.Graph, map[model.EventID]bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	manual := make(map[model.EventID]bool, len(e.records))
	for id, rec := range e.records {
		if rec.ManuallyScheduled {
			manual[id] = true
		}
	}
	return e.graph.Clone(), manual
}

// HardEdge is the ordering predicate used for commit processing and
// branch validation: an edge imposes ordering unless its target is
// manually scheduled, so manual anchors break cycles.
func (e *Engine) HardEdge(edge *model.DependencyRecord) bool {
	rec, ok := e.records[edge.To]
	return !ok || !rec.ManuallyScheduled
}

// --- dirty tracking ---

func (e *Engine) markDirtyLocked(id model.EventID) {
	e.dirty[id] = true
	if e.autoCommit {
		e.scheduleCommit()
	}
}

func (e *Engine) markAllDirtyLocked() {
	for id := range e.records {
		e.markDirtyLocked(id)
	}
}

// scheduleCommit arranges a debounced commit: the first mutation of a
// batch spawns it, later synchronous mutations coalesce into the same
// pass because the commit goroutine only runs once the mutator yields.
func (e *Engine) scheduleCommit() {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.committing || e.scheduled {
		return
	}
	e.scheduled = true
	go func() {
		e.stateMu.Lock()
		e.scheduled = false
		if e.committing {
			// The running commit's finalizer reschedules if dirt
			// remains.
			e.stateMu.Unlock()
			return
		}
		e.committing = true
		e.stateMu.Unlock()
		e.runCommit()
	}()
}

// CommitAsync requests a commit and returns a channel delivering its
// result. Calls made while a commit is in flight coalesce: every
// pending caller receives the in-flight commit's result. A call made
// after that commit finishes starts a new cycle.
func (e *Engine) CommitAsync() <-chan CommitResult {
	ch := make(chan CommitResult, 1)
	e.stateMu.Lock()
	e.waiters = append(e.waiters, ch)
	if e.committing {
		e.stateMu.Unlock()
		return ch
	}
	e.committing = true
	e.stateMu.Unlock()
	go e.runCommit()
	return ch
}

// Commit is the synchronous convenience: request a commit and wait.
func (e *Engine) Commit() CommitResult {
	return <-e.CommitAsync()
}

// runCommit executes one full commit cycle and delivers its result to
// every coalesced waiter. Must only run with e.committing held true.
func (e *Engine) runCommit() {
	e.mu.Lock()
	res := e.propagateLocked()
	e.mu.Unlock()

	if res.Outcome == OutcomeOk && res.Changes != nil {
		e.stateMu.Lock()
		listeners := slices.Clone(e.listeners)
		e.stateMu.Unlock()
		for _, fn := range listeners {
			fn(res.Changes)
		}
	}

	e.stateMu.Lock()
	e.lastOutcome = res.Outcome
	ws := e.waiters
	e.waiters = nil
	e.committing = false
	e.stateMu.Unlock()

	for _, ch := range ws {
		ch <- res
	}

	// A listener may have mutated the engine while committing was still
	// set, which makes scheduleCommit a no-op. Re-read the dirty set now
	// that committing is cleared so that work is not stranded.
	e.mu.Lock()
	moreDirt := len(e.dirty) > 0
	e.mu.Unlock()
	if moreDirt && e.autoCommit {
		e.scheduleCommit()
	}
}
