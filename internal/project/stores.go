package project

import (
	"github.com/mwhitfield/gantry/internal/branch"
	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/model"
)

// --- events ---

// EventStore fronts the event record collection.
type EventStore struct{ p *Project }

// Events returns the event store.
func (p *Project) Events() *EventStore { return &EventStore{p: p} }

// Add registers an event record.
func (s *EventStore) Add(rec *model.EventRecord) error { return s.p.eng.AddEvent(rec) }

// Get returns a copy of an event's authoritative record.
func (s *EventStore) Get(id model.EventID) (*model.EventRecord, bool) { return s.p.eng.Event(id) }

// Update applies a mutation to an event's authoritative fields.
func (s *EventStore) Update(id model.EventID, fn func(*model.EventRecord)) error {
	return s.p.eng.UpdateEvent(id, fn)
}

// Remove drops an event, its schedule, its edges and its assignments.
func (s *EventStore) Remove(id model.EventID) {
	s.p.eng.RemoveEvent(id)
	s.p.removeAssignmentsFor(id)
}

// All returns copies of all records in insertion order.
func (s *EventStore) All() []*model.EventRecord { return s.p.eng.Events() }

// Count returns the number of events.
func (s *EventStore) Count() int { return len(s.p.eng.Events()) }

// --- dependencies ---

// DependencyStore fronts the edge collection. Insertion validates
// against a transactional branch, so illegal edges are refused before
// they can reach committed state.
type DependencyStore struct{ p *Project }

// Dependencies returns the dependency store.
func (p *Project) Dependencies() *DependencyStore { return &DependencyStore{p: p} }

// Add validates and inserts an edge. An empty ID is filled from the
// project's ID generator. Duplicate and cyclic edges come back as the
// typed graph errors; the committed schedule is untouched in both
// cases.
func (s *DependencyStore) Add(rec *model.DependencyRecord) (*model.DependencyRecord, error) {
	stored := rec.Clone()
	if stored.ID == "" {
		stored.ID = model.DependencyID(s.p.ids.Generate())
	}
	stored.Active = true

	b := branch.Open(s.p.eng)
	v, err := b.Validate(stored.From, stored.To, stored.Type, nil)
	if err != nil {
		return nil, err
	}
	switch v {
	case branch.ValidationDuplicate:
		return nil, b.Duplicate()
	case branch.ValidationCyclic:
		return nil, b.Cycle()
	}
	if err := s.p.eng.AddDependency(stored); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Validate answers whether a hypothetical edge would be legal, without
// inserting anything. Reassignment flows pass the edges being replaced
// in ignore.
func (s *DependencyStore) Validate(from, to model.EventID, typ model.DependencyType, ignore []model.DependencyID) (branch.Validation, error) {
	return branch.ValidateDependency(s.p.eng, from, to, typ, ignore)
}

// Replace atomically swaps an existing edge for a new one. The new
// edge is validated with the old edge ignored; on success the old edge
// is removed and the new one inserted.
func (s *DependencyStore) Replace(old model.DependencyID, rec *model.DependencyRecord) (*model.DependencyRecord, error) {
	stored := rec.Clone()
	if stored.ID == "" {
		stored.ID = model.DependencyID(s.p.ids.Generate())
	}
	stored.Active = true

	b := branch.Open(s.p.eng)
	v, err := b.Validate(stored.From, stored.To, stored.Type, []model.DependencyID{old})
	if err != nil {
		return nil, err
	}
	switch v {
	case branch.ValidationDuplicate:
		return nil, b.Duplicate()
	case branch.ValidationCyclic:
		return nil, b.Cycle()
	}
	s.p.eng.RemoveDependency(old)
	if err := s.p.eng.AddDependency(stored); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Remove drops an edge; the former target's schedule relaxes on the
// next commit.
func (s *DependencyStore) Remove(id model.DependencyID) { s.p.eng.RemoveDependency(id) }

// Get returns a copy of an edge record.
func (s *DependencyStore) Get(id model.DependencyID) (*model.DependencyRecord, bool) {
	return s.p.eng.Dependency(id)
}

// All returns copies of all edges in deterministic order.
func (s *DependencyStore) All() []*model.DependencyRecord { return s.p.eng.Dependencies() }

// --- resources ---

// ResourceStore fronts the resource collection.
type ResourceStore struct{ p *Project }

// Resources returns the resource store.
func (p *Project) Resources() *ResourceStore { return &ResourceStore{p: p} }

// Add registers a resource.
func (s *ResourceStore) Add(rec *model.ResourceRecord) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	if _, exists := s.p.resources[rec.ID]; exists {
		return &DuplicateResourceError{Resource: rec.ID}
	}
	s.p.resources[rec.ID] = rec.Clone()
	s.p.resourceSeq = append(s.p.resourceSeq, rec.ID)
	return nil
}

// Get returns a copy of a resource record.
func (s *ResourceStore) Get(id model.ResourceID) (*model.ResourceRecord, bool) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	rec, ok := s.p.resources[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Update applies a mutation to a resource. Events assigned to the
// resource are invalidated, since a calendar swap moves their
// schedules.
func (s *ResourceStore) Update(id model.ResourceID, fn func(*model.ResourceRecord)) error {
	s.p.mu.Lock()
	rec, ok := s.p.resources[id]
	if !ok {
		s.p.mu.Unlock()
		return &UnknownResourceError{Resource: id}
	}
	fn(rec)
	rec.ID = id // identity is immutable
	affected := s.p.eventsAssignedToLocked(id)
	s.p.mu.Unlock()

	for _, eid := range affected {
		_ = s.p.eng.Invalidate(eid)
	}
	return nil
}

// Remove drops a resource and every assignment referencing it.
func (s *ResourceStore) Remove(id model.ResourceID) {
	s.p.mu.Lock()
	delete(s.p.resources, id)
	s.p.resourceSeq = deleteID(s.p.resourceSeq, id)
	var affected []model.EventID
	var dropped []model.AssignmentID
	for _, aid := range s.p.assignmentSeq {
		if a := s.p.assignments[aid]; a != nil && a.Resource == id {
			affected = append(affected, a.EventID)
			dropped = append(dropped, aid)
			delete(s.p.assignments, aid)
		}
	}
	for _, aid := range dropped {
		s.p.assignmentSeq = deleteID(s.p.assignmentSeq, aid)
	}
	s.p.mu.Unlock()

	for _, eid := range affected {
		_ = s.p.eng.Invalidate(eid)
	}
}

// All returns copies of all resources in registration order.
func (s *ResourceStore) All() []*model.ResourceRecord {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	out := make([]*model.ResourceRecord, 0, len(s.p.resourceSeq))
	for _, id := range s.p.resourceSeq {
		if rec, ok := s.p.resources[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// --- assignments ---

// AssignmentStore fronts the event-resource assignment collection.
// Every mutation invalidates the linked event so the next commit
// republishes a consistent schedule.
type AssignmentStore struct{ p *Project }

// Assignments returns the assignment store.
func (p *Project) Assignments() *AssignmentStore { return &AssignmentStore{p: p} }

// Add links an event to a resource. An empty ID is filled from the
// project's ID generator. Both endpoints must exist.
func (s *AssignmentStore) Add(rec *model.AssignmentRecord) (*model.AssignmentRecord, error) {
	if _, ok := s.p.eng.Event(rec.EventID); !ok {
		return nil, &engine.UnknownEventError{Event: rec.EventID}
	}
	stored := rec.Clone()
	if stored.ID == "" {
		stored.ID = model.AssignmentID(s.p.ids.Generate())
	}

	s.p.mu.Lock()
	if _, ok := s.p.resources[stored.Resource]; !ok {
		s.p.mu.Unlock()
		return nil, &UnknownResourceError{Resource: stored.Resource}
	}
	s.p.assignments[stored.ID] = stored
	s.p.assignmentSeq = append(s.p.assignmentSeq, stored.ID)
	s.p.mu.Unlock()

	_ = s.p.eng.Invalidate(stored.EventID)
	return stored.Clone(), nil
}

// Get returns a copy of an assignment record.
func (s *AssignmentStore) Get(id model.AssignmentID) (*model.AssignmentRecord, bool) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	rec, ok := s.p.assignments[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Update applies a mutation to an assignment. Identity and the linked
// event are immutable through this path; units and resource may move.
func (s *AssignmentStore) Update(id model.AssignmentID, fn func(*model.AssignmentRecord)) error {
	s.p.mu.Lock()
	rec, ok := s.p.assignments[id]
	if !ok {
		s.p.mu.Unlock()
		return &UnknownAssignmentError{Assignment: id}
	}
	event := rec.EventID
	fn(rec)
	rec.ID = id
	rec.EventID = event
	if _, ok := s.p.resources[rec.Resource]; !ok {
		bad := rec.Resource
		s.p.mu.Unlock()
		return &UnknownResourceError{Resource: bad}
	}
	s.p.mu.Unlock()

	_ = s.p.eng.Invalidate(event)
	return nil
}

// Remove drops an assignment and invalidates the formerly linked
// event.
func (s *AssignmentStore) Remove(id model.AssignmentID) {
	s.p.mu.Lock()
	rec, ok := s.p.assignments[id]
	if ok {
		delete(s.p.assignments, id)
		s.p.assignmentSeq = deleteID(s.p.assignmentSeq, id)
	}
	s.p.mu.Unlock()
	if ok {
		_ = s.p.eng.Invalidate(rec.EventID)
	}
}

// ForEvent returns the assignments linked to one event, in
// registration order.
func (s *AssignmentStore) ForEvent(id model.EventID) []*model.AssignmentRecord {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	var out []*model.AssignmentRecord
	for _, aid := range s.p.assignmentSeq {
		if rec, ok := s.p.assignments[aid]; ok && rec.EventID == id {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// All returns copies of all assignments in registration order.
func (s *AssignmentStore) All() []*model.AssignmentRecord {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	out := make([]*model.AssignmentRecord, 0, len(s.p.assignmentSeq))
	for _, id := range s.p.assignmentSeq {
		if rec, ok := s.p.assignments[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// --- shared helpers ---

func (p *Project) eventsAssignedToLocked(id model.ResourceID) []model.EventID {
	var out []model.EventID
	for _, aid := range p.assignmentSeq {
		if a := p.assignments[aid]; a != nil && a.Resource == id {
			out = append(out, a.EventID)
		}
	}
	return out
}

func (p *Project) removeAssignmentsFor(id model.EventID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var dropped []model.AssignmentID
	for _, aid := range p.assignmentSeq {
		if a := p.assignments[aid]; a != nil && a.EventID == id {
			dropped = append(dropped, aid)
			delete(p.assignments, aid)
		}
	}
	for _, aid := range dropped {
		p.assignmentSeq = deleteID(p.assignmentSeq, aid)
	}
}

func deleteID[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
