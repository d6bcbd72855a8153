package graph

import (
	"slices"

	"github.com/mwhitfield/gantry/internal/model"
)

// View is the read surface traversal runs against. The live Graph
// implements it directly; transactional branches implement it as an
// overlay so speculative edges never touch committed state.
type View interface {
	// NodeSeq returns the insertion sequence of a node, used as the
	// deterministic tie-break for processing order.
	NodeSeq(id model.EventID) (int, bool)
	// Outgoing returns the active edges leaving id, in edge insertion
	// order.
	Outgoing(id model.EventID) []*model.DependencyRecord
	// Incoming returns the active edges entering id, in edge insertion
	// order.
	Incoming(id model.EventID) []*model.DependencyRecord
}

// Graph is the committed dependency edge set.
//
// Not safe for concurrent mutation; all writes route through the
// propagation engine's single mutation path.
type Graph struct {
	nodeSeq map[model.EventID]int
	nextSeq int

	edges map[model.DependencyID]*model.DependencyRecord
	out   map[model.EventID][]model.DependencyID
	in    map[model.EventID][]model.DependencyID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeSeq: make(map[model.EventID]int),
		edges:   make(map[model.DependencyID]*model.DependencyRecord),
		out:     make(map[model.EventID][]model.DependencyID),
		in:      make(map[model.EventID][]model.DependencyID),
	}
}

// Clone returns a deep copy: an isolated snapshot transactional
// branches can overlay without racing live mutations.
func (g *Graph) Clone() *Graph {
	c := New()
	c.nextSeq = g.nextSeq
	for id, seq := range g.nodeSeq {
		c.nodeSeq[id] = seq
	}
	for id, rec := range g.edges {
		c.edges[id] = rec.Clone()
	}
	for id, eids := range g.out {
		c.out[id] = slices.Clone(eids)
	}
	for id, eids := range g.in {
		c.in[id] = slices.Clone(eids)
	}
	return c
}

// AddNode registers an event. Idempotent; the first registration fixes
// the node's insertion sequence.
func (g *Graph) AddNode(id model.EventID) {
	if _, ok := g.nodeSeq[id]; ok {
		return
	}
	g.nodeSeq[id] = g.nextSeq
	g.nextSeq++
}

// RemoveNode unregisters an event and removes all edges touching it.
// Returns the removed edges.
func (g *Graph) RemoveNode(id model.EventID) []*model.DependencyRecord {
	if _, ok := g.nodeSeq[id]; !ok {
		return nil
	}
	var removed []*model.DependencyRecord
	for _, eid := range append(slices.Clone(g.out[id]), g.in[id]...) {
		if rec, ok := g.edges[eid]; ok {
			g.removeEdgeRecord(rec)
			removed = append(removed, rec)
		}
	}
	delete(g.nodeSeq, id)
	delete(g.out, id)
	delete(g.in, id)
	return removed
}

// HasNode reports whether an event is registered.
func (g *Graph) HasNode(id model.EventID) bool {
	_, ok := g.nodeSeq[id]
	return ok
}

// NodeSeq implements View.
func (g *Graph) NodeSeq(id model.EventID) (int, bool) {
	seq, ok := g.nodeSeq[id]
	return seq, ok
}

// Nodes returns all registered events in insertion order.
func (g *Graph) Nodes() []model.EventID {
	ids := make([]model.EventID, 0, len(g.nodeSeq))
	for id := range g.nodeSeq {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b model.EventID) int {
		return g.nodeSeq[a] - g.nodeSeq[b]
	})
	return ids
}

// AddEdge inserts an edge record. The endpoints must be registered, and
// the ordered pair must not already carry an active edge. Cycle
// validation is the caller's responsibility (run against a branch
// BEFORE the edge reaches the live graph).
func (g *Graph) AddEdge(rec *model.DependencyRecord) error {
	if !g.HasNode(rec.From) {
		return &UnknownEventError{Event: rec.From}
	}
	if !g.HasNode(rec.To) {
		return &UnknownEventError{Event: rec.To}
	}
	if dup := g.findActiveEdge(rec.From, rec.To); dup != nil {
		return &DuplicateDependencyError{Existing: dup.ID, From: rec.From, To: rec.To}
	}
	g.edges[rec.ID] = rec
	g.out[rec.From] = append(g.out[rec.From], rec.ID)
	g.in[rec.To] = append(g.in[rec.To], rec.ID)
	return nil
}

// RemoveEdge deletes an edge by ID. Removal always succeeds; removing
// an unknown edge is a no-op. Returns the removed record, if any.
func (g *Graph) RemoveEdge(id model.DependencyID) (*model.DependencyRecord, bool) {
	rec, ok := g.edges[id]
	if !ok {
		return nil, false
	}
	g.removeEdgeRecord(rec)
	return rec, true
}

func (g *Graph) removeEdgeRecord(rec *model.DependencyRecord) {
	delete(g.edges, rec.ID)
	g.out[rec.From] = slices.DeleteFunc(g.out[rec.From], func(id model.DependencyID) bool {
		return id == rec.ID
	})
	g.in[rec.To] = slices.DeleteFunc(g.in[rec.To], func(id model.DependencyID) bool {
		return id == rec.ID
	})
}

// Edge returns an edge record by ID.
func (g *Graph) Edge(id model.DependencyID) (*model.DependencyRecord, bool) {
	rec, ok := g.edges[id]
	return rec, ok
}

// Edges returns all edges ordered by (from-node seq, position).
func (g *Graph) Edges() []*model.DependencyRecord {
	var recs []*model.DependencyRecord
	for _, from := range g.Nodes() {
		for _, eid := range g.out[from] {
			recs = append(recs, g.edges[eid])
		}
	}
	return recs
}

func (g *Graph) findActiveEdge(from, to model.EventID) *model.DependencyRecord {
	for _, eid := range g.out[from] {
		rec := g.edges[eid]
		if rec.Active && rec.To == to {
			return rec
		}
	}
	return nil
}

// Outgoing implements View. Inactive edges are excluded.
func (g *Graph) Outgoing(id model.EventID) []*model.DependencyRecord {
	return g.activeEdges(g.out[id])
}

// Incoming implements View. Inactive edges are excluded.
func (g *Graph) Incoming(id model.EventID) []*model.DependencyRecord {
	return g.activeEdges(g.in[id])
}

func (g *Graph) activeEdges(ids []model.DependencyID) []*model.DependencyRecord {
	var recs []*model.DependencyRecord
	for _, eid := range ids {
		if rec := g.edges[eid]; rec.Active {
			recs = append(recs, rec)
		}
	}
	return recs
}
