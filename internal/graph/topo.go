package graph

import (
	"slices"

	"github.com/mwhitfield/gantry/internal/model"
)

// Descendants returns the transitive closure of seeds under outgoing
// active edges, seeds included, in deterministic (insertion-seq) order.
// Only the closure is revisited per commit; the rest of the graph keeps
// its committed values.
func Descendants(v View, seeds []model.EventID) []model.EventID {
	visited := make(map[model.EventID]bool)
	stack := slices.Clone(seeds)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		for _, e := range v.Outgoing(id) {
			if !visited[e.To] {
				stack = append(stack, e.To)
			}
		}
	}
	out := make([]model.EventID, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sortBySeq(v, out)
	return out
}

// TopoOrder produces the processing order for a node set using Kahn's
// algorithm restricted to the set. Only edges for which hard(edge)
// returns true impose ordering; the engine passes a predicate that
// exempts edges into manually scheduled events, so manual anchors break
// what would otherwise be a cycle. Edges from nodes outside the set are
// ignored - those predecessors already hold their committed values.
//
// Ties (independent nodes ready at the same step) resolve by node
// insertion sequence, keeping output reproducible.
//
// On a cycle, the unsortable remainder is returned inside a
// *CyclicDependencyError, members in insertion order.
func TopoOrder(v View, nodes []model.EventID, hard func(*model.DependencyRecord) bool) ([]model.EventID, *CyclicDependencyError) {
	inSet := make(map[model.EventID]bool, len(nodes))
	for _, id := range nodes {
		inSet[id] = true
	}

	indegree := make(map[model.EventID]int, len(nodes))
	for _, id := range nodes {
		n := 0
		for _, e := range v.Incoming(id) {
			if inSet[e.From] && hard(e) {
				n++
			}
		}
		indegree[id] = n
	}

	var queue []model.EventID
	for _, id := range nodes {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sortBySeq(v, queue)

	order := make([]model.EventID, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var ready []model.EventID
		for _, e := range v.Outgoing(id) {
			if !inSet[e.To] || !hard(e) {
				continue
			}
			indegree[e.To]--
			if indegree[e.To] == 0 {
				ready = append(ready, e.To)
			}
		}
		sortBySeq(v, ready)
		queue = append(queue, ready...)
	}

	if len(order) != len(nodes) {
		var members []model.EventID
		for _, id := range nodes {
			if indegree[id] > 0 {
				members = append(members, id)
			}
		}
		sortBySeq(v, members)
		return nil, &CyclicDependencyError{Members: members}
	}
	return order, nil
}

// HardAll is the predicate that treats every edge as an ordering edge,
// for callers that want cycle detection independent of scheduling
// modes. Commit-time propagation and branch validation instead pass
// predicates that exempt edges into manually scheduled events.
func HardAll(*model.DependencyRecord) bool { return true }

func sortBySeq(v View, ids []model.EventID) {
	slices.SortFunc(ids, func(a, b model.EventID) int {
		sa, _ := v.NodeSeq(a)
		sb, _ := v.NodeSeq(b)
		return sa - sb
	})
}
