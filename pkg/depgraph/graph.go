package depgraph

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

var (
	// ErrNodeNotFound is returned by mutation and traversal operations that
	// reference a node key not present in the graph. Lookup operations
	// (Contains, HasEdge, Get) treat absence as a normal outcome instead.
	ErrNodeNotFound = errors.New("node not in graph")

	// ErrEdgeNotFound is returned by [Graph.RemoveEdge] when both endpoints
	// exist but no edge connects them in the given direction.
	ErrEdgeNotFound = errors.New("edge not in graph")
)

// Priority classifies the hardness of a dependency edge. The graph never
// inspects priorities beyond their rank and their identity; richer types
// (see pkg/priority) carry additional resolver-facing flags.
type Priority interface {
	// Rank returns the hardness on a fixed integer scale where larger means
	// harder (0 is the hardest dependency class, -6 the softest).
	Rank() int
}

// RankPriority is a bare integer priority, useful when callers have no
// dependency classification and only need relative ordering.
type RankPriority int

// Rank returns the integer itself.
func (p RankPriority) Rank() int { return int(p) }

// DefaultPriority is recorded when an edge is added with a nil priority.
const DefaultPriority = RankPriority(0)

// priorityList is the multiset of priorities recorded for one edge, sorted
// ascending by rank. Both adjacency directions of an edge reference the same
// priorityList, so an insertion is visible from the dependency and the
// dependent view at once. That sharing is load-bearing: Add relies on it, and
// Clone preserves it within the cloned graph.
type priorityList struct {
	ps []Priority
}

// insert adds p keeping ascending rank order. Insertion is skipped only when
// p is identical (interface equality, i.e. same pointer for pointer types) to
// the most recently recorded maximum; two distinct but value-equal priorities
// each occupy a slot.
func (l *priorityList) insert(p Priority) {
	if n := len(l.ps); n > 0 && l.ps[n-1] == p {
		return
	}
	i, _ := slices.BinarySearchFunc(l.ps, p, func(a, b Priority) int {
		// Insert after equal ranks so the newest of equals becomes the max.
		if a.Rank() <= b.Rank() {
			return -1
		}
		return 1
	})
	l.ps = slices.Insert(l.ps, i, p)
}

// max returns the hardest recorded priority. A priorityList is never empty
// while reachable from the graph.
func (l *priorityList) max() Priority { return l.ps[len(l.ps)-1] }

// nodeInfo holds one node's adjacency. children are the node's dependencies
// (edges out), parents its dependents (edges in). The childOrder/parentOrder
// slices mirror the map keys in edge-insertion order; every user-visible
// neighbor enumeration walks those slices, never the maps.
type nodeInfo[N comparable] struct {
	children    map[N]*priorityList
	childOrder  []N
	parents     map[N]*priorityList
	parentOrder []N
	payload     N
}

// Graph is a directed graph of comparable node keys with multiply-weighted
// edges. An edge node→parent means "node depends on parent". The zero value
// is not usable; create instances with [New].
type Graph[N comparable] struct {
	nodes map[N]*nodeInfo[N]
	order []N // node keys in first-insertion order
}

// New creates an empty graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{nodes: make(map[N]*nodeInfo[N])}
}

func (g *Graph[N]) ensure(node N) *nodeInfo[N] {
	info, ok := g.nodes[node]
	if !ok {
		info = &nodeInfo[N]{
			children: make(map[N]*priorityList),
			parents:  make(map[N]*priorityList),
			payload:  node,
		}
		g.nodes[node] = info
		g.order = append(g.order, node)
	}
	return info
}

// AddNode declares node without any edge, creating it if absent. This is how
// the resolver registers a unit whose dependencies are not yet known.
func (g *Graph[N]) AddNode(node N) {
	g.ensure(node)
}

// Add records the edge node→parent ("node depends on parent") with the given
// priority, creating either endpoint if absent. A nil priority records
// [DefaultPriority]. Adding the same edge again accumulates priorities in the
// edge's multiset; the hardest one wins for filtering purposes, so a soft
// duplicate of a hard relationship never weakens it.
func (g *Graph[N]) Add(node, parent N, prio Priority) {
	info := g.ensure(node)
	parentInfo := g.ensure(parent)

	if prio == nil {
		prio = DefaultPriority
	}

	list, ok := info.children[parent]
	if !ok {
		list = &priorityList{}
		info.children[parent] = list
		info.childOrder = append(info.childOrder, parent)
		parentInfo.parents[node] = list
		parentInfo.parentOrder = append(parentInfo.parentOrder, node)
	}
	list.insert(prio)
}

// Remove deletes node and every edge referencing it, in both directions.
// Returns [ErrNodeNotFound] if the node is absent.
func (g *Graph[N]) Remove(node N) error {
	info, ok := g.nodes[node]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNodeNotFound, node)
	}

	for _, parent := range info.childOrder {
		p := g.nodes[parent]
		delete(p.parents, node)
		p.parentOrder = deleteKey(p.parentOrder, node)
	}
	for _, child := range info.parentOrder {
		c := g.nodes[child]
		delete(c.children, node)
		c.childOrder = deleteKey(c.childOrder, node)
	}

	delete(g.nodes, node)
	g.order = deleteKey(g.order, node)
	return nil
}

// Discard is Remove without the missing-node error.
func (g *Graph[N]) Discard(node N) {
	_ = g.Remove(node)
}

// Update merges all nodes and edges of other into g, replaying other's
// per-edge priorities. Nodes with no dependencies in other are still
// declared.
func (g *Graph[N]) Update(other *Graph[N]) {
	for _, node := range other.order {
		info := other.nodes[node]
		if len(info.childOrder) == 0 {
			g.AddNode(node)
			continue
		}
		for _, parent := range info.childOrder {
			for _, prio := range info.children[parent].ps {
				g.Add(node, parent, prio)
			}
		}
	}
}

// Clear resets g to the empty graph.
func (g *Graph[N]) Clear() {
	g.nodes = make(map[N]*nodeInfo[N])
	g.order = nil
}

// DifferenceUpdate removes every listed node, rebuilding the insertion order
// once instead of per node. Absent keys are ignored.
func (g *Graph[N]) DifferenceUpdate(nodes []N) {
	doomed := make(map[N]bool, len(nodes))
	for _, n := range nodes {
		doomed[n] = true
	}

	order := make([]N, 0, len(g.order))
	for _, node := range g.order {
		if !doomed[node] {
			order = append(order, node)
			continue
		}
		info := g.nodes[node]
		for _, parent := range info.childOrder {
			if p, ok := g.nodes[parent]; ok {
				delete(p.parents, node)
			}
		}
		for _, child := range info.parentOrder {
			if c, ok := g.nodes[child]; ok {
				delete(c.children, node)
			}
		}
		delete(g.nodes, node)
	}
	g.order = order

	// Survivors may still list removed neighbors in their order slices.
	for _, node := range g.order {
		info := g.nodes[node]
		info.childOrder = slices.DeleteFunc(info.childOrder, func(n N) bool { return doomed[n] })
		info.parentOrder = slices.DeleteFunc(info.parentOrder, func(n N) bool { return doomed[n] })
	}
}

// HasEdge reports whether the directed edge child→parent (child depends on
// parent) exists. Absent endpoints yield false, not an error.
func (g *Graph[N]) HasEdge(child, parent N) bool {
	info, ok := g.nodes[child]
	if !ok {
		return false
	}
	_, ok = info.children[parent]
	return ok
}

// RemoveEdge deletes the directed edge child→parent. Both endpoint nodes stay
// in the graph even if now isolated, and an edge in the opposite direction is
// untouched. Returns [ErrNodeNotFound] if either endpoint is absent or
// [ErrEdgeNotFound] if the edge does not exist; nothing is modified on
// failure.
func (g *Graph[N]) RemoveEdge(child, parent N) error {
	for _, k := range []N{parent, child} {
		if _, ok := g.nodes[k]; !ok {
			return fmt.Errorf("%w: %v", ErrNodeNotFound, k)
		}
	}

	childInfo := g.nodes[child]
	parentInfo := g.nodes[parent]
	if _, ok := childInfo.children[parent]; !ok {
		return fmt.Errorf("%w: %v -> %v", ErrEdgeNotFound, child, parent)
	}
	if _, ok := parentInfo.parents[child]; !ok {
		return fmt.Errorf("%w: %v -> %v", ErrEdgeNotFound, child, parent)
	}

	delete(childInfo.children, parent)
	childInfo.childOrder = deleteKey(childInfo.childOrder, parent)
	delete(parentInfo.parents, child)
	parentInfo.parentOrder = deleteKey(parentInfo.parentOrder, child)
	return nil
}

// Contains reports whether node is in the graph.
func (g *Graph[N]) Contains(node N) bool {
	_, ok := g.nodes[node]
	return ok
}

// Get returns the payload stored for node. The boolean distinguishes an
// absent node from a zero-valued payload.
func (g *Graph[N]) Get(node N) (N, bool) {
	info, ok := g.nodes[node]
	if !ok {
		var zero N
		return zero, false
	}
	return info.payload, true
}

// AllNodes returns a copy of the node keys in first-insertion order.
func (g *Graph[N]) AllNodes() []N {
	return slices.Clone(g.order)
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int { return len(g.nodes) }

// IsEmpty reports whether the graph has no nodes.
func (g *Graph[N]) IsEmpty() bool { return len(g.nodes) == 0 }

// ChildNodes returns the nodes that node depends on (its dependencies), in
// edge-insertion order. Edges whose entire priority multiset is excluded by
// filter are skipped. Returns [ErrNodeNotFound] if node is absent.
func (g *Graph[N]) ChildNodes(node N, filter *Filter) ([]N, error) {
	info, ok := g.nodes[node]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, node)
	}
	return selectNeighbors(info.childOrder, info.children, filter), nil
}

// ParentNodes returns the nodes that depend on node (its dependents), in
// edge-insertion order, under the same filter semantics as ChildNodes.
// Returns [ErrNodeNotFound] if node is absent.
func (g *Graph[N]) ParentNodes(node N, filter *Filter) ([]N, error) {
	info, ok := g.nodes[node]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, node)
	}
	return selectNeighbors(info.parentOrder, info.parents, filter), nil
}

// EdgePriorities returns a copy of the priority multiset recorded for the
// edge child→parent, ascending by rank. Returns [ErrNodeNotFound] if either
// endpoint is absent or [ErrEdgeNotFound] if the edge does not exist.
func (g *Graph[N]) EdgePriorities(child, parent N) ([]Priority, error) {
	for _, k := range []N{parent, child} {
		if _, ok := g.nodes[k]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, k)
		}
	}
	list, ok := g.nodes[child].children[parent]
	if !ok {
		return nil, fmt.Errorf("%w: %v -> %v", ErrEdgeNotFound, child, parent)
	}
	return slices.Clone(list.ps), nil
}

// LeafNodes returns, in insertion order, every node with no qualifying
// children under filter. A leaf has no unresolved dependencies and is safe to
// process first in merge order.
func (g *Graph[N]) LeafNodes(filter *Filter) []N {
	var leaves []N
	for _, node := range g.order {
		info := g.nodes[node]
		if !hasQualifyingEdge(info.childOrder, info.children, filter) {
			leaves = append(leaves, node)
		}
	}
	return leaves
}

// RootNodes returns, in insertion order, every node with no qualifying
// parents under filter; nothing (that counts) depends on a root.
func (g *Graph[N]) RootNodes(filter *Filter) []N {
	var roots []N
	for _, node := range g.order {
		info := g.nodes[node]
		if !hasQualifyingEdge(info.parentOrder, info.parents, filter) {
			roots = append(roots, node)
		}
	}
	return roots
}

// Clone returns a structural copy of g. Node maps and order slices are
// duplicated, and each edge's priority list is copied exactly once and shared
// between the clone's two adjacency views of that edge, preserving the
// append-propagates-to-both-views invariant within the clone. Mutating the
// clone never affects the original.
func (g *Graph[N]) Clone() *Graph[N] {
	clone := New[N]()
	memo := make(map[*priorityList]*priorityList)

	copyList := func(list *priorityList) *priorityList {
		dup, ok := memo[list]
		if !ok {
			dup = &priorityList{ps: slices.Clone(list.ps)}
			memo[list] = dup
		}
		return dup
	}

	for node, info := range g.nodes {
		dup := &nodeInfo[N]{
			children:    make(map[N]*priorityList, len(info.children)),
			childOrder:  slices.Clone(info.childOrder),
			parents:     make(map[N]*priorityList, len(info.parents)),
			parentOrder: slices.Clone(info.parentOrder),
			payload:     info.payload,
		}
		for child, list := range info.children {
			dup.children[child] = copyList(list)
		}
		for parent, list := range info.parents {
			dup.parents[parent] = copyList(list)
		}
		clone.nodes[node] = dup
	}
	clone.order = slices.Clone(g.order)
	return clone
}

// DebugPrint writes a human-readable dump of the graph to w: each node, its
// dependencies, and the hardest priority on each edge. Diagnostic output
// only; no algorithm consumes it.
func (g *Graph[N]) DebugPrint(w io.Writer) {
	for _, node := range g.order {
		info := g.nodes[node]
		if len(info.childOrder) > 0 {
			fmt.Fprintf(w, "%v depends on\n", node)
		} else {
			fmt.Fprintf(w, "%v (no children)\n", node)
		}
		for _, child := range info.childOrder {
			fmt.Fprintf(w, "  %v (%v)\n", child, info.children[child].max())
		}
	}
}

// deleteKey removes the first occurrence of key from s.
func deleteKey[N comparable](s []N, key N) []N {
	for i, v := range s {
		if v == key {
			return slices.Delete(s, i, i+1)
		}
	}
	return s
}
