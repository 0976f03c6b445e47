package depgraph

import (
	"fmt"
	"iter"
)

// Visit is one step of a breadth-first traversal. HasParent is false only for
// the start node; for every other node Parent is the node it was first
// discovered from.
type Visit[N comparable] struct {
	Node      N
	Parent    N
	HasParent bool
}

// BFS returns a lazy breadth-first traversal starting at start, expanding
// through child edges that survive filter. Each reachable node is yielded
// exactly once, in first-discovery order; discovery follows edge-insertion
// order, so the sequence is deterministic. The sequence is restartable (each
// range re-traverses from scratch) but not resumable mid-traversal.
//
// Returns [ErrNodeNotFound] if start is absent. The graph must not be mutated
// while a traversal is being consumed.
func (g *Graph[N]) BFS(start N, filter *Filter) (iter.Seq[Visit[N]], error) {
	if !g.Contains(start) {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, start)
	}

	return func(yield func(Visit[N]) bool) {
		queue := []Visit[N]{{Node: start}}
		enqueued := map[N]bool{start: true}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			if !yield(v) {
				return
			}
			children, err := g.ChildNodes(v.Node, filter)
			if err != nil {
				return // node vanished mid-traversal
			}
			for _, child := range children {
				if enqueued[child] {
					continue
				}
				enqueued[child] = true
				queue = append(queue, Visit[N]{Node: child, Parent: v.Node, HasParent: true})
			}
		}
	}, nil
}

// ShortestPath returns the node sequence of a shortest path from start to end
// inclusive, following child edges that survive filter, or nil if end is
// unreachable. Returns [ErrNodeNotFound] if either endpoint is absent.
func (g *Graph[N]) ShortestPath(start, end N, filter *Filter) ([]N, error) {
	if !g.Contains(start) {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, start)
	}
	if !g.Contains(end) {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, end)
	}

	seq, err := g.BFS(start, filter)
	if err != nil {
		return nil, err
	}

	paths := make(map[N][]N)
	for v := range seq {
		var base []N
		if v.HasParent {
			base = paths[v.Parent]
		}
		path := make([]N, len(base)+1)
		copy(path, base)
		path[len(base)] = v.Node
		paths[v.Node] = path
		if v.Node == end {
			return path, nil
		}
	}
	return nil, nil
}

// Cycles returns every shortest circular dependency chain, as full node
// paths. For each node, each qualifying child edge is probed for the shortest
// way back to the node; among that node's probes, all paths achieving the
// minimum length are reported, not just the first found, so the result does
// not depend on container iteration order. A maxLength of 0 means unbounded;
// otherwise only cycles of at most maxLength nodes are returned.
func (g *Graph[N]) Cycles(filter *Filter, maxLength int) [][]N {
	var all [][]N
	for _, node := range g.order {
		var shortest []N
		var candidates [][]N

		children, err := g.ChildNodes(node, filter)
		if err != nil {
			continue
		}
		for _, child := range children {
			path, err := g.ShortestPath(child, node, filter)
			if err != nil || path == nil {
				continue
			}
			if shortest == nil || len(shortest) >= len(path) {
				shortest = path
				candidates = append(candidates, path)
			}
		}
		if shortest == nil || (maxLength > 0 && len(shortest) > maxLength) {
			continue
		}
		for _, path := range candidates {
			if len(path) == len(shortest) {
				all = append(all, path)
			}
		}
	}
	return all
}
