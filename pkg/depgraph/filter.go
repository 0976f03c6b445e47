package depgraph

// Filter excludes edges from traversal and query operations based on their
// priorities. A nil *Filter means no filtering: every edge counts.
//
// Two modes exist, mirroring the two ways the resolver relaxes a graph:
//
//   - [IgnoreRank]: an edge counts only if its hardest priority strictly
//     exceeds a rank threshold. A coarse numeric cutoff.
//   - [IgnoreFunc]: an edge counts if at least one of its priorities fails
//     the predicate. Priorities are checked hardest-first so a single hard
//     relationship short-circuits the scan.
//
// Both modes agree for monotone predicates; the predicate form additionally
// supports policies that a pure rank cutoff cannot express, such as ignoring
// soft edges except slot-operator ones.
type Filter struct {
	threshold int
	pred      func(Priority) bool
}

// IgnoreRank returns a filter under which an edge counts only if the edge's
// maximum priority rank is strictly greater than threshold.
func IgnoreRank(threshold int) *Filter {
	return &Filter{threshold: threshold}
}

// IgnoreFunc returns a filter under which an edge is excluded only if every
// priority on the edge satisfies pred.
func IgnoreFunc(pred func(Priority) bool) *Filter {
	return &Filter{pred: pred}
}

// blocksEdge reports whether the whole edge is excluded under f.
func (f *Filter) blocksEdge(list *priorityList) bool {
	if f == nil {
		return false
	}
	if f.pred == nil {
		return list.max().Rank() <= f.threshold
	}
	for i := len(list.ps) - 1; i >= 0; i-- {
		if !f.pred(list.ps[i]) {
			return false
		}
	}
	return true
}

// selectNeighbors returns the neighbors (in insertion order) whose edge
// survives the filter.
func selectNeighbors[N comparable](order []N, edges map[N]*priorityList, f *Filter) []N {
	if f == nil {
		return append([]N(nil), order...)
	}
	var out []N
	for _, n := range order {
		if !f.blocksEdge(edges[n]) {
			out = append(out, n)
		}
	}
	return out
}

// hasQualifyingEdge reports whether any edge in the adjacency survives the
// filter. Used by leaf/root detection, which only needs existence.
func hasQualifyingEdge[N comparable](order []N, edges map[N]*priorityList, f *Filter) bool {
	if f == nil {
		return len(order) > 0
	}
	for _, n := range order {
		if !f.blocksEdge(edges[n]) {
			return true
		}
	}
	return false
}
