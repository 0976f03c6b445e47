// Package mergeorder computes a processing order for a dependency graph by
// repeatedly draining leaves. When no leaf exists under the full edge set,
// progressively softer edges are ignored (the relaxation ladder) until one
// appears; nodes locked in hard cycles that no relaxation breaks are reported
// unresolved together with their shortest cycles.
package mergeorder

import (
	"github.com/hferras/depsolve/pkg/depgraph"
	"github.com/hferras/depsolve/pkg/priority"
)

// Rung is one relaxation level: a name for reporting and the filter applied
// when searching for leaves. A nil filter counts every edge.
type Rung struct {
	Name   string
	Filter *depgraph.Filter
}

// Standard returns the default ladder, from no relaxation to ignoring
// everything softer than buildtime.
func Standard() []Rung {
	names := priority.RelaxNames()
	filters := priority.RelaxLadder()
	rungs := make([]Rung, len(filters))
	for i := range filters {
		rungs[i] = Rung{Name: names[i], Filter: filters[i]}
	}
	return rungs
}

// Step is one batch of nodes drained together, tagged with the relaxation
// level that was needed to expose them.
type Step[N comparable] struct {
	Nodes []N
	Relax string
}

// Plan is the outcome of a merge-order computation.
type Plan[N comparable] struct {
	Steps      []Step[N]
	Unresolved []N    // nodes no relaxation level could drain
	Cycles     [][]N  // shortest cycles among the unresolved nodes
}

// Complete reports whether every node was ordered.
func (p *Plan[N]) Complete() bool { return len(p.Unresolved) == 0 }

// Order flattens the steps into a single processing sequence.
func (p *Plan[N]) Order() []N {
	var out []N
	for _, s := range p.Steps {
		out = append(out, s.Nodes...)
	}
	return out
}

// Compute drains g leaf-first using the given ladder. The input graph is
// cloned and never modified. After every successful drain the search restarts
// at the first rung, so relaxation is applied only as long as it is needed.
// An empty ladder behaves like a single unfiltered rung.
func Compute[N comparable](g *depgraph.Graph[N], ladder []Rung) *Plan[N] {
	if len(ladder) == 0 {
		ladder = []Rung{{Name: "none"}}
	}

	work := g.Clone()
	plan := &Plan[N]{}

	for !work.IsEmpty() {
		drained := false
		for _, rung := range ladder {
			leaves := work.LeafNodes(rung.Filter)
			if len(leaves) == 0 {
				continue
			}
			plan.Steps = append(plan.Steps, Step[N]{Nodes: leaves, Relax: rung.Name})
			work.DifferenceUpdate(leaves)
			drained = true
			break
		}
		if !drained {
			plan.Unresolved = work.AllNodes()
			plan.Cycles = work.Cycles(nil, 0)
			break
		}
	}
	return plan
}
