package priority

import (
	"fmt"
	"strings"

	"github.com/hferras/depsolve/pkg/depgraph"
)

// Predicates for the graph's predicate-mode filter, from strictest to most
// permissive. Each one treats an Ignored priority as always ignorable,
// whatever its rank.

// IgnoreOptional ignores optional and unclassified (soft) edges.
func IgnoreOptional(p depgraph.Priority) bool {
	return ignored(p) || p.Rank() <= RankOptional
}

// IgnoreSoft additionally ignores post-runtime edges.
func IgnoreSoft(p depgraph.Priority) bool {
	return ignored(p) || p.Rank() <= RankRuntimePost
}

// IgnoreMediumSoft additionally ignores plain runtime edges, keeping only
// buildtime and slot-operator relationships.
func IgnoreMediumSoft(p depgraph.Priority) bool {
	return ignored(p) || p.Rank() <= RankRuntime
}

// IgnoreMedium ignores everything softer than buildtime, the deepest
// relaxation short of ignoring hard build dependencies themselves.
func IgnoreMedium(p depgraph.Priority) bool {
	return ignored(p) || p.Rank() <= RankRuntimeSlotOp
}

func ignored(p depgraph.Priority) bool {
	d, ok := p.(*Dep)
	return ok && d.Ignored
}

// RelaxLadder is the relaxation sequence used when draining leaves for merge
// order: no filter first, then progressively softer edges are ignored until
// a leaf appears. The nil first entry means "count every edge".
func RelaxLadder() []*depgraph.Filter {
	return []*depgraph.Filter{
		nil,
		depgraph.IgnoreFunc(IgnoreOptional),
		depgraph.IgnoreFunc(IgnoreSoft),
		depgraph.IgnoreFunc(IgnoreMediumSoft),
		depgraph.IgnoreFunc(IgnoreMedium),
	}
}

// RelaxNames lists the accepted names for FilterByName, in increasing
// permissiveness.
func RelaxNames() []string {
	return []string{"none", "optional", "soft", "medium-soft", "medium"}
}

// FilterByName maps a relaxation name to its filter. "none" maps to nil (no
// filtering). Used by the CLI --relax flag and the server's relax query
// parameter.
func FilterByName(name string) (*depgraph.Filter, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "optional":
		return depgraph.IgnoreFunc(IgnoreOptional), nil
	case "soft":
		return depgraph.IgnoreFunc(IgnoreSoft), nil
	case "medium-soft":
		return depgraph.IgnoreFunc(IgnoreMediumSoft), nil
	case "medium":
		return depgraph.IgnoreFunc(IgnoreMedium), nil
	default:
		return nil, fmt.Errorf("unknown relax level %q (expected one of %s)",
			name, strings.Join(RelaxNames(), ", "))
	}
}
