// Package priority classifies dependency edges by hardness.
//
// A [Dep] records the dependency classes an edge was discovered under
// (buildtime, runtime, post-runtime, optional, and their slot-operator
// variants) plus resolver-facing markers (satisfied, ignored, cross) that the
// graph itself never reads. The integer rank is a display ordering used when
// explaining circular dependencies to humans; authoritative merge-order
// decisions go through the filter predicates in this package instead.
package priority

import (
	"fmt"

	"github.com/hferras/depsolve/pkg/depgraph"
)

// Hardness ranks, hardest first. These feed diagnostic ordering only.
const (
	RankBuildtimeSlotOp = 0
	RankBuildtime       = -1
	RankRuntimeSlotOp   = -2
	RankRuntime         = -3
	RankRuntimePost     = -4
	RankOptional        = -5
	RankSoft            = -6
)

// Dep is the priority recorded on a dependency edge. Multiple class flags may
// be set when the same relationship was discovered under several dependency
// classes; the hardest set flag determines the category, except that optional
// always wins the rank computation (an optional dependency stays soft no
// matter how it was declared).
type Dep struct {
	Buildtime       bool
	BuildtimeSlotOp bool
	Runtime         bool
	RuntimeSlotOp   bool
	RuntimePost     bool
	Optional        bool

	// Satisfied marks a dependency already present on the system; read by
	// the resolver, not by the graph.
	Satisfied bool
	// Ignored excludes the edge from consideration entirely. It overrides
	// the display label but not the rank.
	Ignored bool
	// Cross marks a cross-compilation dependency; read by the resolver.
	Cross bool
}

var _ depgraph.Priority = (*Dep)(nil)

// Rank returns the hardness on the fixed scale:
//
//	buildtime_slot_op    0
//	buildtime           -1
//	runtime_slot_op     -2
//	runtime             -3
//	runtime_post        -4
//	optional            -5
//	(none of the above) -6
//
// Optional is checked first: an optional dependency is soft regardless of
// which other class flags are set.
func (p *Dep) Rank() int {
	switch {
	case p.Optional:
		return RankOptional
	case p.BuildtimeSlotOp:
		return RankBuildtimeSlotOp
	case p.Buildtime:
		return RankBuildtime
	case p.RuntimeSlotOp:
		return RankRuntimeSlotOp
	case p.Runtime:
		return RankRuntime
	case p.RuntimePost:
		return RankRuntimePost
	default:
		return RankSoft
	}
}

// Class returns the category label, first matching flag wins.
func (p *Dep) Class() string {
	switch {
	case p.Optional:
		return "optional"
	case p.BuildtimeSlotOp:
		return "buildtime_slot_op"
	case p.Buildtime:
		return "buildtime"
	case p.RuntimeSlotOp:
		return "runtime_slot_op"
	case p.Runtime:
		return "runtime"
	case p.RuntimePost:
		return "runtime_post"
	default:
		return "soft"
	}
}

// String returns the human-readable label. Ignored overrides the category
// label (but not the rank).
func (p *Dep) String() string {
	if p.Ignored {
		return "ignored"
	}
	return p.Class()
}

// FromClass builds a Dep from a category label as used in manifests and the
// JSON graph format.
func FromClass(class string) (*Dep, error) {
	switch class {
	case "buildtime":
		return &Dep{Buildtime: true}, nil
	case "buildtime_slot_op":
		return &Dep{Buildtime: true, BuildtimeSlotOp: true}, nil
	case "runtime":
		return &Dep{Runtime: true}, nil
	case "runtime_slot_op":
		return &Dep{Runtime: true, RuntimeSlotOp: true}, nil
	case "runtime_post":
		return &Dep{RuntimePost: true}, nil
	case "optional":
		return &Dep{Optional: true}, nil
	case "soft":
		return &Dep{}, nil
	default:
		return nil, fmt.Errorf("unknown dependency class %q", class)
	}
}
