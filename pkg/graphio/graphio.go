// Package graphio is the canonical serialization format for dependency
// graphs, used for API responses, storage and the export command. The format
// round-trips: export followed by re-import reproduces the same graph,
// including each edge's full priority multiset.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hferras/depsolve/pkg/depgraph"
	"github.com/hferras/depsolve/pkg/priority"
)

// Graph is the serialized form. Nodes appear in graph insertion order and
// edges in per-node edge-insertion order, so serializing the same graph twice
// yields identical bytes.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one unit. Declaring nodes separately from edges preserves isolated
// nodes across the round trip.
type Node struct {
	ID string `json:"id" bson:"id"`
}

// Edge is one directed dependency: Child depends on Parent. Priorities lists
// the edge's multiset in ascending hardness.
type Edge struct {
	Child      string     `json:"child" bson:"child"`
	Parent     string     `json:"parent" bson:"parent"`
	Priorities []Priority `json:"priorities" bson:"priorities"`
}

// Priority is one recorded priority, as a class label plus resolver flags.
type Priority struct {
	Class     string `json:"class" bson:"class"`
	Satisfied bool   `json:"satisfied,omitempty" bson:"satisfied,omitempty"`
	Ignored   bool   `json:"ignored,omitempty" bson:"ignored,omitempty"`
	Cross     bool   `json:"cross,omitempty" bson:"cross,omitempty"`
}

// FromGraph converts a dependency graph to its serialized form.
func FromGraph(g *depgraph.Graph[string]) Graph {
	out := Graph{Nodes: make([]Node, 0, g.Len())}
	for _, id := range g.AllNodes() {
		out.Nodes = append(out.Nodes, Node{ID: id})

		children, err := g.ChildNodes(id, nil)
		if err != nil {
			continue
		}
		for _, child := range children {
			ps, err := g.EdgePriorities(id, child)
			if err != nil {
				continue
			}
			edge := Edge{Child: id, Parent: child, Priorities: make([]Priority, len(ps))}
			for i, p := range ps {
				edge.Priorities[i] = fromPriority(p)
			}
			out.Edges = append(out.Edges, edge)
		}
	}
	return out
}

// ToGraph rebuilds the dependency graph from its serialized form. Edge
// endpoints need not appear in Nodes; they are created on first use, matching
// resolver behavior. Returns an error on an unknown priority class.
func ToGraph(gj Graph) (*depgraph.Graph[string], error) {
	g := depgraph.New[string]()
	for _, n := range gj.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		g.AddNode(n.ID)
	}
	for _, e := range gj.Edges {
		if e.Child == "" || e.Parent == "" {
			return nil, fmt.Errorf("edge %q -> %q: empty endpoint", e.Child, e.Parent)
		}
		if len(e.Priorities) == 0 {
			g.Add(e.Child, e.Parent, nil)
			continue
		}
		for _, pj := range e.Priorities {
			p, err := toPriority(pj)
			if err != nil {
				return nil, fmt.Errorf("edge %s -> %s: %w", e.Child, e.Parent, err)
			}
			g.Add(e.Child, e.Parent, p)
		}
	}
	return g, nil
}

// Marshal serializes to indented JSON suitable for files and API bodies.
func Marshal(gj Graph) ([]byte, error) {
	return json.MarshalIndent(gj, "", "  ")
}

// Unmarshal deserializes JSON bytes to a Graph.
func Unmarshal(data []byte) (Graph, error) {
	var gj Graph
	if err := json.Unmarshal(data, &gj); err != nil {
		return Graph{}, err
	}
	return gj, nil
}

// Read parses a serialized graph from r and rebuilds it.
func Read(r io.Reader) (*depgraph.Graph[string], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	gj, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return ToGraph(gj)
}

// Write serializes g to w as indented JSON with a trailing newline.
func Write(w io.Writer, g *depgraph.Graph[string]) error {
	data, err := Marshal(FromGraph(g))
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func fromPriority(p depgraph.Priority) Priority {
	if d, ok := p.(*priority.Dep); ok {
		return Priority{
			Class:     d.Class(),
			Satisfied: d.Satisfied,
			Ignored:   d.Ignored,
			Cross:     d.Cross,
		}
	}
	return Priority{Class: classForRank(p.Rank())}
}

func toPriority(pj Priority) (*priority.Dep, error) {
	d, err := priority.FromClass(pj.Class)
	if err != nil {
		return nil, err
	}
	d.Satisfied = pj.Satisfied
	d.Ignored = pj.Ignored
	d.Cross = pj.Cross
	return d, nil
}

// classForRank maps bare integer priorities onto the nearest class label so
// graphs built with ad-hoc ranks still serialize.
func classForRank(rank int) string {
	switch {
	case rank >= priority.RankBuildtimeSlotOp:
		return "buildtime_slot_op"
	case rank == priority.RankBuildtime:
		return "buildtime"
	case rank == priority.RankRuntimeSlotOp:
		return "runtime_slot_op"
	case rank == priority.RankRuntime:
		return "runtime"
	case rank == priority.RankRuntimePost:
		return "runtime_post"
	case rank == priority.RankOptional:
		return "optional"
	default:
		return "soft"
	}
}
