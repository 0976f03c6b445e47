// Package render converts dependency graphs to Graphviz DOT and SVG for
// visual inspection. Edge styling encodes hardness: solid for buildtime and
// runtime relationships, dashed for post-runtime, dotted for optional and
// soft ones, so relaxation candidates stand out at a glance.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/hferras/depsolve/pkg/depgraph"
	"github.com/hferras/depsolve/pkg/priority"
)

// Options configures DOT generation.
type Options struct {
	// Labels includes the hardest priority label on each edge.
	Labels bool
	// Highlight marks the listed nodes (typically cycle members) with a red
	// outline.
	Highlight []string
}

// ToDOT converts a graph to Graphviz DOT. Nodes are emitted in insertion
// order and edges point from dependent to dependency, so the drawing reads
// top-down from roots to leaves.
func ToDOT(g *depgraph.Graph[string], opts Options) string {
	marked := make(map[string]bool, len(opts.Highlight))
	for _, n := range opts.Highlight {
		marked[n] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.AllNodes() {
		attrs := []string{fmt.Sprintf("label=%q", n)}
		if marked[n] {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range g.AllNodes() {
		children, err := g.ChildNodes(n, nil)
		if err != nil {
			continue
		}
		for _, child := range children {
			ps, err := g.EdgePriorities(n, child)
			if err != nil || len(ps) == 0 {
				continue
			}
			hardest := ps[len(ps)-1]
			attrs := []string{fmt.Sprintf("style=%s", edgeStyle(hardest))}
			if opts.Labels {
				attrs = append(attrs, fmt.Sprintf("label=%q", priorityLabel(hardest)))
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", n, child, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// edgeStyle picks a line style from the hardest priority on the edge.
func edgeStyle(p depgraph.Priority) string {
	switch {
	case p.Rank() >= priority.RankRuntime:
		return "solid"
	case p.Rank() == priority.RankRuntimePost:
		return "dashed"
	default:
		return "dotted"
	}
}

func priorityLabel(p depgraph.Priority) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%d", p.Rank())
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
