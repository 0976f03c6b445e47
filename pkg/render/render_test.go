package render

import (
	"strings"
	"testing"

	"github.com/hferras/depsolve/pkg/depgraph"
	"github.com/hferras/depsolve/pkg/priority"
)

func TestToDOT(t *testing.T) {
	g := depgraph.New[string]()
	g.Add("app", "lib", &priority.Dep{Runtime: true})
	g.Add("app", "docs", &priority.Dep{Optional: true})
	g.Add("lib", "installer", &priority.Dep{RuntimePost: true})

	dot := ToDOT(g, Options{Labels: true})

	for _, want := range []string{
		`"app" -> "lib" [style=solid, label="runtime"];`,
		`"app" -> "docs" [style=dotted, label="optional"];`,
		`"lib" -> "installer" [style=dashed, label="runtime_post"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if !strings.HasPrefix(dot, "digraph deps {") || !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT output is not a well-formed digraph block")
	}
}

func TestToDOTHighlight(t *testing.T) {
	g := depgraph.New[string]()
	g.Add("a", "b", nil)
	g.Add("b", "a", nil)

	dot := ToDOT(g, Options{Highlight: []string{"a", "b"}})
	if !strings.Contains(dot, `"a" [label="a", color=red, penwidth=2];`) {
		t.Errorf("highlighted node not marked:\n%s", dot)
	}
}

func TestToDOTHardestPriorityWins(t *testing.T) {
	g := depgraph.New[string]()
	g.Add("a", "b", &priority.Dep{Optional: true})
	g.Add("a", "b", &priority.Dep{Buildtime: true})

	dot := ToDOT(g, Options{Labels: true})
	if !strings.Contains(dot, `label="buildtime"`) {
		t.Errorf("edge label should use the hardest priority:\n%s", dot)
	}
	if strings.Contains(dot, "style=dotted") {
		t.Errorf("soft duplicate weakened the edge style:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	build := func() string {
		g := depgraph.New[string]()
		g.Add("a", "b", nil)
		g.Add("a", "c", nil)
		g.Add("c", "d", nil)
		return ToDOT(g, Options{})
	}
	first := build()
	for range 5 {
		if build() != first {
			t.Fatal("DOT output is not deterministic")
		}
	}
}
