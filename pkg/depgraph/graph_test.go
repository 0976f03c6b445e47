package depgraph

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestAddTracksInsertionOrder(t *testing.T) {
	g := New[string]()
	g.Add("pkgA", "pkgB", nil)
	g.Add("pkgB", "pkgC", nil)
	g.AddNode("pkgD")
	g.Add("pkgA", "pkgC", nil) // no new nodes

	want := []string{"pkgA", "pkgB", "pkgC", "pkgD"}
	if got := g.AllNodes(); !slices.Equal(got, want) {
		t.Errorf("AllNodes() = %v, want %v", got, want)
	}
	if g.Len() != 4 {
		t.Errorf("Len() = %d, want 4", g.Len())
	}
}

func TestAddNodeStandalone(t *testing.T) {
	g := New[string]()
	g.AddNode("a")

	if !g.Contains("a") {
		t.Fatal("Contains(a) = false after AddNode")
	}
	if got := g.LeafNodes(nil); !slices.Equal(got, []string{"a"}) {
		t.Errorf("LeafNodes() = %v, want [a]", got)
	}
	if got := g.RootNodes(nil); !slices.Equal(got, []string{"a"}) {
		t.Errorf("RootNodes() = %v, want [a]", got)
	}
}

func TestLeafAndRootNodes(t *testing.T) {
	g := New[string]()
	runtime := RankPriority(-3)
	g.Add("pkgA", "pkgB", runtime)
	g.Add("pkgB", "pkgC", runtime)

	if got := g.LeafNodes(nil); !slices.Equal(got, []string{"pkgC"}) {
		t.Errorf("LeafNodes() = %v, want [pkgC]", got)
	}
	if got := g.RootNodes(nil); !slices.Equal(got, []string{"pkgA"}) {
		t.Errorf("RootNodes() = %v, want [pkgA]", got)
	}
}

func TestEdgeSymmetry(t *testing.T) {
	g := New[string]()
	g.Add("child", "parent", nil)

	if !g.HasEdge("child", "parent") {
		t.Error("HasEdge(child, parent) = false")
	}
	if g.HasEdge("parent", "child") {
		t.Error("HasEdge(parent, child) = true for reversed direction")
	}

	children, err := g.ChildNodes("child", nil)
	if err != nil {
		t.Fatalf("ChildNodes: %v", err)
	}
	if !slices.Contains(children, "parent") {
		t.Errorf("ChildNodes(child) = %v, missing parent", children)
	}

	parents, err := g.ParentNodes("parent", nil)
	if err != nil {
		t.Fatalf("ParentNodes: %v", err)
	}
	if !slices.Contains(parents, "child") {
		t.Errorf("ParentNodes(parent) = %v, missing child", parents)
	}
}

func TestHasEdgeAbsentNodes(t *testing.T) {
	g := New[string]()
	g.AddNode("a")
	if g.HasEdge("a", "ghost") || g.HasEdge("ghost", "a") {
		t.Error("HasEdge with absent endpoint should be false, not an error")
	}
}

func TestRemove(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", nil)
	g.Add("b", "c", nil)
	g.Add("d", "b", nil)

	if err := g.Remove("b"); err != nil {
		t.Fatalf("Remove(b): %v", err)
	}

	if g.Contains("b") {
		t.Error("Contains(b) = true after Remove")
	}
	for _, n := range g.AllNodes() {
		children, err := g.ChildNodes(n, nil)
		if err != nil {
			t.Fatalf("ChildNodes(%s): %v", n, err)
		}
		if slices.Contains(children, "b") {
			t.Errorf("ChildNodes(%s) still references removed node", n)
		}
		parents, err := g.ParentNodes(n, nil)
		if err != nil {
			t.Fatalf("ParentNodes(%s): %v", n, err)
		}
		if slices.Contains(parents, "b") {
			t.Errorf("ParentNodes(%s) still references removed node", n)
		}
	}

	if err := g.Remove("ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Remove(ghost) = %v, want ErrNodeNotFound", err)
	}
}

func TestDiscard(t *testing.T) {
	g := New[string]()
	g.AddNode("a")
	g.Discard("a")
	g.Discard("ghost") // no panic, no error

	if !g.IsEmpty() {
		t.Error("graph not empty after Discard")
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New[string]()
	g.Add("x", "y", nil)

	if err := g.RemoveEdge("x", "y"); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if g.HasEdge("x", "y") {
		t.Error("HasEdge(x, y) = true after RemoveEdge")
	}
	if !g.Contains("x") || !g.Contains("y") {
		t.Error("RemoveEdge should leave isolated endpoints in the graph")
	}
}

func TestRemoveEdgeErrors(t *testing.T) {
	g := New[string]()
	g.Add("x", "y", nil)
	g.AddNode("z")

	tests := []struct {
		name          string
		child, parent string
		want          error
	}{
		{"MissingParent", "x", "ghost", ErrNodeNotFound},
		{"MissingChild", "ghost", "y", ErrNodeNotFound},
		{"NoSuchEdge", "z", "y", ErrEdgeNotFound},
		{"ReversedDirection", "y", "x", ErrEdgeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.RemoveEdge(tt.child, tt.parent); !errors.Is(err, tt.want) {
				t.Errorf("RemoveEdge(%s, %s) = %v, want %v", tt.child, tt.parent, err, tt.want)
			}
			// Failure must not mutate the original edge.
			if !g.HasEdge("x", "y") {
				t.Error("failed RemoveEdge mutated graph state")
			}
		})
	}
}

func TestGet(t *testing.T) {
	g := New[string]()
	g.AddNode("a")

	if v, ok := g.Get("a"); !ok || v != "a" {
		t.Errorf("Get(a) = %q, %v; want a, true", v, ok)
	}
	if _, ok := g.Get("ghost"); ok {
		t.Error("Get(ghost) ok = true")
	}
}

func TestUpdate(t *testing.T) {
	src := New[string]()
	src.Add("a", "b", RankPriority(-3))
	src.Add("a", "b", RankPriority(-1))
	src.AddNode("lonely")

	dst := New[string]()
	dst.Add("c", "a", RankPriority(0))
	dst.Update(src)

	if !dst.HasEdge("a", "b") || !dst.HasEdge("c", "a") {
		t.Fatal("Update lost edges")
	}
	if !dst.Contains("lonely") {
		t.Error("Update dropped standalone node")
	}
	ps, err := dst.EdgePriorities("a", "b")
	if err != nil {
		t.Fatalf("EdgePriorities: %v", err)
	}
	if len(ps) != 2 || ps[0].Rank() != -3 || ps[1].Rank() != -1 {
		t.Errorf("replayed priorities = %v, want ranks [-3 -1]", ps)
	}
}

func TestClear(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", nil)
	g.Clear()

	if !g.IsEmpty() || len(g.AllNodes()) != 0 {
		t.Error("Clear left state behind")
	}
}

func TestDifferenceUpdate(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", nil)
	g.Add("b", "c", nil)
	g.Add("d", "c", nil)
	g.AddNode("e")

	g.DifferenceUpdate([]string{"b", "e", "ghost"})

	if got := g.AllNodes(); !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Errorf("AllNodes() = %v, want [a c d]", got)
	}
	for _, n := range g.AllNodes() {
		children, _ := g.ChildNodes(n, nil)
		parents, _ := g.ParentNodes(n, nil)
		if slices.Contains(children, "b") || slices.Contains(parents, "b") {
			t.Errorf("node %s still references removed node b", n)
		}
	}
	if !g.HasEdge("d", "c") {
		t.Error("unrelated edge d->c was lost")
	}
}

func TestThresholdFilter(t *testing.T) {
	// Inserting a soft and a hard priority on the same edge, in either
	// order, must behave like inserting just the hard one for any threshold
	// between them.
	soft, hard := RankPriority(-5), RankPriority(-1)

	orders := map[string][]RankPriority{
		"SoftThenHard": {soft, hard},
		"HardThenSoft": {hard, soft},
	}
	for name, prios := range orders {
		t.Run(name, func(t *testing.T) {
			g := New[string]()
			for _, p := range prios {
				g.Add("a", "b", p)
			}

			children, err := g.ChildNodes("a", IgnoreRank(-3))
			if err != nil {
				t.Fatalf("ChildNodes: %v", err)
			}
			if !slices.Equal(children, []string{"b"}) {
				t.Errorf("ChildNodes(a, threshold -3) = %v, want [b]", children)
			}

			// Threshold at the hard rank excludes the edge (strict >).
			children, _ = g.ChildNodes("a", IgnoreRank(-1))
			if len(children) != 0 {
				t.Errorf("ChildNodes(a, threshold -1) = %v, want none", children)
			}

			if leaves := g.LeafNodes(IgnoreRank(-3)); slices.Contains(leaves, "a") {
				t.Error("a reported as leaf despite hard child edge")
			}
		})
	}
}

func TestPredicateFilter(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", RankPriority(-5))
	g.Add("c", "b", RankPriority(-5))
	g.Add("c", "b", RankPriority(-1))

	ignoreSoft := IgnoreFunc(func(p Priority) bool { return p.Rank() <= -4 })

	parents, err := g.ParentNodes("b", ignoreSoft)
	if err != nil {
		t.Fatalf("ParentNodes: %v", err)
	}
	// a's only priority is soft: excluded. c carries a hard one: included.
	if !slices.Equal(parents, []string{"c"}) {
		t.Errorf("ParentNodes(b, ignoreSoft) = %v, want [c]", parents)
	}

	// a's soft dependency on b is ignored, so a counts as a leaf alongside b;
	// c keeps its hard edge.
	if got := g.LeafNodes(ignoreSoft); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("LeafNodes(ignoreSoft) = %v, want [a b]", got)
	}
	if got := g.RootNodes(ignoreSoft); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("RootNodes(ignoreSoft) = %v, want [a c]", got)
	}
}

func TestFilteredQueriesMissingNode(t *testing.T) {
	g := New[string]()
	if _, err := g.ChildNodes("ghost", nil); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("ChildNodes(ghost) = %v, want ErrNodeNotFound", err)
	}
	if _, err := g.ParentNodes("ghost", nil); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("ParentNodes(ghost) = %v, want ErrNodeNotFound", err)
	}
}

func TestPriorityIdentityDedup(t *testing.T) {
	// Insertion is skipped only when the same priority object is re-added
	// immediately; value-equal but distinct objects each occupy a slot. This
	// mirrors long-standing resolver behavior and is asserted here so a
	// future switch to value-based dedup is a conscious decision.
	type flagged struct{ RankPriority }
	p := &flagged{RankPriority(-3)}
	q := &flagged{RankPriority(-3)}

	g := New[string]()
	g.Add("a", "b", p)
	g.Add("a", "b", p) // identical object: skipped
	g.Add("a", "b", q) // equal value, distinct object: recorded

	ps, err := g.EdgePriorities("a", "b")
	if err != nil {
		t.Fatalf("EdgePriorities: %v", err)
	}
	if len(ps) != 2 {
		t.Errorf("len(priorities) = %d, want 2", len(ps))
	}
}

func TestEdgePrioritiesSorted(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", RankPriority(-1))
	g.Add("a", "b", RankPriority(-5))
	g.Add("a", "b", RankPriority(-3))

	ps, err := g.EdgePriorities("a", "b")
	if err != nil {
		t.Fatalf("EdgePriorities: %v", err)
	}
	ranks := make([]int, len(ps))
	for i, p := range ps {
		ranks[i] = p.Rank()
	}
	if !slices.Equal(ranks, []int{-5, -3, -1}) {
		t.Errorf("ranks = %v, want ascending [-5 -3 -1]", ranks)
	}
}

func TestClone(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", RankPriority(-3))
	g.Add("b", "c", RankPriority(-1))
	g.AddNode("d")

	clone := g.Clone()

	if !slices.Equal(clone.AllNodes(), g.AllNodes()) {
		t.Errorf("clone nodes = %v, want %v", clone.AllNodes(), g.AllNodes())
	}
	ps, err := clone.EdgePriorities("a", "b")
	if err != nil || len(ps) != 1 || ps[0].Rank() != -3 {
		t.Errorf("clone edge priorities = %v, %v", ps, err)
	}

	// Mutating the clone must not leak into the original.
	clone.Add("a", "b", RankPriority(0))
	if err := clone.Remove("c"); err != nil {
		t.Fatalf("Remove on clone: %v", err)
	}

	if !g.Contains("c") {
		t.Error("removing from clone removed node from original")
	}
	ps, _ = g.EdgePriorities("a", "b")
	if len(ps) != 1 {
		t.Errorf("original edge priorities grew to %v after clone mutation", ps)
	}
}

func TestDebugPrint(t *testing.T) {
	g := New[string]()
	g.Add("a", "b", RankPriority(-3))

	var buf bytes.Buffer
	g.DebugPrint(&buf)
	out := buf.String()

	if !strings.Contains(out, "a depends on") {
		t.Errorf("missing dependent line in dump:\n%s", out)
	}
	if !strings.Contains(out, "b (no children)") {
		t.Errorf("missing leaf line in dump:\n%s", out)
	}
	if !strings.Contains(out, "  b (-3)") {
		t.Errorf("missing dependency priority line in dump:\n%s", out)
	}
}
