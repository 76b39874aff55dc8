package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/listgraph/pkg/dag"
)

// spanning builds app → lib → core plus a shortcut app → core.
func spanning() *dag.DAG {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "app"})
	g.AddNode(dag.Node{ID: "lib"})
	g.AddNode(dag.Node{ID: "core"})
	g.AddEdge(dag.Edge{From: "app", To: "lib"})
	g.AddEdge(dag.Edge{From: "lib", To: "core"})
	g.AddEdge(dag.Edge{From: "app", To: "core", Meta: dag.Metadata{"weight": 2}})
	return g
}

func TestCloneSpanningEdges_LongestPath(t *testing.T) {
	g := spanning()
	AssignLayers(g)

	created := CloneSpanningEdges(g)
	if created != 1 {
		t.Fatalf("CloneSpanningEdges() = %d, want 1", created)
	}

	clone, ok := g.Node("core#1")
	if !ok {
		t.Fatal("clone core#1 not created")
	}
	if !clone.IsClone() || clone.OriginalID != "core" || clone.Row != 1 {
		t.Errorf("clone = %+v, want clone of core at row 1", clone)
	}
	if got := g.Children("app"); len(got) != 2 || got[1] != "core#1" {
		t.Errorf("Children(app) = %v, want [lib core#1]", got)
	}
	for _, e := range g.Edges() {
		if e.To == "core#1" && e.Meta["weight"] != 2 {
			t.Errorf("edge metadata not carried over: %v", e.Meta)
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestCloneSpanningEdges_ShortestPath(t *testing.T) {
	g := spanning()
	AssignShallowLayers(g)

	// core sits at row 1 next to lib, so lib → core points backwards.
	if n, _ := g.Node("core"); n.Row != 1 {
		t.Fatalf("core row = %d, want 1", n.Row)
	}
	if created := CloneSpanningEdges(g); created != 1 {
		t.Fatalf("CloneSpanningEdges() = %d, want 1", created)
	}
	if _, ok := g.Node("core#2"); !ok {
		t.Error("clone core#2 not created")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestCloneSpanningEdges_SharedClonePerRow(t *testing.T) {
	// a and b both sit in row 0 and skip to sink in row 2.
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddNode(dag.Node{ID: "mid"})
	g.AddNode(dag.Node{ID: "sink"})
	g.AddEdge(dag.Edge{From: "a", To: "mid"})
	g.AddEdge(dag.Edge{From: "mid", To: "sink"})
	g.AddEdge(dag.Edge{From: "a", To: "sink"})
	g.AddEdge(dag.Edge{From: "b", To: "sink"})
	AssignLayers(g)

	if created := CloneSpanningEdges(g); created != 1 {
		t.Errorf("CloneSpanningEdges() = %d, want 1 shared clone", created)
	}
	if got := g.Parents("sink#1"); len(got) != 2 {
		t.Errorf("Parents(sink#1) = %v, want two parents", got)
	}
}

func TestCloneIDCollision(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "x#1"})
	gen := newIDGen(g.Nodes())
	if got := gen.next("x", 1); got != "x#1__1" {
		t.Errorf("next() = %q, want x#1__1", got)
	}
}

func TestNormalize(t *testing.T) {
	g := spanning()
	g.AddEdge(dag.Edge{From: "core", To: "app"})

	stats := Normalize(g, LayeringLongestPath)
	if stats.BrokenCycles != 1 {
		t.Errorf("BrokenCycles = %d, want 1", stats.BrokenCycles)
	}
	if stats.Clones != 1 {
		t.Errorf("Clones = %d, want 1", stats.Clones)
	}
	if stats.Rows != 3 {
		t.Errorf("Rows = %d, want 3", stats.Rows)
	}
	if !slices.Equal(stats.Roots, []string{"app"}) || !slices.Equal(stats.Leaves, []string{"core"}) {
		t.Errorf("Roots = %v, Leaves = %v, want [app] and [core]", stats.Roots, stats.Leaves)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after Normalize = %v", err)
	}
}
