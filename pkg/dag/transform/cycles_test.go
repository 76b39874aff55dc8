package transform

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/listgraph/pkg/dag"
)

// chain builds a graph from "from>to" edge specs, adding nodes in order of
// first mention.
func chain(t *testing.T, edges ...string) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, e := range edges {
		from, to, ok := strings.Cut(e, ">")
		if !ok {
			t.Fatalf("bad edge %q", e)
		}
		for _, id := range []string{from, to} {
			if _, ok := g.Node(id); !ok {
				g.AddNode(dag.Node{ID: id})
			}
		}
		g.AddEdge(dag.Edge{From: from, To: to})
	}
	return g
}

func edgeSpecs(edges []dag.Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.From + ">" + e.To
	}
	return out
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name    string
		edges   []string
		removed []string
	}{
		{"empty", nil, nil},
		{"chain", []string{"a>b", "b>c"}, nil},
		{"diamond", []string{"a>b", "a>c", "b>d", "c>d"}, nil},
		{"two-cycle", []string{"a>b", "b>a"}, []string{"b>a"}},
		{"triangle", []string{"a>b", "b>c", "c>a"}, []string{"c>a"}},
		{"self-loop", []string{"a>a"}, []string{"a>a"}},
		{"two cycles", []string{"a>b", "b>a", "c>d", "d>c"}, []string{"b>a", "d>c"}},
		{"cycle below a source", []string{"s>b", "b>c", "c>d", "d>b"}, []string{"d>b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(t, tt.edges...)
			before := g.EdgeCount()

			got := edgeSpecs(BreakCycles(g))
			if len(got) == 0 {
				got = nil
			}
			if !slices.Equal(got, tt.removed) {
				t.Errorf("BreakCycles() removed %v, want %v", got, tt.removed)
			}
			if g.EdgeCount() != before-len(tt.removed) {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), before-len(tt.removed))
			}
			if again := BreakCycles(g); len(again) != 0 {
				t.Errorf("second pass removed %v", edgeSpecs(again))
			}
		})
	}
}

func TestBreakCycles_KeepsMetadata(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddEdge(dag.Edge{From: "a", To: "b"})
	g.AddEdge(dag.Edge{From: "b", To: "a", Meta: dag.Metadata{"kind": "optional"}})

	removed := BreakCycles(g)
	if len(removed) != 1 || removed[0].Meta["kind"] != "optional" {
		t.Errorf("BreakCycles() = %+v, want b>a with its metadata", removed)
	}
}
