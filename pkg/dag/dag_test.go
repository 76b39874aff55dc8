package dag

import (
	"errors"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want %v", err, ErrInvalidNodeID)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) again = %v, want %v", err, ErrDuplicateNodeID)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddNode_Clone(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{ID: "x#1", Kind: NodeKindClone, OriginalID: "x"}); !errors.Is(err, ErrUnknownOriginal) {
		t.Errorf("clone of missing original = %v, want %v", err, ErrUnknownOriginal)
	}
	_ = g.AddNode(Node{ID: "x"})
	if err := g.AddNode(Node{ID: "x#1", Kind: NodeKindClone, OriginalID: "x"}); err != nil {
		t.Fatalf("AddNode(clone) = %v", err)
	}
	if err := g.AddNode(Node{ID: "x#2", Kind: NodeKindClone, OriginalID: "x#1"}); !errors.Is(err, ErrUnknownOriginal) {
		t.Errorf("clone of clone = %v, want %v", err, ErrUnknownOriginal)
	}
	if got := g.Clones("x"); len(got) != 1 || got[0] != "x#1" {
		t.Errorf("Clones(x) = %v, want [x#1]", got)
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		_ = g.AddNode(Node{ID: id})
	}
	got := g.Nodes()
	want := []string{"c", "a", "b"}
	for i, n := range got {
		if n.ID != want[i] {
			t.Errorf("Nodes()[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b", Row: 1})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 || g.OutDegree("a") != 0 || g.InDegree("b") != 0 {
		t.Errorf("edge still present after RemoveEdge")
	}
	g.RemoveEdge("a", "missing")
}

func TestSourcesSinks(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b", Row: 1})
	_ = g.AddNode(Node{ID: "c"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	if got := len(g.Sources()); got != 2 {
		t.Errorf("len(Sources()) = %d, want 2", got)
	}
	if got := len(g.Sinks()); got != 2 {
		t.Errorf("len(Sinks()) = %d, want 2", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *DAG
		want  error
	}{
		{
			name: "valid",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				return g
			},
		},
		{
			name: "non consecutive",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 2})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				return g
			},
			want: ErrNonConsecutiveRows,
		},
		{
			name: "clone with children",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 3})
				_ = g.AddNode(Node{ID: "a#1", Row: 0, Kind: NodeKindClone, OriginalID: "a"})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a#1", To: "b"})
				return g
			},
			want: ErrCloneHasChildren,
		},
		{
			name: "cycle",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				_ = g.AddEdge(Edge{From: "b", To: "a"})
				g.SetRows(map[string]int{"a": 0, "b": 1})
				return g
			},
			want: ErrNonConsecutiveRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build().Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "a"})
	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want %v", err, ErrGraphHasCycle)
	}
}

func TestRowIDs(t *testing.T) {
	g := New(nil)
	if g.RowCount() != 0 {
		t.Errorf("RowCount() on empty = %d, want 0", g.RowCount())
	}
	_ = g.AddNode(Node{ID: "a", Row: 2})
	_ = g.AddNode(Node{ID: "b", Row: 0})
	if got := g.RowIDs(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("RowIDs() = %v, want [0 2]", got)
	}
	if g.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", g.RowCount())
	}
	g.SetRows(map[string]int{"a": 1})
	if got := g.NodesInRow(1); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("NodesInRow(1) after SetRows = %v", got)
	}
}
