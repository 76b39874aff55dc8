package transform

import (
	"fmt"

	"github.com/matzehuels/listgraph/pkg/dag"
)

// CloneSpanningEdges makes every edge connect consecutive rows by cloning
// targets instead of inserting chains of intermediate nodes.
//
// For an edge u → v with v.Row != u.Row+1 the edge is rerouted to a clone of
// v placed at row u.Row+1:
//
//	Before: app (row 0) → log (row 3)
//	After:  app (row 0) → log#1 (row 1), log#1 is a clone of log
//
// A target gets at most one clone per row; all parents in the same row share
// it. Clones have no children: the original keeps them, and the list-graph
// traversal expands descendants only from the original. Clone IDs have the
// form "id#row"; collisions get a numeric suffix ("id#1__2").
//
// Edge metadata is carried over to the rerouted edge. The function returns
// the number of clones created.
//
// # Performance
//
// Time complexity is O(E) plus map lookups. Space complexity is O(V).
func CloneSpanningEdges(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	type key struct {
		original string
		row      int
	}
	created := make(map[key]string)

	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row == src.Row+1 {
			continue
		}

		original := dst.CanonicalID()
		row := src.Row + 1
		k := key{original, row}
		cloneID, ok := created[k]
		if !ok {
			cloneID = gen.next(original, row)
			if err := g.AddNode(dag.Node{
				ID:         cloneID,
				Row:        row,
				Kind:       dag.NodeKindClone,
				OriginalID: original,
			}); err != nil {
				panic(err)
			}
			created[k] = cloneID
		}

		g.RemoveEdge(e.From, e.To)
		if err := g.AddEdge(dag.Edge{From: e.From, To: cloneID, Meta: e.Meta}); err != nil {
			panic(err)
		}
	}
	return len(created)
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s#%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
