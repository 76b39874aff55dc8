// Package listgraphtest provides list graphs for tests.
package listgraphtest

import (
	"testing"

	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// Sample builds the graph
//
//	depth 0   depth 1   depth 2
//	A ──────▶ C ──────▶ E
//	A ──────▶ D ──────▶ E
//	B ──────▶ D ──────▶ X
//	B ──────▶ X#1
//
// where X#1 is a clone of X, and A and B are virtual siblings.
func Sample(tb testing.TB) *listgraph.Graph {
	tb.Helper()
	b := listgraph.NewBuilder()
	add := func(id string, depth int) *listgraph.Node {
		n, err := b.AddNode(id, id, depth, nil)
		if err != nil {
			tb.Fatalf("AddNode(%s): %v", id, err)
		}
		return n
	}
	a, bb := add("A", 0), add("B", 0)
	c, d := add("C", 1), add("D", 1)
	e, x := add("E", 2), add("X", 2)
	x1, err := b.AddClone(x, 1)
	if err != nil {
		tb.Fatalf("AddClone(X): %v", err)
	}

	link := func(from, to *listgraph.Node) {
		if _, err := b.AddLink(from, to); err != nil {
			tb.Fatalf("AddLink(%s, %s): %v", from.Key, to.Key, err)
		}
	}
	link(a, c)
	link(a, d)
	link(bb, d)
	link(bb, x1)
	link(c, e)
	link(d, e)
	link(d, x)

	if err := b.SetSiblings(a, bb); err != nil {
		tb.Fatal(err)
	}
	if err := b.SetSiblings(bb, a); err != nil {
		tb.Fatal(err)
	}
	return b.Graph()
}

// Node returns the instance with the given key or fails the test.
func Node(tb testing.TB, g *listgraph.Graph, key string) *listgraph.Node {
	tb.Helper()
	n, ok := g.LookupKey(key)
	if !ok {
		tb.Fatalf("node %q not in graph", key)
	}
	return n
}

// Keys returns the instance keys of nodes.
func Keys(nodes []*listgraph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Key
	}
	return out
}
