// Package listgraph holds the in-memory model of a list graph: a directed
// graph drawn as columns, where a node reachable at several depths is shown
// once per column as a clone of its canonical node.
//
// # Overview
//
// Nodes live in an arena owned by [Graph] and refer to each other by [Ref].
// Every node instance (canonical or clone) has its own Ref, while the logical
// [Node.ID] is shared by a canonical node and all of its clones. Relations are
// stored as Ref slices so the model can be walked without pointer cycles:
//
//   - parents: the nodes with an edge into this instance
//   - children: ordered targets of this instance's edges (canonical nodes only)
//   - original: the canonical node of a clone
//   - clones: the clones of a canonical node
//   - siblings: virtual siblings, usually the other top level nodes
//
// # Shared State
//
// A canonical node and its clones point at the same [Data], so interaction
// state such as lock, root and query is observed identically through every
// instance. [Node.Hovering] and [Node.Hidden] are per instance.
//
// # Construction
//
// Graphs are built with a [Builder] or from a layered [dag.DAG] with [Build]:
//
//	g, err := listgraph.Build(d)
//	if err != nil {
//	    return err
//	}
//	app, _ := g.Lookup("app")
//	for _, n := range g.CollectInclClones(app, false) {
//	    fmt.Println(n.Key, n.Depth)
//	}
//
// The graph is not safe for concurrent mutation. Callers serialize access the
// way the interaction session does.
//
// [dag.DAG]: github.com/matzehuels/listgraph/pkg/dag.DAG
package listgraph
