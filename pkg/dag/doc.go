// Package dag provides the directed graph that feeds the list-graph layout.
//
// # Overview
//
// A list graph shows a directed graph as columns: every node sits in one
// column (its row in this package) and every edge connects a node to a node
// in the next column. Graphs from the outside rarely look like that, so the
// [transform] subpackage breaks cycles, assigns rows and clones nodes that
// would otherwise be reached by an edge spanning several columns.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "app", Row: 0})
//	g.AddNode(dag.Node{ID: "lib", Row: 1})
//	g.AddEdge(dag.Edge{From: "app", To: "lib"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents] and
// [DAG.NodesInRow]. Use [DAG.Validate] to verify structural integrity before
// building a list graph from it.
//
// # Node Types
//
//   - [NodeKindRegular]: Original graph vertices
//   - [NodeKindClone]: Duplicates of a regular node placed in another column
//
// Clones keep an [Node.OriginalID] pointing at the node they duplicate. They
// never have outgoing edges; the original node owns the children.
//
// # Ordering
//
// [DAG.Nodes] and [DAG.NodesInRow] return nodes in insertion order, which
// makes layouts built from the same input deterministic.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// [transform]: github.com/matzehuels/listgraph/pkg/dag/transform
package dag
