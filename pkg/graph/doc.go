// Package graph defines the document format for list graphs and converts it
// to the layout-ready [dag.DAG] and the interactive [listgraph.Graph].
//
// # Format
//
// A document is a node-link graph, stored as JSON, YAML or TOML:
//
//	{
//	  "name": "services",
//	  "nodes": [{"id": "app", "label": "Application"}, {"id": "lib"}],
//	  "edges": [{"from": "app", "to": "lib"}]
//	}
//
// Nodes may carry a "row" (column). When every node has one the document is
// taken as already laid out, and may contain clones:
//
//	{"id": "lib#2", "kind": "clone", "original": "lib", "row": 2}
//
// Otherwise [Layout] breaks cycles, assigns columns and creates the clones
// itself.
//
// The same types carry bson tags so documents can be stored in MongoDB as-is.
//
// # Common Operations
//
//	doc, _ := graph.ReadFile("services.yaml")         // File → Graph
//	lg, stats, _ := graph.Layout(doc, transform.LayeringLongestPath)
//	_ = graph.WriteFile("out.json", graph.FromDAG(d)) // DAG → File
//
// [dag.DAG]: github.com/matzehuels/listgraph/pkg/dag.DAG
// [listgraph.Graph]: github.com/matzehuels/listgraph/pkg/listgraph.Graph
package graph
