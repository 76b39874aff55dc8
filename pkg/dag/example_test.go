package dag_test

import (
	"fmt"

	"github.com/matzehuels/listgraph/pkg/dag"
)

func ExampleDAG_basic() {
	// A simple chain: app → lib → core
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "app", Row: 0})
	_ = g.AddNode(dag.Node{ID: "lib", Row: 1})
	_ = g.AddNode(dag.Node{ID: "core", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "app", To: "lib"})
	_ = g.AddEdge(dag.Edge{From: "lib", To: "core"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
	// Valid: true
}

func ExampleDAG_traversal() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "app", Row: 0})
	_ = g.AddNode(dag.Node{ID: "auth", Row: 1})
	_ = g.AddNode(dag.Node{ID: "cache", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "app", To: "auth"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "cache"})

	fmt.Println("Children of app:", g.Children("app"))
	fmt.Println("Parents of auth:", g.Parents("auth"))
	fmt.Println("Out-degree of app:", g.OutDegree("app"))
	// Output:
	// Children of app: [auth cache]
	// Parents of auth: [app]
	// Out-degree of app: 2
}

func ExampleNode_clone() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "log", Row: 2})
	_ = g.AddNode(dag.Node{ID: "log#1", Row: 1, Kind: dag.NodeKindClone, OriginalID: "log"})

	clone, _ := g.Node("log#1")
	fmt.Println("Is clone:", clone.IsClone())
	fmt.Println("Canonical ID:", clone.CanonicalID())
	fmt.Println("Clones of log:", g.Clones("log"))
	// Output:
	// Is clone: true
	// Canonical ID: log
	// Clones of log: [log#1]
}
