package transform

import "github.com/matzehuels/listgraph/pkg/dag"

// BreakCycles makes g acyclic by deleting every edge that closes a cycle and
// returns the deleted edges in the order they were found.
//
// Nodes are visited depth first, sources before the remaining nodes and each
// group in insertion order, so the same document always loses the same
// edges. A self-loop is always deleted.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		unvisited = iota
		onPath
		done
	)

	state := make(map[string]int, g.NodeCount())
	var closing []dag.Edge

	var visit func(id string)
	visit = func(id string) {
		state[id] = onPath
		for _, child := range g.Children(id) {
			switch state[child] {
			case unvisited:
				visit(child)
			case onPath:
				closing = append(closing, dag.Edge{From: id, To: child})
			}
		}
		state[id] = done
	}

	for _, roots := range [][]*dag.Node{g.Sources(), g.Nodes()} {
		for _, n := range roots {
			if state[n.ID] == unvisited {
				visit(n.ID)
			}
		}
	}

	if len(closing) == 0 {
		return nil
	}
	meta := make(map[[2]string]dag.Metadata, len(closing))
	for _, e := range g.Edges() {
		meta[[2]string{e.From, e.To}] = e.Meta
	}
	for i, e := range closing {
		closing[i].Meta = meta[[2]string{e.From, e.To}]
		g.RemoveEdge(e.From, e.To)
	}
	return closing
}
