package transform

import "github.com/matzehuels/listgraph/pkg/dag"

// Layering selects the row assignment strategy used by [Normalize].
type Layering int

const (
	// LayeringLongestPath pushes nodes as far right as their deepest parent
	// requires ([AssignLayers]).
	LayeringLongestPath Layering = iota
	// LayeringShortestPath keeps nodes as far left as their closest source
	// allows ([AssignShallowLayers]).
	LayeringShortestPath
)

// Stats reports what [Normalize] changed.
type Stats struct {
	BrokenCycles int        // edges removed to break cycles
	CycleEdges   []dag.Edge // the removed edges
	Clones       int        // clone nodes created
	Rows         int        // rows after layering
	Roots        []string   // nodes without parents
	Leaves       []string   // nodes without children, clones excluded
}

// Normalize turns an arbitrary directed graph into a list-graph layout:
// cycles are broken, rows assigned and spanning edges rerouted to clones.
// The graph is modified in place.
func Normalize(g *dag.DAG, layering Layering) Stats {
	var s Stats
	s.CycleEdges = BreakCycles(g)
	s.BrokenCycles = len(s.CycleEdges)
	switch layering {
	case LayeringShortestPath:
		AssignShallowLayers(g)
	default:
		AssignLayers(g)
	}
	s.Clones = CloneSpanningEdges(g)
	s.Rows = g.RowCount()
	for _, n := range g.Sources() {
		s.Roots = append(s.Roots, n.ID)
	}
	for _, n := range g.Sinks() {
		if !n.IsClone() {
			s.Leaves = append(s.Leaves, n.ID)
		}
	}
	return s
}
