package graph

import (
	"errors"

	"github.com/matzehuels/listgraph/pkg/dag"
	"github.com/matzehuels/listgraph/pkg/dag/transform"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// ErrClonesWithoutLayout is returned when a document has clones but not every
// node has a row.
var ErrClonesWithoutLayout = errors.New("clone nodes require a complete layout")

// LayoutDAG converts a document to a DAG ready for [listgraph.Build]. A
// document without a complete layout is normalized with layering; a laid out
// document is used as-is and must validate.
func LayoutDAG(g Graph, layering transform.Layering) (*dag.DAG, transform.Stats, error) {
	if !g.HasLayout() {
		for _, n := range g.Nodes {
			if n.IsClone() {
				return nil, transform.Stats{}, ErrClonesWithoutLayout
			}
		}
	}
	d, err := ToDAG(g)
	if err != nil {
		return nil, transform.Stats{}, err
	}
	var stats transform.Stats
	if !g.HasLayout() {
		stats = transform.Normalize(d, layering)
	}
	if err := d.Validate(); err != nil {
		return nil, stats, err
	}
	return d, stats, nil
}

// Layout converts a document into an interactive list graph.
func Layout(g Graph, layering transform.Layering) (*listgraph.Graph, transform.Stats, error) {
	d, stats, err := LayoutDAG(g, layering)
	if err != nil {
		return nil, stats, err
	}
	lg, err := listgraph.Build(d)
	return lg, stats, err
}
