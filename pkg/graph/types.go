package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/listgraph/pkg/dag"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// KindClone marks a clone node in a laid out document.
const KindClone = "clone"

// Graph is the serialization format of a list graph document.
type Graph struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes" toml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" toml:"edges" bson:"edges"`
}

// Node is one node of a document.
type Node struct {
	ID       string         `json:"id" yaml:"id" toml:"id" bson:"id"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Row      *int           `json:"row,omitempty" yaml:"row,omitempty" toml:"row,omitempty" bson:"row,omitempty"`
	Kind     string         `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty" bson:"kind,omitempty"`
	Original string         `json:"original,omitempty" yaml:"original,omitempty" toml:"original,omitempty" bson:"original,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty" bson:"meta,omitempty"`
}

// IsClone reports whether the node is a clone.
func (n *Node) IsClone() bool { return n.Kind == KindClone }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed edge of a document.
type Edge struct {
	From string         `json:"from" yaml:"from" toml:"from" bson:"from"`
	To   string         `json:"to" yaml:"to" toml:"to" bson:"to"`
	Meta map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty" bson:"meta,omitempty"`
}

// HasLayout reports whether every node has a row, which means the document
// is used as laid out instead of being normalized.
func (g Graph) HasLayout() bool {
	if len(g.Nodes) == 0 {
		return false
	}
	for _, n := range g.Nodes {
		if n.Row == nil {
			return false
		}
	}
	return true
}

// Validate checks the document for structural problems that do not depend
// on the layout: empty or duplicate ids, clones without an original, and
// edges with unknown endpoints.
func (g Graph) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node without id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node %s", n.ID)
		}
		ids[n.ID] = true
	}
	for _, n := range g.Nodes {
		if n.IsClone() && !ids[n.Original] {
			return fmt.Errorf("clone %s: unknown original %q", n.ID, n.Original)
		}
	}
	for _, e := range g.Edges {
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("edge %s->%s: unknown endpoint", e.From, e.To)
		}
	}
	return nil
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// FromDAG converts a DAG to its document form. Nodes are sorted by ID for
// deterministic output and always carry their row.
func FromDAG(d *dag.DAG) Graph {
	nodes := d.Nodes()
	slices.SortFunc(nodes, func(a, b *dag.Node) int { return cmp.Compare(a.ID, b.ID) })

	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, 0, d.EdgeCount()),
	}
	if name, ok := d.Meta()[listgraph.MetaName].(string); ok {
		out.Name = name
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for _, e := range d.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Meta: copyMeta(e.Meta)})
	}
	return out
}

// ToDAG converts a document to a DAG. Originals are added before clones so
// clones may appear anywhere in the node list. Labels are stored under the
// "name" metadata key.
func ToDAG(g Graph) (*dag.DAG, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	var meta dag.Metadata
	if g.Name != "" {
		meta = dag.Metadata{listgraph.MetaName: g.Name}
	}
	d := dag.New(meta)

	add := func(n Node) error {
		dn := dag.Node{ID: n.ID, Meta: copyMeta(n.Meta)}
		if dn.Meta == nil {
			dn.Meta = dag.Metadata{}
		}
		if n.Row != nil {
			dn.Row = *n.Row
		}
		if n.Label != "" {
			dn.Meta[listgraph.MetaName] = n.Label
		}
		if n.IsClone() {
			dn.Kind = dag.NodeKindClone
			dn.OriginalID = n.Original
		}
		if err := d.AddNode(dn); err != nil {
			return fmt.Errorf("add node %s: %w", n.ID, err)
		}
		return nil
	}
	for _, n := range g.Nodes {
		if !n.IsClone() {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range g.Nodes {
		if n.IsClone() {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}

	for _, e := range g.Edges {
		if err := d.AddEdge(dag.Edge{From: e.From, To: e.To, Meta: copyMeta(e.Meta)}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", e.From, e.To, err)
		}
	}
	return d, nil
}

func nodeFromDAG(n *dag.Node) Node {
	row := n.Row
	out := Node{ID: n.ID, Row: &row, Meta: copyMeta(n.Meta)}
	if label, ok := out.Meta[listgraph.MetaName].(string); ok {
		out.Label = label
		delete(out.Meta, listgraph.MetaName)
	}
	if len(out.Meta) == 0 {
		out.Meta = nil
	}
	if n.IsClone() {
		out.Kind = KindClone
		out.Original = n.OriginalID
	}
	return out
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
