package listgraph

import (
	"cmp"

	"github.com/matzehuels/listgraph/pkg/dag"
)

// MetaName is the node metadata key holding the display name.
const MetaName = "name"

// Build converts a layered DAG into a list graph. The DAG must validate: every
// edge connects consecutive rows and clones have no children. Rows become
// columns, clone nodes become clones of their original, and the parentless
// nodes of the first column become virtual siblings of each other.
//
// Columns are ordered by display name, then by instance key, so the same DAG
// always yields the same layout.
func Build(d *dag.DAG) (*Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := NewBuilder()
	nodes := make(map[string]*Node, d.NodeCount())

	for _, row := range d.RowIDs() {
		for _, dn := range d.NodesInRow(row) {
			if dn.IsClone() {
				continue
			}
			n, err := b.AddNode(dn.ID, displayName(dn), dn.Row, dn.Meta)
			if err != nil {
				return nil, err
			}
			nodes[dn.ID] = n
			for _, id := range d.Clones(dn.ID) {
				cn, _ := d.Node(id)
				c, err := b.AddCloneKey(n, cn.ID, cn.Row)
				if err != nil {
					return nil, err
				}
				nodes[cn.ID] = c
			}
		}
	}

	b.SortColumns(func(x, y *Node) int {
		if c := cmp.Compare(x.Name(), y.Name()); c != 0 {
			return c
		}
		return cmp.Compare(x.Key, y.Key)
	})

	for _, e := range d.Edges() {
		if _, err := b.AddLink(nodes[e.From], nodes[e.To]); err != nil {
			return nil, err
		}
	}

	var top []*Node
	for _, n := range b.g.Column(0) {
		if len(n.parents) == 0 {
			top = append(top, n)
		}
	}
	if len(top) > 1 {
		for _, n := range top {
			if err := b.SetSiblings(n, top...); err != nil {
				return nil, err
			}
		}
	}

	return b.Graph(), nil
}

func displayName(n *dag.Node) string {
	if s, ok := n.Meta[MetaName].(string); ok && s != "" {
		return s
	}
	return n.ID
}
