package listgraph

import "slices"

// Graph is the node and link arena of a list graph.
type Graph struct {
	nodes   []*Node
	links   []*Link
	byID    map[string]Ref
	byKey   map[string]Ref
	linkIDs map[string]LinkRef
	columns [][]Ref
}

// Node returns the node instance for ref, or nil when ref is out of range.
func (g *Graph) Node(ref Ref) *Node {
	if ref < 0 || int(ref) >= len(g.nodes) {
		return nil
	}
	return g.nodes[ref]
}

// Lookup returns the canonical node with the given logical id.
func (g *Graph) Lookup(id string) (*Node, bool) {
	ref, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return g.nodes[ref], true
}

// LookupKey returns the node instance with the given instance key.
func (g *Graph) LookupKey(key string) (*Node, bool) {
	ref, ok := g.byKey[key]
	if !ok {
		return nil, false
	}
	return g.nodes[ref], true
}

// Nodes returns every node instance in arena order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NodeCount returns the number of node instances, clones included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Canonical returns every canonical node in arena order.
func (g *Graph) Canonical() []*Node {
	out := make([]*Node, 0, len(g.byID))
	for _, n := range g.nodes {
		if !n.Clone {
			out = append(out, n)
		}
	}
	return out
}

// Links returns every link in arena order.
func (g *Graph) Links() []*Link { return g.links }

// Link returns the link for ref, or nil when ref is out of range.
func (g *Graph) Link(ref LinkRef) *Link {
	if ref < 0 || int(ref) >= len(g.links) {
		return nil
	}
	return g.links[ref]
}

// LinkByID returns the link with the given id.
func (g *Graph) LinkByID(id string) (*Link, bool) {
	ref, ok := g.linkIDs[id]
	if !ok {
		return nil, false
	}
	return g.links[ref], true
}

// Columns returns the number of columns.
func (g *Graph) Columns() int { return len(g.columns) }

// Column returns the node instances at depth in top to bottom order.
func (g *Graph) Column(depth int) []*Node {
	if depth < 0 || depth >= len(g.columns) {
		return nil
	}
	return g.resolve(g.columns[depth])
}

// Parents returns the nodes with a link into n.
func (g *Graph) Parents(n *Node) []*Node { return g.resolve(n.parents) }

// Children returns the link targets of n in order. Clones have no children.
func (g *Graph) Children(n *Node) []*Node { return g.resolve(n.children) }

// Siblings returns the virtual siblings of n.
func (g *Graph) Siblings(n *Node) []*Node { return g.resolve(n.siblings) }

// Clones returns the clones of the canonical node of n.
func (g *Graph) Clones(n *Node) []*Node { return g.resolve(g.Original(n).clones) }

// Original returns the canonical node of n. For a canonical node it returns n.
func (g *Graph) Original(n *Node) *Node {
	if n.Clone {
		return g.nodes[n.original]
	}
	return n
}

// CollectInclClones returns the canonical node of n followed by its clones.
// When onlyForOriginal is set and n is a clone the result is empty.
func (g *Graph) CollectInclClones(n *Node, onlyForOriginal bool) []*Node {
	if n.Clone && onlyForOriginal {
		return nil
	}
	orig := g.Original(n)
	out := make([]*Node, 0, 1+len(orig.clones))
	out = append(out, orig)
	return append(out, g.resolve(orig.clones)...)
}

// OutgoingLinks returns the links leaving n.
func (g *Graph) OutgoingLinks(n *Node) []*Link { return g.resolveLinks(n.Links.Outgoing.Refs) }

// IncomingLinks returns the links entering n.
func (g *Graph) IncomingLinks(n *Node) []*Link { return g.resolveLinks(n.Links.Incoming.Refs) }

// Source returns the source node of l.
func (g *Graph) Source(l *Link) *Node { return g.nodes[l.Source.Node] }

// Target returns the target node of l.
func (g *Graph) Target(l *Link) *Node { return g.nodes[l.Target.Node] }

// Reset clears every transient mark and the shared interaction state.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.Hovering = HoverNone
		n.Hidden = false
		if !n.Clone {
			n.Data.State = State{}
		}
	}
}

func (g *Graph) resolve(refs []Ref) []*Node {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*Node, len(refs))
	for i, r := range refs {
		out[i] = g.nodes[r]
	}
	return out
}

func (g *Graph) resolveLinks(refs []LinkRef) []*Link {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*Link, len(refs))
	for i, r := range refs {
		out[i] = g.links[r]
	}
	return out
}

func containsRef(refs []Ref, r Ref) bool { return slices.Contains(refs, r) }
