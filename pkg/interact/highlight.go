package interact

import (
	"fmt"

	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/highlight"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/observability"
	"github.com/matzehuels/listgraph/pkg/traverse"
)

// Restriction narrows the traversal of a highlight.
type Restriction int

const (
	// RestrictNone highlights all ancestors and descendants.
	RestrictNone Restriction = iota
	// RestrictDirectParentsOnly highlights the direct parents only.
	RestrictDirectParentsOnly
)

// ParseRestriction parses "none" or "direct-parents". The empty string means
// RestrictNone.
func ParseRestriction(s string) (Restriction, error) {
	switch s {
	case "", "none":
		return RestrictNone, nil
	case "direct-parents":
		return RestrictDirectParentsOnly, nil
	}
	return RestrictNone, fmt.Errorf("unknown restriction %q", s)
}

func (r Restriction) String() string {
	if r == RestrictDirectParentsOnly {
		return "direct-parents"
	}
	return "none"
}

// HighlightOptions controls HighlightNodes and UnhighlightNodes. The zero
// value highlights the hover class over ancestors and descendants, clones
// included, skipping hidden nodes.
type HighlightOptions struct {
	Class             string
	Restriction       Restriction
	ExcludeClones     bool
	NoVisibilityCheck bool
}

func (o HighlightOptions) class() string {
	if o.Class == "" {
		return highlight.ClassHovering
	}
	return o.Class
}

func (o HighlightOptions) traversal() traverse.Options {
	opts := traverse.Options{ExcludeClones: o.ExcludeClones}
	if o.Restriction == RestrictDirectParentsOnly {
		opts.Depth = 1
	}
	return opts
}

// walk runs the traversal shape selected by o from node.
func (s *Session) walk(node *listgraph.Node, o HighlightOptions, up traverse.UpFunc, down traverse.DownFunc) {
	topts := o.traversal()
	if o.Restriction == RestrictDirectParentsOnly {
		traverse.Up(s.g, node, up, topts)
		return
	}
	traverse.UpAndDown(s.g, node, up, down, topts)
}

// focalSet returns the instances marked direct by a highlight of node.
func (s *Session) focalSet(node *listgraph.Node, excludeClones bool) []*listgraph.Node {
	if !excludeClones {
		return s.g.CollectInclClones(node, false)
	}
	if node.Clone {
		return []*listgraph.Node{node, s.g.Original(node)}
	}
	return []*listgraph.Node{node}
}

// HighlightNodes marks the ancestors and descendants of node as indirectly
// highlighted, the node itself as directly highlighted, and records the links
// between them in the index under (class, node id).
//
// Walking up, only the links from an ancestor into the node it was reached
// through are recorded; walking down, every outgoing link of a visited node
// is recorded. Hidden nodes are skipped unless NoVisibilityCheck is set.
func (s *Session) HighlightNodes(node *listgraph.Node, o HighlightOptions) {
	class := o.class()
	nodes, links := s.highlight(node, o)
	s.logger.Debug("highlight", "class", class, "node", node.Key, "nodes", nodes, "links", links)
	observability.Interaction().OnHighlight(class, nodes, links)
	s.listener.OnHoverChanged(events.Event{
		Name: events.NodeEnter,
		Data: events.Data{NodeID: node.ID, Class: class},
	})
}

func (s *Session) highlight(node *listgraph.Node, o HighlightOptions) (nodes, links int) {
	class := o.class()
	entry := s.index.Begin(class, node.ID)
	visible := func(n *listgraph.Node) bool { return o.NoVisibilityCheck || !n.Hidden }

	up := func(n, child *listgraph.Node) {
		if !visible(n) {
			return
		}
		mark(entry, n, listgraph.HoverIndirect)
		for _, l := range s.g.OutgoingLinks(n) {
			if t := s.g.Target(l); t.ID == child.ID && visible(t) {
				entry.AddLink(l.ID)
			}
		}
	}
	down := func(n *listgraph.Node) {
		if !visible(n) {
			return
		}
		mark(entry, n, listgraph.HoverIndirect)
		for _, l := range s.g.OutgoingLinks(n) {
			if visible(s.g.Target(l)) {
				entry.AddLink(l.ID)
			}
		}
	}
	s.walk(node, o, up, down)

	for _, n := range s.focalSet(node, o.ExcludeClones) {
		mark(entry, n, listgraph.HoverDirect)
	}
	return entry.Len()
}

// UnhighlightNodes undoes HighlightNodes for the same node and options. Marks
// held by other classes survive. Calling it for a node that is not
// highlighted only resets marks.
func (s *Session) UnhighlightNodes(node *listgraph.Node, o HighlightOptions) {
	class := o.class()
	links := s.unhighlight(node, o)
	s.logger.Debug("unhighlight", "class", class, "node", node.Key, "links", len(links))
	s.listener.OnHoverChanged(events.Event{
		Name: events.NodeLeave,
		Data: events.Data{NodeID: node.ID, Class: class},
	})
}

func (s *Session) unhighlight(node *listgraph.Node, o HighlightOptions) []string {
	class := o.class()
	var touched []*listgraph.Node
	reset := func(n *listgraph.Node) {
		n.Hovering = listgraph.HoverNone
		touched = append(touched, n)
	}

	for ref := range s.index.Nodes(class, node.ID) {
		reset(s.g.Node(ref))
	}
	s.walk(node, o, func(n, _ *listgraph.Node) { reset(n) }, reset)
	for _, n := range s.focalSet(node, o.ExcludeClones) {
		reset(n)
	}

	links := s.index.Discard(class, node.ID)
	for _, n := range touched {
		n.Hovering = s.index.Mark(n.Ref)
	}
	return links
}

// mark records h for n in entry and on the node, unless the node already
// carries a stronger mark.
func mark(entry *highlight.Entry, n *listgraph.Node, h listgraph.Hover) {
	entry.Mark(n.Ref, h)
	if !n.Hovering.Stronger(h) {
		n.Hovering = h
	}
}
