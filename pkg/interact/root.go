package interact

import (
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/observability"
	"github.com/matzehuels/listgraph/pkg/traverse"
)

// RootChange reports what ToggleRoot did. Either field may be nil.
type RootChange struct {
	Rooted   *listgraph.Node
	Unrooted *listgraph.Node
}

// ToggleRoot roots node. A previously rooted node is unrooted first, and
// toggling the rooted node again only unroots it. With unroot set the call
// never roots anything; it unroots the current root, if any.
//
// Rooting a node without a query, or with a "not" query, gives it an "or"
// query that is removed again on unroot. An existing "or"/"and" query is kept
// and survives unrooting. While a root is active only nodes on a path through
// the root, and the root's siblings, are visible.
func (s *Session) ToggleRoot(node *listgraph.Node, unroot bool) RootChange {
	n := s.g.Original(node)
	var change RootChange
	if prev := s.rooted; prev != nil {
		s.unrootNode(prev)
		change.Unrooted = prev
		if prev == n {
			unroot = true
		}
	}
	if unroot {
		return change
	}
	s.rootNode(n)
	change.Rooted = n
	return change
}

func (s *Session) rootNode(n *listgraph.Node) {
	st := n.State()
	st.Root = true
	s.rooted = n

	if st.Query == listgraph.QueryNone || st.Query == listgraph.QueryNot {
		s.BatchQueryHandler([]QueryAction{{Node: n, Action: ActionQuery, Mode: listgraph.QueryOr}})
		st.QueryBeforeRooting = listgraph.QueryOriginSynthesized
	} else {
		st.QueryBeforeRooting = listgraph.QueryOriginPreexisting
	}
	s.HideNodes(n)

	s.logger.Debug("root", "node", n.ID, "query", st.Query)
	observability.Interaction().OnRoot(n.ID, true)
	s.listener.OnRootChanged(events.Event{Name: events.NodeRoot, Data: events.Data{NodeID: n.ID}})
}

func (s *Session) unrootNode(n *listgraph.Node) {
	st := n.State()
	origin := st.QueryBeforeRooting
	st.Root = false
	st.QueryBeforeRooting = listgraph.QueryOriginUnset
	s.rooted = nil

	if origin == listgraph.QueryOriginSynthesized {
		s.BatchQueryHandler([]QueryAction{{Node: n, Action: ActionUnquery}})
	}
	s.ShowNodes()

	s.logger.Debug("unroot", "node", n.ID)
	observability.Interaction().OnRoot(n.ID, false)
	s.listener.OnRootChanged(events.Event{Name: events.NodeUnroot, Data: events.Data{NodeID: n.ID}})
}

// HideNodes hides every node except the instances reachable up or down from
// root and the siblings of root's instances. A held lock highlight is
// recomputed for the new visibility.
func (s *Session) HideNodes(root *listgraph.Node) {
	for _, n := range s.g.Nodes() {
		n.Hidden = true
	}
	show := func(n *listgraph.Node) { n.Hidden = false }
	traverse.UpAndDown(s.g, root, func(n, _ *listgraph.Node) { show(n) }, show, traverse.Options{})
	for _, inst := range s.g.CollectInclClones(root, false) {
		traverse.Siblings(s.g, inst, show)
	}
	s.refreshLock()
}

// ShowNodes makes every node visible and recomputes a held lock highlight.
func (s *Session) ShowNodes() {
	for _, n := range s.g.Nodes() {
		n.Hidden = false
	}
	s.refreshLock()
}

// refreshLock rebuilds the lock highlight without notifying the listener.
func (s *Session) refreshLock() {
	if s.locked == nil {
		return
	}
	s.unhighlight(s.locked, lockHighlight)
	s.highlight(s.locked, lockHighlight)
}

// RefreshVisibility recomputes visibility for the current root. Without a
// root every node is visible.
func (s *Session) RefreshVisibility() {
	if s.rooted == nil {
		s.ShowNodes()
		return
	}
	s.HideNodes(s.rooted)
}

// ActiveLevel returns the focused column relative to the rooted node's
// column, or to the first column when nothing is rooted.
func (s *Session) ActiveLevel() int { return s.activeLevel }

// SetActiveLevel sets the relative focused column; negative values clamp to 0.
func (s *Session) SetActiveLevel(level int) {
	s.activeLevel = max(level, 0)
}

// FocusedColumn returns the absolute focused column, clamped to the graph.
func (s *Session) FocusedColumn() int {
	col := s.activeLevel
	if s.rooted != nil {
		col += s.rooted.Depth
	}
	if last := s.g.Columns() - 1; col > last {
		col = max(last, 0)
	}
	return col
}
