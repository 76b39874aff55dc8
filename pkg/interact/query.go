package interact

import (
	"fmt"

	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/observability"
)

// Action selects what QueryHandler does.
type Action string

const (
	ActionToggle  Action = ""
	ActionQuery   Action = "query"
	ActionUnquery Action = "unquery"
)

// ParseAction parses an action name; "toggle" and "" both mean ActionToggle.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionToggle, "toggle":
		return ActionToggle, nil
	case ActionQuery, ActionUnquery:
		return a, nil
	}
	return ActionToggle, fmt.Errorf("unknown query action %q", s)
}

// QueryAction is one entry of a batch query.
type QueryAction struct {
	Node   *listgraph.Node
	Action Action
	Mode   listgraph.QueryMode
}

// NextQueryMode returns the mode that follows current when toggling. Unrooted
// nodes cycle none, or, and, not. Rooted nodes alternate between or and and.
func NextQueryMode(current listgraph.QueryMode, rooted bool) listgraph.QueryMode {
	if rooted {
		if current == listgraph.QueryOr {
			return listgraph.QueryAnd
		}
		return listgraph.QueryOr
	}
	switch current {
	case listgraph.QueryNone:
		return listgraph.QueryOr
	case listgraph.QueryOr:
		return listgraph.QueryAnd
	case listgraph.QueryAnd:
		return listgraph.QueryNot
	default:
		return listgraph.QueryNone
	}
}

// ToggleQueryByNode advances node's query mode by one step. It returns the
// resulting event, or nil when nothing changed.
func (s *Session) ToggleQueryByNode(node *listgraph.Node) *events.Event {
	n := s.g.Original(node)
	st := n.State()
	next := NextQueryMode(st.Query, st.Root)
	if next == listgraph.QueryNone {
		return s.UnqueryByNode(n)
	}
	return s.QueryByNode(n, next)
}

// QueryByNode sets node's query mode. It returns nil when the mode is
// unchanged, unknown, or "not" for the rooted node. QueryNone unqueries.
func (s *Session) QueryByNode(node *listgraph.Node, mode listgraph.QueryMode) *events.Event {
	if mode == listgraph.QueryNone {
		return s.UnqueryByNode(node)
	}
	n := s.g.Original(node)
	st := n.State()
	if !mode.Valid() || st.Query == mode {
		return nil
	}
	if st.Root && mode == listgraph.QueryNot {
		s.logger.Debug("rejected query", "node", n.ID, "mode", mode)
		return nil
	}
	st.Query = mode
	ev := events.Event{Name: events.NodeQuery, Data: events.Data{NodeID: n.ID, Mode: string(mode)}}
	s.queryChanged(ev)
	return &ev
}

// UnqueryByNode clears node's query mode. It returns nil when the node had
// none. With a root active, visibility is recomputed.
func (s *Session) UnqueryByNode(node *listgraph.Node) *events.Event {
	n := s.g.Original(node)
	st := n.State()
	if st.Query == listgraph.QueryNone {
		return nil
	}
	st.Query = listgraph.QueryNone
	st.QueryBeforeRooting = listgraph.QueryOriginUnset
	ev := events.Event{Name: events.NodeUnquery, Data: events.Data{NodeID: n.ID}}
	s.queryChanged(ev)
	if s.rooted != nil {
		s.RefreshVisibility()
	}
	return &ev
}

// QueryHandler dispatches one query action. Mode is only used by ActionQuery.
// Unknown actions return nil.
func (s *Session) QueryHandler(node *listgraph.Node, action Action, mode listgraph.QueryMode) *events.Event {
	switch action {
	case ActionToggle:
		return s.ToggleQueryByNode(node)
	case ActionQuery:
		return s.QueryByNode(node, mode)
	case ActionUnquery:
		return s.UnqueryByNode(node)
	}
	return nil
}

// BatchQueryHandler applies several query actions and reports them with a
// single [events.QueryBatch] notification instead of one per node. It
// returns the events of the actions that changed something.
func (s *Session) BatchQueryHandler(actions []QueryAction) []events.Event {
	outer := s.batching
	s.batching = true
	var out []events.Event
	for _, a := range actions {
		if a.Node == nil {
			continue
		}
		if ev := s.QueryHandler(a.Node, a.Action, a.Mode); ev != nil {
			out = append(out, *ev)
		}
	}
	s.batching = outer

	if len(out) > 0 && !outer {
		s.logger.Debug("query batch", "changes", len(out))
		s.listener.OnQueryChanged(events.Event{Name: events.QueryBatch, Data: events.Data{Batch: out}})
	}
	return out
}

func (s *Session) queryChanged(ev events.Event) {
	s.logger.Debug("query", "node", ev.Data.NodeID, "event", ev.Name, "mode", ev.Data.Mode)
	mode := ev.Data.Mode
	if mode == "" {
		mode = listgraph.QueryNone.String()
	}
	observability.Interaction().OnQuery(ev.Data.NodeID, mode)
	if !s.batching {
		s.listener.OnQueryChanged(ev)
	}
}
