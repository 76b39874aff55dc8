package interact

import (
	"errors"
	"maps"
	"slices"

	lgerrors "github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// Snapshot is a serializable summary of a session's state.
type Snapshot struct {
	Locked string `json:"locked,omitempty" yaml:"locked,omitempty"`
	Rooted string `json:"rooted,omitempty" yaml:"rooted,omitempty"`
	// RootQuerySynthesized is set when the rooted node's query was created
	// by rooting and will be removed on unroot.
	RootQuerySynthesized bool                `json:"rootQuerySynthesized,omitempty" yaml:"rootQuerySynthesized,omitempty"`
	Queries              map[string]string   `json:"queries,omitempty" yaml:"queries,omitempty"`
	Hidden               []string            `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Highlights           map[string][]string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	ActiveLevel          int                 `json:"activeLevel" yaml:"activeLevel"`
}

// Snapshot captures the current state. Hidden lists instance keys in arena
// order; Highlights maps each class to its highlighted link ids.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{ActiveLevel: s.activeLevel}
	if s.locked != nil {
		snap.Locked = s.locked.ID
	}
	if s.rooted != nil {
		snap.Rooted = s.rooted.ID
		snap.RootQuerySynthesized = s.rooted.State().QueryBeforeRooting == listgraph.QueryOriginSynthesized
	}
	for _, n := range s.g.Nodes() {
		if n.Hidden {
			snap.Hidden = append(snap.Hidden, n.Key)
		}
		if n.Clone {
			continue
		}
		if q := n.State().Query; q != listgraph.QueryNone {
			if snap.Queries == nil {
				snap.Queries = make(map[string]string)
			}
			snap.Queries[n.ID] = string(q)
		}
	}
	for _, class := range s.index.Classes() {
		if snap.Highlights == nil {
			snap.Highlights = make(map[string][]string)
		}
		snap.Highlights[class] = s.index.Union(class)
	}
	return snap
}

// Reset clears all interaction state: marks, visibility, lock, root, queries
// and highlights. No notifications are sent.
func (s *Session) Reset() {
	s.g.Reset()
	s.index.Reset()
	s.locked = nil
	s.rooted = nil
	s.activeLevel = 0
}

// Restore resets the session and replays snap through the regular
// operations, so the listener sees the same notifications. Hidden and
// Highlights are derived state and are recomputed rather than read. Node ids
// missing from the graph are skipped and reported in the returned error.
func (s *Session) Restore(snap Snapshot) error {
	s.Reset()
	var errs []error
	lookup := func(id string) *listgraph.Node {
		n, ok := s.g.Lookup(id)
		if !ok {
			errs = append(errs, lgerrors.New(lgerrors.ErrCodeNodeNotFound, "node %q not found", id))
			return nil
		}
		return n
	}

	var actions []QueryAction
	for _, id := range slices.Sorted(maps.Keys(snap.Queries)) {
		if id == snap.Rooted && snap.RootQuerySynthesized {
			continue
		}
		mode, err := listgraph.ParseQueryMode(snap.Queries[id])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n := lookup(id); n != nil {
			actions = append(actions, QueryAction{Node: n, Action: ActionQuery, Mode: mode})
		}
	}
	if len(actions) > 0 {
		s.BatchQueryHandler(actions)
	}

	if snap.Locked != "" {
		if n := lookup(snap.Locked); n != nil {
			s.ToggleLock(n)
		}
	}
	if snap.Rooted != "" {
		if n := lookup(snap.Rooted); n != nil {
			s.ToggleRoot(n, false)
			if mode, err := listgraph.ParseQueryMode(snap.Queries[snap.Rooted]); err == nil && mode != listgraph.QueryNone && snap.RootQuerySynthesized {
				s.QueryByNode(n, mode)
			}
		}
	}
	s.SetActiveLevel(snap.ActiveLevel)
	return errors.Join(errs...)
}
