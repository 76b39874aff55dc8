package interact

import (
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/highlight"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/observability"
)

// LockChange reports what ToggleLock did. Either field may be nil.
type LockChange struct {
	Locked   *listgraph.Node
	Unlocked *listgraph.Node
}

var lockHighlight = HighlightOptions{Class: highlight.ClassLock}

// ToggleLock locks node, unlocking the previously locked node first. Toggling
// the locked node again only unlocks it. Clones resolve to their canonical
// node.
func (s *Session) ToggleLock(node *listgraph.Node) LockChange {
	n := s.g.Original(node)
	var change LockChange
	if prev := s.locked; prev != nil {
		s.unlock(prev)
		change.Unlocked = prev
		if prev == n {
			return change
		}
	}
	s.lock(n)
	change.Locked = n
	return change
}

func (s *Session) lock(n *listgraph.Node) {
	n.State().Lock = true
	s.locked = n
	s.HighlightNodes(n, lockHighlight)
	s.logger.Debug("lock", "node", n.ID)
	observability.Interaction().OnLock(n.ID, true)
	s.listener.OnLockChanged(events.Event{Name: events.NodeLock, Data: events.Data{NodeID: n.ID}})
}

func (s *Session) unlock(n *listgraph.Node) {
	n.State().Lock = false
	s.locked = nil
	s.UnhighlightNodes(n, lockHighlight)
	s.logger.Debug("unlock", "node", n.ID)
	observability.Interaction().OnLock(n.ID, false)
	s.listener.OnLockChanged(events.Event{Name: events.NodeUnlock, Data: events.Data{NodeID: n.ID}})
}
