package controls

import (
	"sync"
	"time"

	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// Session is the part of [interact.Session] the menu commits to.
type Session interface {
	Graph() *listgraph.Graph
	ToggleLock(node *listgraph.Node) interact.LockChange
	ToggleRoot(node *listgraph.Node, unroot bool) interact.RootChange
	QueryByNode(node *listgraph.Node, mode listgraph.QueryMode) *events.Event
	UnqueryByNode(node *listgraph.Node) *events.Event
}

// MenuOptions configures a Menu. The zero value uses the default windows, a
// private lock and real timers.
type MenuOptions struct {
	// Locker guards the session. Reads of node state and every commit run
	// while it is held, so Menu methods must be called without holding it.
	Locker sync.Locker
	// QueryWait and RootWait are the debounce windows.
	QueryWait time.Duration
	RootWait  time.Duration
	// Disabled commits every click immediately.
	Disabled bool
	// AfterFunc replaces time.AfterFunc, for tests.
	AfterFunc AfterFunc
	// OnCommit is called after a debounced commit changed the session. It
	// runs on the timer goroutine without the Locker held.
	OnCommit func()
}

type queryPending struct {
	node      *listgraph.Node
	rooted    bool
	current   listgraph.QueryMode
	tentative listgraph.QueryMode
}

type rootPending struct {
	node      *listgraph.Node
	current   bool
	tentative bool
}

// Menu is the node context menu: lock commits at once, query and root cycle a
// tentative value that is committed when the clicking stops.
type Menu struct {
	s        Session
	locker   sync.Locker
	disabled bool
	onCommit func()

	queryDeb *Debouncer
	rootDeb  *Debouncer

	mu    sync.Mutex
	query *queryPending
	root  *rootPending
}

// NewMenu returns a menu committing to s.
func NewMenu(s Session, opts MenuOptions) *Menu {
	if opts.Locker == nil {
		opts.Locker = &sync.Mutex{}
	}
	if opts.QueryWait <= 0 {
		opts.QueryWait = DefaultQueryWait
	}
	if opts.RootWait <= 0 {
		opts.RootWait = DefaultRootWait
	}
	return &Menu{
		s:        s,
		locker:   opts.Locker,
		disabled: opts.Disabled,
		onCommit: opts.OnCommit,
		queryDeb: NewDebouncer(opts.QueryWait, opts.AfterFunc),
		rootDeb:  NewDebouncer(opts.RootWait, opts.AfterFunc),
	}
}

// ClickLock toggles the lock on node immediately.
func (m *Menu) ClickLock(node *listgraph.Node) interact.LockChange {
	m.locker.Lock()
	defer m.locker.Unlock()
	return m.s.ToggleLock(node)
}

// ClickQuery advances the tentative query mode of node and returns it. A
// pending query for another node is committed first.
func (m *Menu) ClickQuery(node *listgraph.Node) listgraph.QueryMode {
	orig := m.s.Graph().Original(node)

	m.mu.Lock()
	if p := m.query; p != nil && p.node != orig {
		m.query = nil
		m.queryDeb.Cancel()
		m.mu.Unlock()
		m.commitQuery(p)
		m.mu.Lock()
	}
	if m.query == nil {
		m.locker.Lock()
		st := *orig.State()
		m.locker.Unlock()
		m.query = &queryPending{node: orig, rooted: st.Root, current: st.Query, tentative: st.Query}
	}
	p := m.query
	p.tentative = interact.NextQueryMode(p.tentative, p.rooted)
	tentative := p.tentative
	if m.disabled {
		m.query = nil
		m.mu.Unlock()
		m.commitQuery(p)
		return tentative
	}
	m.queryDeb.Trigger(m.flushQuery)
	m.mu.Unlock()
	return tentative
}

// ClickRoot flips the tentative root state of node and returns it. A pending
// root change for another node is committed first.
func (m *Menu) ClickRoot(node *listgraph.Node) bool {
	orig := m.s.Graph().Original(node)

	m.mu.Lock()
	if p := m.root; p != nil && p.node != orig {
		m.root = nil
		m.rootDeb.Cancel()
		m.mu.Unlock()
		m.commitRoot(p)
		m.mu.Lock()
	}
	if m.root == nil {
		m.locker.Lock()
		rooted := orig.State().Root
		m.locker.Unlock()
		m.root = &rootPending{node: orig, current: rooted, tentative: rooted}
	}
	p := m.root
	p.tentative = !p.tentative
	tentative := p.tentative
	if m.disabled {
		m.root = nil
		m.mu.Unlock()
		m.commitRoot(p)
		return tentative
	}
	m.rootDeb.Trigger(m.flushRoot)
	m.mu.Unlock()
	return tentative
}

// TentativeQuery returns the pending query mode for node, if any.
func (m *Menu) TentativeQuery(node *listgraph.Node) (listgraph.QueryMode, bool) {
	orig := m.s.Graph().Original(node)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.query == nil || m.query.node != orig {
		return listgraph.QueryNone, false
	}
	return m.query.tentative, true
}

// TentativeRoot returns the pending root state for node, if any.
func (m *Menu) TentativeRoot(node *listgraph.Node) (bool, bool) {
	orig := m.s.Graph().Original(node)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == nil || m.root.node != orig {
		return false, false
	}
	return m.root.tentative, true
}

// Flush commits every pending change now.
func (m *Menu) Flush() {
	m.queryDeb.Flush()
	m.rootDeb.Flush()
}

// Cancel drops every pending change.
func (m *Menu) Cancel() {
	m.queryDeb.Cancel()
	m.rootDeb.Cancel()
	m.mu.Lock()
	m.query, m.root = nil, nil
	m.mu.Unlock()
}

func (m *Menu) flushQuery() {
	m.mu.Lock()
	p := m.query
	m.query = nil
	m.mu.Unlock()
	if p != nil && m.commitQuery(p) && m.onCommit != nil {
		m.onCommit()
	}
}

func (m *Menu) flushRoot() {
	m.mu.Lock()
	p := m.root
	m.root = nil
	m.mu.Unlock()
	if p != nil && m.commitRoot(p) && m.onCommit != nil {
		m.onCommit()
	}
}

func (m *Menu) commitQuery(p *queryPending) bool {
	if p.tentative == p.current {
		return false
	}
	m.locker.Lock()
	defer m.locker.Unlock()
	if p.tentative == listgraph.QueryNone {
		return m.s.UnqueryByNode(p.node) != nil
	}
	return m.s.QueryByNode(p.node, p.tentative) != nil
}

func (m *Menu) commitRoot(p *rootPending) bool {
	if p.tentative == p.current {
		return false
	}
	m.locker.Lock()
	defer m.locker.Unlock()
	change := m.s.ToggleRoot(p.node, !p.tentative)
	return change.Rooted != nil || change.Unrooted != nil
}
