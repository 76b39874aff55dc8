// Package interact is the interaction state machine of a list graph.
//
// A [Session] owns the interaction state of one graph: which node is locked,
// which node is rooted, the query mode of every node, the transient hover
// marks and the link highlight index. Every operation mutates the graph in
// place and reports what changed to a [Listener].
//
// # Operations
//
//   - [Session.HighlightNodes] / [Session.UnhighlightNodes]: hover-style
//     highlighting of a node's ancestors and descendants
//   - [Session.ToggleLock]: keep one node highlighted under the "lock" class
//   - [Session.ToggleRoot]: focus the graph on one node, hiding unrelated nodes
//   - [Session.ToggleQueryByNode], [Session.QueryHandler],
//     [Session.BatchQueryHandler]: per-node query modes (or, and, not)
//
// A Session is not safe for concurrent use. Callers that share one, such as
// the HTTP server, serialize access with their own lock.
package interact

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/highlight"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// Listener is notified about interaction changes. Query changes made inside a
// batch are reported once, as a [events.QueryBatch] event.
type Listener interface {
	OnHoverChanged(ev events.Event)
	OnLockChanged(ev events.Event)
	OnRootChanged(ev events.Event)
	OnQueryChanged(ev events.Event)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) OnHoverChanged(events.Event) {}
func (NopListener) OnLockChanged(events.Event)  {}
func (NopListener) OnRootChanged(events.Event)  {}
func (NopListener) OnQueryChanged(events.Event) {}

// PublishTo returns a Listener that forwards every notification to pub.
// Publish errors are logged and otherwise ignored.
func PublishTo(ctx context.Context, pub events.Publisher, logger *log.Logger) Listener {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return publishListener{ctx: ctx, pub: pub, logger: logger}
}

type publishListener struct {
	ctx    context.Context
	pub    events.Publisher
	logger *log.Logger
}

func (l publishListener) publish(ev events.Event) {
	if err := l.pub.Publish(l.ctx, ev); err != nil {
		l.logger.Warn("publish event failed", "event", ev.Name, "err", err)
	}
}

func (l publishListener) OnHoverChanged(ev events.Event) { l.publish(ev) }
func (l publishListener) OnLockChanged(ev events.Event)  { l.publish(ev) }
func (l publishListener) OnRootChanged(ev events.Event)  { l.publish(ev) }
func (l publishListener) OnQueryChanged(ev events.Event) { l.publish(ev) }

// Options configures a Session. The zero value is valid.
type Options struct {
	// Listener receives change notifications. Defaults to NopListener.
	Listener Listener
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
	// Index is the highlight index to fill. Defaults to a new index.
	Index *highlight.Index
}

// Session holds the interaction state of one graph.
type Session struct {
	g        *listgraph.Graph
	index    *highlight.Index
	listener Listener
	logger   *log.Logger

	locked      *listgraph.Node
	rooted      *listgraph.Node
	batching    bool
	activeLevel int
}

// New returns a session over g. The graph's interaction state is assumed to
// be clean; call [listgraph.Graph.Reset] first when reusing a graph.
func New(g *listgraph.Graph, opts Options) *Session {
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Index == nil {
		opts.Index = highlight.New()
	}
	return &Session{
		g:        g,
		index:    opts.Index,
		listener: opts.Listener,
		logger:   opts.Logger,
	}
}

// Graph returns the graph the session works on.
func (s *Session) Graph() *listgraph.Graph { return s.g }

// Index returns the link highlight index.
func (s *Session) Index() *highlight.Index { return s.index }

// LockedNode returns the locked canonical node, or nil.
func (s *Session) LockedNode() *listgraph.Node { return s.locked }

// RootedNode returns the rooted canonical node, or nil.
func (s *Session) RootedNode() *listgraph.Node { return s.rooted }

// SetListener replaces the listener. A nil listener disables notifications.
func (s *Session) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	s.listener = l
}
