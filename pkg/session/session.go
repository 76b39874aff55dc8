// Package session keeps live interaction workspaces.
//
// A [Workspace] couples a graph document with the [interact.Session] working
// on it and an [events.Bus] that followers of the workspace subscribe to.
// The HTTP server keeps workspaces in a [MemoryStore] that expires idle ones;
// the CLI persists workspace state between runs with a [FileStore].
//
// # Concurrency
//
// An interaction session is not safe for concurrent use. Callers hold the
// workspace lock ([Workspace.Lock]) around every call into
// [Workspace.Session] and while reading graph state.
package session

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/listgraph/pkg/cache"
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// DefaultTTL is how long an idle workspace is kept.
const DefaultTTL = 30 * time.Minute

// GenerateID returns a new random workspace id.
func GenerateID() string { return uuid.NewString() }

// WorkspaceOptions configures NewWorkspace.
type WorkspaceOptions struct {
	// Publisher, when set, returns an extra publisher for the workspace with
	// the given id, e.g. a Redis publisher tagged with it.
	Publisher func(id string) events.Publisher
	// Logger receives interaction debug output. Nil discards it.
	Logger *log.Logger
}

// Workspace is one interactive view of a graph document.
type Workspace struct {
	ID        string
	Source    string
	CreatedAt time.Time

	mu       sync.Mutex
	doc      graph.Graph
	docHash  string
	session  *interact.Session
	listener interact.Listener
	bus      *events.Bus
	logger   *log.Logger

	// guarded by the owning store
	expiresAt time.Time
}

// NewWorkspace returns a workspace for doc, laid out as g.
func NewWorkspace(source string, doc graph.Graph, g *listgraph.Graph, opts WorkspaceOptions) *Workspace {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ws := &Workspace{
		ID:        GenerateID(),
		Source:    source,
		CreatedAt: time.Now(),
		bus:       events.NewBus(),
	}
	ws.logger = opts.Logger.With("workspace", ws.ID)

	pubs := events.Multi{ws.bus, events.LogPublisher{Logger: ws.logger}}
	if opts.Publisher != nil {
		pubs = append(pubs, opts.Publisher(ws.ID))
	}
	ws.listener = interact.PublishTo(context.Background(), pubs, ws.logger)
	ws.doc, ws.docHash = doc, hashDoc(doc)
	ws.session = interact.New(g, interact.Options{Listener: ws.listener, Logger: ws.logger})
	return ws
}

// Lock acquires the workspace lock.
func (w *Workspace) Lock() { w.mu.Lock() }

// Unlock releases the workspace lock.
func (w *Workspace) Unlock() { w.mu.Unlock() }

// Session returns the interaction session. Hold the lock while using it.
func (w *Workspace) Session() *interact.Session { return w.session }

// Doc returns the graph document. Hold the lock while using it.
func (w *Workspace) Doc() graph.Graph { return w.doc }

// DocHash identifies the document content. Hold the lock while using it.
func (w *Workspace) DocHash() string { return w.docHash }

// Bus returns the event bus of the workspace. It is safe to use without the
// lock.
func (w *Workspace) Bus() *events.Bus { return w.bus }

// Replace swaps in a new document, carrying the interaction state over to
// the new graph. Nodes that no longer exist lose their state; the returned
// error lists them. The caller holds the lock.
func (w *Workspace) Replace(doc graph.Graph, g *listgraph.Graph) error {
	snap := w.session.Snapshot()
	w.doc, w.docHash = doc, hashDoc(doc)
	w.session = interact.New(g, interact.Options{Listener: w.listener, Logger: w.logger})
	err := w.session.Restore(snap)
	w.logger.Info("graph replaced", "nodes", g.NodeCount(), "hash", w.docHash[:12])
	return err
}

func hashDoc(doc graph.Graph) string {
	data, _ := json.Marshal(doc)
	return cache.Hash(data)
}
