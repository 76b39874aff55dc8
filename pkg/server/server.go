// Package server exposes interaction workspaces over HTTP.
//
// Every workspace wraps one laid-out graph and its interaction session.
// Clients create a workspace from an inline document or a stored graph,
// then drive hover, lock, root and query transitions and read the resulting
// state, highlighted links and renderings. Interaction events are streamed
// to followers as server-sent events.
//
// All routes live under /api/v1; /health and /metrics sit at the root.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/listgraph/pkg/cache"
	"github.com/matzehuels/listgraph/pkg/dag/transform"
	lgerrors "github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/session"
	"github.com/matzehuels/listgraph/pkg/source"
)

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 10 * time.Second

// Graphs resolves stored graphs by name.
type Graphs interface {
	Source(name string) source.Source
}

// Options configures a Server. Only Store is required.
type Options struct {
	Store    session.Store
	Layering transform.Layering
	// Hover is the default for hover requests that do not override it.
	Hover interact.HighlightOptions

	// Graphs, when set, lets clients open stored graphs by name.
	Graphs Graphs

	// Cache holds rendered images. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	Keyer    cache.Keyer

	Workspace session.WorkspaceOptions
	// Metrics, when set, is served at /metrics.
	Metrics     http.Handler
	CORSOrigins []string
	Logger      *log.Logger
}

// Server routes HTTP requests to workspaces.
type Server struct {
	opts   Options
	router chi.Router
	logger *log.Logger
}

// New returns a server with all routes registered.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, lgerrors.New(lgerrors.ErrCodeInvalidConfig, "server needs a workspace store")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Cache == nil {
		opts.Cache = cache.NullCache{}
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Workspace.Logger == nil {
		opts.Workspace.Logger = opts.Logger
	}

	s := &Server{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	r.Route("/api/v1/workspaces", s.routes)

	s.router = r
	return s, nil
}

func (s *Server) routes(r chi.Router) {
	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)
	r.Get("/{id}", s.handleGet)
	r.Delete("/{id}", s.handleDelete)
	r.Get("/{id}/nodes", s.handleNodes)
	r.Get("/{id}/links", s.handleLinks)
	r.Post("/{id}/hover", s.handleHover)
	r.Post("/{id}/lock", s.handleLock)
	r.Post("/{id}/root", s.handleRoot)
	r.Post("/{id}/query", s.handleQuery)
	r.Post("/{id}/query/batch", s.handleBatch)
	r.Post("/{id}/level", s.handleLevel)
	r.Post("/{id}/reset", s.handleReset)
	r.Get("/{id}/render", s.handleRender)
	r.Get("/{id}/events", s.handleEvents)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Open loads src and adds a workspace for it to the store.
func (s *Server) Open(ctx context.Context, src source.Source) (*session.Workspace, error) {
	res, err := source.Load(ctx, src, s.opts.Layering)
	if err != nil {
		return nil, err
	}
	ws := session.NewWorkspace(src.Name(), res.Doc, res.Graph, s.opts.Workspace)
	s.opts.Store.Add(ws)
	s.logger.Info("workspace opened", "id", ws.ID, "source", src.Name(), "nodes", res.Graph.NodeCount(), "clones", res.Stats.Clones)
	return ws, nil
}

// Reload reloads the document of workspace id from src, keeping the
// interaction state where the nodes still exist.
func (s *Server) Reload(ctx context.Context, id string, src source.Source) error {
	ws, err := s.opts.Store.Get(id)
	if err != nil {
		return err
	}
	res, err := source.Load(ctx, src, s.opts.Layering)
	if err != nil {
		return err
	}
	ws.Lock()
	defer ws.Unlock()
	if err := ws.Replace(res.Doc, res.Graph); err != nil {
		s.logger.Warn("state lost on reload", "id", id, "err", err)
	}
	return nil
}

// Run serves on addr until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down: %w", err)
	}
	return <-errCh
}
