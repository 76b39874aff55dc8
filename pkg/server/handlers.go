package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/session"
	"github.com/matzehuels/listgraph/pkg/source"
)

type workspaceView struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	CreatedAt time.Time          `json:"createdAt"`
	Columns   int                `json:"columns"`
	Nodes     int                `json:"nodes"`
	State     *interact.Snapshot `json:"state,omitempty"`
}

type nodeView struct {
	Key      string `json:"key"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Column   int    `json:"column"`
	Row      int    `json:"row"`
	Clone    bool   `json:"clone,omitempty"`
	Hovering string `json:"hovering,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
	Lock     bool   `json:"lock,omitempty"`
	Root     bool   `json:"root,omitempty"`
	Query    string `json:"query,omitempty"`
}

// changeView is the response to every state transition: the events it
// emitted and the resulting state.
type changeView struct {
	Events []events.Event    `json:"events"`
	State  interact.Snapshot `json:"state"`
}

func viewWorkspace(ws *session.Workspace, withState bool) workspaceView {
	g := ws.Session().Graph()
	v := workspaceView{
		ID:        ws.ID,
		Source:    ws.Source,
		CreatedAt: ws.CreatedAt,
		Columns:   g.Columns(),
		Nodes:     g.NodeCount(),
	}
	if withState {
		snap := ws.Session().Snapshot()
		v.State = &snap
	}
	return v
}

func viewNode(n *listgraph.Node) nodeView {
	st := n.State()
	v := nodeView{
		Key:    n.Key,
		ID:     n.ID,
		Name:   n.Name(),
		Column: n.Depth,
		Row:    n.Row,
		Clone:  n.Clone,
		Hidden: n.Hidden,
		Lock:   st.Lock,
		Root:   st.Root,
	}
	if n.Hovering != listgraph.HoverNone {
		v.Hovering = n.Hovering.String()
	}
	if st.Query != listgraph.QueryNone {
		v.Query = st.Query.String()
	}
	return v
}

// workspace returns the workspace named by the {id} route parameter.
func (s *Server) workspace(r *http.Request) (*session.Workspace, error) {
	return s.opts.Store.Get(chi.URLParam(r, "id"))
}

// resolve finds a node by instance key, falling back to the logical id.
func resolve(g *listgraph.Graph, ref string) (*listgraph.Node, error) {
	if n, ok := g.LookupKey(ref); ok {
		return n, nil
	}
	if n, ok := g.Lookup(ref); ok {
		return n, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "no node %q", ref)
}

// mutate runs fn under the workspace lock and responds with the events fn
// caused and the resulting state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(sess *interact.Session) error) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ws.Lock()
	var emitted []events.Event
	sub := ws.Bus().Subscribe(func(ev events.Event) { emitted = append(emitted, ev) })
	err = fn(ws.Session())
	ws.Bus().Unsubscribe(sub)
	snap := ws.Session().Snapshot()
	ws.Unlock()

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if emitted == nil {
		emitted = []events.Event{}
	}
	writeJSON(w, http.StatusOK, changeView{Events: emitted, State: snap})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	list := s.opts.Store.List()
	out := make([]workspaceView, 0, len(list))
	for _, ws := range list {
		ws.Lock()
		out = append(out, viewWorkspace(ws, false))
		ws.Unlock()
	}
	writeJSON(w, http.StatusOK, out)
}

type createRequest struct {
	// Graph names a stored graph.
	Graph string `json:"graph,omitempty"`
	// Doc is an inline graph document.
	Doc *graph.Graph `json:"doc,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var src source.Source
	switch {
	case req.Doc != nil && req.Graph != "":
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "give either graph or doc, not both"))
		return
	case req.Doc != nil:
		label := req.Doc.Name
		if label == "" {
			label = "inline"
		}
		src = source.Static{Label: label, Doc: *req.Doc}
	case req.Graph != "":
		if err := errors.ValidateIdentifier("graph name", req.Graph); err != nil {
			s.writeError(w, r, err)
			return
		}
		if s.opts.Graphs == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUnsupportedInput, "no graph store configured"))
			return
		}
		src = s.opts.Graphs.Source(req.Graph)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "graph or doc is required"))
		return
	}

	ws, err := s.Open(r.Context(), src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Lock()
	v := viewWorkspace(ws, true)
	ws.Unlock()
	w.Header().Set("Location", "/api/v1/workspaces/"+ws.ID)
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Lock()
	v := viewWorkspace(ws, true)
	ws.Unlock()
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := s.workspace(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.opts.Store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Lock()
	nodes := ws.Session().Graph().Nodes()
	out := make([]nodeView, len(nodes))
	for i, n := range nodes {
		out[i] = viewNode(n)
	}
	ws.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handleLinks returns the highlighted link ids per class, or for the single
// class given by the class query parameter.
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	class := r.URL.Query().Get("class")

	ws.Lock()
	idx := ws.Session().Index()
	out := make(map[string][]string)
	if class != "" {
		out[class] = idx.Union(class)
	} else {
		for _, c := range idx.Classes() {
			out[c] = idx.Union(c)
		}
	}
	ws.Unlock()

	for c, ids := range out {
		if ids == nil {
			out[c] = []string{}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type hoverRequest struct {
	Node  string `json:"node"`
	Class string `json:"class,omitempty"`
	// Restriction is "none" or "direct-parents"; empty uses the default.
	Restriction   string `json:"restriction,omitempty"`
	ExcludeClones *bool  `json:"excludeClones,omitempty"`
	// Leave removes the highlight instead of adding it.
	Leave bool `json:"leave,omitempty"`
}

func (s *Server) hoverOptions(req hoverRequest) (interact.HighlightOptions, error) {
	o := s.opts.Hover
	if req.Class != "" {
		if err := errors.ValidateClassName(req.Class); err != nil {
			return o, err
		}
		o.Class = req.Class
	}
	if req.Restriction != "" {
		r, err := interact.ParseRestriction(req.Restriction)
		if err != nil {
			return o, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid restriction")
		}
		o.Restriction = r
	}
	if req.ExcludeClones != nil {
		o.ExcludeClones = *req.ExcludeClones
	}
	return o, nil
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.hoverOptions(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(sess *interact.Session) error {
		n, err := resolve(sess.Graph(), req.Node)
		if err != nil {
			return err
		}
		if req.Leave {
			sess.UnhighlightNodes(n, opts)
		} else {
			sess.HighlightNodes(n, opts)
		}
		return nil
	})
}

type nodeRequest struct {
	Node string `json:"node"`
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(sess *interact.Session) error {
		n, err := resolve(sess.Graph(), req.Node)
		if err != nil {
			return err
		}
		sess.ToggleLock(n)
		return nil
	})
}

type rootRequest struct {
	Node   string `json:"node"`
	Unroot bool   `json:"unroot,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	var req rootRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(sess *interact.Session) error {
		n, err := resolve(sess.Graph(), req.Node)
		if err != nil {
			return err
		}
		sess.ToggleRoot(n, req.Unroot)
		return nil
	})
}

type queryRequest struct {
	Node   string `json:"node"`
	Action string `json:"action,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

func parseQuery(g *listgraph.Graph, req queryRequest) (interact.QueryAction, error) {
	n, err := resolve(g, req.Node)
	if err != nil {
		return interact.QueryAction{}, err
	}
	action, err := interact.ParseAction(req.Action)
	if err != nil {
		return interact.QueryAction{}, errors.Wrap(errors.ErrCodeInvalidAction, err, "invalid action for %q", req.Node)
	}
	var mode listgraph.QueryMode
	if req.Mode != "" {
		if mode, err = listgraph.ParseQueryMode(req.Mode); err != nil {
			return interact.QueryAction{}, errors.Wrap(errors.ErrCodeInvalidQueryMode, err, "invalid mode for %q", req.Node)
		}
	}
	return interact.QueryAction{Node: n, Action: action, Mode: mode}, nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(sess *interact.Session) error {
		qa, err := parseQuery(sess.Graph(), req)
		if err != nil {
			return err
		}
		sess.QueryHandler(qa.Node, qa.Action, qa.Mode)
		return nil
	})
}

type batchRequest struct {
	Actions []queryRequest `json:"actions"`
}

// handleBatch applies all actions or none: every entry is validated before
// the first one runs.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(sess *interact.Session) error {
		actions := make([]interact.QueryAction, len(req.Actions))
		for i, a := range req.Actions {
			qa, err := parseQuery(sess.Graph(), a)
			if err != nil {
				return err
			}
			actions[i] = qa
		}
		sess.BatchQueryHandler(actions)
		return nil
	})
}

type levelRequest struct {
	Level int `json:"level"`
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(sess *interact.Session) error {
		sess.SetActiveLevel(req.Level)
		return nil
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *interact.Session) error {
		sess.Reset()
		return nil
	})
}
