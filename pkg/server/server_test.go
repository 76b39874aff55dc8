package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	lgerrors "github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/listgraph/listgraphtest"
	"github.com/matzehuels/listgraph/pkg/observability"
	"github.com/matzehuels/listgraph/pkg/session"
	"github.com/matzehuels/listgraph/pkg/source"
)

func newServer(t *testing.T, opts Options) (*Server, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	opts.Store = store
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, store
}

// sampleWorkspace adds a workspace over the sample graph and returns its id.
func sampleWorkspace(t *testing.T, store *session.MemoryStore) string {
	t.Helper()
	ws := session.NewWorkspace("sample", graph.Graph{Name: "sample"}, listgraphtest.Sample(t), session.WorkspaceOptions{})
	store.Add(ws)
	return ws.ID
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func eventNames(evs []events.Event) []events.Name {
	out := make([]events.Name, len(evs))
	for i, ev := range evs {
		out[i] = ev.Name
	}
	return out
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New() without store should fail")
	}
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t, Options{})
	w := do(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("GET /health = %d %s", w.Code, w.Body)
	}
}

func TestCreateFromDoc(t *testing.T) {
	s, store := newServer(t, Options{})
	doc := graph.Graph{
		Name:  "demo",
		Nodes: []graph.Node{{ID: "app"}, {ID: "lib"}},
		Edges: []graph.Edge{{From: "app", To: "lib"}},
	}

	w := do(t, s, http.MethodPost, "/api/v1/workspaces", map[string]any{"doc": doc})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body)
	}
	v := decode[workspaceView](t, w)
	if v.Source != "demo" || v.Columns != 2 || v.Nodes != 2 || v.State == nil {
		t.Errorf("created = %+v", v)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d workspaces", store.Len())
	}

	list := decode[[]workspaceView](t, do(t, s, http.MethodGet, "/api/v1/workspaces", nil))
	if len(list) != 1 || list[0].ID != v.ID {
		t.Errorf("list = %+v", list)
	}

	if w := do(t, s, http.MethodDelete, "/api/v1/workspaces/"+v.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/api/v1/workspaces/"+v.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
}

type fakeGraphs map[string]graph.Graph

func (f fakeGraphs) Source(name string) source.Source {
	return source.Static{Label: "stored:" + name, Doc: f[name]}
}

func TestCreateFromStoredGraph(t *testing.T) {
	s, _ := newServer(t, Options{})
	if w := do(t, s, http.MethodPost, "/api/v1/workspaces", map[string]any{"graph": "demo"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("create without graph store = %d", w.Code)
	}

	s, _ = newServer(t, Options{Graphs: fakeGraphs{"demo": {Nodes: []graph.Node{{ID: "solo"}}}}})
	w := do(t, s, http.MethodPost, "/api/v1/workspaces", map[string]any{"graph": "demo"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body)
	}
	if v := decode[workspaceView](t, w); v.Source != "stored:demo" {
		t.Errorf("source = %q", v.Source)
	}
}

func TestCreate_Invalid(t *testing.T) {
	s, _ := newServer(t, Options{Graphs: fakeGraphs{}})
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty", `{}`, "INVALID_INPUT"},
		{"both", `{"graph":"a","doc":{"nodes":[],"edges":[]}}`, "INVALID_INPUT"},
		{"unknown field", `{"path":"/etc/passwd"}`, "INVALID_INPUT"},
		{"traversal", `{"graph":"../x"}`, "INVALID_INPUT"},
		{"bad doc", `{"doc":{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d %s", w.Code, w.Body)
			}
			body := decode[map[string]errorBody](t, w)
			if got := body["error"].Code; string(got) != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestLock(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id

	w := do(t, s, http.MethodPost, path+"/lock", map[string]string{"node": "C"})
	if w.Code != http.StatusOK {
		t.Fatalf("lock = %d %s", w.Code, w.Body)
	}
	ch := decode[changeView](t, w)
	if got, want := eventNames(ch.Events), []events.Name{events.NodeEnter, events.NodeLock}; !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if ch.State.Locked != "C" {
		t.Errorf("locked = %q", ch.State.Locked)
	}

	links := decode[map[string][]string](t, do(t, s, http.MethodGet, path+"/links?class=lock", nil))
	if !slices.Contains(links["lock"], "A->C") || !slices.Contains(links["lock"], "C->E") {
		t.Errorf("lock links = %v", links["lock"])
	}

	ch = decode[changeView](t, do(t, s, http.MethodPost, path+"/lock", map[string]string{"node": "C"}))
	if ch.State.Locked != "" || !slices.Contains(eventNames(ch.Events), events.NodeUnlock) {
		t.Errorf("second toggle = %+v", ch)
	}
}

func TestHover(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id

	ch := decode[changeView](t, do(t, s, http.MethodPost, path+"/hover", map[string]any{"node": "D", "restriction": "direct-parents"}))
	if got := ch.State.Highlights["hovering"]; !slices.Equal(got, []string{"A->D", "B->D"}) {
		t.Errorf("hover links = %v", got)
	}

	nodes := decode[[]nodeView](t, do(t, s, http.MethodGet, path+"/nodes", nil))
	marks := map[string]string{}
	for _, n := range nodes {
		if n.Hovering != "" {
			marks[n.Key] = n.Hovering
		}
	}
	if marks["D"] == "" || marks["A"] == "" || marks["E"] != "" {
		t.Errorf("marks = %v", marks)
	}

	ch = decode[changeView](t, do(t, s, http.MethodPost, path+"/hover", map[string]any{"node": "D", "leave": true}))
	if len(ch.State.Highlights["hovering"]) != 0 {
		t.Errorf("links after leave = %v", ch.State.Highlights)
	}

	if w := do(t, s, http.MethodPost, path+"/hover", map[string]any{"node": "D", "class": "no spaces"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad class = %d", w.Code)
	}
}

func TestRootAndQuery(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id

	ch := decode[changeView](t, do(t, s, http.MethodPost, path+"/root", map[string]any{"node": "D"}))
	if ch.State.Rooted != "D" || ch.State.Queries["D"] != "or" || !ch.State.RootQuerySynthesized {
		t.Errorf("after root = %+v", ch.State)
	}

	ch = decode[changeView](t, do(t, s, http.MethodPost, path+"/query", map[string]any{"node": "D", "action": "query", "mode": "and"}))
	if ch.State.Queries["D"] != "and" {
		t.Errorf("after query = %+v", ch.State)
	}

	ch = decode[changeView](t, do(t, s, http.MethodPost, path+"/root", map[string]any{"node": "D", "unroot": true}))
	if ch.State.Rooted != "" {
		t.Errorf("after unroot = %+v", ch.State)
	}

	w := do(t, s, http.MethodPost, path+"/query", map[string]any{"node": "D", "mode": "xor"})
	if w.Code != http.StatusBadRequest || decode[map[string]errorBody](t, w)["error"].Code != "INVALID_QUERY_MODE" {
		t.Errorf("bad mode = %d %s", w.Code, w.Body)
	}
	if w := do(t, s, http.MethodPost, path+"/root", map[string]any{"node": "nope"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown node = %d", w.Code)
	}
}

func TestBatch(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id

	body := map[string]any{"actions": []map[string]string{
		{"node": "A", "action": "query", "mode": "or"},
		{"node": "B", "action": "query", "mode": "not"},
	}}
	ch := decode[changeView](t, do(t, s, http.MethodPost, path+"/query/batch", body))
	if ch.State.Queries["A"] != "or" || ch.State.Queries["B"] != "not" {
		t.Errorf("queries = %v", ch.State.Queries)
	}
	if got := eventNames(ch.Events); !slices.Contains(got, events.QueryBatch) {
		t.Errorf("events = %v", got)
	}

	// One invalid entry rejects the whole batch.
	body = map[string]any{"actions": []map[string]string{
		{"node": "C", "action": "query", "mode": "or"},
		{"node": "D", "action": "explode"},
	}}
	if w := do(t, s, http.MethodPost, path+"/query/batch", body); w.Code != http.StatusBadRequest {
		t.Errorf("bad batch = %d", w.Code)
	}
	state := decode[workspaceView](t, do(t, s, http.MethodGet, path, nil)).State
	if _, ok := state.Queries["C"]; ok {
		t.Errorf("partial batch applied: %v", state.Queries)
	}
}

func TestLevelAndReset(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id

	do(t, s, http.MethodPost, path+"/lock", map[string]string{"node": "A"})
	ch := decode[changeView](t, do(t, s, http.MethodPost, path+"/level", map[string]int{"level": 2}))
	if ch.State.ActiveLevel != 2 {
		t.Errorf("level = %d", ch.State.ActiveLevel)
	}
	ch = decode[changeView](t, do(t, s, http.MethodPost, path+"/reset", nil))
	if ch.State.Locked != "" || ch.State.ActiveLevel != 0 {
		t.Errorf("after reset = %+v", ch.State)
	}
}

func TestRenderDOT(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id

	do(t, s, http.MethodPost, path+"/lock", map[string]string{"node": "C"})
	w := do(t, s, http.MethodGet, path+"/render?format=dot", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("render = %d %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), `"A" -> "C" [color="#d32f2f", penwidth=2];`) {
		t.Errorf("lock link missing from DOT:\n%s", w.Body)
	}

	if w := do(t, s, http.MethodGet, path+"/render?format=gif", nil); w.Code != http.StatusBadRequest {
		t.Errorf("gif = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, path+"/render?format=png&scale=100", nil); w.Code != http.StatusBadRequest {
		t.Errorf("scale 100 = %d", w.Code)
	}
}

type memCache struct {
	data map[string][]byte
	sets int
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, v []byte, _ time.Duration) error {
	c.sets++
	c.data[key] = v
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestRenderSVG_Cached(t *testing.T) {
	c := &memCache{data: map[string][]byte{}}
	s, store := newServer(t, Options{Cache: c, CacheTTL: time.Minute})
	id := sampleWorkspace(t, store)
	path := "/api/v1/workspaces/" + id + "/render"

	first := do(t, s, http.MethodGet, path, nil)
	if first.Code != http.StatusOK || !strings.Contains(first.Body.String(), "<svg") {
		t.Fatalf("render = %d %.200s", first.Code, first.Body)
	}
	do(t, s, http.MethodGet, path, nil)
	if c.sets != 1 {
		t.Errorf("cache sets = %d, want 1", c.sets)
	}

	do(t, s, http.MethodPost, "/api/v1/workspaces/"+id+"/hover", map[string]string{"node": "E"})
	do(t, s, http.MethodGet, path, nil)
	if c.sets != 2 {
		t.Errorf("state change should miss the cache, sets = %d", c.sets)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	routes []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.routes = append(h.routes, method+" "+route+" "+http.StatusText(status))
}

func TestObserve(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	do(t, s, http.MethodGet, "/api/v1/workspaces/"+id, nil)
	do(t, s, http.MethodGet, "/api/v1/workspaces/missing", nil)

	want := []string{
		"GET /api/v1/workspaces/{id} OK",
		"GET /api/v1/workspaces/{id} Not Found",
	}
	if !slices.Equal(hooks.routes, want) {
		t.Errorf("routes = %q, want %q", hooks.routes, want)
	}
}

func TestEvents(t *testing.T) {
	s, store := newServer(t, Options{})
	id := sampleWorkspace(t, store)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/workspaces/"+id+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	if line, _ := r.ReadString('\n'); line != ": connected\n" {
		t.Fatalf("first line = %q", line)
	}

	body := strings.NewReader(`{"node":"B"}`)
	post, err := http.Post(ts.URL+"/api/v1/workspaces/"+id+"/lock", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()

	var got []string
	for len(got) < 2 {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v (got %v)", err, got)
		}
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			got = append(got, strings.TrimSpace(name))
		}
	}
	if want := []string{"node.enter", "node.lock"}; !slices.Equal(got, want) {
		t.Errorf("streamed = %v, want %v", got, want)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		"INVALID_CONFIG":    http.StatusBadRequest,
		"NODE_NOT_FOUND":    http.StatusNotFound,
		"SESSION_EXPIRED":   http.StatusGone,
		"UNSUPPORTED_INPUT": http.StatusUnprocessableEntity,
		"BACKEND_ERROR":     http.StatusBadGateway,
		"SOMETHING_ELSE":    http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(lgerrors.Code(code)); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}
