// Package pkg provides the libraries behind listgraph.
//
// # Overview
//
// Listgraph shows a directed graph as a row of columns. Every node sits in
// one column; a node linked from several columns is drawn once per column as
// a clone, so links only ever join neighbouring columns. Users explore the
// graph by hovering, locking, rooting and querying nodes, and every change
// shows up as a set of highlighted links.
//
// The data flow:
//
//	graph document (JSON, YAML, TOML, MongoDB)
//	         ↓
//	    [source] (fetch + lay out)
//	         ↓
//	    [dag] and [dag/transform] (columns, cycle breaking, clones)
//	         ↓
//	    [listgraph] (node instances, link groups, interaction state)
//	         ↓
//	    [interact] (hover, lock, root, query) → [highlight] index → [events]
//	         ↓
//	    terminal UI, HTTP [server], [render/nodelink] diagrams
//
// # Quick Start
//
//	res, err := source.Load(ctx, file.New("deps.yaml", file.Options{}), transform.LayeringLongestPath)
//	if err != nil {
//	    return err
//	}
//	s := interact.New(res.Graph, interact.Options{})
//	core, _ := res.Graph.Lookup("core")
//	s.ToggleLock(core)
//	for _, id := range s.Index().Union(highlight.ClassLock) {
//	    fmt.Println(id)
//	}
//
// # Main Packages
//
// ## Model
//
// [graph] - The document format: named nodes with optional labels, rows and
// metadata, plus edges. Reads and writes JSON, YAML and TOML.
//
// [dag] and [dag/transform] - Layering of a document into columns, with
// cycle breaking and subdivision of long edges into clones.
//
// [listgraph] - The column graph itself. Nodes share their data and state
// with their clones; links are grouped per node into above and below counts.
//
// [traverse] - Breadth-first walks over incoming and outgoing links, with
// depth limits and clone handling.
//
// ## Interaction
//
// [highlight] - The link highlight index, one set of link ids per class and
// node.
//
// [interact] - The interaction session: hover marks, the lock, the root and
// its visibility rules, and query modes.
//
// [controls] - Debounced context-menu clicks committed to a session.
//
// [events] - Interaction events, a synchronous bus and a Redis publisher.
//
// ## Serving
//
// [session] - Workspaces (a graph plus its session) in a TTL store, and
// saved state on disk.
//
// [server] - The HTTP API over workspaces, with server-sent events.
//
// [source] - Graph sources: files (with change watching) and MongoDB.
//
// [cache] - Render caches backed by files or Redis.
//
// [render] and [render/nodelink] - Graphviz diagrams of the current state,
// converted to SVG, PDF or PNG.
//
// ## Infrastructure
//
// [config] - TOML configuration.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for metrics, with a Prometheus implementation in
// [observability/prom].
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/interact/...   # Specific package
//	go test -run Example         # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/graph
// [dag]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/dag/transform
// [listgraph]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/listgraph
// [traverse]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/traverse
// [highlight]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/highlight
// [interact]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/interact
// [controls]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/controls
// [events]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/events
// [session]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/server
// [source]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/render/nodelink
// [config]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/listgraph/pkg/observability/prom
package pkg
