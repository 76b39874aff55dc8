// Package source loads graph documents from where they are stored.
//
// A [Source] returns a [graph.Graph] document; [Load] lays it out into an
// interactive [listgraph.Graph] and reports the load to the observability
// hooks. Sources that can detect changes also implement [Watcher].
//
// Implementations live in subpackages:
//
//   - [github.com/matzehuels/listgraph/pkg/source/file]: JSON or YAML files
//   - [github.com/matzehuels/listgraph/pkg/source/mongo]: a MongoDB collection
package source

import (
	"context"
	"time"

	"github.com/matzehuels/listgraph/pkg/dag/transform"
	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/observability"
)

// Source provides a graph document.
type Source interface {
	// Name identifies the source in logs and metrics, e.g. "file:deps.yaml".
	Name() string
	// Fetch returns the current document.
	Fetch(ctx context.Context) (graph.Graph, error)
}

// Watcher is implemented by sources that can report changes. Watch blocks
// until ctx is done, calling onChange after the document changed.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Result is a loaded graph together with its document.
type Result struct {
	Doc   graph.Graph
	Graph *listgraph.Graph
	Stats transform.Stats
}

// Load fetches a document from src and lays it out with layering.
func Load(ctx context.Context, src Source, layering transform.Layering) (*Result, error) {
	start := time.Now()
	res, err := load(ctx, src, layering)

	var nodes, clones int
	if res != nil {
		for _, n := range res.Graph.Nodes() {
			nodes++
			if n.Clone {
				clones++
			}
		}
	}
	observability.Load().OnLoad(ctx, src.Name(), nodes, clones, time.Since(start), err)
	return res, err
}

func load(ctx context.Context, src Source, layering transform.Layering) (*Result, error) {
	doc, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	g, stats, err := graph.Layout(doc, layering)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "lay out %s", src.Name())
	}
	return &Result{Doc: doc, Graph: g, Stats: stats}, nil
}

// Static is a source returning a fixed document.
type Static struct {
	Label string
	Doc   graph.Graph
}

// Name implements Source.
func (s Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Fetch implements Source.
func (s Static) Fetch(context.Context) (graph.Graph, error) { return s.Doc, nil }
