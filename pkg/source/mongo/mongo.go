// Package mongo stores graph documents in a MongoDB collection, one document
// per graph keyed by its name.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	lgerrors "github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/source"
)

// Defaults used by Connect when the options leave them empty.
const (
	DefaultDatabase   = "listgraph"
	DefaultCollection = "graphs"
)

// Collection is the part of [mongo.Collection] the store uses.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	Distinct(ctx context.Context, fieldName string, filter any, opts ...*options.DistinctOptions) ([]any, error)
}

// Store reads and writes graph documents.
type Store struct {
	coll Collection
}

// NewStore returns a store over coll.
func NewStore(coll Collection) *Store {
	return &Store{coll: coll}
}

// Options configures Connect.
type Options struct {
	URI        string
	Database   string
	Collection string
}

// Connect dials MongoDB and returns a store on the configured collection.
// The returned client must be disconnected by the caller.
func Connect(ctx context.Context, opts Options) (*Store, *mongo.Client, error) {
	if opts.URI == "" {
		return nil, nil, lgerrors.New(lgerrors.ErrCodeInvalidConfig, "mongo uri is empty")
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, nil, lgerrors.Wrap(lgerrors.ErrCodeBackend, err, "connect mongo")
	}
	coll := client.Database(opts.Database).Collection(opts.Collection)
	return NewStore(coll), client, nil
}

// Get returns the graph named name.
func (s *Store) Get(ctx context.Context, name string) (graph.Graph, error) {
	var g graph.Graph
	err := s.coll.FindOne(ctx, bson.D{{Key: "name", Value: name}}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return graph.Graph{}, lgerrors.New(lgerrors.ErrCodeGraphNotFound, "graph %q not found", name)
	}
	if err != nil {
		return graph.Graph{}, lgerrors.Wrap(lgerrors.ErrCodeBackend, err, "find graph %q", name)
	}
	return g, nil
}

// Put inserts or replaces the graph with the same name.
func (s *Store) Put(ctx context.Context, g graph.Graph) error {
	if g.Name == "" {
		return lgerrors.New(lgerrors.ErrCodeInvalidInput, "graph name is required")
	}
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "name", Value: g.Name}}, g, options.Replace().SetUpsert(true))
	if err != nil {
		return lgerrors.Wrap(lgerrors.ErrCodeBackend, err, "store graph %q", g.Name)
	}
	return nil
}

// Names lists the stored graph names.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	vals, err := s.coll.Distinct(ctx, "name", bson.D{})
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeBackend, err, "list graphs")
	}
	names := make([]string, 0, len(vals))
	for _, v := range vals {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Source returns a source for the graph named name.
func (s *Store) Source(name string) source.Source {
	return &namedSource{store: s, name: name}
}

type namedSource struct {
	store *Store
	name  string
}

func (n *namedSource) Name() string { return fmt.Sprintf("mongo:%s", n.name) }

func (n *namedSource) Fetch(ctx context.Context) (graph.Graph, error) {
	return n.store.Get(ctx, n.name)
}
