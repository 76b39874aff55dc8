// Package highlight indexes which links and nodes are highlighted, per
// highlight class and focal node.
//
// A class names one highlight concern ("hovering", "lock", "focus"). Each
// (class, focal node) pair owns one entry that is rebuilt on every highlight
// and dropped on the matching unhighlight, so classes never disturb each
// other. Renderers read the union per class.
package highlight

import (
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// Standard classes.
const (
	ClassHovering = "hovering"
	ClassLock     = "lock"
	ClassFocus    = "focus"
)

// Entry is the highlight produced by one focal node in one class.
type Entry struct {
	links map[string]struct{}
	nodes map[listgraph.Ref]listgraph.Hover
}

func newEntry() *Entry {
	return &Entry{
		links: make(map[string]struct{}),
		nodes: make(map[listgraph.Ref]listgraph.Hover),
	}
}

// AddLink records a highlighted link id.
func (e *Entry) AddLink(id string) { e.links[id] = struct{}{} }

// Mark records a node mark, keeping the stronger of the old and new mark.
func (e *Entry) Mark(ref listgraph.Ref, h listgraph.Hover) {
	if h.Stronger(e.nodes[ref]) {
		e.nodes[ref] = h
	}
}

// Links returns the sorted link ids of the entry.
func (e *Entry) Links() []string { return slices.Sorted(maps.Keys(e.links)) }

// Len returns the number of marked nodes and highlighted links.
func (e *Entry) Len() (nodes, links int) { return len(e.nodes), len(e.links) }

// Nodes returns a copy of the node marks of the entry.
func (e *Entry) Nodes() map[listgraph.Ref]listgraph.Hover { return maps.Clone(e.nodes) }

type key struct {
	class, focal string
}

// Index is a concurrency-safe set of highlight entries.
//
// The zero value is not usable - use New.
type Index struct {
	mu      sync.RWMutex
	entries map[key]*Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[key]*Entry)}
}

// Begin replaces the entry for (class, focal) with an empty one and returns
// it for filling. The entry must be filled before other goroutines read it.
func (x *Index) Begin(class, focal string) *Entry {
	e := newEntry()
	x.mu.Lock()
	x.entries[key{class, focal}] = e
	x.mu.Unlock()
	return e
}

// Has reports whether (class, focal) has an entry.
func (x *Index) Has(class, focal string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.entries[key{class, focal}]
	return ok
}

// Links returns the sorted link ids of (class, focal).
func (x *Index) Links(class, focal string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if e, ok := x.entries[key{class, focal}]; ok {
		return e.Links()
	}
	return nil
}

// Nodes returns the node marks of (class, focal).
func (x *Index) Nodes(class, focal string) map[listgraph.Ref]listgraph.Hover {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if e, ok := x.entries[key{class, focal}]; ok {
		return e.Nodes()
	}
	return nil
}

// Discard drops the entry of (class, focal) and returns its link ids.
func (x *Index) Discard(class, focal string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.entries[key{class, focal}]
	if !ok {
		return nil
	}
	delete(x.entries, key{class, focal})
	return e.Links()
}

// Union returns the sorted link ids highlighted in class by any focal node.
func (x *Index) Union(class string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	set := make(map[string]struct{})
	for k, e := range x.entries {
		if k.class == class {
			maps.Copy(set, e.links)
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// NodeMarks returns the strongest mark of every node highlighted in class.
func (x *Index) NodeMarks(class string) map[listgraph.Ref]listgraph.Hover {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make(map[listgraph.Ref]listgraph.Hover)
	for k, e := range x.entries {
		if k.class != class {
			continue
		}
		for ref, h := range e.nodes {
			if h.Stronger(out[ref]) {
				out[ref] = h
			}
		}
	}
	return out
}

// Mark returns the strongest mark of ref across all classes.
func (x *Index) Mark(ref listgraph.Ref) listgraph.Hover {
	x.mu.RLock()
	defer x.mu.RUnlock()
	best := listgraph.HoverNone
	for _, e := range x.entries {
		if h := e.nodes[ref]; h.Stronger(best) {
			best = h
		}
	}
	return best
}

// Classes returns the sorted classes that have at least one entry.
func (x *Index) Classes() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	set := make(map[string]struct{})
	for k := range x.entries {
		set[k.class] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Focals returns the sorted focal node ids of class.
func (x *Index) Focals(class string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []string
	for k := range x.entries {
		if k.class == class {
			out = append(out, k.focal)
		}
	}
	slices.Sort(out)
	return out
}

// Reset drops every entry.
func (x *Index) Reset() {
	x.mu.Lock()
	clear(x.entries)
	x.mu.Unlock()
}
