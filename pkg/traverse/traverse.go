// Package traverse walks a list graph upward and downward from a focal node.
//
// Both walks expand a node's whole clone set, so reaching any instance of a
// logical node continues the walk from all of its positions in the layout.
// Upward walks remember visited (instance, child) edges, which lets a diamond
// report every edge that converges on a shared ancestor while expanding that
// ancestor only once per edge. Downward walks remember visited instances.
//
// With a depth limit both visited sets keep the most remaining levels a key
// was reached with, and a key reached again with more levels left is expanded
// again. Clone sets span columns, so the same node can be reached over paths
// of different lengths.
package traverse

import "github.com/matzehuels/listgraph/pkg/listgraph"

// Unbounded is the Depth that walks all the way to the roots or leaves.
const Unbounded = 0

// Options controls a walk. The zero value walks without a depth limit and
// includes clones.
type Options struct {
	// Depth limits the number of levels walked from the start node. 1 visits
	// only direct parents or children.
	Depth int
	// ExcludeClones walks from the given instance only instead of its whole
	// clone set.
	ExcludeClones bool
}

// UpFunc is called for every ancestor instance n together with the instance
// child it was reached from.
type UpFunc func(n, child *listgraph.Node)

// DownFunc is called for every visited instance.
type DownFunc func(n *listgraph.Node)

type edge struct {
	node, child listgraph.Ref
}

// Up walks the ancestors of start. The callback is not invoked for the start
// instances themselves. An already visited (instance, child) edge still
// invokes the callback but is not expanded again.
func Up(g *listgraph.Graph, start *listgraph.Node, fn UpFunc, opts Options) {
	w := upWalker{g: g, fn: fn, opts: opts, visited: make(map[edge]int)}
	w.walk(start, nil, remaining(opts.Depth))
}

type upWalker struct {
	g       *listgraph.Graph
	fn      UpFunc
	opts    Options
	visited map[edge]int
}

func (w *upWalker) walk(node, child *listgraph.Node, left int) {
	childRef := listgraph.NoRef
	if child != nil {
		childRef = child.Ref
	}
	for _, n := range instances(w.g, node, w.opts) {
		if child != nil {
			w.fn(n, child)
		}
		k := edge{n.Ref, childRef}
		if seen, ok := w.visited[k]; ok && covers(seen, left) {
			continue
		}
		w.visited[k] = left
		if left == 0 {
			continue
		}
		for _, p := range w.g.Parents(n) {
			w.walk(p, n, next(left))
		}
	}
}

// Down walks the descendants of start, including start's own instances. Each
// instance is reported once. Children are expanded from the canonical node of
// a clone set only, since clones have no children of their own.
func Down(g *listgraph.Graph, start *listgraph.Node, fn DownFunc, opts Options) {
	w := downWalker{g: g, fn: fn, opts: opts, visited: make(map[listgraph.Ref]int)}
	w.walk(start, remaining(opts.Depth))
}

type downWalker struct {
	g       *listgraph.Graph
	fn      DownFunc
	opts    Options
	visited map[listgraph.Ref]int
}

func (w *downWalker) walk(node *listgraph.Node, left int) {
	for i, n := range instances(w.g, node, w.opts) {
		seen, ok := w.visited[n.Ref]
		if ok && covers(seen, left) {
			continue
		}
		w.visited[n.Ref] = left
		if !ok {
			w.fn(n)
		}
		if i != 0 || left == 0 {
			continue
		}
		for _, c := range w.g.Children(n) {
			w.walk(c, next(left))
		}
	}
}

// UpAndDown runs Up and Down from the same node with independent visited
// sets. When down is nil, up is used for both directions and receives a nil
// child during the downward walk.
func UpAndDown(g *listgraph.Graph, start *listgraph.Node, up UpFunc, down DownFunc, opts Options) {
	Up(g, start, up, opts)
	if down == nil {
		down = func(n *listgraph.Node) { up(n, nil) }
	}
	Down(g, start, down, opts)
}

// Siblings calls fn for every child of every parent of n, n included, and for
// the virtual siblings of n.
func Siblings(g *listgraph.Graph, n *listgraph.Node, fn DownFunc) {
	for _, p := range g.Parents(n) {
		for _, c := range g.Children(p) {
			fn(c)
		}
	}
	for _, s := range g.Siblings(n) {
		fn(s)
	}
}

func instances(g *listgraph.Graph, n *listgraph.Node, opts Options) []*listgraph.Node {
	if opts.ExcludeClones {
		return []*listgraph.Node{n}
	}
	return g.CollectInclClones(n, false)
}

// remaining maps a Depth option to a level counter; -1 never reaches zero.
func remaining(depth int) int {
	if depth <= 0 {
		return -1
	}
	return depth
}

// covers reports whether an expansion with seen levels left already reached
// everything an expansion with left levels would.
func covers(seen, left int) bool {
	if seen < 0 {
		return true
	}
	return left >= 0 && seen >= left
}

func next(left int) int {
	if left < 0 {
		return left
	}
	return left - 1
}
