package listgraph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateNode is returned when a logical id or instance key is added twice.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrCloneSource is returned when a link would leave a clone.
	ErrCloneSource = errors.New("clones cannot have children")
	// ErrNonAdjacent is returned when a link does not connect consecutive columns.
	ErrNonAdjacent = errors.New("link must connect adjacent columns")
	// ErrForeignNode is returned when a node from another builder is passed in.
	ErrForeignNode = errors.New("node does not belong to this graph")
)

// Builder assembles a [Graph]. Nodes are appended to their column in the
// order they are added.
//
// The zero value is not usable - use NewBuilder.
type Builder struct {
	g     *Graph
	built bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{
		byID:    make(map[string]Ref),
		byKey:   make(map[string]Ref),
		linkIDs: make(map[string]LinkRef),
	}}
}

// AddNode adds a canonical node with the given logical id at depth.
func (b *Builder) AddNode(id, name string, depth int, meta map[string]any) (*Node, error) {
	if _, ok := b.g.byID[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	n := b.add(id, id, depth, &Data{Name: name, Meta: meta})
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	b.g.byID[id] = n.Ref
	return n, nil
}

// AddClone adds a clone of original at depth. The clone's instance key is
// "<id>#<depth>" unless that key is taken, then a counter is appended.
func (b *Builder) AddClone(original *Node, depth int) (*Node, error) {
	if err := b.owns(original); err != nil {
		return nil, err
	}
	orig := b.g.Original(original)
	key := fmt.Sprintf("%s#%d", orig.ID, depth)
	for i := 2; b.hasKey(key); i++ {
		key = fmt.Sprintf("%s#%d__%d", orig.ID, depth, i)
	}
	n := b.add(orig.ID, key, depth, orig.Data)
	n.Clone = true
	n.original = orig.Ref
	orig.clones = append(orig.clones, n.Ref)
	return n, nil
}

// AddCloneKey is AddClone with an explicit instance key.
func (b *Builder) AddCloneKey(original *Node, key string, depth int) (*Node, error) {
	if err := b.owns(original); err != nil {
		return nil, err
	}
	if b.hasKey(key) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, key)
	}
	orig := b.g.Original(original)
	n := b.add(orig.ID, key, depth, orig.Data)
	n.Clone = true
	n.original = orig.Ref
	orig.clones = append(orig.clones, n.Ref)
	return n, nil
}

// AddLink connects source to target. The target must sit in the column right
// of the source and the source must not be a clone.
func (b *Builder) AddLink(source, target *Node) (*Link, error) {
	if err := b.owns(source); err != nil {
		return nil, err
	}
	if err := b.owns(target); err != nil {
		return nil, err
	}
	if source.Clone {
		return nil, fmt.Errorf("%w: %s", ErrCloneSource, source.Key)
	}
	if target.Depth != source.Depth+1 {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNonAdjacent, source.Key, target.Key)
	}
	id := source.Key + "->" + target.Key
	if _, ok := b.g.linkIDs[id]; ok {
		return b.g.links[b.g.linkIDs[id]], nil
	}
	l := &Link{
		Ref:    LinkRef(len(b.g.links)),
		ID:     id,
		Source: Endpoint{Node: source.Ref},
		Target: Endpoint{Node: target.Ref},
	}
	b.g.links = append(b.g.links, l)
	b.g.linkIDs[id] = l.Ref
	source.children = append(source.children, target.Ref)
	target.parents = append(target.parents, source.Ref)
	source.Links.Outgoing.Refs = append(source.Links.Outgoing.Refs, l.Ref)
	target.Links.Incoming.Refs = append(target.Links.Incoming.Refs, l.Ref)
	return l, nil
}

// SetSiblings records virtual siblings of n. The relation is stored on n only.
func (b *Builder) SetSiblings(n *Node, siblings ...*Node) error {
	if err := b.owns(n); err != nil {
		return err
	}
	n.siblings = n.siblings[:0]
	for _, s := range siblings {
		if err := b.owns(s); err != nil {
			return err
		}
		if s.Ref != n.Ref && !containsRef(n.siblings, s.Ref) {
			n.siblings = append(n.siblings, s.Ref)
		}
	}
	return nil
}

// SortColumns reorders every column with cmp and renumbers [Node.Row].
func (b *Builder) SortColumns(cmp func(a, c *Node) int) {
	for _, col := range b.g.columns {
		slices.SortStableFunc(col, func(x, y Ref) int {
			return cmp(b.g.nodes[x], b.g.nodes[y])
		})
		for i, r := range col {
			b.g.nodes[r].Row = i
		}
	}
}

// Graph finalizes the link summaries and returns the graph. The builder must
// not be used afterwards.
func (b *Builder) Graph() *Graph {
	if !b.built {
		b.built = true
		b.summarize()
	}
	return b.g
}

func (b *Builder) add(id, key string, depth int, data *Data) *Node {
	if b.hasKey(key) {
		return nil
	}
	for len(b.g.columns) <= depth {
		b.g.columns = append(b.g.columns, nil)
	}
	n := &Node{
		Ref:      Ref(len(b.g.nodes)),
		ID:       id,
		Key:      key,
		Depth:    depth,
		Row:      len(b.g.columns[depth]),
		Data:     data,
		original: NoRef,
	}
	b.g.nodes = append(b.g.nodes, n)
	b.g.byKey[key] = n.Ref
	b.g.columns[depth] = append(b.g.columns[depth], n.Ref)
	return n
}

func (b *Builder) hasKey(key string) bool {
	_, ok := b.g.byKey[key]
	return ok
}

func (b *Builder) owns(n *Node) error {
	if n == nil || b.g.Node(n.Ref) != n {
		return ErrForeignNode
	}
	return nil
}

// summarize fills Total, Above and Below of every link group.
func (b *Builder) summarize() {
	for _, n := range b.g.nodes {
		out := &n.Links.Outgoing
		out.Total = len(out.Refs)
		out.Above, out.Below = 0, 0
		for _, r := range out.Refs {
			t := b.g.nodes[b.g.links[r].Target.Node]
			switch {
			case t.Row < n.Row:
				out.Above++
			case t.Row > n.Row:
				out.Below++
			}
		}
		in := &n.Links.Incoming
		in.Total = len(in.Refs)
		in.Above, in.Below = 0, 0
		for _, r := range in.Refs {
			s := b.g.nodes[b.g.links[r].Source.Node]
			switch {
			case s.Row < n.Row:
				in.Above++
			case s.Row > n.Row:
				in.Below++
			}
		}
	}
}
