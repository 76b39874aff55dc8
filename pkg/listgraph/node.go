package listgraph

import (
	"fmt"
	"strings"
)

// Ref identifies a node instance inside a [Graph] arena.
type Ref int

// NoRef is the zero reference used for "no node".
const NoRef Ref = -1

// Hover is the transient highlight mark of a node instance.
type Hover int8

const (
	HoverNone     Hover = iota // not highlighted
	HoverDirect                // the focal node of a highlight
	HoverIndirect              // reached by the traversal from the focal node
)

// String returns a lowercase label for the mark.
func (h Hover) String() string {
	switch h {
	case HoverDirect:
		return "direct"
	case HoverIndirect:
		return "indirect"
	default:
		return "none"
	}
}

// Stronger reports whether h takes precedence over other. Direct beats
// indirect, indirect beats none.
func (h Hover) Stronger(other Hover) bool {
	return h.rank() > other.rank()
}

func (h Hover) rank() int {
	switch h {
	case HoverDirect:
		return 2
	case HoverIndirect:
		return 1
	default:
		return 0
	}
}

// QueryMode is the query role of a node.
type QueryMode string

const (
	QueryNone QueryMode = ""
	QueryOr   QueryMode = "or"
	QueryAnd  QueryMode = "and"
	QueryNot  QueryMode = "not"
)

// Valid reports whether m is one of the known modes, QueryNone included.
func (m QueryMode) Valid() bool {
	switch m {
	case QueryNone, QueryOr, QueryAnd, QueryNot:
		return true
	}
	return false
}

// String returns the mode name, or "none" for QueryNone.
func (m QueryMode) String() string {
	if m == QueryNone {
		return "none"
	}
	return string(m)
}

// ParseQueryMode parses a mode name. The empty string and "none" both map to
// QueryNone.
func ParseQueryMode(s string) (QueryMode, error) {
	switch m := QueryMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "none", QueryNone:
		return QueryNone, nil
	case QueryOr, QueryAnd, QueryNot:
		return m, nil
	}
	return QueryNone, fmt.Errorf("unknown query mode %q", s)
}

// QueryOrigin remembers where a rooted node's query came from.
type QueryOrigin int8

const (
	// QueryOriginUnset means the node is not rooted.
	QueryOriginUnset QueryOrigin = iota
	// QueryOriginSynthesized means rooting set the query and unrooting clears it.
	QueryOriginSynthesized
	// QueryOriginPreexisting means the query was there before rooting and survives it.
	QueryOriginPreexisting
)

// State is the interaction state shared by a canonical node and its clones.
type State struct {
	Lock               bool
	Root               bool
	Query              QueryMode
	QueryBeforeRooting QueryOrigin
}

// Data is the payload shared by a canonical node and its clones.
type Data struct {
	Name  string
	Meta  map[string]any
	State State
}

// LinkRef identifies a link inside a [Graph].
type LinkRef int

// LinkGroup summarizes the links on one side of a node.
type LinkGroup struct {
	Refs  []LinkRef
	Total int
	Above int // links whose other end sits above this node in its column
	Below int // links whose other end sits below this node in its column
}

// Links holds the incoming and outgoing link groups of a node instance.
type Links struct {
	Incoming LinkGroup
	Outgoing LinkGroup
}

// Node is one node instance. Canonical nodes and clones are both Nodes; a
// clone has Clone set and shares ID and Data with its canonical node.
type Node struct {
	Ref   Ref
	ID    string // logical id, shared with clones
	Key   string // unique instance key, e.g. "lib#2" for a clone
	Depth int    // column index
	Row   int    // position within the column
	Clone bool
	Data  *Data
	Links Links

	Hovering Hover
	Hidden   bool

	parents  []Ref
	children []Ref
	original Ref
	clones   []Ref
	siblings []Ref
}

// Name returns the display name of the node.
func (n *Node) Name() string {
	if n.Data != nil && n.Data.Name != "" {
		return n.Data.Name
	}
	return n.ID
}

// State returns the shared interaction state.
func (n *Node) State() *State { return &n.Data.State }

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Key
}

// Endpoint is one end of a link.
type Endpoint struct {
	Node    Ref
	OffsetX float64
	OffsetY float64
}

// Link is a directed edge between two node instances in adjacent columns.
type Link struct {
	Ref    LinkRef
	ID     string
	Source Endpoint
	Target Endpoint
}
