package graph

import (
	"errors"
	"slices"

	"github.com/matzehuels/nodegraph/pkg/identity"
)

var (
	// ErrInvalidNodeName is returned by [Graph.AddNode] when the name is empty.
	ErrInvalidNodeName = errors.New("node name must not be empty")

	// ErrDuplicateNode is returned by [Graph.AddNode] when a node with the same
	// name already exists.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata stores free-form properties carried over from the session record
// (the editor's "custom" object). Metadata maps are never nil.
type Metadata map[string]any

// Node is a vertex of the graph.
type Node struct {
	Name string   // Public identity, unique within the graph
	ID   string   // Opaque editor id the name was resolved from
	Type string   // Editor node type, may be empty
	Meta Metadata // Custom properties (never nil)
}

// Edge is a directed connection from From's output port to To's input port.
type Edge struct {
	Index      int    // Position in the document's connection list
	From       string // Source node name
	To         string // Target node name
	SourcePort string // Output port on From
	TargetPort string // Input port on To
}

// IsSelfLoop reports whether the edge starts and ends on the same node.
func (e Edge) IsSelfLoop() bool { return e.From == e.To }

// Graph is a directed multigraph keyed by node name.
//
// The zero value is not usable; graphs are created by [Build] or [New].
type Graph struct {
	nodes    map[string]*Node
	order    []*Node
	edges    []Edge
	outgoing map[string][]int // name -> edge indices
	incoming map[string][]int // name -> edge indices
	resolver *identity.Resolver
}

// New creates an empty graph. Nodes and edges are added by [Build]; New is
// exported for callers that assemble graphs without a session document.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
	}
}

// AddNode appends a node. It returns ErrInvalidNodeName for an empty name
// and ErrDuplicateNode when the name is taken.
func (g *Graph) AddNode(n Node) error {
	if n.Name == "" {
		return ErrInvalidNodeName
	}
	if _, exists := g.nodes[n.Name]; exists {
		return ErrDuplicateNode
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.Name] = node
	g.order = append(g.order, node)
	return nil
}

// AddEdge appends an edge between two existing nodes. Parallel edges and
// self-loops are kept. The edge's Index is set to its insertion position.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	e.Index = len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.Index)
	g.incoming[e.To] = append(g.incoming[e.To], e.Index)
	return nil
}

// Resolver returns the id/name resolver the graph was built with, or nil
// for graphs assembled with [New].
func (g *Graph) Resolver() *identity.Resolver { return g.resolver }

// Nodes returns all nodes in insertion order. The returned slice is a copy;
// the nodes themselves are shared and must not be modified.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.order) }

// Names returns all node names in insertion order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	for i, n := range g.order {
		names[i] = n.Name
	}
	return names
}

// Node returns the node with the given name and true, or nil and false.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Has reports whether a node with the given name exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Outgoing returns the edges leaving name in insertion order.
// Returns nil if the node has none or doesn't exist.
func (g *Graph) Outgoing(name string) []Edge { return g.collect(g.outgoing[name]) }

// Incoming returns the edges entering name in insertion order.
// Returns nil if the node has none or doesn't exist.
func (g *Graph) Incoming(name string) []Edge { return g.collect(g.incoming[name]) }

func (g *Graph) collect(idx []int) []Edge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// Successors returns the target name of every outgoing edge, in edge order.
// A node connected twice appears twice.
func (g *Graph) Successors(name string) []string {
	idx := g.outgoing[name]
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j].To
	}
	return out
}

// Predecessors returns the source name of every incoming edge, in edge order.
func (g *Graph) Predecessors(name string) []string {
	idx := g.incoming[name]
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j].From
	}
	return out
}

// OutDegree returns the number of outgoing edges. Returns 0 for unknown nodes.
func (g *Graph) OutDegree(name string) int { return len(g.outgoing[name]) }

// InDegree returns the number of incoming edges. Returns 0 for unknown nodes.
func (g *Graph) InDegree(name string) int { return len(g.incoming[name]) }

// Roots returns nodes with no incoming edges, in insertion order.
// A node whose only incoming edge is a self-loop is not a root.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.order {
		if len(g.incoming[n.Name]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, n := range g.order {
		if len(g.outgoing[n.Name]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// FindCycle returns the first directed cycle found by a depth-first search
// that visits nodes and edges in insertion order. The path is closed: its
// first and last elements are the same node, e.g. [A B A]. A self-loop on A
// yields [A A]. Returns nil for an acyclic graph.
func (g *Graph) FindCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.order))
	var stack []string
	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)
		for _, next := range g.Successors(name) {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				start := slices.Index(stack, next)
				cycle = append(slices.Clone(stack[start:]), next)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	for _, n := range g.order {
		if color[n.Name] == white && dfs(n.Name) {
			return cycle
		}
	}
	return nil
}
