// Package hierarchy projects a directed graph onto a rooted tree.
//
// Starting at a root, each node's outgoing edges are followed in edge order
// and every target becomes a child. A node reachable along several paths is
// expanded once per path, so the result is a tree even when the graph is a
// DAG with shared subtrees. A node that reappears on its own ancestor chain
// aborts the projection with [*CycleDetectedError].
package hierarchy

import (
	"fmt"
	"slices"
	"strings"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/graph"
)

// DefaultMaxNodes bounds the size of a projected tree when Options.MaxNodes
// is zero.
const DefaultMaxNodes = 100_000

// ErrNoRoot is returned when no root was named and the graph has no node
// without incoming edges.
var ErrNoRoot error = nerrors.New(nerrors.ErrCodeNoRoot, "graph has no root node")

// Node is one vertex of the projected tree.
type Node struct {
	Name    string   `json:"name" yaml:"name"`
	Inputs  []string `json:"inputs" yaml:"inputs"`
	Outputs []string `json:"outputs" yaml:"outputs"`
	Kids    []*Node  `json:"kids" yaml:"kids"`
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	total := 1
	for _, k := range n.Kids {
		total += k.Size()
	}
	return total
}

// Options configures a projection.
type Options struct {
	// MaxNodes caps the number of tree nodes. Zero means DefaultMaxNodes.
	MaxNodes int
}

func (o Options) limit() int {
	if o.MaxNodes <= 0 {
		return DefaultMaxNodes
	}
	return o.MaxNodes
}

// RootNotFoundError reports a requested root that is not in the graph.
type RootNotFoundError struct {
	Root string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("root %q not found in graph", e.Root)
}

// Code returns ROOT_NOT_FOUND.
func (e *RootNotFoundError) Code() nerrors.Code { return nerrors.ErrCodeRootNotFound }

// CycleDetectedError reports a node that reappeared on its own expansion
// path. Path starts at the first occurrence and ends at the repeat.
type CycleDetectedError struct {
	Path []string
}

func (e *CycleDetectedError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

// Code returns CYCLE_DETECTED.
func (e *CycleDetectedError) Code() nerrors.Code { return nerrors.ErrCodeCycleDetected }

// ExpansionLimitError reports a tree that would exceed Options.MaxNodes.
type ExpansionLimitError struct {
	Root  string
	Limit int
}

func (e *ExpansionLimitError) Error() string {
	return fmt.Sprintf("hierarchy from %q exceeds %d nodes", e.Root, e.Limit)
}

// Code returns EXPANSION_LIMIT.
func (e *ExpansionLimitError) Code() nerrors.Code { return nerrors.ErrCodeExpansionLimit }

// Project expands the tree rooted at root. An empty root selects the first
// node without incoming edges.
func Project(g *graph.Graph, root string, opts Options) (*Node, error) {
	if root == "" {
		roots := g.Roots()
		if len(roots) == 0 {
			return nil, ErrNoRoot
		}
		root = roots[0].Name
	}
	if !g.Has(root) {
		return nil, &RootNotFoundError{Root: root}
	}

	p := projector{g: g, root: root, limit: opts.limit(), onPath: make(map[string]bool)}
	return p.expand(root)
}

// Forest projects one tree per root, in root order.
func Forest(g *graph.Graph, opts Options) ([]*Node, error) {
	roots := g.Roots()
	if len(roots) == 0 {
		return nil, ErrNoRoot
	}
	trees := make([]*Node, 0, len(roots))
	for _, r := range roots {
		t, err := Project(g, r.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("root %s: %w", r.Name, err)
		}
		trees = append(trees, t)
	}
	return trees, nil
}

type projector struct {
	g      *graph.Graph
	root   string
	limit  int
	count  int
	path   []string
	onPath map[string]bool
}

func (p *projector) expand(name string) (*Node, error) {
	if p.onPath[name] {
		start := slices.Index(p.path, name)
		cycle := append(slices.Clone(p.path[start:]), name)
		return nil, &CycleDetectedError{Path: cycle}
	}
	p.count++
	if p.count > p.limit {
		return nil, &ExpansionLimitError{Root: p.root, Limit: p.limit}
	}

	p.onPath[name] = true
	p.path = append(p.path, name)
	defer func() {
		p.path = p.path[:len(p.path)-1]
		delete(p.onPath, name)
	}()

	n := &Node{
		Name:    name,
		Inputs:  nonNil(p.g.Predecessors(name)),
		Outputs: nonNil(p.g.Successors(name)),
	}
	n.Kids = make([]*Node, 0, len(n.Outputs))
	for _, next := range n.Outputs {
		kid, err := p.expand(next)
		if err != nil {
			return nil, err
		}
		n.Kids = append(n.Kids, kid)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
