// Package lineage annotates the neighbor projection with root and branch
// provenance.
//
// Roots are the nodes without incoming edges, taken in node order. Each
// root runs a breadth-first traversal over outgoing edges; a node reached
// from several roots is attributed to the first root processed. Nodes that
// no root reaches (members of a cycle with no feeding root) keep a null
// root instead of failing the conversion.
//
// Branch is a naming convention, not a structural property: see [Branch].
package lineage

import (
	"strings"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/neighbor"
	"github.com/matzehuels/nodegraph/pkg/ordered"
)

// BranchDelimiter separates the tokens of a node name.
const BranchDelimiter = "_"

// Metadata is the provenance attached to one node. Nil fields encode as null.
type Metadata struct {
	Root   *string `json:"root" yaml:"root"`
	Branch *string `json:"branch" yaml:"branch"`
}

// Entry is a neighbor entry plus its metadata.
type Entry struct {
	neighbor.Entry `yaml:",inline"`
	Metadata       Metadata `json:"metadata" yaml:"metadata"`
}

// Map is the annotated projection keyed by node name.
type Map struct {
	ordered.Map[Entry]
	roots     []string
	unreached []string
}

// Roots returns the root names in discovery order.
func (m *Map) Roots() []string { return m.roots }

// Unreached returns, in node order, the nodes no root reaches.
func (m *Map) Unreached() []string { return m.unreached }

// Annotate builds the annotated neighbor map of g.
func Annotate(g *graph.Graph) *Map {
	owner := Owners(g)

	m := &Map{}
	for _, r := range g.Roots() {
		m.roots = append(m.roots, r.Name)
	}
	for _, n := range g.Nodes() {
		e := Entry{
			Entry:    neighbor.EntryFor(g, n.Name),
			Metadata: Metadata{Branch: Branch(n.Name)},
		}
		if root, ok := owner[n.Name]; ok {
			e.Metadata.Root = &root
		} else {
			m.unreached = append(m.unreached, n.Name)
		}
		m.Set(n.Name, e)
	}
	return m
}

// Owners maps every node reachable from a root to the first root whose
// breadth-first traversal reached it. Roots map to themselves.
func Owners(g *graph.Graph) map[string]string {
	owner := make(map[string]string, g.NodeCount())
	for _, r := range g.Roots() {
		owner[r.Name] = r.Name
		queue := []string{r.Name}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.Successors(cur) {
				if _, seen := owner[next]; seen {
					continue
				}
				owner[next] = r.Name
				queue = append(queue, next)
			}
		}
	}
	return owner
}

// Branch derives a branch label from a node name by splitting on
// BranchDelimiter and returning the second token. It returns nil when the
// name has no second token or the token is empty.
//
// This is best effort: it assumes names like "root0_1_2" where the segment
// after the root token identifies the root's immediate subdivision.
//
//	Branch("root0")     // nil
//	Branch("root0_1")   // "1"
//	Branch("root0_1_2") // "1"
func Branch(name string) *string {
	parts := strings.Split(name, BranchDelimiter)
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}
	b := parts[1]
	return &b
}
