// Package groups projects backdrop nodes onto the nodes they enclose.
//
// The editor saves a backdrop with the ids of its enclosed nodes under
// custom.contained_node_ids. The projection resolves those ids to names so
// groups can be consumed alongside the other name-keyed projections.
package groups

import (
	"fmt"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/ordered"
	"github.com/matzehuels/nodegraph/pkg/session"
)

// Group is one backdrop and its members, in the order the editor listed them.
type Group struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// Map is the group projection keyed by backdrop name.
type Map struct {
	ordered.Map[Group]
}

// Project returns every node of doc that carries contained_node_ids, in
// node order. g must have been built from doc. An id that is not in the
// node table fails with *identity.UnknownIDError.
func Project(doc *session.Document, g *graph.Graph) (*Map, error) {
	r := g.Resolver()
	if r == nil {
		return nil, nerrors.New(nerrors.ErrCodeInvalidInput, "graph was not built from a session document")
	}

	m := &Map{}
	for _, e := range doc.Nodes {
		ids, ok := e.Record.ContainedNodeIDs()
		if !ok {
			continue
		}
		grp := Group{Name: e.Record.Name, Members: make([]string, 0, len(ids))}
		for _, id := range ids {
			name, err := r.Name(id)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", e.Record.Name, err)
			}
			grp.Members = append(grp.Members, name)
		}
		m.Set(grp.Name, grp)
	}
	return m, nil
}

// Of returns the names of the groups that contain member, in group order.
func (m *Map) Of(member string) []string {
	var out []string
	for _, grp := range m.Values() {
		for _, name := range grp.Members {
			if name == member {
				out = append(out, grp.Name)
				break
			}
		}
	}
	return out
}
