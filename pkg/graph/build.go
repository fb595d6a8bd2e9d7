package graph

import (
	"fmt"
	"maps"

	"github.com/matzehuels/nodegraph/pkg/identity"
	"github.com/matzehuels/nodegraph/pkg/session"
)

// Build constructs the directed graph for a session document.
//
// The document is validated, the id/name resolver is built, every node is
// added in document order, and every connection becomes one edge in
// connection order. Build fails with:
//   - an INVALID_DOCUMENT error if the document does not validate
//   - *identity.DuplicateNameError if two ids share a name
//   - *identity.UnknownIDError if a connection references a missing id
//
// No partial graph is returned on error.
func Build(doc *session.Document) (*Graph, error) {
	if err := session.Validate(doc); err != nil {
		return nil, err
	}

	r, err := identity.New(doc.Nodes)
	if err != nil {
		return nil, err
	}

	g := New()
	g.resolver = r
	for _, e := range doc.Nodes {
		n := Node{
			Name: e.Record.Name,
			ID:   e.ID,
			Type: e.Record.Type,
			Meta: maps.Clone(e.Record.Custom),
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", e.ID, err)
		}
	}

	for i, c := range doc.Connections {
		from, err := r.Endpoint(i, "out", c.Out)
		if err != nil {
			return nil, err
		}
		to, err := r.Endpoint(i, "in", c.In)
		if err != nil {
			return nil, err
		}
		e := Edge{From: from, To: to, SourcePort: c.Out.Port, TargetPort: c.In.Port}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", from, to, err)
		}
	}

	return g, nil
}
