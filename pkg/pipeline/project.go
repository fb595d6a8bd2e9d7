package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/groups"
	"github.com/matzehuels/nodegraph/pkg/hierarchy"
	"github.com/matzehuels/nodegraph/pkg/lineage"
	"github.com/matzehuels/nodegraph/pkg/neighbor"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/session"
)

// Project derives the view selected by opts.Projection. The returned value
// is ready for encoding: a *hierarchy.Node or []*hierarchy.Node, a
// *neighbor.Map, a *lineage.Map, a *groups.Map, or g itself for the graph
// projection.
func Project(ctx context.Context, doc *session.Document, g *graph.Graph, opts Options) (any, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Conversion()
	hooks.OnConvertStart(ctx, opts.Projection)
	start := time.Now()

	v, err := project(doc, g, opts)

	hooks.OnConvertComplete(ctx, opts.Projection, time.Since(start), err)
	return v, err
}

func project(doc *session.Document, g *graph.Graph, opts Options) (any, error) {
	switch opts.Projection {
	case ProjectionHierarchy:
		hopts := hierarchy.Options{MaxNodes: opts.MaxNodes}
		if opts.AllRoots {
			return hierarchy.Forest(g, hopts)
		}
		return hierarchy.Project(g, opts.Root, hopts)
	case ProjectionNeighbors:
		return neighbor.Project(g), nil
	case ProjectionLineage:
		return lineage.Annotate(g), nil
	case ProjectionGroups:
		return groups.Project(doc, g)
	case ProjectionGraph:
		return g, nil
	}
	return nil, ValidateProjection(opts.Projection)
}
