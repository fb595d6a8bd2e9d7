package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/session"
)

// Parse decodes a session document and builds its graph. source names the
// input in hook events and errors; it may be empty.
func Parse(ctx context.Context, data []byte, source string) (*session.Document, *graph.Graph, error) {
	hooks := observability.Conversion()
	hooks.OnParseStart(ctx, source)
	start := time.Now()

	doc, g, err := parse(data)

	var stats observability.Stats
	if err == nil {
		stats = observability.Stats{Nodes: g.NodeCount(), Edges: g.EdgeCount(), Roots: len(g.Roots())}
	}
	hooks.OnParseComplete(ctx, source, stats, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return doc, g, nil
}

func parse(data []byte) (*session.Document, *graph.Graph, error) {
	doc, err := session.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	g, err := graph.Build(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, g, nil
}
