package io

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/nodegraph/pkg/graph"
)

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Detailed adds the node id, type and custom properties to node labels.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT text. Nodes and edges are written
// in insertion order; every edge is labelled "source_port -> target_port",
// so parallel edges stay distinguishable.
func ToDOT(g *graph.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.Name, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		label := e.SourcePort + " -> " + e.TargetPort
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	parts := []string{"id: " + n.ID}
	if n.Type != "" {
		parts = append(parts, "type: "+n.Type)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}
