// Package neighbor lists, for every node, its direct incoming and outgoing
// connections with port labels.
//
// The projection looks only at adjacency: it needs no root, never recurses,
// and is well defined for cyclic and disconnected graphs. Every edge appears
// exactly once in its source's outputs and exactly once in its target's
// inputs. Entries follow node insertion order; the records inside an entry
// follow edge insertion order.
package neighbor

import (
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/ordered"
)

// Input is an edge seen from its target.
type Input struct {
	ConnectedFrom string `json:"connected_from" yaml:"connected_from"`
	OutputPort    string `json:"output_port" yaml:"output_port"`
	InputPort     string `json:"input_port" yaml:"input_port"`
}

// Output is an edge seen from its source.
type Output struct {
	ConnectedTo string `json:"connected_to" yaml:"connected_to"`
	OutputPort  string `json:"output_port" yaml:"output_port"`
	InputPort   string `json:"input_port" yaml:"input_port"`
}

// Entry holds one node's connections.
type Entry struct {
	Name    string   `json:"name" yaml:"name"`
	Inputs  []Input  `json:"inputs" yaml:"inputs"`
	Outputs []Output `json:"outputs" yaml:"outputs"`
}

// Map is the neighbor projection keyed by node name.
type Map struct {
	ordered.Map[Entry]
}

// Entries returns the entries in node order.
func (m *Map) Entries() []Entry { return m.Values() }

// Project builds the neighbor map of g in O(V+E).
func Project(g *graph.Graph) *Map {
	m := &Map{}
	for _, n := range g.Nodes() {
		m.Set(n.Name, EntryFor(g, n.Name))
	}
	return m
}

// EntryFor builds the entry for a single node. Inputs and Outputs are
// never nil.
func EntryFor(g *graph.Graph, name string) Entry {
	in := g.Incoming(name)
	out := g.Outgoing(name)
	e := Entry{
		Name:    name,
		Inputs:  make([]Input, len(in)),
		Outputs: make([]Output, len(out)),
	}
	for i, edge := range in {
		e.Inputs[i] = Input{ConnectedFrom: edge.From, OutputPort: edge.SourcePort, InputPort: edge.TargetPort}
	}
	for i, edge := range out {
		e.Outputs[i] = Output{ConnectedTo: edge.To, OutputPort: edge.SourcePort, InputPort: edge.TargetPort}
	}
	return e
}
