// Package sessiontest builds session documents for tests.
package sessiontest

import (
	"fmt"

	"github.com/matzehuels/nodegraph/pkg/session"
)

// Builder assembles a session document node by node.
type Builder struct {
	doc session.Document
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{doc: session.Document{Nodes: session.NodeTable{}}}
}

// Node adds a node record.
func (b *Builder) Node(id, name string) *Builder {
	b.doc.Nodes = append(b.doc.Nodes, session.NodeEntry{ID: id, Record: session.NodeRecord{Name: name}})
	return b
}

// Group adds a backdrop node that contains the given ids.
func (b *Builder) Group(id, name string, members ...string) *Builder {
	ids := make([]any, len(members))
	for i, m := range members {
		ids[i] = m
	}
	rec := session.NodeRecord{Name: name, Custom: map[string]any{session.ContainedNodesKey: ids}}
	b.doc.Nodes = append(b.doc.Nodes, session.NodeEntry{ID: id, Record: rec})
	return b
}

// Connect adds a connection from (fromID, outPort) to (toID, inPort).
func (b *Builder) Connect(fromID, outPort, toID, inPort string) *Builder {
	b.doc.Connections = append(b.doc.Connections, session.Connection{
		Out: session.Endpoint{NodeID: fromID, Port: outPort},
		In:  session.Endpoint{NodeID: toID, Port: inPort},
	})
	return b
}

// Link connects fromID's output0 to toID's input0.
func (b *Builder) Link(fromID, toID string) *Builder {
	return b.Connect(fromID, "output0", toID, "input0")
}

// Doc returns the assembled document.
func (b *Builder) Doc() *session.Document {
	d := b.doc
	return &d
}

// Chain returns a document whose node names double as ids, linked in
// sequence by output0 -> input0: Chain("a", "b", "c") yields a -> b -> c.
func Chain(names ...string) *session.Document {
	b := New()
	for _, n := range names {
		b.Node(n, n)
	}
	for i := 1; i < len(names); i++ {
		b.Link(names[i-1], names[i])
	}
	return b.Doc()
}

// Arbitrary returns a document with n nodes named n0..n{n-1} (ids id0..)
// and one connection per pair of values in ends, each value taken modulo n.
// Connection k uses ports "out<k>" and "in<k>". It feeds property tests
// with random topologies, cycles and parallel edges included.
func Arbitrary(n int, ends []int) *session.Document {
	b := New()
	for i := 0; i < n; i++ {
		b.Node(fmt.Sprintf("id%d", i), fmt.Sprintf("n%d", i))
	}
	if n == 0 {
		return b.Doc()
	}
	for k := 0; k+1 < len(ends); k += 2 {
		from, to := mod(ends[k], n), mod(ends[k+1], n)
		b.Connect(fmt.Sprintf("id%d", from), fmt.Sprintf("out%d", k/2),
			fmt.Sprintf("id%d", to), fmt.Sprintf("in%d", k/2))
	}
	return b.Doc()
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
