// Package graph provides the directed multigraph that every projection reads.
//
// # Overview
//
// A [Graph] is built once from a session document by [Build] and is read-only
// afterwards. Nodes are keyed by name (ids have already been resolved by
// package identity). Each [Edge] connects a source node's output port to a
// target node's input port and carries both port names.
//
// The graph is a multigraph: two connections between the same pair of nodes
// through different ports are two distinct edges. Self-loops are allowed.
// Cycles are allowed too; [Graph.FindCycle] reports the first one found.
//
// # Ordering
//
// Ordering is part of the observable contract of every projection built on
// this package:
//
//   - [Graph.Nodes] returns nodes in document order
//   - [Graph.Edges] returns edges in connection order
//   - [Graph.Outgoing] and [Graph.Incoming] return edges in connection order
//   - [Graph.Roots] returns in-degree zero nodes in document order
//
// # Basic Usage
//
//	doc, err := session.ImportJSON("demo.json")
//	if err != nil {
//	    return err
//	}
//	g, err := graph.Build(doc)
//	if err != nil {
//	    return err // *identity.UnknownIDError, *identity.DuplicateNameError, ...
//	}
//	for _, e := range g.Outgoing("root0") {
//	    fmt.Println(e.To, e.SourcePort, e.TargetPort)
//	}
//
// # Concurrency
//
// A built Graph is never mutated, so concurrent readers need no locking.
package graph
