// Package io encodes projection results and writes them to disk.
//
// # Formats
//
// Three output formats are supported:
//
//   - json: two-space indented, with a trailing newline
//   - yaml: block style, keys in the same order as the JSON output
//   - dot: Graphviz DOT text of the directed graph itself
//
// JSON and YAML accept any projection value. Name-keyed projections keep
// the session document's node order because they implement MarshalJSON
// and MarshalYAML on an ordered map. DOT is only defined for a
// [graph.Graph]; [Encode] rejects other values with an UNSUPPORTED error.
//
// # Files
//
// [ExportFile] writes to a temporary file in the destination directory and
// renames it into place, so a failed conversion never leaves a truncated
// or partial document behind:
//
//	data, err := io.Encode(result, io.FormatJSON)
//	if err != nil {
//	    return err
//	}
//	return io.ExportFile(data, "out.json")
//
// # Concurrency
//
// All functions are safe for concurrent use. Encoders only read the values
// they are given.
//
// [graph.Graph]: github.com/matzehuels/nodegraph/pkg/graph.Graph
package io
