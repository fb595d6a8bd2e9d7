// Package session models the serialized node-editor session document.
//
// A session document is what the editor writes when a session is saved. Only
// two top-level fields matter here:
//
//	{
//	  "nodes": {
//	    "0x1a": {"name": "root0", "type_": "custom.ports.CustomPortNode"},
//	    "0x1b": {"name": "root0_0"}
//	  },
//	  "connections": [
//	    {"out": ["0x1a", "output0"], "in": ["0x1b", "input0"]}
//	  ]
//	}
//
// Node ids are opaque strings assigned by the editor. The order of the
// "nodes" object is preserved in [NodeTable] because every projection
// derives its output order from it. Other top-level keys (graph settings,
// layout) are ignored.
//
// This package only decodes and validates the document. Resolving ids to
// names happens in package identity.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContainedNodesKey is the custom property under which backdrop nodes list
// the ids of the nodes they enclose.
const ContainedNodesKey = "contained_node_ids"

// Document is a decoded session document.
type Document struct {
	Nodes       NodeTable    `json:"nodes" validate:"required,dive"`
	Connections []Connection `json:"connections"`
}

// NodeRecord is the serialized form of a single node.
type NodeRecord struct {
	Name   string         `json:"name" validate:"required"`
	Type   string         `json:"type_,omitempty"`
	Custom map[string]any `json:"custom,omitempty"`
}

// ContainedNodeIDs returns the ids listed under custom.contained_node_ids.
// The boolean is false when the node carries no such list. Non-string
// entries are skipped.
func (r NodeRecord) ContainedNodeIDs() ([]string, bool) {
	raw, ok := r.Custom[ContainedNodesKey]
	if !ok {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, true
}

// NodeEntry pairs a node id with its record.
type NodeEntry struct {
	ID     string
	Record NodeRecord
}

// NodeTable is the "nodes" object in document order.
type NodeTable []NodeEntry

// UnmarshalJSON decodes the nodes object while keeping key order.
// Duplicate keys are rejected.
func (t *NodeTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("nodes: expected object, got %v", tok)
	}

	out := NodeTable{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := tok.(string)
		if _, dup := seen[id]; dup {
			return fmt.Errorf("nodes: %w: %q", ErrDuplicateKey, id)
		}
		seen[id] = struct{}{}

		var rec NodeRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
		out = append(out, NodeEntry{ID: id, Record: rec})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

// MarshalJSON encodes the table as an object in table order.
func (t NodeTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Record)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Connection is a directed link from an output port to an input port.
type Connection struct {
	Out Endpoint `json:"out"`
	In  Endpoint `json:"in"`
}

// UnmarshalJSON decodes a connection and rejects records that lack either
// endpoint.
func (c *Connection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Out *Endpoint `json:"out"`
		In  *Endpoint `json:"in"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Out == nil || raw.In == nil {
		return ErrMissingEndpoint
	}
	c.Out, c.In = *raw.Out, *raw.In
	return nil
}

// Endpoint is one end of a connection, serialized as [node_id, port_name].
type Endpoint struct {
	NodeID string
	Port   string
}

// UnmarshalJSON decodes a two-element [id, port] array.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("endpoint: %w: got %d elements", ErrEndpointArity, len(pair))
	}
	e.NodeID, e.Port = pair[0], pair[1]
	return nil
}

// MarshalJSON encodes the endpoint as [id, port].
func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.NodeID, e.Port})
}

// String returns "id:port".
func (e Endpoint) String() string { return e.NodeID + ":" + e.Port }
