// Package ordered provides a string-keyed map that remembers insertion
// order and encodes as a JSON or YAML object with keys in that order.
//
// The projections key their output by node name, and their output order is
// part of the contract: it follows the session document's node order, not
// the sorted order encoding/json uses for Go maps.
package ordered

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered map from string keys to V.
// The zero value is an empty map ready to use.
type Map[V any] struct {
	keys []string
	vals map[string]V
}

// Set stores v under key. A new key is appended to the key order; an
// existing key keeps its position.
func (m *Map[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value for key and whether it exists.
func (m Map[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (m Map[V]) Keys() []string { return m.keys }

// Values returns the values in key order.
func (m Map[V]) Values() []V {
	out := make([]V, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.vals[k]
	}
	return out
}

// Len returns the number of keys.
func (m Map[V]) Len() int { return len(m.keys) }

// MarshalJSON writes the map as a JSON object in key order.
func (m Map[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.vals[k])
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

// MarshalYAML returns a mapping node with keys in insertion order.
func (m Map[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		var val yaml.Node
		if err := val.Encode(m.vals[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return node, nil
}
