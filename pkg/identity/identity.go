// Package identity maps the editor's opaque node ids to node names and back.
//
// Every component downstream of the record model addresses nodes by name.
// The two lookup tables are built once, up front, by [New]; duplicate names
// are rejected there so that later lookups can never be ambiguous.
package identity

import (
	"fmt"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/session"
)

// DuplicateNameError reports two node ids that share one name.
type DuplicateNameError struct {
	Name     string
	FirstID  string
	SecondID string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate node name %q (ids %s and %s)", e.Name, e.FirstID, e.SecondID)
}

// Code returns DUPLICATE_NAME.
func (e *DuplicateNameError) Code() nerrors.Code { return nerrors.ErrCodeDuplicateName }

// UnknownIDError reports a node id that is absent from the node table.
// Connection is the index of the referencing connection and Endpoint is
// "out" or "in"; both are unset when the lookup did not come from a
// connection.
type UnknownIDError struct {
	ID         string
	Connection int
	Endpoint   string
}

func (e *UnknownIDError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("connection %d: %s endpoint references unknown node id %q", e.Connection, e.Endpoint, e.ID)
	}
	return fmt.Sprintf("unknown node id %q", e.ID)
}

// Code returns UNKNOWN_ID.
func (e *UnknownIDError) Code() nerrors.Code { return nerrors.ErrCodeUnknownID }

// Resolver is a bijection between node ids and node names.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	names  map[string]string // id -> name
	ids    map[string]string // name -> id
	order  []string          // names in table order
	idList []string          // ids in table order
}

// New builds a resolver from a node table. It fails with
// *DuplicateNameError when two ids map to the same name.
func New(table session.NodeTable) (*Resolver, error) {
	r := &Resolver{
		names:  make(map[string]string, len(table)),
		ids:    make(map[string]string, len(table)),
		order:  make([]string, 0, len(table)),
		idList: make([]string, 0, len(table)),
	}
	for _, e := range table {
		name := e.Record.Name
		if prev, dup := r.ids[name]; dup {
			return nil, &DuplicateNameError{Name: name, FirstID: prev, SecondID: e.ID}
		}
		r.names[e.ID] = name
		r.ids[name] = e.ID
		r.order = append(r.order, name)
		r.idList = append(r.idList, e.ID)
	}
	return r, nil
}

// Name returns the name for id, or *UnknownIDError.
func (r *Resolver) Name(id string) (string, error) {
	name, ok := r.names[id]
	if !ok {
		return "", &UnknownIDError{ID: id}
	}
	return name, nil
}

// ID returns the id for name and whether it exists.
func (r *Resolver) ID(name string) (string, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Names returns all names in table order. The slice must not be modified.
func (r *Resolver) Names() []string { return r.order }

// IDs returns all ids in table order. The slice must not be modified.
func (r *Resolver) IDs() []string { return r.idList }

// Len returns the number of nodes.
func (r *Resolver) Len() int { return len(r.order) }

// Endpoint resolves one end of connection index i. side is "out" or "in"
// and is recorded on the returned *UnknownIDError.
func (r *Resolver) Endpoint(i int, side string, ep session.Endpoint) (string, error) {
	name, ok := r.names[ep.NodeID]
	if !ok {
		return "", &UnknownIDError{ID: ep.NodeID, Connection: i, Endpoint: side}
	}
	return name, nil
}
