// Package wire defines the contract between the typed client model and the
// transport that actually talks to the application under test.
//
// The transport is deliberately abstract: anything that can answer a
// synchronous "give me the state at this query" call can back the model.
// There is no push channel, no subscription and no method invocation beyond
// state retrieval.
package wire

import "context"

// Tuple is a raw property value as it appears on the wire: a type tag
// followed by the value's components.
//
//	[type_id, payload...]
//
// Known type tags are defined in the types package.
type Tuple []any

// Snapshot is one node of remote state as returned by a backend: the node's
// query path plus its full property set, every property still in wire form.
type Snapshot struct {
	Path       string
	Properties map[string]Tuple
}

// Backend answers state queries against the running application.
//
// The query grammar used by this client is a small path-expression subset:
//
//	/                      absolute root
//	path[id=N]             exact-identity selector
//	path/*                 direct children
//	path//Type[attr=val]   recursive descendant, at most one predicate
//
// GetState returns an empty slice, not an error, when nothing matches. A
// malformed expression is a transport error.
type Backend interface {
	GetState(ctx context.Context, query string) ([]Snapshot, error)
}
