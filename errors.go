package statetree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnconstrainedQuery rejects a recursive wildcard query with no
	// filters: such a query would match every node in the tree.
	ErrUnconstrainedQuery = errors.New("you must specify either a type name or at least one filter")

	// ErrMultipleMatches is returned by SelectSingle when more than one node
	// survives filtering.
	ErrMultipleMatches = errors.New("more than one item was returned for query")
)

// NotFoundError reports that a node could no longer be re-addressed by its
// path and identity: either the backend found nothing, or it found more than
// one match and the identity is no longer unique.
type NotFoundError struct {
	Class   string
	ID      int64
	Matches int
}

func (e *NotFoundError) Error() string {
	if e.Matches > 1 {
		return fmt.Sprintf("state for class with name %q and id %d is ambiguous: %d matches", e.Class, e.ID, e.Matches)
	}
	return fmt.Sprintf("state not found for class with name %q and id %d", e.Class, e.ID)
}

// AttributeError reports a property read for a name the live object does not
// have: the test's expectations and the application's schema disagree.
type AttributeError struct {
	Class     string
	Attribute string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("class %q has no attribute %q", e.Class, e.Attribute)
}
