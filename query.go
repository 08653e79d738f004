package statetree

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Filters restricts a query or child lookup to nodes whose named properties
// equal the given values.
type Filters map[string]any

// Wildcard matches any type name in SelectSingle and SelectMany.
const Wildcard = "*"

// SelectSingle fetches the one descendant of this node with the given type
// name that passes every filter, searching recursively. It returns nil (and
// no error) when nothing matches, and ErrMultipleMatches when more than one
// node does; use SelectMany when several matches are expected.
func (o *Object) SelectSingle(ctx context.Context, typeName string, filters Filters) (Node, error) {
	nodes, err := o.SelectMany(ctx, typeName, filters)
	if err != nil {
		return nil, err
	}
	if len(nodes) > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrMultipleMatches, len(nodes))
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// SelectMany fetches every descendant of this node with the given type name
// that passes every filter, searching recursively and preserving the order
// the backend returned. At least one of a non-wildcard type name or a filter
// must be supplied, otherwise the query is rejected with
// ErrUnconstrainedQuery.
//
// When a filter is simple enough to be expressed in the query grammar, one
// such filter (the first in sorted key order) is folded into the path so the
// server can narrow the result set. Every filter, including that one, is
// then re-applied client-side after decoding: a server that ignores or only
// partially honors the embedded predicate cannot produce wrong results, only
// larger ones.
func (o *Object) SelectMany(ctx context.Context, typeName string, filters Filters) ([]Node, error) {
	if typeName == "" {
		typeName = Wildcard
	}
	if typeName == Wildcard && len(filters) == 0 {
		return nil, ErrUnconstrainedQuery
	}

	query := o.selfQuery() + "//" + typeName + serverFilterClause(filters)
	o.logger.Debug("selecting descendants",
		zap.String("type", typeName),
		zap.String("query", query),
		zap.Int("filters", len(filters)))

	snaps, err := o.backend.GetState(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}

	nodes := make([]Node, 0, len(snaps))
	for _, snap := range snaps {
		node, err := makeNode(o.backend, o.registry, o.logger, o.pollInterval, snap)
		if err != nil {
			return nil, err
		}
		if passesFilters(node.State(), filters) {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// passesFilters reports whether every filter matches the object's current
// snapshot. Reads happen inside a WithoutRefresh scope so that N predicates
// cost zero backend round trips.
func passesFilters(o *Object, filters Filters) bool {
	ok := true
	_ = o.WithoutRefresh(func() error {
		for attr, want := range filters {
			v, found := o.properties[attr]
			if !found || !v.Equal(want) {
				ok = false
				return nil
			}
		}
		return nil
	})
	return ok
}

// serverFilterClause renders at most one bracketed predicate for the first
// server-expressible filter, in sorted key order. Folding a single predicate
// rather than the full conjunction is a known simplification; client-side
// re-filtering covers the rest.
func serverFilterClause(filters Filters) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if expr, ok := serverFilterExpr(k, filters[k]); ok {
			return "[" + expr + "]"
		}
	}
	return ""
}

// serverFilterExpr renders one (key, value) pair in the wire query grammar.
// Booleans and signed integers are unquoted; strings are double-quoted with
// structural characters backslash-escaped and non-printable bytes rendered
// as hex escapes. Floats, collections and arbitrary objects are never
// server-expressible, nor is a key that is not a bare identifier.
func serverFilterExpr(key string, value any) (string, bool) {
	if !isBareIdentifier(key) {
		return "", false
	}
	switch v := value.(type) {
	case bool:
		if v {
			return key + "=True", true
		}
		return key + "=False", true
	case int:
		return key + "=" + strconv.FormatInt(int64(v), 10), true
	case int8:
		return key + "=" + strconv.FormatInt(int64(v), 10), true
	case int16:
		return key + "=" + strconv.FormatInt(int64(v), 10), true
	case int32:
		return key + "=" + strconv.FormatInt(int64(v), 10), true
	case int64:
		return key + "=" + strconv.FormatInt(v, 10), true
	case string:
		return key + "=" + quoteFilterValue(v), true
	default:
		return "", false
	}
}

// isBareIdentifier accepts keys made of letters, digits and underscores
// only. Anything else falls back to client-side filtering rather than being
// interpolated into the query string.
func isBareIdentifier(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// quoteFilterValue renders a string filter value in the wire query grammar:
// double-quoted, with quotes and backslashes escaped and every byte outside
// printable ASCII written as a \xHH escape.
func quoteFilterValue(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
