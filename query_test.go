package statetree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-statetree/statetree/wire"
)

func TestSelectManyRejectsUnconstrainedQueries(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	_, err := obj.SelectMany(context.Background(), Wildcard, nil)
	require.ErrorIs(t, err, ErrUnconstrainedQuery)

	_, err = obj.SelectMany(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrUnconstrainedQuery)
}

func TestSelectManyBuildsRecursiveQuery(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	b.responses["/App[id=1]//Button"] = []wire.Snapshot{
		snap("/App/Button", 2, nil),
		snap("/App/Dialog/Button", 9, nil),
	}

	nodes, err := obj.SelectMany(context.Background(), "Button", nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Equal(t, "/App[id=1]//Button", b.lastCall())
}

func TestSelectManyFoldsOneServerPredicate(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	b.responses[`/App[id=1]//Button[visible=True]`] = []wire.Snapshot{
		snap("/App/Button", 2, map[string]wire.Tuple{"visible": pt(true)}),
	}

	nodes, err := obj.SelectMany(context.Background(), "Button", Filters{"visible": true})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, `/App[id=1]//Button[visible=True]`, b.lastCall())
}

func TestSelectManyPicksFirstExpressibleFilterInKeyOrder(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	b.responses[`/App[id=1]//Button[enabled=True]`] = []wire.Snapshot{
		snap("/App/Button", 2, map[string]wire.Tuple{"enabled": pt(true), "visible": pt(true)}),
	}

	// "enabled" sorts before "visible"; exactly one predicate goes to the
	// server, the other is applied client-side only.
	nodes, err := obj.SelectMany(context.Background(), "Button",
		Filters{"visible": true, "enabled": true})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, `/App[id=1]//Button[enabled=True]`, b.lastCall())
}

func TestSelectManySkipsInexpressibleFilters(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	b.responses["/App[id=1]//Button"] = []wire.Snapshot{
		snap("/App/Button", 2, map[string]wire.Tuple{"opacity": pt(1)}),
	}

	// A float value cannot ride in the query grammar; the query goes out
	// bare and the filter is enforced on the client.
	nodes, err := obj.SelectMany(context.Background(), "Button", Filters{"opacity": 1.0})
	require.NoError(t, err)
	assert.Equal(t, "/App[id=1]//Button", b.lastCall())
	assert.Len(t, nodes, 1)
}

func TestSelectManyRefiltersClientSide(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	// The server ignores the predicate and returns both buttons; only the
	// visible one may survive.
	b.responses[`/App[id=1]//Button[visible=True]`] = []wire.Snapshot{
		snap("/App/Button", 2, map[string]wire.Tuple{"visible": pt(true)}),
		snap("/App/Button", 3, map[string]wire.Tuple{"visible": pt(false)}),
	}

	nodes, err := obj.SelectMany(context.Background(), "Button", Filters{"visible": true})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, int64(2), nodes[0].State().ID())
}

func TestSelectManyFiltersMissingAttribute(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	b.responses[`/App[id=1]//Label[text="hi"]`] = []wire.Snapshot{
		snap("/App/Label", 4, nil), // no text property at all
	}

	nodes, err := obj.SelectMany(context.Background(), "Label", Filters{"text": "hi"})
	require.NoError(t, err)
	assert.Len(t, nodes, 0)
}

func TestSelectSingle(t *testing.T) {
	b := newFakeBackend()
	obj := rootObject(t, b)

	t.Run("no match returns nil without error", func(t *testing.T) {
		node, err := obj.SelectSingle(context.Background(), "Dialog", nil)
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("one match", func(t *testing.T) {
		b.responses["/App[id=1]//Dialog"] = []wire.Snapshot{snap("/App/Dialog", 5, nil)}
		node, err := obj.SelectSingle(context.Background(), "Dialog", nil)
		require.NoError(t, err)
		require.NotNil(t, node)
		assert.Equal(t, int64(5), node.State().ID())
	})

	t.Run("many matches is an error", func(t *testing.T) {
		b.responses["/App[id=1]//Dialog"] = []wire.Snapshot{
			snap("/App/Dialog", 5, nil),
			snap("/App/Dialog", 6, nil),
		}
		_, err := obj.SelectSingle(context.Background(), "Dialog", nil)
		require.ErrorIs(t, err, ErrMultipleMatches)
	})
}

func TestServerFilterExpr(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value any
		want  string
		ok    bool
	}{
		{"bool true", "visible", true, "visible=True", true},
		{"bool false", "visible", false, "visible=False", true},
		{"int", "count", 42, "count=42", true},
		{"negative int64", "offset", int64(-7), "offset=-7", true},
		{"plain string", "title", "demo", `title="demo"`, true},
		{"string with spaces", "Name", "a b", `Name="a b"`, true},
		{"string with quote", "Name", `a"b`, `Name="a\"b"`, true},
		{"string with backslash", "Name", `a\b`, `Name="a\\b"`, true},
		{"string with newline", "Name", "a\nb", `Name="a\x0ab"`, true},
		{"string with non-ascii", "Name", "caf\xc3\xa9", `Name="caf\xc3\xa9"`, true},
		{"float is not expressible", "opacity", 0.5, "", false},
		{"slice is not expressible", "tags", []string{"a"}, "", false},
		{"key with dot", "a.b", 1, "", false},
		{"key with space", "a b", 1, "", false},
		{"empty key", "", 1, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := serverFilterExpr(tc.key, tc.value)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServerFilterClause(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		assert.Equal(t, "", serverFilterClause(nil))
	})

	t.Run("only inexpressible filters", func(t *testing.T) {
		assert.Equal(t, "", serverFilterClause(Filters{"opacity": 0.5}))
	})

	t.Run("first expressible in sorted order", func(t *testing.T) {
		clause := serverFilterClause(Filters{
			"aardvark": 0.5, // inexpressible, even though it sorts first
			"zebra":    true,
			"middle":   "m",
		})
		assert.Equal(t, `[middle="m"]`, clause)
	})
}
