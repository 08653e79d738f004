package statetree

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/go-statetree/statetree/config"
	"github.com/go-statetree/statetree/wire"
)

// fakeBackend answers state queries from a scripted map and records every
// query it was asked, so tests can assert both results and traffic.
type fakeBackend struct {
	responses map[string][]wire.Snapshot
	errs      map[string]error
	calls     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: make(map[string][]wire.Snapshot),
		errs:      make(map[string]error),
	}
}

func (f *fakeBackend) GetState(_ context.Context, query string) ([]wire.Snapshot, error) {
	f.calls = append(f.calls, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.responses[query], nil
}

func (f *fakeBackend) countCalls(query string) int {
	n := 0
	for _, q := range f.calls {
		if q == query {
			n++
		}
	}
	return n
}

func (f *fakeBackend) lastCall() string {
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

// pt wraps a primitive in a plain wire tuple.
func pt(v any) wire.Tuple { return wire.Tuple{0, v} }

// snap builds a snapshot with an id property plus any extra properties.
func snap(path string, id int64, props map[string]wire.Tuple) wire.Snapshot {
	all := map[string]wire.Tuple{"id": pt(id)}
	for k, v := range props {
		all[k] = v
	}
	return wire.Snapshot{Path: path, Properties: all}
}

func testClient(t *testing.T, b wire.Backend) *Client {
	t.Helper()
	c, err := NewClient(b, NewRegistry(zap.NewNop()), config.ClientConfig{
		WaitTimeout:  time.Second,
		PollInterval: time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

// rootObject wires a backend with an application root at /App (id 1) and
// returns the decoded root object.
func rootObject(t *testing.T, b *fakeBackend) *Object {
	t.Helper()
	root := snap("/App", 1, map[string]wire.Tuple{"title": pt("demo")})
	b.responses["/"] = []wire.Snapshot{root}
	b.responses["/App[id=1]"] = []wire.Snapshot{root}

	node, err := testClient(t, b).Root(context.Background())
	require.NoError(t, err)
	return node.State()
}
