package statetree

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-statetree/statetree/config"
	"github.com/go-statetree/statetree/wire"
)

// RootPath is the query expression addressing the absolute root of the
// remote tree.
const RootPath = "/"

// Client roots a typed object model on one backend connection. It holds a
// non-owning reference to the backend handle (ownership stays with whoever
// performed the connection search, and the handle may be shared read-only by
// several clients) and a reference to the proxy class registry.
type Client struct {
	backend  wire.Backend
	registry *Registry
	logger   *zap.Logger

	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewClient creates a client over an established backend connection. A nil
// registry gets a fresh private one; a nil logger is replaced with a no-op
// logger.
func NewClient(backend wire.Backend, registry *Registry, cfg config.ClientConfig, logger *zap.Logger) (*Client, error) {
	if backend == nil {
		return nil, errors.New("backend must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("statetree")
	if registry == nil {
		registry = NewRegistry(logger)
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	return &Client{
		backend:      backend,
		registry:     registry,
		logger:       logger,
		pollInterval: poll,
		waitTimeout:  cfg.WaitTimeout,
	}, nil
}

// Backend returns the underlying connection handle.
func (c *Client) Backend() wire.Backend { return c.backend }

// Registry returns the proxy class registry this client resolves types
// against.
func (c *Client) Registry() *Registry { return c.registry }

// WaitTimeout returns the configured default budget for wait-for-value
// polling.
func (c *Client) WaitTimeout() time.Duration { return c.waitTimeout }

// Root fetches the object at the root of the remote tree. Anything other
// than exactly one root is an error, and a loud one: a backend that cannot
// produce its root is not usable at all.
func (c *Client) Root(ctx context.Context) (Node, error) {
	snaps, err := c.backend.GetState(ctx, RootPath)
	if err != nil {
		return nil, fmt.Errorf("fetching root object: %w", err)
	}
	if len(snaps) != 1 {
		c.logger.Error("could not retrieve root object", zap.Int("matches", len(snaps)))
		return nil, fmt.Errorf("expected exactly one root object, backend returned %d", len(snaps))
	}
	return makeNode(c.backend, c.registry, c.logger, c.pollInterval, snaps[0])
}

// Instances fetches every node anywhere in the tree whose type matches
// selector (a *Class or a type name string).
//
// This is a full-tree scan and is expensive on large applications; prefer
// starting from Root and using scoped child or descendant queries.
func (c *Client) Instances(ctx context.Context, selector any) ([]Node, error) {
	typeName, err := selectorName(selector)
	if err != nil {
		return nil, err
	}
	query := "//" + typeName
	snaps, err := c.backend.GetState(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	nodes := make([]Node, 0, len(snaps))
	for _, snap := range snaps {
		node, err := makeNode(c.backend, c.registry, c.logger, c.pollInterval, snap)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func selectorName(selector any) (string, error) {
	switch s := selector.(type) {
	case *Class:
		return s.Name(), nil
	case string:
		if s == "" {
			return "", errors.New("type selector must not be empty")
		}
		return s, nil
	default:
		return "", fmt.Errorf("type selector must be a *Class or a string, got %T", selector)
	}
}
