package statetree

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/go-statetree/statetree/types"
	"github.com/go-statetree/statetree/wire"
)

// Object is the client-side proxy for one node of remote application state.
//
// An Object owns a decoded property snapshot and knows how to re-address the
// exact node it came from using its path plus per-sibling identity. Property
// reads refresh the snapshot first unless refresh-on-read is suspended with
// WithoutRefresh. The snapshot is always replaced wholesale, never merged.
//
// Objects are driven from a single logical test-execution thread; the
// refresh-on-read flag is plain instance state, not thread-local.
type Object struct {
	backend  wire.Backend
	registry *Registry
	class    *Class
	logger   *zap.Logger

	path          string
	id            int64
	properties    map[string]types.Value
	refreshOnRead bool
	pollInterval  time.Duration
}

// makeNode decodes one (path, properties) snapshot into a typed node: the
// type name comes from the last path segment, the registry picks the proxy
// class, and the class factory wraps the decoded object.
func makeNode(b wire.Backend, reg *Registry, logger *zap.Logger, poll time.Duration, snap wire.Snapshot) (Node, error) {
	className := classNameFromPath(snap.Path)
	class := reg.Resolve(b, className)
	o := &Object{
		backend:       b,
		registry:      reg,
		class:         class,
		logger:        logger,
		path:          snap.Path,
		refreshOnRead: true,
		pollInterval:  poll,
	}
	if err := o.setSnapshot(snap); err != nil {
		return nil, err
	}
	return class.wrap(o), nil
}

func classNameFromPath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// normalizeKey translates wire property names into attribute names: '-' on
// the wire becomes '_' on the client.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// setSnapshot rebuilds the property map from a raw snapshot. The previous
// map is discarded entirely; a decode failure leaves the object unchanged.
func (o *Object) setSnapshot(snap wire.Snapshot) error {
	props := make(map[string]types.Value, len(snap.Properties))
	var id int64
	for key, tuple := range snap.Properties {
		name := normalizeKey(key)
		v, err := types.Decode(tuple, o, name)
		if err != nil {
			return fmt.Errorf("decoding %s.%s: %w", o.class.Name(), name, err)
		}
		if name == "id" {
			if p, ok := v.(*types.Plain); ok {
				if n, ok := p.Int(); ok {
					id = n
				}
			}
		}
		props[name] = v
	}
	o.properties = props
	o.id = id
	return nil
}

// State returns the object itself, making *Object the generic Node.
func (o *Object) State() *Object { return o }

// Class returns the proxy class this object was decoded under.
func (o *Object) Class() *Class { return o.class }

// ClassName returns the remote type name of this node.
func (o *Object) ClassName() string { return o.class.Name() }

// Path returns this node's position in the remote tree as a query-expression
// prefix.
func (o *Object) Path() string { return o.path }

// ID returns the identity distinguishing this node from siblings of the same
// type at the same path.
func (o *Object) ID() int64 { return o.id }

// PollInterval returns the cadence used by WaitFor polling on this object's
// values.
func (o *Object) PollInterval() time.Duration { return o.pollInterval }

// selfQuery is the query expression that re-addresses exactly this node.
func (o *Object) selfQuery() string {
	return fmt.Sprintf("%s[id=%d]", o.path, o.id)
}

// Refresh re-queries the backend for this exact node and replaces the
// property snapshot. The node having vanished, or its identity no longer
// being unique, are both surfaced as a NotFoundError; neither is ever
// silently ignored.
func (o *Object) Refresh(ctx context.Context) error {
	query := o.selfQuery()
	snaps, err := o.backend.GetState(ctx, query)
	if err != nil {
		return fmt.Errorf("refreshing state for %s: %w", query, err)
	}
	if len(snaps) != 1 {
		return &NotFoundError{Class: o.ClassName(), ID: o.id, Matches: len(snaps)}
	}
	return o.setSnapshot(snaps[0])
}

// Property returns the decoded value of one property. When refresh-on-read
// is enabled (the default) the snapshot is refreshed first, so the value is
// current as of this call. A name the object does not have is an
// AttributeError, pointing at a schema mismatch between the test and the
// live application.
func (o *Object) Property(ctx context.Context, name string) (types.Value, error) {
	if o.refreshOnRead {
		if err := o.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	v, ok := o.properties[name]
	if !ok {
		return nil, &AttributeError{Class: o.ClassName(), Attribute: name}
	}
	return v, nil
}

// RefreshProperty refreshes the snapshot and returns the named property from
// it. This is the polling primitive used by Value.WaitFor.
func (o *Object) RefreshProperty(ctx context.Context, name string) (types.Value, error) {
	if err := o.Refresh(ctx); err != nil {
		return nil, err
	}
	v, ok := o.properties[name]
	if !ok {
		return nil, &AttributeError{Class: o.ClassName(), Attribute: name}
	}
	return v, nil
}

// Properties refreshes the object and returns a copy of its decoded
// property map.
func (o *Object) Properties(ctx context.Context) (map[string]types.Value, error) {
	if err := o.Refresh(ctx); err != nil {
		return nil, err
	}
	props := make(map[string]types.Value, len(o.properties))
	for k, v := range o.properties {
		props[k] = v
	}
	return props, nil
}

// WithoutRefresh runs fn with refresh-on-read disabled, so that evaluating
// many predicates against one snapshot does not issue one backend round trip
// per property read. The previous setting is restored on every exit path,
// panics included.
func (o *Object) WithoutRefresh(fn func() error) error {
	prev := o.refreshOnRead
	o.refreshOnRead = false
	defer func() { o.refreshOnRead = prev }()
	return fn()
}

// Children refreshes this node and returns all of its direct children,
// each wrapped in its proxy class.
func (o *Object) Children(ctx context.Context) ([]Node, error) {
	if err := o.Refresh(ctx); err != nil {
		return nil, err
	}
	query := o.selfQuery() + "/*"
	snaps, err := o.backend.GetState(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching children of %s: %w", o.selfQuery(), err)
	}
	children := make([]Node, 0, len(snaps))
	for _, snap := range snaps {
		child, err := makeNode(o.backend, o.registry, o.logger, o.pollInterval, snap)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// ChildrenByType returns the direct children whose proxy class matches
// selector and which pass every filter. selector is either a *Class (matched
// by identity) or a type name string.
func (o *Object) ChildrenByType(ctx context.Context, selector any, filters Filters) ([]Node, error) {
	children, err := o.Children(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Node, 0, len(children))
	for _, child := range children {
		if !selectorMatches(selector, child.State()) {
			continue
		}
		if passesFilters(child.State(), filters) {
			matched = append(matched, child)
		}
	}
	return matched, nil
}

func selectorMatches(selector any, o *Object) bool {
	switch s := selector.(type) {
	case *Class:
		return o.class == s
	case string:
		return o.ClassName() == s
	default:
		return false
	}
}
