// Package dump renders a subtree of introspected state as JSON, for
// debugging sessions and for attaching application state to test failure
// reports.
package dump

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/go-statetree/statetree"
	"github.com/go-statetree/statetree/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// node is the serialized form of one state object.
type node struct {
	Type       string         `json:"type"`
	Path       string         `json:"path"`
	ID         int64          `json:"id"`
	Properties map[string]any `json:"properties"`
	Children   []*node        `json:"children,omitempty"`
}

// Tree writes root and its descendants, down to maxDepth levels below root,
// to w as indented JSON. A maxDepth of 0 dumps just the root object. Every
// level costs one child query per node, so keep maxDepth modest on large
// applications.
func Tree(ctx context.Context, root statetree.Node, maxDepth int, w io.Writer) error {
	if root == nil {
		return fmt.Errorf("cannot dump a nil node")
	}
	n, err := collect(ctx, root, maxDepth)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}

func collect(ctx context.Context, nd statetree.Node, depth int) (*node, error) {
	obj := nd.State()
	props, err := obj.Properties(ctx)
	if err != nil {
		return nil, fmt.Errorf("dumping %s: %w", obj.Path(), err)
	}

	out := &node{
		Type:       obj.ClassName(),
		Path:       obj.Path(),
		ID:         obj.ID(),
		Properties: make(map[string]any, len(props)),
	}
	for name, v := range props {
		out.Properties[name] = renderValue(v)
	}

	if depth <= 0 {
		return out, nil
	}
	children, err := obj.Children(ctx)
	if err != nil {
		return nil, fmt.Errorf("dumping children of %s: %w", obj.Path(), err)
	}
	for _, child := range children {
		cn, err := collect(ctx, child, depth-1)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, cn)
	}
	return out, nil
}

// renderValue reduces a decoded value to plain JSON shapes: the bare
// primitive for plain values, the component list for composites.
func renderValue(v types.Value) any {
	if p, ok := v.(*types.Plain); ok && p.TypeID() == types.TypePlain {
		return p.Value()
	}
	return v.Components()
}
