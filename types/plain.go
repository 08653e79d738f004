package types

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Plain is a property value marshalled as a bare string, integer or boolean.
// It also carries values decoded from an unknown type tag, in which case the
// underlying value is the raw component slice and TypeID reports TypeUnknown.
type Plain struct {
	waitable
	id ValueType
	v  any
}

// NewPlain constructs a standalone plain value, usable for comparison but
// not for WaitFor.
func NewPlain(v any) *Plain {
	return &Plain{id: TypePlain, v: v}
}

// Value returns the underlying primitive.
func (p *Plain) Value() any { return p.v }

// String renders the underlying primitive, so plain values print like the
// thing they wrap.
func (p *Plain) String() string { return fmt.Sprintf("%v", p.v) }

// Int returns the underlying value as an int64.
func (p *Plain) Int() (int64, bool) { return asInt64(p.v) }

// Bool returns the underlying value if it is a boolean.
func (p *Plain) Bool() (bool, bool) {
	b, ok := p.v.(bool)
	return b, ok
}

// Text returns the underlying value if it is a string.
func (p *Plain) Text() (string, bool) {
	s, ok := p.v.(string)
	return s, ok
}

func (p *Plain) TypeID() ValueType { return p.id }

func (p *Plain) Components() []any {
	if raw, ok := p.v.([]any); ok && p.id == TypeUnknown {
		return raw
	}
	return []any{p.v}
}

// Equal compares against another Plain or against the bare primitive.
// Integer comparisons are width-insensitive: an int property equals an
// int64 filter value.
func (p *Plain) Equal(other any) bool {
	if o, ok := other.(*Plain); ok {
		other = o.v
	}
	if an, ok := asInt64(p.v); ok {
		bn, ok := asInt64(other)
		return ok && an == bn
	}
	if p.v == nil || other == nil {
		return p.v == other
	}
	if reflect.TypeOf(p.v).Comparable() && reflect.TypeOf(other).Comparable() {
		return p.v == other
	}
	return reflect.DeepEqual(p.v, other)
}

func (p *Plain) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return p.waitFor(ctx, p, expected, timeout)
}
