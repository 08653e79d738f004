// Package types implements the typed-value codec for introspected state.
//
// Every property on a remote object arrives as a tagged wire tuple
// (wire.Tuple): a type tag followed by one or more payload components. This
// package decodes those tuples into value objects that behave like the
// domain type they represent (a rectangle, a point, a colour, a timestamp)
// while still remembering which state object and property they came from, so
// that every value supports blocking wait-for-value polling.
package types

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-statetree/statetree/wire"
)

// ValueType enumerates the type tags understood by the codec. These values
// are part of the wire protocol and must not be renumbered.
type ValueType int

const (
	TypeUnknown   ValueType = -1
	TypePlain     ValueType = 0
	TypeRectangle ValueType = 1
	TypePoint     ValueType = 2
	TypeSize      ValueType = 3
	TypeColor     ValueType = 4
	TypeDateTime  ValueType = 5
	TypeTime      ValueType = 6
)

// String returns the protocol name of the type tag.
func (t ValueType) String() string {
	switch t {
	case TypePlain:
		return "Plain"
	case TypeRectangle:
		return "Rectangle"
	case TypePoint:
		return "Point"
	case TypeSize:
		return "Size"
	case TypeColor:
		return "Color"
	case TypeDateTime:
		return "DateTime"
	case TypeTime:
		return "Time"
	default:
		return "Unknown"
	}
}

// Value is a decoded property value.
//
// Components returns the payload exactly as it would appear on the wire
// (without the leading type tag), which makes encode/decode round-trips
// possible. Equal accepts another Value of the same kind, or a plain ordered
// sequence of the same arity, or the underlying primitive for plain values.
//
// WaitFor is only available on values that were decoded as part of a state
// object's property snapshot; a standalone-constructed value used for
// comparison returns ErrDetachedValue.
type Value interface {
	TypeID() ValueType
	Components() []any
	Equal(other any) bool

	// WaitFor blocks until the owning object's copy of this property equals
	// expected, polling the backend once per poll interval until timeout is
	// consumed. expected may be a Matcher for non-literal comparisons.
	WaitFor(ctx context.Context, expected any, timeout time.Duration) error
}

// Decode turns one tagged wire tuple into a typed Value. owner and name tie
// the value back to the state object property it was decoded from; both may
// be zero for standalone values, at the cost of WaitFor support.
//
// An unknown type tag is not an error: the payload is kept as-is in a plain
// value so that newer servers do not break older clients. A missing payload
// always is an error, as is a composite payload of the wrong arity: both
// indicate protocol version skew and must not be papered over.
func Decode(t wire.Tuple, owner Owner, name string) (Value, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("property %q: missing type tag: %w", name, ErrEmptyPayload)
	}
	tag, ok := asInt64(t[0])
	if !ok {
		return nil, fmt.Errorf("property %q: type tag must be an integer, got %T", name, t[0])
	}
	payload := []any(t[1:])
	if len(payload) == 0 {
		return nil, fmt.Errorf("property %q: %w", name, ErrEmptyPayload)
	}

	id := ValueType(tag)
	switch id {
	case TypePlain, TypeRectangle, TypePoint, TypeSize, TypeColor, TypeDateTime, TypeTime:
	default:
		zap.L().Named("statetree.types").Warn("unknown value type tag, decoding as plain",
			zap.Int64("tag", tag),
			zap.String("property", name))
		id = TypeUnknown
	}

	w := waitable{owner: owner, name: name}
	switch id {
	case TypePlain:
		if len(payload) != 1 {
			return nil, &ArityError{TypeName: "Plain", Want: 1, Got: len(payload)}
		}
		return &Plain{waitable: w, id: TypePlain, v: payload[0]}, nil

	case TypeUnknown:
		// Keep the raw components together so they survive a re-encode.
		raw := make([]any, len(payload))
		copy(raw, payload)
		return &Plain{waitable: w, id: TypeUnknown, v: raw}, nil

	case TypeRectangle:
		vals, err := intComponents("Rectangle", payload)
		if err != nil {
			return nil, err
		}
		r, err := NewRectangle(vals...)
		if err != nil {
			return nil, err
		}
		r.waitable = w
		return r, nil

	case TypePoint:
		vals, err := intComponents("Point", payload)
		if err != nil {
			return nil, err
		}
		p, err := NewPoint(vals...)
		if err != nil {
			return nil, err
		}
		p.waitable = w
		return p, nil

	case TypeSize:
		vals, err := intComponents("Size", payload)
		if err != nil {
			return nil, err
		}
		s, err := NewSize(vals...)
		if err != nil {
			return nil, err
		}
		s.waitable = w
		return s, nil

	case TypeColor:
		vals, err := intComponents("Color", payload)
		if err != nil {
			return nil, err
		}
		c, err := NewColor(vals...)
		if err != nil {
			return nil, err
		}
		c.waitable = w
		return c, nil

	case TypeDateTime:
		vals, err := intComponents("DateTime", payload)
		if err != nil {
			return nil, err
		}
		d, err := NewDateTime(vals...)
		if err != nil {
			return nil, err
		}
		d.waitable = w
		return d, nil

	default: // TypeTime
		vals, err := intComponents("Time", payload)
		if err != nil {
			return nil, err
		}
		tm, err := NewTime(vals...)
		if err != nil {
			return nil, err
		}
		tm.waitable = w
		return tm, nil
	}
}

// intComponents coerces every payload element of a composite value to int64.
func intComponents(typeName string, payload []any) ([]int64, error) {
	out := make([]int64, len(payload))
	for i, c := range payload {
		n, ok := asInt64(c)
		if !ok {
			return nil, fmt.Errorf("component %d of %s must be an integer, got %T", i, typeName, c)
		}
		out[i] = n
	}
	return out, nil
}

// asInt64 accepts the integer representations a transport is likely to hand
// us, including JSON-style float64 values that carry an integral number.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > 1<<63-1 {
			return 0, false
		}
		return int64(n), true
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
		return 0, false
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// seqComponents interprets other as a plain ordered sequence for equality
// checks against composite values.
func seqComponents(other any) ([]int64, bool) {
	switch s := other.(type) {
	case []int:
		out := make([]int64, len(s))
		for i, n := range s {
			out[i] = int64(n)
		}
		return out, true
	case []int64:
		return s, true
	case []any:
		out := make([]int64, len(s))
		for i, c := range s {
			n, ok := asInt64(c)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

func componentsEqual(a []int64, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
