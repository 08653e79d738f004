package types

import (
	"context"
	"fmt"
	"time"
)

// DateTime is a date and time in the UTC timezone, marshalled as a single
// unix timestamp. The calendar fields are computed once at construction.
type DateTime struct {
	waitable
	ts int64
	t  time.Time
}

// NewDateTime constructs a DateTime from its single wire component, a unix
// timestamp in seconds.
func NewDateTime(components ...int64) (*DateTime, error) {
	if len(components) != 1 {
		return nil, &ArityError{TypeName: "DateTime", Want: 1, Got: len(components)}
	}
	ts := components[0]
	return &DateTime{ts: ts, t: time.Unix(ts, 0).UTC()}, nil
}

// Timestamp returns the raw unix timestamp.
func (d *DateTime) Timestamp() int64 { return d.ts }

// Time returns the cached UTC time.Time for this timestamp.
func (d *DateTime) Time() time.Time { return d.t }

func (d *DateTime) Year() int   { return d.t.Year() }
func (d *DateTime) Month() int  { return int(d.t.Month()) }
func (d *DateTime) Day() int    { return d.t.Day() }
func (d *DateTime) Hour() int   { return d.t.Hour() }
func (d *DateTime) Minute() int { return d.t.Minute() }
func (d *DateTime) Second() int { return d.t.Second() }

func (d *DateTime) TypeID() ValueType { return TypeDateTime }
func (d *DateTime) Components() []any { return []any{d.ts} }

func (d *DateTime) String() string {
	return fmt.Sprintf("DateTime(%s)", d.t.Format(time.RFC3339))
}

// Equal compares against another DateTime, a one-element sequence holding
// the timestamp, or a time.Time.
func (d *DateTime) Equal(other any) bool {
	switch o := other.(type) {
	case *DateTime:
		return d.ts == o.ts
	case time.Time:
		return d.t.Equal(o)
	}
	if seq, ok := seqComponents(other); ok {
		return componentsEqual([]int64{d.ts}, seq)
	}
	return false
}

func (d *DateTime) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return d.waitFor(ctx, d, expected, timeout)
}

// Time is a wall-clock time without a date component, marshalled as
// (hour, minute, second, millisecond).
type Time struct {
	waitable
	h, m, s, ms int64
}

// NewTime constructs a Time from its four wire components.
func NewTime(components ...int64) (*Time, error) {
	if len(components) != 4 {
		return nil, &ArityError{TypeName: "Time", Want: 4, Got: len(components)}
	}
	return &Time{h: components[0], m: components[1], s: components[2], ms: components[3]}, nil
}

func (t *Time) Hour() int64        { return t.h }
func (t *Time) Minute() int64      { return t.m }
func (t *Time) Second() int64      { return t.s }
func (t *Time) Millisecond() int64 { return t.ms }

func (t *Time) TypeID() ValueType { return TypeTime }
func (t *Time) Components() []any { return []any{t.h, t.m, t.s, t.ms} }

func (t *Time) String() string {
	return fmt.Sprintf("Time(%02d:%02d:%02d.%03d)", t.h, t.m, t.s, t.ms)
}

// Equal compares against another Time, a four-element sequence, or the
// clock fields of a time.Time (its date component is ignored).
func (t *Time) Equal(other any) bool {
	switch o := other.(type) {
	case *Time:
		return t.h == o.h && t.m == o.m && t.s == o.s && t.ms == o.ms
	case time.Time:
		return int64(o.Hour()) == t.h &&
			int64(o.Minute()) == t.m &&
			int64(o.Second()) == t.s &&
			int64(o.Nanosecond()/1e6) == t.ms
	}
	if seq, ok := seqComponents(other); ok {
		return componentsEqual([]int64{t.h, t.m, t.s, t.ms}, seq)
	}
	return false
}

func (t *Time) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return t.waitFor(ctx, t, expected, timeout)
}
