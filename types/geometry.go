package types

import (
	"context"
	"fmt"
	"time"
)

// Rectangle is a rectangle in cartesian space, marshalled as (x, y, w, h).
type Rectangle struct {
	waitable
	x, y, w, h int64
}

// NewRectangle constructs a rectangle from its four wire components.
func NewRectangle(components ...int64) (*Rectangle, error) {
	if len(components) != 4 {
		return nil, &ArityError{TypeName: "Rectangle", Want: 4, Got: len(components)}
	}
	return &Rectangle{x: components[0], y: components[1], w: components[2], h: components[3]}, nil
}

func (r *Rectangle) X() int64      { return r.x }
func (r *Rectangle) Y() int64      { return r.y }
func (r *Rectangle) Width() int64  { return r.w }
func (r *Rectangle) Height() int64 { return r.h }

func (r *Rectangle) TypeID() ValueType { return TypeRectangle }
func (r *Rectangle) Components() []any { return []any{r.x, r.y, r.w, r.h} }

func (r *Rectangle) String() string {
	return fmt.Sprintf("Rectangle(%d, %d, %d, %d)", r.x, r.y, r.w, r.h)
}

// Equal compares against another Rectangle or any ordered sequence of four
// integers.
func (r *Rectangle) Equal(other any) bool {
	if o, ok := other.(*Rectangle); ok {
		return r.x == o.x && r.y == o.y && r.w == o.w && r.h == o.h
	}
	if seq, ok := seqComponents(other); ok {
		return componentsEqual([]int64{r.x, r.y, r.w, r.h}, seq)
	}
	return false
}

func (r *Rectangle) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return r.waitFor(ctx, r, expected, timeout)
}

// Point is a 2D point in cartesian space, marshalled as (x, y).
type Point struct {
	waitable
	x, y int64
}

// NewPoint constructs a point from its two wire components.
func NewPoint(components ...int64) (*Point, error) {
	if len(components) != 2 {
		return nil, &ArityError{TypeName: "Point", Want: 2, Got: len(components)}
	}
	return &Point{x: components[0], y: components[1]}, nil
}

func (p *Point) X() int64 { return p.x }
func (p *Point) Y() int64 { return p.y }

func (p *Point) TypeID() ValueType { return TypePoint }
func (p *Point) Components() []any { return []any{p.x, p.y} }

func (p *Point) String() string { return fmt.Sprintf("Point(%d, %d)", p.x, p.y) }

func (p *Point) Equal(other any) bool {
	if o, ok := other.(*Point); ok {
		return p.x == o.x && p.y == o.y
	}
	if seq, ok := seqComponents(other); ok {
		return componentsEqual([]int64{p.x, p.y}, seq)
	}
	return false
}

func (p *Point) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return p.waitFor(ctx, p, expected, timeout)
}

// Size is a 2D size, marshalled as (w, h).
type Size struct {
	waitable
	w, h int64
}

// NewSize constructs a size from its two wire components.
func NewSize(components ...int64) (*Size, error) {
	if len(components) != 2 {
		return nil, &ArityError{TypeName: "Size", Want: 2, Got: len(components)}
	}
	return &Size{w: components[0], h: components[1]}, nil
}

func (s *Size) Width() int64  { return s.w }
func (s *Size) Height() int64 { return s.h }

func (s *Size) TypeID() ValueType { return TypeSize }
func (s *Size) Components() []any { return []any{s.w, s.h} }

func (s *Size) String() string { return fmt.Sprintf("Size(%d, %d)", s.w, s.h) }

func (s *Size) Equal(other any) bool {
	if o, ok := other.(*Size); ok {
		return s.w == o.w && s.h == o.h
	}
	if seq, ok := seqComponents(other); ok {
		return componentsEqual([]int64{s.w, s.h}, seq)
	}
	return false
}

func (s *Size) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return s.waitFor(ctx, s, expected, timeout)
}

// Color is an RGBA colour, marshalled as (r, g, b, a).
type Color struct {
	waitable
	r, g, b, a int64
}

// NewColor constructs a colour from its four wire components.
func NewColor(components ...int64) (*Color, error) {
	if len(components) != 4 {
		return nil, &ArityError{TypeName: "Color", Want: 4, Got: len(components)}
	}
	return &Color{r: components[0], g: components[1], b: components[2], a: components[3]}, nil
}

func (c *Color) Red() int64   { return c.r }
func (c *Color) Green() int64 { return c.g }
func (c *Color) Blue() int64  { return c.b }
func (c *Color) Alpha() int64 { return c.a }

func (c *Color) TypeID() ValueType { return TypeColor }
func (c *Color) Components() []any { return []any{c.r, c.g, c.b, c.a} }

func (c *Color) String() string {
	return fmt.Sprintf("Color(%d, %d, %d, %d)", c.r, c.g, c.b, c.a)
}

func (c *Color) Equal(other any) bool {
	if o, ok := other.(*Color); ok {
		return c.r == o.r && c.g == o.g && c.b == o.b && c.a == o.a
	}
	if seq, ok := seqComponents(other); ok {
		return componentsEqual([]int64{c.r, c.g, c.b, c.a}, seq)
	}
	return false
}

func (c *Color) WaitFor(ctx context.Context, expected any, timeout time.Duration) error {
	return c.waitFor(ctx, c, expected, timeout)
}
