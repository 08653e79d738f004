package types

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Owner is the state object a value was decoded from. It gives the value
// just enough of its owner to poll the backend: a class name for error
// messages, the polling cadence, and a way to re-fetch one property from a
// fresh snapshot.
type Owner interface {
	ClassName() string
	PollInterval() time.Duration

	// RefreshProperty re-queries the backend for the owning node, replaces
	// the owner's property snapshot wholesale, and returns the freshly
	// decoded value of the named property.
	RefreshProperty(ctx context.Context, name string) (Value, error)
}

// Matcher is the predicate form of a WaitFor expectation. Anything passed to
// WaitFor that implements Matcher is consulted instead of literal equality.
type Matcher interface {
	// Match reports whether the observed value satisfies the expectation.
	Match(actual Value) bool
	// Describe explains why the observed value did not satisfy it.
	Describe(actual Value) string
}

// MatcherFunc adapts a plain predicate into a Matcher.
type MatcherFunc func(actual Value) bool

func (f MatcherFunc) Match(actual Value) bool { return f(actual) }

func (f MatcherFunc) Describe(actual Value) string {
	return fmt.Sprintf("predicate rejected value %v", render(actual))
}

// literalMatcher is the default expectation: plain equality against want.
type literalMatcher struct {
	want any
}

func (m literalMatcher) Match(actual Value) bool { return actual.Equal(m.want) }

func (m literalMatcher) Describe(actual Value) string {
	if diff := cmp.Diff(render(m.want), render(actual)); diff != "" {
		return fmt.Sprintf("values differ (-want +got):\n%s", diff)
	}
	return fmt.Sprintf("%v != %v", render(m.want), render(actual))
}

// render reduces a value to a diffable shape: the underlying primitive for
// plain values, the component list for composites.
func render(v any) any {
	switch t := v.(type) {
	case *Plain:
		return t.Value()
	case Value:
		return t.Components()
	default:
		return v
	}
}

func asMatcher(expected any) Matcher {
	if m, ok := expected.(Matcher); ok {
		return m
	}
	return literalMatcher{want: expected}
}

// waitable carries the back-reference tying a value to the state object
// property it was decoded from. Standalone values have a nil owner.
type waitable struct {
	owner Owner
	name  string
}

// waitFor implements the polling contract shared by every value kind.
//
// The value is checked once before any backend traffic: a value that already
// matches returns immediately without sleeping. After that each iteration
// asks the owner for a fresh copy of the property, compares, and sleeps up
// to one poll interval, consuming the remaining timeout budget. Timeout
// expiry surfaces as a WaitTimeoutError carrying the last mismatch; backend
// errors (including the owner vanishing mid-wait) abort the wait as-is.
func (w *waitable) waitFor(ctx context.Context, self Value, expected any, timeout time.Duration) error {
	m := asMatcher(expected)
	if m.Match(self) {
		return nil
	}
	if w.owner == nil || w.name == "" {
		return ErrDetachedValue
	}

	interval := w.owner.PollInterval()
	if interval <= 0 {
		interval = time.Second
	}

	remaining := timeout
	var lastMismatch string
	for {
		fresh, err := w.owner.RefreshProperty(ctx, w.name)
		if err != nil {
			return err
		}
		if m.Match(fresh) {
			return nil
		}
		lastMismatch = m.Describe(fresh)

		if remaining <= 0 {
			break
		}
		sleep := interval
		if remaining < sleep {
			sleep = remaining
		}
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		remaining -= sleep
	}

	return &WaitTimeoutError{
		Class:        w.owner.ClassName(),
		Property:     w.name,
		Timeout:      timeout,
		LastMismatch: lastMismatch,
	}
}
