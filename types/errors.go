package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyPayload is returned by Decode when a tuple carries a type tag
	// but no payload components. Every wire value has at least one.
	ErrEmptyPayload = errors.New("cannot decode value: no payload components supplied")

	// ErrDetachedValue is returned by WaitFor on a value that was not decoded
	// as part of a state object's property snapshot. Such values have no
	// backend to poll and exist for comparison only.
	ErrDetachedValue = errors.New("value was not constructed as part of a state object, wait-for is unavailable")
)

// ArityError reports a composite value constructed with the wrong number of
// components. This is always a protocol version skew between client and
// server, so it is surfaced instead of being truncated or padded.
type ArityError struct {
	TypeName string
	Want     int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s must be constructed with %d components, not %d", e.TypeName, e.Want, e.Got)
}

// WaitTimeoutError reports that a WaitFor call consumed its whole timeout
// budget without observing the expected value. It carries the last observed
// mismatch so the failure can be diagnosed without re-running the test.
type WaitTimeoutError struct {
	Class        string
	Property     string
	Timeout      time.Duration
	LastMismatch string
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("after %.1f seconds wait on %s.%s failed: %s",
		e.Timeout.Seconds(), e.Class, e.Property, e.LastMismatch)
}
