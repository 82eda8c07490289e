// Package probe turns calls against the host runtime into explicit outcomes.
//
// Every host call can be missing, can fail, or can panic. Call folds all three
// into a Result so detection and binding chains are written as first-success
// combinators instead of nested recover blocks.
package probe

import (
	"errors"
	"fmt"

	"github.com/mj1618/docbind/internal/platform"
)

// Outcome classifies a single probe step.
type Outcome int

const (
	// NotApplicable means the capability is absent or the value is empty.
	NotApplicable Outcome = iota
	// HostFault means the host raised an error or panicked.
	HostFault
	// Success means the call returned a usable value.
	Success
)

func (o Outcome) String() string {
	switch o {
	case NotApplicable:
		return "not-applicable"
	case HostFault:
		return "host-fault"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the value and outcome of one probe step.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether the step succeeded.
func (r Result[T]) OK() bool { return r.Outcome == Success }

// Internal reports whether the step hit the recognized host-internal fault.
func (r Result[T]) Internal() bool {
	return r.Outcome == HostFault && platform.IsInternalFault(r.Err)
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v, Outcome: Success} }

// Absent is the not-applicable result.
func Absent[T any]() Result[T] { return Result[T]{Outcome: NotApplicable} }

// Fault wraps a host failure.
func Fault[T any](err error) Result[T] { return Result[T]{Outcome: HostFault, Err: err} }

// Call runs fn and classifies what happened. ErrNotSupported maps to
// NotApplicable, any other error or a panic maps to HostFault.
func Call[T any](fn func() (T, error)) (r Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			r = Fault[T](panicError(p))
		}
	}()
	v, err := fn()
	switch {
	case err == nil:
		return Ok(v)
	case errors.Is(err, platform.ErrNotSupported):
		return Absent[T]()
	default:
		return Fault[T](err)
	}
}

// Do is Call for steps that return only an error.
func Do(fn func() error) Result[struct{}] {
	return Call(func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// NonEmpty downgrades a successful empty string to NotApplicable.
func NonEmpty(r Result[string]) Result[string] {
	if r.OK() && r.Value == "" {
		return Absent[string]()
	}
	return r
}

// First returns the first successful step. When none succeed it returns the
// last fault seen, or NotApplicable when every step was absent.
func First[T any](steps ...func() Result[T]) Result[T] {
	last := Absent[T]()
	for _, step := range steps {
		r := step()
		if r.OK() {
			return r
		}
		if r.Outcome == HostFault {
			last = r
		}
	}
	return last
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return fmt.Errorf("host panic: %w", err)
	}
	return fmt.Errorf("host panic: %v", p)
}
