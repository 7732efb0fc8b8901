// Package ladder runs an ordered list of fallible attempts and settles on an
// infallible local result when every attempt fails.
package ladder

import (
	"context"
	"fmt"
)

// Rung is one fallible attempt. Name is reported back for provenance.
type Rung[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, error)
}

// Final is the local step that always produces a value.
type Final[T any] struct {
	Name    string
	Produce func() T
}

// Outcome describes which step produced the value and what failed before it.
type Outcome struct {
	// Step is the Name of the rung or final step that produced the value.
	Step string
	// Fallback is true when the Final step produced the value.
	Fallback bool
	// Failures holds one error per failed rung, in order.
	Failures []error
}

// LastFailure returns the most recent rung error, or nil.
func (o Outcome) LastFailure() error {
	if len(o.Failures) == 0 {
		return nil
	}
	return o.Failures[len(o.Failures)-1]
}

// Climb tries each rung in order and returns the first success. When every
// rung fails, or ctx is done before a rung starts, the final step runs.
// A panicking rung counts as a failure.
func Climb[T any](ctx context.Context, rungs []Rung[T], final Final[T]) (T, Outcome) {
	var out Outcome
	for _, r := range rungs {
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, fmt.Errorf("%s: %w", r.Name, err))
			break
		}
		v, err := try(ctx, r)
		if err == nil {
			out.Step = r.Name
			return v, out
		}
		out.Failures = append(out.Failures, err)
	}
	out.Step = final.Name
	out.Fallback = true
	return final.Produce(), out
}

func try[T any](ctx context.Context, r Rung[T]) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			v, err = zero, fmt.Errorf("%s: %w: %v", r.Name, ErrPanic, p)
		}
	}()
	v, err = r.Try(ctx)
	if err != nil {
		return v, fmt.Errorf("%s: %w", r.Name, err)
	}
	return v, nil
}
