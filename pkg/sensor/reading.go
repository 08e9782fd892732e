package sensor

import (
	"context"
	"errors"
)

// Status classifies the outcome of one sample.
type Status int

const (
	// StatusEmpty is the zero value: nothing has been read yet.
	StatusEmpty Status = iota
	StatusOK
	// StatusUnavailable means the sensor is absent and will stay absent.
	StatusUnavailable
	// StatusTransient means the read failed this time and may succeed later.
	StatusTransient
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "transient"
	}
}

// Reading is a tagged sensor result.
type Reading[T any] struct {
	Value  T
	Status Status
	Err    error
}

// NewReading classifies the result of a Sample call.
func NewReading[T any](v T, err error) Reading[T] {
	switch {
	case err == nil:
		return Reading[T]{Value: v, Status: StatusOK}
	case errors.Is(err, ErrUnavailable):
		return Reading[T]{Status: StatusUnavailable, Err: err}
	default:
		return Reading[T]{Status: StatusTransient, Err: err}
	}
}

// OK reports whether the reading holds a value.
func (r Reading[T]) OK() bool {
	return r.Status == StatusOK
}

// Or returns prev in place of a transient failure when prev holds a value,
// so a momentary read error keeps the last good value on screen.
func (r Reading[T]) Or(prev Reading[T]) Reading[T] {
	if r.Status == StatusTransient && prev.OK() {
		return prev
	}
	return r
}

// Read samples s and classifies the result. A nil sampler yields an empty
// reading.
func Read[T any](ctx context.Context, s Sampler[T]) Reading[T] {
	if s == nil {
		return Reading[T]{}
	}
	v, err := s.Sample(ctx)
	return NewReading(v, err)
}
