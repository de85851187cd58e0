package model

import "fmt"

// Optional holds a value that may be absent.
// The zero Optional is absent and its Value is the zero value of T.
type Optional[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a nil-able pointer into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

// OrZero returns the value, or the zero value of T when absent.
func (o Optional[T]) OrZero() T {
	if !o.Present {
		var zero T
		return zero
	}
	return o.Value
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o Optional[T]) Ptr() *T {
	if !o.Present {
		return nil
	}
	v := o.Value
	return &v
}

// String returns the value formatted with %v, or "<absent>".
func (o Optional[T]) String() string {
	if !o.Present {
		return "<absent>"
	}
	return fmt.Sprintf("%v", o.Value)
}
