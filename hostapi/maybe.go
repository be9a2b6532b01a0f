package hostapi

// Maybe holds either a value or nothing. Hosts use it for lookups where a miss is an expected
// outcome and must not be confused with a failure.
type Maybe[T any] struct {
	v  T
	ok bool
}

// Value is the result of a dictionary or config store lookup.
type Value = Maybe[string]

// Some wraps a present value.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{v: v, ok: true}
}

// None is the absent marker.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) {
	return m.v, m.ok
}

// IsAbsent reports whether m holds nothing.
func (m Maybe[T]) IsAbsent() bool {
	return !m.ok
}
