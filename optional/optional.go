// Package optional provides a value which may or may not be set.
package optional

// Optional holds a value of type T which may be absent. The zero value is an
// empty Optional.
type Optional[T any] struct {
	value T
	set   bool
}

// Of returns an Optional which holds v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Set stores v, replacing any previous value.
func (o *Optional[T]) Set(v T) {
	o.value = v
	o.set = true
}

// Get returns the stored value. It panics when the Optional is empty.
func (o Optional[T]) Get() T {
	if !o.set {
		panic("optional: Get called on an empty value")
	}
	return o.value
}

// HasValue returns true if a value has been set.
func (o Optional[T]) HasValue() bool {
	return o.set
}

// Reset makes the Optional empty again.
func (o *Optional[T]) Reset() {
	var zero T
	o.value = zero
	o.set = false
}
