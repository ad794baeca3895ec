package search

// Sequence is a fixed-length, randomly indexable collection. A search only
// reads from it, concurrently, and expects it not to change while the search
// is running.
type Sequence[T any] interface {
	Len() int
	At(i int) T
}

// Slice adapts a Go slice to the Sequence interface.
type Slice[T any] []T

// Len returns the number of elements.
func (s Slice[T]) Len() int { return len(s) }

// At returns the element at index i.
func (s Slice[T]) At(i int) T { return s[i] }

// EqualFunc reports whether an element matches the target. A panic raised
// by an EqualFunc is reported as a worker fault.
type EqualFunc[T any] func(element, target T) bool

// Equal is the value-equality EqualFunc for comparable types.
func Equal[T comparable](element, target T) bool { return element == target }
