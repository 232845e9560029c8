// Package lazy provides a process-wide singleton that is created on first use
// rather than at package-init time — used for the default/background
// executors (§4.3) and for process attributes like the hostname, none of
// which should run their (possibly expensive, possibly order-sensitive)
// constructor before the program actually needs them.
package lazy

import "sync"

// Of is a value initialized at most once, on first Get.
type Of[T any] struct {
	once  sync.Once
	value T
	build func() T
}

// Get returns the value, running build exactly once across all callers.
func (o *Of[T]) Get() T { //nolint:ireturn
	o.once.Do(func() {
		o.value = o.build()
	})

	return o.value
}

// New returns a lazy value that calls build the first time Get is called.
func New[T any](build func() T) *Of[T] {
	return &Of[T]{build: build}
}
