// Package contexts provides a type-safe wrapper around context.Context key/value
// storage, used by the tests package to thread test metadata (tests.Info) through
// a context without stringly-typed keys.
package contexts

import "context"

// WithValue is a type-safe wrapper around context.WithValue that stores a value
// of type V under a key of type K. If ctx is nil, a new background context is
// created rather than panicking on the nil Context context.WithValue requires.
func WithValue[K any, V any](ctx context.Context, key K, value V) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, key, value)
}

// GetValue is a type-safe wrapper around context.Value that retrieves a value of
// type V stored under a key of type K. Returns the value and true if found and
// the stored value's type matches V, or the zero value of V and false otherwise.
func GetValue[K any, V any](ctx context.Context, key K) (V, bool) {
	var zero V

	if ctx == nil {
		return zero, false
	}

	val := ctx.Value(key)
	if val == nil {
		return zero, false
	}

	v, ok := val.(V)
	if !ok {
		return zero, false
	}

	return v, true
}
