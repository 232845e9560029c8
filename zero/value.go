// Package zero provides the generic zero value used to fill a Try's Value
// field whenever a future completes with an error (§3: the slot still needs
// a T to store alongside the error, and there is no "absent" value for an
// arbitrary type parameter beyond its own zero value).
package zero

// Value returns the zero value for type T.
//
// Example:
//
//	var defaultInt = zero.Value[int]()        // returns 0
//	var defaultPtr = zero.Value[*MyStruct]()  // returns nil
func Value[T any]() T {
	var zeroVal T

	return zeroVal
}
