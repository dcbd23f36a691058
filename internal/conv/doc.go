// Package conv provides checked integer conversions and byte-size parsing.
//
// The checked conversions guard values that come from outside the process:
// blob sizes reported by object stores, dictionary line ordinals, and
// limits read from the environment.
package conv
