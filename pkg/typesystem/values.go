package typesystem

import "fmt"

// Value is a run-time value in the hosted language. Values are stored by copy
// in memory slots, so implementations should behave as immutable values.
type Value interface {
	fmt.Stringer
}

// Coercer converts a value to a destination type as part of implicit
// conversion (e.g. assigning an int literal to a float variable).
type Coercer[T Type, V any] interface {
	Coerce(dest T) V
}

// Caster converts a value to a destination type on explicit request.
// Implementations return the value unchanged when the cast is impossible.
type Caster[T Type, V any] interface {
	Cast(dest T) V
}

// Extractor unwraps a host Go value of type R. It fails when the value holds a
// different variant.
type Extractor[R any] interface {
	Value
	Extract() (R, error)
}
