package typesystem

// BinaryOperator computes the result of a binary operation whose result type
// has already been inferred.
type BinaryOperator[T Type, V Value] interface {
	Apply(ty T, left, right V) (V, error)
}

// UnaryOperator computes the result of a unary operation.
type UnaryOperator[T Type, V Value] interface {
	Apply(ty T, operand V) (V, error)
}
