package typesystem

// InferPromotion reports whether a value of the receiver type needs promoting
// to reach dest. It returns false both when no promotion is possible and when
// none is needed.
type InferPromotion[T Type] interface {
	InferPromotion(dest T) (T, bool)
}

// BinaryOpTypes holds the inferred result type and the operand types a binary
// operation requires.
type BinaryOpTypes[T Type] struct {
	Result T
	Left   T
	Right  T
}

// InferTypesBinary infers operand coercions and the result type of a binary
// operation. ok is false when the operation is not defined for the operands.
type InferTypesBinary[T Type] interface {
	InferTypes(left, right T) (types BinaryOpTypes[T], ok bool)
}

// UnaryOpTypes holds the inferred result and operand types of a unary operation.
type UnaryOpTypes[T Type] struct {
	Result  T
	Operand T
}

// InferTypesUnary infers the operand coercion and result type of a unary operation.
type InferTypesUnary[T Type] interface {
	InferTypes(operand T) (types UnaryOpTypes[T], ok bool)
}
