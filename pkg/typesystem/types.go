// Package typesystem declares the capability traits a language front end
// implements for its types and values. The scope subsystem stays agnostic of
// them; they exist so symbol and value types plugged into scope tables share a
// common vocabulary for naming, coercion, casting and operator typing.
package typesystem

import "fmt"

// Type is a type in the hosted language.
type Type interface {
	fmt.Stringer
	// Name is the display name of the type.
	Name() string
}

// FindType is implemented by values that know their own type.
type FindType[T Type] interface {
	Value
	TypeOf() T
}

// Typed gives access to type information attached to an object, typically an
// AST annotation. The promotion type is the type the object must be promoted
// to before use; it defaults to the object's own type.
type Typed[T Type] interface {
	Type() (T, bool)
	SetType(ty T)
	ClearType()
	PromoteType() (T, bool)
	SetPromoteType(ty T)
}

// TypeInfo is the stock Typed implementation.
type TypeInfo[T Type] struct {
	ty         T
	hasType    bool
	promote    T
	hasPromote bool
}

var _ Typed[Type] = (*TypeInfo[Type])(nil)

func (ti *TypeInfo[T]) Type() (T, bool) {
	return ti.ty, ti.hasType
}

func (ti *TypeInfo[T]) SetType(ty T) {
	ti.ty = ty
	ti.hasType = true
}

// ClearType unsets both the type and any promotion type.
func (ti *TypeInfo[T]) ClearType() {
	*ti = TypeInfo[T]{}
}

// PromoteType returns the promotion type, falling back to Type when none was set.
func (ti *TypeInfo[T]) PromoteType() (T, bool) {
	if ti.hasPromote {
		return ti.promote, true
	}
	return ti.Type()
}

func (ti *TypeInfo[T]) SetPromoteType(ty T) {
	ti.promote = ty
	ti.hasPromote = true
}
