// Package symbols provides the default symbol descriptor stored in scope
// symbol tables.
package symbols

import (
	"fmt"

	"github.com/funvibe/langkit/pkg/ident"
	"github.com/funvibe/langkit/pkg/typesystem"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	BuiltinTypeSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case BuiltinTypeSymbol:
		return "builtin type"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// Symbol describes a declared name. A variable's type may be unknown for part
// of compilation; builtin types always carry one.
type Symbol[T typesystem.Type] struct {
	Kind    SymbolKind
	Name    ident.Identifier
	Type    T
	HasType bool
}

// Variable declares a variable with a known type.
func Variable[T typesystem.Type](name ident.Identifier, ty T) Symbol[T] {
	return Symbol[T]{Kind: VariableSymbol, Name: name, Type: ty, HasType: true}
}

// UntypedVariable declares a variable whose type is not yet known.
func UntypedVariable[T typesystem.Type](name ident.Identifier) Symbol[T] {
	return Symbol[T]{Kind: VariableSymbol, Name: name}
}

// BuiltinType declares a name that denotes the type ty itself.
func BuiltinType[T typesystem.Type](name ident.Identifier, ty T) Symbol[T] {
	return Symbol[T]{Kind: BuiltinTypeSymbol, Name: name, Type: ty, HasType: true}
}

// TypeOf returns the symbol's type if known.
func (s Symbol[T]) TypeOf() (T, bool) {
	return s.Type, s.HasType
}

// WithType returns a copy of s with its type set.
func (s Symbol[T]) WithType(ty T) Symbol[T] {
	s.Type = ty
	s.HasType = true
	return s
}

func (s Symbol[T]) IsVariable() bool    { return s.Kind == VariableSymbol }
func (s Symbol[T]) IsBuiltinType() bool { return s.Kind == BuiltinTypeSymbol }

func (s Symbol[T]) String() string {
	if !s.HasType {
		return fmt.Sprintf("%s:<null>", s.Name)
	}
	return fmt.Sprintf("%s:%s", s.Name, s.Type)
}
