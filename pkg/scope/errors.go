package scope

import (
	"errors"
	"fmt"

	"github.com/funvibe/langkit/pkg/ident"
)

// ErrUndeclared is matched by errors.Is for every *UndeclaredError.
var ErrUndeclared = errors.New("undeclared symbol")

// UndeclaredError reports an assignment to a name that no scope on the chain
// declares.
type UndeclaredError struct {
	Name  ident.Identifier
	Scope ID // scope the assignment started from
}

// NewUndeclaredError reports that name was assigned from scope without being
// declared on its chain.
func NewUndeclaredError(name ident.Identifier, scope ID) *UndeclaredError {
	return &UndeclaredError{Name: name, Scope: scope}
}

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("attempt to set memory for missing symbol: %s", e.Name)
}

func (e *UndeclaredError) Is(target error) bool {
	return target == ErrUndeclared
}
