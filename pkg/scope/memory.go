package scope

import (
	"fmt"

	"github.com/funvibe/langkit/pkg/ident"
)

// State describes a name's memory slot as seen from some scope.
type State uint8

const (
	Undeclared State = iota // no declaration found
	Unassigned              // declared, no value yet
	Assigned                // declared and holding a value
)

func (s State) String() string {
	switch s {
	case Undeclared:
		return "undeclared"
	case Unassigned:
		return "unassigned"
	case Assigned:
		return "assigned"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Binding is the result of a memory lookup. Scope is the declaring scope, or
// NoScope when State is Undeclared.
type Binding[V any] struct {
	Value V
	State State
	Scope ID
}

func (b Binding[V]) Declared() bool { return b.State != Undeclared }
func (b Binding[V]) Assigned() bool { return b.State == Assigned }

// Get returns the value and whether one is assigned.
func (b Binding[V]) Get() (V, bool) { return b.Value, b.State == Assigned }

func bindingOf[S, V any](at ID, s *slot[S, V]) Binding[V] {
	if !s.assigned {
		return Binding[V]{State: Unassigned, Scope: at}
	}
	return Binding[V]{Value: s.value, State: Assigned, Scope: at}
}

// Memory reads the slot for name in scope id only.
func (a *Arena[S, V]) Memory(id ID, name ident.Identifier) Binding[V] {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.node(id).table[name]
	if !ok {
		return Binding[V]{}
	}
	return bindingOf(id, s)
}

// StoreLocal assigns value to name if name is declared in id itself. It returns
// the previous binding and whether the name was declared there.
func (a *Arena[S, V]) StoreLocal(id ID, name ident.Identifier, value V) (Binding[V], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.node(id).table[name]
	if !ok {
		return Binding[V]{}, false
	}
	prev := bindingOf(id, s)
	s.value, s.assigned = value, true
	return prev, true
}

// ClearLocal resets the slot for name in id to unassigned, keeping the
// declaration. It returns the previous binding and whether the name was
// declared there.
func (a *Arena[S, V]) ClearLocal(id ID, name ident.Identifier) (Binding[V], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.node(id).table[name]
	if !ok {
		return Binding[V]{}, false
	}
	prev := bindingOf(id, s)
	var zero V
	s.value, s.assigned = zero, false
	return prev, true
}

// Set assigns value to the nearest declaration of name visible from id and
// returns the value it replaced, if any. Set never declares: when no scope on
// the chain declares name it returns an *UndeclaredError.
func (a *Arena[S, V]) Set(id ID, name ident.Identifier, value V) (V, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero V
	at, s, ok := a.find(id, name)
	if !ok {
		return zero, false, NewUndeclaredError(name, id)
	}
	prev, had := s.value, s.assigned
	s.value, s.assigned = value, true
	a.logger.Debug("memory set", "scope", id, "declared_in", at, "name", name)
	if !had {
		return zero, false, nil
	}
	return prev, true, nil
}

// Get returns the value held by the nearest declaration of name visible from
// id. The result is false both when that declaration is unassigned and when
// name is not declared at all; use Lookup to tell the two apart.
func (a *Arena[S, V]) Get(id ID, name ident.Identifier) (V, bool) {
	return a.Lookup(id, name).Get()
}

// Lookup returns the binding of the nearest declaration of name visible from id.
func (a *Arena[S, V]) Lookup(id ID, name ident.Identifier) Binding[V] {
	a.mu.RLock()
	defer a.mu.RUnlock()

	at, s, ok := a.find(id, name)
	if !ok {
		return Binding[V]{}
	}
	return bindingOf(at, s)
}

// Entry is one declaration of a scope's table.
type Entry[S, V any] struct {
	Name    ident.Identifier
	Symbol  S
	Binding Binding[V]
}

func (e Entry[S, V]) String() string {
	if v, ok := e.Binding.Get(); ok {
		return fmt.Sprintf("%v {%v}", e.Symbol, v)
	}
	return fmt.Sprintf("%v", e.Symbol)
}

// Entries returns the declarations of id in declaration order.
func (a *Arena[S, V]) Entries(id ID) []Entry[S, V] {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := a.node(id)
	out := make([]Entry[S, V], 0, len(n.order))
	for _, name := range n.order {
		s := n.table[name]
		out = append(out, Entry[S, V]{Name: name, Symbol: s.symbol, Binding: bindingOf(id, s)})
	}
	return out
}
