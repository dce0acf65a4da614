package scope

import "github.com/funvibe/langkit/pkg/ident"

// SymbolSet declares name in scope id only, replacing any local declaration.
// It returns the symbol previously declared under name in this scope; outer
// scopes are not consulted. The memory slot is (re)created unassigned.
func (a *Arena[S, V]) SymbolSet(id ID, name ident.Identifier, sym S) (S, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.node(id)
	prev, existed := n.table[name]
	n.table[name] = &slot[S, V]{symbol: sym}
	if !existed {
		n.order = append(n.order, name)
		a.logger.Debug("symbol declared", "scope", id, "name", name)
		var zero S
		return zero, false
	}
	a.logger.Debug("symbol redeclared", "scope", id, "name", name)
	return prev.symbol, true
}

// SymbolGet returns the symbol declared under name in scope id only.
func (a *Arena[S, V]) SymbolGet(id ID, name ident.Identifier) (S, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if s, ok := a.node(id).table[name]; ok {
		return s.symbol, true
	}
	var zero S
	return zero, false
}

// Define declares name in scope id. A declaration in an inner scope shadows
// outer declarations of the same name without touching them.
func (a *Arena[S, V]) Define(id ID, name ident.Identifier, sym S) (S, bool) {
	return a.SymbolSet(id, name, sym)
}

// Resolve finds the nearest declaration of name, searching from id outwards.
func (a *Arena[S, V]) Resolve(id ID, name ident.Identifier) (S, bool) {
	sym, _, ok := a.ResolveWithScope(id, name)
	return sym, ok
}

// ResolveWithScope is Resolve that also reports the declaring scope.
func (a *Arena[S, V]) ResolveWithScope(id ID, name ident.Identifier) (S, ID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	at, s, ok := a.find(id, name)
	if !ok {
		var zero S
		return zero, NoScope, false
	}
	return s.symbol, at, true
}

// IsDefined reports whether name resolves from id.
func (a *Arena[S, V]) IsDefined(id ID, name ident.Identifier) bool {
	_, _, ok := a.ResolveWithScope(id, name)
	return ok
}

// IsDefinedLocally reports whether name is declared in id itself.
func (a *Arena[S, V]) IsDefinedLocally(id ID, name ident.Identifier) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.node(id).table[name]
	return ok
}

// Names returns the names declared in id, in declaration order.
func (a *Arena[S, V]) Names(id ID) []ident.Identifier {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := a.node(id)
	out := make([]ident.Identifier, len(n.order))
	copy(out, n.order)
	return out
}

// Visible returns every name that resolves from id, innermost scope first.
// Shadowed outer declarations are listed once.
func (a *Arena[S, V]) Visible(id ID) []ident.Identifier {
	a.mu.RLock()
	defer a.mu.RUnlock()

	a.node(id)
	seen := make(map[ident.Identifier]bool)
	var names []ident.Identifier
	for cur := id; cur.IsValid(); cur = a.nodes[cur.index].parent {
		for _, name := range a.nodes[cur.index].order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
