package scope

import "github.com/funvibe/langkit/pkg/ident"

// Ref is a handle on one scope of an arena. The zero Ref denotes no scope;
// only IsZero, ID and String may be called on it. A Ref is a small comparable value:
// two Refs are equal exactly when they denote the same scope of the same
// arena, so a compiler can keep a Ref as its "current scope" and replace it on
// block entry and exit:
//
//	cur = cur.Push()
//	...
//	cur, _ = cur.Pop()
type Ref[S, V any] struct {
	arena *Arena[S, V]
	id    ID
}

// Ref returns a handle on id.
func (a *Arena[S, V]) Ref(id ID) Ref[S, V] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	a.node(id)
	return Ref[S, V]{arena: a, id: id}
}

// RootRef returns a handle on the root scope.
func (a *Arena[S, V]) RootRef() Ref[S, V] {
	return Ref[S, V]{arena: a, id: a.Root()}
}

func (r Ref[S, V]) Arena() *Arena[S, V] { return r.arena }
func (r Ref[S, V]) ID() ID              { return r.id }
func (r Ref[S, V]) IsZero() bool        { return r.arena == nil }
func (r Ref[S, V]) String() string      { return r.id.String() }

// must returns the arena behind r. The zero Ref has none and panics like
// any other invalid scope.
func (r Ref[S, V]) must() *Arena[S, V] {
	if r.arena == nil {
		panic("scope: zero Ref")
	}
	return r.arena
}

// Push enters a new child scope.
func (r Ref[S, V]) Push() Ref[S, V] {
	return Ref[S, V]{arena: r.arena, id: r.must().Push(r.id)}
}

// Pop returns the enclosing scope, or false at the root.
func (r Ref[S, V]) Pop() (Ref[S, V], bool) {
	parent, ok := r.must().Pop(r.id)
	if !ok {
		return Ref[S, V]{}, false
	}
	return Ref[S, V]{arena: r.arena, id: parent}, true
}

func (r Ref[S, V]) Depth() int { return r.must().Depth(r.id) }

func (r Ref[S, V]) SymbolSet(name ident.Identifier, sym S) (S, bool) {
	return r.must().SymbolSet(r.id, name, sym)
}

func (r Ref[S, V]) SymbolGet(name ident.Identifier) (S, bool) {
	return r.must().SymbolGet(r.id, name)
}

func (r Ref[S, V]) Define(name ident.Identifier, sym S) (S, bool) {
	return r.must().Define(r.id, name, sym)
}

func (r Ref[S, V]) Resolve(name ident.Identifier) (S, bool) {
	return r.must().Resolve(r.id, name)
}

// ResolveWithScope returns the symbol and a handle on the declaring scope.
func (r Ref[S, V]) ResolveWithScope(name ident.Identifier) (S, Ref[S, V], bool) {
	sym, at, ok := r.must().ResolveWithScope(r.id, name)
	if !ok {
		return sym, Ref[S, V]{}, false
	}
	return sym, Ref[S, V]{arena: r.arena, id: at}, true
}

func (r Ref[S, V]) Memory(name ident.Identifier) Binding[V] {
	return r.must().Memory(r.id, name)
}

func (r Ref[S, V]) Set(name ident.Identifier, value V) (V, bool, error) {
	return r.must().Set(r.id, name, value)
}

func (r Ref[S, V]) Get(name ident.Identifier) (V, bool) {
	return r.must().Get(r.id, name)
}

func (r Ref[S, V]) Lookup(name ident.Identifier) Binding[V] {
	return r.must().Lookup(r.id, name)
}

func (r Ref[S, V]) Entries() []Entry[S, V] {
	return r.must().Entries(r.id)
}

// Scoped is implemented by objects that record the scope they were resolved
// in, typically AST annotations.
type Scoped[S, V any] interface {
	Scope() (Ref[S, V], bool)
	SetScope(ref Ref[S, V])
	ClearScope()
}

// Annotation is a Scoped value to embed in, or use as, an AST node
// annotation. It is a weak back-reference: it relates a node to the scope it
// was resolved in and allows lookups there, but it does not own the scope.
// Many nodes may share one scope; changes made through any of them are seen
// by all.
type Annotation[S, V any] struct {
	scope Ref[S, V]
}

var _ Scoped[int, int] = (*Annotation[int, int])(nil)

func (an *Annotation[S, V]) Scope() (Ref[S, V], bool) {
	return an.scope, !an.scope.IsZero()
}

func (an *Annotation[S, V]) SetScope(ref Ref[S, V]) {
	an.scope = ref
}

func (an *Annotation[S, V]) ClearScope() {
	an.scope = Ref[S, V]{}
}
