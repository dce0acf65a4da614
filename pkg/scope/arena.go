// Package scope implements nested lexical scopes for compilers and
// interpreters. A single Arena backs both the compile-time view (which symbol
// does a name resolve to) and the run-time view (which value does a declared
// name currently hold).
//
// Every scope node lives in an Arena and refers to its parent by ID, so an
// enclosing scope stays reachable for as long as the arena does, no matter how
// many sibling blocks were entered and left below it. Chain walks are loops
// over parent IDs and never recurse.
//
// Lookups that find nothing are ordinary results, not errors. Assigning to a
// name that was never declared along the chain fails with an *UndeclaredError.
// Passing an ID that does not belong to the arena is a caller bug and panics.
package scope

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/funvibe/langkit/pkg/ident"
	"github.com/google/uuid"
)

// ID identifies a scope node inside one Arena. The zero ID is NoScope.
type ID struct {
	arena uuid.UUID
	index uint32
}

// NoScope marks the absence of a scope, e.g. the parent of a root.
var NoScope ID

// IsValid reports whether id refers to an allocated scope in some arena.
func (id ID) IsValid() bool { return id.arena != uuid.Nil }

func (id ID) String() string {
	if !id.IsValid() {
		return "scope(none)"
	}
	return fmt.Sprintf("scope#%d", id.index)
}

type slot[S, V any] struct {
	symbol   S
	value    V
	assigned bool
}

type node[S, V any] struct {
	parent ID
	depth  int
	table  map[ident.Identifier]*slot[S, V]
	order  []ident.Identifier
}

func newNode[S, V any](parent ID, depth int) *node[S, V] {
	return &node[S, V]{
		parent: parent,
		depth:  depth,
		table:  make(map[ident.Identifier]*slot[S, V]),
	}
}

// Arena owns a tree of scopes whose tables map identifiers to a symbol of type
// S and a memory slot holding an optional value of type V. Symbol-only users
// pick SymbolArena.
//
// An Arena is safe for concurrent use. All tables share one RWMutex: lookups
// hold the read lock, declarations and assignments the write lock, so a write
// is visible to every lookup that starts after it.
type Arena[S, V any] struct {
	mu     sync.RWMutex
	id     uuid.UUID
	nodes  []*node[S, V]
	logger *slog.Logger
}

// SymbolArena is an Arena used purely as a symbol table.
type SymbolArena[S any] = Arena[S, struct{}]

type options struct {
	logger   *slog.Logger
	capacity int
}

// Option configures an Arena.
type Option func(*options)

// WithLogger sets the logger for scope and declaration tracing.
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCapacity preallocates room for n scopes.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// New creates an arena holding a single empty root scope.
func New[S, V any](opts ...Option) *Arena[S, V] {
	o := options{capacity: 16}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &Arena[S, V]{
		id:     uuid.New(),
		nodes:  make([]*node[S, V], 0, o.capacity),
		logger: logger,
	}
	a.nodes = append(a.nodes, newNode[S, V](NoScope, 0))
	return a
}

// NewSymbolArena creates an arena used purely as a symbol table.
func NewSymbolArena[S any](opts ...Option) *SymbolArena[S] {
	return New[S, struct{}](opts...)
}

// Root returns the root scope.
func (a *Arena[S, V]) Root() ID {
	return ID{arena: a.id, index: 0}
}

// Len returns the number of scopes ever pushed, including the root.
func (a *Arena[S, V]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// Scopes returns every scope of the arena in allocation order; the root comes
// first and a parent always precedes its children.
func (a *Arena[S, V]) Scopes() []ID {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]ID, len(a.nodes))
	for i := range a.nodes {
		ids[i] = ID{arena: a.id, index: uint32(i)}
	}
	return ids
}

// Contains reports whether id was allocated by this arena.
func (a *Arena[S, V]) Contains(id ID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return id.arena == a.id && int(id.index) < len(a.nodes)
}

// Push creates a child scope of parent with an empty table.
func (a *Arena[S, V]) Push(parent ID) ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.node(parent)
	child := ID{arena: a.id, index: uint32(len(a.nodes))}
	a.nodes = append(a.nodes, newNode[S, V](parent, p.depth+1))

	a.logger.Debug("scope pushed", "scope", child, "parent", parent, "depth", p.depth+1)
	return child
}

// Pop returns the parent of id, or false if id is the root. The scope itself is
// left untouched; it stays valid and may be pushed onto again.
func (a *Arena[S, V]) Pop(id ID) (ID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := a.node(id)
	return n.parent, n.parent.IsValid()
}

// Depth returns the nesting depth of id; the root has depth 0.
func (a *Arena[S, V]) Depth(id ID) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.node(id).depth
}

// Ancestors returns the chain from id up to and including the root.
func (a *Arena[S, V]) Ancestors(id ID) []ID {
	a.mu.RLock()
	defer a.mu.RUnlock()

	chain := make([]ID, 0, a.node(id).depth+1)
	for cur := id; cur.IsValid(); cur = a.nodes[cur.index].parent {
		chain = append(chain, cur)
	}
	return chain
}

// node returns the node for id. Callers must hold a.mu.
func (a *Arena[S, V]) node(id ID) *node[S, V] {
	if id.arena != a.id {
		if !id.IsValid() {
			panic("scope: use of NoScope")
		}
		panic(fmt.Sprintf("scope: %s belongs to arena %s, not %s", id, id.arena, a.id))
	}
	if int(id.index) >= len(a.nodes) {
		panic(fmt.Sprintf("scope: %s out of range", id))
	}
	return a.nodes[id.index]
}

// find walks from id towards the root and returns the scope whose table
// declares name. Callers must hold a.mu.
func (a *Arena[S, V]) find(id ID, name ident.Identifier) (ID, *slot[S, V], bool) {
	a.node(id)
	for cur := id; cur.IsValid(); {
		n := a.nodes[cur.index]
		if s, ok := n.table[name]; ok {
			return cur, s, true
		}
		cur = n.parent
	}
	return NoScope, nil, false
}
