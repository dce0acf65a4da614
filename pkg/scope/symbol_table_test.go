package scope

import (
	"testing"

	"github.com/funvibe/langkit/pkg/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadowing(t *testing.T) {
	a := New[string, int]()
	root := a.Root()
	a.Define(root, nm("x"), "A")
	child := a.Push(root)
	a.Define(child, nm("x"), "B")

	got, ok := a.Resolve(child, nm("x"))
	require.True(t, ok)
	assert.Equal(t, "B", got)

	got, ok = a.Resolve(root, nm("x"))
	require.True(t, ok)
	assert.Equal(t, "A", got, "inner definition must not touch the outer one")
}

func TestChainResolution(t *testing.T) {
	a := New[string, int]()
	root := a.Root()
	a.Define(root, nm("y"), "S")
	child := a.Push(a.Push(root))

	got, ok := a.Resolve(child, nm("y"))
	require.True(t, ok)
	assert.Equal(t, "S", got)

	_, at, ok := a.ResolveWithScope(child, nm("y"))
	require.True(t, ok)
	assert.Equal(t, root, at)
}

func TestUnknownIdentifier(t *testing.T) {
	a := New[string, int]()
	child := a.Push(a.Root())

	_, ok := a.Resolve(a.Root(), nm("z"))
	assert.False(t, ok)
	_, ok = a.Resolve(child, nm("z"))
	assert.False(t, ok)
	_, at, ok := a.ResolveWithScope(child, nm("z"))
	assert.False(t, ok)
	assert.Equal(t, NoScope, at)
	assert.False(t, a.IsDefined(child, nm("z")))
}

func TestSymbolSetReturnsLocalPrevious(t *testing.T) {
	a := New[string, int]()
	root := a.Root()
	a.Define(root, nm("x"), "outer")
	child := a.Push(root)

	prev, ok := a.SymbolSet(child, nm("x"), "first")
	assert.False(t, ok, "outer declaration is not a local previous entry")
	assert.Equal(t, "", prev)

	prev, ok = a.SymbolSet(child, nm("x"), "second")
	assert.True(t, ok)
	assert.Equal(t, "first", prev)

	got, _ := a.SymbolGet(child, nm("x"))
	assert.Equal(t, "second", got)
}

func TestSymbolGetIsLocal(t *testing.T) {
	a := New[string, int]()
	a.Define(a.Root(), nm("x"), "root")
	child := a.Push(a.Root())

	_, ok := a.SymbolGet(child, nm("x"))
	assert.False(t, ok)
	assert.False(t, a.IsDefinedLocally(child, nm("x")))
	assert.True(t, a.IsDefined(child, nm("x")))
	assert.True(t, a.IsDefinedLocally(a.Root(), nm("x")))
}

func TestNamesAndVisible(t *testing.T) {
	a := New[string, int]()
	root := a.Root()
	a.Define(root, nm("b"), "")
	a.Define(root, nm("a"), "")
	child := a.Push(root)
	a.Define(child, nm("c"), "")
	a.Define(child, nm("a"), "")
	a.Define(child, nm("c"), "")

	assert.Equal(t, []ident.Identifier{nm("b"), nm("a")}, a.Names(root))
	assert.Equal(t, []ident.Identifier{nm("c"), nm("a")}, a.Names(child), "redeclaration keeps the original position")
	assert.Equal(t, []ident.Identifier{nm("c"), nm("a"), nm("b")}, a.Visible(child))
}
