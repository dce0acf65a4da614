package symbols

import (
	"testing"

	"github.com/funvibe/langkit/pkg/ident"
	"github.com/stretchr/testify/assert"
)

type testType string

func (t testType) Name() string   { return string(t) }
func (t testType) String() string { return string(t) }

func TestSymbolString(t *testing.T) {
	tests := []struct {
		name string
		sym  Symbol[testType]
		want string
	}{
		{"typed variable", Variable(ident.New("x"), testType("int")), "x:int"},
		{"untyped variable", UntypedVariable[testType](ident.New("y")), "y:<null>"},
		{"builtin type", BuiltinType(ident.New("float"), testType("float")), "float:float"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sym.String())
		})
	}
}

func TestSymbolKinds(t *testing.T) {
	v := UntypedVariable[testType](ident.New("v"))
	assert.True(t, v.IsVariable())
	assert.False(t, v.IsBuiltinType())

	_, ok := v.TypeOf()
	assert.False(t, ok)

	typed := v.WithType("bool")
	ty, ok := typed.TypeOf()
	assert.True(t, ok)
	assert.Equal(t, testType("bool"), ty)
	assert.Equal(t, "v:<null>", v.String(), "WithType must not modify the receiver")

	b := BuiltinType(ident.New("int"), testType("int"))
	assert.True(t, b.IsBuiltinType())
	assert.Equal(t, "builtin type", b.Kind.String())
}
