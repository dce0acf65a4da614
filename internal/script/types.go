package script

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/funvibe/langkit/internal/config"
	"github.com/funvibe/langkit/pkg/rules"
	"github.com/funvibe/langkit/pkg/typesystem"
)

// Type is a primitive type of the script language.
type Type uint8

const (
	Int Type = iota
	Float
	String
	Bool
)

var (
	_ typesystem.Type                 = Int
	_ typesystem.InferPromotion[Type] = Int
)

func (t Type) Name() string {
	switch t {
	case Int:
		return config.IntTypeName
	case Float:
		return config.FloatTypeName
	case String:
		return config.StringTypeName
	case Bool:
		return config.BoolTypeName
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

func (t Type) String() string { return t.Name() }

// InferPromotion reports the implicit widening from t to dest. Only int
// promotes, to float.
func (t Type) InferPromotion(dest Type) (Type, bool) {
	if t == Int && dest == Float {
		return Float, true
	}
	return t, false
}

// TypeByName returns the builtin type called name.
func TypeByName(name string) (Type, bool) {
	for _, t := range []Type{Int, Float, String, Bool} {
		if t.Name() == name {
			return t, true
		}
	}
	return 0, false
}

var (
	ErrNotInt      = errors.New("value is not an int")
	ErrIntOverflow = errors.New("int overflow")
)

// Value is a script value. Only the field matching Type is meaningful.
type Value struct {
	ty Type
	i  int64
	f  float64
	s  string
	b  bool
}

var (
	_ typesystem.FindType[Type]       = Value{}
	_ typesystem.Coercer[Type, Value] = Value{}
	_ typesystem.Caster[Type, Value]  = Value{}
	_ typesystem.Extractor[int64]     = Value{}
)

func IntValue(n int64) Value     { return Value{ty: Int, i: n} }
func FloatValue(f float64) Value { return Value{ty: Float, f: f} }
func StringValue(s string) Value { return Value{ty: String, s: s} }
func BoolValue(b bool) Value     { return Value{ty: Bool, b: b} }

func (v Value) TypeOf() Type { return v.ty }

func (v Value) String() string {
	switch v.ty {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	case Bool:
		return strconv.FormatBool(v.b)
	default:
		return "<invalid>"
	}
}

// Coerce applies the implicit promotion to dest, if there is one.
func (v Value) Coerce(dest Type) Value {
	if to, ok := v.ty.InferPromotion(dest); ok && to == Float {
		return FloatValue(float64(v.i))
	}
	return v
}

// Cast converts v to dest. Impossible casts return v unchanged.
func (v Value) Cast(dest Type) Value {
	if v.ty == dest {
		return v
	}
	switch dest {
	case Int:
		switch v.ty {
		case Float:
			return IntValue(int64(v.f))
		case Bool:
			if v.b {
				return IntValue(1)
			}
			return IntValue(0)
		}
	case Float:
		if v.ty == Int {
			return FloatValue(float64(v.i))
		}
	case String:
		return StringValue(v.String())
	case Bool:
		switch v.ty {
		case Int:
			return BoolValue(v.i != 0)
		case Float:
			return BoolValue(v.f != 0)
		}
	}
	return v
}

func (v Value) Extract() (int64, error) {
	if v.ty != Int {
		return 0, fmt.Errorf("%w: got %s", ErrNotInt, v.ty)
	}
	return v.i, nil
}

// ParseLiteral reads a literal and infers its type: a double-quoted string,
// true or false, an integer, or a float.
func ParseLiteral(text string) (Value, error) {
	switch text {
	case "true":
		return BoolValue(true), nil
	case "false":
		return BoolValue(false), nil
	}
	if m, end, ok := rules.MatchString(text, 0); ok {
		if end != len(text) {
			return Value{}, fmt.Errorf("trailing input after string literal %s", m.Raw)
		}
		s, err := rules.ConvertString(m)
		if err != nil {
			return Value{}, fmt.Errorf("string literal %s: %w", m.Raw, err)
		}
		return StringValue(s), nil
	}
	if n, err := rules.ParseInt(text); err == nil {
		return IntValue(n), nil
	}
	f, err := rules.ParseFloat(text)
	if err != nil {
		return Value{}, fmt.Errorf("cannot parse literal %q", text)
	}
	return FloatValue(f), nil
}

// ConvertTo coerces v for storage in a slot of type dest.
func ConvertTo(v Value, dest Type) (Value, error) {
	if v.ty == dest {
		return v, nil
	}
	if _, ok := v.ty.InferPromotion(dest); ok {
		return v.Coerce(dest), nil
	}
	return Value{}, fmt.Errorf("cannot use %s value %s as %s", v.ty, v, dest)
}

// AddOperator implements + for numbers and string concatenation.
type AddOperator struct{}

var (
	_ typesystem.BinaryOperator[Type, Value] = AddOperator{}
	_ typesystem.InferTypesBinary[Type]      = AddOperator{}
)

func (AddOperator) InferTypes(left, right Type) (typesystem.BinaryOpTypes[Type], bool) {
	switch {
	case left == right && left != Bool:
		return typesystem.BinaryOpTypes[Type]{Result: left, Left: left, Right: right}, true
	case left == Float && right == Int, left == Int && right == Float:
		return typesystem.BinaryOpTypes[Type]{Result: Float, Left: Float, Right: Float}, true
	default:
		return typesystem.BinaryOpTypes[Type]{}, false
	}
}

// Apply adds left and right, which must already be coerced to ty.
func (AddOperator) Apply(ty Type, left, right Value) (Value, error) {
	if left.ty != ty || right.ty != ty {
		return Value{}, fmt.Errorf("operands %s + %s do not match %s", left.ty, right.ty, ty)
	}
	switch ty {
	case Int:
		sum := left.i + right.i
		if (left.i >= 0) == (right.i >= 0) && (sum >= 0) != (left.i >= 0) {
			return Value{}, fmt.Errorf("%w in %s + %s", ErrIntOverflow, left, right)
		}
		return IntValue(sum), nil
	case Float:
		return FloatValue(left.f + right.f), nil
	case String:
		return StringValue(left.s + right.s), nil
	default:
		return Value{}, fmt.Errorf("cannot add %s values", ty)
	}
}
