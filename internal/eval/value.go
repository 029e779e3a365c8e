package eval

import (
	"strconv"

	"github.com/you-not-fish/ktc/internal/types"
)

// Value is a runtime value: one of the builtin types and its payload.
// Values are copied on assignment and argument passing.
type Value struct {
	Type types.Basic
	i    int64 // Int; Boolean as 0 or 1
	f    float64
	s    string
}

// Unit is the single value of type Unit.
var Unit = Value{Type: types.Unit}

func IntValue(i int64) Value     { return Value{Type: types.Int, i: i} }
func FloatValue(f float64) Value { return Value{Type: types.Float, f: f} }
func StringValue(s string) Value { return Value{Type: types.String, s: s} }

func BoolValue(b bool) Value {
	v := Value{Type: types.Boolean}
	if b {
		v.i = 1
	}
	return v
}

// Int returns the payload of an Int value.
func (v Value) Int() int64 { return v.i }

// Float returns the payload of a numeric value as a float, widening Int.
func (v Value) Float() float64 {
	if v.Type == types.Int {
		return float64(v.i)
	}
	return v.f
}

// Bool returns the payload of a Boolean value.
func (v Value) Bool() bool { return v.i != 0 }

// Str returns the payload of a String value.
func (v Value) Str() string { return v.s }

// convert returns v as a value of type t, widening Int to Float.
// The caller has checked types.Assignable(t, v.Type).
func (v Value) convert(t types.Basic) Value {
	if t == types.Float && v.Type == types.Int {
		return FloatValue(float64(v.i))
	}
	return v
}

// String returns the canonical text of v, as println prints it and as
// string concatenation embeds it.
func (v Value) String() string {
	switch v.Type {
	case types.Int:
		return strconv.FormatInt(v.i, 10)
	case types.Float:
		return FormatFloat(v.f)
	case types.String:
		return v.s
	case types.Boolean:
		return strconv.FormatBool(v.Bool())
	case types.Unit:
		return "kotlin.Unit"
	}
	return "<invalid>"
}

// FormatFloat formats f like C's printf("%g"): six significant digits,
// trailing zeros removed, exponent form outside [1e-4, 1e6).
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
