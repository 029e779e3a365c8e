package types

import "github.com/you-not-fish/ktc/internal/syntax"

// Assignable reports whether a value of type src may be stored in a binding,
// parameter or return slot of type dst. Int widens to Float; nothing else converts.
func Assignable(dst, src Basic) bool {
	if dst == Invalid || src == Invalid {
		return false
	}
	return dst == src || dst == Float && src == Int
}

// promote returns the common numeric type of x and y.
func promote(x, y Basic) Basic {
	if x == Float || y == Float {
		return Float
	}
	return Int
}

// BinaryResult returns the result type of x op y, or ok == false if the
// operator is not defined for those operand types.
func BinaryResult(op syntax.Kind, x, y Basic) (res Basic, ok bool) {
	if x == Invalid || y == Invalid {
		return Invalid, false
	}
	switch op {
	case syntax.PLUS:
		if x == String || y == String {
			return String, true
		}
		fallthrough
	case syntax.MINUS, syntax.MUL, syntax.DIV, syntax.MOD:
		if x.IsNumeric() && y.IsNumeric() {
			return promote(x, y), true
		}

	case syntax.EQ, syntax.NE:
		if x == y || x.IsNumeric() && y.IsNumeric() {
			return Boolean, true
		}

	case syntax.LT, syntax.GT, syntax.LE, syntax.GE:
		if x.IsNumeric() && y.IsNumeric() || x == String && y == String {
			return Boolean, true
		}

	case syntax.AND, syntax.OR:
		if x == Boolean && y == Boolean {
			return Boolean, true
		}
	}
	return Invalid, false
}

// UnaryResult returns the result type of op x.
func UnaryResult(op syntax.Kind, x Basic) (res Basic, ok bool) {
	switch op {
	case syntax.NOT:
		if x == Boolean {
			return Boolean, true
		}
	case syntax.MINUS, syntax.PLUS, syntax.INCREMENT, syntax.DECREMENT:
		if x.IsNumeric() {
			return x, true
		}
	}
	return Invalid, false
}

// CompoundOp returns the binary operator applied by a compound assignment
// (PLUS for PLUS_ASSIGN, ...), or ASSIGN for plain assignment.
func CompoundOp(op syntax.Kind) syntax.Kind {
	switch op {
	case syntax.PLUS_ASSIGN:
		return syntax.PLUS
	case syntax.MINUS_ASSIGN:
		return syntax.MINUS
	case syntax.MUL_ASSIGN:
		return syntax.MUL
	case syntax.DIV_ASSIGN:
		return syntax.DIV
	case syntax.MOD_ASSIGN:
		return syntax.MOD
	}
	return syntax.ASSIGN
}
