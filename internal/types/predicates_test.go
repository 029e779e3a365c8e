package types

import (
	"testing"

	"github.com/you-not-fish/ktc/internal/syntax"
)

func TestAssignable(t *testing.T) {
	tests := []struct {
		name     string
		dst, src Basic
		want     bool
	}{
		{"same int", Int, Int, true},
		{"same string", String, String, true},
		{"int widens to float", Float, Int, true},
		{"float does not narrow", Int, Float, false},
		{"bool to int", Int, Boolean, false},
		{"string to unit", Unit, String, false},
		{"invalid", Invalid, Invalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assignable(tt.dst, tt.src); got != tt.want {
				t.Errorf("Assignable(%s, %s) = %v, want %v", tt.dst, tt.src, got, tt.want)
			}
		})
	}
}

func TestBinaryResult(t *testing.T) {
	tests := []struct {
		name string
		op   syntax.Kind
		x, y Basic
		want Basic
		ok   bool
	}{
		{"int add", syntax.PLUS, Int, Int, Int, true},
		{"mixed add", syntax.PLUS, Int, Float, Float, true},
		{"string concat", syntax.PLUS, String, Int, String, true},
		{"concat right", syntax.PLUS, Boolean, String, String, true},
		{"bool add", syntax.PLUS, Boolean, Boolean, Invalid, false},
		{"string minus", syntax.MINUS, String, Int, Invalid, false},
		{"float mod", syntax.MOD, Float, Float, Float, true},
		{"int div", syntax.DIV, Int, Int, Int, true},
		{"eq same", syntax.EQ, String, String, Boolean, true},
		{"eq numeric", syntax.EQ, Int, Float, Boolean, true},
		{"eq mixed", syntax.EQ, Int, String, Invalid, false},
		{"lt strings", syntax.LT, String, String, Boolean, true},
		{"lt bools", syntax.LT, Boolean, Boolean, Invalid, false},
		{"and", syntax.AND, Boolean, Boolean, Boolean, true},
		{"or int", syntax.OR, Int, Boolean, Invalid, false},
		{"invalid operand", syntax.PLUS, Invalid, Int, Invalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BinaryResult(tt.op, tt.x, tt.y)
			if got != tt.want || ok != tt.ok {
				t.Errorf("BinaryResult(%s, %s, %s) = %s, %v; want %s, %v",
					tt.op, tt.x, tt.y, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUnaryResult(t *testing.T) {
	tests := []struct {
		op   syntax.Kind
		x    Basic
		want Basic
		ok   bool
	}{
		{syntax.NOT, Boolean, Boolean, true},
		{syntax.NOT, Int, Invalid, false},
		{syntax.MINUS, Float, Float, true},
		{syntax.MINUS, String, Invalid, false},
		{syntax.INCREMENT, Int, Int, true},
		{syntax.DECREMENT, Boolean, Invalid, false},
	}

	for _, tt := range tests {
		got, ok := UnaryResult(tt.op, tt.x)
		if got != tt.want || ok != tt.ok {
			t.Errorf("UnaryResult(%s, %s) = %s, %v; want %s, %v", tt.op, tt.x, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFromKind(t *testing.T) {
	kinds := map[syntax.Kind]Basic{
		syntax.INT:         Int,
		syntax.FLOAT:       Float,
		syntax.STRING_TYPE: String,
		syntax.BOOLEAN:     Boolean,
		syntax.UNIT:        Unit,
		syntax.ID:          Invalid,
	}
	for k, want := range kinds {
		if got := FromKind(k); got != want {
			t.Errorf("FromKind(%s) = %s, want %s", k, got, want)
		}
	}
	if Of(nil) != Unit {
		t.Errorf("Of(nil) = %s, want Unit", Of(nil))
	}
}

func TestCompoundOp(t *testing.T) {
	pairs := map[syntax.Kind]syntax.Kind{
		syntax.PLUS_ASSIGN:  syntax.PLUS,
		syntax.MINUS_ASSIGN: syntax.MINUS,
		syntax.MUL_ASSIGN:   syntax.MUL,
		syntax.DIV_ASSIGN:   syntax.DIV,
		syntax.MOD_ASSIGN:   syntax.MOD,
		syntax.ASSIGN:       syntax.ASSIGN,
	}
	for in, want := range pairs {
		if got := CompoundOp(in); got != want {
			t.Errorf("CompoundOp(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestBuiltins(t *testing.T) {
	pl := LookupBuiltin("println")
	if pl == nil || !pl.Newline || pl.MinArgs != 0 || pl.MaxArgs != 1 {
		t.Errorf("println builtin = %+v", pl)
	}
	p := LookupBuiltin("print")
	if p == nil || p.Newline || p.MinArgs != 1 {
		t.Errorf("print builtin = %+v", p)
	}
	if LookupBuiltin("printf") != nil {
		t.Errorf("printf should not be predeclared")
	}
}

func TestSizes(t *testing.T) {
	for _, b := range []Basic{Int, Float, String, Boolean, Unit} {
		if got := Sizeof(b); got != WordSize {
			t.Errorf("Sizeof(%s) = %d, want %d", b, got, WordSize)
		}
		if got, want := InFloatReg(b), b == Float; got != want {
			t.Errorf("InFloatReg(%s) = %v, want %v", b, got, want)
		}
	}
}
