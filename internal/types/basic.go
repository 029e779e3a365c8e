// Package types defines the builtin types of the Kotlin subset and the
// typing rules shared by the interpreter and the code generator.
package types

import (
	"fmt"

	"github.com/you-not-fish/ktc/internal/syntax"
)

// Basic is one of the builtin types. Values of every type fit in one
// machine word: Int and Boolean directly, Float as IEEE double bits,
// String as a pointer, Unit as zero.
type Basic uint8

const (
	Invalid Basic = iota // invalid type

	Int
	Float
	String
	Boolean
	Unit
)

// BasicInfo describes properties of a basic type.
type BasicInfo int

const (
	IsInteger BasicInfo = 1 << iota
	IsFloat
	IsString
	IsBoolean
	IsUnit
	IsNumeric = IsInteger | IsFloat
)

var basicNames = [...]string{
	Invalid: "invalid",
	Int:     "Int",
	Float:   "Float",
	String:  "String",
	Boolean: "Boolean",
	Unit:    "Unit",
}

var basicInfo = [...]BasicInfo{
	Int:     IsInteger,
	Float:   IsFloat,
	String:  IsString,
	Boolean: IsBoolean,
	Unit:    IsUnit,
}

// String returns the Kotlin spelling of the type.
func (b Basic) String() string {
	if int(b) < len(basicNames) {
		return basicNames[b]
	}
	return fmt.Sprintf("Basic(%d)", b)
}

// Info returns information about the basic type.
func (b Basic) Info() BasicInfo {
	if int(b) < len(basicInfo) {
		return basicInfo[b]
	}
	return 0
}

// IsNumeric reports whether b is Int or Float.
func (b Basic) IsNumeric() bool {
	return b.Info()&IsNumeric != 0
}

// FromKind returns the type named by a type-name token kind (INT, FLOAT, ...).
func FromKind(k syntax.Kind) Basic {
	switch k {
	case syntax.INT:
		return Int
	case syntax.FLOAT:
		return Float
	case syntax.STRING_TYPE:
		return String
	case syntax.BOOLEAN:
		return Boolean
	case syntax.UNIT:
		return Unit
	}
	return Invalid
}

// Of returns the type written by a type annotation; a nil annotation means Unit.
func Of(t *syntax.TypeName) Basic {
	if t == nil {
		return Unit
	}
	return FromKind(t.Kind)
}
