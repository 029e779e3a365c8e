package eval

import (
	"fmt"

	"github.com/you-not-fish/ktc/internal/syntax"
)

// Kind classifies runtime errors.
type Kind uint8

const (
	UndefinedVariable Kind = iota + 1
	TypeMismatch
	DivisionByZero
	ArityMismatch
	ImmutableAssignment
	InvalidRange
	StackOverflow
)

var kindNames = [...]string{
	UndefinedVariable:   "UndefinedVariable",
	TypeMismatch:        "TypeMismatch",
	DivisionByZero:      "DivisionByZero",
	ArityMismatch:       "ArityMismatch",
	ImmutableAssignment: "ImmutableAssignment",
	InvalidRange:        "InvalidRange",
	StackOverflow:       "StackOverflow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// RuntimeError is a fatal error raised while evaluating a program.
type RuntimeError struct {
	Pos  syntax.Pos
	Kind Kind
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RuntimeError at line %d: %s: %s", e.Pos.Line(), e.Kind, e.Msg)
}

func errorf(pos syntax.Pos, kind Kind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Pos: pos, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
