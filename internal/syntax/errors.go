package syntax

import "fmt"

// LexicalError reports an unrecognized character or a malformed literal.
type LexicalError struct {
	Pos Pos
	Msg string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("LexicalError at line %d: %s", e.Pos.Line(), e.Msg)
}

// SyntaxError reports the first unexpected token found by the parser.
type SyntaxError struct {
	Pos      Pos
	Expected string // description of what the grammar allowed here
	Found    string // the offending token as written
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError at line %d: expected %s, found %s", e.Pos.Line(), e.Expected, e.Found)
}
