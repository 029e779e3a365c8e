package syntax

import "fmt"

// Pos is a source position. The zero value is an invalid position.
type Pos struct {
	line int32 // 1-based
	col  int32 // 1-based character column within the line
}

// MakePos returns the position at line, col (both 1-based).
func MakePos(line, col int) Pos {
	return Pos{line: int32(line), col: int32(col)}
}

// String returns "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.line, p.col)
}

// IsValid reports whether the position is valid.
func (p Pos) IsValid() bool {
	return p.line > 0
}

// Line returns the 1-based line number.
func (p Pos) Line() int {
	return int(p.line)
}

// Col returns the 1-based column number.
func (p Pos) Col() int {
	return int(p.col)
}
