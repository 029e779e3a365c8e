package syntax

import (
	"fmt"
	"unicode/utf8"
)

// source is a character reader with position tracking over an in-memory
// UTF-8 buffer. It latches the first lexical error it is told about.
type source struct {
	buf []byte

	// (line, col) is the position of ch.
	line int
	col  int

	ch   rune // current character, -1 at end of input
	offs int  // byte offset of the character after ch

	err *LexicalError // first error, if any
}

func newSource(buf []byte) *source {
	s := &source{
		buf:  buf,
		line: 1,
		col:  0,  // incremented to 1 by the first nextch
		ch:   -1, // "before first char"
	}
	s.nextch()
	return s
}

// nextch advances to the next character.
//
// Initial state: line=1, col=0, ch=-1.
// After the first nextch: line=1, col=1, ch=first char.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && width == 1 {
		s.error("invalid UTF-8 encoding")
	}
	s.ch = r
	s.offs += width
}

// peek returns the character after ch without consuming anything.
func (s *source) peek() rune {
	if s.offs >= len(s.buf) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.buf[s.offs:])
	return r
}

func (s *source) pos() Pos {
	return MakePos(s.line, s.col)
}

func (s *source) error(msg string) {
	s.errorAt(s.pos(), msg)
}

func (s *source) errorf(format string, args ...interface{}) {
	s.error(fmt.Sprintf(format, args...))
}

func (s *source) errorAt(pos Pos, msg string) {
	if s.err == nil {
		s.err = &LexicalError{Pos: pos, Msg: msg}
	}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isWhitespace reports whether r is skipped between tokens.
// Newlines are whitespace to the scanner; the parser recovers line
// breaks from token positions.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\f'
}
