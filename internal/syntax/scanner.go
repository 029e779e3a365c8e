package syntax

import (
	"strconv"
	"strings"
)

// Scanner performs lexical analysis on Kotlin-subset source code.
// It stops at the first lexical error: after that Next only produces END.
type Scanner struct {
	source

	tok    Token
	litBuf strings.Builder
}

// NewScanner creates a Scanner over src.
func NewScanner(src []byte) *Scanner {
	return &Scanner{source: *newSource(src)}
}

// Scan converts src into its token sequence, terminated by an END token.
// It fails with a *LexicalError on the first unrecognized character,
// unterminated literal or comment, or malformed literal.
func Scan(src []byte) ([]Token, error) {
	s := NewScanner(src)
	var toks []Token
	for {
		s.Next()
		if err := s.Err(); err != nil {
			return nil, err
		}
		toks = append(toks, s.tok)
		if s.tok.Kind == END {
			return toks, nil
		}
	}
}

// Next advances to the next token.
func (s *Scanner) Next() {
	s.tok = Token{}

redo:
	for isWhitespace(s.ch) {
		s.nextch()
	}

	pos := s.pos()
	if s.err != nil || s.ch < 0 {
		s.tok = Token{Kind: END, Pos: pos}
		return
	}

	switch {
	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber()

	case s.ch == '"':
		s.scanString()

	case s.ch == '/' && (s.peek() == '/' || s.peek() == '*'):
		s.skipComment()
		goto redo

	default:
		s.scanOperator(pos)
	}

	s.tok.Pos = pos
	if s.err != nil {
		s.tok = Token{Kind: END, Pos: pos}
	}
}

// Token returns the current token.
func (s *Scanner) Token() Token {
	return s.tok
}

// Err returns the first lexical error, or nil.
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

func (s *Scanner) startLit() {
	s.litBuf.Reset()
	s.litBuf.WriteRune(s.ch)
}

func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
}

func (s *Scanner) scanIdent() {
	s.startLit()
	s.nextch()
	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}

	lit := s.litBuf.String()
	kind := LookupKeyword(lit)
	s.tok = Token{Kind: kind, Lexeme: lit}
	switch kind {
	case TRUE:
		s.tok.Literal = true
	case FALSE:
		s.tok.Literal = false
	}
}

// scanNumber scans an integer literal or a float literal of the form
// digits '.' digits with an optional f/F suffix. A '.' not followed by a
// digit is left alone so that 1..5 scans as NUM RANGE NUM.
func (s *Scanner) scanNumber() {
	pos := s.pos()
	s.litBuf.Reset()
	s.scanDigits()

	if s.ch != '.' || !isDigit(s.peek()) {
		lit := s.litBuf.String()
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			s.errorAt(pos, "integer literal "+lit+" out of range")
		}
		s.tok = Token{Kind: NUM, Lexeme: lit, Literal: v}
		return
	}

	s.continueLit() // '.'
	s.nextch()
	s.scanDigits()
	digits := s.litBuf.String()

	suffix := false
	if s.ch == 'f' || s.ch == 'F' {
		suffix = true
		s.continueLit()
		s.nextch()
	}

	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		s.errorAt(pos, "malformed float literal "+digits)
	}
	s.tok = Token{Kind: DECIMAL, Lexeme: s.litBuf.String(), Literal: v, Suffix: suffix}
}

func (s *Scanner) scanDigits() {
	for isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}
}

// scanString scans a double-quoted string literal. The lexeme is the raw
// text between the quotes; the literal is the decoded value.
func (s *Scanner) scanString() {
	pos := s.pos()
	s.nextch() // opening "

	var raw, val strings.Builder
	for {
		switch {
		case s.ch == '"':
			s.nextch()
			s.tok = Token{Kind: STRING, Lexeme: raw.String(), Literal: val.String()}
			return

		case s.ch == '\n' || s.ch < 0:
			s.errorAt(pos, "unterminated string literal")
			return

		case s.ch == '\\':
			raw.WriteRune(s.ch)
			s.nextch()
			r, ok := s.scanEscape()
			if !ok {
				return
			}
			raw.WriteRune(s.ch)
			val.WriteRune(r)
			s.nextch()

		default:
			raw.WriteRune(s.ch)
			val.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanEscape decodes the escape character at s.ch (the one after '\').
func (s *Scanner) scanEscape() (rune, bool) {
	switch s.ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '"', '\\', '$', '\'':
		return s.ch, true
	case '\n', -1:
		s.error("unterminated string literal")
	default:
		s.errorf("unknown escape sequence \\%c", s.ch)
	}
	return 0, false
}

// skipComment skips a // line comment or a (possibly nested) /* */ block comment.
func (s *Scanner) skipComment() {
	pos := s.pos()
	s.nextch() // '/'
	if s.ch == '/' {
		for s.ch != '\n' && s.ch >= 0 {
			s.nextch()
		}
		return
	}

	s.nextch() // '*'
	depth := 1
	for depth > 0 {
		switch {
		case s.ch < 0:
			s.errorAt(pos, "unterminated block comment")
			return
		case s.ch == '*' && s.peek() == '/':
			depth--
			s.nextch()
		case s.ch == '/' && s.peek() == '*':
			depth++
			s.nextch()
		}
		s.nextch()
	}
}

// scanOperator scans an operator or delimiter using longest match.
func (s *Scanner) scanOperator(pos Pos) {
	ch := s.ch
	s.nextch()

	switch ch {
	case '+':
		s.pick2(PLUS, '+', INCREMENT, '=', PLUS_ASSIGN)
	case '-':
		switch s.ch {
		case '>':
			s.nextch()
			s.op(ARROW)
		default:
			s.pick2(MINUS, '-', DECREMENT, '=', MINUS_ASSIGN)
		}
	case '*':
		s.pick(MUL, '=', MUL_ASSIGN)
	case '/':
		s.pick(DIV, '=', DIV_ASSIGN)
	case '%':
		s.pick(MOD, '=', MOD_ASSIGN)
	case '=':
		s.pick(ASSIGN, '=', EQ)
	case '!':
		s.pick(NOT, '=', NE)
	case '<':
		s.pick(LT, '=', LE)
	case '>':
		s.pick(GT, '=', GE)
	case '&':
		s.pair(pos, ch, AND)
	case '|':
		s.pair(pos, ch, OR)
	case '.':
		s.pair(pos, ch, RANGE)
	case '(':
		s.op(LEFT_PAREN)
	case ')':
		s.op(RIGHT_PAREN)
	case '{':
		s.op(LEFT_BRACE)
	case '}':
		s.op(RIGHT_BRACE)
	case ',':
		s.op(COMMA)
	case ':':
		s.op(COLON)
	case ';':
		s.op(SEMICOLON)
	default:
		s.errorAt(pos, "unexpected character "+strconv.QuoteRune(ch))
	}
}

func (s *Scanner) op(k Kind) {
	s.tok = Token{Kind: k, Lexeme: kindText[k]}
}

// pick produces long if the current character is next, else short.
func (s *Scanner) pick(short Kind, next rune, long Kind) {
	if s.ch == next {
		s.nextch()
		s.op(long)
		return
	}
	s.op(short)
}

func (s *Scanner) pick2(short Kind, next1 rune, long1 Kind, next2 rune, long2 Kind) {
	switch s.ch {
	case next1:
		s.nextch()
		s.op(long1)
	case next2:
		s.nextch()
		s.op(long2)
	default:
		s.op(short)
	}
}

// pair scans a doubled character (&&, ||, ..) whose single form is not a token.
func (s *Scanner) pair(pos Pos, ch rune, k Kind) {
	if s.ch != ch {
		s.errorAt(pos, "unexpected character "+strconv.QuoteRune(ch))
		return
	}
	s.nextch()
	s.op(k)
}
