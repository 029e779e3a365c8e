// Package syntax implements lexical and syntactic analysis for the ktc Kotlin subset.
package syntax

import "fmt"

// Kind represents the type of a lexical token.
type Kind uint

const (
	// Special tokens
	END Kind = iota // end of input

	// Keywords
	VAR
	VAL
	FUN
	IF
	ELSE
	FOR
	WHILE
	DO
	IN
	STEP
	UNTIL
	DOWNTO
	RETURN
	BREAK
	CONTINUE
	RUN
	TRUE
	FALSE

	// Type names
	INT
	FLOAT
	STRING_TYPE
	BOOLEAN
	UNIT

	// Literals
	NUM     // 123
	DECIMAL // 1.5, 1.5f
	STRING  // "text"
	ID      // identifier

	// Arithmetic operators
	PLUS
	MINUS
	MUL
	DIV
	MOD

	// Comparison operators
	EQ
	NE
	LT
	GT
	LE
	GE

	// Logical operators
	AND
	OR
	NOT

	// Assignment operators
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	MUL_ASSIGN
	DIV_ASSIGN
	MOD_ASSIGN

	INCREMENT
	DECREMENT
	RANGE

	// Delimiters
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	COMMA
	COLON
	SEMICOLON
	ARROW

	kindCount
)

var kindNames = [...]string{
	END: "END",

	VAR:      "VAR",
	VAL:      "VAL",
	FUN:      "FUN",
	IF:       "IF",
	ELSE:     "ELSE",
	FOR:      "FOR",
	WHILE:    "WHILE",
	DO:       "DO",
	IN:       "IN",
	STEP:     "STEP",
	UNTIL:    "UNTIL",
	DOWNTO:   "DOWNTO",
	RETURN:   "RETURN",
	BREAK:    "BREAK",
	CONTINUE: "CONTINUE",
	RUN:      "RUN",
	TRUE:     "TRUE",
	FALSE:    "FALSE",

	INT:         "INT",
	FLOAT:       "FLOAT",
	STRING_TYPE: "STRING_TYPE",
	BOOLEAN:     "BOOLEAN",
	UNIT:        "UNIT",

	NUM:     "NUM",
	DECIMAL: "DECIMAL",
	STRING:  "STRING",
	ID:      "ID",

	PLUS:  "PLUS",
	MINUS: "MINUS",
	MUL:   "MUL",
	DIV:   "DIV",
	MOD:   "MOD",

	EQ: "EQ",
	NE: "NE",
	LT: "LT",
	GT: "GT",
	LE: "LE",
	GE: "GE",

	AND: "AND",
	OR:  "OR",
	NOT: "NOT",

	ASSIGN:       "ASSIGN",
	PLUS_ASSIGN:  "PLUS_ASSIGN",
	MINUS_ASSIGN: "MINUS_ASSIGN",
	MUL_ASSIGN:   "MUL_ASSIGN",
	DIV_ASSIGN:   "DIV_ASSIGN",
	MOD_ASSIGN:   "MOD_ASSIGN",

	INCREMENT: "INCREMENT",
	DECREMENT: "DECREMENT",
	RANGE:     "RANGE",

	LEFT_PAREN:  "LEFT_PAREN",
	RIGHT_PAREN: "RIGHT_PAREN",
	LEFT_BRACE:  "LEFT_BRACE",
	RIGHT_BRACE: "RIGHT_BRACE",
	COMMA:       "COMMA",
	COLON:       "COLON",
	SEMICOLON:   "SEMICOLON",
	ARROW:       "ARROW",
}

// kindText holds the source spelling of fixed tokens, used in diagnostics.
var kindText = [...]string{
	END: "end of input",

	PLUS:  "+",
	MINUS: "-",
	MUL:   "*",
	DIV:   "/",
	MOD:   "%",

	EQ: "==",
	NE: "!=",
	LT: "<",
	GT: ">",
	LE: "<=",
	GE: ">=",

	AND: "&&",
	OR:  "||",
	NOT: "!",

	ASSIGN:       "=",
	PLUS_ASSIGN:  "+=",
	MINUS_ASSIGN: "-=",
	MUL_ASSIGN:   "*=",
	DIV_ASSIGN:   "/=",
	MOD_ASSIGN:   "%=",

	INCREMENT: "++",
	DECREMENT: "--",
	RANGE:     "..",

	LEFT_PAREN:  "(",
	RIGHT_PAREN: ")",
	LEFT_BRACE:  "{",
	RIGHT_BRACE: "}",
	COMMA:       ",",
	COLON:       ":",
	SEMICOLON:   ";",
	ARROW:       "->",

	NUM:     "integer literal",
	DECIMAL: "float literal",
	STRING:  "string literal",
	ID:      "identifier",
}

// String returns the token-table name of the kind (e.g. "PLUS_ASSIGN").
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Text returns the source spelling of k for use in messages:
// the operator itself, the keyword, or a description for literal classes.
func (k Kind) Text() string {
	if k < kindCount && kindText[k] != "" {
		return kindText[k]
	}
	for word, kw := range keywords {
		if kw == k {
			return word
		}
	}
	return k.String()
}

// IsKeyword reports whether k is a keyword or a type name.
func (k Kind) IsKeyword() bool {
	return k >= VAR && k <= UNIT
}

// IsTypeName reports whether k names one of the builtin types.
func (k Kind) IsTypeName() bool {
	return k >= INT && k <= UNIT
}

// IsAssignOp reports whether k is = or one of the compound assignment operators.
func (k Kind) IsAssignOp() bool {
	return k >= ASSIGN && k <= MOD_ASSIGN
}

// keywords maps keyword spellings to their token kind.
// println and print are NOT keywords; they are identifiers bound to builtins.
var keywords = map[string]Kind{
	"var":      VAR,
	"val":      VAL,
	"fun":      FUN,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"while":    WHILE,
	"do":       DO,
	"in":       IN,
	"step":     STEP,
	"until":    UNTIL,
	"downTo":   DOWNTO,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"run":      RUN,
	"true":     TRUE,
	"false":    FALSE,

	"Int":     INT,
	"Float":   FLOAT,
	"String":  STRING_TYPE,
	"Boolean": BOOLEAN,
	"Unit":    UNIT,
}

// LookupKeyword returns the keyword kind for ident, or ID.
func LookupKeyword(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return ID
}

// Token is a lexical token. Tokens are immutable once produced by the scanner.
type Token struct {
	Kind    Kind
	Lexeme  string // source text; for STRING the raw text between the quotes
	Literal any    // int64 (NUM), float64 (DECIMAL), string (STRING), bool (TRUE/FALSE)
	Suffix  bool   // DECIMAL written with an f/F suffix
	Pos     Pos
}

// Line returns the 1-based source line of the token.
func (t Token) Line() int {
	return t.Pos.Line()
}

// String formats the token as a listing line: TOKEN(KIND, "lexeme"), or TOKEN(END).
func (t Token) String() string {
	if t.Kind == END {
		return "TOKEN(END)"
	}
	return fmt.Sprintf("TOKEN(%s, \"%s\")", t.Kind, t.Lexeme)
}

// describe renders the token the way diagnostics refer to it.
func (t Token) describe() string {
	switch t.Kind {
	case END:
		return "end of input"
	case STRING:
		return "\"" + t.Lexeme + "\""
	}
	return "'" + t.Lexeme + "'"
}
