package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// Nodes come in two families: expressions, which produce a value, and
// statements, which do not. The marker methods restrict implementations to
// this package, so the set of variants is closed; ExprVisitor and
// StmtVisitor enumerate it.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	aNode()
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// ----------------------------------------------------------------------------
// Base node types

type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Program and declarations

// Program is a parsed source file: its function declarations in order.
type Program struct {
	node
	Funcs []*FuncDecl
}

// Func returns the declaration of the function called name, or nil.
// When a name is declared twice the last declaration wins.
func (p *Program) Func(name string) *FuncDecl {
	var found *FuncDecl
	for _, f := range p.Funcs {
		if f.Name.Value == name {
			found = f
		}
	}
	return found
}

// FuncDecl represents fun Name(Params): Result { Body }.
type FuncDecl struct {
	stmt
	Name   *Name
	Params []*Param
	Result *TypeName // nil when the return type is omitted (Unit)
	Body   *BlockStmt
}

// Param is a function parameter: Name: Type.
type Param struct {
	node
	Name *Name
	Type *TypeName
}

// TypeName is a type annotation; Kind is one of INT, FLOAT, STRING_TYPE,
// BOOLEAN, UNIT.
type TypeName struct {
	node
	Kind Kind
}

// ----------------------------------------------------------------------------
// Expressions

// Name is an identifier reference.
type Name struct {
	expr
	Value string
}

// IntLit is an Int literal.
type IntLit struct {
	expr
	Value int64
}

// FloatLit is a Float literal; Suffix records a trailing f/F.
type FloatLit struct {
	expr
	Value  float64
	Suffix bool
}

// StringLit is a string literal holding the decoded value.
type StringLit struct {
	expr
	Value string
}

// BoolLit is true or false.
type BoolLit struct {
	expr
	Value bool
}

// ParenExpr is a parenthesized expression: (X).
type ParenExpr struct {
	expr
	X Expr
}

// Binary is X Op Y.
type Binary struct {
	expr
	Op Kind
	X  Expr
	Y  Expr
}

// Unary is Op X with Op one of NOT, MINUS, PLUS.
type Unary struct {
	expr
	Op Kind
	X  Expr
}

// Assign is Target Op Value where Op is ASSIGN or a compound assignment.
// Its value is the value stored.
type Assign struct {
	expr
	Op     Kind
	Target *Name
	Value  Expr
}

// IncDec is ++x, --x, x++ or x--.
type IncDec struct {
	expr
	Op     Kind // INCREMENT or DECREMENT
	Prefix bool
	Target *Name
}

// Call is Fun(Args...).
type Call struct {
	expr
	Fun  *Name
	Args []Expr
}

// RangeExpr is From..To, From until To or From downTo To, with an optional step.
type RangeExpr struct {
	expr
	Op   Kind // RANGE, UNTIL or DOWNTO
	From Expr
	To   Expr
	Step Expr // nil means 1
}

// RunExpr is run { ... } used as a value: the value of its final
// expression statement, or Unit.
type RunExpr struct {
	expr
	Body *BlockStmt
}

// ----------------------------------------------------------------------------
// Statements

// VarDecl is var Name: Type = Value, or val when !Mutable.
type VarDecl struct {
	stmt
	Mutable bool
	Name    *Name
	Type    *TypeName
	Value   Expr
}

// BlockStmt is { Stmts... }; it owns a child scope.
type BlockStmt struct {
	stmt
	Stmts  []Stmt
	Rbrace Pos
}

// IfStmt is if (Cond) Then [else Else].
type IfStmt struct {
	stmt
	Cond Expr
	Then *BlockStmt
	Else Stmt // nil, *IfStmt or *BlockStmt
}

// WhileStmt is while (Cond) Body.
type WhileStmt struct {
	stmt
	Cond Expr
	Body *BlockStmt
}

// DoWhileStmt is do Body while (Cond). Cond sees the body's declarations.
type DoWhileStmt struct {
	stmt
	Body *BlockStmt
	Cond Expr
}

// ForStmt is for (Var in Range) Body. Var is immutable within Body.
type ForStmt struct {
	stmt
	Var   *Name
	Range *RangeExpr
	Body  *BlockStmt
}

// ReturnStmt is return [Result].
type ReturnStmt struct {
	stmt
	Result Expr // nil for a bare return
}

// BranchStmt is break or continue.
type BranchStmt struct {
	stmt
	Tok Kind // BREAK or CONTINUE
}

// RunStmt is run { ... } in statement position.
type RunStmt struct {
	stmt
	Body *BlockStmt
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	stmt
	X Expr
}
