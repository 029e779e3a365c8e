package syntax

import (
	"io"
	"strconv"
	"strings"
)

// Print returns canonical source text for node: four-space indentation,
// explicit types, one statement per line. Parsing the output of Print on a
// parsed program yields the same tree, positions aside.
func Print(node Node) string {
	p := &printer{}
	return p.node(node)
}

// Fprint writes Print(node) to w.
func Fprint(w io.Writer, node Node) error {
	_, err := io.WriteString(w, Print(node))
	return err
}

const indentUnit = "    "

// printer renders nodes as source. Its methods never fail; the error results
// exist to satisfy the visitor interfaces.
type printer struct {
	indent int
}

var (
	_ ExprVisitor[string] = (*printer)(nil)
	_ StmtVisitor[string] = (*printer)(nil)
)

func (p *printer) node(n Node) string {
	if isNil(n) {
		return ""
	}
	switch n := n.(type) {
	case *Program:
		var b strings.Builder
		for i, f := range n.Funcs {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p.stmt(f))
			b.WriteByte('\n')
		}
		return b.String()
	case *Param:
		return n.Name.Value + ": " + typeString(n.Type)
	case *TypeName:
		return typeString(n)
	case Stmt:
		return p.stmt(n)
	case Expr:
		return p.expr(n)
	}
	return ""
}

func (p *printer) expr(x Expr) string {
	s, _ := AcceptExpr[string](p, x)
	return s
}

func (p *printer) stmt(s Stmt) string {
	str, _ := AcceptStmt[string](p, s)
	return str
}

func (p *printer) pad() string {
	return strings.Repeat(indentUnit, p.indent)
}

// ----------------------------------------------------------------------------
// Statements

func (p *printer) VisitFuncDecl(d *FuncDecl) (string, error) {
	var b strings.Builder
	b.WriteString("fun ")
	b.WriteString(d.Name.Value)
	b.WriteByte('(')
	for i, f := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.node(f))
	}
	b.WriteByte(')')
	if d.Result != nil {
		b.WriteString(": ")
		b.WriteString(typeString(d.Result))
	}
	b.WriteByte(' ')
	b.WriteString(p.block(d.Body))
	return b.String(), nil
}

func (p *printer) VisitVarDecl(d *VarDecl) (string, error) {
	kw := "val"
	if d.Mutable {
		kw = "var"
	}
	return kw + " " + d.Name.Value + ": " + typeString(d.Type) + " = " + p.expr(d.Value), nil
}

func (p *printer) VisitBlockStmt(b *BlockStmt) (string, error) {
	return p.block(b), nil
}

// block renders { ... } with its statements one level deeper; the closing
// brace is aligned with the current indentation.
func (p *printer) block(blk *BlockStmt) string {
	var b strings.Builder
	b.WriteString("{\n")
	if blk != nil {
		p.indent++
		for _, s := range blk.Stmts {
			b.WriteString(p.pad())
			b.WriteString(p.stmt(s))
			b.WriteByte('\n')
		}
		p.indent--
	}
	b.WriteString(p.pad())
	b.WriteByte('}')
	return b.String()
}

func (p *printer) VisitIfStmt(s *IfStmt) (string, error) {
	str := "if (" + p.expr(s.Cond) + ") " + p.block(s.Then)
	if s.Else != nil {
		str += " else " + p.stmt(s.Else)
	}
	return str, nil
}

func (p *printer) VisitWhileStmt(s *WhileStmt) (string, error) {
	return "while (" + p.expr(s.Cond) + ") " + p.block(s.Body), nil
}

func (p *printer) VisitDoWhileStmt(s *DoWhileStmt) (string, error) {
	return "do " + p.block(s.Body) + " while (" + p.expr(s.Cond) + ")", nil
}

func (p *printer) VisitForStmt(s *ForStmt) (string, error) {
	return "for (" + s.Var.Value + " in " + p.expr(s.Range) + ") " + p.block(s.Body), nil
}

func (p *printer) VisitReturnStmt(s *ReturnStmt) (string, error) {
	if s.Result == nil {
		return "return", nil
	}
	return "return " + p.expr(s.Result), nil
}

func (p *printer) VisitBranchStmt(s *BranchStmt) (string, error) {
	return s.Tok.Text(), nil
}

func (p *printer) VisitRunStmt(s *RunStmt) (string, error) {
	return "run " + p.block(s.Body), nil
}

func (p *printer) VisitExprStmt(s *ExprStmt) (string, error) {
	return p.expr(s.X), nil
}

// ----------------------------------------------------------------------------
// Expressions

func (p *printer) VisitName(n *Name) (string, error) {
	return n.Value, nil
}

func (p *printer) VisitIntLit(x *IntLit) (string, error) {
	return strconv.FormatInt(x.Value, 10), nil
}

func (p *printer) VisitFloatLit(x *FloatLit) (string, error) {
	return formatFloatLit(x), nil
}

func (p *printer) VisitStringLit(x *StringLit) (string, error) {
	return quote(x.Value), nil
}

func (p *printer) VisitBoolLit(x *BoolLit) (string, error) {
	return strconv.FormatBool(x.Value), nil
}

func (p *printer) VisitParenExpr(x *ParenExpr) (string, error) {
	return "(" + p.expr(x.X) + ")", nil
}

func (p *printer) VisitBinary(x *Binary) (string, error) {
	return p.expr(x.X) + " " + x.Op.Text() + " " + p.expr(x.Y), nil
}

func (p *printer) VisitUnary(x *Unary) (string, error) {
	op, operand := x.Op.Text(), p.expr(x.X)
	// "- -x" must not fuse into the decrement operator.
	if x.Op != NOT && strings.HasPrefix(operand, op) {
		return op + " " + operand, nil
	}
	return op + operand, nil
}

func (p *printer) VisitAssign(x *Assign) (string, error) {
	return x.Target.Value + " " + x.Op.Text() + " " + p.expr(x.Value), nil
}

func (p *printer) VisitIncDec(x *IncDec) (string, error) {
	if x.Prefix {
		return x.Op.Text() + x.Target.Value, nil
	}
	return x.Target.Value + x.Op.Text(), nil
}

func (p *printer) VisitCall(x *Call) (string, error) {
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = p.expr(a)
	}
	return x.Fun.Value + "(" + strings.Join(args, ", ") + ")", nil
}

func (p *printer) VisitRangeExpr(x *RangeExpr) (string, error) {
	sep := ".."
	if x.Op != RANGE {
		sep = " " + x.Op.Text() + " "
	}
	s := p.expr(x.From) + sep + p.expr(x.To)
	if x.Step != nil {
		s += " step " + p.expr(x.Step)
	}
	return s, nil
}

func (p *printer) VisitRunExpr(x *RunExpr) (string, error) {
	return "run " + p.block(x.Body), nil
}

// ----------------------------------------------------------------------------
// Literal spelling

// formatFloatLit spells a float literal so that it scans back as DECIMAL:
// the shortest exact digits, always with a fraction.
func formatFloatLit(x *FloatLit) string {
	s := strconv.FormatFloat(x.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	if x.Suffix {
		s += "f"
	}
	return s
}

// quote returns s as a double-quoted literal using the scanner's escapes.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '$':
			b.WriteString(`\$`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
