package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fdump writes an indented tree representation of the AST to w, one node
// per line with its position.
func Fdump(w io.Writer, node Node) {
	d := &dumper{w: w}
	d.dump(node)
}

type dumper struct {
	w      io.Writer
	indent int
}

func (d *dumper) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.w, "%s%s", strings.Repeat("  ", d.indent), fmt.Sprintf(format, args...))
}

// child prints a labelled sub-node one level deeper.
func (d *dumper) child(label string, n Node) {
	d.printf("%s:\n", label)
	d.indent++
	d.dump(n)
	d.indent--
}

func (d *dumper) dump(node Node) {
	if isNil(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		d.printf("Program %s\n", n.pos)
		d.indent++
		for _, f := range n.Funcs {
			d.dump(f)
		}
		d.indent--

	case *FuncDecl:
		d.printf("FuncDecl %s\n", n.pos)
		d.indent++
		d.printf("Name: %s\n", n.Name.Value)
		if len(n.Params) > 0 {
			d.printf("Params:\n")
			d.indent++
			for _, f := range n.Params {
				d.printf("%s %s\n", f.Name.Value, typeString(f.Type))
			}
			d.indent--
		}
		d.printf("Result: %s\n", typeString(n.Result))
		d.child("Body", n.Body)
		d.indent--

	case *VarDecl:
		kw := "val"
		if n.Mutable {
			kw = "var"
		}
		d.printf("VarDecl %s %s %s %s\n", n.pos, kw, n.Name.Value, typeString(n.Type))
		d.indent++
		d.dump(n.Value)
		d.indent--

	case *BlockStmt:
		d.printf("BlockStmt %s\n", n.pos)
		d.indent++
		for _, s := range n.Stmts {
			d.dump(s)
		}
		d.indent--

	case *IfStmt:
		d.printf("IfStmt %s\n", n.pos)
		d.indent++
		d.child("Cond", n.Cond)
		d.child("Then", n.Then)
		if n.Else != nil {
			d.child("Else", n.Else)
		}
		d.indent--

	case *WhileStmt:
		d.printf("WhileStmt %s\n", n.pos)
		d.indent++
		d.child("Cond", n.Cond)
		d.child("Body", n.Body)
		d.indent--

	case *DoWhileStmt:
		d.printf("DoWhileStmt %s\n", n.pos)
		d.indent++
		d.child("Body", n.Body)
		d.child("Cond", n.Cond)
		d.indent--

	case *ForStmt:
		d.printf("ForStmt %s %s\n", n.pos, n.Var.Value)
		d.indent++
		d.child("Range", n.Range)
		d.child("Body", n.Body)
		d.indent--

	case *ReturnStmt:
		d.printf("ReturnStmt %s\n", n.pos)
		if n.Result != nil {
			d.indent++
			d.dump(n.Result)
			d.indent--
		}

	case *BranchStmt:
		d.printf("BranchStmt %s %s\n", n.pos, n.Tok)

	case *RunStmt:
		d.printf("RunStmt %s\n", n.pos)
		d.indent++
		d.dump(n.Body)
		d.indent--

	case *ExprStmt:
		d.printf("ExprStmt %s\n", n.pos)
		d.indent++
		d.dump(n.X)
		d.indent--

	case *Name:
		d.printf("Name %s %q\n", n.pos, n.Value)

	case *IntLit:
		d.printf("IntLit %s %d\n", n.pos, n.Value)

	case *FloatLit:
		d.printf("FloatLit %s %s\n", n.pos, formatFloatLit(n))

	case *StringLit:
		d.printf("StringLit %s %q\n", n.pos, n.Value)

	case *BoolLit:
		d.printf("BoolLit %s %t\n", n.pos, n.Value)

	case *ParenExpr:
		d.printf("ParenExpr %s\n", n.pos)
		d.indent++
		d.dump(n.X)
		d.indent--

	case *Binary:
		d.printf("Binary %s %s\n", n.pos, n.Op)
		d.indent++
		d.child("X", n.X)
		d.child("Y", n.Y)
		d.indent--

	case *Unary:
		d.printf("Unary %s %s\n", n.pos, n.Op)
		d.indent++
		d.dump(n.X)
		d.indent--

	case *Assign:
		d.printf("Assign %s %s %s\n", n.pos, n.Op, n.Target.Value)
		d.indent++
		d.dump(n.Value)
		d.indent--

	case *IncDec:
		fix := "postfix"
		if n.Prefix {
			fix = "prefix"
		}
		d.printf("IncDec %s %s %s %s\n", n.pos, fix, n.Op, n.Target.Value)

	case *Call:
		d.printf("Call %s %s\n", n.pos, n.Fun.Value)
		if len(n.Args) > 0 {
			d.indent++
			d.printf("Args:\n")
			d.indent++
			for _, a := range n.Args {
				d.dump(a)
			}
			d.indent -= 2
		}

	case *RangeExpr:
		d.printf("RangeExpr %s %s\n", n.pos, n.Op)
		d.indent++
		d.child("From", n.From)
		d.child("To", n.To)
		if n.Step != nil {
			d.child("Step", n.Step)
		}
		d.indent--

	case *RunExpr:
		d.printf("RunExpr %s\n", n.pos)
		d.indent++
		d.dump(n.Body)
		d.indent--

	default:
		d.printf("<%T>\n", node)
	}
}

// typeString returns the source spelling of a type annotation; a missing
// annotation is Unit.
func typeString(t *TypeName) string {
	if t == nil {
		return UNIT.Text()
	}
	return t.Kind.Text()
}
