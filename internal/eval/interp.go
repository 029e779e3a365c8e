// Package eval implements a tree-walking interpreter for parsed programs.
//
// Statements execute against a chain of scopes kept in an env.Arena: one
// scope per function call, whose parent is the global scope, and one per
// block, loop iteration and run block. Control transfer is explicit: every
// statement yields an outcome (normal, returned, break, continue) that
// statement sequences check and short-circuit on.
package eval

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/env"
	"github.com/you-not-fish/ktc/internal/log"
	"github.com/you-not-fish/ktc/internal/syntax"
	"github.com/you-not-fish/ktc/internal/types"
)

var logger = log.New("pkg", "eval")

// DefaultMaxDepth is the call depth limit used when Options.MaxDepth is 0.
const DefaultMaxDepth = 10000

// Options configures an evaluation.
type Options struct {
	MaxDepth int // maximum call depth; 0 means DefaultMaxDepth
}

// Result describes a completed evaluation.
type Result struct {
	ExitStatus int   // low 8 bits of main's result when main returns Int, else 0
	Steps      int64 // statements executed
	PeakScopes int   // largest number of simultaneously live scopes
}

// Run executes prog's main function, writing program output to out.
// Evaluation stops at the first runtime error, returned as a *RuntimeError;
// output produced before the error has already been written.
func Run(prog *syntax.Program, out io.Writer, opts Options) (*Result, error) {
	in := newInterp(prog, out, opts)

	status, err := in.runMain()
	if err == nil && in.werr != nil {
		err = errors.Wrap(in.werr, "write program output")
	}
	res := &Result{ExitStatus: status, Steps: in.steps, PeakScopes: in.scopes.Peak()}
	logger.Debug("Evaluation finished", "steps", res.Steps, "scopes", res.PeakScopes, "status", status, "err", err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// outcome is the result of executing a statement.
type outcome struct {
	kind  outcomeKind
	value Value      // returned value
	pos   syntax.Pos // position of the return statement
}

type outcomeKind uint8

const (
	normal outcomeKind = iota
	returned
	broke
	continued
)

type interp struct {
	funcs map[string]*syntax.FuncDecl
	prog  *syntax.Program

	out  io.Writer
	werr error // first output error

	scopes *env.Arena[Value]
	global env.Handle
	scope  env.Handle // innermost scope

	depth    int
	maxDepth int
	steps    int64
}

var (
	_ syntax.ExprVisitor[Value]   = (*interp)(nil)
	_ syntax.StmtVisitor[outcome] = (*interp)(nil)
)

func newInterp(prog *syntax.Program, out io.Writer, opts Options) *interp {
	in := &interp{
		funcs:    make(map[string]*syntax.FuncDecl),
		prog:     prog,
		out:      out,
		scopes:   env.New[Value](),
		maxDepth: opts.MaxDepth,
	}
	if in.maxDepth <= 0 {
		in.maxDepth = DefaultMaxDepth
	}
	for _, fn := range prog.Funcs {
		in.funcs[fn.Name.Value] = fn // last declaration wins
	}
	in.global = in.scopes.Push(env.NoScope)
	in.scope = in.global
	return in
}

func (in *interp) runMain() (int, error) {
	main := in.funcs["main"]
	if main == nil {
		return 0, errorf(in.prog.Pos(), UndefinedVariable, "undefined function 'main'")
	}
	if len(main.Params) != 0 {
		return 0, errorf(main.Pos(), ArityMismatch, "function 'main' must not take parameters")
	}
	v, err := in.call(main, nil, main.Pos())
	if err != nil {
		return 0, err
	}
	if v.Type == types.Int {
		return int(uint8(v.Int())), nil
	}
	return 0, nil
}

func (in *interp) write(s string) {
	if in.werr == nil {
		_, in.werr = io.WriteString(in.out, s)
	}
}

func (in *interp) expr(x syntax.Expr) (Value, error) {
	return syntax.AcceptExpr[Value](in, x)
}

// ----------------------------------------------------------------------------
// Scopes and calls

// execStmts runs list in the current scope, stopping at the first
// statement that does not complete normally.
func (in *interp) execStmts(list []syntax.Stmt) (outcome, error) {
	for _, s := range list {
		in.steps++
		o, err := syntax.AcceptStmt[outcome](in, s)
		if err != nil || o.kind != normal {
			return o, err
		}
	}
	return outcome{}, nil
}

// enter pushes a child of the current scope and makes it current.
// The returned function restores the previous scope.
func (in *interp) enter(parent env.Handle) (leave func()) {
	saved := in.scope
	h := in.scopes.Push(parent)
	in.scope = h
	return func() {
		in.scopes.Pop(h)
		in.scope = saved
	}
}

func (in *interp) execBlock(b *syntax.BlockStmt) (outcome, error) {
	leave := in.enter(in.scope)
	defer leave()
	return in.execStmts(b.Stmts)
}

// call runs fn with already converted arguments in a fresh scope whose
// parent is the global scope.
func (in *interp) call(fn *syntax.FuncDecl, args []Value, pos syntax.Pos) (Value, error) {
	if in.depth >= in.maxDepth {
		return Unit, errorf(pos, StackOverflow, "call depth exceeds %d in '%s'", in.maxDepth, fn.Name.Value)
	}
	in.depth++
	defer func() { in.depth-- }()

	leave := in.enter(in.global)
	for i, p := range fn.Params {
		in.scopes.Define(in.scope, p.Name.Value, env.Binding[Value]{Type: types.Of(p.Type), Value: args[i]})
	}
	o, err := in.execStmts(fn.Body.Stmts)
	leave()
	if err != nil {
		return Unit, err
	}

	result := types.Of(fn.Result)
	if o.kind != returned {
		if result != types.Unit {
			return Unit, errorf(fn.Body.Rbrace, TypeMismatch, "missing return in function '%s' returning %s", fn.Name.Value, result)
		}
		return Unit, nil
	}
	if !types.Assignable(result, o.value.Type) {
		return Unit, errorf(o.pos, TypeMismatch, "cannot return %s from function '%s' returning %s", o.value.Type, fn.Name.Value, result)
	}
	return o.value.convert(result), nil
}

func (in *interp) builtin(b *types.Builtin, x *syntax.Call) (Value, error) {
	if n := len(x.Args); n < b.MinArgs || n > b.MaxArgs {
		return Unit, arityError(x, b.MinArgs, b.MaxArgs)
	}
	var text string
	if len(x.Args) == 1 {
		v, err := in.expr(x.Args[0])
		if err != nil {
			return Unit, err
		}
		text = v.String()
	}
	if b.Newline {
		text += "\n"
	}
	in.write(text)
	return Unit, nil
}

func arityError(x *syntax.Call, min, max int) *RuntimeError {
	want := strconv.Itoa(min)
	if max != min {
		want = strconv.Itoa(min) + " to " + strconv.Itoa(max)
	}
	return errorf(x.Pos(), ArityMismatch, "'%s' expects %s arguments, got %d", x.Fun.Value, want, len(x.Args))
}

// ----------------------------------------------------------------------------
// Statements

func (in *interp) VisitFuncDecl(*syntax.FuncDecl) (outcome, error) {
	return outcome{}, nil
}

func (in *interp) VisitVarDecl(d *syntax.VarDecl) (outcome, error) {
	v, err := in.expr(d.Value)
	if err != nil {
		return outcome{}, err
	}
	t := types.Of(d.Type)
	if !types.Assignable(t, v.Type) {
		return outcome{}, errorf(d.Pos(), TypeMismatch, "cannot initialize '%s' of type %s with %s", d.Name.Value, t, v.Type)
	}
	in.scopes.Define(in.scope, d.Name.Value, env.Binding[Value]{Type: t, Mutable: d.Mutable, Value: v.convert(t)})
	return outcome{}, nil
}

func (in *interp) VisitBlockStmt(b *syntax.BlockStmt) (outcome, error) {
	return in.execBlock(b)
}

// cond evaluates a loop or if condition, which must be Boolean.
func (in *interp) cond(x syntax.Expr) (bool, error) {
	v, err := in.expr(x)
	if err != nil {
		return false, err
	}
	if v.Type != types.Boolean {
		return false, errorf(x.Pos(), TypeMismatch, "condition must be Boolean, got %s", v.Type)
	}
	return v.Bool(), nil
}

func (in *interp) VisitIfStmt(s *syntax.IfStmt) (outcome, error) {
	c, err := in.cond(s.Cond)
	if err != nil {
		return outcome{}, err
	}
	if c {
		return in.execBlock(s.Then)
	}
	if s.Else != nil {
		return syntax.AcceptStmt[outcome](in, s.Else)
	}
	return outcome{}, nil
}

func (in *interp) VisitWhileStmt(s *syntax.WhileStmt) (outcome, error) {
	for {
		c, err := in.cond(s.Cond)
		if err != nil || !c {
			return outcome{}, err
		}
		o, err := in.execBlock(s.Body)
		if err != nil {
			return o, err
		}
		switch o.kind {
		case broke:
			return outcome{}, nil
		case returned:
			return o, nil
		}
	}
}

func (in *interp) VisitDoWhileStmt(s *syntax.DoWhileStmt) (outcome, error) {
	for {
		// The condition sees the body's declarations.
		leave := in.enter(in.scope)
		o, err := in.execStmts(s.Body.Stmts)
		c := false
		if err == nil && (o.kind == normal || o.kind == continued) {
			c, err = in.cond(s.Cond)
		}
		leave()

		if err != nil {
			return o, err
		}
		switch o.kind {
		case broke:
			return outcome{}, nil
		case returned:
			return o, nil
		}
		if !c {
			return outcome{}, nil
		}
	}
}

func (in *interp) VisitForStmt(s *syntax.ForStmt) (outcome, error) {
	r, err := in.progression(s.Range)
	if err != nil || r.empty() {
		return outcome{}, err
	}

	for i := r.first; ; {
		leave := in.enter(in.scope)
		in.scopes.Define(in.scope, s.Var.Value, env.Binding[Value]{Type: types.Int, Value: IntValue(i)})
		o, err := in.execStmts(s.Body.Stmts)
		leave()

		if err != nil {
			return o, err
		}
		switch o.kind {
		case broke:
			return outcome{}, nil
		case returned:
			return o, nil
		}

		var ok bool
		if i, ok = r.next(i); !ok {
			return outcome{}, nil
		}
	}
}

func (in *interp) VisitReturnStmt(s *syntax.ReturnStmt) (outcome, error) {
	v := Unit
	if s.Result != nil {
		var err error
		if v, err = in.expr(s.Result); err != nil {
			return outcome{}, err
		}
	}
	return outcome{kind: returned, value: v, pos: s.Pos()}, nil
}

func (in *interp) VisitBranchStmt(s *syntax.BranchStmt) (outcome, error) {
	if s.Tok == syntax.BREAK {
		return outcome{kind: broke}, nil
	}
	return outcome{kind: continued}, nil
}

func (in *interp) VisitRunStmt(s *syntax.RunStmt) (outcome, error) {
	return in.execBlock(s.Body)
}

func (in *interp) VisitExprStmt(s *syntax.ExprStmt) (outcome, error) {
	_, err := in.expr(s.X)
	return outcome{}, err
}

// ----------------------------------------------------------------------------
// Expressions

func (in *interp) VisitName(x *syntax.Name) (Value, error) {
	b, _ := in.scopes.Lookup(in.scope, x.Value)
	if b == nil {
		return Unit, errorf(x.Pos(), UndefinedVariable, "undefined variable '%s'", x.Value)
	}
	return b.Value, nil
}

func (in *interp) VisitIntLit(x *syntax.IntLit) (Value, error) {
	return IntValue(x.Value), nil
}

func (in *interp) VisitFloatLit(x *syntax.FloatLit) (Value, error) {
	return FloatValue(x.Value), nil
}

func (in *interp) VisitStringLit(x *syntax.StringLit) (Value, error) {
	return StringValue(x.Value), nil
}

func (in *interp) VisitBoolLit(x *syntax.BoolLit) (Value, error) {
	return BoolValue(x.Value), nil
}

func (in *interp) VisitParenExpr(x *syntax.ParenExpr) (Value, error) {
	return in.expr(x.X)
}

func (in *interp) VisitBinary(x *syntax.Binary) (Value, error) {
	l, err := in.expr(x.X)
	if err != nil {
		return Unit, err
	}

	if x.Op == syntax.AND || x.Op == syntax.OR {
		if l.Type != types.Boolean {
			return Unit, operandError(x.Pos(), x.Op, l.Type)
		}
		if l.Bool() == (x.Op == syntax.OR) {
			return l, nil
		}
		r, err := in.expr(x.Y)
		if err != nil {
			return Unit, err
		}
		if r.Type != types.Boolean {
			return Unit, operandError(x.Pos(), x.Op, r.Type)
		}
		return r, nil
	}

	r, err := in.expr(x.Y)
	if err != nil {
		return Unit, err
	}
	return binaryOp(x.Pos(), x.Op, l, r)
}

func operandError(pos syntax.Pos, op syntax.Kind, t types.Basic) *RuntimeError {
	return errorf(pos, TypeMismatch, "operator %s requires Boolean operands, got %s", op.Text(), t)
}

// binaryOp applies a non-short-circuit binary operator.
func binaryOp(pos syntax.Pos, op syntax.Kind, l, r Value) (Value, error) {
	res, ok := types.BinaryResult(op, l.Type, r.Type)
	if !ok {
		return Unit, errorf(pos, TypeMismatch, "operator %s cannot be applied to %s and %s", op.Text(), l.Type, r.Type)
	}

	switch op {
	case syntax.EQ, syntax.NE, syntax.LT, syntax.GT, syntax.LE, syntax.GE:
		return BoolValue(compare(op, l, r)), nil
	}

	switch res {
	case types.String:
		return StringValue(l.String() + r.String()), nil
	case types.Float:
		return FloatValue(floatArith(op, l.Float(), r.Float())), nil
	}

	a, b := l.Int(), r.Int()
	switch op {
	case syntax.PLUS:
		return IntValue(a + b), nil
	case syntax.MINUS:
		return IntValue(a - b), nil
	case syntax.MUL:
		return IntValue(a * b), nil
	}
	if b == 0 {
		return Unit, errorf(pos, DivisionByZero, "division by zero")
	}
	if op == syntax.DIV {
		return IntValue(a / b), nil
	}
	return IntValue(a % b), nil
}

func floatArith(op syntax.Kind, a, b float64) float64 {
	switch op {
	case syntax.PLUS:
		return a + b
	case syntax.MINUS:
		return a - b
	case syntax.MUL:
		return a * b
	case syntax.DIV:
		return a / b
	}
	return math.Mod(a, b)
}

// compare applies a comparison operator to operands accepted by
// types.BinaryResult.
func compare(op syntax.Kind, l, r Value) bool {
	switch {
	case l.Type == types.Float || r.Type == types.Float:
		a, b := l.Float(), r.Float()
		switch op {
		case syntax.EQ:
			return a == b
		case syntax.NE:
			return a != b
		case syntax.LT:
			return a < b
		case syntax.GT:
			return a > b
		case syntax.LE:
			return a <= b
		}
		return a >= b

	case l.Type == types.String:
		return order(op, strings.Compare(l.Str(), r.Str()))
	}

	// Int, Boolean and Unit payloads all live in the integer field.
	c := 0
	if l.i < r.i {
		c = -1
	} else if l.i > r.i {
		c = 1
	}
	return order(op, c)
}

// order interprets a three-way comparison result c for op.
func order(op syntax.Kind, c int) bool {
	switch op {
	case syntax.EQ:
		return c == 0
	case syntax.NE:
		return c != 0
	case syntax.LT:
		return c < 0
	case syntax.GT:
		return c > 0
	case syntax.LE:
		return c <= 0
	}
	return c >= 0
}

func (in *interp) VisitUnary(x *syntax.Unary) (Value, error) {
	v, err := in.expr(x.X)
	if err != nil {
		return Unit, err
	}
	if _, ok := types.UnaryResult(x.Op, v.Type); !ok {
		return Unit, errorf(x.Pos(), TypeMismatch, "operator %s cannot be applied to %s", x.Op.Text(), v.Type)
	}
	switch {
	case x.Op == syntax.NOT:
		return BoolValue(!v.Bool()), nil
	case x.Op == syntax.PLUS:
		return v, nil
	case v.Type == types.Float:
		return FloatValue(-v.Float()), nil
	}
	return IntValue(-v.Int()), nil
}

// target returns the binding an assignment or increment writes to.
func (in *interp) target(n *syntax.Name) (*env.Binding[Value], error) {
	b, err := in.scopes.Writable(in.scope, n.Value)
	switch cause := errors.Cause(err); cause {
	case nil:
		return b, nil
	case env.ErrUndefined:
		return nil, errorf(n.Pos(), UndefinedVariable, "%v '%s'", cause, n.Value)
	default:
		return nil, errorf(n.Pos(), ImmutableAssignment, "%v '%s'", cause, n.Value)
	}
}

func (in *interp) VisitAssign(x *syntax.Assign) (Value, error) {
	b, err := in.target(x.Target)
	if err != nil {
		return Unit, err
	}
	old := b.Value

	v, err := in.expr(x.Value)
	if err != nil {
		return Unit, err
	}
	if op := types.CompoundOp(x.Op); op != syntax.ASSIGN {
		if v, err = binaryOp(x.Pos(), op, old, v); err != nil {
			return Unit, err
		}
	}
	if !types.Assignable(b.Type, v.Type) {
		return Unit, errorf(x.Pos(), TypeMismatch, "cannot assign %s to '%s' of type %s", v.Type, x.Target.Value, b.Type)
	}
	b.Value = v.convert(b.Type)
	return b.Value, nil
}

func (in *interp) VisitIncDec(x *syntax.IncDec) (Value, error) {
	b, err := in.target(x.Target)
	if err != nil {
		return Unit, err
	}
	if !b.Type.IsNumeric() {
		return Unit, errorf(x.Pos(), TypeMismatch, "operator %s cannot be applied to %s", x.Op.Text(), b.Type)
	}

	old := b.Value
	delta := int64(1)
	if x.Op == syntax.DECREMENT {
		delta = -1
	}
	if old.Type == types.Float {
		b.Value = FloatValue(old.Float() + float64(delta))
	} else {
		b.Value = IntValue(old.Int() + delta)
	}

	if x.Prefix {
		return b.Value, nil
	}
	return old, nil
}

func (in *interp) VisitCall(x *syntax.Call) (Value, error) {
	name := x.Fun.Value
	fn := in.funcs[name]
	if fn == nil {
		if b := types.LookupBuiltin(name); b != nil {
			return in.builtin(b, x)
		}
		return Unit, errorf(x.Pos(), UndefinedVariable, "undefined function '%s'", name)
	}

	if len(x.Args) != len(fn.Params) {
		return Unit, arityError(x, len(fn.Params), len(fn.Params))
	}
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		v, err := in.expr(a)
		if err != nil {
			return Unit, err
		}
		p := fn.Params[i]
		t := types.Of(p.Type)
		if !types.Assignable(t, v.Type) {
			return Unit, errorf(a.Pos(), TypeMismatch, "cannot pass %s as parameter '%s' of type %s", v.Type, p.Name.Value, t)
		}
		args[i] = v.convert(t)
	}
	return in.call(fn, args, x.Pos())
}

func (in *interp) VisitRangeExpr(x *syntax.RangeExpr) (Value, error) {
	return Unit, errorf(x.Pos(), TypeMismatch, "range used outside a for loop")
}

func (in *interp) VisitRunExpr(x *syntax.RunExpr) (Value, error) {
	leave := in.enter(in.scope)
	defer leave()

	stmts := x.Body.Stmts
	last := len(stmts) - 1
	for i, s := range stmts {
		in.steps++
		if es, ok := s.(*syntax.ExprStmt); ok && i == last {
			return in.expr(es.X)
		}
		o, err := syntax.AcceptStmt[outcome](in, s)
		if err != nil {
			return Unit, err
		}
		if o.kind != normal {
			break
		}
	}
	return Unit, nil
}
