package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/env"
	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/rtabi"
	"github.com/you-not-fish/ktc/internal/syntax"
	"github.com/you-not-fish/ktc/internal/types"
)

// expr emits code leaving the value of x in the current value register and
// returns its type. Invalid means the emitted code always traps.
func (g *generator) expr(x syntax.Expr) types.Basic {
	// Visitors report failures through the emitter.
	t, _ := syntax.AcceptExpr[types.Basic](g, x)
	return t
}

func (g *generator) VisitName(x *syntax.Name) (types.Basic, error) {
	b, _ := g.scopes.Lookup(g.scope, x.Value)
	if b == nil {
		return g.trap(x.Pos(), eval.UndefinedVariable, "undefined variable '%s'", x.Value), nil
	}
	g.load(b.Type, slotAddr(b.Value))
	return b.Type, nil
}

func (g *generator) VisitIntLit(x *syntax.IntLit) (types.Basic, error) {
	if x.Value >= math.MinInt32 && x.Value <= math.MaxInt32 {
		g.e.emitInst("movq $%d, %%rax", x.Value)
	} else {
		g.e.emitInst("movabsq $%d, %%rax", x.Value)
	}
	return types.Int, nil
}

func (g *generator) VisitFloatLit(x *syntax.FloatLit) (types.Basic, error) {
	g.e.emitInst("movsd %s(%%rip), %%xmm0", g.floatLabel(x.Value))
	return types.Float, nil
}

func (g *generator) VisitStringLit(x *syntax.StringLit) (types.Basic, error) {
	g.e.emitInst("leaq %s(%%rip), %%rax", g.stringLabel(x.Value))
	return types.String, nil
}

func (g *generator) VisitBoolLit(x *syntax.BoolLit) (types.Basic, error) {
	if x.Value {
		g.e.emitAsm("movl $1, %eax")
	} else {
		g.e.emitAsm("xorl %eax, %eax")
	}
	return types.Boolean, nil
}

func (g *generator) VisitParenExpr(x *syntax.ParenExpr) (types.Basic, error) {
	return g.expr(x.X), nil
}

func (g *generator) VisitBinary(x *syntax.Binary) (types.Basic, error) {
	if x.Op == syntax.AND || x.Op == syntax.OR {
		return g.logical(x), nil
	}
	lt := g.expr(x.X)
	if lt == types.Invalid {
		return lt, nil
	}
	g.push(lt)
	rt := g.expr(x.Y)
	if rt == types.Invalid {
		g.drop(rtabi.WordSize)
		return rt, nil
	}
	return g.binaryOp(x.Pos(), x.Op, lt, rt), nil
}

// logical emits a short-circuit && or ||.
func (g *generator) logical(x *syntax.Binary) types.Basic {
	lt := g.expr(x.X)
	if lt == types.Invalid {
		return lt
	}
	if lt != types.Boolean {
		return g.operandError(x.Pos(), x.Op, lt)
	}

	g.e.emitAsm("testq %rax, %rax")
	var end string
	if x.Op == syntax.AND {
		end = g.e.newLabel("and")
		g.e.emitInst("je %s", end)
	} else {
		end = g.e.newLabel("or")
		g.e.emitInst("jne %s", end)
	}
	if rt := g.expr(x.Y); rt != types.Invalid && rt != types.Boolean {
		g.operandError(x.Pos(), x.Op, rt)
	}
	g.e.emitLabel(end)
	return types.Boolean
}

func (g *generator) operandError(pos syntax.Pos, op syntax.Kind, t types.Basic) types.Basic {
	return g.trap(pos, eval.TypeMismatch, "operator %s requires Boolean operands, got %s", op.Text(), t)
}

// binaryOp applies a non-short-circuit operator to the value of type lt on
// top of the stack and the current value of type rt. The left operand is
// popped.
func (g *generator) binaryOp(pos syntax.Pos, op syntax.Kind, lt, rt types.Basic) types.Basic {
	res, ok := types.BinaryResult(op, lt, rt)
	if !ok {
		g.drop(rtabi.WordSize)
		return g.trap(pos, eval.TypeMismatch, "operator %s cannot be applied to %s and %s", op.Text(), lt, rt)
	}

	switch {
	case res == types.String:
		g.concat(lt, rt)
		return types.String

	case lt == types.String:
		g.e.emitAsm("movq %rax, %rsi")
		g.popTo("%rdi")
		g.call(rtabi.FnStrcmp, 0)
		g.e.emitAsm("cmpl $0, %eax")
		g.setcc(op)
		return types.Boolean

	case isFloat(lt) || isFloat(rt):
		g.floatOperands(lt, rt)
		if res == types.Boolean {
			g.floatCompare(op)
			return types.Boolean
		}
		g.floatArith(op)
		return types.Float
	}

	g.e.emitAsm("movq %rax, %rcx")
	g.popTo("%rax")
	if res == types.Boolean {
		g.e.emitAsm("cmpq %rcx, %rax")
		g.setcc(op)
		return types.Boolean
	}
	g.intArith(pos, op)
	return types.Int
}

var conditions = map[syntax.Kind]string{
	syntax.EQ: "e",
	syntax.NE: "ne",
	syntax.LT: "l",
	syntax.GT: "g",
	syntax.LE: "le",
	syntax.GE: "ge",
}

// setcc materializes a signed comparison of the flags as 0 or 1 in %rax.
func (g *generator) setcc(op syntax.Kind) {
	g.e.emitInst("set%s %%al", conditions[op])
	g.e.emitAsm("movzbq %al, %rax")
}

// concat joins the canonical text of both operands.
func (g *generator) concat(lt, rt types.Basic) {
	g.toText(rt)
	g.push(types.String)
	g.load(lt, "8(%rsp)")
	g.toText(lt)
	g.e.emitAsm("movq %rax, %rdi")
	g.popTo("%rsi")
	g.drop(rtabi.WordSize)
	g.call(rtabi.FnConcat, 0)
}

// floatOperands moves the left operand to %xmm0 and the right one to
// %xmm1, widening Int operands.
func (g *generator) floatOperands(lt, rt types.Basic) {
	if rt == types.Int {
		g.e.emitAsm("cvtsi2sdq %rax, %xmm1")
	} else {
		g.e.emitAsm("movapd %xmm0, %xmm1")
	}
	g.popTo("%rax")
	if lt == types.Int {
		g.e.emitAsm("cvtsi2sdq %rax, %xmm0")
	} else {
		g.e.emitAsm("movq %rax, %xmm0")
	}
}

// floatCompare compares %xmm0 with %xmm1. Every comparison with NaN is
// false except !=.
func (g *generator) floatCompare(op syntax.Kind) {
	switch op {
	case syntax.GT:
		g.e.emitAsm("ucomisd %xmm1, %xmm0", "seta %al")
	case syntax.GE:
		g.e.emitAsm("ucomisd %xmm1, %xmm0", "setae %al")
	case syntax.LT:
		g.e.emitAsm("ucomisd %xmm0, %xmm1", "seta %al")
	case syntax.LE:
		g.e.emitAsm("ucomisd %xmm0, %xmm1", "setae %al")
	case syntax.EQ:
		g.e.emitAsm("ucomisd %xmm1, %xmm0", "sete %al", "setnp %cl", "andb %cl, %al")
	case syntax.NE:
		g.e.emitAsm("ucomisd %xmm1, %xmm0", "setne %al", "setp %cl", "orb %cl, %al")
	}
	g.e.emitAsm("movzbq %al, %rax")
}

func (g *generator) floatArith(op syntax.Kind) {
	switch op {
	case syntax.PLUS:
		g.e.emitAsm("addsd %xmm1, %xmm0")
	case syntax.MINUS:
		g.e.emitAsm("subsd %xmm1, %xmm0")
	case syntax.MUL:
		g.e.emitAsm("mulsd %xmm1, %xmm0")
	case syntax.DIV:
		g.e.emitAsm("divsd %xmm1, %xmm0")
	case syntax.MOD:
		g.call(rtabi.FnFmod, 0)
	}
}

// intArith computes %rax op %rcx with wrapping arithmetic.
func (g *generator) intArith(pos syntax.Pos, op syntax.Kind) {
	switch op {
	case syntax.PLUS:
		g.e.emitAsm("addq %rcx, %rax")
		return
	case syntax.MINUS:
		g.e.emitAsm("subq %rcx, %rax")
		return
	case syntax.MUL:
		g.e.emitAsm("imulq %rcx, %rax")
		return
	}

	ok := g.e.newLabel("divok")
	g.e.emitAsm("testq %rcx, %rcx")
	g.e.emitInst("jne %s", ok)
	g.trap(pos, eval.DivisionByZero, "division by zero")
	g.e.emitLabel(ok)

	// idivq faults on MinInt64 / -1; the wrapped results are -x and 0.
	neg := g.e.newLabel("divneg")
	done := g.e.newLabel("divend")
	g.e.emitAsm("cmpq $-1, %rcx")
	g.e.emitInst("je %s", neg)
	g.e.emitAsm("cqto", "idivq %rcx")
	if op == syntax.MOD {
		g.e.emitAsm("movq %rdx, %rax")
	}
	g.e.emitInst("jmp %s", done)
	g.e.emitLabel(neg)
	if op == syntax.DIV {
		g.e.emitAsm("negq %rax")
	} else {
		g.e.emitAsm("xorl %eax, %eax")
	}
	g.e.emitLabel(done)
}

func (g *generator) VisitUnary(x *syntax.Unary) (types.Basic, error) {
	t := g.expr(x.X)
	if t == types.Invalid {
		return t, nil
	}
	if _, ok := types.UnaryResult(x.Op, t); !ok {
		return g.trap(x.Pos(), eval.TypeMismatch, "operator %s cannot be applied to %s", x.Op.Text(), t), nil
	}
	switch {
	case x.Op == syntax.NOT:
		g.e.emitAsm("xorq $1, %rax")
	case x.Op == syntax.PLUS:
	case isFloat(t):
		g.e.emitAsm("movq %xmm0, %rax", "btcq $63, %rax", "movq %rax, %xmm0")
	default:
		g.e.emitAsm("negq %rax")
	}
	return t, nil
}

// target returns the binding an assignment or increment writes to, or nil
// after emitting a trap.
func (g *generator) target(n *syntax.Name) *env.Binding[int64] {
	b, err := g.scopes.Writable(g.scope, n.Value)
	switch cause := errors.Cause(err); cause {
	case nil:
		return b
	case env.ErrUndefined:
		g.trap(n.Pos(), eval.UndefinedVariable, "%v '%s'", cause, n.Value)
	default:
		g.trap(n.Pos(), eval.ImmutableAssignment, "%v '%s'", cause, n.Value)
	}
	return nil
}

func (g *generator) VisitAssign(x *syntax.Assign) (types.Basic, error) {
	b := g.target(x.Target)
	if b == nil {
		return types.Invalid, nil
	}
	mem := slotAddr(b.Value)

	op := types.CompoundOp(x.Op)
	compound := op != syntax.ASSIGN
	if compound {
		g.load(b.Type, mem)
		g.push(b.Type)
	}
	t := g.expr(x.Value)
	if t == types.Invalid {
		if compound {
			g.drop(rtabi.WordSize)
		}
		return t, nil
	}
	if compound {
		if t = g.binaryOp(x.Pos(), op, b.Type, t); t == types.Invalid {
			return t, nil
		}
	}
	if !types.Assignable(b.Type, t) {
		return g.trap(x.Pos(), eval.TypeMismatch, "cannot assign %s to '%s' of type %s", t, x.Target.Value, b.Type), nil
	}
	g.convert(t, b.Type)
	g.store(b.Type, mem)
	return b.Type, nil
}

func (g *generator) VisitIncDec(x *syntax.IncDec) (types.Basic, error) {
	b := g.target(x.Target)
	if b == nil {
		return types.Invalid, nil
	}
	if !b.Type.IsNumeric() {
		return g.trap(x.Pos(), eval.TypeMismatch, "operator %s cannot be applied to %s", x.Op.Text(), b.Type), nil
	}
	mem := slotAddr(b.Value)

	if b.Type == types.Int {
		inst := "addq"
		if x.Op == syntax.DECREMENT {
			inst = "subq"
		}
		if !x.Prefix {
			g.e.emitInst("movq %s, %%rax", mem)
		}
		g.e.emitInst("%s $1, %s", inst, mem)
		if x.Prefix {
			g.e.emitInst("movq %s, %%rax", mem)
		}
		return types.Int, nil
	}

	inst := "addsd"
	if x.Op == syntax.DECREMENT {
		inst = "subsd"
	}
	g.e.emitInst("movsd %s, %%xmm0", mem)
	g.e.emitInst("movsd %s(%%rip), %%xmm1", g.floatLabel(1))
	if x.Prefix {
		g.e.emitInst("%s %%xmm1, %%xmm0", inst)
		g.e.emitInst("movsd %%xmm0, %s", mem)
	} else {
		g.e.emitAsm("movapd %xmm0, %xmm2")
		g.e.emitInst("%s %%xmm1, %%xmm2", inst)
		g.e.emitInst("movsd %%xmm2, %s", mem)
	}
	return types.Float, nil
}

func arityMessage(name string, min, max, got int) string {
	want := strconv.Itoa(min)
	if max != min {
		want = strconv.Itoa(min) + " to " + strconv.Itoa(max)
	}
	return fmt.Sprintf("'%s' expects %s arguments, got %d", name, want, got)
}

func (g *generator) VisitCall(x *syntax.Call) (types.Basic, error) {
	name := x.Fun.Value
	fn := g.funcs[name]
	if fn == nil {
		if b := types.LookupBuiltin(name); b != nil {
			return g.builtin(b, x), nil
		}
		return g.trap(x.Pos(), eval.UndefinedVariable, "undefined function '%s'", name), nil
	}

	n := len(fn.Params)
	if len(x.Args) != n {
		return g.trap(x.Pos(), eval.ArityMismatch, "%s", arityMessage(name, n, n, len(x.Args))), nil
	}

	// Pad before the arguments so that %rsp is aligned at the call.
	size := int64(n) * rtabi.WordSize
	var pad int64
	if (g.pushed+size)%rtabi.StackAlign != 0 {
		pad = rtabi.WordSize
		g.e.emitInst("subq $%d, %%rsp", pad)
		g.pushed += pad
	}
	for i, a := range x.Args {
		t := g.expr(a)
		if t == types.Invalid {
			g.drop(int64(i)*rtabi.WordSize + pad)
			return t, nil
		}
		p := fn.Params[i]
		pt := types.Of(p.Type)
		if !types.Assignable(pt, t) {
			g.drop(int64(i)*rtabi.WordSize + pad)
			return g.trap(a.Pos(), eval.TypeMismatch, "cannot pass %s as parameter '%s' of type %s", t, p.Name.Value, pt), nil
		}
		g.convert(t, pt)
		g.push(pt)
	}

	ok := g.e.newLabel("call")
	g.e.emitInst("cmpq $%d, %s(%%rip)", g.cfg.MaxDepth, rtabi.DepthCounter)
	g.e.emitInst("jl %s", ok)
	g.trap(x.Pos(), eval.StackOverflow, "call depth exceeds %d in '%s'", g.cfg.MaxDepth, name)
	g.e.emitLabel(ok)
	g.e.emitInst("call %s", g.symbol(name))
	g.drop(size + pad)

	result := types.Of(fn.Result)
	g.zeroUnit(result)
	return result, nil
}

// builtin emits a call of print or println.
func (g *generator) builtin(b *types.Builtin, x *syntax.Call) types.Basic {
	if n := len(x.Args); n < b.MinArgs || n > b.MaxArgs {
		return g.trap(x.Pos(), eval.ArityMismatch, "%s", arityMessage(x.Fun.Value, b.MinArgs, b.MaxArgs, n))
	}

	if len(x.Args) == 0 {
		if b.Newline {
			g.e.emitInst("leaq %s(%%rip), %%rdi", g.stringLabel(rtabi.FmtNewline))
			g.call(rtabi.FnPrintf, 0)
		}
	} else {
		t := g.expr(x.Args[0])
		if t == types.Invalid {
			return t
		}
		g.print(t, b.Newline)
	}
	g.zeroUnit(types.Unit)
	return types.Unit
}

// print writes the canonical text of the current value of type t.
func (g *generator) print(t types.Basic, newline bool) {
	format, floats := rtabi.FmtString, 0
	switch t {
	case types.Int:
		format = rtabi.FmtInt
		g.e.emitAsm("movq %rax, %rsi")
	case types.Float:
		format, floats = rtabi.FmtFloat, 1
	default:
		g.toText(t)
		g.e.emitAsm("movq %rax, %rsi")
	}
	if newline {
		format += "\n"
	}
	g.e.emitInst("leaq %s(%%rip), %%rdi", g.stringLabel(format))
	g.call(rtabi.FnPrintf, floats)
}

func (g *generator) VisitRangeExpr(x *syntax.RangeExpr) (types.Basic, error) {
	return g.trap(x.Pos(), eval.TypeMismatch, "range used outside a for loop"), nil
}

func (g *generator) VisitRunExpr(x *syntax.RunExpr) (types.Basic, error) {
	leave := g.enter()
	defer leave()

	stmts := x.Body.Stmts
	last := len(stmts) - 1
	for i, s := range stmts {
		if es, ok := s.(*syntax.ExprStmt); ok && i == last {
			g.comment(s)
			return g.expr(es.X), nil
		}
		if g.stmt(s) {
			return types.Invalid, nil
		}
	}
	g.zeroUnit(types.Unit)
	return types.Unit, nil
}

// ----------------------------------------------------------------------------
// Read-only data

func stringName(i int) string { return fmt.Sprintf(".Lstr_%d", i) }
func floatName(i int) string  { return fmt.Sprintf(".Lflt_%d", i) }

// stringLabel returns the label of a string in the read-only data,
// adding it if not present.
func (g *generator) stringLabel(s string) string {
	if idx, ok := g.stringMap[s]; ok {
		return stringName(idx)
	}
	idx := len(g.strings)
	g.strings = append(g.strings, s)
	g.stringMap[s] = idx
	return stringName(idx)
}

// floatLabel returns the label of a float constant, stored as its bit
// pattern so that every value, including -0 and NaN, is exact.
func (g *generator) floatLabel(f float64) string {
	bits := math.Float64bits(f)
	if idx, ok := g.floatMap[bits]; ok {
		return floatName(idx)
	}
	idx := len(g.floats)
	g.floats = append(g.floats, bits)
	g.floatMap[bits] = idx
	return floatName(idx)
}

// gasEscapeString returns s escaped for a .string directive.
// Non-printable bytes are written as octal escapes.
func gasEscapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' || c == '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
