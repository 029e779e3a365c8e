package codegen

import (
	"math"

	"github.com/you-not-fish/ktc/internal/env"
	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/rtabi"
	"github.com/you-not-fish/ktc/internal/syntax"
	"github.com/you-not-fish/ktc/internal/types"
)

// Statement visitors report whether control never reaches the end of the
// statement: it returns, branches or traps on every path.

// stmt emits s and reports whether it always jumps.
func (g *generator) stmt(s syntax.Stmt) bool {
	g.comment(s)
	jumps, _ := syntax.AcceptStmt[bool](g, s)
	return jumps
}

// stmts emits list up to the first statement that always jumps.
func (g *generator) stmts(list []syntax.Stmt) bool {
	for _, s := range list {
		if g.stmt(s) {
			return true
		}
	}
	return false
}

func (g *generator) comment(s syntax.Stmt) {
	if g.cfg.Comments {
		g.e.emitComment("line %d", s.Pos().Line())
	}
}

// enter opens a scope nested in the current one.
func (g *generator) enter() (leave func()) {
	saved := g.scope
	h := g.scopes.Push(saved)
	g.scope = h
	return func() {
		g.scopes.Pop(h)
		g.scope = saved
	}
}

func (g *generator) block(b *syntax.BlockStmt) bool {
	leave := g.enter()
	defer leave()
	return g.stmts(b.Stmts)
}

// loop emits body with break and continue bound to the given labels.
func (g *generator) loop(cont, brk string, body func() bool) bool {
	g.loops = append(g.loops, loopLabels{cont: cont, brk: brk})
	defer func() { g.loops = g.loops[:len(g.loops)-1] }()
	return body()
}

func (g *generator) VisitFuncDecl(*syntax.FuncDecl) (bool, error) {
	return false, nil
}

func (g *generator) VisitVarDecl(d *syntax.VarDecl) (bool, error) {
	t := g.expr(d.Value)
	off := g.newSlot()
	if t == types.Invalid {
		return true, nil
	}
	decl := types.Of(d.Type)
	if !types.Assignable(decl, t) {
		g.trap(d.Pos(), eval.TypeMismatch, "cannot initialize '%s' of type %s with %s", d.Name.Value, decl, t)
		return true, nil
	}
	g.convert(t, decl)
	g.store(decl, slotAddr(off))
	g.scopes.Define(g.scope, d.Name.Value, env.Binding[int64]{Type: decl, Mutable: d.Mutable, Value: off})
	return false, nil
}

func (g *generator) VisitBlockStmt(b *syntax.BlockStmt) (bool, error) {
	return g.block(b), nil
}

// cond emits a condition and tests it, leaving ZF set when it is false.
// It reports false when the condition always traps.
func (g *generator) cond(x syntax.Expr) bool {
	t := g.expr(x)
	if t == types.Invalid {
		return false
	}
	if t != types.Boolean {
		g.trap(x.Pos(), eval.TypeMismatch, "condition must be Boolean, got %s", t)
		return false
	}
	g.e.emitAsm("testq %rax, %rax")
	return true
}

func (g *generator) VisitIfStmt(s *syntax.IfStmt) (bool, error) {
	if !g.cond(s.Cond) {
		return true, nil
	}
	els := g.e.newLabel("else")
	g.e.emitInst("je %s", els)
	thenJumps := g.block(s.Then)
	if s.Else == nil {
		g.e.emitLabel(els)
		return false, nil
	}

	end := g.e.newLabel("endif")
	if !thenJumps {
		g.e.emitInst("jmp %s", end)
	}
	g.e.emitLabel(els)
	elseJumps, _ := syntax.AcceptStmt[bool](g, s.Else)
	g.e.emitLabel(end)
	return thenJumps && elseJumps, nil
}

func (g *generator) VisitWhileStmt(s *syntax.WhileStmt) (bool, error) {
	top := g.e.newLabel("while")
	end := g.e.newLabel("endwhile")
	g.e.emitLabel(top)
	if !g.cond(s.Cond) {
		return true, nil
	}
	g.e.emitInst("je %s", end)
	g.loop(top, end, func() bool { return g.block(s.Body) })
	g.e.emitInst("jmp %s", top)
	g.e.emitLabel(end)
	return false, nil
}

func (g *generator) VisitDoWhileStmt(s *syntax.DoWhileStmt) (bool, error) {
	top := g.e.newLabel("do")
	cont := g.e.newLabel("docond")
	end := g.e.newLabel("enddo")
	g.e.emitLabel(top)

	// The condition sees the body's declarations.
	leave := g.enter()
	g.loop(cont, end, func() bool { return g.stmts(s.Body.Stmts) })
	g.e.emitLabel(cont)
	ok := g.cond(s.Cond)
	leave()

	if ok {
		g.e.emitInst("jne %s", top)
	}
	g.e.emitLabel(end)
	return false, nil
}

// bound emits a range bound, which must be Int. It reports false when the
// bound always traps.
func (g *generator) bound(x syntax.Expr) bool {
	t := g.expr(x)
	if t == types.Invalid {
		return false
	}
	if t != types.Int {
		g.trap(x.Pos(), eval.TypeMismatch, "range bound must be Int, got %s", t)
		return false
	}
	return true
}

// VisitForStmt keeps the loop variable, the last element and the step in
// frame slots. The distance to the last element is compared unsigned, so
// that ranges ending near the Int limits terminate.
func (g *generator) VisitForStmt(s *syntax.ForStmt) (bool, error) {
	r := s.Range
	curOff := g.newSlot()
	cur, last, step := slotAddr(curOff), slotAddr(g.newSlot()), slotAddr(g.newSlot())

	if !g.bound(r.From) {
		return true, nil
	}
	g.push(types.Int)
	if !g.bound(r.To) {
		g.drop(rtabi.WordSize)
		return true, nil
	}
	g.push(types.Int)
	if r.Step != nil {
		if !g.bound(r.Step) {
			g.drop(2 * rtabi.WordSize)
			return true, nil
		}
		ok := g.e.newLabel("step")
		g.e.emitAsm("testq %rax, %rax")
		g.e.emitInst("jg %s", ok)
		g.e.emitAsm("movq %rax, %rsi")
		err := &eval.RuntimeError{Pos: r.Step.Pos(), Kind: eval.InvalidRange, Msg: "step must be positive, was %ld"}
		g.panicCall(err.Error() + "\n")
		g.e.emitLabel(ok)
		g.e.emitInst("movq %%rax, %s", step)
	} else {
		g.e.emitInst("movq $1, %s", step)
	}
	g.popTo("%rax")
	g.popTo("%rcx")

	end := g.e.newLabel("endfor")
	down := r.Op == syntax.DOWNTO
	g.e.emitInst("movq %%rcx, %s", cur)
	if r.Op == syntax.UNTIL {
		// Nothing is below the smallest Int.
		g.e.emitInst("movabsq $%d, %%rdx", int64(math.MinInt64))
		g.e.emitAsm("cmpq %rdx, %rax")
		g.e.emitInst("je %s", end)
		g.e.emitAsm("decq %rax")
	}
	g.e.emitInst("movq %%rax, %s", last)
	g.e.emitAsm("cmpq %rax, %rcx")
	if down {
		g.e.emitInst("jl %s", end)
	} else {
		g.e.emitInst("jg %s", end)
	}

	body := g.e.newLabel("for")
	next := g.e.newLabel("fornext")
	g.e.emitLabel(body)
	leave := g.enter()
	g.scopes.Define(g.scope, s.Var.Value, env.Binding[int64]{Type: types.Int, Value: curOff})
	g.loop(next, end, func() bool { return g.stmts(s.Body.Stmts) })
	leave()

	g.e.emitLabel(next)
	if down {
		g.e.emitInst("movq %s, %%rax", cur)
		g.e.emitInst("subq %s, %%rax", last)
	} else {
		g.e.emitInst("movq %s, %%rax", last)
		g.e.emitInst("subq %s, %%rax", cur)
	}
	g.e.emitInst("cmpq %s, %%rax", step)
	g.e.emitInst("jb %s", end)
	g.e.emitInst("movq %s, %%rax", step)
	if down {
		g.e.emitInst("subq %%rax, %s", cur)
	} else {
		g.e.emitInst("addq %%rax, %s", cur)
	}
	g.e.emitInst("jmp %s", body)
	g.e.emitLabel(end)
	return false, nil
}

func (g *generator) VisitReturnStmt(s *syntax.ReturnStmt) (bool, error) {
	result := types.Of(g.fn.Result)
	t := types.Unit
	if s.Result != nil {
		if t = g.expr(s.Result); t == types.Invalid {
			return true, nil
		}
	}
	if !types.Assignable(result, t) {
		g.trap(s.Pos(), eval.TypeMismatch, "cannot return %s from function '%s' returning %s", t, g.fn.Name.Value, result)
		return true, nil
	}
	g.convert(t, result)
	g.e.emitInst("jmp %s", g.retLabel)
	return true, nil
}

func (g *generator) VisitBranchStmt(s *syntax.BranchStmt) (bool, error) {
	l := g.loops[len(g.loops)-1]
	if s.Tok == syntax.BREAK {
		g.e.emitInst("jmp %s", l.brk)
	} else {
		g.e.emitInst("jmp %s", l.cont)
	}
	return true, nil
}

func (g *generator) VisitRunStmt(s *syntax.RunStmt) (bool, error) {
	return g.block(s.Body), nil
}

func (g *generator) VisitExprStmt(s *syntax.ExprStmt) (bool, error) {
	return g.expr(s.X) == types.Invalid, nil
}
