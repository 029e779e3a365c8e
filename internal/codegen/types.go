package codegen

import (
	"fmt"

	"github.com/you-not-fish/ktc/internal/rtabi"
	"github.com/you-not-fish/ktc/internal/types"
)

// The current value of type t is in %xmm0 when isFloat(t), else in %rax.
func isFloat(t types.Basic) bool {
	return types.InFloatReg(t)
}

// slotAddr returns the memory operand of a frame slot.
func slotAddr(off int64) string {
	return fmt.Sprintf("%d(%%rbp)", off)
}

// load moves a value of type t from mem into the current value register.
func (g *generator) load(t types.Basic, mem string) {
	if isFloat(t) {
		g.e.emitInst("movsd %s, %%xmm0", mem)
	} else {
		g.e.emitInst("movq %s, %%rax", mem)
	}
}

// store moves the current value of type t to mem.
func (g *generator) store(t types.Basic, mem string) {
	if isFloat(t) {
		g.e.emitInst("movsd %%xmm0, %s", mem)
	} else {
		g.e.emitInst("movq %%rax, %s", mem)
	}
}

// push saves the current value of type t on the stack.
func (g *generator) push(t types.Basic) {
	if isFloat(t) {
		g.e.emitAsm("movq %xmm0, %rax")
	}
	g.e.emitAsm("pushq %rax")
	g.pushed += types.Sizeof(t)
}

// pop restores a value of type t pushed by push into the current value
// register.
func (g *generator) pop(t types.Basic) {
	g.e.emitAsm("popq %rax")
	if isFloat(t) {
		g.e.emitAsm("movq %rax, %xmm0")
	}
	g.pushed -= types.Sizeof(t)
}

// popTo pops the top of the stack into reg without interpreting it.
func (g *generator) popTo(reg string) {
	g.e.emitInst("popq %s", reg)
	g.pushed -= rtabi.WordSize
}

// drop discards n bytes from the top of the stack.
func (g *generator) drop(n int64) {
	if n == 0 {
		return
	}
	g.e.emitInst("addq $%d, %%rsp", n)
	g.pushed -= n
}

// convert converts the current value from type from to type to, which the
// caller has checked with types.Assignable. Only Int to Float changes bits.
func (g *generator) convert(from, to types.Basic) {
	if from == types.Int && to == types.Float {
		g.e.emitAsm("cvtsi2sdq %rax, %xmm0")
	}
}

// toText replaces the current value of type t with a pointer to its
// canonical text.
func (g *generator) toText(t types.Basic) {
	switch t {
	case types.Int:
		g.e.emitAsm("movq %rax, %rdi")
		g.call(rtabi.FnItoa, 0)
	case types.Float:
		g.call(rtabi.FnFtoa, 0)
	case types.Boolean:
		g.e.emitAsm("movq %rax, %rdi")
		g.call(rtabi.FnBtoa, 0)
	case types.Unit:
		g.e.emitInst("leaq %s(%%rip), %%rax", g.stringLabel(rtabi.TextUnit))
	}
}

// zeroUnit gives a Unit result its canonical representation.
func (g *generator) zeroUnit(t types.Basic) {
	if t == types.Unit {
		g.e.emitAsm("xorl %eax, %eax")
	}
}
