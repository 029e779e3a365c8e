package codegen

import (
	"github.com/you-not-fish/ktc/internal/rtabi"
)

// genHelpers emits the helper routines referenced by the generated code.
func (g *generator) genHelpers() {
	for _, f := range rtabi.Helpers() {
		if !g.used[f.Name] {
			continue
		}
		g.e.emit("\t.type %s, @function", f.Name)
		g.e.emitLabel(f.Name)
		switch f.Name {
		case rtabi.FnConcat:
			g.genConcat()
		case rtabi.FnItoa:
			g.genItoa()
		case rtabi.FnFtoa:
			g.genFtoa()
		case rtabi.FnBtoa:
			g.genBtoa()
		case rtabi.FnPanic:
			g.genPanic()
		}
		g.e.emit("\t.size %s, .-%s", f.Name, f.Name)
		g.e.emitLine()
	}
}

func plt(name string) string {
	f, _ := rtabi.Lookup(name)
	return f.Call()
}

// char *kt_concat(const char *a, const char *b)
func (g *generator) genConcat() {
	g.e.emitAsm(
		"pushq %rbp",
		"movq %rsp, %rbp",
		"pushq %rbx",
		"pushq %r12",
		"pushq %r13",
		"pushq %r14",
		"movq %rdi, %r12",
		"movq %rsi, %r13",
	)
	g.e.emitInst("call %s", plt(rtabi.FnStrlen))
	g.e.emitAsm("movq %rax, %r14", "movq %r13, %rdi")
	g.e.emitInst("call %s", plt(rtabi.FnStrlen))
	g.e.emitAsm("leaq 1(%r14,%rax), %rdi")
	g.e.emitInst("call %s", plt(rtabi.FnMalloc))
	g.e.emitAsm("movq %rax, %rbx", "movq %rax, %rdi", "movq %r12, %rsi")
	g.e.emitInst("call %s", plt(rtabi.FnStrcpy))
	g.e.emitAsm("leaq (%rbx,%r14), %rdi", "movq %r13, %rsi")
	g.e.emitInst("call %s", plt(rtabi.FnStrcpy))
	g.e.emitAsm(
		"movq %rbx, %rax",
		"popq %r14",
		"popq %r13",
		"popq %r12",
		"popq %rbx",
		"popq %rbp",
		"ret",
	)
}

// char *kt_itoa(long v)
func (g *generator) genItoa() {
	g.e.emitAsm(
		"pushq %rbp",
		"movq %rsp, %rbp",
		"pushq %rbx",
		"pushq %r12",
		"movq %rdi, %r12",
	)
	g.e.emitInst("movl $%d, %%edi", rtabi.TextBufSize)
	g.e.emitInst("call %s", plt(rtabi.FnMalloc))
	g.e.emitAsm("movq %rax, %rbx", "movq %rax, %rdi")
	g.e.emitInst("movl $%d, %%esi", rtabi.TextBufSize)
	g.e.emitInst("leaq %s(%%rip), %%rdx", g.stringLabel(rtabi.FmtInt))
	g.e.emitAsm("movq %r12, %rcx", "xorl %eax, %eax")
	g.e.emitInst("call %s", plt(rtabi.FnSnprintf))
	g.e.emitAsm(
		"movq %rbx, %rax",
		"popq %r12",
		"popq %rbx",
		"popq %rbp",
		"ret",
	)
}

// char *kt_ftoa(double v)
func (g *generator) genFtoa() {
	g.e.emitAsm(
		"pushq %rbp",
		"movq %rsp, %rbp",
		"pushq %rbx",
		"subq $8, %rsp",
		"movsd %xmm0, -16(%rbp)",
	)
	g.e.emitInst("movl $%d, %%edi", rtabi.TextBufSize)
	g.e.emitInst("call %s", plt(rtabi.FnMalloc))
	g.e.emitAsm("movq %rax, %rbx", "movq %rax, %rdi")
	g.e.emitInst("movl $%d, %%esi", rtabi.TextBufSize)
	g.e.emitInst("leaq %s(%%rip), %%rdx", g.stringLabel(rtabi.FmtFloat))
	g.e.emitAsm("movsd -16(%rbp), %xmm0", "movl $1, %eax")
	g.e.emitInst("call %s", plt(rtabi.FnSnprintf))
	g.e.emitAsm(
		"movq %rbx, %rax",
		"movq -8(%rbp), %rbx",
		"leave",
		"ret",
	)
}

// const char *kt_btoa(long b)
func (g *generator) genBtoa() {
	g.e.emitInst("leaq %s(%%rip), %%rax", g.stringLabel(rtabi.TextTrue))
	g.e.emitInst("leaq %s(%%rip), %%rdx", g.stringLabel(rtabi.TextFalse))
	g.e.emitAsm(
		"testq %rdi, %rdi",
		"cmoveq %rdx, %rax",
		"ret",
	)
}

// void kt_panic(const char *format, long arg)
//
// Flushes stdout so that output written before the error appears first,
// then formats the message to stderr and exits with status 1. Callers need
// not align the stack.
func (g *generator) genPanic() {
	g.e.emitAsm(
		"movq %rdi, %r12",
		"movq %rsi, %r13",
		"andq $-16, %rsp",
		"xorl %edi, %edi",
	)
	g.e.emitInst("call %s", plt(rtabi.FnFflush))
	g.e.emitAsm(
		"movl $2, %edi",
		"movq %r12, %rsi",
		"movq %r13, %rdx",
		"xorl %eax, %eax",
	)
	g.e.emitInst("call %s", plt(rtabi.FnDprintf))
	g.e.emitAsm("movl $1, %edi")
	g.e.emitInst("call %s", plt(rtabi.FnExit))
}
