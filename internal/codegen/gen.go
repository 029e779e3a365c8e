// Package codegen translates a parsed program into x86-64 assembly in AT&T
// syntax for the GNU assembler.
//
// Generation is a single pass over the syntax tree. Every expression leaves
// its value in %rax (Int, Boolean, String pointer, Unit) or %xmm0 (Float);
// operands waiting for a second operand are pushed on the machine stack.
// Locals live in fixed %rbp-relative slots, arguments are pushed by the
// caller. Types are computed while generating, from the declared types of
// variables, parameters and functions. Where the interpreter would raise a
// runtime error that can be decided from the types alone, the generated
// code calls kt_panic at the same point of execution with the same message.
package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/env"
	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/log"
	"github.com/you-not-fish/ktc/internal/rtabi"
	"github.com/you-not-fish/ktc/internal/syntax"
	"github.com/you-not-fish/ktc/internal/types"
)

var logger = log.New("pkg", "codegen")

// Config controls assembly generation.
type Config struct {
	SymbolPrefix string // prepended to Kotlin function names
	EntrySymbol  string // C entry point calling the Kotlin main
	Comments     bool   // annotate statements with their source line
	GNUStack     bool   // emit the .note.GNU-stack section

	// MaxDepth is the call depth limit checked before every call; 0 means
	// eval.DefaultMaxDepth. It follows the interpreter's limit and is not
	// read from configuration files.
	MaxDepth int `toml:"-"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		SymbolPrefix: rtabi.SymbolPrefix,
		EntrySymbol:  rtabi.EntrySymbol,
		GNUStack:     true,
		MaxDepth:     eval.DefaultMaxDepth,
	}
}

// Generate returns the assembly for prog.
func Generate(prog *syntax.Program, cfg Config) (string, error) {
	var buf strings.Builder
	if err := Fgenerate(&buf, prog, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fgenerate writes the assembly for prog to w.
func Fgenerate(w io.Writer, prog *syntax.Program, cfg Config) error {
	g := newGenerator(prog, cfg)

	// Text is generated first so that the data it references is known.
	var text bytes.Buffer
	g.e.w = &text
	g.genEntry()
	for _, fn := range prog.Funcs {
		if g.funcs[fn.Name.Value] == fn {
			g.genFunc(fn)
		}
	}
	g.genHelpers()
	if g.e.err != nil {
		return errors.Wrap(g.e.err, "generate text")
	}

	out := &emitter{w: w}
	if cfg.Comments {
		out.emitComment("target %s", rtabi.Target)
	}
	g.writeData(out)
	out.emit("\t.text")
	out.emitRaw(text.String())
	if cfg.GNUStack {
		out.emit("\t%s", rtabi.GNUStackNote)
	}
	logger.Debug("Generated assembly", "funcs", len(g.funcs), "strings", len(g.strings), "floats", len(g.floats), "helpers", len(g.used))
	return errors.Wrap(out.err, "write assembly")
}

type loopLabels struct {
	cont, brk string
}

type generator struct {
	e     emitter
	cfg   Config
	prog  *syntax.Program
	funcs map[string]*syntax.FuncDecl

	// read-only data
	strings   []string
	stringMap map[string]int
	floats    []uint64
	floatMap  map[uint64]int

	used map[string]bool // helper routines referenced by generated code

	// current function
	fn       *syntax.FuncDecl
	scopes   *env.Arena[int64] // binding values are %rbp offsets
	scope    env.Handle
	slots    int   // local slots allocated so far
	pushed   int64 // bytes pushed since the prologue
	loops    []loopLabels
	retLabel string
}

var (
	_ syntax.ExprVisitor[types.Basic] = (*generator)(nil)
	_ syntax.StmtVisitor[bool]        = (*generator)(nil)
)

func newGenerator(prog *syntax.Program, cfg Config) *generator {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = eval.DefaultMaxDepth
	}
	if cfg.SymbolPrefix == "" {
		cfg.SymbolPrefix = rtabi.SymbolPrefix
	}
	if cfg.EntrySymbol == "" {
		cfg.EntrySymbol = rtabi.EntrySymbol
	}
	g := &generator{
		cfg:       cfg,
		prog:      prog,
		funcs:     make(map[string]*syntax.FuncDecl),
		stringMap: make(map[string]int),
		floatMap:  make(map[uint64]int),
		used:      make(map[string]bool),
	}
	for _, fn := range prog.Funcs {
		g.funcs[fn.Name.Value] = fn // last declaration wins
	}
	return g
}

// symbol returns the assembly symbol of a Kotlin function.
func (g *generator) symbol(name string) string {
	return g.cfg.SymbolPrefix + name
}

// genEntry emits the C entry point. Its exit status is the low byte of
// main's result when main returns Int.
func (g *generator) genEntry() {
	entry := g.cfg.EntrySymbol
	g.e.emit("\t.globl %s", entry)
	g.e.emit("\t.type %s, @function", entry)
	g.e.emitLabel(entry)
	g.e.emitAsm("pushq %rbp", "movq %rsp, %rbp")

	main := g.funcs["main"]
	switch {
	case main == nil:
		g.trap(g.prog.Pos(), eval.UndefinedVariable, "undefined function 'main'")
	case len(main.Params) != 0:
		g.trap(main.Pos(), eval.ArityMismatch, "function 'main' must not take parameters")
	default:
		g.e.emitInst("call %s", g.symbol("main"))
		if types.Of(main.Result) == types.Int {
			g.e.emitAsm("movzbl %al, %eax")
		} else {
			g.e.emitAsm("xorl %eax, %eax")
		}
		g.e.emitAsm("popq %rbp", "ret")
	}
	g.e.emit("\t.size %s, .-%s", entry, entry)
	g.e.emitLine()
}

// frameSlots counts the local slots fn needs: one per declaration and
// rtabi.ForSlots per for loop.
func frameSlots(fn *syntax.FuncDecl) int {
	n := 0
	syntax.Inspect(fn.Body, func(node syntax.Node) bool {
		switch node.(type) {
		case *syntax.VarDecl:
			n++
		case *syntax.ForStmt:
			n += rtabi.ForSlots
		}
		return true
	})
	return n
}

func (g *generator) genFunc(fn *syntax.FuncDecl) {
	sym := g.symbol(fn.Name.Value)
	slots := frameSlots(fn)
	frame := int64(slots) * rtabi.WordSize
	if rem := frame % rtabi.StackAlign; rem != 0 {
		frame += rtabi.StackAlign - rem
	}

	g.fn = fn
	g.scopes = env.New[int64]()
	g.scope = g.scopes.Push(env.NoScope)
	g.slots = 0
	g.pushed = 0
	g.loops = nil
	g.retLabel = g.e.newLabel("ret")

	n := int64(len(fn.Params))
	for i, p := range fn.Params {
		off := rtabi.ArgOffset + (n-1-int64(i))*rtabi.WordSize
		g.scopes.Define(g.scope, p.Name.Value, env.Binding[int64]{Type: types.Of(p.Type), Value: off})
	}

	g.e.emit("\t.type %s, @function", sym)
	g.e.emitLabel(sym)
	g.e.emitAsm("pushq %rbp", "movq %rsp, %rbp")
	if frame > 0 {
		g.e.emitInst("subq $%d, %%rsp", frame)
	}
	g.e.emitInst("incq %s(%%rip)", rtabi.DepthCounter)

	jumps := g.stmts(fn.Body.Stmts)
	if result := types.Of(fn.Result); !jumps && result != types.Unit {
		g.trap(fn.Body.Rbrace, eval.TypeMismatch, "missing return in function '%s' returning %s", fn.Name.Value, result)
	}

	g.e.emitLabel(g.retLabel)
	g.e.emitInst("decq %s(%%rip)", rtabi.DepthCounter)
	g.e.emitAsm("leave", "ret")
	g.e.emit("\t.size %s, .-%s", sym, sym)
	g.e.emitLine()

	logger.Debug("Generated function", "name", fn.Name.Value, "slots", slots, "frame", frame)
	if g.slots > slots {
		panic(fmt.Sprintf("codegen: %s used %d slots, frame has %d", fn.Name.Value, g.slots, slots))
	}
	if g.pushed != 0 {
		panic(fmt.Sprintf("codegen: %s left %d bytes pushed", fn.Name.Value, g.pushed))
	}
}

// newSlot allocates a local slot and returns its %rbp offset.
func (g *generator) newSlot() int64 {
	g.slots++
	return -int64(g.slots) * rtabi.WordSize
}

// trap emits a call to kt_panic reporting a runtime error. The message
// becomes a dprintf format, so % is escaped.
func (g *generator) trap(pos syntax.Pos, kind eval.Kind, format string, args ...interface{}) types.Basic {
	err := &eval.RuntimeError{Pos: pos, Kind: kind, Msg: fmt.Sprintf(format, args...)}
	msg := strings.ReplaceAll(err.Error(), "%", "%%")
	g.panicCall(msg + "\n")
	return types.Invalid
}

// panicCall calls kt_panic with format msg and %rsi as its argument.
func (g *generator) panicCall(msg string) {
	g.use(rtabi.FnPanic)
	g.e.emitInst("leaq %s(%%rip), %%rdi", g.stringLabel(msg))
	g.e.emitInst("call %s", rtabi.FnPanic)
}

func (g *generator) use(helper string) {
	g.used[helper] = true
}

// call emits a call to a libc function or helper routine with the stack
// aligned. floats is the number of vector registers holding arguments of a
// variadic function.
func (g *generator) call(name string, floats int) {
	f, ok := rtabi.Lookup(name)
	if !ok {
		panic("codegen: unknown runtime function " + name)
	}
	if !f.Libc {
		g.use(name)
	}
	pad := g.pushed%rtabi.StackAlign != 0
	if pad {
		g.e.emitInst("subq $%d, %%rsp", rtabi.WordSize)
	}
	if f.Variadic {
		g.e.emitInst("movl $%d, %%eax", floats)
	}
	g.e.emitInst("call %s", f.Call())
	if pad {
		g.e.emitInst("addq $%d, %%rsp", rtabi.WordSize)
	}
}

// writeData emits the read-only data and the call depth counter.
func (g *generator) writeData(e *emitter) {
	e.emit("\t.section .rodata")
	for i, s := range g.strings {
		e.emitLabel(stringName(i))
		e.emit("\t.string \"%s\"", gasEscapeString(s))
	}
	if len(g.floats) > 0 {
		e.emit("\t.align 8")
		for i, bits := range g.floats {
			e.emitLabel(floatName(i))
			e.emit("\t.quad 0x%016x", bits)
		}
	}
	e.emitLine()
	e.emit("\t.bss")
	e.emit("\t.align 8")
	e.emitLabel(rtabi.DepthCounter)
	e.emit("\t.zero %d", rtabi.WordSize)
	e.emitLine()
}
