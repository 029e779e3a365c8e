package codegen

import (
	"fmt"
	"io"
)

// emitter wraps an io.Writer with helpers for emitting GNU assembler text.
type emitter struct {
	w     io.Writer
	err   error // first write error
	label int   // counter for local labels (.Lif_0, .Lwhile_1, ...)
}

// emit writes a formatted line to the output (no indentation).
func (e *emitter) emit(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format+"\n", args...)
}

// emitRaw writes s unchanged.
func (e *emitter) emitRaw(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

// emitLine writes a blank line.
func (e *emitter) emitLine() {
	e.emitRaw("\n")
}

// emitComment writes a comment line.
func (e *emitter) emitComment(format string, args ...interface{}) {
	e.emit("\t# "+format, args...)
}

// emitLabel writes a label definition.
func (e *emitter) emitLabel(name string) {
	e.emitRaw(name + ":\n")
}

// emitInst writes an indented instruction line. Registers in format are
// written %%rax.
func (e *emitter) emitInst(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "\t"+format+"\n", args...)
}

// emitAsm writes fixed instruction lines, one per argument.
func (e *emitter) emitAsm(lines ...string) {
	for _, l := range lines {
		e.emitRaw("\t" + l + "\n")
	}
}

// newLabel returns a fresh local label: .L<kind>_<n>.
func (e *emitter) newLabel(kind string) string {
	name := fmt.Sprintf(".L%s_%d", kind, e.label)
	e.label++
	return name
}
