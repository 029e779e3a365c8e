// Package driver runs the compiler pipeline over one source file: scan,
// parse, print, evaluate, generate and write the assembly. It writes the
// sections of the standard output and returns the first error of any phase.
package driver

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/codegen"
	"github.com/you-not-fish/ktc/internal/config"
	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/log"
	"github.com/you-not-fish/ktc/internal/syntax"
)

var logger = log.New("pkg", "driver")

// Options configures a compilation.
type Options struct {
	Config  *config.Config // nil means config.Default()
	Stdout  io.Writer      // section output; nil means os.Stdout
	AsmPath string         // assembly file; empty means derived from the input name
	NoAsm   bool           // stop after evaluation
}

// Phase records the duration of one pipeline phase.
type Phase struct {
	Name     string
	Duration time.Duration
	Items    int64 // tokens, functions, statements or bytes, depending on the phase
	Unit     string
}

// Result describes a successful compilation.
type Result struct {
	Tokens     []syntax.Token
	Program    *syntax.Program
	ExitStatus int    // exit status of the evaluated main
	Asm        string // generated assembly, empty with NoAsm
	AsmPath    string // where Asm was written
	Phases     []Phase
}

// InternalError reports a failure of the compiler itself.
type InternalError struct {
	Phase string
	Value interface{}
	Stack stack.CallStack
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("InternalError in %s: %v", e.Phase, e.Value)
}

// AsmPath returns the assembly path for an input: the input path with its
// extension replaced by suffix.
func AsmPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// CompileFile reads filename and compiles it.
func CompileFile(filename string, opts *Options) (*Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return Compile(filename, src, opts)
}

// Compile runs the pipeline over src, the contents of filename.
//
// Lexical and syntax errors are returned before anything is written. A
// runtime error is returned after the token and source sections and the
// evaluation marker; the program's partial output is discarded and no
// assembly is written.
func Compile(filename string, src []byte, opts *Options) (res *Result, err error) {
	c := newCompilation(filename, opts)
	defer func() {
		if r := recover(); r != nil {
			ierr := &InternalError{Phase: c.phase, Value: r, Stack: stack.Trace().TrimRuntime()}
			logger.Debug("Internal compiler error", "phase", c.phase, "err", r, "stack", fmt.Sprintf("%v", ierr.Stack))
			res, err = nil, ierr
		}
	}()

	res = &Result{}
	if res.Tokens, err = c.scan(src); err != nil {
		return nil, err
	}
	if res.Program, err = c.parse(res.Tokens); err != nil {
		return nil, err
	}
	c.listing(res.Tokens, res.Program)
	if res.ExitStatus, err = c.eval(res.Program); err != nil {
		return nil, err
	}
	if !c.opts.NoAsm {
		if res.Asm, err = c.generate(res.Program); err != nil {
			return nil, err
		}
		res.AsmPath = c.asmPath()
		if err = c.write(res.AsmPath, res.Asm); err != nil {
			return nil, err
		}
	}
	res.Phases = c.phases
	return res, nil
}

// compilation holds the state of one Compile call.
type compilation struct {
	filename string
	opts     Options
	cfg      *config.Config
	out      *sectionWriter

	phase  string
	start  time.Time
	phases []Phase
}

func newCompilation(filename string, opts *Options) *compilation {
	c := &compilation{filename: filename}
	if opts != nil {
		c.opts = *opts
	}
	c.cfg = c.opts.Config
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	w := c.opts.Stdout
	if w == nil {
		w = os.Stdout
	}
	c.out = &sectionWriter{w: w}
	return c
}

func (c *compilation) begin(phase string) {
	c.phase = phase
	c.start = time.Now()
}

func (c *compilation) end(items int64, unit string) {
	p := Phase{Name: c.phase, Duration: time.Since(c.start), Items: items, Unit: unit}
	c.phases = append(c.phases, p)
	logger.Debug("Phase finished", "phase", p.Name, unit, items, "elapsed", p.Duration)
}

func (c *compilation) scan(src []byte) ([]syntax.Token, error) {
	c.begin("scan")
	toks, err := syntax.Scan(src)
	if err != nil {
		return nil, err
	}
	c.end(int64(len(toks)), "tokens")
	return toks, nil
}

func (c *compilation) parse(toks []syntax.Token) (*syntax.Program, error) {
	c.begin("parse")
	prog, err := syntax.Parse(toks)
	if err != nil {
		return nil, err
	}
	c.end(int64(len(prog.Funcs)), "funcs")
	return prog, nil
}

// listing writes the token and source sections and the evaluation marker.
func (c *compilation) listing(toks []syntax.Token, prog *syntax.Program) {
	c.begin("print")
	o := &c.cfg.Output
	c.out.line(o.ScannerMarker)
	for _, tok := range toks {
		c.out.line(tok.String())
	}
	c.out.line(o.PrintMarker)
	source := syntax.Print(prog)
	c.out.write(source)
	c.out.line(o.EvalMarker)
	c.end(int64(len(source)), "bytes")
}

// eval runs the program with its output buffered, so that a runtime error
// leaves the evaluation section empty.
func (c *compilation) eval(prog *syntax.Program) (int, error) {
	c.begin("eval")
	var buf bytes.Buffer
	res, err := eval.Run(prog, &buf, c.cfg.Eval)
	if err != nil {
		if werr := c.out.err; werr != nil {
			return 0, errors.Wrap(werr, "write output")
		}
		return 0, err
	}
	c.out.write(buf.String())
	if c.out.err != nil {
		return 0, errors.Wrap(c.out.err, "write output")
	}
	c.end(res.Steps, "steps")
	return res.ExitStatus, nil
}

func (c *compilation) generate(prog *syntax.Program) (string, error) {
	c.begin("codegen")
	cfg := c.cfg.Codegen
	cfg.MaxDepth = c.cfg.Eval.MaxDepth
	asm, err := codegen.Generate(prog, cfg)
	if err != nil {
		return "", err
	}
	c.end(int64(len(asm)), "bytes")
	return asm, nil
}

func (c *compilation) asmPath() string {
	if c.opts.AsmPath != "" {
		return c.opts.AsmPath
	}
	return AsmPath(c.filename, c.cfg.Output.AsmSuffix)
}

func (c *compilation) write(path, asm string) error {
	c.begin("write")
	if err := writeFileAtomic(path, []byte(asm)); err != nil {
		logger.Debug("Assembly not written", "path", path, "err", err, "caller", log.Caller(0))
		return err
	}
	c.end(int64(len(asm)), "bytes")
	logger.Info("Wrote assembly", "path", path)
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so that path holds either nothing new or all of data.
func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return errors.Wrap(err, "write assembly")
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "write assembly")
	}
	return nil
}

// sectionWriter remembers the first write error.
type sectionWriter struct {
	w   io.Writer
	err error
}

func (s *sectionWriter) write(text string) {
	if s.err == nil {
		_, s.err = io.WriteString(s.w, text)
	}
}

func (s *sectionWriter) line(text string) {
	s.write(text + "\n")
}
