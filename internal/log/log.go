// Package log configures the structured logger shared by the compiler
// phases. Loggers carry key/value context and write to stderr; the
// verbosity decides how much of it reaches the terminal.
package log

import (
	"io"
	"os"

	"github.com/go-stack/stack"
	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Logger writes key/value records at a severity level.
type Logger = log15.Logger

// Verbosity levels, as accepted by --verbosity.
const (
	LvlSilent = 0
	LvlError  = 1
	LvlWarn   = 2
	LvlInfo   = 3
	LvlDebug  = 4
	LvlDetail = 5 // debug with call sites
)

// DefaultVerbosity keeps stderr free of everything but warnings and the
// final diagnostic.
const DefaultVerbosity = LvlWarn

func init() {
	Setup(os.Stderr, DefaultVerbosity, false)
}

// Root returns the root logger.
func Root() Logger {
	return log15.Root()
}

// New returns a logger with the given context. Its output follows the
// root handler installed by Setup, including later calls to Setup.
func New(ctx ...interface{}) Logger {
	return log15.Root().New(ctx...)
}

// Setup installs the root handler: records up to verbosity are written to
// w, in colored terminal format when color is set and w is a terminal, and
// in logfmt otherwise.
func Setup(w io.Writer, verbosity int, color bool) {
	log15.Root().SetHandler(Handler(w, verbosity, color))
}

// Handler builds the handler Setup installs.
func Handler(w io.Writer, verbosity int, color bool) log15.Handler {
	if verbosity <= LvlSilent {
		return log15.DiscardHandler()
	}

	format := log15.LogfmtFormat()
	if f, ok := w.(*os.File); ok && color && isatty.IsTerminal(f.Fd()) {
		format = log15.TerminalFormat()
		w = colorable.NewColorable(f)
	}

	h := log15.StreamHandler(w, format)
	if verbosity >= LvlDetail {
		h = log15.CallerFileHandler(h)
		verbosity = LvlDebug
	}
	return log15.LvlFilterHandler(log15.Lvl(verbosity), h)
}

// Caller returns "file:line" of the function skip frames above the caller,
// for reporting where an internal failure surfaced.
func Caller(skip int) string {
	return stack.Caller(skip + 1).String()
}
