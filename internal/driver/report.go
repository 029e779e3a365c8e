package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/syntax"
)

// Diagnostic returns the one-line message reporting err. Errors of the
// compiled program start with their kind; other failures with "error:".
func Diagnostic(err error) string {
	switch cause := errors.Cause(err).(type) {
	case *syntax.LexicalError, *syntax.SyntaxError, *eval.RuntimeError, *InternalError:
		return cause.Error()
	}
	return "error: " + err.Error()
}

// Report writes the diagnostic for err to w as a single line, with its
// kind highlighted when colored is set.
func Report(w io.Writer, err error, colored bool) {
	msg := Diagnostic(err)
	kind, rest := msg, ""
	if i := strings.IndexByte(msg, ' '); i >= 0 {
		kind, rest = msg[:i], msg[i:]
	}
	c := color.New(color.FgRed, color.Bold)
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintf(w, "%s%s\n", c.Sprint(kind), rest)
}

// AST output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DumpAST writes the tree of prog to w in the given format.
func DumpAST(w io.Writer, prog *syntax.Program, format string) error {
	switch format {
	case FormatText, "":
		syntax.Fdump(w, prog)
		return nil
	case FormatJSON:
		return errors.Wrap(syntax.FprintJSON(w, prog), "dump AST")
	}
	return errors.Errorf("unknown AST format %q (want %s or %s)", format, FormatText, FormatJSON)
}
