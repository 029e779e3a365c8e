// Command ktc compiles a Kotlin-subset source file: it lists the tokens,
// prints the reconstructed source, runs the program and writes x86-64
// assembly next to the input.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/you-not-fish/ktc/internal/config"
	"github.com/you-not-fish/ktc/internal/driver"
	"github.com/you-not-fish/ktc/internal/log"
	"github.com/you-not-fish/ktc/internal/syntax"
)

// Version information
const Version = "0.1.0"

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration `file`",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: log.DefaultVerbosity,
	}
	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "Assembly output `file` (default: the input with a .s extension)",
	}
	emitASTFlag = cli.BoolFlag{
		Name:  "emit-ast",
		Usage: "Output the AST and stop",
	}
	astFormatFlag = cli.StringFlag{
		Name:  "ast-format",
		Usage: "AST output format (text or json)",
		Value: driver.FormatText,
	}
	noAsmFlag = cli.BoolFlag{
		Name:  "no-asm",
		Usage: "Stop after evaluation, writing no assembly",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "Output a phase timing table on stderr",
	}
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line args and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	status := 0
	app := newApp(stdout, stderr, &status)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return status
}

func newApp(stdout, stderr io.Writer, status *int) *cli.App {
	app := cli.NewApp()
	app.Name = "ktc"
	app.Usage = "Kotlin-subset compiler"
	app.Version = fmt.Sprintf("%s (%s)", Version, runtime.Version())
	app.ArgsUsage = "<input.kt>"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		outputFlag,
		emitASTFlag,
		astFormatFlag,
		noAsmFlag,
		traceFlag,
	}
	app.Action = func(ctx *cli.Context) error {
		*status = compile(ctx, stdout, stderr)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:        "dumpconfig",
			Usage:       "Show configuration values",
			Description: "The dumpconfig command shows the configuration in the TOML form --config reads.",
			Flags:       []cli.Flag{configFileFlag},
			Action: func(ctx *cli.Context) error {
				*status = dumpConfig(ctx, stdout, stderr)
				return nil
			},
		},
		{
			Name:  "doctor",
			Usage: "Check the toolchain that assembles the output",
			Action: func(ctx *cli.Context) error {
				*status = runDoctor(stdout)
				return nil
			},
		},
	}
	return app
}

// loadConfig returns the configuration of the --config file, or the
// defaults, with flags applied.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	file := ctx.String(configFileFlag.Name)
	if file == "" {
		file = ctx.GlobalString(configFileFlag.Name)
	}
	if file != "" {
		var err error
		if cfg, err = config.Load(file); err != nil {
			return nil, err
		}
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func compile(ctx *cli.Context, stdout, stderr io.Writer) int {
	colored := isTerminal(stderr)
	cfg, err := loadConfig(ctx)
	if err != nil {
		driver.Report(stderr, err, colored)
		return 1
	}
	colored = colored && cfg.Log.Color
	log.Setup(stderr, cfg.Log.Verbosity, cfg.Log.Color)

	if ctx.NArg() != 1 {
		fmt.Fprintln(stderr, "error: expected one input file")
		fmt.Fprintf(stderr, "usage: %s [options] %s\n", ctx.App.Name, ctx.App.ArgsUsage)
		return 1
	}
	filename := ctx.Args().First()

	if ctx.Bool(emitASTFlag.Name) {
		return emitAST(filename, ctx.String(astFormatFlag.Name), stdout, stderr, colored)
	}

	res, err := driver.CompileFile(filename, &driver.Options{
		Config:  cfg,
		Stdout:  stdout,
		AsmPath: ctx.String("output"),
		NoAsm:   ctx.Bool(noAsmFlag.Name),
	})
	if err != nil {
		driver.Report(stderr, err, colored)
		return 1
	}
	if ctx.Bool(traceFlag.Name) {
		printTrace(stderr, res.Phases)
	}
	return 0
}

// emitAST parses the input file and outputs the AST.
func emitAST(filename, format string, stdout, stderr io.Writer, colored bool) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		driver.Report(stderr, err, colored)
		return 1
	}
	prog, err := syntax.ParseSource(src)
	if err != nil {
		driver.Report(stderr, err, colored)
		return 1
	}
	if err := driver.DumpAST(stdout, prog, format); err != nil {
		driver.Report(stderr, err, colored)
		return 1
	}
	return 0
}

func dumpConfig(ctx *cli.Context, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(ctx)
	if err != nil {
		driver.Report(stderr, err, false)
		return 1
	}
	out, err := config.Marshal(cfg)
	if err != nil {
		driver.Report(stderr, err, false)
		return 1
	}
	stdout.Write(out)
	return 0
}
