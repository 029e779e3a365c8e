// Package config holds the compiler settings that can be given in a TOML
// file: section markers of the standard output, interpreter limits,
// assembly generation and logging.
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/codegen"
	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/log"
)

// Output configures the sections written to standard output and the name
// of the assembly file.
type Output struct {
	ScannerMarker string // line before the token listing
	PrintMarker   string // line before the reconstructed source
	EvalMarker    string // line before the program output
	AsmSuffix     string // replaces the input's extension
}

// Log configures the diagnostic logger.
type Log struct {
	Verbosity int  // 0 silent to 5 detail
	Color     bool // colored output when stderr is a terminal
}

// Config is the complete compiler configuration.
type Config struct {
	Output  Output
	Eval    eval.Options
	Codegen codegen.Config
	Log     Log
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Output: Output{
			ScannerMarker: "Starting Scanner Test:",
			PrintMarker:   "Print Visitor:",
			EvalMarker:    "Eval Visitor:",
			AsmSuffix:     ".s",
		},
		Eval:    eval.Options{MaxDepth: eval.DefaultMaxDepth},
		Codegen: codegen.DefaultConfig(),
		Log: Log{
			Verbosity: log.DefaultVerbosity,
			Color:     true,
		},
	}
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	defer f.Close()

	cfg := Default()
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		return nil, errors.New(path + ", " + err.Error())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate reports settings that cannot produce a working pipeline.
func (c *Config) Validate() error {
	switch {
	case c.Eval.MaxDepth <= 0:
		return errors.Errorf("Eval.MaxDepth must be positive, got %d", c.Eval.MaxDepth)
	case c.Log.Verbosity < log.LvlSilent || c.Log.Verbosity > log.LvlDetail:
		return errors.Errorf("Log.Verbosity must be between %d and %d, got %d", log.LvlSilent, log.LvlDetail, c.Log.Verbosity)
	case c.Output.AsmSuffix == "":
		return errors.New("Output.AsmSuffix must not be empty")
	case c.Codegen.SymbolPrefix == "" || c.Codegen.EntrySymbol == "":
		return errors.New("Codegen symbols must not be empty")
	}
	return nil
}

// Marshal returns cfg in the TOML form Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	return bytes.TrimLeft(out, "\n"), nil
}
