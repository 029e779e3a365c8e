package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ktc.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Starting Scanner Test:", cfg.Output.ScannerMarker)
	assert.Equal(t, "Print Visitor:", cfg.Output.PrintMarker)
	assert.Equal(t, "Eval Visitor:", cfg.Output.EvalMarker)
	assert.Equal(t, ".s", cfg.Output.AsmSuffix)
	assert.Equal(t, "kt_", cfg.Codegen.SymbolPrefix)
	assert.Equal(t, "main", cfg.Codegen.EntrySymbol)
	assert.True(t, cfg.Codegen.GNUStack)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[Output]
EvalMarker = "Run:"
AsmSuffix = ".asm"

[Eval]
MaxDepth = 64

[Codegen]
Comments = true

[Log]
Verbosity = 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Output.EvalMarker = "Run:"
	want.Output.AsmSuffix = ".asm"
	want.Eval.MaxDepth = 64
	want.Codegen.Comments = true
	want.Log.Verbosity = 4
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "unknown field",
			text: "[Output]\nColour = true\n",
			want: "field 'Colour' is not defined in config.Output, see https://pkg.go.dev/github.com/you-not-fish/ktc/internal/config#Output for available fields",
		},
		{
			name: "wrong type",
			text: "[Eval]\nMaxDepth = \"deep\"\n",
			want: "ktc.toml, line 2",
		},
		{
			name: "invalid depth",
			text: "[Eval]\nMaxDepth = 0\n",
			want: "Eval.MaxDepth must be positive, got 0",
		},
		{
			name: "invalid verbosity",
			text: "[Log]\nVerbosity = 9\n",
			want: "Log.Verbosity must be between 0 and 5, got 9",
		},
		{
			name: "empty suffix",
			text: "[Output]\nAsmSuffix = \"\"\n",
			want: "Output.AsmSuffix must not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestMarshalLoad(t *testing.T) {
	cfg := Default()
	cfg.Output.PrintMarker = "Source:"
	cfg.Log.Color = false

	out, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[Output]")

	loaded, err := Load(writeConfig(t, string(out)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Output, loaded.Output)
	assert.Equal(t, cfg.Log, loaded.Log)
	assert.Equal(t, cfg.Eval, loaded.Eval)
}
