package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/ktc/internal/codegen"
	"github.com/you-not-fish/ktc/internal/eval"
	"github.com/you-not-fish/ktc/internal/syntax"
)

// TestE2E runs end-to-end tests for all .kt files in testdata/.
// Each test:
//  1. Parses the program and evaluates it in-process
//  2. Compares the program output against the .golden file
//  3. Generates assembly and builds it with gcc (skipped without gcc)
//  4. Runs the binary and checks that stdout, the diagnostic on stderr and
//     the exit status agree with the evaluation
func TestE2E(t *testing.T) {
	testFiles, err := filepath.Glob("testdata/*.kt")
	if err != nil {
		t.Fatal(err)
	}
	if len(testFiles) == 0 {
		t.Fatal("no .kt test files found in testdata/")
	}

	_, gccErr := exec.LookPath("gcc")

	for _, testFile := range testFiles {
		name := strings.TrimSuffix(filepath.Base(testFile), ".kt")
		t.Run(name, func(t *testing.T) {
			want := runEval(t, testFile)
			if gccErr != nil {
				t.Skip("gcc not found, skipping native run")
			}
			got := runNative(t, testFile)
			assert.Equal(t, want, got)
		})
	}
}

// outcome is what a run of a program is compared on.
type outcome struct {
	Stdout string
	Stderr string // diagnostic line, empty on success
	Status int
}

// runEval evaluates the program and checks its output against the golden
// file.
func runEval(t *testing.T, ktFile string) outcome {
	t.Helper()

	src, err := os.ReadFile(ktFile)
	require.NoError(t, err)
	prog, err := syntax.ParseSource(src)
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := eval.Run(prog, &out, eval.Options{})

	expected, gerr := os.ReadFile(strings.TrimSuffix(ktFile, ".kt") + ".golden")
	require.NoError(t, gerr, "reading golden file")
	assert.Equal(t, string(expected), out.String(), "eval output")

	var rerr *eval.RuntimeError
	switch {
	case err == nil:
		return outcome{Stdout: out.String(), Status: res.ExitStatus}
	case errors.As(err, &rerr):
		return outcome{Stdout: out.String(), Stderr: rerr.Error() + "\n", Status: 1}
	}
	t.Fatalf("eval: %v", err)
	return outcome{}
}

// runNative compiles the program to assembly, links it and runs it.
func runNative(t *testing.T, ktFile string) outcome {
	t.Helper()

	src, err := os.ReadFile(ktFile)
	require.NoError(t, err)
	prog, err := syntax.ParseSource(src)
	require.NoError(t, err)

	asm, err := codegen.Generate(prog, codegen.DefaultConfig())
	if err != nil {
		t.Fatalf("codegen: %v\n%s", err, spew.Sdump(prog.Funcs))
	}

	tmpDir := t.TempDir()
	asmFile := filepath.Join(tmpDir, "output.s")
	binFile := filepath.Join(tmpDir, "output")
	require.NoError(t, os.WriteFile(asmFile, []byte(asm), 0o644))

	cmd := exec.Command("gcc", asmFile, "-o", binFile, "-lm")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("gcc failed:\n%s\n%v\nassembly:\n%s", out, err, asm)
	}

	var stdout, stderr bytes.Buffer
	cmd = exec.Command(binFile)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	status := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("binary execution failed: %v", err)
		}
		status = exitErr.ExitCode()
	}
	return outcome{Stdout: stdout.String(), Stderr: stderr.String(), Status: status}
}
