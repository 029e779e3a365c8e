package main

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// tools lists the programs needed to turn the generated assembly into an
// executable: gcc drives the assembler and the linker.
var tools = []struct {
	name     string
	required bool
}{
	{"gcc", true},
	{"as", true},
	{"ld", false},
}

// runDoctor checks the toolchain and returns an exit code.
func runDoctor(w io.Writer) int {
	fmt.Fprintln(w, "ktc Toolchain Doctor")
	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w)

	allOk := true
	for _, tool := range tools {
		version, ok := checkTool(tool.name, "--version")
		fmt.Fprintf(w, "%-5s %s", tool.name+":", version)
		switch {
		case ok:
			fmt.Fprintln(w, " ✓")
		case tool.required:
			fmt.Fprintln(w, " ✗ (not found)")
			allOk = false
		default:
			fmt.Fprintln(w, " (optional, not found)")
		}
	}

	fmt.Fprintln(w)
	if allOk {
		fmt.Fprintln(w, "All required tools available!")
		fmt.Fprintln(w, "Build the generated assembly with: gcc prog.s -o prog -lm")
		return 0
	}
	fmt.Fprintln(w, "Some required tools are missing.")
	return 1
}

// checkTool runs a tool with the given arguments and returns the first line of output.
func checkTool(name string, args ...string) (string, bool) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", false
	}

	line, _, _ := strings.Cut(string(out), "\n")
	line = strings.TrimSpace(line)
	// Truncate long lines
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line, true
}
