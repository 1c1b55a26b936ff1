// Command ochre is the thin CLI shell around the core (spec §6): it owns
// argument parsing, file I/O, and exit codes, and hands source text to
// vm.Interpret — none of that logic belongs in the core itself.
package main

import (
	"fmt"
	"os"

	"github.com/ochre-lang/ochre/internal/repl"
	"github.com/ochre-lang/ochre/internal/vm"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
	exitUsage        = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	switch len(args) {
	case 0:
		repl.Start(os.Stdin, os.Stdout, os.Stderr, os.Stdin.Fd())
		return exitOK
	case 1:
		return runFile(args[0])
	default:
		fmt.Fprintln(os.Stderr, "Usage: ochre [path]")
		return exitUsage
	}
}

func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file %q: %v\n", path, err)
		return exitIOError
	}

	machine := vm.New(os.Stdout, os.Stderr)
	switch machine.Interpret(string(source)) {
	case vm.ResultOk:
		return exitOK
	case vm.ResultCompileError:
		return exitCompileError
	case vm.ResultRuntimeError:
		return exitRuntimeError
	default:
		return exitRuntimeError
	}
}
