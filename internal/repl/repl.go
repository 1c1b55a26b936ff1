// Package repl implements the line-at-a-time read loop of spec §6's CLI
// surface: read a line, interpret it, repeat until EOF. Each line reuses
// the same VM (so globals and classes persist across lines), the way the
// teacher's REPL reuses one sentraVM across iterations.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/ochre-lang/ochre/internal/vm"
)

// Start runs the REPL, printing a prompt only when in points at an
// interactive terminal (so piping a script through stdin stays quiet),
// grounded on the teacher's stdin-isatty-gated prompt behavior.
func Start(in io.Reader, out, errOut io.Writer, fd uintptr) {
	interactive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	machine := vm.New(out, errOut)
	scanner := bufio.NewScanner(in)

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		machine.Interpret(scanner.Text())
	}
}
