package vm

import (
	"bytes"
	"strings"
	"testing"
)

// run compiles and interprets source against fresh stdout/stderr buffers,
// returning the captured output for assertion. Each test drives the VM
// with source text rather than raw bytecode, since Interpret is the only
// public entry point spec §6 exposes.
func run(t *testing.T, source string) (stdout, stderr string, result Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	machine := New(&out, &errOut)
	result = machine.Interpret(source)
	return out.String(), errOut.String(), result
}

func TestArithmeticPrecedence(t *testing.T) {
	out, errOut, result := run(t, `print 1 + 2 * 3;`)
	if result != ResultOk {
		t.Fatalf("expected ResultOk, got %v (stderr: %s)", result, errOut)
	}
	if got := strings.TrimSpace(out); got != "7" {
		t.Errorf("expected %q, got %q", "7", got)
	}
}

func TestStringConcatenation(t *testing.T) {
	out, errOut, result := run(t, `print "foo" + "bar";`)
	if result != ResultOk {
		t.Fatalf("expected ResultOk, got %v (stderr: %s)", result, errOut)
	}
	if got := strings.TrimSpace(out); got != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", got)
	}
}

func TestFibonacciRecursion(t *testing.T) {
	source := `
fun fib(n) {
	if (n < 2) return n;
	return fib(n - 1) + fib(n - 2);
}
print fib(10);
`
	out, errOut, result := run(t, source)
	if result != ResultOk {
		t.Fatalf("expected ResultOk, got %v (stderr: %s)", result, errOut)
	}
	if got := strings.TrimSpace(out); got != "55" {
		t.Errorf("expected %q, got %q", "55", got)
	}
}

func TestClosureCounters(t *testing.T) {
	source := `
fun makeCounter() {
	var i = 0;
	fun count() {
		i = i + 1;
		print i;
	}
	return count;
}
var counter = makeCounter();
counter();
counter();
counter();
`
	out, errOut, result := run(t, source)
	if result != ResultOk {
		t.Fatalf("expected ResultOk, got %v (stderr: %s)", result, errOut)
	}
	lines := strings.Fields(out)
	want := []string{"1", "2", "3"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestClassInheritanceWithSuper(t *testing.T) {
	source := `
class Doughnut {
	cook() {
		print 20 + 21;
	}
}
class BostonCream < Doughnut {
	cook() {
		super.cook();
		print 20 + 22;
	}
}
BostonCream().cook();
`
	out, errOut, result := run(t, source)
	if result != ResultOk {
		t.Fatalf("expected ResultOk, got %v (stderr: %s)", result, errOut)
	}
	lines := strings.Fields(out)
	want := []string{"41", "42"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestRuntimeTypeErrorOnBadAdd(t *testing.T) {
	out, errOut, result := run(t, `print 1 + "x";`)
	if result != ResultRuntimeError {
		t.Fatalf("expected ResultRuntimeError, got %v", result)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no stdout, got %q", out)
	}
	if errOut == "" {
		t.Errorf("expected a runtime error message on stderr")
	}
}

func TestCompileErrorOnUnterminatedString(t *testing.T) {
	_, errOut, result := run(t, `print "unterminated;`)
	if result != ResultCompileError {
		t.Fatalf("expected ResultCompileError, got %v", result)
	}
	if errOut == "" {
		t.Errorf("expected a compile error message on stderr")
	}
}

func TestTopLevelReturnIsCompileError(t *testing.T) {
	_, _, result := run(t, `return 1;`)
	if result != ResultCompileError {
		t.Fatalf("expected ResultCompileError, got %v", result)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, _, result := run(t, `print nope;`)
	if result != ResultRuntimeError {
		t.Fatalf("expected ResultRuntimeError, got %v", result)
	}
}

// TestManyLocalsBoundary exercises the 256-local compile-time limit a
// single function body may declare (spec §8 boundary behavior). Slot 0
// is reserved for the function itself, so 255 named locals beyond it
// compiles and runs, and the 256th named local is a compile error.
func TestManyLocalsBoundary(t *testing.T) {
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < 255; i++ {
		b.WriteString("var a")
		b.WriteString(itoa(i))
		b.WriteString(" = ")
		b.WriteString(itoa(i))
		b.WriteString(";\n")
	}
	b.WriteString("print a254;\n}\n")

	out, errOut, result := run(t, b.String())
	if result != ResultOk {
		t.Fatalf("expected ResultOk for 255 locals, got %v (stderr: %s)", result, errOut)
	}
	if got := strings.TrimSpace(out); got != "254" {
		t.Errorf("expected %q, got %q", "254", got)
	}

	b.Reset()
	b.WriteString("{\n")
	for i := 0; i < 256; i++ {
		b.WriteString("var b")
		b.WriteString(itoa(i))
		b.WriteString(" = ")
		b.WriteString(itoa(i))
		b.WriteString(";\n")
	}
	b.WriteString("}\n")

	_, errOut, result = run(t, b.String())
	if result != ResultCompileError {
		t.Fatalf("expected ResultCompileError for 256 locals, got %v (stderr: %s)", result, errOut)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
