package compiler

import (
	"testing"

	"github.com/ochre-lang/ochre/internal/heap"
	"github.com/ochre-lang/ochre/internal/value"
)

func compile(t *testing.T, source string) (*value.ObjFunction, []string) {
	t.Helper()
	fn, errs := Compile(source, heap.New())
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fn, msgs
}

func TestCompileValidProgram(t *testing.T) {
	fn, errs := compile(t, `
var x = 1;
fun greet(name) {
	print "hi " + name;
}
greet("world");
`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if fn == nil {
		t.Fatal("expected a non-nil script function")
	}
}

func TestCompileUnterminatedString(t *testing.T) {
	fn, errs := compile(t, `print "oops;`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected at least one error")
	}
}

func TestCompileReadLocalInOwnInitializer(t *testing.T) {
	fn, errs := compile(t, `{ var a = a; }`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected an error about self-referencing initializer")
	}
}

func TestCompileDuplicateLocalInSameScope(t *testing.T) {
	fn, errs := compile(t, `{ var a = 1; var a = 2; }`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-name error")
	}
}

func TestCompileTopLevelReturnIsError(t *testing.T) {
	fn, errs := compile(t, `return 1;`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected a top-level-return error")
	}
}

func TestCompileInitializerReturningValueIsError(t *testing.T) {
	fn, errs := compile(t, `
class Foo {
	init() {
		return 1;
	}
}
`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected an init-return-value error")
	}
}

func TestCompileThisOutsideClassIsError(t *testing.T) {
	fn, errs := compile(t, `print this;`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected a this-outside-class error")
	}
}

func TestCompileSuperWithoutSuperclassIsError(t *testing.T) {
	fn, errs := compile(t, `
class Foo {
	bar() {
		super.bar();
	}
}
`)
	if fn != nil {
		t.Error("expected nil function on compile error")
	}
	if len(errs) == 0 {
		t.Fatal("expected a super-without-superclass error")
	}
}

func TestCompileTooManyLocalsInOneFunction(t *testing.T) {
	var b []byte
	b = append(b, "fun outer() {\n"...)
	for i := 0; i < 257; i++ {
		b = append(b, []byte("var v"+itoaTest(i)+" = "+itoaTest(i)+";\n")...)
	}
	b = append(b, "}\n"...)

	fn, errs := compile(t, string(b))
	if fn != nil {
		t.Error("expected nil function when a single function body exceeds 256 locals")
	}
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
}

func itoaTest(n int) string {
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
