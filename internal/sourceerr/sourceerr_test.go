package sourceerr

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessageFormat(t *testing.T) {
	e := New(Syntax, 3, "Expect '%s' after expression", ")")
	if got, want := e.Error(), "[line 3] Error: Expect ')' after expression."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestErrorWithEmptyMessageHasNoColon(t *testing.T) {
	e := New(Overflow, 5, "")
	got := e.Error()
	if got != "[line 5] Error." {
		t.Errorf("expected %q, got %q", "[line 5] Error.", got)
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(cause, TypeError, 10, "dbOpen: %s", cause.Error())

	if !strings.Contains(e.Error(), "connection refused") {
		t.Errorf("expected message to mention the cause, got %q", e.Error())
	}
	if errors.Unwrap(e) == nil {
		t.Error("expected Wrap to leave a non-nil cause reachable via Unwrap")
	}
}

func TestStackFrameStringForScriptVsFunction(t *testing.T) {
	script := StackFrame{Line: 7}
	if got, want := script.String(), "[line 7] in script"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	fn := StackFrame{Function: "fib", Line: 12}
	if got, want := fn.String(), "[line 12] in fib()"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
