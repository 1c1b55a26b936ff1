// Package sourceerr models the diagnostic taxonomy of spec §7: every
// compile-time or runtime failure is a sourceerr.Error carrying a Kind, a
// 1-based source line, and a message, in the teacher's
// location-plus-message style (internal/errors.SentraError) but backed by
// github.com/pkg/errors so a native function's underlying Go error keeps
// its own stack when wrapped into one of these.
package sourceerr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	Lexical   Kind = "lexical"
	Syntax    Kind = "syntax"
	Static    Kind = "static"
	TypeError Kind = "runtime type"
	Undefined Kind = "runtime undefined-name"
	Overflow  Kind = "stack overflow"
)

// Error is a single diagnostic. The user-visible form is
// "[line N] Error: message." per spec §7.
type Error struct {
	Kind    Kind
	Line    int
	Message string
	cause   error
}

func New(kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause's stack (via pkg/errors) to a new diagnostic —
// used when a native function's Go error becomes a runtime error.
func Wrap(cause error, kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error%s.", e.Line, suffix(e.Message))
}

func suffix(msg string) string {
	if msg == "" {
		return ""
	}
	return ": " + msg
}

func (e *Error) Unwrap() error { return e.cause }

// StackFrame is one line of the runtime stack trace spec §4.4 requires on
// a runtime error: "[line N] in fname()" or "in script".
type StackFrame struct {
	Function string // empty means "script"
	Line     int
}

func (f StackFrame) String() string {
	name := f.Function
	if name == "" {
		return fmt.Sprintf("[line %d] in script", f.Line)
	}
	return fmt.Sprintf("[line %d] in %s()", f.Line, name)
}
