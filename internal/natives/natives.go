// Package natives registers Go-backed callables into the VM's global
// table through the ordinary ObjNative mechanism (spec §3.2, §6) — no new
// opcodes, no VM changes. Each native validates its own argument count and
// types and reports failures as a plain Go error, which the VM turns into
// a runtime type error exactly like a failure inside a CALL of any other
// native (spec §7).
package natives

import (
	"fmt"

	"github.com/ochre-lang/ochre/internal/heap"
	"github.com/ochre-lang/ochre/internal/value"
)

// Host is the surface a native module needs from the VM: a heap to
// allocate/intern through, a way to install a global, and the VM's
// canonical stringify logic (shared with `print` and `tostring`).
type Host interface {
	Heap() *heap.Heap
	Define(name string, fn value.NativeFn)
	Stringify(v value.Value) string
}

func argError(fn string, want int, got int) error {
	return fmt.Errorf("%s expects %d argument(s), got %d", fn, want, got)
}

func wrongType(fn string, arg int, want string) error {
	return fmt.Errorf("%s argument %d must be %s", fn, arg, want)
}

func wantString(fn string, arg int, v value.Value) (*value.ObjString, error) {
	if !v.IsObjKind(value.ObjKindString) {
		return nil, wrongType(fn, arg, "a string")
	}
	return v.AsObj().(*value.ObjString), nil
}

func wantNumber(fn string, arg int, v value.Value) (float64, error) {
	if !v.IsNumber() {
		return 0, wrongType(fn, arg, "a number")
	}
	return v.AsNumber(), nil
}
