// Package vm executes compiled bytecode: a stack, a call-frame array, the
// globals table, and the open-upvalue list (spec §4.4). It imports
// internal/compiler to drive Interpret, and registers itself as the
// heap's RootProvider so GC can see everything the VM keeps alive.
package vm

import (
	"fmt"
	"io"

	"github.com/ochre-lang/ochre/internal/compiler"
	"github.com/ochre-lang/ochre/internal/heap"
	"github.com/ochre-lang/ochre/internal/natives"
	"github.com/ochre-lang/ochre/internal/sourceerr"
	"github.com/ochre-lang/ochre/internal/table"
	"github.com/ochre-lang/ochre/internal/value"
)

const (
	stackMax  = 16384
	framesMax = 64
)

// Result is the outcome of Interpret, per spec §6's embedding API.
type Result int

const (
	ResultOk Result = iota
	ResultCompileError
	ResultRuntimeError
)

type config struct {
	stress bool
}

type Option func(*config)

// WithStressGC forces a collection on every growing allocation (spec
// §4.5's stress flag), propagated down to the heap.
func WithStressGC() Option { return func(c *config) { c.stress = true } }

type VM struct {
	heap   *heap.Heap
	stdout io.Writer
	stderr io.Writer

	stack    [stackMax]value.Value
	stackTop int

	frames     [framesMax]callFrame
	frameCount int

	globals      *table.Table
	openUpvalues *value.ObjUpvalue // head, sorted by descending slot index
}

// New builds a VM with fresh heap and globals, wires print/error sinks,
// and installs the built-in and supplemented native functions (spec §6,
// SPEC_FULL §3).
func New(stdout, stderr io.Writer, opts ...Option) *VM {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	var hopts []heap.Option
	if cfg.stress {
		hopts = append(hopts, heap.WithStressGC())
	}
	vm := &VM{
		heap:    heap.New(hopts...),
		stdout:  stdout,
		stderr:  stderr,
		globals: table.New(),
	}
	vm.heap.SetRoots(vm)
	natives.InstallCore(vm)
	natives.InstallSupplemented(vm)
	return vm
}

// Heap exposes the VM's heap to natives.Host implementations, letting
// native functions intern strings or allocate heap objects of their own
// (spec §6's two built-ins plus SPEC_FULL's supplemented natives).
func (vm *VM) Heap() *heap.Heap { return vm.heap }

// Define installs fn as a global native function under name, satisfying
// natives.Host.
func (vm *VM) Define(name string, fn value.NativeFn) { vm.defineNative(name, fn) }

// Interpret compiles and runs source, the sole entry point of spec §6's
// embedding API (`initVM`/`interpret` collapsed into New/Interpret — freeVM
// has no Go analogue, the GC reclaims everything once the VM is dropped).
func (vm *VM) Interpret(source string) Result {
	fn, errs := compiler.Compile(source, vm.heap)
	if fn == nil {
		for _, e := range errs {
			fmt.Fprintln(vm.stderr, e.Error())
		}
		return ResultCompileError
	}

	closure := vm.heap.NewClosure(fn)
	vm.push(value.FromObj(closure))
	vm.callValue(value.FromObj(closure), 0)

	return vm.run()
}

// ---- stack -----------------------------------------------------------

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// runtimeError writes the message and a top-down stack trace to the
// error sink, then resets the stack (spec §4.4/§7) — fatal to the
// current script, not to the VM.
func (vm *VM) runtimeError(format string, args ...interface{}) {
	vm.reportRuntimeError(sourceerr.New(sourceerr.TypeError, vm.currentLine(), format, args...))
}

// runtimeErrorFromNative wraps a native function's own Go error via
// sourceerr.Wrap, so the diagnostic's Unwrap chain retains the pkg/errors
// stack trace that produced it, in addition to the source-language call
// stack every runtime error already gets.
func (vm *VM) runtimeErrorFromNative(err error) {
	vm.reportRuntimeError(sourceerr.Wrap(err, sourceerr.TypeError, vm.currentLine(), "%s", err.Error()))
}

func (vm *VM) currentLine() int {
	if vm.frameCount > 0 {
		return vm.frames[vm.frameCount-1].line()
	}
	return 0
}

func (vm *VM) reportRuntimeError(err *sourceerr.Error) {
	fmt.Fprintln(vm.stderr, err.Error())

	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		name := ""
		if frame.closure.Function.Name != nil {
			name = frame.closure.Function.Name.Chars
		}
		fmt.Fprintln(vm.stderr, sourceerr.StackFrame{Function: name, Line: frame.line()}.String())
	}
	vm.resetStack()
}

// ---- natives -----------------------------------------------------------

func (vm *VM) defineNative(name string, fn value.NativeFn) {
	n := vm.heap.NewNative(name, fn)
	vm.heap.Protect(value.FromObj(n))
	vm.globals.Set(vm.heap.InternString(name), value.FromObj(n))
	vm.heap.Unprotect()
}

// Stringify renders v in the canonical textual form of spec §6, exposed
// to natives.Host so `tostring` shares the exact logic `print` uses.
func (vm *VM) Stringify(v value.Value) string { return vm.stringify(v) }

// ---- GC roots ------------------------------------------------------------

// MarkRoots implements heap.RootProvider: the operand stack, every active
// frame's closure, the open-upvalue list, and the globals table (spec
// §4.5's VM-owned roots).
func (vm *VM) MarkRoots(mark func(value.Value)) {
	for i := 0; i < vm.stackTop; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		mark(value.FromObj(vm.frames[i].closure))
	}
	for u := vm.openUpvalues; u != nil; u = u.Next {
		mark(value.FromObj(u))
	}
	vm.globals.Each(func(key *value.ObjString, v value.Value) {
		mark(value.FromObj(key))
		mark(v)
	})
}
