package vm

import (
	"unsafe"

	"github.com/ochre-lang/ochre/internal/value"
)

// callValue implements spec §4.4's calling convention: dispatch on the
// callee's kind, replacing the slot it occupies with what the call
// conceptually invokes.
func (vm *VM) callValue(callee value.Value, argc int) bool {
	if !callee.IsObj() {
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
	switch obj := callee.AsObj().(type) {
	case *value.ObjBoundMethod:
		vm.stack[vm.stackTop-argc-1] = obj.Receiver
		return vm.call(obj.Method, argc)
	case *value.ObjClass:
		instance := vm.heap.NewInstance(obj)
		vm.stack[vm.stackTop-argc-1] = value.FromObj(instance)
		if initFn, ok := obj.Methods.Get(vm.heap.InitString()); ok {
			return vm.call(initFn.AsObj().(*value.ObjClosure), argc)
		} else if argc != 0 {
			vm.runtimeError("Expected 0 arguments but got %d.", argc)
			return false
		}
		return true
	case *value.ObjClosure:
		return vm.call(obj, argc)
	case *value.ObjNative:
		result, err := obj.Fn(vm.stack[vm.stackTop-argc : vm.stackTop])
		if err != nil {
			vm.runtimeErrorFromNative(err)
			return false
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return true
	default:
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
}

// call pushes a new frame over closure, checking arity and the frame
// depth cap (spec §4.4, §8's "64 frames succeed, 65th overflows").
func (vm *VM) call(closure *value.ObjClosure, argc int) bool {
	if argc != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
		return false
	}
	if vm.frameCount == framesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argc - 1
	return true
}

// invoke fuses property lookup with a call (spec §4.3's INVOKE): a field
// holding a callable still wins over a method of the same name.
func (vm *VM) invoke(name *value.ObjString, argc int) bool {
	receiver := vm.peek(argc)
	instance, ok := receiver.AsObj().(*value.ObjInstance)
	if !receiver.IsObj() || !ok {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argc int) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(method.AsObj().(*value.ObjClosure), argc)
}

// bindMethod wraps an instance's class method as an ObjBoundMethod for
// plain (non-call) property access (spec §3.7).
func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), method.AsObj().(*value.ObjClosure))
	vm.pop()
	vm.push(value.FromObj(bound))
	return true
}

// captureUpvalue returns the open upvalue for stack slot, reusing an
// existing one if the list (sorted by descending slot index) already has
// it, splicing a fresh one into position otherwise (spec §4.4).
func (vm *VM) captureUpvalue(slot int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && vm.upvalueSlot(cur) > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && vm.upvalueSlot(cur) == slot {
		return cur
	}

	created := vm.heap.NewUpvalue(&vm.stack[slot])
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// upvalueSlot recovers an open upvalue's stack index from its raw
// Location pointer, since vm.stack is a fixed array that never moves for
// the VM's lifetime — the pointer arithmetic the original's intrusive
// sorted-by-address list relies on.
func (vm *VM) upvalueSlot(u *value.ObjUpvalue) int {
	base := uintptr(unsafe.Pointer(&vm.stack[0]))
	cur := uintptr(unsafe.Pointer(u.Location))
	return int((cur - base) / unsafe.Sizeof(vm.stack[0]))
}

// closeUpvalues closes every open upvalue at or above stack index from,
// copying the live value into Closed and repointing Location there (spec
// §4.4: closed upvalues keep values alive after the frame is gone).
func (vm *VM) closeUpvalues(from int) {
	for vm.openUpvalues != nil && vm.upvalueSlot(vm.openUpvalues) >= from {
		u := vm.openUpvalues
		u.Close()
		vm.openUpvalues = u.Next
	}
}
