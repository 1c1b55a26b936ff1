package vm

import (
	"fmt"

	"github.com/ochre-lang/ochre/internal/value"
)

// run is the bytecode dispatch loop (spec §4.4): decode one opcode,
// branch on it, repeat until the outermost frame returns or a runtime
// error unwinds everything.
func (vm *VM) run() Result {
	frame := &vm.frames[vm.frameCount-1]

	for {
		op := value.OpCode(frame.readByte())
		switch op {
		case value.OpConstant:
			vm.push(frame.readConstant())

		case value.OpNil:
			vm.push(value.Nil)
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case value.OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case value.OpGetGlobal:
			name := frame.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ResultRuntimeError
			}
			vm.push(v)
		case value.OpDefineGlobal:
			name := frame.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case value.OpSetGlobal:
			name := frame.readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ResultRuntimeError
			}

		case value.OpGetUpvalue:
			slot := frame.readByte()
			up := frame.closure.Upvalues[slot]
			vm.push(*up.Location)
		case value.OpSetUpvalue:
			slot := frame.readByte()
			up := frame.closure.Upvalues[slot]
			*up.Location = vm.peek(0)

		case value.OpGetProperty:
			if !vm.execGetProperty(frame) {
				return ResultRuntimeError
			}
		case value.OpSetProperty:
			if !vm.execSetProperty(frame) {
				return ResultRuntimeError
			}
		case value.OpGetSuper:
			name := frame.readString()
			superclass := vm.pop().AsObj().(*value.ObjClass)
			if !vm.bindMethod(superclass, name) {
				return ResultRuntimeError
			}

		case value.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpGreater:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Bool(a > b) }) {
				return ResultRuntimeError
			}
		case value.OpLess:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Bool(a < b) }) {
				return ResultRuntimeError
			}

		case value.OpAdd:
			if !vm.execAdd() {
				return ResultRuntimeError
			}
		case value.OpSubtract:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Number(a - b) }) {
				return ResultRuntimeError
			}
		case value.OpMultiply:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Number(a * b) }) {
				return ResultRuntimeError
			}
		case value.OpDivide:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Number(a / b) }) {
				return ResultRuntimeError
			}

		case value.OpNot:
			vm.push(value.Bool(!vm.pop().Truthy()))
		case value.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return ResultRuntimeError
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case value.OpPrint:
			fmt.Fprintln(vm.stdout, vm.stringify(vm.pop()))

		case value.OpJump:
			offset := frame.readShort()
			frame.ip += offset
		case value.OpJumpIfFalse:
			offset := frame.readShort()
			if !vm.peek(0).Truthy() {
				frame.ip += offset
			}
		case value.OpLoop:
			offset := frame.readShort()
			frame.ip -= offset

		case value.OpCall:
			argc := int(frame.readByte())
			if !vm.callValue(vm.peek(argc), argc) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OpInvoke:
			name := frame.readString()
			argc := int(frame.readByte())
			if !vm.invoke(name, argc) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OpSuperInvoke:
			name := frame.readString()
			argc := int(frame.readByte())
			superclass := vm.pop().AsObj().(*value.ObjClass)
			if !vm.invokeFromClass(superclass, name, argc) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OpClosure:
			fn := frame.readConstant().AsObj().(*value.ObjFunction)
			closure := vm.heap.NewClosure(fn)
			vm.push(value.FromObj(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := frame.readByte()
				index := int(frame.readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return ResultOk
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case value.OpClass:
			name := frame.readString()
			vm.push(value.FromObj(vm.heap.NewClass(name)))
		case value.OpInherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.AsObj().(*value.ObjClass)
			if !superVal.IsObj() || !ok {
				vm.runtimeError("Superclass must be a class.")
				return ResultRuntimeError
			}
			subclass := vm.peek(0).AsObj().(*value.ObjClass)
			subclass.Methods.AddAllFrom(superclass.Methods)
			vm.pop() // pop the subclass; the superclass below it stays as the `super` local
		case value.OpMethod:
			name := frame.readString()
			vm.defineMethod(name)

		default:
			vm.runtimeError("Unknown opcode %d.", byte(op))
			return ResultRuntimeError
		}
	}
}

func (vm *VM) numericBinary(op func(a, b float64) value.Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(op(a, b))
	return true
}

// execAdd implements spec §4.4: numbers add, strings concatenate, any
// other pairing is a runtime type error.
func (vm *VM) execAdd() bool {
	b, a := vm.peek(0), vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		bn := vm.pop().AsNumber()
		an := vm.pop().AsNumber()
		vm.push(value.Number(an + bn))
	case a.IsObjKind(value.ObjKindString) && b.IsObjKind(value.ObjKindString):
		bs := vm.pop().AsObj().(*value.ObjString)
		as := vm.pop().AsObj().(*value.ObjString)
		vm.heap.Protect(value.FromObj(as))
		vm.heap.Protect(value.FromObj(bs))
		result := vm.heap.Concat(as, bs)
		vm.heap.Unprotect()
		vm.heap.Unprotect()
		vm.push(value.FromObj(result))
	default:
		vm.runtimeError("Operand must be two numbers or two strings.")
		return false
	}
	return true
}

func (vm *VM) execGetProperty(frame *callFrame) bool {
	if !vm.peek(0).IsObjKind(value.ObjKindInstance) {
		vm.runtimeError("Only instances have properties.")
		return false
	}
	instance := vm.peek(0).AsObj().(*value.ObjInstance)
	name := frame.readString()

	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return true
	}
	return vm.bindMethod(instance.Class, name)
}

func (vm *VM) execSetProperty(frame *callFrame) bool {
	if !vm.peek(1).IsObjKind(value.ObjKindInstance) {
		vm.runtimeError("Only instances have fields.")
		return false
	}
	instance := vm.peek(1).AsObj().(*value.ObjInstance)
	name := frame.readString()
	instance.Fields.Set(name, vm.peek(0))

	v := vm.pop()
	vm.pop()
	vm.push(v)
	return true
}

func (vm *VM) defineMethod(name *value.ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).AsObj().(*value.ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}
