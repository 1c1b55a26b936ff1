package vm

import "github.com/ochre-lang/ochre/internal/value"

// callFrame is one activation record (spec §4.4): the closure being run,
// a raw byte-offset instruction pointer into its chunk, and the stack
// index of slot 0 for this call.
type callFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int // index into vm.stack of this frame's slot 0
}

func (f *callFrame) chunk() *value.Chunk { return f.closure.Function.Chunk }

func (f *callFrame) readByte() byte {
	b := f.chunk().Code[f.ip]
	f.ip++
	return b
}

func (f *callFrame) readShort() int {
	hi := int(f.chunk().Code[f.ip])
	lo := int(f.chunk().Code[f.ip+1])
	f.ip += 2
	return hi<<8 | lo
}

func (f *callFrame) readConstant() value.Value {
	return f.chunk().Constants[f.readByte()]
}

func (f *callFrame) readString() *value.ObjString {
	return f.readConstant().AsObj().(*value.ObjString)
}

func (f *callFrame) line() int {
	if f.ip-1 < len(f.chunk().Lines) && f.ip-1 >= 0 {
		return f.chunk().Lines[f.ip-1]
	}
	return 0
}
