package vm

import (
	"strconv"

	"github.com/ochre-lang/ochre/internal/value"
)

// stringify implements spec §6's print forms.
func (vm *VM) stringify(v value.Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case v.IsObj():
		return vm.stringifyObj(v.AsObj())
	default:
		return ""
	}
}

func (vm *VM) stringifyObj(o value.Obj) string {
	switch obj := o.(type) {
	case *value.ObjString:
		return obj.Chars
	case *value.ObjFunction:
		if obj.Name == nil {
			return "<script>"
		}
		return "<fn " + obj.Name.Chars + ">"
	case *value.ObjNative:
		return "<native fn>"
	case *value.ObjClosure:
		return vm.stringifyObj(obj.Function)
	case *value.ObjClass:
		return obj.Name.Chars
	case *value.ObjInstance:
		return obj.Class.Name.Chars + " instance"
	case *value.ObjBoundMethod:
		return vm.stringifyObj(obj.Method)
	default:
		return "<obj>"
	}
}
