// Package value holds the tagged Value representation, the eight heap
// object kinds, and the bytecode Chunk — the three are kept in one package
// because the compiler and the VM both need all of them and neither may
// import the other (see DESIGN.md).
package value

// Kind discriminates the variants of Value. The original encoding this is
// modeled on (original_source/cpplox/value.h, NAN_BOXING branch) packs these
// into the bit patterns of a quiet NaN; this port uses an explicit
// discriminated struct instead of hiding a pointer inside a float's bits,
// which spec.md §3.1 calls out as an equivalent, implementation-defined
// choice. The truthiness and equality rules are unchanged either way.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is nil, a bool, a float64, or a reference to a heap object.
type Value struct {
	kind Kind
	num  float64
	obj  Obj
}

var Nil = Value{kind: KindNil}

func Bool(b bool) Value {
	var n float64
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func FromObj(o Obj) Value {
	return Value{kind: KindObj, obj: o}
}

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) AsBool() bool      { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

func (v Value) IsObjKind(k ObjKind) bool {
	return v.kind == KindObj && v.obj != nil && v.obj.header().Kind == k
}

// Truthy implements spec §3.1: nil and false are falsey, everything else
// (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.AsBool()
	default:
		return true
	}
}

// Equal implements value equality per spec §3.1: numbers by IEEE-754
// equality (so NaN != NaN), bool/nil by identity, objects by reference
// identity (interned strings make that string equality).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.AsBool() == b.AsBool()
	case KindNumber:
		return a.num == b.num
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}
