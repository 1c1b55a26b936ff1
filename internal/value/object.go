package value

// ObjKind discriminates the eight heap object variants of spec §3.2.
type ObjKind uint8

const (
	ObjKindString ObjKind = iota
	ObjKindFunction
	ObjKindNative
	ObjKindClosure
	ObjKindUpvalue
	ObjKindClass
	ObjKindInstance
	ObjKindBoundMethod
)

func (k ObjKind) String() string {
	switch k {
	case ObjKindString:
		return "string"
	case ObjKindFunction:
		return "function"
	case ObjKindNative:
		return "native"
	case ObjKindClosure:
		return "closure"
	case ObjKindUpvalue:
		return "upvalue"
	case ObjKindClass:
		return "class"
	case ObjKindInstance:
		return "instance"
	case ObjKindBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}

// Header is the uniform header every heap object carries (spec §3.2):
// a kind tag, the GC mark bit, and the intrusive next-pointer that makes
// every allocated object a node of the heap's single linked object list.
type Header struct {
	Kind   ObjKind
	Marked bool
	Next   Obj
	Size   int // bytes charged against the heap's allocation counter
}

// Obj is satisfied by a pointer to any of the eight heap object structs.
// It intentionally exposes only the header: the GC and the object list
// only ever need Kind/Marked/Next, never a variant's own fields, and the
// header() accessor stays unexported so callers outside this package must
// type-switch on the concrete *ObjString / *ObjFunction / ... pointer
// (exactly as the teacher's own value-type switches do) rather than reach
// around the type system.
type Obj interface {
	header() *Header
}

func (h *Header) header() *Header { return h }

// HeaderOf exposes an Obj's Header to other packages (the heap's
// allocator and collector) without giving them
// access to a variant's own fields.
func HeaderOf(o Obj) *Header { return o.header() }

// ObjString is an interned, immutable string plus its precomputed hash.
type ObjString struct {
	Header
	Chars string
	Hash  uint32
}

// ObjFunction is a compiled function: its arity, how many upvalues it
// closes over, its chunk, and an optional name (nil for the top-level
// script body).
type ObjFunction struct {
	Header
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString
}

// NativeFn is a Go function registered as a callable VM value.
type NativeFn func(args []Value) (Value, error)

type ObjNative struct {
	Header
	Name string
	Fn   NativeFn
}

// ObjUpvalue captures a variable that outlives the frame it was local to.
// Location points into a live stack slot while open; Close copies the
// current value into Closed and repoints Location at it.
type ObjUpvalue struct {
	Header
	Location *Value
	Closed   Value
	Next     *ObjUpvalue // open-upvalue list link, not the GC object-list link
}

func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a Function with the Upvalue pointers it captured.
type ObjClosure struct {
	Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

// ObjClass is a class value: its name and its method table. Methods is
// typed as the MethodTable interface here (holding *table.Table) to avoid
// this package importing internal/table, which itself imports
// internal/value.
type ObjClass struct {
	Header
	Name    *ObjString
	Methods MethodTable
}

// MethodTable is the minimal surface ObjClass/ObjInstance need from
// internal/table.Table, satisfied there via the concrete *table.Table.
type MethodTable interface {
	Get(key *ObjString) (Value, bool)
	Set(key *ObjString, v Value) bool
	AddAllFrom(other MethodTable)
	Each(func(key *ObjString, v Value))
}

type ObjInstance struct {
	Header
	Class  *ObjClass
	Fields MethodTable
}

type ObjBoundMethod struct {
	Header
	Receiver Value
	Method   *ObjClosure
}

func NewString(s string, hash uint32) *ObjString {
	return &ObjString{Header: Header{Kind: ObjKindString}, Chars: s, Hash: hash}
}

func NewFunction() *ObjFunction {
	return &ObjFunction{Header: Header{Kind: ObjKindFunction}, Chunk: NewChunk()}
}

func NewNative(name string, fn NativeFn) *ObjNative {
	return &ObjNative{Header: Header{Kind: ObjKindNative}, Name: name, Fn: fn}
}

func NewUpvalue(slot *Value) *ObjUpvalue {
	return &ObjUpvalue{Header: Header{Kind: ObjKindUpvalue}, Location: slot}
}

func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		Header:   Header{Kind: ObjKindClosure},
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func NewClass(name *ObjString, methods MethodTable) *ObjClass {
	return &ObjClass{Header: Header{Kind: ObjKindClass}, Name: name, Methods: methods}
}

func NewInstance(class *ObjClass, fields MethodTable) *ObjInstance {
	return &ObjInstance{Header: Header{Kind: ObjKindInstance}, Class: class, Fields: fields}
}

func NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{Header: Header{Kind: ObjKindBoundMethod}, Receiver: receiver, Method: method}
}
