// Package heap is the allocator, object list, string intern table, and
// tri-color mark-sweep collector of spec §4.5. It is deliberately leaf-ish:
// it imports internal/value and internal/table but neither internal/vm nor
// internal/compiler, so both of those can depend on it without a cycle.
// The VM registers itself as the heap's RootProvider; the compiler pushes
// and pops its in-progress function tree directly (see DESIGN.md).
package heap

import (
	"github.com/ochre-lang/ochre/internal/table"
	"github.com/ochre-lang/ochre/internal/value"
)

// growFactor is GC_HEAP_GROW_FACTOR from the original source: after a
// sweep, the next collection triggers once live bytes double again.
const growFactor = 2

// RootProvider is implemented by the VM: MarkRoots must call mark on every
// Value reachable from the stack, active frames' closures, the open
// upvalue list, and the globals table (spec §4.5's VM-owned roots).
type RootProvider interface {
	MarkRoots(mark func(value.Value))
}

type Heap struct {
	objects value.Obj
	strings *table.Table

	bytesAllocated int
	nextGC         int
	stress         bool

	gray []value.Obj

	roots         RootProvider
	compilerRoots []*value.ObjFunction
	protected     []value.Value

	initString *value.ObjString
}

type Option func(*Heap)

// WithStressGC runs a collection on every growing allocation, per spec
// §4.5's stress flag — useful for exercising GC correctness in tests.
func WithStressGC() Option {
	return func(h *Heap) { h.stress = true }
}

func New(opts ...Option) *Heap {
	h := &Heap{
		strings: table.New(),
		nextGC:  1024 * 1024,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.initString = h.InternString("init")
	return h
}

func (h *Heap) SetRoots(r RootProvider) { h.roots = r }

// InitString returns the canonical "init" string, itself a GC root so an
// instance's constructor lookup never has to intern on the hot path.
func (h *Heap) InitString() *value.ObjString { return h.initString }

// PushCompilerRoot marks fn (and, transitively through its enclosing
// chain via the compiler's own bookkeeping) as reachable while a function
// body is still being compiled and isn't yet stored anywhere a normal
// root would reach — spec §3.7's "compiler's in-progress functions are
// roots while compilation is active".
func (h *Heap) PushCompilerRoot(fn *value.ObjFunction) {
	h.compilerRoots = append(h.compilerRoots, fn)
}

func (h *Heap) PopCompilerRoot() {
	h.compilerRoots = h.compilerRoots[:len(h.compilerRoots)-1]
}

// Protect roots v for the duration of a multi-step allocation sequence
// (spec §5, §9: "transient allocation safety"). Every heap constructor
// that performs more than one allocation — string concatenation, native
// registration — protects its intermediate result before the next
// allocation can trigger a collection, and unprotects once it is stored
// somewhere a normal root reaches.
func (h *Heap) Protect(v value.Value) { h.protected = append(h.protected, v) }

func (h *Heap) Unprotect() { h.protected = h.protected[:len(h.protected)-1] }

func (h *Heap) NewTable() *table.Table { return table.New() }

func (h *Heap) NewFunction() *value.ObjFunction {
	fn := value.NewFunction()
	h.track(fn, 64)
	return fn
}

func (h *Heap) NewNative(name string, fn value.NativeFn) *value.ObjNative {
	n := value.NewNative(name, fn)
	h.track(n, 32)
	return n
}

func (h *Heap) NewUpvalue(slot *value.Value) *value.ObjUpvalue {
	u := value.NewUpvalue(slot)
	h.track(u, 24)
	return u
}

func (h *Heap) NewClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := value.NewClosure(fn)
	h.track(c, 16+8*fn.UpvalueCount)
	return c
}

func (h *Heap) NewClass(name *value.ObjString) *value.ObjClass {
	c := value.NewClass(name, table.New())
	h.track(c, 32)
	return c
}

func (h *Heap) NewInstance(class *value.ObjClass) *value.ObjInstance {
	i := value.NewInstance(class, table.New())
	h.track(i, 32)
	return i
}

func (h *Heap) NewBoundMethod(receiver value.Value, method *value.ObjClosure) *value.ObjBoundMethod {
	b := value.NewBoundMethod(receiver, method)
	h.track(b, 24)
	return b
}

// InternString returns the canonical *ObjString for s, allocating and
// interning a new one only if no equal string exists yet (spec §3.6: no
// two distinct String objects have equal bytes).
func (h *Heap) InternString(s string) *value.ObjString {
	hash := value.HashString(s)
	if existing := h.strings.FindString(s, hash); existing != nil {
		return existing
	}
	str := value.NewString(s, hash)
	h.Protect(value.FromObj(str))
	h.track(str, 16+len(s))
	h.strings.Set(str, value.Nil)
	h.Unprotect()
	return str
}

// Concat implements the string half of OP_ADD (spec §4.4): a fresh
// interned concatenation of a and b.
func (h *Heap) Concat(a, b *value.ObjString) *value.ObjString {
	return h.InternString(a.Chars + b.Chars)
}

func (h *Heap) track(o value.Obj, size int) {
	hdr := value.HeaderOf(o)
	hdr.Next = h.objects
	hdr.Size = size
	h.objects = o
	h.bytesAllocated += size
	if h.stress || h.bytesAllocated > h.nextGC {
		h.CollectGarbage()
	}
}
