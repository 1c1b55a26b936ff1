package heap

import (
	"testing"

	"github.com/ochre-lang/ochre/internal/value"
)

func TestInternStringDedupesEqualContent(t *testing.T) {
	h := New()
	a := h.InternString("hello")
	b := h.InternString("hello")
	if a != b {
		t.Errorf("expected the same *ObjString for equal content, got distinct pointers")
	}
	c := h.InternString("world")
	if a == c {
		t.Errorf("expected distinct *ObjString for distinct content")
	}
}

func TestConcatInterns(t *testing.T) {
	h := New()
	a := h.InternString("foo")
	b := h.InternString("bar")
	got := h.Concat(a, b)
	want := h.InternString("foobar")
	if got != want {
		t.Errorf("Concat should intern its result through the same table")
	}
}

// fakeRoots lets a test control exactly what the collector considers
// reachable, the way the VM's MarkRoots does for the stack/frames/globals.
type fakeRoots struct {
	values []value.Value
}

func (f *fakeRoots) MarkRoots(mark func(value.Value)) {
	for _, v := range f.values {
		mark(v)
	}
}

func TestCollectGarbageFreesUnreachableStrings(t *testing.T) {
	h := New()
	kept := h.InternString("kept")
	_ = h.InternString("garbage")

	roots := &fakeRoots{values: []value.Value{value.FromObj(kept)}}
	h.SetRoots(roots)

	h.CollectGarbage()

	if h.strings.FindString("kept", value.HashString("kept")) == nil {
		t.Error("a reachable interned string must survive collection")
	}
	if h.strings.FindString("garbage", value.HashString("garbage")) != nil {
		t.Error("an unreachable interned string must be pruned from the intern table")
	}
}

func TestCollectGarbageTracesThroughFunctionConstants(t *testing.T) {
	h := New()
	fn := h.NewFunction()
	name := h.InternString("reachableOnlyThroughFunction")
	fn.Chunk.Constants = append(fn.Chunk.Constants, value.FromObj(name))

	roots := &fakeRoots{values: []value.Value{value.FromObj(fn)}}
	h.SetRoots(roots)

	h.CollectGarbage()

	if h.strings.FindString(name.Chars, value.HashString(name.Chars)) == nil {
		t.Error("a string reachable only via a function's constants must survive collection")
	}
}

func TestStressGCRunsOnEveryAllocation(t *testing.T) {
	h := New(WithStressGC())
	roots := &fakeRoots{}
	h.SetRoots(roots)

	h.InternString("x")
	afterX := h.bytesAllocated
	// InternString protects a new string through the collection its own
	// allocation triggers, so the unrooted "x" is swept by the collection
	// that the very next allocation triggers. "y" has the same size as "x",
	// so bytesAllocated should end where it was right after "x".
	h.InternString("y")
	if h.strings.FindString("x", value.HashString("x")) != nil {
		t.Error("expected the unreachable string to be pruned by the next stress collection")
	}
	if h.bytesAllocated != afterX {
		t.Errorf("expected the unreachable string to be swept by the next stress collection, bytesAllocated went from %d to %d", afterX, h.bytesAllocated)
	}
}
