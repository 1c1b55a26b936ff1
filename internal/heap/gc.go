package heap

import "github.com/ochre-lang/ochre/internal/value"

// CollectGarbage runs one full tri-color mark-sweep cycle (spec §4.5):
// mark every root, trace from a gray worklist until it's empty, prune
// dangling entries from the string intern table, then sweep the object
// list and reset the growth heuristic.
func (h *Heap) CollectGarbage() {
	h.markRoots()
	h.traceReferences()
	h.strings.DeleteUnmarked()
	h.sweep()
	h.nextGC = h.bytesAllocated * growFactor
}

func (h *Heap) markRoots() {
	if h.roots != nil {
		h.roots.MarkRoots(h.markValue)
	}
	for _, v := range h.protected {
		h.markValue(v)
	}
	for _, fn := range h.compilerRoots {
		h.markObject(fn)
	}
	if h.initString != nil {
		h.markObject(h.initString)
	}
}

func (h *Heap) markValue(v value.Value) {
	if v.IsObj() {
		h.markObject(v.AsObj())
	}
}

// markObject sets the mark bit and pushes to the gray worklist. The
// worklist itself is an ordinary Go slice (not a raw realloc outside the
// tracked allocator as the original's gray stack is) — in this port there
// is no recursive hazard to avoid, since growing a Go slice never calls
// back into Heap.track.
func (h *Heap) markObject(o value.Obj) {
	if o == nil {
		return
	}
	hdr := value.HeaderOf(o)
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, o)
}

func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

func (h *Heap) blacken(o value.Obj) {
	switch obj := o.(type) {
	case *value.ObjString:
		// no further references
	case *value.ObjFunction:
		if obj.Name != nil {
			h.markObject(obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			h.markValue(c)
		}
	case *value.ObjNative:
		// no further references
	case *value.ObjClosure:
		h.markObject(obj.Function)
		for _, u := range obj.Upvalues {
			if u != nil {
				h.markObject(u)
			}
		}
	case *value.ObjUpvalue:
		h.markValue(obj.Closed)
	case *value.ObjClass:
		h.markObject(obj.Name)
		obj.Methods.Each(func(_ *value.ObjString, v value.Value) { h.markValue(v) })
	case *value.ObjInstance:
		h.markObject(obj.Class)
		obj.Fields.Each(func(_ *value.ObjString, v value.Value) { h.markValue(v) })
	case *value.ObjBoundMethod:
		h.markValue(obj.Receiver)
		h.markObject(obj.Method)
	}
}

// sweep walks the object list, freeing (unlinking) unmarked objects and
// clearing the mark bit on everything that survives (spec §3.6: after GC,
// every reachable object has its mark bit cleared; no reachable object
// is freed).
func (h *Heap) sweep() {
	var prev value.Obj
	cur := h.objects
	for cur != nil {
		hdr := value.HeaderOf(cur)
		if hdr.Marked {
			hdr.Marked = false
			prev = cur
			cur = hdr.Next
			continue
		}
		freed := cur
		cur = hdr.Next
		if prev != nil {
			value.HeaderOf(prev).Next = cur
		} else {
			h.objects = cur
		}
		h.bytesAllocated -= value.HeaderOf(freed).Size
	}
}
