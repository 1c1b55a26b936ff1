// Package table implements the open-addressed, string-keyed hash table
// spec §3.4 uses for string interning, globals, instance fields, and class
// method tables.
package table

import "github.com/ochre-lang/ochre/internal/value"

const maxLoad = 0.75

type entry struct {
	key   *value.ObjString
	value value.Value
	// tombstone marks a deleted slot kept as a probe waypoint. A deleted
	// slot also holds {key=nil, value=true} (spec §3.4), but lookups tell it
	// apart from an empty slot by this flag, not by the value.
	tombstone bool
}

type Table struct {
	count   int // live entries plus tombstones
	entries []entry
}

func New() *Table {
	return &Table{}
}

// Get looks up key, returning its value and whether it was present.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	e := t.find(key)
	if e.key == nil {
		return value.Nil, false
	}
	return e.value, true
}

// Set installs key=v, growing the table first if the load factor would be
// exceeded. Returns true if key was not already present.
func (t *Table) Set(key *value.ObjString, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	e := t.find(key)
	isNewKey := e.key == nil
	if isNewKey && !e.tombstone {
		t.count++
	}
	e.key = key
	e.value = v
	e.tombstone = false
	return isNewKey
}

// Delete installs a tombstone at key's slot so later probes keep working.
func (t *Table) Delete(key *value.ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true)
	e.tombstone = true
	return true
}

// AddAll bulk-copies every live entry of from into t (used by OP_INHERIT
// to copy a superclass's methods into a subclass).
func (t *Table) AddAll(from *Table) {
	for i := range from.entries {
		src := &from.entries[i]
		if src.key != nil {
			t.Set(src.key, src.value)
		}
	}
}

// AddAllFrom satisfies value.MethodTable, taking the interface form so
// ObjClass/ObjInstance (in package value) never need to import this
// package.
func (t *Table) AddAllFrom(other value.MethodTable) {
	o, ok := other.(*Table)
	if !ok {
		return
	}
	t.AddAll(o)
}

func (t *Table) Each(fn func(key *value.ObjString, v value.Value)) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			fn(e.key, e.value)
		}
	}
}

// FindString looks up an interned string by raw bytes and precomputed
// hash without needing an *ObjString key yet — the one operation the
// intern table needs that a plain Get cannot provide.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := &t.entries[index]
		if e.key == nil {
			if !e.tombstone {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & mask
	}
}

// DeleteUnmarked removes every entry whose key is unmarked — the
// string-intern prune spec §4.5 requires to run before object sweep, so no
// dangling ObjString survives in the intern table after its backing memory
// is reclaimed.
func (t *Table) DeleteUnmarked() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.key.Marked {
			e.key = nil
			e.value = value.Bool(true)
			e.tombstone = true
		}
	}
}

func (t *Table) find(key *value.ObjString) *entry {
	mask := uint32(len(t.entries) - 1)
	index := key.Hash & mask
	var tombstone *entry
	for {
		e := &t.entries[index]
		if e.key == nil {
			if !e.tombstone {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) & mask
	}
}

func (t *Table) adjustCapacity(capacity int) {
	newEntries := make([]entry, capacity)
	t.count = 0
	old := t.entries
	t.entries = newEntries
	for i := range old {
		e := &old[i]
		if e.key == nil {
			continue
		}
		dest := t.find(e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
