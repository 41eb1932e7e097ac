package value

import (
	"strings"
	"sync"
)

const dictFreelistCap = 1024

// dictEntry is one slot in Dict's backing arena. next chains entries
// hashing to the same bucket; order{Prev,Next} thread the
// insertion-order doubly-linked list that Dict iterates (spec.md
// §4.2's "insertion-ordered" hash map, grounded on original_source's
// hashmap.c).
type dictEntry struct {
	inUse            bool
	hash             uint64
	key, val         Object
	next             int
	orderPrev, orderNext int
}

// Dict is Argon's Map, an insertion-ordered hash table. The bucket
// array grows to cap + cap/2 + 1 once load factor exceeds 0.75,
// matching the original runtime's hashmap_grow.
type Dict struct {
	Header
	mu       sync.RWMutex
	buckets  []int // bucket head index into entries, -1 if empty
	entries  []dictEntry
	free     []int // freelist of entries[] slots, capped at dictFreelistCap
	head     int   // first in insertion order, -1 if empty
	tail     int   // last in insertion order, -1 if empty
	count    int
}

var TypeDict = &Type{Name: "Dict", QName: "dict", Flags: FlagStruct}

func NewDict() *Dict {
	d := &Dict{Header: NewHeader(TypeDict, RefInline), head: -1, tail: -1}
	d.buckets = newBucketArray(8)
	return d
}

func newBucketArray(n int) []int {
	b := make([]int, n)
	for i := range b {
		b[i] = -1
	}
	return b
}

func (d *Dict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

func (d *Dict) bucketFor(hash uint64) int {
	return int(hash % uint64(len(d.buckets)))
}

// Get looks up key, returning (value, true) on hit.
func (d *Dict) Get(key Object) (Object, bool, error) {
	h, err := Hash(key)
	if err != nil {
		return nil, false, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lookupLocked(key, h)
}

func (d *Dict) lookupLocked(key Object, h uint64) (Object, bool, error) {
	if len(d.buckets) == 0 {
		return nil, false, nil
	}
	idx := d.buckets[d.bucketFor(h)]
	for idx != -1 {
		e := &d.entries[idx]
		if e.hash == h {
			eq, err := Eq(e.key, key)
			if err != nil {
				return nil, false, err
			}
			if eq {
				return e.val, true, nil
			}
		}
		idx = e.next
	}
	return nil, false, nil
}

// Set inserts or overwrites key -> val, preserving key's original
// insertion position on overwrite.
func (d *Dict) Set(key, val Object) error {
	h, err := Hash(key)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if v, ok, err := d.lookupLocked(key, h); err != nil {
		return err
	} else if ok {
		_ = v
		idx := d.buckets[d.bucketFor(h)]
		for idx != -1 {
			e := &d.entries[idx]
			if e.hash == h {
				if eq, _ := Eq(e.key, key); eq {
					e.val = val
					return nil
				}
			}
			idx = e.next
		}
	}

	if float64(d.count+1) > 0.75*float64(len(d.buckets)) {
		d.growLocked()
	}

	idx := d.allocLocked()
	e := &d.entries[idx]
	e.inUse, e.hash, e.key, e.val = true, h, key, val

	b := d.bucketFor(h)
	e.next = d.buckets[b]
	d.buckets[b] = idx

	e.orderPrev, e.orderNext = d.tail, -1
	if d.tail != -1 {
		d.entries[d.tail].orderNext = idx
	} else {
		d.head = idx
	}
	d.tail = idx
	d.count++
	return nil
}

func (d *Dict) allocLocked() int {
	if n := len(d.free); n > 0 {
		idx := d.free[n-1]
		d.free = d.free[:n-1]
		return idx
	}
	d.entries = append(d.entries, dictEntry{})
	return len(d.entries) - 1
}

func (d *Dict) growLocked() {
	newCap := len(d.buckets) + len(d.buckets)/2 + 1
	d.buckets = newBucketArray(newCap)
	for i := range d.entries {
		e := &d.entries[i]
		if !e.inUse {
			continue
		}
		b := d.bucketFor(e.hash)
		e.next = d.buckets[b]
		d.buckets[b] = i
	}
}

// Delete removes key, returning true if it was present.
func (d *Dict) Delete(key Object) (bool, error) {
	h, err := Hash(key)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.buckets) == 0 {
		return false, nil
	}
	b := d.bucketFor(h)
	prev := -1
	idx := d.buckets[b]
	for idx != -1 {
		e := &d.entries[idx]
		if e.hash == h {
			eq, err := Eq(e.key, key)
			if err != nil {
				return false, err
			}
			if eq {
				if prev == -1 {
					d.buckets[b] = e.next
				} else {
					d.entries[prev].next = e.next
				}
				if e.orderPrev != -1 {
					d.entries[e.orderPrev].orderNext = e.orderNext
				} else {
					d.head = e.orderNext
				}
				if e.orderNext != -1 {
					d.entries[e.orderNext].orderPrev = e.orderPrev
				} else {
					d.tail = e.orderPrev
				}
				*e = dictEntry{}
				if len(d.free) < dictFreelistCap {
					d.free = append(d.free, idx)
				}
				d.count--
				return true, nil
			}
		}
		prev = idx
		idx = e.next
	}
	return false, nil
}

// Keys returns the dict's keys in insertion order.
func (d *Dict) Keys() []Object {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Object, 0, d.count)
	for i := d.head; i != -1; i = d.entries[i].orderNext {
		out = append(out, d.entries[i].key)
	}
	return out
}

func (d *Dict) pairsSnapshot() ([]Object, []Object) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]Object, 0, d.count)
	vals := make([]Object, 0, d.count)
	for i := d.head; i != -1; i = d.entries[i].orderNext {
		keys = append(keys, d.entries[i].key)
		vals = append(vals, d.entries[i].val)
	}
	return keys, vals
}

type dictIterState struct {
	Header
	keys, vals []Object
	idx        int
}

func (s *dictIterState) IterNext() (Object, error) {
	if s.idx >= len(s.keys) {
		return nil, nil
	}
	k, v := s.keys[s.idx], s.vals[s.idx]
	s.idx++
	return NewTuple(k, v), nil
}

var typeDictIter = &Type{Name: "DictIterator", QName: "dictiterator", Flags: FlagStruct}

func init() {
	TypeDict.Slots = Slots{
		IsTrue: func(o Object) bool { return o.(*Dict).Len() > 0 },
		Repr: func(o Object) (string, error) {
			keys, vals := o.(*Dict).pairsSnapshot()
			parts := make([]string, len(keys))
			for i := range keys {
				kr, err := Repr(keys[i])
				if err != nil {
					return "", err
				}
				vr, err := Repr(vals[i])
				if err != nil {
					return "", err
				}
				parts[i] = kr + ": " + vr
			}
			return "{" + strings.Join(parts, ", ") + "}", nil
		},
		Iter: func(o Object, reversed bool) (Object, error) {
			keys, vals := o.(*Dict).pairsSnapshot()
			if reversed {
				for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
					keys[i], keys[j] = keys[j], keys[i]
					vals[i], vals[j] = vals[j], vals[i]
				}
			}
			return &dictIterState{Header: NewHeader(typeDictIter, RefInline), keys: keys, vals: vals}, nil
		},
		IterNext: func(o Object) (Object, error) { return o.(*dictIterState).IterNext() },
		Subscript: &SubscriptSlot{
			Length: func(o Object) int { return o.(*Dict).Len() },
			GetItem: func(o Object, key Object) (Object, error) {
				v, ok, err := o.(*Dict).Get(key)
				if err != nil {
					return nil, err
				}
				if !ok {
					r, _ := Repr(key)
					return nil, errKeyf("key not found: %s", r)
				}
				return v, nil
			},
			SetItem: func(o Object, key, val Object) error { return o.(*Dict).Set(key, val) },
			Contains: func(o Object, key Object) (bool, error) {
				_, ok, err := o.(*Dict).Get(key)
				return ok, err
			},
		},
	}
}
