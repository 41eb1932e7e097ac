package value

import "strings"

// Tuple is a fixed-length ordered sequence, hashable when every
// element is hashable (spec.md §3.3).
type Tuple struct {
	Header
	items   []Object
	hash    uint64
	hashSet bool
}

var TypeTuple = &Type{Name: "Tuple", QName: "tuple", Flags: FlagStruct}

func NewTuple(items ...Object) *Tuple {
	cp := make([]Object, len(items))
	copy(cp, items)
	return &Tuple{Header: NewHeader(TypeTuple, RefInline), items: cp}
}

func (t *Tuple) Len() int         { return len(t.items) }
func (t *Tuple) At(i int) Object  { return t.items[i] }
func (t *Tuple) Items() []Object  { return t.items }

func init() {
	TypeTuple.Slots = Slots{
		Hash: func(o Object) (uint64, error) {
			t := o.(*Tuple)
			if t.hashSet {
				return t.hash, nil
			}
			var h uint64 = 7
			for _, it := range t.items {
				ih, err := Hash(it)
				if err != nil {
					return 0, err
				}
				h = h*31 + ih
			}
			t.hash, t.hashSet = h, true
			return h, nil
		},
		IsTrue: func(o Object) bool { return len(o.(*Tuple).items) > 0 },
		Repr: func(o Object) (string, error) {
			t := o.(*Tuple)
			parts := make([]string, len(t.items))
			for i, it := range t.items {
				r, err := Repr(it)
				if err != nil {
					return "", err
				}
				parts[i] = r
			}
			suffix := ""
			if len(parts) == 1 {
				suffix = ","
			}
			return "(" + strings.Join(parts, ", ") + suffix + ")", nil
		},
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			ot, ok := other.(*Tuple)
			if !ok || mode != CmpEQ && mode != CmpNE {
				if mode == CmpEQ {
					return false, true, nil
				}
				if mode == CmpNE {
					return true, true, nil
				}
				return false, false, nil
			}
			st := self.(*Tuple)
			eq := len(st.items) == len(ot.items)
			if eq {
				for i := range st.items {
					e, err := Eq(st.items[i], ot.items[i])
					if err != nil {
						return false, true, err
					}
					if !e {
						eq = false
						break
					}
				}
			}
			if mode == CmpNE {
				return !eq, true, nil
			}
			return eq, true, nil
		},
		Iter: func(o Object, reversed bool) (Object, error) {
			t := o.(*Tuple)
			idx := 0
			if reversed {
				idx = len(t.items) - 1
			}
			return &sliceIterState{Header: NewHeader(typeSliceIter, RefInline), items: t.items, idx: idx, step: stepFor(reversed)}, nil
		},
		IterNext: genericSliceIterNext,
		Subscript: &SubscriptSlot{
			Length: func(o Object) int { return len(o.(*Tuple).items) },
			GetItem: func(o Object, key Object) (Object, error) {
				t := o.(*Tuple)
				i, err := indexFromKey(key, len(t.items))
				if err != nil {
					return nil, err
				}
				return t.items[i], nil
			},
			GetSlice: func(o Object, b Bounds) (Object, error) {
				t := o.(*Tuple)
				return NewTuple(sliceByBounds(t.items, b)...), nil
			},
			Contains: func(o Object, key Object) (bool, error) {
				for _, it := range o.(*Tuple).items {
					eq, err := Eq(it, key)
					if err != nil {
						return false, err
					}
					if eq {
						return true, nil
					}
				}
				return false, nil
			},
		},
	}
}

func stepFor(reversed bool) int {
	if reversed {
		return -1
	}
	return 1
}

type sliceIterState struct {
	Header
	items []Object
	idx   int
	step  int
}

var typeSliceIter = &Type{Name: "SliceIterator", QName: "sliceiterator", Flags: FlagStruct}

func genericSliceIterNext(o Object) (Object, error) {
	st := o.(*sliceIterState)
	if st.idx < 0 || st.idx >= len(st.items) {
		return nil, nil
	}
	v := st.items[st.idx]
	st.idx += st.step
	return v, nil
}

func init() {
	typeSliceIter.Slots = Slots{}
}

// indexFromKey normalizes an Int subscript key against seqLen,
// supporting negative indices (spec.md §8 boundary behaviors).
func indexFromKey(key Object, seqLen int) (int, error) {
	idx, ok := key.(*Int)
	if !ok {
		return 0, errTypef("indices must be int, not %s", key.Type().Name)
	}
	i := int(idx.Value)
	if i < 0 {
		i += seqLen
	}
	if i < 0 || i >= seqLen {
		return 0, errOverflowf("index %d out of range for sequence of length %d", idx.Value, seqLen)
	}
	return i, nil
}

func sliceByBounds(items []Object, b Bounds) []Object {
	start, stop, step, length := b.Normalize(len(items))
	out := make([]Object, 0, length)
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, items[i])
		}
	}
	return out
}
