package value

import (
	"strings"
	"sync"
)

// List is a mutable, growable ordered sequence (spec.md §3.3). Mutation
// is guarded by a recursive-in-spirit RWMutex: all public operations
// take the same lock, so a List slot must never call back into
// another List method on the same instance while holding it.
type List struct {
	Header
	mu    sync.RWMutex
	items []Object
}

var TypeList = &Type{Name: "List", QName: "list", Flags: FlagStruct}

func NewList(items ...Object) *List {
	cp := make([]Object, len(items))
	copy(cp, items)
	return &List{Header: NewHeader(TypeList, RefInline), items: cp}
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *List) At(i int) (Object, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, err := indexFromKey(NewInt(int64(i)), len(l.items))
	if err != nil {
		return nil, err
	}
	return l.items[idx], nil
}

func (l *List) Append(items ...Object) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

func (l *List) Insert(i int, v Object) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i > len(l.items) {
		return errOverflowf("index %d out of range for sequence of length %d", i, len(l.items))
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	return nil
}

func (l *List) RemoveAt(i int) (Object, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, err := indexFromKey(NewInt(int64(i)), len(l.items))
	if err != nil {
		return nil, err
	}
	v := l.items[idx]
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return v, nil
}

func (l *List) snapshot() []Object {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]Object, len(l.items))
	copy(cp, l.items)
	return cp
}

func init() {
	TypeList.Slots = Slots{
		IsTrue: func(o Object) bool { return o.(*List).Len() > 0 },
		Repr: func(o Object) (string, error) {
			items := o.(*List).snapshot()
			parts := make([]string, len(items))
			for i, it := range items {
				r, err := Repr(it)
				if err != nil {
					return "", err
				}
				parts[i] = r
			}
			return "[" + strings.Join(parts, ", ") + "]", nil
		},
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			if mode != CmpEQ && mode != CmpNE {
				return false, false, nil
			}
			ol, ok := other.(*List)
			if !ok {
				return mode == CmpNE, true, nil
			}
			a, b := self.(*List).snapshot(), ol.snapshot()
			eq := len(a) == len(b)
			for i := 0; eq && i < len(a); i++ {
				e, err := Eq(a[i], b[i])
				if err != nil {
					return false, true, err
				}
				if !e {
					eq = false
				}
			}
			if mode == CmpNE {
				return !eq, true, nil
			}
			return eq, true, nil
		},
		Iter: func(o Object, reversed bool) (Object, error) {
			items := o.(*List).snapshot()
			idx := 0
			if reversed {
				idx = len(items) - 1
			}
			return &sliceIterState{Header: NewHeader(typeSliceIter, RefInline), items: items, idx: idx, step: stepFor(reversed)}, nil
		},
		IterNext: genericSliceIterNext,
		Add: func(left, right Object) (Object, bool, error) {
			l, ok := left.(*List)
			if !ok {
				return nil, false, nil
			}
			r, ok := right.(*List)
			if !ok {
				return nil, false, nil
			}
			out := append(l.snapshot(), r.snapshot()...)
			return NewList(out...), true, nil
		},
		InplaceAdd: func(left, right Object) (Object, bool, error) {
			l, ok := left.(*List)
			if !ok {
				return nil, false, nil
			}
			r, ok := right.(*List)
			if !ok {
				return nil, false, nil
			}
			l.Append(r.snapshot()...)
			return l, true, nil
		},
		Subscript: &SubscriptSlot{
			Length: func(o Object) int { return o.(*List).Len() },
			GetItem: func(o Object, key Object) (Object, error) {
				l := o.(*List)
				l.mu.RLock()
				defer l.mu.RUnlock()
				i, err := indexFromKey(key, len(l.items))
				if err != nil {
					return nil, err
				}
				return l.items[i], nil
			},
			SetItem: func(o Object, key, val Object) error {
				l := o.(*List)
				l.mu.Lock()
				defer l.mu.Unlock()
				i, err := indexFromKey(key, len(l.items))
				if err != nil {
					return err
				}
				l.items[i] = val
				return nil
			},
			GetSlice: func(o Object, b Bounds) (Object, error) {
				return NewList(sliceByBounds(o.(*List).snapshot(), b)...), nil
			},
			Contains: func(o Object, key Object) (bool, error) {
				for _, it := range o.(*List).snapshot() {
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
