package value

import "strings"

// Set is an unordered collection of unique hashable values, backed by
// the same hash-table mechanics as Dict (spec.md §3.3) with values
// standing in for both key and value.
type Set struct {
	Header
	d *Dict
}

var TypeSet = &Type{Name: "Set", QName: "set", Flags: FlagStruct}

func NewSet(items ...Object) (*Set, error) {
	s := &Set{Header: NewHeader(TypeSet, RefInline), d: NewDict()}
	for _, it := range items {
		if err := s.Add(it); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) Add(v Object) error    { return s.d.Set(v, v) }
func (s *Set) Remove(v Object) (bool, error) { return s.d.Delete(v) }
func (s *Set) Len() int              { return s.d.Len() }

func (s *Set) Contains(v Object) (bool, error) {
	_, ok, err := s.d.Get(v)
	return ok, err
}

func (s *Set) items() []Object { return s.d.Keys() }

// Union returns a new Set containing every element of s and other.
func (s *Set) Union(other *Set) (*Set, error) {
	out, err := NewSet(s.items()...)
	if err != nil {
		return nil, err
	}
	for _, v := range other.items() {
		if err := out.Add(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Intersect returns a new Set of elements present in both s and other.
func (s *Set) Intersect(other *Set) (*Set, error) {
	out, _ := NewSet()
	for _, v := range s.items() {
		ok, err := other.Contains(v)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := out.Add(v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Difference returns the elements of s that are not in other.
func (s *Set) Difference(other *Set) (*Set, error) {
	out, _ := NewSet()
	for _, v := range s.items() {
		ok, err := other.Contains(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := out.Add(v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// SymmetricDifference returns elements in exactly one of s, other.
func (s *Set) SymmetricDifference(other *Set) (*Set, error) {
	a, err := s.Difference(other)
	if err != nil {
		return nil, err
	}
	b, err := other.Difference(s)
	if err != nil {
		return nil, err
	}
	return a.Union(b)
}

func init() {
	TypeSet.Slots = Slots{
		IsTrue: func(o Object) bool { return o.(*Set).Len() > 0 },
		Repr: func(o Object) (string, error) {
			items := o.(*Set).items()
			parts := make([]string, len(items))
			for i, it := range items {
				r, err := Repr(it)
				if err != nil {
					return "", err
				}
				parts[i] = r
			}
			return "{" + strings.Join(parts, ", ") + "}", nil
		},
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			if mode != CmpEQ && mode != CmpNE {
				return false, false, nil
			}
			os, ok := other.(*Set)
			if !ok {
				return mode == CmpNE, true, nil
			}
			ss := self.(*Set)
			eq := ss.Len() == os.Len()
			for _, v := range ss.items() {
				if !eq {
					break
				}
				has, err := os.Contains(v)
				if err != nil {
					return false, true, err
				}
				if !has {
					eq = false
				}
			}
			if mode == CmpNE {
				return !eq, true, nil
			}
			return eq, true, nil
		},
		Iter: func(o Object, reversed bool) (Object, error) {
			items := o.(*Set).items()
			idx := 0
			if reversed {
				idx = len(items) - 1
			}
			return &sliceIterState{Header: NewHeader(typeSliceIter, RefInline), items: items, idx: idx, step: stepFor(reversed)}, nil
		},
		IterNext: genericSliceIterNext,
		Subscript: &SubscriptSlot{
			Length: func(o Object) int { return o.(*Set).Len() },
			Contains: func(o Object, key Object) (bool, error) { return o.(*Set).Contains(key) },
		},
	}
}
