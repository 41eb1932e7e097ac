package value

import "fmt"

// Hash returns x's 64-bit hash, per spec.md §4.1: raises UnhashableError
// if the type lacks a hash slot, or if the slot itself reports the
// instance is (currently) unhashable, e.g. unfrozen bytes.
func Hash(x Object) (uint64, error) {
	t := x.Type()
	if t.Slots.Hash == nil {
		return 0, errUnhashablef("unhashable type: '%s'", t.Name)
	}
	return t.Slots.Hash(x)
}

// Eq implements spec.md §4.1's equality dispatch: try left's compare
// with EQ, on absent fall back to right's compare with EQ, ultimately
// false. Eq never raises for a type mismatch.
func Eq(a, b Object) (bool, error) {
	if a == b {
		return true, nil
	}
	if c := a.Type().Slots.Compare; c != nil {
		if res, ok, err := c(a, b, CmpEQ); ok {
			return res, err
		}
	}
	if c := b.Type().Slots.Compare; c != nil {
		if res, ok, err := c(b, a, CmpEQ); ok {
			return res, err
		}
	}
	return false, nil
}

// Compare implements spec.md §4.1's ordered-compare dispatch (LT, LE,
// GT, GE): try left, then right with the reversed operator; if both
// sides are absent, raise NotImplementedError naming the operator and
// both type names.
func Compare(a, b Object, mode CompareMode) (bool, error) {
	if mode == CmpEQ || mode == CmpNE {
		eq, err := Eq(a, b)
		if err != nil {
			return false, err
		}
		if mode == CmpNE {
			return !eq, nil
		}
		return eq, nil
	}

	if c := a.Type().Slots.Compare; c != nil {
		if res, ok, err := c(a, b, mode); ok {
			return res, err
		}
	}
	if c := b.Type().Slots.Compare; c != nil {
		if res, ok, err := c(b, a, mode.Reverse()); ok {
			return res, err
		}
	}
	return false, errNotImplementedf("unsupported operand types for %s: '%s' and '%s'",
		mode, a.Type().Name, b.Type().Name)
}

// IsTrue evaluates an object's truthiness for conditional jumps.
func IsTrue(x Object) bool {
	t := x.Type()
	if t.Slots.IsTrue == nil {
		return true
	}
	return t.Slots.IsTrue(x)
}

// Repr renders x per spec.md §4.1: falls back to a default
// `<object <typename> @<addr>>` form when the type has neither a
// Repr nor a Str slot.
func Repr(x Object) (string, error) {
	t := x.Type()
	if t.Slots.Repr != nil {
		return t.Slots.Repr(x)
	}
	if t.Slots.Str != nil {
		return t.Slots.Str(x)
	}
	return fmt.Sprintf("<object %s @%p>", t.Name, x), nil
}

// Str renders x's str() form, falling back to Repr when no Str slot
// is declared (spec.md §4.1).
func Str(x Object) (string, error) {
	t := x.Type()
	if t.Slots.Str != nil {
		return t.Slots.Str(x)
	}
	return Repr(x)
}

// Iterator is the protocol object returned by Iter: IterNext yields
// the next element or (nil,nil) to mark exhaustion.
type Iterator interface {
	Object
	IterNext() (Object, error)
}

// iterAdapter wraps a type's Iter/IterNext slots into an Iterator.
type iterAdapter struct {
	Header
	target Object
	next   IterNextFn
}

var typeIterAdapter = &Type{Name: "Iterator", QName: "iterator", Flags: FlagStruct}

func (it *iterAdapter) IterNext() (Object, error) { return it.next(it.target) }

// Iter returns an iterator over obj, raising TypeError if obj's type
// does not implement the iterator protocol (spec.md §4.1).
func Iter(obj Object, reversed bool) (Iterator, error) {
	t := obj.Type()
	if t.Slots.Iter == nil || t.Slots.IterNext == nil {
		return nil, errTypef("'%s' object is not iterable", t.Name)
	}
	state, err := t.Slots.Iter(obj, reversed)
	if err != nil {
		return nil, err
	}
	if adapter, ok := state.(Iterator); ok {
		return adapter, nil
	}
	return &iterAdapter{Header: NewHeader(typeIterAdapter, RefInline), target: state, next: t.Slots.IterNext}, nil
}
