package value


// CompareMode selects which relational operator a Compare slot call
// is answering.
type CompareMode uint8

const (
	CmpEQ CompareMode = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

func (m CompareMode) String() string {
	switch m {
	case CmpEQ:
		return "=="
	case CmpNE:
		return "!="
	case CmpLT:
		return "<"
	case CmpLE:
		return "<="
	case CmpGT:
		return ">"
	case CmpGE:
		return ">="
	default:
		return "?"
	}
}

// Reverse returns the operator used when retrying a compare with the
// operands swapped (e.g. LT retried as GT on the right operand).
func (m CompareMode) Reverse() CompareMode {
	switch m {
	case CmpLT:
		return CmpGT
	case CmpLE:
		return CmpGE
	case CmpGT:
		return CmpLT
	case CmpGE:
		return CmpLE
	default:
		return m
	}
}

// UnaryFn implements a unary arithmetic/bitwise slot. ok is false when
// the type does not support this operation.
type UnaryFn func(self Object) (result Object, ok bool, err error)

// BinaryFn implements a binary arithmetic/bitwise slot, dispatched
// left-then-right by the evaluator (see internal/eval).
type BinaryFn func(left, right Object) (result Object, ok bool, err error)

// HashFn computes a 64-bit hash, or reports the value is unhashable.
type HashFn func(self Object) (h uint64, err error)

// CompareFn answers a single CompareMode; ok is false ("absent") when
// the type's compare slot declines to answer for this mode/operand.
type CompareFn func(self, other Object, mode CompareMode) (result bool, ok bool, err error)

// StrFn renders an object as its str() or repr() representation.
type StrFn func(self Object) (string, error)

// IterFn produces an iterator object over self (reversed selects
// backward iteration where supported).
type IterFn func(self Object, reversed bool) (Object, error)

// IterNextFn advances an iterator; (nil, nil) signals exhaustion.
type IterNextFn func(self Object) (Object, error)

// SubscriptSlot implements obj[key] / obj[key] = v / obj[slice] / `in`.
type SubscriptSlot struct {
	Length    func(self Object) int
	GetItem   func(self, key Object) (Object, error)
	SetItem   func(self, key, val Object) error
	GetSlice  func(self Object, b Bounds) (Object, error)
	SetSlice  func(self Object, b Bounds, val Object) error
	Contains  func(self, key Object) (bool, error)
}

// ObjectSlot describes instance-level attribute behavior: the offset
// of the per-instance namespace within the object (< 0 if none), and
// overrides for attribute get/set (used by the Type metatype itself
// to implement `T::name` / `T.name` on type objects).
type ObjectSlot struct {
	// GetNamespace returns the per-instance namespace of self, or nil
	// if this type stores no instance namespace (the Go rendering of
	// spec.md §3.2's "namespace offset within the object" — an offset
	// of -1 becomes a nil GetNamespace).
	GetNamespace func(self Object) *Namespace
	Methods      map[string]Object
	GetAttr      func(self Object, name string, fromStatic bool) (Object, error)
	SetAttr      func(self Object, name string, val Object, fromStatic bool) error
}

// Slots holds every optional protocol a type may implement. A nil
// field means "type does not support this operation."
type Slots struct {
	New      func(meta *Type, args []Object) (Object, error)
	Del      func(self Object)
	Trace    func(self Object, visit func(Object))
	Hash     HashFn
	IsTrue   func(self Object) bool
	Compare  CompareFn
	Repr     StrFn
	Str      StrFn
	Iter     IterFn
	IterNext IterNextFn

	Add, Sub, Mul, Div, IDiv, Mod           BinaryFn
	BitAnd, BitOr, BitXor, Shl, Shr         BinaryFn
	InplaceAdd, InplaceSub                  BinaryFn
	Pos, Neg, Invert, Inc, Dec              UnaryFn

	Buffer func(self Object, writable bool) (*Buffer, error)

	Object    *ObjectSlot
	Subscript *SubscriptSlot
}

// TypeFlags carries the is-trait/is-struct/weakable/initialized bits.
type TypeFlags uint8

const (
	FlagTrait TypeFlags = 1 << iota
	FlagStruct
	FlagWeakable
	FlagInitialized
)

func (f TypeFlags) Has(bit TypeFlags) bool { return f&bit != 0 }

// Type is the metatype-carrying descriptor shared by every value of a
// given kind. Traits and structs are themselves Objects whose Type()
// is the builtin "Type" type.
type Type struct {
	Header

	Name  string
	QName string
	Doc   string
	Flags TypeFlags

	// MRO excludes the type itself; see computeMRO.
	MRO []*Type

	// Namespace is the type's own tp_map: declared methods and
	// const/static attributes, searched after the instance namespace
	// on a dot-access miss, and exclusively for scope ("::") access.
	Namespace *Namespace

	Slots Slots
}

var _ Object = (*Type)(nil)

// TypeNew constructs a new trait/struct type value, per spec.md §3.2:
// (i) computes the MRO by C3 linearization over bases, (ii) copies
// meta's slot table as the default behavior for values of this new
// type (a struct instance reprs/hashes/compares the way its metatype
// says to, until the struct overrides a slot itself), (iii) installs
// the namespace, (iv) flags the type initialized. bases must all be
// traits (spec.md §4.1 rule 1).
func TypeNew(meta *Type, name, qname, doc string, ns *Namespace, bases []*Type) (*Type, error) {
	for _, b := range bases {
		if !b.Flags.Has(FlagTrait) {
			return nil, newKindError(KindTypeError, "you can only inherit from traits and '%s' is not", b.Name)
		}
	}

	mro, err := computeMRO(bases)
	if err != nil {
		return nil, err
	}

	t := &Type{
		Header:    NewHeader(meta, RefInline),
		Name:      name,
		QName:     qname,
		Doc:       doc,
		Namespace: ns,
		MRO:       mro,
	}
	if meta != nil {
		t.Slots = meta.Slots
	}
	t.Flags |= FlagInitialized
	return t, nil
}

// NewTrait is TypeNew's counterpart for declaring a trait (rather than
// a struct): identical mechanics, FlagTrait set so the new type can
// itself be inherited from.
func NewTrait(meta *Type, name, qname, doc string, ns *Namespace, bases []*Type) (*Type, error) {
	t, err := TypeNew(meta, name, qname, doc, ns, bases)
	if err != nil {
		return nil, err
	}
	t.Flags |= FlagTrait
	return t, nil
}

// computeMRO implements the C3 linearization described in spec.md
// §4.1, following the exact traversal (restart the scan at the first
// base after every successful pick) used by the original Argon
// runtime's CalculateMRO (original_source/src/vm/datatype/arobject.cpp)
// so that "inconsistent MRO" diagnostics enumerate candidates in the
// same order.
func computeMRO(bases []*Type) ([]*Type, error) {
	// lists[i] = [base_i] ++ base_i.MRO, consumed destructively.
	lists := make([][]*Type, 0, len(bases)+1)
	for _, b := range bases {
		l := make([]*Type, 0, len(b.MRO)+1)
		l = append(l, b)
		l = append(l, b.MRO...)
		lists = append(lists, l)
	}
	if len(bases) > 0 {
		tail := make([]*Type, len(bases))
		copy(tail, bases)
		lists = append(lists, tail)
	}

	var out []*Type
	idx := 0
	for {
		// Skip past exhausted lists.
		for idx < len(lists) && len(lists[idx]) == 0 {
			idx++
		}
		if idx >= len(lists) {
			break
		}

		head := lists[idx][0]
		foundInTail := false
		for i, l := range lists {
			if i == idx {
				continue
			}
			for j := 1; j < len(l); j++ {
				if l[j] == head {
					foundInTail = true
					break
				}
			}
			if foundInTail {
				break
			}
		}

		if foundInTail {
			idx++
			continue
		}

		for i := range lists {
			if len(lists[i]) > 0 && lists[i][0] == head {
				lists[i] = lists[i][1:]
			}
		}

		out = append(out, head)
		idx = 0

		done := true
		for _, l := range lists {
			if len(l) > 0 {
				done = false
				break
			}
		}
		if done {
			break
		}
	}

	for _, l := range lists {
		if len(l) > 0 {
			return nil, newKindError(KindRuntimeError, "inconsistent method resolution order for bases %v", bases)
		}
	}

	return out, nil
}

// IsInstance reports whether t is T itself or appears in T's MRO.
func IsInstance(t, candidate *Type) bool {
	if t == candidate {
		return true
	}
	for _, a := range t.MRO {
		if a == candidate {
			return true
		}
	}
	return false
}
