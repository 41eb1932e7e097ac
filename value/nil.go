package value

// Nil is Argon's unit/absent value. There is exactly one instance,
// NilValue, which is static (never freed).
type Nil struct{ Header }

var TypeNil = &Type{Name: "Nil", QName: "nil", Flags: FlagStruct}

var NilValue = &Nil{Header: NewHeader(TypeNil, RefStatic)}

func init() {
	TypeNil.Slots = Slots{
		IsTrue: func(Object) bool { return false },
		Repr:   func(Object) (string, error) { return "nil", nil },
		Str:    func(Object) (string, error) { return "nil", nil },
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			_, isNil := other.(*Nil)
			switch mode {
			case CmpEQ:
				return isNil, true, nil
			case CmpNE:
				return !isNil, true, nil
			default:
				return false, false, nil
			}
		},
		Hash: func(Object) (uint64, error) { return 0, nil },
	}
}

// Bool is Argon's boolean type. True/False are static singletons.
type Bool struct {
	Header
	Value bool
}

var TypeBool = &Type{Name: "Bool", QName: "bool", Flags: FlagStruct}

var (
	True  = &Bool{Header: NewHeader(TypeBool, RefStatic), Value: true}
	False = &Bool{Header: NewHeader(TypeBool, RefStatic), Value: false}
)

// BoolOf returns the canonical True/False singleton for v.
func BoolOf(v bool) *Bool {
	if v {
		return True
	}
	return False
}

func init() {
	TypeBool.Slots = Slots{
		IsTrue: func(o Object) bool { return o.(*Bool).Value },
		Repr: func(o Object) (string, error) {
			if o.(*Bool).Value {
				return "true", nil
			}
			return "false", nil
		},
		Str: func(o Object) (string, error) { return TypeBool.Slots.Repr(o) },
		Hash: func(o Object) (uint64, error) {
			if o.(*Bool).Value {
				return 1, nil
			}
			return 0, nil
		},
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			ob, ok := other.(*Bool)
			if !ok {
				if mode == CmpEQ {
					return false, true, nil
				}
				if mode == CmpNE {
					return true, true, nil
				}
				return false, false, nil
			}
			a, b := self.(*Bool).Value, ob.Value
			switch mode {
			case CmpEQ:
				return a == b, true, nil
			case CmpNE:
				return a != b, true, nil
			case CmpLT:
				return !a && b, true, nil
			case CmpLE:
				return !a || b, true, nil
			case CmpGT:
				return a && !b, true, nil
			case CmpGE:
				return a || !b, true, nil
			}
			return false, false, nil
		},
	}
}
