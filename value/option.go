package value

import "fmt"

// Option is the discriminated some|none wrapper (spec.md §3.3).
type Option struct {
	Header
	some  bool
	value Object
}

var TypeOption = &Type{Name: "Option", QName: "option", Flags: FlagStruct}

func Some(v Object) *Option {
	return &Option{Header: NewHeader(TypeOption, RefInline), some: true, value: v}
}

func None() *Option {
	return &Option{Header: NewHeader(TypeOption, RefInline)}
}

func (o *Option) IsSome() bool { return o.some }
func (o *Option) IsNone() bool { return !o.some }

// Unwrap returns the wrapped value, or an error if o is none.
func (o *Option) Unwrap() (Object, error) {
	if !o.some {
		return nil, errValuef("unwrap called on none")
	}
	return o.value, nil
}

func init() {
	TypeOption.Slots = Slots{
		IsTrue: func(x Object) bool { return x.(*Option).some },
		Repr: func(x Object) (string, error) {
			o := x.(*Option)
			if !o.some {
				return "none", nil
			}
			r, err := Repr(o.value)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("some(%s)", r), nil
		},
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			if mode != CmpEQ && mode != CmpNE {
				return false, false, nil
			}
			oo, ok := other.(*Option)
			if !ok {
				return mode == CmpNE, true, nil
			}
			so := self.(*Option)
			var eq bool
			switch {
			case so.some != oo.some:
				eq = false
			case !so.some:
				eq = true
			default:
				var err error
				eq, err = Eq(so.value, oo.value)
				if err != nil {
					return false, true, err
				}
			}
			if mode == CmpNE {
				return !eq, true, nil
			}
			return eq, true, nil
		},
	}
}
