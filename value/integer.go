package value

import (
	"fmt"
	"math"
)

// Int is Argon's 64-bit signed integer.
type Int struct {
	Header
	Value int64
}

// UInt is Argon's 64-bit unsigned integer. Int and UInt share the
// same layout (spec.md §3.3) but are distinct types; arithmetic
// between them is not implicitly coerced.
type UInt struct {
	Header
	Value uint64
}

var (
	TypeInt  = &Type{Name: "Int", QName: "int", Flags: FlagStruct}
	TypeUInt = &Type{Name: "UInt", QName: "uint", Flags: FlagStruct}
)

func NewInt(v int64) *Int   { return &Int{Header: NewHeader(TypeInt, RefInline), Value: v} }
func NewUInt(v uint64) *UInt { return &UInt{Header: NewHeader(TypeUInt, RefInline), Value: v} }

func intBinary(fn func(a, b int64) (int64, error)) BinaryFn {
	return func(l, r Object) (Object, bool, error) {
		li, lok := l.(*Int)
		ri, rok := r.(*Int)
		if !lok || !rok {
			return nil, false, nil
		}
		v, err := fn(li.Value, ri.Value)
		if err != nil {
			return nil, true, err
		}
		return NewInt(v), true, nil
	}
}

func uintBinary(fn func(a, b uint64) (uint64, error)) BinaryFn {
	return func(l, r Object) (Object, bool, error) {
		lu, lok := l.(*UInt)
		ru, rok := r.(*UInt)
		if !lok || !rok {
			return nil, false, nil
		}
		v, err := fn(lu.Value, ru.Value)
		if err != nil {
			return nil, true, err
		}
		return NewUInt(v), true, nil
	}
}

var errDivByZero = newKindError(KindDivByZeroError, "division by zero")

func init() {
	TypeInt.Slots = Slots{
		Hash:   func(o Object) (uint64, error) { return uint64(o.(*Int).Value), nil },
		IsTrue: func(o Object) bool { return o.(*Int).Value != 0 },
		Repr:   func(o Object) (string, error) { return fmt.Sprintf("%d", o.(*Int).Value), nil },
		Str:    func(o Object) (string, error) { return fmt.Sprintf("%d", o.(*Int).Value), nil },
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			oi, ok := other.(*Int)
			if !ok {
				if mode == CmpEQ {
					return false, true, nil
				}
				if mode == CmpNE {
					return true, true, nil
				}
				return false, false, nil
			}
			a, b := self.(*Int).Value, oi.Value
			return compareOrdered(a, b, mode), true, nil
		},
		Add: intBinary(func(a, b int64) (int64, error) {
			if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
				return 0, errOverflowf("integer overflow in addition")
			}
			return a + b, nil
		}),
		Sub: intBinary(func(a, b int64) (int64, error) { return a - b, nil }),
		Mul: intBinary(func(a, b int64) (int64, error) { return a * b, nil }),
		Div: intBinary(func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, errDivByZero
			}
			return a / b, nil
		}),
		IDiv: intBinary(func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, errDivByZero
			}
			q := a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				q--
			}
			return q, nil
		}),
		Mod: intBinary(func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, errDivByZero
			}
			m := a % b
			if m != 0 && ((m < 0) != (b < 0)) {
				m += b
			}
			return m, nil
		}),
		BitAnd: intBinary(func(a, b int64) (int64, error) { return a & b, nil }),
		BitOr:  intBinary(func(a, b int64) (int64, error) { return a | b, nil }),
		BitXor: intBinary(func(a, b int64) (int64, error) { return a ^ b, nil }),
		Shl:    intBinary(func(a, b int64) (int64, error) { return a << uint(b), nil }),
		Shr:    intBinary(func(a, b int64) (int64, error) { return a >> uint(b), nil }),
		Pos:    func(o Object) (Object, bool, error) { return o, true, nil },
		Neg:    func(o Object) (Object, bool, error) { return NewInt(-o.(*Int).Value), true, nil },
		Invert: func(o Object) (Object, bool, error) { return NewInt(^o.(*Int).Value), true, nil },
		Inc:    func(o Object) (Object, bool, error) { return NewInt(o.(*Int).Value + 1), true, nil },
		Dec:    func(o Object) (Object, bool, error) { return NewInt(o.(*Int).Value - 1), true, nil },
	}

	TypeUInt.Slots = Slots{
		Hash:   func(o Object) (uint64, error) { return o.(*UInt).Value, nil },
		IsTrue: func(o Object) bool { return o.(*UInt).Value != 0 },
		Repr:   func(o Object) (string, error) { return fmt.Sprintf("%d", o.(*UInt).Value), nil },
		Str:    func(o Object) (string, error) { return fmt.Sprintf("%d", o.(*UInt).Value), nil },
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			ou, ok := other.(*UInt)
			if !ok {
				if mode == CmpEQ {
					return false, true, nil
				}
				if mode == CmpNE {
					return true, true, nil
				}
				return false, false, nil
			}
			return compareOrdered(self.(*UInt).Value, ou.Value, mode), true, nil
		},
		Add: uintBinary(func(a, b uint64) (uint64, error) {
			if a > math.MaxUint64-b {
				return 0, errOverflowf("integer overflow in addition")
			}
			return a + b, nil
		}),
		Sub: uintBinary(func(a, b uint64) (uint64, error) {
			if b > a {
				return 0, errOverflowf("unsigned integer underflow in subtraction")
			}
			return a - b, nil
		}),
		Mul: uintBinary(func(a, b uint64) (uint64, error) {
			if a != 0 && b > math.MaxUint64/a {
				return 0, errOverflowf("integer overflow in multiplication")
			}
			return a * b, nil
		}),
		Div: uintBinary(func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, errDivByZero
			}
			return a / b, nil
		}),
		IDiv: uintBinary(func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, errDivByZero
			}
			return a / b, nil
		}),
		Mod: uintBinary(func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, errDivByZero
			}
			return a % b, nil
		}),
		BitAnd: uintBinary(func(a, b uint64) (uint64, error) { return a & b, nil }),
		BitOr:  uintBinary(func(a, b uint64) (uint64, error) { return a | b, nil }),
		BitXor: uintBinary(func(a, b uint64) (uint64, error) { return a ^ b, nil }),
		Shl:    uintBinary(func(a, b uint64) (uint64, error) { return a << b, nil }),
		Shr:    uintBinary(func(a, b uint64) (uint64, error) { return a >> b, nil }),
		Pos:    func(o Object) (Object, bool, error) { return o, true, nil },
		Invert: func(o Object) (Object, bool, error) { return NewUInt(^o.(*UInt).Value), true, nil },
		Inc:    func(o Object) (Object, bool, error) { return NewUInt(o.(*UInt).Value + 1), true, nil },
		Dec: func(o Object) (Object, bool, error) {
			u := o.(*UInt)
			if u.Value == 0 {
				return nil, true, errOverflowf("unsigned integer underflow in decrement")
			}
			return NewUInt(u.Value - 1), true, nil
		},
	}
}

func compareOrdered[T int64 | uint64](a, b T, mode CompareMode) bool {
	switch mode {
	case CmpEQ:
		return a == b
	case CmpNE:
		return a != b
	case CmpLT:
		return a < b
	case CmpLE:
		return a <= b
	case CmpGT:
		return a > b
	case CmpGE:
		return a >= b
	}
	return false
}
