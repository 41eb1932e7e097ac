package eval

import (
	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/value"
)

// binaryOp implements spec.md §4.3's "binary dispatch": locate the
// matching slot on left, then right, first absent-but-not-erroring
// result tried on the other side; both absent raises RuntimeError
// naming the operator and both type names.
func binaryOp(f *frame.Frame, op code.OpCode) error {
	r := f.Pop()
	l := f.Pop()

	slot := func(t *value.Type) value.BinaryFn {
		switch op {
		case code.ADD:
			return t.Slots.Add
		case code.SUB:
			return t.Slots.Sub
		case code.MUL:
			return t.Slots.Mul
		case code.DIV:
			return t.Slots.Div
		case code.IDIV:
			return t.Slots.IDiv
		case code.MOD:
			return t.Slots.Mod
		case code.LAND:
			return t.Slots.BitAnd
		case code.LOR:
			return t.Slots.BitOr
		case code.LXOR:
			return t.Slots.BitXor
		case code.SHL:
			return t.Slots.Shl
		case code.SHR:
			return t.Slots.Shr
		default:
			return nil
		}
	}

	if fn := slot(l.Type()); fn != nil {
		res, ok, err := fn(l, r)
		if err != nil {
			return err
		}
		if ok {
			f.Push(res)
			return nil
		}
	}
	if fn := slot(r.Type()); fn != nil {
		res, ok, err := fn(l, r)
		if err != nil {
			return err
		}
		if ok {
			f.Push(res)
			return nil
		}
	}
	return value.NewError(value.KindRuntimeError,
		"unsupported operand types for "+op.String()+": '"+l.Type().Name+"' and '"+r.Type().Name+"'", nil)
}

func unaryOp(f *frame.Frame, op code.OpCode) error {
	v := f.Pop()
	t := v.Type()

	var fn value.UnaryFn
	switch op {
	case code.NEG:
		fn = t.Slots.Neg
	case code.POS:
		fn = t.Slots.Pos
	case code.INV:
		fn = t.Slots.Invert
	case code.INC:
		fn = t.Slots.Inc
	case code.DEC:
		fn = t.Slots.Dec
	}
	if fn == nil {
		return value.NewError(value.KindRuntimeError, "unsupported operand type for "+op.String()+": '"+t.Name+"'", nil)
	}
	res, ok, err := fn(v)
	if err != nil {
		return err
	}
	if !ok {
		return value.NewError(value.KindRuntimeError, "unsupported operand type for "+op.String()+": '"+t.Name+"'", nil)
	}
	f.Push(res)
	return nil
}
