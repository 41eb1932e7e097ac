// Package eval implements the bytecode evaluator loop: fetch-decode-
// dispatch over the opcode set in package code, the binary-operator
// dispatch protocol, and panic/unwind/defer handling (spec.md §4.3,
// §4.4).
package eval

import (
	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/internal/function"
	"github.com/argonlang/argon-rt/internal/rtlog"
	"github.com/argonlang/argon-rt/internal/trap"
	"github.com/argonlang/argon-rt/value"
)

// Outcome is how a Run call ended.
type Outcome int

const (
	Returned Outcome = iota
	Yielded
	Suspended
	Panicked
	// called is an internal-only signal: runFrame pushed a new callee
	// frame and is handing control back to the single driving loop in
	// drive, rather than recursing into it. It never escapes Run.
	called
)

// Fiber is the minimal surface eval needs from a fiber, kept as an
// interface so this package does not import package fiber (which
// would own the scheduler-facing parts eval does not need).
type Fiber interface {
	PushFrame(*frame.Frame)
	PopFrame() *frame.Frame
	CurrentFrame() *frame.Frame
	FiberID() uintptr
	PanicStack() *trap.Stack
}

// Run drives the evaluator starting at fb's current frame until the
// frame stack bottoms out (Returned/Panicked) or the fiber yields or
// suspends. It returns the final return value (for Returned) or the
// active panic payload (for Panicked).
func Run(fb Fiber) (Outcome, value.Object, error) {
	return drive(fb, nil)
}

// drive is the evaluator's single frame-stack-driving loop. It runs
// fb's current frame and, as CALL pushes new ones, keeps driving from
// the new top — it never recurses into itself to do so, since Go's
// call stack has no notion of "the bytecode CALL I was decoding is
// done" the way the explicit fiber frame stack does (a nested call
// here would leave a suspended runFrame invocation downstream holding
// a stale IP, see internal/eval/call.go's dispatchCall).
//
// stopAt bounds how far down the frame stack drive is allowed to
// return through: once fb.CurrentFrame() == stopAt, drive stops
// without touching stopAt itself. unwind uses this to run a frame's
// deferred calls (each potentially a full bytecode call in its own
// right) without reentering that frame's own unwinding state. Run
// passes stopAt == nil, meaning "drive until the whole fiber stack
// bottoms out".
func drive(fb Fiber, stopAt *frame.Frame) (Outcome, value.Object, error) {
	for {
		f := fb.CurrentFrame()
		if f == nil || f == stopAt {
			return Returned, value.NilValue, nil
		}

		outcome, result, err := runFrame(fb, f)
		switch outcome {
		case called:
			continue
		case Suspended:
			return outcome, result, err
		case Yielded:
			if f.Gen == nil {
				return outcome, result, err
			}
			fb.PopFrame()
			f.Gen.GenYielded()
			caller := fb.CurrentFrame()
			if caller == stopAt {
				return Yielded, result, nil
			}
			if caller == nil {
				return Yielded, result, nil
			}
			caller.Push(result)
		case Panicked:
			if !unwind(fb, f, err) {
				return Panicked, nil, err
			}
		default: // Returned
			if f.Gen != nil {
				f.Gen.GenExhausted()
			}
			fb.PopFrame()
			caller := fb.CurrentFrame()
			if caller == stopAt || caller == nil {
				return Returned, result, nil
			}
			caller.Push(result)
		}
	}
}

// runFrame executes f's instructions until it returns, yields,
// suspends, or panics. A Go panic raised by frame stack/bounds
// invariants (spec.md §4.3 "frame invariants") is recovered here and
// converted into an Argon RuntimeError panic, never escaping to the
// host goroutine.
func runFrame(fb Fiber, f *frame.Frame) (outcome Outcome, result value.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, result, err = Panicked, nil, value.NewError(value.KindRuntimeError,
				internalPanicMessage(r), nil)
		}
	}()

	c := f.Code
	for f.IP < len(c.Instr) {
		op := code.OpCode(c.Instr[f.IP])
		switch op {
		case code.NOP:
			f.IP++

		case code.POP:
			f.Pop()
			f.IP++

		case code.DUP:
			n := int(code.DecodeI16(c.Instr, f.IP))
			f.Dup(n)
			f.IP += op.Len()

		case code.LSTATIC:
			i := int(code.DecodeI16(c.Instr, f.IP))
			f.Push(c.Statics[i])
			f.IP += op.Len()

		case code.LDLC:
			i := int(code.DecodeI16(c.Instr, f.IP))
			f.Push(f.Locals[i])
			f.IP += op.Len()

		case code.STLC:
			i := int(code.DecodeI16(c.Instr, f.IP))
			f.Locals[i] = f.Pop()
			f.IP += op.Len()

		case code.LDENC:
			i := int(code.DecodeI16(c.Instr, f.IP))
			f.Push(f.Enclosed[i])
			f.IP += op.Len()

		case code.STENC:
			i := int(code.DecodeI16(c.Instr, f.IP))
			f.Enclosed[i] = f.Pop()
			f.IP += op.Len()

		case code.NGV:
			i, flags := code.DecodeI32Flag(c.Instr, f.IP)
			v := f.Pop()
			f.Globals.Declare(c.Names[i], v, value.AttrFlags(flags))
			f.IP += op.Len()

		case code.LDGV:
			i := int(code.DecodeI16(c.Instr, f.IP))
			v, _, ok := f.Globals.Lookup(c.Names[i])
			if !ok {
				return Panicked, nil, value.NewError(value.KindUndeclaredError, "undeclared global '"+c.Names[i]+"'", nil)
			}
			f.Push(v)
			f.IP += op.Len()

		case code.STGV:
			i := int(code.DecodeI16(c.Instr, f.IP))
			v := f.Pop()
			if !f.Globals.Set(c.Names[i], v) {
				return Panicked, nil, value.NewError(value.KindUnassignableError, "cannot assign '"+c.Names[i]+"'", nil)
			}
			f.IP += op.Len()

		case code.JMP:
			f.IP = int(code.DecodeI32(c.Instr, f.IP))

		case code.JT:
			off := int(code.DecodeI32(c.Instr, f.IP))
			if value.IsTrue(f.Pop()) {
				f.IP = off
			} else {
				f.IP += op.Len()
			}

		case code.JF:
			off := int(code.DecodeI32(c.Instr, f.IP))
			if !value.IsTrue(f.Pop()) {
				f.IP = off
			} else {
				f.IP += op.Len()
			}

		case code.JTOP:
			off := int(code.DecodeI32(c.Instr, f.IP))
			if value.IsTrue(f.Peek()) {
				f.IP = off
			} else {
				f.Pop()
				f.IP += op.Len()
			}

		case code.JFOP:
			off := int(code.DecodeI32(c.Instr, f.IP))
			if !value.IsTrue(f.Peek()) {
				f.IP = off
			} else {
				f.Pop()
				f.IP += op.Len()
			}

		case code.JNIL:
			off := int(code.DecodeI32(c.Instr, f.IP))
			if _, isNil := f.Peek().(*value.Nil); isNil {
				f.IP = off
			} else {
				f.IP += op.Len()
			}

		case code.NOT:
			f.Push(value.BoolOf(!value.IsTrue(f.Pop())))
			f.IP++

		case code.NEG, code.POS, code.INV, code.INC, code.DEC:
			if perr := unaryOp(f, op); perr != nil {
				return Panicked, nil, perr
			}
			f.IP++

		case code.ADD, code.SUB, code.MUL, code.DIV, code.IDIV, code.MOD,
			code.LAND, code.LOR, code.LXOR, code.SHL, code.SHR:
			if perr := binaryOp(f, op); perr != nil {
				return Panicked, nil, perr
			}
			f.IP++

		case code.CMP, code.EQST:
			mode := value.CompareMode(code.DecodeI16(c.Instr, f.IP))
			r := f.Pop()
			l := f.Pop()
			if op == code.EQST && l.Type() != r.Type() {
				f.Push(value.BoolOf(mode == value.CmpNE))
			} else {
				res, err := value.Compare(l, r, mode)
				if err != nil {
					return Panicked, nil, err
				}
				f.Push(value.BoolOf(res))
			}
			f.IP += op.Len()

		case code.MKLT:
			n := int(code.DecodeI16(c.Instr, f.IP))
			f.Push(value.NewList(popN(f, n)...))
			f.IP += op.Len()

		case code.MKTP:
			n := int(code.DecodeI16(c.Instr, f.IP))
			f.Push(value.NewTuple(popN(f, n)...))
			f.IP += op.Len()

		case code.MKDT:
			n2 := int(code.DecodeI16(c.Instr, f.IP))
			items := popN(f, n2)
			d := value.NewDict()
			for i := 0; i < len(items); i += 2 {
				if err := d.Set(items[i], items[i+1]); err != nil {
					return Panicked, nil, err
				}
			}
			f.Push(d)
			f.IP += op.Len()

		case code.MKSET:
			n := int(code.DecodeI16(c.Instr, f.IP))
			s, err := value.NewSet(popN(f, n)...)
			if err != nil {
				return Panicked, nil, err
			}
			f.Push(s)
			f.IP += op.Len()

		case code.MKFN:
			count, flags := code.DecodeI32Flag(c.Instr, f.IP)
			var enclosed []value.Object
			if function.Flags(flags).Has(function.Closure) {
				tup := f.Pop().(*value.Tuple)
				enclosed = tup.Items()
			}
			fnCode := f.Pop().(*code.Code)
			_ = count
			fn := function.New(fnCode.Name, fnCode.Name, fnCode.Doc, fnCode, nil, fnCode.Arity, function.Flags(flags), f.Globals, enclosed)
			f.Push(fn)
			f.IP += op.Len()

		case code.LDATTR:
			i := int(code.DecodeI16(c.Instr, f.IP))
			obj := f.Pop()
			v, err := value.GetAttrDot(obj, c.Names[i], currentAccessor(f))
			if err != nil {
				return Panicked, nil, err
			}
			f.Push(v)
			f.IP += op.Len()

		case code.STATTR:
			i := int(code.DecodeI16(c.Instr, f.IP))
			val := f.Pop()
			obj := f.Pop()
			if err := value.SetAttrDot(obj, c.Names[i], val, currentAccessor(f)); err != nil {
				return Panicked, nil, err
			}
			f.IP += op.Len()

		case code.LDSCOPE:
			i := int(code.DecodeI16(c.Instr, f.IP))
			obj := f.Pop()
			t, ok := obj.(*value.Type)
			if !ok {
				return Panicked, nil, value.NewError(value.KindTypeError, "scope access on non-type", nil)
			}
			v, err := value.GetAttrScope(t, c.Names[i])
			if err != nil {
				return Panicked, nil, err
			}
			f.Push(v)
			f.IP += op.Len()

		case code.SUBSCR:
			key := f.Pop()
			obj := f.Pop()
			sub := obj.Type().Slots.Subscript
			if sub == nil || sub.GetItem == nil {
				return Panicked, nil, value.NewError(value.KindTypeError, "'"+obj.Type().Name+"' is not subscriptable", nil)
			}
			v, err := sub.GetItem(obj, key)
			if err != nil {
				return Panicked, nil, err
			}
			f.Push(v)
			f.IP++

		case code.STSUBSCR:
			val := f.Pop()
			key := f.Pop()
			obj := f.Pop()
			sub := obj.Type().Slots.Subscript
			if sub == nil || sub.SetItem == nil {
				return Panicked, nil, value.NewError(value.KindTypeError, "'"+obj.Type().Name+"' does not support item assignment", nil)
			}
			if err := sub.SetItem(obj, key, val); err != nil {
				return Panicked, nil, err
			}
			f.IP++

		case code.CALL:
			argc, flags := code.DecodeI32Flag(c.Instr, f.IP)
			nextIP := f.IP + op.Len()
			outcome, res, perr := dispatchCall(fb, f, int(argc), code.CallFlag(flags))
			if perr != nil {
				return Panicked, nil, perr
			}
			if outcome == called {
				// The callee frame is now fb's current frame; f.IP is
				// advanced past CALL so when drive's loop eventually
				// pops back to f, caller.Push(result) lands here with
				// f ready to execute whatever follows CALL.
				f.IP = nextIP
				return called, nil, nil
			}
			f.Push(res)
			f.IP = nextIP

		case code.RET:
			return Returned, f.Pop(), nil

		case code.YIELD:
			f.Return = f.Pop()
			f.IP++
			return Yielded, f.Return, nil

		case code.SUSPEND:
			f.IP++
			return Suspended, value.NilValue, nil

		case code.PANIC:
			payload := f.Pop()
			return Panicked, nil, value.ErrorFromGo(asError(payload))

		case code.DEFER:
			fn := f.Pop()
			f.PushDefer(fn, nil)
			f.IP++

		case code.TRAP:
			handlerIP := int(code.DecodeI32(c.Instr, f.IP))
			f.IP += op.Len()
			f.PushTrap(handlerIP)

		case code.UNTRAP:
			v := f.Pop()
			f.PopTrap()
			f.Push(value.Ok(v))
			f.IP++

		default:
			return Panicked, nil, value.NewError(value.KindRuntimeError, "unknown opcode", nil)
		}
	}
	return Returned, value.NilValue, nil
}

func asError(payload value.Object) error {
	if e, ok := payload.(*value.Error); ok {
		return e
	}
	return value.NewError(value.KindRuntimeError, mustRepr(payload), nil)
}

func mustRepr(o value.Object) string {
	s, err := value.Repr(o)
	if err != nil {
		return "?"
	}
	return s
}

func popN(f *frame.Frame, n int) []value.Object {
	out := make([]value.Object, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = f.Pop()
	}
	return out
}

func currentAccessor(f *frame.Frame) *value.Type {
	if f.Instance == nil {
		return nil
	}
	return f.Instance.Type()
}

func internalPanicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "internal evaluator fault"
}

func init() {
	rtlog.Eval().Debug("evaluator package initialized")
}
