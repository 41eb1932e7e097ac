package eval

import (
	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/internal/function"
	"github.com/argonlang/argon-rt/value"
)

// dispatchCall implements the CALL opcode (spec.md §4.5): pop an
// optional kwargs dict, argc positional args, then the callee; run
// function.Dispatch; either return its value result directly, or push
// the prepared frame and report `called` so the single driving loop
// in drive (internal/eval/eval.go) picks it up from the top — this
// function must never itself drive the callee to completion, since
// that would require a second, nested copy of drive's loop running
// concurrently with the one already suspended in runFrame's caller.
func dispatchCall(fb Fiber, f *frame.Frame, argc int, flags code.CallFlag) (Outcome, value.Object, error) {
	var kwargs *value.Dict
	if flags.Has(code.CallKwParams) {
		d, ok := f.Pop().(*value.Dict)
		if !ok {
			return Panicked, nil, value.NewError(value.KindTypeError, "KW_PARAMS call missing a dict on top of stack", nil)
		}
		kwargs = d
	}

	args := popN(f, argc)
	callee := f.Pop()

	fn, ok := callee.(*function.Function)
	if !ok {
		return Panicked, nil, value.NewError(value.KindTypeError, "'"+callee.Type().Name+"' object is not callable", nil)
	}

	out, err := function.Dispatch(fn, args, kwargs, nil, fb.FiberID())
	if err != nil {
		return Panicked, nil, err
	}
	if out.Frame != nil {
		fb.PushFrame(out.Frame)
		return called, nil, nil
	}
	return Returned, out.Value, nil
}

// unwind runs f's deferred-call chain LIFO in response to perr, per
// spec.md §4.4: a deferred call invoking Recover clears (marks
// recovered) the panic at this frame; once the chain finishes, a
// recovered panic stops propagation (the frame's caller resumes with
// nil), otherwise it continues to the caller frame. Returns true if
// execution should continue (the fiber has more frames / the panic
// was recovered at the bottom), false if it must propagate out of Run
// entirely (no caller frame left, or never recovered).
//
// Before running defers, unwind checks for an open Trap region in f
// (spec.md "Trap"): if one exists, the panic never reaches the defer
// chain or the caller — it is converted to an Err Result in place and
// f resumes at the trap's handler, still on the fiber's frame stack.
func unwind(fb Fiber, f *frame.Frame, perr error) bool {
	payload := value.ErrorFromGo(perr)

	if m, ok := f.PopTrap(); ok {
		f.ResumeAtTrap(m, value.Err(payload))
		return true
	}

	node := fb.PanicStack().Push(payload, f.FrameID())

	for d := f.PopDefer(); d != nil; d = f.PopDefer() {
		if fn, ok := d.Fn.(*function.Function); ok {
			out, _ := function.Dispatch(fn, d.Args, nil, nil, fb.FiberID())
			if out.Frame != nil {
				fb.PushFrame(out.Frame)
				// Bounded by f: drive only the deferred call's own
				// frames, then return here once control is back at f,
				// rather than recursing into the whole-fiber Run loop
				// (which would try to resume f's already-panicking
				// bytecode once the defer finished).
				_, _, _ = drive(fb, f)
			}
		}
	}

	fb.PopFrame()
	recovered := node.Recovered
	fb.PanicStack().Pop()

	if !recovered {
		return false
	}
	if caller := fb.CurrentFrame(); caller != nil {
		caller.Push(value.NilValue)
	}
	return true
}
