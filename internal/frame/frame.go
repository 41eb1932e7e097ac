// Package frame implements Argon's per-call activation record
// (spec.md §3.5, §4.3).
package frame

import (
	"unsafe"

	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/value"
)

// Deferred is one entry of a frame's deferred-call chain, run LIFO on
// frame exit (return, panic, or generator exhaustion) (spec.md §4.4).
type Deferred struct {
	Fn   value.Object
	Args []value.Object
	prev *Deferred
}

// TrapMark records one active scoped-recover region (spec.md "Trap"):
// HandlerIP is where execution resumes, with a Result pushed, if the
// region between TRAP and UNTRAP panics. EvalDepth is the eval-stack
// depth to restore to before pushing that Result.
type TrapMark struct {
	HandlerIP int
	EvalDepth int
}

// GenHook lets a generator-backed function observe its floating
// frame's lifecycle (suspended by YIELD, drained by RET) without this
// package importing package function, which already imports frame —
// satisfied implicitly by *function.Function.
type GenHook interface {
	GenYielded()
	GenExhausted()
}

// Frame is a per-call activation record. Eval-stack and local slots
// are plain Go slices allocated by New rather than the original's
// "appended inline after the struct" bump-allocated layout; frames are
// ordinary heap allocations and are not drawn from a per-fiber region.
type Frame struct {
	Globals  *value.Namespace
	Instance value.Object // non-nil for a bound method call
	Code     *code.Code

	IP int

	Eval   []value.Object // evaluation stack, grows from index 0
	evalSP int

	Locals   []value.Object
	Enclosed []value.Object

	deferHead *Deferred
	trapMarks []TrapMark

	Return value.Object

	Caller *Frame

	// Floating marks a generator's frame, which is kept by the
	// generator function between calls (spec.md §3.5).
	Floating bool

	// Gen is non-nil when this frame is a generator's floating frame,
	// so the evaluator's main loop can fire GenYielded/GenExhausted at
	// exactly the point this frame (not some other frame it happens to
	// call into) suspends or returns.
	Gen GenHook

	// OwnerFiber is an opaque identifier of the fiber the frame was
	// created for (its FiberID). Panic nodes' GenID is the frame's own
	// FrameID, not this value.
	OwnerFiber uintptr
}

// New allocates a Frame for c, with an eval stack of c.StackSize slots
// and len(c.Locals) local slots; enclosed is used as the frame's
// enclosed list as given.
func New(c *code.Code, globals *value.Namespace, instance value.Object, enclosed []value.Object, ownerFiber uintptr) *Frame {
	return &Frame{
		Globals:  globals,
		Instance: instance,
		Code:     c,
		Eval:     make([]value.Object, c.StackSize),
		Locals:   make([]value.Object, len(c.Locals)),
		Enclosed: enclosed,
		OwnerFiber: ownerFiber,
	}
}

// Push pushes v onto the evaluation stack. Panics (a Go panic, caught
// by the evaluator's dispatch loop) if it would exceed code.StackSize,
// enforcing the "eval-stack depth never exceeds code.stack_sz"
// invariant (spec.md §4.3).
func (f *Frame) Push(v value.Object) {
	if f.evalSP >= len(f.Eval) {
		panic("eval stack overflow")
	}
	f.Eval[f.evalSP] = v
	f.evalSP++
}

// Pop pops and returns the top of the evaluation stack.
func (f *Frame) Pop() value.Object {
	f.evalSP--
	v := f.Eval[f.evalSP]
	f.Eval[f.evalSP] = nil
	return v
}

// Peek returns the top of the evaluation stack without popping it.
func (f *Frame) Peek() value.Object { return f.Eval[f.evalSP-1] }

// Dup duplicates the value n slots from the top (n==0 duplicates TOS).
func (f *Frame) Dup(n int) { f.Push(f.Eval[f.evalSP-1-n]) }

// StackLen reports the current evaluation-stack depth.
func (f *Frame) StackLen() int { return f.evalSP }

// PushDefer adds fn(args...) to the head of the deferred-call chain.
func (f *Frame) PushDefer(fn value.Object, args []value.Object) {
	f.deferHead = &Deferred{Fn: fn, Args: args, prev: f.deferHead}
}

// PopDefer removes and returns the most recently pushed deferred call,
// or nil if the chain is empty.
func (f *Frame) PopDefer() *Deferred {
	d := f.deferHead
	if d == nil {
		return nil
	}
	f.deferHead = d.prev
	return d
}

// FrameID returns the identity used as a panic node's GenID: the
// frame's own address.
func (f *Frame) FrameID() uintptr {
	return uintptr(unsafe.Pointer(f))
}

// PushTrap opens a scoped-recover region ending at handlerIP, recording
// the eval-stack depth to unwind to if the region panics.
func (f *Frame) PushTrap(handlerIP int) {
	f.trapMarks = append(f.trapMarks, TrapMark{HandlerIP: handlerIP, EvalDepth: f.evalSP})
}

// PopTrap removes and returns the innermost active trap mark, or false
// if none is open.
func (f *Frame) PopTrap() (TrapMark, bool) {
	if len(f.trapMarks) == 0 {
		return TrapMark{}, false
	}
	n := len(f.trapMarks) - 1
	m := f.trapMarks[n]
	f.trapMarks = f.trapMarks[:n]
	return m, true
}

// ResumeAtTrap truncates the eval stack to m's recorded depth, pushes
// v, and jumps to m's handler — used by the evaluator to convert an
// in-flight panic into a Result at the trapped scope.
func (f *Frame) ResumeAtTrap(m TrapMark, v value.Object) {
	f.evalSP = m.EvalDepth
	f.Push(v)
	f.IP = m.HandlerIP
}
