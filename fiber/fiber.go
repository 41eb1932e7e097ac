// Package fiber implements Argon's lightweight cooperatively scheduled
// task (spec.md §3.4, §4.6): a stack of frames, a panic stack, an
// optional future, and the intrusive queue the scheduler moves fibers
// through.
package fiber

import (
	"unsafe"

	"github.com/google/uuid"

	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/internal/trap"
	"github.com/argonlang/argon-rt/value"
)

// Status is a fiber's scheduling state (spec.md §3.4).
type Status int

const (
	Runnable Status = iota
	Running
	Suspended
	Blocked
)

func (s Status) String() string {
	switch s {
	case Runnable:
		return "RUNNABLE"
	case Running:
		return "RUNNING"
	case Suspended:
		return "SUSPENDED"
	case Blocked:
		return "BLOCKED"
	default:
		return "?"
	}
}

// Context holds the process-wide state a fiber needs that is not
// fiber-local: the builtins namespace and (eventually) an importer.
// Kept minimal since compilation/import are out of scope (spec.md §1).
type Context struct {
	Builtins *value.Namespace
}

// Fiber owns one stack of frames, a panic stack, and (for a spawned
// task awaited via EvalAsync) a future. These structures are never
// shared: only the OS thread currently running the fiber touches them
// (spec.md §5).
type Fiber struct {
	ID uuid.UUID

	Head   *frame.Frame
	Panics trap.Stack

	Status Status

	Context *Context
	Future  *value.Future

	// References is the tracked-reference list for cycle-safe repr of
	// objects reachable from this fiber (spec.md §3.4). No code in
	// this module appends to it.
	References []value.Object

	// Queue membership: a fiber appears in at most one queue at a time
	// (spec.md §4.7 invariant).
	next, prev *Fiber
	inQueue    bool
}

// New creates a runnable fiber with head as its initial frame.
func New(ctx *Context, head *frame.Frame) *Fiber {
	return &Fiber{ID: uuid.New(), Head: head, Context: ctx, Status: Runnable}
}

// PushFrame makes f the fiber's new current frame, linking f.Caller to
// the previous head.
func (fb *Fiber) PushFrame(f *frame.Frame) {
	f.Caller = fb.Head
	fb.Head = f
}

// PopFrame discards the current frame, restoring its caller. Returns
// the discarded frame, or nil if the fiber has no frames left.
func (fb *Fiber) PopFrame() *frame.Frame {
	f := fb.Head
	if f == nil {
		return nil
	}
	fb.Head = f.Caller
	return f
}

// CurrentFrame returns the fiber's active frame, or nil if it has
// returned from every frame it was given.
func (fb *Fiber) CurrentFrame() *frame.Frame { return fb.Head }

// FiberID returns an address-derived identity, used by package
// function to key the generator spin-lock and recorded as each new
// frame's OwnerFiber.
func (fb *Fiber) FiberID() uintptr { return uintptr(unsafe.Pointer(fb)) }

// PanicStack returns this fiber's panic stack.
func (fb *Fiber) PanicStack() *trap.Stack { return &fb.Panics }
