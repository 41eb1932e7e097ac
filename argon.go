// Package argon is the embedding entry point for the runtime: start
// and stop the scheduler, spawn fibers, and await their futures
// (spec.md §6, §9). Compiling Argon source to a Code object is an
// external collaborator's job and out of scope here (spec.md §1).
package argon

import (
	"context"
	"time"

	"github.com/argonlang/argon-rt/fiber"
	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/internal/function"
	"github.com/argonlang/argon-rt/internal/rtlog"
	"github.com/argonlang/argon-rt/internal/sched"
	"github.com/argonlang/argon-rt/value"
)

// Config configures a Runtime at Initialize time, mirroring spec.md
// §4.7's startup parameters.
type Config struct {
	MaxVCores      int
	MaxOSThreads   int64
	FiberStackSize int
	FiberPoolCap   int
	LogLevel       string
}

// DefaultConfig returns the spec's documented defaults: MaxVCores =
// hardware concurrency (else 2), a large MaxOSThreads cap.
func DefaultConfig() Config {
	sc := sched.DefaultConfig()
	return Config{
		MaxVCores:      sc.MaxVCores,
		MaxOSThreads:   sc.MaxOST,
		FiberStackSize: sc.FiberStackSize,
		FiberPoolCap:   sc.FiberPoolCap,
	}
}

// Runtime is an initialized Argon execution context: a scheduler plus
// the shared builtins namespace every fiber's Context points at.
type Runtime struct {
	sched    *sched.Scheduler
	builtins *value.Namespace
}

// Initialize starts the scheduler's OS-thread pool lazily (threads are
// created on first Spawn) and prepares the shared builtins namespace.
func Initialize(cfg Config) (*Runtime, error) {
	if cfg.LogLevel != "" {
		if err := rtlog.SetLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	sc := sched.Config{
		MaxVCores:      cfg.MaxVCores,
		MaxOST:         cfg.MaxOSThreads,
		FiberStackSize: cfg.FiberStackSize,
		FiberPoolCap:   cfg.FiberPoolCap,
	}
	if sc.MaxVCores == 0 {
		sc = sched.DefaultConfig()
	}
	rt := &Runtime{
		sched:    sched.New(sc),
		builtins: value.NewNamespace(),
	}
	rtlog.Scheduler().Debug("argon runtime initialized")
	return rt, nil
}

// Shutdown signals every fiber-driving OS thread to stop and waits
// (bounded by timeout) for them to exit. A fiber spawned afterwards is
// queued but never run.
func (rt *Runtime) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return rt.sched.Shutdown(ctx)
}

// newFiberFor builds a runnable fiber executing fn(args...) as its
// top-level call.
func (rt *Runtime) newFiberFor(fn *function.Function, args []value.Object) (*fiber.Fiber, error) {
	ctx := &fiber.Context{Builtins: rt.builtins}
	placeholder := fiber.New(ctx, nil)
	out, err := function.Dispatch(fn, args, nil, nil, placeholder.FiberID())
	if err != nil {
		return nil, err
	}
	if out.Frame == nil {
		// A native call (already run by Dispatch), a partial
		// application, or a generator's first call: wrap its value as a
		// frame that just returns it, so the fiber lifecycle (and
		// future, if any) still goes through Run.
		instr := []byte{byte(code.LSTATIC), 0, 0, byte(code.RET)}
		c := code.New("<native-call>", instr, 1, []value.Object{out.Value}, nil, nil, nil)
		out.Frame = frame.New(c, rt.builtins, nil, nil, placeholder.FiberID())
	}
	placeholder.Head = out.Frame
	return placeholder, nil
}

// Spawn enqueues fn(args...) as a new top-level fiber (spec.md §4.7).
func (rt *Runtime) Spawn(fn *function.Function, args []value.Object) error {
	fb, err := rt.newFiberFor(fn, args)
	if err != nil {
		return err
	}
	rt.sched.Spawn(fb)
	return nil
}

// EvalAsync is Spawn with a future attached, returned so the caller
// can FutureWait or FutureAWait it (spec.md §4.7).
func (rt *Runtime) EvalAsync(fn *function.Function, args []value.Object) (*value.Future, error) {
	fb, err := rt.newFiberFor(fn, args)
	if err != nil {
		return nil, err
	}
	return rt.sched.EvalAsync(fb), nil
}

// FutureWait blocks the calling OS thread until fut is fulfilled.
func FutureWait(fut *value.Future) *value.Result { return fut.Wait() }

// FutureAWait registers a cooperative awaiter: cb runs once, when fut
// is fulfilled, without blocking the calling OS thread (spec.md §4.7).
func FutureAWait(fut *value.Future, cb func(*value.Result)) { fut.Notify(cb) }

