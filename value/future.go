package value

import "sync"

// FutureStatus is Future's lifecycle state (spec.md §5): a future is
// created pending and transitions to fulfilled exactly once.
type FutureStatus uint8

const (
	FuturePending FutureStatus = iota
	FutureFulfilled
)

// Future is a one-shot promise (spec.md §3.3, §4.7): a fiber's result
// (or unrecovered panic) is published here exactly once. Blocking
// waiters park on cond; cooperative waiters register a callback that
// fires on the fulfilling goroutine once, outside the lock.
type Future struct {
	Header
	mu      sync.Mutex
	cond    *sync.Cond
	status  FutureStatus
	result  *Result
	waiters []func(*Result)
}

var TypeFuture = &Type{Name: "Future", QName: "future", Flags: FlagStruct}

func NewFuture() *Future {
	f := &Future{Header: NewHeader(TypeFuture, RefInline)}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Future) Status() FutureStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Fulfill publishes res, waking blocked waiters and firing cooperative
// notify callbacks. Fulfilling an already-fulfilled future is a no-op,
// matching the "exactly once" invariant.
func (f *Future) Fulfill(res *Result) {
	f.mu.Lock()
	if f.status == FutureFulfilled {
		f.mu.Unlock()
		return
	}
	f.status = FutureFulfilled
	f.result = res
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	f.cond.Broadcast()
	for _, w := range waiters {
		w(res)
	}
}

// Wait blocks the calling OS thread until the future is fulfilled,
// implementing FutureWait (spec.md §4.7).
func (f *Future) Wait() *Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.status != FutureFulfilled {
		f.cond.Wait()
	}
	return f.result
}

// Notify registers cb to run once, exactly when the future is
// fulfilled (immediately, synchronously, if it already is). This is
// the hook FutureAWait uses to re-enqueue a suspended fiber without
// this package depending on the fiber package.
func (f *Future) Notify(cb func(*Result)) {
	f.mu.Lock()
	if f.status == FutureFulfilled {
		res := f.result
		f.mu.Unlock()
		cb(res)
		return
	}
	f.waiters = append(f.waiters, cb)
	f.mu.Unlock()
}

func init() {
	TypeFuture.Slots = Slots{
		IsTrue: func(Object) bool { return true },
		Repr: func(x Object) (string, error) {
			f := x.(*Future)
			if f.Status() == FutureFulfilled {
				return "future(fulfilled)", nil
			}
			return "future(pending)", nil
		},
	}
}
