package value

import (
	"sync"
	"testing"
	"time"
)

func TestFutureFulfillExactlyOnce(t *testing.T) {
	f := NewFuture()
	if f.Status() != FuturePending {
		t.Fatal("expected pending status at creation")
	}
	f.Fulfill(Ok(NewInt(1)))
	f.Fulfill(Ok(NewInt(2))) // must be a no-op

	res := f.Wait()
	if !res.ok || res.value.(*Int).Value != 1 {
		t.Fatalf("expected first fulfillment to win, got %v", res)
	}
	if f.Status() != FutureFulfilled {
		t.Fatal("expected fulfilled status")
	}
}

func TestFutureWaitBlocksUntilFulfilled(t *testing.T) {
	f := NewFuture()
	done := make(chan *Result, 1)
	go func() { done <- f.Wait() }()

	select {
	case <-done:
		t.Fatal("Wait returned before Fulfill")
	case <-time.After(20 * time.Millisecond):
	}

	f.Fulfill(Ok(NewInt(42)))
	select {
	case res := <-done:
		if res.value.(*Int).Value != 42 {
			t.Fatalf("expected 42, got %v", res.value)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after Fulfill")
	}
}

func TestFutureNotifyFiresOnceImmediatelyIfAlreadyFulfilled(t *testing.T) {
	f := NewFuture()
	f.Fulfill(Ok(NewInt(7)))

	var got *Result
	f.Notify(func(r *Result) { got = r })
	if got == nil || got.value.(*Int).Value != 7 {
		t.Fatalf("expected immediate synchronous notify with 7, got %v", got)
	}
}

func TestFutureNotifyFiresOnFulfill(t *testing.T) {
	f := NewFuture()
	var wg sync.WaitGroup
	wg.Add(1)
	var got *Result
	f.Notify(func(r *Result) {
		got = r
		wg.Done()
	})
	f.Fulfill(Ok(NewInt(3)))
	wg.Wait()
	if got.value.(*Int).Value != 3 {
		t.Fatalf("expected 3, got %v", got.value)
	}
}
