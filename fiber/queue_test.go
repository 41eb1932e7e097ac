package fiber

import "testing"

func newTestFiber() *Fiber { return New(nil, nil) }

func TestQueueEnqueueDequeueFIFO(t *testing.T) {
	q := NewQueue(0)
	a, b, c := newTestFiber(), newTestFiber(), newTestFiber()
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)
	if q.Len() != 3 {
		t.Fatalf("expected length 3, got %d", q.Len())
	}
	if got := q.Dequeue(); got != a {
		t.Fatal("expected FIFO order, got non-a first")
	}
	if got := q.Dequeue(); got != b {
		t.Fatal("expected FIFO order, got non-b second")
	}
	if q.Len() != 1 {
		t.Fatalf("expected length 1, got %d", q.Len())
	}
}

func TestQueueDequeueEmptyReturnsNil(t *testing.T) {
	q := NewQueue(0)
	if q.Dequeue() != nil {
		t.Fatal("expected nil from empty queue")
	}
}

func TestQueueRespectsMaxLen(t *testing.T) {
	q := NewQueue(2)
	if !q.Enqueue(newTestFiber()) || !q.Enqueue(newTestFiber()) {
		t.Fatal("expected first two enqueues to succeed")
	}
	if q.Enqueue(newTestFiber()) {
		t.Fatal("expected enqueue past maxLen to fail")
	}
	if q.Len() != 2 {
		t.Fatalf("expected length capped at 2, got %d", q.Len())
	}
}

func TestQueueInsertHeadJumpsFairnessOrder(t *testing.T) {
	q := NewQueue(0)
	a, b := newTestFiber(), newTestFiber()
	q.Enqueue(a)
	q.InsertHead(b)
	if got := q.Dequeue(); got != b {
		t.Fatal("expected InsertHead fiber dequeued first")
	}
	if got := q.Dequeue(); got != a {
		t.Fatal("expected original fiber dequeued second")
	}
}

func TestQueueRelinquishRemovesArbitraryMember(t *testing.T) {
	q := NewQueue(0)
	a, b, c := newTestFiber(), newTestFiber(), newTestFiber()
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)
	q.Relinquish(b)
	if q.Len() != 2 {
		t.Fatalf("expected length 2 after relinquish, got %d", q.Len())
	}
	if got := q.Dequeue(); got != a {
		t.Fatal("expected a still at head")
	}
	if got := q.Dequeue(); got != c {
		t.Fatal("expected b removed, c next")
	}
}

func TestQueueStealDequeueTakesBackHalf(t *testing.T) {
	target := NewQueue(0)
	fibers := make([]*Fiber, 6)
	for i := range fibers {
		fibers[i] = newTestFiber()
		target.Enqueue(fibers[i])
	}
	local := NewQueue(0)

	stolen := local.StealDequeue(2, target)
	if stolen == nil {
		t.Fatal("expected a stolen fiber")
	}
	// +1 accounts for the fiber StealDequeue already dequeued and
	// returned, no longer a member of either queue.
	if target.Len()+local.Len()+1 != 6 {
		t.Fatalf("expected total fiber count preserved, got target=%d local=%d stolen=1", target.Len(), local.Len())
	}
	if target.Len() == 0 {
		t.Fatal("steal should leave the front half behind, not take everything")
	}
}

func TestQueueStealDequeueRefusesBelowMinLen(t *testing.T) {
	target := NewQueue(0)
	target.Enqueue(newTestFiber())
	local := NewQueue(0)

	if got := local.StealDequeue(4, target); got != nil {
		t.Fatal("expected no steal when target is under minLen")
	}
	if target.Len() != 1 {
		t.Fatal("target should be untouched when steal refuses")
	}
}
