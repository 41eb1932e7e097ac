package fiber

import (
	"sync"
	"unsafe"
)

// Queue is a doubly-linked FIFO of fibers with an optional maximum
// length (0 = unbounded), guarded by a single mutex for the duration
// of every operation (spec.md §4.6), grounded on the original
// runtime's fqueue.cpp intrusive-list design.
type Queue struct {
	mu         sync.Mutex
	head, tail *Fiber
	length     int
	maxLen     int
}

// NewQueue constructs a queue; maxLen == 0 means unbounded.
func NewQueue(maxLen int) *Queue {
	return &Queue{maxLen: maxLen}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// Enqueue appends f to the tail. Returns false if the queue is at
// maxLen capacity.
func (q *Queue) Enqueue(f *Fiber) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.maxLen > 0 && q.length >= q.maxLen {
		return false
	}
	q.linkTailLocked(f)
	return true
}

// InsertHead pushes f to the front of the queue, used to re-run a
// fiber that just yielded ahead of fairness order.
func (q *Queue) InsertHead(f *Fiber) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.maxLen > 0 && q.length >= q.maxLen {
		return false
	}
	f.prev, f.next = nil, q.head
	if q.head != nil {
		q.head.prev = f
	} else {
		q.tail = f
	}
	q.head = f
	f.inQueue = true
	q.length++
	return true
}

func (q *Queue) linkTailLocked(f *Fiber) {
	f.next, f.prev = nil, q.tail
	if q.tail != nil {
		q.tail.next = f
	} else {
		q.head = f
	}
	q.tail = f
	f.inQueue = true
	q.length++
}

// Dequeue removes and returns the head fiber, or nil if empty.
func (q *Queue) Dequeue() *Fiber {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unlinkLocked(q.head)
}

// Relinquish unlinks an arbitrary fiber known to be a member of this
// queue (e.g. a future's notify queue dropping a cancelled waiter).
func (q *Queue) Relinquish(f *Fiber) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !f.inQueue {
		return
	}
	q.unlinkLocked(f)
}

func (q *Queue) unlinkLocked(f *Fiber) *Fiber {
	if f == nil {
		return nil
	}
	if f.prev != nil {
		f.prev.next = f.next
	} else {
		q.head = f.next
	}
	if f.next != nil {
		f.next.prev = f.prev
	} else {
		q.tail = f.prev
	}
	f.next, f.prev, f.inQueue = nil, nil, false
	q.length--
	return f
}

// StealDequeue attempts to steal roughly half of target's fibers onto
// q, returning one of them, per spec.md §4.6:
//  1. If target has fewer than minLen fibers, there is nothing to steal.
//  2. Locate target's midpoint by a two-pointer walk.
//  3. Detach the back half (midpoint..tail) and splice it onto q's tail.
//  4. Return one fiber from q's head (the first of the stolen batch, if
//     q was empty before the splice).
//
// Locks both q and target, but never in caller-supplied order: two
// VCores stealing from each other at the same instant (A steals from
// B while B steals from A) would otherwise each acquire the other's
// mutex first, a classic AB/BA deadlock. Both sides instead lock by
// ascending memory address, so of any two queues only one lock order
// is ever attempted.
func (q *Queue) StealDequeue(minLen int, target *Queue) *Fiber {
	if q == target {
		return nil
	}

	first, second := q, target
	if uintptr(unsafe.Pointer(target)) < uintptr(unsafe.Pointer(q)) {
		first, second = target, q
	}
	first.mu.Lock()
	second.mu.Lock()
	defer first.mu.Unlock()
	defer second.mu.Unlock()

	if target.length < minLen {
		return nil
	}

	slow, fast := target.head, target.head
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}
	// slow now points at (or past) the midpoint; stolen run is [slow, tail].
	stolenHead := slow
	if stolenHead == nil {
		return nil
	}
	stolenCount := 0
	for n := stolenHead; n != nil; n = n.next {
		stolenCount++
	}

	if stolenHead.prev != nil {
		stolenHead.prev.next = nil
	} else {
		target.head = nil
	}
	stolenTail := target.tail
	target.tail = stolenHead.prev
	stolenHead.prev = nil
	target.length -= stolenCount

	if q.tail != nil {
		q.tail.next = stolenHead
		stolenHead.prev = q.tail
	} else {
		q.head = stolenHead
	}
	q.tail = stolenTail
	q.length += stolenCount
	for n := stolenHead; n != nil; n = n.next {
		n.inQueue = true
	}

	return q.unlinkLocked(q.head)
}
