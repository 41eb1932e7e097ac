// Package trap implements Argon's per-fiber panic stack (spec.md §3.6,
// §4.4): a linked stack of panic nodes with recover-at-current-frame
// semantics, plus the reserved out-of-memory node that lets an OOM
// panic be raised without itself allocating.
package trap

import (
	"sync"
	"sync/atomic"

	"github.com/argonlang/argon-rt/value"
)

// Node is one entry in a fiber's panic stack.
type Node struct {
	prev      *Node
	Payload   value.Object
	Recovered bool
	Aborted   bool
	// GenID identifies the frame that raised this panic (its address),
	// distinguishing "raised here" from "propagating through" so
	// Recover only clears a panic owned by the current frame.
	GenID uintptr
}

// reservedOOM is swapped in by Push when allocating a fresh *Node
// fails, so reporting an out-of-memory condition can never itself
// fail to allocate (spec.md §4.4).
var reservedOOM atomic.Pointer[Node]

func init() {
	reservedOOM.Store(&Node{Payload: value.NewError(value.KindOutOfMemory, "out of memory", nil)})
}

// Stack is a fiber's panic stack: a simple linked list with the most
// recent panic at head.
type Stack struct {
	mu   sync.Mutex
	head *Node
}

// Push raises a new panic. If a panic is already active, it is marked
// aborted: a new panic arose while the previous one was being handled
// (spec.md §4.4, §8 edge case).
func (s *Stack) Push(payload value.Object, genID uintptr) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := newNode(payload, genID)
	if s.head != nil {
		s.head.Aborted = true
	}
	n.prev = s.head
	s.head = n
	return n
}

// newNode allocates a panic node, falling back to the preallocated OOM
// node (reset for this payload) if Go's allocator were ever unable to
// satisfy `new(Node)` — the condition this mechanism exists to survive.
func newNode(payload value.Object, genID uintptr) (n *Node) {
	defer func() {
		if recover() != nil {
			n = reservedOOM.Swap(nil)
			if n == nil {
				n = &Node{}
			}
			n.Payload = payload
			n.GenID = genID
			n.Recovered, n.Aborted = false, false
		}
	}()
	n = &Node{Payload: payload, GenID: genID}
	return n
}

// Recover returns the current panic's payload if one is active at
// genID (the calling frame), clearing (marking recovered) the node;
// it returns (nil, false) otherwise, including when the active panic
// belongs to an enclosing frame still unwinding (spec.md §4.4).
func (s *Stack) Recover(genID uintptr) (value.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.head == nil || s.head.Recovered || s.head.GenID != genID {
		return nil, false
	}
	s.head.Recovered = true
	return s.head.Payload, true
}

// Active reports the current panic, if any, without consuming it.
func (s *Stack) Active() (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head, s.head != nil
}

// Pop removes the head node once its deferred-call chain has finished
// running and it has been recovered; returns false if the head is not
// recovered (propagation continues to the caller frame).
func (s *Stack) Pop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head == nil || !s.head.Recovered {
		return false
	}
	s.head = s.head.prev
	return true
}

// Empty reports whether the fiber is not currently panicking.
func (s *Stack) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head == nil
}
