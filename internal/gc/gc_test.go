package gc

import (
	"testing"

	"github.com/argonlang/argon-rt/value"
)

// cell is a minimal GC-tracked object used to exercise trial deletion
// without depending on the full container types: just a header and a
// single outgoing reference, enough to build a two-node cycle.
type cell struct {
	value.Header
	next    *cell
	deleted bool
}

var typeCell = &value.Type{Name: "cell", QName: "gc.cell"}

func init() {
	typeCell.Slots = value.Slots{
		Trace: func(o value.Object, visit func(value.Object)) {
			c := o.(*cell)
			if c.next != nil {
				visit(c.next)
			}
		},
		Del: func(o value.Object) { o.(*cell).deleted = true },
	}
}

func newCell() *cell {
	return &cell{Header: value.NewHeader(typeCell, value.RefGC)}
}

func TestCollectReclaimsUnreachableCycle(t *testing.T) {
	c := New()
	a, b := newCell(), newCell()
	a.next, b.next = b, a
	c.Track(a)
	c.Track(b)

	if c.Count(0) != 2 {
		t.Fatalf("expected 2 tracked objects in generation 0, got %d", c.Count(0))
	}

	collected := c.Collect(0)
	if collected != 2 {
		t.Fatalf("expected both cycle members collected, got %d", collected)
	}
	if !a.deleted || !b.deleted {
		t.Fatal("expected both cycle members' destructors invoked")
	}
	if c.Count(0) != 0 {
		t.Fatalf("expected generation 0 empty after collection, got %d", c.Count(0))
	}
}

func TestCollectSparesExternallyReferencedCycle(t *testing.T) {
	c := New()
	a, b := newCell(), newCell()
	a.next, b.next = b, a
	value.IncRef(a) // simulates an external strong reference holding the cycle alive
	c.Track(a)
	c.Track(b)

	collected := c.Collect(0)
	if collected != 0 {
		t.Fatalf("expected the externally-referenced cycle to survive, got %d collected", collected)
	}
	if a.deleted || b.deleted {
		t.Fatal("expected neither member destroyed")
	}
	// Survivors are promoted out of generation 0.
	if c.Count(0) != 0 {
		t.Fatalf("expected generation 0 drained by promotion, got %d", c.Count(0))
	}
	if c.Count(1) != 2 {
		t.Fatalf("expected both survivors promoted to generation 1, got %d", c.Count(1))
	}
}

func TestUntrackRemovesFromGenerationList(t *testing.T) {
	c := New()
	a := newCell()
	c.Track(a)
	if c.Count(0) != 1 {
		t.Fatalf("expected 1 tracked object, got %d", c.Count(0))
	}
	c.Untrack(a)
	if c.Count(0) != 0 {
		t.Fatalf("expected 0 tracked objects after Untrack, got %d", c.Count(0))
	}
}
