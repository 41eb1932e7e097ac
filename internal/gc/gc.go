// Package gc implements Argon's cycle collector: a generational,
// trial-deletion scan over GC-tracked objects layered on top of the
// refcounting protocol in package value (spec.md §3.3 "optional
// cycle-collecting GC", §4.2).
//
// Because the actual memory is owned by Go's runtime GC (see the
// package doc in value/object.go), this collector's job is narrower
// than the original's: find strongly-connected reference cycles among
// tracked objects whose *simulated* strong count never reaches zero
// through ordinary DecRef (because each member is kept "alive" by
// another member of the same cycle), and invoke their destructors so
// cross-referenced resources (e.g. open native handles) are released
// deterministically instead of only when Go's GC happens to collect
// the cycle.
package gc

import (
	"sync"

	"github.com/argonlang/argon-rt/value"
)

const generationCount = 3

// node is the bookkeeping record stashed in an object's GCLink slot.
type node struct {
	obj   value.Object
	gen   int
	prev  *node
	next  *node
	// scratch is trial-deletion's working refcount, reset each collection.
	scratch int64
}

// Collector owns the generation lists. One Collector exists per
// runtime instance (spec.md §4.7's Context could hold one; kept
// separate here to avoid value/fiber needing to import it).
type Collector struct {
	mu    sync.Mutex
	gens  [generationCount]*node // head of each generation's list
	count [generationCount]int
}

func New() *Collector { return &Collector{} }

// Track registers obj (created with value.RefGC) into generation 0.
func (c *Collector) Track(obj value.Object) {
	if !value.IsGCTracked(obj) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := &node{obj: obj, gen: 0, next: c.gens[0]}
	if c.gens[0] != nil {
		c.gens[0].prev = n
	}
	c.gens[0] = n
	c.count[0]++
	value.SetGCLink(obj, n)
}

// Untrack removes obj from whatever generation list holds it, used
// when DecRef reaches zero through ordinary (non-cyclic) collapse.
func (c *Collector) Untrack(obj value.Object) {
	link := value.GCLink(obj)
	n, ok := link.(*node)
	if !ok || n == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlink(n)
	value.SetGCLink(obj, nil)
}

func (c *Collector) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.gens[n.gen] = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
	c.count[n.gen]--
}

// TrackIf tracks obj only if pred(obj) holds — used for container
// types that are only cycle-prone once they can actually hold a
// reference to themselves or another tracked container (spec.md §4.2
// "the GC is optional": scalars never need tracking).
func (c *Collector) TrackIf(obj value.Object, pred func(value.Object) bool) {
	if pred(obj) {
		c.Track(obj)
	}
}

// Collect runs a trial-deletion scan of generation gen (and younger
// generations), reclaiming any unreachable cycle found, and promotes
// survivors to the next generation. Returns the number of unreachable
// objects collected; each one's Del slot, where its type has one, is
// invoked.
func (c *Collector) Collect(gen int) int {
	c.mu.Lock()
	var scan []*node
	for g := 0; g <= gen && g < generationCount; g++ {
		for n := c.gens[g]; n != nil; n = n.next {
			scan = append(scan, n)
		}
	}
	c.mu.Unlock()
	if len(scan) == 0 {
		return 0
	}

	// Trial deletion: seed scratch with the real strong count, then
	// subtract one for every reference found from another object in
	// the scan set. Whatever remains > 0 after that pass is externally
	// reachable (or reachable from something externally reachable);
	// propagate reachability outward from those roots. Anything left
	// untouched is a garbage cycle.
	index := make(map[value.Object]*node, len(scan))
	for _, n := range scan {
		n.scratch = headerStrongCount(n.obj)
		index[n.obj] = n
	}
	for _, n := range scan {
		value.Trace(n.obj, func(ref value.Object) {
			if rn, ok := index[ref]; ok {
				rn.scratch--
			}
		})
	}

	reachable := make(map[value.Object]bool, len(scan))
	var roots []value.Object
	for _, n := range scan {
		if n.scratch > 0 {
			roots = append(roots, n.obj)
		}
	}
	for len(roots) > 0 {
		o := roots[len(roots)-1]
		roots = roots[:len(roots)-1]
		if reachable[o] {
			continue
		}
		reachable[o] = true
		value.Trace(o, func(ref value.Object) {
			if _, ok := index[ref]; ok && !reachable[ref] {
				roots = append(roots, ref)
			}
		})
	}

	collected := 0
	c.mu.Lock()
	for _, n := range scan {
		if reachable[n.obj] {
			c.promote(n)
			continue
		}
		c.unlink(n)
		value.SetGCLink(n.obj, nil)
		collected++
	}
	c.mu.Unlock()

	for _, n := range scan {
		if !reachable[n.obj] {
			if t := n.obj.Type(); t.Slots.Del != nil {
				t.Slots.Del(n.obj)
			}
		}
	}

	return collected
}

func (c *Collector) promote(n *node) {
	if n.gen >= generationCount-1 {
		return
	}
	c.unlink(n)
	n.gen++
	n.next = c.gens[n.gen]
	if c.gens[n.gen] != nil {
		c.gens[n.gen].prev = n
	}
	c.gens[n.gen] = n
	c.count[n.gen]++
}

func headerStrongCount(o value.Object) int64 {
	type strongCounter interface{ StrongCount() int64 }
	if sc, ok := o.(strongCounter); ok {
		return sc.StrongCount()
	}
	return 1
}

// Count reports how many objects generation gen currently holds.
func (c *Collector) Count(gen int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < 0 || gen >= generationCount {
		return 0
	}
	return c.count[gen]
}
