// Package value implements the Argon object model: a uniform header
// over every heap value, a type descriptor carrying slot tables for
// the operator/attribute/subscript/buffer protocols, C3 method
// resolution order over traits, and the builtin container types.
//
// Argon's original runtime is manually reference counted; this port
// keeps the refcounting *protocol* (strong/weak semantics, the
// static/inline/gc-tracked distinction, trace callbacks for the cycle
// collector) as bookkeeping layered on top of Go's own garbage
// collector, which remains the actual memory owner. Dropping a strong
// reference to zero here means "this value is logically dead" (weak
// refs resolve to absent, destructors run); it does not free memory,
// Go's GC already does that once nothing reachable points at the
// value anymore.
package value

import (
	"sync"
	"sync/atomic"
)

// RefMode classifies how an object's reference count behaves.
type RefMode uint8

const (
	// RefInline is a plain refcounted object: no GC tracking.
	RefInline RefMode = iota
	// RefStatic objects are never freed; refcount operations are no-ops.
	RefStatic
	// RefGC objects are refcounted and linked into the cycle collector.
	RefGC
)

// Header is embedded as the first field of every heap object.
type Header struct {
	strong atomic.Int64
	mode   RefMode
	typ    *Type

	weakMu sync.Mutex
	weak   *weakCell

	// gcLink is reserved bookkeeping used by package gc (prev/next
	// links, generation, scratch refcount); opaque here to avoid an
	// import cycle, populated by gc.Track.
	gcLink any
}

// Object is implemented by every Argon heap value.
type Object interface {
	Type() *Type
}

// headerHolder lets the object model get at the embedded Header
// without every container needing to implement Type() by hand.
type headerHolder interface {
	header() *Header
}

// NewHeader builds a freshly allocated object's header. Called once
// by each constructor, e.g. `&List{Header: value.NewHeader(TypeList, value.RefInline)}`.
func NewHeader(typ *Type, mode RefMode) Header {
	h := Header{typ: typ, mode: mode}
	if mode != RefStatic {
		h.strong.Store(1)
	}
	return h
}

func (h *Header) header() *Header { return h }

// Type returns the object's type descriptor.
func (h *Header) Type() *Type { return h.typ }

// StrongCount returns the current strong reference count. Static
// objects report 1 always (never freed, "always alive").
func (h *Header) StrongCount() int64 {
	if h.mode == RefStatic {
		return 1
	}
	return h.strong.Load()
}

// IncRef increments the strong count. No-op for static objects.
func IncRef(o Object) Object {
	if o == nil {
		return nil
	}
	h := headerOf(o)
	if h == nil || h.mode == RefStatic {
		return o
	}
	h.strong.Add(1)
	return o
}

// DecRef decrements the strong count; when it reaches zero the object
// is marked dead (weak refs resolve to absent) and, if the type
// declares a destructor slot, it is invoked. GC-tracked objects are
// additionally released from the cycle collector's roots by the
// caller (see package gc), since Header cannot import gc.
func DecRef(o Object) {
	if o == nil {
		return
	}
	h := headerOf(o)
	if h == nil || h.mode == RefStatic {
		return
	}
	if h.strong.Add(-1) == 0 {
		h.killWeak()
		if t := h.typ; t != nil && t.Slots.Del != nil {
			t.Slots.Del(o)
		}
	}
}

// GCLink returns the scratch bookkeeping slot package gc uses to link
// a tracked object into its generation list, without value needing to
// import gc (which would cycle).
func GCLink(o Object) any {
	h := headerOf(o)
	if h == nil {
		return nil
	}
	return h.gcLink
}

// SetGCLink stores package gc's bookkeeping slot for o.
func SetGCLink(o Object, link any) {
	if h := headerOf(o); h != nil {
		h.gcLink = link
	}
}

// IsGCTracked reports whether o's header was created with RefGC mode.
func IsGCTracked(o Object) bool {
	h := headerOf(o)
	return h != nil && h.mode == RefGC
}

// Trace invokes o's trace slot (if any) with visit for every object o
// directly references, used by the cycle collector to walk the
// object graph (spec.md §4.2).
func Trace(o Object, visit func(Object)) {
	if t := o.Type(); t != nil && t.Slots.Trace != nil {
		t.Slots.Trace(o, visit)
	}
}

func headerOf(o Object) *Header {
	if hh, ok := o.(headerHolder); ok {
		return hh.header()
	}
	return nil
}

// weakCell is the indirection strong refs and weak refs share: a weak
// reference never keeps the target alive, and resolves to (nil,false)
// once the cell is marked dead.
type weakCell struct {
	mu    sync.Mutex
	alive bool
	obj   Object
}

// WeakRef is a non-owning reference produced by WeakRefOf.
type WeakRef struct {
	cell *weakCell
}

// WeakRefOf returns a weak reference to o. Only meaningful for types
// whose TypeFlags has Weakable set; WeakRefOf does not check the flag,
// and no code in this module calls it.
func WeakRefOf(o Object) WeakRef {
	h := headerOf(o)
	if h == nil {
		return WeakRef{}
	}
	h.weakMu.Lock()
	defer h.weakMu.Unlock()
	if h.weak == nil {
		h.weak = &weakCell{alive: true, obj: o}
	}
	return WeakRef{cell: h.weak}
}

// Get resolves the weak reference. ok is false once the last strong
// reference to the target has dropped.
func (w WeakRef) Get() (Object, bool) {
	if w.cell == nil {
		return nil, false
	}
	w.cell.mu.Lock()
	defer w.cell.mu.Unlock()
	if !w.cell.alive {
		return nil, false
	}
	return w.cell.obj, true
}

func (h *Header) killWeak() {
	h.weakMu.Lock()
	cell := h.weak
	h.weakMu.Unlock()
	if cell == nil {
		return
	}
	cell.mu.Lock()
	cell.alive = false
	cell.obj = nil
	cell.mu.Unlock()
}
