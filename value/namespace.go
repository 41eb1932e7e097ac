package value

import "sync"

// AttrFlags encode the const/public/weak bits carried alongside every
// Namespace entry (spec.md §3.3).
type AttrFlags uint8

const (
	AttrConst AttrFlags = 1 << iota
	AttrPublic
	AttrWeak
)

func (f AttrFlags) Has(bit AttrFlags) bool { return f&bit != 0 }

type nsEntry struct {
	val   Object
	flags AttrFlags
}

// Namespace is a string-keyed map from name to (value, flags), used
// for a type's tp_map, a module's globals, and a frame's enclosed
// scope. Mutation is serialized by an RWMutex: namespaces are not
// exposed to concurrent fiber access the way List/Dict/Set are (a
// namespace belongs to exactly one type or one frame's globals, never
// raced the way a shared container value can be).
type Namespace struct {
	Header
	mu      sync.RWMutex
	entries map[string]nsEntry
}

var TypeNamespace = &Type{Name: "Namespace", QName: "namespace", Flags: FlagStruct}

func NewNamespace() *Namespace {
	return &Namespace{
		Header:  NewHeader(TypeNamespace, RefInline),
		entries: make(map[string]nsEntry),
	}
}

// Lookup returns the value and flags stored under name.
func (n *Namespace) Lookup(name string) (Object, AttrFlags, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	e, ok := n.entries[name]
	if !ok {
		return nil, 0, false
	}
	return e.val, e.flags, true
}

// Declare inserts a new binding, as NGV does for a fresh global.
func (n *Namespace) Declare(name string, val Object, flags AttrFlags) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries[name] = nsEntry{val: val, flags: flags}
}

// Set updates an existing binding's value, preserving its flags.
// Returns false if name is undeclared or the binding is const.
func (n *Namespace) Set(name string, val Object) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.entries[name]
	if !ok || e.flags.Has(AttrConst) {
		return false
	}
	e.val = val
	n.entries[name] = e
	return true
}

// Names returns the declared names in unspecified order.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.entries))
	for k := range n.entries {
		out = append(out, k)
	}
	return out
}

func (n *Namespace) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}
