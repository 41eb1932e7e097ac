package value

import "sync"

// Atom is an interned, identity-compared value used for stable
// identifiers such as error kinds (spec.md §3.3, GLOSSARY).
type Atom struct {
	Header
	name string
}

var TypeAtom = &Type{Name: "Atom", QName: "atom", Flags: FlagStruct}

var (
	atomMu    sync.Mutex
	atomTable = map[string]*Atom{}
)

// NewAtom returns the unique Atom for name, interning it on first use.
func NewAtom(name string) *Atom {
	atomMu.Lock()
	defer atomMu.Unlock()
	if a, ok := atomTable[name]; ok {
		return a
	}
	a := &Atom{Header: NewHeader(TypeAtom, RefStatic), name: name}
	atomTable[name] = a
	return a
}

func (a *Atom) String() string { return a.name }

// Eq reports atom identity, which for interned atoms is pointer
// equality but is spelled out by name for clarity at call sites.
func (a *Atom) Eq(other *Atom) bool { return a == other }
