package value

import (
	"fmt"
	"sync"
)

// SharedBuffer is the copy-on-write backing store shared by Bytes
// views (spec.md §3.3 "Bytes"). Multiple unfrozen Bytes may share one
// SharedBuffer until a write forces a split; a frozen Bytes never
// writes, so it shares its buffer for the rest of its life.
type SharedBuffer struct {
	mu   sync.RWMutex
	data []byte
}

func newSharedBuffer(data []byte) *SharedBuffer {
	return &SharedBuffer{data: data}
}

func (b *SharedBuffer) snapshot() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

// Bytes is a mutable-until-frozen byte string.
type Bytes struct {
	Header
	buf      *SharedBuffer
	frozen   bool
	hash     uint64
	hashSet  bool
}

var TypeBytes = &Type{Name: "Bytes", QName: "bytes", Flags: FlagStruct}

func NewBytes(data []byte) *Bytes {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Bytes{Header: NewHeader(TypeBytes, RefInline), buf: newSharedBuffer(cp)}
}

// Freeze marks b immutable; further in-place mutation returns an
// error, matching spec.md §3.3's frozen/unfrozen distinction.
func (b *Bytes) Freeze() { b.frozen = true }
func (b *Bytes) IsFrozen() bool { return b.frozen }

func (b *Bytes) Len() int {
	b.buf.mu.RLock()
	defer b.buf.mu.RUnlock()
	return len(b.buf.data)
}

func (b *Bytes) Go() []byte { return b.buf.snapshot() }

// detach gives b its own private SharedBuffer, copying the current
// contents, so a write to b cannot be observed through a sibling view
// that still shares the old buffer (copy-on-write).
func (b *Bytes) detach() error {
	if b.frozen {
		return errValuef("bytes object is frozen")
	}
	b.buf = newSharedBuffer(b.buf.snapshot())
	return nil
}

func (b *Bytes) SetByte(i int, v byte) error {
	if err := b.detach(); err != nil {
		return err
	}
	b.buf.mu.Lock()
	defer b.buf.mu.Unlock()
	if i < 0 || i >= len(b.buf.data) {
		return errOverflowf("index %d out of range for bytes of length %d", i, len(b.buf.data))
	}
	b.buf.data[i] = v
	b.hashSet = false
	return nil
}

func init() {
	TypeBytes.Slots = Slots{
		Hash: func(o Object) (uint64, error) {
			b := o.(*Bytes)
			if !b.frozen {
				return 0, errUnhashablef("unhashable type: 'Bytes' (not frozen)")
			}
			if b.hashSet {
				return b.hash, nil
			}
			h := fnv1a64(b.buf.snapshot())
			b.hash, b.hashSet = h, true
			return h, nil
		},
		IsTrue: func(o Object) bool { return o.(*Bytes).Len() > 0 },
		Repr: func(o Object) (string, error) {
			return fmt.Sprintf("b\"%x\"", o.(*Bytes).Go()), nil
		},
		Str: func(o Object) (string, error) { return string(o.(*Bytes).Go()), nil },
		Compare: func(self, other Object, mode CompareMode) (bool, bool, error) {
			if mode != CmpEQ && mode != CmpNE {
				return false, false, nil
			}
			ob, ok := other.(*Bytes)
			if !ok {
				return mode == CmpNE, true, nil
			}
			sb := self.(*Bytes)
			a, bb := sb.Go(), ob.Go()
			eq := len(a) == len(bb)
			for i := 0; eq && i < len(a); i++ {
				if a[i] != bb[i] {
					eq = false
				}
			}
			if mode == CmpNE {
				return !eq, true, nil
			}
			return eq, true, nil
		},
		Add: func(left, right Object) (Object, bool, error) {
			l, ok := left.(*Bytes)
			if !ok {
				return nil, false, nil
			}
			r, ok := right.(*Bytes)
			if !ok {
				return nil, false, nil
			}
			out := append(append([]byte{}, l.Go()...), r.Go()...)
			return NewBytes(out), true, nil
		},
		Buffer: func(o Object, writable bool) (*Buffer, error) {
			b := o.(*Bytes)
			if writable {
				if err := b.detach(); err != nil {
					return nil, err
				}
				b.buf.mu.Lock()
				return &Buffer{Data: b.buf.data, Writable: true, release: b.buf.mu.Unlock}, nil
			}
			b.buf.mu.RLock()
			return &Buffer{Data: b.buf.data, Writable: false, release: b.buf.mu.RUnlock}, nil
		},
		Subscript: &SubscriptSlot{
			Length: func(o Object) int { return o.(*Bytes).Len() },
			GetItem: func(o Object, key Object) (Object, error) {
				b := o.(*Bytes)
				i, err := indexFromKey(key, b.Len())
				if err != nil {
					return nil, err
				}
				return NewInt(int64(b.Go()[i])), nil
			},
			SetItem: func(o Object, key, val Object) error {
				b := o.(*Bytes)
				i, err := indexFromKey(key, b.Len())
				if err != nil {
					return err
				}
				iv, ok := val.(*Int)
				if !ok {
					return errTypef("expected int, got '%s'", val.Type().Name)
				}
				return b.SetByte(i, byte(iv.Value))
			},
			GetSlice: func(o Object, bnd Bounds) (Object, error) {
				data := o.(*Bytes).Go()
				start, stop, step, length := bnd.Normalize(len(data))
				out := make([]byte, 0, length)
				if step > 0 {
					for i := start; i < stop; i += step {
						out = append(out, data[i])
					}
				} else {
					for i := start; i > stop; i += step {
						out = append(out, data[i])
					}
				}
				return NewBytes(out), nil
			},
		},
	}
}
