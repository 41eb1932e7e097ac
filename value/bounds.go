package value

// Bounds is a slice descriptor (start, stop, step), any component
// optionally absent ("nil" in Argon source, e.g. `a[:5]`).
type Bounds struct {
	Header

	HasStart, HasStop, HasStep bool
	Start, Stop, Step          int64
}

var TypeBounds = &Type{Name: "Bounds", QName: "bounds", Flags: FlagStruct}

func NewBounds(start, stop, step *int64) *Bounds {
	b := &Bounds{Header: NewHeader(TypeBounds, RefInline)}
	if start != nil {
		b.HasStart, b.Start = true, *start
	}
	if stop != nil {
		b.HasStop, b.Stop = true, *stop
	}
	if step != nil {
		b.HasStep, b.Step = true, *step
	}
	return b
}

// Normalize clamps the descriptor against a sequence of length
// seqLen, following original_source/src/vm/datatype/bounds.cpp's
// BoundsIndex wraparound-clamping behavior: negative start/stop count
// back from the end, a zero or absent step defaults to 1, and a
// negative step walks from (seqLen-1) down to 0 by default.
//
// Returns the effective start, stop, step and the number of elements
// the slice will produce.
func (b *Bounds) Normalize(seqLen int) (start, stop, step, length int) {
	step = 1
	if b.HasStep && b.Step != 0 {
		step = int(b.Step)
	}

	if step > 0 {
		start, stop = 0, seqLen
	} else {
		start, stop = seqLen-1, -1
	}

	if b.HasStart {
		start = clampIndex(int(b.Start), seqLen)
	}
	if b.HasStop {
		stop = clampIndex(int(b.Stop), seqLen)
	}

	if step > 0 {
		if stop > seqLen {
			stop = seqLen
		}
		if start < 0 {
			start = 0
		}
		if stop > start {
			length = (stop - start + step - 1) / step
		}
	} else {
		if start >= seqLen {
			start = seqLen - 1
		}
		if stop < -1 {
			stop = -1
		}
		if start > stop {
			length = (start - stop - step - 1) / (-step)
		}
	}
	return start, stop, step, length
}

func clampIndex(i, seqLen int) int {
	if i < 0 {
		i += seqLen
	}
	if i < 0 {
		i = 0
	}
	if i > seqLen {
		i = seqLen
	}
	return i
}

// Buffer is a readable/writable byte view produced by a type's Buffer
// slot (spec.md §3.2 buffer slot); backs Bytes and any future
// buffer-protocol types.
type Buffer struct {
	Data     []byte
	Writable bool
	release  func()
}

// Release returns the buffer to its owner (e.g. unlocks a SharedBuffer
// reader/writer lock). Safe to call multiple times.
func (buf *Buffer) Release() {
	if buf.release != nil {
		r := buf.release
		buf.release = nil
		r()
	}
}
