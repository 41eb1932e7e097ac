// Package code defines Argon's compiled bytecode unit: the opcode
// set, instruction argument layout, and the Code object produced by
// the (external) compiler and consumed by the evaluator (spec.md §4.3).
package code

import "github.com/argonlang/argon-rt/value"

// OpCode is the leading byte of every instruction.
type OpCode byte

const (
	NOP OpCode = iota

	// Arithmetic / bitwise.
	ADD
	SUB
	MUL
	DIV
	IDIV
	MOD
	NEG
	POS
	INC
	DEC
	INV
	LAND
	LOR
	LXOR
	SHL
	SHR

	// Comparison.
	CMP
	EQST

	// Control flow.
	JMP
	JT
	JF
	JTOP
	JFOP
	JNIL

	// Stack.
	POP
	DUP

	// Locals / globals / enclosed.
	LDLC
	STLC
	LDENC
	STENC
	NGV
	LDGV
	STGV

	// Constants.
	LSTATIC

	// Aggregate construction.
	MKLT
	MKTP
	MKDT
	MKSET
	MKFN
	MKBND // MKWEAK-equivalent: weak-reference construction

	// Call, return, yield.
	CALL
	RET
	YIELD
	// SUSPEND is the explicit cooperative-yield instruction (spec.md
	// §4.7 "Yield"), distinct from YIELD's generator-exhaustion-free
	// suspend: it carries no return value and does not mark a
	// generator's frame specially.
	SUSPEND

	// Attribute / subscript.
	LDATTR
	STATTR
	LDSCOPE
	SUBSCR
	STSUBSCR

	// Logical.
	NOT

	// Panic / defer / trap.
	PANIC
	DEFER
	// TRAP marks the start of a scoped-recover region, its operand the
	// instruction offset of the handler to jump to if the region panics
	// (spec.md "Trap"). UNTRAP marks the region's normal exit: it wraps
	// TOS in an Ok Result and discards the trap marker.
	TRAP
	UNTRAP

	opCodeCount
)

var opNames = [opCodeCount]string{
	NOP: "NOP", ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", IDIV: "IDIV",
	MOD: "MOD", NEG: "NEG", POS: "POS", INC: "INC", DEC: "DEC", INV: "INV",
	LAND: "LAND", LOR: "LOR", LXOR: "LXOR", SHL: "SHL", SHR: "SHR",
	CMP: "CMP", EQST: "EQST",
	JMP: "JMP", JT: "JT", JF: "JF", JTOP: "JTOP", JFOP: "JFOP", JNIL: "JNIL",
	POP: "POP", DUP: "DUP",
	LDLC: "LDLC", STLC: "STLC", LDENC: "LDENC", STENC: "STENC",
	NGV: "NGV", LDGV: "LDGV", STGV: "STGV",
	LSTATIC: "LSTATIC",
	MKLT: "MKLT", MKTP: "MKTP", MKDT: "MKDT", MKSET: "MKSET", MKFN: "MKFN", MKBND: "MKBND",
	CALL: "CALL", RET: "RET", YIELD: "YIELD", SUSPEND: "SUSPEND",
	LDATTR: "LDATTR", STATTR: "STATTR", LDSCOPE: "LDSCOPE",
	SUBSCR: "SUBSCR", STSUBSCR: "STSUBSCR",
	NOT:   "NOT",
	PANIC: "PANIC", DEFER: "DEFER", TRAP: "TRAP", UNTRAP: "UNTRAP",
}

func (op OpCode) String() string {
	if op < opCodeCount && opNames[op] != "" {
		return opNames[op]
	}
	return "UNKNOWN"
}

// ArgWidth classifies how many bytes of inline argument follow an
// opcode's leading byte (spec.md §4.3 dispatch).
type ArgWidth byte

const (
	ArgNone ArgWidth = iota
	ArgI16
	ArgI32
	// ArgI32Flag packs a 16-bit count in the low bytes and an 8-bit
	// flag byte in the top byte (MKFN's closure-count/flags pair, the
	// call opcode's argc/flags pair).
	ArgI32Flag
)

// offsetTable maps an opcode to the width of its inline argument. Total
// instruction length is 1 (opcode byte) + width's byte count.
var offsetTable = [opCodeCount]ArgWidth{
	DUP: ArgI16,
	JMP: ArgI32, JT: ArgI32, JF: ArgI32, JTOP: ArgI32, JFOP: ArgI32, JNIL: ArgI32,
	LDLC: ArgI16, STLC: ArgI16, LDENC: ArgI16, STENC: ArgI16,
	NGV: ArgI32Flag, LDGV: ArgI16, STGV: ArgI16,
	LSTATIC: ArgI16,
	MKLT:    ArgI16, MKTP: ArgI16, MKDT: ArgI16, MKSET: ArgI16,
	MKFN: ArgI32Flag,
	CALL: ArgI32Flag,
	CMP:  ArgI16, EQST: ArgI16,
	LDATTR: ArgI16, STATTR: ArgI16, LDSCOPE: ArgI16,
	TRAP: ArgI32,
}

func (op OpCode) ArgWidth() ArgWidth {
	if op < opCodeCount {
		return offsetTable[op]
	}
	return ArgNone
}

// Len returns the total byte length of an instruction starting with op.
func (op OpCode) Len() int {
	switch op.ArgWidth() {
	case ArgI16:
		return 3
	case ArgI32, ArgI32Flag:
		return 5
	default:
		return 1
	}
}

// DecodeI16 reads a 16-bit little-endian argument following the opcode
// byte at instr[pos].
func DecodeI16(instr []byte, pos int) uint16 {
	return uint16(instr[pos+1]) | uint16(instr[pos+2])<<8
}

// DecodeI32 reads a 32-bit little-endian argument following the opcode
// byte at instr[pos].
func DecodeI32(instr []byte, pos int) uint32 {
	return uint32(instr[pos+1]) | uint32(instr[pos+2])<<8 |
		uint32(instr[pos+3])<<16 | uint32(instr[pos+4])<<24
}

// DecodeI32Flag splits a 32-bit argument into its low-16-bit count and
// high-8-bit flag byte (MKFN closure-count/flags, CALL argc/flags).
func DecodeI32Flag(instr []byte, pos int) (count uint16, flags byte) {
	v := DecodeI32(instr, pos)
	return uint16(v & 0xFFFF), byte(v >> 24)
}

// CallFlag is the 8-bit flag byte accompanying a CALL instruction.
type CallFlag byte

const (
	CallPositional CallFlag = 0
	CallKwParams   CallFlag = 1 << 0
	CallSpread     CallFlag = 1 << 1
)

func (f CallFlag) Has(bit CallFlag) bool { return f&bit != 0 }

// Code is a compiled unit: a flat instruction stream plus the pools it
// references (spec.md §3.5, §4.3).
type Code struct {
	value.Header

	Instr []byte

	StackSize int
	Arity     int

	// Statics holds compile-time constants referenced by LSTATIC.
	Statics []value.Object
	// Names holds global-variable name strings referenced by NGV/LDGV/STGV.
	Names []string
	// Locals holds local-variable name strings, purely descriptive
	// (locals are addressed by slot index at runtime).
	Locals []string
	// Enclosed holds the names of variables captured from an
	// enclosing frame (closure support).
	Enclosed []string

	Hash uint64
	Name string
	Doc  string
}

var TypeCode = &value.Type{Name: "Code", QName: "code", Flags: value.FlagStruct}

func init() {
	TypeCode.Slots = value.Slots{
		IsTrue: func(value.Object) bool { return true },
		Repr: func(o value.Object) (string, error) {
			c := o.(*Code)
			return "<code " + c.Name + ">", nil
		},
	}
}

// New constructs a Code object. instr_end is implicit: len(instr).
func New(name string, instr []byte, stackSize int, statics []value.Object, names, locals, enclosed []string) *Code {
	return &Code{
		Header:    value.NewHeader(TypeCode, value.RefInline),
		Instr:     instr,
		StackSize: stackSize,
		Statics:   statics,
		Names:     names,
		Locals:    locals,
		Enclosed:  enclosed,
		Name:      name,
	}
}
