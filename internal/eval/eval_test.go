package eval

import (
	"testing"

	"github.com/argonlang/argon-rt/fiber"
	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/internal/function"
	"github.com/argonlang/argon-rt/value"
)

func encodeI32(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

// trapProgram builds: TRAP handler; LSTATIC 0; LSTATIC 1; DIV; UNTRAP;
// RET. handlerIP always lands on the RET, which pops whatever a
// Result ended up on the stack — Ok(...) via UNTRAP on the happy path,
// Err(...) pushed directly by unwind's trap short-circuit on panic.
func trapProgram(a, b int64) *code.Code {
	instr := []byte{byte(code.TRAP)}
	instr = append(instr, encodeI32(13)...)
	instr = append(instr, byte(code.LSTATIC), 0, 0)
	instr = append(instr, byte(code.LSTATIC), 1, 0)
	instr = append(instr, byte(code.DIV))
	instr = append(instr, byte(code.UNTRAP))
	instr = append(instr, byte(code.RET))

	c := code.New("trapdiv", instr, 4, []value.Object{value.NewInt(a), value.NewInt(b)}, nil, nil, nil)
	c.Arity = 0
	return c
}

func runProgram(t *testing.T, c *code.Code) (Outcome, value.Object, error) {
	t.Helper()
	fr := frame.New(c, value.NewNamespace(), nil, nil, 1)
	fb := fiber.New(&fiber.Context{}, fr)
	return Run(fb)
}

func TestTrapConvertsPanicToErrResult(t *testing.T) {
	outcome, result, err := runProgram(t, trapProgram(10, 0))
	if err != nil {
		t.Fatalf("trap should absorb the panic, got error %v", err)
	}
	if outcome != Returned {
		t.Fatalf("expected Returned, got %v", outcome)
	}
	res, ok := result.(*value.Result)
	if !ok {
		t.Fatalf("expected a Result, got %T", result)
	}
	if res.IsOk() {
		t.Fatal("expected the division-by-zero panic to surface as an Err Result")
	}
}

func TestTrapWrapsSuccessInOk(t *testing.T) {
	outcome, result, err := runProgram(t, trapProgram(10, 2))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Returned {
		t.Fatalf("expected Returned, got %v", outcome)
	}
	res, ok := result.(*value.Result)
	if !ok {
		t.Fatalf("expected a Result, got %T", result)
	}
	if !res.IsOk() {
		t.Fatal("expected a successful division to surface as an Ok Result")
	}
	v, err := res.Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if v.(*value.Int).Value != 5 {
		t.Fatalf("expected 5, got %v", v)
	}
}

// TestCallDispatchesNestedBytecodeFrame exercises a CALL from a
// non-top-level frame to another bytecode-backed function (not a
// NewNative), the scenario where a recursive Run call would re-decode
// the same CALL instruction against an already-drained stack: `main`
// calls `inc(41)`, a real Argon function with its own frame, locals
// and RET, and expects the result pushed back correctly with `main`
// resuming right after its own CALL.
func TestCallDispatchesNestedBytecodeFrame(t *testing.T) {
	incInstr := []byte{byte(code.LDLC), 0, 0, byte(code.LSTATIC), 0, 0, byte(code.ADD), byte(code.RET)}
	incCode := code.New("inc", incInstr, 4, []value.Object{value.NewInt(1)}, nil, []string{"x"}, nil)
	incCode.Arity = 1
	incFn := function.New("inc", "inc", "", incCode, nil, 1, 0, nil, nil)

	callInstr := []byte{byte(code.LSTATIC), 0, 0, byte(code.LSTATIC), 1, 0, byte(code.CALL)}
	callInstr = append(callInstr, encodeI32(1)...)
	callInstr = append(callInstr, byte(code.RET))

	mainCode := code.New("main", callInstr, 4, []value.Object{incFn, value.NewInt(41)}, nil, nil, nil)

	outcome, result, err := runProgram(t, mainCode)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Returned {
		t.Fatalf("expected Returned, got %v", outcome)
	}
	if result.(*value.Int).Value != 42 {
		t.Fatalf("expected inc(41) == 42, got %v", result)
	}
}

func TestPanicWithoutTrapPropagatesAsPanicked(t *testing.T) {
	instr := []byte{byte(code.LSTATIC), 0, 0, byte(code.LSTATIC), 1, 0, byte(code.DIV)}
	c := code.New("div", instr, 4, []value.Object{value.NewInt(10), value.NewInt(0)}, nil, nil, nil)

	outcome, _, err := runProgram(t, c)
	if outcome != Panicked {
		t.Fatalf("expected Panicked with no trap in scope, got %v", outcome)
	}
	if err == nil {
		t.Fatal("expected a propagated error")
	}
}
