package function

import (
	"testing"

	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/value"
)

func TestDispatchNativeFullCall(t *testing.T) {
	fn := NewNative("add", "add", "", func(args []value.Object) (value.Object, error) {
		return value.NewInt(args[0].(*value.Int).Value + args[1].(*value.Int).Value), nil
	}, nil, 2, 0)

	out, err := Dispatch(fn, []value.Object{value.NewInt(2), value.NewInt(3)}, nil, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Frame != nil {
		t.Fatal("native dispatch should not produce a frame")
	}
	if out.Value.(*value.Int).Value != 5 {
		t.Fatalf("expected 5, got %v", out.Value)
	}
}

func TestDispatchPartialApplication(t *testing.T) {
	fn := NewNative("add3", "add3", "", func(args []value.Object) (value.Object, error) {
		sum := int64(0)
		for _, a := range args {
			sum += a.(*value.Int).Value
		}
		return value.NewInt(sum), nil
	}, nil, 3, 0)

	out, err := Dispatch(fn, []value.Object{value.NewInt(1)}, nil, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	partial, ok := out.Value.(*Function)
	if !ok {
		t.Fatalf("expected under-applied call to return a Function, got %T", out.Value)
	}
	if len(partial.Currying) != 1 {
		t.Fatalf("expected 1 curried arg, got %d", len(partial.Currying))
	}

	out2, err := Dispatch(partial, []value.Object{value.NewInt(2), value.NewInt(3)}, nil, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out2.Value.(*value.Int).Value != 6 {
		t.Fatalf("expected 6 after supplying remaining args, got %v", out2.Value)
	}
}

func TestDispatchVariadicBundlesTail(t *testing.T) {
	var gotLen int
	fn := NewNative("va", "va", "", func(args []value.Object) (value.Object, error) {
		tail := args[len(args)-1].(*value.List)
		gotLen = tail.Len()
		return value.NilValue, nil
	}, nil, 1, Variadic)

	_, err := Dispatch(fn, []value.Object{value.NewInt(1), value.NewInt(2), value.NewInt(3)}, nil, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if gotLen != 2 {
		t.Fatalf("expected 2 variadic tail args, got %d", gotLen)
	}
}

func TestDispatchArityMismatchWithoutVariadicErrors(t *testing.T) {
	fn := NewNative("one", "one", "", func(args []value.Object) (value.Object, error) {
		return value.NilValue, nil
	}, nil, 1, 0)

	_, err := Dispatch(fn, []value.Object{value.NewInt(1), value.NewInt(2)}, nil, nil, 1)
	if err == nil {
		t.Fatal("expected arity error for over-application without Variadic flag")
	}
}

func TestDispatchRejectsUnexpectedKwarg(t *testing.T) {
	fn := NewNative("f", "f", "", func(args []value.Object) (value.Object, error) {
		return value.NilValue, nil
	}, []Param{{Name: "x"}}, 1, 0)

	kwargs := value.NewDict()
	if err := kwargs.Set(value.NewString("bogus"), value.NewInt(1)); err != nil {
		t.Fatal(err)
	}

	_, err := Dispatch(fn, []value.Object{value.NewInt(1)}, kwargs, nil, 1)
	if err == nil {
		t.Fatal("expected error for an unexpected keyword argument")
	}
}

func TestGeneratorProtocolLifecycle(t *testing.T) {
	c := code.New("gen", nil, 4, nil, nil, []string{"x"}, nil)
	c.Arity = 1
	fn := New("gen", "gen", "", c, nil, 1, Generator, nil, nil)

	const fiberA, fiberB uintptr = 1, 2

	out, err := Dispatch(fn, []value.Object{value.NewInt(0)}, nil, nil, fiberA)
	if err != nil {
		t.Fatal(err)
	}
	if out.Frame != nil || out.Value != fn {
		t.Fatal("first generator call should return the function itself, not a frame")
	}

	if _, err := Dispatch(fn, nil, nil, nil, fiberB); err == nil {
		t.Fatal("expected reentry from a different fiber to be refused")
	}

	out2, err := Dispatch(fn, nil, nil, nil, fiberA)
	if err != nil {
		t.Fatal(err)
	}
	if out2.Frame == nil {
		t.Fatal("resume call from the owning fiber should hand back the stored frame")
	}

	fn.GenExhausted()
	if _, err := Dispatch(fn, nil, nil, nil, fiberA); err == nil {
		t.Fatal("expected exhausted generator to error on further calls")
	}
}
