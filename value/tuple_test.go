package value

import "testing"

func TestTupleReprAndHash(t *testing.T) {
	tp := NewTuple(NewInt(1), NewInt(2), NewInt(3))
	r, err := Repr(tp)
	if err != nil {
		t.Fatal(err)
	}
	if r != "(1, 2, 3)" {
		t.Fatalf("expected (1, 2, 3), got %s", r)
	}

	h1, err := Hash(tp)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Hash(NewTuple(NewInt(1), NewInt(2), NewInt(3)))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("equal tuples must hash equal")
	}
}

func TestTupleSingletonReprHasTrailingComma(t *testing.T) {
	r, err := Repr(NewTuple(NewInt(1)))
	if err != nil {
		t.Fatal(err)
	}
	if r != "(1,)" {
		t.Fatalf("expected (1,), got %s", r)
	}
}

func TestTupleEquality(t *testing.T) {
	a := NewTuple(NewInt(1), NewInt(2))
	b := NewTuple(NewInt(1), NewInt(2))
	c := NewTuple(NewInt(1), NewInt(3))

	eq, err := Eq(a, b)
	if err != nil || !eq {
		t.Fatalf("expected equal, got eq=%v err=%v", eq, err)
	}
	eq, err = Eq(a, c)
	if err != nil || eq {
		t.Fatalf("expected not equal, got eq=%v err=%v", eq, err)
	}
}

func TestTupleNegativeIndexAndSlice(t *testing.T) {
	tp := NewTuple(NewInt(10), NewInt(20), NewInt(30))
	sub := tp.Type().Slots.Subscript

	v, err := sub.GetItem(tp, NewInt(-1))
	if err != nil {
		t.Fatal(err)
	}
	if v.(*Int).Value != 30 {
		t.Fatalf("expected 30, got %v", v)
	}

	if _, err := sub.GetItem(tp, NewInt(5)); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
