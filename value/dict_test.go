package value

import "testing"

func TestDictSetGetDelete(t *testing.T) {
	d := NewDict()
	if err := d.Set(NewString("a"), NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(NewString("b"), NewInt(2)); err != nil {
		t.Fatal(err)
	}

	v, ok, err := d.Get(NewString("a"))
	if err != nil || !ok {
		t.Fatalf("expected a present, got ok=%v err=%v", ok, err)
	}
	if v.(*Int).Value != 1 {
		t.Fatalf("expected 1, got %v", v)
	}

	if d.Len() != 2 {
		t.Fatalf("expected len 2, got %d", d.Len())
	}

	removed, err := d.Delete(NewString("a"))
	if err != nil || !removed {
		t.Fatalf("expected a removed, got removed=%v err=%v", removed, err)
	}
	if d.Len() != 1 {
		t.Fatalf("expected len 1 after delete, got %d", d.Len())
	}
	if _, ok, _ := d.Get(NewString("a")); ok {
		t.Fatal("expected a to be gone")
	}
}

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	keys := []string{"z", "a", "m", "b"}
	for _, k := range keys {
		if err := d.Set(NewString(k), NewInt(0)); err != nil {
			t.Fatal(err)
		}
	}
	got := d.Keys()
	if len(got) != len(keys) {
		t.Fatalf("expected %d keys, got %d", len(keys), len(got))
	}
	for i, k := range keys {
		if got[i].(*String).Go() != k {
			t.Fatalf("position %d: expected %s, got %v", i, k, got[i])
		}
	}
}

func TestDictOverwritePreservesPosition(t *testing.T) {
	d := NewDict()
	d.Set(NewString("a"), NewInt(1))
	d.Set(NewString("b"), NewInt(2))
	d.Set(NewString("a"), NewInt(99))

	got := d.Keys()
	if got[0].(*String).Go() != "a" || got[1].(*String).Go() != "b" {
		t.Fatalf("expected order [a b], got %v", got)
	}
	v, _, _ := d.Get(NewString("a"))
	if v.(*Int).Value != 99 {
		t.Fatalf("expected overwritten value 99, got %v", v)
	}
}

func TestDictGrowsAndStaysConsistent(t *testing.T) {
	d := NewDict()
	const n = 200
	for i := 0; i < n; i++ {
		if err := d.Set(NewInt(int64(i)), NewInt(int64(i*2))); err != nil {
			t.Fatal(err)
		}
	}
	if d.Len() != n {
		t.Fatalf("expected %d entries, got %d", n, d.Len())
	}
	for i := 0; i < n; i++ {
		v, ok, err := d.Get(NewInt(int64(i)))
		if err != nil || !ok {
			t.Fatalf("missing key %d after growth", i)
		}
		if v.(*Int).Value != int64(i*2) {
			t.Fatalf("key %d: expected %d, got %v", i, i*2, v)
		}
	}
}
