package value

import "testing"

func TestSetAddContainsRemove(t *testing.T) {
	s, err := NewSet(NewInt(1), NewInt(2), NewInt(2), NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected duplicates collapsed to 3 elements, got %d", s.Len())
	}
	ok, err := s.Contains(NewInt(2))
	if err != nil || !ok {
		t.Fatalf("expected 2 present, ok=%v err=%v", ok, err)
	}
	removed, err := s.Remove(NewInt(2))
	if err != nil || !removed {
		t.Fatalf("expected 2 removed, got removed=%v err=%v", removed, err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 elements after remove, got %d", s.Len())
	}
}

func TestSetUnionIntersectDifference(t *testing.T) {
	a, _ := NewSet(NewInt(1), NewInt(2), NewInt(3))
	b, _ := NewSet(NewInt(2), NewInt(3), NewInt(4))

	u, err := a.Union(b)
	if err != nil || u.Len() != 4 {
		t.Fatalf("expected union of 4, got %d err=%v", u.Len(), err)
	}

	i, err := a.Intersect(b)
	if err != nil || i.Len() != 2 {
		t.Fatalf("expected intersect of 2, got %d err=%v", i.Len(), err)
	}

	d, err := a.Difference(b)
	if err != nil || d.Len() != 1 {
		t.Fatalf("expected difference of 1, got %d err=%v", d.Len(), err)
	}
	ok, _ := d.Contains(NewInt(1))
	if !ok {
		t.Fatal("expected difference to contain 1")
	}

	sd, err := a.SymmetricDifference(b)
	if err != nil || sd.Len() != 2 {
		t.Fatalf("expected symmetric difference of 2, got %d err=%v", sd.Len(), err)
	}
}

func TestSetEquality(t *testing.T) {
	a, _ := NewSet(NewInt(1), NewInt(2))
	b, _ := NewSet(NewInt(2), NewInt(1))
	eq, err := Eq(a, b)
	if err != nil || !eq {
		t.Fatalf("expected set equality regardless of insertion order, got eq=%v err=%v", eq, err)
	}
}
