package formula

import "testing"

func TestIndexToAlphaRoundTrip(t *testing.T) {
	indices := []int{0, 1, 25, 26, 27, 51, 52, 701, 702, 703}
	for _, idx := range indices {
		letters := IndexToAlpha(idx)
		got, ok := AlphaToIndex(letters)
		if !ok {
			t.Fatalf("AlphaToIndex(%q) failed round-tripping index %d", letters, idx)
		}
		if got != idx {
			t.Errorf("round trip mismatch: index %d -> %q -> %d", idx, letters, got)
		}
	}
}

func TestIndexToAlphaKnownValues(t *testing.T) {
	cases := map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for idx, want := range cases {
		if got := IndexToAlpha(idx); got != want {
			t.Errorf("IndexToAlpha(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestParseReferenceCanonicalizesCase(t *testing.T) {
	lower, ok := ParseReference("a1")
	if !ok {
		t.Fatal("expected a1 to parse")
	}
	upper, ok := ParseReference("A1")
	if !ok {
		t.Fatal("expected A1 to parse")
	}
	if !lower.Equal(upper) {
		t.Errorf("ParseReference(a1) != ParseReference(A1): %+v vs %+v", lower, upper)
	}
	if lower.ToText() != "A1" {
		t.Errorf("ToText() = %q, want canonical uppercase A1", lower.ToText())
	}
}

func TestParseReferencePartialForms(t *testing.T) {
	t.Run("column only", func(t *testing.T) {
		ref, ok := ParseReference("C")
		if !ok || !ref.HasCol || ref.HasRow {
			t.Fatalf("ParseReference(C) = %+v, %v", ref, ok)
		}
	})
	t.Run("row only", func(t *testing.T) {
		ref, ok := ParseReference("42")
		if !ok || !ref.HasRow || ref.HasCol {
			t.Fatalf("ParseReference(42) = %+v, %v", ref, ok)
		}
		if ref.Row != 41 {
			t.Errorf("row index = %d, want 41 (0-based)", ref.Row)
		}
	})
	t.Run("rejects trailing garbage", func(t *testing.T) {
		if _, ok := ParseReference("A1x"); ok {
			t.Error("expected A1x to fail")
		}
	})
	t.Run("rejects empty", func(t *testing.T) {
		if _, ok := ParseReference(""); ok {
			t.Error("expected empty string to fail")
		}
	})
}

func TestRangeSetSymmetry(t *testing.T) {
	a := Cell(0, 0)
	b := Cell(2, 2)
	forward := RangeSet(a, b)
	backward := RangeSet(b, a)
	if forward.Len() != backward.Len() {
		t.Fatalf("range lengths differ: %d vs %d", forward.Len(), backward.Len())
	}
	seen := make(map[Reference]bool, forward.Len())
	for _, r := range forward.Refs() {
		seen[r] = true
	}
	for _, r := range backward.Refs() {
		if !seen[r] {
			t.Errorf("backward range contains %v not in forward range", r)
		}
	}
	if forward.Len() != 9 {
		t.Errorf("3x3 range should have 9 cells, got %d", forward.Len())
	}
}

func TestRangeSetDegenerateAxes(t *testing.T) {
	t.Run("row only range", func(t *testing.T) {
		set := RangeSet(RowRef(0), RowRef(2))
		if set.Len() != 3 {
			t.Errorf("expected 3 whole-row refs, got %d", set.Len())
		}
	})
	t.Run("column only range", func(t *testing.T) {
		set := RangeSet(ColRef(0), ColRef(1))
		if set.Len() != 2 {
			t.Errorf("expected 2 whole-column refs, got %d", set.Len())
		}
	})
}

func TestUnionAndIntersect(t *testing.T) {
	a := NewReferenceSet(Cell(0, 0), Cell(0, 1))
	b := NewReferenceSet(Cell(0, 1), Cell(0, 2))

	union := Union(a, b)
	if union.Len() != 3 {
		t.Errorf("union length = %d, want 3", union.Len())
	}

	intersection := Intersect(a, b)
	if intersection.Len() != 1 {
		t.Fatalf("intersection length = %d, want 1", intersection.Len())
	}
	if only, _ := intersection.Single(); !only.Equal(Cell(0, 1)) {
		t.Errorf("intersection = %v, want B1", only)
	}
}
