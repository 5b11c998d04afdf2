package engine

import "testing"

func TestRangeTreeLargestRange(t *testing.T) {
	leaves := []Minute{10, 20, 30, 40, 50}
	tree := NewRangeTree(leaves)

	tests := []struct {
		name     string
		from, to Minute
		wantA    Minute
		wantB    Minute
		wantOK   bool
	}{
		{"exact single leaf", 20, 20, 20, 20, true},
		{"spans all leaves", 0, 100, 10, 50, true},
		{"spans middle leaves", 15, 45, 20, 40, true},
		{"from below first, to below first", 0, 5, 0, 0, false},
		{"from after last, to after last", 60, 70, 0, 0, false},
		{"from greater than to", 40, 10, 0, 0, false},
		{"touches only first leaf", 0, 10, 10, 10, true},
		{"touches only last leaf", 50, 100, 50, 50, true},
		{"gap between observed leaves still narrows", 21, 39, 30, 30, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, b, ok := tree.LargestRange(tc.from, tc.to)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if a != tc.wantA || b != tc.wantB {
				t.Fatalf("got (%d, %d), want (%d, %d)", a, b, tc.wantA, tc.wantB)
			}
		})
	}
}

func TestRangeTreeSingleLeaf(t *testing.T) {
	tree := NewRangeTree([]Minute{42})

	if a, b, ok := tree.LargestRange(0, 100); !ok || a != 42 || b != 42 {
		t.Fatalf("got (%d, %d, %v), want (42, 42, true)", a, b, ok)
	}
	if _, _, ok := tree.LargestRange(0, 10); ok {
		t.Fatalf("expected no match below the only leaf")
	}
}

func TestRangeTreeEmpty(t *testing.T) {
	tree := NewRangeTree(nil)
	if _, _, ok := tree.LargestRange(0, 10); ok {
		t.Fatalf("expected no match on an empty tree")
	}
}
