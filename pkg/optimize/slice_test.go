package optimize

import (
	"testing"
)

func TestPreAllocateSlice(t *testing.T) {
	s := PreAllocateSlice[int](5, 10)
	if len(s) != 5 {
		t.Errorf("expected length 5, got %d", len(s))
	}
	if cap(s) != 10 {
		t.Errorf("expected capacity 10, got %d", cap(s))
	}

	// Capacity below length is clamped up.
	s2 := PreAllocateSlice[int](10, 5)
	if len(s2) != 10 {
		t.Errorf("expected length 10, got %d", len(s2))
	}
	if cap(s2) != 10 {
		t.Errorf("expected capacity 10, got %d", cap(s2))
	}
}

func TestGrowSlice(t *testing.T) {
	s := make([]int, 2, 8)
	s[0], s[1] = 1, 2

	// Within capacity, no reallocation.
	grown := GrowSlice(s, 4)
	if len(grown) != 4 || cap(grown) != 8 {
		t.Errorf("expected len 4 cap 8, got len %d cap %d", len(grown), cap(grown))
	}
	if grown[0] != 1 || grown[1] != 2 {
		t.Error("expected existing elements preserved")
	}

	// Beyond capacity, elements are copied over.
	grown2 := GrowSlice(s, 20)
	if len(grown2) != 20 {
		t.Errorf("expected len 20, got %d", len(grown2))
	}
	if grown2[0] != 1 || grown2[1] != 2 {
		t.Error("expected existing elements preserved after reallocation")
	}
}

func BenchmarkPreAllocateSlice(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := PreAllocateSlice[int](10, 20)
		_ = s
	}
}

func BenchmarkRegularSlice(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := make([]int, 10, 20)
		_ = s
	}
}
