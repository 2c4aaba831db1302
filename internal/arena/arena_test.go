package arena

import "testing"

func TestAddReturnsDistinctGrowingIndices(t *testing.T) {
	a := New[int](1024)
	i0, err := a.Add(10)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	i1, err := a.Add(20)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if i0 == i1 {
		t.Fatalf("Add returned the same index twice: %v", i0)
	}
	if *a.Get(i0) != 10 || *a.Get(i1) != 20 {
		t.Fatalf("Get returned wrong values: %v, %v", *a.Get(i0), *a.Get(i1))
	}
}

func TestAddOutOfMemory(t *testing.T) {
	a := New[int64](8) // room for exactly one int64
	if _, err := a.Add(1); err != nil {
		t.Fatalf("first Add should fit: %v", err)
	}
	if _, err := a.Add(2); err != ErrOutOfMemory {
		t.Fatalf("second Add error = %v, want ErrOutOfMemory", err)
	}
}

func TestAddSliceContiguousAndMutable(t *testing.T) {
	a := New[int](1024)
	idx, err := a.AddSlice([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("AddSlice: %v", err)
	}
	if idx.Len != 3 {
		t.Fatalf("idx.Len = %d, want 3", idx.Len)
	}
	got := a.GetSlice(idx)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("GetSlice = %v, want [1 2 3]", got)
	}
	got[1] = 42
	if (*a.Get(Index[int](idx.Start + 1))) != 42 {
		t.Fatalf("mutation through GetSlice did not propagate")
	}
}

func TestAddSliceRejectsPartialAllocation(t *testing.T) {
	a := New[int32](12) // room for 3 int32s
	if _, err := a.Add(1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := a.AddSlice([]int32{1, 2, 3}); err != ErrOutOfMemory {
		t.Fatalf("AddSlice error = %v, want ErrOutOfMemory", err)
	}
	if a.Len() != 1 {
		t.Fatalf("a.Len() = %d after a rejected AddSlice, want 1 (no partial allocation)", a.Len())
	}
}

func TestNullIndexIsInvalid(t *testing.T) {
	n := NullIndex[string]()
	if n.Valid() {
		t.Fatalf("NullIndex should be invalid")
	}
	a := New[string](1024)
	idx, err := a.Add("x")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !idx.Valid() {
		t.Fatalf("a real index should be valid")
	}
}

func TestResetReclaimsCapacityNotBackingArray(t *testing.T) {
	a := New[int](8 * 8) // room for 8 ints (assuming 8-byte int)
	if _, err := a.Add(1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := a.Stats()
	a.Reset()
	after := a.Stats()
	if after.Elements != 0 {
		t.Fatalf("after Reset, Elements = %d, want 0", after.Elements)
	}
	if after.Capacity != before.Capacity {
		t.Fatalf("Reset changed reserved capacity: %d -> %d", before.Capacity, after.Capacity)
	}
	if _, err := a.Add(2); err != nil {
		t.Fatalf("Add after Reset: %v", err)
	}
}

func TestStatsReportsOccupancy(t *testing.T) {
	a := New[int64](80) // 10 elements
	for i := 0; i < 4; i++ {
		if _, err := a.Add(int64(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	s := a.Stats()
	if s.Elements != 4 {
		t.Fatalf("Elements = %d, want 4", s.Elements)
	}
	if s.Capacity != 10 {
		t.Fatalf("Capacity = %d, want 10", s.Capacity)
	}
	if s.Bytes != 32 {
		t.Fatalf("Bytes = %d, want 32", s.Bytes)
	}
	if s.MaxBytes != 80 {
		t.Fatalf("MaxBytes = %d, want 80", s.MaxBytes)
	}
}
