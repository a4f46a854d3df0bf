package lineindex

import "testing"

func TestArray_AppendAndAt(t *testing.T) {
	var a Array
	offsets := []int64{2, 5, 9}
	a.AppendBatch(offsets)

	if got := a.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	for i, want := range offsets {
		if got := a.At(i); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
	if got := a.LastOrZero(); got != 9 {
		t.Errorf("LastOrZero() = %d, want 9", got)
	}
}

func TestArray_EmptyLastOrZero(t *testing.T) {
	var a Array
	if got := a.LastOrZero(); got != 0 {
		t.Errorf("LastOrZero() on empty array = %d, want 0", got)
	}
	if got := a.Len(); got != 0 {
		t.Errorf("Len() on empty array = %d, want 0", got)
	}
}

func TestArray_Clear(t *testing.T) {
	var a Array
	a.AppendBatch([]int64{2, 5, 9})
	a.Clear()

	if got := a.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	if got := a.LastOrZero(); got != 0 {
		t.Errorf("LastOrZero() after Clear = %d, want 0", got)
	}
}

func TestArray_MonotonicAcrossManyBlocks(t *testing.T) {
	var a Array
	const n = anchorStride*3 + 17
	offset := int64(0)
	for i := 0; i < n; i++ {
		offset += int64(i%37) + 1
		a.Append(offset)
	}

	if got := a.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}
	var prev int64 = -1
	for i := 0; i < n; i++ {
		v := a.At(i)
		if v <= prev {
			t.Fatalf("At(%d) = %d is not strictly greater than previous %d", i, v, prev)
		}
		prev = v
	}
}

func TestArray_TruncateTo(t *testing.T) {
	var a Array
	a.AppendBatch([]int64{2, 5, 9, 14})
	a.TruncateTo(3)

	if got := a.Len(); got != 3 {
		t.Fatalf("Len() after TruncateTo(3) = %d, want 3", got)
	}
	if got := a.LastOrZero(); got != 9 {
		t.Errorf("LastOrZero() after TruncateTo(3) = %d, want 9", got)
	}

	a.Append(20)
	if got := a.Len(); got != 4 {
		t.Fatalf("Len() after re-append = %d, want 4", got)
	}
	if got := a.At(3); got != 20 {
		t.Errorf("At(3) after re-append = %d, want 20", got)
	}
}

func TestArray_TruncateToZeroClears(t *testing.T) {
	var a Array
	a.AppendBatch([]int64{2, 5})
	a.TruncateTo(0)

	if got := a.Len(); got != 0 {
		t.Errorf("Len() after TruncateTo(0) = %d, want 0", got)
	}
}

func TestArray_TruncateToAcrossAnchorBoundary(t *testing.T) {
	var a Array
	const n = anchorStride + 5
	for i := 0; i < n; i++ {
		a.Append(int64(i) + 1)
	}
	a.TruncateTo(anchorStride + 1)

	if got := a.Len(); got != anchorStride+1 {
		t.Fatalf("Len() = %d, want %d", got, anchorStride+1)
	}
	if got := a.At(anchorStride); got != anchorStride+1 {
		t.Errorf("At(anchorStride) = %d, want %d", got, anchorStride+1)
	}
}

func TestArray_SnapshotIsStableUnderFurtherAppends(t *testing.T) {
	var a Array
	a.AppendBatch([]int64{2, 5, 9})
	snap := a.Snapshot()

	a.Append(20)
	a.Append(35)

	if got := snap.Len(); got != 3 {
		t.Fatalf("snapshot Len() = %d, want 3 (unaffected by later appends)", got)
	}
	if got := snap.At(2); got != 9 {
		t.Errorf("snapshot At(2) = %d, want 9", got)
	}
	if got := a.Len(); got != 5 {
		t.Errorf("live array Len() = %d, want 5", got)
	}
}
