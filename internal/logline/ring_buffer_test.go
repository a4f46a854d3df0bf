package logline

import "testing"

func TestRingBuffer_RetainsMostRecent(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Add(Entry{Message: string(rune('a' + i))})
	}

	all := rb.All()
	if len(all) != 3 {
		t.Fatalf("All() len = %d, want 3", len(all))
	}
	want := []string{"c", "d", "e"}
	for i, e := range all {
		if e.Message != want[i] {
			t.Errorf("All()[%d].Message = %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestRingBuffer_FewerThanCapacity(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Add(Entry{Message: "only"})

	all := rb.All()
	if len(all) != 1 || all[0].Message != "only" {
		t.Fatalf("All() = %+v, want one entry \"only\"", all)
	}
}

func TestRingBuffer_Empty(t *testing.T) {
	rb := NewRingBuffer(4)
	if all := rb.All(); all != nil {
		t.Errorf("All() on empty buffer = %+v, want nil", all)
	}
}

func BenchmarkRingBuffer_Add(b *testing.B) {
	rb := NewRingBuffer(10000)
	entry := Entry{Message: "benchmark entry"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb.Add(entry)
	}
}
