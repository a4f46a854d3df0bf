package blockscan

import (
	"testing"

	"github.com/alienxp03/panam-index/textenc"
)

func TestScan_SimpleASCIILines(t *testing.T) {
	st := NewState(textenc.UTF8)
	fast := Scan([]byte("a\nbb\nccc\n"), 0, st)

	want := []int64{2, 5, 9}
	if fast.Len() != len(want) {
		t.Fatalf("got %d line ends, want %d", fast.Len(), len(want))
	}
	for i, w := range want {
		if fast.Offsets[i] != w {
			t.Errorf("offset %d = %d, want %d", i, fast.Offsets[i], w)
		}
	}
	if st.MaxLength != 3 {
		t.Errorf("MaxLength = %d, want 3", st.MaxLength)
	}
	if st.End != 9 {
		t.Errorf("End = %d, want 9", st.End)
	}
}

func TestScan_NoTrailingNewlineLeavesOpenLine(t *testing.T) {
	st := NewState(textenc.UTF8)
	fast := Scan([]byte("x\ny"), 0, st)

	if fast.Len() != 1 || fast.Offsets[0] != 2 {
		t.Fatalf("offsets = %v, want [2]", fast.Offsets)
	}
	if st.PendingCodepoints != 1 {
		t.Errorf("PendingCodepoints = %d, want 1 (the open 'y' line)", st.PendingCodepoints)
	}
}

func TestScan_CarriesMaxLengthAcrossBlocks(t *testing.T) {
	st := NewState(textenc.UTF8)
	Scan([]byte("hello "), 0, st)
	fast := Scan([]byte("world\n"), 6, st)

	if fast.Len() != 1 || fast.Offsets[0] != 12 {
		t.Fatalf("offsets = %v, want [12]", fast.Offsets)
	}
	if st.MaxLength != 11 {
		t.Errorf("MaxLength = %d, want 11 (\"hello world\")", st.MaxLength)
	}
}

func TestScan_MultiByteUTF8SplitAcrossBlockBoundary(t *testing.T) {
	// "héllo\n" in UTF-8: h(1) é(2 bytes: C3 A9) l l o \n -> é is split
	// mid-rune across the simulated block boundary.
	line := []byte("h\xc3\xa9llo\n")

	var wholeSt = NewState(textenc.UTF8)
	wholeFast := Scan(line, 0, wholeSt)

	splitAt := 2 // splits right after the first byte of the 2-byte rune
	st := NewState(textenc.UTF8)
	first := append([]byte(nil), line[:splitAt]...)
	fastA := Scan(first, 0, st)
	if fastA.Len() != 0 {
		t.Fatalf("expected no line end in first fragment, got %v", fastA.Offsets)
	}
	if len(st.Pending) == 0 {
		t.Fatalf("expected incomplete multi-byte sequence to be carried as Pending")
	}

	second := append(append([]byte(nil), st.Pending...), line[splitAt:]...)
	fastB := Scan(second, int64(splitAt)-int64(len(st.Pending)), st)

	if fastB.Len() != 1 {
		t.Fatalf("expected one line end after rejoining, got %v", fastB.Offsets)
	}
	if fastB.Offsets[0] != wholeFast.Offsets[0] {
		t.Errorf("split scan line end = %d, want %d (single-block reference)", fastB.Offsets[0], wholeFast.Offsets[0])
	}
	if st.MaxLength != wholeSt.MaxLength {
		t.Errorf("split scan MaxLength = %d, want %d (single-block reference, code points not bytes)", st.MaxLength, wholeSt.MaxLength)
	}
}

func TestScan_TabExpansionCarry(t *testing.T) {
	st := NewState(textenc.UTF8)
	Scan([]byte("a\tb"), 0, st)
	Scan([]byte("c\n"), 3, st)

	// "a\tbc" -> 'a' col0->1, '\t' expands col1->8 (+6 extra), 'b' col8->9,
	// 'c' col9->10: codepoints=4, additional spaces=6, total width=10.
	if st.MaxLength != 10 {
		t.Errorf("MaxLength = %d, want 10", st.MaxLength)
	}
}

func TestScan_UTF16LELineEnds(t *testing.T) {
	st := NewState(textenc.UTF16LE)
	block := []byte{'a', 0, 0x0A, 0, 'b', 0, 0x0A, 0}
	fast := Scan(block, 0, st)

	if fast.Len() != 2 {
		t.Fatalf("got %d line ends, want 2", fast.Len())
	}
	if fast.Offsets[0] != 4 || fast.Offsets[1] != 8 {
		t.Errorf("offsets = %v, want [4 8]", fast.Offsets)
	}
}
