package indexdata

import (
	"bytes"
	"crypto/md5"
	"testing"

	"github.com/alienxp03/panam-index/lineindex"
	"github.com/alienxp03/panam-index/textenc"
)

func TestStore_AddAllIsAtomic(t *testing.T) {
	var s Store
	block := []byte("a\nbb\nccc\n")
	fast := lineindex.Fast{Offsets: []int64{2, 5, 9}}

	s.AddAll(0, block, 3, fast, textenc.UTF8)

	if got := s.Size(); got != 9 {
		t.Errorf("Size() = %d, want 9", got)
	}
	if got := s.NbLines(); got != 3 {
		t.Errorf("NbLines() = %d, want 3", got)
	}
	if got := s.MaxLength(); got != 3 {
		t.Errorf("MaxLength() = %d, want 3", got)
	}
	if got, ok := s.EncodingGuess(); !ok || got.String() != "UTF-8" {
		t.Errorf("EncodingGuess() = (%v, %v), want (UTF-8, true)", got, ok)
	}
	wantDigest := md5.Sum(block)
	h := s.Hash()
	if h.HashedSize != int64(len(block)) || h.Digest != wantDigest {
		t.Errorf("Hash() = %+v, want size %d digest %x", h, len(block), wantDigest)
	}
}

func TestStore_PosForLineInvariant(t *testing.T) {
	var s Store
	block := []byte("a\nbb\nccc\n")
	fast := lineindex.Fast{Offsets: []int64{2, 5, 9}}
	s.AddAll(0, block, 3, fast, textenc.UTF8)

	n := s.NbLines()
	if got := s.PosForLine(n - 1); got != s.Size() {
		t.Errorf("PosForLine(NbLines()-1) = %d, want Size() = %d", got, s.Size())
	}
	for i := 0; i < n-1; i++ {
		if s.PosForLine(i) > s.PosForLine(i+1) {
			t.Errorf("PosForLine(%d) > PosForLine(%d)", i, i+1)
		}
	}
}

func TestStore_MaxLengthNeverDecreases(t *testing.T) {
	var s Store
	s.AddAll(0, []byte("a\n"), 1, lineindex.Fast{Offsets: []int64{2}}, textenc.UTF8)
	s.AddAll(2, []byte("bb\n"), 2, lineindex.Fast{Offsets: []int64{5}}, textenc.Codec{})
	s.AddAll(5, []byte("c\n"), 1, lineindex.Fast{Offsets: []int64{7}}, textenc.Codec{})

	if got := s.MaxLength(); got != 2 {
		t.Errorf("MaxLength() = %d, want 2", got)
	}
}

func TestStore_Clear(t *testing.T) {
	var s Store
	s.AddAll(0, []byte("a\nbb\n"), 2, lineindex.Fast{Offsets: []int64{2, 5}}, textenc.UTF8)
	s.Clear()

	if got := s.Size(); got != 0 {
		t.Errorf("Size() after Clear = %d, want 0", got)
	}
	if got := s.NbLines(); got != 0 {
		t.Errorf("NbLines() after Clear = %d, want 0", got)
	}
	if h := s.Hash(); h.HashedSize != 0 {
		t.Errorf("Hash().HashedSize after Clear = %d, want 0", h.HashedSize)
	}
}

func TestStore_ClearPreservesForcedEncoding(t *testing.T) {
	var s Store
	s.ForceEncoding(textenc.Windows1252)
	s.AddAll(0, []byte("a\n"), 1, lineindex.Fast{Offsets: []int64{2}}, textenc.UTF8)
	s.Clear()

	got, ok := s.ForcedEncoding()
	if !ok || got.String() != "windows-1252" {
		t.Errorf("ForcedEncoding() after Clear = (%v, %v), want (windows-1252, true)", got, ok)
	}
}

func TestHasher_TruncatesAtPrefixBound(t *testing.T) {
	h := newHasher()
	block := bytes.Repeat([]byte{'x'}, PrefixHashLength+100)
	h.write(0, block)
	h.write(int64(len(block)), []byte("more data that should be ignored"))

	sum := h.sum()
	if sum.HashedSize != PrefixHashLength {
		t.Errorf("HashedSize = %d, want %d", sum.HashedSize, PrefixHashLength)
	}
	want := md5.Sum(block[:PrefixHashLength])
	if sum.Digest != want {
		t.Errorf("Digest mismatch: got %x, want %x", sum.Digest, want)
	}
}
