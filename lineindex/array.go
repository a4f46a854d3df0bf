// Package lineindex implements the compact, append-only line-position
// array: a mapping from line number to the byte offset one past that
// line's terminating newline.
package lineindex

// anchorStride bounds how many lines share one 64-bit anchor. Offsets
// within a block are stored as 32-bit deltas from the block's anchor,
// which halves memory on large files versus a flat []int64.
const anchorStride = 1024

type block struct {
	anchor int64
	deltas []uint32
}

// Array is an ordered, append-only sequence of byte offsets. Offsets
// must be appended strictly non-decreasing; callers serialize mutation
// (normally via indexdata.Store's mutex) themselves, Array has no lock
// of its own.
type Array struct {
	blocks []*block
	count  int
}

// Append adds one offset to the end of the array. offset must be
// greater than or equal to the last appended offset (see Array's doc
// comment); it must also be within 4 GiB of the current block's
// anchor, which holds for any real file since a block rolls over
// every anchorStride lines.
func (a *Array) Append(offset int64) {
	if a.count > 0 && offset < a.At(a.count-1) {
		panic("lineindex: Append called with an offset lower than the array's last entry")
	}
	last := a.tailBlock(offset)
	delta := offset - last.anchor
	if delta > 1<<32-1 {
		// A single line spanning more than 4 GiB within one anchor
		// block is not realistic for doIndex's megabyte-sized reads.
		// Panic instead of silently starting a short block, which
		// would desynchronize At's i/anchorStride indexing for every
		// line appended afterward.
		panic("lineindex: Append offset too far past the current anchor")
	}
	last.deltas = append(last.deltas, uint32(delta))
	a.count++
}

// AppendBatch appends every offset in order.
func (a *Array) AppendBatch(offsets []int64) {
	for _, o := range offsets {
		a.Append(o)
	}
}

// Len returns the number of indexed lines.
func (a *Array) Len() int {
	return a.count
}

// At returns the end offset of line i. Callers must ensure 0 <= i < Len().
func (a *Array) At(i int) int64 {
	b := a.blocks[i/anchorStride]
	return b.anchor + int64(b.deltas[i%anchorStride])
}

// LastOrZero returns the end offset of the final line, or zero if empty.
func (a *Array) LastOrZero() int64 {
	if a.count == 0 {
		return 0
	}
	return a.At(a.count - 1)
}

// Clear resets the array to empty.
func (a *Array) Clear() {
	a.blocks = nil
	a.count = 0
}

// TruncateTo discards every entry from index n onward, keeping only
// the first n. Used to roll back a synthesized end-of-file entry
// before re-indexing a line that has since grown.
func (a *Array) TruncateTo(n int) {
	if n >= a.count {
		return
	}
	if n <= 0 {
		a.Clear()
		return
	}
	blockIdx := (n - 1) / anchorStride
	within := (n-1)%anchorStride + 1
	kept := *a.blocks[blockIdx]
	kept.deltas = append(make([]uint32, 0, anchorStride), kept.deltas[:within]...)
	a.blocks = a.blocks[:blockIdx+1]
	a.blocks[blockIdx] = &kept
	a.count = n
}

// Snapshot returns a read-only, point-in-time view of the array. Sealed
// blocks are shared by reference (they are never mutated again); the
// one block still accepting appends is copied, since it's at most
// anchorStride entries (a few KiB).
func (a *Array) Snapshot() Snapshot {
	blocks := make([]*block, len(a.blocks))
	copy(blocks, a.blocks)
	if n := len(blocks); n > 0 && len(blocks[n-1].deltas) < anchorStride {
		tail := *blocks[n-1]
		tail.deltas = append([]uint32(nil), tail.deltas...)
		blocks[n-1] = &tail
	}
	return Snapshot{blocks: blocks, count: a.count}
}

func (a *Array) tailBlock(offset int64) *block {
	if n := len(a.blocks); n > 0 && len(a.blocks[n-1].deltas) < anchorStride {
		return a.blocks[n-1]
	}
	return a.newBlock(offset)
}

func (a *Array) newBlock(anchor int64) *block {
	b := &block{anchor: anchor, deltas: make([]uint32, 0, anchorStride)}
	a.blocks = append(a.blocks, b)
	return b
}

// Snapshot is an immutable view produced by Array.Snapshot.
type Snapshot struct {
	blocks []*block
	count  int
}

// Len returns the number of lines captured in the snapshot.
func (s Snapshot) Len() int { return s.count }

// At returns the end offset of line i, as of the snapshot.
func (s Snapshot) At(i int) int64 {
	b := s.blocks[i/anchorStride]
	return b.anchor + int64(b.deltas[i%anchorStride])
}
