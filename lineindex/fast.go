package lineindex

// Fast is the short buffer of line-end offsets produced by parsing a
// single block. It is built freely (no locking, no anchor encoding)
// and later folded into an Array under the owning store's mutex.
type Fast struct {
	Offsets []int64
}

// Reset clears Fast for reuse across blocks without reallocating.
func (f *Fast) Reset() {
	f.Offsets = f.Offsets[:0]
}

// Append records one line-end offset.
func (f *Fast) Append(offset int64) {
	f.Offsets = append(f.Offsets, offset)
}

// Len returns how many offsets are currently buffered.
func (f *Fast) Len() int {
	return len(f.Offsets)
}
