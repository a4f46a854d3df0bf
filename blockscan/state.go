// Package blockscan scans one raw byte block for line terminators,
// tracking the maximum line length (in decoded code points) and
// carrying partial state — an open line, a dangling multi-byte
// sequence, a tab-expansion remainder — across block boundaries.
package blockscan

import "github.com/alienxp03/panam-index/textenc"

// State is the per-operation scratch a full or partial index walks
// forward through doIndex. It is not shared; each running operation
// owns exactly one.
type State struct {
	Codec textenc.Codec

	// MaxLength is the greatest completed line length seen so far, in
	// code points after tab expansion.
	MaxLength int

	// PendingCodepoints and AdditionalSpaces carry the still-open
	// line's measurements across a block boundary: the codepoint count
	// seen so far, and the extra width tabs have added beyond one
	// codepoint each.
	PendingCodepoints int
	AdditionalSpaces  int

	// End is the end offset of the last line emitted.
	End int64

	// Pending holds trailing bytes of the previous block that did not
	// form a complete code unit or a complete multi-byte sequence; the
	// caller prepends them to the next block before calling Scan again.
	Pending []byte
}

// NewState begins scanning with the given codec fixed for the whole
// operation (per textenc.Detect's "don't re-guess mid-file" rule).
func NewState(codec textenc.Codec) *State {
	return &State{Codec: codec}
}
