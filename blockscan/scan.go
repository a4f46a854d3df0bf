package blockscan

import (
	"bytes"

	"golang.org/x/text/transform"

	"github.com/alienxp03/panam-index/lineindex"
)

// tabWidth is the terminal tab stop used for max-length tracking (an
// implementation-defined policy knob per the additional-spaces carry).
const tabWidth = 8

// Scan scans one raw byte block for line terminators in st.Codec's
// byte order. blockStart is the file offset of block[0]. It returns
// the line-end offsets discovered in this block and mutates st's
// carries so the next block's Scan call picks up where this one left
// off. The caller is responsible for prepending st.Pending to the next
// block's raw bytes before calling Scan again.
func Scan(block []byte, blockStart int64, st *State) lineindex.Fast {
	var fast lineindex.Fast

	unit := st.Codec.UnitSize()
	term := st.Codec.NewlineBytes()
	n := len(block)

	scanLimit := n - len(term) + 1
	segStart := 0
	for i := 0; i < scanLimit; i += unit {
		if bytes.Equal(block[i:i+len(term)], term) {
			end := blockStart + int64(i) + int64(len(term))
			measureSegment(st, block[segStart:i])
			if total := st.PendingCodepoints + st.AdditionalSpaces; total > st.MaxLength {
				st.MaxLength = total
			}
			st.PendingCodepoints = 0
			st.AdditionalSpaces = 0
			st.End = end
			fast.Append(end)
			segStart = i + len(term)
		}
	}

	tailEnd := n
	if st.Codec.VariableWidth() {
		tailEnd = n - incompleteUTF8TailLen(block[segStart:n])
	} else if rem := (n - segStart) % unit; rem != 0 {
		tailEnd = n - rem
	}
	if tailEnd < segStart {
		tailEnd = segStart
	}

	measureSegment(st, block[segStart:tailEnd])

	if tailEnd < n {
		st.Pending = append(st.Pending[:0], block[tailEnd:n]...)
	} else {
		st.Pending = st.Pending[:0]
	}

	return fast
}

// measureSegment decodes segment and folds its codepoint count and
// tab-expansion width into st's open-line carry.
func measureSegment(st *State, segment []byte) {
	if len(segment) == 0 {
		return
	}
	decoded, _, err := transform.Bytes(st.Codec.Encoding().NewDecoder(), segment)
	if err != nil {
		return
	}
	column := st.PendingCodepoints + st.AdditionalSpaces
	for _, r := range string(decoded) {
		st.PendingCodepoints++
		if r == '\t' {
			width := tabWidth - column%tabWidth
			st.AdditionalSpaces += width - 1
			column += width
		} else {
			column++
		}
	}
}

// incompleteUTF8TailLen returns how many trailing bytes of b form an
// incomplete multi-byte UTF-8 sequence (0 for single-byte codecs or a
// block ending cleanly on a rune boundary).
func incompleteUTF8TailLen(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	limit := len(b) - 4
	if limit < 0 {
		limit = 0
	}
	for i := len(b) - 1; i >= limit; i-- {
		c := b[i]
		if c < 0x80 {
			return 0
		}
		if c >= 0xC0 {
			seqLen := utf8SeqLen(c)
			have := len(b) - i
			if have < seqLen {
				return have
			}
			return 0
		}
		// continuation byte (0x80-0xBF): keep walking back to find the lead byte
	}
	return 0
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	}
	return 1
}

