package textenc

import (
	"bytes"
	"unicode/utf8"
)

// Detect guesses the encoding of a byte block, normally the first
// block read from a file. If forced is non-nil, it is returned
// unconditionally and the block is never inspected — once a forced
// encoding is configured, the detector is bypassed for the whole
// operation.
func Detect(block []byte, forced *Codec) Codec {
	if forced != nil {
		return *forced
	}
	if c, ok := detectBOM(block); ok {
		return c
	}
	if c, ok := guessStatistical(block); ok {
		return c
	}
	return Default
}

// detectBOM checks the four-, then three-, then two-byte BOM forms.
// UTF-32LE's BOM (FF FE 00 00) has UTF-16LE's BOM (FF FE) as a
// prefix, so the 32-bit forms must be checked first.
func detectBOM(b []byte) (Codec, bool) {
	switch {
	case bytes.HasPrefix(b, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return UTF32BE, true
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return UTF32LE, true
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8, true
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		return UTF16BE, true
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE}):
		return UTF16LE, true
	}
	return Codec{}, false
}

// guessStatistical is the non-BOM fallback: valid UTF-8 is trusted
// outright, otherwise a block with a low proportion of high-bit bytes
// is treated as a single-byte Windows-1252 file. Anything noisier than
// that isn't confident enough to override the system default.
func guessStatistical(b []byte) (Codec, bool) {
	if len(b) == 0 {
		return Codec{}, false
	}
	if utf8.Valid(b) {
		return UTF8, true
	}
	highBit := 0
	for _, c := range b {
		if c >= 0x80 {
			highBit++
		}
	}
	if ratio := float64(highBit) / float64(len(b)); ratio > 0 && ratio < 0.3 {
		return Windows1252, true
	}
	return Codec{}, false
}

