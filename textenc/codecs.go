// Package textenc detects and represents the text encoding of an
// indexed file: BOM sniffing, a statistical fallback guess, and the
// fixed set of codecs the block scanner needs (newline terminator
// bytes, code-unit width, code-point counting).
package textenc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// Codec names a text encoding and the constants the block scanner
// needs to find line terminators and measure line length in code
// points rather than bytes.
type Codec struct {
	name          string
	enc           encoding.Encoding
	newline       []byte
	unitSize      int
	variableWidth bool
}

func (c Codec) String() string { return c.name }

// VariableWidth reports whether code units can span more than one
// byte (UTF-8's multi-byte runes) as opposed to a fixed-width codec
// (single-byte code pages, or UTF-16/32 whose code units are already
// handled by UnitSize).
func (c Codec) VariableWidth() bool { return c.variableWidth }

// NewlineBytes returns the encoded U+000A terminator in this codec's
// byte order.
func (c Codec) NewlineBytes() []byte { return c.newline }

// NewlineWidth is len(NewlineBytes()).
func (c Codec) NewlineWidth() int { return len(c.newline) }

// UnitSize is the number of bytes per code unit (1 for UTF-8 and the
// single-byte code pages, 2 for UTF-16, 4 for UTF-32).
func (c Codec) UnitSize() int { return c.unitSize }

// Encoding exposes the underlying x/text codec for callers that need
// to transcode on demand (the core itself never does).
func (c Codec) Encoding() encoding.Encoding { return c.enc }

// IsZero reports whether c is the unset Codec value.
func (c Codec) IsZero() bool { return c.enc == nil }

// CodepointCount decodes b through this codec and returns the number
// of code points. Invalid trailing bytes belong to the caller (the
// block scanner holds them back as carry); a complete, valid b is
// expected here.
func (c Codec) CodepointCount(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	decoded, _, err := transform.Bytes(c.enc.NewDecoder(), b)
	if err != nil {
		return 0, err
	}
	return utf8.RuneCount(decoded), nil
}

var (
	// UTF8 is the system default encoding.
	UTF8 = Codec{name: "UTF-8", enc: unicode.UTF8, newline: []byte{0x0A}, unitSize: 1, variableWidth: true}
	// UTF16LE is little-endian UTF-16.
	UTF16LE = Codec{name: "UTF-16LE", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), newline: []byte{0x0A, 0x00}, unitSize: 2}
	// UTF16BE is big-endian UTF-16.
	UTF16BE = Codec{name: "UTF-16BE", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), newline: []byte{0x00, 0x0A}, unitSize: 2}
	// UTF32LE is little-endian UTF-32.
	UTF32LE = Codec{name: "UTF-32LE", enc: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), newline: []byte{0x0A, 0x00, 0x00, 0x00}, unitSize: 4}
	// UTF32BE is big-endian UTF-32.
	UTF32BE = Codec{name: "UTF-32BE", enc: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), newline: []byte{0x00, 0x00, 0x00, 0x0A}, unitSize: 4}
	// Windows1252 is the statistical fallback for single-byte files
	// that aren't valid UTF-8.
	Windows1252 = Codec{name: "windows-1252", enc: charmap.Windows1252, newline: []byte{0x0A}, unitSize: 1}

	// Default is returned when neither a BOM nor the heuristic guess
	// is confident.
	Default = UTF8
)

// ByName resolves one of the fixed codec names a caller might pass on
// a command line to force an encoding, bypassing detection.
func ByName(name string) (Codec, bool) {
	switch name {
	case "utf-8", "utf8":
		return UTF8, true
	case "utf-16le":
		return UTF16LE, true
	case "utf-16be":
		return UTF16BE, true
	case "utf-32le":
		return UTF32LE, true
	case "utf-32be":
		return UTF32BE, true
	case "windows-1252", "windows1252":
		return Windows1252, true
	default:
		return Codec{}, false
	}
}
