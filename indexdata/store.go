// Package indexdata holds the single shared aggregate a worker writes
// and a UI reads: the line-position array, the running prefix hash,
// the max observed line length, and the detected/forced encoding. All
// access goes through Store's mutex.
package indexdata

import (
	"sync"

	"github.com/alienxp03/panam-index/lineindex"
	"github.com/alienxp03/panam-index/textenc"
)

// Store is the thread-safe indexing-data aggregate: the line-position
// array, running max line length, prefix hash, and encoding guess,
// all mutated together under one mutex. Zero value is ready to use.
type Store struct {
	mu sync.Mutex

	lines     lineindex.Array
	maxLength int
	hash      *hasher
	guess     textenc.Codec
	forced    *textenc.Codec
	hasGuess  bool

	// openTail reports whether the array's last entry is a
	// synthesized end-of-file marker for an unterminated final line
	// (see CompleteOpenTail), rather than a real scanned terminator.
	// PartialIndex consults this through ResumeFrom/DropOpenTail to
	// redo that line as a whole once the file grows past it, instead
	// of splitting it across two entries.
	openTail bool
}

// AddAll is the main mutator, called once per scanned block: it
// appends fast's offsets, extends the prefix hash with the bytes at
// [blockStart, blockStart+len(block)) (capped at PrefixHashLength and
// deduplicated against any previously-hashed range), raises maxLength
// to the greater of itself and maxLengthDelta, and records enc as the
// guess if none is set yet or enc is non-zero. All of this happens
// atomically under one critical section, so any later accessor
// observes the whole update together.
func (s *Store) AddAll(blockStart int64, block []byte, maxLengthDelta int, fast lineindex.Fast, enc textenc.Codec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hash == nil {
		s.hash = newHasher()
	}
	s.lines.AppendBatch(fast.Offsets)
	s.hash.write(blockStart, block)
	if maxLengthDelta > s.maxLength {
		s.maxLength = maxLengthDelta
	}
	if !s.hasGuess || !enc.IsZero() {
		s.guess = enc
		s.hasGuess = true
	}
}

// CompleteOpenTail folds a synthesized line-end for a file's trailing
// content that has no terminating newline (doIndex's EOF handling).
// It updates max-length and encoding bookkeeping the same way AddAll
// does, always appends exactly one offset, and marks it as an open
// tail so a later partial index knows to redo that line rather than
// treat it as already closed.
func (s *Store) CompleteOpenTail(offset int64, maxLengthDelta int, enc textenc.Codec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines.Append(offset)
	if maxLengthDelta > s.maxLength {
		s.maxLength = maxLengthDelta
	}
	if !s.hasGuess || !enc.IsZero() {
		s.guess = enc
		s.hasGuess = true
	}
	s.openTail = true
}

// ResumeFrom returns the byte offset a partial index should read
// from, and whether the caller must first call DropOpenTail: if the
// last indexed line was a synthesized open tail, that is the start of
// that line (so its growth folds into one entry), otherwise it is the
// store's current size (the common, already-terminated-last-line
// case, unchanged from a plain append-from-the-end resume).
func (s *Store) ResumeFrom() (offset int64, dropOpenTail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.openTail || s.lines.Len() == 0 {
		return s.lines.LastOrZero(), false
	}
	if s.lines.Len() == 1 {
		return 0, true
	}
	return s.lines.At(s.lines.Len() - 2), true
}

// DropOpenTail removes the line-position entry ResumeFrom pointed
// past, if the last entry is still a synthesized open tail. It is a
// no-op otherwise, so it is safe to call unconditionally once a
// partial index has committed to re-reading from ResumeFrom's offset.
func (s *Store) DropOpenTail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.openTail || s.lines.Len() == 0 {
		return
	}
	s.lines.TruncateTo(s.lines.Len() - 1)
	s.openTail = false
}

// Clear resets every field, including re-initializing the hash, ready
// for a fresh full index.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines.Clear()
	s.maxLength = 0
	s.hash = newHasher()
	s.guess = textenc.Codec{}
	s.hasGuess = false
	s.openTail = false
	// s.forced is left alone: a forced encoding is a presentation
	// override that survives a re-index of the same file.
}

// Size returns the total indexed byte size: the last line-end offset,
// or zero if nothing has been indexed.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.LastOrZero()
}

// NbLines returns the number of indexed lines.
func (s *Store) NbLines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Len()
}

// MaxLength returns the greatest observed line length, in code points.
func (s *Store) MaxLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxLength
}

// PosForLine returns the end offset of line i.
func (s *Store) PosForLine(i int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.At(i)
}

// Hash returns a copy of the current prefix-hash fingerprint.
func (s *Store) Hash() Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hash == nil {
		return Hash{}
	}
	return s.hash.sum()
}

// EncodingGuess returns the detector's (or forced-at-index-time)
// codec for this file, and whether any block has been processed yet.
func (s *Store) EncodingGuess() (textenc.Codec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guess, s.hasGuess
}

// ForcedEncoding returns the presentation-override codec, if any.
func (s *Store) ForcedEncoding() (textenc.Codec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forced == nil {
		return textenc.Codec{}, false
	}
	return *s.forced, true
}

// ForceEncoding stores a codec that overrides the guess for display.
// It does not modify the index.
func (s *Store) ForceEncoding(codec textenc.Codec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = &codec
}

// Snapshot returns a read-only view of the line-position array for
// callers that need to make several lookups without retaking the
// mutex per call. Do not retain it past a reasonable bound: it pins
// the memory of every sealed block it was built from.
func (s *Store) Snapshot() lineindex.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Snapshot()
}
