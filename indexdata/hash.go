package indexdata

import (
	"crypto/md5"
	"hash"
	"io"
)

// PrefixHashLength (K) bounds how many leading bytes of the file
// contribute to the identity fingerprint. 256 KiB, held stable across
// sessions so a file's hash doesn't shift between runs.
const PrefixHashLength = 256 * 1024

// Hash is the file-identity fingerprint: how many bytes were hashed,
// and the MD5 digest of those bytes.
type Hash struct {
	HashedSize int64
	Digest     [md5.Size]byte
}

// hasher accumulates the running MD5 of up to PrefixHashLength bytes,
// truncating the final chunk fed to it if it would cross that bound.
//
// A partial index that resumes a growing, previously-unterminated
// final line rewinds doIndex's read position to before that line's
// start, so the same file bytes can be read and folded in more than
// once across separate AddAll calls. write is keyed by each block's
// absolute file offset so that re-presented bytes are never hashed
// twice: consumed tracks the file offset up to which bytes have
// already been considered, whether they were written into the digest
// or skipped because the PrefixHashLength bound was already reached.
type hasher struct {
	h        hash.Hash
	hashed   int64
	consumed int64
}

func newHasher() *hasher {
	return &hasher{h: md5.New()}
}

// write feeds the portion of block covering [blockStart, blockStart+
// len(block)) that lies beyond what has already been consumed into
// the hash, stopping at PrefixHashLength total bytes hashed.
func (h *hasher) write(blockStart int64, block []byte) {
	blockEnd := blockStart + int64(len(block))
	if blockEnd <= h.consumed {
		return
	}
	fresh := block
	if blockStart < h.consumed {
		fresh = block[h.consumed-blockStart:]
	}
	if h.hashed < PrefixHashLength {
		remaining := PrefixHashLength - h.hashed
		if int64(len(fresh)) > remaining {
			fresh = fresh[:remaining]
		}
		h.h.Write(fresh)
		h.hashed += int64(len(fresh))
	}
	h.consumed = blockEnd
}

func (h *hasher) sum() Hash {
	var out Hash
	out.HashedSize = h.hashed
	copy(out.Digest[:], h.h.Sum(nil))
	return out
}

// ComputePrefixHash independently fingerprints an open file's first
// min(size, PrefixHashLength) bytes, for comparison against a Store's
// stored Hash during a change-check. It does not touch any Store.
func ComputePrefixHash(r io.ReaderAt, size int64) (Hash, error) {
	n := size
	if n > PrefixHashLength {
		n = PrefixHashLength
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
			return Hash{}, err
		}
	}
	return Hash{HashedSize: n, Digest: md5.Sum(buf)}, nil
}
