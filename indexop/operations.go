package indexop

import (
	"context"
	"fmt"
	"io"

	"github.com/alienxp03/panam-index/blockscan"
	"github.com/alienxp03/panam-index/indexdata"
	"github.com/alienxp03/panam-index/lineindex"
	"github.com/alienxp03/panam-index/textenc"
)

// DefaultBlockSize is the fixed block size doIndex reads at a time.
const DefaultBlockSize = 5 * 1024 * 1024

// Operation is the shared contract FullIndex, PartialIndex, and
// CheckFileChanges implement, dispatched by the worker. progress is
// called with an integer percentage; it may be called zero or more
// times before Run returns.
type Operation interface {
	Run(ctx context.Context, progress func(percent int)) (Result, error)
}

// FullIndex clears Store and indexes Source from byte 0. If Forced is
// non-nil, it is installed without consulting the detector; otherwise
// the first block is sniffed.
type FullIndex struct {
	Store     *indexdata.Store
	Source    Handle
	BlockSize int
	Forced    *textenc.Codec
}

func (op *FullIndex) Run(ctx context.Context, progress func(int)) (Result, error) {
	op.Store.Clear()
	size, err := op.Source.Size()
	if err != nil {
		return Result{}, fmt.Errorf("stat file: %w", err)
	}
	completed, err := doIndex(ctx, op.Source, op.Store, 0, size, blockSizeOrDefault(op.BlockSize), op.Forced, progress, false)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindBool, Completed: completed}, nil
}

// PartialIndex extends Store from its current size to the file's
// current end. A file smaller than Store's recorded size is
// Truncated; an equal size is Unchanged; a larger size is indexed and
// reported the same way as FullIndex.
//
// If Store's last indexed line was a synthesized end-of-file marker
// (the previous index ended mid-line, with no trailing newline),
// resuming from Store's size would treat the file's continuation as a
// new line starting mid-word. Instead resume from ResumeFrom, which
// rewinds to the start of that still-open line, and have doIndex drop
// the stale marker once it commits to re-reading it — so a line that
// was growing across indexing runs ends up as one entry, matching a
// full re-index of the same file.
type PartialIndex struct {
	Store     *indexdata.Store
	Source    Handle
	BlockSize int
}

func (op *PartialIndex) Run(ctx context.Context, progress func(int)) (Result, error) {
	size, err := op.Source.Size()
	if err != nil {
		return Result{}, fmt.Errorf("stat file: %w", err)
	}
	storedSize := op.Store.Size()
	if size < storedSize {
		return Result{Kind: KindFileStatus, Status: Truncated}, nil
	}
	if size == storedSize {
		return Result{Kind: KindFileStatus, Status: Unchanged}, nil
	}

	existing, _ := op.Store.EncodingGuess()
	resumeFrom, dropOpenTail := op.Store.ResumeFrom()
	completed, err := doIndex(ctx, op.Source, op.Store, resumeFrom, size, blockSizeOrDefault(op.BlockSize), &existing, progress, dropOpenTail)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindBool, Completed: completed}, nil
}

// CheckFileChanges compares the file's current size and prefix hash
// against Store without mutating it.
type CheckFileChanges struct {
	Store  *indexdata.Store
	Source Handle
}

func (op *CheckFileChanges) Run(_ context.Context, _ func(int)) (Result, error) {
	size, err := op.Source.Size()
	if err != nil {
		return Result{}, fmt.Errorf("stat file: %w", err)
	}
	storedSize := op.Store.Size()
	storedHash := op.Store.Hash()

	// Hash the same prefix length the store hashed, so a file that only
	// grew past it still matches.
	prefixLen := storedHash.HashedSize
	if size < prefixLen {
		prefixLen = size
	}
	actual, err := indexdata.ComputePrefixHash(op.Source, prefixLen)
	if err != nil {
		return Result{}, fmt.Errorf("hash file: %w", err)
	}

	switch {
	case size < storedSize || actual.Digest != storedHash.Digest:
		return Result{Kind: KindFileStatus, Status: Truncated}, nil
	case size > storedSize:
		return Result{Kind: KindFileStatus, Status: DataAdded}, nil
	default:
		return Result{Kind: KindFileStatus, Status: Unchanged}, nil
	}
}

func blockSizeOrDefault(n int) int {
	if n <= 0 {
		return DefaultBlockSize
	}
	return n
}

// doIndex is the shared block-reading loop behind FullIndex and
// PartialIndex: seek to start, read fixed-size blocks until size,
// parse each into fast, fold into store, and report progress. It
// returns false without error if ctx is cancelled between blocks —
// the caller's Store still reflects everything folded in so far.
//
// dropOpenTail is set by PartialIndex when start rewinds past a
// synthesized end-of-file entry from a previous run: once the first
// block has actually been read (so an immediate cancellation leaves
// Store untouched rather than dropping data nothing replaces it),
// doIndex removes that stale entry before folding in the re-scanned
// line.
func doIndex(ctx context.Context, src Handle, store *indexdata.Store, start, size int64, blockSize int, codecHint *textenc.Codec, progress func(int), dropOpenTail bool) (bool, error) {
	if size == 0 {
		codec := textenc.Default
		if codecHint != nil {
			codec = *codecHint
		}
		store.AddAll(0, nil, 0, lineindex.Fast{}, codec)
		return true, nil
	}

	var st *blockscan.State
	var pending []byte
	pos := start
	lastPercent := -1
	firstBlock := true

	for pos < size {
		select {
		case <-ctx.Done():
			return false, nil
		default:
		}

		readLen := blockSize
		if remaining := size - pos; int64(readLen) > remaining {
			readLen = int(remaining)
		}
		buf := make([]byte, readLen)
		n, rerr := src.ReadAt(buf, pos)
		if rerr != nil && rerr != io.EOF {
			return false, fmt.Errorf("read file at %d: %w", pos, rerr)
		}
		buf = buf[:n]
		blockStart := pos

		combined := buf
		blockFileStart := pos
		if len(pending) > 0 {
			combined = append(append([]byte(nil), pending...), buf...)
			blockFileStart = pos - int64(len(pending))
			pending = nil
		}

		if st == nil {
			codec := codecHint
			var resolved textenc.Codec
			if codec != nil {
				resolved = *codec
			} else {
				resolved = textenc.Detect(combined, nil)
			}
			st = blockscan.NewState(resolved)
		}

		if firstBlock {
			if dropOpenTail {
				store.DropOpenTail()
			}
			firstBlock = false
		}

		fast := blockscan.Scan(combined, blockFileStart, st)
		// Hash only the newly read bytes: any carried-over pending tail
		// was already fed to the hash when it first arrived in the
		// previous iteration's buf. hasher.write further dedupes
		// against a rewound resume that re-reads bytes already hashed
		// from before the rollback.
		store.AddAll(blockStart, buf, st.MaxLength, fast, st.Codec)
		pending = append(pending[:0], st.Pending...)

		pos += int64(n)
		if pct := int(pos * 100 / size); pct != lastPercent {
			progress(pct)
			lastPercent = pct
		}
		if n == 0 {
			break
		}
	}

	// A file with no trailing newline leaves its final line open: per
	// the pinned "partial lines count" decision, synthesize a line-end
	// at EOF so it is not silently dropped from NbLines/MaxLength. The
	// entry is marked as an open tail so a later PartialIndex redoes
	// this line as a whole instead of treating the file's continuation
	// as a new line.
	if st != nil && st.End < size {
		if total := st.PendingCodepoints + st.AdditionalSpaces; total > st.MaxLength {
			st.MaxLength = total
		}
		store.CompleteOpenTail(size, st.MaxLength, st.Codec)
		st.End = size
	}
	return true, nil
}
