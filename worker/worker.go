// Package worker implements the single-operation-at-a-time scheduler
// that drives indexop's operations over a background goroutine and
// reports progress and completion back to the caller through channels.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/alienxp03/panam-index/indexdata"
	"github.com/alienxp03/panam-index/indexop"
	"github.com/alienxp03/panam-index/textenc"
)

// State is LogDataWorker's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Destroyed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Destroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// LoadingStatus is the terminal outcome of indexAll/indexAdditionalLines.
type LoadingStatus int

const (
	Successful LoadingStatus = iota
	NoMemory
	Interrupted
	// Failed covers IOError (§7): the source names exactly three
	// LoadingStatus values but separately requires an I/O failure to
	// "bubble to the finish event as an unsuccessful status" without
	// being Interrupted or NoMemory. Failed is that status; the
	// triggering error rides along in FinishEvent.Err.
	Failed
)

func (s LoadingStatus) String() string {
	switch s {
	case Successful:
		return "Successful"
	case NoMemory:
		return "NoMemory"
	case Interrupted:
		return "Interrupted"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// FinishEvent is delivered exactly once per indexAll/indexAdditionalLines
// run, always after any progress events for that run.
type FinishEvent struct {
	Status LoadingStatus
	Err    error
}

// CheckEvent is delivered exactly once per checkFileChanges run.
type CheckEvent struct {
	Status indexop.FileStatus
	Err    error
}

var (
	ErrAlreadyRunning = errors.New("worker: an operation is already running")
	ErrNoFileAttached = errors.New("worker: no file attached")
	ErrDestroyed      = errors.New("worker: worker has been destroyed")
)

// LogDataWorker is the single-operation-at-a-time façade over the
// index operations: it owns one indexdata.Store and a FileSource,
// accepts at most one in-flight command at a time, and reports
// progress/completion over channels in per-worker FIFO order (Go
// channel ordering gives this for free).
type LogDataWorker struct {
	source    indexop.FileSource
	store     *indexdata.Store
	blockSize int

	mu    sync.Mutex
	state State
	path  string

	sem *semaphore.Weighted

	progressCh chan int
	finishedCh chan FinishEvent
	checkCh    chan CheckEvent

	interrupted atomic.Bool
	cancel      context.CancelFunc

	wg sync.WaitGroup
}

// New creates a worker over source with the default block size. Call
// AttachFile before issuing any command.
func New(source indexop.FileSource) *LogDataWorker {
	return &LogDataWorker{
		source:     source,
		store:      &indexdata.Store{},
		blockSize:  indexop.DefaultBlockSize,
		sem:        semaphore.NewWeighted(1),
		progressCh: make(chan int, 256),
		finishedCh: make(chan FinishEvent, 1),
		checkCh:    make(chan CheckEvent, 1),
	}
}

// Store exposes the shared indexing-data aggregate for a reader (the
// UI collaborator) to query concurrently with the worker indexing.
func (w *LogDataWorker) Store() *indexdata.Store { return w.store }

// SetBlockSize overrides the default 5 MiB read block size. Call
// before the first command.
func (w *LogDataWorker) SetBlockSize(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blockSize = n
}

// State reports the current lifecycle state.
func (w *LogDataWorker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Progress streams indexing percentages (0..100) for the operation
// currently running.
func (w *LogDataWorker) Progress() <-chan int { return w.progressCh }

// Finished streams one FinishEvent per indexAll/indexAdditionalLines run.
func (w *LogDataWorker) Finished() <-chan FinishEvent { return w.finishedCh }

// CheckFinished streams one CheckEvent per checkFileChanges run.
func (w *LogDataWorker) CheckFinished() <-chan CheckEvent { return w.checkCh }

// AttachFile rebinds the worker to a new path. The caller must ensure
// no operation is currently running.
func (w *LogDataWorker) AttachFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Destroyed {
		return ErrDestroyed
	}
	if w.state == Running {
		return ErrAlreadyRunning
	}
	w.path = path
	return nil
}

// IndexAll starts a full re-index. If forced is non-nil, it overrides
// the detector for this run.
func (w *LogDataWorker) IndexAll(forced *textenc.Codec) error {
	return w.startIndexing(func(handle indexop.Handle) indexop.Operation {
		return &indexop.FullIndex{Store: w.store, Source: handle, BlockSize: w.blockSize, Forced: forced}
	})
}

// IndexAdditionalLines starts a partial index from the store's
// current end.
func (w *LogDataWorker) IndexAdditionalLines() error {
	return w.startIndexing(func(handle indexop.Handle) indexop.Operation {
		return &indexop.PartialIndex{Store: w.store, Source: handle, BlockSize: w.blockSize}
	})
}

// CheckFileChanges starts a non-mutating change probe.
func (w *LogDataWorker) CheckFileChanges() error {
	ctx, handle, err := w.beginRun()
	if err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.endRun(handle)
		op := &indexop.CheckFileChanges{Store: w.store, Source: handle}
		res, err := op.Run(ctx, nil)
		ev := CheckEvent{Err: err}
		if err == nil {
			ev.Status = res.Status
		}
		w.checkCh <- ev
	}()
	return nil
}

func (w *LogDataWorker) startIndexing(build func(indexop.Handle) indexop.Operation) error {
	ctx, handle, err := w.beginRun()
	if err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.endRun(handle)
		w.finishedCh <- w.runIndexing(ctx, build(handle))
	}()
	return nil
}

// runIndexing executes op, translating a panic (as a stand-in for an
// allocation failure the operation could realistically hit indexing a
// multi-gigabyte file: a huge make([]byte, blockSize) or line-index
// growth) into NoMemory rather than crashing the worker goroutine.
func (w *LogDataWorker) runIndexing(ctx context.Context, op indexop.Operation) (ev FinishEvent) {
	defer func() {
		if r := recover(); r != nil {
			if looksLikeOOM(r) {
				ev = FinishEvent{Status: NoMemory, Err: fmt.Errorf("indexing: %v", r)}
			} else {
				ev = FinishEvent{Status: Failed, Err: fmt.Errorf("indexing panic: %v", r)}
			}
		}
	}()

	res, err := op.Run(ctx, func(p int) { w.progressCh <- p })
	if err != nil {
		return FinishEvent{Status: Failed, Err: err}
	}
	if !res.Completed {
		return FinishEvent{Status: Interrupted}
	}
	return FinishEvent{Status: Successful}
}

func (w *LogDataWorker) beginRun() (context.Context, indexop.Handle, error) {
	w.mu.Lock()
	if w.state == Destroyed {
		w.mu.Unlock()
		return nil, nil, ErrDestroyed
	}
	if w.path == "" {
		w.mu.Unlock()
		return nil, nil, ErrNoFileAttached
	}
	if !w.sem.TryAcquire(1) {
		w.mu.Unlock()
		return nil, nil, ErrAlreadyRunning
	}
	path := w.path
	w.mu.Unlock()

	handle, err := w.source.Open(path)
	if err != nil {
		w.mu.Lock()
		w.mu.Unlock()
		w.sem.Release(1)
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.state = Running
	w.cancel = cancel
	w.interrupted.Store(false)
	w.mu.Unlock()

	return ctx, handle, nil
}

func (w *LogDataWorker) endRun(handle indexop.Handle) {
	handle.Close()
	w.sem.Release(1)
	w.mu.Lock()
	if w.state != Destroyed {
		w.state = Idle
	}
	w.cancel = nil
	w.mu.Unlock()
}

// Interrupt requests cancellation of the currently running operation.
// It is idempotent and non-blocking: it sets an atomic flag and
// cancels the operation's context if one is running, and is a no-op
// when nothing is running.
func (w *LogDataWorker) Interrupt() {
	w.interrupted.Store(true)
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Interrupted reports whether Interrupt has been requested for the
// run currently in flight (reset at the start of each new run).
func (w *LogDataWorker) Interrupted() bool { return w.interrupted.Load() }

// Close transitions the worker to Destroyed: it interrupts any
// running operation, waits for it to return, and releases resources.
// Close is idempotent.
func (w *LogDataWorker) Close() error {
	w.mu.Lock()
	if w.state == Destroyed {
		w.mu.Unlock()
		return nil
	}
	w.state = Destroyed
	w.mu.Unlock()

	w.Interrupt()
	w.wg.Wait()
	return nil
}

func looksLikeOOM(r interface{}) bool {
	msg := fmt.Sprint(r)
	return strings.Contains(msg, "out of memory") ||
		strings.Contains(msg, "cannot allocate memory") ||
		strings.Contains(msg, "makeslice: len out of range")
}
