// Package cacheman implements the Cache Manager: it multiplexes a single
// streamreader.Reader across N worker goroutines, handing each a private
// byte segment while guaranteeing every byte of the stream is delivered to
// exactly one consumer, in order, with no duplication.
//
// Segments are filled in strict rotation — worker 0, then 1, ... then N-1,
// then 0 again — which is also how the package serializes access to the
// single underlying Reader: whichever worker's turn it is performs the next
// ReadInto call itself. This matches the source algorithm's "first thread to
// observe its own segment exhausted and segment_to_fill equal to its own id
// enters the fill path" rule exactly, so no separate filler role or election
// beyond the rotation counter is needed.
package cacheman

import (
	"sync"
	"sync/atomic"
	"time"

	"seqcache/core/metrics"
	"seqcache/core/streamreader"
)

// Manager owns every CacheSegment and the copyaside store for one run. It is
// safe for concurrent use by exactly N goroutines, one per Handle.
type Manager struct {
	reader streamreader.Reader
	n      int

	segments []*segment
	copy     *copyasideRing

	fillCounter atomic.Uint64

	segmentToFill atomic.Int32 // index of the segment whose turn it is
	turnMu        sync.Mutex
	turnCond      *sync.Cond

	liveWorkers atomic.Int32
	barrierCh   chan struct{}
	barrierOnce sync.Once

	errMu   sync.Mutex
	readErr error

	counters []*metrics.Counters
}

// NewManager allocates a Manager for workers in [0,n) over reader, sizing
// each worker's segment as bufferSize/n. bufferSize must provide at least
// one byte per worker.
func NewManager(reader streamreader.Reader, n, bufferSize int) (*Manager, error) {
	if n < 1 || bufferSize < n {
		return nil, ErrInvalidCacheSize
	}
	segSize := bufferSize / n

	m := &Manager{
		reader:    reader,
		n:         n,
		segments:  make([]*segment, n),
		copy:      newCopyasideRing(n),
		barrierCh: make(chan struct{}),
		counters:  make([]*metrics.Counters, n),
	}
	m.turnCond = sync.NewCond(&m.turnMu)
	for i := 0; i < n; i++ {
		m.segments[i] = newSegment(i, segSize)
		m.counters[i] = &metrics.Counters{}
	}
	m.liveWorkers.Store(int32(n))
	return m, nil
}

// Handle returns the per-worker view of the manager for workerID, which
// must be in [0,n).
func (m *Manager) Handle(workerID int) *Handle { return &Handle{m: m, id: workerID} }

// Counters returns the cumulative counters for workerID. Safe to read after
// that worker has joined the termination barrier; counters are additive, so
// callers wanting a run total can sum them (see metrics.Sum).
func (m *Manager) Counters(workerID int) *metrics.Counters { return m.counters[workerID] }

// OrphanedFragments returns the fill-ids of copyaside fragments that were
// deposited but never picked up — see SPEC_FULL.md's resolution of the
// source's Open Question. Only meaningful after every worker has finished.
func (m *Manager) OrphanedFragments() []uint64 { return m.copy.orphaned() }

func (m *Manager) stickyErr() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.readErr
}

func (m *Manager) setStickyErr(err error) {
	m.errMu.Lock()
	if m.readErr == nil {
		m.readErr = err
	}
	m.errMu.Unlock()
}

// hasMoreData implements Handle.HasMoreData for workerID.
func (m *Manager) hasMoreData(workerID int) (bool, error) {
	seg := m.segments[workerID]
	for {
		seg.mu.Lock()
		if seg.cursor < seg.limit {
			seg.mu.Unlock()
			return true, nil
		}
		if err := m.stickyErr(); err != nil {
			seg.mu.Unlock()
			return false, err
		}
		if seg.terminal {
			seg.mu.Unlock()
			m.joinBarrier(workerID)
			barrierStart := time.Now()
			<-m.barrierCh
			m.counters[workerID].BarrierNanos.Add(time.Since(barrierStart).Nanoseconds())
			return false, nil
		}
		seg.mu.Unlock()

		if m.segmentToFill.Load() == int32(workerID) {
			if err := m.fill(workerID); err != nil {
				return false, err
			}
			continue
		}

		waitStart := time.Now()
		m.turnMu.Lock()
		if m.segmentToFill.Load() != int32(workerID) {
			m.turnCond.Wait()
		}
		m.turnMu.Unlock()
		m.counters[workerID].WaitNanos.Add(time.Since(waitStart).Nanoseconds())
	}
}

func (m *Manager) joinBarrier(workerID int) {
	seg := m.segments[workerID]
	seg.mu.Lock()
	already := seg.joined
	seg.joined = true
	seg.mu.Unlock()
	if already {
		return
	}
	if m.liveWorkers.Add(-1) == 0 {
		m.barrierOnce.Do(func() { close(m.barrierCh) })
	}
}

// fill performs the one blocking ReadInto call for workerID's turn, stitches
// in any fragment the predecessor donated, and advances the rotation.
func (m *Manager) fill(workerID int) error {
	seg := m.segments[workerID]

	seg.mu.Lock()
	seg.ready = false
	seg.mu.Unlock()

	start := time.Now()
	n, err := m.reader.ReadInto(seg.buf)
	m.counters[workerID].FillNanos.Add(time.Since(start).Nanoseconds())
	if err != nil {
		m.setStickyErr(err)
		return err
	}
	m.counters[workerID].BytesRead.Add(int64(n))

	predecessor := (workerID - 1 + m.n) % m.n
	predSeg := m.segments[predecessor]
	predSeg.mu.Lock()
	predFillID := predSeg.fillID
	predSeg.mu.Unlock()
	frag := m.copy.take(predFillID)

	fillID := m.fillCounter.Add(1)

	seg.mu.Lock()
	seg.caPrefix = frag
	seg.size = n
	seg.cursor = 0
	seg.limit = len(frag) + n
	seg.fillID = fillID
	// terminal reflects the underlying stream, not this segment's content:
	// a final donated fragment can still need consuming even once no more
	// fills will ever happen.
	seg.terminal = n == 0 && m.reader.AtEnd()
	seg.ready = true
	seg.mu.Unlock()
	seg.cond.Broadcast()

	next := int32((workerID + 1) % m.n)
	m.segmentToFill.Store(next)
	m.turnMu.Lock()
	m.turnCond.Broadcast()
	m.turnMu.Unlock()
	return nil
}

func (m *Manager) getBytes(workerID int, dst []byte) (int, error) {
	seg := m.segments[workerID]
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if !seg.ready {
		return 0, segmentUnavailable("get_bytes called before HasMoreData observed the segment filled")
	}
	remaining := seg.limit - seg.cursor
	if remaining <= 0 {
		return 0, nil
	}
	n := len(dst)
	if n > remaining {
		n = remaining
	}
	seg.readAt(seg.cursor, n, dst[:n])
	seg.cursor += n
	return n, nil
}

func (m *Manager) whereIsCursor(workerID int) int {
	seg := m.segments[workerID]
	seg.mu.Lock()
	defer seg.mu.Unlock()
	return seg.cursor
}

func (m *Manager) isCursorInCABuffer(workerID int) bool {
	seg := m.segments[workerID]
	seg.mu.Lock()
	defer seg.mu.Unlock()
	return seg.cursor < len(seg.caPrefix)
}

func (m *Manager) getFillID(workerID int) uint64 {
	seg := m.segments[workerID]
	seg.mu.Lock()
	defer seg.mu.Unlock()
	return seg.fillID
}

// isTerminal reports whether workerID's segment was filled from a reader
// that had already reached end-of-stream, meaning whatever bytes the
// segment currently holds are the last this worker will ever see — no
// further fill will grow them. The reader's end-of-stream state only ever
// goes one direction, so once true for one worker it holds for every
// worker from that fill onward.
func (m *Manager) isTerminal(workerID int) bool {
	seg := m.segments[workerID]
	seg.mu.Lock()
	defer seg.mu.Unlock()
	return seg.terminal
}

// splitAt donates [pos, limit) of the calling worker's segment to whichever
// segment fills next. pos may be at or behind the current cursor: a parser
// that has already read partway into a record it now wants to hand off
// passes the record's start position, and those already-read bytes are
// re-extracted from the segment's backing buffer (readAt does not destroy
// data; only the cursor is logical) rather than lost. The segment's usable
// region collapses to [0, pos) either way.
func (m *Manager) splitAt(workerID int, pos int) error {
	seg := m.segments[workerID]
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if pos < 0 || pos > seg.limit {
		return boundaryViolation("split_at offset outside the live portion of the segment")
	}
	donated := seg.limit - pos
	if donated > 0 {
		tail := make([]byte, donated)
		seg.readAt(pos, donated, tail)
		m.copy.put(seg.fillID, tail)
		m.counters[workerID].SplitCount.Add(1)
	}
	seg.limit = pos
	if seg.cursor > pos {
		seg.cursor = pos
	}
	return nil
}
