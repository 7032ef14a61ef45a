package cacheman

import "seqcache/core/metrics"

// Handle is the view of a Manager exposed to a single worker. Each of the
// n goroutines started by Run gets exactly one Handle and must not share it.
type Handle struct {
	m  *Manager
	id int
}

// ID returns the worker id this handle was issued for.
func (h *Handle) ID() int { return h.id }

// Counters returns this worker's cumulative counters, safe to read once the
// worker has returned from its WorkerFunc.
func (h *Handle) Counters() *metrics.Counters { return h.m.Counters(h.id) }

// HasMoreData blocks until this worker's segment has at least one unread
// byte, performs its own fill when it is this worker's turn to do so, or
// returns false once the stream is exhausted and every worker has joined
// the termination barrier. A non-nil error means the underlying stream
// failed; it is sticky: a worker whose segment still holds unread bytes
// keeps getting true until they are consumed, and then gets the error.
func (h *Handle) HasMoreData() (bool, error) { return h.m.hasMoreData(h.id) }

// GetBytes copies up to len(dst) unread bytes from this worker's segment
// into dst and advances the cursor, returning the number copied. Calling it
// before HasMoreData has confirmed data is available returns a
// *ProtocolError with Kind "segment_unavailable".
func (h *Handle) GetBytes(dst []byte) (int, error) { return h.m.getBytes(h.id, dst) }

// WhereIsCursor returns the worker's current logical read offset within its
// segment (0 at the start of each fill, counting any stitched-in prefix).
func (h *Handle) WhereIsCursor() int { return h.m.whereIsCursor(h.id) }

// IsCursorInCABuffer reports whether the cursor currently sits inside the
// fragment a predecessor segment donated via SplitAt, rather than in bytes
// this fill itself read from the stream.
func (h *Handle) IsCursorInCABuffer() bool { return h.m.isCursorInCABuffer(h.id) }

// SplitAt detaches the bytes from pos to the end of the segment's live
// region into the copyaside store, to be prefixed onto whichever segment is
// filled next, and shrinks this segment's logical end to pos. pos may be at
// or behind the current cursor — a parser that already read partway into a
// record before deciding to hand it off passes the record's start position,
// and the cursor retreats to match. pos must not exceed the segment's
// current limit; violating that returns a *ProtocolError with Kind
// "boundary_violation".
func (h *Handle) SplitAt(pos int) error { return h.m.splitAt(h.id, pos) }

// GetFillID returns the monotonically increasing id of the fill currently
// backing this worker's segment. Ids start at 1; 0 means never filled.
func (h *Handle) GetFillID() uint64 { return h.m.getFillID(h.id) }

// IsTerminal reports whether this worker's current fill came from a reader
// already at end-of-stream: the bytes it holds right now are the last this
// worker will ever receive. A parser can use this to tell a genuine,
// permanent shortfall (accept what's left as final, possibly unterminated)
// from an ordinary segment-boundary shortfall (hand off via SplitAt and
// wait for the next fill).
func (h *Handle) IsTerminal() bool { return h.m.isTerminal(h.id) }
