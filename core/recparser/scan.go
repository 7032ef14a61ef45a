package recparser

import (
	"seqcache/core/cacheman"
	"seqcache/core/recparser/lineutil"
)

// LineOutcome classifies the result of reading one line against the
// boundary-splitting policy every format variant must honor.
type LineOutcome int

const (
	// LineOK means line holds a complete, newline-terminated line, or the
	// stream's final unterminated line (no more bytes will ever arrive, so
	// there's nothing left to wait for).
	LineOK LineOutcome = iota
	// LineNeedsSplit means the calling segment's current fill ran out
	// before this line terminated, but more bytes are still coming for the
	// stream as a whole. The caller must not wait for more data on this
	// segment directly — doing so could silently resume reading a later,
	// non-adjacent fill once rotation cycles back — and must instead hand
	// the in-progress record to whichever segment is filled next via
	// Handle().SplitAt(recordStart), then restart the record from scratch.
	LineNeedsSplit
	// LineEOF means no bytes at all remain, and none ever will: the
	// segment's fill is terminal and already fully consumed. A record
	// still in progress at this point is truncated.
	LineEOF
)

// LineCursor is the shared per-thread cursor both format variants read
// through: a line-at-a-time view over one cacheman.Handle with one line of
// pushback, used to peek at the line following a record's body to learn
// whether it starts a new record without consuming it as part of the
// current one.
type LineCursor struct {
	h  *cacheman.Handle
	lr *lineutil.Reader

	hasPending   bool
	pendingStart int
	pendingLine  []byte
}

// NewLineCursor wraps h.
func NewLineCursor(h *cacheman.Handle) *LineCursor {
	return &LineCursor{h: h, lr: lineutil.New(h)}
}

// Handle returns the underlying per-worker handle.
func (c *LineCursor) Handle() *cacheman.Handle { return c.h }

// AwaitRecordStart blocks until a new record could begin, or reports that
// the stream is finished. Callers must only invoke this between records —
// never while a record is partially read — since the wait may resolve via
// a refill of this same segment that is not contiguous with in-flight
// record bytes. A line held by PushBack is a record start already read from
// the current fill, so it is reported without waiting.
func (c *LineCursor) AwaitRecordStart() (bool, error) {
	if c.hasPending {
		return true, nil
	}
	return c.h.HasMoreData()
}

// Next returns the next line without ever blocking for a refill: it reads
// only bytes already present in the handle's current fill, or replays a
// line previously returned via PushBack. startOffset is the handle-local
// offset the line began at, suitable for Handle().SplitAt.
func (c *LineCursor) Next() (startOffset int, line []byte, outcome LineOutcome, err error) {
	if c.hasPending {
		startOffset, line = c.pendingStart, c.pendingLine
		c.hasPending = false
		c.pendingLine = nil
		return startOffset, line, LineOK, nil
	}

	startOffset = c.h.WhereIsCursor()
	line, _, ok, err := c.lr.NextLine()
	if err != nil {
		return startOffset, nil, LineNeedsSplit, err
	}
	if ok {
		return startOffset, line, LineOK, nil
	}
	if c.h.IsTerminal() {
		if len(line) == 0 {
			return startOffset, nil, LineEOF, nil
		}
		return startOffset, line, LineOK, nil
	}
	return startOffset, nil, LineNeedsSplit, nil
}

// PushBack replays line (with the offset it started at) on the next call
// to Next, for one-line lookahead past the end of a record.
func (c *LineCursor) PushBack(startOffset int, line []byte) {
	c.hasPending = true
	c.pendingStart = startOffset
	c.pendingLine = line
}
