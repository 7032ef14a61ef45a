// Package lineutil is the line-reading primitive shared by the FASTA and
// FASTQ variants: a small accumulator over a cacheman.Handle that reads one
// byte at a time so the handle's cursor never runs ahead of what the
// caller has actually examined — a prerequisite for handing a partially
// read record back to the cache manager via SplitAt.
package lineutil

import "seqcache/core/cacheman"

// maxLineLen bounds a single line's length as a sanity check against
// runaway input (a stream with no newline for megabytes). It is generous
// relative to any real FASTA/FASTQ line.
const maxLineLen = 1 << 20

// ErrLineTooLong is returned by NextLine when a line exceeds maxLineLen
// without a terminator.
type ErrLineTooLong struct{}

func (ErrLineTooLong) Error() string { return "lineutil: line exceeds maximum length" }

// Reader reads newline-terminated lines from a Handle's current fill only;
// it never triggers a refill. Exhausting the current fill before a
// terminator is found is reported via ok=false, letting the caller decide
// whether to wait for more data (HasMoreData) or hand the bytes off
// (SplitAt).
type Reader struct {
	h       *cacheman.Handle
	scratch [1]byte
}

// New wraps h in a line reader.
func New(h *cacheman.Handle) *Reader { return &Reader{h: h} }

// NextLine reads up to and including the next '\n'. The returned line has
// any trailing "\r\n" or "\n" stripped. consumed is the number of raw
// bytes read, including the terminator. ok is false when the handle's
// current fill ran out before a terminator appeared; the partial bytes
// read so far are still returned in line so a caller treating this as a
// genuine end-of-stream (no more data will ever arrive) can use them as an
// unterminated final line.
func (r *Reader) NextLine() (line []byte, consumed int, ok bool, err error) {
	var acc []byte
	for {
		n, getErr := r.h.GetBytes(r.scratch[:])
		if getErr != nil {
			return acc, len(acc), false, getErr
		}
		if n == 0 {
			return acc, len(acc), false, nil
		}
		b := r.scratch[0]
		acc = append(acc, b)
		if b == '\n' {
			return trimEOL(acc), len(acc), true, nil
		}
		if len(acc) > maxLineLen {
			return acc, len(acc), false, ErrLineTooLong{}
		}
	}
}

func trimEOL(b []byte) []byte {
	b = b[:len(b)-1]
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}
