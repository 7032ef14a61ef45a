package cacheman

import (
	"errors"
	"fmt"
)

// ErrInvalidCacheSize is returned by NewManager when the requested buffer
// size cannot be divided into at least one byte per worker.
var ErrInvalidCacheSize = errors.New("cacheman: invalid cache size requested")

// ProtocolError signals a caller using the Handle API out of protocol —
// the two cases: segment access out of protocol, and
// CacheSegmentBoundaryViolation. Both are programming errors: a well-behaved
// caller only reaches them by skipping HasMoreData or passing SplitAt an
// offset outside the live portion of its segment. Callers that want the
// source's "abort" semantics can panic on these themselves; the Handle API
// returns them rather than panicking so a caller can choose how to fail.
type ProtocolError struct {
	Kind string // "segment_unavailable" | "boundary_violation"
	Msg  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("cacheman: %s: %s", e.Kind, e.Msg)
}

func segmentUnavailable(msg string) error {
	return &ProtocolError{Kind: "segment_unavailable", Msg: msg}
}

func boundaryViolation(msg string) error {
	return &ProtocolError{Kind: "boundary_violation", Msg: msg}
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
