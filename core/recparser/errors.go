package recparser

import (
	"errors"
	"fmt"
)

// ErrNoMoreReads is returned by Next once the underlying segment and the
// cache manager's barrier both confirm there is nothing left to parse. It
// is a terminal signal, not a true failure — callers check it with
// errors.Is.
var ErrNoMoreReads = errors.New("recparser: no more reads available")

// FormatError reports a record that doesn't conform to its format's
// grammar: wrong sigil, mismatched FASTQ line lengths, a zero-length FASTA
// sequence, or a record left truncated at genuine end-of-stream.
type FormatError struct {
	Format string // "fasta" | "fastq"
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("recparser: invalid %s record: %s", e.Format, e.Reason)
}
