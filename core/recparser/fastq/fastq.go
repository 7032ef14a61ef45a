// Package fastq implements the FASTQ record parser variant.
package fastq

import (
	"strings"

	"seqcache/core/cacheman"
	"seqcache/core/metrics"
	"seqcache/core/recparser"
)

// Parser emits one FASTQ Read per Next call from a single worker's Handle.
// Not safe for concurrent use; each worker owns its own Parser.
type Parser struct {
	cursor   *recparser.LineCursor
	counters *metrics.Counters
	finished bool
}

// New constructs a Parser reading from h. counters may be nil.
func New(h *cacheman.Handle, counters *metrics.Counters) *Parser {
	return &Parser{cursor: recparser.NewLineCursor(h), counters: counters}
}

// Done reports whether the most recent Next call observed end-of-stream.
func (p *Parser) Done() bool { return p.finished }

func (p *Parser) fail(reason string) (recparser.Read, error) {
	if p.counters != nil {
		p.counters.FormatErrors.Add(1)
	}
	return recparser.Read{}, &recparser.FormatError{Format: "fastq", Reason: reason}
}

func (p *Parser) truncated() (recparser.Read, error) {
	p.finished = true
	return p.fail("record truncated at end of input")
}

// Next parses and returns the next four-line record, blocking as needed.
// Once the stream is exhausted it returns recparser.ErrNoMoreReads on every
// call.
func (p *Parser) Next() (recparser.Read, error) {
	if p.finished {
		return recparser.Read{}, recparser.ErrNoMoreReads
	}

	for {
		more, err := p.cursor.AwaitRecordStart()
		if err != nil {
			return recparser.Read{}, err
		}
		if !more {
			p.finished = true
			return recparser.Read{}, recparser.ErrNoMoreReads
		}

		recordStart, header, outcome, err := p.cursor.Next()
		if err != nil {
			return recparser.Read{}, err
		}
		if outcome == recparser.LineNeedsSplit {
			if serr := p.cursor.Handle().SplitAt(recordStart); serr != nil {
				return recparser.Read{}, serr
			}
			continue
		}
		if outcome == recparser.LineEOF {
			return p.truncated()
		}
		if len(header) == 0 || header[0] != '@' {
			return p.fail("record does not start with '@'")
		}

		rec, status, reason, err := p.readRemainder(recordStart, header)
		if err != nil {
			return recparser.Read{}, err
		}
		switch status {
		case statusNeedsSplit:
			if serr := p.cursor.Handle().SplitAt(recordStart); serr != nil {
				return recparser.Read{}, serr
			}
			continue
		case statusTruncated:
			return p.truncated()
		case statusBadShape:
			return p.fail(reason)
		}

		if p.counters != nil {
			p.counters.RecordsRead.Add(1)
		}
		return rec, nil
	}
}

type bodyStatus int

const (
	statusOK bodyStatus = iota
	statusNeedsSplit
	statusTruncated
	statusBadShape
)

// readRemainder reads the sequence, plus, and accuracy lines that complete
// the four-line record started by header. All three reads happen against
// the segment's current fill with no intervening wait, per the boundary
// policy LineCursor enforces.
func (p *Parser) readRemainder(recordStart int, header []byte) (recparser.Read, bodyStatus, string, error) {
	seqLine, status, err := p.plainLine()
	if err != nil || status != statusOK {
		return recparser.Read{}, status, "", err
	}
	sequence := string(stripWhitespace(seqLine))

	plusLine, status, err := p.plainLine()
	if err != nil || status != statusOK {
		return recparser.Read{}, status, "", err
	}
	if len(plusLine) == 0 || plusLine[0] != '+' {
		return recparser.Read{}, statusBadShape, "plus line does not start with '+'", nil
	}

	qualLine, status, err := p.plainLine()
	if err != nil || status != statusOK {
		return recparser.Read{}, status, "", err
	}
	accuracy := string(stripWhitespace(qualLine))

	if len(accuracy) != len(sequence) {
		return recparser.Read{}, statusBadShape, "sequence and accuracy lines differ in length", nil
	}

	endOffset := p.cursor.Handle().WhereIsCursor()
	name, annotations := splitHeader(header[1:])
	name, annotations = stripMateSuffix(name, annotations)

	return recparser.Read{
		Name:          name,
		Annotations:   annotations,
		Sequence:      sequence,
		Accuracy:      accuracy,
		BytesConsumed: endOffset - recordStart,
	}, statusOK, "", nil
}

// plainLine reads the next line verbatim, translating LineCursor's outcome
// into a bodyStatus the caller can switch on.
func (p *Parser) plainLine() ([]byte, bodyStatus, error) {
	_, line, outcome, err := p.cursor.Next()
	if err != nil {
		return nil, statusOK, err
	}
	switch outcome {
	case recparser.LineNeedsSplit:
		return nil, statusNeedsSplit, nil
	case recparser.LineEOF:
		return nil, statusTruncated, nil
	default:
		return line, statusOK, nil
	}
}

func splitHeader(rest []byte) (name, annotations string) {
	s := string(rest)
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		return s[:idx], strings.TrimSpace(s[idx+1:])
	}
	return s, ""
}

// stripMateSuffix removes a trailing "/1" or "/2" mate marker from name. If
// the header carried no other annotation, the marker is preserved there;
// otherwise the existing annotation text is kept as-is.
func stripMateSuffix(name, annotations string) (string, string) {
	if len(name) < 2 || name[len(name)-2] != '/' {
		return name, annotations
	}
	mate := name[len(name)-1]
	if mate != '1' && mate != '2' {
		return name, annotations
	}
	suffix := name[len(name)-2:]
	trimmed := name[:len(name)-2]
	if annotations == "" {
		return trimmed, suffix
	}
	return trimmed, annotations
}

func stripWhitespace(line []byte) []byte {
	out := line[:0:0]
	for _, b := range line {
		if b == ' ' || b == '\t' {
			continue
		}
		out = append(out, b)
	}
	return out
}
