// Package fasta implements the FASTA record parser variant.
package fasta

import (
	"bytes"
	"strings"

	"seqcache/core/cacheman"
	"seqcache/core/metrics"
	"seqcache/core/recparser"
)

// Parser emits one FASTA Read per Next call from a single worker's Handle.
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

func (p *Parser) truncated() (recparser.Read, error) {
	p.finished = true
	if p.counters != nil {
		p.counters.FormatErrors.Add(1)
	}
	return recparser.Read{}, &recparser.FormatError{Format: "fasta", Reason: "record truncated at end of input"}
}

// empty reports a zero-length sequence that isn't also end-of-stream: more
// records may follow, so unlike truncated it does not finish the parser.
func (p *Parser) empty() (recparser.Read, error) {
	if p.counters != nil {
		p.counters.FormatErrors.Add(1)
	}
	return recparser.Read{}, &recparser.FormatError{Format: "fasta", Reason: "zero-length sequence"}
}

// Next parses and returns the next record, blocking as needed. Once the
// stream is exhausted it returns recparser.ErrNoMoreReads on every call.
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
		if len(header) == 0 || header[0] != '>' {
			if p.counters != nil {
				p.counters.FormatErrors.Add(1)
			}
			return recparser.Read{}, &recparser.FormatError{Format: "fasta", Reason: "record does not start with '>'"}
		}

		rec, status, err := p.readBody(recordStart, header)
		if err != nil {
			return recparser.Read{}, err
		}
		if status == statusNeedsSplit {
			if serr := p.cursor.Handle().SplitAt(recordStart); serr != nil {
				return recparser.Read{}, serr
			}
			continue
		}
		if status == statusTruncated {
			return p.truncated()
		}
		if status == statusEmpty {
			return p.empty()
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
	statusEmpty
)

func (p *Parser) readBody(recordStart int, header []byte) (recparser.Read, bodyStatus, error) {
	name, annotations := splitHeader(header[1:])

	var seq bytes.Buffer
	endOffset := p.cursor.Handle().WhereIsCursor()
	hitEOF := false

	for {
		lineStart, line, outcome, err := p.cursor.Next()
		if err != nil {
			return recparser.Read{}, statusOK, err
		}
		if outcome == recparser.LineNeedsSplit {
			return recparser.Read{}, statusNeedsSplit, nil
		}
		if outcome == recparser.LineEOF {
			hitEOF = true
			break // nothing more will ever arrive; finalize with what we have
		}
		if len(line) > 0 && line[0] == '>' {
			p.cursor.PushBack(lineStart, line)
			break
		}
		seq.Write(stripWhitespace(line))
		endOffset = p.cursor.Handle().WhereIsCursor()
	}

	if seq.Len() == 0 {
		if hitEOF {
			return recparser.Read{}, statusTruncated, nil
		}
		return recparser.Read{}, statusEmpty, nil
	}

	return recparser.Read{
		Name:          name,
		Annotations:   annotations,
		Sequence:      seq.String(),
		BytesConsumed: endOffset - recordStart,
	}, statusOK, nil
}

func splitHeader(rest []byte) (name, annotations string) {
	s := string(rest)
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		return s[:idx], strings.TrimSpace(s[idx+1:])
	}
	return s, ""
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
