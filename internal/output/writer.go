// Package output renders parsed reads back out, just enough to make
// a round-trip property checkable. It is not a general
// FASTA/FASTQ writer: it makes no guarantees about line wrapping, byte
// offsets, or anything beyond reconstructing name/annotations/sequence
// (and accuracy, for FASTQ) from a recparser.Read.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"seqcache/core/recparser"
)

// Writer emits one Read at a time to an underlying io.Writer.
type Writer interface {
	Write(r recparser.Read) error
}

type fastaWriter struct{ w io.Writer }

// NewFASTA returns a Writer that renders each Read as a FASTA record.
func NewFASTA(w io.Writer) Writer { return &fastaWriter{w: w} }

func (f *fastaWriter) Write(r recparser.Read) error {
	header := r.Name
	if r.Annotations != "" {
		header += " " + r.Annotations
	}
	_, err := fmt.Fprintf(f.w, ">%s\n%s\n", header, r.Sequence)
	return err
}

type fastqWriter struct{ w io.Writer }

// NewFASTQ returns a Writer that renders each Read as a four-line FASTQ
// record.
func NewFASTQ(w io.Writer) Writer { return &fastqWriter{w: w} }

func (f *fastqWriter) Write(r recparser.Read) error {
	header := r.Name
	if r.Annotations != "" {
		header += " " + r.Annotations
	}
	_, err := fmt.Fprintf(f.w, "@%s\n%s\n+\n%s\n", header, r.Sequence, r.Accuracy)
	return err
}

type jsonlWriter struct {
	enc *json.Encoder
}

// NewJSONL returns a Writer that marshals each Read as one JSON object per
// line via encoding/json, using the same tagged-struct convention as the
// rest of the ambient stack.
func NewJSONL(w io.Writer) Writer { return &jsonlWriter{enc: json.NewEncoder(w)} }

func (j *jsonlWriter) Write(r recparser.Read) error { return j.enc.Encode(r) }

// New resolves a Writer by name ("fasta", "fastq", "jsonl").
func New(mode string, w io.Writer) (Writer, error) {
	switch mode {
	case "fasta":
		return NewFASTA(w), nil
	case "fastq":
		return NewFASTQ(w), nil
	case "jsonl":
		return NewJSONL(w), nil
	default:
		return nil, fmt.Errorf("output: unrecognized mode %q", mode)
	}
}
