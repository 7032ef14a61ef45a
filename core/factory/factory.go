// Package factory wires the three core layers together: it sniffs an input
// path into a streamreader.Reader, wraps it in a cacheman.Manager sized for
// the configured thread count, and hands each worker the record parser
// variant appropriate for the requested format.
package factory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"seqcache/core/cacheman"
	"seqcache/core/metrics"
	"seqcache/core/recparser"
	"seqcache/core/recparser/fasta"
	"seqcache/core/recparser/fastq"
	"seqcache/core/streamreader"
)

// Format selects which record grammar a Variant parses.
type Format int

const (
	FASTA Format = iota
	FASTQ
)

func (f Format) String() string {
	if f == FASTQ {
		return "fastq"
	}
	return "fasta"
}

// UnrecognizedExtensionError is returned by DetectFormat when path's
// extension (after stripping a trailing .gz/.bz2) isn't a known FASTA or
// FASTQ suffix.
type UnrecognizedExtensionError struct {
	Path string
}

func (e *UnrecognizedExtensionError) Error() string {
	return fmt.Sprintf("factory: cannot infer record format from %q; pass -format explicitly", e.Path)
}

// DetectFormat infers a Format from path's extension, ignoring a trailing
// compression suffix (".gz" or ".bz2"). Stdin ("-") has no extension to
// inspect and always requires an explicit format.
func DetectFormat(path string) (Format, error) {
	base := path
	for _, ext := range []string{".gz", ".bz2"} {
		base = strings.TrimSuffix(base, ext)
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".fa", ".fasta", ".fna":
		return FASTA, nil
	case ".fq", ".fastq":
		return FASTQ, nil
	default:
		return FASTA, &UnrecognizedExtensionError{Path: path}
	}
}

// Config mirrors the run's recognized options, made explicit constructor
// arguments rather than a global singleton.
type Config struct {
	NumberOfThreads      int
	ReadsInputBufferSize int
	TraceLevel           int
}

// Open sniffs path's transport and returns a Manager ready for cfg.
// NumberOfThreads workers. Callers that want the full worker-pool driver
// should prefer Run.
func Open(path string, cfg Config) (*cacheman.Manager, error) {
	reader, err := streamreader.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := cacheman.NewManager(reader, cfg.NumberOfThreads, cfg.ReadsInputBufferSize)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}
	return m, nil
}

// NewVariant constructs the Next()/Done() parser for format over h,
// reporting its progress through counters (nil is accepted).
func NewVariant(format Format, h *cacheman.Handle, counters *metrics.Counters) recparser.Variant {
	if format == FASTQ {
		return fastq.New(h, counters)
	}
	return fasta.New(h, counters)
}

// ReadFunc is invoked once per successfully parsed record, from whichever
// worker produced it; workerID identifies the owning goroutine ([0, N)).
// Implementations must be safe for concurrent use by cfg.NumberOfThreads
// callers, or do their own synchronization before returning.
type ReadFunc func(workerID int, r recparser.Read) error

// Run opens path, drives cfg.NumberOfThreads workers each parsing format
// records from their own segment, and calls onRead for every record any
// worker produces. It returns the manager (for OrphanedFragments and
// per-worker Counters after return) and the error cacheman.Run reports.
// Malformed records are skipped: a FormatError is counted in the worker's
// FormatErrors counter by the parser and is never returned from Run.
func Run(ctx context.Context, path string, format Format, cfg Config, onRead ReadFunc) (*cacheman.Manager, error) {
	reader, err := streamreader.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return cacheman.Run(ctx, reader, cfg.NumberOfThreads, cfg.ReadsInputBufferSize, func(ctx context.Context, h *cacheman.Handle) error {
		v := NewVariant(format, h, h.Counters())
		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rec, err := v.Next()
			if err != nil {
				if errors.Is(err, recparser.ErrNoMoreReads) {
					return nil
				}
				if _, ok := err.(*recparser.FormatError); ok {
					// Malformed record: skip it and keep this worker going
					// rather than aborting the whole run over one bad read.
					continue
				}
				return err
			}
			if err := onRead(h.ID(), rec); err != nil {
				return err
			}
		}
	})
}
