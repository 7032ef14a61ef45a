// Package app wires the CLI surface to the core pipeline: parse flags,
// open the input, run the worker pool, and stream results to the chosen
// output writer.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"seqcache/core/factory"
	"seqcache/core/metrics"
	"seqcache/core/recparser"
	"seqcache/internal/cli"
	"seqcache/internal/cmdutil"
	"seqcache/internal/output"
)

// RunContext parses argv, runs the pipeline, and returns a process exit
// code: 0 on success, 2 on a usage/flag error, 1 on a pipeline failure.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(argv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	format := opts.Format
	if !opts.HasFormat {
		format, err = factory.DetectFormat(opts.Path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()
	writer, err := output.New(opts.Output, outw)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	var mu sync.Mutex
	cfg := factory.Config{
		NumberOfThreads:      opts.Config.NumberOfThreads,
		ReadsInputBufferSize: opts.Config.ReadsInputBufferSize,
		TraceLevel:           opts.Config.TraceLevel,
	}

	cmdutil.Tracef(stderr, cfg.TraceLevel, 1, "opening %s as %s with %d threads", opts.Path, format, cfg.NumberOfThreads)

	m, err := factory.Run(ctx, opts.Path, format, cfg, func(workerID int, r recparser.Read) error {
		mu.Lock()
		defer mu.Unlock()
		return writer.Write(r)
	})
	if err != nil {
		cmdutil.Warnf(stderr, opts.Quiet, "%v", err)
		_ = outw.Flush()
		return 1
	}

	if err := outw.Flush(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if opts.Stats {
		printStats(stderr, m, cfg.NumberOfThreads)
	}

	if orphans := m.OrphanedFragments(); len(orphans) > 0 {
		cmdutil.Warnf(stderr, opts.Quiet, "%d copyaside fragment(s) were never claimed: %v", len(orphans), orphans)
	}

	return 0
}

func printStats(stderr io.Writer, m interface {
	Counters(int) *metrics.Counters
}, n int) {
	per := make([]*metrics.Counters, n)
	for i := 0; i < n; i++ {
		per[i] = m.Counters(i)
	}
	total := metrics.Sum(per)
	fmt.Fprintf(stderr, "records=%d bytes=%d splits=%d format_errors=%d fill_nanos=%d wait_nanos=%d barrier_nanos=%d\n",
		total.RecordsRead.Load(), total.BytesRead.Load(), total.SplitCount.Load(),
		total.FormatErrors.Load(), total.FillNanos.Load(), total.WaitNanos.Load(), total.BarrierNanos.Load())
}

// Run runs RunContext against context.Background(), for callers that don't
// need cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
