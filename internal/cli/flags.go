// Package cli defines the seqcache command-line flag surface over pflag,
// layered over internal/config's file-based values.
package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"seqcache/core/factory"
	"seqcache/internal/config"
)

// Options is the fully resolved set of run parameters: config file values
// and built-in defaults overridden by whatever flags the user passed.
type Options struct {
	Path       string
	Format     factory.Format
	HasFormat  bool
	ConfigPath string
	Output     string
	Stats      bool
	Quiet      bool
	Config     config.Values
}

// Parse builds the seqcache flag set, parses args, and resolves Options.
// Flag parse errors are returned to the caller.
func Parse(args []string) (Options, error) {
	fs := flag.NewFlagSet("seqcache", flag.ContinueOnError)

	configPath := fs.String("config", "", "path to a JSONC config file")
	threads := fs.Int("threads", 0, "number of worker goroutines (overrides config)")
	bufSize := fs.Int("buffer-size", 0, "total cache buffer size in bytes (overrides config)")
	traceLevel := fs.Int("trace-level", 0, "trace verbosity, 0-255 (overrides config)")
	format := fs.String("format", "", "record format: fasta|fastq (default: inferred from extension)")
	output := fs.String("output", "fasta", "output mode: fasta|fastq|jsonl")
	stats := fs.Bool("stats", false, "print per-run counters to stderr on completion")
	quiet := fs.Bool("quiet", false, "suppress warnings")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	fileCfg, err := config.LoadOptional(configOrDefault(*configPath))
	if err != nil {
		return Options{}, err
	}

	cfg := config.Merge(config.Defaults(), fileCfg)
	cfg = config.Merge(cfg, config.Values{
		NumberOfThreads:      *threads,
		ReadsInputBufferSize: *bufSize,
		TraceLevel:           *traceLevel,
	})

	opts := Options{
		ConfigPath: *configPath,
		Output:     *output,
		Stats:      *stats,
		Quiet:      *quiet,
		Config:     cfg,
	}

	switch fs.NArg() {
	case 0:
		return Options{}, fmt.Errorf("cli: missing input path")
	case 1:
		opts.Path = fs.Arg(0)
	default:
		return Options{}, fmt.Errorf("cli: expected exactly one input path, got %d", fs.NArg())
	}

	if *format != "" {
		f, err := parseFormat(*format)
		if err != nil {
			return Options{}, err
		}
		opts.Format = f
		opts.HasFormat = true
	}

	return opts, nil
}

func configOrDefault(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return ".seqcache.jsonc"
}

func parseFormat(s string) (factory.Format, error) {
	switch s {
	case "fasta":
		return factory.FASTA, nil
	case "fastq":
		return factory.FASTQ, nil
	default:
		return 0, fmt.Errorf("cli: unrecognized -format %q, want fasta or fastq", s)
	}
}
