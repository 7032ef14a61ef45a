// Package cmdutil holds small CLI-facing helpers shared by the command
// entry points: leveled warnings and trace output over a plain io.Writer.
package cmdutil

import (
	"fmt"
	"io"
)

// Warnf writes a warning line to dst unless quiet suppresses it.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}

// Tracef writes a leveled trace line to dst when level <= threshold. Trace
// output is a write-only sink: callers never read it back.
func Tracef(dst io.Writer, threshold, level int, format string, a ...any) {
	if level > threshold {
		return
	}
	_, _ = fmt.Fprintf(dst, "TRACE[%d]: "+format+"\n", append([]any{level}, a...)...)
}
