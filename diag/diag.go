// Package diag prints pass-schedule progress in the terse, tag-prefixed
// style the rest of the toolchain uses for console output.
package diag

import "github.com/pterm/pterm"

var (
	passTag   = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	fixTag    = pterm.NewStyle(pterm.FgMagenta, pterm.Bold)
	traceTag  = pterm.NewStyle(pterm.FgGray)
	verbosity = Quiet
)

type Verbosity int

const (
	Quiet Verbosity = iota
	Normal
	Trace
)

// SetVerbosity controls how much of the pass schedule's progress is
// printed; Quiet prints nothing.
func SetVerbosity(v Verbosity) { verbosity = v }

// Pass announces the start of a single optimisation pass over the
// definition set.
func Pass(name string) {
	if verbosity < Normal {
		return
	}
	passTag.Printfln("[pass] %s", name)
}

// PassResult reports how many rewrites a pass performed.
func PassResult(name string, count int) {
	if verbosity < Normal {
		return
	}
	passTag.Printfln("[pass] %s: %d rewrite(s)", name, count)
}

// Fixpoint announces that a fixpoint loop has settled after n rounds.
func Fixpoint(loop string, rounds int) {
	if verbosity < Normal {
		return
	}
	fixTag.Printfln("[fixpoint] %s settled after %d round(s)", loop, rounds)
}

// Tracef prints a low-level message, only under Trace verbosity.
func Tracef(format string, args ...interface{}) {
	if verbosity < Trace {
		return
	}
	traceTag.Printfln("[trace] "+format, args...)
}
