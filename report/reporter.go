package report

import (
	"fmt"
	"os"
	"sync"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelVerbose
)

type reporter struct {
	m        sync.Mutex
	logLevel LogLevel
	isErr    bool
	warnings int
}

var rep = &reporter{logLevel: LogLevelWarn}

// SetLogLevel configures the global reporter; it is safe to call before
// a compilation begins, not concurrently with one.
func SetLogLevel(level LogLevel) {
	rep.logLevel = level
}

// AnyErrors reports whether any Failure has been reported this run.
func AnyErrors() bool {
	rep.m.Lock()
	defer rep.m.Unlock()
	return rep.isErr
}

// Reset clears error/warning state so a process can run multiple
// compilations without leaking state between them.
func Reset() {
	rep.m.Lock()
	defer rep.m.Unlock()
	rep.isErr = false
	rep.warnings = 0
}

// Report is the diagnostic sink the core calls into: report(Failure).
// AmbiguousTypeVariable is warning-class and never sets the error flag;
// every other kind is reported as an error.
func Report(f *Failure) {
	rep.m.Lock()
	defer rep.m.Unlock()
	if f.Kind == AmbiguousTypeVariable {
		rep.warnings++
		if rep.logLevel >= LogLevelWarn {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", f.Kind, f.Message)
		}
		return
	}
	rep.isErr = true
	if rep.logLevel >= LogLevelError {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", f.Kind, f.Message)
	}
}

// ReportICE reports an internal compiler error: an invariant the core
// believes can never be violated. Always displayed regardless of level,
// and always aborts the process, since continuing risks emitting
// corrupt output.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()
	fmt.Fprintf(os.Stderr, "internal error: %s\n", fmt.Sprintf(message, args...))
	os.Exit(-1)
}

// CatchErrors recovers a panic carrying a *Failure raised during a pass
// and turns it into a normal Report call, so that a single malformed
// definition does not bring down an entire pipeline run. Must always be
// deferred.
func CatchErrors() {
	if x := recover(); x != nil {
		if f, ok := x.(*Failure); ok {
			Report(f)
			return
		}
		panic(x)
	}
}
