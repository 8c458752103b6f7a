// Package rlog is numcalc's ambient debug logger: a DEBUG/TRACE pair
// gated by the NUMCALC_DEBUG and NUMCALC_TRACE environment variables,
// cheap enough to leave wired at hot-path call sites.
package rlog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fieldcraft/numcalc/internal/ansi"
)

func envFlag(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" || v == "0" || v == "false" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

var (
	debugEnabled = envFlag("NUMCALC_DEBUG")
	traceEnabled = envFlag("NUMCALC_TRACE")
)

// DEBUG prints a debug line to stderr when NUMCALC_DEBUG is set.
func DEBUG(format string, args ...interface{}) {
	if !debugEnabled && !traceEnabled {
		return
	}
	fmt.Fprintln(os.Stderr, ansi.Sprintf("@C{DEBUG}")+" "+fmt.Sprintf(format, args...))
}

// TRACE prints a trace line to stderr when NUMCALC_TRACE is set. Trace
// implies debug: enabling trace without explicitly setting debug still
// prints DEBUG lines.
func TRACE(format string, args ...interface{}) {
	if !traceEnabled {
		return
	}
	fmt.Fprintln(os.Stderr, ansi.Sprintf("@M{TRACE}")+" "+fmt.Sprintf(format, args...))
}

// TraceEnabled reports whether trace-level logging is active.
func TraceEnabled() bool { return traceEnabled }

// DebugEnabled reports whether debug-level logging is active.
func DebugEnabled() bool { return debugEnabled || traceEnabled }
