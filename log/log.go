/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package log is the VM-wide leveled logger. Every other package logs
// through Log() rather than the standard library's log package directly, so
// that a single global level gates both interpreter tracing and fatal
// diagnostics.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// Level ordering follows increasing verbosity; a message is emitted only if
// its level is <= the currently configured level.
const (
	SEVERE = iota
	WARNING
	CONFIG
	INFO
	CLASS
	FINE
	FINEST
	TRACE_INST
)

var levelNames = map[int]string{
	SEVERE:     "SEVERE",
	WARNING:    "WARNING",
	CONFIG:     "CONFIG",
	INFO:       "INFO",
	CLASS:      "CLASS",
	FINE:       "FINE",
	FINEST:     "FINEST",
	TRACE_INST: "TRACE_INST",
}

var (
	currentLevel int32 = WARNING
	// out is nil until SetOutput is called explicitly; Log() then falls back
	// to reading the package-level os.Stderr live on every call, so a test
	// that redirects os.Stderr *after* Init() still gets captured output.
	out         io.Writer
	initialized int32
)

// Init resets the logger to its default level and output. Safe to call more
// than once (tests call it at the top of every TestXxx).
func Init() {
	atomic.StoreInt32(&currentLevel, WARNING)
	out = nil
	atomic.StoreInt32(&initialized, 1)
}

// SetLogLevel changes the verbosity threshold. Returns an error for an
// unrecognized level so callers (notably CLI flag parsing) can report a
// useful message instead of silently clamping.
func SetLogLevel(level int) error {
	if _, ok := levelNames[level]; !ok {
		return errors.New("log.SetLogLevel: unrecognized level")
	}
	atomic.StoreInt32(&currentLevel, int32(level))
	return nil
}

// SetOutput redirects log output; used by tests to capture or silence it.
func SetOutput(w io.Writer) {
	out = w
}

// Log emits msg if level is within the current verbosity threshold. It
// returns an error only when the level argument itself is invalid --
// callers that ignore the return value (most of them, via `_ = log.Log(...)`)
// still get the message written when the level is recognized.
func Log(msg string, level int) error {
	if _, ok := levelNames[level]; !ok {
		return errors.New("log.Log: unrecognized level")
	}
	if level > int(atomic.LoadInt32(&currentLevel)) {
		return nil
	}
	w := out
	if w == nil {
		w = os.Stderr
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(w, "[%s] %-10s %s\n", ts, levelNames[level], msg)
	return nil
}
