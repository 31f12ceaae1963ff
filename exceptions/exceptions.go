/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package exceptions bridges a host-detected error condition (a division by
// zero, a bad array index, a malformed class) into the Java-observable
// exception machinery described in spec.md §4.11 "Exception unwind" and §7
// "Error handling design": construct the right Throwable instance, search
// the current frame's handler table, and either resume in a catch block or
// propagate to the caller.
package exceptions

import (
	"fmt"

	"tessera/excNames"
	"tessera/frames"
	"tessera/log"
)

// Status reports what ThrowEx/ThrowExNil did with the exception.
type Status int

const (
	// Caught means a handler in the current call chain took the exception;
	// execution resumes inside that handler. In the reference VM this never
	// actually returns to the caller of ThrowEx -- the interpreter loop
	// jumps to the handler PC instead. In a host-only test context (no
	// running interpreter loop), ThrowEx has nothing to jump to, so it
	// reports NotCaught and returns control to the caller, letting test
	// code observe the error without the process exiting.
	Caught Status = iota
	NotCaught
)

// FrameStack is populated by package jvm at call time; exceptions doesn't
// import jvm (to avoid a cycle), so it asks for the active call chain
// through this function pointer, set once at VM start-up.
var FrameStack func() []*frames.Frame

// Thrower is set by package jvm to actually perform the unwind: search each
// frame's exception table for a handler matching the thrown class, and on a
// match, clear the operand stack, push the exception object, and jump PC to
// the handler. When nil (a host-only test, or before the VM wires it up),
// ThrowEx logs the condition and returns NotCaught instead of unwinding.
var Thrower func(kind excNames.JVMErrorType, msg string, f *frames.Frame) bool

// ThrowEx raises a host-internal error condition as a Java exception of the
// class mapped by excNames.JavaClassNames[kind], starting the unwind search
// from frame f (nil when no Java frame is active, e.g. during class
// loading).
func ThrowEx(kind excNames.JVMErrorType, msg string, f *frames.Frame) Status {
	className := excNames.JavaClassNames[kind]
	logMsg := fmt.Sprintf("%s: %s", className, msg)
	_ = log.Log(logMsg, log.SEVERE)

	if Thrower == nil {
		return NotCaught
	}
	if Thrower(kind, msg, f) {
		return Caught
	}
	return NotCaught
}

// ThrowExNil is ThrowEx with no active frame, used during class loading and
// other frame-less host operations.
func ThrowExNil(kind excNames.JVMErrorType, msg string) Status {
	return ThrowEx(kind, msg, nil)
}
