/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package gfunction holds the "g-function" registry: Go implementations of
// JDK native and performance-critical methods, keyed by full method
// signature, that the interpreter invokes in place of executing bytecode
// (spec.md §4.10 "Intrinsic/native method bridge"). Every method follows the
// same Go signature regardless of its Java counterpart's shape -- it takes
// the slice of popped operand-stack arguments and returns either the Java
// result, nil (for void), or a *GErrBlk describing a Java exception to raise.
package gfunction

import (
	"tessera/excNames"
)

// GMeth is one entry in the method-signature registry: how many operand
// stack slots the interpreter pops to build params, the Go function to
// call, and whether the function additionally needs the caller's frame
// stack (for call sites that need to walk or mutate caller frames, e.g.
// Throwable.fillInStackTrace).
type GMeth struct {
	ParamSlots   int
	GFunction    func([]interface{}) interface{}
	NeedsContext bool
}

// GErrBlk is returned by a g-function in place of a normal value to signal
// that a Java exception of the given kind should be thrown with msg as its
// detail message.
type GErrBlk struct {
	ExceptionType excNames.JVMErrorType
	ErrMsg        string
}

// getGErrBlk builds a *GErrBlk; g-functions return its result directly so
// the interpreter can type-switch on the return value to detect an error
// without every g-function needing a second return value.
func getGErrBlk(kind excNames.JVMErrorType, msg string) *GErrBlk {
	return &GErrBlk{ExceptionType: kind, ErrMsg: msg}
}

// MethodSignatures is the full registry: fully-qualified method signature
// (e.g. "java/lang/String.length()I") to its GMeth entry. Each Load_* function
// merges its own entries into this shared map and returns it for convenience.
var MethodSignatures = make(map[string]GMeth)

// justReturn is the GFunction for natives whose only effect in the real JDK
// is internal bookkeeping that this VM doesn't model (registerNatives is the
// canonical example: it wires JNI native stubs that this VM never calls).
func justReturn([]interface{}) interface{} {
	return nil
}

// loaders lists every per-class Load_* function; MethodSignaturesInit calls
// each one once to populate MethodSignatures before the VM starts executing
// bytecode.
var loaders = []func() map[string]GMeth{
	Load_Lang_String,
	Load_Lang_System,
	Load_Lang_Throwable,
}

// MethodSignaturesInit populates MethodSignatures from every registered
// class loader function. It's idempotent: calling it more than once just
// re-assigns the same entries.
func MethodSignaturesInit() {
	for _, load := range loaders {
		load()
	}
}
