/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package types holds the small, dependency-free constants and conversions
// shared across the VM: category-1/2 value-width rules, descriptor prefix
// bytes, and the fixed string-pool indices reserved for bootstrap classes.
package types

// Descriptor prefix bytes, per JVMS 4.3.2.
const (
	Byte      = "B"
	Char      = "C"
	Double    = "D"
	Float     = "F"
	Int       = "I"
	Long      = "J"
	Reference = "L"
	Short     = "S"
	Boolean   = "Z"
	Bool      = "Z" // alias used by some call sites for readability
	Void      = "V"
	Array     = "["
)

// ByteArray is the descriptor for a byte array, used constantly as the
// backing-field type for java/lang/String's compact byte representation.
const ByteArray = "[B"

// Fully-qualified names used often enough to deserve a constant.
const (
	ObjectClassName    = "java/lang/Object"
	StringClassName    = "java/lang/String"
	ClassClassName     = "java/lang/Class"
	ThrowableClassName = "java/lang/Throwable"
)

// Java booleans are represented as int64 0/1 on the operand stack and in
// field storage -- there is no dedicated boolean runtime type.
const (
	JavaBoolFalse int64 = 0
	JavaBoolTrue  int64 = 1
)

// ConvertGoBoolToJavaBool maps a native bool onto the JVM's int64 encoding.
func ConvertGoBoolToJavaBool(b bool) int64 {
	if b {
		return JavaBoolTrue
	}
	return JavaBoolFalse
}

// <clinit> lifecycle markers stored on a linked class (ClData.ClInit).
const (
	ClInitNotRun byte = iota
	ClInitInProgress
	ClInitRun
)

// Reserved string-pool indices. Index 0 is always the empty/invalid
// sentinel; the handful that follow are assigned to bootstrap classes during
// stringPool.Init so that other packages (classloader, object, gfunction) can
// refer to them without a map lookup on the hot path.
const (
	InvalidStringIndex uint32 = 0
	ObjectPoolStringIndex uint32 = 1
	StringPoolStringIndex uint32 = 2
	ClassPoolStringIndex  uint32 = 3
	ThrowablePoolStringIndex uint32 = 4
)

// IsCategory2 reports whether a descriptor character denotes a long or a
// double -- the two JVM types that occupy two stack/local slots.
func IsCategory2(descriptorChar string) bool {
	return descriptorChar == Long || descriptorChar == Double
}
