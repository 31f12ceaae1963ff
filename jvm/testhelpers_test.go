/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import "tessera/frames"

// zero is the conventional placeholder value these tests use to pad out a
// frame's local variable slots before exercising the slot they actually
// care about.
var zero = int64(0)

// newFrame builds a single-opcode frame for an opcode-level unit test: Meth
// holds just the opcode byte, with PC at 0 pointing at it, so a test can
// append operand bytes and assert PC's final position afterward.
func newFrame(opcode int) frames.Frame {
	f := frames.CreateFrame(16)
	f.Meth = []byte{byte(opcode)}
	return *f
}
