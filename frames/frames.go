/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package frames implements the per-invocation execution state described in
// spec.md §3 "Frame" and §4.5 "Operand stack and local variables": a
// category-1/2-aware local variable array and a depth-bounded operand stack,
// bundled with the bookkeeping the interpreter needs to resume after a call
// or an exception.
package frames

import (
	"container/list"

	"tessera/classloader"
)

// Frame is one activation record on a thread's frame stack.
type Frame struct {
	ClName   string // name of the class owning the executing method
	MethName string // method name, without descriptor
	MethType string // method descriptor
	Meth     []byte // the method's raw bytecode

	// CP is the constant pool belonging to the class that owns this method,
	// stashed as interface{} rather than *classloader.CPool: package jvm
	// type-asserts it back to *classloader.CPool at each use, the same way
	// test code that builds a bare frame does, and a frame built without a
	// constant pool simply leaves it nil.
	CP interface{}

	PC  int // index of the next instruction to execute
	TOS int // index of the top of OpStack; -1 when empty

	OpStack []interface{}
	Locals  []interface{}

	// Held monitors acquired by this frame via monitorenter, released (in
	// LIFO order) when the frame is popped -- including on exception unwind,
	// per spec.md §5 "Scoped acquisition".
	HeldMonitors []interface{}

	// ExceptionHandlers mirrors the method's exception table so the unwind
	// loop in package jvm can search it without reaching back into the
	// class's method table.
	ExceptionHandlers []classloader.CodeException

	// Thread is the id of the thread (package thread's ExecThread.ID) this
	// frame is executing on, used by trace output and by native-method
	// dispatch to report which thread made the call.
	Thread int64
}

// CreateFrame allocates a frame whose operand stack can hold maxStack
// values; locals are sized separately via NewLocals since max-locals isn't
// known until the method is resolved.
func CreateFrame(maxStack int) *Frame {
	return &Frame{
		OpStack: make([]interface{}, maxStack),
		TOS:     -1,
		PC:      0,
	}
}

// NewLocals (re)allocates the local variable array to hold maxLocals slots,
// each initialized to nil.
func (f *Frame) NewLocals(maxLocals int) {
	f.Locals = make([]interface{}, maxLocals)
}

// Depth returns the number of values currently on the operand stack.
func (f *Frame) Depth() int {
	return f.TOS + 1
}

// CreateFrameStack allocates an empty thread call-frame stack. It's a
// *list.List (frames pushed at the front, popped from the front) rather than
// a typed stack so package exceptions can hold one without importing jvm.
func CreateFrameStack() *list.List {
	return list.New()
}

// PopFrame removes and returns the frame at the front of fs (the currently
// executing frame), or nil if fs is empty.
func PopFrame(fs *list.List) *Frame {
	e := fs.Front()
	if e == nil {
		return nil
	}
	fs.Remove(e)
	return e.Value.(*Frame)
}
