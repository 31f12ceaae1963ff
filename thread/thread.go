/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package thread implements the VM's cooperative "green thread" model
// (spec.md §5 "Concurrency"): one ExecThread per java.lang.Thread instance,
// each carrying its own call-frame stack, registered in the process-wide
// thread table under a monotonically increasing id.
package thread

import (
	"container/list"

	"tessera/globals"
)

// ExecThread is the VM-side handle for one running Java thread.
type ExecThread struct {
	ID    int
	Trace bool // per-thread bytecode trace flag (spec.md §4.11 trace logging)

	// Stack is this thread's call-frame stack, a list of *frames.Frame
	// pushed/popped as methods are invoked and return. Declared as
	// *list.List, the same type frames.CreateFrameStack returns.
	Stack *list.List

	// MonitorDepth is a count of the monitors this thread holds; nothing in
	// the VM updates it, so it stays 0.
	MonitorDepth int
}

// CreateThread allocates a new ExecThread with an empty frame stack, tracing
// off, and an id claimed from the process-wide globals singleton -- the id
// is assigned here rather than in AddThreadToTable so a freshly created
// thread always has a valid, already-unique identity even before it's
// registered in the thread table.
func CreateThread() *ExecThread {
	return &ExecThread{
		ID:    globals.GetGlobalRef().NextThreadID(),
		Stack: list.New(),
	}
}

// AddThreadToTable registers this thread in gl's thread table under the id
// CreateThread already assigned it.
func (et *ExecThread) AddThreadToTable(gl *globals.Globals) {
	gl.RegisterThread(et.ID, et)
}
