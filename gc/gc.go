/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package gc implements the tracing mark-sweep collector spec.md §4.6
// describes: every live heap Object is registered here at allocation, roots
// are enumerated by walking each thread's frame stack plus the static-field
// table, and a sweep reclaims anything unmarked -- including reference
// cycles, which a mark-sweep pass collects for free since it never counts
// references.
package gc

import (
	"container/list"
	"sync"
	"time"

	"tessera/frames"
	"tessera/globals"
	"tessera/object"
	"tessera/statics"
	"tessera/thread"
)

// Statistics holds the collector's running totals: ObjectsSwept counts the
// objects reclaimed by every sweep so far, and BytesAllocated is the
// accounted size of the objects still in the heap (added by Register,
// subtracted when an object is swept).
type Statistics struct {
	ObjectsSwept   int64
	BytesAllocated int64
}

// Collector is the VM's heap: every live *object.Object passes through
// Register at allocation, and Collect reclaims whatever a trace from the
// roots can't reach.
type Collector struct {
	mu    sync.Mutex
	heap  map[*object.Object]int64 // object -> its accounted size in bytes
	stats Statistics

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector allocates an empty, not-yet-started collector.
func NewCollector() *Collector {
	return &Collector{heap: make(map[*object.Object]int64)}
}

// Default is the VM's process-wide collector; package object's allocation
// helpers don't call it directly (that would make object depend on gc), so
// package jvm's NEW/NEWARRAY/ANEWARRAY opcode handlers register each
// allocation here themselves.
var Default = NewCollector()

// Register adds obj to the heap with the given accounted size, called once
// per allocation right after the object is constructed.
func (c *Collector) Register(obj *object.Object, size int64) {
	if obj == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heap[obj] = size
	c.stats.BytesAllocated += size
}

// Statistics returns a snapshot of the collector's bookkeeping.
func (c *Collector) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Start launches a background goroutine that calls Collect every interval,
// mirroring a generational VM's concurrent collection thread; stop it with
// Stop. Starting an already-started Collector is a no-op.
func (c *Collector) Start(interval time.Duration) {
	c.mu.Lock()
	if c.stopCh != nil {
		c.mu.Unlock()
		return
	}
	c.stopCh = make(chan struct{})
	stop := c.stopCh
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the background collection goroutine started by Start, if any.
func (c *Collector) Stop() {
	c.mu.Lock()
	stop := c.stopCh
	c.stopCh = nil
	c.mu.Unlock()
	if stop != nil {
		close(stop)
		c.wg.Wait()
	}
}

// Collect runs one full mark-sweep pass: mark every object reachable from
// the current roots, then sweep anything left unmarked -- including
// reference cycles unreachable from any root, which a mark-sweep pass
// reclaims without any special-case cycle-detection logic.
func (c *Collector) Collect() {
	roots := Roots()

	marked := make(map[*object.Object]bool, len(roots))
	queue := append([]*object.Object(nil), roots...)
	for len(queue) > 0 {
		obj := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if obj == nil || marked[obj] {
			continue
		}
		marked[obj] = true
		queue = append(queue, children(obj)...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var swept int64
	for obj, size := range c.heap {
		if marked[obj] {
			continue
		}
		delete(c.heap, obj)
		c.stats.BytesAllocated -= size
		swept++
	}
	c.stats.ObjectsSwept += swept
}

// children returns every *object.Object obj's FieldTable directly or
// indirectly (through an array's backing slice) references.
func children(obj *object.Object) []*object.Object {
	var out []*object.Object
	for _, fld := range obj.FieldTable {
		if fld == nil {
			continue
		}
		out = append(out, refsIn(fld.Fvalue)...)
	}
	return out
}

// refsIn extracts every *object.Object reachable directly from v, which may
// be a bare object reference, a reference-array backing slice ([]*Object),
// or a mixed-content slice ([]interface{}, as used by Object arrays that
// predate a typed backing slice).
func refsIn(v interface{}) []*object.Object {
	switch x := v.(type) {
	case *object.Object:
		if x != nil {
			return []*object.Object{x}
		}
	case []*object.Object:
		return append([]*object.Object(nil), x...)
	case []interface{}:
		var out []*object.Object
		for _, e := range x {
			out = append(out, refsIn(e)...)
		}
		return out
	}
	return nil
}

// Roots enumerates the VM's current GC roots: every live thread's operand
// stack and local variables, plus every static field, per spec.md §4.6
// "roots" -- anything directly reachable without tracing through another
// heap object.
func Roots() []*object.Object {
	var roots []*object.Object

	gl := globals.GetGlobalRef()
	for _, handle := range gl.SnapshotThreads() {
		et, ok := handle.(*thread.ExecThread)
		if !ok || et.Stack == nil {
			continue
		}
		for e := et.Stack.Front(); e != nil; e = e.Next() {
			roots = append(roots, frameRoots(e)...)
		}
	}

	for _, v := range statics.AllValues() {
		roots = append(roots, refsIn(v)...)
	}
	return roots
}

// frameRoots extracts the object references live on one frame's operand
// stack and in its local variable array.
func frameRoots(e *list.Element) []*object.Object {
	f, ok := e.Value.(*frames.Frame)
	if !ok {
		return nil
	}
	var roots []*object.Object
	for i := 0; i <= f.TOS && i < len(f.OpStack); i++ {
		roots = append(roots, refsIn(f.OpStack[i])...)
	}
	for _, l := range f.Locals {
		roots = append(roots, refsIn(l)...)
	}
	return roots
}
