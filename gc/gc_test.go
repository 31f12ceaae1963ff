/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gc

import (
	"testing"

	"tessera/frames"
	"tessera/globals"
	"tessera/object"
	"tessera/thread"
)

func TestCollectSweepsUnreachableCycle(t *testing.T) {
	globals.InitGlobals("test")
	c := NewCollector()

	a := object.MakeEmptyObject("test/Cyclic")
	b := object.MakeEmptyObject("test/Cyclic")
	a.FieldTable["other"] = &object.Field{Ftype: "Ltest/Cyclic;", Fvalue: b}
	b.FieldTable["other"] = &object.Field{Ftype: "Ltest/Cyclic;", Fvalue: a}

	c.Register(a, 16)
	c.Register(b, 16)

	// No thread references either object, so the cycle is unreachable from
	// any root even though a and b reference each other.
	c.Collect()

	stats := c.Statistics()
	if stats.ObjectsSwept != 2 {
		t.Errorf("expected 2 objects swept, got %d", stats.ObjectsSwept)
	}
	if stats.BytesAllocated != 0 {
		t.Errorf("expected 0 bytes allocated after sweeping the cycle, got %d", stats.BytesAllocated)
	}
}

func TestCollectKeepsObjectsReachableFromAFrame(t *testing.T) {
	globals.InitGlobals("test")
	c := NewCollector()

	live := object.MakeEmptyObject("test/Live")
	dead := object.MakeEmptyObject("test/Dead")
	c.Register(live, 8)
	c.Register(dead, 8)

	et := thread.CreateThread()
	f := frames.CreateFrame(4)
	f.Locals = []interface{}{live}
	et.Stack.PushFront(f)
	et.AddThreadToTable(globals.GetGlobalRef())

	c.Collect()

	stats := c.Statistics()
	if stats.ObjectsSwept != 1 {
		t.Errorf("expected exactly the unreferenced object to be swept, got %d", stats.ObjectsSwept)
	}
	if stats.BytesAllocated != 8 {
		t.Errorf("expected the frame-referenced object's 8 bytes to remain allocated, got %d", stats.BytesAllocated)
	}
}

func TestRefsInMixedContentSlice(t *testing.T) {
	inner := object.MakeEmptyObject("test/Inner")
	mixed := []interface{}{int64(1), inner, nil, "not an object"}
	refs := refsIn(mixed)
	if len(refs) != 1 || refs[0] != inner {
		t.Errorf("expected refsIn to find exactly the one object reference, got %v", refs)
	}
}
