/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package statics holds the VM's static-field storage, keyed by
// "ClassName.fieldName" (spec.md §4.4 "Linking": static fields are
// allocated once per class, not per instance).
package statics

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Static is the storage cell for one static field.
type Static struct {
	Type  string
	Value interface{}
}

var (
	mu      sync.RWMutex
	table   = make(map[string]Static)
)

// AddStatic stores (or replaces) the static field identified by key, which
// by convention is "ClassName.fieldName" -- the dot-joined form the gfunction
// registry's <clinit> implementations already use.
func AddStatic(key string, s Static) error {
	if key == "" {
		return fmt.Errorf("AddStatic: empty key")
	}
	mu.Lock()
	defer mu.Unlock()
	table[key] = s
	return nil
}

// GetStaticValue returns the stored value for className.fieldName, or nil
// if it hasn't been set (e.g. the owning class's <clinit> hasn't run yet).
func GetStaticValue(className, fieldName string) interface{} {
	key := className + "." + fieldName
	mu.RLock()
	defer mu.RUnlock()
	s, ok := table[key]
	if !ok {
		return nil
	}
	return s.Value
}

// GetStatic returns the full Static record, and whether it was found.
func GetStatic(key string) (Static, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := table[key]
	return s, ok
}

// AllValues returns a snapshot of every stored static field's value,
// unordered -- used by package gc to enumerate static fields as GC roots
// without taking a dependency on this package's internal table shape.
func AllValues() []interface{} {
	mu.RLock()
	defer mu.RUnlock()
	vals := make([]interface{}, 0, len(table))
	for _, s := range table {
		vals = append(vals, s.Value)
	}
	return vals
}

// Reset clears all static state -- used between test runs.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	table = make(map[string]Static)
}

// DumpStatics writes every static field's key, type, and value to stderr, in
// sorted key order, for the fatal-shutdown diagnostic dump (spec.md §7).
func DumpStatics() {
	mu.RLock()
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	mu.RUnlock()
	sort.Strings(keys)

	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintln(os.Stderr, "---- static field dump ----")
	for _, k := range keys {
		s := table[k]
		fmt.Fprintf(os.Stderr, "%-40s %-20s %v\n", k, s.Type, s.Value)
	}
}
