/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"
	"os"

	"tessera/globals"
	"tessera/log"
	"tessera/stringPool"
)

// BootstrapLoaderName is the loader string recorded on every class loaded
// off the configured classpath, since this VM does not yet model a
// multi-loader delegation hierarchy beyond bootstrap (spec.md §4.3 Non-goal:
// "a full user-defined-classloader object graph").
const BootstrapLoaderName = "bootstrap"

// Init resets package-level state for a fresh VM run (or a test). It must
// run before any class load is attempted.
func Init() error {
	methAreaMu.Lock()
	methArea = make(map[string]*Klass)
	methAreaMu.Unlock()

	mTableMu.Lock()
	MTable = make(map[string]MTentry)
	mTableMu.Unlock()

	stringPool.Init()
	return nil
}

// LoadClassFromNameOnly resolves className against the classpath, parses and
// links it, and inserts it into the method area. It is idempotent: a class
// already present (even mid-load) is left alone. This is the entry point
// invoked by invokestatic/new/checkcast and the other opcodes that reference
// a class by name rather than by file (spec.md §4.3).
func LoadClassFromNameOnly(className string) error {
	if existing := MethAreaFetch(className); existing != nil {
		return nil
	}

	globals.LoaderWg.Add(1)
	defer globals.LoaderWg.Done()

	// Claim the slot before doing any I/O so concurrent loaders of the same
	// class (two threads invoking the same not-yet-loaded static method)
	// converge on one winner instead of double-parsing.
	placeholder := &Klass{Status: StatusInitializing, Loader: BootstrapLoaderName}
	methAreaMu.Lock()
	if methArea[className] != nil {
		methAreaMu.Unlock()
		return nil
	}
	methArea[className] = placeholder
	methAreaMu.Unlock()

	raw, err := readClassBytes(className)
	if err != nil {
		if cd := synthesizeBootstrapClass(className); cd != nil {
			return linkAndInsert(className, cd, placeholder)
		}
		methAreaMu.Lock()
		delete(methArea, className)
		methAreaMu.Unlock()
		return err
	}

	return parseAndPostClassBytes(className, raw, placeholder)
}

// LoadClassFromFile parses and links a class whose bytes live at a known
// filesystem path, bypassing classpath search -- used for the initial
// command-line class (e.g. `tessera HelloWorld`) and by wholeClassTests.
func LoadClassFromFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading class file %s: %w", path, err)
	}

	cd, err := Parse(raw, path)
	if err != nil {
		return "", err
	}

	k := &Klass{Status: StatusInitializing, Loader: BootstrapLoaderName}
	methAreaMu.Lock()
	methArea[cd.Name] = k
	methAreaMu.Unlock()

	if err := linkAndInsert(cd.Name, cd, k); err != nil {
		return "", err
	}
	return cd.Name, nil
}

// ParseAndPostClass parses raw into a ClData and links it under className,
// regardless of where the bytes came from (classpath search, a
// Unsafe.defineClass-style dynamic class, or a test fixture built in
// memory). Exported for gfunction's hidden-class support.
func ParseAndPostClass(className string, raw []byte) error {
	placeholder := &Klass{Status: StatusInitializing, Loader: BootstrapLoaderName}
	methAreaMu.Lock()
	methArea[className] = placeholder
	methAreaMu.Unlock()
	return parseAndPostClassBytes(className, raw, placeholder)
}

func parseAndPostClassBytes(className string, raw []byte, k *Klass) error {
	cd, err := Parse(raw, className)
	if err != nil {
		methAreaMu.Lock()
		delete(methArea, className)
		methAreaMu.Unlock()
		return err
	}
	if cd.Name != className {
		_ = log.Log(fmt.Sprintf(
			"warning: class file for %s actually declares %s", className, cd.Name), log.WARNING)
	}
	return linkAndInsert(className, cd, k)
}

// linkAndInsert performs the linking phase (spec.md §4.4): resolving and
// loading the superclass chain, laying out instance field offsets parent-
// first, and marking the class format-checked. Verification beyond format
// checking (dataflow-level bytecode verification) is explicitly out of
// scope (spec.md Non-goals).
func linkAndInsert(className string, cd *ClData, k *Klass) error {
	offsets := make(map[string]int)
	var staticNames []string
	base := 0

	if cd.Superclass != "" {
		if err := LoadClassFromNameOnly(cd.Superclass); err != nil {
			methAreaMu.Lock()
			delete(methArea, className)
			methAreaMu.Unlock()
			return fmt.Errorf("loading superclass %s of %s: %w", cd.Superclass, className, err)
		}
		super := MethAreaFetch(cd.Superclass)
		if super != nil && super.Data != nil {
			for name, off := range super.Data.InstanceFieldOffsets {
				offsets[name] = off
			}
			base = len(super.Data.InstanceFieldOffsets)
		}
	}

	for _, f := range cd.Fields {
		if f.IsStatic {
			staticNames = append(staticNames, f.Name)
			continue
		}
		offsets[f.Name] = base
		base++
	}
	cd.InstanceFieldOffsets = offsets
	cd.StaticFieldNames = staticNames

	k.Data = cd
	k.Status = StatusFormatChecked

	nameCopy := className
	idx := stringPool.GetStringIndex(&nameCopy)
	_ = idx

	MethAreaInsert(className, k)

	if cd.MethodTable["main([Ljava/lang/String;)V"] == nil && className == entryClassHint {
		noMainError(className)
	}

	return nil
}

// entryClassHint is set by cmd/tessera before loading the user's main class
// so linkAndInsert can emit the canonical "no main method" diagnostic only
// for the class the user actually asked to run, not every class that lacks
// a main method (which is the overwhelming majority of classes).
var entryClassHint string

// SetEntryClassHint records which class name the VM was asked to execute.
func SetEntryClassHint(name string) {
	entryClassHint = name
}
