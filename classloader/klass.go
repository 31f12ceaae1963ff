/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package classloader

import (
	"fmt"
	"runtime"
	"sync"

	"tessera/log"
	"tessera/types"
)

// Klass is the method-area entry for a class: its link/verify status, the
// name of the classloader that produced it, and (once format-checked) its
// linked data. Status values mirror the teacher's single-byte state machine:
// I=initializing the load, F=format-checked, L=linked, N=instantiated at
// least once.
type Klass struct {
	Status byte
	Loader string
	Data   *ClData
}

const (
	StatusInitializing byte = 'I'
	StatusFormatChecked byte = 'F'
	StatusLinked        byte = 'L'
	StatusInstantiated  byte = 'N'
)

// ClData is the linked, runtime form of a class (spec.md §3 "Class").
type ClData struct {
	Name            string
	NameIndex       uint32
	Superclass      string
	SuperclassIndex uint32
	Module          string
	Pkg             string
	SourceFile      string

	Interfaces  []uint16 // string-pool indices of implemented interface names
	Fields      []Field
	MethodTable map[string]*Method // key: name+descriptor
	Attributes  []Attr
	Bootstraps  []BootstrapMethod
	CP          CPool
	Access      AccessFlags

	ClInit byte // types.ClInitNotRun / ClInitInProgress / ClInitRun

	// InstanceFieldOffsets maps a field name to its slot in an instance's
	// FieldTable storage order, parent fields first (spec.md §4.4 linking).
	InstanceFieldOffsets map[string]int
	StaticFieldNames     []string

	clinitMu sync.Mutex
}

type AccessFlags struct {
	ClassIsPublic     bool
	ClassIsFinal      bool
	ClassIsSuper      bool
	ClassIsInterface  bool
	ClassIsAbstract   bool
	ClassIsSynthetic  bool
	ClassIsAnnotation bool
	ClassIsEnum       bool
	ClassIsModule     bool
}

type Field struct {
	AccessFlags int
	Name        string
	Desc        string
	IsStatic    bool
	Attributes  []Attr
}

// Method is a class's method as stored in ClData.MethodTable.
type Method struct {
	Name        string
	Desc        string
	AccessFlags int
	CodeAttr    CodeAttrib
	Attributes  []Attr
	Exceptions  []uint16
	Parameters  []ParamAttrib
	Deprecated  bool
}

type CodeAttrib struct {
	MaxStack   int
	MaxLocals  int
	Code       []byte
	Exceptions []CodeException
	Attributes []Attr
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    int
	SourceLine int
}

type ParamAttrib struct {
	Name        string
	AccessFlags int
}

type Attr struct {
	AttrName    string
	AttrContent []byte
}

type CodeException struct {
	StartPc   int
	EndPc     int
	HandlerPc int
	CatchType uint16 // CP index of a ClassRef, or 0 for catch-all (finally)
}

type BootstrapMethod struct {
	MethodRef uint16
	Args      []uint16
}

const AccessFlagNative = 0x0100
const AccessFlagStatic = 0x0008

// MTentry is one entry in the global method table: either a Java method (J)
// or a golang-implemented intrinsic (G). gfunction populates 'G' entries at
// start-up; classloader populates 'J' entries lazily on first lookup.
type MTentry struct {
	Meth  interface{}
	MType byte // 'J' or 'G'
}

var (
	methAreaMu sync.RWMutex
	methArea   = make(map[string]*Klass)

	mTableMu sync.RWMutex
	MTable   = make(map[string]MTentry)
)

// MethAreaFetch returns the Klass for name, or nil if not yet loaded.
func MethAreaFetch(name string) *Klass {
	methAreaMu.RLock()
	defer methAreaMu.RUnlock()
	return methArea[name]
}

// MethAreaInsert records (or replaces) the Klass for name.
func MethAreaInsert(name string, k *Klass) {
	methAreaMu.Lock()
	defer methAreaMu.Unlock()
	methArea[name] = k
}

// WaitForClassStatus blocks (cooperatively -- a tight poll, since this VM's
// class loading is not itself split across goroutines in the general case)
// until name reaches at least StatusFormatChecked, or returns an error if
// it's not present at all.
func WaitForClassStatus(name string) error {
	for {
		k := MethAreaFetch(name)
		if k == nil {
			return fmt.Errorf("WaitForClassStatus: class %s not found in method area", name)
		}
		if k.Status != StatusInitializing {
			return nil
		}
		runtime.Gosched()
	}
}

// FetchMethodAndCP finds a method by (class, name, descriptor), loading the
// class on demand, and returns it wrapped as an MTentry. It does not walk
// superclasses -- callers needing virtual dispatch do that themselves
// (package jvm) since the search order differs between invokestatic/special
// and invokevirtual/interface.
func FetchMethodAndCP(className, methName, methType string) (MTentry, error) {
	if MethAreaFetch(className) == nil {
		if err := LoadClassFromNameOnly(className); err != nil {
			return MTentry{}, err
		}
	}

	fqn := className + "." + methName + methType
	mTableMu.RLock()
	entry, ok := MTable[fqn]
	mTableMu.RUnlock()
	if ok {
		return entry, nil
	}

	k := MethAreaFetch(className)
	if k == nil || k.Data == nil {
		return MTentry{}, fmt.Errorf("FetchMethodAndCP: class %s not loaded", className)
	}

	m, ok := k.Data.MethodTable[methName+methType]
	if !ok {
		return MTentry{}, fmt.Errorf(
			"FetchMethodAndCP: class %s does not define method %s%s", className, methName, methType)
	}

	entry = MTentry{Meth: m, MType: 'J'}
	mTableMu.Lock()
	MTable[fqn] = entry
	mTableMu.Unlock()
	return entry, nil
}

// noMainError logs the JVM's canonical "where's main()" diagnostic.
func noMainError(className string) {
	_ = log.Log("Error: main() method not found in class "+className+"\n"+
		"Please define the main method as:\n"+
		"   public static void main(String[] args)", log.SEVERE)
}

var _ = types.ClInitNotRun // keep import live across edits to this file
