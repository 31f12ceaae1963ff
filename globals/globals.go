/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package globals holds the process-wide bootstrap state described in
// spec.md §3 "Bootstrap state": the java-home path, the ordered classpath,
// verify mode, the thread table, and the handful of back-reference function
// pointers that let low-level packages (classloader, gfunction) call back
// into the VM without an import cycle.
package globals

import (
	"io"
	"os"
	"sync"
)

// ClasspathEntryKind enumerates the four source kinds a classpath entry can
// be, per spec.md §4.3.
type ClasspathEntryKind int

const (
	EntryDirectory ClasspathEntryKind = iota
	EntryArchive
	EntryURL
	EntryJimage
)

// ClasspathEntry is one element of the ordered classpath.
type ClasspathEntry struct {
	Kind ClasspathEntryKind
	Path string // filesystem path, archive path, or URL
}

// Globals is the single process-wide instance of VM bootstrap state.
type Globals struct {
	TesseraName string // "test", "testWithoutShutdown", or the real program name
	Version     string
	MaxJavaVersion    int // e.g. 17
	MaxJavaVersionRaw int // the raw major-version byte stored in class files, e.g. 61

	JavaHome    string
	TesseraHome string
	FileEncoding string

	Classpath []ClasspathEntry
	VerifyMode        bool
	PreviewFeatures    bool
	AddOpensRaw       []string
	AddExportsRaw     []string

	// SystemProperties holds -Dkey=value overrides from the command line,
	// consulted by java/lang/System.getProperty before its built-in defaults.
	SystemProperties map[string]string

	// StrictJDK is a switch for rejecting classfile and runtime deviations the
	// JDK itself tolerates. It is off by default, and no code path reads it,
	// so setting it changes no behaviour.
	StrictJDK bool

	ThreadNumber int
	Threads      map[int]interface{}
	threadMutex  sync.Mutex

	HiddenClassSuffix int64

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ErrorGoStack string

	// FuncInstantiateClass is set by the jvm package at VM construction time
	// so that gfunction and classloader code (which must not import jvm, to
	// avoid a cycle) can still allocate and run the constructor of a Java
	// class, e.g. when building a StackTraceElement.
	FuncInstantiateClass func(className string, args []interface{}) (interface{}, error)
}

var (
	globalRef *Globals
	once      sync.Once
	mu        sync.Mutex
)

// InitGlobals (re)creates the singleton Globals instance with the given
// program name. Called at VM construction and at the top of most tests.
func InitGlobals(name string) *Globals {
	mu.Lock()
	defer mu.Unlock()
	globalRef = &Globals{
		TesseraName:       name,
		Version:           "0.1.0",
		MaxJavaVersion:    17,
		MaxJavaVersionRaw: 61,
		FileEncoding:      "UTF-8",
		Threads:           make(map[int]interface{}),
		SystemProperties:  make(map[string]string),
		Stdin:             os.Stdin,
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		globalRef.JavaHome = home
	}
	if home := os.Getenv("TESSERA_HOME"); home != "" {
		globalRef.TesseraHome = home
	}
	return globalRef
}

// GetGlobalRef returns the current singleton, initializing a default "test"
// instance if nothing has called InitGlobals yet.
func GetGlobalRef() *Globals {
	mu.Lock()
	ref := globalRef
	mu.Unlock()
	if ref == nil {
		return InitGlobals("test")
	}
	return ref
}

// TesseraHome returns the configured home directory (TESSERA_HOME as read by
// InitGlobals), or "" when unset -- kept as a package-level function because several
// packages want the value without holding a pointer to Globals.
func TesseraHome() string {
	return GetGlobalRef().TesseraHome
}

// LoaderWg is waited on by shutdown.Exit so that an in-flight class load
// (which may be a goroutine fetching a URL classpath entry) finishes before
// the process exits.
var LoaderWg sync.WaitGroup

// NextThreadID hands out monotonically increasing thread ids under the
// global thread-table lock.
func (g *Globals) NextThreadID() int {
	g.threadMutex.Lock()
	defer g.threadMutex.Unlock()
	g.ThreadNumber++
	return g.ThreadNumber
}

// RegisterThread stores an opaque thread handle under its id. The concrete
// type lives in package thread; globals only needs the count.
func (g *Globals) RegisterThread(id int, handle interface{}) {
	g.threadMutex.Lock()
	defer g.threadMutex.Unlock()
	g.Threads[id] = handle
}

// SnapshotThreads returns a point-in-time copy of every registered thread
// handle, used by package gc to enumerate frame stacks as GC roots without
// holding the thread table's lock while it walks them.
func (g *Globals) SnapshotThreads() []interface{} {
	g.threadMutex.Lock()
	defer g.threadMutex.Unlock()
	handles := make([]interface{}, 0, len(g.Threads))
	for _, h := range g.Threads {
		handles = append(handles, h)
	}
	return handles
}
