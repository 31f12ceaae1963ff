/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package native is the dynamic host-library bridge for JVMS 2.6.3's
// "native method" frames: it resolves a java.library.path entry to a
// shared library, connects to it with purego (no cgo, so this VM stays a
// single static binary), and invokes an exported symbol with the
// interpreter's already-popped argument array.
package native

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ebitengine/purego"

	"tessera/log"
)

var (
	// WindowsOS gates the "lib" filename prefix JVMS native libraries drop
	// on Windows (awt.dll vs libawt.so).
	WindowsOS = runtime.GOOS == "windows"

	// PathDirLibs is the directory java.library.path natives are connected
	// from, relative to the VM's install root.
	PathDirLibs = "lib"

	SepPathString = string(os.PathSeparator)
	FileExt       = libExt()
)

func libExt() string {
	switch runtime.GOOS {
	case "windows":
		return "dll"
	case "darwin":
		return "dylib"
	default:
		return "so"
	}
}

var (
	nfMu         sync.RWMutex
	nfToLibTable = make(map[string]uintptr) // native function name -> library handle
)

// NativeErrBlk is returned by RunNativeFunction in place of a value when the
// call couldn't be made.
type NativeErrBlk struct {
	ErrMsg string
}

// nativeInit resets the function table; called once at VM start-up before
// any native library is connected.
func nativeInit() bool {
	nfMu.Lock()
	defer nfMu.Unlock()
	nfToLibTable = make(map[string]uintptr)
	return true
}

// ConnectLibrary opens lib (a path to a shared library) via purego and
// returns its handle, or 0 if it couldn't be opened.
func ConnectLibrary(lib string) uintptr {
	handle, err := purego.Dlopen(lib, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		_ = log.Log(fmt.Sprintf("ConnectLibrary: could not open %s: %v", lib, err), log.WARNING)
		return 0
	}
	return handle
}

// CreateNativeFunctionTable reads dir's natives manifest -- one
// "Java_fully_qualified_Name_method=libname" assignment per line -- and
// connects every listed library, registering its handle under each
// function name it claims to export. A missing manifest is not an error:
// a build that ships no natives is still valid.
func CreateNativeFunctionTable(dir string) error {
	manifestPath := filepath.Join(dir, "natives.manifest")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	nfMu.Lock()
	defer nfMu.Unlock()
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		funcName := strings.TrimSpace(parts[0])
		libName := strings.TrimSpace(parts[1])
		if handle := ConnectLibrary(libName); handle != 0 {
			nfToLibTable[funcName] = handle
		}
	}
	return nil
}

// RunNativeFunction resolves funcName's library, looks up its symbol, and
// invokes it through purego's raw syscall bridge, passing params in order
// as uintptr-width arguments. This covers descriptor shapes built entirely
// out of JVM primitives (I, J, Z, ...); a descriptor needing object/array
// marshaling isn't handled here and returns a NativeErrBlk.
func RunNativeFunction(fs *list.List, className, funcName, descriptor string, params *[]interface{}, tracing bool) interface{} {
	nfMu.RLock()
	handle, ok := nfToLibTable[funcName]
	nfMu.RUnlock()
	if !ok {
		return NativeErrBlk{ErrMsg: fmt.Sprintf("RunNativeFunction: no library registered for %s", funcName)}
	}

	sym, err := purego.Dlsym(handle, funcName)
	if err != nil {
		return NativeErrBlk{ErrMsg: fmt.Sprintf("RunNativeFunction: symbol %s not found: %v", funcName, err)}
	}

	var args []uintptr
	if params != nil {
		for _, p := range *params {
			arg, ok := toUintptrArg(p)
			if !ok {
				return NativeErrBlk{ErrMsg: fmt.Sprintf(
					"RunNativeFunction: %s%s: unsupported argument type %T", funcName, descriptor, p)}
			}
			args = append(args, arg)
		}
	}

	if tracing {
		_ = log.Log(fmt.Sprintf("RunNativeFunction: calling %s.%s%s with %d arg(s)",
			className, funcName, descriptor, len(args)), log.TRACE_INST)
	}

	ret, _, _ := purego.SyscallN(sym, args...)
	return int64(ret)
}

func toUintptrArg(v interface{}) (uintptr, bool) {
	switch x := v.(type) {
	case int64:
		return uintptr(x), true
	case int32:
		return uintptr(x), true
	case uint32:
		return uintptr(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case nil:
		return 0, true
	default:
		return 0, false
	}
}

// NFuint masks a native call's raw return value down to its unsigned
// 32-bit representation, the width JVMS natives returning `int` actually
// compute in (e.g. a CRC32 checksum).
func NFuint(v int64) uint32 {
	return uint32(v)
}
