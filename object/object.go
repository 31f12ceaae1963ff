/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package object implements the GC-managed object graph described in
// spec.md §3 "Instance object" and §3 "Array object": a class-pointer (by
// string-pool index, not a raw pointer, so objects survive class reloading)
// plus a field table, or a flat Go slice for arrays.
package object

import (
	"fmt"
	"sync/atomic"

	"tessera/stringPool"
	"tessera/types"
)

// Field is one instance or static field's runtime storage.
type Field struct {
	Ftype  string // JVM descriptor, e.g. "I", "Ljava/lang/String;", "[B"
	Fvalue interface{}
}

// Object is a GC-managed instance. KlassName is a string-pool index rather
// than a class pointer so that object identity survives a class being
// reloaded (spec.md §4.6 "roots" enumerates live Objects, not Klass
// pointers).
type Object struct {
	KlassName  uint32
	FieldTable map[string]*Field

	// Mark is a per-object mark word. Nothing in the VM reads or writes it:
	// gc.Collect keeps its marks in a map of its own.
	Mark int32

	// MonitorOwner is a slot for the id of the thread holding this object's
	// monitor (spec.md §5 "every object has an associated lock"); no package
	// sets it.
	MonitorOwner int64
}

var nextObjectID int64

// NewObjectID hands out a monotonically increasing id; no package in the VM
// calls it.
func NewObjectID() int64 {
	return atomic.AddInt64(&nextObjectID, 1)
}

// Null is the canonical null reference pushed by ACONST_NULL and compared
// against by IFNULL/IFNONNULL. It is simply a nil *Object, so IsNull treats
// it and any other nil *Object alike.
var Null *Object = nil

// IsNull reports whether obj is the null reference.
func IsNull(obj *Object) bool {
	return obj == nil
}

// MakeEmptyObject allocates a zero-valued instance of klassName with no
// fields populated yet; package jvm's NEW opcode handler pushes it as is,
// without filling in default field values.
func MakeEmptyObject(klassName string) *Object {
	name := klassName
	return &Object{
		KlassName:  stringPool.GetStringIndex(&name),
		FieldTable: make(map[string]*Field),
	}
}

// GoStringFromStringPoolIndex is a thin convenience wrapper so call sites
// that already have a string-pool index (like Object.KlassName) don't need
// to import stringPool directly just for tracing.
func GoStringFromStringPoolIndex(idx uint32) string {
	return stringPool.GetString(idx)
}

// NewString allocates a java/lang/String instance whose backing bytes are s,
// encoded as UTF-8 -- this VM represents String.value as a []byte rather
// than modeling Java's internal compact-string encoding flag.
func NewString(s string) *Object {
	obj := MakeEmptyObject(types.StringClassName)
	obj.FieldTable["value"] = &Field{Ftype: "[B", Fvalue: []byte(s)}
	return obj
}

// StringObjectFromGoString is an alias kept for call-site symmetry with
// GoStringFromStringObject.
func StringObjectFromGoString(s string) *Object {
	return NewString(s)
}

// NewStringFromGoString is an alias for NewString kept for call-site
// readability where the "New..." naming reads better than "String...".
func NewStringFromGoString(s string) *Object {
	return NewString(s)
}

// GoStringFromStringObject extracts the Go string backing a java/lang/String
// instance, or "" if obj isn't a populated String object.
func GoStringFromStringObject(obj *Object) string {
	if IsNull(obj) {
		return ""
	}
	f, ok := obj.FieldTable["value"]
	if !ok {
		return ""
	}
	switch v := f.Fvalue.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return ""
	}
}

// GetGoStringFromJavaStringPtr is the gfunction-package-facing name for
// GoStringFromStringObject -- call sites that deal exclusively in String
// objects (not arbitrary objects) use this name for readability.
func GetGoStringFromJavaStringPtr(obj *Object) string {
	return GoStringFromStringObject(obj)
}

// CreateCompactStringFromGoString builds a java/lang/String instance from a
// Go string, matching the JDK's "compact string" byte-array representation.
// It takes a *string for call-site symmetry with code that already holds a
// pointer (e.g. a formatted value built in place); a nil pointer yields an
// empty string.
func CreateCompactStringFromGoString(s *string) *Object {
	if s == nil {
		return NewString("")
	}
	return NewString(*s)
}

// NewPooledString builds a java/lang/String instance whose "value" field
// holds a string-pool index rather than a raw byte array -- this is the
// representation LDC produces when it resolves a CONSTANT_String (or a bare
// CONSTANT_Utf8 loaded directly), matching the interned-constant semantics of
// JVMS 5.1, as distinct from NewString's general-purpose byte-array form.
func NewPooledString(idx uint32) *Object {
	obj := MakeEmptyObject(types.StringClassName)
	obj.FieldTable["value"] = &Field{Ftype: "Ljava/lang/String;", Fvalue: idx}
	return obj
}

// IsJavaString reports whether obj is a java/lang/String instance.
func IsJavaString(obj *Object) bool {
	if IsNull(obj) {
		return false
	}
	return GoStringFromStringPoolIndex(obj.KlassName) == types.StringClassName
}

// FormatField renders obj for trace/diagnostic output; prefix is prepended
// to each field line (callers pass "" for a single-line summary).
func (o *Object) FormatField(prefix string) string {
	if o == nil {
		return "<null>"
	}
	className := GoStringFromStringPoolIndex(o.KlassName)
	if className == types.StringClassName {
		return fmt.Sprintf("%sjava/lang/String: \"%s\"", prefix, GoStringFromStringObject(o))
	}
	return fmt.Sprintf("%s%s object @%p, %d field(s)", prefix, className, o, len(o.FieldTable))
}
