/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package classloader

import (
	"fmt"

	"tessera/log"
	"tessera/stringPool"
	"tessera/types"
)

// Constant pool tag values, per JVMS 4.4.
const (
	Dummy        uint16 = 0 // placeholder slot 0, and the second slot of a Long/Double
	UTF8         uint16 = 1
	IntConst     uint16 = 3
	FloatConst   uint16 = 4
	LongConst    uint16 = 5
	DoubleConst  uint16 = 6
	ClassRef     uint16 = 7
	StringConst  uint16 = 8
	FieldRef     uint16 = 9
	MethodRef    uint16 = 10
	InterfaceRef uint16 = 11
	NameAndType  uint16 = 12
	MethodHandle uint16 = 15
	MethodType   uint16 = 16
	Dynamic      uint16 = 17
	InvokeDynamic uint16 = 18
	ModuleRef    uint16 = 19
	PackageRef   uint16 = 20
)

// CpEntry is the per-slot index record: the tag plus the index into the
// type-specific array that holds the actual payload.
type CpEntry struct {
	Type uint16
	Slot uint16
}

// CPool is the constant pool of a linked class, split by payload type so
// that, e.g., every Float in a class lives contiguously. CpIndex is
// 1-indexed per JVMS: CpIndex[0] is the mandatory unused dummy entry.
type CPool struct {
	CpIndex        []CpEntry
	ClassRefs      []uint32 // string-pool indices of class names
	Doubles        []float64
	Dynamics       []DynamicEntry
	FieldRefs      []FieldRefEntry
	Floats         []float32
	IntConsts      []int32
	InterfaceRefs  []InterfaceRefEntry
	InvokeDynamics []InvokeDynamicEntry
	LongConsts     []int64
	MethodHandles  []MethodHandleEntry
	MethodRefs     []MethodRefEntry
	MethodTypes    []uint16
	NameAndTypes   []NameAndTypeEntry
	Utf8Refs       []string
}

type FieldRefEntry struct {
	ClassIndex  uint16
	NameAndType uint16
}

type MethodRefEntry struct {
	ClassIndex  uint16
	NameAndType uint16
}

type InterfaceRefEntry struct {
	ClassIndex  uint16
	NameAndType uint16
}

type NameAndTypeEntry struct {
	NameIndex uint16
	DescIndex uint16
}

type MethodHandleEntry struct {
	RefKind  uint16
	RefIndex uint16
}

type DynamicEntry struct {
	BootstrapIndex uint16
	NameAndType    uint16
}

type InvokeDynamicEntry struct {
	BootstrapIndex uint16
	NameAndType    uint16
}

// RetType tags the value FetchCPentry hands back, since a single Go return
// type has to stand in for four very different constant-pool payloads.
type RetType int

const (
	IS_ERROR RetType = iota
	IS_INT64
	IS_FLOAT64
	IS_STRING_ADDR
	IS_STRUCT_ADDR
)

// CpRetrievedValue is the uniform result of FetchCPentry.
type CpRetrievedValue struct {
	RetType   RetType
	IntVal    int64
	FloatVal  float64
	StringVal *string
}

// FetchCPentry fetches and normalizes the constant at index from cp,
// regardless of its underlying payload array. Used by ldc/ldc_w/ldc2_w and
// any code needing a quick "what's in this CP slot" without a type switch of
// its own.
func FetchCPentry(cp *CPool, index int) CpRetrievedValue {
	if cp == nil || index < 0 || index >= len(cp.CpIndex) {
		return CpRetrievedValue{RetType: IS_ERROR}
	}

	entry := cp.CpIndex[index]
	switch entry.Type {
	case IntConst:
		if int(entry.Slot) >= len(cp.IntConsts) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		return CpRetrievedValue{RetType: IS_INT64, IntVal: int64(cp.IntConsts[entry.Slot])}
	case LongConst:
		if int(entry.Slot) >= len(cp.LongConsts) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		return CpRetrievedValue{RetType: IS_INT64, IntVal: cp.LongConsts[entry.Slot]}
	case MethodType:
		if int(entry.Slot) >= len(cp.MethodTypes) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		return CpRetrievedValue{RetType: IS_INT64, IntVal: int64(cp.MethodTypes[entry.Slot])}
	case FloatConst:
		if int(entry.Slot) >= len(cp.Floats) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		return CpRetrievedValue{RetType: IS_FLOAT64, FloatVal: float64(cp.Floats[entry.Slot])}
	case DoubleConst:
		if int(entry.Slot) >= len(cp.Doubles) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		return CpRetrievedValue{RetType: IS_FLOAT64, FloatVal: cp.Doubles[entry.Slot]}
	case StringConst:
		// Slot here is the CP index of the underlying CONSTANT_Utf8 entry
		// (JVMS 4.4.3 string_index), not a direct Utf8Refs array index.
		if int(entry.Slot) >= len(cp.CpIndex) || cp.CpIndex[entry.Slot].Type != UTF8 {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		s := utf8At(cp, entry.Slot)
		return CpRetrievedValue{RetType: IS_STRING_ADDR, StringVal: &s}
	case UTF8:
		if int(entry.Slot) >= len(cp.Utf8Refs) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		s := cp.Utf8Refs[entry.Slot]
		return CpRetrievedValue{RetType: IS_STRING_ADDR, StringVal: &s}
	case ClassRef:
		if int(entry.Slot) >= len(cp.ClassRefs) {
			return CpRetrievedValue{RetType: IS_ERROR}
		}
		name := stringPool.GetString(cp.ClassRefs[entry.Slot])
		return CpRetrievedValue{RetType: IS_STRING_ADDR, StringVal: &name}
	default:
		return CpRetrievedValue{RetType: IS_ERROR}
	}
}

// GetClassNameFromCPclassref resolves CpIndex[index] as a ClassRef entry and
// returns the class's fully-qualified name, or "" if index isn't a valid
// ClassRef.
func GetClassNameFromCPclassref(cp *CPool, index int) string {
	if cp == nil || index <= 0 || index >= len(cp.CpIndex) {
		return ""
	}
	entry := cp.CpIndex[index]
	if entry.Type != ClassRef || int(entry.Slot) >= len(cp.ClassRefs) {
		return ""
	}
	classIdx := cp.ClassRefs[entry.Slot]
	if classIdx == types.InvalidStringIndex {
		return ""
	}
	return stringPool.GetString(classIdx)
}

// GetMethInfoFromCPmethref resolves CpIndex[index] as a MethodRef (or
// InterfaceRef) and returns the declaring class name, method name, and
// descriptor. All three are "" on any resolution failure.
func GetMethInfoFromCPmethref(cp *CPool, index int) (string, string, string) {
	if cp == nil || index <= 0 || index >= len(cp.CpIndex) {
		return "", "", ""
	}
	entry := cp.CpIndex[index]

	var classIndex, natIndex uint16
	switch entry.Type {
	case MethodRef:
		if int(entry.Slot) >= len(cp.MethodRefs) {
			return "", "", ""
		}
		mr := cp.MethodRefs[entry.Slot]
		classIndex, natIndex = mr.ClassIndex, mr.NameAndType
	case InterfaceRef:
		if int(entry.Slot) >= len(cp.InterfaceRefs) {
			return "", "", ""
		}
		ir := cp.InterfaceRefs[entry.Slot]
		classIndex, natIndex = ir.ClassIndex, ir.NameAndType
	default:
		return "", "", ""
	}

	className := GetClassNameFromCPclassref(cp, int(classIndex))
	if className == "" {
		return "", "", ""
	}

	if int(natIndex) >= len(cp.CpIndex) {
		return "", "", ""
	}
	natEntry := cp.CpIndex[natIndex]
	if natEntry.Type != NameAndType || int(natEntry.Slot) >= len(cp.NameAndTypes) {
		return "", "", ""
	}
	nat := cp.NameAndTypes[natEntry.Slot]

	name := utf8At(cp, nat.NameIndex)
	desc := utf8At(cp, nat.DescIndex)
	if name == "" || desc == "" {
		return "", "", ""
	}
	return className, name, desc
}

// GetFieldInfoFromCPfieldref resolves CpIndex[index] as a FieldRef and
// returns the declaring class name, field name, and descriptor. All three
// are "" on any resolution failure.
func GetFieldInfoFromCPfieldref(cp *CPool, index int) (string, string, string) {
	if cp == nil || index <= 0 || index >= len(cp.CpIndex) {
		return "", "", ""
	}
	entry := cp.CpIndex[index]
	if entry.Type != FieldRef || int(entry.Slot) >= len(cp.FieldRefs) {
		return "", "", ""
	}
	fr := cp.FieldRefs[entry.Slot]

	className := GetClassNameFromCPclassref(cp, int(fr.ClassIndex))
	if className == "" {
		return "", "", ""
	}

	if int(fr.NameAndType) >= len(cp.CpIndex) {
		return "", "", ""
	}
	natEntry := cp.CpIndex[fr.NameAndType]
	if natEntry.Type != NameAndType || int(natEntry.Slot) >= len(cp.NameAndTypes) {
		return "", "", ""
	}
	nat := cp.NameAndTypes[natEntry.Slot]

	name := utf8At(cp, nat.NameIndex)
	desc := utf8At(cp, nat.DescIndex)
	if name == "" || desc == "" {
		return "", "", ""
	}
	return className, name, desc
}

// utf8At fetches a UTF8 string at a raw constant-pool index, logging (rather
// than panicking) on a malformed reference -- the codec guarantees these
// indices are valid for a class that passed format-checking, but defensive
// code here avoids a crash on a hand-built CPool in a test.
func utf8At(cp *CPool, index uint16) string {
	if int(index) >= len(cp.CpIndex) {
		_ = log.Log(fmt.Sprintf("utf8At: index %d out of range", index), log.SEVERE)
		return ""
	}
	e := cp.CpIndex[index]
	if e.Type != UTF8 || int(e.Slot) >= len(cp.Utf8Refs) {
		return ""
	}
	return cp.Utf8Refs[e.Slot]
}
