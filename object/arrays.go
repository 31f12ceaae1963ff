/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"strings"

	"tessera/types"
)

// JVM arrays are represented as an Object whose single field ("value") holds
// a Go slice of the element type -- []int64, []float64, []*Object, etc.
// KlassName holds the array's own descriptor-style type name (e.g.
// "[Ljava/lang/String;" or "[I"), not an element type, matching the real
// JVM's treatment of array classes as classes in their own right.
const arrayValueField = "value"

// Make1DimRefArray allocates a one-dimensional array of object references,
// each slot initialized to the null reference. elementClassName is the
// element type's class name (e.g. "java/lang/String" for a String[]).
func Make1DimRefArray(elementClassName string, size int64) *Object {
	arrType := types.Array + "L" + elementClassName + ";"
	arr := MakeEmptyObject(arrType)
	backing := make([]*Object, size)
	arr.FieldTable[arrayValueField] = &Field{Ftype: arrType, Fvalue: backing}
	return arr
}

// Make1DimArray allocates a one-dimensional array of a primitive type,
// keyed by the JVM primitive descriptor byte (I, J, F, D, B, C, S, Z).
func Make1DimArray(primitiveType string, size int64) *Object {
	arrType := types.Array + primitiveType
	arr := MakeEmptyObject(arrType)
	var backing interface{}
	switch primitiveType {
	case types.Int:
		backing = make([]int64, size)
	case types.Long:
		backing = make([]int64, size)
	case types.Float:
		backing = make([]float64, size)
	case types.Double:
		backing = make([]float64, size)
	case types.Byte, types.Boolean:
		backing = make([]byte, size)
	case types.Char:
		backing = make([]uint16, size)
	case types.Short:
		backing = make([]int64, size)
	default:
		backing = make([]interface{}, size)
	}
	arr.FieldTable[arrayValueField] = &Field{Ftype: arrType, Fvalue: backing}
	return arr
}

// ArrayLength returns the number of elements in an array Object, or -1 if
// obj isn't an array (its "value" field isn't a recognized slice type).
func ArrayLength(obj *Object) int64 {
	if IsNull(obj) {
		return -1
	}
	f, ok := obj.FieldTable[arrayValueField]
	if !ok {
		return -1
	}
	switch v := f.Fvalue.(type) {
	case []*Object:
		return int64(len(v))
	case []int64:
		return int64(len(v))
	case []float64:
		return int64(len(v))
	case []byte:
		return int64(len(v))
	case []uint16:
		return int64(len(v))
	case []interface{}:
		return int64(len(v))
	default:
		return -1
	}
}

// GetArrayType extracts the element-type descriptor from an array type name
// (e.g. "[Ljava/lang/String;" -> "Ljava/lang/String;", "[[I" -> "[I"). If
// arrayTypeName doesn't start with "[", it's returned unchanged.
func GetArrayType(arrayTypeName string) string {
	return strings.TrimPrefix(arrayTypeName, types.Array)
}
