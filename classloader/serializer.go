/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"tessera/stringPool"
)

// Serialize re-encodes a linked class back into JVMS binary form. It exists
// primarily so round-trip tests can assert Parse(Serialize(x)) == x, and so
// hidden/generated classes (e.g. lambda proxy classes built at runtime) can
// be handed to tools expecting a real .class byte stream.
func Serialize(cd *ClData) ([]byte, error) {
	var buf bytes.Buffer

	writeU4(&buf, classMagic)
	writeU2(&buf, 0)  // minor version
	writeU2(&buf, 61) // major version: Java 17

	rawCp, err := raiseConstantPool(&cd.CP)
	if err != nil {
		return nil, err
	}
	if len(cd.CP.CpIndex) > 65535 {
		return nil, fmt.Errorf("serialize %s: constant pool has %d entries, exceeds u2 maximum", cd.Name, len(cd.CP.CpIndex))
	}
	writeU2(&buf, uint16(len(cd.CP.CpIndex)))
	buf.Write(rawCp)

	writeU2(&buf, encodeAccessFlags(cd.Access))

	thisIdx, err := classRefIndexInCp(&cd.CP, cd.Name)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %v", cd.Name, err)
	}
	writeU2(&buf, thisIdx)

	if cd.Superclass == "" {
		writeU2(&buf, 0)
	} else {
		superIdx, err := classRefIndexInCp(&cd.CP, cd.Superclass)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %v", cd.Name, err)
		}
		writeU2(&buf, superIdx)
	}

	if len(cd.Interfaces) > 65535 {
		return nil, fmt.Errorf("serialize %s: %d interfaces exceeds u2 maximum", cd.Name, len(cd.Interfaces))
	}
	writeU2(&buf, uint16(len(cd.Interfaces)))
	for _, i := range cd.Interfaces {
		writeU2(&buf, i)
	}

	if len(cd.Fields) > 65535 {
		return nil, fmt.Errorf("serialize %s: %d fields exceeds u2 maximum", cd.Name, len(cd.Fields))
	}
	writeU2(&buf, uint16(len(cd.Fields)))
	for _, f := range cd.Fields {
		if err := writeField(&buf, &cd.CP, f); err != nil {
			return nil, err
		}
	}

	if len(cd.MethodTable) > 65535 {
		return nil, fmt.Errorf("serialize %s: %d methods exceeds u2 maximum", cd.Name, len(cd.MethodTable))
	}
	writeU2(&buf, uint16(len(cd.MethodTable)))
	for _, m := range cd.MethodTable {
		if err := writeMethod(&buf, &cd.CP, m); err != nil {
			return nil, err
		}
	}

	writeU2(&buf, uint16(len(cd.Attributes)))
	for _, a := range cd.Attributes {
		writeAttr(&buf, &cd.CP, a)
	}

	return buf.Bytes(), nil
}

func writeU2(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU4(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeField(buf *bytes.Buffer, cp *CPool, f Field) error {
	writeU2(buf, uint16(f.AccessFlags))
	nameIdx, err := utf8IndexInCp(cp, f.Name)
	if err != nil {
		return err
	}
	writeU2(buf, nameIdx)
	descIdx, err := utf8IndexInCp(cp, f.Desc)
	if err != nil {
		return err
	}
	writeU2(buf, descIdx)
	writeU2(buf, uint16(len(f.Attributes)))
	for _, a := range f.Attributes {
		writeAttr(buf, cp, a)
	}
	return nil
}

func writeMethod(buf *bytes.Buffer, cp *CPool, m *Method) error {
	writeU2(buf, uint16(m.AccessFlags))
	nameIdx, err := utf8IndexInCp(cp, m.Name)
	if err != nil {
		return err
	}
	writeU2(buf, nameIdx)
	descIdx, err := utf8IndexInCp(cp, m.Desc)
	if err != nil {
		return err
	}
	writeU2(buf, descIdx)

	attrCount := len(m.Attributes)
	hasCode := len(m.CodeAttr.Code) > 0 || m.CodeAttr.MaxStack > 0 || m.CodeAttr.MaxLocals > 0
	if hasCode {
		attrCount++
	}
	if m.Deprecated {
		attrCount++
	}
	writeU2(buf, uint16(attrCount))

	if hasCode {
		codeBytes := serializeCodeAttr(m.CodeAttr, cp)
		writeAttr(buf, cp, Attr{AttrName: "Code", AttrContent: codeBytes})
	}
	if m.Deprecated {
		writeAttr(buf, cp, Attr{AttrName: "Deprecated"})
	}
	for _, a := range m.Attributes {
		writeAttr(buf, cp, a)
	}
	return nil
}

func serializeCodeAttr(c CodeAttrib, cp *CPool) []byte {
	var buf bytes.Buffer
	writeU2(&buf, uint16(c.MaxStack))
	writeU2(&buf, uint16(c.MaxLocals))
	writeU4(&buf, uint32(len(c.Code)))
	buf.Write(c.Code)

	writeU2(&buf, uint16(len(c.Exceptions)))
	for _, e := range c.Exceptions {
		writeU2(&buf, uint16(e.StartPc))
		writeU2(&buf, uint16(e.EndPc))
		writeU2(&buf, uint16(e.HandlerPc))
		writeU2(&buf, e.CatchType)
	}

	attrCount := len(c.Attributes)
	if len(c.LineNumberTable) > 0 {
		attrCount++
	}
	writeU2(&buf, uint16(attrCount))
	if len(c.LineNumberTable) > 0 {
		var lnBuf bytes.Buffer
		writeU2(&lnBuf, uint16(len(c.LineNumberTable)))
		for _, ln := range c.LineNumberTable {
			writeU2(&lnBuf, uint16(ln.StartPC))
			writeU2(&lnBuf, uint16(ln.SourceLine))
		}
		// Parse moves every LineNumberTable into c.LineNumberTable, so it is
		// written back here as a full attribute (name index, length, body).
		writeAttr(&buf, cp, Attr{AttrName: "LineNumberTable", AttrContent: lnBuf.Bytes()})
	}
	for _, a := range c.Attributes {
		writeAttr(&buf, cp, a)
	}
	return buf.Bytes()
}

func writeAttr(buf *bytes.Buffer, cp *CPool, a Attr) {
	nameIdx, err := utf8IndexInCp(cp, a.AttrName)
	if err != nil {
		// Attribute names are always pool-resident for real classes; a miss
		// here only happens for synthetic attrs built without interning --
		// write index 0 rather than fail the whole serialize.
		nameIdx = 0
	}
	writeU2(buf, nameIdx)
	writeU4(buf, uint32(len(a.AttrContent)))
	buf.Write(a.AttrContent)
}

func encodeAccessFlags(a AccessFlags) uint16 {
	var f uint16
	if a.ClassIsPublic {
		f |= 0x0001
	}
	if a.ClassIsFinal {
		f |= 0x0010
	}
	if a.ClassIsSuper {
		f |= 0x0020
	}
	if a.ClassIsInterface {
		f |= 0x0200
	}
	if a.ClassIsAbstract {
		f |= 0x0400
	}
	if a.ClassIsSynthetic {
		f |= 0x1000
	}
	if a.ClassIsAnnotation {
		f |= 0x2000
	}
	if a.ClassIsEnum {
		f |= 0x4000
	}
	if a.ClassIsModule {
		f |= 0x8000
	}
	return f
}

// classRefIndexInCp finds (or would need to add, which this read-only
// lookup does not do) the CP index of a ClassRef naming className.
func classRefIndexInCp(cp *CPool, className string) (uint16, error) {
	target := stringPool.GetStringIndex(&className)
	for i, e := range cp.CpIndex {
		if e.Type == ClassRef && int(e.Slot) < len(cp.ClassRefs) && cp.ClassRefs[e.Slot] == target {
			return uint16(i), nil
		}
	}
	return 0, fmt.Errorf("no ClassRef constant pool entry for %s", className)
}

func utf8IndexInCp(cp *CPool, s string) (uint16, error) {
	for i, e := range cp.CpIndex {
		if e.Type == UTF8 && int(e.Slot) < len(cp.Utf8Refs) && cp.Utf8Refs[e.Slot] == s {
			return uint16(i), nil
		}
	}
	return 0, fmt.Errorf("no UTF8 constant pool entry for %q", s)
}

// raiseConstantPool re-expands the type-split CPool back into the flat wire
// format JVMS expects: one variable-length entry per slot 1..n-1, with a
// following dummy slot for each Long/Double.
func raiseConstantPool(cp *CPool) ([]byte, error) {
	var buf bytes.Buffer
	skip := false
	for i := 1; i < len(cp.CpIndex); i++ {
		if skip {
			skip = false
			continue
		}
		e := cp.CpIndex[i]
		switch e.Type {
		case UTF8:
			buf.WriteByte(byte(UTF8))
			s := cp.Utf8Refs[e.Slot]
			writeU2(&buf, uint16(len(s)))
			buf.WriteString(s)
		case IntConst:
			buf.WriteByte(byte(IntConst))
			writeU4(&buf, uint32(cp.IntConsts[e.Slot]))
		case FloatConst:
			buf.WriteByte(byte(FloatConst))
			writeU4(&buf, floatBits(cp.Floats[e.Slot]))
		case LongConst:
			buf.WriteByte(byte(LongConst))
			v := uint64(cp.LongConsts[e.Slot])
			writeU4(&buf, uint32(v>>32))
			writeU4(&buf, uint32(v))
			skip = true
		case DoubleConst:
			buf.WriteByte(byte(DoubleConst))
			v := doubleBits(cp.Doubles[e.Slot])
			writeU4(&buf, uint32(v>>32))
			writeU4(&buf, uint32(v))
			skip = true
		case ClassRef:
			buf.WriteByte(byte(ClassRef))
			name := stringPool.GetString(cp.ClassRefs[e.Slot])
			nameIdx, err := utf8IndexInCp(cp, name)
			if err != nil {
				return nil, fmt.Errorf("ClassRef at slot %d: %v", i, err)
			}
			writeU2(&buf, nameIdx)
		case StringConst:
			buf.WriteByte(byte(StringConst))
			// Slot is already the CP index of the referenced UTF8 entry.
			writeU2(&buf, e.Slot)
		case FieldRef:
			buf.WriteByte(byte(FieldRef))
			fr := cp.FieldRefs[e.Slot]
			writeU2(&buf, fr.ClassIndex)
			writeU2(&buf, fr.NameAndType)
		case MethodRef:
			buf.WriteByte(byte(MethodRef))
			mr := cp.MethodRefs[e.Slot]
			writeU2(&buf, mr.ClassIndex)
			writeU2(&buf, mr.NameAndType)
		case InterfaceRef:
			buf.WriteByte(byte(InterfaceRef))
			ir := cp.InterfaceRefs[e.Slot]
			writeU2(&buf, ir.ClassIndex)
			writeU2(&buf, ir.NameAndType)
		case NameAndType:
			buf.WriteByte(byte(NameAndType))
			nt := cp.NameAndTypes[e.Slot]
			writeU2(&buf, nt.NameIndex)
			writeU2(&buf, nt.DescIndex)
		case MethodType:
			buf.WriteByte(byte(MethodType))
			writeU2(&buf, cp.MethodTypes[e.Slot])
		case MethodHandle:
			buf.WriteByte(byte(MethodHandle))
			mh := cp.MethodHandles[e.Slot]
			buf.WriteByte(byte(mh.RefKind))
			writeU2(&buf, mh.RefIndex)
		case Dynamic:
			buf.WriteByte(byte(Dynamic))
			d := cp.Dynamics[e.Slot]
			writeU2(&buf, d.BootstrapIndex)
			writeU2(&buf, d.NameAndType)
		case InvokeDynamic:
			buf.WriteByte(byte(InvokeDynamic))
			d := cp.InvokeDynamics[e.Slot]
			writeU2(&buf, d.BootstrapIndex)
			writeU2(&buf, d.NameAndType)
		case Dummy:
			// placeholder that should have been skipped by the Long/Double
			// case above; if reached directly it's a malformed pool.
			return nil, fmt.Errorf("unexpected dummy constant pool slot %d", i)
		default:
			return nil, fmt.Errorf("unrecognized constant pool type %d at slot %d", e.Type, i)
		}
	}
	return buf.Bytes(), nil
}

func floatBits(f float32) uint32 {
	return math.Float32bits(f)
}

func doubleBits(f float64) uint64 {
	return math.Float64bits(f)
}
